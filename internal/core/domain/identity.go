package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// NormalizeID maps a provider-native identifier into the stable identifier
// space shared by every provider: the lowercase hex SHA-256 digest of the
// UTF-8 bytes of id.
//
// It is applied to users and team members when they are ingested from a
// provider, and to pull-request authors before they are matched against
// saved users. Organisations, teams, repositories and pull requests keep
// their provider-native identifiers. Persisted data depends on both the
// algorithm and the set of hashed kinds, so neither may change.
//
// An empty id yields an empty result so that a missing author never
// matches a saved user.
func NormalizeID(id string) string {
	if id == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}
