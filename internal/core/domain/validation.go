package domain

import "strings"

const (
	minTokenLength = 10
	minScopeLength = 2
)

// ValidateCredentials checks connection input before any network call.
func ValidateCredentials(token, scope string) error {
	token = strings.TrimSpace(token)
	scope = strings.TrimSpace(scope)

	if token == "" {
		return NewValidationError("token", "personal access token is required")
	}
	if len(token) < minTokenLength {
		return NewValidationError("token", "personal access token is too short")
	}
	if scope == "" {
		return NewValidationError("scope", "organization name is required")
	}
	if len(scope) < minScopeLength {
		return NewValidationError("scope", "organization name is too short")
	}
	return nil
}
