package services

import (
	"time"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

// Unsaved returns the provider entities whose key is not among the saved
// keys, preserving provider order. Saved entities with an empty key are
// ignored and provider entities with an empty key are always unsaved.
// Neither input is modified.
func Unsaved[T any](saved, provider []T, key func(T) string) []T {
	savedKeys := make(map[string]struct{}, len(saved))
	for _, s := range saved {
		if k := key(s); k != "" {
			savedKeys[k] = struct{}{}
		}
	}

	unsaved := make([]T, 0, len(provider))
	for _, p := range provider {
		k := key(p)
		if k == "" {
			unsaved = append(unsaved, p)
			continue
		}
		if _, ok := savedKeys[k]; !ok {
			unsaved = append(unsaved, p)
		}
	}
	return unsaved
}

// Snapshot builds a saved/unsaved split for entities keyed by key.
func Snapshot[T any](saved, provider []T, key func(T) string) *domain.Snapshot[T] {
	if saved == nil {
		saved = []T{}
	}
	return &domain.Snapshot[T]{
		Saved:   saved,
		Unsaved: Unsaved(saved, provider, key),
	}
}

func userKey(u domain.User) string             { return u.NodeID }
func teamKey(t domain.Team) string             { return t.NodeID }
func repositoryKey(r domain.Repository) string { return r.NodeID }

// Window keeps the pull requests created strictly after since and drops
// repeated node ids, keeping the first occurrence. A nil since keeps every
// pull request.
func Window(prs []domain.PullRequest, since *time.Time) []domain.PullRequest {
	seen := make(map[string]struct{}, len(prs))
	out := make([]domain.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if since != nil && !pr.CreatedAt.After(*since) {
			continue
		}
		if pr.NodeID != "" {
			if _, dup := seen[pr.NodeID]; dup {
				continue
			}
			seen[pr.NodeID] = struct{}{}
		}
		out = append(out, pr)
	}
	return out
}

// ResolveAuthors sets UserID on each pull request whose AuthorNodeID
// equals the NodeID of a saved user with a backend id. Unmatched pull
// requests keep a nil UserID and are never dropped. It returns the number
// left unresolved. prs is modified in place.
func ResolveAuthors(prs []domain.PullRequest, users []domain.User) int {
	byNode := make(map[string]string, len(users))
	for _, u := range users {
		if u.NodeID == "" || u.UserID == "" {
			continue
		}
		if _, ok := byNode[u.NodeID]; !ok {
			byNode[u.NodeID] = u.UserID
		}
	}

	unresolved := 0
	for i := range prs {
		prs[i].UserID = nil
		if id, ok := byNode[prs[i].AuthorNodeID]; ok && prs[i].AuthorNodeID != "" {
			userID := id
			prs[i].UserID = &userID
			continue
		}
		unresolved++
	}
	return unresolved
}

// EligibleMembers returns the saved users that can join a team: those not
// already members and, when providerMembers is non-nil, present among the
// provider-side members of the team.
func EligibleMembers(saved, members []domain.User, providerMembers []domain.TeamMember) []domain.User {
	isMember := make(map[string]struct{}, len(members))
	for _, m := range members {
		isMember[m.NodeID] = struct{}{}
	}

	var onProvider map[string]struct{}
	if providerMembers != nil {
		onProvider = make(map[string]struct{}, len(providerMembers))
		for _, m := range providerMembers {
			onProvider[m.NodeID] = struct{}{}
		}
	}

	available := make([]domain.User, 0, len(saved))
	for _, u := range saved {
		if _, ok := isMember[u.NodeID]; ok {
			continue
		}
		if onProvider != nil {
			if _, ok := onProvider[u.NodeID]; !ok {
				continue
			}
		}
		available = append(available, u)
	}
	return available
}

// LatestCreatedAt returns the newest creation time among prs, or nil.
func LatestCreatedAt(prs []domain.PullRequest) *time.Time {
	var latest *time.Time
	for i := range prs {
		if latest == nil || prs[i].CreatedAt.After(*latest) {
			t := prs[i].CreatedAt
			latest = &t
		}
	}
	return latest
}
