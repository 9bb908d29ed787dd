package domain

import "time"

// Snapshot is the result of reconciling provider entities against the
// backend. Unsaved holds provider entities whose NodeID is not saved.
// An empty Unsaved is a successful result.
type Snapshot[T any] struct {
	Saved   []T `json:"saved"`
	Unsaved []T `json:"unsaved"`
}

// TeamMemberView describes a saved team with its saved members and the
// saved users that may be added to it.
type TeamMemberView struct {
	Team      Team   `json:"team"`
	Members   []User `json:"members"`
	Available []User `json:"available"`
}

// PullRequestContext is the state a caller needs before syncing pull requests.
type PullRequestContext struct {
	Repositories []Repository `json:"repositories"`
	Users        []User       `json:"users"`
}

// PullRequestBatch is the outcome of one incremental pull request fetch.
type PullRequestBatch struct {
	Repository Repository `json:"repository"`
	// Since is the cursor the fetch started from, nil for a full fetch.
	Since        *time.Time    `json:"since,omitempty"`
	PullRequests []PullRequest `json:"pullRequests"`
	// Unresolved counts pull requests whose author matched no saved user.
	Unresolved int `json:"unresolved"`
	// SavedCount is set once the batch is persisted.
	SavedCount int `json:"savedCount"`
}

// SaveResult reports how many entities the backend accepted.
type SaveResult struct {
	SavedCount int `json:"savedCount"`
}

// Session is the connection established by a successful connect step.
type Session struct {
	Provider  ProviderType `json:"provider"`
	Scope     string       `json:"scope"`
	ProjectID string       `json:"projectId"`
	Project   Project      `json:"project"`
}
