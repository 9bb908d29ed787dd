package domain

import (
	"strings"
	"time"
)

// Project is an organisation as stored by the backend.
// For Azure DevOps the ProjectName is the project inside the organisation.
type Project struct {
	// ProjectID is assigned by the backend on save.
	ProjectID   string       `json:"projectId,omitempty"`
	NodeID      string       `json:"nodeId"`
	ProjectName string       `json:"projectName"`
	DisplayName string       `json:"displayName"`
	AvatarURL   string       `json:"avatarUrl"`
	CreatedAt   time.Time    `json:"projectCreatedAt"`
	UpdatedAt   time.Time    `json:"projectUpdatedAt"`
	Provider    ProviderType `json:"providerType,omitempty"`
}

// User is an organisation member.
// NodeID is always NormalizeID of the provider-native id.
type User struct {
	// UserID is assigned by the backend on save.
	UserID      string    `json:"userId,omitempty"`
	ProjectID   string    `json:"projectId,omitempty"`
	NodeID      string    `json:"nodeId"`
	UserName    string    `json:"userName"`
	DisplayName string    `json:"displayName"`
	AvatarURL   string    `json:"avatarUrl"`
	CreatedAt   time.Time `json:"userCreatedAt"`
	UpdatedAt   time.Time `json:"userUpdatedAt"`
}

// maskedNameLength is the number of characters kept by Masked.
const maskedNameLength = 3

// Masked returns a copy of u with UserName and DisplayName truncated
// to their first three characters.
func (u User) Masked() User {
	u.UserName = truncateRunes(u.UserName, maskedNameLength)
	u.DisplayName = truncateRunes(u.DisplayName, maskedNameLength)
	return u
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// CustomTeamPrefix marks teams created locally rather than fetched from a provider.
const CustomTeamPrefix = "custom-"

// Team is a group of users within a project.
// NodeID is the provider-native team id, or CustomTeamPrefix plus a
// generated id for teams created locally.
type Team struct {
	// TeamID is assigned by the backend on save.
	TeamID      string `json:"teamId,omitempty"`
	ProjectID   string `json:"projectId,omitempty"`
	NodeID      string `json:"nodeId"`
	TeamName    string `json:"teamName"`
	Description string `json:"description"`
}

// IsCustom reports whether the team was created locally.
func (t Team) IsCustom() bool {
	return strings.HasPrefix(t.NodeID, CustomTeamPrefix)
}

// TeamMember is a provider-side team member.
// NodeID is always NormalizeID of the provider-native id.
type TeamMember struct {
	NodeID   string `json:"nodeId"`
	UserName string `json:"userName"`
}

// TeamMembership is the join record written to the backend.
type TeamMembership struct {
	TeamID string `json:"teamId"`
	UserID string `json:"userId"`
}

// Repository is a code repository.
// For Azure DevOps FullName is "project/name".
type Repository struct {
	// CodeRepositoryID is assigned by the backend on save.
	CodeRepositoryID   string `json:"codeRepositoryId,omitempty"`
	ProjectID          string `json:"projectId,omitempty"`
	NodeID             string `json:"nodeId"`
	CodeRepositoryName string `json:"codeRepositoryName"`
	FullName           string `json:"fullName"`
	DefaultBranch      string `json:"defaultBranch,omitempty"`
}

// PullRequest is a pull request within a repository.
//
// Azure DevOps reports no code churn, so Commits, Additions, Deletions and
// ChangedFiles are zero for that provider.
type PullRequest struct {
	NodeID    string     `json:"nodeId"`
	Number    int        `json:"number"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"prCreatedAt"`
	UpdatedAt time.Time  `json:"prUpdatedAt"`
	MergedAt  *time.Time `json:"prMergedAt"`
	ClosedAt  *time.Time `json:"prClosedAt"`

	CodeRepositoryID string `json:"codeRepositoryId"`
	ProjectID        string `json:"projectId"`
	// UserID is the backend id of the author, nil when unresolved.
	UserID *string `json:"userId"`

	Commits      int `json:"commits"`
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	ChangedFiles int `json:"changedFiles"`

	// AuthorNodeID is the normalized author id used for resolution.
	// It is not part of the backend schema.
	AuthorNodeID string `json:"-"`
}
