package driven

import (
	"context"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

// Backend persists synchronised entities.
// Failures are *domain.BackendError for rejected requests and
// *domain.NetworkError for transport errors.
type Backend interface {
	// SaveProject persists a project and returns it with ProjectID set.
	SaveProject(ctx context.Context, project domain.Project) (*domain.Project, error)

	// ListUsers returns the saved users of a project.
	ListUsers(ctx context.Context, projectID string) ([]domain.User, error)

	// SaveUsers persists users into a project.
	SaveUsers(ctx context.Context, projectID string, users []domain.User) (domain.SaveResult, error)

	// ListTeams returns the saved teams of a project.
	ListTeams(ctx context.Context, projectID string) ([]domain.Team, error)

	// SaveTeams persists teams into a project.
	SaveTeams(ctx context.Context, projectID string, teams []domain.Team) (domain.SaveResult, error)

	// ListTeamMembers returns the saved users that belong to a team.
	ListTeamMembers(ctx context.Context, teamID string) ([]domain.User, error)

	// SaveTeamMembers persists team membership join records.
	SaveTeamMembers(ctx context.Context, memberships []domain.TeamMembership) (domain.SaveResult, error)

	// ListRepositories returns the saved repositories of a project.
	ListRepositories(ctx context.Context, projectID string) ([]domain.Repository, error)

	// SaveRepositories persists repositories into a project.
	SaveRepositories(ctx context.Context, projectID string, repos []domain.Repository) (domain.SaveResult, error)

	// ListPullRequests returns the saved pull requests of a repository.
	ListPullRequests(ctx context.Context, repoID string) ([]domain.PullRequest, error)

	// LastPullRequest returns the most recently created saved pull request
	// of a repository, or nil when none exists.
	LastPullRequest(ctx context.Context, repoID string) (*domain.PullRequest, error)

	// SavePullRequests persists pull requests.
	SavePullRequests(ctx context.Context, prs []domain.PullRequest) (domain.SaveResult, error)
}
