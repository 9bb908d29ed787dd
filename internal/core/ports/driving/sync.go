package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/core/ports/driven"
)

// SyncService reconciles provider entities against the backend.
//
// Fetch methods never write to the backend. Save methods never call the
// provider. Entity kinds are independent and may be synchronised in any
// order, although pull requests resolve authors only against users that
// are already saved.
type SyncService interface {
	// Connect validates the credentials, creates the provider, fetches the
	// organisation and saves it as a project.
	Connect(ctx context.Context, providerType domain.ProviderType, scope, token string) (*domain.Session, driven.Provider, error)

	// FetchUsers returns saved users and provider users not yet saved.
	FetchUsers(ctx context.Context, projectID string, provider driven.Provider) (*domain.Snapshot[domain.User], error)

	// SaveUsers persists users. Users whose NodeID is in masked are saved
	// with truncated names.
	SaveUsers(ctx context.Context, projectID string, users []domain.User, masked []string) (domain.SaveResult, error)

	// FetchTeams returns saved teams and provider teams not yet saved.
	FetchTeams(ctx context.Context, projectID string, provider driven.Provider) (*domain.Snapshot[domain.Team], error)

	// CreateTeam builds a locally defined team ready to be saved.
	CreateTeam(name, description string) (domain.Team, error)

	// SaveTeams persists teams.
	SaveTeams(ctx context.Context, projectID string, teams []domain.Team) (domain.SaveResult, error)

	// FetchTeamMembers returns the member view of a saved team.
	FetchTeamMembers(ctx context.Context, projectID string, team domain.Team, provider driven.Provider) (*domain.TeamMemberView, error)

	// SaveTeamMembers adds saved users to a saved team.
	SaveTeamMembers(ctx context.Context, team domain.Team, users []domain.User) (domain.SaveResult, error)

	// FetchRepositories returns saved repositories and provider repositories not yet saved.
	FetchRepositories(ctx context.Context, projectID string, provider driven.Provider) (*domain.Snapshot[domain.Repository], error)

	// SaveRepositories persists repositories.
	SaveRepositories(ctx context.Context, projectID string, repos []domain.Repository) (domain.SaveResult, error)

	// PullRequestContext returns the saved repositories and users of a project.
	PullRequestContext(ctx context.Context, projectID string) (*domain.PullRequestContext, error)

	// LastPullRequestTime returns the creation time of the newest saved pull
	// request of repo, or nil when none is saved.
	LastPullRequestTime(ctx context.Context, repo domain.Repository) (*time.Time, error)

	// FetchPullRequests fetches pull requests created after since, resolves
	// their authors against users and stamps repository and project ids.
	FetchPullRequests(ctx context.Context, provider driven.Provider, repo domain.Repository, users []domain.User, since *time.Time) (*domain.PullRequestBatch, error)

	// SyncPullRequests fetches pull requests newer than the last saved one
	// and saves them. An empty batch is success without a save.
	SyncPullRequests(ctx context.Context, provider driven.Provider, repo domain.Repository) (*domain.PullRequestBatch, error)
}
