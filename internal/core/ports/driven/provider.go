package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

// Provider reads organisation metadata from one source-control provider.
// The scope (organisation, or organisation/project) is fixed when the
// provider is created.
//
// Every method returns normalized records: user and team member NodeIDs
// are already passed through domain.NormalizeID, everything else keeps the
// provider-native id. Failures are *domain.ProviderError for HTTP errors,
// *domain.NetworkError for transport errors and *domain.ValidationError
// for a malformed scope.
type Provider interface {
	// Type returns the provider type.
	Type() domain.ProviderType

	// Scope returns the scope the provider was created for.
	Scope() string

	// GetOrganization fetches the organisation as a project record.
	GetOrganization(ctx context.Context) (*domain.Project, error)

	// GetUsers fetches every organisation member.
	GetUsers(ctx context.Context) ([]domain.User, error)

	// GetTeams fetches every team.
	GetTeams(ctx context.Context) ([]domain.Team, error)

	// GetRepositories fetches every repository.
	GetRepositories(ctx context.Context) ([]domain.Repository, error)

	// GetPullRequests fetches pull requests of repo created after since.
	// A nil since fetches the full history. Pagination restarts on every call.
	// Returned pull requests carry AuthorNodeID but no UserID.
	GetPullRequests(ctx context.Context, repo domain.Repository, since *time.Time) ([]domain.PullRequest, error)

	// GetTeamMembers fetches the provider-side members of team.
	GetTeamMembers(ctx context.Context, team domain.Team) ([]domain.TeamMember, error)
}

// ProviderFactory creates providers.
type ProviderFactory interface {
	// Create returns a Provider for the given type, scope and token.
	// It performs no network I/O. Returns a *domain.UnsupportedProviderError
	// for unknown types.
	Create(providerType domain.ProviderType, scope, token string) (Provider, error)

	// SupportedTypes returns all registered provider types.
	SupportedTypes() []domain.ProviderType
}
