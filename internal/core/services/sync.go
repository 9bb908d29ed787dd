package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/core/ports/driven"
	"github.com/custodia-labs/orgsync/internal/core/ports/driving"
	"github.com/custodia-labs/orgsync/internal/logger"
)

// Ensure SyncService implements the interface.
var _ driving.SyncService = (*SyncService)(nil)

// SyncService reconciles provider entities against the backend.
// It holds no per-session state and is safe for concurrent use.
type SyncService struct {
	factory driven.ProviderFactory
	backend driven.Backend
	newID   func() string
}

// NewSyncService creates a new sync service.
func NewSyncService(factory driven.ProviderFactory, backend driven.Backend) *SyncService {
	return &SyncService{
		factory: factory,
		backend: backend,
		newID:   uuid.NewString,
	}
}

// Connect validates the credentials, creates the provider, fetches the
// organisation and saves it as a project.
func (s *SyncService) Connect(
	ctx context.Context,
	providerType domain.ProviderType,
	scope, token string,
) (*domain.Session, driven.Provider, error) {
	scope = strings.TrimSpace(scope)
	token = strings.TrimSpace(token)

	if err := domain.ValidateCredentials(token, scope); err != nil {
		return nil, nil, err
	}

	provider, err := s.factory.Create(providerType, scope, token)
	if err != nil {
		return nil, nil, fmt.Errorf("create provider: %w", err)
	}

	logger.Section("Connect")
	logger.Info("Fetching organization %s from %s", scope, providerType.DisplayName())

	org, err := provider.GetOrganization(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch organization: %w", err)
	}
	org.Provider = providerType

	project, err := s.backend.SaveProject(ctx, *org)
	if err != nil {
		return nil, nil, fmt.Errorf("save project: %w", err)
	}
	if project.ProjectID == "" {
		return nil, nil, &domain.BackendError{Message: "project saved without an id"}
	}

	logger.Info("Project %s saved as %s", project.ProjectName, project.ProjectID)

	return &domain.Session{
		Provider:  providerType,
		Scope:     scope,
		ProjectID: project.ProjectID,
		Project:   *project,
	}, provider, nil
}

// FetchUsers returns saved users and provider users not yet saved.
func (s *SyncService) FetchUsers(
	ctx context.Context,
	projectID string,
	provider driven.Provider,
) (*domain.Snapshot[domain.User], error) {
	if err := requireProject(projectID, provider); err != nil {
		return nil, err
	}

	saved, err := s.backend.ListUsers(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list saved users: %w", err)
	}

	fetched, err := provider.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}

	snap := Snapshot(saved, fetched, userKey)
	logger.Info("Users: %d saved, %d fetched, %d unsaved", len(snap.Saved), len(fetched), len(snap.Unsaved))
	return snap, nil
}

// SaveUsers persists users. Users whose NodeID is listed in masked are
// saved with their names truncated.
func (s *SyncService) SaveUsers(
	ctx context.Context,
	projectID string,
	users []domain.User,
	masked []string,
) (domain.SaveResult, error) {
	if projectID == "" {
		return domain.SaveResult{}, domain.NewValidationError("project", "no project selected")
	}
	if len(users) == 0 {
		return domain.SaveResult{}, domain.NewValidationError("users", "select at least one user to save")
	}

	maskSet := make(map[string]struct{}, len(masked))
	for _, id := range masked {
		maskSet[id] = struct{}{}
	}

	payload := make([]domain.User, len(users))
	for i, u := range users {
		if _, ok := maskSet[u.NodeID]; ok {
			u = u.Masked()
		}
		u.ProjectID = projectID
		payload[i] = u
	}

	result, err := s.backend.SaveUsers(ctx, projectID, payload)
	if err != nil {
		return domain.SaveResult{}, fmt.Errorf("save users: %w", err)
	}

	logger.Info("Saved %d users (%d masked)", result.SavedCount, len(maskSet))
	return result, nil
}

// FetchTeams returns saved teams and provider teams not yet saved.
func (s *SyncService) FetchTeams(
	ctx context.Context,
	projectID string,
	provider driven.Provider,
) (*domain.Snapshot[domain.Team], error) {
	if err := requireProject(projectID, provider); err != nil {
		return nil, err
	}

	saved, err := s.backend.ListTeams(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list saved teams: %w", err)
	}

	fetched, err := provider.GetTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch teams: %w", err)
	}

	snap := Snapshot(saved, fetched, teamKey)
	logger.Info("Teams: %d saved, %d fetched, %d unsaved", len(snap.Saved), len(fetched), len(snap.Unsaved))
	return snap, nil
}

// CreateTeam builds a locally defined team with a generated node id.
func (s *SyncService) CreateTeam(name, description string) (domain.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Team{}, domain.NewValidationError("name", "team name is required")
	}

	return domain.Team{
		NodeID:      domain.CustomTeamPrefix + s.newID(),
		TeamName:    name,
		Description: strings.TrimSpace(description),
	}, nil
}

// SaveTeams persists teams.
func (s *SyncService) SaveTeams(
	ctx context.Context,
	projectID string,
	teams []domain.Team,
) (domain.SaveResult, error) {
	if projectID == "" {
		return domain.SaveResult{}, domain.NewValidationError("project", "no project selected")
	}
	if len(teams) == 0 {
		return domain.SaveResult{}, domain.NewValidationError("teams", "select at least one team to save")
	}

	payload := make([]domain.Team, len(teams))
	for i, t := range teams {
		t.ProjectID = projectID
		payload[i] = t
	}

	result, err := s.backend.SaveTeams(ctx, projectID, payload)
	if err != nil {
		return domain.SaveResult{}, fmt.Errorf("save teams: %w", err)
	}

	logger.Info("Saved %d teams", result.SavedCount)
	return result, nil
}

// FetchTeamMembers returns the saved members of a saved team together with
// the saved users that may join it. For provider teams only users that are
// also members on the provider side are offered.
func (s *SyncService) FetchTeamMembers(
	ctx context.Context,
	projectID string,
	team domain.Team,
	provider driven.Provider,
) (*domain.TeamMemberView, error) {
	if projectID == "" {
		return nil, domain.NewValidationError("project", "no project selected")
	}
	if team.TeamID == "" {
		return nil, domain.NewValidationError("team", "team must be saved before adding members")
	}

	saved, err := s.backend.ListUsers(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list saved users: %w", err)
	}

	members, err := s.backend.ListTeamMembers(ctx, team.TeamID)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	if members == nil {
		members = []domain.User{}
	}

	var onProvider []domain.TeamMember
	if !team.IsCustom() {
		if provider == nil {
			return nil, domain.NewValidationError("provider", "not connected to a provider")
		}
		onProvider, err = provider.GetTeamMembers(ctx, team)
		if err != nil {
			return nil, fmt.Errorf("fetch team members: %w", err)
		}
		if onProvider == nil {
			onProvider = []domain.TeamMember{}
		}
	}

	view := &domain.TeamMemberView{
		Team:      team,
		Members:   members,
		Available: EligibleMembers(saved, members, onProvider),
	}
	logger.Info("Team %s: %d members, %d available", team.TeamName, len(view.Members), len(view.Available))
	return view, nil
}

// SaveTeamMembers adds saved users to a saved team.
// Users without a backend id are skipped.
func (s *SyncService) SaveTeamMembers(
	ctx context.Context,
	team domain.Team,
	users []domain.User,
) (domain.SaveResult, error) {
	if team.TeamID == "" {
		return domain.SaveResult{}, domain.NewValidationError("team", "no team selected")
	}

	seen := make(map[string]struct{}, len(users))
	memberships := make([]domain.TeamMembership, 0, len(users))
	for _, u := range users {
		if u.UserID == "" {
			continue
		}
		if _, dup := seen[u.UserID]; dup {
			continue
		}
		seen[u.UserID] = struct{}{}
		memberships = append(memberships, domain.TeamMembership{TeamID: team.TeamID, UserID: u.UserID})
	}
	if len(memberships) == 0 {
		return domain.SaveResult{}, domain.NewValidationError("users", "No valid users found for the selected team.")
	}

	result, err := s.backend.SaveTeamMembers(ctx, memberships)
	if err != nil {
		return domain.SaveResult{}, fmt.Errorf("save team members: %w", err)
	}

	logger.Info("Saved %d members into team %s", result.SavedCount, team.TeamName)
	return result, nil
}

// FetchRepositories returns saved repositories and provider repositories not yet saved.
func (s *SyncService) FetchRepositories(
	ctx context.Context,
	projectID string,
	provider driven.Provider,
) (*domain.Snapshot[domain.Repository], error) {
	if err := requireProject(projectID, provider); err != nil {
		return nil, err
	}

	saved, err := s.backend.ListRepositories(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list saved repositories: %w", err)
	}

	fetched, err := provider.GetRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch repositories: %w", err)
	}

	snap := Snapshot(saved, fetched, repositoryKey)
	logger.Info("Repositories: %d saved, %d fetched, %d unsaved", len(snap.Saved), len(fetched), len(snap.Unsaved))
	return snap, nil
}

// SaveRepositories persists repositories.
func (s *SyncService) SaveRepositories(
	ctx context.Context,
	projectID string,
	repos []domain.Repository,
) (domain.SaveResult, error) {
	if projectID == "" {
		return domain.SaveResult{}, domain.NewValidationError("project", "no project selected")
	}
	if len(repos) == 0 {
		return domain.SaveResult{}, domain.NewValidationError("repositories", "select at least one repository to save")
	}

	payload := make([]domain.Repository, len(repos))
	for i, r := range repos {
		r.ProjectID = projectID
		payload[i] = r
	}

	result, err := s.backend.SaveRepositories(ctx, projectID, payload)
	if err != nil {
		return domain.SaveResult{}, fmt.Errorf("save repositories: %w", err)
	}

	logger.Info("Saved %d repositories", result.SavedCount)
	return result, nil
}

// PullRequestContext returns the saved repositories and users of a project.
func (s *SyncService) PullRequestContext(ctx context.Context, projectID string) (*domain.PullRequestContext, error) {
	if projectID == "" {
		return nil, domain.NewValidationError("project", "no project selected")
	}

	repos, err := s.backend.ListRepositories(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list saved repositories: %w", err)
	}

	users, err := s.backend.ListUsers(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list saved users: %w", err)
	}

	return &domain.PullRequestContext{Repositories: repos, Users: users}, nil
}

// LastPullRequestTime returns the creation time of the newest saved pull
// request of repo, or nil when none is saved.
func (s *SyncService) LastPullRequestTime(ctx context.Context, repo domain.Repository) (*time.Time, error) {
	if repo.CodeRepositoryID == "" {
		return nil, domain.NewValidationError("repository", "repository must be saved before syncing pull requests")
	}

	last, err := s.backend.LastPullRequest(ctx, repo.CodeRepositoryID)
	if err != nil {
		return nil, fmt.Errorf("get last pull request: %w", err)
	}
	if last == nil || last.CreatedAt.IsZero() {
		return nil, nil
	}

	since := last.CreatedAt.UTC()
	return &since, nil
}

// FetchPullRequests fetches the pull requests of repo created after since,
// resolves their authors against users and stamps repository and project ids.
func (s *SyncService) FetchPullRequests(
	ctx context.Context,
	provider driven.Provider,
	repo domain.Repository,
	users []domain.User,
	since *time.Time,
) (*domain.PullRequestBatch, error) {
	if provider == nil {
		return nil, domain.NewValidationError("provider", "not connected to a provider")
	}
	if repo.CodeRepositoryID == "" {
		return nil, domain.NewValidationError("repository", "repository must be saved before syncing pull requests")
	}

	if since != nil {
		logger.Info("Fetching pull requests of %s created after %s", repo.FullName, since.Format(time.RFC3339))
	} else {
		logger.Info("Fetching full pull request history of %s", repo.FullName)
	}

	fetched, err := provider.GetPullRequests(ctx, repo, since)
	if err != nil {
		return nil, fmt.Errorf("fetch pull requests: %w", err)
	}

	prs := Window(fetched, since)
	unresolved := ResolveAuthors(prs, users)
	for i := range prs {
		prs[i].CodeRepositoryID = repo.CodeRepositoryID
		prs[i].ProjectID = repo.ProjectID
	}

	if unresolved > 0 {
		logger.Warn("%d of %d pull requests have no saved author", unresolved, len(prs))
	}

	return &domain.PullRequestBatch{
		Repository:   repo,
		Since:        since,
		PullRequests: prs,
		Unresolved:   unresolved,
	}, nil
}

// SyncPullRequests fetches the pull requests of repo newer than the last
// saved one and saves them. An empty batch is success and saves nothing.
func (s *SyncService) SyncPullRequests(
	ctx context.Context,
	provider driven.Provider,
	repo domain.Repository,
) (*domain.PullRequestBatch, error) {
	if repo.ProjectID == "" {
		return nil, domain.NewValidationError("repository", "repository has no project")
	}

	since, err := s.LastPullRequestTime(ctx, repo)
	if err != nil {
		return nil, err
	}

	users, err := s.backend.ListUsers(ctx, repo.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("list saved users: %w", err)
	}

	batch, err := s.FetchPullRequests(ctx, provider, repo, users, since)
	if err != nil {
		return nil, err
	}
	if len(batch.PullRequests) == 0 {
		logger.Info("No new pull requests for %s", repo.FullName)
		return batch, nil
	}

	result, err := s.backend.SavePullRequests(ctx, batch.PullRequests)
	if err != nil {
		return nil, fmt.Errorf("save pull requests: %w", err)
	}
	batch.SavedCount = result.SavedCount

	logger.Info("Saved %d pull requests for %s", result.SavedCount, repo.FullName)
	return batch, nil
}

func requireProject(projectID string, provider driven.Provider) error {
	if projectID == "" {
		return domain.NewValidationError("project", "no project selected")
	}
	if provider == nil {
		return domain.NewValidationError("provider", "not connected to a provider")
	}
	return nil
}
