package mcp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/core/ports/driven"
	"github.com/custodia-labs/orgsync/internal/core/ports/driving"
	"github.com/custodia-labs/orgsync/internal/core/services"
)

// mockSyncService is a mock implementation of driving.SyncService.
type mockSyncService struct {
	users   *domain.Snapshot[domain.User]
	teams   *domain.Snapshot[domain.Team]
	repos   *domain.Snapshot[domain.Repository]
	members *domain.TeamMemberView
	prCtx   *domain.PullRequestContext
	last    *time.Time
	err     error

	memberTeam domain.Team
	lastRepo   domain.Repository
	projectIDs []string
}

func (m *mockSyncService) Connect(
	_ context.Context,
	_ domain.ProviderType,
	_, _ string,
) (*domain.Session, driven.Provider, error) {
	return nil, nil, m.err
}

func (m *mockSyncService) FetchUsers(
	_ context.Context,
	projectID string,
	_ driven.Provider,
) (*domain.Snapshot[domain.User], error) {
	m.projectIDs = append(m.projectIDs, projectID)
	return m.users, m.err
}

func (m *mockSyncService) SaveUsers(_ context.Context, _ string, _ []domain.User, _ []string) (domain.SaveResult, error) {
	return domain.SaveResult{}, m.err
}

func (m *mockSyncService) FetchTeams(
	_ context.Context,
	projectID string,
	_ driven.Provider,
) (*domain.Snapshot[domain.Team], error) {
	m.projectIDs = append(m.projectIDs, projectID)
	return m.teams, m.err
}

func (m *mockSyncService) CreateTeam(_, _ string) (domain.Team, error) {
	return domain.Team{}, m.err
}

func (m *mockSyncService) SaveTeams(_ context.Context, _ string, _ []domain.Team) (domain.SaveResult, error) {
	return domain.SaveResult{}, m.err
}

func (m *mockSyncService) FetchTeamMembers(
	_ context.Context,
	_ string,
	team domain.Team,
	_ driven.Provider,
) (*domain.TeamMemberView, error) {
	m.memberTeam = team
	return m.members, m.err
}

func (m *mockSyncService) SaveTeamMembers(_ context.Context, _ domain.Team, _ []domain.User) (domain.SaveResult, error) {
	return domain.SaveResult{}, m.err
}

func (m *mockSyncService) FetchRepositories(
	_ context.Context,
	projectID string,
	_ driven.Provider,
) (*domain.Snapshot[domain.Repository], error) {
	m.projectIDs = append(m.projectIDs, projectID)
	return m.repos, m.err
}

func (m *mockSyncService) SaveRepositories(
	_ context.Context,
	_ string,
	_ []domain.Repository,
) (domain.SaveResult, error) {
	return domain.SaveResult{}, m.err
}

func (m *mockSyncService) PullRequestContext(_ context.Context, _ string) (*domain.PullRequestContext, error) {
	return m.prCtx, m.err
}

func (m *mockSyncService) LastPullRequestTime(_ context.Context, repo domain.Repository) (*time.Time, error) {
	m.lastRepo = repo
	return m.last, nil
}

func (m *mockSyncService) FetchPullRequests(
	_ context.Context,
	_ driven.Provider,
	_ domain.Repository,
	_ []domain.User,
	_ *time.Time,
) (*domain.PullRequestBatch, error) {
	return nil, m.err
}

func (m *mockSyncService) SyncPullRequests(
	_ context.Context,
	_ driven.Provider,
	_ domain.Repository,
) (*domain.PullRequestBatch, error) {
	return nil, m.err
}

// fixedSession returns a session opener for project proj-1 without a provider.
func fixedSession() SessionFunc {
	return func(_ context.Context) (driven.Provider, string, error) {
		return nil, "proj-1", nil
	}
}

// failingSession returns a session opener that always fails with err.
func failingSession(err error) SessionFunc {
	return func(_ context.Context) (driven.Provider, string, error) {
		return nil, "", err
	}
}

// recordingRunner runs tasks on a worker pool and records their names.
type recordingRunner struct {
	pool *services.WorkerPool

	mu    sync.Mutex
	names []string
}

func newRecordingRunner(t *testing.T) *recordingRunner {
	t.Helper()
	pool := services.NewWorkerPool(2)
	t.Cleanup(pool.Close)
	return &recordingRunner{pool: pool}
}

func (r *recordingRunner) Submit(name string, task driving.Task) <-chan driving.Outcome {
	r.mu.Lock()
	r.names = append(r.names, name)
	r.mu.Unlock()
	return r.pool.Submit(name, task)
}

func (r *recordingRunner) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

func newTestServer(t *testing.T, syncService *mockSyncService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{
		Sync:    syncService,
		Session: fixedSession(),
		Tasks:   newRecordingRunner(t),
	})
	require.NoError(t, err)
	return server
}
