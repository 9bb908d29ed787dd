package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/core/services"
)

func TestServer_handleFetchUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("returns saved and unsaved users", func(t *testing.T) {
		sync := &mockSyncService{
			users: &domain.Snapshot[domain.User]{
				Saved:   []domain.User{{NodeID: "n1", UserID: "u1", UserName: "octocat", DisplayName: "Octo Cat"}},
				Unsaved: []domain.User{{NodeID: "n2", UserName: "hubot"}},
			},
		}
		server := newTestServer(t, sync)

		_, output, err := server.handleFetchUsers(ctx, nil, EmptyInput{})

		require.NoError(t, err)
		require.Len(t, output.Saved, 1)
		require.Len(t, output.Unsaved, 1)
		assert.Equal(t, "u1", output.Saved[0].UserID)
		assert.Equal(t, "Octo Cat", output.Saved[0].DisplayName)
		assert.Equal(t, "hubot", output.Unsaved[0].UserName)
		assert.Equal(t, []string{"proj-1"}, sync.projectIDs)
	})

	t.Run("empty snapshot gives empty lists", func(t *testing.T) {
		server := newTestServer(t, &mockSyncService{users: &domain.Snapshot[domain.User]{}})

		_, output, err := server.handleFetchUsers(ctx, nil, EmptyInput{})

		require.NoError(t, err)
		assert.NotNil(t, output.Saved)
		assert.NotNil(t, output.Unsaved)
		assert.Empty(t, output.Saved)
	})

	t.Run("returns provider error", func(t *testing.T) {
		providerErr := &domain.ProviderError{Provider: domain.ProviderGitHub, Kind: domain.KindAuth, StatusCode: 401}
		server := newTestServer(t, &mockSyncService{err: providerErr})

		_, _, err := server.handleFetchUsers(ctx, nil, EmptyInput{})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrProviderAuth)
	})

	t.Run("returns session error", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Sync:    &mockSyncService{},
			Session: failingSession(errors.New("not logged in")),
			Tasks:   newRecordingRunner(t),
		})
		require.NoError(t, err)

		_, _, err = server.handleFetchUsers(ctx, nil, EmptyInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not logged in")
	})
}

func TestServer_handleFetchTeams(t *testing.T) {
	sync := &mockSyncService{
		teams: &domain.Snapshot[domain.Team]{
			Saved:   []domain.Team{{NodeID: "custom-1", TeamID: "t1", TeamName: "Platform"}},
			Unsaved: []domain.Team{{NodeID: "T_2", TeamName: "Mobile", Description: "apps"}},
		},
	}
	server := newTestServer(t, sync)

	_, output, err := server.handleFetchTeams(context.Background(), nil, EmptyInput{})

	require.NoError(t, err)
	require.Len(t, output.Saved, 1)
	assert.True(t, output.Saved[0].Custom)
	assert.Equal(t, "Platform", output.Saved[0].Name)
	require.Len(t, output.Unsaved, 1)
	assert.False(t, output.Unsaved[0].Custom)
	assert.Equal(t, "apps", output.Unsaved[0].Description)
}

func TestServer_handleFetchRepositories(t *testing.T) {
	sync := &mockSyncService{
		repos: &domain.Snapshot[domain.Repository]{
			Saved: []domain.Repository{},
			Unsaved: []domain.Repository{
				{NodeID: "R_1", FullName: "acme/api", DefaultBranch: "main"},
			},
		},
	}
	server := newTestServer(t, sync)

	_, output, err := server.handleFetchRepositories(context.Background(), nil, EmptyInput{})

	require.NoError(t, err)
	assert.Empty(t, output.Saved)
	require.Len(t, output.Unsaved, 1)
	assert.Equal(t, "acme/api", output.Unsaved[0].FullName)
	assert.Equal(t, "main", output.Unsaved[0].DefaultBranch)
}

func TestServer_handleTeamMembers(t *testing.T) {
	ctx := context.Background()
	saved := []domain.Team{{NodeID: "T_1", TeamID: "t1", TeamName: "Platform"}}

	t.Run("resolves team by name", func(t *testing.T) {
		sync := &mockSyncService{
			teams: &domain.Snapshot[domain.Team]{Saved: saved},
			members: &domain.TeamMemberView{
				Team:      saved[0],
				Members:   []domain.User{{NodeID: "n1", UserName: "octocat"}},
				Available: []domain.User{{NodeID: "n2", UserName: "hubot"}},
			},
		}
		server := newTestServer(t, sync)

		_, output, err := server.handleTeamMembers(ctx, nil, TeamMembersInput{Team: "platform"})

		require.NoError(t, err)
		assert.Equal(t, "t1", sync.memberTeam.TeamID)
		assert.Equal(t, "Platform", output.Team.Name)
		require.Len(t, output.Members, 1)
		require.Len(t, output.Available, 1)
		assert.Equal(t, "hubot", output.Available[0].UserName)
	})

	t.Run("unknown team", func(t *testing.T) {
		server := newTestServer(t, &mockSyncService{teams: &domain.Snapshot[domain.Team]{Saved: saved}})

		_, _, err := server.handleTeamMembers(ctx, nil, TeamMembersInput{Team: "Mobile"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), `no saved team "Mobile"`)
	})

	t.Run("empty team is invalid", func(t *testing.T) {
		server := newTestServer(t, &mockSyncService{})

		_, _, err := server.handleTeamMembers(ctx, nil, TeamMembersInput{Team: "  "})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleLastPullRequest(t *testing.T) {
	ctx := context.Background()
	repos := []domain.Repository{{CodeRepositoryID: "r1", FullName: "acme/api"}}

	t.Run("returns creation time", func(t *testing.T) {
		last := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		sync := &mockSyncService{
			prCtx: &domain.PullRequestContext{Repositories: repos},
			last:  &last,
		}
		server := newTestServer(t, sync)

		_, output, err := server.handleLastPullRequest(ctx, nil, LastPullRequestInput{Repository: "ACME/api"})

		require.NoError(t, err)
		assert.Equal(t, "r1", sync.lastRepo.CodeRepositoryID)
		assert.True(t, output.Found)
		assert.Equal(t, "2024-03-01T12:00:00Z", output.CreatedAt)
	})

	t.Run("no saved pull requests", func(t *testing.T) {
		server := newTestServer(t, &mockSyncService{prCtx: &domain.PullRequestContext{Repositories: repos}})

		_, output, err := server.handleLastPullRequest(ctx, nil, LastPullRequestInput{Repository: "r1"})

		require.NoError(t, err)
		assert.False(t, output.Found)
		assert.Empty(t, output.CreatedAt)
		assert.Equal(t, "acme/api", output.Repository)
	})

	t.Run("unknown repository", func(t *testing.T) {
		server := newTestServer(t, &mockSyncService{prCtx: &domain.PullRequestContext{Repositories: repos}})

		_, _, err := server.handleLastPullRequest(ctx, nil, LastPullRequestInput{Repository: "acme/web"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no saved repository")
	})

	t.Run("empty repository is invalid", func(t *testing.T) {
		server := newTestServer(t, &mockSyncService{})

		_, _, err := server.handleLastPullRequest(ctx, nil, LastPullRequestInput{})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_HandlersRunAsTasks(t *testing.T) {
	ctx := context.Background()
	runner := newRecordingRunner(t)
	server, err := NewServer(&Ports{
		Sync: &mockSyncService{
			users: &domain.Snapshot[domain.User]{},
			prCtx: &domain.PullRequestContext{},
		},
		Session: fixedSession(),
		Tasks:   runner,
	})
	require.NoError(t, err)

	_, _, err = server.handleFetchUsers(ctx, nil, EmptyInput{})
	require.NoError(t, err)
	_, err = server.handleRepositoriesResource(ctx, makeReadResourceRequest("orgsync://repositories"))
	require.NoError(t, err)

	assert.Equal(t, []string{"fetch users", "read repositories"}, runner.Names())

	t.Run("closed runner fails the call", func(t *testing.T) {
		runner.pool.Close()

		_, _, err := server.handleFetchUsers(ctx, nil, EmptyInput{})

		assert.ErrorIs(t, err, services.ErrPoolClosed)
	})
}
