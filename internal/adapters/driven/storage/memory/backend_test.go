package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

func TestBackend_SaveProject(t *testing.T) {
	b := NewBackend()
	ctx := context.Background()

	first, err := b.SaveProject(ctx, domain.Project{NodeID: "O_1", ProjectName: "acme"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ProjectID)

	again, err := b.SaveProject(ctx, domain.Project{NodeID: "O_1", ProjectName: "acme-renamed"})
	require.NoError(t, err)
	assert.Equal(t, first.ProjectID, again.ProjectID)
	assert.Equal(t, "acme-renamed", again.ProjectName)
}

func TestBackend_Users(t *testing.T) {
	b := NewBackend()
	ctx := context.Background()

	result, err := b.SaveUsers(ctx, "p1", []domain.User{{NodeID: "a", UserName: "alice"}, {NodeID: "b", UserName: "bob"}})
	require.NoError(t, err)
	assert.Equal(t, 2, result.SavedCount)

	_, err = b.SaveUsers(ctx, "p2", []domain.User{{NodeID: "a", UserName: "alice"}})
	require.NoError(t, err)

	users, err := b.ListUsers(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].UserName)
	assert.NotEmpty(t, users[0].UserID)
	assert.Equal(t, "p1", users[0].ProjectID)

	t.Run("upsert keeps id", func(t *testing.T) {
		_, err := b.SaveUsers(ctx, "p1", []domain.User{{NodeID: "a", UserName: "ali"}})
		require.NoError(t, err)

		users, err := b.ListUsers(ctx, "p1")
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "ali", users[0].UserName)
	})

	t.Run("empty project", func(t *testing.T) {
		users, err := b.ListUsers(ctx, "missing")
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})
}

func TestBackend_TeamMembers(t *testing.T) {
	b := NewBackend()
	ctx := context.Background()

	_, err := b.SaveUsers(ctx, "p1", []domain.User{{NodeID: "a"}, {NodeID: "b"}})
	require.NoError(t, err)
	_, err = b.SaveTeams(ctx, "p1", []domain.Team{{NodeID: "T_1", TeamName: "core"}})
	require.NoError(t, err)

	users, _ := b.ListUsers(ctx, "p1")
	teams, _ := b.ListTeams(ctx, "p1")
	require.Len(t, teams, 1)
	teamID := teams[0].TeamID

	result, err := b.SaveTeamMembers(ctx, []domain.TeamMembership{
		{TeamID: teamID, UserID: users[0].UserID},
		{TeamID: teamID, UserID: users[0].UserID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SavedCount)

	members, err := b.ListTeamMembers(ctx, teamID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "a", members[0].NodeID)
}

func TestBackend_Repositories(t *testing.T) {
	b := NewBackend()
	ctx := context.Background()

	_, err := b.SaveRepositories(ctx, "p1", []domain.Repository{{NodeID: "R_1", FullName: "acme/api"}})
	require.NoError(t, err)

	repos, err := b.ListRepositories(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.NotEmpty(t, repos[0].CodeRepositoryID)
}

func TestBackend_PullRequests(t *testing.T) {
	b := NewBackend()
	ctx := context.Background()

	last, err := b.LastPullRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, last)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prs := []domain.PullRequest{
		{NodeID: "1", CodeRepositoryID: "r1", CreatedAt: base},
		{NodeID: "2", CodeRepositoryID: "r1", CreatedAt: base.Add(48 * time.Hour)},
		{NodeID: "3", CodeRepositoryID: "r1", CreatedAt: base.Add(24 * time.Hour)},
		{NodeID: "9", CodeRepositoryID: "r2", CreatedAt: base.Add(96 * time.Hour)},
	}
	result, err := b.SavePullRequests(ctx, prs)
	require.NoError(t, err)
	assert.Equal(t, 4, result.SavedCount)

	last, err = b.LastPullRequest(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "2", last.NodeID)

	t.Run("append only", func(t *testing.T) {
		result, err := b.SavePullRequests(ctx, []domain.PullRequest{{NodeID: "1", CodeRepositoryID: "r1", State: "MERGED"}})
		require.NoError(t, err)
		assert.Equal(t, 0, result.SavedCount)

		listed, err := b.ListPullRequests(ctx, "r1")
		require.NoError(t, err)
		assert.Len(t, listed, 3)
	})
}

func TestBackend_ConcurrentSaves(t *testing.T) {
	b := NewBackend()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = b.SaveUsers(ctx, "p1", []domain.User{{NodeID: string(rune('a' + n))}})
		}(i)
	}
	wg.Wait()

	users, err := b.ListUsers(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, users, 20)
}
