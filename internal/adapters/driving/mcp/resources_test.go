package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

func TestExtractRepositoryID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid last pull request URI",
			uri:      "orgsync://repositories/repo-123/last-pull-request",
			expected: "repo-123",
		},
		{
			name:     "invalid prefix",
			uri:      "file://repositories/repo-123/last-pull-request",
			expected: "",
		},
		{
			name:     "missing suffix",
			uri:      "orgsync://repositories/repo-123",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractRepositoryID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleUsersResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns saved users", func(t *testing.T) {
		server := newTestServer(t, &mockSyncService{
			prCtx: &domain.PullRequestContext{
				Users: []domain.User{{NodeID: "n1", UserID: "u1", UserName: "octocat"}},
			},
		})

		result, err := server.handleUsersResource(ctx, makeReadResourceRequest("orgsync://users"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, `"user_name": "octocat"`)
		assert.Contains(t, result.Contents[0].Text, `"user_id": "u1"`)
	})

	t.Run("empty project gives empty list", func(t *testing.T) {
		server := newTestServer(t, &mockSyncService{prCtx: &domain.PullRequestContext{}})

		result, err := server.handleUsersResource(ctx, makeReadResourceRequest("orgsync://users"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns error on backend failure", func(t *testing.T) {
		server := newTestServer(t, &mockSyncService{err: errors.New("backend down")})

		_, err := server.handleUsersResource(ctx, makeReadResourceRequest("orgsync://users"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing users")
	})
}

func TestServer_handleRepositoriesResource(t *testing.T) {
	server := newTestServer(t, &mockSyncService{
		prCtx: &domain.PullRequestContext{
			Repositories: []domain.Repository{{CodeRepositoryID: "r1", FullName: "acme/api"}},
		},
	})

	result, err := server.handleRepositoriesResource(context.Background(), makeReadResourceRequest("orgsync://repositories"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Contains(t, result.Contents[0].Text, `"full_name": "acme/api"`)
}

func TestServer_handleLastPullRequestResource(t *testing.T) {
	ctx := context.Background()
	repos := &domain.PullRequestContext{
		Repositories: []domain.Repository{{CodeRepositoryID: "r1", FullName: "acme/api"}},
	}

	t.Run("returns last pull request time", func(t *testing.T) {
		last := time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)
		server := newTestServer(t, &mockSyncService{prCtx: repos, last: &last})

		result, err := server.handleLastPullRequestResource(ctx,
			makeReadResourceRequest("orgsync://repositories/r1/last-pull-request"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"found": true`)
		assert.Contains(t, result.Contents[0].Text, "2024-05-02T08:30:00Z")
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server := newTestServer(t, &mockSyncService{prCtx: repos})

		_, err := server.handleLastPullRequestResource(ctx, makeReadResourceRequest("orgsync://invalid/uri"))

		require.Error(t, err)
	})

	t.Run("unknown repository returns not found", func(t *testing.T) {
		server := newTestServer(t, &mockSyncService{prCtx: repos})

		_, err := server.handleLastPullRequestResource(ctx,
			makeReadResourceRequest("orgsync://repositories/r9/last-pull-request"))

		require.Error(t, err)
	})

	t.Run("backend failure is not reported as not found", func(t *testing.T) {
		server := newTestServer(t, &mockSyncService{err: errors.New("backend down")})

		_, err := server.handleLastPullRequestResource(ctx,
			makeReadResourceRequest("orgsync://repositories/r1/last-pull-request"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "backend down")
	})
}
