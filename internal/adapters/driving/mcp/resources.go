package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for orgsync resources.
	uriScheme = "orgsync://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "users",
		Name:        "users",
		Description: "Organisation members saved in the backend",
		MIMEType:    "application/json",
	}, s.handleUsersResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "repositories",
		Name:        "repositories",
		Description: "Repositories saved in the backend",
		MIMEType:    "application/json",
	}, s.handleRepositoriesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "repositories/{repositoryId}/last-pull-request",
		Name:        "last-pull-request",
		Description: "Creation time of the newest saved pull request of a repository",
		MIMEType:    "application/json",
	}, s.handleLastPullRequestResource)
}

// handleUsersResource returns the saved users of the project.
func (s *Server) handleUsersResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	users, err := runTask(s, "read users", func(ctx context.Context) ([]UserOutput, error) {
		prCtx, err := s.pullRequestContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing users: %w", err)
		}
		return toUsers(prCtx.Users), nil
	})
	if err != nil {
		return nil, err
	}

	return jsonResource(req.Params.URI, users)
}

// handleRepositoriesResource returns the saved repositories of the project.
func (s *Server) handleRepositoriesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	repos, err := runTask(s, "read repositories", func(ctx context.Context) ([]RepositoryOutput, error) {
		prCtx, err := s.pullRequestContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing repositories: %w", err)
		}
		return toRepositories(prCtx.Repositories), nil
	})
	if err != nil {
		return nil, err
	}

	return jsonResource(req.Params.URI, repos)
}

// handleLastPullRequestResource returns the last pull request time of a repository.
func (s *Server) handleLastPullRequestResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// orgsync://repositories/{repositoryId}/last-pull-request
	repoID := extractRepositoryID(req.Params.URI)
	if repoID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	type result struct {
		out   LastPullRequestOutput
		found bool
	}

	res, err := runTask(s, "read last pull request", func(ctx context.Context) (result, error) {
		prCtx, err := s.pullRequestContext(ctx)
		if err != nil {
			return result{}, fmt.Errorf("listing repositories: %w", err)
		}
		repo, ok := findRepository(prCtx.Repositories, repoID)
		if !ok {
			return result{}, nil
		}

		since, err := s.ports.Sync.LastPullRequestTime(ctx, repo)
		if err != nil {
			return result{}, fmt.Errorf("getting last pull request: %w", err)
		}

		out := LastPullRequestOutput{Repository: repo.FullName}
		if since != nil {
			out.Found = true
			out.CreatedAt = since.UTC().Format(time.RFC3339)
		}
		return result{out: out, found: true}, nil
	})
	if err != nil {
		return nil, err
	}
	if !res.found {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return jsonResource(req.Params.URI, res.out)
}

// pullRequestContext opens the session and loads the saved repositories and users.
func (s *Server) pullRequestContext(ctx context.Context) (*domain.PullRequestContext, error) {
	_, projectID, err := s.ports.Session(ctx)
	if err != nil {
		return nil, err
	}
	return s.ports.Sync.PullRequestContext(ctx, projectID)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRepositoryID extracts the repository ID from a URI like
// orgsync://repositories/{repositoryId}/last-pull-request.
func extractRepositoryID(uri string) string {
	const prefix = uriScheme + "repositories/"
	const suffix = "/last-pull-request"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
