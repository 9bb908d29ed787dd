package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/core/services"
)

// EmptyInput is the input schema for tools without arguments.
type EmptyInput struct{}

// UserOutput is a member of the organisation.
type UserOutput struct {
	NodeID      string `json:"node_id"`
	UserID      string `json:"user_id,omitempty"`
	UserName    string `json:"user_name"`
	DisplayName string `json:"display_name"`
}

// UsersOutput is the output schema for the fetch_users tool.
type UsersOutput struct {
	Saved   []UserOutput `json:"saved"`
	Unsaved []UserOutput `json:"unsaved"`
}

// TeamOutput is a team.
type TeamOutput struct {
	NodeID      string `json:"node_id"`
	TeamID      string `json:"team_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Custom      bool   `json:"custom"`
}

// TeamsOutput is the output schema for the fetch_teams tool.
type TeamsOutput struct {
	Saved   []TeamOutput `json:"saved"`
	Unsaved []TeamOutput `json:"unsaved"`
}

// RepositoryOutput is a code repository.
type RepositoryOutput struct {
	NodeID        string `json:"node_id"`
	RepositoryID  string `json:"repository_id,omitempty"`
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch,omitempty"`
}

// RepositoriesOutput is the output schema for the fetch_repositories tool.
type RepositoriesOutput struct {
	Saved   []RepositoryOutput `json:"saved"`
	Unsaved []RepositoryOutput `json:"unsaved"`
}

// TeamMembersInput is the input schema for the team_members tool.
type TeamMembersInput struct {
	Team string `json:"team" jsonschema:"name or id of a saved team"`
}

// TeamMembersOutput is the output schema for the team_members tool.
type TeamMembersOutput struct {
	Team      TeamOutput   `json:"team"`
	Members   []UserOutput `json:"members"`
	Available []UserOutput `json:"available"`
}

// LastPullRequestInput is the input schema for the last_pull_request tool.
type LastPullRequestInput struct {
	Repository string `json:"repository" jsonschema:"full name or id of a saved repository"`
}

// LastPullRequestOutput is the output schema for the last_pull_request tool.
type LastPullRequestOutput struct {
	Repository string `json:"repository"`
	Found      bool   `json:"found"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "fetch_users",
		Description: "List saved organisation members and provider members not yet saved",
	}, s.handleFetchUsers)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "fetch_teams",
		Description: "List saved teams and provider teams not yet saved",
	}, s.handleFetchTeams)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "fetch_repositories",
		Description: "List saved repositories and provider repositories not yet saved",
	}, s.handleFetchRepositories)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "team_members",
		Description: "List the members of a saved team and the saved users that may join it",
	}, s.handleTeamMembers)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "last_pull_request",
		Description: "Show when the newest saved pull request of a repository was created",
	}, s.handleLastPullRequest)
}

func (s *Server) handleFetchUsers(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, UsersOutput, error) {
	out, err := runTask(s, "fetch users", func(ctx context.Context) (UsersOutput, error) {
		provider, projectID, err := s.ports.Session(ctx)
		if err != nil {
			return UsersOutput{}, err
		}

		snap, err := s.ports.Sync.FetchUsers(ctx, projectID, provider)
		if err != nil {
			return UsersOutput{}, err
		}

		return UsersOutput{
			Saved:   toUsers(snap.Saved),
			Unsaved: toUsers(snap.Unsaved),
		}, nil
	})
	return nil, out, err
}

func (s *Server) handleFetchTeams(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, TeamsOutput, error) {
	out, err := runTask(s, "fetch teams", func(ctx context.Context) (TeamsOutput, error) {
		provider, projectID, err := s.ports.Session(ctx)
		if err != nil {
			return TeamsOutput{}, err
		}

		snap, err := s.ports.Sync.FetchTeams(ctx, projectID, provider)
		if err != nil {
			return TeamsOutput{}, err
		}

		return TeamsOutput{
			Saved:   toTeams(snap.Saved),
			Unsaved: toTeams(snap.Unsaved),
		}, nil
	})
	return nil, out, err
}

func (s *Server) handleFetchRepositories(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, RepositoriesOutput, error) {
	out, err := runTask(s, "fetch repositories", func(ctx context.Context) (RepositoriesOutput, error) {
		provider, projectID, err := s.ports.Session(ctx)
		if err != nil {
			return RepositoriesOutput{}, err
		}

		snap, err := s.ports.Sync.FetchRepositories(ctx, projectID, provider)
		if err != nil {
			return RepositoriesOutput{}, err
		}

		return RepositoriesOutput{
			Saved:   toRepositories(snap.Saved),
			Unsaved: toRepositories(snap.Unsaved),
		}, nil
	})
	return nil, out, err
}

func (s *Server) handleTeamMembers(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input TeamMembersInput,
) (*mcp.CallToolResult, TeamMembersOutput, error) {
	key := strings.TrimSpace(input.Team)
	if key == "" {
		return nil, TeamMembersOutput{}, domain.NewValidationError("team", "team is required")
	}

	out, err := runTask(s, "fetch team members", func(ctx context.Context) (TeamMembersOutput, error) {
		provider, projectID, err := s.ports.Session(ctx)
		if err != nil {
			return TeamMembersOutput{}, err
		}

		snap, err := s.ports.Sync.FetchTeams(ctx, projectID, provider)
		if err != nil {
			return TeamMembersOutput{}, err
		}

		team, ok := findTeam(snap.Saved, key)
		if !ok {
			return TeamMembersOutput{}, fmt.Errorf("no saved team %q", key)
		}

		view, err := s.ports.Sync.FetchTeamMembers(ctx, projectID, team, provider)
		if err != nil {
			return TeamMembersOutput{}, err
		}

		return TeamMembersOutput{
			Team:      toTeam(view.Team),
			Members:   toUsers(view.Members),
			Available: toUsers(view.Available),
		}, nil
	})
	return nil, out, err
}

func (s *Server) handleLastPullRequest(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input LastPullRequestInput,
) (*mcp.CallToolResult, LastPullRequestOutput, error) {
	key := strings.TrimSpace(input.Repository)
	if key == "" {
		return nil, LastPullRequestOutput{}, domain.NewValidationError("repository", "repository is required")
	}

	out, err := runTask(s, "last pull request", func(ctx context.Context) (LastPullRequestOutput, error) {
		return s.lastPullRequest(ctx, key)
	})
	return nil, out, err
}

// lastPullRequest reports the newest saved pull request time of a saved repository.
func (s *Server) lastPullRequest(ctx context.Context, key string) (LastPullRequestOutput, error) {
	repo, err := s.savedRepository(ctx, key)
	if err != nil {
		return LastPullRequestOutput{}, err
	}

	since, err := s.ports.Sync.LastPullRequestTime(ctx, repo)
	if err != nil {
		return LastPullRequestOutput{}, err
	}

	out := LastPullRequestOutput{Repository: repo.FullName}
	if since != nil {
		out.Found = true
		out.CreatedAt = since.UTC().Format(time.RFC3339)
	}
	return out, nil
}

// runTask runs fn as one task on the server's task runner and waits for it.
func runTask[T any](s *Server, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	return services.Await[T](services.Dispatch(s.ports.Tasks, name, fn))
}

// savedRepository finds a saved repository by full name or id.
func (s *Server) savedRepository(ctx context.Context, key string) (domain.Repository, error) {
	prCtx, err := s.pullRequestContext(ctx)
	if err != nil {
		return domain.Repository{}, err
	}

	repo, ok := findRepository(prCtx.Repositories, key)
	if !ok {
		return domain.Repository{}, fmt.Errorf("no saved repository %q", key)
	}
	return repo, nil
}

func findRepository(repos []domain.Repository, key string) (domain.Repository, bool) {
	for _, r := range repos {
		if strings.EqualFold(r.FullName, key) || r.CodeRepositoryID == key {
			return r, true
		}
	}
	return domain.Repository{}, false
}

func findTeam(teams []domain.Team, key string) (domain.Team, bool) {
	for _, t := range teams {
		if strings.EqualFold(t.TeamName, key) || t.TeamID == key || t.NodeID == key {
			return t, true
		}
	}
	return domain.Team{}, false
}

func toUsers(users []domain.User) []UserOutput {
	out := make([]UserOutput, len(users))
	for i, u := range users {
		out[i] = UserOutput{
			NodeID:      u.NodeID,
			UserID:      u.UserID,
			UserName:    u.UserName,
			DisplayName: u.DisplayName,
		}
	}
	return out
}

func toTeam(t domain.Team) TeamOutput {
	return TeamOutput{
		NodeID:      t.NodeID,
		TeamID:      t.TeamID,
		Name:        t.TeamName,
		Description: t.Description,
		Custom:      t.IsCustom(),
	}
}

func toTeams(teams []domain.Team) []TeamOutput {
	out := make([]TeamOutput, len(teams))
	for i, t := range teams {
		out[i] = toTeam(t)
	}
	return out
}

func toRepositories(repos []domain.Repository) []RepositoryOutput {
	out := make([]RepositoryOutput, len(repos))
	for i, r := range repos {
		out[i] = RepositoryOutput{
			NodeID:        r.NodeID,
			RepositoryID:  r.CodeRepositoryID,
			FullName:      r.FullName,
			DefaultBranch: r.DefaultBranch,
		}
	}
	return out
}
