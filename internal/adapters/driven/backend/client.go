package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/core/ports/driven"
	"github.com/custodia-labs/orgsync/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.Backend = (*Client)(nil)

// DefaultTimeout bounds each backend request.
const DefaultTimeout = 10 * time.Second

// Config holds configuration for the backend client.
type Config struct {
	// BaseURL is the backend root (default: http://localhost:5113).
	BaseURL string
	// Timeout is the per-request timeout (default: 10s).
	Timeout time.Duration
	// HTTPClient overrides the HTTP client.
	HTTPClient *http.Client
}

// Client talks to the backend REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// envelope is the backend response wrapper.
type envelope struct {
	Success   bool                `json:"success"`
	Data      json.RawMessage     `json:"data"`
	Message   string              `json:"message"`
	ErrorCode string              `json:"errorCode"`
	Errors    map[string][]string `json:"errors"`
}

// NewClient creates a new backend client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = domain.DefaultBackendURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	return &Client{
		httpClient: cfg.HTTPClient,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		timeout:    cfg.Timeout,
	}
}

// SaveProject creates or updates a project.
func (c *Client) SaveProject(ctx context.Context, project domain.Project) (*domain.Project, error) {
	var saved domain.Project
	if err := c.do(ctx, http.MethodPost, "/api/project", project, &saved); err != nil {
		return nil, err
	}
	if saved.ProjectID == "" {
		return nil, &domain.BackendError{StatusCode: http.StatusOK, Message: "project saved without an id"}
	}
	return &saved, nil
}

// ListUsers returns the saved users of a project.
func (c *Client) ListUsers(ctx context.Context, projectID string) ([]domain.User, error) {
	users := make([]domain.User, 0)
	if err := c.do(ctx, http.MethodGet, path("api", "user", projectID), nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SaveUsers creates users. Each user carries projectID.
func (c *Client) SaveUsers(ctx context.Context, projectID string, users []domain.User) (domain.SaveResult, error) {
	payload := make([]domain.User, len(users))
	for i, u := range users {
		u.ProjectID = projectID
		payload[i] = u
	}
	return c.save(ctx, "/api/user", payload, len(payload))
}

// ListTeams returns the saved teams of a project.
func (c *Client) ListTeams(ctx context.Context, projectID string) ([]domain.Team, error) {
	teams := make([]domain.Team, 0)
	if err := c.do(ctx, http.MethodGet, path("api", "team", projectID), nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// SaveTeams creates teams. Each team carries projectID.
func (c *Client) SaveTeams(ctx context.Context, projectID string, teams []domain.Team) (domain.SaveResult, error) {
	payload := make([]domain.Team, len(teams))
	for i, t := range teams {
		t.ProjectID = projectID
		payload[i] = t
	}
	return c.save(ctx, "/api/team", payload, len(payload))
}

// ListTeamMembers returns the saved users of a team.
func (c *Client) ListTeamMembers(ctx context.Context, teamID string) ([]domain.User, error) {
	users := make([]domain.User, 0)
	if err := c.do(ctx, http.MethodGet, path("api", "team", teamID, "members"), nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SaveTeamMembers creates team membership records.
func (c *Client) SaveTeamMembers(ctx context.Context, memberships []domain.TeamMembership) (domain.SaveResult, error) {
	return c.save(ctx, "/api/team/members", memberships, len(memberships))
}

// ListRepositories returns the saved repositories of a project.
func (c *Client) ListRepositories(ctx context.Context, projectID string) ([]domain.Repository, error) {
	repos := make([]domain.Repository, 0)
	if err := c.do(ctx, http.MethodGet, path("api", "coderepository", projectID), nil, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// SaveRepositories creates repositories. Each repository carries projectID.
func (c *Client) SaveRepositories(ctx context.Context, projectID string, repos []domain.Repository) (domain.SaveResult, error) {
	payload := make([]domain.Repository, len(repos))
	for i, r := range repos {
		r.ProjectID = projectID
		payload[i] = r
	}
	return c.save(ctx, "/api/coderepository", payload, len(payload))
}

// ListPullRequests returns the saved pull requests of a repository.
func (c *Client) ListPullRequests(ctx context.Context, repoID string) ([]domain.PullRequest, error) {
	prs := make([]domain.PullRequest, 0)
	if err := c.do(ctx, http.MethodGet, path("api", "pullrequest", repoID), nil, &prs); err != nil {
		return nil, err
	}
	return prs, nil
}

// LastPullRequest returns the latest saved pull request of a repository.
// A 404 or a null data field means none has been saved.
func (c *Client) LastPullRequest(ctx context.Context, repoID string) (*domain.PullRequest, error) {
	var pr *domain.PullRequest
	err := c.do(ctx, http.MethodGet, path("api", "pullrequest", repoID, "last"), nil, &pr)
	if err != nil {
		var backendErr *domain.BackendError
		if errors.As(err, &backendErr) && backendErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return pr, nil
}

// SavePullRequests creates pull requests.
func (c *Client) SavePullRequests(ctx context.Context, prs []domain.PullRequest) (domain.SaveResult, error) {
	return c.save(ctx, "/api/pullrequest", prs, len(prs))
}

// save posts a collection. When the backend data carries no savedCount
// the number of posted items is reported.
func (c *Client) save(ctx context.Context, endpoint string, payload any, n int) (domain.SaveResult, error) {
	var data json.RawMessage
	if err := c.do(ctx, http.MethodPost, endpoint, payload, &data); err != nil {
		return domain.SaveResult{}, err
	}

	var result domain.SaveResult
	if err := json.Unmarshal(data, &result); err != nil || result.SavedCount == 0 {
		return domain.SaveResult{SavedCount: n}, nil
	}
	return result, nil
}

// do sends a request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	op := method + " " + endpoint

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.NetworkError{Target: "backend", Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.NetworkError{Target: "backend", Op: op, Err: err}
	}

	logger.Debug("backend: %s -> %d", op, resp.StatusCode)

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newBackendError(resp.StatusCode, env, decodeErr == nil)
	}
	if decodeErr != nil {
		return &domain.BackendError{
			StatusCode: resp.StatusCode,
			Message:    "invalid response body",
			Details:    decodeErr.Error(),
		}
	}
	if !env.Success {
		return newBackendError(resp.StatusCode, env, true)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &domain.BackendError{
			StatusCode: resp.StatusCode,
			Message:    "invalid response data",
			Details:    err.Error(),
		}
	}
	return nil
}

// newBackendError builds a BackendError from an envelope. Field errors
// under "$" are appended to the message.
func newBackendError(status int, env envelope, parsed bool) *domain.BackendError {
	e := &domain.BackendError{
		StatusCode: status,
		Code:       env.ErrorCode,
		Message:    fmt.Sprintf("API request failed with status code: %d", status),
	}
	if !parsed {
		e.Message += " | Failed to parse error response."
		return e
	}
	if env.Message != "" {
		e.Message = env.Message
	}
	if detail := env.Errors["$"]; len(detail) > 0 {
		e.Message += " | Detail: " + detail[0]
	}

	fields := make([]string, 0, len(env.Errors))
	for field := range env.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		lines = append(lines, fmt.Sprintf("%s: %s", field, strings.Join(env.Errors[field], "; ")))
	}
	e.Details = strings.Join(lines, "\n")
	return e
}

// path joins escaped segments into an absolute path.
func path(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(escaped, "/")
}
