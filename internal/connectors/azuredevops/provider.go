package azuredevops

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/core/ports/driven"
	"github.com/custodia-labs/orgsync/internal/logger"
)

// Verify interface compliance.
var _ driven.Provider = (*Provider)(nil)

// Provider reads organisation metadata from one Azure DevOps project.
// The scope is validated on every call, not at construction.
type Provider struct {
	scope  string
	client *Client
}

// New creates an Azure DevOps provider. It performs no network I/O.
func New(scope, token string, cfg Config) *Provider {
	return &Provider{
		scope:  strings.TrimSpace(scope),
		client: NewClient(token, cfg),
	}
}

// Type returns the provider type.
func (p *Provider) Type() domain.ProviderType {
	return domain.ProviderAzureDevOps
}

// Scope returns the "organization/project" scope.
func (p *Provider) Scope() string {
	return p.scope
}

type projectResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	LastUpdateTime Timestamp `json:"lastUpdateTime"`
}

// GetOrganization fetches the project named by the scope.
func (p *Provider) GetOrganization(ctx context.Context) (*domain.Project, error) {
	org, project, err := SplitScope(p.scope)
	if err != nil {
		return nil, err
	}

	var resp projectResponse
	rawURL := endpoint(p.client.cfg.BaseURL, org, "_apis", "projects", project)
	if err := p.client.getJSON(ctx, "Organization '"+p.scope+"'", p.client.cfg.MetadataTimeout, rawURL, apiVersion(APIVersion), &resp); err != nil {
		return nil, err
	}

	result := &domain.Project{
		NodeID:      resp.ID,
		ProjectName: resp.Name,
		DisplayName: resp.Name,
		CreatedAt:   resp.LastUpdateTime.Time,
		UpdatedAt:   resp.LastUpdateTime.Time,
		Provider:    domain.ProviderAzureDevOps,
	}
	if result.NodeID == "" {
		result.NodeID = "node-" + project
	}
	if result.ProjectName == "" {
		result.ProjectName = project
		result.DisplayName = project
	}
	if result.CreatedAt.IsZero() {
		now := time.Now().UTC()
		result.CreatedAt = now
		result.UpdatedAt = now
	}
	return result, nil
}

type entitlementsResponse struct {
	Members           []entitlement `json:"members"`
	ContinuationToken string        `json:"continuationToken"`
}

type entitlement struct {
	ID   string `json:"id"`
	User struct {
		DisplayName    string `json:"displayName"`
		DirectoryAlias string `json:"directoryAlias"`
		PrincipalName  string `json:"principalName"`
		Links          struct {
			Avatar struct {
				Href string `json:"href"`
			} `json:"avatar"`
		} `json:"_links"`
	} `json:"user"`
	DateCreated      Timestamp `json:"dateCreated"`
	LastAccessedDate Timestamp `json:"lastAccessedDate"`
}

// GetUsers lists the organisation's user entitlements, following the
// continuation token until it is empty.
func (p *Provider) GetUsers(ctx context.Context) ([]domain.User, error) {
	org, _, err := SplitScope(p.scope)
	if err != nil {
		return nil, err
	}

	rawURL := endpoint(p.client.cfg.EntitlementsURL, org, "_apis", "userentitlements")
	users := make([]domain.User, 0)
	seenTokens := make(map[string]bool)
	token := ""

	for {
		query := apiVersion(APIVersion)
		if token != "" {
			query.Set("continuationToken", token)
		}

		var resp entitlementsResponse
		if err := p.client.getJSON(ctx, "Organization '"+p.scope+"' members", p.client.cfg.BulkTimeout, rawURL, query, &resp); err != nil {
			return nil, err
		}

		for _, m := range resp.Members {
			users = append(users, toUser(m))
		}

		// A repeated token would loop forever.
		if resp.ContinuationToken == "" || seenTokens[resp.ContinuationToken] {
			break
		}
		seenTokens[resp.ContinuationToken] = true
		token = resp.ContinuationToken
	}

	return users, nil
}

func toUser(m entitlement) domain.User {
	userName := m.User.DirectoryAlias
	if userName == "" {
		userName = m.User.PrincipalName
	}
	return domain.User{
		NodeID:      domain.NormalizeID(m.ID),
		UserName:    userName,
		DisplayName: m.User.DisplayName,
		AvatarURL:   m.User.Links.Avatar.Href,
		CreatedAt:   m.DateCreated.Time,
		UpdatedAt:   m.LastAccessedDate.Time,
	}
}

type teamResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GetTeams lists the project's teams, following $skip/$top pages.
func (p *Provider) GetTeams(ctx context.Context) ([]domain.Team, error) {
	org, project, err := SplitScope(p.scope)
	if err != nil {
		return nil, err
	}

	rawURL := endpoint(p.client.cfg.BaseURL, org, "_apis", "projects", project, "teams")
	values, err := pageAll[teamResponse](ctx, p.client, "Organization '"+p.scope+"' teams", rawURL, apiVersion(APIVersion))
	if err != nil {
		return nil, err
	}

	teams := make([]domain.Team, 0, len(values))
	for _, t := range values {
		teams = append(teams, domain.Team{
			NodeID:      t.ID,
			TeamName:    t.Name,
			Description: t.Description,
		})
	}
	return teams, nil
}

type teamMemberResponse struct {
	Identity struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
		UniqueName  string `json:"uniqueName"`
	} `json:"identity"`
}

// GetTeamMembers lists the members of a provider team by its node id,
// following $skip/$top pages.
func (p *Provider) GetTeamMembers(ctx context.Context, team domain.Team) ([]domain.TeamMember, error) {
	org, project, err := SplitScope(p.scope)
	if err != nil {
		return nil, err
	}
	if team.NodeID == "" {
		return nil, domain.NewValidationError("nodeId", "team node id is required")
	}

	rawURL := endpoint(p.client.cfg.BaseURL, org, "_apis", "projects", project, "teams", team.NodeID, "members")
	values, err := pageAll[teamMemberResponse](ctx, p.client, "Team '"+team.TeamName+"'", rawURL, apiVersion(APIVersion))
	if err != nil {
		return nil, err
	}

	members := make([]domain.TeamMember, 0, len(values))
	for _, m := range values {
		members = append(members, domain.TeamMember{
			NodeID:   domain.NormalizeID(m.Identity.ID),
			UserName: m.Identity.DisplayName,
		})
	}
	return members, nil
}

type repositoryResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DefaultBranch string `json:"defaultBranch"`
}

// GetRepositories lists the project's git repositories. The endpoint
// returns every repository in one response and has no $top parameter.
// FullName is "project/name".
func (p *Provider) GetRepositories(ctx context.Context) ([]domain.Repository, error) {
	org, project, err := SplitScope(p.scope)
	if err != nil {
		return nil, err
	}

	var resp listPage[repositoryResponse]
	rawURL := endpoint(p.client.cfg.BaseURL, org, project, "_apis", "git", "repositories")
	if err := p.client.getJSON(ctx, "Organization '"+p.scope+"' repositories", p.client.cfg.BulkTimeout, rawURL, apiVersion(APIVersion), &resp); err != nil {
		return nil, err
	}

	repos := make([]domain.Repository, 0, len(resp.Value))
	for _, r := range resp.Value {
		repos = append(repos, domain.Repository{
			NodeID:             r.ID,
			CodeRepositoryName: r.Name,
			FullName:           project + "/" + r.Name,
			DefaultBranch:      strings.TrimPrefix(r.DefaultBranch, "refs/heads/"),
		})
	}
	return repos, nil
}

// Time range types queried for pull requests, in order.
const (
	RangeOpened = "Opened"
	RangeClosed = "Closed"
)

type pullRequestResponse struct {
	PullRequestID int       `json:"pullRequestId"`
	Status        string    `json:"status"`
	MergeStatus   string    `json:"mergeStatus"`
	CreationDate  Timestamp `json:"creationDate"`
	ClosedDate    Timestamp `json:"closedDate"`
	CreatedBy     struct {
		ID string `json:"id"`
	} `json:"createdBy"`
}

// GetPullRequests fetches the Opened leg and then the Closed leg, each
// from offset zero, and concatenates them. A pull request opened and
// closed inside the window appears in both legs.
func (p *Provider) GetPullRequests(ctx context.Context, repo domain.Repository, since *time.Time) ([]domain.PullRequest, error) {
	org, project, err := SplitScope(p.scope)
	if err != nil {
		return nil, err
	}
	if repo.NodeID == "" {
		return nil, domain.NewValidationError("nodeId", "repository node id is required")
	}

	rawURL := endpoint(p.client.cfg.BaseURL, org, project, "_apis", "git", "repositories", repo.NodeID, "pullrequests")
	prs := make([]domain.PullRequest, 0)

	for _, rangeType := range []string{RangeOpened, RangeClosed} {
		query := apiVersion(PullRequestAPIVersion)
		query.Set("searchCriteria.status", "all")
		query.Set("searchCriteria.queryTimeRangeType", rangeType)
		if since != nil {
			query.Set("searchCriteria.minTime", since.UTC().Format(time.RFC3339))
		}

		leg, err := pageAll[pullRequestResponse](ctx, p.client, "Organization '"+p.scope+"' ("+rangeType+")", rawURL, query)
		if err != nil {
			return nil, err
		}
		logger.Debug("azuredevops: %s %s leg: %d pull requests", repo.FullName, rangeType, len(leg))

		for _, pr := range leg {
			prs = append(prs, toPullRequest(pr))
		}
	}

	return prs, nil
}

func toPullRequest(pr pullRequestResponse) domain.PullRequest {
	result := domain.PullRequest{
		NodeID:       strconv.Itoa(pr.PullRequestID),
		Number:       pr.PullRequestID,
		State:        pr.Status,
		CreatedAt:    pr.CreationDate.Time,
		UpdatedAt:    pr.CreationDate.Time,
		ClosedAt:     pr.ClosedDate.Ptr(),
		AuthorNodeID: domain.NormalizeID(pr.CreatedBy.ID),
	}
	if pr.Status == "completed" && pr.MergeStatus == "succeeded" {
		result.MergedAt = pr.ClosedDate.Ptr()
	}
	return result
}

func apiVersion(version string) url.Values {
	return url.Values{"api-version": []string{version}}
}
