package github

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/logger"
)

const searchPullRequestsQuery = `query($q: String!, $first: Int!, $cursor: String) {
  search(query: $q, type: ISSUE, first: $first, after: $cursor) {
    pageInfo {
      hasNextPage
      endCursor
    }
    nodes {
      ... on PullRequest {
        id
        number
        state
        createdAt
        updatedAt
        closedAt
        mergedAt
        additions
        deletions
        changedFiles
        commits {
          totalCount
        }
        author {
          login
          ... on User {
            id
          }
        }
      }
    }
  }
}`

type searchResponse struct {
	Data struct {
		Search struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Nodes []pullRequestNode `json:"nodes"`
		} `json:"search"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type pullRequestNode struct {
	ID           string     `json:"id"`
	Number       int        `json:"number"`
	State        string     `json:"state"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	ClosedAt     *time.Time `json:"closedAt"`
	MergedAt     *time.Time `json:"mergedAt"`
	Additions    int        `json:"additions"`
	Deletions    int        `json:"deletions"`
	ChangedFiles int        `json:"changedFiles"`
	Commits      struct {
		TotalCount int `json:"totalCount"`
	} `json:"commits"`
	Author *struct {
		Login string `json:"login"`
		ID    string `json:"id"`
	} `json:"author"`
}

// SearchQuery builds the search string for pull requests of a repository,
// optionally restricted to those created after since.
func SearchQuery(fullName string, since *time.Time) string {
	q := fmt.Sprintf("repo:%s is:pr", fullName)
	if since != nil {
		q += " created:>" + since.UTC().Format(time.RFC3339)
	}
	return q
}

// GetPullRequests walks the search cursor from the first page until
// GitHub reports no next page.
func (p *Provider) GetPullRequests(ctx context.Context, repo domain.Repository, since *time.Time) ([]domain.PullRequest, error) {
	if repo.FullName == "" {
		return nil, domain.NewValidationError("fullName", "repository full name is required")
	}

	variables := map[string]any{
		"q":     SearchQuery(repo.FullName, since),
		"first": PageSize,
	}

	prs := make([]domain.PullRequest, 0)
	for page := 1; ; page++ {
		select {
		case <-ctx.Done():
			return nil, p.client.wrapError(ctx.Err(), "search pull requests")
		default:
		}

		var resp searchResponse
		if err := p.client.graphQL(ctx, "search pull requests", searchPullRequestsQuery, variables, &resp); err != nil {
			return nil, err
		}
		if err := classifyGraphQLErrors(resp.Errors); err != nil {
			return nil, err
		}

		search := resp.Data.Search
		for _, node := range search.Nodes {
			// Non-PR search hits decode as empty nodes.
			if node.ID == "" {
				continue
			}
			prs = append(prs, toPullRequest(node))
		}
		logger.Debug("github: %s pull requests page %d: %d nodes", repo.FullName, page, len(search.Nodes))

		if !search.PageInfo.HasNextPage || search.PageInfo.EndCursor == "" {
			break
		}
		variables["cursor"] = search.PageInfo.EndCursor
	}

	return prs, nil
}

func toPullRequest(node pullRequestNode) domain.PullRequest {
	pr := domain.PullRequest{
		NodeID:       node.ID,
		Number:       node.Number,
		State:        node.State,
		CreatedAt:    node.CreatedAt.UTC(),
		UpdatedAt:    node.UpdatedAt.UTC(),
		MergedAt:     utcPtr(node.MergedAt),
		ClosedAt:     utcPtr(node.ClosedAt),
		Commits:      node.Commits.TotalCount,
		Additions:    node.Additions,
		Deletions:    node.Deletions,
		ChangedFiles: node.ChangedFiles,
	}
	if node.Author != nil {
		pr.AuthorNodeID = domain.NormalizeID(node.Author.ID)
	}
	return pr
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
