package github

import (
	"context"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

// GetRepositories lists every repository owned by the organisation.
func (p *Provider) GetRepositories(ctx context.Context) ([]domain.Repository, error) {
	opts := &gh.RepositoryListByOrgOptions{Type: "all"}
	repos, err := listAll(ctx, p.client, "list repositories", &opts.ListOptions, func(ctx context.Context) ([]*gh.Repository, *gh.Response, error) {
		return p.client.gh.Repositories.ListByOrg(ctx, p.org, opts)
	})
	if err != nil {
		return nil, err
	}

	result := make([]domain.Repository, 0, len(repos))
	for _, r := range repos {
		result = append(result, domain.Repository{
			NodeID:             r.GetNodeID(),
			CodeRepositoryName: r.GetName(),
			FullName:           r.GetFullName(),
			DefaultBranch:      r.GetDefaultBranch(),
		})
	}
	return result, nil
}
