package github

import (
	"context"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

// GetOrganization fetches the organisation profile.
// The organisation node id is kept unhashed.
func (p *Provider) GetOrganization(ctx context.Context) (*domain.Project, error) {
	org, err := get(ctx, p.client, "get organization", func(ctx context.Context) (*gh.Organization, *gh.Response, error) {
		return p.client.gh.Organizations.Get(ctx, p.org)
	})
	if err != nil {
		return nil, err
	}

	displayName := org.GetName()
	if displayName == "" {
		displayName = org.GetLogin()
	}

	return &domain.Project{
		NodeID:      org.GetNodeID(),
		ProjectName: org.GetLogin(),
		DisplayName: displayName,
		AvatarURL:   org.GetAvatarURL(),
		CreatedAt:   timestamp(org.GetCreatedAt()),
		UpdatedAt:   timestamp(org.GetUpdatedAt()),
		Provider:    domain.ProviderGitHub,
	}, nil
}
