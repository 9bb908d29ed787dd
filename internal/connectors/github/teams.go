package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

// GetTeams lists the organisation's teams.
func (p *Provider) GetTeams(ctx context.Context) ([]domain.Team, error) {
	teams, err := p.listTeams(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Team, 0, len(teams))
	for _, t := range teams {
		result = append(result, domain.Team{
			NodeID:      t.GetNodeID(),
			TeamName:    t.GetName(),
			Description: t.GetDescription(),
		})
	}
	return result, nil
}

// GetTeamMembers resolves the team slug by name and lists its members.
func (p *Provider) GetTeamMembers(ctx context.Context, team domain.Team) ([]domain.TeamMember, error) {
	teams, err := p.listTeams(ctx)
	if err != nil {
		return nil, err
	}

	var slug string
	for _, t := range teams {
		if t.GetName() == team.TeamName {
			slug = t.GetSlug()
			break
		}
	}
	if slug == "" {
		return nil, &domain.ProviderError{
			Provider: domain.ProviderGitHub,
			Kind:     domain.KindNotFound,
			Message:  fmt.Sprintf("team %q not found", team.TeamName),
		}
	}

	opts := &gh.TeamListTeamMembersOptions{}
	members, err := listAll(ctx, p.client, "list team members", &opts.ListOptions, func(ctx context.Context) ([]*gh.User, *gh.Response, error) {
		return p.client.gh.Teams.ListTeamMembersBySlug(ctx, p.org, slug, opts)
	})
	if err != nil {
		return nil, err
	}

	result := make([]domain.TeamMember, 0, len(members))
	for _, m := range members {
		result = append(result, domain.TeamMember{
			NodeID:   domain.NormalizeID(m.GetNodeID()),
			UserName: m.GetLogin(),
		})
	}
	return result, nil
}

func (p *Provider) listTeams(ctx context.Context) ([]*gh.Team, error) {
	opts := &gh.ListOptions{}
	return listAll(ctx, p.client, "list teams", opts, func(ctx context.Context) ([]*gh.Team, *gh.Response, error) {
		return p.client.gh.Teams.ListTeams(ctx, p.org, opts)
	})
}
