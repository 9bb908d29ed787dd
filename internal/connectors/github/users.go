package github

import (
	"context"
	"errors"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/logger"
)

// GetUsers lists organisation members and fetches each profile.
// GitHub has no batch profile endpoint, so this costs one request per member.
// Members whose profile vanished between the two calls are skipped.
func (p *Provider) GetUsers(ctx context.Context) ([]domain.User, error) {
	opts := &gh.ListMembersOptions{}
	members, err := listAll(ctx, p.client, "list members", &opts.ListOptions, func(ctx context.Context) ([]*gh.User, *gh.Response, error) {
		return p.client.gh.Organizations.ListMembers(ctx, p.org, opts)
	})
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(members))
	for _, member := range members {
		login := member.GetLogin()
		profile, err := get(ctx, p.client, "get user", func(ctx context.Context) (*gh.User, *gh.Response, error) {
			return p.client.gh.Users.Get(ctx, login)
		})
		if err != nil {
			if errors.Is(err, domain.ErrProviderNotFound) {
				logger.Warn("github: member %s not found, skipping", login)
				continue
			}
			return nil, err
		}
		users = append(users, toUser(profile))
	}

	return users, nil
}

func toUser(u *gh.User) domain.User {
	displayName := u.GetName()
	if displayName == "" {
		displayName = u.GetLogin()
	}

	return domain.User{
		NodeID:      domain.NormalizeID(u.GetNodeID()),
		UserName:    u.GetLogin(),
		DisplayName: displayName,
		AvatarURL:   u.GetAvatarURL(),
		CreatedAt:   timestamp(u.GetCreatedAt()),
		UpdatedAt:   timestamp(u.GetUpdatedAt()),
	}
}
