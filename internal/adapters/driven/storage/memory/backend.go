package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/core/ports/driven"
)

// Ensure Backend implements the interface.
var _ driven.Backend = (*Backend)(nil)

// Backend is an in-memory implementation of driven.Backend.
// Entities are kept in insertion order. Saving an entity whose NodeID
// already exists in the same scope updates it in place and keeps its id.
type Backend struct {
	mu           sync.RWMutex
	projects     []domain.Project
	users        []domain.User
	teams        []domain.Team
	memberships  []domain.TeamMembership
	repositories []domain.Repository
	pullRequests []domain.PullRequest
}

// NewBackend creates a new in-memory backend.
func NewBackend() *Backend {
	return &Backend{}
}

// SaveProject stores or updates a project keyed by NodeID.
func (b *Backend) SaveProject(_ context.Context, project domain.Project) (*domain.Project, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.projects {
		if b.projects[i].NodeID == project.NodeID {
			project.ProjectID = b.projects[i].ProjectID
			b.projects[i] = project
			return &project, nil
		}
	}

	project.ProjectID = uuid.NewString()
	b.projects = append(b.projects, project)
	return &project, nil
}

// ListUsers returns the users of a project.
func (b *Backend) ListUsers(_ context.Context, projectID string) ([]domain.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	users := make([]domain.User, 0)
	for _, u := range b.users {
		if u.ProjectID == projectID {
			users = append(users, u)
		}
	}
	return users, nil
}

// SaveUsers stores or updates users keyed by project and NodeID.
func (b *Backend) SaveUsers(_ context.Context, projectID string, users []domain.User) (domain.SaveResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, u := range users {
		u.ProjectID = projectID
		if i := b.findUser(projectID, u.NodeID); i >= 0 {
			u.UserID = b.users[i].UserID
			b.users[i] = u
			continue
		}
		u.UserID = uuid.NewString()
		b.users = append(b.users, u)
	}
	return domain.SaveResult{SavedCount: len(users)}, nil
}

func (b *Backend) findUser(projectID, nodeID string) int {
	for i := range b.users {
		if b.users[i].ProjectID == projectID && b.users[i].NodeID == nodeID {
			return i
		}
	}
	return -1
}

// ListTeams returns the teams of a project.
func (b *Backend) ListTeams(_ context.Context, projectID string) ([]domain.Team, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	teams := make([]domain.Team, 0)
	for _, t := range b.teams {
		if t.ProjectID == projectID {
			teams = append(teams, t)
		}
	}
	return teams, nil
}

// SaveTeams stores or updates teams keyed by project and NodeID.
func (b *Backend) SaveTeams(_ context.Context, projectID string, teams []domain.Team) (domain.SaveResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

outer:
	for _, t := range teams {
		t.ProjectID = projectID
		for i := range b.teams {
			if b.teams[i].ProjectID == projectID && b.teams[i].NodeID == t.NodeID {
				t.TeamID = b.teams[i].TeamID
				b.teams[i] = t
				continue outer
			}
		}
		t.TeamID = uuid.NewString()
		b.teams = append(b.teams, t)
	}
	return domain.SaveResult{SavedCount: len(teams)}, nil
}

// ListTeamMembers returns the users that belong to a team.
func (b *Backend) ListTeamMembers(_ context.Context, teamID string) ([]domain.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	members := make([]domain.User, 0)
	for _, m := range b.memberships {
		if m.TeamID != teamID {
			continue
		}
		for _, u := range b.users {
			if u.UserID == m.UserID {
				members = append(members, u)
				break
			}
		}
	}
	return members, nil
}

// SaveTeamMembers stores membership records, ignoring duplicates.
func (b *Backend) SaveTeamMembers(_ context.Context, memberships []domain.TeamMembership) (domain.SaveResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	saved := 0
outer:
	for _, m := range memberships {
		for _, existing := range b.memberships {
			if existing == m {
				continue outer
			}
		}
		b.memberships = append(b.memberships, m)
		saved++
	}
	return domain.SaveResult{SavedCount: saved}, nil
}

// ListRepositories returns the repositories of a project.
func (b *Backend) ListRepositories(_ context.Context, projectID string) ([]domain.Repository, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	repos := make([]domain.Repository, 0)
	for _, r := range b.repositories {
		if r.ProjectID == projectID {
			repos = append(repos, r)
		}
	}
	return repos, nil
}

// SaveRepositories stores or updates repositories keyed by project and NodeID.
func (b *Backend) SaveRepositories(_ context.Context, projectID string, repos []domain.Repository) (domain.SaveResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

outer:
	for _, r := range repos {
		r.ProjectID = projectID
		for i := range b.repositories {
			if b.repositories[i].ProjectID == projectID && b.repositories[i].NodeID == r.NodeID {
				r.CodeRepositoryID = b.repositories[i].CodeRepositoryID
				b.repositories[i] = r
				continue outer
			}
		}
		r.CodeRepositoryID = uuid.NewString()
		b.repositories = append(b.repositories, r)
	}
	return domain.SaveResult{SavedCount: len(repos)}, nil
}

// ListPullRequests returns the pull requests of a repository.
func (b *Backend) ListPullRequests(_ context.Context, repoID string) ([]domain.PullRequest, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	prs := make([]domain.PullRequest, 0)
	for _, pr := range b.pullRequests {
		if pr.CodeRepositoryID == repoID {
			prs = append(prs, pr)
		}
	}
	return prs, nil
}

// LastPullRequest returns the most recently created pull request of a
// repository, or nil when it has none.
func (b *Backend) LastPullRequest(_ context.Context, repoID string) (*domain.PullRequest, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var last *domain.PullRequest
	for i := range b.pullRequests {
		pr := b.pullRequests[i]
		if pr.CodeRepositoryID != repoID {
			continue
		}
		if last == nil || pr.CreatedAt.After(last.CreatedAt) {
			last = &pr
		}
	}
	return last, nil
}

// SavePullRequests appends pull requests. A pull request whose NodeID is
// already stored for the same repository is skipped.
func (b *Backend) SavePullRequests(_ context.Context, prs []domain.PullRequest) (domain.SaveResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	saved := 0
outer:
	for _, pr := range prs {
		for _, existing := range b.pullRequests {
			if existing.CodeRepositoryID == pr.CodeRepositoryID && existing.NodeID == pr.NodeID {
				continue outer
			}
		}
		b.pullRequests = append(b.pullRequests, pr)
		saved++
	}
	return domain.SaveResult{SavedCount: saved}, nil
}
