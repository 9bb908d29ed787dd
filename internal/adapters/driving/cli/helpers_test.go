package cli

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/orgsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/core/ports/driven"
	"github.com/custodia-labs/orgsync/internal/core/services"
)

// fakeProvider serves a small fixed organisation.
type fakeProvider struct {
	prCalls atomic.Int32
}

func (p *fakeProvider) Type() domain.ProviderType { return domain.ProviderGitHub }
func (p *fakeProvider) Scope() string             { return "acme" }

func (p *fakeProvider) GetOrganization(_ context.Context) (*domain.Project, error) {
	return &domain.Project{NodeID: "O_1", ProjectName: "acme", DisplayName: "Acme Inc"}, nil
}

func (p *fakeProvider) GetUsers(_ context.Context) ([]domain.User, error) {
	return []domain.User{
		{NodeID: "n-octocat", UserName: "octocat", DisplayName: "Octo Cat"},
		{NodeID: "n-hubot", UserName: "hubot", DisplayName: "Hubot"},
	}, nil
}

func (p *fakeProvider) GetTeams(_ context.Context) ([]domain.Team, error) {
	return []domain.Team{{NodeID: "T_1", TeamName: "Platform", Description: "core services"}}, nil
}

func (p *fakeProvider) GetRepositories(_ context.Context) ([]domain.Repository, error) {
	return []domain.Repository{
		{NodeID: "R_1", CodeRepositoryName: "api", FullName: "acme/api", DefaultBranch: "main"},
		{NodeID: "R_2", CodeRepositoryName: "web", FullName: "acme/web", DefaultBranch: "main"},
	}, nil
}

func (p *fakeProvider) GetPullRequests(
	_ context.Context,
	repo domain.Repository,
	_ *time.Time,
) ([]domain.PullRequest, error) {
	p.prCalls.Add(1)
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return []domain.PullRequest{
		{NodeID: repo.NodeID + "-1", Number: 1, State: "MERGED", CreatedAt: jan, UpdatedAt: jan, AuthorNodeID: "n-octocat"},
		{NodeID: repo.NodeID + "-2", Number: 2, State: "OPEN", CreatedAt: feb, UpdatedAt: feb, AuthorNodeID: "n-ghost"},
	}, nil
}

func (p *fakeProvider) GetTeamMembers(_ context.Context, _ domain.Team) ([]domain.TeamMember, error) {
	return []domain.TeamMember{{NodeID: "n-octocat", UserName: "octocat"}}, nil
}

// fakeFactory always returns the same provider.
type fakeFactory struct {
	provider *fakeProvider
}

func (f *fakeFactory) Create(_ domain.ProviderType, _, _ string) (driven.Provider, error) {
	return f.provider, nil
}

func (f *fakeFactory) SupportedTypes() []domain.ProviderType {
	return []domain.ProviderType{domain.ProviderGitHub}
}

// cliFixture is the state behind the injected services.
type cliFixture struct {
	backend  *memory.Backend
	config   *memory.ConfigStore
	provider *fakeProvider
}

// setupCLITest injects services over an in-memory backend and config.
// values seed the config store; nil logs in to github/acme on the memory backend.
func setupCLITest(t *testing.T, values map[string]any) *cliFixture {
	t.Helper()

	if values == nil {
		values = map[string]any{
			services.KeyProviderType:  "github",
			services.KeyProviderScope: "acme",
			services.KeyProviderToken: "ghp_0123456789abcdef",
			services.KeyBackendKind:   "memory",
		}
	}

	f := &cliFixture{
		backend:  memory.NewBackend(),
		config:   memory.NewConfigStore(values),
		provider: &fakeProvider{},
	}
	factory := &fakeFactory{provider: f.provider}
	pool := services.NewWorkerPool(2)

	SetServices(&Services{
		Settings: services.NewSettingsService(f.config),
		Sync:     services.NewSyncService(factory, f.backend),
		Tasks:    pool,
		Factory:  factory,
		Config:   f.config,
	})

	t.Cleanup(func() {
		pool.Close()
		SetServices(&Services{})
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})
	return f
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// executeWithInput runs the root command feeding input on stdin.
func executeWithInput(input string, args ...string) (string, error) {
	rootCmd.SetIn(strings.NewReader(input))
	return execute(args...)
}
