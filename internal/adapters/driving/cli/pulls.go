package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/core/ports/driving"
	"github.com/custodia-labs/orgsync/internal/core/services"
)

var pullsCmd = &cobra.Command{
	Use:   "pulls",
	Short: "Synchronise pull requests of saved repositories",
}

var pullsLastCmd = &cobra.Command{
	Use:   "last [repository...]",
	Short: "Show when the newest saved pull request was created",
	Long: `Shows the creation time of the newest saved pull request of each saved
repository, or of the named ones. The next sync fetches pull requests
created after that time.`,
	RunE: runPullsLast,
}

var pullsSyncCmd = &cobra.Command{
	Use:   "sync [repository...]",
	Short: "Fetch and save new pull requests",
	Long: `Fetches the pull requests created after the newest saved one, links
their authors to saved members and saves them. Repositories without saved
pull requests get their full history.

Repositories are synchronised concurrently; a failing repository does not
stop the others.`,
	RunE: runPullsSync,
}

var pullsSyncAll bool

func init() {
	addSelectionFlags(pullsSyncCmd, &pullsSyncAll, "saved repository")

	pullsCmd.AddCommand(pullsLastCmd)
	pullsCmd.AddCommand(pullsSyncCmd)
	rootCmd.AddCommand(pullsCmd)
}

func runPullsLast(cmd *cobra.Command, args []string) error {
	type last struct {
		Repo  domain.Repository
		Since *time.Time
	}

	results, err := runTask("last pull requests", func(ctx context.Context) ([]last, error) {
		s, err := openSession(ctx)
		if err != nil {
			return nil, err
		}
		prCtx, err := syncService.PullRequestContext(ctx, s.ProjectID)
		if err != nil {
			return nil, err
		}
		repos, err := selectItems(prCtx.Repositories, args, len(args) == 0, matchRepository)
		if err != nil {
			return nil, err
		}

		out := make([]last, 0, len(repos))
		for _, repo := range repos {
			since, err := syncService.LastPullRequestTime(ctx, repo)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", repo.FullName, err)
			}
			out = append(out, last{Repo: repo, Since: since})
		}
		return out, nil
	})
	if err != nil {
		return err
	}

	rows := make([]row, 0, len(results))
	for _, r := range results {
		text := mutedStyle.Render("no pull requests saved")
		if r.Since != nil {
			text = r.Since.UTC().Format(time.RFC3339)
		}
		rows = append(rows, row{Key: r.Repo.FullName, Text: text})
	}
	printRows(cmd, "Last pull request", rows, "no saved repositories")
	return nil
}

func runPullsSync(cmd *cobra.Command, args []string) error {
	type plan struct {
		Session *session
		Repos   []domain.Repository
	}

	p, err := runTask("plan pull request sync", func(ctx context.Context) (plan, error) {
		s, err := openSession(ctx)
		if err != nil {
			return plan{}, err
		}
		prCtx, err := syncService.PullRequestContext(ctx, s.ProjectID)
		if err != nil {
			return plan{}, err
		}
		repos, err := selectItems(prCtx.Repositories, args, pullsSyncAll, matchRepository)
		if err != nil {
			return plan{}, err
		}
		return plan{Session: s, Repos: repos}, nil
	})
	if err != nil {
		return err
	}
	if len(p.Repos) == 0 {
		printWarning(cmd, `No saved repositories. Run "orgsync repos save" first.`)
		return nil
	}

	outcomes := make([]<-chan driving.Outcome, len(p.Repos))
	for i, repo := range p.Repos {
		outcomes[i] = services.Dispatch(taskRunner, "sync "+repo.FullName,
			func(ctx context.Context) (*domain.PullRequestBatch, error) {
				return syncService.SyncPullRequests(ctx, p.Session.Provider, repo)
			})
	}

	failed := 0
	for i, ch := range outcomes {
		repo := p.Repos[i]
		batch, err := services.Await[*domain.PullRequestBatch](ch)
		if err != nil {
			failed++
			cmd.PrintErrln(formatError(fmt.Errorf("%s: %w", repo.FullName, err)))
			continue
		}
		printBatch(cmd, batch)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d repositories failed to sync", failed, len(p.Repos))
	}
	return nil
}

func printBatch(cmd *cobra.Command, batch *domain.PullRequestBatch) {
	name := batch.Repository.FullName
	if len(batch.PullRequests) == 0 {
		cmd.Printf("%s: %s\n", name, mutedStyle.Render("no new pull requests"))
		return
	}

	line := fmt.Sprintf("%s: saved %d pull requests", name, batch.SavedCount)
	if batch.Unresolved > 0 {
		line += fmt.Sprintf(", %d without a saved author", batch.Unresolved)
	}
	printSuccess(cmd, "%s", line)
}
