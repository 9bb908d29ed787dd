package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Synchronise repositories",
}

var reposListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved repositories and repositories not yet saved",
	Args:  cobra.NoArgs,
	RunE:  runReposList,
}

var reposSaveCmd = &cobra.Command{
	Use:   "save [repository...]",
	Short: "Save unsaved repositories",
	Long: `Saves the named unsaved repositories, or every unsaved repository with
--all. Repositories are named by full name (org/repo) or short name.`,
	RunE: runReposSave,
}

var reposSaveAll bool

func init() {
	addSelectionFlags(reposSaveCmd, &reposSaveAll, "repository")

	reposCmd.AddCommand(reposListCmd)
	reposCmd.AddCommand(reposSaveCmd)
	rootCmd.AddCommand(reposCmd)
}

func fetchRepositories() (*domain.Snapshot[domain.Repository], string, error) {
	var projectID string
	snap, err := runTask("fetch repositories", func(ctx context.Context) (*domain.Snapshot[domain.Repository], error) {
		s, err := openSession(ctx)
		if err != nil {
			return nil, err
		}
		projectID = s.ProjectID
		return syncService.FetchRepositories(ctx, s.ProjectID, s.Provider)
	})
	return snap, projectID, err
}

func runReposList(cmd *cobra.Command, _ []string) error {
	snap, _, err := fetchRepositories()
	if err != nil {
		return err
	}

	printRows(cmd, "Saved repositories", repositoryRows(snap.Saved), "none")
	cmd.Println()
	printRows(cmd, "Unsaved repositories", repositoryRows(snap.Unsaved), "everything is saved")
	return nil
}

func runReposSave(cmd *cobra.Command, args []string) error {
	snap, projectID, err := fetchRepositories()
	if err != nil {
		return err
	}
	if len(snap.Unsaved) == 0 {
		printWarning(cmd, "All repositories are already saved.")
		return nil
	}

	selected, err := selectItems(snap.Unsaved, args, reposSaveAll, matchRepository)
	if err != nil {
		return err
	}

	result, err := runTask("save repositories", func(ctx context.Context) (domain.SaveResult, error) {
		return syncService.SaveRepositories(ctx, projectID, selected)
	})
	if err != nil {
		return err
	}

	printSuccess(cmd, "Saved %d repositories.", result.SavedCount)
	return nil
}
