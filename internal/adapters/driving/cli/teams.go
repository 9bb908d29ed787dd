package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "Synchronise teams",
}

var teamsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved teams and teams not yet saved",
	Args:  cobra.NoArgs,
	RunE:  runTeamsList,
}

var teamsSaveCmd = &cobra.Command{
	Use:   "save [team...]",
	Short: "Save unsaved provider teams",
	Long:  `Saves the named unsaved teams, or every unsaved team with --all.`,
	RunE:  runTeamsSave,
}

var teamsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create and save a team that exists only in the backend",
	Args:  cobra.ExactArgs(1),
	RunE:  runTeamsCreate,
}

var (
	teamsSaveAll     bool
	teamsDescription string
)

func init() {
	addSelectionFlags(teamsSaveCmd, &teamsSaveAll, "team")
	teamsCreateCmd.Flags().StringVarP(&teamsDescription, "description", "d", "", "Team description")

	teamsCmd.AddCommand(teamsListCmd)
	teamsCmd.AddCommand(teamsSaveCmd)
	teamsCmd.AddCommand(teamsCreateCmd)
	rootCmd.AddCommand(teamsCmd)
}

func fetchTeams() (*domain.Snapshot[domain.Team], *session, error) {
	var current *session
	snap, err := runTask("fetch teams", func(ctx context.Context) (*domain.Snapshot[domain.Team], error) {
		s, err := openSession(ctx)
		if err != nil {
			return nil, err
		}
		current = s
		return syncService.FetchTeams(ctx, s.ProjectID, s.Provider)
	})
	return snap, current, err
}

func runTeamsList(cmd *cobra.Command, _ []string) error {
	snap, _, err := fetchTeams()
	if err != nil {
		return err
	}

	printRows(cmd, "Saved teams", teamRows(snap.Saved), "none")
	cmd.Println()
	printRows(cmd, "Unsaved teams", teamRows(snap.Unsaved), "everything is saved")
	return nil
}

func runTeamsSave(cmd *cobra.Command, args []string) error {
	snap, current, err := fetchTeams()
	if err != nil {
		return err
	}
	if len(snap.Unsaved) == 0 {
		printWarning(cmd, "All teams are already saved.")
		return nil
	}

	selected, err := selectItems(snap.Unsaved, args, teamsSaveAll, matchTeam)
	if err != nil {
		return err
	}

	result, err := runTask("save teams", func(ctx context.Context) (domain.SaveResult, error) {
		return syncService.SaveTeams(ctx, current.ProjectID, selected)
	})
	if err != nil {
		return err
	}

	printSuccess(cmd, "Saved %d teams.", result.SavedCount)
	return nil
}

func runTeamsCreate(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errNotWired
	}

	team, err := syncService.CreateTeam(args[0], teamsDescription)
	if err != nil {
		return err
	}

	result, err := runTask("create team", func(ctx context.Context) (domain.SaveResult, error) {
		s, err := openSession(ctx)
		if err != nil {
			return domain.SaveResult{}, err
		}
		return syncService.SaveTeams(ctx, s.ProjectID, []domain.Team{team})
	})
	if err != nil {
		return err
	}

	printSuccess(cmd, "Created team %s (%d saved).", team.TeamName, result.SavedCount)
	return nil
}
