package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Synchronise team memberships",
}

var membersListCmd = &cobra.Command{
	Use:   "list <team>",
	Short: "List members of a saved team and the users that may join it",
	Long: `Lists the saved members of a team and the saved users that may be added.
For provider teams only users that are members on the provider side are
offered. Custom teams offer every saved user.`,
	Args: cobra.ExactArgs(1),
	RunE: runMembersList,
}

var membersSaveCmd = &cobra.Command{
	Use:   "save <team> [user...]",
	Short: "Add saved users to a saved team",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMembersSave,
}

var membersSaveAll bool

func init() {
	addSelectionFlags(membersSaveCmd, &membersSaveAll, "available user")

	membersCmd.AddCommand(membersListCmd)
	membersCmd.AddCommand(membersSaveCmd)
	rootCmd.AddCommand(membersCmd)
}

// fetchMembers resolves a saved team by name or id and returns its member view.
func fetchMembers(teamKey string) (*domain.TeamMemberView, error) {
	return runTask("fetch team members", func(ctx context.Context) (*domain.TeamMemberView, error) {
		s, err := openSession(ctx)
		if err != nil {
			return nil, err
		}

		snap, err := syncService.FetchTeams(ctx, s.ProjectID, s.Provider)
		if err != nil {
			return nil, err
		}
		teams, err := selectItems(snap.Saved, []string{teamKey}, false, matchTeam)
		if err != nil {
			return nil, err
		}

		return syncService.FetchTeamMembers(ctx, s.ProjectID, teams[0], s.Provider)
	})
}

func runMembersList(cmd *cobra.Command, args []string) error {
	view, err := fetchMembers(args[0])
	if err != nil {
		return err
	}

	printTitle(cmd, "Team %s", view.Team.TeamName)
	cmd.Println()
	printRows(cmd, "Members", userRows(view.Members), "none")
	cmd.Println()
	printRows(cmd, "Available", userRows(view.Available), "no saved users can join")
	return nil
}

func runMembersSave(cmd *cobra.Command, args []string) error {
	view, err := fetchMembers(args[0])
	if err != nil {
		return err
	}
	if len(view.Available) == 0 {
		printWarning(cmd, "No saved users can join team %s.", view.Team.TeamName)
		return nil
	}

	selected, err := selectItems(view.Available, args[1:], membersSaveAll, matchUser)
	if err != nil {
		return err
	}

	result, err := runTask("save team members", func(ctx context.Context) (domain.SaveResult, error) {
		return syncService.SaveTeamMembers(ctx, view.Team, selected)
	})
	if err != nil {
		return err
	}

	printSuccess(cmd, "Added %d members to team %s.", result.SavedCount, view.Team.TeamName)
	return nil
}
