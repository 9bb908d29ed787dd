package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Synchronise organisation members",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved members and members not yet saved",
	Args:  cobra.NoArgs,
	RunE:  runUsersList,
}

var usersSaveCmd = &cobra.Command{
	Use:   "save [user...]",
	Short: "Save unsaved members",
	Long: `Saves the named unsaved members, or every unsaved member with --all.
Members are named by login or node id.

Members listed with --mask are saved with their user name and display
name cut to the first three characters.`,
	RunE: runUsersSave,
}

var (
	usersSaveAll bool
	usersMask    []string
)

func init() {
	addSelectionFlags(usersSaveCmd, &usersSaveAll, "member")
	usersSaveCmd.Flags().StringSliceVar(&usersMask, "mask", nil, "Members to save with masked names")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersSaveCmd)
	rootCmd.AddCommand(usersCmd)
}

func fetchUsers() (*domain.Snapshot[domain.User], string, error) {
	var projectID string
	snap, err := runTask("fetch users", func(ctx context.Context) (*domain.Snapshot[domain.User], error) {
		s, err := openSession(ctx)
		if err != nil {
			return nil, err
		}
		projectID = s.ProjectID
		return syncService.FetchUsers(ctx, s.ProjectID, s.Provider)
	})
	return snap, projectID, err
}

func runUsersList(cmd *cobra.Command, _ []string) error {
	snap, _, err := fetchUsers()
	if err != nil {
		return err
	}

	printRows(cmd, "Saved members", userRows(snap.Saved), "none")
	cmd.Println()
	printRows(cmd, "Unsaved members", userRows(snap.Unsaved), "everything is saved")
	return nil
}

func runUsersSave(cmd *cobra.Command, args []string) error {
	snap, projectID, err := fetchUsers()
	if err != nil {
		return err
	}
	if len(snap.Unsaved) == 0 {
		printWarning(cmd, "All members are already saved.")
		return nil
	}

	selected, err := selectItems(snap.Unsaved, args, usersSaveAll, matchUser)
	if err != nil {
		return err
	}
	maskedIDs := make([]string, 0, len(usersMask))
	if len(usersMask) > 0 {
		masked, err := selectItems(selected, usersMask, false, matchUser)
		if err != nil {
			return err
		}
		for _, u := range masked {
			maskedIDs = append(maskedIDs, u.NodeID)
		}
	}

	result, err := runTask("save users", func(ctx context.Context) (domain.SaveResult, error) {
		return syncService.SaveUsers(ctx, projectID, selected, maskedIDs)
	})
	if err != nil {
		return err
	}

	printSuccess(cmd, "Saved %d members (%d masked).", result.SavedCount, len(maskedIDs))
	return nil
}
