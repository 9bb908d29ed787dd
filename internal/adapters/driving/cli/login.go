package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store provider credentials",
	Long: `Prompts for the provider, the organisation and a personal access token
and stores them in the configuration file.

GitHub scopes are an organisation login (my-org). Azure DevOps scopes are
organisation/project (contoso/payments). The token is read without echo
when stdin is a terminal.`,
	RunE: runLogin,
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Register the organisation as a backend project",
	Long: `Fetches the configured organisation from the provider, saves it as a
backend project and remembers the project id for later commands.`,
	RunE: runConnect,
}

// Login flags; prompted for when empty.
var (
	loginProvider string
	loginScope    string
)

func init() {
	loginCmd.Flags().StringVar(&loginProvider, "provider", "", "Provider: github or azure_devops")
	loginCmd.Flags().StringVar(&loginScope, "scope", "", "Organisation, or organisation/project for Azure DevOps")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(connectCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotWired
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	providerType, err := promptProvider(cmd, reader)
	if err != nil {
		return err
	}

	scope := strings.TrimSpace(loginScope)
	if scope == "" {
		cmd.Printf("Organisation (%s): ", providerType.ScopeHint())
		scope = readLine(reader)
	}

	cmd.Print("Personal access token: ")
	token := readPassword(cmd.InOrStdin(), reader)
	cmd.Println()

	if err := domain.ValidateCredentials(token, scope); err != nil {
		return err
	}

	if err := settingsService.SetProvider(providerType, scope, token); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}

	printSuccess(cmd, "Credentials for %s %s saved.", providerType.DisplayName(), scope)
	cmd.Println(mutedStyle.Render(`Run "orgsync connect" to register the organisation.`))
	return nil
}

func promptProvider(cmd *cobra.Command, reader *bufio.Reader) (domain.ProviderType, error) {
	if loginProvider != "" {
		return domain.ParseProviderType(loginProvider)
	}

	types := domain.ProviderTypes()
	cmd.Println("Select provider")
	for i, t := range types {
		cmd.Printf("  %d. %s\n", i+1, t.DisplayName())
	}
	cmd.Print("\nEnter choice [1]: ")
	choice := parseChoice(readLine(reader), len(types), 1)
	return types[choice-1], nil
}

func runConnect(cmd *cobra.Command, _ []string) error {
	if settingsService == nil || syncService == nil {
		return errNotWired
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if !settings.IsConfigured() {
		return errNotLoggedIn
	}

	p := settings.Provider
	connected, err := runTask("connect", func(ctx context.Context) (*domain.Session, error) {
		s, _, err := syncService.Connect(ctx, p.Type, p.Scope, p.Token)
		return s, err
	})
	if err != nil {
		return err
	}

	if err := settingsService.SetProjectID(connected.ProjectID); err != nil {
		return fmt.Errorf("saving project id: %w", err)
	}

	printSuccess(cmd, "Connected to %s %s.", connected.Provider.DisplayName(), connected.Scope)
	cmd.Printf("  Project: %s\n", connected.Project.DisplayName)
	cmd.Printf("  Project ID: %s\n", connected.ProjectID)
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo when in is a terminal and
// falls back to a plain line read otherwise.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
