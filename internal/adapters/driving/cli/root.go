// Package cli provides the orgsync command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/orgsync/internal/adapters/driven/config/env"
	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/core/ports/driven"
	"github.com/custodia-labs/orgsync/internal/core/ports/driving"
	"github.com/custodia-labs/orgsync/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services used by the commands. They are built from the configuration on
// first use unless injected with SetServices.
var (
	settingsService driving.SettingsService
	syncService     driving.SyncService
	taskRunner      driving.TaskRunner
	providerFactory driven.ProviderFactory
	configStore     driven.ConfigStore
	// activeBackend is the backend kind in use, which may differ from the
	// stored one when --backend is given. Empty means the stored kind.
	activeBackend   domain.BackendKind
)

// Persistent flags.
var (
	verbose     bool
	configDir   string
	envFile     string
	backendKind string
)

// skipWiring marks commands that run without services.
const skipWiring = "skip-wiring"

// errNotWired is returned when a command runs before its services exist.
var errNotWired = errors.New("sync service not configured")

var rootCmd = &cobra.Command{
	Use:   "orgsync",
	Short: "Synchronise organisation metadata into the analytics backend",
	Long: `orgsync reads members, teams, repositories and pull requests from
GitHub or Azure DevOps and saves the ones the backend does not know yet.

Run "orgsync login" once to store the provider credentials, then
"orgsync connect" to register the organisation as a backend project.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Services groups the collaborators the commands depend on.
type Services struct {
	Settings driving.SettingsService
	Sync     driving.SyncService
	Tasks    driving.TaskRunner
	Factory  driven.ProviderFactory
	Config   driven.ConfigStore
	// Backend is the backend kind the Sync service was built with.
	Backend  domain.BackendKind
}

// SetServices injects the services used by the commands.
func SetServices(s *Services) {
	settingsService = s.Settings
	syncService = s.Sync
	taskRunner = s.Tasks
	providerFactory = s.Factory
	configStore = s.Config
	activeBackend = s.Backend
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. Cancelling ctx stops the MCP server;
// dispatched tasks still run to completion.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, teardown())
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Print progress while syncing")
	flags.StringVar(&configDir, "config-dir", "", "Configuration directory (default ~/.orgsync)")
	flags.StringVar(&envFile, "env-file", env.DefaultDotenvPath, "Optional dotenv file with ORGSYNC_* variables")
	flags.StringVar(&backendKind, "backend", "", "Override the backend kind: http, sqlite or memory")
}

// wired holds what setup built so teardown can release it.
var wired *app

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[skipWiring] == "true" || syncService != nil {
		return nil
	}

	a, err := wire(options{
		ConfigDir: configDir,
		EnvFile:   envFile,
		Backend:   backendKind,
	})
	if err != nil {
		return err
	}

	wired = a
	SetServices(a.services())
	return nil
}

// teardown releases what setup wired.
func teardown() error {
	if wired == nil {
		return nil
	}

	err := wired.Close()
	wired = nil
	SetServices(&Services{})
	return err
}
