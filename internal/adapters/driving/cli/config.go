package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change the configuration file.

Keys:
  provider.type                       github or azure_devops
  provider.scope                      organisation, or organisation/project
  provider.token                      personal access token
  backend.kind                        http, sqlite or memory
  backend.url                         backend base URL
  backend.data_dir                    sqlite data directory
  project.id                          backend project selected by connect
  requests.metadata_timeout_seconds   timeout of single requests
  requests.bulk_timeout_seconds       timeout of each listing page
  workers.size                        concurrently running tasks

ORGSYNC_* environment variables override the file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

// knownKeys are the settable keys; integer keys are stored as numbers.
var knownKeys = map[string]bool{
	services.KeyProviderType:    false,
	services.KeyProviderScope:   false,
	services.KeyProviderToken:   false,
	services.KeyBackendKind:     false,
	services.KeyBackendURL:      false,
	services.KeyBackendDataDir:  false,
	services.KeyProjectID:       false,
	services.KeyMetadataTimeout: true,
	services.KeyBulkTimeout:     true,
	services.KeyWorkers:         true,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}

// overrider reports keys whose value comes from the environment.
type overrider interface {
	Overridden(key string) bool
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotWired
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	token := "(not set)"
	if settings.Provider.Token != "" {
		token = maskToken(settings.Provider.Token)
	}
	projectID := settings.ProjectID
	if projectID == "" {
		projectID = "(not connected)"
	}

	printTitle(cmd, "Current Settings")
	cmd.Println()

	cmd.Println("[Provider]")
	printSetting(cmd, "Type", settings.Provider.Type.DisplayName(), services.KeyProviderType)
	printSetting(cmd, "Scope", settings.Provider.Scope, services.KeyProviderScope)
	printSetting(cmd, "Token", token, services.KeyProviderToken)
	cmd.Println()

	cmd.Println("[Backend]")
	printSetting(cmd, "Kind", settings.Backend.Kind.String(), services.KeyBackendKind)
	printSetting(cmd, "URL", settings.Backend.URL, services.KeyBackendURL)
	if settings.Backend.DataDir != "" {
		printSetting(cmd, "Data dir", settings.Backend.DataDir, services.KeyBackendDataDir)
	}
	printSetting(cmd, "Project ID", projectID, services.KeyProjectID)
	cmd.Println()

	cmd.Println("[Requests]")
	cmd.Printf("  Metadata timeout: %s\n", settings.Requests.MetadataTimeout)
	cmd.Printf("  Bulk timeout: %s\n", settings.Requests.BulkTimeout)
	cmd.Printf("  Workers: %d\n", settings.Workers)

	if configStore != nil {
		cmd.Println()
		cmd.Println(mutedStyle.Render("Config file: " + configStore.Path()))
	}
	return nil
}

func printSetting(cmd *cobra.Command, label, value, key string) {
	if value == "" {
		value = "(not set)"
	}
	if o, ok := configStore.(overrider); ok && o.Overridden(key) {
		value += " " + mutedStyle.Render("(from environment)")
	}
	cmd.Printf("  %s: %s\n", label, value)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errNotWired
	}

	key, raw := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
	numeric, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("unknown key %q", key)
	}

	var value any = raw
	if numeric {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return fmt.Errorf("%s must be a positive integer", key)
		}
		value = n
	}

	switch key {
	case services.KeyBackendKind, services.KeyBackendURL, services.KeyBackendDataDir:
		if err := setBackendValue(key, raw); err != nil {
			return err
		}
	default:
		if err := configStore.Set(key, value); err != nil {
			return fmt.Errorf("saving %s: %w", key, err)
		}
	}

	shown := raw
	if key == services.KeyProviderToken {
		shown = maskToken(raw)
	}
	printSuccess(cmd, "%s = %s", key, shown)
	return nil
}

// setBackendValue changes one backend key through the settings service so
// a project id from another backend is dropped.
func setBackendValue(key, raw string) error {
	if settingsService == nil {
		return errNotWired
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	b := settings.Backend
	switch key {
	case services.KeyBackendKind:
		b.Kind = domain.BackendKind(raw)
	case services.KeyBackendURL:
		b.URL = raw
	case services.KeyBackendDataDir:
		b.DataDir = raw
	}

	if err := settingsService.SetBackend(b.Kind, b.URL, b.DataDir); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errNotWired
	}

	key := strings.TrimSpace(args[0])
	if _, ok := knownKeys[key]; !ok {
		return fmt.Errorf("unknown key %q", key)
	}

	if err := configStore.Unset(key); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}

	printSuccess(cmd, "%s removed", key)
	return nil
}
