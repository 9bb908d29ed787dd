package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/core/ports/driven"
	"github.com/custodia-labs/orgsync/internal/core/services"
)

// errNotLoggedIn is returned when no provider credentials are configured.
var errNotLoggedIn = errors.New(`no provider configured, run "orgsync login" first`)

// session is the provider and project a command works against.
type session struct {
	Provider  driven.Provider
	ProjectID string
}

// openSession creates the configured provider and resolves the project.
// It connects first, and remembers the new project id, when no project id
// is stored. It also connects without remembering when the active backend
// is the memory backend or differs from the stored one, since the stored
// id belongs to another store.
func openSession(ctx context.Context) (*session, error) {
	if syncService == nil || settingsService == nil || providerFactory == nil {
		return nil, errNotWired
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if !settings.IsConfigured() {
		return nil, errNotLoggedIn
	}

	kind := settings.Backend.Kind
	if activeBackend != "" {
		kind = activeBackend
	}
	transient := kind == domain.BackendMemory || kind != settings.Backend.Kind

	p := settings.Provider
	if settings.ProjectID == "" || transient {
		connected, provider, err := syncService.Connect(ctx, p.Type, p.Scope, p.Token)
		if err != nil {
			return nil, err
		}
		if !transient {
			if err := settingsService.SetProjectID(connected.ProjectID); err != nil {
				return nil, fmt.Errorf("saving project id: %w", err)
			}
		}
		return &session{Provider: provider, ProjectID: connected.ProjectID}, nil
	}

	provider, err := providerFactory.Create(p.Type, p.Scope, p.Token)
	if err != nil {
		return nil, err
	}
	return &session{Provider: provider, ProjectID: settings.ProjectID}, nil
}

// runTask runs fn on the task runner and waits for its outcome.
func runTask[T any](name string, fn func(ctx context.Context) (T, error)) (T, error) {
	if taskRunner == nil {
		var zero T
		return zero, errNotWired
	}
	return services.Await[T](services.Dispatch(taskRunner, name, fn))
}

// selectItems returns the items named by keys, or all items when all is set.
// Every key must match an item.
func selectItems[T any](items []T, keys []string, all bool, match func(T, string) bool) ([]T, error) {
	if all {
		return items, nil
	}
	if len(keys) == 0 {
		return nil, domain.NewValidationError("selection", "name at least one item or pass --all")
	}

	selected := make([]T, 0, len(keys))
	var missing []string
	for _, key := range keys {
		found := false
		for _, item := range items {
			if match(item, key) {
				selected = append(selected, item)
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError("selection", "not found: "+strings.Join(missing, ", "))
	}
	return selected, nil
}

func matchUser(u domain.User, key string) bool {
	return strings.EqualFold(u.UserName, key) || u.NodeID == key || (u.UserID != "" && u.UserID == key)
}

func matchTeam(t domain.Team, key string) bool {
	return strings.EqualFold(t.TeamName, key) || t.NodeID == key || (t.TeamID != "" && t.TeamID == key)
}

func matchRepository(r domain.Repository, key string) bool {
	return strings.EqualFold(r.FullName, key) ||
		strings.EqualFold(r.CodeRepositoryName, key) ||
		r.NodeID == key ||
		(r.CodeRepositoryID != "" && r.CodeRepositoryID == key)
}

// addSelectionFlags registers the --all flag shared by save commands.
func addSelectionFlags(cmd *cobra.Command, all *bool, what string) {
	cmd.Flags().BoolVarP(all, "all", "a", false, "Select every unsaved "+what)
}
