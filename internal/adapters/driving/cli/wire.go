package cli

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/orgsync/internal/adapters/driven/backend"
	"github.com/custodia-labs/orgsync/internal/adapters/driven/config/env"
	"github.com/custodia-labs/orgsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/orgsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/orgsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/orgsync/internal/connectors"
	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/core/ports/driven"
	"github.com/custodia-labs/orgsync/internal/core/services"
	"github.com/custodia-labs/orgsync/internal/logger"
)

// options selects where configuration comes from.
type options struct {
	ConfigDir string
	EnvFile   string
	// Backend overrides the configured backend kind when set.
	Backend string
}

// app is the wired object graph of one CLI invocation.
type app struct {
	config   driven.ConfigStore
	kind     domain.BackendKind
	settings *services.SettingsService
	factory  *connectors.Factory
	backend  driven.Backend
	sync     *services.SyncService
	pool     *services.WorkerPool
	closers  []func() error
}

// wire builds the services from the config file, the environment and opts.
func wire(opts options) (*app, error) {
	fileStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}

	store, err := env.NewOverlay(fileStore, opts.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	settingsSvc := services.NewSettingsService(store)
	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	if opts.Backend != "" {
		kind := domain.BackendKind(opts.Backend)
		if !kind.IsValid() {
			return nil, domain.NewValidationError("backend", fmt.Sprintf("unknown backend %q", opts.Backend))
		}
		settings.Backend.Kind = kind
	}

	a := &app{
		config:   store,
		kind:     settings.Backend.Kind,
		settings: settingsSvc,
		factory:  connectors.NewFactory(settings.Requests),
		pool:     services.NewWorkerPool(settings.Workers),
	}

	a.backend, err = a.openBackend(settings)
	if err != nil {
		a.pool.Close()
		return nil, err
	}

	a.sync = services.NewSyncService(a.factory, a.backend)

	logger.Debug("config %s, backend %s, %d workers", fileStore.Path(), settings.Backend.Kind, settings.Workers)
	return a, nil
}

// openBackend creates the backend selected by settings.
func (a *app) openBackend(settings *domain.AppSettings) (driven.Backend, error) {
	switch settings.Backend.Kind {
	case domain.BackendSQLite:
		store, err := sqlite.NewStore(settings.Backend.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening local store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		logger.Debug("local store at %s", store.Path())
		return store, nil
	case domain.BackendMemory:
		return memory.NewBackend(), nil
	default:
		return backend.NewClient(backend.Config{
			BaseURL: settings.Backend.URL,
			Timeout: settings.Requests.BulkTimeout,
		}), nil
	}
}

func (a *app) services() *Services {
	return &Services{
		Settings: a.settings,
		Sync:     a.sync,
		Tasks:    a.pool,
		Factory:  a.factory,
		Config:   a.config,
		Backend:  a.kind,
	}
}

// Close waits for running tasks and releases the backend.
func (a *app) Close() error {
	a.pool.Close()

	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
