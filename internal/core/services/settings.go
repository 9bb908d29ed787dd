package services

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/core/ports/driven"
	"github.com/custodia-labs/orgsync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyProviderType    = "provider.type"
	KeyProviderScope   = "provider.scope"
	KeyProviderToken   = "provider.token"
	KeyBackendKind     = "backend.kind"
	KeyBackendURL      = "backend.url"
	KeyBackendDataDir  = "backend.data_dir"
	KeyProjectID       = "project.id"
	KeyMetadataTimeout = "requests.metadata_timeout_seconds"
	KeyBulkTimeout     = "requests.bulk_timeout_seconds"
	KeyWorkers         = "workers.size"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings, filling unset values from defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Provider: domain.ProviderSettings{
			Type:  s.getProviderType(),
			Scope: s.configStore.GetString(KeyProviderScope),
			Token: s.configStore.GetString(KeyProviderToken),
		},
		Backend: domain.BackendSettings{
			Kind:    s.getBackendKind(defaults.Backend.Kind),
			URL:     s.getString(KeyBackendURL, defaults.Backend.URL),
			DataDir: s.configStore.GetString(KeyBackendDataDir),
		},
		Requests: domain.RequestSettings{
			MetadataTimeout: s.getSeconds(KeyMetadataTimeout, defaults.Requests.MetadataTimeout),
			BulkTimeout:     s.getSeconds(KeyBulkTimeout, defaults.Requests.BulkTimeout),
		},
		ProjectID: s.configStore.GetString(KeyProjectID),
		Workers:   s.getInt(KeyWorkers, defaults.Workers),
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyProviderType, settings.Provider.Type.String()},
		{KeyProviderScope, settings.Provider.Scope},
		{KeyBackendKind, settings.Backend.Kind.String()},
		{KeyBackendURL, settings.Backend.URL},
		{KeyBackendDataDir, settings.Backend.DataDir},
		{KeyProjectID, settings.ProjectID},
		{KeyMetadataTimeout, int(settings.Requests.MetadataTimeout / time.Second)},
		{KeyBulkTimeout, int(settings.Requests.BulkTimeout / time.Second)},
		{KeyWorkers, settings.Workers},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Only overwrite the token when one is provided
	if settings.Provider.Token != "" {
		if err := s.configStore.Set(KeyProviderToken, settings.Provider.Token); err != nil {
			return fmt.Errorf("save %s: %w", KeyProviderToken, err)
		}
	}

	return nil
}

// SetProvider stores the provider type, scope and token.
func (s *SettingsService) SetProvider(providerType domain.ProviderType, scope, token string) error {
	if !providerType.IsValid() {
		return &domain.UnsupportedProviderError{Type: providerType.String()}
	}
	if err := domain.ValidateCredentials(token, scope); err != nil {
		return err
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	// A different provider or scope invalidates the selected project
	if settings.Provider.Type != providerType || settings.Provider.Scope != scope {
		settings.ProjectID = ""
	}

	settings.Provider = domain.ProviderSettings{Type: providerType, Scope: scope, Token: token}
	return s.Save(settings)
}

// SetBackend stores the backend kind and its location.
func (s *SettingsService) SetBackend(kind domain.BackendKind, url, dataDir string) error {
	if !kind.IsValid() {
		return domain.NewValidationError("backend", fmt.Sprintf("unknown backend %q", kind))
	}
	if kind == domain.BackendHTTP && url == "" {
		url = domain.DefaultBackendURL
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	backend := domain.BackendSettings{Kind: kind, URL: url, DataDir: dataDir}

	// Project ids are only valid in the backend that issued them
	if !sameBackend(settings.Backend, backend) {
		settings.ProjectID = ""
	}

	settings.Backend = backend
	return s.Save(settings)
}

// sameBackend reports whether a and b address the same store.
func sameBackend(a, b domain.BackendSettings) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case domain.BackendHTTP:
		return strings.TrimRight(a.URL, "/") == strings.TrimRight(b.URL, "/")
	case domain.BackendSQLite:
		return filepath.Clean(a.DataDir) == filepath.Clean(b.DataDir)
	default:
		return true
	}
}

// SetProjectID stores the backend project selected by connect.
func (s *SettingsService) SetProjectID(projectID string) error {
	return s.configStore.Set(KeyProjectID, projectID)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	if val := s.configStore.GetInt(key); val > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if val := s.getInt(key, 0); val > 0 {
		return time.Duration(val) * time.Second
	}
	return defaultVal
}

// getProviderType accepts aliases such as "gh" or "ado".
func (s *SettingsService) getProviderType() domain.ProviderType {
	raw := s.configStore.GetString(KeyProviderType)
	if t, err := domain.ParseProviderType(raw); err == nil {
		return t
	}
	return domain.ProviderType(raw)
}

func (s *SettingsService) getBackendKind(defaultVal domain.BackendKind) domain.BackendKind {
	kind := domain.BackendKind(s.configStore.GetString(KeyBackendKind))
	if kind.IsValid() {
		return kind
	}
	return defaultVal
}
