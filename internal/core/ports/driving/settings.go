package driving

import "github.com/custodia-labs/orgsync/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetProvider stores the provider type, scope and token.
	SetProvider(providerType domain.ProviderType, scope, token string) error

	// SetBackend stores the backend kind and its location.
	SetBackend(kind domain.BackendKind, url, dataDir string) error

	// SetProjectID stores the backend project selected by connect.
	SetProjectID(projectID string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
