package domain

import "time"

// BackendKind selects where synchronised entities are persisted.
type BackendKind string

const (
	// BackendHTTP persists through the remote backend REST API.
	BackendHTTP BackendKind = "http"
	// BackendSQLite persists into a local SQLite database.
	BackendSQLite BackendKind = "sqlite"
	// BackendMemory keeps entities in process memory (dry runs).
	BackendMemory BackendKind = "memory"
)

// IsValid returns true if the backend kind is recognised.
func (k BackendKind) IsValid() bool {
	switch k {
	case BackendHTTP, BackendSQLite, BackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k BackendKind) String() string {
	return string(k)
}

// DefaultBackendURL is the base URL of a locally running backend.
const DefaultBackendURL = "http://localhost:5113"

// AppSettings holds all configurable application settings.
type AppSettings struct {
	Provider ProviderSettings
	Backend  BackendSettings
	Requests RequestSettings
	// ProjectID is the backend project selected by the last connect.
	ProjectID string
	// Workers bounds concurrently running sync tasks.
	Workers int
}

// ProviderSettings identifies the provider account to sync from.
type ProviderSettings struct {
	Type  ProviderType
	Scope string
	Token string
}

// BackendSettings identifies where entities are persisted.
type BackendSettings struct {
	Kind BackendKind
	URL  string
	// DataDir is used by the SQLite backend.
	DataDir string
}

// RequestSettings bounds individual network requests.
// There is no retry: a request that exceeds its timeout fails its task.
type RequestSettings struct {
	MetadataTimeout time.Duration
	BulkTimeout     time.Duration
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Backend: BackendSettings{
			Kind: BackendHTTP,
			URL:  DefaultBackendURL,
		},
		Requests: RequestSettings{
			MetadataTimeout: 10 * time.Second,
			BulkTimeout:     120 * time.Second,
		},
		Workers: 4,
	}
}

// IsConfigured returns true if enough settings exist to connect.
func (s *AppSettings) IsConfigured() bool {
	return s.Provider.Type.IsValid() && s.Provider.Scope != "" && s.Provider.Token != ""
}
