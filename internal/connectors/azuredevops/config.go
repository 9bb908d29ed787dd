package azuredevops

import (
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the Azure DevOps services root.
	DefaultBaseURL = "https://dev.azure.com/"

	// DefaultEntitlementsURL is the root of the user entitlements API.
	DefaultEntitlementsURL = "https://vsaex.dev.azure.com/"

	// DefaultMetadataTimeout bounds single-object requests.
	DefaultMetadataTimeout = 10 * time.Second

	// DefaultBulkTimeout bounds each page of a paginated request.
	DefaultBulkTimeout = 120 * time.Second

	// DefaultRequestsPerSecond is the proactive throttle rate.
	DefaultRequestsPerSecond = 5.0

	// PageSize is the $top used for offset pagination.
	PageSize = 100

	// APIVersion is used for core and git endpoints.
	APIVersion = "7.0"

	// PullRequestAPIVersion is used for pull request search.
	PullRequestAPIVersion = "7.2-preview.2"
)

// Config holds client settings for an Azure DevOps provider.
type Config struct {
	// BaseURL overrides the services root; it must end with a slash.
	BaseURL string

	// EntitlementsURL overrides the entitlements root; it must end with a slash.
	EntitlementsURL string

	MetadataTimeout   time.Duration
	BulkTimeout       time.Duration
	RequestsPerSecond float64

	// HTTPClient is used for all requests. Defaults to a new http.Client.
	HTTPClient *http.Client
}

// DefaultConfig returns the configuration used against dev.azure.com.
func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		EntitlementsURL:   DefaultEntitlementsURL,
		MetadataTimeout:   DefaultMetadataTimeout,
		BulkTimeout:       DefaultBulkTimeout,
		RequestsPerSecond: DefaultRequestsPerSecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.EntitlementsURL == "" {
		c.EntitlementsURL = d.EntitlementsURL
	}
	if c.MetadataTimeout <= 0 {
		c.MetadataTimeout = d.MetadataTimeout
	}
	if c.BulkTimeout <= 0 {
		c.BulkTimeout = d.BulkTimeout
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = d.RequestsPerSecond
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	return c
}
