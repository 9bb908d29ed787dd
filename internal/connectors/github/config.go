package github

import (
	"time"
)

const (
	// DefaultBaseURL is the GitHub REST API root. GraphQL lives at DefaultBaseURL + "graphql".
	DefaultBaseURL = "https://api.github.com/"

	// DefaultMetadataTimeout bounds single-object requests.
	DefaultMetadataTimeout = 10 * time.Second

	// DefaultBulkTimeout bounds each page of a paginated request.
	DefaultBulkTimeout = 120 * time.Second

	// PageSize is the page size for REST lists and GraphQL search.
	PageSize = 100
)

// Config holds client settings for a GitHub provider.
type Config struct {
	// BaseURL overrides the API root; it must end with a slash.
	BaseURL string

	// MetadataTimeout bounds single-object requests.
	MetadataTimeout time.Duration

	// BulkTimeout bounds each page of a paginated request.
	BulkTimeout time.Duration

	// RequestsPerSecond is the proactive throttle rate.
	RequestsPerSecond float64
}

// DefaultConfig returns the configuration used against github.com.
func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		MetadataTimeout:   DefaultMetadataTimeout,
		BulkTimeout:       DefaultBulkTimeout,
		RequestsPerSecond: ProactiveRate,
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
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
	return c
}
