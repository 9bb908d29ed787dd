package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, BackendHTTP, s.Backend.Kind)
	assert.Equal(t, DefaultBackendURL, s.Backend.URL)
	assert.Equal(t, 10*time.Second, s.Requests.MetadataTimeout)
	assert.Equal(t, 120*time.Second, s.Requests.BulkTimeout)
	assert.Equal(t, 4, s.Workers)
	assert.False(t, s.IsConfigured())
}

func TestAppSettings_IsConfigured(t *testing.T) {
	s := DefaultAppSettings()
	s.Provider = ProviderSettings{Type: ProviderGitHub, Scope: "my-org", Token: "ghp_1234567890"}

	assert.True(t, s.IsConfigured())

	s.Provider.Type = "gitlab"
	assert.False(t, s.IsConfigured())
}

func TestBackendKind_IsValid(t *testing.T) {
	tests := []struct {
		kind     BackendKind
		expected bool
	}{
		{BackendHTTP, true},
		{BackendSQLite, true},
		{BackendMemory, true},
		{BackendKind("postgres"), false},
		{BackendKind(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.IsValid())
		})
	}
}
