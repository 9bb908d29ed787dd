package connectors

import (
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/orgsync/internal/connectors/azuredevops"
	"github.com/custodia-labs/orgsync/internal/connectors/github"
	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.ProviderFactory = (*Factory)(nil)

// Builder creates a provider for a scope and token. It must not perform
// network I/O.
type Builder func(scope, token string) (driven.Provider, error)

// Factory creates providers from a registry of builders keyed by type.
type Factory struct {
	mu       sync.RWMutex
	builders map[domain.ProviderType]Builder
}

// NewFactory creates a factory with the GitHub and Azure DevOps providers
// registered, using the given request timeouts.
func NewFactory(requests domain.RequestSettings) *Factory {
	ghCfg := github.DefaultConfig()
	ghCfg.MetadataTimeout = requests.MetadataTimeout
	ghCfg.BulkTimeout = requests.BulkTimeout

	adoCfg := azuredevops.DefaultConfig()
	adoCfg.MetadataTimeout = requests.MetadataTimeout
	adoCfg.BulkTimeout = requests.BulkTimeout

	return NewFactoryWithConfig(ghCfg, adoCfg)
}

// NewFactoryWithConfig creates a factory with explicit client configuration.
func NewFactoryWithConfig(ghCfg github.Config, adoCfg azuredevops.Config) *Factory {
	f := &Factory{builders: make(map[domain.ProviderType]Builder)}

	f.Register(domain.ProviderGitHub, func(scope, token string) (driven.Provider, error) {
		return github.New(scope, token, ghCfg)
	})
	f.Register(domain.ProviderAzureDevOps, func(scope, token string) (driven.Provider, error) {
		return azuredevops.New(scope, token, adoCfg), nil
	})

	return f
}

// Register adds or replaces the builder for a provider type.
func (f *Factory) Register(providerType domain.ProviderType, builder Builder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[providerType] = builder
}

// Create returns a provider for the given type, scope and token.
func (f *Factory) Create(providerType domain.ProviderType, scope, token string) (driven.Provider, error) {
	f.mu.RLock()
	builder, ok := f.builders[providerType]
	f.mu.RUnlock()

	if !ok {
		return nil, &domain.UnsupportedProviderError{Type: string(providerType)}
	}

	return builder(strings.TrimSpace(scope), strings.TrimSpace(token))
}

// SupportedTypes returns all registered provider types, sorted.
func (f *Factory) SupportedTypes() []domain.ProviderType {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]domain.ProviderType, 0, len(f.builders))
	for t := range f.builders {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
