package github

import (
	"strings"

	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.Provider = (*Provider)(nil)

// Provider reads organisation metadata from GitHub.
type Provider struct {
	org    string
	client *Client
}

// New creates a GitHub provider for the organisation login org.
func New(org, token string, cfg Config) (*Provider, error) {
	org = strings.TrimSpace(org)
	if org == "" {
		return nil, domain.NewValidationError("scope", "GitHub organization is required")
	}

	client, err := NewClient(token, cfg)
	if err != nil {
		return nil, err
	}

	return &Provider{org: org, client: client}, nil
}

// Type returns the provider type.
func (p *Provider) Type() domain.ProviderType {
	return domain.ProviderGitHub
}

// Scope returns the organisation login.
func (p *Provider) Scope() string {
	return p.org
}

// Client returns the underlying API client.
func (p *Provider) Client() *Client {
	return p.client
}
