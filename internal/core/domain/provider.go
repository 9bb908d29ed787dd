package domain

import (
	"fmt"
	"strings"
)

// ProviderType identifies a source-control provider.
type ProviderType string

const (
	// ProviderGitHub is github.com (REST + GraphQL).
	ProviderGitHub ProviderType = "github"
	// ProviderAzureDevOps is dev.azure.com (REST with Basic auth over a PAT).
	ProviderAzureDevOps ProviderType = "azure_devops"
)

// ProviderTypes returns every supported provider in display order.
func ProviderTypes() []ProviderType {
	return []ProviderType{ProviderGitHub, ProviderAzureDevOps}
}

// ParseProviderType converts user input into a ProviderType.
// Matching is case-insensitive and accepts the common spellings.
func ParseProviderType(s string) (ProviderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "github", "gh":
		return ProviderGitHub, nil
	case "azure_devops", "azure-devops", "azuredevops", "azure devops", "azure", "ado":
		return ProviderAzureDevOps, nil
	default:
		return "", &UnsupportedProviderError{Type: s}
	}
}

// IsValid returns true if the provider type is one of the supported set.
func (p ProviderType) IsValid() bool {
	return p == ProviderGitHub || p == ProviderAzureDevOps
}

// String returns the string representation.
func (p ProviderType) String() string {
	return string(p)
}

// DisplayName returns the human-readable provider name.
func (p ProviderType) DisplayName() string {
	switch p {
	case ProviderGitHub:
		return "GitHub"
	case ProviderAzureDevOps:
		return "Azure DevOps"
	default:
		return string(p)
	}
}

// ScopeHint describes the scope string expected by the provider.
func (p ProviderType) ScopeHint() string {
	switch p {
	case ProviderGitHub:
		return "organization login (e.g. my-org)"
	case ProviderAzureDevOps:
		return "organization/project (e.g. contoso/payments)"
	default:
		return "organization"
	}
}

// UnsupportedProviderError is returned for provider types outside the supported set.
type UnsupportedProviderError struct {
	Type string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider %q", e.Type)
}

// Is reports whether target is ErrUnsupportedProvider.
func (e *UnsupportedProviderError) Is(target error) bool {
	return target == ErrUnsupportedProvider
}
