package azuredevops

import (
	"strings"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

// SplitScope splits an "organization/project" scope into its two segments.
// Anything other than exactly two non-empty segments is a validation error.
func SplitScope(scope string) (organization, project string, err error) {
	parts := strings.Split(strings.TrimSpace(scope), "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", domain.NewValidationError("scope",
			"Azure DevOps organization name must be in format 'organization/project'")
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
