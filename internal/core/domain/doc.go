// Package domain defines the core entities for orgsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Project: An organisation (GitHub) or organisation/project (Azure DevOps)
//   - User, Team, TeamMember: People and groups within a project
//   - Repository, PullRequest: Code hosting entities
//   - Snapshot: A saved/unsaved split produced by reconciliation
//
// Stable identifiers for people are produced by NormalizeID. Every other
// entity keeps the identifier its provider assigned.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
