package mcp

import (
	"context"

	"github.com/custodia-labs/orgsync/internal/core/ports/driven"
	"github.com/custodia-labs/orgsync/internal/core/ports/driving"
)

// SessionFunc returns the provider and backend project the tools work against.
type SessionFunc func(ctx context.Context) (driven.Provider, string, error)

// Ports aggregates the collaborators required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Sync reads provider and backend state.
	Sync driving.SyncService

	// Session opens the configured provider and project.
	Session SessionFunc

	// Tasks runs each tool call and resource read as one task.
	Tasks driving.TaskRunner
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Sync == nil {
		return ErrMissingSyncService
	}
	if p.Session == nil {
		return ErrMissingSession
	}
	if p.Tasks == nil {
		return ErrMissingTaskRunner
	}
	return nil
}
