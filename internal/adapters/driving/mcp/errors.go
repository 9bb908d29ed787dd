package mcp

import "errors"

var (
	// ErrMissingSyncService is returned when the sync service is not provided.
	ErrMissingSyncService = errors.New("mcp: sync service is required")

	// ErrMissingSession is returned when no session opener is provided.
	ErrMissingSession = errors.New("mcp: session opener is required")

	// ErrMissingTaskRunner is returned when no task runner is provided.
	ErrMissingTaskRunner = errors.New("mcp: task runner is required")
)
