// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The reconciliation functions in reconcile.go are pure: they compute
// deltas between saved and provider entities and never persist anything.
// SyncService composes them with a Provider and a Backend.
package services
