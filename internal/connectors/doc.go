// Package connectors provides the provider factory. Each provider lives in
// its own subpackage and knows how to read organisation metadata from one
// source-control service (GitHub, Azure DevOps).
//
// Providers are registered with the Factory at startup.
package connectors
