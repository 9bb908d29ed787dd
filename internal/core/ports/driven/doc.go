// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - Provider: Reads organisation metadata from GitHub or Azure DevOps
//   - ProviderFactory: Creates a Provider from a type, scope and token
//   - Backend: Persists and lists synchronised entities
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
