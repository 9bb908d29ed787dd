// Package github implements the GitHub provider.
//
// Organisation, member, team and repository metadata is read through the
// REST API using go-github. Pull requests are read through a single GraphQL
// search query per repository, paginated with pageInfo cursors.
//
// # Architecture
//
// The provider follows the driven port pattern defined in [driven.Provider].
// It comprises the following components:
//
//   - Provider: maps GitHub objects onto domain entities
//   - Client: go-github wrapper with rate limiting and error classification
//   - RateLimiter: proactive token bucket plus X-RateLimit header tracking
//
// # Identity
//
// User and team member node ids are passed through [domain.NormalizeID].
// Organisation, team, repository and pull request node ids are kept as
// GitHub returns them.
//
// # Authentication
//
// A personal access token is sent as a bearer token via golang.org/x/oauth2.
// Construction performs no network I/O.
//
// # Error Handling
//
// HTTP failures are classified into [domain.ProviderError]:
//
//   - 401: authentication failed
//   - 403 mentioning a rate limit, or 429: rate limited
//   - 403 otherwise: insufficient permissions
//   - 404: not found
//
// Transport failures become [domain.NetworkError]. Nothing is retried.
package github
