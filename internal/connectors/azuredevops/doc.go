// Package azuredevops implements the Azure DevOps provider.
//
// Scopes have the form "organization/project". Requests authenticate with
// HTTP Basic auth using an empty user name and the personal access token
// as password. Pull requests are fetched in two offset-paginated legs,
// one per time range type (Opened and Closed), which are concatenated.
package azuredevops
