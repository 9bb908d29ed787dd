package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/logger"
)

// Client wraps the go-github client with throttling, per-request timeouts
// and error classification.
type Client struct {
	gh          *gh.Client
	cfg         Config
	rateLimiter *RateLimiter
}

// NewClient creates a GitHub API client authenticating with a static token.
// No request is issued until a fetch method is called.
func NewClient(token string, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, domain.NewValidationError("base_url", fmt.Sprintf("invalid GitHub API URL: %v", err))
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	client := gh.NewClient(oauth2.NewClient(context.Background(), ts))
	client.BaseURL = base

	return &Client{
		gh:          client,
		cfg:         cfg,
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond),
	}, nil
}

// GitHub returns the underlying go-github client.
func (c *Client) GitHub() *gh.Client {
	return c.gh
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// get runs a single-object request bounded by the metadata timeout.
func get[T any](
	ctx context.Context,
	c *Client,
	op string,
	fetch func(ctx context.Context) (T, *gh.Response, error),
) (T, error) {
	var zero T

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return zero, c.wrapError(err, op)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.MetadataTimeout)
	defer cancel()

	value, resp, err := fetch(reqCtx)
	if err != nil {
		return zero, c.wrapError(err, op)
	}

	c.updateRateLimitFromResponse(resp)
	return value, nil
}

// listAll pages through a REST list until GitHub reports no next page.
// Each page is bounded by the bulk timeout.
func listAll[T any](
	ctx context.Context,
	c *Client,
	op string,
	opts *gh.ListOptions,
	fetch func(ctx context.Context) ([]T, *gh.Response, error),
) ([]T, error) {
	opts.PerPage = PageSize
	all := make([]T, 0)

	for page := 1; ; page++ {
		select {
		case <-ctx.Done():
			return nil, c.wrapError(ctx.Err(), op)
		default:
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, c.wrapError(err, op)
		}

		pageCtx, cancel := context.WithTimeout(ctx, c.cfg.BulkTimeout)
		items, resp, err := fetch(pageCtx)
		cancel()
		if err != nil {
			return nil, c.wrapError(err, op)
		}

		c.updateRateLimitFromResponse(resp)
		all = append(all, items...)
		logger.Debug("github: %s page %d: %d items", op, page, len(items))

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// graphQLRequest is the POST body of a GraphQL call.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphQLError is one entry of a GraphQL errors array.
type graphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// graphQL posts a query to the GraphQL endpoint and decodes the response
// into out. The call is bounded by the bulk timeout.
func (c *Client) graphQL(ctx context.Context, op, query string, variables map[string]any, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return c.wrapError(err, op)
	}

	req, err := c.gh.NewRequest(http.MethodPost, "graphql", &graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return &domain.ProviderError{Provider: domain.ProviderGitHub, Kind: domain.KindAPI, Message: fmt.Sprintf("%s: %v", op, err)}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.BulkTimeout)
	defer cancel()

	resp, err := c.gh.Do(reqCtx, req, out)
	if err != nil {
		return c.wrapError(err, op)
	}

	c.updateRateLimitFromResponse(resp)
	return nil
}

// classifyGraphQLErrors converts a non-empty GraphQL errors array.
func classifyGraphQLErrors(errs []graphQLError) error {
	if len(errs) == 0 {
		return nil
	}

	messages := make([]string, len(errs))
	for i, e := range errs {
		messages[i] = e.Message
	}

	provErr := &domain.ProviderError{
		Provider: domain.ProviderGitHub,
		Kind:     domain.KindAPI,
		Code:     errs[0].Type,
		Message:  errs[0].Message,
		Details:  strings.Join(messages, "; "),
	}
	switch errs[0].Type {
	case "RATE_LIMITED":
		provErr.Kind = domain.KindRateLimit
	case "NOT_FOUND":
		provErr.Kind = domain.KindNotFound
	case "FORBIDDEN", "INSUFFICIENT_SCOPES":
		provErr.Kind = domain.KindAuth
	}
	return provErr
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// timestamp converts a go-github timestamp, keeping UTC.
func timestamp(ts gh.Timestamp) time.Time {
	if ts.Time.IsZero() {
		return time.Time{}
	}
	return ts.Time.UTC()
}
