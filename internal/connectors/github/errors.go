package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

// ClassifyResponse maps a failed GitHub response onto a ProviderError.
// message is the API's message field, docURL its documentation_url.
func ClassifyResponse(status int, message, docURL string) *domain.ProviderError {
	e := &domain.ProviderError{
		Provider:   domain.ProviderGitHub,
		StatusCode: status,
		Details:    docURL,
	}

	switch {
	case status == http.StatusUnauthorized:
		e.Kind = domain.KindAuth
		e.Message = "Authentication failed. Check your personal access token."
		e.Details = message
	case status == http.StatusForbidden && strings.Contains(strings.ToLower(message), "rate limit"):
		e.Kind = domain.KindRateLimit
		e.Message = "API rate limit exceeded"
		e.Details = message
	case status == http.StatusForbidden:
		e.Kind = domain.KindAuth
		e.Message = "Insufficient permissions"
		e.Details = message
	case status == http.StatusNotFound:
		e.Kind = domain.KindNotFound
		e.Message = "Resource not found"
		e.Details = message
	case status == http.StatusTooManyRequests:
		e.Kind = domain.KindRateLimit
		e.Message = "Too many requests"
		e.Details = message
	default:
		e.Kind = domain.KindAPI
		e.Message = message
		if e.Message == "" {
			e.Message = http.StatusText(status)
		}
	}

	return e
}

// wrapError converts go-github and transport errors into the shared taxonomy.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &domain.ProviderError{
			Provider:   domain.ProviderGitHub,
			Kind:       domain.KindRateLimit,
			StatusCode: statusOf(rateLimitErr.Response),
			Message:    "API rate limit exceeded",
			Details:    fmt.Sprintf("resets at %s", rateLimitErr.Rate.Reset.Time.Format(time.RFC3339)),
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &domain.ProviderError{
			Provider:   domain.ProviderGitHub,
			Kind:       domain.KindRateLimit,
			StatusCode: statusOf(abuseErr.Response),
			Message:    "Secondary rate limit exceeded",
			Details:    abuseErr.Message,
		}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) {
		return ClassifyResponse(statusOf(ghErr.Response), ghErr.Message, ghErr.DocumentationURL)
	}

	if isTransportError(err) {
		return &domain.NetworkError{Target: domain.ProviderGitHub.DisplayName(), Op: operation, Err: err}
	}

	return &domain.ProviderError{
		Provider: domain.ProviderGitHub,
		Kind:     domain.KindAPI,
		Message:  fmt.Sprintf("%s: %v", operation, err),
	}
}

// isTransportError reports whether err happened before a response arrived.
func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
