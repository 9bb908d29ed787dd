package azuredevops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/custodia-labs/orgsync/internal/core/domain"
)

// apiError is the error body returned by Azure DevOps.
type apiError struct {
	Message        string    `json:"message"`
	TypeKey        string    `json:"typeKey"`
	ErrorCode      any       `json:"errorCode"`
	InnerException *apiError `json:"innerException"`
	Value          []struct {
		Message string `json:"message"`
	} `json:"value"`
}

// IsHTML reports whether the response carries an HTML document.
// Azure DevOps answers with a sign-in page when the PAT is not accepted.
func IsHTML(resp *http.Response) bool {
	return strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "text/html")
}

// ClassifyResponse maps a failed Azure DevOps response onto a ProviderError.
// body is the raw response body, already read.
func ClassifyResponse(resp *http.Response, body []byte, operation string) *domain.ProviderError {
	e := &domain.ProviderError{
		Provider:   domain.ProviderAzureDevOps,
		StatusCode: resp.StatusCode,
	}

	if IsHTML(resp) {
		e.Kind = domain.KindAuth
		e.Message = "Received a sign-in page instead of data. Check your personal access token and its scopes."
		e.Details = operation
		return e
	}

	message, code := parseErrorBody(body)
	e.Code = code
	lower := strings.ToLower(string(body))

	switch {
	case resp.StatusCode == http.StatusNonAuthoritativeInfo:
		e.Kind = domain.KindAuth
		e.Message = "Authentication failed. The personal access token appears to be malformed."
		e.Details = operation
	case resp.StatusCode == http.StatusUnauthorized:
		e.Kind = domain.KindAuth
		e.Message = "Authentication failed. Check your personal access token."
		e.Details = message
	case resp.StatusCode == http.StatusForbidden && (strings.Contains(lower, "rate limit") || strings.Contains(lower, "throttled")):
		e.Kind = domain.KindRateLimit
		e.Message = "API rate limit exceeded"
		e.Details = message
	case resp.StatusCode == http.StatusForbidden:
		e.Kind = domain.KindAuth
		e.Message = "Insufficient permissions"
		e.Details = message
	case resp.StatusCode == http.StatusNotFound:
		e.Kind = domain.KindNotFound
		e.Message = fmt.Sprintf("%s not found", operation)
		e.Details = message
	case resp.StatusCode == http.StatusTooManyRequests:
		e.Kind = domain.KindRateLimit
		e.Message = "Too many requests"
		e.Details = message
	default:
		e.Kind = domain.KindAPI
		e.Message = message
		if e.Message == "" {
			e.Message = strings.TrimSpace(string(body))
		}
		if e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		e.Details = operation
	}

	return e
}

// parseErrorBody extracts the message and code from an error body.
// The message comes from message, then value[0].message, then
// innerException.message.
func parseErrorBody(body []byte) (message, code string) {
	var parsed apiError
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", ""
	}

	switch {
	case parsed.Message != "":
		message = parsed.Message
	case len(parsed.Value) > 0 && parsed.Value[0].Message != "":
		message = parsed.Value[0].Message
	case parsed.InnerException != nil:
		message = parsed.InnerException.Message
	}

	switch v := parsed.ErrorCode.(type) {
	case string:
		code = v
	case float64:
		if v != 0 {
			code = fmt.Sprintf("%.0f", v)
		}
	}
	if code == "" {
		code = parsed.TypeKey
	}

	return message, code
}

// wrapTransportError converts errors raised before a response arrived.
func wrapTransportError(err error, operation string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &domain.NetworkError{Target: domain.ProviderAzureDevOps.DisplayName(), Op: operation, Err: err}
	}
	return &domain.ProviderError{
		Provider: domain.ProviderAzureDevOps,
		Kind:     domain.KindAPI,
		Message:  fmt.Sprintf("%s: %v", operation, err),
	}
}
