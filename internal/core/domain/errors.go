package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent failure categories.
// Concrete error types below match them with errors.Is.
var (
	// ErrInvalidInput indicates malformed or missing input.
	// It is always raised before any network call.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedProvider indicates a provider type outside the supported set.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// Provider Errors.

	// ErrProviderAuth indicates the provider rejected the credentials.
	ErrProviderAuth = errors.New("provider authentication failed")

	// ErrProviderRateLimit indicates the provider throttled the request.
	ErrProviderRateLimit = errors.New("provider rate limit exceeded")

	// ErrProviderNotFound indicates the provider resource does not exist.
	ErrProviderNotFound = errors.New("provider resource not found")

	// ErrProviderAPI indicates any other provider failure.
	ErrProviderAPI = errors.New("provider API error")

	// ErrBackend indicates a non-2xx or unsuccessful backend response.
	ErrBackend = errors.New("backend API error")

	// ErrNetwork indicates a transport failure before an HTTP response arrived.
	ErrNetwork = errors.New("network error")
)

// ValidationError describes invalid caller input.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ErrorKind classifies a provider failure.
type ErrorKind int

const (
	// KindAPI is any provider failure not covered by another kind.
	KindAPI ErrorKind = iota
	// KindAuth is an authentication or authorisation failure.
	KindAuth
	// KindRateLimit is a throttled request.
	KindRateLimit
	// KindNotFound is a missing resource.
	KindNotFound
)

// String returns the string representation.
func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindNotFound:
		return "not_found"
	default:
		return "api"
	}
}

// ProviderError is a classified HTTP failure from a provider.
type ProviderError struct {
	Provider   ProviderType
	Kind       ErrorKind
	StatusCode int
	// Code is the machine-readable error code when the provider sends one.
	Code    string
	Message string
	// Details is optional supporting text suitable for display.
	Details string
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Provider.DisplayName(), e.Message)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Provider.DisplayName(), e.Message, e.StatusCode)
}

// Is maps the error kind onto the provider sentinels.
func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrProviderAuth:
		return e.Kind == KindAuth
	case ErrProviderRateLimit:
		return e.Kind == KindRateLimit
	case ErrProviderNotFound:
		return e.Kind == KindNotFound
	case ErrProviderAPI:
		return e.Kind == KindAPI
	}
	return false
}

// BackendError is a failed backend response. StatusCode is zero for
// local backends.
type BackendError struct {
	StatusCode int
	Code       string
	Message    string
	Details    string
}

func (e *BackendError) Error() string {
	msg := "backend: " + e.Message
	if e.Code != "" {
		msg += " [" + e.Code + "]"
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	return msg
}

// Is reports whether target is ErrBackend.
func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}

// NetworkError wraps a transport-level failure.
type NetworkError struct {
	// Target names the remote side, e.g. "GitHub" or "backend".
	Target string
	Op     string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s: failed to connect: %v", e.Target, e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrNetwork.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// Details returns the optional details attached to err, if any.
func Details(err error) string {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Details
	}
	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		return backendErr.Details
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) && netErr.Err != nil {
		return netErr.Err.Error()
	}
	return ""
}
