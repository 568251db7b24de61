package tetration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tetraflow/go-tetration/internal/api"
)

// Sentinel errors for common failure modes.
var (
	ErrNoCredentials = errors.New("tetration: no credentials configured")
	ErrNoBaseURL     = errors.New("tetration: no API endpoint configured")

	// ErrScopeNotFound is returned by ScopeService.Find when no scope
	// matches the given name.
	ErrScopeNotFound = errors.New("tetration: scope not found")
)

// ConfigError indicates invalid client or request configuration.
// It is fatal: fix the configuration, do not retry.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("tetration: configuration error: %s", e.Message)
}

// InvalidFilterError indicates a malformed filter expression. It is raised
// at construction time, before any request is built or sent.
type InvalidFilterError struct {
	Field    string
	Operator Operator
	Reason   string
}

func (e *InvalidFilterError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("tetration: invalid filter on field %q (%s): %s", e.Field, e.Operator, e.Reason)
	}
	return fmt.Sprintf("tetration: invalid filter: %s", e.Reason)
}

// UnknownEndpointError indicates a query referenced an endpoint name that
// is not in the catalog.
type UnknownEndpointError struct {
	Name string
}

func (e *UnknownEndpointError) Error() string {
	return fmt.Sprintf("tetration: unknown endpoint %q", e.Name)
}

// APIError represents a general Secure Workload API error. Endpoint and
// Attempts are filled in by the executor so operators can tell a
// fix-your-query failure from a try-again-later one.
type APIError struct {
	StatusCode int    `json:"status"`
	Message    string `json:"error,omitempty"`
	Endpoint   string `json:"-"`
	Attempts   int    `json:"-"`
	RequestID  string `json:"-"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("tetration: API error %d", e.StatusCode)
	if e.Endpoint != "" {
		msg = fmt.Sprintf("tetration: %s: API error %d", e.Endpoint, e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" (after %d attempts)", e.Attempts)
	}
	return msg
}

// Retryable reports whether retrying the request could succeed.
func (e *APIError) Retryable() bool { return false }

// AuthenticationError indicates the signature or credential was rejected
// (401/403). Not retryable: the same signature fails every time.
type AuthenticationError struct {
	APIError
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("tetration: %s: authentication failed: %s", e.Endpoint, e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *AuthenticationError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// RequestError indicates the server rejected the request as malformed
// (4xx other than auth and rate limiting). Not retryable.
type RequestError struct {
	APIError
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("tetration: %s: bad request (%d): %s", e.Endpoint, e.StatusCode, e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *RequestError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// RateLimitError indicates the API rate limit was exceeded (429).
type RateLimitError struct {
	APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("tetration: %s: rate limit exceeded, retry after %s", e.Endpoint, e.RetryAfter)
	}
	return fmt.Sprintf("tetration: %s: rate limit exceeded", e.Endpoint)
}

// Retryable reports whether retrying the request could succeed.
func (e *RateLimitError) Retryable() bool { return true }

// As implements error unwrapping for errors.As to match *APIError.
func (e *RateLimitError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// ServerError indicates an internal server error (5xx).
type ServerError struct {
	APIError
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("tetration: %s: server error %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// Retryable reports whether retrying the request could succeed.
func (e *ServerError) Retryable() bool { return true }

// As implements error unwrapping for errors.As to match *APIError.
func (e *ServerError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// TransportError indicates a network-level failure (timeout, connection
// reset) with no HTTP response to classify.
type TransportError struct {
	Endpoint string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("tetration: %s: transport failure after %d attempts: %v", e.Endpoint, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Retryable reports whether retrying the request could succeed.
func (e *TransportError) Retryable() bool { return true }

// CancelledError indicates the caller cancelled an in-flight query.
type CancelledError struct {
	Endpoint string
	Err      error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("tetration: %s: query cancelled: %v", e.Endpoint, e.Err)
}

func (e *CancelledError) Unwrap() error { return e.Err }

// PaginationLimitError indicates the paginator hit its page cap before the
// server stopped returning cursors. Partial holds everything fetched so
// far; the caller decides whether partial data is acceptable.
type PaginationLimitError struct {
	Endpoint string
	Pages    int
	Partial  *QueryResult
}

func (e *PaginationLimitError) Error() string {
	if e.Partial != nil {
		return fmt.Sprintf("tetration: %s: pagination limit of %d pages exceeded (%d records accumulated)",
			e.Endpoint, e.Pages, len(e.Partial.Records))
	}
	return fmt.Sprintf("tetration: %s: pagination limit of %d pages exceeded", e.Endpoint, e.Pages)
}

// IsRetryable reports whether err is a transient failure that could
// succeed on a later attempt. The transport has already retried transient
// errors internally, so a retryable error here means the retry budget was
// exhausted.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}

// parseError converts a non-2xx HTTP response into the appropriate error type.
func parseError(endpoint string, attempts, statusCode int, body []byte, headers http.Header) error {
	base := APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Attempts:   attempts,
		RequestID:  headers.Get("X-Request-ID"),
	}

	// Try to parse a structured JSON error response
	if err := json.Unmarshal(body, &base); err != nil || base.Message == "" {
		base.Message = string(body)
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &AuthenticationError{APIError: base}
	case statusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			APIError:   base,
			RetryAfter: api.ParseRetryAfter(headers.Get("Retry-After")),
		}
	case statusCode >= http.StatusInternalServerError:
		return &ServerError{APIError: base}
	default:
		return &RequestError{APIError: base}
	}
}

// wrapTransportErr classifies a request-execution error. Cancellation of
// the caller's context is distinguished from per-attempt timeouts and
// network failures, which are transport errors.
func wrapTransportErr(ctx context.Context, endpoint string, attempts int, err error) error {
	if ctx.Err() != nil {
		return &CancelledError{Endpoint: endpoint, Err: ctx.Err()}
	}
	return &TransportError{Endpoint: endpoint, Attempts: attempts, Err: err}
}
