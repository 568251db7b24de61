// Package api provides the low-level HTTP transport for Secure Workload
// API calls: request construction, signing, and the retry policy.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tetraflow/go-tetration/internal/auth"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultMaxBodySize = 32 * 1024 * 1024 // 32MB; flow searches can be large
)

// RetryPolicy controls how the transport retries transient failures.
// Intervals grow exponentially with jitter; MaxElapsedTime is a hard
// ceiling on total wall-clock retry time, independent of attempt count.
// A zero-interval policy is valid and useful in tests.
type RetryPolicy struct {
	MaxAttempts         int
	InitialInterval     time.Duration
	MaxInterval         time.Duration
	MaxElapsedTime      time.Duration
	Multiplier          float64
	RandomizationFactor float64
}

// DefaultRetryPolicy returns the production retry policy: 3 attempts,
// exponential backoff with jitter, bounded total retry time.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:         3,
		InitialInterval:     500 * time.Millisecond,
		MaxInterval:         10 * time.Second,
		MaxElapsedTime:      2 * time.Minute,
		Multiplier:          2.0,
		RandomizationFactor: 0.5,
	}
}

// newBackOff builds the interval source for one request's retry loop.
func (p RetryPolicy) newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	bo.MaxInterval = p.MaxInterval
	bo.MaxElapsedTime = p.MaxElapsedTime
	bo.Multiplier = p.Multiplier
	bo.RandomizationFactor = p.RandomizationFactor
	bo.Reset()
	return bo
}

// Param is a single query-string parameter. Parameters are encoded in
// slice order so identical logical requests produce identical URLs.
type Param struct {
	Key   string
	Value string
}

// Request represents one signed API call. Body holds the exact canonical
// bytes that will be hashed, signed, and sent.
type Request struct {
	Method  string
	Path    string
	Query   []Param
	Body    []byte
	Headers http.Header
}

// Response represents an API response. Attempts records how many times
// the request went on the wire, for error reporting.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
	Attempts   int
}

// Transport executes signed requests over HTTPS with retries. It holds no
// per-call mutable state and is safe for concurrent use.
type Transport struct {
	BaseURL        *url.URL
	HTTPClient     *http.Client
	Signer         *auth.Signer
	UserAgent      string
	Logger         *zap.Logger
	Limiter        *rate.Limiter
	Breaker        *gobreaker.CircuitBreaker
	Retry          RetryPolicy
	AttemptTimeout time.Duration
	MaxBodySize    int64
}

// NewTransport creates a Transport with the given configuration.
func NewTransport(baseURL string, signer *auth.Signer, httpClient *http.Client) (*Transport, error) {
	if signer == nil {
		return nil, fmt.Errorf("signer must be provided")
	}

	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: defaultHTTPTimeout,
		}
	}

	return &Transport{
		BaseURL:     u,
		HTTPClient:  httpClient,
		Signer:      signer,
		UserAgent:   "go-tetration/1.0",
		Logger:      zap.NewNop(),
		Retry:       DefaultRetryPolicy(),
		MaxBodySize: defaultMaxBodySize,
	}, nil
}

// Do executes an API request, retrying transient failures (429, 5xx,
// network errors) per the retry policy. It returns the final response, or
// an error only when no response was obtained at all. Callers classify
// the final status code; partial retry state never leaks upward.
func (t *Transport) Do(ctx context.Context, req *Request) (*Response, error) {
	bo := t.Retry.newBackOff()
	maxAttempts := t.Retry.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var (
		resp     *Response
		attempts int
		lastErr  error
	)

	for {
		if t.Limiter != nil {
			if err := t.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		attempts++
		resp, lastErr = t.doAttempt(ctx, req)

		if lastErr == nil && !retryableStatus(resp.StatusCode) {
			resp.Attempts = attempts
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempts >= maxAttempts {
			break
		}

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			break
		}
		// A server-provided Retry-After wins when it is longer than the
		// computed backoff interval.
		if lastErr == nil && resp.StatusCode == http.StatusTooManyRequests {
			if ra := ParseRetryAfter(resp.Headers.Get("Retry-After")); ra > wait {
				wait = ra
			}
		}

		t.Logger.Warn("retrying request",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("attempt", attempts),
			zap.Duration("backoff", wait),
			zap.Int("status", statusOf(resp)),
			zap.Error(lastErr))

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if lastErr != nil {
		return nil, &Error{Attempts: attempts, Err: lastErr}
	}
	resp.Attempts = attempts
	return resp, nil
}

// Error is returned by Do when no HTTP response could be obtained at all.
// Attempts records how many times the request was tried.
type Error struct {
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("request failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// doAttempt runs a single attempt, through the circuit breaker when one
// is configured. An open breaker fails fast without touching the network.
func (t *Transport) doAttempt(ctx context.Context, req *Request) (*Response, error) {
	if t.Breaker == nil {
		return t.attempt(ctx, req)
	}
	result, err := t.Breaker.Execute(func() (any, error) {
		return t.attempt(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Response), nil
}

// attempt sends the request once. The per-attempt timeout applies here,
// not across retries. The response body read is bounded and the
// connection is always released, including on cancellation.
func (t *Transport) attempt(ctx context.Context, req *Request) (*Response, error) {
	if t.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.AttemptTimeout)
		defer cancel()
	}

	httpReq, err := t.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	httpResp, err := t.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	// Limit response body size to prevent memory exhaustion
	limitedReader := io.LimitReader(httpResp.Body, t.MaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if int64(len(body)) > t.MaxBodySize {
		return nil, fmt.Errorf("response too large: exceeds %d bytes", t.MaxBodySize)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Headers:    httpResp.Header,
	}, nil
}

func (t *Transport) buildRequest(ctx context.Context, req *Request) (*http.Request, error) {
	u := t.BaseURL.JoinPath(req.Path)
	u.RawQuery = encodeQuery(req.Query)

	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", t.UserAgent)

	// Apply custom headers before signing so the signature covers the
	// final content type.
	maps.Copy(httpReq.Header, req.Headers)

	if httpReq.Header.Get("X-Request-ID") == "" {
		httpReq.Header.Set("X-Request-ID", uuid.NewString())
	}

	t.Signer.Sign(httpReq, req.Body)

	return httpReq, nil
}

// encodeQuery encodes parameters preserving insertion order, unlike
// url.Values which sorts keys.
func encodeQuery(params []Param) string {
	if len(params) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, p := range params {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}
	return sb.String()
}

// retryableStatus reports whether an HTTP status is worth retrying:
// rate limiting and server-side failures only. Auth and other client
// errors fail the same way every time.
func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func statusOf(resp *Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

// ParseRetryAfter parses a Retry-After header value. It handles both
// seconds (integer) and HTTP-date formats.
func ParseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	// Try parsing as seconds first
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second
	}

	// Try parsing as HTTP-date (RFC 1123)
	if t, err := time.Parse(time.RFC1123, value); err == nil {
		duration := time.Until(t)
		if duration > 0 {
			return duration
		}
	}

	return 0
}
