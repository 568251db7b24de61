package tetration

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tetraflow/go-tetration/internal/api"
)

// RetryPolicy controls how transient failures are retried. Substitute a
// zero-interval policy in tests to assert attempt counts without waiting.
type RetryPolicy = api.RetryPolicy

// DefaultRetryPolicy returns the production retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return api.DefaultRetryPolicy()
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	baseURL     string
	apiKey      string
	apiSecret   string
	apiVersion  string
	httpClient  *http.Client
	timeout     time.Duration
	userAgent   string
	insecureTLS bool
	retry       RetryPolicy
	rateLimit   float64
	rateBurst   int
	breaker     bool
	logger      *zap.Logger
	clock       func() time.Time
	maxPages    int
}

// WithBaseURL sets the Secure Workload appliance URL.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithAPIKey sets the OpenAPI key/secret credentials.
func WithAPIKey(key, secret string) ClientOption {
	return func(c *clientConfig) {
		c.apiKey = key
		c.apiSecret = secret
	}
}

// WithAPIVersion selects the API version path segment. Default is "v1".
func WithAPIVersion(version string) ClientOption {
	return func(c *clientConfig) {
		c.apiVersion = version
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-attempt request timeout.
// Note: This option is ignored when WithHTTPClient is used;
// set the timeout directly on the provided client instead.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

// WithInsecureTLS disables certificate verification. Only for lab
// appliances with self-signed certificates; verification is on by default.
func WithInsecureTLS() ClientOption {
	return func(c *clientConfig) {
		c.insecureTLS = true
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *clientConfig) {
		c.retry = p
	}
}

// WithRateLimit throttles outgoing requests client-side to rps requests
// per second with the given burst.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *clientConfig) {
		c.rateLimit = rps
		c.rateBurst = burst
	}
}

// WithCircuitBreaker short-circuits requests after repeated transport
// failures instead of hammering an unreachable appliance.
func WithCircuitBreaker() ClientOption {
	return func(c *clientConfig) {
		c.breaker = true
	}
}

// WithLogger sets a structured logger for transport diagnostics. Requests
// are logged at debug level, retries at warn. Default is a no-op logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithClock sets the time source used for request signing. Injectable for
// deterministic signing tests.
func WithClock(clock func() time.Time) ClientOption {
	return func(c *clientConfig) {
		c.clock = clock
	}
}

// WithMaxPages caps how many pages a single paginated query may fetch.
func WithMaxPages(n int) ClientOption {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// RequestOption configures individual API requests.
type RequestOption func(*requestConfig)

type requestConfig struct {
	headers http.Header
}

func newRequestConfig() *requestConfig {
	return &requestConfig{
		headers: make(http.Header),
	}
}

func (r *requestConfig) apply(opts ...RequestOption) {
	for _, opt := range opts {
		opt(r)
	}
}

// WithHeader adds a custom header to a request.
func WithHeader(key, value string) RequestOption {
	return func(r *requestConfig) {
		r.headers.Set(key, value)
	}
}

// WithHeaders adds multiple custom headers to a request.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *requestConfig) {
		for k, v := range headers {
			r.headers.Set(k, v)
		}
	}
}

// WithRequestID sets the X-Request-ID header for tracing. When unset, the
// transport generates one per request.
func WithRequestID(id string) RequestOption {
	return WithHeader("X-Request-ID", id)
}
