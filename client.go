package tetration

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/tetraflow/go-tetration/internal/api"
	"github.com/tetraflow/go-tetration/internal/auth"
)

// Default configuration values.
const (
	defaultTimeout    = 30 * time.Second
	defaultAPIVersion = "v1"
	defaultMaxPages   = 50
)

// Client is the Secure Workload API client.
type Client struct {
	// Scopes provides access to application scope operations.
	Scopes ScopeService

	// Applications provides access to application workspace operations.
	Applications ApplicationService

	// Inventory provides filtered inventory search.
	Inventory InventoryService

	// Flows provides network flow search and aggregation.
	Flows FlowService

	// Users provides user account operations.
	Users UserService

	// Roles provides role operations.
	Roles RoleService

	transport *api.Transport
	basePath  string
	maxPages  int
}

// NewClient creates a new Secure Workload client with the given options.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		timeout:    defaultTimeout,
		apiVersion: defaultAPIVersion,
		maxPages:   defaultMaxPages,
		retry:      api.DefaultRetryPolicy(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.baseURL == "" {
		return nil, ErrNoBaseURL
	}

	if cfg.apiKey == "" || cfg.apiSecret == "" {
		return nil, ErrNoCredentials
	}

	signer, err := auth.NewSigner(&auth.Credentials{
		Key:    cfg.apiKey,
		Secret: cfg.apiSecret,
	}, cfg.clock)
	if err != nil {
		return nil, &ConfigError{Message: err.Error()}
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = newHTTPClient(cfg.timeout, cfg.insecureTLS)
	}

	transport, err := api.NewTransport(cfg.baseURL, signer, httpClient)
	if err != nil {
		return nil, &ConfigError{Message: err.Error()}
	}

	transport.Retry = cfg.retry
	if cfg.userAgent != "" {
		transport.UserAgent = cfg.userAgent
	}
	if cfg.logger != nil {
		transport.Logger = cfg.logger
	}
	if cfg.rateLimit > 0 {
		burst := cfg.rateBurst
		if burst < 1 {
			burst = 1
		}
		transport.Limiter = rate.NewLimiter(rate.Limit(cfg.rateLimit), burst)
	}
	if cfg.breaker {
		transport.Breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "tetration-api",
			Timeout: 30 * time.Second,
		})
	}

	client := &Client{
		transport: transport,
		basePath:  "/openapi/" + cfg.apiVersion,
		maxPages:  cfg.maxPages,
	}

	// Initialize services
	client.Scopes = &scopeService{client: client}
	client.Applications = &applicationService{client: client}
	client.Inventory = &inventoryService{client: client}
	client.Flows = &flowService{client: client}
	client.Users = &userService{client: client}
	client.Roles = &roleService{client: client}

	return client, nil
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.transport.BaseURL.String()
}

// newHTTPClient builds the default HTTP client. Certificate verification
// is on unless explicitly disabled for a trusted lab appliance.
func newHTTPClient(timeout time.Duration, insecure bool) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion:         tls.VersionTLS12,
				InsecureSkipVerify: insecure,
			},
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}
}

// call issues one typed-service request and decodes the JSON response.
// name is the logical endpoint name used in error reporting; path is
// relative to the versioned API root.
func (c *Client) call(ctx context.Context, method, name, path string, body, out any, opts ...RequestOption) error {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var raw []byte
	if body != nil {
		var err error
		raw, err = marshalValue(body)
		if err != nil {
			return &ConfigError{Message: fmt.Sprintf("marshaling request body: %v", err)}
		}
	}

	resp, err := c.transport.Do(ctx, &api.Request{
		Method:  method,
		Path:    c.basePath + "/" + path,
		Body:    raw,
		Headers: reqCfg.headers,
	})
	if err != nil {
		return wrapTransportErr(ctx, name, attemptsOf(err), err)
	}
	if resp.StatusCode >= 400 {
		return parseError(name, resp.Attempts, resp.StatusCode, resp.Body, resp.Headers)
	}

	if out != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return fmt.Errorf("tetration: %s: unmarshaling response: %w", name, err)
		}
	}
	return nil
}
