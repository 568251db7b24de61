package tetration_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetraflow/go-tetration"
)

func TestAPIError(t *testing.T) {
	t.Run("with endpoint", func(t *testing.T) {
		err := &tetration.APIError{
			StatusCode: 500,
			Message:    "internal error",
			Endpoint:   "flowsearch",
		}
		assert.Equal(t, "tetration: flowsearch: API error 500: internal error", err.Error())
	})

	t.Run("with attempts", func(t *testing.T) {
		err := &tetration.APIError{
			StatusCode: 500,
			Message:    "internal error",
			Endpoint:   "flowsearch",
			Attempts:   3,
		}
		assert.Contains(t, err.Error(), "after 3 attempts")
	})
}

func TestAuthenticationError(t *testing.T) {
	err := &tetration.AuthenticationError{
		APIError: tetration.APIError{
			StatusCode: 401,
			Message:    "invalid signature",
			Endpoint:   "app_scopes",
		},
	}
	assert.Equal(t, "tetration: app_scopes: authentication failed: invalid signature", err.Error())
	assert.False(t, tetration.IsRetryable(err))

	var apiErr *tetration.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
}

func TestRateLimitError(t *testing.T) {
	t.Run("with retry-after", func(t *testing.T) {
		err := &tetration.RateLimitError{
			APIError:   tetration.APIError{StatusCode: 429, Endpoint: "flowsearch"},
			RetryAfter: 30 * time.Second,
		}
		assert.Equal(t, "tetration: flowsearch: rate limit exceeded, retry after 30s", err.Error())
		assert.True(t, tetration.IsRetryable(err))
	})

	t.Run("without retry-after", func(t *testing.T) {
		err := &tetration.RateLimitError{
			APIError: tetration.APIError{StatusCode: 429, Endpoint: "flowsearch"},
		}
		assert.Equal(t, "tetration: flowsearch: rate limit exceeded", err.Error())
	})
}

func TestServerError(t *testing.T) {
	err := &tetration.ServerError{
		APIError: tetration.APIError{StatusCode: 503, Message: "maintenance", Endpoint: "users"},
	}
	assert.Equal(t, "tetration: users: server error 503: maintenance", err.Error())
	assert.True(t, tetration.IsRetryable(err))
}

func TestRequestError(t *testing.T) {
	err := &tetration.RequestError{
		APIError: tetration.APIError{StatusCode: 400, Message: "bad filter", Endpoint: "inventory/search"},
	}
	assert.Equal(t, "tetration: inventory/search: bad request (400): bad filter", err.Error())
	assert.False(t, tetration.IsRetryable(err))
}

func TestInvalidFilterError(t *testing.T) {
	err := &tetration.InvalidFilterError{
		Field:    "vrf_id",
		Operator: tetration.OpIn,
		Reason:   "value must be a sequence",
	}
	assert.Equal(t, `tetration: invalid filter on field "vrf_id" (in): value must be a sequence`, err.Error())
	assert.False(t, tetration.IsRetryable(err))
}

func TestConfigError(t *testing.T) {
	err := &tetration.ConfigError{Message: "endpoint requires a body"}
	assert.Equal(t, "tetration: configuration error: endpoint requires a body", err.Error())
}

func TestUnknownEndpointError(t *testing.T) {
	err := &tetration.UnknownEndpointError{Name: "nope"}
	assert.Equal(t, `tetration: unknown endpoint "nope"`, err.Error())
}

func TestPaginationLimitError(t *testing.T) {
	err := &tetration.PaginationLimitError{
		Endpoint: "flowsearch",
		Pages:    50,
		Partial:  &tetration.QueryResult{Records: []tetration.Record{{}, {}}},
	}
	assert.Equal(t, "tetration: flowsearch: pagination limit of 50 pages exceeded (2 records accumulated)", err.Error())
	assert.False(t, tetration.IsRetryable(err))
}
