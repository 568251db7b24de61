package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetraflow/go-tetration/internal/auth"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:         attempts,
		InitialInterval:     time.Millisecond,
		MaxInterval:         time.Millisecond,
		Multiplier:          1.0,
		RandomizationFactor: 0,
	}
}

func newTestTransport(t *testing.T, serverURL string) *Transport {
	t.Helper()
	signer, err := auth.NewSigner(&auth.Credentials{Key: "k", Secret: "s"}, nil)
	require.NoError(t, err)

	transport, err := NewTransport(serverURL, signer, nil)
	require.NoError(t, err)
	transport.Retry = fastPolicy(3)
	return transport
}

func TestNewTransport(t *testing.T) {
	t.Run("requires signer", func(t *testing.T) {
		_, err := NewTransport("https://example.com", nil, nil)
		require.Error(t, err)
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		signer, err := auth.NewSigner(&auth.Credentials{Key: "k", Secret: "s"}, nil)
		require.NoError(t, err)

		transport, err := NewTransport("https://example.com/", signer, nil)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", transport.BaseURL.String())
	})
}

func TestTransportDo(t *testing.T) {
	t.Run("success first try", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.NotEmpty(t, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`[]`))
		}))
		t.Cleanup(server.Close)

		transport := newTestTransport(t, server.URL)
		resp, err := transport.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/openapi/v1/app_scopes"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, resp.Attempts)
	})

	t.Run("retries 5xx then succeeds", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`[]`))
		}))
		t.Cleanup(server.Close)

		transport := newTestTransport(t, server.URL)
		resp, err := transport.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 3, resp.Attempts)
	})

	t.Run("exhausts retries and returns final response", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)

		transport := newTestTransport(t, server.URL)
		resp, err := transport.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, 3, resp.Attempts)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("does not retry 4xx", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		t.Cleanup(server.Close)

		transport := newTestTransport(t, server.URL)
		resp, err := transport.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("network failure yields attempt-counting error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // nothing listening

		transport := newTestTransport(t, server.URL)
		_, err := transport.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
		require.Error(t, err)

		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 3, apiErr.Attempts)
	})

	t.Run("response size cap", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(make([]byte, 2048))
		}))
		t.Cleanup(server.Close)

		transport := newTestTransport(t, server.URL)
		transport.Retry = fastPolicy(1)
		transport.MaxBodySize = 1024
		_, err := transport.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "response too large")
	})

	t.Run("cancellation stops retry loop", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		transport := newTestTransport(t, server.URL)
		_, err := transport.Do(ctx, &Request{Method: http.MethodGet, Path: "/x"})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestTransportRequestID(t *testing.T) {
	t.Run("generated when absent", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
			_, _ = w.Write([]byte(`[]`))
		}))
		t.Cleanup(server.Close)

		transport := newTestTransport(t, server.URL)
		_, err := transport.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
		require.NoError(t, err)
	})

	t.Run("preserved when set", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "trace-42", r.Header.Get("X-Request-ID"))
			_, _ = w.Write([]byte(`[]`))
		}))
		t.Cleanup(server.Close)

		headers := make(http.Header)
		headers.Set("X-Request-ID", "trace-42")

		transport := newTestTransport(t, server.URL)
		_, err := transport.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x", Headers: headers})
		require.NoError(t, err)
	})
}

func TestEncodeQuery(t *testing.T) {
	t.Run("insertion order", func(t *testing.T) {
		q := encodeQuery([]Param{{Key: "zeta", Value: "1"}, {Key: "alpha", Value: "2"}})
		assert.Equal(t, "zeta=1&alpha=2", q)
	})

	t.Run("escaping", func(t *testing.T) {
		q := encodeQuery([]Param{{Key: "name", Value: "a b&c"}})
		assert.Equal(t, "name=a+b%26c", q)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", encodeQuery(nil))
	})
}

func TestParseRetryAfter(t *testing.T) {
	t.Run("seconds", func(t *testing.T) {
		assert.Equal(t, 30*time.Second, ParseRetryAfter("30"))
	})

	t.Run("http date", func(t *testing.T) {
		future := time.Now().Add(time.Minute).UTC().Format(time.RFC1123)
		d := ParseRetryAfter(future)
		assert.Greater(t, d, 50*time.Second)
	})

	t.Run("past date", func(t *testing.T) {
		past := time.Now().Add(-time.Minute).UTC().Format(time.RFC1123)
		assert.Equal(t, time.Duration(0), ParseRetryAfter(past))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, time.Duration(0), ParseRetryAfter(""))
	})

	t.Run("garbage", func(t *testing.T) {
		assert.Equal(t, time.Duration(0), ParseRetryAfter("soon"))
	})
}

func TestRetryableStatus(t *testing.T) {
	assert.True(t, retryableStatus(http.StatusTooManyRequests))
	assert.True(t, retryableStatus(http.StatusInternalServerError))
	assert.True(t, retryableStatus(http.StatusBadGateway))
	assert.False(t, retryableStatus(http.StatusOK))
	assert.False(t, retryableStatus(http.StatusUnauthorized))
	assert.False(t, retryableStatus(http.StatusBadRequest))
}
