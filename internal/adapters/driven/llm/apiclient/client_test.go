package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/echo", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Key"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["say"]})
	}))
	defer server.Close()

	client := New("test", server.URL+"/", time.Second, http.Header{"X-Key": {"secret"}})

	var out map[string]string
	require.NoError(t, client.PostJSON(context.Background(), "/v1/echo", map[string]string{"say": "hi"}, &out))
	assert.Equal(t, "hi", out["echo"])
}

func TestClient_StatusError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"rate limited", http.StatusTooManyRequests, true},
		{"server error", http.StatusBadGateway, true},
		{"unauthorised", http.StatusUnauthorized, false},
		{"bad request", http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Retry-After", "3")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))
			defer server.Close()

			client := New("test", server.URL, time.Second, nil)
			err := client.Get(context.Background(), "/models")

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, tt.retryable, statusErr.Retryable())
			assert.Equal(t, 3*time.Second, statusErr.RetryAfter)
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestClient_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := New("test", server.URL, time.Second, nil)
	var out map[string]any
	err := client.PostJSON(context.Background(), "/x", struct{}{}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 5*time.Second, retryAfter("5"))
	assert.Zero(t, retryAfter(""))
	assert.Zero(t, retryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
	assert.Zero(t, retryAfter("-1"))
}
