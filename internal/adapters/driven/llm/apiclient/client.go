// Package apiclient is the JSON-over-HTTP transport shared by the LLM
// provider adapters.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 2048

// StatusError is a non-2xx response from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string

	// RetryAfter is the server's requested delay, zero if none was given.
	RetryAfter time.Duration
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Retryable reports whether repeating the request may succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Delay returns the server-requested retry delay.
func (e *StatusError) Delay() time.Duration {
	return e.RetryAfter
}

// Client sends JSON requests to one provider.
type Client struct {
	http     *http.Client
	provider string
	baseURL  string
	header   http.Header
}

// New creates a client. header is sent with every request.
func New(provider, baseURL string, timeout time.Duration, header http.Header) *Client {
	if header == nil {
		header = http.Header{}
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		header:   header,
	}
}

// Provider returns the provider name used in errors.
func (c *Client) Provider() string {
	return c.provider
}

// PostJSON posts in as JSON to path and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.provider, err)
	}
	return nil
}

// Get issues a GET to path and discards the body. Used for health checks.
func (c *Client) Get(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.provider, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	for key, values := range c.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: send request: %w", c.provider, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, &StatusError{
		Provider:   c.provider,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
		RetryAfter: retryAfter(resp.Header.Get("Retry-After")),
	}
}

// retryAfter parses a delay-seconds Retry-After value.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
