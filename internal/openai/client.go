// Package openai provides HTTP clients for the OpenAI video generation API,
// its Azure-hosted counterpart and the image generation API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public OpenAI API root.
const DefaultBaseURL = "https://api.openai.com/v1"

// ClientOption configures any of the clients in this package.
type ClientOption func(*transport)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(t *transport) {
		t.httpClient = c
	}
}

// WithBaseURL sets a custom API root. Azure clients ignore it.
func WithBaseURL(url string) ClientOption {
	return func(t *transport) {
		t.baseURL = strings.TrimRight(url, "/")
	}
}

// WithMaxRetries sets the maximum number of retries for 5xx, 429 and network failures.
func WithMaxRetries(n int) ClientOption {
	return func(t *transport) {
		t.maxRetries = n
	}
}

// WithBaseBackoff sets the initial backoff duration for retries.
func WithBaseBackoff(d time.Duration) ClientOption {
	return func(t *transport) {
		t.baseBackoff = d
	}
}

// transport is the JSON-over-HTTP plumbing shared by all clients.
type transport struct {
	httpClient  *http.Client
	baseURL     string
	maxRetries  int
	baseBackoff time.Duration
}

func newTransport(opts []ClientOption) *transport {
	t := &transport{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     DefaultBaseURL,
		baseBackoff: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// doRequestWithRetry performs an HTTP request with exponential backoff retry.
func (t *transport) doRequestWithRetry(ctx context.Context, method, url string, header http.Header, body, result any) error {
	backoff := t.baseBackoff

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("openai: context cancelled: %w", ctx.Err())
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		err := t.doRequest(ctx, method, url, header, body, result)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		if attempt >= t.maxRetries {
			if t.maxRetries == 0 {
				return err
			}
			return fmt.Errorf("openai: max retries exceeded: %w", err)
		}
	}
}

// doRequest performs a single HTTP request.
func (t *transport) doRequest(ctx context.Context, method, url string, header http.Header, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("openai: marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("openai: create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("openai: request aborted: %w", ctx.Err())
		}
		return &retryableError{err: fmt.Errorf("openai: request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &retryableError{err: fmt.Errorf("openai: read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return &retryableError{err: apiErr}
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("openai: unmarshal response: %w", err)
		}
	}

	return nil
}

// errorMessage extracts error.message from an API error body.
func errorMessage(body []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Error == nil {
		return ""
	}
	return strings.TrimSpace(parsed.Error.Message)
}

func bearer(apiKey string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+apiKey)
	return h
}
