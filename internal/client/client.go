// Package client is a Go client for the sora-studio HTTP API, including the
// status poller used by front ends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/maauso/sora-studio/internal/job"
	"github.com/maauso/sora-studio/internal/poll"
)

// Static errors for client operations.
var (
	// ErrStatusCheck is returned for any non-2xx status response.
	ErrStatusCheck = errors.New("Failed to check status")
	// ErrGenerate matches every failed generate call.
	ErrGenerate = errors.New("client: generate failed")
)

// GenerateError is a non-2xx response from POST /generate.
type GenerateError struct {
	StatusCode int
	Message    string
}

func (e *GenerateError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("generate failed with status %d", e.StatusCode)
}

// Is makes every GenerateError match ErrGenerate.
func (e *GenerateError) Is(target error) bool { return target == ErrGenerate }

// Generation is the server's answer to a generate call.
type Generation struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Type   string `json:"type"`
}

// Status is the server's answer to a status check.
type Status struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	VideoURL string `json:"videoUrl,omitempty"`
	Error    string `json:"error,omitempty"`
	Type     string `json:"type,omitempty"`
}

// InFlight reports whether the job is still queued or processing.
func (s Status) InFlight() bool {
	return job.Status(s.Status).InFlight()
}

// Client calls the sora-studio API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate starts a generation for prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (Generation, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return Generation{}, fmt.Errorf("client: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return Generation{}, fmt.Errorf("client: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Generation{}, fmt.Errorf("client: generate: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Generation{}, &GenerateError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	var g Generation
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		return Generation{}, fmt.Errorf("client: decode generate response: %w", err)
	}
	return g, nil
}

// Status fetches the current status of a job.
func (c *Client) Status(ctx context.Context, jobID string) (Status, error) {
	endpoint := c.baseURL + "/status?id=" + url.QueryEscape(jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Status{}, fmt.Errorf("client: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Status{}, fmt.Errorf("client: status: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Status{}, ErrStatusCheck
	}

	var s Status
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return Status{}, fmt.Errorf("client: decode status response: %w", err)
	}
	return s, nil
}

// PollStatus polls the status of jobID until it leaves queued/processing,
// a status check fails or the poll times out. onProgress, if not nil,
// receives every non-empty status in the order it was observed.
func PollStatus(ctx context.Context, c *Client, jobID string, onProgress func(status string), opts ...poll.Option) poll.Result[Status] {
	fetch := func(ctx context.Context) (Status, bool, error) {
		s, err := c.Status(ctx, jobID)
		if err != nil {
			return Status{}, false, err
		}
		if onProgress != nil && s.Status != "" {
			onProgress(s.Status)
		}
		return s, true, nil
	}
	return poll.Poll(ctx, fetch, Status.InFlight, opts...)
}

func errorMessage(body io.Reader) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&e); err != nil {
		return ""
	}
	return e.Error
}
