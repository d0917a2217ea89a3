package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	videoModel           = "sora-1"
	videoDurationSeconds = 5
	videoSize            = "square"
	videoFormat          = "mp4"
)

// Operator-facing messages for a 404 from the native video endpoint.
const (
	msgSubmitUnavailable = "The OpenAI Sora API is not yet publicly available. Please set USE_SORA_MOCK=true to use demo mode, or configure Azure OpenAI credentials."
	msgStatusUnavailable = "The OpenAI Sora API is not yet publicly available. Please use mock mode or Azure OpenAI."
)

// VideoClient talks to the native OpenAI video generation endpoint.
type VideoClient struct {
	*transport
	apiKey string
}

// NewVideoClient creates a native video client. An empty apiKey is accepted;
// every call then fails with ErrAPIKeyNotSet.
func NewVideoClient(apiKey string, opts ...ClientOption) *VideoClient {
	return &VideoClient{
		transport: newTransport(opts),
		apiKey:    apiKey,
	}
}

func (c *VideoClient) endpoint() string {
	return c.baseURL + "/video/generations"
}

// Submit starts a video generation job for prompt.
func (c *VideoClient) Submit(ctx context.Context, prompt string) (VideoJob, error) {
	if c.apiKey == "" {
		return VideoJob{}, ErrAPIKeyNotSet
	}

	reqBody := videoRequest{
		Model:           videoModel,
		Prompt:          strings.TrimSpace(prompt),
		DurationSeconds: videoDurationSeconds,
		Size:            videoSize,
		Format:          videoFormat,
	}

	var resp videoResponse
	err := c.doRequestWithRetry(ctx, http.MethodPost, c.endpoint(), bearer(c.apiKey), reqBody, &resp)
	if err != nil {
		return VideoJob{}, notFoundAs(err, msgSubmitUnavailable)
	}
	if resp.ID == "" {
		return VideoJob{}, ErrNoJobIDReturned
	}

	return VideoJob{
		ID:     resp.ID,
		Status: resp.Status,
	}, nil
}

// Get fetches the current state of a video generation job.
func (c *VideoClient) Get(ctx context.Context, jobID string) (VideoJob, error) {
	if c.apiKey == "" {
		return VideoJob{}, ErrAPIKeyNotSet
	}
	if jobID == "" {
		return VideoJob{}, ErrJobIDRequired
	}

	var resp videoResponse
	u := c.endpoint() + "/" + url.PathEscape(jobID)
	if err := c.doRequestWithRetry(ctx, http.MethodGet, u, bearer(c.apiKey), nil, &resp); err != nil {
		return VideoJob{}, notFoundAs(err, msgStatusUnavailable)
	}

	return VideoJob{
		ID:     resp.ID,
		Status: resp.Status,
		URL:    resp.Output.url(),
		Error:  resp.Error.message(),
	}, nil
}

// notFoundAs replaces a 404 APIError with an operator-facing message.
func notFoundAs(err error, msg string) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return &APIError{StatusCode: http.StatusNotFound, Message: msg}
	}
	return fmt.Errorf("openai: video: %w", err)
}
