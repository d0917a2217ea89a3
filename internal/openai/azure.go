package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultAzureAPIVersion is used when no api-version is configured.
const DefaultAzureAPIVersion = "2024-12-01-preview"

// AzureVideoClient talks to an Azure OpenAI video generation deployment.
type AzureVideoClient struct {
	*transport
	endpoint   string
	apiKey     string
	apiVersion string
}

// NewAzureVideoClient creates an Azure video client. Missing credentials are
// accepted; every call then fails with ErrAzureNotConfigured.
func NewAzureVideoClient(endpoint, apiKey, apiVersion string, opts ...ClientOption) *AzureVideoClient {
	if apiVersion == "" {
		apiVersion = DefaultAzureAPIVersion
	}
	return &AzureVideoClient{
		transport:  newTransport(opts),
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		apiVersion: apiVersion,
	}
}

func (c *AzureVideoClient) jobsURL(jobID string) string {
	u := c.endpoint + "/openai/v1/video/generations/jobs"
	if jobID != "" {
		u += "/" + url.PathEscape(jobID)
	}
	return u + "?api-version=" + url.QueryEscape(c.apiVersion)
}

func (c *AzureVideoClient) header() http.Header {
	h := http.Header{}
	h.Set("api-key", c.apiKey)
	return h
}

func (c *AzureVideoClient) configured() bool {
	return c.endpoint != "" && c.apiKey != ""
}

// Submit starts a video generation job for prompt.
func (c *AzureVideoClient) Submit(ctx context.Context, prompt string) (VideoJob, error) {
	if !c.configured() {
		return VideoJob{}, ErrAzureNotConfigured
	}

	reqBody := videoRequest{
		Prompt:          strings.TrimSpace(prompt),
		DurationSeconds: videoDurationSeconds,
		Size:            videoSize,
		Format:          videoFormat,
	}

	var resp azureJobResponse
	if err := c.doRequestWithRetry(ctx, http.MethodPost, c.jobsURL(""), c.header(), reqBody, &resp); err != nil {
		return VideoJob{}, fmt.Errorf("openai: azure: %w", err)
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
func (c *AzureVideoClient) Get(ctx context.Context, jobID string) (VideoJob, error) {
	if !c.configured() {
		return VideoJob{}, ErrAzureNotConfigured
	}
	if jobID == "" {
		return VideoJob{}, ErrJobIDRequired
	}

	var resp azureJobResponse
	if err := c.doRequestWithRetry(ctx, http.MethodGet, c.jobsURL(jobID), c.header(), nil, &resp); err != nil {
		return VideoJob{}, fmt.Errorf("openai: azure: %w", err)
	}

	return VideoJob{
		ID:     resp.ID,
		Status: resp.Status,
		URL:    resp.Result.url(),
		Error:  resp.Error.message(),
	}, nil
}
