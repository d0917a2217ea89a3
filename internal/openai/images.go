package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	imageModel   = "dall-e-3"
	imageSize    = "1024x1024"
	imageQuality = "standard"
)

// ImageClient talks to the OpenAI image generation endpoint.
type ImageClient struct {
	*transport
	apiKey string
}

// NewImageClient creates an image client. An empty apiKey is accepted;
// every call then fails with ErrAPIKeyNotSet.
func NewImageClient(apiKey string, opts ...ClientOption) *ImageClient {
	return &ImageClient{
		transport: newTransport(opts),
		apiKey:    apiKey,
	}
}

// Generate renders a single image for prompt and returns its URL.
func (c *ImageClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrAPIKeyNotSet
	}

	reqBody := imageRequest{
		Model:   imageModel,
		Prompt:  strings.TrimSpace(prompt),
		N:       1,
		Size:    imageSize,
		Quality: imageQuality,
	}

	var resp imageResponse
	err := c.doRequestWithRetry(ctx, http.MethodPost, c.baseURL+"/images/generations", bearer(c.apiKey), reqBody, &resp)
	if err != nil {
		return "", fmt.Errorf("openai: images: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", ErrNoImageURL
	}

	return resp.Data[0].URL, nil
}
