package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestVideoClient_Submit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/video/generations", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req videoRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sora-1", req.Model)
		assert.Equal(t, "a cat surfing", req.Prompt)
		assert.Equal(t, 5, req.DurationSeconds)
		assert.Equal(t, "square", req.Size)
		assert.Equal(t, "mp4", req.Format)

		writeJSON(t, w, http.StatusOK, map[string]any{"id": "gen_123", "status": "queued"})
	}))
	defer server.Close()

	c := NewVideoClient("test-key", WithBaseURL(server.URL))
	got, err := c.Submit(context.Background(), "  a cat surfing  ")

	require.NoError(t, err)
	assert.Equal(t, "gen_123", got.ID)
	assert.Equal(t, "queued", got.Status)
}

func TestVideoClient_Submit_MissingKey(t *testing.T) {
	c := NewVideoClient("")
	_, err := c.Submit(context.Background(), "prompt")

	assert.ErrorIs(t, err, ErrAPIKeyNotSet)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, "OPENAI_API_KEY is not configured", err.Error())
}

func TestVideoClient_Submit_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewVideoClient("test-key", WithBaseURL(server.URL))
	_, err := c.Submit(context.Background(), "prompt")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Public(), "USE_SORA_MOCK=true")
	assert.Contains(t, apiErr.Public(), "Azure OpenAI")
}

func TestVideoClient_Submit_RemoteMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{"message": "prompt rejected by safety system"},
		})
	}))
	defer server.Close()

	c := NewVideoClient("test-key", WithBaseURL(server.URL))
	_, err := c.Submit(context.Background(), "prompt")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "prompt rejected by safety system", apiErr.Public())
}

func TestVideoClient_Submit_GenericMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("<html>forbidden</html>"))
	}))
	defer server.Close()

	c := NewVideoClient("test-key", WithBaseURL(server.URL))
	_, err := c.Submit(context.Background(), "prompt")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "request failed with status 403", apiErr.Public())
}

func TestVideoClient_Submit_NoID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"status": "queued"})
	}))
	defer server.Close()

	c := NewVideoClient("test-key", WithBaseURL(server.URL))
	_, err := c.Submit(context.Background(), "prompt")

	assert.ErrorIs(t, err, ErrNoJobIDReturned)
}

func TestVideoClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/video/generations/gen_123", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"id":     "gen_123",
			"status": "succeeded",
			"output": map[string]any{"url": "https://cdn.example.com/v.mp4"},
		})
	}))
	defer server.Close()

	c := NewVideoClient("test-key", WithBaseURL(server.URL))
	got, err := c.Get(context.Background(), "gen_123")

	require.NoError(t, err)
	assert.Equal(t, VideoJob{ID: "gen_123", Status: "succeeded", URL: "https://cdn.example.com/v.mp4"}, got)
}

func TestVideoClient_Get_FailedJob(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"id":     "gen_123",
			"status": "failed",
			"error":  map[string]any{"message": "moderation"},
		})
	}))
	defer server.Close()

	c := NewVideoClient("test-key", WithBaseURL(server.URL))
	got, err := c.Get(context.Background(), "gen_123")

	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	assert.Equal(t, "moderation", got.Error)
}

func TestVideoClient_Get_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewVideoClient("test-key", WithBaseURL(server.URL))
	_, err := c.Get(context.Background(), "gen_123")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, msgStatusUnavailable, apiErr.Message)
}

func TestVideoClient_Get_RequiresID(t *testing.T) {
	c := NewVideoClient("test-key")
	_, err := c.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrJobIDRequired)
}

func TestTransport_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"id": "gen_1", "status": "queued"})
	}))
	defer server.Close()

	c := NewVideoClient("test-key",
		WithBaseURL(server.URL),
		WithMaxRetries(2),
		WithBaseBackoff(time.Millisecond),
	)
	got, err := c.Submit(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "gen_1", got.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestTransport_MaxRetriesExceeded(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewVideoClient("test-key",
		WithBaseURL(server.URL),
		WithMaxRetries(1),
		WithBaseBackoff(time.Millisecond),
	)
	_, err := c.Submit(context.Background(), "prompt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTransport_NoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewVideoClient("test-key", WithBaseURL(server.URL))
	_, err := c.Submit(context.Background(), "prompt")

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.NotContains(t, err.Error(), "max retries")
}

func TestTransport_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewVideoClient("test-key", WithBaseURL(server.URL), WithMaxRetries(3), WithBaseBackoff(time.Millisecond))
	_, err := c.Submit(context.Background(), "prompt")

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTransport_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewVideoClient("test-key", WithBaseURL(server.URL), WithMaxRetries(3))
	_, err := c.Submit(ctx, "prompt")

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAzureVideoClient_Submit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/openai/v1/video/generations/jobs", r.URL.Path)
		assert.Equal(t, "2024-12-01-preview", r.URL.Query().Get("api-version"))
		assert.Equal(t, "azure-key", r.Header.Get("api-key"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req videoRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Empty(t, req.Model)
		assert.Equal(t, "a prompt", req.Prompt)

		writeJSON(t, w, http.StatusCreated, map[string]any{"id": "task_9", "status": "notStarted"})
	}))
	defer server.Close()

	c := NewAzureVideoClient(server.URL+"/", "azure-key", "")
	got, err := c.Submit(context.Background(), "a prompt")

	require.NoError(t, err)
	assert.Equal(t, "task_9", got.ID)
	assert.Equal(t, "notStarted", got.Status)
}

func TestAzureVideoClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/v1/video/generations/jobs/task_9", r.URL.Path)
		assert.Equal(t, "2025-01-01", r.URL.Query().Get("api-version"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"id":     "task_9",
			"status": "succeeded",
			"result": map[string]any{"url": "https://azure.example.com/v.mp4"},
		})
	}))
	defer server.Close()

	c := NewAzureVideoClient(server.URL, "azure-key", "2025-01-01")
	got, err := c.Get(context.Background(), "task_9")

	require.NoError(t, err)
	assert.Equal(t, "succeeded", got.Status)
	assert.Equal(t, "https://azure.example.com/v.mp4", got.URL)
}

func TestAzureVideoClient_NotConfigured(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		key      string
	}{
		{"missing endpoint", "", "key"},
		{"missing key", "https://example.openai.azure.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewAzureVideoClient(tt.endpoint, tt.key, "")
			_, err := c.Submit(context.Background(), "prompt")
			assert.ErrorIs(t, err, ErrAzureNotConfigured)
			_, err = c.Get(context.Background(), "id")
			assert.ErrorIs(t, err, ErrNotConfigured)
		})
	}
}

func TestAzureVideoClient_RemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]any{
			"error": map[string]any{"message": "Access denied due to invalid subscription key."},
		})
	}))
	defer server.Close()

	c := NewAzureVideoClient(server.URL, "bad", "")
	_, err := c.Submit(context.Background(), "prompt")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Access denied due to invalid subscription key.", apiErr.Public())
}

func TestImageClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req imageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, imageRequest{
			Model:   "dall-e-3",
			Prompt:  "a lighthouse",
			N:       1,
			Size:    "1024x1024",
			Quality: "standard",
		}, req)

		writeJSON(t, w, http.StatusOK, map[string]any{
			"data": []map[string]any{{"url": "https://img.example.com/a.png"}},
		})
	}))
	defer server.Close()

	c := NewImageClient("test-key", WithBaseURL(server.URL))
	url, err := c.Generate(context.Background(), "a lighthouse ")

	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/a.png", url)
}

func TestImageClient_Generate_NoURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"data": []any{}})
	}))
	defer server.Close()

	c := NewImageClient("test-key", WithBaseURL(server.URL))
	_, err := c.Generate(context.Background(), "prompt")

	assert.ErrorIs(t, err, ErrNoImageURL)
	assert.Equal(t, "No image URL returned from DALL-E", err.Error())
}

func TestImageClient_Generate_MissingKey(t *testing.T) {
	c := NewImageClient("")
	_, err := c.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrAPIKeyNotSet)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"openai envelope", `{"error":{"message":" bad request "}}`, "bad request"},
		{"no error field", `{"detail":"x"}`, ""},
		{"null error", `{"error":null}`, ""},
		{"not json", `oops`, ""},
		{"empty", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage([]byte(tt.body)))
		})
	}
}
