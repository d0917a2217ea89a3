package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maauso/sora-studio/internal/job"
	"github.com/maauso/sora-studio/internal/openai"
)

// VideoClient is the subset of the OpenAI video clients the adapter needs.
// Both openai.VideoClient and openai.AzureVideoClient implement it.
type VideoClient interface {
	Submit(ctx context.Context, prompt string) (openai.VideoJob, error)
	Get(ctx context.Context, jobID string) (openai.VideoJob, error)
}

// Normalizer maps a backend status string to a canonical status.
// known is false when the backend used a value outside its vocabulary.
type Normalizer func(raw string) (status job.Status, known bool)

// VideoAdapter adapts a remote video client to the Generator interface.
type VideoAdapter struct {
	name      string
	client    VideoClient
	normalize Normalizer
	logger    *slog.Logger

	// trustSubmitStatus applies the status returned by submit; otherwise
	// new jobs always start queued.
	trustSubmitStatus bool
}

// NewNativeAdapter wraps the public OpenAI video client.
func NewNativeAdapter(client VideoClient, logger *slog.Logger) *VideoAdapter {
	a := newVideoAdapter("native", client, NormalizeNative, logger)
	a.trustSubmitStatus = true
	return a
}

// NewAzureAdapter wraps the Azure OpenAI video client.
func NewAzureAdapter(client VideoClient, logger *slog.Logger) *VideoAdapter {
	return newVideoAdapter("azure", client, NormalizeAzure, logger)
}

func newVideoAdapter(name string, client VideoClient, normalize Normalizer, logger *slog.Logger) *VideoAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &VideoAdapter{
		name:      name,
		client:    client,
		normalize: normalize,
		logger:    logger.With(slog.String("backend", name)),
	}
}

// Submit starts a video job. Jobs start queued unless the backend's submit
// response is trusted and carries a status.
func (a *VideoAdapter) Submit(ctx context.Context, prompt string) (*job.Job, error) {
	res, err := a.client.Submit(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%s adapter submit: %w", a.name, err)
	}

	j := job.New(res.ID, job.MediaVideo)
	if a.trustSubmitStatus && res.Status != "" {
		if err := j.Apply(a.status(res.ID, res.Status), res.URL, res.Error); err != nil {
			return nil, fmt.Errorf("%s adapter submit: %w", a.name, err)
		}
	}
	return j, nil
}

// Status fetches and normalizes the state of a video job.
func (a *VideoAdapter) Status(ctx context.Context, jobID string) (*job.Job, error) {
	res, err := a.client.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%s adapter status: %w", a.name, err)
	}

	if res.ID == "" {
		res.ID = jobID
	}
	j := job.New(res.ID, job.MediaVideo)
	if err := j.Apply(a.status(res.ID, res.Status), res.URL, res.Error); err != nil {
		return nil, fmt.Errorf("%s adapter status: %w", a.name, err)
	}
	return j, nil
}

func (a *VideoAdapter) status(jobID, raw string) job.Status {
	status, known := a.normalize(raw)
	if !known {
		a.logger.Warn("unrecognized job status, treating as processing",
			slog.String("job_id", jobID),
			slog.String("status", raw),
		)
	}
	return status
}

// NormalizeNative passes the native vocabulary through unchanged.
// Anything else is reported as processing.
func NormalizeNative(raw string) (job.Status, bool) {
	s := job.Status(raw)
	if s.IsValid() {
		return s, true
	}
	return job.StatusProcessing, false
}

// NormalizeAzure maps the Azure job vocabulary to the canonical statuses.
// Cancellation-like terminal values fail the job; anything else unknown
// is reported as processing so a poller keeps waiting.
func NormalizeAzure(raw string) (job.Status, bool) {
	switch raw {
	case "notStarted":
		return job.StatusQueued, true
	case "running", "preprocessing", "processing":
		return job.StatusProcessing, true
	case "succeeded":
		return job.StatusSucceeded, true
	case "failed", "cancelled", "canceled", "expired", "rejected":
		return job.StatusFailed, true
	default:
		return job.StatusProcessing, false
	}
}

// Compile-time check that VideoAdapter implements Generator.
var _ Generator = (*VideoAdapter)(nil)
