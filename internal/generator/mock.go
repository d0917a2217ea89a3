package generator

import (
	"context"
	"time"

	"github.com/maauso/sora-studio/internal/job"
	"github.com/maauso/sora-studio/internal/job/id"
)

// DemoVideoURL is the video every mock job resolves to by default.
const DemoVideoURL = "https://pub-817e369ba858407788b831d759045d90.r2.dev/openai-devday-oct62025.mp4"

// Simulated processing schedule for mock jobs, measured from the id timestamp.
const (
	mockQueuedFor     = 2 * time.Second
	mockProcessingEnd = 3 * time.Second
)

// Mock simulates a video backend: jobs stay queued for two seconds,
// process for one more and then succeed with a demo video.
type Mock struct {
	videoURL string
	now      func() time.Time
}

// MockOption configures a Mock.
type MockOption func(*Mock)

// WithVideoURL overrides the demo video URL.
func WithVideoURL(url string) MockOption {
	return func(m *Mock) {
		if url != "" {
			m.videoURL = url
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) MockOption {
	return func(m *Mock) {
		m.now = now
	}
}

// NewMock creates a mock backend.
func NewMock(opts ...MockOption) *Mock {
	m := &Mock{
		videoURL: DemoVideoURL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Submit returns a queued video job stamped with the current time.
func (m *Mock) Submit(_ context.Context, _ string) (*job.Job, error) {
	return job.New(id.Mock(m.now()), job.MediaVideo), nil
}

// Status derives the job state from the time elapsed since the id was issued.
// Ids without a timestamp are treated as issued at the epoch, so they
// report succeeded.
func (m *Mock) Status(_ context.Context, jobID string) (*job.Job, error) {
	created, ok := id.Timestamp(jobID)
	if !ok {
		created = time.UnixMilli(0)
	}
	elapsed := m.now().Sub(created)

	j := job.New(jobID, job.MediaVideo)
	switch {
	case elapsed < mockQueuedFor:
	case elapsed < mockProcessingEnd:
		_ = j.TransitionTo(job.StatusProcessing)
	default:
		_ = j.Succeed(m.videoURL)
	}
	return j, nil
}

// Compile-time check that Mock implements Generator.
var _ Generator = (*Mock)(nil)
