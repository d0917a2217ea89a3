package generator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maauso/sora-studio/internal/job"
	"github.com/maauso/sora-studio/internal/job/id"
)

func TestMock_Submit(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	m := NewMock(WithClock(func() time.Time { return now }))

	j, err := m.Submit(context.Background(), "anything")
	require.NoError(t, err)

	assert.True(t, id.IsMock(j.ID))
	assert.Equal(t, job.StatusQueued, j.Status)
	assert.Equal(t, job.MediaVideo, j.MediaType)

	created, ok := id.Timestamp(j.ID)
	require.True(t, ok)
	assert.Equal(t, now.UnixMilli(), created.UnixMilli())
}

func TestMock_Status_Schedule(t *testing.T) {
	created := time.UnixMilli(1_700_000_000_000)
	jobID := id.Mock(created)

	tests := []struct {
		name    string
		elapsed time.Duration
		status  job.Status
		url     string
	}{
		{"just created", 0, job.StatusQueued, ""},
		{"still queued", 1999 * time.Millisecond, job.StatusQueued, ""},
		{"processing starts at 2s", 2000 * time.Millisecond, job.StatusProcessing, ""},
		{"still processing", 2999 * time.Millisecond, job.StatusProcessing, ""},
		{"succeeds at 3s", 3000 * time.Millisecond, job.StatusSucceeded, DemoVideoURL},
		{"stays succeeded", time.Hour, job.StatusSucceeded, DemoVideoURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMock(WithClock(func() time.Time { return created.Add(tt.elapsed) }))

			j, err := m.Status(context.Background(), jobID)
			require.NoError(t, err)
			assert.Equal(t, jobID, j.ID)
			assert.Equal(t, tt.status, j.Status)
			assert.Equal(t, tt.url, j.ResultURL)
			assert.Equal(t, job.MediaVideo, j.MediaType)
		})
	}
}

func TestMock_Status_CustomURL(t *testing.T) {
	m := NewMock(WithVideoURL("https://example.com/demo.mp4"))

	j, err := m.Status(context.Background(), "mock_0_abc")
	require.NoError(t, err)
	assert.Equal(t, job.StatusSucceeded, j.Status)
	assert.Equal(t, "https://example.com/demo.mp4", j.ResultURL)
}

func TestMock_Status_UnparsableID(t *testing.T) {
	m := NewMock()

	j, err := m.Status(context.Background(), "not-a-mock-id")
	require.NoError(t, err)
	assert.Equal(t, job.StatusSucceeded, j.Status)
}
