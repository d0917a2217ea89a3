// Package job provides the generation Job entity with its forward-only
// status transitions, as well as repository interfaces for persistence.
package job

import (
	"errors"
	"time"
)

// Status represents the canonical state of a generation job.
type Status string

const (
	// StatusQueued indicates the backend accepted the job but has not started it.
	StatusQueued Status = "queued"
	// StatusProcessing indicates the backend is generating the media.
	StatusProcessing Status = "processing"
	// StatusSucceeded indicates the media is ready.
	StatusSucceeded Status = "succeeded"
	// StatusFailed indicates the backend gave up on the job.
	StatusFailed Status = "failed"
)

// IsValid reports whether s is one of the four canonical statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusQueued, StatusProcessing, StatusSucceeded, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if the status is a final state.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// InFlight reports whether a poller should keep asking about a job in this status.
func (s Status) InFlight() bool {
	return s == StatusQueued || s == StatusProcessing
}

// MediaType is the kind of media a job produces.
type MediaType string

const (
	// MediaVideo is produced by the video backends and by mock mode.
	MediaVideo MediaType = "video"
	// MediaImage is produced by the image fallback.
	MediaImage MediaType = "image"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

var validTransitions = map[Status][]Status{
	StatusQueued:     {StatusProcessing, StatusSucceeded, StatusFailed},
	StatusProcessing: {StatusSucceeded, StatusFailed},
	StatusSucceeded:  {},
	StatusFailed:     {},
}

func canTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Job is a single requested generation.
type Job struct {
	// ID is opaque and backend-specific.
	ID string `json:"id"`
	// Status is the current canonical state.
	Status Status `json:"status"`
	// MediaType is video for the video backends and image for the fallback.
	MediaType MediaType `json:"type"`
	// ResultURL points at the finished media once Status is succeeded.
	ResultURL string `json:"result_url,omitempty"`
	// Error is the backend's failure message, if any.
	Error string `json:"error,omitempty"`
	// CreatedAt is when the job was created locally.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the job last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a queued job with the given id and media type.
func New(id string, media MediaType) *Job {
	now := time.Now()
	return &Job{
		ID:        id,
		Status:    StatusQueued,
		MediaType: media,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo moves the job forward to status.
// Moving to the current status is a no-op. Moving backwards, out of a
// terminal state or to an unknown status returns ErrInvalidTransition.
func (j *Job) TransitionTo(status Status) error {
	if j.Status == status {
		return nil
	}
	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}
	j.Status = status
	j.UpdatedAt = time.Now()
	return nil
}

// Succeed marks the job as succeeded with the given media URL.
func (j *Job) Succeed(url string) error {
	if err := j.TransitionTo(StatusSucceeded); err != nil {
		return err
	}
	j.ResultURL = url
	return nil
}

// Fail marks the job as failed with an error message.
func (j *Job) Fail(msg string) error {
	if err := j.TransitionTo(StatusFailed); err != nil {
		return err
	}
	j.Error = msg
	return nil
}

// Apply folds a status report from a backend into the job.
// url and errMsg are recorded only for the matching terminal state.
func (j *Job) Apply(status Status, url, errMsg string) error {
	switch status {
	case StatusSucceeded:
		return j.Succeed(url)
	case StatusFailed:
		return j.Fail(errMsg)
	default:
		return j.TransitionTo(status)
	}
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// Clone returns a copy of the job for safe reads.
func (j *Job) Clone() *Job {
	c := *j
	return &c
}
