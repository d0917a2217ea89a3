// Package dispatch starts generation jobs against the configured video
// backend, falls back to image generation when video is unavailable, and
// answers status checks for both kinds of job.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maauso/sora-studio/internal/generator"
	"github.com/maauso/sora-studio/internal/job"
	"github.com/maauso/sora-studio/internal/job/id"
)

// MsgImageNotFound is reported for fallback ids the repository no longer knows.
const MsgImageNotFound = "Image not found"

// ImageGenerator produces a single image for a prompt and returns its URL.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Mirror copies a remote file into durable storage and returns the new URL.
type Mirror interface {
	Mirror(ctx context.Context, key, sourceURL string) (string, error)
}

// Dispatcher routes generation requests through the attempt chain
// primary video backend -> image fallback. In mock mode the primary is
// local and never falls back.
type Dispatcher struct {
	mode    generator.Mode
	primary generator.Generator
	images  ImageGenerator
	repo    job.Repository
	mirror  Mirror
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMirror copies fallback images into durable storage before their id
// is handed out.
func WithMirror(m Mirror) Option {
	return func(d *Dispatcher) {
		d.mirror = m
	}
}

// WithClock overrides the time source used for fallback ids.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// New creates a Dispatcher. images may be nil in mock mode.
func New(
	mode generator.Mode,
	primary generator.Generator,
	images ImageGenerator,
	repo job.Repository,
	logger *slog.Logger,
	opts ...Option,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		mode:    mode,
		primary: primary,
		images:  images,
		repo:    repo,
		now:     time.Now,
		logger:  logger.With(slog.String("mode", mode.String())),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Mode returns the backend mode selected at startup.
func (d *Dispatcher) Mode() generator.Mode {
	return d.mode
}

// StartGeneration starts a job for an already validated prompt.
// Failures of the video backend are absorbed by the image fallback; only
// the fallback's own failure is returned.
func (d *Dispatcher) StartGeneration(ctx context.Context, prompt string) (*job.Job, error) {
	j, err := d.primary.Submit(ctx, prompt)
	if err == nil {
		d.logger.Info("generation started",
			slog.String("job_id", j.ID),
			slog.String("status", string(j.Status)),
		)
		return j, nil
	}
	if d.mode == generator.ModeMock || errors.Is(err, context.Canceled) {
		return nil, fmt.Errorf("dispatch: start: %w", err)
	}

	d.logger.Warn("video generation failed, falling back to image generation",
		slog.String("error", err.Error()),
	)
	return d.fallback(ctx, prompt)
}

func (d *Dispatcher) fallback(ctx context.Context, prompt string) (*job.Job, error) {
	if d.images == nil {
		return nil, fmt.Errorf("dispatch: image fallback: %w", ErrNoFallback)
	}

	url, err := d.images.Generate(ctx, prompt)
	if err != nil {
		d.logger.Error("image fallback failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("dispatch: image fallback: %w", err)
	}

	j := job.New(id.Fallback(d.now()), job.MediaImage)
	if d.mirror != nil {
		url = d.mirrorImage(ctx, j.ID, url)
	}
	if err := j.Succeed(url); err != nil {
		return nil, fmt.Errorf("dispatch: image fallback: %w", err)
	}
	if err := d.repo.Save(ctx, j); err != nil {
		return nil, fmt.Errorf("dispatch: save fallback %s: %w", j.ID, err)
	}

	d.logger.Info("image fallback stored", slog.String("job_id", j.ID))
	return j, nil
}

// mirrorImage returns the mirrored URL, or the original one if mirroring fails.
func (d *Dispatcher) mirrorImage(ctx context.Context, jobID, url string) string {
	mirrored, err := d.mirror.Mirror(ctx, "images/"+jobID+".png", url)
	if err != nil {
		d.logger.Warn("failed to mirror fallback image, keeping provider URL",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		return url
	}
	return mirrored
}

// CheckStatus reports the current state of a job. Fallback ids are answered
// from the repository; everything else goes to the video backend.
func (d *Dispatcher) CheckStatus(ctx context.Context, jobID string) (*job.Job, error) {
	if jobID == "" {
		return nil, ErrMissingID
	}

	if id.IsFallback(jobID) {
		return d.fallbackStatus(ctx, jobID)
	}

	j, err := d.primary.Status(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("dispatch: status %s: %w", jobID, err)
	}
	return j, nil
}

func (d *Dispatcher) fallbackStatus(ctx context.Context, jobID string) (*job.Job, error) {
	j, err := d.repo.FindByID(ctx, jobID)
	if err == nil {
		return j, nil
	}
	if !errors.Is(err, job.ErrJobNotFound) {
		return nil, fmt.Errorf("dispatch: status %s: %w", jobID, err)
	}

	missing := job.New(jobID, job.MediaImage)
	_ = missing.Fail(MsgImageNotFound)
	return missing, nil
}
