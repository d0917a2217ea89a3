// Package generator provides the common interface for video generation backends.
// The mock, Azure and native backends all implement it.
package generator

import (
	"context"

	"github.com/maauso/sora-studio/internal/job"
)

// Mode selects which video backend serves the process.
type Mode int

const (
	// ModeMock synthesizes jobs locally without any network call.
	ModeMock Mode = iota
	// ModeAzure targets an Azure OpenAI video deployment.
	ModeAzure
	// ModeNative targets the public OpenAI video endpoint.
	ModeNative
)

// String returns the mode name used in logs.
func (m Mode) String() string {
	switch m {
	case ModeMock:
		return "mock"
	case ModeAzure:
		return "azure"
	case ModeNative:
		return "native"
	default:
		return "unknown"
	}
}

// SelectMode picks the backend once from configuration. First match wins:
// mock flag, then Azure credentials, then the native endpoint.
func SelectMode(useMock, azureConfigured bool) Mode {
	switch {
	case useMock:
		return ModeMock
	case azureConfigured:
		return ModeAzure
	default:
		return ModeNative
	}
}

// Generator defines the interface for video generation backends.
type Generator interface {
	// Submit starts a video job for prompt and returns it in its initial state.
	Submit(ctx context.Context, prompt string) (*job.Job, error)

	// Status fetches the current state of a job, normalized to the canonical statuses.
	Status(ctx context.Context, jobID string) (*job.Job, error)
}
