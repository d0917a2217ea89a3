package openai

import (
	"errors"
	"fmt"
)

// Static errors for OpenAI client operations.
var (
	// ErrNotConfigured matches every ConfigError.
	ErrNotConfigured = errors.New("openai: credentials are not configured")
	// ErrRequestFailed matches every APIError.
	ErrRequestFailed = errors.New("openai: request failed")
	// ErrJobIDRequired is returned when a status check is made without an id.
	ErrJobIDRequired = errors.New("openai: job ID is required")
	// ErrNoJobIDReturned is returned when a submit response carries no job id.
	ErrNoJobIDReturned = errors.New("openai: submit failed: no job ID returned")
	// ErrNoImageURL is returned when the image API answers without a URL.
	ErrNoImageURL = &APIError{Message: "No image URL returned from DALL-E"}
)

// Configuration errors for the individual backends.
var (
	// ErrAPIKeyNotSet is returned when OPENAI_API_KEY is missing.
	ErrAPIKeyNotSet = &ConfigError{Message: "OPENAI_API_KEY is not configured"}
	// ErrAzureNotConfigured is returned when the Azure endpoint or key is missing.
	ErrAzureNotConfigured = &ConfigError{Message: "Azure OpenAI credentials are not configured"}
)

// ConfigError reports a missing credential for the backend being called.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// Is makes every ConfigError match ErrNotConfigured.
func (e *ConfigError) Is(target error) bool { return target == ErrNotConfigured }

// Public returns a message that is safe to show to end users.
func (e *ConfigError) Public() string { return e.Message }

// APIError is a non-2xx response from a backend.
// Message is taken from the response body when it can be parsed.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Is makes every APIError match ErrRequestFailed.
func (e *APIError) Is(target error) bool { return target == ErrRequestFailed }

// Public returns a message that is safe to show to end users.
func (e *APIError) Public() string { return e.Error() }

// retryableError wraps errors that should be retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// isRetryable returns true if the error should be retried.
func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
