// Package server provides the HTTP server for the sora-studio API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

import "encoding/json"

// GenerateRequest is the HTTP request body for starting a generation.
type GenerateRequest struct {
	// Prompt is kept raw so that non-string values can be told apart from
	// empty strings during validation.
	Prompt json.RawMessage `json:"prompt"`
}

// GenerateResponse is the HTTP response after starting a generation.
type GenerateResponse struct {
	// ID identifies the job for later status checks.
	ID string `json:"id"`
	// Status is the initial job status.
	Status string `json:"status"`
	// Type is "video" or "image".
	Type string `json:"type"`
}

// StatusResponse is the HTTP response for a status check.
type StatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	// VideoURL holds the result URL for both videos and fallback images.
	VideoURL string `json:"videoUrl,omitempty"`
	Error    string `json:"error,omitempty"`
	Type     string `json:"type,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Mode   string `json:"mode"`
}
