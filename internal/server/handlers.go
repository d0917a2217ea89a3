package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/maauso/sora-studio/internal/job"
	"github.com/maauso/sora-studio/internal/prompt"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidJSON      = "INVALID_JSON"
	CodeValidation       = "VALIDATION_ERROR"
	CodeRateLimited      = "RATE_LIMITED"
	CodeMissingID        = "MISSING_ID"
	CodeGenerationFailed = "GENERATION_FAILED"
	CodeStatusFailed     = "STATUS_CHECK_FAILED"
	CodeInternal         = "INTERNAL_ERROR"
)

// Default user-facing messages when an error carries none of its own.
const (
	msgGenerationFailed = "Failed to start generation"
	msgStatusFailed     = "Failed to check status"
	msgMissingID        = "Missing generation ID"
	msgInvalidJSON      = "Invalid JSON body"
)

// Dispatcher starts generations and reports their status.
type Dispatcher interface {
	StartGeneration(ctx context.Context, prompt string) (*job.Job, error)
	CheckStatus(ctx context.Context, jobID string) (*job.Job, error)
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	dispatcher Dispatcher
	prompts    *prompt.Validator
	logger     *slog.Logger
	mode       string
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithMode sets the backend mode reported by the health endpoint.
func WithMode(mode string) HandlerOption {
	return func(h *Handlers) {
		h.mode = mode
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(dispatcher Dispatcher, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		dispatcher: dispatcher,
		prompts:    prompt.NewValidator(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Mode: h.mode})
}

// Generate handles POST /generate requests.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, msgInvalidJSON, CodeInvalidJSON)
		return
	}

	text, err := h.prompts.ValidateRaw(req.Prompt)
	if err != nil {
		writeError(w, http.StatusBadRequest, publicMessage(err, err.Error()), CodeValidation)
		return
	}

	created, err := h.dispatcher.StartGeneration(r.Context(), text)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			h.logger.Debug("generation aborted by client")
			return
		}
		h.logger.Error("failed to start generation",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, publicMessage(err, msgGenerationFailed), CodeGenerationFailed)
		return
	}

	writeJSON(w, http.StatusCreated, GenerateResponse{
		ID:     created.ID,
		Status: string(created.Status),
		Type:   string(created.MediaType),
	})
}

// Status handles GET /status?id= requests.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, msgMissingID, CodeMissingID)
		return
	}

	found, err := h.dispatcher.CheckStatus(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		h.logger.Error("failed to check status",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, publicMessage(err, msgStatusFailed), CodeStatusFailed)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		ID:       found.ID,
		Status:   string(found.Status),
		VideoURL: found.ResultURL,
		Error:    found.Error,
		Type:     string(found.MediaType),
	})
}

// publicMessage returns the user-safe message carried by err, or fallback.
func publicMessage(err error, fallback string) string {
	var pub interface{ Public() string }
	if errors.As(err, &pub) {
		return pub.Public()
	}
	return fallback
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
