package server

import (
	"log/slog"
	"net/http"

	"github.com/maauso/sora-studio/internal/ratelimit"
)

// Config contains server configuration options.
type Config struct {
	// AllowedOrigins is the list of allowed CORS origins.
	AllowedOrigins []string
	// Limiter throttles generation requests. Nil disables rate limiting.
	Limiter ratelimit.Limiter
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
	}
}

// NewRouter creates a new HTTP router with all routes configured.
// It uses Go 1.22+ ServeMux with method-based routing.
func NewRouter(h *Handlers, logger *slog.Logger, cfg Config) http.Handler {
	mux := http.NewServeMux()

	var generate http.Handler = http.HandlerFunc(h.Generate)
	if cfg.Limiter != nil {
		generate = RateLimitMiddleware(cfg.Limiter, logger)(generate)
	}

	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("POST /generate", generate)
	mux.HandleFunc("GET /status", h.Status)

	// Paths used by the web client.
	mux.Handle("POST /api/sora/generate", generate)
	mux.HandleFunc("GET /api/sora/status", h.Status)

	chain := ChainMiddleware(
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		CORSMiddleware(cfg.AllowedOrigins),
	)

	return chain(mux)
}
