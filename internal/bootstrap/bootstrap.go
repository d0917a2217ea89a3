// Package bootstrap provides dependency initialization for the sora-studio API.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maauso/sora-studio/internal/config"
	"github.com/maauso/sora-studio/internal/dispatch"
	"github.com/maauso/sora-studio/internal/generator"
	"github.com/maauso/sora-studio/internal/job"
	"github.com/maauso/sora-studio/internal/openai"
	"github.com/maauso/sora-studio/internal/ratelimit"
	"github.com/maauso/sora-studio/internal/storage"
)

const (
	redisPingTimeout = 3 * time.Second
	maxSweepInterval = time.Minute
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	Mode       generator.Mode
	Dispatcher *dispatch.Dispatcher
	// Limiter is nil when rate limiting is disabled.
	Limiter ratelimit.Limiter

	janitors []func(ctx context.Context)
	closers  []func() error
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Mode: generator.SelectMode(cfg.UseMock, cfg.AzureConfigured()),
	}

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		var err error
		rdb, err = initRedis(ctx, cfg.RedisURL, logger)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, rdb.Close)
	}

	repo := deps.initRepository(cfg, rdb)
	deps.initLimiter(cfg, rdb, logger)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	clientOpts := []openai.ClientOption{
		openai.WithHTTPClient(httpClient),
		openai.WithBaseURL(cfg.OpenAIBaseURL),
		openai.WithMaxRetries(cfg.HTTPMaxRetries),
	}

	primary := newPrimary(deps.Mode, cfg, clientOpts, logger)

	var opts []dispatch.Option
	if cfg.S3Enabled() {
		store, err := storage.NewS3Storage(ctx, cfg.TempDir, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 mirroring of fallback images enabled",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		opts = append(opts, dispatch.WithMirror(storage.NewMirror(store, logger)))
	}

	var images dispatch.ImageGenerator
	if deps.Mode != generator.ModeMock {
		images = openai.NewImageClient(cfg.OpenAIAPIKey, clientOpts...)
	}

	deps.Dispatcher = dispatch.New(deps.Mode, primary, images, repo, logger, opts...)

	logger.Info("generation backend selected",
		slog.String("mode", deps.Mode.String()),
		slog.Bool("redis", rdb != nil),
		slog.Bool("rate_limit", deps.Limiter != nil),
	)
	if deps.Mode == generator.ModeNative && cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set; generation requests will fail")
	}

	return deps, nil
}

// Start runs background maintenance until ctx is done.
func (d *Dependencies) Start(ctx context.Context) {
	for _, run := range d.janitors {
		go run(ctx)
	}
}

// Close releases external connections.
func (d *Dependencies) Close() error {
	var errs []error
	for _, c := range d.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newPrimary(mode generator.Mode, cfg *config.Config, clientOpts []openai.ClientOption, logger *slog.Logger) generator.Generator {
	switch mode {
	case generator.ModeAzure:
		client := openai.NewAzureVideoClient(cfg.AzureEndpoint, cfg.AzureAPIKey, cfg.AzureAPIVersion, clientOpts...)
		return generator.NewAzureAdapter(client, logger)
	case generator.ModeNative:
		return generator.NewNativeAdapter(openai.NewVideoClient(cfg.OpenAIAPIKey, clientOpts...), logger)
	default:
		return generator.NewMock(generator.WithVideoURL(cfg.MockVideoURL))
	}
}

func initRedis(ctx context.Context, rawURL string, logger *slog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis is not reachable yet",
			slog.String("addr", opts.Addr),
			slog.String("error", err.Error()),
		)
	}
	return rdb, nil
}

func (d *Dependencies) initRepository(cfg *config.Config, rdb *redis.Client) job.Repository {
	if rdb != nil {
		return job.NewRedisRepository(rdb, cfg.ImageCacheTTL)
	}

	repo := job.NewMemoryRepository(cfg.ImageCacheTTL)
	if cfg.ImageCacheTTL > 0 {
		interval := min(cfg.ImageCacheTTL, maxSweepInterval)
		d.janitors = append(d.janitors, func(ctx context.Context) { repo.Run(ctx, interval) })
	}
	return repo
}

func (d *Dependencies) initLimiter(cfg *config.Config, rdb *redis.Client, logger *slog.Logger) {
	if cfg.RateLimitWindow <= 0 {
		return
	}
	if rdb != nil {
		d.Limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimitWindow, logger)
		return
	}

	limiter := ratelimit.NewMemoryLimiter(cfg.RateLimitWindow)
	interval := min(cfg.RateLimitWindow, maxSweepInterval)
	d.janitors = append(d.janitors, func(ctx context.Context) { limiter.Run(ctx, interval) })
	d.Limiter = limiter
}
