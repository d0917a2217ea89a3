// Package storage provides scratch file storage on local disk and durable
// object storage on S3 for generated media.
package storage

import (
	"context"
	"io"
)

// Storage holds generated media: scratch files while a download is in
// flight and an optional durable bucket for the result.
type Storage interface {
	// SaveTemp saves data to a scratch file and returns its path.
	// The name parameter is used as a hint for the filename.
	SaveTemp(ctx context.Context, name string, data io.Reader) (path string, err error)

	// LoadTemp opens a scratch file. The caller closes the returned ReadCloser.
	LoadTemp(ctx context.Context, path string) (io.ReadCloser, error)

	// CleanupTemp removes scratch files, continuing past individual failures.
	CleanupTemp(ctx context.Context, paths []string) error

	// Upload stores data under key and returns its public URL.
	// Returns ErrS3NotConfigured if no bucket is configured.
	Upload(ctx context.Context, key, contentType string, data io.Reader) (url string, err error)
}
