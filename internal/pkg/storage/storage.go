package storage

import (
	"context"
	"errors"
	"io"
)

// ErrBucketMissing is returned when the configured export bucket does not exist.
var ErrBucketMissing = errors.New("export bucket does not exist")

// Storage is where report exports are written.
type Storage interface {
	// Put writes the object at key, replacing any previous content.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// GetURL returns the URL a client can download key from.
	GetURL(key string) string
}

// Config selects and configures a backend.
type Config struct {
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	// LocalPath is used when no S3 credentials are set.
	LocalPath string
	LocalURL  string
}

// New returns an S3 store when credentials are configured, otherwise a
// local directory store.
func New(cfg Config) (Storage, error) {
	if cfg.S3Bucket != "" && cfg.S3AccessKey != "" {
		return NewS3Storage(cfg)
	}
	return NewLocalStorage(cfg.LocalPath, cfg.LocalURL)
}
