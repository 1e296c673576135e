// Package storage holds the ciphertext blob store. A blob is the encrypted
// bytes of one uploaded file, stored independently of its catalog row and
// addressed by an opaque key derived from the generated file id only —
// never from user input.
package storage

import (
	"context"
	"fmt"
)

// BlobStore reads and writes ciphertext blobs. Implementations must write
// the full blob before returning from Put so that a metadata row is only
// ever inserted after its ciphertext is durable.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Backend selects the blob store implementation.
type Backend string

const (
	BackendLocal Backend = "local"
	BackendS3    Backend = "s3"
)

// Config holds settings for whichever backend is selected.
type Config struct {
	Backend Backend

	// Local backend.
	LocalPath string

	// S3 backend.
	S3Bucket       string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3BaseEndpoint string
}

// NewBlobStore builds the configured backend.
func NewBlobStore(cfg Config) (BlobStore, error) {
	switch cfg.Backend {
	case BackendLocal:
		return NewLocalStore(cfg.LocalPath)
	case BackendS3:
		return NewS3Store(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// BlobKey derives the storage key for a file id: a two-character fan-out
// directory plus the id itself.
func BlobKey(fileID string) string {
	return fmt.Sprintf("%s/%s.bin", fileID[:2], fileID)
}
