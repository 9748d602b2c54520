// Package objectstore persists uploaded document blobs. S3 (or any
// S3-compatible endpoint such as MinIO) backs production; an in-memory store
// backs tests and dev mode.
package objectstore

import (
	"context"
	"io"
)

// Object is a stored blob plus the metadata needed to serve it back.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Store reads and writes blobs by key.
type Store interface {
	// Put stores the blob under key, overwriting any existing object.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error

	// Get retrieves the blob. The caller owns closing Body.
	// Returns sentinel.ErrNotFound when absent.
	Get(ctx context.Context, key string) (*Object, error)

	// Delete removes the blob. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
