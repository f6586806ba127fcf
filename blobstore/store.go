// Package blobstore abstracts the destinations the pipeline writes its
// per-object output files to: a local directory, memory (tests), or
// S3-compatible object storage.
package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is a destination for immutable output blobs. Implementations must
// be safe for concurrent use: the batch pipeline writes from multiple
// workers.
//
// Put must be atomic from a reader's point of view: a blob is either absent
// or complete, never partially written.
type Store interface {
	// Put writes a blob under the given name, replacing any previous blob.
	Put(ctx context.Context, name string, data []byte) error

	// Open opens an existing blob for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
