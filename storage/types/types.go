// Package types declares the object storage contract used for health
// snapshots.
package types

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned when a key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage is a flat key/value blob store scoped to one bucket or
// directory chosen at construction time.
type ObjectStorage interface {
	// Put stores the reader's content under key, replacing any previous object.
	Put(ctx context.Context, key string, reader io.Reader, metadata ObjectMetadata) error

	// Get opens the object. Returns ErrObjectNotFound for unknown keys.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns objects whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// ObjectMetadata is stored alongside an object.
type ObjectMetadata struct {
	ContentType  string            `json:"content_type,omitempty"`
	CacheControl string            `json:"cache_control,omitempty"`
	UserMetadata map[string]string `json:"user_metadata,omitempty"`
}

// ObjectInfo describes a listed object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
}
