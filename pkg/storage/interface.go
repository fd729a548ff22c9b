package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound is returned when no content exists for a key.
	ErrNotFound = errors.New("storage: object not found")

	// ErrPathEscape is returned when a key would resolve outside the storage root.
	ErrPathEscape = errors.New("storage: path escapes storage root")
)

// Storage defines the interface for file storage operations.
// Keys are slash-separated paths relative to the storage root.
type Storage interface {
	// Write stores content from the reader with the given key.
	// The size parameter is the expected content size (-1 if unknown).
	// The contentType parameter specifies the MIME type of the content.
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Read retrieves content for the given key.
	// The caller is responsible for closing the returned ReadCloser.
	Read(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content with the given key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists checks if content with the given key exists.
	Exists(ctx context.Context, key string) (bool, error)
}
