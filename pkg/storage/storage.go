// Package storage defines the interface to talk to the blob storage backends
package storage

import (
	"context"
	"os"
)

// ErrNotExist is returned by Read when no blob is stored under the
// requested name. Backends map their own not-found errors onto it.
var ErrNotExist = os.ErrNotExist

// Storage is the interface to implement when building a blob storage
// backend. Blobs are addressed by a flat name relative to the base
// directory of the backend.
type Storage interface {
	// BaseDirectory returns the location blob names are relative to
	BaseDirectory() string
	// Delete removes the blob, a missing blob is not an error
	Delete(ctx context.Context, name string) error
	// Exists reports whether a blob is stored under the name
	Exists(ctx context.Context, name string) (bool, error)
	// List returns the names of all blobs starting with prefix
	List(ctx context.Context, prefix string) ([]string, error)
	// Read returns the blob contents or ErrNotExist
	Read(ctx context.Context, name string) ([]byte, error)
	// Write replaces the blob contents. Readers see either the old or
	// the new contents, never a partially written blob.
	Write(ctx context.Context, name string, data []byte) error
}
