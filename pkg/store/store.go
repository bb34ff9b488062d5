// Package store provides snapshot persistence for serialized graphs.
//
// This package defines a small key-value interface over whole-graph
// snapshots, with implementations for different backends:
//   - memory: In-memory storage for development/testing
//   - file: File-based storage for CLI applications
//   - redis: Redis-backed storage for shared deployments
//   - mongo: MongoDB-backed storage for durable deployments
//
// A snapshot is the opaque JSON text produced by the graph serializer; the
// store never inspects it.
package store

import (
	"context"
	"errors"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a requested snapshot does not exist.
	ErrNotFound = errors.New("not found")
)

// Store is the interface for snapshot storage backends.
type Store interface {
	// Save writes a snapshot under the given key, replacing any previous one.
	Save(ctx context.Context, key string, data []byte) error

	// Load retrieves a snapshot by key.
	// Returns ErrNotFound when no snapshot exists under the key.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes a snapshot. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
