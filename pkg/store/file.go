package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/tagrel/tagrel/pkg/observability"
)

// FileStore implements file-based snapshot storage for CLI usage.
// Each snapshot is stored as one file in a directory, with the filename
// derived from a SHA-256 hash of the key so arbitrary key strings stay safe
// on every filesystem.
//
// Multiple FileStore instances (even in different processes) can share the
// same directory; writes go through a rename so readers never observe a
// partial snapshot.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-based store in the given directory.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Save writes a snapshot under the given key.
func (s *FileStore) Save(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	path := s.path(key)

	tmp, err := os.CreateTemp(s.dir, ".snapshot-*")
	if err != nil {
		observability.Store().OnError("file", "save", err)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		observability.Store().OnError("file", "save", err)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		observability.Store().OnError("file", "save", err)
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		observability.Store().OnError("file", "save", err)
		return err
	}

	observability.Store().OnSave("file", key, len(data), time.Since(start))
	return nil
}

// Load retrieves a snapshot by key.
func (s *FileStore) Load(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		observability.Store().OnError("file", "load", err)
		return nil, err
	}
	observability.Store().OnLoad("file", key, len(data), time.Since(start))
	return data, nil
}

// Delete removes a snapshot. Deleting a missing key is not an error.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		observability.Store().OnError("file", "delete", err)
		return err
	}
	return nil
}

// Close does nothing for file storage.
func (s *FileStore) Close() error {
	return nil
}

// path converts a key to a file path via its SHA-256 hash.
func (s *FileStore) path(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(hash[:])+".json")
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
