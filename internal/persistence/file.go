package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore is a MemoryStore mirrored to a single JSON document on disk.
// Every successful write rewrites the document atomically.
type FileStore struct {
	*MemoryStore
	path string
}

// OpenFileStore loads path if it exists and returns a store bound to it.
func OpenFileStore(path string, quota int64) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store path is empty")
	}
	entries := map[string]string{}
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(content) > 0 {
			if err := json.Unmarshal(content, &entries); err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
		}
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	fs := &FileStore{path: path}
	fs.MemoryStore = newMemoryStoreWith(entries, quota, fs.flushToDisk)
	return fs, nil
}

// Path returns the backing document path.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) flushToDisk(entries map[string]string) error {
	content, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".store-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
