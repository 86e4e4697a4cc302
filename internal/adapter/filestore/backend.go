// Package filestore is the fallback backend when no database service is
// available in the system. It keeps the result set in memory and snapshots it
// to a single JSON file; it has no multi-node support.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gitlab.com/dse-2025.net/internal/core/ports/primary"
	"gitlab.com/dse-2025.net/internal/core/ports/secondary"
)

var _ secondary.KeyValueBackend = (*FileBackend)(nil)

// FileBackend implements the KeyValueBackend interface over an in-memory map
// with a file snapshot. The map has no native concurrency control, so every
// operation holds the mutex.
type FileBackend struct {
	mu       sync.Mutex
	logger   primary.Logger
	filePath string
	data     map[string][]byte
}

// NewFileBackend loads an existing snapshot file when one is present.
func NewFileBackend(filePath string, logger primary.Logger) (*FileBackend, error) {
	b := &FileBackend{
		logger:   logger,
		filePath: filePath,
		data:     make(map[string][]byte),
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return b, nil
		}
		return nil, fmt.Errorf("failed to read the database file: %w", err)
	}
	if err := json.Unmarshal(raw, &b.data); err != nil {
		return nil, fmt.Errorf("failed to decode the database file: %w", err)
	}

	logger.Info("Loaded data from an existing database file",
		"count", len(b.data), "file", filePath)
	return b, nil
}

func (b *FileBackend) GetAll(ctx context.Context) (map[string][]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	dump := make(map[string][]byte, len(b.data))
	for key, value := range b.data {
		dump[key] = value
	}
	return dump, nil
}

func (b *FileBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data[key], nil
}

func (b *FileBackend) BatchGet(ctx context.Context, keys []string) ([][]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	raws := make([][]byte, len(keys))
	for i, key := range keys {
		raws[i] = b.data[key]
	}
	return raws, nil
}

func (b *FileBackend) Set(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = value
	return nil
}

func (b *FileBackend) BatchSet(ctx context.Context, pairs map[string][]byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for key, value := range pairs {
		b.data[key] = value
	}
	return len(pairs), nil
}

func (b *FileBackend) Keys(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys := make([]string, 0, len(b.data))
	for key := range b.data {
		keys = append(keys, key)
	}
	return keys, nil
}

func (b *FileBackend) Count(ctx context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data), nil
}

// Flush writes the snapshot atomically: encode to a temp file in the same
// directory, then rename over the target.
func (b *FileBackend) Flush(ctx context.Context) error {
	b.mu.Lock()
	raw, err := json.Marshal(b.data)
	b.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode the database file: %w", err)
	}

	dir := filepath.Dir(b.filePath)
	tmp, err := os.CreateTemp(dir, filepath.Base(b.filePath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create the database temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write the database file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close the database temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.filePath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace the database file: %w", err)
	}
	return nil
}

// Close flushes the snapshot one last time.
func (b *FileBackend) Close(ctx context.Context) error {
	return b.Flush(ctx)
}
