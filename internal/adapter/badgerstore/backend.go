// Package badgerstore provides an embedded backend on BadgerDB for
// single-node explorations that want durability without an external service.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"gitlab.com/dse-2025.net/internal/core/ports/primary"
	"gitlab.com/dse-2025.net/internal/core/ports/secondary"
)

var _ secondary.KeyValueBackend = (*BadgerBackend)(nil)

// Config holds the BadgerDB settings the backend cares about.
type Config struct {
	// Path is the directory for the BadgerDB files. Ignored in memory mode.
	Path string

	// InMemory disables disk persistence; used by tests.
	InMemory bool

	// SyncWrites makes every write durable before it returns.
	SyncWrites bool
}

// BadgerBackend implements the KeyValueBackend interface with an embedded
// BadgerDB. All result keys are namespaced under "<name>/" so one database
// directory can host several stores. Badger transactions provide the
// concurrency control.
type BadgerBackend struct {
	db       *badger.DB
	logger   primary.Logger
	prefix   []byte
	inMemory bool
}

// NewBadgerBackend opens (or creates) the database directory.
func NewBadgerBackend(cfg Config, name string, logger primary.Logger) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		logger.Error("Failed to open Badger database", "path", cfg.Path, "error", err)
		return nil, fmt.Errorf("failed to open Badger database: %w", err)
	}

	return &BadgerBackend{
		db:       db,
		logger:   logger,
		prefix:   []byte(name + "/"),
		inMemory: cfg.InMemory,
	}, nil
}

func (b *BadgerBackend) GetAll(ctx context.Context) (map[string][]byte, error) {
	dump := make(map[string][]byte)
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = b.prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			dump[b.trim(item.Key())] = value
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dump the database: %w", err)
	}
	return dump, nil
}

func (b *BadgerBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.expand(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (b *BadgerBackend) BatchGet(ctx context.Context, keys []string) ([][]byte, error) {
	raws := make([][]byte, len(keys))
	err := b.db.View(func(txn *badger.Txn) error {
		for i, key := range keys {
			item, err := txn.Get(b.expand(key))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			raws[i], err = item.ValueCopy(nil)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to batch get: %w", err)
	}
	return raws, nil
}

func (b *BadgerBackend) Set(ctx context.Context, key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.expand(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// BatchSet writes all pairs in one transaction; either every pair lands or
// none does.
func (b *BadgerBackend) BatchSet(ctx context.Context, pairs map[string][]byte) (int, error) {
	err := b.db.Update(func(txn *badger.Txn) error {
		for key, value := range pairs {
			if err := txn.Set(b.expand(key), value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to batch set: %w", err)
	}
	return len(pairs), nil
}

func (b *BadgerBackend) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = b.prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, b.trim(it.Item().Key()))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

func (b *BadgerBackend) Count(ctx context.Context) (int, error) {
	keys, err := b.Keys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Flush syncs the write-ahead log to disk. In memory mode there is nothing
// to sync.
func (b *BadgerBackend) Flush(ctx context.Context) error {
	if b.inMemory {
		return nil
	}
	if err := b.db.Sync(); err != nil {
		return fmt.Errorf("failed to sync the database: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (b *BadgerBackend) Close(ctx context.Context) error {
	return b.db.Close()
}

func (b *BadgerBackend) expand(key string) []byte {
	return append(append([]byte{}, b.prefix...), key...)
}

func (b *BadgerBackend) trim(storedKey []byte) string {
	return strings.TrimPrefix(string(storedKey), string(b.prefix))
}
