package results

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"gitlab.com/dse-2025.net/internal/core/ports/primary"
	"gitlab.com/dse-2025.net/internal/core/ports/secondary"
	"gitlab.com/dse-2025.net/internal/domain"
	"gitlab.com/dse-2025.net/internal/static/errs"
)

var _ IResultStore = &ResultStore{}

// ResultStore implements the IResultStore interface on top of a pluggable
// key-value backend. Both derived indices are owned by the store instance,
// built empty at construction and populated only by Load and by commits.
type ResultStore struct {
	backend  secondary.KeyValueBackend
	logger   primary.Logger
	best     *BestResultCache
	codeHash *CodeHashIndex
	loaded   atomic.Bool
}

// NewResultStore creates a result store over the given backend
func NewResultStore(backend secondary.KeyValueBackend, logger primary.Logger) *ResultStore {
	return &ResultStore{
		backend:  backend,
		logger:   logger,
		best:     NewBestResultCache(),
		codeHash: NewCodeHashIndex(),
	}
}

// Load pulls the full backend dump and rebuilds both indices from the
// non-duplicated subset. A backend that cannot be read is a fatal error.
// Values that fail to deserialize are logged and skipped.
//
// The rebuild iterates the dump in map order, so on backends without a
// deterministic key order the first-writer-wins owner recorded for a hash may
// differ across restarts. Exactly one owner per hash is still guaranteed.
func (s *ResultStore) Load(ctx context.Context) error {
	dump, err := s.backend.GetAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load data from the database", "error", err)
		return errs.Fatal(fmt.Errorf("failed to load data from the database: %w", err))
	}

	for key, raw := range dump {
		result, err := decodeResult(raw)
		if err != nil {
			s.logger.Error("Failed to deserialize the result", "key", key, "error", err)
			continue
		}
		if result.RetCode == domain.RetDuplicated {
			continue
		}
		if err := s.best.Insert(result); err != nil {
			return fmt.Errorf("failed to update best cache: %w", err)
		}
		if result.ContentHash != "" {
			s.codeHash.Add(result.ContentHash, key)
		}
	}

	s.loaded.Store(true)
	s.logger.Info("Loaded data from an existing database", "count", len(dump))
	return nil
}

// Commit writes the result under key. A failed write is fatal: the store has
// no transaction log to resume from, so it prefers a loud failure over
// continuing with unknown state. On success non-duplicated results feed the
// best cache.
func (s *ResultStore) Commit(ctx context.Context, key string, result *domain.Result) error {
	if !s.loaded.Load() {
		return errs.ErrStoreNotLoaded
	}

	raw, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("Failed to serialize the result", "key", key, "error", err)
		return errs.Fatal(fmt.Errorf("failed to commit results to the database: %w", err))
	}

	if err := s.backend.Set(ctx, key, raw); err != nil {
		s.logger.Error("Failed to commit results to the database", "key", key, "error", err)
		return errs.Fatal(fmt.Errorf("failed to commit results to the database: %w", err))
	}

	return s.updateBest(result)
}

// BatchCommit writes all pairs in one backend call. Fewer successful writes
// than requested is fatal.
func (s *ResultStore) BatchCommit(ctx context.Context, pairs []KeyResult) error {
	if !s.loaded.Load() {
		return errs.ErrStoreNotLoaded
	}

	blobs := make(map[string][]byte, len(pairs))
	for _, pair := range pairs {
		raw, err := json.Marshal(pair.Result)
		if err != nil {
			s.logger.Error("Failed to serialize the result", "key", pair.Key, "error", err)
			return errs.Fatal(fmt.Errorf("failed to commit results to the database: %w", err))
		}
		blobs[pair.Key] = raw
	}

	committed, err := s.backend.BatchSet(ctx, blobs)
	if err != nil || committed != len(blobs) {
		s.logger.Error("Failed to commit results to the database",
			"requested", len(blobs), "committed", committed, "error", err)
		if err == nil {
			err = errs.ErrCommitFailed
		}
		return errs.Fatal(fmt.Errorf("failed to commit results to the database: %w", err))
	}

	for _, pair := range pairs {
		if err := s.updateBest(pair.Result); err != nil {
			return err
		}
	}
	return nil
}

// Query returns the stored result for key, or nil if the key is unavailable.
// A value that fails to deserialize is logged and surfaced as nil; it never
// fails the caller.
func (s *ResultStore) Query(ctx context.Context, key string) (*domain.Result, error) {
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Error("Failed to query the database", "key", key, "error", err)
		return nil, fmt.Errorf("failed to query %s: %w", key, err)
	}
	if raw == nil {
		return nil, nil
	}

	result, err := decodeResult(raw)
	if err != nil {
		s.logger.Error("Failed to deserialize the result", "key", key, "error", err)
		return nil, nil
	}
	return result, nil
}

// BatchQuery returns results positionally, same length as keys. A key that is
// absent or fails to deserialize yields a nil entry without aborting the rest
// of the batch.
func (s *ResultStore) BatchQuery(ctx context.Context, keys []string) ([]*domain.Result, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	raws, err := s.backend.BatchGet(ctx, keys)
	if err != nil {
		s.logger.Error("Failed to query the database", "error", err)
		return nil, fmt.Errorf("failed to batch query: %w", err)
	}

	found := make([]*domain.Result, len(keys))
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		result, err := decodeResult(raw)
		if err != nil {
			s.logger.Error("Failed to deserialize the result", "key", keys[i], "error", err)
			continue
		}
		found[i] = result
	}
	return found, nil
}

// QueryAll returns every retrievable result in the store.
func (s *ResultStore) QueryAll(ctx context.Context) ([]*domain.Result, error) {
	keys, err := s.QueryKeys(ctx)
	if err != nil {
		return nil, err
	}

	queried, err := s.BatchQuery(ctx, keys)
	if err != nil {
		return nil, err
	}

	all := make([]*domain.Result, 0, len(queried))
	for _, result := range queried {
		if result != nil {
			all = append(all, result)
		}
	}
	return all, nil
}

// QueryKeys returns all known design-point keys.
func (s *ResultStore) QueryKeys(ctx context.Context) ([]string, error) {
	keys, err := s.backend.Keys(ctx)
	if err != nil {
		s.logger.Error("Failed to query keys from the database", "error", err)
		return nil, fmt.Errorf("failed to query keys: %w", err)
	}
	return keys, nil
}

// Count returns the number of stored keys.
func (s *ResultStore) Count(ctx context.Context) (int, error) {
	count, err := s.backend.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count the database", "error", err)
		return 0, fmt.Errorf("failed to count the database: %w", err)
	}
	return count, nil
}

// Persist flushes the backend state to durable storage.
func (s *ResultStore) Persist(ctx context.Context) error {
	if err := s.backend.Flush(ctx); err != nil {
		s.logger.Error("Failed to persist the database", "error", err)
		return fmt.Errorf("failed to persist the database: %w", err)
	}
	return nil
}

// AddCodeHash delegates to the code hash index: first writer wins.
func (s *ResultStore) AddCodeHash(codeHash string, key string) (string, bool) {
	return s.codeHash.Add(codeHash, key)
}

// DrainBest pops up to n results from the best cache in quality order.
func (s *ResultStore) DrainBest(n int) []*domain.Result {
	return s.best.Drain(n)
}

// PeekBest returns up to n best results without consuming the cache.
func (s *ResultStore) PeekBest(n int) []*domain.Result {
	return s.best.Peek(n)
}

func (s *ResultStore) updateBest(result *domain.Result) error {
	if result == nil || result.RetCode == domain.RetDuplicated {
		return nil
	}
	if err := s.best.Insert(result); err != nil {
		s.logger.Error("Failed to update best cache", "error", err)
		return fmt.Errorf("failed to update best cache: %w", err)
	}
	return nil
}

func decodeResult(raw []byte) (*domain.Result, error) {
	var result domain.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
