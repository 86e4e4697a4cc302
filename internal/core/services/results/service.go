package results

import (
	"context"

	"gitlab.com/dse-2025.net/internal/domain"
)

// KeyResult pairs a design-point key with its result for batch commits.
type KeyResult struct {
	Key    string
	Result *domain.Result
}

// IResultStore defines the interface for the result store
type IResultStore interface {
	// Load pulls the entire backend content once and rebuilds the best cache
	// and the code hash index before any new commits are accepted
	Load(ctx context.Context) error

	// Commit writes a new result under the given design-point key
	Commit(ctx context.Context, key string, result *domain.Result) error

	// BatchCommit writes a list of key-result pairs in one backend call
	BatchCommit(ctx context.Context, pairs []KeyResult) error

	// Query returns the stored result for a key, or nil if unavailable
	Query(ctx context.Context, key string) (*domain.Result, error)

	// BatchQuery returns results positionally, same length as keys
	BatchQuery(ctx context.Context, keys []string) ([]*domain.Result, error)

	// QueryAll returns every retrievable result in the store
	QueryAll(ctx context.Context) ([]*domain.Result, error)

	// QueryKeys returns all known design-point keys
	QueryKeys(ctx context.Context) ([]string, error)

	// Count returns the number of stored keys
	Count(ctx context.Context) (int, error)

	// Persist flushes the backend state to durable storage
	Persist(ctx context.Context) error

	// AddCodeHash records key as the owner of codeHash unless one is already
	// on file; it returns the recorded owner and whether the hash was seen
	AddCodeHash(codeHash string, key string) (string, bool)

	// DrainBest pops up to n results from the best cache in quality order
	DrainBest(n int) []*domain.Result

	// PeekBest returns up to n best results without consuming the cache
	PeekBest(n int) []*domain.Result
}
