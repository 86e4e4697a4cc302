package secondary

import "context"

// KeyValueBackend is the narrow contract a storage technology must satisfy to
// back the result store. Values are opaque serialized blobs; nothing at this
// layer interprets them. Implementations must be safe for concurrent use.
type KeyValueBackend interface {
	// GetAll returns a full dump of raw stored values keyed by result key.
	GetAll(ctx context.Context) (map[string][]byte, error)

	// Get returns the value stored under key, or nil if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// BatchGet returns values positionally, same length as keys; absent keys
	// yield nil entries.
	BatchGet(ctx context.Context, keys []string) ([][]byte, error)

	// Set upserts a single value.
	Set(ctx context.Context, key string, value []byte) error

	// BatchSet upserts all pairs and returns the number of successful writes.
	BatchSet(ctx context.Context, pairs map[string][]byte) (int, error)

	// Keys returns all known keys.
	Keys(ctx context.Context) ([]string, error)

	// Count returns the number of stored keys.
	Count(ctx context.Context) (int, error)

	// Flush persists the current state to durable storage. Backends that are
	// durable on every write may treat this as a no-op.
	Flush(ctx context.Context) error

	// Close releases the backend handle and cleans up session state.
	Close(ctx context.Context) error
}
