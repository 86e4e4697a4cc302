package results

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/dse-2025.net/internal/adapter/logging"
	"gitlab.com/dse-2025.net/internal/domain"
	"gitlab.com/dse-2025.net/internal/static/errs"
)

// fakeBackend is a scriptable in-memory backend for failure injection.
type fakeBackend struct {
	mu         sync.Mutex
	data       map[string][]byte
	failGetAll bool
	failSet    bool
	shortBatch bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{data: make(map[string][]byte)}
}

func (f *fakeBackend) GetAll(ctx context.Context) (map[string][]byte, error) {
	if f.failGetAll {
		return nil, errors.New("backend unreachable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	dump := make(map[string][]byte, len(f.data))
	for key, value := range f.data {
		dump[key] = value
	}
	return dump, nil
}

func (f *fakeBackend) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[key], nil
}

func (f *fakeBackend) BatchGet(ctx context.Context, keys []string) ([][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raws := make([][]byte, len(keys))
	for i, key := range keys {
		raws[i] = f.data[key]
	}
	return raws, nil
}

func (f *fakeBackend) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("write refused")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeBackend) BatchSet(ctx context.Context, pairs map[string][]byte) (int, error) {
	if f.failSet {
		return 0, errors.New("write refused")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	committed := 0
	for key, value := range pairs {
		if f.shortBatch && committed == len(pairs)-1 {
			// Pretend the last write silently failed.
			return committed, nil
		}
		f.data[key] = value
		committed++
	}
	return committed, nil
}

func (f *fakeBackend) Keys(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.data))
	for key := range f.data {
		keys = append(keys, key)
	}
	return keys, nil
}

func (f *fakeBackend) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data), nil
}

func (f *fakeBackend) Flush(ctx context.Context) error { return nil }

func (f *fakeBackend) Close(ctx context.Context) error { return nil }

func loadedStore(t *testing.T, backend *fakeBackend) *ResultStore {
	t.Helper()
	store := NewResultStore(backend, logging.NewNopLogger())
	require.NoError(t, store.Load(context.Background()))
	return store
}

func TestCommitThenQuery(t *testing.T) {
	ctx := context.Background()
	store := loadedStore(t, newFakeBackend())

	committed := scoredResult("p1", 5)
	committed.ContentHash = "abc"
	require.NoError(t, store.Commit(ctx, "p1", committed))

	queried, err := store.Query(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, queried)
	assert.Equal(t, "p1", queried.Key)
	assert.Equal(t, 5.0, queried.Quality)
	assert.Equal(t, domain.RetValid, queried.RetCode)
	assert.Equal(t, "abc", queried.ContentHash)
}

func TestQueryUnknownKey(t *testing.T) {
	ctx := context.Background()
	store := loadedStore(t, newFakeBackend())

	queried, err := store.Query(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, queried)
}

func TestCommitBeforeLoadRejected(t *testing.T) {
	store := NewResultStore(newFakeBackend(), logging.NewNopLogger())

	err := store.Commit(context.Background(), "p1", scoredResult("p1", 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrStoreNotLoaded)
	assert.False(t, errs.IsFatal(err))
}

func TestCommitWriteFailureIsFatal(t *testing.T) {
	backend := newFakeBackend()
	store := loadedStore(t, backend)
	backend.failSet = true

	err := store.Commit(context.Background(), "p1", scoredResult("p1", 1))
	require.Error(t, err)
	assert.True(t, errs.IsFatal(err))
	// The failed commit must not reach the best cache.
	assert.Zero(t, store.best.Len())
}

func TestBatchCommitShortWriteIsFatal(t *testing.T) {
	backend := newFakeBackend()
	store := loadedStore(t, backend)
	backend.shortBatch = true

	err := store.BatchCommit(context.Background(), []KeyResult{
		{Key: "p1", Result: scoredResult("p1", 1)},
		{Key: "p2", Result: scoredResult("p2", 2)},
	})
	require.Error(t, err)
	assert.True(t, errs.IsFatal(err))
}

func TestBatchCommitUpdatesBestCache(t *testing.T) {
	ctx := context.Background()
	store := loadedStore(t, newFakeBackend())

	duplicated := scoredResult("p3", 0.5)
	duplicated.RetCode = domain.RetDuplicated
	require.NoError(t, store.BatchCommit(ctx, []KeyResult{
		{Key: "p1", Result: scoredResult("p1", 4)},
		{Key: "p2", Result: scoredResult("p2", 2)},
		{Key: "p3", Result: duplicated},
	}))

	best := store.DrainBest(3)
	require.Len(t, best, 2)
	assert.Equal(t, "p2", best[0].Key)
	assert.Equal(t, "p1", best[1].Key)
}

func TestDuplicatedResultExcludedFromIndices(t *testing.T) {
	ctx := context.Background()
	store := loadedStore(t, newFakeBackend())

	duplicated := scoredResult("p1", 1)
	duplicated.RetCode = domain.RetDuplicated
	duplicated.ContentHash = "abc"
	require.NoError(t, store.Commit(ctx, "p1", duplicated))

	// Discoverable via query...
	queried, err := store.Query(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, queried)

	// ...but absent from the best cache and the hash index.
	assert.Empty(t, store.PeekBest(10))
	_, existed := store.AddCodeHash("abc", "probe")
	assert.False(t, existed)
}

func TestDedupScenario(t *testing.T) {
	ctx := context.Background()
	store := loadedStore(t, newFakeBackend())

	p1 := scoredResult("p1", 5)
	p1.ContentHash = "abc"
	require.NoError(t, store.Commit(ctx, "p1", p1))
	_, existed := store.AddCodeHash("abc", "p1")
	require.False(t, existed)

	p2 := scoredResult("p2", 3)
	p2.ContentHash = "abc"
	require.NoError(t, store.Commit(ctx, "p2", p2))
	owner, existed := store.AddCodeHash("abc", "p2")
	assert.True(t, existed)
	assert.Equal(t, "p1", owner)

	best := store.DrainBest(2)
	require.Len(t, best, 2)
	assert.Equal(t, "p2", best[0].Key)
	assert.Equal(t, "p1", best[1].Key)
}

func TestLoadRebuildsIndices(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()

	seed := func(key string, quality float64, retCode domain.RetCode, hash string) {
		result := scoredResult(key, quality)
		result.RetCode = retCode
		result.ContentHash = hash
		raw, err := json.Marshal(result)
		require.NoError(t, err)
		backend.data[key] = raw
	}
	seed("p1", 5, domain.RetValid, "h1")
	seed("p2", 3, domain.RetValid, "h2")
	seed("p3", 1, domain.RetDuplicated, "h1")
	seed("p4", 7, domain.RetValid, "")

	store := NewResultStore(backend, logging.NewNopLogger())
	require.NoError(t, store.Load(ctx))

	// The best cache holds exactly the non-duplicated results.
	best := store.DrainBest(10)
	require.Len(t, best, 3)
	assert.Equal(t, "p2", best[0].Key)
	assert.Equal(t, "p1", best[1].Key)
	assert.Equal(t, "p4", best[2].Key)

	// The hash index was rebuilt first-writer-wins from non-duplicated
	// results only.
	owner, existed := store.AddCodeHash("h1", "probe")
	assert.True(t, existed)
	assert.Equal(t, "p1", owner)
	owner, existed = store.AddCodeHash("h2", "probe")
	assert.True(t, existed)
	assert.Equal(t, "p2", owner)
}

func TestLoadFailureIsFatal(t *testing.T) {
	backend := newFakeBackend()
	backend.failGetAll = true
	store := NewResultStore(backend, logging.NewNopLogger())

	err := store.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsFatal(err))
}

func TestQueryCorruptValueSurfacesNil(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	store := loadedStore(t, backend)

	require.NoError(t, store.Commit(ctx, "good", scoredResult("good", 1)))
	backend.data["bad"] = []byte("{not json")

	queried, err := store.Query(ctx, "bad")
	require.NoError(t, err)
	assert.Nil(t, queried)

	// QueryAll filters the corrupt entry without failing.
	all, err := store.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "good", all[0].Key)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestBatchQueryIsPositional(t *testing.T) {
	ctx := context.Background()
	store := loadedStore(t, newFakeBackend())

	require.NoError(t, store.Commit(ctx, "p1", scoredResult("p1", 1)))
	require.NoError(t, store.Commit(ctx, "p2", scoredResult("p2", 2)))

	queried, err := store.BatchQuery(ctx, []string{"p1", "missing", "p2"})
	require.NoError(t, err)
	require.Len(t, queried, 3)
	assert.Equal(t, "p1", queried[0].Key)
	assert.Nil(t, queried[1])
	assert.Equal(t, "p2", queried[2].Key)
}
