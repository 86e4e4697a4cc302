package results

import (
	"container/heap"
	"sync"

	"gitlab.com/dse-2025.net/internal/domain"
	"gitlab.com/dse-2025.net/internal/static/errs"
)

// bestEntry orders results by quality first and by insertion sequence second,
// so among equal-quality results the one inserted earlier drains first.
type bestEntry struct {
	quality float64
	seq     uint64
	result  *domain.Result
}

type bestHeap []bestEntry

func (h bestHeap) Len() int { return len(h) }

func (h bestHeap) Less(i, j int) bool {
	if h[i].quality != h[j].quality {
		return h[i].quality < h[j].quality
	}
	return h[i].seq < h[j].seq
}

func (h bestHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *bestHeap) Push(x interface{}) { *h = append(*h, x.(bestEntry)) }

func (h *bestHeap) Pop() interface{} {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}

// BestResultCache keeps every result handed to Insert, ordered by quality
// (lower is better). The cache never evicts; the consumer bounds the retained
// set by draining. All methods are safe for concurrent use.
type BestResultCache struct {
	mu      sync.Mutex
	entries bestHeap
	seq     uint64
}

// NewBestResultCache creates an empty best cache
func NewBestResultCache() *BestResultCache {
	return &BestResultCache{}
}

// Insert pushes the result with a sequence number assigned under the lock,
// which gives a strictly total drain order even for equal qualities.
func (c *BestResultCache) Insert(result *domain.Result) error {
	if result == nil {
		return errs.ErrNilResult
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	heap.Push(&c.entries, bestEntry{
		quality: result.Quality,
		seq:     c.seq,
		result:  result,
	})
	return nil
}

// Drain pops up to n results in quality order. A non-positive n drains
// nothing.
func (c *BestResultCache) Drain(n int) []*domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n > c.entries.Len() {
		n = c.entries.Len()
	}
	if n < 0 {
		n = 0
	}
	drained := make([]*domain.Result, 0, n)
	for i := 0; i < n; i++ {
		entry := heap.Pop(&c.entries).(bestEntry)
		drained = append(drained, entry.result)
	}
	return drained
}

// Peek returns up to n best results without consuming the cache. It works on
// a snapshot taken under the lock, so concurrent inserts are not blocked
// while the snapshot is drained.
func (c *BestResultCache) Peek(n int) []*domain.Result {
	c.mu.Lock()
	snapshot := make(bestHeap, c.entries.Len())
	copy(snapshot, c.entries)
	c.mu.Unlock()

	if n > snapshot.Len() {
		n = snapshot.Len()
	}
	if n < 0 {
		n = 0
	}
	best := make([]*domain.Result, 0, n)
	for i := 0; i < n; i++ {
		entry := heap.Pop(&snapshot).(bestEntry)
		best = append(best, entry.result)
	}
	return best
}

// Len returns the number of entries currently held.
func (c *BestResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}
