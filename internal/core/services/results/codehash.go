package results

import "sync"

// CodeHashIndex maps the content hash of a generated artifact to the key of
// the first design point that produced it. First writer wins; later points
// with the same hash are reported as duplicates of the recorded owner.
type CodeHashIndex struct {
	mu     sync.Mutex
	owners map[string]string
}

// NewCodeHashIndex creates an empty index
func NewCodeHashIndex() *CodeHashIndex {
	return &CodeHashIndex{owners: make(map[string]string)}
}

// Add is an atomic check-and-set: if codeHash is new it is recorded against
// key and ("", false) is returned; otherwise the owner already on file is
// returned with true and the index is left untouched.
func (m *CodeHashIndex) Add(codeHash string, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if owner, ok := m.owners[codeHash]; ok {
		return owner, true
	}
	m.owners[codeHash] = key
	return "", false
}

// Len returns the number of distinct hashes recorded.
func (m *CodeHashIndex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.owners)
}
