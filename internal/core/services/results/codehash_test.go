package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeHashFirstWriterWins(t *testing.T) {
	index := NewCodeHashIndex()

	owner, existed := index.Add("abc", "p1")
	assert.False(t, existed)
	assert.Empty(t, owner)

	owner, existed = index.Add("abc", "p2")
	assert.True(t, existed)
	assert.Equal(t, "p1", owner)

	// Re-adding under the original key still reports the recorded owner.
	owner, existed = index.Add("abc", "p1")
	assert.True(t, existed)
	assert.Equal(t, "p1", owner)

	assert.Equal(t, 1, index.Len())
}

func TestCodeHashDistinctHashes(t *testing.T) {
	index := NewCodeHashIndex()

	_, existed := index.Add("h1", "p1")
	assert.False(t, existed)
	_, existed = index.Add("h2", "p2")
	assert.False(t, existed)

	assert.Equal(t, 2, index.Len())
}
