package occurrences

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapInsertionOrder(t *testing.T) {
	m := New()
	m.Add("a;b", 1)
	m.Add("a;b;c", 1)
	m.Add("a;b", 4)

	var order []string
	m.Each(func(stack string, count uint64) {
		order = append(order, stack)
	})
	assert.Equal(t, []string{"a;b", "a;b;c"}, order)

	count, ok := m.Get("a;b")
	require.True(t, ok)
	assert.Equal(t, uint64(5), count)
	assert.Equal(t, uint64(6), m.Total())
}

func TestMapSaturatingAdd(t *testing.T) {
	m := New()
	m.Add("a", ^uint64(0)-1)
	m.Add("a", 10)
	count, _ := m.Get("a")
	assert.Equal(t, ^uint64(0), count)
}

func TestMergePreservesFirstSeenOrder(t *testing.T) {
	chunk1 := New()
	chunk1.Add("b", 1)
	chunk1.Add("a", 1)

	chunk2 := New()
	chunk2.Add("a", 2)
	chunk2.Add("c", 5)

	result := Merge([]*Map{chunk1, chunk2})

	var order []string
	result.Merged.Each(func(stack string, count uint64) {
		order = append(order, stack)
	})
	assert.Equal(t, []string{"b", "a", "c"}, order)

	count, _ := result.Merged.Get("a")
	assert.Equal(t, uint64(3), count)
	assert.Equal(t, 1, result.Duplicates)
}

func TestMergeDeterministicAcrossWorkerCounts(t *testing.T) {
	// Splitting the same logical input into 1 or 2 chunks (in order)
	// must always merge to the same final map.
	oneChunk := New()
	for _, s := range []string{"a;b 1", "a;b;c 1", "a;b 1"} {
		oneChunk.Add(s, 1)
	}

	twoChunks := []*Map{New(), New()}
	twoChunks[0].Add("a;b 1", 1)
	twoChunks[0].Add("a;b;c 1", 1)
	twoChunks[1].Add("a;b 1", 1)

	r1 := Merge([]*Map{oneChunk})
	r2 := Merge(twoChunks)

	var o1, o2 []string
	r1.Merged.Each(func(s string, c uint64) { o1 = append(o1, s) })
	r2.Merged.Each(func(s string, c uint64) { o2 = append(o2, s) })
	assert.Equal(t, o1, o2)
	for _, s := range o1 {
		c1, _ := r1.Merged.Get(s)
		c2, _ := r2.Merged.Get(s)
		assert.Equal(t, c1, c2)
	}
}
