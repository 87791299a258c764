// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package occurrences implements the Stack -> count mapping shared by every
// collapser: keys are never mutated after first insertion, counts only grow,
// and iteration order is insertion order.
//
// The reference design (spec notes) offers a choice between a single shared
// concurrent map and per-worker maps merged at the end. This toolkit takes
// the per-worker-map-plus-merge path the design notes recommend: simpler to
// reason about and it produces identical byte-for-byte output, at the cost
// of one O(total stacks) merge pass. So there is one concrete Map type, used
// both for the single-threaded path and as each parallel worker's private
// accumulator; StackAggregator from the teacher's stackcollapse-perf.go is
// the direct ancestor of this type, generalized to preserve insertion order
// and to merge deterministically across chunks.
package occurrences

import (
	"math"

	mapset "github.com/deckarep/golang-set/v2"
)

// Map is an order-preserving Stack -> count accumulator. The zero value is
// not usable; construct with New.
type Map struct {
	order  []string
	counts map[string]uint64
}

// New returns an empty Map.
func New() *Map {
	return &Map{counts: make(map[string]uint64)}
}

// Add accumulates count into stack's running total, recording stack's
// position the first time it is seen. Addition saturates at MaxUint64
// rather than wrapping.
func (m *Map) Add(stack string, count uint64) {
	cur, ok := m.counts[stack]
	if !ok {
		m.order = append(m.order, stack)
	}
	sum := cur + count
	if sum < cur { // overflow
		sum = math.MaxUint64
	}
	m.counts[stack] = sum
}

// Get returns stack's accumulated count and whether it has been seen.
func (m *Map) Get(stack string) (uint64, bool) {
	v, ok := m.counts[stack]
	return v, ok
}

// Len returns the number of distinct stacks recorded.
func (m *Map) Len() int { return len(m.order) }

// Each calls fn once per distinct stack, in insertion order.
func (m *Map) Each(fn func(stack string, count uint64)) {
	for _, stack := range m.order {
		fn(stack, m.counts[stack])
	}
}

// Total returns the sum of all recorded counts.
func (m *Map) Total() uint64 {
	var total uint64
	for _, c := range m.counts {
		total += c
	}
	return total
}

// MergeResult reports bookkeeping about a Merge call. The parallel
// collapse path reads only Merged.
type MergeResult struct {
	Merged     *Map
	Duplicates int // appearances of a stack in a chunk after the first chunk that had it
}

// Merge combines per-chunk maps, in chunk order, into one Map whose
// iteration order is the concatenation of each chunk's insertion order with
// duplicates removed from later chunks — i.e. a stack's position is fixed
// by the first chunk that produced it, and its count is the sum across all
// chunks. This is what makes the parallel path byte-identical to the
// single-threaded path for equal inputs (spec: ordering guarantee).
func Merge(chunks []*Map) MergeResult {
	merged := New()
	seen := mapset.NewThreadUnsafeSet[string]()
	duplicates := 0
	for _, chunk := range chunks {
		chunk.Each(func(stack string, count uint64) {
			if seen.Contains(stack) {
				duplicates++
			} else {
				seen.Add(stack)
			}
			merged.Add(stack, count)
		})
	}
	return MergeResult{Merged: merged, Duplicates: duplicates}
}
