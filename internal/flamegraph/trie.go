// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package flamegraph is the streaming SVG renderer (spec §4.5): it merges
// folded stacks into a trie, lays out each frame's x/y/width, colors it
// via internal/color, and streams self-contained SVG to a writer. This
// file builds the trie; layout.go computes geometry, svg.go emits XML,
// palette.go persists frame->color assignments, and filter.go implements
// the optional --filter expression.
//
// The trie shape — a root holding a name->child map plus an insertion
// order slice — generalizes danpilch-umd's flamegraph.frame (which only
// ever merges one input and has no insertion-order or diff bookkeeping)
// to multi-format input, flame-chart sibling ordering, and differential
// counts.
package flamegraph

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"flamefold/internal/ferrors"
)

// Node is one call-stack level in the merged trie.
type Node struct {
	Name     string
	Samples  uint64 // primary sample count (A, in diff mode)
	SamplesB uint64 // secondary sample count (B); zero outside diff mode
	Children map[string]*Node
	order    []string // child names in first-seen order, for flame-chart mode
}

func newNode(name string) *Node {
	return &Node{Name: name, Children: make(map[string]*Node)}
}

// Delta is SamplesB - Samples, meaningful only when the trie was built in
// diff mode.
func (n *Node) Delta() int64 {
	return int64(n.SamplesB) - int64(n.Samples)
}

// child returns (creating if absent) name's child of n, recording name in
// n's insertion order the first time it's seen.
func (n *Node) child(name string) *Node {
	c, ok := n.Children[name]
	if !ok {
		c = newNode(name)
		n.Children[name] = c
		n.order = append(n.order, name)
	}
	return c
}

// sortedChildNames returns n's children alphabetically.
func (n *Node) sortedChildNames() []string {
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// orderedChildNames returns n's children in first-seen order (flame-chart
// mode).
func (n *Node) orderedChildNames() []string {
	return n.order
}

// BuildOptions controls how Build parses its input.
type BuildOptions struct {
	// Negate reverses each stack (leaf-first instead of root-first)
	// before insertion, for the --negate icicle-from-the-top use case.
	Negate bool
}

// Build parses a folded-stack stream ("frame0;frame1;...;frameN count"
// per line) into a merged trie rooted at an empty-named Node, returning
// the root and the sum of every record's count. Malformed lines are
// logged and skipped (spec §4.5: "A malformed folded line is logged and
// skipped").
func Build(r io.Reader, opts BuildOptions, onSkip func(line string, reason string)) (*Node, uint64, error) {
	root, totalA, _, _, err := BuildAuto(r, opts, onSkip)
	return root, totalA, err
}

// BuildAuto parses a folded-stack stream the way Render's single INPUT
// argument does (spec §4.5: "Input: a folded-stack stream (possibly with
// two counts for diff mode)"). Each line is either "stack count" or, if
// it carries the second trailing count diff-folded produces ("stack
// countA countB"), diff data for the same merged trie. isDiff reports
// whether at least one line used the two-count form, so callers can
// switch to differential coloring without requiring a second stream.
func BuildAuto(r io.Reader, opts BuildOptions, onSkip func(line string, reason string)) (root *Node, totalA, totalB uint64, isDiff bool, err error) {
	root = newNode("")

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		frames, countA, countB, lineIsDiff, ok := parseFoldedLineAny(line)
		if !ok {
			if onSkip != nil {
				onSkip(line, "malformed folded line")
			}
			continue
		}
		if opts.Negate {
			reverseInPlace(frames)
		}
		insertDiff(root, frames, countA, countB, 0)
		totalA += countA
		totalB += countB
		isDiff = isDiff || lineIsDiff
	}
	if err := sc.Err(); err != nil {
		return nil, 0, 0, false, ferrors.IO("reading folded stacks", err)
	}
	return root, totalA, totalB, isDiff, nil
}

// BuildDiff parses two folded streams and merges them into one trie whose
// Samples/SamplesB hold each stack's count in a and b respectively (spec
// §4.5 diff mode). Returns the trie root and the totals for a and b.
func BuildDiff(a, b io.Reader, onSkip func(line string, reason string)) (*Node, uint64, uint64, error) {
	root := newNode("")
	var totalA, totalB uint64

	readInto := func(r io.Reader, isB bool) error {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			frames, count, ok := parseFoldedLine(line)
			if !ok {
				if onSkip != nil {
					onSkip(line, "malformed folded line")
				}
				continue
			}
			if isB {
				insertB(root, frames, count, 0)
				totalB += count
			} else {
				insert(root, frames, count, 0)
				totalA += count
			}
		}
		return sc.Err()
	}
	if err := readInto(a, false); err != nil {
		return nil, 0, 0, ferrors.IO("reading first folded stream", err)
	}
	if err := readInto(b, true); err != nil {
		return nil, 0, 0, ferrors.IO("reading second folded stream", err)
	}
	return root, totalA, totalB, nil
}

func insert(n *Node, frames []string, count uint64, i int) {
	n.Samples += count
	if i >= len(frames) {
		return
	}
	insert(n.child(frames[i]), frames, count, i+1)
}

func insertB(n *Node, frames []string, count uint64, i int) {
	n.SamplesB += count
	if i >= len(frames) {
		return
	}
	insertB(n.child(frames[i]), frames, count, i+1)
}

// insertDiff adds countA to Samples and countB to SamplesB along the same
// path in a single pass, for a stream where both counts arrive together
// on one line.
func insertDiff(n *Node, frames []string, countA, countB uint64, i int) {
	n.Samples += countA
	n.SamplesB += countB
	if i >= len(frames) {
		return
	}
	insertDiff(n.child(frames[i]), frames, countA, countB, i+1)
}

func reverseInPlace(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// parseFoldedLine splits "f0;f1;...;fn count" into frames and count. The
// trailing field is always taken as the single count, with no two-count
// diff-folded guessing — used where each stream is known to carry exactly
// one count per line (BuildDiff's two separate streams).
func parseFoldedLine(line string) ([]string, uint64, bool) {
	idx := strings.LastIndex(line, " ")
	if idx < 0 {
		return nil, 0, false
	}
	stack, rawCount := line[:idx], strings.TrimSpace(line[idx+1:])
	if stack == "" {
		return nil, 0, false
	}
	count, err := strconv.ParseUint(rawCount, 10, 64)
	if err != nil {
		return nil, 0, false
	}
	return strings.Split(stack, ";"), count, true
}

// parseFoldedLineAny splits a folded line that carries either one
// trailing count ("f0;f1;...;fn count") or, as diff-folded produces, two
// ("f0;f1;...;fn countA countB"). It tries the two-count form first and
// falls back to one count when the second-to-last field isn't numeric,
// matching the classic flamegraph tooling's same per-line guess.
func parseFoldedLineAny(line string) (frames []string, countA, countB uint64, isDiff, ok bool) {
	lastSpace := strings.LastIndex(line, " ")
	if lastSpace < 0 {
		return nil, 0, 0, false, false
	}
	rest, lastField := line[:lastSpace], strings.TrimSpace(line[lastSpace+1:])
	last, err := strconv.ParseUint(lastField, 10, 64)
	if err != nil {
		return nil, 0, 0, false, false
	}

	if secondSpace := strings.LastIndex(rest, " "); secondSpace >= 0 {
		stack, secondField := rest[:secondSpace], strings.TrimSpace(rest[secondSpace+1:])
		if second, err := strconv.ParseUint(secondField, 10, 64); err == nil && stack != "" {
			return strings.Split(stack, ";"), second, last, true, true
		}
	}

	if rest == "" {
		return nil, 0, 0, false, false
	}
	return strings.Split(rest, ";"), last, 0, false, true
}
