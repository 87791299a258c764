// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package xctrace collapses `xctrace export` Time Profiler call-tree text
// dumps into folded stacks (spec §4.3: "analogous tabular/indented
// variants"). Each line is an indented symbol with a leading weight such
// as "12.34 ms" or "820 us"; indentation depth and leaf detection reuse
// the same technique as internal/formats/sample, with the weight column
// converted to whole microseconds as the sample count.
package xctrace

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"flamefold/internal/collapse"
	"flamefold/internal/occurrences"
	"flamefold/internal/symbols"
)

// Options controls xctrace-specific parsing.
type Options struct {
	// Utf8Mode controls how symbols.Fix treats a non-UTF-8 frame (spec
	// §4.1, §6). Zero value is symbols.Lossy.
	Utf8Mode symbols.Mode
}

// NewFactory returns a collapse.Factory bound to opts for xctrace
// call-tree input.
func NewFactory(opts Options) collapse.Factory {
	return func(acc *occurrences.Map) collapse.Parser {
		return &parser{opts: opts, acc: acc}
	}
}

var weightRegex = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(ms|us|s)\b\s*(.*)$`)

type node struct {
	depth int
	name  string
	count uint64
}

type parser struct {
	opts    Options
	acc     *occurrences.Map
	path    []string
	pending *node
	lineNo  int
}

// WouldEndStack reports a blank line, the separator xctrace's text export
// emits between per-thread call trees.
func (p *parser) WouldEndStack(line []byte) bool {
	return len(strings.TrimSpace(string(line))) == 0
}

func (p *parser) Step(line []byte) error {
	p.lineNo++
	s := strings.TrimRight(string(line), "\r")
	if strings.TrimSpace(s) == "" {
		p.resolvePending()
		p.path = nil
		return nil
	}

	depth := 0
	for depth < len(s) && s[depth] == ' ' {
		depth++
	}
	depth /= 2
	rest := strings.TrimLeft(s, " ")

	m := weightRegex.FindStringSubmatch(rest)
	if m == nil {
		return nil // preamble line, e.g. a thread/queue header
	}
	count := toMicros(m[1], m[2])
	name, err := symbols.FixMode(strings.TrimSpace(m[3]), p.opts.Utf8Mode)
	if err != nil {
		slog.Warn("xctrace: skipping malformed symbol", "line", p.lineNo, "error", err)
		return nil
	}

	if p.pending != nil {
		if depth > p.pending.depth {
			p.setPath(p.pending.depth, p.pending.name) // has a child; not a leaf
		} else {
			p.emitPendingAsLeaf()
		}
	}
	p.pending = &node{depth: depth, name: name, count: count}
	return nil
}

func (p *parser) Flush() error {
	p.resolvePending()
	return nil
}

func (p *parser) resolvePending() {
	if p.pending != nil {
		p.emitPendingAsLeaf()
	}
}

func (p *parser) emitPendingAsLeaf() {
	p.setPath(p.pending.depth, p.pending.name)
	stack := p.path[:p.pending.depth+1]
	p.acc.Add(strings.Join(stack, ";"), p.pending.count)
	p.pending = nil
}

func (p *parser) setPath(depth int, name string) {
	if len(p.path) <= depth {
		p.path = append(p.path, make([]string, depth+1-len(p.path))...)
	} else {
		p.path = p.path[:depth+1]
	}
	p.path[depth] = name
}

func toMicros(value, unit string) uint64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return 0
	}
	switch unit {
	case "s":
		f *= 1_000_000
	case "ms":
		f *= 1_000
	case "us":
		// already microseconds
	}
	if f < 1 && f > 0 {
		f = 1
	}
	return uint64(f)
}
