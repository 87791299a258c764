// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package ghcprof collapses GHC `+RTS -p` cost-centre profile reports
// into folded stacks. The report is an indented cost-centre call tree
// (spec §4.3: "analogous tabular/indented variants"); this reuses the
// same depth-stack, emit-on-leaf construction as internal/formats/sample
// and internal/formats/vsprof, with depth taken from leading whitespace
// before the cost-centre name and the sample weight taken from the
// report's "ticks" column (entries before %time/%alloc, after which
// bytes is ignored).
package ghcprof

import (
	"log/slog"
	"strconv"
	"strings"

	"flamefold/internal/collapse"
	"flamefold/internal/occurrences"
	"flamefold/internal/symbols"
)

// Options controls ghcprof-specific parsing.
type Options struct {
	// Utf8Mode controls how symbols.Fix treats a non-UTF-8 frame (spec
	// §4.1, §6). Zero value is symbols.Lossy.
	Utf8Mode symbols.Mode
}

// NewFactory returns a collapse.Factory bound to opts for GHC cost-centre
// profile input.
func NewFactory(opts Options) collapse.Factory {
	return func(acc *occurrences.Map) collapse.Parser {
		return &parser{opts: opts, acc: acc}
	}
}

type node struct {
	depth int
	name  string
	count uint64
}

type parser struct {
	opts      Options
	acc       *occurrences.Map
	path      []string
	pending   *node
	bodyStart bool // true once the "COST CENTRE" header line has been seen
	lineNo    int
}

// WouldEndStack always reports false, so ghcprof is not chunkable: a
// parser skips every line until it has seen the "COST CENTRE" column
// header, and only the first chunk would contain that header.
func (p *parser) WouldEndStack(line []byte) bool {
	return false
}

func (p *parser) Step(line []byte) error {
	p.lineNo++
	s := strings.TrimRight(string(line), "\r")
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		p.resolvePending()
		p.path = nil
		return nil
	}
	if !p.bodyStart {
		if strings.HasPrefix(trimmed, "COST CENTRE") {
			p.bodyStart = true
		}
		return nil // individual/inherited column banner, or the column header row itself
	}

	depth := 0
	for depth < len(s) && s[depth] == ' ' {
		depth++
	}
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return nil
	}
	name, err := symbols.FixMode(fields[0], p.opts.Utf8Mode)
	if err != nil {
		slog.Warn("ghcprof: skipping malformed symbol", "line", p.lineNo, "error", err)
		return nil
	}
	count := ticksOf(fields)

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

// ticksOf extracts the "ticks" column: when no./entries/%time/%alloc/
// itime/ialloc/ticks/bytes are all present (8 trailing numeric-ish fields
// after name/module/src), ticks is the second-to-last. Reports produced without
// -P (no ticks/bytes columns) fall back to the "entries" count so every
// cost centre still contributes a nonzero weight.
func ticksOf(fields []string) uint64 {
	numeric := fields[3:]
	if len(numeric) >= 7 {
		if v, err := strconv.ParseUint(numeric[len(numeric)-2], 10, 64); err == nil {
			return v
		}
	}
	if len(numeric) >= 2 {
		if v, err := strconv.ParseUint(numeric[1], 10, 64); err == nil {
			return v
		}
	}
	return 0
}
