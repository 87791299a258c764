// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package vsprof collapses Visual Studio profiler "Caller/Callee" tree
// exports into folded stacks. The export is tab-indented: each line's
// leading tab count is its depth in the call tree, followed by the
// function name and a trailing inclusive-sample-count column (spec §4.3:
// "analogous tabular/indented variants"). This reuses the depth-stack,
// emit-on-leaf technique internal/formats/sample uses for macOS `sample`
// output, generalized from space-indentation to tab-indentation and from
// an embedded "(N samples,...)" fragment to an explicit trailing column.
package vsprof

import (
	"log/slog"
	"strconv"
	"strings"

	"flamefold/internal/collapse"
	"flamefold/internal/occurrences"
	"flamefold/internal/symbols"
)

// Options controls vsprof-specific parsing.
type Options struct {
	// Utf8Mode controls how symbols.Fix treats a non-UTF-8 frame (spec
	// §4.1, §6). Zero value is symbols.Lossy.
	Utf8Mode symbols.Mode
}

// NewFactory returns a collapse.Factory bound to opts for Visual Studio
// profiler input.
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
	opts    Options
	acc     *occurrences.Map
	path    []string
	pending *node
	lineNo  int
}

// WouldEndStack reports a blank line, the separator between per-thread
// call trees in a multi-thread export.
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
	for depth < len(s) && s[depth] == '\t' {
		depth++
	}
	rest := s[depth:]

	col := strings.Split(rest, "\t")
	name, err := symbols.FixMode(strings.TrimSpace(col[0]), p.opts.Utf8Mode)
	if err != nil {
		slog.Warn("vsprof: skipping malformed symbol", "line", p.lineNo, "error", err)
		return nil
	}
	var count uint64
	if len(col) > 1 {
		count, _ = strconv.ParseUint(strings.TrimSpace(col[len(col)-1]), 10, 64)
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
