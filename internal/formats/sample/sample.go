// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package sample collapses macOS `sample` call-graph dumps into folded
// stacks. Each line's leading whitespace encodes its depth in the call
// tree; a depth->frame path is maintained incrementally and a folded
// stack is emitted whenever a line at depth D is followed by a line at
// depth <= D, since that means the line at depth D had no child and was
// therefore a leaf (spec §4.3: "maintain a depth->frame stack; emit one
// folded line per leaf when depth decreases").
package sample

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"flamefold/internal/collapse"
	"flamefold/internal/occurrences"
	"flamefold/internal/symbols"
)

// Options controls sample-specific parsing.
type Options struct {
	// IndentWidth is the number of leading spaces per depth level. Zero
	// selects the macOS `sample` tool's default of 2.
	IndentWidth int
	// Utf8Mode controls how symbols.Fix treats a non-UTF-8 frame (spec
	// §4.1, §6). Zero value is symbols.Lossy.
	Utf8Mode symbols.Mode
}

func (o Options) indentWidth() int {
	if o.IndentWidth <= 0 {
		return 2
	}
	return o.IndentWidth
}

var (
	leadingCountRegex    = regexp.MustCompile(`^(\s*)(\d+)\s+(.*)$`)
	samplesFragmentRegex = regexp.MustCompile(`\((\d+)\s+samples?,`)
	parenSuffixRegex     = regexp.MustCompile(`\s*\([^()]*\)\s*$`)
)

// NewFactory returns a collapse.Factory bound to opts.
func NewFactory(opts Options) collapse.Factory {
	return func(acc *occurrences.Map) collapse.Parser {
		return &parser{opts: opts, acc: acc}
	}
}

type leaf struct {
	depth int
	name  string
	count uint64
}

type parser struct {
	opts    Options
	acc     *occurrences.Map
	path    []string
	pending *leaf
	lineNo  int
}

// WouldEndStack reports a blank line, the separator `sample` prints
// between per-thread call graphs.
func (p *parser) WouldEndStack(line []byte) bool {
	return len(strings.TrimSpace(string(line))) == 0
}

func (p *parser) Step(line []byte) error {
	p.lineNo++
	s := string(line)
	if strings.TrimSpace(s) == "" {
		p.resolvePending()
		p.path = nil
		return nil
	}

	m := leadingCountRegex.FindStringSubmatch(s)
	if m == nil {
		return nil // preamble/summary line, e.g. "Call graph:", "Sort by top..."
	}
	depth := len(m[1]) / p.opts.indentWidth()
	count, _ := strconv.ParseUint(m[2], 10, 64)
	rest := m[3]

	if sm := samplesFragmentRegex.FindStringSubmatch(rest); sm != nil {
		if n, err := strconv.ParseUint(sm[1], 10, 64); err == nil {
			count = n
		}
	}
	name := rest
	for {
		stripped := parenSuffixRegex.ReplaceAllString(name, "")
		if stripped == name {
			break
		}
		name = stripped
	}
	fixed, err := symbols.FixMode(strings.TrimSpace(name), p.opts.Utf8Mode)
	if err != nil {
		slog.Warn("sample: skipping malformed symbol", "line", p.lineNo, "error", err)
		return nil
	}
	name = fixed

	if p.pending != nil {
		if depth > p.pending.depth {
			p.setPath(p.pending.depth, p.pending.name) // pending has a child; not a leaf
		} else {
			p.emitPendingAsLeaf()
		}
	}
	p.pending = &leaf{depth: depth, name: name, count: count}
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

// setPath records name at depth, dropping any deeper stale entries from a
// sibling subtree that has since been left.
func (p *parser) setPath(depth int, name string) {
	if len(p.path) <= depth {
		p.path = append(p.path, make([]string, depth+1-len(p.path))...)
	} else {
		p.path = p.path[:depth+1]
	}
	p.path[depth] = name
}
