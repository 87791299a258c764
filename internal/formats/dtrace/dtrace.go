// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package dtrace collapses DTrace user-stack aggregation dumps into folded
// stacks. The state machine follows the shape danpilch-umd's
// CollapseDtrace uses (indented frame lines, a trailing count line, blank
// lines as separators), generalized onto the shared collapse.Parser
// contract and corrected to emit root-first: DTrace's `ustack()`
// aggregation prints frames leaf-first, so the accumulated lines are
// reversed at commit time.
package dtrace

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"

	"flamefold/internal/collapse"
	"flamefold/internal/ferrors"
	"flamefold/internal/occurrences"
	"flamefold/internal/symbols"
)

// Options controls dtrace-specific tidying.
type Options struct {
	IncludeOffset bool // keep the +0x... suffix dtrace sometimes prints
	// Utf8Mode controls how symbols.Fix treats a non-UTF-8 frame (spec
	// §4.1, §6). Zero value is symbols.Lossy.
	Utf8Mode symbols.Mode
}

// NewFactory returns a collapse.Factory bound to opts.
func NewFactory(opts Options) collapse.Factory {
	return func(acc *occurrences.Map) collapse.Parser {
		return &parser{opts: opts, acc: acc}
	}
}

type parser struct {
	opts   Options
	acc    *occurrences.Map
	stack  []string // leaf-first as read; reversed at commit
	lineNo int
}

// WouldEndStack reports a blank line: dtrace separates aggregation
// records with one, both before the first frame and after the count
// line, so any blank line is a safe chunk split point.
func (p *parser) WouldEndStack(line []byte) bool {
	return len(bytes.TrimSpace(line)) == 0
}

func (p *parser) Step(line []byte) error {
	p.lineNo++
	trimmed := strings.TrimSpace(string(line))
	if trimmed == "" {
		return nil
	}

	if count, ok := parseCount(trimmed); ok {
		p.commit(count)
		return nil
	}

	funcname := trimmed
	if idx := strings.Index(funcname, "`"); idx >= 0 {
		funcname = funcname[idx+1:] // drop `module`
	}
	// The offset is split off before symbols.FixMode, which would otherwise
	// strip it, and re-attached afterwards when IncludeOffset is set.
	offset := ""
	if idx := strings.Index(funcname, "+"); idx > 0 {
		if p.opts.IncludeOffset {
			offset = funcname[idx:]
		}
		funcname = funcname[:idx]
	}
	fixed, err := symbols.FixMode(funcname, p.opts.Utf8Mode)
	if err != nil {
		slog.Warn("dtrace: skipping malformed symbol", "line", p.lineNo, "error", err)
		return nil
	}
	p.stack = append(p.stack, fixed+offset)
	return nil
}

func (p *parser) Flush() error {
	if len(p.stack) > 0 {
		return ferrors.IncompleteRecord("dangling frames with no trailing count line")
	}
	return nil
}

func (p *parser) commit(count uint64) {
	if len(p.stack) == 0 {
		return
	}
	reversed := make([]string, len(p.stack))
	for i, f := range p.stack {
		reversed[len(p.stack)-1-i] = f
	}
	p.acc.Add(strings.Join(reversed, ";"), count)
	p.stack = nil
}

func parseCount(s string) (uint64, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
