// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package vtune collapses Intel VTune "bottom-up" CSV exports into folded
// stacks. VTune's CSV has two columns: a semicolon-joined call stack,
// leaf-first, and a CPU-time-self figure that this collapser treats as
// the sample weight (spec §4.3: "CSV; two columns: semicolon-joined stack
// (leaf-first), sample count"). Unlike perf/dtrace, a malformed vtune
// record is fatal rather than skip-and-log (spec §7: "vtune fails"),
// since a broken CSV usually means the whole export is truncated.
package vtune

import (
	"bytes"
	"encoding/csv"
	"math"
	"strconv"
	"strings"

	"flamefold/internal/collapse"
	"flamefold/internal/ferrors"
	"flamefold/internal/occurrences"
	"flamefold/internal/symbols"
)

// Options controls vtune-specific parsing.
type Options struct {
	// Utf8Mode controls how symbols.Fix treats a non-UTF-8 frame (spec
	// §4.1, §6). Zero value is symbols.Lossy.
	Utf8Mode symbols.Mode
}

// NewFactory returns a collapse.Factory bound to opts for vtune CSV input.
func NewFactory(opts Options) collapse.Factory {
	return func(acc *occurrences.Map) collapse.Parser {
		return &parser{opts: opts, acc: acc}
	}
}

type parser struct {
	opts      Options
	acc       *occurrences.Map
	lineNo    int
	sawHeader bool
}

// WouldEndStack reports true for every non-blank line: each vtune CSV row
// is a self-contained record, so every line is a safe chunk boundary.
// This makes vtune trivially chunkable without any cross-line state.
func (p *parser) WouldEndStack(line []byte) bool {
	return len(bytes.TrimSpace(line)) > 0
}

func (p *parser) Step(line []byte) error {
	p.lineNo++
	s := strings.TrimRight(string(line), "\r")
	if strings.TrimSpace(s) == "" {
		return nil
	}

	fields, err := splitCSVRow(s)
	if err != nil {
		return ferrors.Parse("vtune", p.lineNo, "malformed CSV row: "+err.Error())
	}
	if len(fields) < 2 {
		return ferrors.Parse("vtune", p.lineNo, "expected 2 columns, got "+strconv.Itoa(len(fields)))
	}

	rawStack, rawCount := fields[0], fields[len(fields)-1]
	if !p.sawHeader && isHeaderRow(rawStack, rawCount) {
		p.sawHeader = true
		return nil
	}
	p.sawHeader = true

	count, err := parseCount(rawCount)
	if err != nil {
		return ferrors.Parse("vtune", p.lineNo, "malformed sample count "+strconv.Quote(rawCount)+": "+err.Error())
	}

	frames := strings.Split(rawStack, ";")
	fixed := make([]string, len(frames))
	for i, f := range frames {
		name, err := symbols.FixMode(strings.TrimSpace(f), p.opts.Utf8Mode)
		if err != nil {
			// vtune treats a malformed record as fatal (spec §7: "vtune
			// fails"), including a non-UTF-8 symbol in strict mode.
			return ferrors.Parse("vtune", p.lineNo, err.Error())
		}
		fixed[len(frames)-1-i] = name // leaf-first -> root-first
	}
	p.acc.Add(strings.Join(fixed, ";"), count)
	return nil
}

func (p *parser) Flush() error { return nil }

func splitCSVRow(s string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(s))
	r.FieldsPerRecord = -1
	return r.Read()
}

func isHeaderRow(stack, count string) bool {
	if _, err := parseCount(count); err == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(stack), "Function Stack") ||
		strings.Contains(strings.ToLower(stack), "function")
}

// parseCount accepts either an integer sample count or a fractional
// CPU-time-in-seconds figure (VTune's default export unit), converting the
// latter to whole milliseconds (rounded) and flooring at 1 for any nonzero
// time.
func parseCount(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, nil
	}
	scaled := math.Round(f * 1000) // millisecond granularity
	if scaled == 0 && f > 0 {
		scaled = 1
	}
	return uint64(scaled), nil
}
