// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package guess dispatches to the right per-format collapser by peeking
// at up to 64 KiB of input and matching each format's header signature in
// priority order: perf, dtrace, sample, vtune, vsprof, ghcprof, recursive
// (spec §4.3). It fails with ferrors.UnknownFormat if nothing matches
// within the peek window. guess is not itself chunkable — dispatch is a
// one-time decision made from the start of the stream — so
// WouldEndStack always reports false; once a format is chosen its own
// Parser drives the rest of the input.
package guess

import (
	"bytes"
	"regexp"
	"strings"

	"flamefold/internal/collapse"
	"flamefold/internal/ferrors"
	"flamefold/internal/formats/dtrace"
	"flamefold/internal/formats/ghcprof"
	"flamefold/internal/formats/perf"
	"flamefold/internal/formats/recursive"
	"flamefold/internal/formats/sample"
	"flamefold/internal/formats/vsprof"
	"flamefold/internal/formats/vtune"
	"flamefold/internal/occurrences"
	"flamefold/internal/symbols"
)

// Options controls guess-dispatched parsing. It is forwarded into
// whichever per-format Options the peek matches.
type Options struct {
	// Utf8Mode controls how symbols.Fix treats a non-UTF-8 frame in the
	// dispatched-to format (spec §4.1, §6). Zero value is symbols.Lossy.
	Utf8Mode symbols.Mode
}

// PeekLimit bounds how much input guess buffers before giving up and
// returning UnknownFormat (spec §4.3: "Peek up to 64 KiB").
const PeekLimit = 64 * 1024

var (
	perfSignature   = regexp.MustCompile(`(?m)^\S.*\s+\d+(?:/\d+)?\s+.*:\s*$`)
	integerOnlyLine = regexp.MustCompile(`(?m)^\s*\d+\s*$`)
)

// candidate pairs a signature test with the factory it dispatches to.
type candidate struct {
	name    string
	matches func(peek string) bool
	factory func() collapse.Factory
}

func candidates(opts Options) []candidate {
	perfOpts := perf.DefaultOptions()
	perfOpts.Utf8Mode = opts.Utf8Mode
	return []candidate{
		{"perf", func(p string) bool { return perfSignature.MatchString(p) }, func() collapse.Factory { return perf.NewFactory(perfOpts) }},
		{"dtrace", func(p string) bool { return strings.Contains(p, "`") }, func() collapse.Factory { return dtrace.NewFactory(dtrace.Options{Utf8Mode: opts.Utf8Mode}) }},
		{"sample", func(p string) bool { return strings.Contains(p, "Call graph:") }, func() collapse.Factory { return sample.NewFactory(sample.Options{Utf8Mode: opts.Utf8Mode}) }},
		{"vtune", func(p string) bool { return strings.Contains(strings.ToLower(p), "function stack") }, func() collapse.Factory { return vtune.NewFactory(vtune.Options{Utf8Mode: opts.Utf8Mode}) }},
		{"vsprof", func(p string) bool { return strings.Contains(p, "\t\t") || strings.Count(p, "\t") > strings.Count(p, "\n") }, func() collapse.Factory { return vsprof.NewFactory(vsprof.Options{Utf8Mode: opts.Utf8Mode}) }},
		{"ghcprof", func(p string) bool { return strings.Contains(p, "COST CENTRE") }, func() collapse.Factory { return ghcprof.NewFactory(ghcprof.Options{Utf8Mode: opts.Utf8Mode}) }},
		{"recursive", func(p string) bool { return integerOnlyLine.MatchString(p) }, func() collapse.Factory { return recursive.NewFactory(recursive.Options{Utf8Mode: opts.Utf8Mode}) }},
	}
}

// NewFactory returns a collapse.Factory bound to opts that defers format
// choice to the first PeekLimit bytes of input.
func NewFactory(opts Options) collapse.Factory {
	return func(acc *occurrences.Map) collapse.Parser {
		return &parser{opts: opts, acc: acc}
	}
}

type parser struct {
	opts     Options
	acc      *occurrences.Map
	buf      bytes.Buffer
	buffered bool
	decided  bool
	inner    collapse.Parser
}

// WouldEndStack always reports false: dispatch happens once, up front, so
// there is no safe chunk boundary to offer the parallel framework before
// the format is even known.
func (p *parser) WouldEndStack(line []byte) bool { return false }

func (p *parser) Step(line []byte) error {
	if p.decided {
		return p.inner.Step(line)
	}

	p.buf.Write(line)
	p.buf.WriteByte('\n')
	p.buffered = true

	if p.buf.Len() < PeekLimit {
		return nil
	}
	return p.decide()
}

func (p *parser) Flush() error {
	if !p.decided {
		if err := p.decide(); err != nil {
			return err
		}
	}
	return p.inner.Flush()
}

// decide picks a format from the buffered peek and replays every buffered
// line into the chosen Parser.
func (p *parser) decide() error {
	peek := p.buf.String()
	for _, c := range candidates(p.opts) {
		if !c.matches(peek) {
			continue
		}
		p.inner = c.factory()(p.acc)
		p.decided = true
		return p.replay(peek)
	}
	return ferrors.UnknownFormat()
}

func (p *parser) replay(peek string) error {
	lines := strings.Split(peek, "\n")
	// Split leaves a trailing "" for the final newline we always append;
	// drop it so we don't feed a phantom blank record.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for _, l := range lines {
		if err := p.inner.Step([]byte(l)); err != nil {
			return err
		}
	}
	return nil
}
