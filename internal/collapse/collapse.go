// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package collapse implements the shared parallel collapse framework every
// per-format collapser plugs into: a record boundary detector, a per-line
// step, and a per-record finalize, driven either directly over a stream
// (single-threaded) or fanned out across a worker pool over a
// memory-mapped file (multi-threaded). See internal/formats/* for the
// concrete per-format state machines; this package only knows about lines,
// chunk boundaries, and occurrences maps.
//
// The two entry points mirror the teacher's stackcollapse-perf.go
// ProcessStacks loop, generalized so any format can drive it by
// implementing Parser instead of this package hard-coding perf's grammar.
package collapse

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"flamefold/internal/ferrors"
	"flamefold/internal/occurrences"
)

// Parser is the per-format state machine contract. A fresh Parser is
// created per stream (single-threaded mode) or per chunk (parallel mode);
// it accumulates directly into the occurrences.Map it was constructed
// with.
type Parser interface {
	// WouldEndStack reports whether line (without its line terminator)
	// is a position after which it is always safe to begin parsing a
	// new record from scratch. Used only to choose chunk boundaries; it
	// must not depend on parser state. Formats that cannot identify such
	// a boundary return false unconditionally and are not chunkable.
	WouldEndStack(line []byte) bool

	// Step feeds one line, without its line terminator, into the
	// parser's state machine. It may emit zero or more stacks into the
	// bound occurrences.Map as records complete.
	Step(line []byte) error

	// Flush finalizes any record left buffered at end of input. It
	// returns a ferrors.KindIncompleteRecord error if the parser expected
	// more input than it received (only meaningful for parallel chunks;
	// the framework retries by extending the chunk).
	Flush() error
}

// Factory constructs a fresh Parser bound to acc, the occurrences.Map it
// should accumulate stacks into.
type Factory func(acc *occurrences.Map) Parser

// Collapse drives newParser directly over r, line by line, and writes the
// accumulated occurrences to w in insertion order as "stack count\n". It
// is the single-threaded path and the one every format's tests exercise
// directly.
func Collapse(r io.Reader, w io.Writer, newParser Factory) error {
	return CollapseCancelable(r, w, newParser, nil)
}

// CollapseCancelable is Collapse plus a cooperative cancellation flag: if
// cancel trips mid-stream, feeding stops, no output is written, and
// ErrCancelled is returned.
func CollapseCancelable(r io.Reader, w io.Writer, newParser Factory, cancel *CancelFlag) error {
	acc := occurrences.New()
	p := newParser(acc)

	if err := feedLines(r, p, cancel); err != nil {
		return demoteIncompleteRecord(err)
	}
	if cancel.Cancelled() {
		return ErrCancelled
	}
	return writeOccurrences(w, acc)
}

// feedLines streams r line by line (LF or CRLF terminated, final
// unterminated line included) into p, then calls p.Flush. It stops early,
// without calling Flush, if cancel trips.
func feedLines(r io.Reader, p Parser, cancel *CancelFlag) error {
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		if cancel.Cancelled() {
			return nil
		}
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			line = bytes.TrimRight(line, "\r\n")
			if stepErr := p.Step(line); stepErr != nil {
				return stepErr
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return ferrors.IO("reading input", err)
		}
	}
	if cancel.Cancelled() {
		return nil
	}
	if err := p.Flush(); err != nil {
		return err
	}
	return nil
}

// writeOccurrences emits acc's stacks in insertion order as
// "stack count\n" lines.
func writeOccurrences(w io.Writer, acc *occurrences.Map) error {
	bw := bufio.NewWriterSize(w, 64*1024)
	var writeErr error
	acc.Each(func(stack string, count uint64) {
		if writeErr != nil {
			return
		}
		if _, err := bw.WriteString(stack); err != nil {
			writeErr = err
			return
		}
		if err := bw.WriteByte(' '); err != nil {
			writeErr = err
			return
		}
		if _, err := bw.WriteString(strconv.FormatUint(count, 10)); err != nil {
			writeErr = err
			return
		}
		writeErr = bw.WriteByte('\n')
	})
	if writeErr != nil {
		return ferrors.IO("writing folded output", writeErr)
	}
	if err := bw.Flush(); err != nil {
		return ferrors.IO("flushing folded output", err)
	}
	return nil
}

// demoteIncompleteRecord converts a KindIncompleteRecord error into an
// ordinary parse error. IncompleteRecord is the parallel framework's
// internal signal to retry with an extended chunk (spec §7: "only
// internal to parallel framework; handled by boundary re-extension, never
// surfaced"); once there is no further chunk to extend into, it means the
// input genuinely ended mid-record.
func demoteIncompleteRecord(err error) error {
	fe, ok := err.(*ferrors.Error)
	if ok && fe.Kind == ferrors.KindIncompleteRecord {
		return ferrors.Parse("", 0, "incomplete record at end of input: "+fe.Reason)
	}
	return err
}
