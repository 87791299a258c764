// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package diff implements the folded-diff combiner (spec §4.4): it reads
// two folded-stack streams and emits one line per stack key present in
// either, "stack count_A count_B", in A's insertion order followed by
// keys seen only in B. It keeps its own first-seen order per input
// (readFolded) rather than using internal/occurrences.Map; diff never sums
// across the two inputs the way the collapse framework's merge does.
package diff

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"flamefold/internal/ferrors"
)

// Combine reads folded streams a and b and writes their diff to w.
func Combine(a, b io.Reader, w io.Writer) error {
	countsA, orderA, err := readFolded(a)
	if err != nil {
		return ferrors.IO("reading first folded stream", err)
	}
	countsB, orderB, err := readFolded(b)
	if err != nil {
		return ferrors.IO("reading second folded stream", err)
	}

	bw := bufio.NewWriterSize(w, 64*1024)
	inA := make(map[string]bool, len(orderA))
	for _, stack := range orderA {
		inA[stack] = true
		if _, err := io.WriteString(bw, stack+" "+strconv.FormatUint(countsA[stack], 10)+" "+strconv.FormatUint(countsB[stack], 10)+"\n"); err != nil {
			return ferrors.IO("writing folded diff", err)
		}
	}
	for _, stack := range orderB {
		if inA[stack] {
			continue
		}
		if _, err := io.WriteString(bw, stack+" 0 "+strconv.FormatUint(countsB[stack], 10)+"\n"); err != nil {
			return ferrors.IO("writing folded diff", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return ferrors.IO("flushing folded diff", err)
	}
	return nil
}

// readFolded parses "stack count" lines, returning the accumulated counts
// keyed by stack and the order stacks were first seen in.
func readFolded(r io.Reader) (map[string]uint64, []string, error) {
	counts := make(map[string]uint64)
	var order []string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		idx := strings.LastIndex(line, " ")
		if idx < 0 {
			continue // malformed line: no count column; skip rather than abort the whole diff
		}
		stack, rawCount := line[:idx], line[idx+1:]
		count, err := strconv.ParseUint(rawCount, 10, 64)
		if err != nil {
			continue
		}
		if _, ok := counts[stack]; !ok {
			order = append(order, stack)
		}
		counts[stack] += count
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return counts, order, nil
}
