// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package collapse

import "bytes"

// byteRange is a half-open [start, end) span into a shared buffer.
type byteRange struct {
	start, end int
}

// splitChunks divides data into at most n disjoint, order-preserving byte
// ranges covering the whole buffer, extending each approximate boundary
// forward to the next position wouldEnd reports as a safe record
// boundary (spec §4.2 step 2). Fewer than n ranges are returned when
// boundaries collapse together on a small or sparsely-delimited input;
// that is fine; merge order depends only on range order, not count.
func splitChunks(data []byte, n int, wouldEnd func(line []byte) bool) []byteRange {
	if len(data) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	if n == 1 {
		return []byteRange{{0, len(data)}}
	}

	size := len(data) / n
	if size == 0 {
		return []byteRange{{0, len(data)}}
	}

	bounds := []int{0}
	pos := 0
	for i := 1; i < n; i++ {
		target := i * size
		if target <= pos {
			target = pos + 1
		}
		if target >= len(data) {
			break
		}
		b := nextBoundary(data, target, wouldEnd)
		if b <= pos || b > len(data) {
			continue
		}
		bounds = append(bounds, b)
		pos = b
	}
	bounds = append(bounds, len(data))

	ranges := make([]byteRange, 0, len(bounds)-1)
	for i := 0; i < len(bounds)-1; i++ {
		if bounds[i] < bounds[i+1] {
			ranges = append(ranges, byteRange{bounds[i], bounds[i+1]})
		}
	}
	return ranges
}

// nextBoundary scans forward from from, line by line, until it finds a
// line for which wouldEnd reports true, and returns the offset just past
// that line's terminator. If no such line exists before the end of data,
// it returns len(data).
func nextBoundary(data []byte, from int, wouldEnd func(line []byte) bool) int {
	pos := from
	for pos < len(data) {
		nl := bytes.IndexByte(data[pos:], '\n')
		if nl < 0 {
			return len(data)
		}
		lineEnd := pos + nl + 1
		line := bytes.TrimRight(data[pos:pos+nl], "\r")
		if wouldEnd(line) {
			return lineEnd
		}
		pos = lineEnd
	}
	return len(data)
}
