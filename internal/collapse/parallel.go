// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package collapse

import (
	"bytes"
	"io"
	"sync"
	"time"

	"flamefold/internal/ferrors"
	"flamefold/internal/mmapfile"
	"flamefold/internal/occurrences"
)

// Observer receives progress callbacks from the parallel collapse path,
// for metrics export or other instrumentation. Implementations must be
// safe for concurrent ChunkDone calls from multiple workers.
type Observer interface {
	// Workers reports the number of worker goroutines the run will use.
	Workers(n int)
	// ChunkDone reports one chunk's distinct-stack count and parse time.
	ChunkDone(stacks int, elapsed time.Duration)
}

// CollapseFileParallel memory-maps path, splits it into up to nthreads
// record-aligned chunks, parses each on its own goroutine into a private
// occurrences.Map, then merges the maps in chunk order and writes the
// result to w (spec §4.2). Only formats whose Parser.WouldEndStack can
// identify a safe split point benefit from this path; for others
// splitChunks degrades to a single whole-file chunk.
func CollapseFileParallel(path string, w io.Writer, nthreads int, newParser Factory, cancel *CancelFlag) error {
	return CollapseFileParallelObserved(path, w, nthreads, newParser, cancel, nil)
}

// CollapseFileParallelObserved is CollapseFileParallel with an optional
// Observer for progress instrumentation; obs may be nil.
func CollapseFileParallelObserved(path string, w io.Writer, nthreads int, newParser Factory, cancel *CancelFlag, obs Observer) error {
	f, err := mmapfile.Open(path)
	if err != nil {
		return ferrors.IO("opening "+path, err)
	}
	defer f.Close()

	data := f.Bytes()
	if len(data) == 0 {
		return writeOccurrences(w, occurrences.New())
	}

	probe := newParser(occurrences.New())
	ranges := splitChunks(data, nthreads, probe.WouldEndStack)

	maps, err := runChunks(data, ranges, nthreads, newParser, cancel, obs)
	if err != nil {
		return err
	}
	if cancel.Cancelled() {
		return ErrCancelled
	}

	result := occurrences.Merge(maps)
	return writeOccurrences(w, result.Merged)
}

// runChunks parses each byte range on its own worker, merging a chunk
// forward into its successor and retrying whenever a chunk's Flush
// reports an incomplete record the boundary heuristic missed (spec §4.2:
// "the framework retries that chunk's tail by extending into the next
// chunk's head"). It returns once every chunk parses cleanly or a genuine
// error remains after retries are exhausted.
func runChunks(data []byte, ranges []byteRange, nthreads int, newParser Factory, cancel *CancelFlag, obs Observer) ([]*occurrences.Map, error) {
	for {
		maps := make([]*occurrences.Map, len(ranges))
		errs := make([]error, len(ranges))

		numWorkers := len(ranges)
		if numWorkers > nthreads {
			numWorkers = nthreads
		}
		if numWorkers < 1 {
			numWorkers = 1
		}
		if obs != nil {
			obs.Workers(numWorkers)
		}

		jobs := make(chan int)
		var wg sync.WaitGroup
		wg.Add(numWorkers)
		for k := 0; k < numWorkers; k++ {
			go func() {
				defer wg.Done()
				for i := range jobs {
					if cancel.Cancelled() {
						continue
					}
					start := time.Now()
					acc := occurrences.New()
					p := newParser(acc)
					r := ranges[i]
					errs[i] = feedLines(bytes.NewReader(data[r.start:r.end]), p, cancel)
					maps[i] = acc
					if obs != nil && errs[i] == nil {
						obs.ChunkDone(acc.Len(), time.Since(start))
					}
				}
			}()
		}
		for i := range ranges {
			jobs <- i
		}
		close(jobs)
		wg.Wait()

		if cancel.Cancelled() {
			return nil, nil
		}

		if next, ok := mergeIncomplete(ranges, errs); ok {
			ranges = next
			continue
		}

		for _, err := range errs {
			if err != nil {
				return nil, demoteIncompleteRecord(err)
			}
		}
		return maps, nil
	}
}

// mergeIncomplete looks for the first chunk whose error is an
// IncompleteRecord and, if it has a successor, folds that successor's
// range into it so the next attempt parses both as one chunk.
func mergeIncomplete(ranges []byteRange, errs []error) ([]byteRange, bool) {
	for i, err := range errs {
		if err == nil || !ferrors.Is(err, ferrors.KindIncompleteRecord) {
			continue
		}
		if i+1 >= len(ranges) {
			continue // nothing to extend into; treat as a real error
		}
		next := make([]byteRange, 0, len(ranges)-1)
		next = append(next, ranges[:i]...)
		next = append(next, byteRange{ranges[i].start, ranges[i+1].end})
		next = append(next, ranges[i+2:]...)
		return next, true
	}
	return nil, false
}
