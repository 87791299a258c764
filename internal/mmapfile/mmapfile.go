// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package mmapfile gives the parallel collapse framework a contiguous,
// read-only view of an input file, memory-mapped where the platform
// supports it (spec §4.2 step 1: "Memory-maps or reads the input to a
// contiguous buffer"). The split into mmapfile_unix.go/mmapfile_other.go
// mirrors the build-tag platform split danpilch-umd uses for
// capture_linux.go/capture_darwin.go.
package mmapfile

// File is a read-only, contiguous view of a file's bytes.
type File struct {
	data   []byte
	closer func() error
}

// Bytes returns the file's contents. The slice is only valid until Close.
func (f *File) Bytes() []byte { return f.data }

// Close releases the mapping (or, on the fallback path, is a no-op).
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer()
}
