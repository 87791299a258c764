// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

//go:build linux || darwin

package mmapfile

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Open memory-maps path read-only. Empty files (mmap rejects zero-length
// mappings) fall back to an empty in-memory buffer.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if info.Size() == 0 {
		return &File{data: nil}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap %s", path)
	}
	return &File{
		data: data,
		closer: func() error {
			return unix.Munmap(data)
		},
	}, nil
}
