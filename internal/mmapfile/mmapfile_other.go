// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

//go:build !(linux || darwin)

package mmapfile

import (
	"os"

	"github.com/pkg/errors"
)

// Open reads path into memory. Platforms without a cheap mmap path (or that
// this package has not been taught about yet) fall back to a plain read;
// the resulting File behaves identically from the caller's side.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return &File{data: data}, nil
}
