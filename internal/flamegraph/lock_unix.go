// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

//go:build linux || darwin

package flamegraph

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockExclusive acquires an exclusive advisory lock on f for the lifetime
// of the palette map render (spec §9: "Palette-map file race").
func lockExclusive(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}
