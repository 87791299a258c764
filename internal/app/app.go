// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package app holds the small set of application-wide constants, the
// InitLogging setup every binary shares, and the Flag/FlagGroup help types
// cmd/flamegraph uses to render a grouped, hand-formatted usage message,
// adapted from the teacher's internal/app.go (Name, Flag, FlagGroup)
// trimmed to what this toolkit's one cobra command needs.
package app

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Name is the invoking executable's base name, used in cobra Example
// strings the same way the teacher's cmd/*/[]examples slices do.
var Name = filepath.Base(os.Args[0])

// InitLogging installs the toolkit's default logger: a text handler on
// stderr, info level unless verbose asks for the per-record debug
// records too. Every binary calls this right after flag parsing.
func InitLogging(verbose bool) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
}

// Flag documents one command-line flag's name and help text for the
// grouped usage renderer.
type Flag struct {
	Name string
	Help string
}

// FlagGroup is a named cluster of related Flags, rendered as its own
// section in a command's usage output.
type FlagGroup struct {
	GroupName string
	Flags     []Flag
}
