// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Command diff-folded combines two folded-stack files into one
// folded-diff stream, "stack count_A count_B" per line (spec §4.4, §6).
// Like the per-format collapse-* commands, this is a small stdlib-flag
// binary; a two-input diff has nothing to gain from cobra's flag-group
// help.
package main

import (
	"flag"
	"fmt"
	"os"

	"flamefold/internal/app"
	"flamefold/internal/diff"
)

func main() {
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "USAGE: %s A.folded B.folded > diff.folded\n", os.Args[0])
	}
	flag.Parse()
	app.InitLogging(*verbose)

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		os.Exit(64)
	}

	a, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %s\n", args[0], err)
		os.Exit(1)
	}
	defer a.Close()

	b, err := os.Open(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %s\n", args[1], err)
		os.Exit(1)
	}
	defer b.Close()

	if err := diff.Combine(a, b, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
