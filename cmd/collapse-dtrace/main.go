// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Command collapse-dtrace collapses DTrace ustack() aggregation dumps
// into folded stacks, one per line as "stack count".
package main

import (
	"flag"
	"fmt"
	"os"

	"flamefold/internal/app"
	"flamefold/internal/collapse"
	"flamefold/internal/ferrors"
	"flamefold/internal/formats/dtrace"
	"flamefold/internal/symbols"
)

func main() {
	var opts dtrace.Options
	flag.BoolVar(&opts.IncludeOffset, "includeoffset", false, "keep the +0x... offset suffix on frame names")
	nthreads := flag.Int("n", 1, "number of worker threads for a file argument (ignored when reading stdin)")
	utf8Mode := flag.String("utf8-mode", "lossy", "how to treat non-UTF-8 frame symbols: \"lossy\" or \"strict\"")
	verbose := flag.Bool("v", false, "enable debug logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "USAGE: %s [options] [infile] > outfile\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	app.InitLogging(*verbose)

	mode, err := symbols.ParseMode(*utf8Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(64)
	}
	opts.Utf8Mode = mode

	newParser := dtrace.NewFactory(opts)

	if args := flag.Args(); len(args) > 0 && *nthreads > 1 {
		if err := collapse.CollapseFileParallel(args[0], os.Stdout, *nthreads, newParser, nil); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(ferrors.ExitCode(err))
		}
		return
	}

	input := os.Stdin
	if args := flag.Args(); len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening file: %s\n", err)
			os.Exit(1)
		}
		defer f.Close()
		input = f
	}

	if err := collapse.Collapse(input, os.Stdout, newParser); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ferrors.ExitCode(err))
	}
}
