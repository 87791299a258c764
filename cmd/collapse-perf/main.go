// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Command collapse-perf collapses `perf script` output into folded
// stacks, one per line as "stack count". It is the direct descendant of
// the teacher's tools/stackcollapse-perf, generalized onto the shared
// internal/collapse framework so -n can fan the work out across a
// memory-mapped input file.
package main

import (
	"flag"
	"fmt"
	"os"

	"flamefold/internal/app"
	"flamefold/internal/collapse"
	"flamefold/internal/collapsemetrics"
	"flamefold/internal/ferrors"
	"flamefold/internal/formats/perf"
	"flamefold/internal/progress"
	"flamefold/internal/symbols"
)

func main() {
	var opts perf.Options
	opts.IncludePname = true
	opts.TidyJava = true
	opts.TidyGeneric = true

	flag.BoolVar(&opts.AnnotateKernel, "kernel", false, "annotate kernel functions with a _[k]")
	flag.BoolVar(&opts.AnnotateJit, "jit", false, "annotate jit functions with a _[j]")
	flag.BoolVar(&opts.AnnotateInline, "inline", false, "annotate inline-expanded functions with a _[i]")
	var annotateAll bool
	flag.BoolVar(&annotateAll, "all", false, "all annotations (--kernel --jit)")
	flag.BoolVar(&opts.IncludePname, "pname", true, "include process names in stacks")
	flag.BoolVar(&opts.IncludePid, "pid", false, "include PID with process names")
	flag.BoolVar(&opts.IncludeTid, "tid", false, "include TID and PID with process names")
	flag.BoolVar(&opts.IncludeAddrs, "addrs", false, "include raw addresses where symbols can't be found")
	flag.BoolVar(&opts.TidyJava, "java", true, "condense Java signatures")
	flag.BoolVar(&opts.TidyGeneric, "generic", true, "clean up function names a little")
	flag.StringVar(&opts.EventFilter, "event-filter", "", "event name filter")
	flag.BoolVar(&opts.AllEvents, "all-events", false, "do not filter to the first event type seen")
	nthreads := flag.Int("n", 1, "number of worker threads for a file argument (ignored when reading stdin)")
	utf8Mode := flag.String("utf8-mode", "lossy", "how to treat non-UTF-8 frame symbols: \"lossy\" or \"strict\"")
	verbose := flag.Bool("v", false, "enable debug logging")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics for the parallel collapse on this address")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "USAGE: %s [options] [infile] > outfile\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	app.InitLogging(*verbose)

	if annotateAll {
		opts.AnnotateKernel = true
		opts.AnnotateJit = true
	}

	mode, err := symbols.ParseMode(*utf8Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(64)
	}
	opts.Utf8Mode = mode

	newParser := perf.NewFactory(opts)

	if args := flag.Args(); len(args) > 0 && *nthreads > 1 {
		var obs collapse.Observer
		if *metricsAddr != "" {
			exp := collapsemetrics.New()
			if err := exp.Serve(*metricsAddr); err != nil {
				fmt.Fprintf(os.Stderr, "Error starting --metrics-addr listener: %s\n", err)
				os.Exit(1)
			}
			obs = exp
		}
		ms := progress.NewMultiSpinner()
		for i := 0; i < *nthreads; i++ {
			_ = ms.AddSpinner(fmt.Sprintf("worker-%d", i))
			_ = ms.Status(fmt.Sprintf("worker-%d", i), "collapsing")
		}
		ms.Start()
		err := collapse.CollapseFileParallelObserved(args[0], os.Stdout, *nthreads, newParser, nil, obs)
		ms.Finish()
		if err != nil {
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
