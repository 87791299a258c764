// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package flamegraph

import "flamefold/internal/color"

// Options configures one render (spec §6 CLI surface, plus the
// supplemental flags SPEC_FULL.md §5 adds on top of it).
type Options struct {
	Title    string
	Subtitle string
	Notes    string

	ImageWidth  int     // default 1200
	FrameHeight int     // default 16
	FontSize    int     // default 12
	FontType    string
	MinWidth    float64 // default 0.1

	Palette        color.Palette
	BGColors       [2]string // two CSS colors for the background gradient; zero value uses #eeeeee to #eeeeb0 for every palette
	Hash           bool      // hash coloring on (the default; kept as a flag for parity with upstream --hash)
	Deterministic  bool      // hash only, no width weighting
	ColorDiffusion bool
	FlameChart     bool // siblings in first-seen order, not alphabetical
	Inverted       bool // icicle graph, drawn top-down
	Reverse        bool // leaf-first instead of root-first merge order
	Negate         bool
	NoSort         bool // skip alphabetical sort even outside flame-chart mode

	PaletteMapPath  string // persisted frame->color map, read-modify-write
	PaletteBasePath string // seed palette map read once, never rewritten

	Filter string // govaluate boolean expression over (name, depth, samples)

	XlsxSummaryPath string
	XlsxTopN        int // default 20
}

// DefaultOptions matches the conventional flamegraph.pl / inferno defaults.
func DefaultOptions() Options {
	return Options{
		Title:       "Flame Graph",
		ImageWidth:  1200,
		FrameHeight: 16,
		FontSize:    12,
		FontType:    "Verdana",
		MinWidth:    0.1,
		Palette:     color.Hot,
		Hash:        true,
		XlsxTopN:    20,
	}
}
