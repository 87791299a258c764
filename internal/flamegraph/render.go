// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package flamegraph

import (
	"io"
	"log/slog"

	"flamefold/internal/color"
)

// Render builds a trie from r's folded stacks and streams an SVG to w
// (spec §4.5). An empty or all-zero input produces the explicit "no
// stacks" SVG and returns nil (spec §4.5, §7: "the process exits 0 with
// a warning to stderr"); the warning itself is the caller's
// responsibility (this package only signals it via the returned bool).
// If r's lines carry a second trailing count, as diff-folded's output
// does, Render switches to differential coloring itself; RenderDiff only
// needs to be called directly when the two sides arrive as separate
// streams.
func Render(r io.Reader, w io.Writer, opts Options) (emptyInput bool, total uint64, err error) {
	filter, err := CompileFilter(opts.Filter)
	if err != nil {
		return false, 0, err
	}

	root, totalA, totalB, isDiff, err := BuildAuto(r, BuildOptions{Negate: opts.Negate != opts.Reverse}, logSkip)
	if err != nil {
		return false, 0, err
	}
	Prune(root, filter, 0)
	totalA, totalB = root.Samples, root.SamplesB

	if totalA == 0 && totalB == 0 {
		if err := emitEmptySVG(w, opts); err != nil {
			return true, 0, err
		}
		return true, 0, nil
	}

	// A single INPUT carrying two counts per line (diff-folded's output)
	// renders the same differential coloring RenderDiff produces from two
	// separate streams (spec §4.5: "Input: a folded-stack stream (possibly
	// with two counts for diff mode)").
	if isDiff {
		maxAbsDelta := maxAbsDeltaOf(root)
		frames := LayoutDiff(root, totalB, opts)
		ctx := renderContext{opts: opts, total: totalA, totalB: totalB, isDiff: true, maxAbsDelta: maxAbsDelta}
		if err := emitSVG(w, root, frames, ctx); err != nil {
			return false, 0, err
		}
		total := totalB
		if total == 0 {
			total = totalA
		}
		return false, total, nil
	}

	pm, base, err := openPalettes(opts)
	if err != nil {
		return false, 0, err
	}
	defer pm.Close()

	if opts.XlsxSummaryPath != "" {
		if err := WriteXlsxSummary(root, totalA, opts.XlsxTopN, opts.XlsxSummaryPath); err != nil {
			return false, 0, err
		}
	}

	frames := Layout(root, totalA, opts)
	ctx := renderContext{opts: opts, total: totalA, paletteMap: pm, paletteBase: base}
	if err := emitSVG(w, root, frames, ctx); err != nil {
		return false, 0, err
	}
	return false, totalA, nil
}

// RenderDiff is Render's differential-mode counterpart (spec §4.5): two
// folded streams are merged into one trie carrying both counts, and every
// frame's fill interpolates red/blue by its delta.
func RenderDiff(a, b io.Reader, w io.Writer, opts Options) (emptyInput bool, totalA, totalB uint64, err error) {
	root, totalA, totalB, err := BuildDiff(a, b, logSkip)
	if err != nil {
		return false, 0, 0, err
	}

	if totalA == 0 && totalB == 0 {
		if err := emitEmptySVG(w, opts); err != nil {
			return true, 0, 0, err
		}
		return true, 0, 0, nil
	}

	maxAbsDelta := maxAbsDeltaOf(root)

	frames := LayoutDiff(root, totalB, opts)
	ctx := renderContext{opts: opts, total: totalA, totalB: totalB, isDiff: true, maxAbsDelta: maxAbsDelta}
	if err := emitSVG(w, root, frames, ctx); err != nil {
		return false, 0, 0, err
	}
	return false, totalA, totalB, nil
}

func maxAbsDeltaOf(n *Node) int64 {
	max := absInt64(n.Delta())
	for _, c := range n.Children {
		if d := maxAbsDeltaOf(c); d > max {
			max = d
		}
	}
	return max
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// openPalettes loads the optional persisted --palette-file and the
// optional read-only --palette-base seed, either of which may be unset.
func openPalettes(opts Options) (*PaletteMap, map[string]color.RGB, error) {
	var pm *PaletteMap
	if opts.PaletteMapPath != "" {
		loaded, err := LoadPaletteMap(opts.PaletteMapPath)
		if err != nil {
			return nil, nil, err
		}
		pm = loaded
	}
	var base map[string]color.RGB
	if opts.PaletteBasePath != "" {
		loaded, err := LoadPaletteBase(opts.PaletteBasePath)
		if err != nil {
			return nil, nil, err
		}
		base = loaded
	}
	return pm, base, nil
}

func logSkip(line string, reason string) {
	slog.Warn("flamegraph: skipping malformed folded line", "line", line, "reason", reason)
}
