// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package flamegraph

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"flamefold/internal/color"
)

// escapeWriter is a buffered, escape-aware XML text writer (spec §4.5:
// "Escape <, >, &, \" in all attribute values and text content").
type escapeWriter struct {
	w   *bufio.Writer
	err error
}

// detailsY is the y coordinate of the hover-details text row, just under
// the title.
const detailsY = 34

func newEscapeWriter(w io.Writer) *escapeWriter {
	return &escapeWriter{w: bufio.NewWriterSize(w, 64*1024)}
}

func (e *escapeWriter) raw(s string) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(s)
}

func (e *escapeWriter) rawf(format string, args ...interface{}) {
	e.raw(fmt.Sprintf(format, args...))
}

// escaped writes s with &, <, >, " replaced by their XML entities. It
// works byte-wise so frames carrying non-UTF-8 demangled symbols pass
// through untouched rather than being rewritten to replacement runes.
func (e *escapeWriter) escaped(s string) {
	if e.err != nil {
		return
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteByte(s[i])
		}
	}
	e.raw(b.String())
}

func (e *escapeWriter) flush() error {
	if e.err != nil {
		return e.err
	}
	if err := e.w.Flush(); err != nil {
		return err
	}
	return nil
}

// renderContext carries the per-render state emitSVG and its helpers
// share: the total sample count(s), whether this is a diff render, and
// the palette bookkeeping.
type renderContext struct {
	opts        Options
	total       uint64
	totalB      uint64
	isDiff      bool
	maxAbsDelta int64
	paletteMap  *PaletteMap
	paletteBase map[string]color.RGB
}

// emitSVG streams the full SVG document for frames to w.
func emitSVG(w io.Writer, root *Node, frames []Frame, ctx renderContext) error {
	ew := newEscapeWriter(w)

	depth := MaxDepth(frames)
	if depth == 0 {
		depth = 1
	}
	imageHeight := int(YpadTop+YpadBottom) + depth*frameHeightOf(ctx.opts)
	imageWidth := valueOr(ctx.opts.ImageWidth, 1200)

	writeHeader(ew, imageWidth, imageHeight, ctx.opts)
	writeChrome(ew, imageWidth, ctx.opts)

	ew.raw(`<g id="frames">` + "\n")
	for _, f := range frames {
		writeFrame(ew, f, ctx, imageHeight)
	}
	ew.raw("</g>\n</svg>\n")

	return ew.flush()
}

// emitEmptySVG writes the minimal "no stacks" SVG (spec §4.5 failure
// semantics).
func emitEmptySVG(w io.Writer, opts Options) error {
	ew := newEscapeWriter(w)
	width := valueOr(opts.ImageWidth, 1200)
	ew.rawf(`<?xml version="1.0" standalone="no"?>
<svg version="1.1" width="%d" height="80" xmlns="http://www.w3.org/2000/svg">
<text x="%d" y="40" text-anchor="middle" font-family="%s" font-size="16">ERROR: No stack counts found</text>
</svg>
`, width, width/2, fontTypeOf(opts))
	return ew.flush()
}

func writeHeader(ew *escapeWriter, width, height int, opts Options) {
	ew.rawf(`<?xml version="1.0" standalone="no"?>
<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg1.1.dtd">
<svg version="1.1" width="%d" height="%d" onload="init(evt)" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">
<defs>
  <linearGradient id="background" y1="0" y2="1" x1="0" x2="0">
    <stop stop-color="%s" offset="5%%"/>
    <stop stop-color="%s" offset="95%%"/>
  </linearGradient>
</defs>
<style type="text/css">
  text { font-family: %s; font-size: %dpx; fill: rgb(0,0,0); }
  #search, #unzoom { font-size: %dpx; cursor: pointer; }
  #matched { font-size: %dpx; fill: rgb(255,0,0); }
  g.func_g:hover rect { stroke: rgb(0,0,0); stroke-width: 0.5; cursor: pointer; }
</style>
<rect x="0" y="0" width="%d" height="%d" fill="url(#background)"/>
`, width, height, bgColor(opts, 0), bgColor(opts, 1), fontTypeOf(opts), opts.FontSize0(), opts.FontSize0(), opts.FontSize0(), width, height)
}

func writeChrome(ew *escapeWriter, width int, opts Options) {
	ew.rawf(`<text id="title" x="%d" y="24" text-anchor="middle" font-size="17">`, width/2)
	ew.escaped(titleOr(opts))
	ew.raw("</text>\n")
	if opts.Subtitle != "" {
		ew.rawf(`<text id="subtitle" x="%d" y="40" text-anchor="middle" fill="rgb(160,160,160)">`, width/2)
		ew.escaped(opts.Subtitle)
		ew.raw("</text>\n")
	}
	ew.raw(`<text id="details" x="10" y="` + fmt.Sprint(detailsY) + `"> </text>` + "\n")
	ew.rawf(`<text id="unzoom" x="10" y="24" style="opacity:0.5">Reset Zoom</text>` + "\n")
	ew.rawf(`<text id="search" x="%d" y="24">Search</text>`+"\n", width-100)
	ew.rawf(`<text id="matched" x="%d" y="24"></text>`+"\n", width-200)
	if opts.Notes != "" {
		ew.raw(`<text id="notes" x="10" y="` + fmt.Sprint(detailsY+14) + `">`)
		ew.escaped(opts.Notes)
		ew.raw("</text>\n")
	}

	ew.rawf(`<script type="text/ecmascript"><![CDATA[
	var nametype = "Function:";
	var fontsize = %d;
	var fontwidth = %f;
	var xpad = %f;
	var searchcolor = "rgb(230,0,230)";
	var inverted = %t;
	var searching = false;
`, opts.FontSize0(), fontWidth(opts), Xpad, opts.Inverted)
	ew.raw(embeddedJS)
	ew.raw("\n]]></script>\n")
}

func writeFrame(ew *escapeWriter, f Frame, ctx renderContext, imageHeight int) {
	y := Y(f.Depth, imageHeight, float64(frameHeightOf(ctx.opts)), ctx.opts.Inverted)
	c := frameColor(f.Node, ctx)

	ew.raw(`<g class="func_g">` + "\n<title>")
	ew.escaped(frameTitle(f, ctx))
	ew.raw("</title>\n")
	ew.rawf(`<rect x="%.4f" y="%.4f" width="%.4f" height="%.2f" fill="%s"/>`+"\n",
		f.X, y, f.Width, float64(frameHeightOf(ctx.opts))-1, c.String())

	label := truncateLabel(f.Node.Name, f.Width, ctx.opts)
	if label != "" {
		ew.rawf(`<text x="%.4f" y="%.4f">`, f.X+2, y+float64(frameHeightOf(ctx.opts))*0.75)
		ew.escaped(label)
		ew.raw("</text>\n")
	}
	ew.raw("</g>\n")
}

func frameColor(n *Node, ctx renderContext) color.RGB {
	if ctx.isDiff {
		return color.Diff(n.Delta(), ctx.maxAbsDelta)
	}
	if c, ok := ctx.paletteMap.Lookup(n.Name); ok {
		return c
	}
	if ctx.paletteBase != nil {
		if c, ok := ctx.paletteBase[n.Name]; ok {
			ctx.paletteMap.Assign(n.Name, c)
			return c
		}
	}
	mode := color.ModeDefault
	if ctx.opts.ColorDiffusion && !ctx.opts.Deterministic {
		mode = color.ModeDiffusion
	}
	widthFrac := 0.0
	if ctx.total > 0 {
		widthFrac = float64(n.Samples) / float64(ctx.total)
	}
	c := color.Pick(ctx.opts.Palette, mode, n.Name, widthFrac)
	ctx.paletteMap.Assign(n.Name, c)
	return c
}

func frameTitle(f Frame, ctx renderContext) string {
	n := f.Node
	if !ctx.isDiff {
		return fmt.Sprintf("%s (%d samples, %.2f%%)", f.Path, n.Samples, pct(n.Samples, ctx.total))
	}
	delta := n.Delta()
	pctChange := 0.0
	if n.Samples > 0 {
		pctChange = float64(delta) / float64(n.Samples) * 100
	} else if n.SamplesB > 0 {
		pctChange = 100
	}
	sign := "+"
	if pctChange < 0 {
		sign = ""
	}
	return fmt.Sprintf("%s (%d samples, %s%.2f%%)", f.Path, n.SamplesB, sign, pctChange)
}

func pct(v, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(v) / float64(total) * 100
}

func truncateLabel(name string, width float64, opts Options) string {
	charWidth := fontWidth(opts)
	if charWidth <= 0 {
		charWidth = 7
	}
	maxChars := int(width / charWidth)
	if maxChars < 1 {
		return ""
	}
	if len(name) <= maxChars {
		return name
	}
	if maxChars <= 3 {
		return ""
	}
	return name[:maxChars-2] + ".."
}

func bgColor(opts Options, idx int) string {
	if opts.BGColors[idx] != "" {
		return opts.BGColors[idx]
	}
	if idx == 0 {
		return "#eeeeee"
	}
	return "#eeeeb0"
}

func fontTypeOf(opts Options) string {
	if opts.FontType == "" {
		return "Verdana"
	}
	return opts.FontType
}

func (o Options) FontSize0() int {
	if o.FontSize <= 0 {
		return 12
	}
	return o.FontSize
}

func fontWidth(opts Options) float64 {
	return float64(opts.FontSize0()) * 0.59
}

func frameHeightOf(opts Options) int {
	if opts.FrameHeight <= 0 {
		return 16
	}
	return opts.FrameHeight
}

func titleOr(opts Options) string {
	if opts.Title == "" {
		return "Flame Graph"
	}
	return opts.Title
}

