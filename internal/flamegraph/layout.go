// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package flamegraph

// Xpad is the left/right margin, in image units, reserved around the
// chart (spec §4.5: "width_per_sample = (image_width - 2*xpad) / total_samples").
const Xpad = 10.0

// YpadBottom reserves room for the title/details/search text below (for
// Inverted) or above (for non-inverted) the chart.
const YpadBottom = 30.0
const YpadTop = 70.0

// Frame is one laid-out rectangle, ready for coloring and emission.
type Frame struct {
	Node  *Node
	Path  string // "root;...;leaf" canonical stack key, for the <title> text
	Depth int
	X     float64
	Width float64
}

// Layout depth-first walks root's trie and assigns each surviving frame
// (spec §4.5: "skip subtrees with width < min_width") its x position and
// width, sized by each node's primary (A) sample count. Sibling order is
// alphabetical unless opts.FlameChart or opts.NoSort selects insertion
// order.
func Layout(root *Node, total uint64, opts Options) []Frame {
	return layout(root, total, opts, false)
}

// LayoutDiff is Layout's differential-mode counterpart: frame widths are
// sized by each node's secondary (B, "after") sample count, so a diff
// render's geometry reflects the state being compared to, not the
// baseline — matching the convention that the right-hand file's shape is
// what the reader is looking at, colored by how it changed. If B is
// empty (e.g. everything was removed), falls back to A's counts so the
// render still shows the full "before" shape instead of zero frames.
func LayoutDiff(root *Node, totalB uint64, opts Options) []Frame {
	if totalB == 0 {
		return layout(root, root.Samples, opts, false)
	}
	return layout(root, totalB, opts, true)
}

func layout(root *Node, total uint64, opts Options, useB bool) []Frame {
	if total == 0 {
		return nil
	}
	widthPerSample := (float64(valueOr(opts.ImageWidth, 1200)) - 2*Xpad) / float64(total)
	minWidth := opts.MinWidth
	if minWidth <= 0 {
		minWidth = 0.1
	}

	var frames []Frame
	var walk func(n *Node, depth int, x float64, path string)
	walk = func(n *Node, depth int, x float64, path string) {
		childX := x
		for _, name := range childOrder(n, opts) {
			c := n.Children[name]
			samples := c.Samples
			if useB {
				samples = c.SamplesB
			}
			width := float64(samples) * widthPerSample
			childPath := name
			if path != "" {
				childPath = path + ";" + name
			}
			if width >= minWidth {
				frames = append(frames, Frame{Node: c, Path: childPath, Depth: depth, X: childX, Width: width})
				walk(c, depth+1, childX, childPath)
			}
			childX += width
		}
	}
	walk(root, 0, Xpad, "")
	return frames
}

// childOrder returns n's child names in the order layout should traverse
// them: alphabetical by default, insertion order for flame-chart or
// --no-sort.
func childOrder(n *Node, opts Options) []string {
	if opts.FlameChart || opts.NoSort {
		return n.orderedChildNames()
	}
	return n.sortedChildNames()
}

// MaxDepth returns the deepest frame's depth+1 (i.e. the number of frame
// rows drawn; the synthetic root has no row), used to size the image height.
func MaxDepth(frames []Frame) int {
	max := 0
	for _, f := range frames {
		if f.Depth+1 > max {
			max = f.Depth + 1
		}
	}
	return max
}

// Y computes a frame's top-left y coordinate given its depth, the image
// height, the configured frame height, and whether the graph is inverted
// (icicle).
func Y(depth int, imageHeight int, frameHeight float64, inverted bool) float64 {
	if frameHeight <= 0 {
		frameHeight = 16
	}
	if inverted {
		return YpadTop + float64(depth)*frameHeight
	}
	return float64(imageHeight) - YpadBottom - float64(depth+1)*frameHeight
}

func valueOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
