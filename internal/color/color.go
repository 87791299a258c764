// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package color implements the flame graph color engine (spec §4.6): a
// palette enum with a per-name deterministic hash and a handful of
// weighting modes (plain hash, width-weighted diffusion, differential
// red/blue). It generalizes danpilch-umd's frameColor, which picks a
// fixed RGB triple per call-tree depth, into a per-function-name hash so
// that the same symbol gets the same color across an entire render (and,
// with a persisted internal/flamegraph palette map, across renders).
package color

import (
	"fmt"
	"strings"
)

// Palette selects which base hue family a frame's hash perturbs around.
type Palette int

const (
	Hot Palette = iota
	Mem
	IO
	Wakeup
	Java
	JS
	Perl
	Python
	Red
	Green
	Blue
	Aqua
	Yellow
	Purple
	Orange
	Rust
	Multi // auto: chosen per frame by language heuristic
)

// ParsePalette maps a CLI --colors value to a Palette. The zero value,
// Hot, is returned (with ok=false) for an unrecognized name.
func ParsePalette(name string) (Palette, bool) {
	switch name {
	case "hot", "":
		return Hot, true
	case "mem":
		return Mem, true
	case "io":
		return IO, true
	case "wakeup":
		return Wakeup, true
	case "java":
		return Java, true
	case "js":
		return JS, true
	case "perl":
		return Perl, true
	case "python":
		return Python, true
	case "red":
		return Red, true
	case "green":
		return Green, true
	case "blue":
		return Blue, true
	case "aqua":
		return Aqua, true
	case "yellow":
		return Yellow, true
	case "purple":
		return Purple, true
	case "orange":
		return Orange, true
	case "rust":
		return Rust, true
	case "multi":
		return Multi, true
	default:
		return Hot, false
	}
}

// RGB is an 8-bit-per-channel color.
type RGB struct{ R, G, B uint8 }

// String renders an RGB as an SVG-ready "rgb(r,g,b)" literal.
func (c RGB) String() string { return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B) }

// fnvSeed is the fixed 32-bit FNV-1a offset basis. Spec §9(b): "Color
// hashing uses a constant seed; do not randomize."
const fnvSeed uint32 = 2166136261

// hash32 is an FNV-1a mix of name's bytes, seeded from fnvSeed.
func hash32(name string) uint32 {
	h := fnvSeed
	for i := 0; i < len(name); i++ {
		h ^= uint32(name[i])
		h *= 16777619
	}
	return h
}

// hashWeights splits a name's hash into three independent normalized
// floats in [0,1), then applies the weighting spec §4.6 specifies:
// v1 = 1 - hash_a*0.5; v2 = 1 - hash_b*0.4; v3 = 1 - hash_c*0.4.
func hashWeights(name string) (v1, v2, v3 float64) {
	h := hash32(name)
	a := float64((h>>22)&0x3ff) / 1024
	b := float64((h>>11)&0x7ff) / 2048
	c := float64(h&0x7ff) / 2048
	return 1 - a*0.5, 1 - b*0.4, 1 - c*0.4
}

// Mode selects how a hash's three weights are applied atop a palette's
// base hue.
type Mode int

const (
	// ModeDefault applies the three hash weights directly.
	ModeDefault Mode = iota
	// ModeDeterministic is an alias of ModeDefault retained for
	// readability at call sites that want to say so explicitly: the
	// hash alone (no width weighting) is always what ModeDefault does.
	ModeDeterministic
	// ModeDiffusion scales v1 (redness) by the frame's width fraction of
	// the total, so wide hot frames pull warmer.
	ModeDiffusion
)

// Pick computes a frame's color for a single, non-differential render.
// widthFrac is the frame's sample count as a fraction of the root's total
// and is only consulted in ModeDiffusion.
func Pick(p Palette, mode Mode, name string, widthFrac float64) RGB {
	if p == Multi {
		p = classify(name)
	}
	v1, v2, v3 := hashWeights(name)
	if mode == ModeDiffusion {
		v1 = v1 * clamp01(widthFrac+0.15) // a floor keeps thin frames from going black
	}
	return base(p, v1, v2, v3)
}

// Diff computes a frame's color for differential mode: blue when the
// frame shrank (delta < 0), red when it grew, white at delta == 0,
// interpolated by delta/maxAbsDelta (spec §4.5).
func Diff(delta, maxAbsDelta int64) RGB {
	if maxAbsDelta <= 0 {
		return RGB{255, 255, 255}
	}
	frac := clamp01(absF(float64(delta)) / float64(maxAbsDelta))
	mid := uint8(255 - frac*210)
	if delta >= 0 {
		return RGB{255, mid, mid} // red side
	}
	return RGB{mid, mid, 255} // blue side
}

func absF(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// base maps a palette and its three hash weights to a concrete RGB,
// mirroring the base-hue tables conventional flame graph tools ship one
// per named palette.
func base(p Palette, v1, v2, v3 float64) RGB {
	scale := func(base, spread float64) uint8 {
		v := base + spread
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		return uint8(v)
	}
	switch p {
	case Mem:
		return RGB{0, scale(190, 50*v2), scale(210, 50*v3)}
	case IO:
		return RGB{scale(80, 80*v1), scale(160, 60*v2), scale(80, 80*v3)}
	case Wakeup:
		return RGB{scale(0, 0), scale(0, 0), scale(175, 55*v1)}
	case Java:
		return RGB{scale(0, 0), scale(210, 45*v2), scale(0, 0)}
	case JS:
		return RGB{scale(0, 0), scale(180, 55*v2), scale(190, 45*v3)}
	case Perl:
		return RGB{scale(0, 0), scale(130, 60*v2), scale(190, 45*v3)}
	case Python:
		return RGB{scale(184, 55*v1), scale(50, 50*v2), scale(50, 50*v3)}
	case Red:
		return RGB{scale(200, 55*v1), scale(50, 60*v2), scale(50, 60*v3)}
	case Green:
		return RGB{scale(50, 60*v1), scale(190, 55*v2), scale(50, 60*v3)}
	case Blue:
		return RGB{scale(50, 60*v1), scale(50, 60*v2), scale(210, 45*v3)}
	case Aqua:
		return RGB{scale(50, 50*v1), scale(190, 45*v2), scale(190, 45*v3)}
	case Yellow:
		return RGB{scale(210, 45*v1), scale(210, 45*v2), scale(50, 60*v3)}
	case Purple:
		return RGB{scale(160, 55*v1), scale(50, 60*v2), scale(190, 45*v3)}
	case Orange:
		return RGB{scale(220, 35*v1), scale(130, 60*v2), scale(40, 40*v3)}
	case Rust:
		return RGB{scale(183, 40*v1), scale(90, 45*v2), scale(60, 35*v3)}
	default: // Hot
		return RGB{scale(205, 50*v1), scale(0, 230*v2), scale(0, 55*v3)}
	}
}

// classify implements the Multi palette's per-frame language heuristic
// (spec §4.5): "::" (C++ or Rust paths) selects the Rust palette, a
// trailing "_[j]" marks Java JIT, ".py:"
// marks Python, and so on.
func classify(name string) Palette {
	switch {
	case strings.HasSuffix(name, "_[j]"):
		return Java
	case strings.Contains(name, ".py:"):
		return Python
	case strings.Contains(name, "::"):
		return Rust
	case strings.Contains(name, "/") && strings.HasSuffix(name, ")"):
		return JS
	case strings.HasSuffix(name, "_[k]"):
		return Orange
	default:
		return Hot
	}
}
