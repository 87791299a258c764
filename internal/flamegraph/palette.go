// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package flamegraph

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"flamefold/internal/color"
	"flamefold/internal/ferrors"
)

// PaletteMap is the persisted function_name -> RGB mapping that keeps
// coloring stable across renders (spec §3, §4.5, §9 "Palette-map file
// race"). One entry per function_name"->rgb(R,G,B)"; lines that don't
// match the pattern are ignored on read and preserved verbatim on
// rewrite.
type PaletteMap struct {
	path     string
	entries  map[string]color.RGB
	unknown  []string // unparsed lines, preserved verbatim
	dirty    bool
	lockFile *os.File
}

var paletteLineRegex = regexp.MustCompile(`^(.*)->rgb\((\d{1,3}),(\d{1,3}),(\d{1,3})\)\s*$`)

// LoadPaletteMap opens path (creating it if absent) under an exclusive
// advisory lock held for the lifetime of the returned PaletteMap, and
// parses its entries. Call Close when the render is done to flush any
// new assignments and release the lock.
func LoadPaletteMap(path string) (*PaletteMap, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, ferrors.IO("opening palette map "+path, err)
	}
	if err := lockExclusive(f); err != nil {
		f.Close()
		return nil, ferrors.IO("locking palette map "+path, err)
	}

	pm := &PaletteMap{path: path, entries: make(map[string]color.RGB), lockFile: f}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		m := paletteLineRegex.FindStringSubmatch(line)
		if m == nil {
			if strings.TrimSpace(line) != "" {
				pm.unknown = append(pm.unknown, line)
			}
			continue
		}
		r, rerr := strconv.Atoi(m[2])
		g, gerr := strconv.Atoi(m[3])
		b, berr := strconv.Atoi(m[4])
		if rerr != nil || gerr != nil || berr != nil || r > 255 || g > 255 || b > 255 {
			pm.unknown = append(pm.unknown, line) // malformed entry: dropped per spec §7, preserved per §4.1
			continue
		}
		pm.entries[m[1]] = color.RGB{R: uint8(r), G: uint8(g), B: uint8(b)}
	}
	if err := sc.Err(); err != nil {
		f.Close()
		return nil, ferrors.IO("reading palette map "+path, err)
	}
	return pm, nil
}

// Lookup returns name's pinned color, if one was loaded.
func (pm *PaletteMap) Lookup(name string) (color.RGB, bool) {
	if pm == nil {
		return color.RGB{}, false
	}
	c, ok := pm.entries[name]
	return c, ok
}

// Assign pins name to c if it isn't already pinned, marking the map dirty
// so Close rewrites it (spec §4.5: "any new assignment is appended").
func (pm *PaletteMap) Assign(name string, c color.RGB) {
	if pm == nil {
		return
	}
	if _, ok := pm.entries[name]; ok {
		return
	}
	pm.entries[name] = c
	pm.dirty = true
}

// Close rewrites the palette map file (if it changed) and releases the
// exclusive lock.
func (pm *PaletteMap) Close() error {
	if pm == nil {
		return nil
	}
	defer pm.lockFile.Close()
	if !pm.dirty {
		return nil
	}
	if err := pm.lockFile.Truncate(0); err != nil {
		return ferrors.IO("rewriting palette map "+pm.path, err)
	}
	if _, err := pm.lockFile.Seek(0, 0); err != nil {
		return ferrors.IO("rewriting palette map "+pm.path, err)
	}
	bw := bufio.NewWriter(pm.lockFile)
	for _, line := range pm.unknown {
		fmt.Fprintln(bw, line)
	}
	names := make([]string, 0, len(pm.entries))
	for name := range pm.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := pm.entries[name]
		fmt.Fprintf(bw, "%s->rgb(%d,%d,%d)\n", name, c.R, c.G, c.B)
	}
	if err := bw.Flush(); err != nil {
		return ferrors.IO("rewriting palette map "+pm.path, err)
	}
	return nil
}

// LoadPaletteBase reads a seed palette map that is consulted but never
// rewritten (--palette-base).
func LoadPaletteBase(path string) (map[string]color.RGB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ferrors.IO("opening base palette "+path, err)
	}
	defer f.Close()

	entries := make(map[string]color.RGB)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		m := paletteLineRegex.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		r, _ := strconv.Atoi(m[2])
		g, _ := strconv.Atoi(m[3])
		b, _ := strconv.Atoi(m[4])
		entries[m[1]] = color.RGB{R: uint8(r), G: uint8(g), B: uint8(b)}
	}
	return entries, sc.Err()
}
