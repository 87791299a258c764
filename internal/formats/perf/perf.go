// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package perf collapses Linux `perf script` stack samples into folded
// stacks. It is a direct generalization of the teacher's
// stackcollapse-perf.go (itself a port of Brendan Gregg's
// stackcollapse-perf.pl) onto the shared collapse.Parser contract, with
// naive paren-stripping replaced by the bracket-aware internal/symbols
// fixup.
package perf

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"flamefold/internal/collapse"
	"flamefold/internal/occurrences"
	"flamefold/internal/symbols"
)

// Options mirrors the teacher's Config.
type Options struct {
	AnnotateKernel bool
	AnnotateJit    bool
	AnnotateInline bool // mark inline-expanded frames with a _[i] suffix
	IncludePname   bool
	IncludePid     bool
	IncludeTid     bool
	IncludeAddrs   bool
	TidyJava       bool
	TidyGeneric    bool
	EventFilter    string
	AllEvents      bool
	// Utf8Mode controls how symbols.Fix treats a non-UTF-8 frame (spec
	// §4.1, §6). Zero value is symbols.Lossy.
	Utf8Mode symbols.Mode
}

// DefaultOptions matches the teacher's flag defaults.
func DefaultOptions() Options {
	return Options{IncludePname: true, TidyJava: true, TidyGeneric: true}
}

var (
	eventLineRegex = regexp.MustCompile(`^(\S.*?)\s+(\d+)\/*(\d+)*\s+`)
	eventTypeRegex = regexp.MustCompile(`:\s*(\d+)*\s+(\S+):\s*$`)
	stackLineRegex = regexp.MustCompile(`^\s*(\w+)\s*(.+) \((.*)\)`)
	jitRegex       = regexp.MustCompile(`/tmp/perf-\d+\.map`)
)

// NewFactory returns a collapse.Factory bound to opts.
func NewFactory(opts Options) collapse.Factory {
	return func(acc *occurrences.Map) collapse.Parser {
		// An explicit --event-filter seeds the accepted event; otherwise
		// the first event observed claims it.
		return &parser{opts: opts, acc: acc, eventFilter: opts.EventFilter}
	}
}

type parser struct {
	opts           Options
	acc            *occurrences.Map
	stack          []string
	processName    string
	period         uint64
	eventFilter    string
	skipStackLines bool
	lineNo         int
}

// WouldEndStack reports a blank line, exactly as the teacher's scanner
// loop uses it to recognize the end of a sample.
func (p *parser) WouldEndStack(line []byte) bool {
	return len(bytes.TrimSpace(line)) == 0
}

func (p *parser) Step(line []byte) error {
	p.lineNo++
	s := string(line)

	if strings.HasPrefix(s, "#") {
		return nil
	}
	if s == "" {
		if p.processName == "" {
			return nil
		}
		if p.skipStackLines {
			// Event was filtered out entirely; nothing was ever sampled
			// into p.stack, so there is no real record to commit.
			p.stack = nil
			p.processName = ""
			p.skipStackLines = false
			return nil
		}
		p.commit()
		return nil
	}
	if eventLineRegex.MatchString(s) {
		p.skipStackLines = false
		processName, period, event, err := handleEventRecord(s, p.opts)
		if err != nil {
			slog.Warn("perf: skipping malformed event record", "line", p.lineNo, "error", err)
			p.skipStackLines = true
			return nil
		}
		p.processName = processName
		p.period = period
		if p.opts.AllEvents {
			// no filtering
		} else if p.eventFilter == "" {
			p.eventFilter = event // spec §4.3: first event observed sets the accepted event
		} else if event != p.eventFilter {
			p.skipStackLines = true
		}
		return nil
	}
	if stackLineRegex.MatchString(s) && !p.skipStackLines {
		if err := handleStackLine(s, &p.stack, p.processName, p.opts); err != nil {
			slog.Warn("perf: skipping malformed symbol", "line", p.lineNo, "error", err)
		}
	}
	return nil
}

func (p *parser) Flush() error {
	if p.skipStackLines {
		return nil
	}
	if p.processName != "" || len(p.stack) > 0 {
		p.commit()
	}
	return nil
}

func (p *parser) commit() {
	stack := p.stack
	if p.opts.IncludePname {
		stack = append([]string{p.processName}, stack...)
	}
	if len(stack) > 0 {
		p.acc.Add(strings.Join(stack, ";"), p.period)
	}
	p.stack = nil
	p.processName = ""
}

func handleEventRecord(line string, opts Options) (processName string, period uint64, event string, err error) {
	matches := eventLineRegex.FindStringSubmatch(line)
	if matches == nil {
		return
	}

	comm, pid, tid := matches[1], matches[2], matches[3]
	if tid == "" {
		tid = pid
		pid = "?"
	}

	if eventMatches := eventTypeRegex.FindStringSubmatch(line); eventMatches != nil {
		eventPeriod := eventMatches[1]
		if eventPeriod == "" {
			period = 1
		} else {
			v, perr := strconv.ParseUint(eventPeriod, 10, 64)
			if perr != nil {
				err = fmt.Errorf("parsing event period %q: %w", eventPeriod, perr)
				return
			}
			period = v
		}
		event = eventMatches[2]
	}

	if opts.IncludeTid {
		processName = fmt.Sprintf("%s-%s/%s", comm, pid, tid)
	} else if opts.IncludePid {
		processName = fmt.Sprintf("%s-%s", comm, pid)
	} else {
		processName = comm
	}
	processName = strings.ReplaceAll(processName, " ", "_")
	return
}

func handleStackLine(line string, stack *[]string, pname string, opts Options) error {
	matches := stackLineRegex.FindStringSubmatch(line)
	if matches == nil || pname == "" {
		return nil
	}

	pc, rawFunc, mod := matches[1], matches[2], matches[3]

	if strings.HasPrefix(rawFunc, "(") {
		return nil // a bare module name, not a symbol
	}

	frames, err := processFunctionName(rawFunc, mod, pc, opts)
	if err != nil {
		return err
	}
	*stack = append(frames, *stack...)
	return nil
}

func processFunctionName(rawFunc, mod, pc string, opts Options) ([]string, error) {
	var inline []string
	for _, funcname := range strings.Split(rawFunc, "->") {
		if funcname == "[unknown]" {
			if mod != "[unknown]" {
				funcname = filepath.Base(mod)
			} else {
				funcname = "unknown"
			}
			if opts.IncludeAddrs {
				funcname = fmt.Sprintf("[%s <%s>]", funcname, pc)
			} else {
				funcname = fmt.Sprintf("[%s]", funcname)
			}
		}
		if opts.TidyGeneric {
			funcname = strings.ReplaceAll(funcname, ";", ":")
			fixed, err := symbols.FixMode(funcname, opts.Utf8Mode)
			if err != nil {
				return nil, err
			}
			funcname = fixed
			funcname = strings.ReplaceAll(funcname, "\"", "")
			funcname = strings.ReplaceAll(funcname, "'", "")
		}
		if opts.TidyJava && strings.Contains(funcname, "/") {
			funcname = strings.TrimPrefix(funcname, "L")
		}

		if len(inline) > 0 {
			if opts.AnnotateInline && !strings.Contains(funcname, "_[i]") {
				funcname = fmt.Sprintf("%s_[i]", funcname)
			}
		} else if opts.AnnotateKernel && (strings.HasPrefix(mod, "[") || strings.HasSuffix(mod, "vmlinux")) && !strings.Contains(mod, "unknown") {
			funcname = fmt.Sprintf("%s_[k]", funcname)
		} else if opts.AnnotateJit && jitRegex.MatchString(mod) {
			if !strings.Contains(funcname, "_[j]") {
				funcname = fmt.Sprintf("%s_[j]", funcname)
			}
		}

		inline = append(inline, funcname)
	}
	return inline, nil
}
