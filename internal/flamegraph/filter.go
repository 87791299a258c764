// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Frame filtering generalizes the teacher's cmd/metrics boolean metric
// expressions (govaluate over named numeric parameters) from metrics to
// frames: --filter evaluates a boolean expression over each frame's
// (name, depth, samples) before it is laid out, letting a caller drop
// uninteresting subtrees from a render without a separate preprocessing
// pass over the folded stacks.
package flamegraph

import (
	"github.com/casbin/govaluate"

	"flamefold/internal/ferrors"
)

// Filter compiles a --filter expression once and evaluates it per frame.
type Filter struct {
	expr *govaluate.EvaluableExpression
}

// CompileFilter parses expr. An empty expr yields a nil *Filter whose
// Match always returns true.
func CompileFilter(expr string) (*Filter, error) {
	if expr == "" {
		return nil, nil
	}
	e, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, ferrors.Parse("filter", 0, "invalid --filter expression: "+err.Error())
	}
	return &Filter{expr: e}, nil
}

// Match reports whether name at depth with samples passes f. A nil
// Filter (no --filter given) matches everything.
func (f *Filter) Match(name string, depth int, samples uint64) bool {
	if f == nil {
		return true
	}
	params := map[string]interface{}{
		"name":    name,
		"depth":   float64(depth),
		"samples": float64(samples),
	}
	result, err := f.expr.Evaluate(params)
	if err != nil {
		return true // an expression that can't evaluate on this frame doesn't exclude it
	}
	b, ok := result.(bool)
	return !ok || b
}

// Prune removes, in place, every child subtree of n whose root frame
// fails f, applied depth-first so a filtered-out ancestor drops its
// whole subtree without needing to re-test already-excluded descendants.
func Prune(n *Node, f *Filter, depth int) {
	if f == nil {
		return
	}
	for name, c := range n.Children {
		if !f.Match(c.Name, depth, c.Samples) {
			delete(n.Children, name)
			n.order = removeName(n.order, name)
			continue
		}
		Prune(c, f, depth+1)
	}
}

func removeName(order []string, name string) []string {
	out := order[:0]
	for _, o := range order {
		if o != name {
			out = append(out, o)
		}
	}
	return out
}
