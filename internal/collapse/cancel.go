// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package collapse

import (
	"errors"
	"sync/atomic"
)

// ErrCancelled is returned by Collapse/CollapseFileParallel when a
// CancelFlag trips before completion.
var ErrCancelled = errors.New("collapse: cancelled")

// CancelFlag is the cooperative cancellation signal shared between the
// coordinator and its workers (spec §5: "a shared atomic flag checked
// between records"). The zero value is a live, uncancelled flag.
type CancelFlag struct {
	flag atomic.Bool
}

// Cancel marks the flag as tripped. Safe to call from any goroutine, any
// number of times.
func (c *CancelFlag) Cancel() {
	if c != nil {
		c.flag.Store(true)
	}
}

// Cancelled reports whether Cancel has been called. A nil *CancelFlag is
// never cancelled.
func (c *CancelFlag) Cancelled() bool {
	return c != nil && c.flag.Load()
}
