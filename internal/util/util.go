/*
Package util holds the small CLI-summary helper that cmd/flamegraph
uses, trimmed from the teacher's general
utility belt down to the one concern this toolkit actually needs:
locale-aware thousands-separator formatting of sample counts, grounded in
cmd/telemetry/telemetry.go's golang.org/x/text/message usage.
*/
package util

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators, e.g. 258691376 ->
// "258,691,376", for stderr summaries like "rendered N samples".
func FormatCount(n uint64) string {
	return printer.Sprintf("%d", n)
}
