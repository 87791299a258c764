package util

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import "testing"

func TestFormatCountAddsThousandsSeparators(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{258691376, "258,691,376"},
	}
	for _, test := range tests {
		if got := FormatCount(test.n); got != test.want {
			t.Errorf("FormatCount(%d) = %q, want %q", test.n, got, test.want)
		}
	}
}
