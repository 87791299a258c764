package xctrace

import (
	"bytes"
	"strings"
	"testing"

	"flamefold/internal/collapse"
)

func collapseString(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	if err := collapse.Collapse(strings.NewReader(input), &out, NewFactory(Options{})); err != nil {
		t.Fatalf("Collapse: %v", err)
	}
	return out.String()
}

func TestWeightedIndentedTree(t *testing.T) {
	input := strings.Join([]string{
		"10.00 ms main",
		"  8.00 ms foo",
		"    8.00 ms bar",
		"  2.00 ms baz",
		"",
		"",
	}, "\n")

	got := collapseString(t, input)
	want := "main;foo;bar 8000\nmain;baz 2000\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
