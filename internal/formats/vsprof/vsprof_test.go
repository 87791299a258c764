package vsprof

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

func TestTabIndentedTree(t *testing.T) {
	input := strings.Join([]string{
		"main\t100",
		"\tfoo\t60",
		"\t\tbar\t60",
		"\tbaz\t40",
		"",
		"",
	}, "\n")

	got := collapseString(t, input)
	want := "main;foo;bar 60\nmain;baz 40\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
