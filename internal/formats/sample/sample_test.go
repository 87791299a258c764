package sample

import (
	"bytes"
	"strings"
	"testing"

	"flamefold/internal/collapse"
)

func collapseAll(t *testing.T, input string, opts Options) string {
	t.Helper()
	var out bytes.Buffer
	if err := collapse.Collapse(strings.NewReader(input), &out, NewFactory(opts)); err != nil {
		t.Fatalf("Collapse: %v", err)
	}
	return out.String()
}

func TestSampleEmitsLeafOnDepthDecrease(t *testing.T) {
	input := "2 main\n" +
		"  2 foo\n" +
		"    1 bar\n" +
		"    1 baz\n"
	got := collapseAll(t, input, Options{})
	want := "main;foo;bar 1\nmain;foo;baz 1\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSampleStripsParenSuffixAndReadsSamplesFragment(t *testing.T) {
	input := "1 main  (in myapp)\n" +
		"  5 foo (5 samples, 50.0%)  (in libSystem)\n"
	got := collapseAll(t, input, Options{})
	want := "main;foo 5\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSampleBlankLineSeparatesThreads(t *testing.T) {
	input := "1 main\n" +
		"  1 foo\n" +
		"\n" +
		"1 main\n" +
		"  1 bar\n"
	got := collapseAll(t, input, Options{})
	want := "main;foo 1\nmain;bar 1\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSampleSkipsPreambleLines(t *testing.T) {
	input := "Call graph:\n" +
		"    Sort by top of stack, same-library merge\n" +
		"1 main\n" +
		"  1 foo\n"
	got := collapseAll(t, input, Options{})
	want := "main;foo 1\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSampleCustomIndentWidth(t *testing.T) {
	input := "1 main\n" +
		"    1 foo\n"
	got := collapseAll(t, input, Options{IndentWidth: 4})
	want := "main;foo 1\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
