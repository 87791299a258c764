package dtrace

import (
	"bytes"
	"strings"
	"testing"

	"flamefold/internal/collapse"
)

func TestLeafFirstInputEmitsRootFirst(t *testing.T) {
	input := "\n  c\n  b\n  a\n  2\n"
	var out bytes.Buffer
	if err := collapse.Collapse(strings.NewReader(input), &out, NewFactory(Options{})); err != nil {
		t.Fatalf("Collapse: %v", err)
	}
	want := "a;b;c 2\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}

func TestModuleAndOffsetStripped(t *testing.T) {
	input := "\n  libc.so.1`malloc+0x20\n  main\n  3\n"
	var out bytes.Buffer
	if err := collapse.Collapse(strings.NewReader(input), &out, NewFactory(Options{})); err != nil {
		t.Fatalf("Collapse: %v", err)
	}
	want := "main;malloc 3\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}

func TestMultipleRecordsAccumulate(t *testing.T) {
	input := "\n  b\n  a\n  1\n\n  b\n  a\n  4\n"
	var out bytes.Buffer
	if err := collapse.Collapse(strings.NewReader(input), &out, NewFactory(Options{})); err != nil {
		t.Fatalf("Collapse: %v", err)
	}
	want := "a;b 5\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}

func TestIncompleteRecordAtEOFIsParseError(t *testing.T) {
	input := "\n  b\n  a\n" // no trailing count line
	var out bytes.Buffer
	err := collapse.Collapse(strings.NewReader(input), &out, NewFactory(Options{}))
	if err == nil {
		t.Fatal("expected an error for a dangling record")
	}
}
