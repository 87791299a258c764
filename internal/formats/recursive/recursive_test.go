package recursive

import (
	"bytes"
	"strings"
	"testing"

	"flamefold/internal/collapse"
)

func TestRootFirstRecordWithTrailingCount(t *testing.T) {
	input := strings.Join([]string{
		"a",
		"b",
		"c",
		"3",
		"",
		"",
	}, "\n")

	var out bytes.Buffer
	if err := collapse.Collapse(strings.NewReader(input), &out, NewFactory(Options{})); err != nil {
		t.Fatalf("Collapse: %v", err)
	}
	want := "a;b;c 3\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}

func TestIncompleteRecordAtEOF(t *testing.T) {
	var out bytes.Buffer
	err := collapse.Collapse(strings.NewReader("a\nb\n"), &out, NewFactory(Options{}))
	if err == nil {
		t.Fatal("expected an error for a record with no trailing count")
	}
}
