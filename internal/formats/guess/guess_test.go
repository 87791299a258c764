package guess

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

func TestDispatchesToDtraceOnBacktickModule(t *testing.T) {
	input := strings.Join([]string{
		"",
		"  libc.so.1`malloc",
		"  a.out`main",
		"  2",
		"",
		"",
	}, "\n")

	got := collapseString(t, input)
	want := "main;malloc 2\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDispatchesToRecursiveOnBareIntegerLine(t *testing.T) {
	input := strings.Join([]string{
		"a",
		"b",
		"5",
		"",
		"",
	}, "\n")

	got := collapseString(t, input)
	want := "a;b 5\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestUnknownFormatFails(t *testing.T) {
	var out bytes.Buffer
	err := collapse.Collapse(strings.NewReader(strings.Repeat("???\n", 5)), &out, NewFactory(Options{}))
	if err == nil {
		t.Fatal("expected UnknownFormat for input matching no signature")
	}
}
