package vtune

import (
	"bytes"
	"strings"
	"testing"

	"flamefold/internal/collapse"
	"flamefold/internal/symbols"
)

func collapseString(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	if err := collapse.Collapse(strings.NewReader(input), &out, NewFactory(Options{})); err != nil {
		t.Fatalf("Collapse: %v", err)
	}
	return out.String()
}

func TestLeafFirstReversedToRootFirst(t *testing.T) {
	input := "Function Stack,CPU Time:Self\n\"c;b;a\",1\n"
	got := collapseString(t, input)
	want := "a;b;c 1\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFractionalSecondsRoundToMillis(t *testing.T) {
	input := "\"b;a\",0.002000\n"
	got := collapseString(t, input)
	want := "a;b 2\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMalformedRowIsFatal(t *testing.T) {
	var out bytes.Buffer
	err := collapse.Collapse(strings.NewReader("just_one_column\n"), &out, NewFactory(Options{}))
	if err == nil {
		t.Fatal("expected an error for a malformed vtune row")
	}
}

func TestStrictUtf8ModeRejectsInvalidSymbol(t *testing.T) {
	input := "\"b;a\xff\",1\n"
	var out bytes.Buffer
	err := collapse.Collapse(strings.NewReader(input), &out, NewFactory(Options{Utf8Mode: symbols.Strict}))
	if err == nil {
		t.Fatal("expected an error for a non-UTF-8 symbol in strict mode")
	}
}

func TestLossyUtf8ModeToleratesInvalidSymbol(t *testing.T) {
	input := "\"b;a\xff\",1\n"
	var out bytes.Buffer
	if err := collapse.Collapse(strings.NewReader(input), &out, NewFactory(Options{Utf8Mode: symbols.Lossy})); err != nil {
		t.Fatalf("Collapse: %v", err)
	}
}
