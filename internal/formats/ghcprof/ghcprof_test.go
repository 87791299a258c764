package ghcprof

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

func TestCostCentreTree(t *testing.T) {
	input := strings.Join([]string{
		"                                                        individual      inherited",
		"COST CENTRE  MODULE  SRC              no.  entries  %time %alloc   %time %alloc ticks bytes",
		"",
		"MAIN         MAIN    <built-in>        1        0    0.0   0.0    100.0 100.0    0    0",
		" CAF         Main    Main.hs:8:1-15     2        0    0.0   0.0    100.0 100.0    5   80",
		"",
		"",
	}, "\n")

	got := collapseString(t, input)
	want := "MAIN;CAF 5\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
