package diff

import (
	"bytes"
	"strings"
	"testing"
)

func TestCombineOrdersAThenBOnly(t *testing.T) {
	a := strings.NewReader("a;b 10\na;c 5\n")
	b := strings.NewReader("a;b 20\na;d 7\n")

	var out bytes.Buffer
	if err := Combine(a, b, &out); err != nil {
		t.Fatalf("Combine: %v", err)
	}
	want := "a;b 10 20\na;c 5 0\na;d 0 7\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}

func TestCombineSymmetry(t *testing.T) {
	a := strings.NewReader("a;b 10\n")
	b := strings.NewReader("a;b 20\n")

	var ab, ba bytes.Buffer
	if err := Combine(a, b, &ab); err != nil {
		t.Fatalf("Combine(a,b): %v", err)
	}
	if err := Combine(strings.NewReader("a;b 20\n"), strings.NewReader("a;b 10\n"), &ba); err != nil {
		t.Fatalf("Combine(b,a): %v", err)
	}
	if ab.String() != "a;b 10 20\n" || ba.String() != "a;b 20 10\n" {
		t.Errorf("swapped counts should mirror: ab=%q ba=%q", ab.String(), ba.String())
	}
}
