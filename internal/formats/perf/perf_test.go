package perf

import (
	"bytes"
	"strings"
	"testing"

	"flamefold/internal/collapse"
)

func collapseString(t *testing.T, opts Options, input string) string {
	t.Helper()
	var out bytes.Buffer
	if err := collapse.Collapse(strings.NewReader(input), &out, NewFactory(opts)); err != nil {
		t.Fatalf("Collapse: %v", err)
	}
	return out.String()
}

func TestMinimalExample(t *testing.T) {
	input := strings.Join([]string{
		"a 1/1 123.456: 1 cycles:",
		"\t0 c (prog)",
		"\t0 b (prog)",
		"\t0 a (prog)",
		"",
		"a 1/1 123.456: 1 cycles:",
		"\t0 b (prog)",
		"\t0 a (prog)",
		"",
		"",
	}, "\n")

	got := collapseString(t, DefaultOptions(), input)
	want := "a;a;b;c 1\na;a;b 1\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEventFilterKeepsFirstEvent(t *testing.T) {
	input := strings.Join([]string{
		"a 1/1 123.456: 1 cycles:",
		"\t0 f (prog)",
		"",
		"a 1/1 123.457: 1 instructions:",
		"\t0 g (prog)",
		"",
		"",
	}, "\n")

	got := collapseString(t, DefaultOptions(), input)
	want := "a;f 1\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestKernelAnnotation(t *testing.T) {
	opts := DefaultOptions()
	opts.AnnotateKernel = true
	input := strings.Join([]string{
		"a 1/1 123.456: 1 cycles:",
		"\t0 do_syscall ([kernel.kallsyms])",
		"\t0 main (prog)",
		"",
		"",
	}, "\n")

	got := collapseString(t, opts, input)
	want := "a;main;do_syscall_[k] 1\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTidyGenericUsesBracketAwareFixup(t *testing.T) {
	opts := DefaultOptions()
	input := strings.Join([]string{
		"a 1/1 123.456: 1 cycles:",
		"\t0 std::vector<int, std::allocator<int> >::push_back(int&&) (prog)",
		"",
		"",
	}, "\n")

	got := collapseString(t, opts, input)
	want := "a;std::vector<int, std::allocator<int> >::push_back(int&&) 1\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInlineAnnotation(t *testing.T) {
	input := strings.Join([]string{
		"a 1/1 123.456: 1 cycles:",
		"\t0 outer->inner (prog)",
		"",
		"",
	}, "\n")

	got := collapseString(t, DefaultOptions(), input)
	want := "a;outer;inner 1\n"
	if got != want {
		t.Errorf("without --inline: got %q, want %q", got, want)
	}

	opts := DefaultOptions()
	opts.AnnotateInline = true
	got = collapseString(t, opts, input)
	want = "a;outer;inner_[i] 1\n"
	if got != want {
		t.Errorf("with --inline: got %q, want %q", got, want)
	}
}

func TestWouldEndStackIsBlankLine(t *testing.T) {
	p := &parser{}
	if !p.WouldEndStack([]byte("")) {
		t.Error("empty line should end a stack")
	}
	if !p.WouldEndStack([]byte("   ")) {
		t.Error("whitespace-only line should end a stack")
	}
	if p.WouldEndStack([]byte("\t0 main (prog)")) {
		t.Error("a stack line should not end a stack")
	}
}

func TestTrailingRecordWithoutBlankLineIsKept(t *testing.T) {
	input := strings.Join([]string{
		"a 1/1 123.456: 1 cycles:",
		"\t0 main (prog)",
	}, "\n")

	got := collapseString(t, DefaultOptions(), input)
	want := "a;main 1\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
