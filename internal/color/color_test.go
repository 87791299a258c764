package color

import "testing"

func TestPickIsDeterministic(t *testing.T) {
	a := Pick(Hot, ModeDefault, "same_name", 0)
	b := Pick(Hot, ModeDefault, "same_name", 0)
	if a != b {
		t.Errorf("Pick should be a pure function of its inputs: got %v and %v", a, b)
	}
}

func TestPickVariesByName(t *testing.T) {
	a := Pick(Hot, ModeDefault, "foo", 0)
	b := Pick(Hot, ModeDefault, "bar", 0)
	if a == b {
		t.Errorf("distinct names should very rarely collide: both got %v", a)
	}
}

func TestDiffZeroDeltaIsWhite(t *testing.T) {
	got := Diff(0, 100)
	want := RGB{255, 255, 255}
	if got != want {
		t.Errorf("zero delta should be neutral white, got %v", got)
	}
}

func TestDiffSideByDeltaSign(t *testing.T) {
	grew := Diff(50, 100)
	shrank := Diff(-50, 100)
	if grew.R <= grew.B {
		t.Errorf("a positive delta should lean red: %v", grew)
	}
	if shrank.B <= shrank.R {
		t.Errorf("a negative delta should lean blue: %v", shrank)
	}
}

func TestParsePaletteRecognizesNames(t *testing.T) {
	for _, name := range []string{"hot", "mem", "io", "java", "js", "python", "rust", "multi"} {
		p, ok := ParsePalette(name)
		if !ok {
			t.Errorf("ParsePalette(%q) should be recognized", name)
		}
		_ = p
	}
	if _, ok := ParsePalette("not-a-palette"); ok {
		t.Error("an unrecognized palette name should report ok=false")
	}
}
