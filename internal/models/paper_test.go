package models

import (
	"errors"
	"image/color"
	"testing"
)

func TestParseDirections(t *testing.T) {
	got, err := ParseDirections("up, Right,br ,TL")
	if err != nil {
		t.Fatal(err)
	}
	want := []Direction{Up, Right, BottomRight, TopLeft}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v at %d, got %v", want[i], i, got[i])
		}
	}

	if dirs, err := ParseDirections("  "); err != nil || dirs != nil {
		t.Errorf("Expected an empty sequence, got %v %v", dirs, err)
	}
	if _, err := ParseDirections("UP,SIDEWAYS"); !errors.Is(err, ErrUnknownDirection) {
		t.Errorf("Expected ErrUnknownDirection, got %v", err)
	}
}

func TestDirectionRoundTrip(t *testing.T) {
	for _, d := range Directions {
		p, err := ParseDirection(d.String())
		if err != nil || p != d {
			t.Errorf("Expected %v back, got %v %v", d, p, err)
		}
	}
	if Direction(12).String() != "Direction(12)" {
		t.Errorf("Unexpected name %q", Direction(12).String())
	}
}

func TestCrease(t *testing.T) {
	tests := map[Direction]CreaseType{
		Up: Horizontal, Down: Horizontal,
		Left: Vertical, Right: Vertical,
		TopLeft: DiagonalSum, BottomRight: DiagonalSum,
		TopRight: DiagonalDiff, BottomLeft: DiagonalDiff,
	}
	for d, want := range tests {
		if got := d.Crease(); got != want {
			t.Errorf("%v: expected %v, got %v", d, want, got)
		}
		if d.Diagonal() != (want == DiagonalSum || want == DiagonalDiff) {
			t.Errorf("%v: wrong Diagonal()", d)
		}
	}
}

func TestCreaseSet(t *testing.T) {
	var s CreaseSet
	if !s.Empty() {
		t.Error("Expected the zero set to be empty")
	}
	s = s.With(Horizontal).With(DiagonalDiff).With(Horizontal)
	if !s.Has(Horizontal) || !s.Has(DiagonalDiff) || s.Has(Vertical) {
		t.Errorf("Unexpected set %08b", s)
	}
}

func TestBounds(t *testing.T) {
	b := Bounds{MinX: 0, MaxX: 500, MinY: 0, MaxY: 250}
	cx, cy := b.Center()
	if cx != 249.5 || cy != 124.5 {
		t.Errorf("Expected centre (249.5, 124.5), got (%v, %v)", cx, cy)
	}
	if b.Width() != 500 || b.Height() != 250 || b.Empty() {
		t.Errorf("Unexpected size of %+v", b)
	}
	if !(Bounds{}).Empty() {
		t.Error("Expected zero bounds to be empty")
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{"": Custom, "custom": Custom, "PRESET": Preset, "radial": Preset} {
		got, err := ParseStrategy(in)
		if err != nil || got != want {
			t.Errorf("%q: expected %v, got %v %v", in, want, got, err)
		}
	}
	if _, err := ParseStrategy("origami"); err == nil {
		t.Error("Expected an error for an unknown mode")
	}
}

func TestPaperColor(t *testing.T) {
	c, ok := ParsePaperColor("#1d4ed8")
	if !ok || c != (color.NRGBA{R: 0x1D, G: 0x4E, B: 0xD8, A: 0xFF}) {
		t.Errorf("Unexpected colour %v %v", c, ok)
	}
	for _, bad := range []string{"", "#12345", "#GGGGGG", "blue"} {
		if c, ok := ParsePaperColor(bad); ok || c != DefaultPaperColor {
			t.Errorf("%q: expected fallback, got %v %v", bad, c, ok)
		}
	}
	if Opaque(nil) != DefaultPaperColor {
		t.Error("Expected nil to map to the default paper")
	}
	if got := Opaque(color.NRGBA{R: 10, A: 0x80}); got.A != 0xFF {
		t.Errorf("Expected an opaque colour, got %v", got)
	}
}
