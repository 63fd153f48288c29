package reconstruction

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func fillRect(img *image.NRGBA, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 0xFF, A: 0xFF})
		}
	}
}

func TestEvaluateFullSheet(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	fillRect(img, img.Bounds())

	m := Evaluate(img)
	diff(t, Metrics{Coverage: 1, MirrorSymmetry: 1, Fragments: 1}, m)
}

func TestEvaluateHalfSheet(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	fillRect(img, image.Rect(0, 0, 5, 10))

	m := Evaluate(img)
	if m.Coverage != 0.5 {
		t.Errorf("Expected coverage 0.5, got %f", m.Coverage)
	}
	if m.MirrorSymmetry > -0.99 {
		t.Errorf("Expected a left half to be anti-symmetric, got %f", m.MirrorSymmetry)
	}
	if m.Fragments != 1 {
		t.Errorf("Expected 1 fragment, got %d", m.Fragments)
	}
}

func TestEvaluateFragments(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 12, 12))
	fillRect(img, image.Rect(1, 1, 3, 3))
	fillRect(img, image.Rect(9, 1, 11, 3))
	fillRect(img, image.Rect(4, 8, 8, 10))

	if got := Evaluate(img).Fragments; got != 3 {
		t.Errorf("Expected 3 fragments, got %d", got)
	}
}

func TestRotationalSymmetryOfCentredSquare(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	fillRect(img, image.Rect(3, 3, 7, 7))

	if got := RotationalSymmetry(img, math.Pi/2); math.Abs(got-1) > 1e-9 {
		t.Errorf("Expected quarter turn symmetry 1, got %f", got)
	}
}

func TestReflectionSymmetry(t *testing.T) {
	// an L shape is symmetric about neither centre line
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	fillRect(img, image.Rect(1, 1, 3, 9))
	fillRect(img, image.Rect(1, 7, 9, 9))

	if got := ReflectionSymmetry(img, math.Pi/2); got > 0.5 {
		t.Errorf("Expected low vertical-axis symmetry for an L, got %f", got)
	}

	// a horizontal bar through the centre is symmetric about both axes
	bar := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	fillRect(bar, image.Rect(1, 4, 9, 6))
	for _, a := range []float64{0, math.Pi / 2} {
		if got := ReflectionSymmetry(bar, a); math.Abs(got-1) > 1e-9 {
			t.Errorf("Expected bar symmetric about axis %f, got %f", a, got)
		}
	}
}

func TestEvaluateEmpty(t *testing.T) {
	m := Evaluate(image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	if m.Coverage != 0 || m.Fragments != 0 {
		t.Errorf("Expected empty metrics, got %+v", m)
	}
}
