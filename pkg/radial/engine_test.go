package radial

import (
	"image"
	"image/color"
	"math"
	"testing"

	"jianzhi/internal/models"
	"jianzhi/pkg/reconstruction"
)

var paper = models.DefaultPaperColor

func newEngine(t *testing.T, size, folds int, opts ...Option) *Engine {
	t.Helper()
	e, err := New(size, folds, opts...)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

// polar returns the pixel at distance r from the centre in direction a
// (radians, 0 pointing right, y down).
func polar(e *Engine, r, a float64) image.Point {
	return image.Pt(
		int(math.Floor(e.center.X+r*math.Cos(a))),
		int(math.Floor(e.center.Y+r*math.Sin(a))),
	)
}

func TestSegments(t *testing.T) {
	e := newEngine(t, 500, 5)

	if e.TotalSegments() != 10 {
		t.Errorf("Expected 10 segments, got %d", e.TotalSegments())
	}
	if got := e.AnglePerSegment() * 180 / math.Pi; math.Abs(got-36) > 1e-9 {
		t.Errorf("Expected 36 degree wedges, got %f", got)
	}
	if e.Radius() != 200 {
		t.Errorf("Expected radius 200, got %f", e.Radius())
	}
	if e.Strategy() != models.Preset {
		t.Errorf("Expected preset strategy, got %v", e.Strategy())
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(0, 5); err == nil {
		t.Error("Expected error for zero size")
	}
	for _, n := range []int{MinFolds - 1, MaxFolds + 1} {
		if _, err := New(100, n); err == nil {
			t.Errorf("Expected error for %d folds", n)
		}
	}

	e := newEngine(t, 100, 4, WithRadiusFraction(2))
	if e.Radius() != 50*DefaultRadiusFraction {
		t.Errorf("Expected an invalid radius fraction to be ignored, got radius %f", e.Radius())
	}
	e = newEngine(t, 100, 4, WithRadiusFraction(0.95))
	if math.Abs(e.Radius()-47.5) > 1e-9 {
		t.Errorf("Expected radius 47.5, got %f", e.Radius())
	}
}

func TestFoldingIsFixed(t *testing.T) {
	e := newEngine(t, 100, 6)
	for _, d := range models.Directions {
		if e.CanFold(d) || e.Fold(d) {
			t.Errorf("Expected %s to be refused", d)
		}
	}
}

func TestInWedge(t *testing.T) {
	e := newEngine(t, 200, 5)

	up := polar(e, 40, -math.Pi/2)
	if !e.InWedge(up.X, up.Y) {
		t.Errorf("Expected %v (straight up) inside the wedge", up)
	}
	for _, p := range []image.Point{
		polar(e, 40, math.Pi/2),       // down
		polar(e, 40, -math.Pi/2+0.4), // beyond the 18 degree half angle
		polar(e, 90, -math.Pi/2),      // beyond the radius
		{X: 0, Y: 0},
	} {
		if e.InWedge(p.X, p.Y) {
			t.Errorf("Expected %v outside the wedge", p)
		}
	}
}

func TestRenderActiveCutState(t *testing.T) {
	e := newEngine(t, 200, 5)
	dst := image.NewNRGBA(image.Rect(0, 0, 200, 200))
	for i := range dst.Pix {
		dst.Pix[i] = 0xFF
	}

	e.RenderActiveCutState(dst, paper)
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			got := dst.NRGBAAt(x, y)
			if e.InWedge(x, y) {
				if got != paper {
					t.Fatalf("Expected paper at (%d,%d), got %v", x, y, got)
				}
			} else if got.A != 0 {
				t.Fatalf("Expected transparent at (%d,%d), got %v", x, y, got)
			}
		}
	}
}

func TestRenderFoldedState(t *testing.T) {
	e := newEngine(t, 200, 5)
	dst := image.NewNRGBA(image.Rect(0, 0, 50, 50))
	e.RenderFoldedState(dst, paper)

	if a := dst.NRGBAAt(25, 10).A; a == 0 {
		t.Error("Expected the wedge above the centre")
	}
	if a := dst.NRGBAAt(25, 40).A; a != 0 {
		t.Errorf("Expected nothing below the centre, alpha %d", a)
	}
	e.RenderFoldedState(nil, paper)
}

// insideRadius reports whether the centre of pixel (x, y) is within r of
// the sheet centre.
func insideRadius(e *Engine, x, y int, r float64) bool {
	dx := float64(x) + 0.5 - e.center.X
	dy := float64(y) + 0.5 - e.center.Y
	return math.Hypot(dx, dy) <= r
}

func TestSolidWedgeFillsEverySegment(t *testing.T) {
	e := newEngine(t, 200, 5)
	img := e.ApplyCutAndUnfold(nil, paper)

	for i := 0; i < e.TotalSegments(); i++ {
		a := -math.Pi/2 + float64(i)*e.AnglePerSegment()
		p := polar(e, e.Radius()/2, a)
		if got := img.NRGBAAt(p.X, p.Y); got != paper {
			t.Errorf("segment %d: expected paper at %v, got %v", i, p, got)
		}
	}
	if a := img.NRGBAAt(2, 2).A; a != 0 {
		t.Errorf("Expected the corner outside the disc empty, alpha %d", a)
	}
}

func TestUncutWedgeUnfoldsToSolidDisc(t *testing.T) {
	sizes := []int{200, 201}
	if !testing.Short() {
		sizes = append(sizes, 500)
	}
	for _, size := range sizes {
		for n := 3; n <= 8; n++ {
			e := newEngine(t, size, n)

			// the blank surface a session hands out is the same as no cut
			surface := image.NewNRGBA(image.Rect(0, 0, size, size))
			e.RenderActiveCutState(surface, paper)

			for _, mask := range []image.Image{nil, surface} {
				img := e.ApplyCutAndUnfold(mask, paper)
				holes := 0
				for y := 0; y < size; y++ {
					for x := 0; x < size; x++ {
						if insideRadius(e, x, y, e.Radius()) && img.NRGBAAt(x, y) != paper {
							holes++
						}
					}
				}
				if holes != 0 {
					t.Errorf("size %d, N=%d, mask %v: %d pixels inside the radius are not paper",
						size, n, mask != nil, holes)
				}
			}
		}
	}
}

func TestUncutCreasesAreNotMasked(t *testing.T) {
	for n := 3; n <= 8; n++ {
		e := newEngine(t, 200, n)
		surface := image.NewNRGBA(image.Rect(0, 0, 200, 200))
		e.RenderActiveCutState(surface, paper)

		masked := e.GenerateCreaseOverlay(surface, paper)
		unmasked := e.GenerateCreaseOverlay(nil, paper)
		lines, missing := 0, 0
		for y := 0; y < 200; y++ {
			for x := 0; x < 200; x++ {
				if !insideRadius(e, x, y, e.Radius()) {
					continue
				}
				want := unmasked.NRGBAAt(x, y)
				if want.A != 0 {
					lines++
				}
				if got := masked.NRGBAAt(x, y); got != want {
					missing++
				}
			}
		}
		if lines == 0 {
			t.Fatalf("N=%d: expected crease lines inside the disc", n)
		}
		if missing != 0 {
			t.Errorf("N=%d: %d of %d crease pixels differ once masked by the uncut sheet", n, missing, lines)
		}
	}
}

// asymmetricCut returns the wedge with a notch cut out of its right half.
func asymmetricCut(e *Engine) *image.NRGBA {
	mask := image.NewNRGBA(image.Rect(0, 0, e.size, e.size))
	e.RenderActiveCutState(mask, paper)
	cx, cy := int(e.center.X), int(e.center.Y)
	for y := cy - 60; y < cy-40; y++ {
		for x := cx; x < cx+12; x++ {
			mask.SetNRGBA(x, y, color.NRGBA{})
		}
	}
	return mask
}

func TestUnfoldedSymmetry(t *testing.T) {
	e := newEngine(t, 200, 5)
	img := e.ApplyCutAndUnfold(asymmetricCut(e), paper)

	if got := reconstruction.RotationalSymmetry(img, 2*math.Pi/5); got < 0.9 {
		t.Errorf("Expected 5-fold rotational symmetry, correlation %f", got)
	}
	// wedge boundaries are mirror lines; for N=5 one of them is horizontal
	for _, axis := range []float64{0, -2 * math.Pi / 5} {
		if got := reconstruction.ReflectionSymmetry(img, axis); got < 0.9 {
			t.Errorf("Expected mirror symmetry about %f rad, correlation %f", axis, got)
		}
	}
	// the notch breaks symmetry about the wedge's own centre line
	if got := reconstruction.ReflectionSymmetry(img, math.Pi/2); got > 0.99 {
		t.Errorf("Expected the vertical axis to be asymmetric, correlation %f", got)
	}
}

func TestUnfoldThreshold(t *testing.T) {
	e := newEngine(t, 100, 4)
	mask := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	e.RenderActiveCutState(mask, paper)
	for i := 3; i < len(mask.Pix); i += 4 {
		if mask.Pix[i] != 0 {
			mask.Pix[i] = 10
		}
	}

	img := e.ApplyCutAndUnfold(mask, paper)
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			t.Fatal("Expected faint paper below the cut threshold to be dropped")
		}
	}
}

func TestCreaseOverlay(t *testing.T) {
	e := newEngine(t, 200, 5)

	overlay := e.GenerateCreaseOverlay(nil, paper)
	// the boundary at 0 rad runs along y = 100
	right := polar(e, 50, 0)
	if overlay.NRGBAAt(right.X, right.Y).A == 0 && overlay.NRGBAAt(right.X, right.Y-1).A == 0 {
		t.Errorf("Expected a crease line near %v", right)
	}
	// straight down is a wedge centre, not a boundary
	down := polar(e, 50, math.Pi/2)
	if a := overlay.NRGBAAt(down.X, down.Y).A; a != 0 {
		t.Errorf("Expected no crease at %v, alpha %d", down, a)
	}

	// with everything cut away no crease is visible
	overlay = e.GenerateCreaseOverlay(image.NewNRGBA(image.Rect(0, 0, 200, 200)), paper)
	for i := 3; i < len(overlay.Pix); i += 4 {
		if overlay.Pix[i] != 0 {
			t.Fatal("Expected creases hidden where no paper remains")
		}
	}
}
