package fold

import (
	"image"
	"image/color"
	"testing"

	"jianzhi/internal/models"
	"jianzhi/pkg/reconstruction"
)

var paper = models.DefaultPaperColor

func opaqueMask(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xFF
	}
	return img
}

func TestRenderActiveCutState(t *testing.T) {
	e := newExecutor(t, 4)
	mustFold(t, e, models.Up)

	dst := opaqueMask(4) // stale content must be cleared
	e.RenderActiveCutState(dst, paper)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := color.NRGBA{}
			if y < 2 {
				want = paper
			}
			if got := dst.NRGBAAt(x, y); got != want {
				t.Errorf("(%d,%d): expected %v, got %v", x, y, want, got)
			}
		}
	}
}

func TestRenderFoldedStateScales(t *testing.T) {
	e := newExecutor(t, 4)
	mustFold(t, e, models.Left)

	dst := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	e.RenderFoldedState(dst, paper)
	if got := dst.NRGBAAt(3, 7); got != paper {
		t.Errorf("Expected paper on the left half, got %v", got)
	}
	if got := dst.NRGBAAt(4, 0); got.A != 0 {
		t.Errorf("Expected the right half empty, got %v", got)
	}
}

func TestRenderNilTargets(t *testing.T) {
	e := newExecutor(t, 4)
	e.RenderFoldedState(nil, paper)
	e.RenderActiveCutState(nil, paper)
	e.ApplyCutAndUnfoldInto(nil, opaqueMask(4), paper)
}

func TestUnfoldWithoutFolds(t *testing.T) {
	e := newExecutor(t, 16)
	img := e.ApplyCutAndUnfold(opaqueMask(16), paper)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if img.NRGBAAt(x, y) != paper {
				t.Fatalf("Expected opaque paper at (%d,%d)", x, y)
			}
		}
	}
}

func TestCutThroughLayers(t *testing.T) {
	e := newExecutor(t, 4)
	mustFold(t, e, models.Up, models.Left)

	surface := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	e.RenderActiveCutState(surface, paper)
	surface.SetNRGBA(0, 0, color.NRGBA{}) // cut the corner of the folded square

	img := e.ApplyCutAndUnfold(surface, paper)
	for _, p := range []image.Point{{0, 0}, {3, 0}, {0, 3}, {3, 3}} {
		if a := img.NRGBAAt(p.X, p.Y).A; a != 0 {
			t.Errorf("Expected every corner cut, %v has alpha %d", p, a)
		}
	}
	if got := img.NRGBAAt(1, 1); got != paper {
		t.Errorf("Expected paper in the middle, got %v", got)
	}
}

func TestUnfoldUsesLatestMaskOnly(t *testing.T) {
	e := newExecutor(t, 4)
	cut := opaqueMask(4)
	cut.SetNRGBA(1, 1, color.NRGBA{})

	e.ApplyCutAndUnfold(cut, paper)
	img := e.ApplyCutAndUnfold(opaqueMask(4), paper)
	if got := img.NRGBAAt(1, 1); got != paper {
		t.Errorf("Expected the earlier cut to be forgotten, got %v", got)
	}

	img = e.ApplyCutAndUnfold(nil, paper)
	if got := img.NRGBAAt(1, 1); got != paper {
		t.Errorf("Expected a nil mask to leave the sheet whole, got %v", got)
	}
}

func TestCreaseOverlay(t *testing.T) {
	e := newExecutor(t, 4)
	mustFold(t, e, models.Up)

	crease := reconstruction.CreaseColor(paper)
	overlay := e.GenerateCreaseOverlay(nil, paper)
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			want := color.NRGBA{}
			if y == 1 || y == 2 {
				want = crease
			}
			if got := overlay.NRGBAAt(x, y); got != want {
				t.Errorf("(%d,%d): expected %v, got %v", x, y, want, got)
			}
		}
	}

	// cutting position (0,1) removes origins (0,1) and (0,2) and their creases
	cut := opaqueMask(4)
	cut.SetNRGBA(0, 1, color.NRGBA{})
	overlay = e.GenerateCreaseOverlay(cut, paper)
	if overlay.NRGBAAt(0, 1).A != 0 || overlay.NRGBAAt(0, 2).A != 0 {
		t.Error("Expected creases on cut paper to be hidden")
	}
	if overlay.NRGBAAt(1, 2) != crease {
		t.Error("Expected creases on remaining paper")
	}
}
