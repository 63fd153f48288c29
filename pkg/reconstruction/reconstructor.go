package reconstruction

import (
	"image"
	"image/color"
	"image/draw"

	"jianzhi/internal/logging"
	"jianzhi/internal/models"
	"jianzhi/internal/raster"
)

const (
	// DefaultCutThreshold is the alpha below which a cut-mask pixel counts as
	// cut away
	DefaultCutThreshold = 100

	// CreaseAlpha is the opacity of crease pixels in the overlay
	CreaseAlpha = 160

	// CreaseDarken is the factor applied to the paper colour for creases
	CreaseDarken = 0.7
)

// LayerSource exposes the layered pixel grid of a folded sheet: which
// current positions are occupied and which origin pixels sit on each.
type LayerSource interface {
	// Size is the sheet resolution N; origin indices run over N*N
	Size() int

	// EachSlot calls fn for every occupied current position
	EachSlot(fn func(x, y, slot int))

	// EachOrigin calls fn for every origin index layered at slot
	EachOrigin(slot int, fn func(origin int))
}

// CreaseSource reports the creases recorded on origin pixels.
type CreaseSource interface {
	Creases(origin int) models.CreaseSet
}

// Params holds the reconstruction parameters.
type Params struct {
	// Size is the sheet resolution in pixels
	Size int

	// CutThreshold is the alpha below which a mask pixel is treated as cut.
	// Zero selects DefaultCutThreshold.
	CutThreshold uint8
}

// Reconstructor turns a cut mask drawn on the folded silhouette into the
// unfolded artwork. It owns the origin presence state: one flag per pixel
// of the flat sheet, reset at the start of every pass so that repeated
// reconstructions only ever reflect the latest mask.
type Reconstructor struct {
	params Params

	// present is true where paper remains, indexed by origin
	present []bool

	// removed counts origins cut away by the latest pass
	removed int
}

// NewReconstructor creates a reconstructor for a sheet of params.Size pixels
// with every origin present.
func NewReconstructor(params Params) *Reconstructor {
	if params.CutThreshold == 0 {
		params.CutThreshold = DefaultCutThreshold
	}
	r := &Reconstructor{
		params:  params,
		present: make([]bool, params.Size*params.Size),
	}
	r.reset()
	return r
}

func (r *Reconstructor) reset() {
	for i := range r.present {
		r.present[i] = true
	}
	r.removed = 0
}

// Apply resets the presence state and removes every origin layered under a
// cut pixel of mask. A nil mask leaves the whole sheet present. Mask pixels
// outside the mask's bounds count as paper.
func (r *Reconstructor) Apply(mask image.Image, layers LayerSource) {
	r.reset()
	if mask == nil || layers == nil {
		return
	}

	layers.EachSlot(func(x, y, slot int) {
		a, ok := raster.AlphaAt(mask, x, y)
		if !ok || a >= r.params.CutThreshold {
			return
		}
		layers.EachOrigin(slot, func(origin int) {
			if r.present[origin] {
				r.present[origin] = false
				r.removed++
			}
		})
	})

	logging.Logger().Debug("cut applied",
		"size", r.params.Size,
		"removed", r.removed,
		"remaining", len(r.present)-r.removed)
}

// Present reports whether origin pixel idx survived the latest cut
func (r *Reconstructor) Present(idx int) bool {
	if idx < 0 || idx >= len(r.present) {
		return false
	}
	return r.present[idx]
}

// Removed returns how many origin pixels the latest cut removed
func (r *Reconstructor) Removed() int { return r.removed }

// RenderInto paints the unfolded sheet into the top-left size x size area of
// dst: opaque paper where present, transparent where cut. A nil dst is a no-op.
func (r *Reconstructor) RenderInto(dst draw.Image, paper color.Color) {
	if dst == nil {
		return
	}
	c := models.Opaque(paper)
	n := r.params.Size
	for idx, ok := range r.present {
		px := c
		if !ok {
			px = color.NRGBA{}
		}
		raster.SetNRGBA(dst, idx%n, idx/n, px)
	}
}

// Image renders the unfolded sheet to a new image.
func (r *Reconstructor) Image(paper color.Color) *image.NRGBA {
	n := r.params.Size
	img := image.NewNRGBA(image.Rect(0, 0, n, n))
	c := models.Opaque(paper)
	for idx, ok := range r.present {
		if !ok {
			continue
		}
		i := idx * 4
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = 0xFF
	}
	return img
}

// CreaseOverlay renders every recorded crease on paper that survived the
// latest cut as a translucent darkened paper pixel.
func (r *Reconstructor) CreaseOverlay(creases CreaseSource, paper color.Color) *image.NRGBA {
	n := r.params.Size
	img := image.NewNRGBA(image.Rect(0, 0, n, n))
	if creases == nil {
		return img
	}
	c := CreaseColor(paper)
	for idx, ok := range r.present {
		if !ok || creases.Creases(idx).Empty() {
			continue
		}
		i := idx * 4
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

// Darken scales the colour channels of c by factor, rounding down.
func Darken(c color.Color, factor float64) color.NRGBA {
	n := models.Opaque(c)
	return color.NRGBA{
		R: uint8(float64(n.R) * factor),
		G: uint8(float64(n.G) * factor),
		B: uint8(float64(n.B) * factor),
		A: n.A,
	}
}

// CreaseColor is the translucent darkened paper colour used for crease lines.
func CreaseColor(paper color.Color) color.NRGBA {
	c := Darken(paper, CreaseDarken)
	c.A = CreaseAlpha
	return c
}
