// Package radial implements the preset paper-snowflake engine: the sheet is
// treated as N mirror-folded wedges around its centre, so the user cuts a
// single wedge and the artwork is that wedge repeated 2N times with every
// other copy mirrored.
package radial

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/fogleman/gg"
	"github.com/jbeda/geom"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"jianzhi/internal/logging"
	"jianzhi/internal/models"
	"jianzhi/internal/raster"
	"jianzhi/pkg/reconstruction"
)

const (
	// MinFolds and MaxFolds bound the fold count N
	MinFolds = 3
	MaxFolds = 12

	// DefaultRadiusFraction is the wedge radius as a fraction of half the sheet
	DefaultRadiusFraction = 0.8

	// wedgeMargin is how far a pixel centre may lie outside the wedge and
	// still belong to it; it exceeds half a pixel diagonal
	wedgeMargin = 0.75
)

// Option configures an Engine.
type Option func(*Engine)

// WithRadiusFraction overrides DefaultRadiusFraction. Values outside (0, 1]
// are ignored.
func WithRadiusFraction(f float64) Option {
	return func(e *Engine) {
		if f > 0 && f <= 1 {
			e.radiusFraction = f
		}
	}
}

// WithCutThreshold sets the mask alpha below which paper counts as cut.
func WithCutThreshold(a uint8) Option {
	return func(e *Engine) {
		if a > 0 {
			e.cutThreshold = a
		}
	}
}

// Engine is the radial wedge strategy. It is immutable once built.
type Engine struct {
	size           int
	folds          int
	segments       int
	angle          float64
	radiusFraction float64
	radius         float64
	cutThreshold   uint8

	center geom.Coord

	// wedge is 0xFF on pixels that touch the cutting wedge
	wedge *image.Alpha
}

// New builds an engine for a sheet of size pixels folded into folds mirror
// axes.
func New(size, folds int, opts ...Option) (*Engine, error) {
	if size <= 0 {
		return nil, fmt.Errorf("sheet size must be positive, got %d", size)
	}
	if folds < MinFolds || folds > MaxFolds {
		return nil, fmt.Errorf("fold count %d out of range (%d..%d)", folds, MinFolds, MaxFolds)
	}

	e := &Engine{
		size:           size,
		folds:          folds,
		segments:       2 * folds,
		radiusFraction: DefaultRadiusFraction,
		cutThreshold:   reconstruction.DefaultCutThreshold,
		center:         geom.Coord{X: float64(size) / 2, Y: float64(size) / 2},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.angle = 2 * math.Pi / float64(e.segments)
	e.radius = float64(size) / 2 * e.radiusFraction
	e.wedge = e.wedgeMask()
	return e, nil
}

// Strategy identifies the engine variant
func (e *Engine) Strategy() models.Strategy { return models.Preset }

// Size returns the sheet resolution
func (e *Engine) Size() int { return e.size }

// Folds returns the fold count N
func (e *Engine) Folds() int { return e.folds }

// TotalSegments returns the number of mirrored wedge copies, 2N
func (e *Engine) TotalSegments() int { return e.segments }

// AnglePerSegment returns the wedge angle in radians
func (e *Engine) AnglePerSegment() float64 { return e.angle }

// Radius returns the wedge radius in pixels
func (e *Engine) Radius() float64 { return e.radius }

// CanFold is always false: the symmetry is fixed by N.
func (e *Engine) CanFold(models.Direction) bool { return false }

// Fold is a no-op and always reports false.
func (e *Engine) Fold(models.Direction) bool { return false }

// InWedge reports whether pixel (x, y) touches the cutting wedge: its centre
// lies within wedgeMargin of the sector that spans half a segment either
// side of straight up. Every point of the sector then falls inside a wedge
// pixel, so the rotated copies close up without seams.
func (e *Engine) InWedge(x, y int) bool {
	p := geom.Coord{X: float64(x) + 0.5, Y: float64(y) + 0.5}
	return e.sectorDistance(p.Minus(e.center)) <= wedgeMargin
}

// sectorDistance is the distance from v, relative to the centre, to the
// wedge sector. The sector is convex since a segment spans at most 60
// degrees.
func (e *Engine) sectorDistance(v geom.Coord) float64 {
	half := e.angle / 2
	// angle from "up", clockwise positive
	off := math.Atan2(v.X, -v.Y)
	if math.Abs(off) <= half {
		return math.Max(0, v.Magnitude()-e.radius)
	}

	// nearest point lies on the edge closest to v
	edge := half
	if off < 0 {
		edge = -half
	}
	u := geom.Coord{X: math.Sin(edge), Y: -math.Cos(edge)}
	t := math.Min(math.Max(v.X*u.X+v.Y*u.Y, 0), e.radius)
	return v.Minus(u.Times(t)).Magnitude()
}

func (e *Engine) wedgeMask() *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, e.size, e.size))
	bounds := e.wedgeBounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if e.InWedge(x, y) {
				mask.Pix[mask.PixOffset(x, y)] = 0xFF
			}
		}
	}
	return mask
}

// wedgeBounds is the pixel box that contains the wedge.
func (e *Engine) wedgeBounds() image.Rectangle {
	r := geom.Rect{Min: e.center, Max: e.center}
	steps := 16
	for i := 0; i <= steps; i++ {
		a := -math.Pi/2 - e.angle/2 + e.angle*float64(i)/float64(steps)
		r.ExpandToContainCoord(e.center.Plus(geom.Coord{X: math.Cos(a), Y: math.Sin(a)}.Times(e.radius)))
	}
	return image.Rect(
		int(math.Floor(r.Min.X))-1, int(math.Floor(r.Min.Y))-1,
		int(math.Ceil(r.Max.X))+1, int(math.Ceil(r.Max.Y))+1,
	).Intersect(image.Rect(0, 0, e.size, e.size))
}

// RenderActiveCutState clears dst and fills exactly the wedge in paper
// colour; it is the only region a cut can affect.
func (e *Engine) RenderActiveCutState(dst draw.Image, paper color.Color) {
	if dst == nil {
		return
	}
	raster.Clear(dst)
	c := models.Opaque(paper)
	b := dst.Bounds()
	draw.DrawMask(dst, image.Rect(b.Min.X, b.Min.Y, b.Min.X+e.size, b.Min.Y+e.size),
		&image.Uniform{C: c}, image.Point{}, e.wedge, image.Point{}, draw.Over)
}

// RenderFoldedState draws the wedge with a faint outline, scaled to dst.
func (e *Engine) RenderFoldedState(dst draw.Image, paper color.Color) {
	if dst == nil {
		return
	}
	dc := gg.NewContext(e.size, e.size)
	dc.Push()
	dc.Translate(e.center.X, e.center.Y)
	dc.Rotate(-math.Pi / 2)
	dc.MoveTo(0, 0)
	dc.DrawArc(0, 0, e.radius, -e.angle/2, e.angle/2)
	dc.ClosePath()
	dc.SetColor(models.Opaque(paper))
	dc.FillPreserve()
	dc.SetRGBA(0, 0, 0, 0.2)
	dc.SetLineWidth(1)
	dc.Stroke()
	dc.Pop()

	src := dc.Image()
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
}

// wedgeTexture is the part of mask inside the cutting wedge, anchored at
// the origin.
func (e *Engine) wedgeTexture(mask image.Image) *image.NRGBA {
	tex := image.NewNRGBA(image.Rect(0, 0, e.size, e.size))
	draw.DrawMask(tex, tex.Bounds(), mask, mask.Bounds().Min, e.wedge, image.Point{}, draw.Src)
	return tex
}

// segmentTransform maps the source wedge onto segment i: odd segments are
// mirrored horizontally, then every segment is rotated by i wedge angles
// about the centre.
func (e *Engine) segmentTransform(i int) f64.Aff3 {
	sin, cos := math.Sincos(float64(i) * e.angle)
	sx := 1.0
	if i%2 != 0 {
		sx = -1
	}
	a, b := sx*cos, -sin
	c, d := sx*sin, cos
	cx, cy := e.center.X, e.center.Y
	return f64.Aff3{
		a, b, cx - (a*cx + b*cy),
		c, d, cy - (c*cx + d*cy),
	}
}

// unfold composites the wedge texture of mask 2N times. Each output pixel
// inside the radius maps back to a point of the sector under one of the
// segment transforms, and that point always lands on a wedge pixel.
func (e *Engine) unfold(mask image.Image) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, e.size, e.size))
	tex := e.wedgeTexture(mask)
	for i := 0; i < e.segments; i++ {
		xdraw.NearestNeighbor.Transform(out, e.segmentTransform(i), tex, tex.Bounds(), draw.Over, nil)
	}
	return out
}

// ApplyCutAndUnfold returns the unfolded artwork for mask: opaque paper
// wherever the composited wedges hold paper, transparent elsewhere.
func (e *Engine) ApplyCutAndUnfold(mask image.Image, paper color.Color) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, e.size, e.size))
	e.ApplyCutAndUnfoldInto(out, mask, paper)
	return out
}

// ApplyCutAndUnfoldInto is ApplyCutAndUnfold drawing into a caller-owned
// surface. A nil mask is treated as the uncut wedge.
func (e *Engine) ApplyCutAndUnfoldInto(dst draw.Image, mask image.Image, paper color.Color) {
	if dst == nil {
		return
	}
	if mask == nil {
		mask = e.wedge
	}
	composite := e.unfold(mask)

	// Recolour: anything above the cut threshold becomes solid paper
	c := models.Opaque(paper)
	kept := 0
	for y := 0; y < e.size; y++ {
		for x := 0; x < e.size; x++ {
			a := composite.Pix[composite.PixOffset(x, y)+3]
			if a >= e.cutThreshold {
				raster.SetNRGBA(dst, x, y, c)
				kept++
			} else {
				raster.SetNRGBA(dst, x, y, color.NRGBA{})
			}
		}
	}
	logging.Logger().Debug("wedge unfolded", "segments", e.segments, "paper", kept)
}

// GenerateCreaseOverlay draws a line along every wedge boundary in
// darkened paper colour. With a mask the lines only show over paper that
// survived the cut.
func (e *Engine) GenerateCreaseOverlay(mask image.Image, paper color.Color) *image.NRGBA {
	dc := gg.NewContext(e.size, e.size)
	if mask != nil {
		composite := e.unfold(mask)
		clip := image.NewAlpha(composite.Bounds())
		for i := range clip.Pix {
			if composite.Pix[i*4+3] >= e.cutThreshold {
				clip.Pix[i] = 0xFF
			}
		}
		if err := dc.SetMask(clip); err != nil {
			logging.Logger().Warn("crease mask rejected", "err", err)
		}
	}

	// One line per segment boundary, from the centre to the rim
	dc.SetColor(reconstruction.CreaseColor(paper))
	dc.SetLineWidth(1)
	for i := 0; i < e.segments; i++ {
		a := -math.Pi/2 + e.angle/2 + float64(i)*e.angle
		end := e.center.Plus(geom.Coord{X: math.Cos(a), Y: math.Sin(a)}.Times(e.radius))
		dc.DrawLine(e.center.X, e.center.Y, end.X, end.Y)
		dc.Stroke()
	}
	return raster.ToNRGBA(dc.Image())
}
