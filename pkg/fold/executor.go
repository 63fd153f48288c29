// Package fold implements the free-fold engine: a layered pixel grid that
// records which pixels of the flat sheet coincide after an arbitrary
// sequence of edge and corner folds.
//
// A fold never loses paper. Pixels on the folded-over side are merged into
// the layer lists of their mirror partners, so a later cut through the
// folded silhouette removes paper from every layer at once and the unfolded
// sheet can be rebuilt exactly whatever the number and order of folds.
package fold

import (
	"fmt"
	"math"

	"jianzhi/internal/logging"
	"jianzhi/internal/models"
	"jianzhi/pkg/reconstruction"
)

const (
	// DefaultCreaseTolerance is how far, in pixels, a position may lie from
	// the fold axis and still be marked as a crease
	DefaultCreaseTolerance = 0.8

	// MaxSize bounds the sheet so origin indices fit the int32 arena
	MaxSize = 46340

	onAxisEpsilon  = 0.001
	integerEpsilon = 1e-6
)

// Option configures an Executor.
type Option func(*Executor)

// WithCreaseTolerance overrides DefaultCreaseTolerance.
func WithCreaseTolerance(t float64) Option {
	return func(e *Executor) {
		if t >= 0 {
			e.creaseTolerance = t
		}
	}
}

// WithCutThreshold sets the cut-mask alpha below which paper is cut away.
func WithCutThreshold(a uint8) Option {
	return func(e *Executor) { e.cutThreshold = a }
}

// Executor folds a square sheet step by step. It is not safe for
// concurrent use.
type Executor struct {
	grid    *Grid
	creases []models.CreaseSet
	history []models.Direction

	recon           *reconstruction.Reconstructor
	creaseTolerance float64
	cutThreshold    uint8
}

// New creates a flat sheet of size x size pixels.
func New(size int, opts ...Option) (*Executor, error) {
	if size <= 0 || size > MaxSize {
		return nil, fmt.Errorf("sheet size %d out of range (1..%d)", size, MaxSize)
	}
	e := &Executor{
		grid:            NewGrid(size),
		creases:         make([]models.CreaseSet, size*size),
		creaseTolerance: DefaultCreaseTolerance,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.recon = reconstruction.NewReconstructor(reconstruction.Params{
		Size:         size,
		CutThreshold: e.cutThreshold,
	})
	return e, nil
}

// Strategy identifies the engine variant
func (e *Executor) Strategy() models.Strategy { return models.Custom }

// Size returns the sheet resolution
func (e *Executor) Size() int { return e.grid.size }

// Bounds returns the bounding box of the folded silhouette
func (e *Executor) Bounds() models.Bounds { return e.grid.bounds }

// Grid exposes the layered pixel map
func (e *Executor) Grid() *Grid { return e.grid }

// Creases returns the crease types recorded on origin pixel idx
func (e *Executor) Creases(idx int) models.CreaseSet {
	if idx < 0 || idx >= len(e.creases) {
		return 0
	}
	return e.creases[idx]
}

// History returns the folds applied so far
func (e *Executor) History() []models.Direction {
	return append([]models.Direction(nil), e.history...)
}

// axis is the mirror line of one fold through the centre of the current
// bounds, expressed as val(x, y) == value.
type axis struct {
	dir   models.Direction
	value float64
}

func newAxis(dir models.Direction, b models.Bounds) axis {
	cx, cy := b.Center()
	a := axis{dir: dir}
	switch dir {
	case models.Up, models.Down:
		a.value = cy
	case models.Left, models.Right:
		a.value = cx
	case models.TopLeft, models.BottomRight:
		a.value = cx + cy
	default:
		a.value = cx - cy
	}
	return a
}

func (a axis) val(x, y int) float64 {
	switch a.dir {
	case models.Up, models.Down:
		return float64(y)
	case models.Left, models.Right:
		return float64(x)
	case models.TopLeft, models.BottomRight:
		return float64(x + y)
	default:
		return float64(x - y)
	}
}

// keeps reports whether a position with field value v stays in place.
func (a axis) keeps(v float64) bool {
	switch a.dir {
	case models.Up, models.Left, models.TopLeft, models.BottomLeft:
		return v < a.value
	default:
		return v > a.value
	}
}

func (a axis) reflect(x, y int) (float64, float64) {
	fx, fy := float64(x), float64(y)
	switch a.dir {
	case models.Up, models.Down:
		return fx, 2*a.value - fy
	case models.Left, models.Right:
		return 2*a.value - fx, fy
	case models.TopLeft, models.BottomRight:
		return a.value - fy, a.value - fx
	default:
		return a.value + fy, fx - a.value
	}
}

// partner returns the slot of the mirror image of (x, y). Mirror images that
// fall between pixel centres or off the sheet have no partner. Rounding them
// to the nearest pixel instead could land two layers on one slot and break
// the one-slot-per-origin partition, so a diagonal fold about a half-integer
// axis (only possible on a non-square region) is refused.
func (e *Executor) partner(a axis, x, y int) (int, bool) {
	rx, ry := a.reflect(x, y)
	ix, iy := math.Round(rx), math.Round(ry)
	if math.Abs(rx-ix) > integerEpsilon || math.Abs(ry-iy) > integerEpsilon {
		return noPixel, false
	}
	n := float64(e.grid.size)
	if ix < 0 || iy < 0 || ix >= n || iy >= n {
		return noPixel, false
	}
	return int(iy)*e.grid.size + int(ix), true
}

func validDirection(dir models.Direction) bool {
	return dir >= models.Up && dir <= models.BottomRight
}

// CanFold reports whether folding in direction dir is legal: every occupied
// position off the axis must have an occupied mirror partner and both sides
// of the axis must hold paper. It never mutates the sheet.
func (e *Executor) CanFold(dir models.Direction) bool {
	g := e.grid
	if g.occupied == 0 || !validDirection(dir) {
		return false
	}

	a := newAxis(dir, g.bounds)
	kept, folded := 0, 0

	// Every off-axis position needs an occupied mirror partner
	b := g.bounds
	for y := b.MinY; y < b.MaxY; y++ {
		for x := b.MinX; x < b.MaxX; x++ {
			if g.head[y*g.size+x] == noPixel {
				continue
			}
			v := a.val(x, y)
			if math.Abs(v-a.value) < onAxisEpsilon {
				continue
			}
			p, ok := e.partner(a, x, y)
			if !ok || g.head[p] == noPixel {
				return false
			}
			if a.keeps(v) {
				kept++
			} else {
				folded++
			}
		}
	}
	return kept > 0 && folded > 0
}

// Fold applies the fold in direction dir if CanFold allows it and reports
// whether it did. A rejected fold leaves the sheet untouched.
func (e *Executor) Fold(dir models.Direction) bool {
	if !e.CanFold(dir) {
		logging.Logger().Debug("fold rejected", "direction", dir.String(), "bounds", e.grid.bounds)
		return false
	}

	g := e.grid
	a := newAxis(dir, g.bounds)
	b := g.bounds
	crease := dir.Crease()

	// Mark creases on every layer close to the axis
	for y := b.MinY; y < b.MaxY; y++ {
		for x := b.MinX; x < b.MaxX; x++ {
			slot := y*g.size + x
			if g.head[slot] == noPixel || math.Abs(a.val(x, y)-a.value) > e.creaseTolerance {
				continue
			}
			g.EachOrigin(slot, func(o int) {
				e.creases[o] = e.creases[o].With(crease)
			})
		}
	}

	// Each kept position has exactly one partner on the folded side, so the
	// folded chains can be moved over in a single pass.
	for y := b.MinY; y < b.MaxY; y++ {
		for x := b.MinX; x < b.MaxX; x++ {
			slot := y*g.size + x
			if g.head[slot] == noPixel {
				continue
			}
			v := a.val(x, y)
			if math.Abs(v-a.value) < onAxisEpsilon || !a.keeps(v) {
				continue
			}
			p, _ := e.partner(a, x, y)
			g.merge(slot, p)
		}
	}

	// Shrink bounds to the kept side and record the fold
	g.updateBounds()
	e.history = append(e.history, dir)

	logging.Logger().Debug("fold applied",
		"direction", dir.String(),
		"bounds", g.bounds,
		"occupied", g.occupied)
	return true
}
