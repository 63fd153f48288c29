// Package engine ties the two fold strategies behind one capability
// interface.
package engine

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	"jianzhi/internal/logging"
	"jianzhi/internal/models"
	"jianzhi/pkg/fold"
	"jianzhi/pkg/radial"
)

// Engine is what a session needs from a fold strategy. The free-fold
// executor and the radial wedge engine both implement it.
type Engine interface {
	// Strategy tags the variant
	Strategy() models.Strategy

	// CanFold reports whether Fold(dir) would succeed, without mutating
	CanFold(dir models.Direction) bool

	// Fold applies dir and reports whether it did; false leaves the engine
	// unchanged
	Fold(dir models.Direction) bool

	// RenderFoldedState paints the current silhouette scaled to dst
	RenderFoldedState(dst draw.Image, paper color.Color)

	// RenderActiveCutState paints the drawable cut mask 1:1 into dst
	RenderActiveCutState(dst draw.Image, paper color.Color)

	// ApplyCutAndUnfold returns the unfolded artwork for a cut mask
	ApplyCutAndUnfold(mask image.Image, paper color.Color) *image.NRGBA

	// ApplyCutAndUnfoldInto draws the unfolded artwork into dst
	ApplyCutAndUnfoldInto(dst draw.Image, mask image.Image, paper color.Color)

	// GenerateCreaseOverlay returns the translucent crease lines aligned
	// with the unfolded artwork
	GenerateCreaseOverlay(mask image.Image, paper color.Color) *image.NRGBA
}

var (
	_ Engine = (*fold.Executor)(nil)
	_ Engine = (*radial.Engine)(nil)
)

// Params selects and configures a strategy.
type Params struct {
	// Strategy picks the free-fold or radial engine
	Strategy models.Strategy

	// Size is the sheet resolution in pixels
	Size int

	// Folds is the radial fold count N (Preset only)
	Folds int

	// RadiusFraction is the wedge radius over half the sheet (Preset only)
	RadiusFraction float64

	// CreaseTolerance is the crease marking distance (Custom only)
	CreaseTolerance float64

	// CutThreshold is the mask alpha below which paper counts as cut
	CutThreshold uint8
}

// New builds a fresh, unfolded engine for p.
func New(p Params) (Engine, error) {
	switch p.Strategy {
	case models.Custom:
		opts := []fold.Option{fold.WithCutThreshold(p.CutThreshold)}
		if p.CreaseTolerance > 0 {
			opts = append(opts, fold.WithCreaseTolerance(p.CreaseTolerance))
		}
		e, err := fold.New(p.Size, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating free-fold engine: %w", err)
		}
		return e, nil

	case models.Preset:
		e, err := radial.New(p.Size, p.Folds,
			radial.WithRadiusFraction(p.RadiusFraction),
			radial.WithCutThreshold(p.CutThreshold))
		if err != nil {
			return nil, fmt.Errorf("creating radial engine: %w", err)
		}
		return e, nil
	}
	return nil, fmt.Errorf("unknown strategy %v", p.Strategy)
}

// SetLogger configures the logger used by every engine package. By default
// nothing is logged; pass nil to restore that.
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}
