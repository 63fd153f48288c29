// Package session hosts one paper-cutting session: it owns exactly one fold
// engine at a time, the fold sequence applied to it and the cut surface with
// its undo history.
package session

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"jianzhi/internal/logging"
	"jianzhi/internal/models"
	"jianzhi/internal/raster"
	"jianzhi/pkg/cleanup"
	"jianzhi/pkg/engine"
	"jianzhi/pkg/reconstruction"
)

var (
	// ErrFoldLimit is returned once MaxFolds folds have been applied
	ErrFoldLimit = errors.New("fold limit reached")

	// ErrFoldRejected is returned when the engine refuses a fold
	ErrFoldRejected = errors.New("fold not possible for the current shape")

	// ErrNothingToUndo is returned by Undo on an empty history
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned by Redo on an empty redo stack
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Options configures a Session.
type Options struct {
	// Size is the sheet resolution in pixels
	Size int

	// Mode is the initial fold strategy
	Mode models.Strategy

	// MaxFolds caps the number of folds in custom mode; 0 means no limit
	MaxFolds int

	// PresetFolds is the fold count N used in preset mode
	PresetFolds int

	// RadiusFraction is the preset wedge radius over half the sheet
	RadiusFraction float64

	// CreaseTolerance is the free-fold crease marking distance
	CreaseTolerance float64

	// CutThreshold is the mask alpha below which paper counts as cut
	CutThreshold uint8

	// PaperThreshold is the alpha above which a surface pixel is paper when
	// looking for disconnected fragments
	PaperThreshold uint8

	// RemoveFragments runs the connected-component filter on every commit
	RemoveFragments bool

	// Paper is the paper colour
	Paper color.NRGBA
}

// Session is not safe for concurrent use.
type Session struct {
	opts Options

	mode   models.Strategy
	preset int
	engine engine.Engine
	folds  []models.Direction

	surface *image.NRGBA
	undo    []*image.NRGBA
	redo    []*image.NRGBA
}

// New starts a session with a flat sheet.
func New(opts Options) (*Session, error) {
	if opts.Paper.A == 0 {
		opts.Paper = models.DefaultPaperColor
	}
	if opts.PaperThreshold == 0 {
		opts.PaperThreshold = cleanup.PaperThreshold
	}
	s := &Session{
		opts:   opts,
		mode:   opts.Mode,
		preset: opts.PresetFolds,
	}
	if err := s.replaceEngine(); err != nil {
		return nil, err
	}
	return s, nil
}

// replaceEngine swaps in a brand-new engine for the current mode and preset
// and forgets everything that belonged to the old one.
func (s *Session) replaceEngine() error {
	e, err := engine.New(engine.Params{
		Strategy:        s.mode,
		Size:            s.opts.Size,
		Folds:           s.preset,
		RadiusFraction:  s.opts.RadiusFraction,
		CreaseTolerance: s.opts.CreaseTolerance,
		CutThreshold:    s.opts.CutThreshold,
	})
	if err != nil {
		return err
	}
	s.engine = e
	s.folds = nil
	s.resetSurface()
	logging.Logger().Info("engine replaced", "mode", s.mode.String(), "preset", s.preset, "size", s.opts.Size)
	return nil
}

func (s *Session) resetSurface() {
	s.surface = nil
	s.undo = nil
	s.redo = nil
}

// Engine returns the engine currently owned by the session
func (s *Session) Engine() engine.Engine { return s.engine }

// Mode returns the active fold strategy
func (s *Session) Mode() models.Strategy { return s.mode }

// Preset returns the radial fold count
func (s *Session) Preset() int { return s.preset }

// Size returns the sheet resolution
func (s *Session) Size() int { return s.opts.Size }

// Paper returns the paper colour
func (s *Session) Paper() color.NRGBA { return s.opts.Paper }

// SetPaper changes the paper colour. The cut surface is repainted in the new
// colour; cuts already made are kept.
func (s *Session) SetPaper(c color.Color) {
	s.opts.Paper = models.Opaque(c)
	if s.surface == nil {
		return
	}
	for i := 0; i < len(s.surface.Pix); i += 4 {
		if s.surface.Pix[i+3] == 0 {
			continue
		}
		s.surface.Pix[i+0] = s.opts.Paper.R
		s.surface.Pix[i+1] = s.opts.Paper.G
		s.surface.Pix[i+2] = s.opts.Paper.B
	}
}

// SetMode switches strategy, replacing the engine even when m is the
// current mode.
func (s *Session) SetMode(m models.Strategy) error {
	prev := s.mode
	s.mode = m
	if err := s.replaceEngine(); err != nil {
		s.mode = prev
		return err
	}
	return nil
}

// SetPreset selects the radial fold count. In preset mode this replaces the
// engine; in custom mode it only takes effect on the next switch.
func (s *Session) SetPreset(n int) error {
	prev := s.preset
	s.preset = n
	if s.mode != models.Preset {
		return nil
	}
	if err := s.replaceEngine(); err != nil {
		s.preset = prev
		return err
	}
	return nil
}

// Reset starts over with a flat sheet in the current mode.
func (s *Session) Reset() error {
	return s.replaceEngine()
}

// FoldSequence returns the folds applied since the last reset
func (s *Session) FoldSequence() []models.Direction {
	return append([]models.Direction(nil), s.folds...)
}

// CanFold reports whether dir can be applied now, taking the fold limit
// into account.
func (s *Session) CanFold(dir models.Direction) bool {
	if s.mode != models.Custom {
		return false
	}
	if s.opts.MaxFolds > 0 && len(s.folds) >= s.opts.MaxFolds {
		return false
	}
	return s.engine.CanFold(dir)
}

// Fold applies dir. Folding discards the current cut surface since it was
// drawn on the previous silhouette.
func (s *Session) Fold(dir models.Direction) error {
	if s.opts.MaxFolds > 0 && len(s.folds) >= s.opts.MaxFolds {
		return fmt.Errorf("%w (%d)", ErrFoldLimit, s.opts.MaxFolds)
	}
	if !s.engine.Fold(dir) {
		return fmt.Errorf("%w: %s", ErrFoldRejected, dir)
	}
	s.folds = append(s.folds, dir)
	s.resetSurface()
	return nil
}

// Surface returns a copy of the cut surface. Changes to it only take effect
// through Commit.
func (s *Session) Surface() *image.NRGBA {
	return raster.Clone(s.current())
}

// current is the live cut surface, created from the engine's active cut
// state on first use.
func (s *Session) current() *image.NRGBA {
	if s.surface == nil {
		n := s.opts.Size
		s.surface = image.NewNRGBA(image.Rect(0, 0, n, n))
		s.engine.RenderActiveCutState(s.surface, s.opts.Paper)
	}
	return s.surface
}

// Commit makes next the current cut surface after removing disconnected
// fragments from it (when enabled). The previous surface goes on the undo
// stack and the redo stack is cleared. The session keeps its own copy of
// next.
func (s *Session) Commit(next *image.NRGBA) cleanup.Result {
	prev := s.current()
	next = raster.Clone(next)

	var res cleanup.Result
	if s.opts.RemoveFragments {
		res = cleanup.RemoveDisconnectedThreshold(next, s.opts.PaperThreshold)
	}
	s.undo = append(s.undo, prev)
	s.redo = s.redo[:0]
	s.surface = next
	return res
}

// Undo restores the surface before the last commit.
func (s *Session) Undo() error {
	if len(s.undo) == 0 {
		return ErrNothingToUndo
	}
	last := len(s.undo) - 1
	s.redo = append(s.redo, s.surface)
	s.surface = s.undo[last]
	s.undo = s.undo[:last]
	return nil
}

// Redo re-applies the last undone commit.
func (s *Session) Redo() error {
	if len(s.redo) == 0 {
		return ErrNothingToRedo
	}
	last := len(s.redo) - 1
	s.undo = append(s.undo, s.surface)
	s.surface = s.redo[last]
	s.redo = s.redo[:last]
	return nil
}

// Draft returns a copy of the current surface for a new cut.
func (s *Session) Draft() *image.NRGBA {
	return raster.Clone(s.current())
}

// Cut erases the current surface wherever mask is cut away (alpha below the
// cut threshold) and commits the result. Mask pixels outside the mask's
// bounds leave the surface untouched.
func (s *Session) Cut(mask image.Image) cleanup.Result {
	threshold := s.opts.CutThreshold
	if threshold == 0 {
		threshold = reconstruction.DefaultCutThreshold
	}
	next := s.Draft()
	if mask != nil {
		n := s.opts.Size
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				if a, ok := raster.AlphaAt(mask, x, y); ok && a < threshold {
					raster.SetNRGBA(next, x, y, color.NRGBA{})
				}
			}
		}
	}
	return s.Commit(next)
}

// Result unfolds the current cut surface into the artwork and its crease
// overlay.
func (s *Session) Result() (art, creases *image.NRGBA) {
	mask := s.current()
	art = s.engine.ApplyCutAndUnfold(mask, s.opts.Paper)
	creases = s.engine.GenerateCreaseOverlay(mask, s.opts.Paper)
	return art, creases
}

// Name describes the artwork: "5-fold" in preset mode, "custom-UP-RIGHT"
// or "custom-blank" in custom mode.
func (s *Session) Name() string {
	if s.mode == models.Preset {
		return strconv.Itoa(s.preset) + "-fold"
	}
	if len(s.folds) == 0 {
		return "custom-blank"
	}
	names := make([]string, len(s.folds))
	for i, d := range s.folds {
		names[i] = d.String()
	}
	return "custom-" + strings.Join(names, "-")
}
