package models

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ErrUnknownDirection is returned when a fold direction name cannot be parsed
var ErrUnknownDirection = errors.New("unknown fold direction")

// Direction identifies one of the eight folds the free-fold engine supports.
// Edge folds bring one half of the sheet over the other; corner folds do the
// same across a diagonal.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
	TopLeft
	TopRight
	BottomLeft
	BottomRight
)

// Directions lists every fold direction in display order
var Directions = []Direction{Up, Down, Left, Right, TopLeft, TopRight, BottomLeft, BottomRight}

var directionNames = [...]string{"UP", "DOWN", "LEFT", "RIGHT", "TL", "TR", "BL", "BR"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return "Direction(" + strconv.Itoa(int(d)) + ")"
	}
	return directionNames[d]
}

// Diagonal reports whether d folds across a diagonal axis
func (d Direction) Diagonal() bool {
	return d >= TopLeft && d <= BottomRight
}

// Crease returns the crease type a fold in direction d leaves behind
func (d Direction) Crease() CreaseType {
	switch d {
	case Up, Down:
		return Horizontal
	case Left, Right:
		return Vertical
	case TopLeft, BottomRight:
		return DiagonalSum
	default:
		return DiagonalDiff
	}
}

// ParseDirection parses a direction name such as "UP" or "br" (case-insensitive)
func ParseDirection(s string) (Direction, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range directionNames {
		if n == name {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// ParseDirections parses a comma separated fold sequence like "UP,RIGHT,BR".
// An empty string yields an empty sequence.
func ParseDirections(s string) ([]Direction, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	dirs := make([]Direction, 0, len(parts))
	for _, p := range parts {
		d, err := ParseDirection(p)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, d)
	}
	return dirs, nil
}

// CreaseType is the orientation of a recorded fold line
type CreaseType uint8

const (
	// Horizontal creases come from UP/DOWN folds
	Horizontal CreaseType = 1 << iota
	// Vertical creases come from LEFT/RIGHT folds
	Vertical
	// DiagonalSum creases lie on x+y = c (TL/BR folds)
	DiagonalSum
	// DiagonalDiff creases lie on x-y = c (TR/BL folds)
	DiagonalDiff
)

func (c CreaseType) String() string {
	switch c {
	case Horizontal:
		return "H"
	case Vertical:
		return "V"
	case DiagonalSum:
		return "D1"
	case DiagonalDiff:
		return "D2"
	}
	return "CreaseType(" + strconv.Itoa(int(c)) + ")"
}

// CreaseSet accumulates every crease type recorded on one origin pixel.
// The zero value is an empty set.
type CreaseSet uint8

// With returns s with t added
func (s CreaseSet) With(t CreaseType) CreaseSet { return s | CreaseSet(t) }

// Has reports whether t has been recorded in s
func (s CreaseSet) Has(t CreaseType) bool { return s&CreaseSet(t) != 0 }

// Empty reports whether no crease has been recorded
func (s CreaseSet) Empty() bool { return s == 0 }

// Bounds is the axis-aligned box of occupied pixels in the folded sheet.
// Max coordinates are exclusive, so a flat sheet of size N is {0, N, 0, N}.
type Bounds struct {
	MinX, MaxX int
	MinY, MaxY int
}

// Width returns the number of occupied columns spanned by b
func (b Bounds) Width() int { return b.MaxX - b.MinX }

// Height returns the number of occupied rows spanned by b
func (b Bounds) Height() int { return b.MaxY - b.MinY }

// Empty reports whether b spans no pixels
func (b Bounds) Empty() bool { return b.MaxX <= b.MinX || b.MaxY <= b.MinY }

// Center returns the centre of b in pixel index coordinates. For the flat
// 500 pixel sheet this is (249.5, 249.5), the line between pixels 249 and 250.
func (b Bounds) Center() (cx, cy float64) {
	cx = float64(b.MinX+b.MaxX-1) / 2
	cy = float64(b.MinY+b.MaxY-1) / 2
	return cx, cy
}

// Strategy tags the fold engine variant a session is running
type Strategy int

const (
	// Custom is the free-fold layer-mapping engine
	Custom Strategy = iota
	// Preset is the radial N-fold wedge engine
	Preset
)

func (s Strategy) String() string {
	switch s {
	case Custom:
		return "custom"
	case Preset:
		return "preset"
	}
	return "Strategy(" + strconv.Itoa(int(s)) + ")"
}

// ParseStrategy parses "custom" or "preset"
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "custom", "":
		return Custom, nil
	case "preset", "radial":
		return Preset, nil
	}
	return 0, fmt.Errorf("unknown fold mode %q (must be custom or preset)", s)
}

// DefaultPaperColor is the red used when no valid paper colour is given
var DefaultPaperColor = color.NRGBA{R: 0xDC, G: 0x26, B: 0x26, A: 0xFF}

// ParsePaperColor parses a "#RRGGBB" (or "RRGGBB") hex colour. Anything else
// yields DefaultPaperColor and false.
func ParsePaperColor(s string) (color.NRGBA, bool) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return DefaultPaperColor, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return DefaultPaperColor, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, true
}

// Opaque converts any colour to a fully opaque NRGBA. A nil colour maps to
// DefaultPaperColor.
func Opaque(c color.Color) color.NRGBA {
	if c == nil {
		return DefaultPaperColor
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 0xFF
	return n
}
