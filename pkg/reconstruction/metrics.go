package reconstruction

import (
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"jianzhi/internal/raster"
	"jianzhi/pkg/cleanup"
)

// Metrics summarises an unfolded artwork.
type Metrics struct {
	// Coverage is the fraction of the sheet still covered by paper,
	// from 0 (everything cut) to 1 (nothing cut)
	Coverage float64

	// MirrorSymmetry is the correlation between the paper mask and its
	// mirror image across the vertical centre line. 1 means perfectly
	// symmetric.
	MirrorSymmetry float64

	// Fragments is the number of separate pieces of paper
	Fragments int
}

// Evaluate computes Metrics for img. A pixel counts as paper when its alpha
// reaches DefaultCutThreshold.
func Evaluate(img image.Image) Metrics {
	field, _, _ := paperField(img)
	m := Metrics{
		MirrorSymmetry: ReflectionSymmetry(img, math.Pi/2),
		Fragments:      len(cleanup.Label(img, DefaultCutThreshold-1).Sizes),
	}
	if len(field) > 0 {
		m.Coverage = floats.Sum(field) / float64(len(field))
	}
	return m
}

// RotationalSymmetry correlates the paper mask of img with a copy rotated
// by angle radians about the image centre. Pixels rotated in from outside
// the image count as empty.
func RotationalSymmetry(img image.Image, angle float64) float64 {
	sin, cos := math.Sincos(angle)
	return compareTransformed(img, [4]float64{cos, -sin, sin, cos})
}

// ReflectionSymmetry correlates the paper mask of img with its mirror image
// across the line through the image centre at axisAngle radians (0 is the
// horizontal, pi/2 the vertical centre line).
func ReflectionSymmetry(img image.Image, axisAngle float64) float64 {
	sin, cos := math.Sincos(2 * axisAngle)
	return compareTransformed(img, [4]float64{cos, sin, sin, -cos})
}

// compareTransformed samples img at m applied to every pixel centre (about
// the image centre) and correlates the result with the untouched mask.
func compareTransformed(img image.Image, m [4]float64) float64 {
	field, w, h := paperField(img)
	if len(field) == 0 {
		return 1
	}
	moved := make([]float64, len(field))
	cx, cy := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			sx := int(math.Floor(m[0]*dx + m[1]*dy + cx))
			sy := int(math.Floor(m[2]*dx + m[3]*dy + cy))
			if sx < 0 || sy < 0 || sx >= w || sy >= h {
				continue
			}
			moved[y*w+x] = field[sy*w+sx]
		}
	}
	return correlate(field, moved)
}

func correlate(a, b []float64) float64 {
	if floats.Equal(a, b) {
		return 1
	}
	c := stat.Correlation(a, b, nil)
	if math.IsNaN(c) {
		return 0
	}
	return c
}

// paperField returns 1 for paper and 0 for cut pixels, row-major.
func paperField(img image.Image) (field []float64, w, h int) {
	if img == nil {
		return nil, 0, 0
	}
	alpha, w, h := raster.AlphaPlane(img)
	field = make([]float64, len(alpha))
	for i, a := range alpha {
		if a >= DefaultCutThreshold {
			field[i] = 1
		}
	}
	return field, w, h
}
