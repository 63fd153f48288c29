// Package cleanup keeps a cut surface physically plausible: after every cut
// only the largest connected piece of paper survives.
package cleanup

import (
	"image"
	"image/color"
	"image/draw"

	"jianzhi/internal/logging"
	"jianzhi/internal/raster"
)

// PaperThreshold is the alpha above which a surface pixel counts as paper
const PaperThreshold = 20

// Result describes what a filter pass found and erased.
type Result struct {
	// Components is the number of 4-connected paper regions found
	Components int

	// Kept is the pixel count of the surviving region
	Kept int

	// Removed is the number of pixels erased from the other regions
	Removed int
}

// Changed reports whether the pass erased anything
func (r Result) Changed() bool { return r.Removed > 0 }

// Labels is a connected-component labelling of a surface. Label 0 marks
// background; region k has label k and Sizes[k-1] pixels.
type Labels struct {
	Width, Height int
	Label         []int32
	Sizes         []int
}

// Largest returns the label of the biggest region, the first one found on
// ties, or 0 when there is no paper at all.
func (l Labels) Largest() int32 {
	best, bestSize := int32(0), 0
	for i, n := range l.Sizes {
		if n > bestSize {
			best, bestSize = int32(i+1), n
		}
	}
	return best
}

// Label finds the 4-connected regions of pixels with alpha above threshold.
// The flood fill runs on an explicit queue so stack depth stays constant on
// large sheets.
func Label(img image.Image, threshold uint8) Labels {
	alpha, w, h := raster.AlphaPlane(img)
	labels := Labels{
		Width:  w,
		Height: h,
		Label:  make([]int32, w*h),
	}

	total := w * h
	queue := make([]int, 0, 1024)
	var label int32
	count := 0
	visit := func(n int) {
		if labels.Label[n] == 0 && alpha[n] > threshold {
			labels.Label[n] = label
			queue = append(queue, n)
			count++
		}
	}

	for start := 0; start < total; start++ {
		if labels.Label[start] != 0 || alpha[start] <= threshold {
			continue
		}

		// Seed a new region and grow it breadth first
		label = int32(len(labels.Sizes) + 1)
		labels.Label[start] = label
		queue = append(queue[:0], start)
		count = 1

		for head := 0; head < len(queue); head++ {
			idx := queue[head]
			x := idx % w
			if x < w-1 {
				visit(idx + 1)
			}
			if x > 0 {
				visit(idx - 1)
			}
			if idx+w < total {
				visit(idx + w)
			}
			if idx-w >= 0 {
				visit(idx - w)
			}
		}
		labels.Sizes = append(labels.Sizes, count)
	}
	return labels
}

// RemoveDisconnected erases every paper region of img except the largest,
// using PaperThreshold. Surfaces with fewer than two regions are untouched.
func RemoveDisconnected(img draw.Image) Result {
	return RemoveDisconnectedThreshold(img, PaperThreshold)
}

// RemoveDisconnectedThreshold is RemoveDisconnected with an explicit paper
// alpha threshold.
func RemoveDisconnectedThreshold(img draw.Image, threshold uint8) Result {
	if img == nil {
		return Result{}
	}
	labels := Label(img, threshold)
	res := Result{Components: len(labels.Sizes)}
	if res.Components == 0 {
		return res
	}

	keep := labels.Largest()
	res.Kept = labels.Sizes[keep-1]
	if res.Components == 1 {
		return res
	}

	for idx, l := range labels.Label {
		if l == 0 || l == keep {
			continue
		}
		raster.SetNRGBA(img, idx%labels.Width, idx/labels.Width, color.NRGBA{})
		res.Removed++
	}

	logging.Logger().Debug("disconnected paper removed",
		"components", res.Components,
		"kept", res.Kept,
		"removed", res.Removed)
	return res
}
