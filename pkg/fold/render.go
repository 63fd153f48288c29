package fold

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"jianzhi/internal/models"
	"jianzhi/internal/raster"
)

// silhouette paints the occupied positions in paper colour on a new
// transparent sheet-sized image.
func (e *Executor) silhouette(paper color.Color) *image.NRGBA {
	n := e.grid.size
	img := image.NewNRGBA(image.Rect(0, 0, n, n))
	c := models.Opaque(paper)
	e.grid.EachSlot(func(x, y, slot int) {
		i := slot * 4
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = 0xFF
	})
	return img
}

// RenderFoldedState paints the current silhouette scaled to fill dst,
// without smoothing so individual sheet pixels stay visible.
func (e *Executor) RenderFoldedState(dst draw.Image, paper color.Color) {
	if dst == nil {
		return
	}
	src := e.silhouette(paper)
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
}

// RenderActiveCutState clears dst and paints the silhouette 1:1 in its
// top-left corner. This is the only area a cut can affect.
func (e *Executor) RenderActiveCutState(dst draw.Image, paper color.Color) {
	if dst == nil {
		return
	}
	raster.Clear(dst)
	c := models.Opaque(paper)
	e.grid.EachSlot(func(x, y, _ int) {
		raster.SetNRGBA(dst, x, y, c)
	})
}

// ApplyCutAndUnfold removes every layer under the cut pixels of mask and
// returns the unfolded sheet.
func (e *Executor) ApplyCutAndUnfold(mask image.Image, paper color.Color) *image.NRGBA {
	e.recon.Apply(mask, e.grid)
	return e.recon.Image(paper)
}

// ApplyCutAndUnfoldInto is ApplyCutAndUnfold drawing into a caller-owned
// surface instead of allocating.
func (e *Executor) ApplyCutAndUnfoldInto(dst draw.Image, mask image.Image, paper color.Color) {
	e.recon.Apply(mask, e.grid)
	e.recon.RenderInto(dst, paper)
}

// GenerateCreaseOverlay renders the crease lines of every fold so far,
// hidden where paper has been cut away. A non-nil mask is applied first;
// with a nil mask the result of the latest cut is used.
func (e *Executor) GenerateCreaseOverlay(mask image.Image, paper color.Color) *image.NRGBA {
	if mask != nil {
		e.recon.Apply(mask, e.grid)
	}
	return e.recon.CreaseOverlay(e, paper)
}
