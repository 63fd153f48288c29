// Package raster holds small pixel helpers shared by the engines.
package raster

import (
	"image"
	"image/color"
	"image/draw"
)

// AlphaAt returns the 8-bit alpha of img at (x, y), with (0, 0) being the
// top-left corner of img's bounds. Points outside img report ok == false.
func AlphaAt(img image.Image, x, y int) (alpha uint8, ok bool) {
	b := img.Bounds()
	px, py := b.Min.X+x, b.Min.Y+y
	if px < b.Min.X || px >= b.Max.X || py < b.Min.Y || py >= b.Max.Y {
		return 0, false
	}
	switch m := img.(type) {
	case *image.NRGBA:
		return m.Pix[m.PixOffset(px, py)+3], true
	case *image.RGBA:
		return m.Pix[m.PixOffset(px, py)+3], true
	case *image.Alpha:
		return m.Pix[m.PixOffset(px, py)], true
	}
	_, _, _, a := img.At(px, py).RGBA()
	// a is 0-65535
	return uint8(a >> 8), true
}

// AlphaPlane copies the alpha channel of img into a row-major slice of
// width*height bytes.
func AlphaPlane(img image.Image) (plane []uint8, width, height int) {
	b := img.Bounds()
	width, height = b.Dx(), b.Dy()
	plane = make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			plane[y*width+x], _ = AlphaAt(img, x, y)
		}
	}
	return plane, width, height
}

// Clear sets every pixel of dst to fully transparent.
func Clear(dst draw.Image) {
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// SetNRGBA writes c at (x, y) relative to dst's bounds, ignoring points
// outside of them.
func SetNRGBA(dst draw.Image, x, y int, c color.NRGBA) {
	b := dst.Bounds()
	px, py := b.Min.X+x, b.Min.Y+y
	if px < b.Min.X || px >= b.Max.X || py < b.Min.Y || py >= b.Max.Y {
		return
	}
	if m, ok := dst.(*image.NRGBA); ok {
		i := m.PixOffset(px, py)
		m.Pix[i+0] = c.R
		m.Pix[i+1] = c.G
		m.Pix[i+2] = c.B
		m.Pix[i+3] = c.A
		return
	}
	dst.Set(px, py, c)
}

// ToNRGBA returns img as an *image.NRGBA anchored at the origin, copying
// unless img already is one.
func ToNRGBA(img image.Image) *image.NRGBA {
	if m, ok := img.(*image.NRGBA); ok && m.Bounds().Min == (image.Point{}) {
		return m
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Clone returns a deep copy of img.
func Clone(img *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Rect)
	copy(out.Pix, img.Pix)
	return out
}
