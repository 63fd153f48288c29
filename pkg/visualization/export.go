// Package visualization encodes and exports finished artwork: PNG files,
// data URLs, scaled previews and a captioned contact sheet.
package visualization

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"jianzhi/internal/logging"
	"jianzhi/internal/raster"
)

// TimestampFormat is used in export file names
const TimestampFormat = "2006-01-02T15-04-05"

// Export kinds used in file names
const (
	KindResult  = "result"
	KindPattern = "pattern"
	KindSheet   = "sheet"
)

// FileName builds "jianzhi-<kind>-<name>-<timestamp>.png"
func FileName(kind, name string, t time.Time) string {
	return fmt.Sprintf("jianzhi-%s-%s-%s.png", kind, name, t.Format(TimestampFormat))
}

// EncodePNG writes img to w as PNG
func EncodePNG(w io.Writer, img image.Image) error {
	if img == nil {
		return fmt.Errorf("nothing to encode")
	}
	return png.Encode(w, img)
}

// PNGBytes returns img encoded as PNG
func PNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataURL returns img as a data:image/png;base64 URL
func DataURL(img image.Image) (string, error) {
	data, err := PNGBytes(img)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// SavePNG saves img as a PNG file
func SavePNG(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := EncodePNG(file, img); err != nil {
		return fmt.Errorf("error encoding %s: %w", filename, err)
	}
	return file.Close()
}

// Preview scales img to a size x size square without smoothing, so the
// pixels of a small sheet stay crisp.
func Preview(img image.Image, size int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, size, size))
	if img == nil || size <= 0 {
		return out
	}
	xdraw.NearestNeighbor.Scale(out, out.Bounds(), img, img.Bounds(), draw.Src, nil)
	return out
}

// Composite lays creases over art. Either may be nil.
func Composite(art, creases image.Image) *image.NRGBA {
	if art == nil {
		if creases == nil {
			return image.NewNRGBA(image.Rectangle{})
		}
		return raster.Clone(raster.ToNRGBA(creases))
	}
	out := raster.Clone(raster.ToNRGBA(art))
	if creases != nil {
		draw.Draw(out, out.Bounds(), creases, creases.Bounds().Min, draw.Over)
	}
	return out
}

// captionHeight is the strip below the tiles of a contact sheet
const captionHeight = 28

// ContactSheet places the unfolded artwork and the cut pattern side by side
// on a white card with caption underneath.
func ContactSheet(art, pattern image.Image, caption string) (*image.NRGBA, error) {
	if art == nil {
		return nil, fmt.Errorf("contact sheet needs an artwork")
	}
	// Size tiles to the artwork
	tile := art.Bounds().Dx()
	if h := art.Bounds().Dy(); h > tile {
		tile = h
	}
	pad := tile / 20
	if pad < 4 {
		pad = 4
	}

	tiles := 1
	if pattern != nil {
		tiles = 2
	}
	w := tiles*tile + (tiles+1)*pad
	h := tile + 2*pad + captionHeight

	// White background with a grey backdrop per tile
	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()

	dc.SetColor(color.NRGBA{R: 0xEE, G: 0xEE, B: 0xEE, A: 0xFF})
	for i := 0; i < tiles; i++ {
		dc.DrawRectangle(float64(pad+i*(tile+pad)), float64(pad), float64(tile), float64(tile))
	}
	dc.Fill()

	// Draw the artwork and the scaled cut pattern
	dc.DrawImage(art, pad, pad)
	if pattern != nil {
		dc.DrawImage(Preview(pattern, tile), 2*pad+tile, pad)
	}

	// Caption below the tiles
	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttfFont, &truetype.Options{
		Size:    14,
		DPI:     72,
		Hinting: font.HintingFull,
	}))
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(caption, float64(w)/2, float64(tile+2*pad)+captionHeight/2, 0.5, 0.5)

	return raster.ToNRGBA(dc.Image()), nil
}

// Artwork is one finished cut ready for export.
type Artwork struct {
	// Name identifies the fold setup, e.g. "5-fold" or "custom-UP-RIGHT"
	Name string

	// Result is the unfolded paper
	Result image.Image

	// Creases is the crease overlay aligned with Result
	Creases image.Image

	// Pattern is the cut surface on the folded sheet
	Pattern image.Image
}

// Exporter writes artwork to a directory.
type Exporter struct {
	// Directory receives the files; it is created on demand
	Directory string

	// SaveCreases composites the crease overlay onto the result
	SaveCreases bool

	// SavePattern also writes the cut pattern
	SavePattern bool

	// ContactSheet also writes a captioned contact sheet
	ContactSheet bool
}

// Export writes the files selected on e and returns their paths.
func (e *Exporter) Export(a Artwork, t time.Time) ([]string, error) {
	if a.Result == nil {
		return nil, fmt.Errorf("nothing to export")
	}
	dir := e.Directory
	if dir == "" {
		dir = "."
	}

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating output directory: %w", err)
	}

	result := a.Result
	if e.SaveCreases && a.Creases != nil {
		result = Composite(a.Result, a.Creases)
	}

	var paths []string
	save := func(kind string, img image.Image) error {
		path := filepath.Join(dir, FileName(kind, a.Name, t))
		if err := SavePNG(img, path); err != nil {
			return fmt.Errorf("error saving %s: %w", kind, err)
		}
		paths = append(paths, path)
		logging.Logger().Info("export written", "kind", kind, "path", path)
		return nil
	}

	if err := save(KindResult, result); err != nil {
		return paths, err
	}
	if e.SavePattern && a.Pattern != nil {
		if err := save(KindPattern, a.Pattern); err != nil {
			return paths, err
		}
	}
	// The contact sheet reuses the composited result
	if e.ContactSheet {
		var pattern image.Image
		if e.SavePattern {
			pattern = a.Pattern
		}
		sheet, err := ContactSheet(result, pattern, a.Name)
		if err != nil {
			return paths, err
		}
		if err := save(KindSheet, sheet); err != nil {
			return paths, err
		}
	}
	return paths, nil
}
