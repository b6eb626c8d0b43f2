// Package convert turns a captured grid screenshot into the tri-tone
// (white, black, red) bitmaps accepted by e-paper panels.
package convert

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Palette indexes of a tri-tone image.
const (
	White uint8 = iota
	Black
	Red
)

// Palette is the colour table of images returned by Quantize.
var Palette = color.Palette{
	color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
	color.NRGBA{A: 0xFF},
	color.NRGBA{R: 0xFF, A: 0xFF},
}

// Fit scales src to exactly width x height. Aspect ratio is not preserved;
// the grid page is captured at the panel's ratio to begin with.
func Fit(src image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	if src.Bounds().Dx() == width && src.Bounds().Dy() == height {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// Quantize maps every pixel of src to the tri-tone palette.
//
// Classification (empirical):
//   - alpha < 128 → white
//   - luma Y = 0.299R + 0.587G + 0.114B below 64 → black
//   - R > 128 and R - max(G, B) > 32 → red
//   - anything else → white
func Quantize(src image.Image) *image.Paletted {
	b := src.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), Palette)

	for y := 0; y < b.Dy(); y++ {
		row := y * dst.Stride
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst.Pix[row+x] = classifyPixel(c)
		}
	}
	return dst
}

// Planes holds packed 1bpp ink planes. Rows are Stride bytes, MSB first;
// a cleared bit means ink, a set bit means paper.
type Planes struct {
	Width  int
	Height int
	Stride int
	Black  []byte
	Red    []byte
}

// Pack packs a tri-tone image into black and red planes.
//
//	byteIndex = y*Stride + x>>3
//	mask      = 0x80 >> (x & 7)
func Pack(img *image.Paletted) (Planes, error) {
	if len(img.Palette) < len(Palette) {
		return Planes{}, fmt.Errorf("convert: palette has %d colours, want %d", len(img.Palette), len(Palette))
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	p := Planes{
		Width:  w,
		Height: h,
		Stride: (w + 7) / 8,
	}
	p.Black = make([]byte, p.Stride*h)
	p.Red = make([]byte, p.Stride*h)

	// Start all white and clear the bits that need ink.
	for i := range p.Black {
		p.Black[i] = 0xFF
		p.Red[i] = 0xFF
	}

	for y := 0; y < h; y++ {
		rowOff := y * img.Stride
		for x := 0; x < w; x++ {
			i := y*p.Stride + x>>3
			mask := byte(0x80 >> (x & 7))

			switch img.Pix[rowOff+x] {
			case Black:
				p.Black[i] &^= mask
			case Red:
				p.Red[i] &^= mask
			}
		}
	}

	return p, nil
}

func classifyPixel(c color.NRGBA) uint8 {
	if c.A < 128 {
		return White
	}

	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	y := 0.299*r + 0.587*g + 0.114*b
	if y < 64 {
		return Black
	}

	if r > 128 && r-max(g, b) > 32 {
		return Red
	}
	return White
}
