package convert

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPixel(t *testing.T) {
	cases := []struct {
		name string
		in   color.NRGBA
		want uint8
	}{
		{"transparent", color.NRGBA{A: 10}, White},
		{"black", color.NRGBA{R: 10, G: 10, B: 10, A: 255}, Black},
		{"red", color.NRGBA{R: 220, G: 30, B: 30, A: 255}, Red},
		{"white", color.NRGBA{R: 250, G: 250, B: 250, A: 255}, White},
		{"grey", color.NRGBA{R: 150, G: 150, B: 150, A: 255}, White},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyPixel(tc.in))
		})
	}
}

func TestQuantizeAndPack(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 2))
	for x := 0; x < 10; x++ {
		src.Set(x, 0, color.White)
		src.Set(x, 1, color.White)
	}
	src.Set(0, 0, color.Black)
	src.Set(9, 0, color.NRGBA{R: 255, A: 255})
	src.Set(1, 1, color.Black)

	q := Quantize(src)
	assert.Equal(t, Black, q.ColorIndexAt(0, 0))
	assert.Equal(t, Red, q.ColorIndexAt(9, 0))
	assert.Equal(t, White, q.ColorIndexAt(5, 0))

	p, err := Pack(q)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stride)
	assert.Equal(t, []byte{0x7F, 0xFF, 0xBF, 0xFF}, p.Black)
	assert.Equal(t, []byte{0xFF, 0xBF, 0xFF, 0xFF}, p.Red)
}

func TestPack_RejectsForeignPalette(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.White})
	_, err := Pack(img)
	assert.Error(t, err)
}

func TestFit(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	dst := Fit(src, 20, 10)
	assert.Equal(t, image.Rect(0, 0, 20, 10), dst.Bounds())

	same := Fit(src, 40, 20)
	assert.Equal(t, src.Bounds(), same.Bounds())
}
