package capture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calgrid/internal/config"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "u", Password: "p"}

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, "http://127.0.0.1:8080/grid", opts.URL)
	assert.Equal(t, "./var/grid.png", opts.OutputPath)
	assert.Equal(t, "u", opts.Username)

	opts.Width, opts.Height = 0, 0
	require.NoError(t, opts.normalize())
	assert.Equal(t, DefaultWidth, opts.Width)
	assert.Equal(t, DefaultHeight, opts.Height)
	assert.Equal(t, DefaultTimeoutSec*time.Second, opts.Timeout)
}

func TestCapturePNG_RequiresTarget(t *testing.T) {
	err := CapturePNG(context.Background(), CaptureOptions{OutputPath: "x.png"})
	assert.ErrorContains(t, err, "URL is required")

	err = CapturePNG(context.Background(), CaptureOptions{URL: "http://localhost/grid"})
	assert.ErrorContains(t, err, "OutputPath is required")
}

func TestBasicAuthToken(t *testing.T) {
	assert.Equal(t, "dXNlcjpwYXNz", basicAuthToken("user", "pass"))
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessPanel(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	draw.Draw(src, src.Bounds(), image.White, image.Point{}, draw.Src)
	src.Set(0, 0, color.Black)
	shot := encodePNG(t, src)

	out := filepath.Join(t.TempDir(), "grid.png")

	same, err := processPanel(shot, out, PanelOptions{})
	require.NoError(t, err)
	assert.Equal(t, shot, same)

	got, err := processPanel(shot, out, PanelOptions{Planes: true})
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(got))
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), decoded.Bounds())

	black, err := os.ReadFile(strings.TrimSuffix(out, ".png") + ".black.bin")
	require.NoError(t, err)
	require.Len(t, black, 2*8)
	assert.Equal(t, byte(0x7F), black[0])

	red, err := os.ReadFile(strings.TrimSuffix(out, ".png") + ".red.bin")
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), red[0])

	scaled, err := processPanel(shot, out, PanelOptions{Width: 8, Height: 4})
	require.NoError(t, err)
	decoded, err = png.Decode(bytes.NewReader(scaled))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), decoded.Bounds())
}
