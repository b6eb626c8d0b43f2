package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"calgrid/internal/convert"
	appLog "calgrid/internal/log"
)

// PanelOptions post-processes a screenshot for an e-paper panel.
type PanelOptions struct {
	// Width and Height scale the image; zero keeps its size.
	Width  int
	Height int
	// Mono quantizes to white, black and red.
	Mono bool
	// Planes writes packed 1bpp planes next to the PNG. It implies Mono.
	Planes bool
}

func (p PanelOptions) enabled() bool {
	return p.Mono || p.Planes || (p.Width > 0 && p.Height > 0)
}

// processPanel applies p to a PNG screenshot and returns the PNG to write.
// With Planes set it also writes <base>.black.bin and <base>.red.bin.
func processPanel(shot []byte, outputPath string, p PanelOptions) ([]byte, error) {
	if !p.enabled() {
		return shot, nil
	}

	src, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("capture: decode screenshot: %w", err)
	}

	var img image.Image = src
	if p.Width > 0 && p.Height > 0 {
		img = convert.Fit(src, p.Width, p.Height)
	}

	if p.Mono || p.Planes {
		q := convert.Quantize(img)
		img = q

		if p.Planes {
			planes, err := convert.Pack(q)
			if err != nil {
				return nil, err
			}
			base := strings.TrimSuffix(outputPath, ".png")
			if err := os.WriteFile(base+".black.bin", planes.Black, 0o644); err != nil {
				return nil, fmt.Errorf("capture: write black plane: %w", err)
			}
			if err := os.WriteFile(base+".red.bin", planes.Red, 0o644); err != nil {
				return nil, fmt.Errorf("capture: write red plane: %w", err)
			}
			appLog.Debug("panel planes written", "base", base, "stride", planes.Stride, "height", planes.Height)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("capture: encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
