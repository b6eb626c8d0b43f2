package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"calgrid/internal/config"
	appLog "calgrid/internal/log"
)

// Default capture parameters for the grid page.
const (
	DefaultWidth      = 1280
	DefaultHeight     = 960
	DefaultTimeoutSec = 30
)

// ReadySelector matches the grid root once it has been rendered.
const ReadySelector = `[data-ready="true"]`

// CaptureOptions defines parameters for a Chromium-based screenshot capture.
type CaptureOptions struct {
	// URL to capture, e.g. "http://127.0.0.1:8080/grid".
	URL string

	// OutputPath is where the PNG screenshot will be written.
	OutputPath string

	// Width and Height are the viewport dimensions in pixels. If zero,
	// DefaultWidth / DefaultHeight are used.
	Width  int
	Height int

	// Timeout bounds the entire capture operation.
	Timeout time.Duration

	// Username and Password are sent as Basic Auth when set.
	Username string
	Password string

	// Panel converts the screenshot for an e-paper display.
	Panel PanelOptions
}

// OptionsFromConfig builds capture options from the configuration.
func OptionsFromConfig(cfg *config.Config) CaptureOptions {
	opts := CaptureOptions{
		URL:        cfg.Capture.URL,
		OutputPath: cfg.Capture.Output,
		Width:      cfg.Capture.Width,
		Height:     cfg.Capture.Height,
		Panel: PanelOptions{
			Width:  cfg.Capture.PanelWidth,
			Height: cfg.Capture.PanelHeight,
			Mono:   cfg.Capture.Mono,
			Planes: cfg.Capture.Planes,
		},
	}
	if cfg.BasicAuth != nil {
		opts.Username = cfg.BasicAuth.Username
		opts.Password = cfg.BasicAuth.Password
	}
	return opts
}

func (o *CaptureOptions) normalize() error {
	if o.URL == "" {
		return errors.New("capture: URL is required")
	}
	if o.OutputPath == "" {
		return errors.New("capture: OutputPath is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}
	return nil
}

// CapturePNG opens opts.URL in headless Chromium, waits for the grid root to
// report data-ready="true" and writes a full-page PNG to opts.OutputPath.
func CapturePNG(parentCtx context.Context, opts CaptureOptions) error {
	if err := opts.normalize(); err != nil {
		return err
	}

	// Create a new chromedp context.
	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	// Apply timeout to the entire capture sequence.
	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
	}
	if opts.Username != "" {
		tasks = append(tasks, basicAuthHeader(opts.Username, opts.Password))
	}
	tasks = append(tasks,
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(ReadySelector, chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	)

	start := time.Now()
	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil {
		return fmt.Errorf("capture: create output dir: %w", err)
	}
	png, err := processPanel(png, opts.OutputPath, opts.Panel)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}

	appLog.Info("grid captured",
		"output", opts.OutputPath,
		"bytes", len(png),
		"took", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
