package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// readyExpr is true once every chart container on an exported page holds the
// canvas lightweight-charts draws into.
const readyExpr = `typeof LightweightCharts !== 'undefined' &&
	Array.from(document.querySelectorAll('.pane')).every((el) => el.querySelector('canvas') !== null)`

// Capturer screenshots HTML documents in a Chromium reached over CDP.
type Capturer struct {
	cdpURL  string
	timeout time.Duration
}

// NewCapturer returns a capturer bound to a CDP HTTP endpoint such as
// http://127.0.0.1:9220.
func NewCapturer(cdpURL string, timeout time.Duration) *Capturer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Capturer{cdpURL: cdpURL, timeout: timeout}
}

// Capture loads html into a fresh tab sized width x height, waits for the
// charts to draw and returns a PNG screenshot.
func (c *Capturer) Capture(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid viewport %dx%d", width, height)
	}
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, c.cdpURL)
	defer allocCancel()
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()
	runCtx, runCancel := context.WithTimeout(tabCtx, c.timeout)
	defer runCancel()

	start := time.Now()
	var shot []byte
	err := chromedp.Run(runCtx,
		emulation.SetDeviceMetricsOverride(int64(width), int64(height), 1, false),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.Poll(readyExpr, nil, chromedp.WithPollingInterval(100*time.Millisecond)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			shot, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithFromSurface(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("capture via %s: %w", c.cdpURL, err)
	}
	slog.Debug("browser capture done", "bytes", len(shot), "width", width, "height", height,
		"elapsed_ms", time.Since(start).Milliseconds())
	return shot, nil
}
