package report

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/elecmate/mmgen/internal/log"
)

// Renderer converts an HTML document into a PDF.
type Renderer interface {
	RenderPDF(ctx context.Context, html []byte) ([]byte, error)
}

// A4 paper size in inches.
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
)

// ChromeRendererConfig is the configuration of the headless Chrome renderer.
type ChromeRendererConfig struct {
	// ExecPath is the Chrome binary, when empty chromedp looks for it.
	ExecPath string
	Timeout  time.Duration
	Logger   log.Logger
}

func (c *ChromeRendererConfig) defaults() error {
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "report.ChromeRenderer"})
	return nil
}

// ChromeRenderer prints HTML to PDF with a headless Chrome driven by chromedp.
// Every render uses its own browser.
type ChromeRenderer struct {
	execPath string
	timeout  time.Duration
	logger   log.Logger
}

// NewChromeRenderer returns a new Chrome renderer.
func NewChromeRenderer(cfg ChromeRendererConfig) (*ChromeRenderer, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &ChromeRenderer{
		execPath: cfg.ExecPath,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
	}, nil
}

var _ Renderer = &ChromeRenderer{}

// RenderPDF renders the HTML document as an A4 PDF.
func (r *ChromeRenderer) RenderPDF(ctx context.Context, html []byte) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	start := time.Now()
	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("could not get frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4WidthInches).
				WithPaperHeight(a4HeightInches).
				Do(ctx)
			if err != nil {
				return fmt.Errorf("could not print to PDF: %w", err)
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome render failed: %w", err)
	}

	r.logger.Debugf("PDF rendered (%d bytes) in %s", len(pdf), time.Since(start))

	return pdf, nil
}
