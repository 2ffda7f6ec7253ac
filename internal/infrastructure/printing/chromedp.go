package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second

	// 80mm thermal roll; the page is tall enough that a receipt never breaks
	receiptPaperWidthMM  = 80.0
	receiptPaperHeightMM = 1000.0
	receiptMarginMM      = 2.0
)

// ChromedpConfig configures the headless Chrome renderer
type ChromedpConfig struct {
	// ExecPath is the Chrome binary; empty searches the usual locations
	ExecPath string
	// RemoteURL connects to a running browser's DevTools endpoint instead
	RemoteURL string
	Timeout   time.Duration
	// NoSandbox is required when Chrome runs as root inside a container
	NoSandbox bool
	Logger    *zap.Logger
}

// ChromedpRenderer prints receipts through the Chrome DevTools Protocol.
// Every render gets a fresh browser from the shared allocator.
type ChromedpRenderer struct {
	timeout     time.Duration
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer prepares the browser allocator. Chrome itself starts
// lazily on the first render.
func NewChromedpRenderer(cfg ChromedpConfig) *ChromedpRenderer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultChromeTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := &ChromedpRenderer{timeout: cfg.Timeout, logger: cfg.Logger}
	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return r
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), allocatorOptions(cfg)...)
	return r
}

func allocatorOptions(cfg ChromedpConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts
}

// Render prints html on receipt paper
func (r *ChromedpRenderer) Render(ctx context.Context, html []byte) ([]byte, error) {
	if len(html) == 0 {
		return nil, NewRenderError(ErrCodeInvalidHTML, "receipt HTML is empty", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx, chromedp.WithLogf(r.logger.Sugar().Debugf))
	defer browserCancel()
	// the browser must also stop when the caller's context ends
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	start := time.Now()
	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = receiptPrintParams().Do(ctx)
			return err
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout, fmt.Sprintf("receipt PDF timed out after %s", r.timeout), err)
		}
		return nil, NewRenderError(ErrCodeRenderFailed, "chrome failed to print receipt", err)
	}
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "chrome produced an empty PDF", nil)
	}

	r.logger.Debug("Receipt PDF rendered", zap.Int("bytes", len(pdf)), zap.Duration("duration", time.Since(start)))
	return pdf, nil
}

// receiptPrintParams prints on an 80mm roll; Chrome measures in inches
func receiptPrintParams() *page.PrintToPDFParams {
	margin := mmToInches(receiptMarginMM)
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(mmToInches(receiptPaperWidthMM)).
		WithPaperHeight(mmToInches(receiptPaperHeightMM)).
		WithMarginTop(margin).
		WithMarginBottom(margin).
		WithMarginLeft(margin).
		WithMarginRight(margin).
		WithPreferCSSPageSize(false)
}

// Close stops the browser
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)
