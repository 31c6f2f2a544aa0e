package printing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/pexcode/qds-print-sdk/internal/domain/labeling"
	"github.com/pexcode/qds-print-sdk/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	defaultScale         = 1.0
)

// ChromedpConfig contains configuration for the chromedp render target
type ChromedpConfig struct {
	// Timeout bounds one document from Load to the end of Print
	Timeout time.Duration
	// RemoteURL is the DevTools websocket of a running Chrome (optional).
	// If empty, chromedp launches a browser per document.
	RemoteURL string
	// ExecPath overrides the Chrome binary lookup
	ExecPath string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	Scale     float64
	Logger    *zap.Logger
}

// ChromedpTarget is a RenderTarget backed by headless Chrome. Load writes
// the document into a fresh tab; Print turns that tab into a PDF and hands
// it to the DocumentStore.
type ChromedpTarget struct {
	config      ChromedpConfig
	store       DocumentStore
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc

	mu     sync.Mutex
	loaded *loadedDocument
	last   *StoreResult
}

type loadedDocument struct {
	ctx    context.Context
	cancel context.CancelFunc
	doc    *labeling.LabelDocument
	key    string
}

// NewChromedpTarget creates a render target that stores printed PDFs in store
func NewChromedpTarget(config *ChromedpConfig, store DocumentStore) (*ChromedpTarget, error) {
	if store == nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "document store is required", nil)
	}
	cfg := ChromedpConfig{}
	if config != nil {
		cfg = *config
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultChromeTimeout
	}
	if cfg.Scale <= 0 {
		cfg.Scale = defaultScale
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	t := &ChromedpTarget{
		config: cfg,
		store:  store,
		logger: cfg.Logger,
	}

	if cfg.RemoteURL != "" {
		t.allocCtx, t.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return t, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	t.allocCtx, t.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return t, nil
}

// Load opens a tab and writes doc into it. The tab must be reachable for
// Load to succeed; the returned channel then reports whether the document
// finished loading. Loading a new document discards one that was never
// printed.
func (t *ChromedpTarget) Load(ctx context.Context, doc *labeling.LabelDocument) (<-chan error, error) {
	if doc == nil || strings.TrimSpace(doc.HTML) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "document is empty", nil)
	}
	if !doc.PaperSize.IsValid() {
		return nil, NewRenderError(ErrCodeInvalidPaperSize, "invalid paper size: "+string(doc.PaperSize), nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "load cancelled", err)
	}

	tabCtx, tabCancel := chromedp.NewContext(t.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			t.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, t.config.Timeout)
	stop := context.AfterFunc(ctx, tabCancel)
	cancel := func() {
		stop()
		timeoutCancel()
		tabCancel()
	}

	if err := chromedp.Run(tabCtx, chromedp.Navigate("about:blank")); err != nil {
		cancel()
		if ctx.Err() != nil {
			return nil, NewRenderError(ErrCodeRenderFailed, "load cancelled", ctx.Err())
		}
		t.logger.Warn("chrome tab unavailable", zap.Error(err))
		return nil, NewRenderError(ErrCodeTargetUnavailable, "chrome is not reachable",
			fmt.Errorf("%w: %w", labeling.ErrRenderTargetUnavailable, err))
	}

	key := logger.GetJobID(ctx)
	if key == "" {
		key = uuid.New().String()
	}

	t.mu.Lock()
	previous := t.loaded
	t.loaded = &loadedDocument{ctx: tabCtx, cancel: cancel, doc: doc, key: key}
	t.mu.Unlock()
	if previous != nil {
		t.logger.Warn("discarding unprinted document", zap.String("key", previous.key))
		previous.cancel()
	}

	ready := make(chan error, 1)
	go func() {
		err := chromedp.Run(tabCtx,
			chromedp.ActionFunc(func(ctx context.Context) error {
				frameTree, err := page.GetFrameTree().Do(ctx)
				if err != nil {
					return err
				}
				return page.SetDocumentContent(frameTree.Frame.ID, doc.HTML).Do(ctx)
			}),
			chromedp.WaitReady("body", chromedp.ByQuery),
		)
		if err != nil {
			ready <- t.chromeError(tabCtx, "document load failed", err)
			return
		}
		t.logger.Debug("label document loaded", zap.String("key", key), zap.Int("labels", doc.BlockCount()))
		ready <- nil
	}()

	return ready, nil
}

// Print renders the loaded document to PDF and stores it under the job id
// the document was loaded with.
func (t *ChromedpTarget) Print(ctx context.Context) error {
	t.mu.Lock()
	loaded := t.loaded
	t.loaded = nil
	t.mu.Unlock()

	if loaded == nil {
		return NewRenderError(ErrCodeTargetNotLoaded, "no document loaded", nil)
	}
	defer loaded.cancel()

	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeRenderFailed, "print cancelled", err)
	}
	stop := context.AfterFunc(ctx, loaded.cancel)
	defer stop()

	startTime := time.Now()
	params := t.buildPrintParams(loaded.doc)

	var pdfData []byte
	err := chromedp.Run(loaded.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := page.PrintToPDF().
			WithPrintBackground(params.printBackground).
			WithPaperWidth(params.paperWidth).
			WithPaperHeight(params.paperHeight).
			WithMarginTop(params.marginTop).
			WithMarginRight(params.marginRight).
			WithMarginBottom(params.marginBottom).
			WithMarginLeft(params.marginLeft).
			WithScale(params.scale).
			WithLandscape(params.landscape).
			WithPreferCSSPageSize(true).
			Do(ctx)
		if err != nil {
			return err
		}
		pdfData = data
		return nil
	}))
	if err != nil {
		return t.chromeError(loaded.ctx, "print to PDF failed", err)
	}
	if len(pdfData) == 0 {
		return NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	result, err := t.store.Store(ctx, &StoreRequest{
		Key:       loaded.key,
		PrintedAt: loaded.doc.PrintedAt,
		PDFData:   pdfData,
	})
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.last = result
	t.mu.Unlock()

	t.logger.Info("label document printed",
		zap.String("key", loaded.key),
		zap.Int("labels", loaded.doc.BlockCount()),
		zap.Int("bytes", len(pdfData)),
		zap.String("url", result.URL),
		zap.Duration("duration", time.Since(startTime)))
	return nil
}

// LastResult returns where the most recent printed document was stored
func (t *ChromedpTarget) LastResult() *StoreResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Close discards any loaded document and shuts the browser allocator down
func (t *ChromedpTarget) Close() error {
	t.mu.Lock()
	loaded := t.loaded
	t.loaded = nil
	t.mu.Unlock()
	if loaded != nil {
		loaded.cancel()
	}
	if t.allocCancel != nil {
		t.allocCancel()
	}
	return nil
}

func (t *ChromedpTarget) chromeError(tabCtx context.Context, message string, err error) error {
	if errors.Is(tabCtx.Err(), context.DeadlineExceeded) {
		return NewRenderError(ErrCodeRenderTimeout,
			fmt.Sprintf("%s: timed out after %v", message, t.config.Timeout), err)
	}
	t.logger.Error(message, zap.Error(err))
	return NewRenderError(ErrCodeRenderFailed, message, err)
}

// printParams holds the parameters for PDF printing
type printParams struct {
	paperWidth      float64
	paperHeight     float64
	marginTop       float64
	marginRight     float64
	marginBottom    float64
	marginLeft      float64
	scale           float64
	landscape       bool
	printBackground bool
}

// buildPrintParams converts the document page setup to Chrome's inches
func (t *ChromedpTarget) buildPrintParams(doc *labeling.LabelDocument) *printParams {
	width, height := doc.PaperSize.Dimensions()
	return &printParams{
		paperWidth:      mmToInches(float64(width)),
		paperHeight:     mmToInches(float64(height)),
		marginTop:       mmToInches(float64(doc.Margins.Top)),
		marginRight:     mmToInches(float64(doc.Margins.Right)),
		marginBottom:    mmToInches(float64(doc.Margins.Bottom)),
		marginLeft:      mmToInches(float64(doc.Margins.Left)),
		scale:           t.config.Scale,
		landscape:       doc.Orientation == labeling.OrientationLandscape,
		printBackground: true,
	}
}

// mmToInches converts millimeters to inches
func mmToInches(mm float64) float64 {
	return mm / 25.4
}
