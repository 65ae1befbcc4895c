package render

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/matzehuels/labelprint/pkg/label"
	"github.com/matzehuels/labelprint/pkg/units"
)

// chromeCandidates are tried in order when no executable is configured.
var chromeCandidates = []string{
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"headless-shell",
}

// ChromeOptions configures the headless Chrome engine.
type ChromeOptions struct {
	// ExecPath overrides executable discovery.
	ExecPath string
	// NoSandbox is required when running as root or in containers.
	NoSandbox bool
}

// ChromeEngine prints markup through headless Chrome over the DevTools protocol.
type ChromeEngine struct {
	opts     ChromeOptions
	lookPath func(string) (string, error)
}

// NewChromeEngine returns a Chrome engine using opts.
func NewChromeEngine(opts ChromeOptions) *ChromeEngine {
	return &ChromeEngine{opts: opts, lookPath: exec.LookPath}
}

func (e *ChromeEngine) Name() string       { return EngineChrome }
func (e *ChromeEngine) Kind() label.Kind   { return label.KindMarkup }
func (e *ChromeEngine) Media() units.Media { return units.MediaTenths }

func (e *ChromeEngine) Hint() string {
	return installHint("chromium", "chromium", "chromium")
}

// executable resolves the browser binary.
func (e *ChromeEngine) executable() (string, bool) {
	if e.opts.ExecPath != "" {
		path, err := e.lookPath(e.opts.ExecPath)
		return path, err == nil
	}
	for _, name := range chromeCandidates {
		if path, err := e.lookPath(name); err == nil {
			return path, true
		}
	}
	return "", false
}

// Program returns the resolved browser path, or "chromium" when none is found.
func (e *ChromeEngine) Program() string {
	if path, ok := e.executable(); ok {
		return path
	}
	return "chromium"
}

// Installed reports whether a browser executable was found.
func (e *ChromeEngine) Installed() bool {
	_, ok := e.executable()
	return ok
}

// Render implements [Engine].
func (e *ChromeEngine) Render(ctx context.Context, job Job) error {
	execPath, ok := e.executable()
	if !ok {
		return &EngineError{Engine: EngineChrome, Outcome: OutcomeNotInstalled, Reason: "no Chrome or Chromium executable found on PATH"}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if e.opts.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(fileURL(job.Input.Path)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := printParams(job.Size).Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &EngineError{Engine: EngineChrome, Outcome: OutcomeRejected, Reason: err.Error()}
	}

	if err := os.WriteFile(job.Output, pdf, 0o644); err != nil {
		return &EngineError{Engine: EngineChrome, Outcome: OutcomeRejected, Reason: fmt.Sprintf("write pdf: %v", err)}
	}
	return nil
}

// printParams sizes the page in inches with no margins and a single page.
func printParams(size units.Size) *page.PrintToPDFParams {
	return page.PrintToPDF().
		WithPaperWidth(units.ToInches(size.WidthMM)).
		WithPaperHeight(units.ToInches(size.HeightMM)).
		WithMarginTop(0).
		WithMarginBottom(0).
		WithMarginLeft(0).
		WithMarginRight(0).
		WithPrintBackground(true).
		WithPreferCSSPageSize(false).
		WithPageRanges("1")
}

func fileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: abs}).String()
}

var _ Engine = (*ChromeEngine)(nil)
