package dispatch

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/pkg/browser"

	errs "github.com/matzehuels/labelprint/pkg/errors"
)

// Viewer opens a file in the desktop's default application.
type Viewer interface {
	Open(path string) error
}

// BrowserViewer opens files with the platform opener (xdg-open, open or
// rundll32).
type BrowserViewer struct{}

// NewBrowserViewer returns a viewer whose opener output goes to logger at
// debug level instead of the terminal.
func NewBrowserViewer(logger *log.Logger) *BrowserViewer {
	if logger != nil {
		w := logger.StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel}).Writer()
		browser.Stdout = w
		browser.Stderr = w
	}
	return &BrowserViewer{}
}

// Open implements [Viewer].
func (BrowserViewer) Open(path string) error {
	return browser.OpenFile(path)
}

// View opens pdf with viewer and returns the PDF path.
func View(ctx context.Context, viewer Viewer, pdf string) (string, error) {
	if err := checkArtifact(pdf); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := viewer.Open(pdf); err != nil {
		return "", errs.Wrap(errs.ErrCodeDispatchFailed, err, "failed to open PDF")
	}
	return pdf, nil
}

// ViewerFunc adapts a function to [Viewer].
type ViewerFunc func(path string) error

// Open implements [Viewer].
func (f ViewerFunc) Open(path string) error { return f(path) }
