// Package dispatch hands a finished PDF to its destination: a CUPS print
// queue through lpr, or the desktop's default viewer. It also lists the
// queues CUPS knows about.
//
// Nothing here re-renders or retries. A dispatch failure is reported with
// the spooler's own error text.
package dispatch

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/labelprint/pkg/command"
	errs "github.com/matzehuels/labelprint/pkg/errors"
	"github.com/matzehuels/labelprint/pkg/units"
)

// DefaultLpr is the spooler program.
const DefaultLpr = "lpr"

// cupsHint is appended when the spooler is not installed.
const cupsHint = "install the CUPS client tools (Fedora: cups-client, Ubuntu/Debian: cups-client, Arch: cups)"

// Printer submits PDFs to a named print queue.
type Printer struct {
	Runner  command.Runner
	Program string
	Logger  *log.Logger
}

// NewPrinter returns a Printer using lpr.
func NewPrinter(runner command.Runner, logger *log.Logger) *Printer {
	return &Printer{Runner: runner, Program: DefaultLpr, Logger: logger}
}

// MediaDescriptor builds the CUPS custom page size for size in the given unit,
// e.g. "Custom.620x1000" in tenths of a millimeter.
func MediaDescriptor(size units.Size, media units.Media) string {
	if media == units.MediaPoints {
		w, h := size.Points()
		return "Custom." + formatPoints(w) + "x" + formatPoints(h)
	}
	w, h := size.Tenths()
	return "Custom." + strconv.Itoa(w) + "x" + strconv.Itoa(h)
}

// formatPoints rounds to a tenth of a point and drops trailing zeros.
func formatPoints(pt float64) string {
	return strconv.FormatFloat(math.Round(pt*10)/10, 'f', -1, 64)
}

// Args returns the spooler arguments for one job. Scaling is disabled so
// the PDF page maps one to one onto the label stock.
func Args(pdf, name string, size units.Size, media units.Media) []string {
	return []string{
		"-P", name,
		"-o", "PageSize=" + MediaDescriptor(size, media),
		"-o", "fit-to-page=false",
		"-o", "scaling=100",
		"-o", "print-scaling=none",
		pdf,
	}
}

// Print submits pdf to the queue called name and returns "Printed to NAME".
func (p *Printer) Print(ctx context.Context, pdf, name string, size units.Size, media units.Media) (string, error) {
	if err := checkArtifact(pdf); err != nil {
		return "", err
	}

	logger := orDiscard(p.Logger)
	program := p.Program
	if program == "" {
		program = DefaultLpr
	}

	args := Args(pdf, name, size, media)
	logger.Debug("submitting print job", "printer", name, "media", args[3])

	res, err := p.Runner.Run(ctx, program, args...)
	if err != nil {
		if errors.Is(err, command.ErrNotFound) {
			return "", errs.Wrap(errs.ErrCodeDispatchFailed, err, "failed to execute %s; %s", program, cupsHint)
		}
		return "", errs.Wrap(errs.ErrCodeDispatchFailed, err, "failed to execute %s", program)
	}
	if !res.Success() {
		logger.Warn("print job rejected", "printer", name, "stdout", string(res.Stdout), "stderr", string(res.Stderr))
		return "", errs.New(errs.ErrCodeDispatchFailed, "failed to print: %s", res.Diagnostic())
	}

	logger.Info("printed label", "printer", name)
	return "Printed to " + name, nil
}

// checkArtifact verifies the PDF exists before anything is launched.
func checkArtifact(pdf string) error {
	fi, err := os.Stat(pdf)
	if err != nil || !fi.Mode().IsRegular() {
		return errs.New(errs.ErrCodeArtifactMissing, "PDF file does not exist at: %s", pdf)
	}
	return nil
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}
