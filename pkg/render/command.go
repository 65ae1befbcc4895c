package render

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matzehuels/labelprint/pkg/command"
	"github.com/matzehuels/labelprint/pkg/label"
	"github.com/matzehuels/labelprint/pkg/units"
)

// Definition is the static description of a command-line engine.
type Definition struct {
	Name    string
	Program string
	Kind    label.Kind
	Media   units.Media
	Hint    string

	// Args builds the program arguments. It must be a pure function of the job.
	Args func(Job) []string

	// Prepare optionally writes auxiliary files before the program runs.
	// The returned cleanup runs after the program exits.
	Prepare func(Job) (cleanup func(), err error)
}

// CommandEngine runs a [Definition] through a [command.Runner].
type CommandEngine struct {
	def    Definition
	runner command.Runner
}

// NewCommandEngine binds def to runner.
func NewCommandEngine(def Definition, runner command.Runner) *CommandEngine {
	return &CommandEngine{def: def, runner: runner}
}

func (e *CommandEngine) Name() string       { return e.def.Name }
func (e *CommandEngine) Kind() label.Kind   { return e.def.Kind }
func (e *CommandEngine) Media() units.Media { return e.def.Media }
func (e *CommandEngine) Hint() string       { return e.def.Hint }

// Program returns the executable the engine runs.
func (e *CommandEngine) Program() string { return e.def.Program }

// Installed reports whether the program is on PATH.
func (e *CommandEngine) Installed() bool { return command.Available(e.def.Program) }

// Render implements [Engine].
func (e *CommandEngine) Render(ctx context.Context, job Job) error {
	if e.def.Prepare != nil {
		cleanup, err := e.def.Prepare(job)
		if err != nil {
			return &EngineError{Engine: e.def.Name, Outcome: OutcomeRejected, Reason: fmt.Sprintf("prepare: %v", err)}
		}
		if cleanup != nil {
			defer cleanup()
		}
	}

	res, err := e.runner.Run(ctx, e.def.Program, e.def.Args(job)...)
	if err != nil {
		if errors.Is(err, command.ErrNotFound) {
			return &EngineError{Engine: e.def.Name, Outcome: OutcomeNotInstalled, Reason: e.def.Program + " not found on PATH"}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &EngineError{Engine: e.def.Name, Outcome: OutcomeRejected, Reason: err.Error()}
	}
	if !res.Success() {
		return &EngineError{Engine: e.def.Name, Outcome: OutcomeRejected, Reason: res.Diagnostic()}
	}
	return nil
}

// Ensure CommandEngine implements Engine.
var _ Engine = (*CommandEngine)(nil)

// =============================================================================
// Built-in command engines
// =============================================================================

// Engine names, also used as configuration keys.
const (
	EngineWkhtmltopdf = "wkhtmltopdf"
	EngineWeasyprint  = "weasyprint"
	EngineChrome      = "chrome"
	EngineImg2pdf     = "img2pdf"
	EngineMagick      = "magick"
	EngineConvert     = "convert"
)

// DefaultMarkupOrder and DefaultRasterOrder are the fallback orders used
// when the configuration does not override them.
var (
	DefaultMarkupOrder = []string{EngineWkhtmltopdf, EngineWeasyprint}
	DefaultRasterOrder = []string{EngineImg2pdf, EngineMagick, EngineConvert}
)

// Builtin returns the definitions of the command-line engines, keyed by name.
func Builtin() map[string]Definition {
	return map[string]Definition{
		EngineWkhtmltopdf: {
			Name:    EngineWkhtmltopdf,
			Program: "wkhtmltopdf",
			Kind:    label.KindMarkup,
			Media:   units.MediaTenths,
			Hint:    installHint("wkhtmltopdf", "wkhtmltopdf", "wkhtmltopdf"),
			Args:    wkhtmltopdfArgs,
		},
		EngineWeasyprint: {
			Name:    EngineWeasyprint,
			Program: "weasyprint",
			Kind:    label.KindMarkup,
			Media:   units.MediaTenths,
			Hint:    installHint("weasyprint", "weasyprint", "python-weasyprint"),
			Args:    weasyprintArgs,
			Prepare: writePageStylesheet,
		},
		EngineImg2pdf: {
			Name:    EngineImg2pdf,
			Program: "img2pdf",
			Kind:    label.KindRaster,
			Media:   units.MediaTenths,
			Hint:    installHint("python3-img2pdf", "img2pdf", "img2pdf"),
			Args:    img2pdfArgs,
		},
		EngineMagick: {
			Name:    EngineMagick,
			Program: "magick",
			Kind:    label.KindRaster,
			Media:   units.MediaPoints,
			Hint:    installHint("ImageMagick", "imagemagick", "imagemagick"),
			Args:    resizeArgs,
		},
		EngineConvert: {
			Name:    EngineConvert,
			Program: "convert",
			Kind:    label.KindRaster,
			Media:   units.MediaPoints,
			Hint:    installHint("ImageMagick", "imagemagick", "imagemagick"),
			Args:    resizeArgs,
		},
	}
}

func installHint(dnf, apt, pacman string) string {
	return fmt.Sprintf("  - Fedora: sudo dnf install %s\n  - Ubuntu/Debian: sudo apt install %s\n  - Arch: sudo pacman -S %s", dnf, apt, pacman)
}

func wkhtmltopdfArgs(job Job) []string {
	return []string{
		"--page-width", units.FormatMM(job.Size.WidthMM) + "mm",
		"--page-height", units.FormatMM(job.Size.HeightMM) + "mm",
		"--margin-top", "0",
		"--margin-bottom", "0",
		"--margin-left", "0",
		"--margin-right", "0",
		"--disable-smart-shrinking",
		"--quiet",
		job.Input.Path,
		job.Output,
	}
}

// pageStylesheetPath is where the weasyprint @page rules are written.
func pageStylesheetPath(job Job) string {
	return job.Input.Path + ".page.css"
}

// pageStylesheet sets the page box to the label size with no margins.
func pageStylesheet(size units.Size) string {
	return fmt.Sprintf("@page { size: %smm %smm; margin: 0; }\nhtml, body { margin: 0; padding: 0; }\n",
		units.FormatMM(size.WidthMM), units.FormatMM(size.HeightMM))
}

func writePageStylesheet(job Job) (func(), error) {
	path := pageStylesheetPath(job)
	if err := os.WriteFile(path, []byte(pageStylesheet(job.Size)), 0o600); err != nil {
		return nil, err
	}
	return func() { os.Remove(path) }, nil
}

func weasyprintArgs(job Job) []string {
	return []string{
		job.Input.Path,
		job.Output,
		"--stylesheet", pageStylesheetPath(job),
	}
}

func img2pdfArgs(job Job) []string {
	return []string{
		"--imgsize", fmt.Sprintf("%ddpi", units.ReferenceDPI),
		"--pagesize", units.FormatMM(job.Size.WidthMM) + "mmx" + units.FormatMM(job.Size.HeightMM) + "mm",
		"--fit", "into",
		"--output", job.Output,
		job.Input.Path,
	}
}

// resizeArgs forces the image to the label's pixel size at the reference
// density, so the PDF page is exactly pixels/DPI inches.
func resizeArgs(job Job) []string {
	w, h := job.Size.Pixels()
	return []string{
		job.Input.Path,
		"-units", "PixelsPerInch",
		"-density", fmt.Sprintf("%d", units.ReferenceDPI),
		"-resize", fmt.Sprintf("%dx%d!", w, h),
		job.Output,
	}
}
