package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/labelprint/pkg/command"
	errs "github.com/matzehuels/labelprint/pkg/errors"
	"github.com/matzehuels/labelprint/pkg/label"
	"github.com/matzehuels/labelprint/pkg/units"
)

// ReasonNoOutput is recorded when an engine exits cleanly without a PDF.
const ReasonNoOutput = "exited successfully but wrote no PDF"

// Result describes a successful render.
type Result struct {
	Output   string
	Engine   string
	Media    units.Media
	Attempts []Attempt
}

// Chain tries engines in order until one produces a PDF.
type Chain struct {
	Engines []Engine
	Logger  *log.Logger
}

// NewChain returns a chain over engines. A nil logger discards output.
func NewChain(engines []Engine, logger *log.Logger) *Chain {
	return &Chain{Engines: engines, Logger: logger}
}

func (c *Chain) logger() *log.Logger {
	if c.Logger == nil {
		return log.New(io.Discard)
	}
	return c.Logger
}

// Render runs the engines that accept job.Input.Kind in priority order.
// The first engine that leaves a non-empty file at job.Output wins.
// When every engine fails the error is an *[ExhaustedError].
//
// job.Output must not exist yet. A file already there belongs to someone
// else, so Render fails without touching it.
func (c *Chain) Render(ctx context.Context, job Job) (*Result, error) {
	logger := c.logger()
	kind := job.Input.Kind

	if _, err := os.Lstat(job.Output); err == nil {
		return nil, errs.New(errs.ErrCodeInternal, "output path already exists: %s", job.Output)
	}

	var (
		attempts []Attempt
		hints    []Hint
	)
	for _, eng := range c.Engines {
		if eng.Kind() != kind {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if len(attempts) > 0 {
			removeFile(job.Output)
		}
		start := time.Now()
		err := eng.Render(ctx, job)
		a := Attempt{Engine: eng.Name(), Duration: time.Since(start)}

		if err == nil {
			if hasOutput(job.Output) {
				a.Outcome = OutcomeSucceeded
				attempts = append(attempts, a)
				logger.Info("rendered label", "engine", eng.Name(), "output", job.Output, "took", a.Duration)
				return &Result{
					Output:   job.Output,
					Engine:   eng.Name(),
					Media:    eng.Media(),
					Attempts: attempts,
				}, nil
			}
			err = &EngineError{Engine: eng.Name(), Outcome: OutcomeRejected, Reason: ReasonNoOutput}
		}

		var ee *EngineError
		if !errors.As(err, &ee) {
			if ctx.Err() != nil {
				removeFile(job.Output)
				return nil, err
			}
			ee = &EngineError{Engine: eng.Name(), Outcome: OutcomeRejected, Reason: err.Error()}
		}
		a.Outcome, a.Reason = ee.Outcome, ee.Reason
		attempts = append(attempts, a)

		switch a.Outcome {
		case OutcomeNotInstalled:
			logger.Debug("engine not installed", "engine", eng.Name())
			hints = append(hints, Hint{Engine: eng.Name(), Text: eng.Hint()})
		default:
			logger.Warn("engine failed", "engine", eng.Name(), "reason", a.Reason)
			removeFile(job.Output)
		}
	}

	return nil, &ExhaustedError{Kind: kind, Attempts: attempts, Hints: hints}
}

// Hint is the install instruction for an engine that was not found.
type Hint struct {
	Engine string
	Text   string
}

// ExhaustedError is returned when no engine produced a PDF.
type ExhaustedError struct {
	Kind     label.Kind
	Attempts []Attempt
	Hints    []Hint
}

// AllUnavailable reports whether no engine for the kind is installed.
func (e *ExhaustedError) AllUnavailable() bool {
	for _, a := range e.Attempts {
		if a.Outcome != OutcomeNotInstalled {
			return false
		}
	}
	return true
}

// Error lists every attempt in order, then install hints.
func (e *ExhaustedError) Error() string {
	var b strings.Builder
	if len(e.Attempts) == 0 {
		fmt.Fprintf(&b, "no %s engine configured", e.Kind)
		return b.String()
	}
	fmt.Fprintf(&b, "no %s engine could render the label:", e.Kind)
	for _, a := range e.Attempts {
		b.WriteString("\n  ")
		b.WriteString(a.String())
	}
	if len(e.Hints) > 0 {
		b.WriteString("\ninstall one of:")
		for _, h := range e.Hints {
			fmt.Fprintf(&b, "\n  %s:\n%s", h.Engine, indent(h.Text, "  "))
		}
	}
	return b.String()
}

// Unwrap returns the coded error for the failure class.
func (e *ExhaustedError) Unwrap() error {
	code := errs.ErrCodeEngineRejected
	if e.AllUnavailable() {
		code = errs.ErrCodeEngineUnavailable
	}
	return &errs.Error{Code: code, Message: e.Error()}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func hasOutput(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular() && fi.Size() > 0
}

func removeFile(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}

// =============================================================================
// Engine resolution
// =============================================================================

// Options controls how engine names are resolved.
type Options struct {
	Runner command.Runner
	Chrome ChromeOptions
}

// Names returns every known engine name.
func Names() []string {
	return []string{EngineWkhtmltopdf, EngineWeasyprint, EngineChrome, EngineImg2pdf, EngineMagick, EngineConvert}
}

// KindOf returns the input kind the named engine accepts.
func KindOf(name string) (label.Kind, bool) {
	if name == EngineChrome {
		return label.KindMarkup, true
	}
	def, ok := Builtin()[name]
	return def.Kind, ok
}

// Lookup builds the named engine.
func Lookup(name string, opts Options) (Engine, error) {
	if name == EngineChrome {
		return NewChromeEngine(opts.Chrome), nil
	}
	def, ok := Builtin()[name]
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown engine %q", name)
	}
	return NewCommandEngine(def, opts.Runner), nil
}

// Resolve builds engines for names, keeping their order.
func Resolve(names []string, opts Options) ([]Engine, error) {
	engines := make([]Engine, 0, len(names))
	for _, name := range names {
		eng, err := Lookup(name, opts)
		if err != nil {
			return nil, err
		}
		engines = append(engines, eng)
	}
	return engines, nil
}
