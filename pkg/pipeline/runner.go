package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/labelprint/pkg/command"
	"github.com/matzehuels/labelprint/pkg/config"
	"github.com/matzehuels/labelprint/pkg/dispatch"
	errs "github.com/matzehuels/labelprint/pkg/errors"
	"github.com/matzehuels/labelprint/pkg/label"
	"github.com/matzehuels/labelprint/pkg/materialize"
	"github.com/matzehuels/labelprint/pkg/observability"
	"github.com/matzehuels/labelprint/pkg/output"
	"github.com/matzehuels/labelprint/pkg/render"
)

// Runner executes label jobs.
//
// The Runner holds no per-job state. Multiple goroutines can safely call
// Generate on the same Runner.
type Runner struct {
	Materializer materialize.Materializer
	Locator      output.Locator
	Chain        *render.Chain
	Printer      *dispatch.Printer
	Viewer       dispatch.Viewer
	Enumerator   *dispatch.Enumerator

	// Timeout bounds one Generate call. Zero means no limit.
	Timeout time.Duration

	Logger *log.Logger
}

// NewRunner wires a Runner from configuration. Every external program is
// started through runner; viewer opens PDFs for labels without a printer.
// A nil logger discards output.
func NewRunner(cfg config.Config, runner command.Runner, viewer dispatch.Viewer, logger *log.Logger) (*Runner, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engines, err := render.Resolve(cfg.EngineOrder(), render.Options{
		Runner: runner,
		Chrome: render.ChromeOptions{
			ExecPath:  cfg.Chrome.ExecPath,
			NoSandbox: cfg.Chrome.NoSandbox,
		},
	})
	if err != nil {
		return nil, err
	}

	printer := dispatch.NewPrinter(runner, logger)
	if cfg.Spool.Lpr != "" {
		printer.Program = cfg.Spool.Lpr
	}
	enumerator := dispatch.NewEnumerator(runner)
	if cfg.Spool.Lpstat != "" {
		enumerator.Program = cfg.Spool.Lpstat
	}

	return &Runner{
		Materializer: materialize.Materializer{Dir: cfg.TempDir},
		Locator: output.Locator{
			Dir:    cfg.TempDir,
			Prefix: cfg.OutputPrefix,
			Now:    output.MonotonicClock(time.Now),
		},
		Chain:      render.NewChain(engines, logger),
		Printer:    printer,
		Viewer:     viewer,
		Enumerator: enumerator,
		Timeout:    cfg.Timeout.Duration,
		Logger:     logger,
	}, nil
}

// job carries the per-call logger and identifiers.
type job struct {
	id     string
	logger *log.Logger
	hooks  observability.PipelineHooks
}

func (j *job) enter(ctx context.Context, s State) {
	j.logger.Debug("state", "state", s)
	j.hooks.OnStateChange(ctx, j.id, string(s))
}

func (j *job) fail(ctx context.Context, err error) error {
	j.enter(ctx, StateFailed)
	return err
}

// Generate renders spec to a PDF and sends it to its destination.
func (r *Runner) Generate(ctx context.Context, spec label.Spec) (*Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	id := uuid.NewString()
	j := &job{id: id, logger: r.Logger.With("job", id), hooks: observability.Pipeline()}
	j.enter(ctx, StateReceived)

	if err := spec.Validate(); err != nil {
		return nil, j.fail(ctx, err)
	}
	result := &Result{JobID: id, Destination: spec.Destination}

	// Stage 1: Materialize
	j.enter(ctx, StateMaterializing)
	start := time.Now()
	in, err := r.Materializer.Materialize(spec.Content)
	if err != nil {
		return nil, j.fail(ctx, err)
	}
	result.Stats.MaterializeTime = time.Since(start)
	j.logger.Debug("materialized input", "path", in.Path, "kind", in.Kind, "ext", in.Ext)
	if in.PixelWidth > 0 {
		r.checkPixels(j, in, spec)
	}

	// Stage 2: Render
	j.enter(ctx, StateRendering)
	start = time.Now()
	rendered, err := r.Chain.Render(ctx, render.Job{
		Input:  in,
		Output: r.Locator.Allocate(),
		Size:   spec.Size(),
	})
	result.Stats.RenderTime = time.Since(start)
	r.reportAttempts(ctx, j, rendered, err)
	r.removeInput(j, in)
	if err != nil {
		return nil, j.fail(ctx, fmt.Errorf("render: %w", err))
	}
	result.PDFPath = rendered.Output
	result.Engine = rendered.Engine
	result.Media = rendered.Media
	result.Attempts = rendered.Attempts

	// Stage 3: Dispatch
	j.enter(ctx, StateDispatching)
	start = time.Now()
	msg, err := r.dispatch(ctx, spec, rendered)
	result.Stats.DispatchTime = time.Since(start)
	j.hooks.OnDispatch(ctx, id, spec.Destination.String(), result.Stats.DispatchTime, err)
	if err != nil {
		j.logger.Warn("dispatch failed", "pdf", rendered.Output, "destination", spec.Destination)
		return nil, j.fail(ctx, fmt.Errorf("dispatch: %w", err))
	}
	result.Message = msg

	j.enter(ctx, StateDone)
	j.logger.Info("label done",
		"engine", result.Engine,
		"destination", spec.Destination,
		"duration", result.Stats.MaterializeTime+result.Stats.RenderTime+result.Stats.DispatchTime)
	return result, nil
}

func (r *Runner) dispatch(ctx context.Context, spec label.Spec, rendered *render.Result) (string, error) {
	switch d := spec.Destination.(type) {
	case label.Printer:
		return r.Printer.Print(ctx, rendered.Output, d.Name, spec.Size(), rendered.Media)
	case label.ViewDefault:
		if r.Viewer == nil {
			return "", errs.New(errs.ErrCodeDispatchFailed, "no viewer configured")
		}
		return dispatch.View(ctx, r.Viewer, rendered.Output)
	default:
		return "", errs.New(errs.ErrCodeInternal, "unknown destination %T", spec.Destination)
	}
}

func (r *Runner) reportAttempts(ctx context.Context, j *job, rendered *render.Result, err error) {
	var attempts []render.Attempt
	var ex *render.ExhaustedError
	switch {
	case rendered != nil:
		attempts = rendered.Attempts
	case errors.As(err, &ex):
		attempts = ex.Attempts
	}
	for _, a := range attempts {
		j.hooks.OnAttempt(ctx, j.id, a.Engine, a.Outcome.String(), a.Duration)
	}
}

// checkPixels warns when a raster label was not drawn at the reference
// density; engines will scale it to the physical size anyway.
func (r *Runner) checkPixels(j *job, in *materialize.Input, spec label.Spec) {
	w, h := spec.Size().Pixels()
	if in.PixelWidth != w || in.PixelHeight != h {
		j.logger.Debug("raster size differs from label size at reference DPI",
			"image", fmt.Sprintf("%dx%d", in.PixelWidth, in.PixelHeight),
			"label", fmt.Sprintf("%dx%d", w, h))
	}
}

func (r *Runner) removeInput(j *job, in *materialize.Input) {
	if err := in.Remove(); err != nil {
		j.logger.Warn("failed to remove input", "path", in.Path, "err", err)
	}
}

// Printers lists the print queues known to the spooler.
func (r *Runner) Printers(ctx context.Context) ([]string, error) {
	return r.Enumerator.List(ctx)
}

// DefaultPrinter returns the spooler's default queue, or "" if none.
func (r *Runner) DefaultPrinter(ctx context.Context) (string, error) {
	return r.Enumerator.Default(ctx)
}
