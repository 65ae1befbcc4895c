// Package pipeline runs one label from request to destination.
//
// A job moves through materialize → render → dispatch. The same
// [Runner] backs the CLI, the batch command and the HTTP API, so every
// entry point validates, names files and reports errors identically.
//
// # States
//
//	Received → Materializing → Rendering → Dispatching → Done
//	                 ↘              ↘              ↘
//	                             Failed
//
// Validation failures stop the job in Received before any file is written
// or any program is launched. Each transition is reported to
// [observability.Pipeline].
//
// # Usage
//
//	runner, err := pipeline.NewRunner(cfg, command.NewExecRunner(logger), dispatch.NewBrowserViewer(logger), logger)
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Generate(ctx, spec)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Message) // "Printed to BrotherQL" or the PDF path
//
// [observability.Pipeline]: github.com/matzehuels/labelprint/pkg/observability.Pipeline
package pipeline

import (
	"time"

	"github.com/matzehuels/labelprint/pkg/label"
	"github.com/matzehuels/labelprint/pkg/render"
	"github.com/matzehuels/labelprint/pkg/units"
)

// State is a job lifecycle state.
type State string

const (
	StateReceived      State = "received"
	StateMaterializing State = "materializing"
	StateRendering     State = "rendering"
	StateDispatching   State = "dispatching"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

// Result is the outcome of a successful job.
type Result struct {
	// JobID identifies the job in logs and hooks.
	JobID string

	// Message is "Printed to NAME" for printed labels and the PDF path
	// for viewed ones.
	Message string

	// PDFPath is the generated PDF. It is left on disk.
	PDFPath string

	// Engine names the renderer that produced the PDF.
	Engine string

	// Media is the unit the print media descriptor was written in.
	Media units.Media

	Destination label.Destination

	// Attempts is the renderer attempt log, including failed engines.
	Attempts []render.Attempt

	Stats Stats
}

// Stats contains per-stage timings.
type Stats struct {
	MaterializeTime time.Duration
	RenderTime      time.Duration
	DispatchTime    time.Duration
}
