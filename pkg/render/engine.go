package render

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/labelprint/pkg/label"
	"github.com/matzehuels/labelprint/pkg/materialize"
	"github.com/matzehuels/labelprint/pkg/units"
)

// Job is one render request. Output is shared by every attempt.
type Job struct {
	Input  *materialize.Input
	Output string
	Size   units.Size
}

// Engine converts a materialized input into a PDF at job.Output.
//
// Render returns nil when the engine reports success; the chain verifies
// the output file itself. Failures are returned as *[EngineError] so the
// chain can tell missing engines from rejected input.
type Engine interface {
	Name() string
	Kind() label.Kind
	Media() units.Media
	Hint() string
	Render(ctx context.Context, job Job) error
}

// Outcome classifies one attempt.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeNotInstalled
	OutcomeRejected
)

// String returns a short description of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeNotInstalled:
		return "not installed"
	case OutcomeRejected:
		return "rejected"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// EngineError is a classified engine failure.
type EngineError struct {
	Engine  string
	Outcome Outcome
	Reason  string
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Engine, e.Outcome, e.Reason)
}

// Attempt is one entry of the attempt log.
type Attempt struct {
	Engine   string
	Outcome  Outcome
	Reason   string
	Duration time.Duration
}

// String formats the attempt as "engine: outcome[: reason]".
func (a Attempt) String() string {
	if a.Reason == "" {
		return a.Engine + ": " + a.Outcome.String()
	}
	return a.Engine + ": " + a.Outcome.String() + ": " + a.Reason
}
