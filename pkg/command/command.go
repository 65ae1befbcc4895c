// Package command runs external programs and captures their output.
//
// Every renderer engine, the spooler and the printer enumerator go through
// the [Runner] interface, so tests can swap in the recording fake from
// [github.com/matzehuels/labelprint/pkg/command/commandtest] and never
// launch a real process.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// ErrNotFound is returned when the program is not installed (not on PATH).
var ErrNotFound = errors.New("program not found")

// Result is the outcome of a program that was started.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Success reports whether the program exited with status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Diagnostic returns trimmed stderr, or trimmed stdout when stderr is empty.
// Engines disagree on which stream carries their error text.
func (r Result) Diagnostic() string {
	if s := strings.TrimSpace(string(r.Stderr)); s != "" {
		return s
	}
	if s := strings.TrimSpace(string(r.Stdout)); s != "" {
		return s
	}
	return fmt.Sprintf("exit status %d", r.ExitCode)
}

// Runner starts a program and waits for it to exit.
//
// A non-zero exit status is not an error: it is reported in [Result].
// Run returns an error wrapping [ErrNotFound] when the program is not
// installed, and other errors when the program could not be started or
// ctx was cancelled.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct {
	Logger *log.Logger
}

// NewExecRunner creates an ExecRunner. A nil logger uses log.Default().
func NewExecRunner(logger *log.Logger) *ExecRunner {
	if logger == nil {
		logger = log.Default()
	}
	return &ExecRunner{Logger: logger}
}

// Run implements [Runner].
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	r.Logger.Debug("exec", "program", path, "args", args)

	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	res := Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("%s: %w", name, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		if errors.Is(err, exec.ErrNotFound) {
			return res, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return res, fmt.Errorf("run %s: %w", name, err)
	}
	return res, nil
}

// Available reports whether name resolves on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Ensure ExecRunner implements Runner.
var _ Runner = (*ExecRunner)(nil)
