// Package commandtest provides a recording fake of [command.Runner].
//
// Programs are scripted by name. Unscripted programs behave as if they were
// not installed, which mirrors a machine with none of the engines present:
//
//	r := commandtest.New()
//	r.Handle("img2pdf", func(c commandtest.Call) (command.Result, error) {
//	    return commandtest.WritePDF(c.Flag("--output"))
//	})
//	r.Fail("lpr", 1, "lpr: no such printer")
package commandtest

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/matzehuels/labelprint/pkg/command"
)

// Call records one invocation.
type Call struct {
	Name string
	Args []string
}

// Handler produces the outcome of a scripted program.
type Handler func(Call) (command.Result, error)

// Runner is a fake [command.Runner]. It is safe for concurrent use.
type Runner struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
}

// New creates a Runner with no programs installed.
func New() *Runner {
	return &Runner{handlers: make(map[string]Handler)}
}

// Handle scripts program name with h.
func (r *Runner) Handle(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Succeed scripts name to exit zero with the given stdout.
func (r *Runner) Succeed(name, stdout string) {
	r.Handle(name, func(Call) (command.Result, error) {
		return command.Result{Stdout: []byte(stdout)}, nil
	})
}

// Fail scripts name to exit with code and the given stderr.
func (r *Runner) Fail(name string, code int, stderr string) {
	r.Handle(name, func(Call) (command.Result, error) {
		return command.Result{ExitCode: code, Stderr: []byte(stderr)}, nil
	})
}

// Run implements [command.Runner].
func (r *Runner) Run(ctx context.Context, name string, args ...string) (command.Result, error) {
	r.mu.Lock()
	h, ok := r.handlers[name]
	r.mu.Unlock()

	if !ok {
		return command.Result{}, fmt.Errorf("%s: %w", name, command.ErrNotFound)
	}
	if err := ctx.Err(); err != nil {
		return command.Result{}, err
	}

	c := Call{Name: name, Args: slices.Clone(args)}
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
	return h(c)
}

// Calls returns every started invocation in order. Lookups of programs
// that are not installed are not recorded, since no process would start.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// CallsTo returns the recorded invocations of name.
func (r *Runner) CallsTo(name string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Flag returns the argument following flag in c, or "" if absent.
func (c Call) Flag(flag string) string {
	for i, a := range c.Args {
		if a == flag && i+1 < len(c.Args) {
			return c.Args[i+1]
		}
	}
	return ""
}

// Flags returns every argument following an occurrence of flag.
func (c Call) Flags(flag string) []string {
	var out []string
	for i, a := range c.Args {
		if a == flag && i+1 < len(c.Args) {
			out = append(out, c.Args[i+1])
		}
	}
	return out
}

// Last returns the final argument, or "" when there are none.
func (c Call) Last() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[len(c.Args)-1]
}

// WritePDF writes a minimal PDF stub to path and returns a successful
// result. Handlers use it to play an engine that produced its output.
func WritePDF(path string) (command.Result, error) {
	if err := os.WriteFile(path, []byte("%PDF-1.4\n%%EOF\n"), 0o644); err != nil {
		return command.Result{}, err
	}
	return command.Result{}, nil
}
