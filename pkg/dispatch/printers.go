package dispatch

import (
	"context"
	"strings"

	"github.com/matzehuels/labelprint/pkg/command"
	errs "github.com/matzehuels/labelprint/pkg/errors"
)

// DefaultLpstat is the queue listing program.
const DefaultLpstat = "lpstat"

// Enumerator lists the print queues known to CUPS, including network and
// wireless destinations.
type Enumerator struct {
	Runner  command.Runner
	Program string
}

// NewEnumerator returns an Enumerator using lpstat.
func NewEnumerator(runner command.Runner) *Enumerator {
	return &Enumerator{Runner: runner, Program: DefaultLpstat}
}

func (e *Enumerator) program() string {
	if e.Program == "" {
		return DefaultLpstat
	}
	return e.Program
}

func (e *Enumerator) run(ctx context.Context, flag string) (string, error) {
	res, err := e.Runner.Run(ctx, e.program(), flag)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodePrintersUnavailable, err, "failed to execute %s", e.program())
	}
	if !res.Success() {
		return "", errs.New(errs.ErrCodePrintersUnavailable, "failed to get printer list: %s", res.Diagnostic())
	}
	return string(res.Stdout), nil
}

// List returns queue names in the order lpstat reports them. No queues
// yields an empty, non-nil slice.
func (e *Enumerator) List(ctx context.Context) ([]string, error) {
	out, err := e.run(ctx, "-e")
	if err != nil {
		return nil, err
	}
	return parseNames(out), nil
}

func parseNames(out string) []string {
	names := []string{}
	for _, line := range strings.Split(out, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}

const defaultPrefix = "system default destination:"

// Default returns the system default queue, or "" when none is set.
func (e *Enumerator) Default(ctx context.Context) (string, error) {
	out, err := e.run(ctx, "-d")
	if err != nil {
		return "", err
	}
	return parseDefault(out), nil
}

func parseDefault(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, defaultPrefix); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
