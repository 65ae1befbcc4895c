package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

func (h *LogHooks) OnStateChange(_ context.Context, jobID, state string) {
	h.Logger.Debug("job state", "job", jobID, "state", state)
}

func (h *LogHooks) OnAttempt(_ context.Context, jobID, engine, outcome string, d time.Duration) {
	h.Logger.Debug("render attempt", "job", jobID, "engine", engine, "outcome", outcome, "took", d)
}

func (h *LogHooks) OnDispatch(_ context.Context, jobID, destination string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("dispatch failed", "job", jobID, "destination", destination, "took", d, "err", err)
		return
	}
	h.Logger.Debug("dispatched", "job", jobID, "destination", destination, "took", d)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "path", path, "status", status, "took", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
