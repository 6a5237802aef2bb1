// Package cli implements the morphtree command-line interface.
//
// The commands build layouts, drive the engine from gesture scripts or
// recorded traces, render snapshots, preview the scene in the terminal and
// serve it over HTTP for a browser hand tracker. The CLI is built using
// cobra and logs via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Build a layout and write it as JSON
//   - simulate: Run the engine headless against a gesture script or trace
//   - render: Simulate, then write the final frame as SVG, PNG, WebP or JSON
//   - preview: Interactive terminal preview driven by the keyboard
//   - serve: HTTP server for a browser hand tracker
//   - trace: Record, list, show and delete gesture traces
//   - bench: Time the engine and optionally write a CPU profile
//   - cache, config, completion: Housekeeping
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so long-running loops can log progress.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Simulated 240 ticks (1.234s)".
func (p *progress) done(msg string, kv ...any) {
	p.logger.Info(msg, append(kv, "elapsed", p.elapsed())...)
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, falling back to
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
