// Package report provides run-scoped progress and summary logging for a
// gnatfinder invocation, tagged with a correlation id so concurrent runs'
// stderr output can be told apart.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// Reporter writes progress lines to an underlying writer (normally
// os.Stderr), tagged with a per-run correlation id. Its methods only
// format and write; callers own the edge count and pass it in, since the
// orchestrator's atomic counter is the single source of truth across
// however many workers are writing edges.
type Reporter struct {
	w       io.Writer
	runID   string
	started time.Time
}

// New creates a Reporter with a fresh run id.
func New(w io.Writer) *Reporter {
	return &Reporter{
		w:       w,
		runID:   uuid.New().String(),
		started: time.Now(),
	}
}

// RunID returns the correlation id tagging every line this Reporter emits.
func (r *Reporter) RunID() string { return r.runID }

// Progress prints a status line for a completed postsynaptic cell. The
// caller is responsible for throttling how often this is called; calling
// it every 10 cells keeps stderr readable on large runs.
func (r *Reporter) Progress(cell, total int, edges int64) {
	fmt.Fprintf(r.w, "[%s] cell %d/%d: %d edges so far\n", r.runID, cell, total, edges)
}

// Summary prints the final one-line report: elapsed wall time, total
// edges, total cells processed.
func (r *Reporter) Summary(totalCells int, edges int64) {
	fmt.Fprintf(r.w, "[%s] done: %d cells, %d edges, elapsed %s\n",
		r.runID, totalCells, edges, time.Since(r.started).Round(time.Millisecond))
}
