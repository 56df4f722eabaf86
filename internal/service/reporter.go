package service

import (
	"fmt"
	"io"
	"sync"
)

// Reporter writes the human-readable outcome of a workflow: progress lines
// prefixed " - " and failures prefixed "ERROR: ".
type Reporter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewReporter returns a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{out: w}
}

// Progress reports a step that succeeded or an idempotent no-op.
func (r *Reporter) Progress(format string, args ...interface{}) {
	r.Line(" - "+format, args...)
}

// Error reports a failure that concerns a single name or target.
func (r *Reporter) Error(format string, args ...interface{}) {
	r.Line("ERROR: "+format, args...)
}

// Line writes one unprefixed line.
func (r *Reporter) Line(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.out, format+"\n", args...)
}

// Writer exposes the underlying writer for tabular output.
func (r *Reporter) Writer() io.Writer {
	return r.out
}
