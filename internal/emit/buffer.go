// Package emit provides the bounded, flushing output sink that the
// orchestrator streams accepted GNAT edges to.
package emit

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/wizardbeard/gnatfinder/internal/spike"
)

// BufSize is the number of pending edges a Sink holds before it must flush.
const BufSize = 8192

// Edge is one accepted GNAT match: a pre-pair on the presynaptic neuron and
// a post-pair on the postsynaptic neuron. CDRatio is carried alongside the
// pair data for callers that want it but is never serialized by
// Sink.Flush.
type Edge struct {
	Pre, Post spike.Pair
	CDRatio   float32
}

// Sink is a fixed-size buffered writer of Edge values to a text output.
// Add appends to an in-memory buffer and flushes automatically when full;
// Close guarantees a final flush, including on an early return via defer.
type Sink struct {
	w      *bufio.Writer
	closer io.Closer
	buf    []Edge
}

// Open truncate-opens path for writing and returns a ready Sink.
func Open(path string) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("emit: unable to open output file %s: %w", path, err)
	}
	return &Sink{
		w:      bufio.NewWriter(f),
		closer: f,
		buf:    make([]Edge, 0, BufSize),
	}, nil
}

// NewSink wraps an already-open writer; used by tests and by workers that
// each need their own buffer over a shared kind of destination.
func NewSink(w io.Writer) *Sink {
	var closer io.Closer
	if c, ok := w.(io.Closer); ok {
		closer = c
	}
	return &Sink{
		w:      bufio.NewWriter(w),
		closer: closer,
		buf:    make([]Edge, 0, BufSize),
	}
}

// Add appends edg to the buffer, flushing first if the buffer is full.
func (s *Sink) Add(edg Edge) error {
	if len(s.buf) >= BufSize {
		if err := s.Flush(); err != nil {
			return err
		}
	}
	s.buf = append(s.buf, edg)
	return nil
}

// Flush writes every buffered edge, in insertion order, and resets the
// buffer. Each line is:
//
//	<pre_n_id> <a1.ts> <a2.ts> <post_n_id> <b1.ts> <b2.ts>
//
// cd_ratio is intentionally not written.
func (s *Sink) Flush() error {
	for _, edg := range s.buf {
		_, err := fmt.Fprintf(s.w, "%d %d %d %d %d %d\n",
			edg.Pre.S1.NID, edg.Pre.S1.TS, edg.Pre.S2.TS,
			edg.Post.S1.NID, edg.Post.S1.TS, edg.Post.S2.TS,
		)
		if err != nil {
			return fmt.Errorf("emit: flush failed: %w", err)
		}
	}
	s.buf = s.buf[:0]
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("emit: flush failed: %w", err)
	}
	return nil
}

// Close flushes any remaining buffered edges and closes the underlying
// writer, if it supports closing.
func (s *Sink) Close() error {
	flushErr := s.Flush()
	var closeErr error
	if s.closer != nil {
		closeErr = s.closer.Close()
	}
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// Len reports the number of edges currently buffered but not yet flushed.
func (s *Sink) Len() int {
	return len(s.buf)
}
