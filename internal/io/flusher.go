package io

import (
	"bufio"
	"io"
	"sync"
)

type flusher interface{ Flush() error }

// FlushingWriter flushes after every write so streamed git output reaches
// the terminal as it arrives. Writes are serialised, so concurrent runs can
// share one FlushingWriter without interleaving inside a chunk.
type FlushingWriter struct {
	mu      sync.Mutex
	w       io.Writer
	flusher flusher
}

// NewFlushingWriter uses w's own Flush when it has one and buffers it
// through bufio otherwise.
func NewFlushingWriter(w io.Writer) *FlushingWriter {
	if f, ok := w.(flusher); ok {
		return &FlushingWriter{w: w, flusher: f}
	}
	bw := bufio.NewWriter(w)
	return &FlushingWriter{w: bw, flusher: bw}
}

func (fw *FlushingWriter) Write(p []byte) (int, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	n, err := fw.w.Write(p)
	if err != nil {
		return n, err
	}
	if err := fw.flusher.Flush(); err != nil {
		return n, err
	}
	return n, nil
}

// Flush flushes any buffered data.
func (fw *FlushingWriter) Flush() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.flusher.Flush()
}
