package io

import (
	"fmt"
	"io"

	"github.com/satococoa/gitwrap/internal/event"
)

// ForwarderPriority runs output forwarding before the log subscriber.
const ForwarderPriority = 50

// Forwarder copies Output chunks of every run to a stdout and a stderr writer.
type Forwarder struct {
	stdout *FlushingWriter
	stderr *FlushingWriter
}

// NewForwarder forwards stdout chunks to stdout and stderr chunks to stderr.
func NewForwarder(stdout, stderr io.Writer) *Forwarder {
	return &Forwarder{
		stdout: NewFlushingWriter(stdout),
		stderr: NewFlushingWriter(stderr),
	}
}

func (f *Forwarder) Subscriptions() []event.Subscription {
	return []event.Subscription{
		{Kind: event.Output, Handler: f.Forward, Priority: ForwarderPriority},
	}
}

// Forward writes one Output chunk. A write error aborts the run.
func (f *Forwarder) Forward(e *event.Event) error {
	w := f.stdout
	if e.Stream == event.Stderr {
		w = f.stderr
	}
	if _, err := w.Write(e.Chunk); err != nil {
		return fmt.Errorf("failed to forward %s: %w", e.Stream, err)
	}
	return nil
}
