// Package event publishes the lifecycle of git process runs to subscribers.
//
// Every run emits Prepare, then zero or more Output events, then exactly one
// of Success, Error or Bypass. Handlers run synchronously on the goroutine
// driving the run and share the run's *command.Command, so a Prepare handler
// can set Bypass and the runner honours it.
package event

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/google/uuid"

	"github.com/satococoa/gitwrap/internal/command"
)

// Kind identifies a lifecycle phase.
type Kind int

const (
	Prepare Kind = iota
	Output
	Success
	Error
	Bypass
)

// Kinds lists every Kind in lifecycle order.
var Kinds = []Kind{Prepare, Output, Success, Error, Bypass}

func (k Kind) String() string {
	switch k {
	case Prepare:
		return "prepare"
	case Output:
		return "output"
	case Success:
		return "success"
	case Error:
		return "error"
	case Bypass:
		return "bypass"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Terminal reports whether k ends a run.
func (k Kind) Terminal() bool {
	return k == Success || k == Error || k == Bypass
}

// Stream tells which pipe an Output chunk was read from.
type Stream int

const (
	Stdout Stream = iota + 1
	Stderr
)

func (s Stream) String() string {
	switch s {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return ""
	}
}

// Context exposes the execution settings of the wrapper that started a run.
type Context interface {
	BinaryPath() string
	Env() map[string]string
	Timeout() time.Duration
}

// Event is a single lifecycle notification.
type Event struct {
	Kind    Kind
	RunID   uuid.UUID
	Context Context
	// Process is the command for this run. On Prepare and Bypass it is a
	// preview that is never started; after Prepare the runner builds the
	// process again, and Output, Success and Error carry the one that ran.
	Process *exec.Cmd
	Command *command.Command

	// Output events only.
	Stream Stream
	Chunk  []byte

	// Error events only.
	Err error
}

// Handler reacts to an event. A returned error aborts the dispatch.
type Handler func(e *Event) error

// Dispatcher delivers events to handlers.
type Dispatcher interface {
	Dispatch(e *Event) error
}
