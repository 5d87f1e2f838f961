package process

import "time"

// State is the lifecycle position of a Runner.
type State int32

const (
	Created State = iota
	Preparing
	Bypassed
	Running
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Preparing:
		return "preparing"
	case Bypassed:
		return "bypassed"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s == Bypassed || s == Succeeded || s == Failed
}

// Result is the captured outcome of a run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int // -1 when the process never ran or was killed by a signal
	Duration time.Duration
	Bypassed bool
}
