// Package process runs one git command as a subprocess and publishes its
// lifecycle through an event.Dispatcher.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/satococoa/gitwrap/internal/command"
	apperrors "github.com/satococoa/gitwrap/internal/errors"
	"github.com/satococoa/gitwrap/internal/event"
)

// waitDelay bounds how long Wait blocks on pipes held open by grandchildren
// (ssh, credential helpers) after git itself exits or is killed.
const waitDelay = 5 * time.Second

// Config is the execution context of a single run.
type Config struct {
	Binary     string
	Env        map[string]string // overlay on the parent environment; empty inherits it unchanged
	Timeout    time.Duration     // zero disables the timeout
	Dir        string            // overrides the command's working directory
	Dispatcher event.Dispatcher
	Context    event.Context
}

// Runner drives one command through
// Created → Preparing → (Bypassed | Running → (Succeeded | Failed)).
// A Runner runs once and is not safe for concurrent use.
type Runner struct {
	cfg   Config
	cmd   *command.Command
	runID uuid.UUID
	state atomic.Int32
	used  bool

	process *exec.Cmd
	stdout  bytes.Buffer
	stderr  bytes.Buffer
}

// New creates a runner for cmd. cmd is shared with event handlers.
func New(cfg Config, cmd *command.Command) *Runner {
	return &Runner{
		cfg:   cfg,
		cmd:   cmd,
		runID: uuid.New(),
	}
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	return State(r.state.Load())
}

// RunID identifies this run in emitted events.
func (r *Runner) RunID() uuid.UUID {
	return r.runID
}

func (r *Runner) setState(s State) {
	r.state.Store(int32(s))
}

// Run executes the command. Handler errors abort the current step and are
// returned as is; when a run fails the Error event is dispatched before the
// error is returned.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if r.used {
		return nil, apperrors.ErrRunnerReused
	}
	r.used = true

	if err := r.cmd.Validate(); err != nil {
		r.setState(Failed)
		return nil, err
	}

	timeoutCtx, cancelTimeout := ctx, context.CancelFunc(func() {})
	if r.cfg.Timeout > 0 {
		timeoutCtx, cancelTimeout = context.WithTimeout(ctx, r.cfg.Timeout)
	}
	defer cancelTimeout()
	runCtx, abort := context.WithCancelCause(timeoutCtx)
	defer abort(nil)

	r.process = r.build(runCtx)
	r.setState(Preparing)
	if err := r.dispatch(&event.Event{Kind: event.Prepare}); err != nil {
		r.setState(Failed)
		return nil, err
	}

	if r.cmd.Bypass {
		r.setState(Bypassed)
		result := &Result{ExitCode: -1, Bypassed: true}
		return result, r.dispatch(&event.Event{Kind: event.Bypass})
	}

	dir, err := r.resolveDir()
	if err != nil {
		r.setState(Failed)
		return nil, err
	}

	// Prepare handlers may have changed the command; render it again.
	r.process = r.build(runCtx)
	r.process.Dir = dir
	r.process.Env = r.environ()

	r.setState(Running)
	start := time.Now()
	waitErr, handlerErr := r.execute(abort)
	result := &Result{
		Stdout:   r.stdout.String(),
		Stderr:   r.stderr.String(),
		ExitCode: r.exitCode(waitErr),
		Duration: time.Since(start),
	}

	if handlerErr != nil {
		r.setState(Failed)
		return result, handlerErr
	}

	if waitErr == nil {
		r.setState(Succeeded)
		return result, r.dispatch(&event.Event{Kind: event.Success})
	}

	r.setState(Failed)
	runErr := r.classify(ctx, timeoutCtx, waitErr, result)
	if err := r.dispatch(&event.Event{Kind: event.Error, Err: runErr}); err != nil {
		return result, errors.Join(runErr, err)
	}
	return result, runErr
}

type chunk struct {
	stream event.Stream
	data   []byte
}

// chunkWriter forwards every write to the run loop. os/exec copies each
// pipe on its own goroutine, so stdout and stderr drain concurrently.
type chunkWriter struct {
	stream event.Stream
	ch     chan<- chunk
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	w.ch <- chunk{stream: w.stream, data: bytes.Clone(p)}
	return len(p), nil
}

// execute starts the process and dispatches Output events on the calling
// goroutine in arrival order until the process has exited and both pipes
// are drained. A failing Output handler kills the process; remaining
// output is still collected but no longer dispatched.
func (r *Runner) execute(abort context.CancelCauseFunc) (waitErr, handlerErr error) {
	chunks := make(chan chunk)
	r.process.Stdout = &chunkWriter{stream: event.Stdout, ch: chunks}
	r.process.Stderr = &chunkWriter{stream: event.Stderr, ch: chunks}
	r.process.WaitDelay = waitDelay

	if err := r.process.Start(); err != nil {
		return err, nil
	}

	done := make(chan error, 1)
	go func() {
		done <- r.process.Wait()
	}()

	for {
		select {
		case c := <-chunks:
			r.collect(c)
			if handlerErr != nil {
				continue
			}
			if err := r.dispatch(&event.Event{Kind: event.Output, Stream: c.stream, Chunk: c.data}); err != nil {
				handlerErr = err
				abort(err)
			}
		case waitErr = <-done:
			if errors.Is(waitErr, exec.ErrWaitDelay) && r.process.ProcessState != nil && r.process.ProcessState.Success() {
				waitErr = nil
			}
			return waitErr, handlerErr
		}
	}
}

func (r *Runner) collect(c chunk) {
	if c.stream == event.Stderr {
		r.stderr.Write(c.data)
		return
	}
	r.stdout.Write(c.data)
}

func (r *Runner) build(ctx context.Context) *exec.Cmd {
	if r.cmd.Raw {
		line := command.ShellLine(r.cfg.Binary, r.cmd.Verb)
		if runtime.GOOS == "windows" {
			// #nosec G204 - raw command lines are supplied by the library caller
			return exec.CommandContext(ctx, "cmd", "/C", line)
		}
		// #nosec G204 - raw command lines are supplied by the library caller
		return exec.CommandContext(ctx, "sh", "-c", line)
	}
	// #nosec G204 - arguments are passed as a vector, never through a shell
	return exec.CommandContext(ctx, r.cfg.Binary, r.cmd.CommandLine()...)
}

// resolveDir picks the explicit override, then the command's directory.
// The chosen directory must exist; it is returned as an absolute path.
func (r *Runner) resolveDir() (string, error) {
	dir := r.cfg.Dir
	if dir == "" {
		dir = r.cmd.WorkDir
	}
	if dir == "" {
		return "", nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", &apperrors.DirectoryResolutionError{Dir: dir, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", &apperrors.DirectoryResolutionError{Dir: dir, Err: err}
	}
	if !info.IsDir() {
		return "", &apperrors.DirectoryResolutionError{Dir: dir, Err: errors.New("not a directory")}
	}
	return abs, nil
}

// environ returns nil (inherit everything) for an empty overlay, otherwise
// the parent environment followed by the overlay, which wins on duplicates.
func (r *Runner) environ() []string {
	if len(r.cfg.Env) == 0 {
		return nil
	}
	env := os.Environ()
	for _, key := range slices.Sorted(maps.Keys(r.cfg.Env)) {
		env = append(env, fmt.Sprintf("%s=%s", key, r.cfg.Env[key]))
	}
	return env
}

func (r *Runner) exitCode(waitErr error) int {
	if r.process.ProcessState != nil {
		return r.process.ProcessState.ExitCode()
	}
	if waitErr == nil {
		return 0
	}
	return -1
}

func (r *Runner) classify(parent, timeoutCtx context.Context, waitErr error, result *Result) error {
	line := r.cmd.String()
	if err := parent.Err(); err != nil {
		return &apperrors.CanceledError{CommandLine: line, Err: err}
	}
	if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
		return &apperrors.TimeoutError{CommandLine: line, Timeout: r.cfg.Timeout}
	}
	return &apperrors.ExecutionError{
		CommandLine: line,
		ExitCode:    result.ExitCode,
		Output:      apperrors.ErrorText(result.Stdout, result.Stderr),
		Err:         waitErr,
	}
}

func (r *Runner) dispatch(e *event.Event) error {
	if r.cfg.Dispatcher == nil {
		return nil
	}
	e.RunID = r.runID
	e.Context = r.cfg.Context
	e.Process = r.process
	e.Command = r.cmd
	return r.cfg.Dispatcher.Dispatch(e)
}
