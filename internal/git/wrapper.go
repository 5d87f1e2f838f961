package git

import (
	"context"
	"log/slog"
	"maps"
	"os/exec"
	"sync"
	"time"

	"github.com/satococoa/gitwrap/internal/command"
	"github.com/satococoa/gitwrap/internal/errors"
	"github.com/satococoa/gitwrap/internal/event"
	"github.com/satococoa/gitwrap/internal/logging"
	"github.com/satococoa/gitwrap/internal/process"
)

// DefaultTimeout bounds a single git invocation unless WithTimeout says otherwise.
const DefaultTimeout = 60 * time.Second

// Wrapper runs git commands with a shared binary, environment overlay,
// timeout and event bus. It is safe for concurrent use; every call gets
// its own process runner.
type Wrapper struct {
	mu      sync.RWMutex
	binary  string
	env     map[string]string
	timeout time.Duration

	bus    *event.Bus
	logger *slog.Logger
}

// Option configures a Wrapper.
type Option func(*Wrapper)

// WithBinary uses path instead of looking git up on PATH.
func WithBinary(path string) Option {
	return func(w *Wrapper) {
		w.binary = path
	}
}

// WithTimeout sets the per-invocation timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(w *Wrapper) {
		w.timeout = d
	}
}

// WithEnv adds variables to the environment overlay.
func WithEnv(env map[string]string) Option {
	return func(w *Wrapper) {
		maps.Copy(w.env, env)
	}
}

// WithBus shares an existing bus, so several wrappers feed the same handlers.
func WithBus(bus *event.Bus) Option {
	return func(w *Wrapper) {
		w.bus = bus
	}
}

// WithLogger logs every run through logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wrapper) {
		w.logger = logger
	}
}

// New creates a Wrapper. Without WithBinary, git is looked up on PATH.
func New(opts ...Option) (*Wrapper, error) {
	w := &Wrapper{
		env:     make(map[string]string),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.binary == "" {
		path, err := exec.LookPath("git")
		if err != nil {
			return nil, errors.GitBinaryNotFound("PATH")
		}
		w.binary = path
	}
	if w.bus == nil {
		w.bus = event.NewBus()
	}
	if w.logger != nil {
		w.bus.AddSubscriber(logging.NewSubscriber(w.logger))
	}
	return w, nil
}

// BinaryPath returns the git executable in use.
func (w *Wrapper) BinaryPath() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.binary
}

// SetBinaryPath replaces the git executable for subsequent runs.
func (w *Wrapper) SetBinaryPath(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.binary = path
}

// Timeout returns the per-invocation timeout.
func (w *Wrapper) Timeout() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.timeout
}

// SetTimeout changes the per-invocation timeout. Zero disables it.
func (w *Wrapper) SetTimeout(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timeout = d
}

// Env returns a copy of the environment overlay.
func (w *Wrapper) Env() map[string]string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return maps.Clone(w.env)
}

// EnvVar returns one overlay variable.
func (w *Wrapper) EnvVar(key string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	v, ok := w.env[key]
	return v, ok
}

// SetEnvVar sets an overlay variable for subsequent runs.
func (w *Wrapper) SetEnvVar(key, value string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.env[key] = value
}

// UnsetEnvVar removes an overlay variable. It does not unset variables
// inherited from the parent process.
func (w *Wrapper) UnsetEnvVar(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.env, key)
}

// Bus returns the event bus shared by every run of w.
func (w *Wrapper) Bus() *event.Bus {
	return w.bus
}

// Subscribe registers h on the wrapper's bus.
func (w *Wrapper) Subscribe(kind event.Kind, h event.Handler, priority int) event.SubscriptionID {
	return w.bus.Subscribe(kind, h, priority)
}

type runOptions struct {
	dir string
}

// RunOption adjusts a single invocation.
type RunOption func(*runOptions)

// WithDir runs the command in dir, overriding the command's own directory.
func WithDir(dir string) RunOption {
	return func(o *runOptions) {
		o.dir = dir
	}
}

// Run executes cmd and returns its standard output. A bypassed command
// returns an empty string and no error.
func (w *Wrapper) Run(ctx context.Context, cmd *command.Command, opts ...RunOption) (string, error) {
	res, err := w.Exec(ctx, cmd, opts...)
	if err != nil {
		return "", err
	}
	if res.Bypassed {
		return "", nil
	}
	return res.Stdout, nil
}

// Exec executes cmd and returns the full result, including stderr and the
// exit code. The result is non-nil whenever the process was started.
func (w *Wrapper) Exec(ctx context.Context, cmd *command.Command, opts ...RunOption) (*process.Result, error) {
	var ro runOptions
	for _, opt := range opts {
		opt(&ro)
	}

	w.mu.RLock()
	cfg := process.Config{
		Binary:     w.binary,
		Env:        maps.Clone(w.env),
		Timeout:    w.timeout,
		Dir:        ro.dir,
		Dispatcher: w.bus,
		Context:    w,
	}
	w.mu.RUnlock()

	return process.New(cfg, cmd).Run(ctx)
}

// RunRaw passes commandLine to the shell after the git binary, untouched.
func (w *Wrapper) RunRaw(ctx context.Context, commandLine string, opts ...RunOption) (string, error) {
	return w.Run(ctx, command.NewRaw(commandLine), opts...)
}

// Git runs a raw command line in dir; an empty dir uses the current directory.
func (w *Wrapper) Git(ctx context.Context, commandLine, dir string) (string, error) {
	return w.RunRaw(ctx, commandLine, WithDir(dir))
}

// Runner returns w as a command.Runner for batch execution. Commands run
// in their own directory.
func (w *Wrapper) Runner() command.Runner {
	return command.RunnerFunc(func(ctx context.Context, cmd *command.Command) (string, error) {
		return w.Run(ctx, cmd)
	})
}

var _ event.Context = (*Wrapper)(nil)
