package command

import (
	"context"
	"errors"
	"slices"
)

// ErrVerbRequired is returned by Validate for a structured command without a verb.
var ErrVerbRequired = errors.New("command verb is required")

// Command represents one invocation of the git binary.
//
// Options keep insertion order, which is also the order they are rendered in.
// A Command is owned by a single invocation; use Clone to derive templates.
type Command struct {
	Verb       string   // First token passed to git (e.g., "status"); the whole line in raw mode
	Subcommand string   // Optional second token, rendered before the options (e.g., "add" in "worktree add")
	Args       []string // Positional arguments, rendered after the options
	WorkDir    string   // Optional working directory
	Bypass     bool     // Prepare the command but never start a process
	Raw        bool     // Use Verb verbatim as the entire command line

	options []option
}

type option struct {
	name   string
	values []Value
}

// Value is a single occurrence of an option. Flag renders without an argument.
type Value struct {
	text   string
	isFlag bool
}

// Flag is the value of an option that takes no argument.
var Flag = Value{isFlag: true}

// Text returns an option value that renders as a separate argument token.
func Text(s string) Value {
	return Value{text: s}
}

// IsFlag reports whether v is the Flag sentinel.
func (v Value) IsFlag() bool {
	return v.isFlag
}

func (v Value) String() string {
	return v.text
}

// CommandResult represents the result of a single command execution
type CommandResult struct {
	Command *Command
	Output  string
	Error   error
}

// ExecutionResult represents the result of executing multiple commands
type ExecutionResult struct {
	Results []CommandResult
}

// FirstError returns the first failed command's error, or nil.
func (r *ExecutionResult) FirstError() error {
	for _, res := range r.Results {
		if res.Error != nil {
			return res.Error
		}
	}
	return nil
}

// Runner runs a single command to completion and returns its standard output.
type Runner interface {
	Run(ctx context.Context, cmd *Command) (string, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, cmd *Command) (string, error)

// Run calls f(ctx, cmd).
func (f RunnerFunc) Run(ctx context.Context, cmd *Command) (string, error) {
	return f(ctx, cmd)
}

// Executor defines how batches of commands are executed
type Executor interface {
	Execute(ctx context.Context, commands []*Command) (*ExecutionResult, error)
}

// New creates a structured command for verb with positional args.
func New(verb string, args ...string) *Command {
	return &Command{
		Verb: verb,
		Args: slices.Clone(args),
	}
}

// NewRaw creates a command whose line is passed to the shell untouched.
func NewRaw(commandLine string) *Command {
	return &Command{
		Verb: commandLine,
		Raw:  true,
	}
}

// Clone returns a deep copy of c.
func (c *Command) Clone() *Command {
	clone := *c
	clone.Args = slices.Clone(c.Args)
	clone.options = make([]option, len(c.options))
	for i, opt := range c.options {
		clone.options[i] = option{name: opt.name, values: slices.Clone(opt.values)}
	}
	return &clone
}

// Validate checks that c can be rendered into a command line.
func (c *Command) Validate() error {
	if !c.Raw && c.Verb == "" {
		return ErrVerbRequired
	}
	return nil
}

// SetSubcommand sets the word rendered between the verb and the options.
func (c *Command) SetSubcommand(sub string) *Command {
	c.Subcommand = sub
	return c
}

// SetDir sets the working directory.
func (c *Command) SetDir(dir string) *Command {
	c.WorkDir = dir
	return c
}

// SetBypass toggles bypass mode.
func (c *Command) SetBypass(bypass bool) *Command {
	c.Bypass = bypass
	return c
}

// AddArgument appends a positional argument. No escaping is performed.
func (c *Command) AddArgument(arg string) *Command {
	c.Args = append(c.Args, arg)
	return c
}

// AddArguments appends positional arguments in order.
func (c *Command) AddArguments(args ...string) *Command {
	c.Args = append(c.Args, args...)
	return c
}
