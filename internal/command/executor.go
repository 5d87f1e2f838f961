package command

import "context"

// executor implements Executor on top of a Runner
type executor struct {
	runner      Runner
	stopOnError bool
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*executor)

// WithStopOnError stops a batch at the first failing command.
func WithStopOnError() ExecutorOption {
	return func(e *executor) {
		e.stopOnError = true
	}
}

// NewExecutor creates a new command executor with the given runner
func NewExecutor(runner Runner, opts ...ExecutorOption) Executor {
	e := &executor{runner: runner}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the given commands in sequence and returns their results.
// Command failures are reported per result; the returned error is only set
// when ctx ends before the batch is complete.
func (e *executor) Execute(ctx context.Context, commands []*Command) (*ExecutionResult, error) {
	result := &ExecutionResult{
		Results: make([]CommandResult, 0, len(commands)),
	}

	for _, cmd := range commands {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		output, err := e.runner.Run(ctx, cmd)
		result.Results = append(result.Results, CommandResult{
			Command: cmd,
			Output:  output,
			Error:   err,
		})

		if err != nil && e.stopOnError {
			break
		}
	}

	return result, nil
}
