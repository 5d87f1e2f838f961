package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/gitwrap/internal/command"
	"github.com/satococoa/gitwrap/internal/errors"
	"github.com/satococoa/gitwrap/internal/git"
	gwio "github.com/satococoa/gitwrap/internal/io"
)

// NewRunCommand creates the run command definition
func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run a structured git command",
		UsageText: "gitwrap run [--dir <dir>] [--sub <subcommand>] [--flag <name>]... [--option <name>=<value>]... " +
			"[--bypass] [--stream] -- <verb> [args...]",
		Description: "Builds the command from a verb, options and arguments. Options given with --flag " +
			"take no value; --option may repeat a name to pass it several times. " +
			"With --bypass the command is prepared and printed but git is not started.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Working directory for git",
			},
			&cli.StringFlag{
				Name:  "sub",
				Usage: "Subcommand rendered before the options, e.g. --sub add -- worktree",
			},
			&cli.StringSliceFlag{
				Name:  "flag",
				Usage: "Option without value, e.g. --flag short",
			},
			&cli.StringSliceFlag{
				Name:  "option",
				Usage: "Option with value as name=value, e.g. --option format=%H",
			},
			&cli.BoolFlag{
				Name:  "bypass",
				Usage: "Prepare the command without running git",
			},
			&cli.BoolFlag{
				Name:  "stream",
				Usage: "Stream git output while it runs",
			},
		},
		Action: runCommand,
	}
}

func runCommand(ctx context.Context, cmd *cli.Command) error {
	gitCmd, err := buildCommand(cmd)
	if err != nil {
		return err
	}

	w, err := newWrapper(cmd)
	if err != nil {
		return err
	}
	return execute(ctx, cmd, w, gitCmd)
}

func buildCommand(cmd *cli.Command) (*command.Command, error) {
	if cmd.Args().Len() == 0 {
		return nil, fmt.Errorf("git verb is required")
	}

	gitCmd := command.New(cmd.Args().First(), cmd.Args().Tail()...).SetSubcommand(cmd.String("sub"))
	for _, name := range cmd.StringSlice("flag") {
		gitCmd.SetFlag(strings.TrimLeft(name, "-"))
	}
	for _, opt := range cmd.StringSlice("option") {
		name, value, ok := strings.Cut(opt, "=")
		name = strings.TrimLeft(name, "-")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid option '%s', expected name=value", opt)
		}
		values, _ := gitCmd.Option(name)
		gitCmd.SetOptionValues(name, append(values, command.Text(value))...)
	}

	return gitCmd.SetDir(cmd.String("dir")).SetBypass(cmd.Bool("bypass")), nil
}

// execute runs gitCmd and prints its output, or the command itself when a
// handler or --bypass skipped it.
func execute(ctx context.Context, cmd *cli.Command, w *git.Wrapper, gitCmd *command.Command) error {
	stream := cmd.Bool("stream")
	if stream {
		w.Bus().AddSubscriber(gwio.NewForwarder(outWriter(cmd), errWriter(cmd)))
	}

	out, err := w.Run(ctx, gitCmd)
	if err != nil {
		var execErr *errors.ExecutionError
		if !stderrors.As(err, &execErr) {
			return err
		}
		if stream {
			// git's diagnostics were already streamed
			return fmt.Errorf("%s: exit status %d", execErr.CommandLine, execErr.ExitCode)
		}
		return execErr.Detailed()
	}

	if gitCmd.Bypass {
		_, err = fmt.Fprintf(outWriter(cmd), "bypassed: %s\n", gitCmd)
		return err
	}
	if !stream {
		_, err = fmt.Fprint(outWriter(cmd), out)
	}
	return err
}
