package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/gitwrap/internal/command"
)

// NewRawCommand creates the raw command definition
func NewRawCommand() *cli.Command {
	return &cli.Command{
		Name:      "raw",
		Usage:     "Run a git command line through the shell",
		UsageText: `gitwrap raw [--dir <dir>] [--stream] -- "<command line>"`,
		Description: "Passes the command line after the git binary to the shell untouched, " +
			"so pipes, globs and quoting behave as typed.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Working directory for git",
			},
			&cli.BoolFlag{
				Name:  "stream",
				Usage: "Stream git output while it runs",
			},
		},
		Action: rawCommand,
	}
}

func rawCommand(ctx context.Context, cmd *cli.Command) error {
	line := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if line == "" {
		return fmt.Errorf("command line is required")
	}

	w, err := newWrapper(cmd)
	if err != nil {
		return err
	}
	return execute(ctx, cmd, w, command.NewRaw(line).SetDir(cmd.String("dir")))
}
