package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/gitwrap/internal/command"
)

// NewBatchCommand creates the batch command definition
func NewBatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "Run git command lines from a file in sequence",
		UsageText: "gitwrap batch [--dir <dir>] [--keep-going] <file|->",
		Description: "Reads one git command line per line, skipping blanks and lines starting with '#', " +
			"and runs each through the shell. The batch stops at the first failure unless --keep-going is set.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Working directory for git",
			},
			&cli.BoolFlag{
				Name:  "keep-going",
				Usage: "Run the remaining commands after a failure",
			},
		},
		Action: batchCommand,
	}
}

func batchCommand(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("exactly one batch file is required, use '-' for stdin")
	}

	lines, err := readBatch(cmd, cmd.Args().First())
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}

	w, err := newWrapper(cmd)
	if err != nil {
		return err
	}

	commands := make([]*command.Command, 0, len(lines))
	for _, line := range lines {
		commands = append(commands, command.NewRaw(line).SetDir(cmd.String("dir")))
	}

	var opts []command.ExecutorOption
	if !cmd.Bool("keep-going") {
		opts = append(opts, command.WithStopOnError())
	}
	result, err := command.NewExecutor(w.Runner(), opts...).Execute(ctx, commands)
	if err != nil {
		return err
	}

	out := outWriter(cmd)
	failed := 0
	for _, res := range result.Results {
		if res.Error != nil {
			failed++
			fmt.Fprintf(errWriter(cmd), "failed: %s: %v\n", res.Command, res.Error)
			continue
		}
		fmt.Fprint(out, res.Output)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d commands failed: %w", failed, len(commands), result.FirstError())
	}
	return nil
}

func readBatch(cmd *cli.Command, name string) ([]string, error) {
	var r io.Reader
	if name == "-" {
		r = inReader(cmd)
	} else {
		f, err := os.Open(name) // #nosec G304 - path given by the user
		if err != nil {
			return nil, fmt.Errorf("failed to open batch file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return lines, nil
}
