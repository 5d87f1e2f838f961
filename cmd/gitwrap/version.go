package main

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/urfave/cli/v3"
)

// NewVersionCommand creates the version command definition
func NewVersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show gitwrap and git versions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "require",
				Usage: `Fail unless git satisfies the constraint, e.g. ">= 2.20"`,
			},
		},
		Action: versionCommand,
	}
}

func versionCommand(ctx context.Context, cmd *cli.Command) error {
	w, err := newWrapper(cmd)
	if err != nil {
		return err
	}

	var v *semver.Version
	if constraint := cmd.String("require"); constraint != "" {
		v, err = w.RequireVersion(ctx, constraint)
	} else {
		v, err = w.Version(ctx)
	}
	if err != nil {
		return err
	}

	out := outWriter(cmd)
	fmt.Fprintf(out, "gitwrap %s\n", version)
	fmt.Fprintf(out, "git %s (%s)\n", v, w.BinaryPath())
	return nil
}
