package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/gitwrap/internal/config"
	"github.com/satococoa/gitwrap/internal/git"
	"github.com/satococoa/gitwrap/internal/logging"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "gitwrap",
		Usage: "Run git commands with lifecycle events, timeouts and SSH key plumbing",
		Description: "gitwrap runs git as a subprocess through a programmable wrapper: " +
			"commands are built from structured options, every run publishes " +
			"prepare/output/success/error/bypass events, and settings such as the git binary, " +
			"timeout, environment and SSH key come from .gitwrap.yml.",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Directory containing " + config.ConfigFileName,
				Value: ".",
			},
			&cli.StringFlag{
				Name:  "git",
				Usage: "Path to the git binary (overrides git.binary)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per-command timeout, 0 disables it (overrides git.timeout)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log every lifecycle event to stderr",
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "Log lifecycle events to stderr as JSON",
			},
		},
		Commands: []*cli.Command{
			NewRunCommand(),
			NewRawCommand(),
			NewBatchCommand(),
			NewVersionCommand(),
			NewInitConfigCommand(),
		},
	}
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func inReader(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// newWrapper builds the wrapper from the configuration file and global flags.
// Logging is enabled by --verbose, --log-json or log.format: json.
func newWrapper(cmd *cli.Command) (*git.Wrapper, error) {
	cfg, err := config.LoadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	var opts []git.Option
	if binary := cmd.String("git"); binary != "" {
		opts = append(opts, git.WithBinary(binary))
	}
	if cmd.IsSet("timeout") {
		opts = append(opts, git.WithTimeout(cmd.Duration("timeout")))
	}

	jsonLog := cmd.Bool("log-json") || cfg.Log.Format == config.LogFormatJSON
	if cmd.Bool("verbose") || jsonLog {
		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		if cmd.Bool("verbose") {
			level = slog.LevelDebug
		}
		opts = append(opts, git.WithLogger(logging.New(errWriter(cmd), level, jsonLog)))
	}

	return cfg.NewWrapper(opts...)
}
