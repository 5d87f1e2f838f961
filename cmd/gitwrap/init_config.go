package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/gitwrap/internal/config"
	"github.com/satococoa/gitwrap/internal/errors"
)

const configFileMode = 0o600

const configTemplate = `# gitwrap configuration
version: "1.0"

git:
  # Path to the git binary; looked up on PATH when empty
  # binary: /usr/bin/git

  # Per-command timeout, "0" disables it
  timeout: 60s

  # Variables added to the environment of every git process
  env:
    GIT_TERMINAL_PROMPT: "0"

# SSH key exported to the wrapper script set as GIT_SSH.
# The script reads GIT_SSH_KEY and GIT_SSH_PORT.
# ssh:
#   private_key: ~/.ssh/id_ed25519
#   port: 22
#   wrapper: ./bin/git-ssh-wrapper.sh

log:
  # debug, info, warn or error
  level: info
  # text or json
  format: text
`

// NewInitConfigCommand creates the init-config command definition
func NewInitConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "init-config",
		Usage: "Create a configuration file",
		Description: "Creates a " + config.ConfigFileName + " file in the configuration directory " +
			"with commented defaults.",
		Action: initConfigCommand,
	}
}

func initConfigCommand(_ context.Context, cmd *cli.Command) error {
	configPath := filepath.Join(cmd.String("config"), config.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return errors.ConfigAlreadyExists(configPath)
	}

	if err := os.WriteFile(configPath, []byte(configTemplate), configFileMode); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	fmt.Fprintf(outWriter(cmd), "Configuration file created: %s\n", configPath)
	return nil
}
