package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/satococoa/gitwrap/internal/errors"
	"github.com/satococoa/gitwrap/internal/git"
	"github.com/satococoa/gitwrap/internal/logging"
)

// Config represents the gitwrap configuration
type Config struct {
	Version string `yaml:"version"`
	Git     Git    `yaml:"git,omitempty"`
	SSH     SSH    `yaml:"ssh,omitempty"`
	Log     Log    `yaml:"log,omitempty"`

	// Directory the file was loaded from; relative SSH paths resolve against it.
	dir string `yaml:"-"`
}

// Git configures the wrapped binary
type Git struct {
	Binary  string            `yaml:"binary,omitempty"`
	Timeout string            `yaml:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
}

// SSH configures the key and wrapper script exported to git
type SSH struct {
	PrivateKey string `yaml:"private_key,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Wrapper    string `yaml:"wrapper,omitempty"`
}

// Log configures lifecycle logging
type Log struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

const (
	ConfigFileName        = ".gitwrap.yml"
	CurrentVersion        = "1.0"
	DefaultTimeout        = "60s"
	DefaultLogLevel       = "info"
	LogFormatText         = "text"
	LogFormatJSON         = "json"
	configFilePermissions = 0o600
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Git:     Git{Timeout: DefaultTimeout},
		Log:     Log{Level: DefaultLogLevel, Format: LogFormatText},
	}
}

// LoadConfig loads .gitwrap.yml from dir, falling back to defaults when the
// file does not exist.
func LoadConfig(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		config := Default()
		config.dir = dir
		return config, nil
	}
	if err != nil {
		return nil, errors.ConfigLoadFailed(configPath, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.ConfigLoadFailed(configPath, fmt.Errorf("yaml: %w", err))
	}
	config.dir = dir

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// SaveConfig writes config to .gitwrap.yml in dir
func SaveConfig(dir string, config *Config) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(configPath, data, configFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate fills defaults and checks every setting
func (c *Config) Validate() error {
	if c.Version == "" {
		c.Version = CurrentVersion
	}
	if c.Git.Timeout == "" {
		c.Git.Timeout = DefaultTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = LogFormatText
	}

	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if err := c.SSH.Validate(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log format '%s', must be '%s' or '%s'", c.Log.Format, LogFormatText, LogFormatJSON)
	}
	return nil
}

// Validate checks that key and wrapper are set together and the port is valid
func (s *SSH) Validate() error {
	if (s.PrivateKey == "") != (s.Wrapper == "") {
		return fmt.Errorf("ssh requires both 'private_key' and 'wrapper' fields")
	}
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("invalid ssh port %d", s.Port)
	}
	return nil
}

// TimeoutDuration parses git.timeout. "0" disables the timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Git.Timeout == "" {
		return git.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Git.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid git timeout '%s': %w", c.Git.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("git timeout must not be negative: %s", c.Git.Timeout)
	}
	return d, nil
}

// HasSSH reports whether an SSH key is configured
func (c *Config) HasSSH() bool {
	return c.SSH.PrivateKey != ""
}

// NewWrapper builds a git.Wrapper from the configuration. extra options are
// applied last, so command line overrides win.
func (c *Config) NewWrapper(extra ...git.Option) (*git.Wrapper, error) {
	timeout, err := c.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	opts := []git.Option{git.WithTimeout(timeout)}
	if c.Git.Binary != "" {
		opts = append(opts, git.WithBinary(c.resolvePath(c.Git.Binary)))
	}
	if len(c.Git.Env) > 0 {
		opts = append(opts, git.WithEnv(c.Git.Env))
	}
	opts = append(opts, extra...)

	w, err := git.New(opts...)
	if err != nil {
		return nil, err
	}
	if c.HasSSH() {
		if err := w.SetPrivateKey(c.resolvePath(c.SSH.PrivateKey), c.SSH.Port, c.resolvePath(c.SSH.Wrapper)); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// resolvePath expands a leading ~ and anchors relative paths containing a
// separator at the configuration directory. Bare names are left for PATH lookup.
func (c *Config) resolvePath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	if filepath.IsAbs(path) || c.dir == "" || !strings.ContainsRune(path, '/') {
		return path
	}
	return filepath.Join(c.dir, path)
}
