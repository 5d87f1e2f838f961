package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ConfigurationError reports a setting that cannot be resolved, such as a
// missing git binary or SSH key file.
type ConfigurationError struct {
	Setting string
	Path    string
	Err     error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("invalid %s", e.Setting)
	if e.Path != "" {
		msg += fmt.Sprintf(": %s", e.Path)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// DirectoryResolutionError reports a working directory that does not exist.
type DirectoryResolutionError struct {
	Dir string
	Err error
}

func (e *DirectoryResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve working directory %q: %v", e.Dir, e.Err)
}

func (e *DirectoryResolutionError) Unwrap() error {
	return e.Err
}

// ExecutionError reports a git process that failed to start or exited with
// a non-zero status. Output holds the tool's diagnostic text verbatim.
type ExecutionError struct {
	CommandLine string
	ExitCode    int
	Output      string
	Err         error
}

// Error returns the diagnostic text written by git, or a generic message
// when git wrote nothing.
func (e *ExecutionError) Error() string {
	if strings.TrimSpace(e.Output) != "" {
		return e.Output
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.CommandLine, e.Err)
	}
	return fmt.Sprintf("%s: exit status %d", e.CommandLine, e.ExitCode)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Detailed renders the failure with command and hint for terminal output.
func (e *ExecutionError) Detailed() error {
	return GitCommandFailed(e.CommandLine, e.Error())
}

// TimeoutError reports a git process that did not finish within its timeout.
type TimeoutError struct {
	CommandLine string
	Timeout     time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %s", e.CommandLine, e.Timeout)
}

// CanceledError reports a git process terminated because its context ended.
type CanceledError struct {
	CommandLine string
	Err         error
}

func (e *CanceledError) Error() string {
	return fmt.Sprintf("%s: canceled: %v", e.CommandLine, e.Err)
}

func (e *CanceledError) Unwrap() error {
	return e.Err
}

// HandlerError wraps an error returned by an event handler.
type HandlerError struct {
	Event string
	Err   error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s handler: %v", e.Event, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// ErrRunnerReused is returned when a process runner is run twice.
var ErrRunnerReused = errors.New("process runner already used")

// ErrorText picks the diagnostic text of a failed command: stderr, or stdout
// when stderr is blank. Some git failures print their reason on stdout.
func ErrorText(stdout, stderr string) string {
	if strings.TrimSpace(stderr) != "" {
		return stderr
	}
	return stdout
}

// IsTimeout reports whether err is or wraps a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// ExitCode returns the exit code carried by an ExecutionError in err, or -1.
func ExitCode(err error) int {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee.ExitCode
	}
	return -1
}

// Git Repository Errors
func NotInGitRepository(path string) error {
	msg := fmt.Sprintf(`not a git repository: %s

Solutions:
  • Run 'git init' to create a new repository
  • Navigate to an existing git repository
  • Check if you're in the correct directory`, path)
	return errors.New(msg)
}

func GitCommandFailed(command, output string) error {
	cleanOutput := strings.TrimSpace(output)
	if cleanOutput == "" {
		cleanOutput = "no additional details available"
	}

	msg := fmt.Sprintf(`git command failed: %s

Details: %s

Tip: Try running the git command manually to see the full error`, command, cleanOutput)
	return errors.New(msg)
}

func GitBinaryNotFound(searched string) error {
	return &ConfigurationError{
		Setting: "git binary",
		Path:    searched,
		Err: errors.New(`not found

Solutions:
  • Install git and make sure it is on your PATH
  • Set git.binary in .gitwrap.yml
  • Pass --git <path> on the command line`),
	}
}

func SSHFileNotFound(setting, path string, originalError error) error {
	return &ConfigurationError{
		Setting: setting,
		Path:    path,
		Err:     fmt.Errorf("file does not exist: %w", originalError),
	}
}

// Configuration Errors
func ConfigLoadFailed(configPath string, parseError error) error {
	msg := fmt.Sprintf("failed to load configuration from '%s'", configPath)

	parseErrorStr := parseError.Error()
	if strings.Contains(parseErrorStr, "yaml") || strings.Contains(parseErrorStr, "unmarshal") {
		msg += `

Cause: YAML syntax error in configuration file
Solutions:
  • Check YAML syntax and indentation
  • Run 'gitwrap init-config' to recreate the configuration`
	} else if strings.Contains(parseErrorStr, "permission denied") {
		msg += `

Cause: Permission denied reading configuration file
Solution: Check file permissions with 'ls -la .gitwrap.yml'`
	}

	msg += fmt.Sprintf("\n\nOriginal error: %v", parseError)
	return errors.New(msg)
}

func ConfigAlreadyExists(configPath string) error {
	msg := fmt.Sprintf(`configuration file already exists: %s

Options:
  • Edit the existing file manually
  • Delete it and run 'gitwrap init-config' again`, configPath)
	return errors.New(msg)
}
