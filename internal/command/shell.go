package command

import (
	"github.com/alessio/shellescape"
)

// String renders c as a shell-quoted line prefixed with "git", for display.
// Raw command lines are shown as given.
func (c *Command) String() string {
	if c.Raw {
		return "git " + c.Verb
	}
	return "git " + shellescape.QuoteCommand(c.CommandLine())
}

// ShellLine joins binary and a raw command line into one string for sh -c.
// Only the binary path is quoted; the raw line is the caller's responsibility.
func ShellLine(binary, raw string) string {
	return shellescape.Quote(binary) + " " + raw
}
