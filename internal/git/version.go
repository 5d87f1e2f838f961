package git

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/satococoa/gitwrap/internal/command"
)

// "git version 2.39.3 (Apple Git-146)", "git version 2.45.1.windows.1"
var versionPattern = regexp.MustCompile(`\d+(\.\d+){1,2}`)

// ParseVersion extracts the version number from `git --version` output.
func ParseVersion(output string) (*semver.Version, error) {
	match := versionPattern.FindString(output)
	if match == "" {
		return nil, fmt.Errorf("unrecognised git version output: %q", strings.TrimSpace(output))
	}
	return semver.NewVersion(match)
}

// Version returns the version of the configured git binary.
func (w *Wrapper) Version(ctx context.Context) (*semver.Version, error) {
	out, err := w.Run(ctx, command.VersionCommand())
	if err != nil {
		return nil, fmt.Errorf("failed to get git version: %w", err)
	}
	return ParseVersion(out)
}

// RequireVersion fails unless the git binary satisfies constraint,
// e.g. ">= 2.20".
func (w *Wrapper) RequireVersion(ctx context.Context, constraint string) (*semver.Version, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	v, err := w.Version(ctx)
	if err != nil {
		return nil, err
	}
	if !c.Check(v) {
		return v, fmt.Errorf("git %s does not satisfy %s", v, constraint)
	}
	return v, nil
}
