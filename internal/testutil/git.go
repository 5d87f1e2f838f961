// Package testutil provides helpers shared across tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// InitialBranch is the branch name of repositories created by NewRepo.
const InitialBranch = "master"

// RequireGit skips the test when no git binary is on PATH and returns its path.
func RequireGit(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git binary not available")
	}
	return path
}

// ConfigureTestRepo applies common git configuration used in tests.
//
// The runner is responsible for executing git commands within the provided
// repository directory and should handle errors appropriately.
func ConfigureTestRepo(t *testing.T, repoDir string, runner func(dir string, args ...string)) {
	t.Helper()

	commands := [][]string{
		{"symbolic-ref", "HEAD", "refs/heads/" + InitialBranch},
		{"config", "user.name", "Test User"},
		{"config", "user.email", "test@example.com"},
		{"config", "commit.gpgsign", "false"},
	}

	for _, args := range commands {
		runner(repoDir, args...)
	}
}

// RunGit runs git in dir and fails the test on error.
func RunGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
	return string(out)
}

// NewRepo creates a repository on InitialBranch with one commit containing
// README.md and returns its path. Tests are skipped when git is missing.
func NewRepo(t *testing.T) string {
	t.Helper()
	RequireGit(t)

	dir := t.TempDir()
	RunGit(t, dir, "init")
	ConfigureTestRepo(t, dir, func(dir string, args ...string) {
		RunGit(t, dir, args...)
	})

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test Repo\n"), 0o644); err != nil {
		t.Fatalf("failed to write README: %v", err)
	}
	RunGit(t, dir, "add", "README.md")
	RunGit(t, dir, "commit", "-m", "Initial commit")
	return dir
}

// FakeGit writes a shell script standing in for the git binary and returns
// its path. Tests are skipped on Windows.
func FakeGit(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "git")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("failed to write fake git: %v", err)
	}
	return path
}
