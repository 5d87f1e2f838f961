package framework

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

const (
	dirPerm  = 0755
	filePerm = 0600
)

type TestEnvironment struct {
	t             *testing.T
	tmpDir        string
	gitwrapBinary string
}

// NewTestEnvironment builds the gitwrap binary, or uses GITWRAP_E2E_BINARY
// when set. Tests are skipped when git is not installed.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	env := &TestEnvironment{
		t:      t,
		tmpDir: t.TempDir(),
	}
	env.buildGitwrap()
	return env
}

func (e *TestEnvironment) buildGitwrap() {
	e.t.Helper()

	binary := filepath.Join(e.tmpDir, "gitwrap")
	if prebuilt := os.Getenv("GITWRAP_E2E_BINARY"); prebuilt != "" {
		binary = prebuilt
		if _, err := os.Stat(binary); err != nil {
			e.t.Fatalf("Specified gitwrap binary not found: %s", binary)
		}
	} else {
		cmd := exec.Command("go", "build", "-o", binary, "./cmd/gitwrap")
		cmd.Dir = e.findProjectRoot()
		if output, err := cmd.CombinedOutput(); err != nil {
			e.t.Fatalf("Failed to build gitwrap binary: %v\nOutput: %s", err, output)
		}
	}

	abs, err := filepath.Abs(binary)
	if err != nil {
		e.t.Fatalf("Failed to get absolute path for binary: %v", err)
	}
	e.gitwrapBinary = abs
}

func (e *TestEnvironment) findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		e.t.Fatalf("Failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			e.t.Fatal("Could not find project root (go.mod)")
		}
		dir = parent
	}
}

// CreateTestRepo creates a repository on master with one commit.
func (e *TestEnvironment) CreateTestRepo(name string) *TestRepo {
	e.t.Helper()

	repoDir := filepath.Join(e.tmpDir, name)
	e.runInDir(e.tmpDir, "git", "init", repoDir)
	e.runInDir(repoDir, "git", "symbolic-ref", "HEAD", "refs/heads/master")
	e.runInDir(repoDir, "git", "config", "user.name", "Test User")
	e.runInDir(repoDir, "git", "config", "user.email", "test@example.com")
	e.runInDir(repoDir, "git", "config", "commit.gpgsign", "false")

	e.writeFile(filepath.Join(repoDir, "README.md"), "# Test Repository")
	e.runInDir(repoDir, "git", "add", ".")
	e.runInDir(repoDir, "git", "commit", "-m", "Initial commit")

	return &TestRepo{env: e, path: repoDir}
}

// CreateNonRepoDir creates a plain directory.
func (e *TestEnvironment) CreateNonRepoDir(name string) *TestRepo {
	e.t.Helper()

	dir := filepath.Join(e.tmpDir, name)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		e.t.Fatalf("Failed to create directory: %v", err)
	}
	return &TestRepo{env: e, path: dir}
}

func (e *TestEnvironment) runInDir(dir, command string, args ...string) string {
	e.t.Helper()

	cmd := exec.Command(command, args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		e.t.Fatalf("Command failed in %s: %s %s\nOutput: %s\nError: %v",
			dir, command, strings.Join(args, " "), output, err)
	}
	return string(output)
}

func (e *TestEnvironment) writeFile(path, content string) {
	e.t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		e.t.Fatalf("Failed to create directory %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		e.t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

type TestRepo struct {
	env  *TestEnvironment
	path string
}

// RunGitwrap runs the binary inside the repository with an isolated HOME
// and returns combined output.
func (r *TestRepo) RunGitwrap(args ...string) (string, error) {
	cmd := exec.Command(r.env.gitwrapBinary, args...) // #nosec G204 - test binary built above
	cmd.Dir = r.path
	cmd.Env = append(os.Environ(), "HOME="+r.env.tmpDir)

	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *TestRepo) Path() string {
	return r.path
}

func (r *TestRepo) WriteConfig(content string) {
	r.env.writeFile(filepath.Join(r.path, ".gitwrap.yml"), content)
}

func (r *TestRepo) HasFile(path string) bool {
	_, err := os.Stat(filepath.Join(r.path, path))
	return err == nil
}

func (r *TestRepo) CreateBranch(name string) {
	r.env.runInDir(r.path, "git", "branch", name)
}

func (r *TestRepo) GitStatus() string {
	return r.env.runInDir(r.path, "git", "status", "--porcelain")
}
