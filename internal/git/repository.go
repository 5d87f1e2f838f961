package git

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/satococoa/gitwrap/internal/command"
	"github.com/satococoa/gitwrap/internal/errors"
)

// Repository runs read-mostly helpers against one working copy.
// Every helper builds a fresh command, so handlers never see shared state.
type Repository struct {
	git  *Wrapper
	path string
}

// NewRepository opens the working copy at path.
func NewRepository(ctx context.Context, git *Wrapper, path string) (*Repository, error) {
	r := &Repository{git: git, path: path}
	if !r.IsRepository(ctx) {
		return nil, errors.NotInGitRepository(path)
	}
	return r, nil
}

func (r *Repository) Path() string {
	return r.path
}

func (r *Repository) run(ctx context.Context, cmd *command.Command) (string, error) {
	return r.git.Run(ctx, cmd.SetDir(r.path))
}

// IsRepository reports whether the path is inside a git work tree.
func (r *Repository) IsRepository(ctx context.Context) bool {
	out, err := r.run(ctx, command.RevParse("--is-inside-work-tree"))
	return err == nil && strings.TrimSpace(out) == "true"
}

// CurrentBranch returns the checked out branch, or "HEAD" when detached.
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, command.CurrentBranch())
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// HasChanges reports whether the work tree has staged, unstaged or untracked changes.
func (r *Repository) HasChanges(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, command.Status(command.StatusOptions{Porcelain: true}))
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}

// Branches returns local and remote-tracking branches as listed by `git branch -a`.
func (r *Repository) Branches(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, command.BranchList(false, true))
	if err != nil {
		return nil, fmt.Errorf("failed to get branches: %w", err)
	}
	return parseBranchList(out), nil
}

// LocalBranches returns only local branches.
func (r *Repository) LocalBranches(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, command.BranchList(false, false))
	if err != nil {
		return nil, fmt.Errorf("failed to get local branches: %w", err)
	}
	return parseBranchList(out), nil
}

// RemoteBranches returns remote branches grouped by remote.
func (r *Repository) RemoteBranches(ctx context.Context) (map[string][]string, error) {
	out, err := r.run(ctx, command.BranchList(true, false))
	if err != nil {
		return nil, fmt.Errorf("failed to get remote branches: %w", err)
	}

	remoteBranches := make(map[string][]string)
	for _, line := range parseBranchList(out) {
		if strings.Contains(line, "->") {
			continue
		}
		remote, branch, found := strings.Cut(line, "/")
		if found {
			remoteBranches[remote] = append(remoteBranches[remote], branch)
		}
	}
	return remoteBranches, nil
}

// ResolveBranch resolves a branch name the way git checkout does: a local
// branch wins, otherwise exactly one remote must carry it.
func (r *Repository) ResolveBranch(ctx context.Context, branchName string) (string, error) {
	localBranches, err := r.LocalBranches(ctx)
	if err != nil {
		return "", err
	}
	if slices.Contains(localBranches, branchName) {
		return branchName, nil
	}

	remoteBranches, err := r.RemoteBranches(ctx)
	if err != nil {
		return "", err
	}

	var matchingRemotes []string
	for remote, branches := range remoteBranches {
		if slices.Contains(branches, branchName) {
			matchingRemotes = append(matchingRemotes, remote)
		}
	}
	slices.Sort(matchingRemotes)

	switch len(matchingRemotes) {
	case 0:
		return "", fmt.Errorf("branch '%s' not found in local or remote branches", branchName)
	case 1:
		return fmt.Sprintf("%s/%s", matchingRemotes[0], branchName), nil
	default:
		return "", fmt.Errorf("branch '%s' exists in multiple remotes: %s. Please specify remote explicitly",
			branchName, strings.Join(matchingRemotes, ", "))
	}
}

// Worktrees lists the worktrees of the repository, main worktree first.
func (r *Repository) Worktrees(ctx context.Context) ([]Worktree, error) {
	out, err := r.run(ctx, command.GitWorktreeList())
	if err != nil {
		return nil, fmt.Errorf("failed to list worktrees: %w", err)
	}
	worktrees := parseWorktreeList(out)
	if len(worktrees) > 0 {
		worktrees[0].IsMain = true
	}
	return worktrees, nil
}

// CreateWorktree adds a worktree at path. A branch that only exists on one
// remote gets a local tracking branch of the same name.
func (r *Repository) CreateWorktree(ctx context.Context, path, branchName string) error {
	var opts command.GitWorktreeAddOptions
	commitish := branchName
	if branchName != "" {
		resolved, err := r.ResolveBranch(ctx, branchName)
		if err != nil {
			return fmt.Errorf("failed to resolve branch: %w", err)
		}
		if resolved != branchName {
			opts.Track = resolved
			commitish = resolved
		}
	}

	if _, err := r.run(ctx, command.GitWorktreeAdd(path, commitish, opts)); err != nil {
		return fmt.Errorf("failed to create worktree: %w", err)
	}
	return nil
}

// RemoveWorktree removes the worktree at path.
func (r *Repository) RemoveWorktree(ctx context.Context, path string, force bool) error {
	if _, err := r.run(ctx, command.GitWorktreeRemove(path, force)); err != nil {
		return fmt.Errorf("failed to remove worktree: %w", err)
	}
	return nil
}

func parseBranchList(output string) []string {
	var branches []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// "* " marks the current branch, "+ " one checked out in another worktree
		if after, found := strings.CutPrefix(line, "* "); found {
			line = after
		} else if after, found := strings.CutPrefix(line, "+ "); found {
			line = after
		}
		branches = append(branches, line)
	}
	return branches
}

func parseWorktreeList(output string) []Worktree {
	var worktrees []Worktree
	var current *Worktree
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if current != nil {
				worktrees = append(worktrees, *current)
				current = nil
			}
			continue
		}

		if after, found := strings.CutPrefix(line, "worktree "); found {
			current = &Worktree{Path: after}
			continue
		}
		if current == nil {
			continue
		}
		switch {
		case strings.HasPrefix(line, "HEAD "):
			current.HEAD = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch refs/heads/"):
			current.Branch = strings.TrimPrefix(line, "branch refs/heads/")
		case line == "bare":
			current.Bare = true
		case line == "detached":
			current.Detached = true
		}
	}

	if current != nil {
		worktrees = append(worktrees, *current)
	}
	return worktrees
}
