package command

import "strconv"

// StatusOptions represents options for git status
type StatusOptions struct {
	Short     bool
	Branch    bool
	Porcelain bool
}

// Status builds a git status command
func Status(opts StatusOptions) *Command {
	cmd := New("status")
	if opts.Short {
		cmd.SetFlag("s")
	}
	if opts.Branch {
		cmd.SetFlag("b")
	}
	if opts.Porcelain {
		cmd.SetFlag("porcelain")
	}
	return cmd
}

// RevParse builds a git rev-parse command
func RevParse(args ...string) *Command {
	return New("rev-parse", args...)
}

// CurrentBranch builds the command printing the checked out branch name
func CurrentBranch() *Command {
	return RevParse("--abbrev-ref", "HEAD")
}

// Init builds a git init command
func Init(dir string, bare bool) *Command {
	cmd := New("init")
	if bare {
		cmd.SetFlag("bare")
	}
	return cmd.AddArgument(dir)
}

// CloneOptions represents options for git clone
type CloneOptions struct {
	Branch string
	Depth  string
	Bare   bool
}

// CloneRepository builds a git clone command
func CloneRepository(repository, dir string, opts CloneOptions) *Command {
	cmd := New("clone")
	if opts.Bare {
		cmd.SetFlag("bare")
	}
	if opts.Branch != "" {
		cmd.SetOption("branch", opts.Branch)
	}
	if opts.Depth != "" {
		cmd.SetOption("depth", opts.Depth)
	}
	return cmd.AddArguments(repository, dir)
}

// Add builds a git add command
func Add(paths ...string) *Command {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	return New("add", paths...)
}

// CommitOptions represents options for git commit
type CommitOptions struct {
	All        bool
	AllowEmpty bool
	Author     string
}

// Commit builds a git commit command
func Commit(message string, opts CommitOptions) *Command {
	cmd := New("commit")
	if opts.All {
		cmd.SetFlag("a")
	}
	if opts.AllowEmpty {
		cmd.SetFlag("allow-empty")
	}
	if opts.Author != "" {
		cmd.SetOption("author", opts.Author)
	}
	return cmd.SetOption("m", message)
}

// Checkout builds a git checkout command; newBranch creates the branch with -b
func Checkout(ref string, newBranch bool) *Command {
	cmd := New("checkout")
	if newBranch {
		cmd.SetFlag("b")
	}
	return cmd.AddArgument(ref)
}

// Branch builds a git branch command creating name at startPoint
func Branch(name, startPoint string) *Command {
	return New("branch", name, startPoint)
}

// BranchList builds a git branch listing; remotes selects -r, all selects -a
func BranchList(remotes, all bool) *Command {
	cmd := New("branch")
	switch {
	case all:
		cmd.SetFlag("a")
	case remotes:
		cmd.SetFlag("r")
	}
	return cmd
}

// BranchDelete builds a git branch delete command
func BranchDelete(branchName string, force bool) *Command {
	cmd := New("branch")

	if force {
		cmd.SetFlag("D")
	} else {
		cmd.SetFlag("d")
	}

	return cmd.AddArgument(branchName)
}

// Tag builds a git tag command; a non-empty message makes it annotated
func Tag(name, message string) *Command {
	cmd := New("tag")
	if message != "" {
		cmd.SetFlag("a").SetOption("m", message)
	}
	return cmd.AddArgument(name)
}

// Fetch builds a git fetch command
func Fetch(remote string, prune bool) *Command {
	cmd := New("fetch")
	if prune {
		cmd.SetFlag("prune")
	}
	return cmd.AddArgument(remote)
}

// Pull builds a git pull command
func Pull(remote, branch string, rebase bool) *Command {
	cmd := New("pull")
	if rebase {
		cmd.SetFlag("rebase")
	}
	return cmd.AddArguments(remote, branch)
}

// PushOptions represents options for git push
type PushOptions struct {
	SetUpstream bool
	Force       bool
	Tags        bool
}

// Push builds a git push command
func Push(remote, refspec string, opts PushOptions) *Command {
	cmd := New("push")
	if opts.SetUpstream {
		cmd.SetFlag("u")
	}
	if opts.Force {
		cmd.SetFlag("force-with-lease")
	}
	if opts.Tags {
		cmd.SetFlag("tags")
	}
	return cmd.AddArguments(remote, refspec)
}

// Log builds a git log command limited to maxCount entries when positive
func Log(format string, maxCount int, revisions ...string) *Command {
	cmd := New("log")
	if format != "" {
		cmd.SetOption("format", format)
	}
	if maxCount > 0 {
		cmd.SetOption("max-count", strconv.Itoa(maxCount))
	}
	return cmd.AddArguments(revisions...)
}

// RemoteAdd builds a git remote add command; track limits fetched branches
// and may repeat (-t a -t b)
func RemoteAdd(name, url string, track ...string) *Command {
	cmd := New("remote").SetSubcommand("add")
	if len(track) > 0 {
		cmd.SetOption("t", track...)
	}
	return cmd.AddArguments(name, url)
}

// Reset builds a git reset command; mode is "soft", "mixed" or "hard"
func Reset(mode, commit string) *Command {
	cmd := New("reset")
	if mode != "" {
		cmd.SetFlag(mode)
	}
	return cmd.AddArgument(commit)
}

// Rm builds a git rm command
func Rm(cached bool, paths ...string) *Command {
	cmd := New("rm")
	if cached {
		cmd.SetFlag("cached")
	}
	return cmd.AddArguments(paths...)
}

// Mv builds a git mv command
func Mv(source, destination string) *Command {
	return New("mv", source, destination)
}

// Config builds a git config command; an empty value reads the key
func Config(key, value string) *Command {
	return New("config", key, value)
}

// VersionCommand builds git --version
func VersionCommand() *Command {
	return New("--version")
}

// GitWorktreeAddOptions represents options for git worktree add command
type GitWorktreeAddOptions struct {
	Force  bool
	Detach bool
	Branch string
	Track  string
}

// GitWorktreeAdd builds a git worktree add command
func GitWorktreeAdd(path, commitish string, opts GitWorktreeAddOptions) *Command {
	cmd := New("worktree").SetSubcommand("add")

	if opts.Force {
		cmd.SetFlag("force")
	}
	if opts.Detach {
		cmd.SetFlag("detach")
	}
	if opts.Branch != "" {
		cmd.SetOption("b", opts.Branch)
	}
	if opts.Track != "" {
		cmd.SetFlag("track")
		if !opts.Detach && opts.Branch == "" {
			// Tracking without an explicit branch creates one with the same name
			cmd.SetOption("b", extractBranchName(commitish))
		}
	}

	cmd.AddArgument(path)

	if opts.Branch == "" && commitish != "" {
		cmd.AddArgument(commitish)
	}

	return cmd
}

// GitWorktreeRemove builds a git worktree remove command
func GitWorktreeRemove(path string, force bool) *Command {
	cmd := New("worktree").SetSubcommand("remove")

	if force {
		cmd.SetFlag("force")
	}

	return cmd.AddArgument(path)
}

// GitWorktreeList builds a git worktree list command
func GitWorktreeList() *Command {
	return New("worktree").SetSubcommand("list").SetFlag("porcelain")
}

// extractBranchName extracts branch name from a remote reference
// e.g., "origin/feature" -> "feature"
func extractBranchName(ref string) string {
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == '/' {
			return ref[i+1:]
		}
	}
	return ref
}
