// Package worktree provides the git operations behind the create, export,
// cleanup and list workflows.
//
// All git operations are performed by running the git binary through a
// runner.Runner rather than using a Git library like go-git. This approach:
//   - Uses the exact same Git behavior the user sees in their terminal
//   - Covers the worktree porcelain (add/remove/prune/list) that go-git lacks
//   - Lets workflow tests swap in runner.Fake
//
// Every command runs with its working directory set to the repository or
// worktree it targets. Checked commands surface failures as model.CLIError
// values of kind CommandFailed whose message is git's own stderr.
//
// guard.go holds the repository checks that every workflow runs before
// touching a repository.
package worktree

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shinji-kodama/worktree-standalone/internal/model"
	"github.com/shinji-kodama/worktree-standalone/internal/runner"
)

// defaultGit is the git executable looked up on PATH.
const defaultGit = "git"

// WorktreeInfo holds metadata about a single Git worktree entry
// as parsed from `git worktree list --porcelain` output.
//
// Example porcelain output for a single worktree block:
//
//	worktree /path/to/feature-branch
//	HEAD abc123def456
//	branch refs/heads/feature-branch
type WorktreeInfo struct {
	// Path is the absolute filesystem path to the worktree directory.
	Path string

	// Branch is the full branch reference (e.g., "refs/heads/main").
	// Empty if the worktree is in a detached HEAD state.
	Branch string

	// HEAD is the commit SHA that the worktree currently points to.
	HEAD string

	// IsBare indicates whether this worktree entry represents a bare repository.
	IsBare bool

	// Prunable is set when git reports the worktree directory as missing.
	Prunable bool
}

// Manager provides Git operations by invoking the git CLI through a Runner.
//
// The Manager holds no repository state: every method receives the
// repository or worktree path it operates on, and that path becomes the
// working directory of the git process.
type Manager struct {
	// runner executes the git processes. Production code uses an
	// ExecRunner; workflow tests use runner.Fake to script git's answers.
	runner runner.Runner

	// git is the executable name. It is looked up on PATH by the runner,
	// which reports ExecutableNotFound when it is missing.
	git string
}

// NewManager creates a Manager that runs git through r.
//
// All commands run in Captured mode, so git's output never reaches the
// terminal directly; callers decide what to print.
func NewManager(r runner.Runner) *Manager {
	return &Manager{runner: r, git: defaultGit}
}

// Add creates a new worktree at worktreePath on a new branch started from
// baseBranch.
//
// It runs `git worktree add <worktreePath> -b <branch> <baseBranch>` in
// repoPath. Git creates the worktree directory itself (its parent must
// exist) and refuses when the branch already exists or baseBranch cannot
// be resolved; git's stderr becomes the error message in both cases.
//
// Parameters:
//   - repoPath: absolute path to the main Git repository (used as working directory)
//   - worktreePath: absolute path where the new worktree will be created
//   - branch: the new branch name, e.g. "work-20250101-120000-1a2b3c4d"
//   - baseBranch: the branch or commit the new branch starts from
func (m *Manager) Add(ctx context.Context, repoPath, worktreePath, branch, baseBranch string) error {
	_, err := m.check(ctx, repoPath, "worktree", "add", worktreePath, "-b", branch, baseBranch)
	return err
}

// List returns information about all worktrees associated with the given repository.
//
// It runs `git worktree list --porcelain` which produces machine-parseable output.
// Each worktree block is separated by a blank line.
func (m *Manager) List(ctx context.Context, repoPath string) ([]WorktreeInfo, error) {
	output, err := m.check(ctx, repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parsePorcelainOutput(output), nil
}

// Remove deletes a Git worktree at the specified path.
//
// This runs `git worktree remove <worktreePath>`, which removes the worktree
// directory and its administrative files under .git/worktrees. The branch
// that was checked out in the worktree is left in place; see DeleteBranch.
func (m *Manager) Remove(ctx context.Context, repoPath, worktreePath string, force bool) error {
	args := []string{"worktree", "remove", worktreePath}
	if force {
		// Without --force git refuses to remove a worktree that has
		// modified tracked files or untracked files.
		args = append(args, "--force")
	}
	_, err := m.check(ctx, repoPath, args...)
	return err
}

// Prune removes administrative data for worktrees whose directories are gone.
//
// `git worktree remove` normally leaves nothing behind, but a worktree
// directory deleted by hand stays registered (and reported as "prunable")
// until prune runs.
func (m *Manager) Prune(ctx context.Context, repoPath string) error {
	_, err := m.check(ctx, repoPath, "worktree", "prune")
	return err
}

// Status returns `git status --porcelain` output for path.
//
// The porcelain format is stable across git versions and empty when the
// working tree is clean, including untracked files in the check.
func (m *Manager) Status(ctx context.Context, path string) (string, error) {
	return m.check(ctx, path, "status", "--porcelain")
}

// TryStatus is Status without the exit check. ok is false when git exits
// non-zero, e.g. because path is no longer a valid worktree.
func (m *Manager) TryStatus(ctx context.Context, path string) (string, bool, error) {
	res, err := m.run(ctx, path, false, "status", "--porcelain")
	if err != nil {
		return "", false, err
	}
	return res.Stdout, res.Success(), nil
}

// HasChanges reports whether path has staged, unstaged or untracked changes.
func (m *Manager) HasChanges(ctx context.Context, path string) (bool, error) {
	out, err := m.Status(ctx, path)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// StageAll stages every change in path with `git add -A`.
func (m *Manager) StageAll(ctx context.Context, path string) error {
	_, err := m.check(ctx, path, "add", "-A")
	return err
}

// Commit records the staged changes in path with the given message.
func (m *Manager) Commit(ctx context.Context, path, message string) error {
	_, err := m.check(ctx, path, "commit", "-m", message)
	return err
}

// RevParse resolves rev to a full commit SHA in path.
func (m *Manager) RevParse(ctx context.Context, path, rev string) (string, error) {
	out, err := m.check(ctx, path, "rev-parse", rev)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// GetCurrentBranch returns the short name of the branch checked out at
// path, or "HEAD" when detached.
func (m *Manager) GetCurrentBranch(ctx context.Context, path string) (string, error) {
	out, err := m.check(ctx, path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// BranchExists reports whether refs/heads/<branch> exists in repoPath.
//
// The full ref name is used so that a tag or remote branch with the same
// short name is not mistaken for a local branch. Only the exit code of
// `git rev-parse --verify --quiet` is consulted; an error is returned only
// when git itself could not be run.
func (m *Manager) BranchExists(ctx context.Context, repoPath, branch string) (bool, error) {
	res, err := m.run(ctx, repoPath, false, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	if err != nil {
		return false, err
	}
	return res.Success(), nil
}

// CreateBranch creates branch at commit. It fails if the branch exists.
func (m *Manager) CreateBranch(ctx context.Context, repoPath, branch, commit string) error {
	_, err := m.check(ctx, repoPath, "branch", branch, commit)
	return err
}

// ForceBranch creates branch at commit, or moves it there if it exists.
//
// This is `git branch -f <branch> <commit>`. Git refuses to move a branch
// that is checked out in any worktree ("cannot force update the branch ...
// used by worktree at ..."); the error carries that message so callers can
// recognize it.
func (m *Manager) ForceBranch(ctx context.Context, repoPath, branch, commit string) error {
	_, err := m.check(ctx, repoPath, "branch", "-f", branch, commit)
	return err
}

// DeleteBranch force-deletes branch with `git branch -D`.
//
// -D is used instead of -d because work branches are usually not merged
// anywhere; their commits stay reachable through the review branch.
func (m *Manager) DeleteBranch(ctx context.Context, repoPath, branch string) error {
	_, err := m.check(ctx, repoPath, "branch", "-D", branch)
	return err
}

// BranchCheckedOut returns the path of the worktree that has branch checked
// out, if any. It reads the structured worktree registry instead of parsing
// error text from a failed branch update.
func (m *Manager) BranchCheckedOut(ctx context.Context, repoPath, branch string) (string, bool, error) {
	worktrees, err := m.List(ctx, repoPath)
	if err != nil {
		return "", false, err
	}
	ref := "refs/heads/" + branch
	for _, wt := range worktrees {
		if wt.Branch == ref {
			return wt.Path, true, nil
		}
	}
	return "", false, nil
}

// LogRange returns `git log --oneline <base>..<tip> --max-count=<limit>`.
// The command is not checked: ok is false when git exits non-zero, e.g.
// because base does not exist.
func (m *Manager) LogRange(ctx context.Context, repoPath, base, tip string, limit int) (string, bool, error) {
	res, err := m.run(ctx, repoPath, false,
		"log", "--oneline", base+".."+tip, "--max-count="+strconv.Itoa(limit))
	if err != nil {
		return "", false, err
	}
	return res.Stdout, res.Success(), nil
}

// check runs a git command that must succeed and returns its stdout.
// A non-zero exit becomes a CommandFailed error carrying git's stderr.
func (m *Manager) check(ctx context.Context, dir string, args ...string) (string, error) {
	res, err := m.run(ctx, dir, true, args...)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// run executes git with args in dir, capturing output.
//
// Setting the working directory is equivalent to `git -C <dir>`: git
// discovers the repository from dir, so the same helper serves both the
// main repository and its worktrees.
//
// When check is false a non-zero exit is returned in the Result instead
// of as an error, for callers that treat failure as an answer (e.g.
// BranchExists). Errors other than a missing git binary are prefixed with
// the git subcommand for context.
func (m *Manager) run(ctx context.Context, dir string, check bool, args ...string) (runner.Result, error) {
	argv := append([]string{m.git}, args...)
	res, err := m.runner.Run(ctx, runner.Command{
		Argv:  argv,
		Dir:   dir,
		Mode:  runner.Captured,
		Check: check,
	})
	if err != nil {
		if model.IsKind(err, model.KindExecutableNotFound) {
			return res, err
		}
		return res, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return res, nil
}

// parsePorcelainOutput parses the output of `git worktree list --porcelain`
// into a slice of WorktreeInfo structs.
//
// The porcelain format uses blank lines to separate worktree blocks.
// Each block contains key-value pairs (space-separated) and optional
// standalone markers like "bare", "detached" or "prunable".
func parsePorcelainOutput(output string) []WorktreeInfo {
	var worktrees []WorktreeInfo

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")

	var current *WorktreeInfo
	for _, line := range lines {
		if line == "" {
			if current != nil {
				worktrees = append(worktrees, *current)
				current = nil
			}
			continue
		}

		key, value, _ := strings.Cut(line, " ")

		switch key {
		case "worktree":
			current = &WorktreeInfo{Path: value}
		case "HEAD":
			if current != nil {
				current.HEAD = value
			}
		case "branch":
			if current != nil {
				current.Branch = value
			}
		case "bare":
			if current != nil {
				current.IsBare = true
			}
		case "prunable":
			if current != nil {
				current.Prunable = true
			}
		}
	}

	if current != nil {
		worktrees = append(worktrees, *current)
	}

	return worktrees
}
