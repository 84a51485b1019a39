// Package workflow implements the create, export, cleanup and list
// operations on top of the worktree, provision and runner packages.
//
// Each operation validates its inputs, runs an ordered sequence of git
// commands, prints progress lines through an output.Printer, and returns a
// model result value that the CLI layer can render as text, JSON or YAML.
// Fatal failures are returned as *model.CLIError; non-fatal ones are
// printed as warnings and recorded on the result.
package workflow

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/shinji-kodama/worktree-standalone/internal/model"
	"github.com/shinji-kodama/worktree-standalone/internal/output"
	"github.com/shinji-kodama/worktree-standalone/internal/provision"
	"github.com/shinji-kodama/worktree-standalone/internal/runner"
	"github.com/shinji-kodama/worktree-standalone/internal/worktree"
)

// DefaultBaseBranch is the branch new worktrees start from and the lower
// bound of export's commit preview.
const DefaultBaseBranch = "main"

// DefaultProgram is the command name shown in follow-up hints.
const DefaultProgram = "worktree-standalone"

// Workflow carries the collaborators shared by every operation.
type Workflow struct {
	git         *worktree.Manager
	runner      runner.Runner
	out         *output.Printer
	provisioner *provision.Provisioner

	// Program is the command name used in printed export/cleanup hints.
	Program string

	// Now returns the current time. Worktree identities and auto-commit
	// messages are stamped with it.
	Now func() time.Time

	// NewSuffix returns the random part of a worktree identity.
	NewSuffix func() string
}

// New creates a Workflow that runs every external command through r and
// prints progress to out.
func New(r runner.Runner, out *output.Printer) *Workflow {
	return &Workflow{
		git:         worktree.NewManager(r),
		runner:      r,
		out:         out,
		provisioner: provision.NewProvisioner(out),
		Program:     DefaultProgram,
		Now:         time.Now,
		NewSuffix:   model.RandomSuffix,
	}
}

// resolvePath returns the absolute form of p with symlinks evaluated.
// Paths that do not exist are only made absolute so that the guards can
// report them.
func resolvePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", model.WrapCLIError(model.KindPathNotFound, "failed to resolve path "+p, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// exists reports whether p exists on disk.
func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// detail returns the message of the outermost CLIError in err's chain,
// which for a failed git command is git's own stderr.
func detail(err error) string {
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Error()
	}
	return err.Error()
}

// shortSHA abbreviates a commit hash for display.
func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
