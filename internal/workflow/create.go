package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/shlex"
	"github.com/rs/zerolog"

	"github.com/shinji-kodama/worktree-standalone/internal/model"
	"github.com/shinji-kodama/worktree-standalone/internal/runner"
)

// maxIDAttempts bounds how many identities Create draws before giving up
// on finding an unused worktree directory.
const maxIDAttempts = 10

// CreateOptions are the inputs of Create.
type CreateOptions struct {
	// ProjectPath is the main repository.
	ProjectPath string

	// Command is the tool command line, split with shell quoting rules.
	Command string

	// BaseBranch is the branch the new work branch starts from.
	// Empty means DefaultBaseBranch.
	BaseBranch string

	// CopyFiles are extra project-relative files to provision.
	CopyFiles []string
}

// Create adds a new worktree next to the project on a fresh work branch,
// provisions configured files into it, and runs the tool command inside
// it with the terminal attached.
//
// The tool's exit status is reported but never turns into an error.
// Provisioning failures are printed as warnings.
func (w *Workflow) Create(ctx context.Context, opts CreateOptions) (*model.CreateResult, error) {
	logger := zerolog.Ctx(ctx)

	project, err := resolvePath(opts.ProjectPath)
	if err != nil {
		return nil, err
	}
	if err := w.git.Validate(ctx, "Project path", project); err != nil {
		return nil, err
	}

	base := opts.BaseBranch
	if base == "" {
		base = DefaultBaseBranch
	}

	worktreePath, err := w.allocateWorktreePath(ctx, project)
	if err != nil {
		return nil, err
	}
	names := model.DeriveNames(worktreePath)

	w.out.Printf("Creating worktree at: %s\n", worktreePath)
	w.out.Printf("Branch: %s\n", names.WorkBranch)
	w.out.Printf("Based on: %s\n", base)

	if err := w.git.Add(ctx, project, worktreePath, names.WorkBranch, base); err != nil {
		if model.IsKind(err, model.KindExecutableNotFound) {
			return nil, err
		}
		return nil, model.NewCLIError(model.KindWorktreeCreationFailed,
			"Error creating worktree:\n"+detail(err))
	}
	w.out.Success("Worktree created successfully")

	result := &model.CreateResult{
		WorktreePath: worktreePath,
		UniqueID:     names.UniqueID,
		WorkBranch:   names.WorkBranch,
		ReviewBranch: names.ReviewBranch,
		BaseBranch:   base,
	}

	report, err := w.provisioner.Run(ctx, project, worktreePath, opts.CopyFiles)
	if report != nil {
		result.Copied = report.Copied
	}
	if err != nil {
		result.ProvisionWarning = err.Error()
		w.out.Warn("Failed to copy configured files: %s", result.ProvisionWarning)
	}

	argv, err := splitCommand(opts.Command)
	if err != nil {
		return nil, err
	}

	w.out.Println()
	w.out.Printf("Launching: %s\n", opts.Command)
	w.out.Printf("Working directory: %s\n", worktreePath)
	w.out.Separator()

	res, err := w.runner.Run(ctx, runner.Command{
		Argv: argv,
		Dir:  worktreePath,
		Mode: runner.Inherited,
	})
	if err != nil {
		return nil, err
	}
	result.ToolExitCode = res.ExitCode
	logger.Debug().Int("exit", res.ExitCode).Str("worktree", worktreePath).Msg("tool finished")

	w.out.Separator()
	w.out.Println()
	w.out.Success("CLI tool exited (code %d)", res.ExitCode)
	w.out.Println()
	w.out.Printf("Worktree path: %s\n", worktreePath)
	w.out.Printf("To export changes: %s export %s %s\n", w.Program, project, worktreePath)
	w.out.Printf("To cleanup: %s cleanup %s %s\n", w.Program, project, worktreePath)

	return result, nil
}

// allocateWorktreePath creates <project-parent>/.worktrees if needed and
// returns an unused directory path inside it.
func (w *Workflow) allocateWorktreePath(ctx context.Context, project string) (string, error) {
	dir := model.WorktreesDir(project)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", model.WrapCLIError(model.KindWorktreeCreationFailed,
			fmt.Sprintf("Failed to create %s", dir), err)
	}

	for i := 0; i < maxIDAttempts; i++ {
		candidate := filepath.Join(dir, model.NewWorktreeID(w.Now(), w.NewSuffix()))
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
		zerolog.Ctx(ctx).Debug().Str("path", candidate).Msg("worktree identity taken, drawing another")
	}
	return "", model.NewCLIError(model.KindWorktreeCreationFailed,
		fmt.Sprintf("Could not find an unused worktree directory in %s after %d attempts", dir, maxIDAttempts))
}

// splitCommand splits a tool command line using shell quoting rules.
func splitCommand(command string) ([]string, error) {
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, model.WrapCLIError(model.KindMalformedCommand,
			fmt.Sprintf("Tool command could not be parsed: %s", command), err)
	}
	if len(argv) == 0 {
		return nil, model.NewCLIError(model.KindEmptyCommand, "Tool command is empty after parsing")
	}
	return argv, nil
}
