package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shinji-kodama/worktree-standalone/internal/model"
)

// CleanupOptions are the inputs of Cleanup.
type CleanupOptions struct {
	ProjectPath  string
	WorktreePath string

	// Force removes the worktree even with uncommitted changes.
	Force bool
}

// Cleanup removes a worktree and its work-<id> branch. The review/<id>
// branch is never touched.
//
// A worktree path that does not exist is not an error, so cleanup can be
// repeated safely. Deleting the work branch and pruning are best effort.
func (w *Workflow) Cleanup(ctx context.Context, opts CleanupOptions) (*model.CleanupResult, error) {
	logger := zerolog.Ctx(ctx)

	worktreePath, err := resolvePath(opts.WorktreePath)
	if err != nil {
		return nil, err
	}
	result := &model.CleanupResult{WorktreePath: worktreePath}

	if !exists(worktreePath) {
		w.out.Printf("Worktree does not exist: %s\n", worktreePath)
		return result, nil
	}
	result.Existed = true

	project, err := resolvePath(opts.ProjectPath)
	if err != nil {
		return nil, err
	}
	if err := w.git.Validate(ctx, "Project path", project); err != nil {
		return nil, err
	}

	names := model.DeriveNames(worktreePath)
	result.WorkBranch = names.WorkBranch

	w.out.Printf("Removing worktree: %s\n", worktreePath)

	if !opts.Force {
		status, ok, err := w.git.TryStatus(ctx, worktreePath)
		if err != nil {
			return nil, err
		}
		if ok && strings.TrimSpace(status) != "" {
			return nil, model.NewCLIError(model.KindUncommittedChanges, fmt.Sprintf(
				"Uncommitted changes detected.\nUse --force to remove anyway, or export first with:\n  %s export %s %s",
				w.Program, project, worktreePath))
		}
	}

	if err := w.git.Remove(ctx, project, worktreePath, opts.Force); err != nil {
		return nil, err
	}
	w.out.Success("Worktree removed")

	if err := w.git.DeleteBranch(ctx, project, names.WorkBranch); err != nil {
		logger.Debug().Err(err).Str("branch", names.WorkBranch).Msg("work branch not deleted")
	} else {
		result.WorkBranchDeleted = true
		w.out.Success("Removed branch %s", names.WorkBranch)
	}

	if err := w.git.Prune(ctx, project); err != nil {
		logger.Debug().Err(err).Msg("worktree prune failed")
	}

	w.out.Println()
	w.out.Success("Cleanup complete!")
	return result, nil
}
