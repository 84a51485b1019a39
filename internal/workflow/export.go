package workflow

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shinji-kodama/worktree-standalone/internal/model"
	"github.com/shinji-kodama/worktree-standalone/internal/worktree"
)

// autoCommitTimeLayout stamps auto-commit messages with microsecond
// precision local time.
const autoCommitTimeLayout = "2006-01-02T15:04:05.000000"

// logPreviewLimit caps the number of commits shown after an export.
const logPreviewLimit = 10

// ExportOptions are the inputs of Export.
type ExportOptions struct {
	ProjectPath  string
	WorktreePath string

	// AutoCommit stages and commits pending worktree changes before the
	// snapshot is taken.
	AutoCommit bool

	// BaseBranch is the lower bound of the commit preview only.
	// Empty means DefaultBaseBranch.
	BaseBranch string
}

// Export snapshots the worktree's HEAD into the work-<id> and review/<id>
// branches of the main repository.
//
// review/<id> is always force-updated. work-<id> is created when absent,
// force-updated when present, and left alone when it is checked out in a
// worktree, which git does not allow to be moved.
func (w *Workflow) Export(ctx context.Context, opts ExportOptions) (*model.ExportResult, error) {
	logger := zerolog.Ctx(ctx)

	project, err := resolvePath(opts.ProjectPath)
	if err != nil {
		return nil, err
	}
	worktreePath, err := resolvePath(opts.WorktreePath)
	if err != nil {
		return nil, err
	}

	if err := worktree.RequirePath("Project path", project); err != nil {
		return nil, err
	}
	if err := worktree.RequirePath("Worktree path", worktreePath); err != nil {
		return nil, err
	}
	if err := w.git.RequireRepo(ctx, project); err != nil {
		return nil, err
	}
	if err := w.git.RequireRepo(ctx, worktreePath); err != nil {
		return nil, err
	}

	base := opts.BaseBranch
	if base == "" {
		base = DefaultBaseBranch
	}
	names := model.DeriveNames(worktreePath)
	result := &model.ExportResult{
		ReviewBranch: names.ReviewBranch,
		WorkBranch:   names.WorkBranch,
	}

	w.out.Printf("Exporting worktree: %s\n", worktreePath)
	w.out.Printf("To review branch: %s\n", names.ReviewBranch)

	dirty, err := w.git.HasChanges(ctx, worktreePath)
	if err != nil {
		return nil, err
	}
	result.HadChanges = dirty

	switch {
	case dirty && opts.AutoCommit:
		w.out.Println("Found uncommitted changes, auto-committing...")
		if err := w.git.StageAll(ctx, worktreePath); err != nil {
			return nil, err
		}
		message := "Auto-commit: Export to review at " + w.Now().Format(autoCommitTimeLayout)
		if err := w.git.Commit(ctx, worktreePath, message); err != nil {
			return nil, err
		}
		result.AutoCommitted = true
		w.out.Success("Changes committed")
	case dirty:
		w.out.Warn("Uncommitted changes exist but auto-commit is disabled")
	}

	head, err := w.git.RevParse(ctx, worktreePath, "HEAD")
	if err != nil {
		return nil, err
	}
	result.Commit = head

	// A detached worktree still exports; review/<id> then points at a bare
	// commit instead of a branch tip.
	if branch, err := w.git.GetCurrentBranch(ctx, worktreePath); err != nil {
		logger.Debug().Err(err).Msg("current branch unavailable")
	} else if branch == "HEAD" {
		result.Detached = true
		w.out.Info("Worktree HEAD is detached, exporting commit %s", shortSHA(head))
	}

	action, err := w.syncWorkBranch(ctx, project, names.WorkBranch, head)
	if err != nil {
		return nil, err
	}
	result.WorkBranchAction = action

	if err := w.git.ForceBranch(ctx, project, names.ReviewBranch, head); err != nil {
		return nil, err
	}
	w.out.Success("Created/updated %s -> %s", names.ReviewBranch, shortSHA(head))

	commits, ok, err := w.git.LogRange(ctx, project, base, names.ReviewBranch, logPreviewLimit)
	if err != nil {
		logger.Debug().Err(err).Msg("commit preview unavailable")
	}
	if ok && strings.TrimSpace(commits) != "" {
		result.Log = commits
		w.out.Println()
		w.out.Printf("Commits in %s (since %s):\n", names.ReviewBranch, base)
		w.out.Println(strings.TrimRight(commits, "\n"))
	}

	w.out.Println()
	w.out.Success("Export complete!")
	w.out.Printf("Review branch: %s\n", names.ReviewBranch)
	w.out.Printf("To push: cd %s && git push -u origin %s\n", project, names.ReviewBranch)
	w.out.Printf("To cleanup worktree: %s cleanup %s %s\n", w.Program, project, worktreePath)

	return result, nil
}

// syncWorkBranch points branch at commit in the main repository.
func (w *Workflow) syncWorkBranch(ctx context.Context, project, branch, commit string) (model.WorkBranchAction, error) {
	present, err := w.git.BranchExists(ctx, project, branch)
	if err != nil {
		return "", err
	}
	if !present {
		if err := w.git.CreateBranch(ctx, project, branch, commit); err != nil {
			return "", err
		}
		w.out.Success("Created branch %s", branch)
		return model.WorkBranchCreated, nil
	}

	path, active, err := w.git.BranchCheckedOut(ctx, project, branch)
	if err != nil {
		return "", err
	}
	if active {
		zerolog.Ctx(ctx).Debug().Str("branch", branch).Str("worktree", path).Msg("branch checked out")
		w.out.Info("Skipped updating %s: branch is active in a worktree", branch)
		return model.WorkBranchSkipped, nil
	}

	if err := w.git.ForceBranch(ctx, project, branch, commit); err != nil {
		if strings.Contains(detail(err), "used by worktree") {
			w.out.Info("Skipped updating %s: branch is active in a worktree", branch)
			return model.WorkBranchSkipped, nil
		}
		return "", err
	}
	w.out.Success("Updated branch %s", branch)
	return model.WorkBranchUpdated, nil
}
