package workflow

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shinji-kodama/worktree-standalone/internal/model"
)

// List returns the worktrees registered with the project that live under
// <project-parent>/.worktrees, sorted by identity (and thus by creation
// time). Worktrees created elsewhere are not reported.
func (w *Workflow) List(ctx context.Context, projectPath string) ([]model.WorktreeEntry, error) {
	project, err := resolvePath(projectPath)
	if err != nil {
		return nil, err
	}
	if err := w.git.Validate(ctx, "Project path", project); err != nil {
		return nil, err
	}

	infos, err := w.git.List(ctx, project)
	if err != nil {
		return nil, err
	}

	dir := model.WorktreesDir(project)
	entries := make([]model.WorktreeEntry, 0, len(infos))
	for _, info := range infos {
		if filepath.Dir(filepath.Clean(info.Path)) != dir {
			continue
		}

		names := model.DeriveNames(info.Path)
		hasReview, err := w.git.BranchExists(ctx, project, names.ReviewBranch)
		if err != nil {
			return nil, err
		}

		entries = append(entries, model.WorktreeEntry{
			UniqueID:     names.UniqueID,
			Path:         info.Path,
			Branch:       strings.TrimPrefix(info.Branch, "refs/heads/"),
			HEAD:         info.HEAD,
			ReviewBranch: names.ReviewBranch,
			HasReview:    hasReview,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UniqueID < entries[j].UniqueID
	})
	return entries, nil
}
