package model

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WorktreesDirName is the directory, next to the project, that holds every
// worktree created by this tool.
const WorktreesDirName = ".worktrees"

// idTimeLayout formats the timestamp part of a worktree identity
// (YYYYMMDD-HHMMSS).
const idTimeLayout = "20060102-150405"

// WorktreeNames holds the branch names tied to a worktree directory.
// It is a pure function of the directory's base name and is recomputed
// wherever a worktree path is known.
type WorktreeNames struct {
	// UniqueID is the worktree directory's base name.
	UniqueID string

	// WorkBranch is the transient branch checked out in the worktree.
	WorkBranch string

	// ReviewBranch is the durable branch export writes for review.
	ReviewBranch string
}

// DeriveNames returns the WorktreeNames for the given worktree path.
// Any string is accepted; the final path segment becomes the unique ID.
func DeriveNames(worktreePath string) WorktreeNames {
	id := filepath.Base(worktreePath)
	return WorktreeNames{
		UniqueID:     id,
		WorkBranch:   "work-" + id,
		ReviewBranch: "review/" + id,
	}
}

// NewWorktreeID formats a worktree identity of the form
// YYYYMMDD-HHMMSS-<suffix>.
func NewWorktreeID(now time.Time, suffix string) string {
	return now.Format(idTimeLayout) + "-" + suffix
}

// RandomSuffix returns 8 lowercase hex characters taken from a random UUID.
func RandomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// WorktreesDir returns <project-parent>/.worktrees for a project path.
func WorktreesDir(projectPath string) string {
	return filepath.Join(filepath.Dir(projectPath), WorktreesDirName)
}
