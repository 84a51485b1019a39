// Package cli — cleanup.go implements the "worktree-standalone cleanup" command.
//
// The cleanup command removes a worktree created by create:
//  1. Refuses to touch a worktree with uncommitted changes unless --force
//  2. Removes the worktree directory via `git worktree remove`
//  3. Deletes the work-<id> branch and prunes stale worktree records
//
// The review/<id> branch is never deleted. Cleaning up a worktree that no
// longer exists succeeds without doing anything.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/worktree-standalone/internal/workflow"
)

// cleanupFlags holds the flag values for the cleanup command.
type cleanupFlags struct {
	// force removes the worktree even when it has uncommitted changes.
	force bool
}

// NewCleanupCommand creates the "cleanup" cobra command.
func NewCleanupCommand() *cobra.Command {
	flags := &cleanupFlags{}

	cmd := &cobra.Command{
		Use:   "cleanup <project_path> <worktree_path>",
		Short: "Remove a worktree and its work branch",
		Long: `Remove a worktree and its work-<id> branch. The review/<id> branch is kept.

Unless --force is specified, the command fails when the worktree has
uncommitted changes; export them first or pass --force to discard them.

Examples:
  worktree-standalone cleanup ~/src/app ~/src/.worktrees/20250101-120000-1a2b3c4d
  worktree-standalone cleanup --force ~/src/app ~/src/.worktrees/20250101-120000-1a2b3c4d`,

		// Exactly two positional arguments: the project and the worktree.
		Args: cobra.ExactArgs(2),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runCleanup(cmd, args[0], args[1], flags)
		},
	}

	// Register command-specific flags.
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Remove even with uncommitted changes")

	return cmd
}

// runCleanup is the main logic function for the cleanup command.
//
// Unlike the other commands, cleanup succeeds without touching the project
// when the worktree is already gone, so it can be rerun after a partial
// failure or a manual `rm -rf`.
func runCleanup(cmd *cobra.Command, projectPath, worktreePath string, flags *cleanupFlags) error {
	VerboseLog(cmd, "Cleaning up %s (force=%t)", worktreePath, flags.force)

	result, err := newWorkflow(cmd).Cleanup(cmd.Context(), workflow.CleanupOptions{
		ProjectPath:  projectPath,
		WorktreePath: worktreePath,
		Force:        flags.force,
	})
	if err != nil {
		return err
	}
	return printResult(cmd, result)
}
