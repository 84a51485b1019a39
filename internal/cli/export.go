// Package cli — export.go implements the "worktree-standalone export" command.
//
// Export snapshots a worktree's HEAD into two branches of the main
// repository: work-<id> (skipped while it is checked out in a worktree) and
// review/<id>, the durable branch meant to be pushed for review. Pending
// changes are auto-committed first unless --no-auto-commit is given.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/worktree-standalone/internal/workflow"
)

// exportFlags holds the flag values for the export command.
type exportFlags struct {
	// noAutoCommit leaves uncommitted worktree changes out of the snapshot.
	noAutoCommit bool

	// base is the lower bound of the printed commit list.
	base string
}

// NewExportCommand creates the "export" cobra command.
func NewExportCommand() *cobra.Command {
	flags := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export <project_path> <worktree_path>",
		Short: "Export a worktree's changes to a review branch",
		Long: `Export the worktree's HEAD to the review/<id> branch of the main repository,
where <id> is the worktree directory name.

Uncommitted changes in the worktree are committed first with an
"Auto-commit: Export to review at <time>" message, unless --no-auto-commit
is given. Export can be run repeatedly; each run moves review/<id> to the
worktree's latest commit.

Examples:
  worktree-standalone export ~/src/app ~/src/.worktrees/20250101-120000-1a2b3c4d
  worktree-standalone export --no-auto-commit --base develop ~/src/app ~/src/.worktrees/20250101-120000-1a2b3c4d`,

		// Exactly two positional arguments: the project and the worktree.
		Args: cobra.ExactArgs(2),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], args[1], flags)
		},
	}

	// Register command-specific flags.
	// Auto-commit is on by default, so the flag is phrased negatively.
	cmd.Flags().BoolVar(&flags.noAutoCommit, "no-auto-commit", false, "Do not commit pending worktree changes before exporting")
	cmd.Flags().StringVar(&flags.base, "base", workflow.DefaultBaseBranch, "Base branch for the exported commit list")

	return cmd
}

// runExport is the main logic function for the export command.
// The branch names are derived from the worktree directory name, so the
// worktree path must be the one create printed.
func runExport(cmd *cobra.Command, projectPath, worktreePath string, flags *exportFlags) error {
	VerboseLog(cmd, "Exporting %s from project %s", worktreePath, projectPath)

	result, err := newWorkflow(cmd).Export(cmd.Context(), workflow.ExportOptions{
		ProjectPath:  projectPath,
		WorktreePath: worktreePath,
		AutoCommit:   !flags.noAutoCommit,
		BaseBranch:   flags.base,
	})
	if err != nil {
		return err
	}
	return printResult(cmd, result)
}
