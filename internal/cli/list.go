// Package cli — list.go implements the "worktree-standalone list" command.
//
// The list command shows the worktrees under <project-parent>/.worktrees that
// are registered with the project, with their checked-out branch and whether
// a review branch has been exported. The paths it prints are the ones
// export and cleanup expect.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/worktree-standalone/internal/model"
)

// NewListCommand creates the "list" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <project_path>",
		Short: "List worktrees created for a project",
		Long: `List the worktrees in <project-parent>/.worktrees that belong to the project.

Each worktree is shown with its id, checked-out branch, whether review/<id>
exists, and its path.

Examples:
  worktree-standalone list ~/src/app
  worktree-standalone list --json ~/src/app`,

		// Exactly one positional argument (the project path) is required.
		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args[0])
		},
	}

	return cmd
}

// runList is the main logic function for the list command.
func runList(cmd *cobra.Command, projectPath string) error {
	entries, err := newWorkflow(cmd).List(cmd.Context(), projectPath)
	if err != nil {
		return err
	}
	VerboseLog(cmd, "Found %d worktree(s)", len(entries))

	if isStructuredOutput() {
		// Use a wrapper so that an empty result is [] rather than null.
		return printResult(cmd, listResult{Worktrees: entries})
	}
	printListResultText(cmd.OutOrStdout(), entries)
	return nil
}

// listResult is the structured output of the list command.
type listResult struct {
	Worktrees []model.WorktreeEntry `json:"worktrees" yaml:"worktrees"`
}

// printListResultText outputs the worktrees as a human-readable text table
// with aligned columns.
//
// The table format is:
//
//	ID                        BRANCH                         REVIEW  PATH
//	20250101-120000-1a2b3c4d  work-20250101-120000-1a2b3c4d  yes     /src/.worktrees/20250101-120000-1a2b3c4d
func printListResultText(w io.Writer, entries []model.WorktreeEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No worktrees found.")
		return
	}

	fmt.Fprintf(w, "%-25s %-30s %-7s %s\n", "ID", "BRANCH", "REVIEW", "PATH")
	for _, e := range entries {
		fmt.Fprintf(w, "%-25s %-30s %-7s %s\n", e.UniqueID, FormatBranch(e.Branch), FormatReview(e.HasReview), e.Path)
	}
}

// FormatBranch returns the branch for display, or "(detached)" when the
// worktree has no branch checked out.
func FormatBranch(branch string) string {
	if branch == "" {
		return "(detached)"
	}
	return branch
}

// FormatReview renders whether a review branch exists.
func FormatReview(hasReview bool) string {
	if hasReview {
		return "yes"
	}
	return "-"
}
