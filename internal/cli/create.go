// Package cli — create.go implements the "worktree-standalone create" command.
//
// Orchestration steps (see workflow.Create):
//  1. Validate the project path and that it is a Git repository
//  2. Add a worktree under <project-parent>/.worktrees on a new work-<id> branch
//  3. Copy configured untracked files into it
//  4. Launch the tool command inside it with the terminal attached
//  5. Print export/cleanup hints (or the result as JSON/YAML)
package cli

import (
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/worktree-standalone/internal/workflow"
)

// createFlags holds the flag values for the create command.
// These are bound to cobra flags in NewCreateCommand.
type createFlags struct {
	branch    string   // --branch: base branch for the new work branch
	copyFiles []string // --copy-file: extra files to provision (repeatable)
}

// NewCreateCommand creates the "create" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewCreateCommand() *cobra.Command {
	flags := &createFlags{}

	cmd := &cobra.Command{
		Use:   "create <project_path> <tool_command>",
		Short: "Create a worktree and launch a CLI tool inside it",
		Long: `Create a new Git worktree next to the project and launch an interactive
CLI tool inside it.

The worktree is placed at <project-parent>/.worktrees/<YYYYMMDD-HHMMSS-xxxxxxxx>
on a new branch work-<id>. Files listed in <project>/.worktree_standalone.json
(copy_files, copy_globs) and --copy-file values are copied into it first.

The tool command is split with shell quoting rules. Its exit code is
reported but does not make create fail.

Examples:
  worktree-standalone create ~/src/app "codex --yolo"
  worktree-standalone create --branch develop ~/src/app claude
  worktree-standalone create --copy-file .env --copy-file config/local.yaml ~/src/app "aider --model o3"`,

		// Exactly two positional arguments: the project and the tool command.
		// A tool command with arguments must be quoted as one argument.
		Args: cobra.ExactArgs(2),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, args[0], args[1], flags)
		},
	}

	// Register command-specific flags.
	// --copy-file uses StringArray rather than StringSlice so that a path
	// containing a comma is not split into two entries.
	cmd.Flags().StringVar(&flags.branch, "branch", workflow.DefaultBaseBranch, "Base branch to create the worktree from")
	cmd.Flags().StringArrayVar(&flags.copyFiles, "copy-file", nil, "Extra file to copy into the worktree, relative to the project (repeatable)")

	return cmd
}

// runCreate runs the create workflow and prints the structured result
// when requested.
//
// The workflow prints its own progress and hands the terminal to the tool
// while it runs, so in text mode there is nothing left to print afterwards.
func runCreate(cmd *cobra.Command, projectPath, command string, flags *createFlags) error {
	VerboseLog(cmd, "Project path: %s", projectPath)
	VerboseLog(cmd, "Tool command: %s", command)

	result, err := newWorkflow(cmd).Create(cmd.Context(), workflow.CreateOptions{
		ProjectPath: projectPath,
		Command:     command,
		BaseBranch:  flags.branch,
		CopyFiles:   flags.copyFiles,
	})
	if err != nil {
		return err
	}
	return printResult(cmd, result)
}
