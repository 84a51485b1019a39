// Package cli implements the cobra-based CLI commands for worktree-standalone.
//
// Each subcommand (create, export, cleanup, list) is defined in its own
// file within this package. This file defines the root command that serves as
// the parent for all subcommands and handles global flags, error reporting
// and structured (JSON/YAML) result output.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/worktree-standalone/internal/logging"
	"github.com/shinji-kodama/worktree-standalone/internal/model"
	"github.com/shinji-kodama/worktree-standalone/internal/output"
	"github.com/shinji-kodama/worktree-standalone/internal/runner"
	"github.com/shinji-kodama/worktree-standalone/internal/workflow"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput prints the command result as JSON on stdout.
	// Progress lines and the launched tool's output move to stderr so that
	// stdout holds exactly one JSON document. Errors are JSON on stderr.
	jsonOutput bool

	// yamlOutput is the YAML counterpart of jsonOutput. The two flags are
	// mutually exclusive.
	yamlOutput bool

	// verbose enables debug tracing of every external command on stderr.
	// Setting WORKTREE_STANDALONE_DEBUG=1 has the same effect.
	verbose bool
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// errNoCommand is returned when the root command runs without a
// subcommand. Help has already been printed, so Run only sets the exit code.
var errNoCommand = errors.New("no command given")

// NewRootCommand creates and configures the root cobra command.
//
// The root command itself does not perform any action; invoked alone it
// prints help and fails. Actual functionality is provided by the
// subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		// Use is the one-line usage pattern shown in help output.
		Use:   "worktree-standalone",
		Short: "Run a CLI tool in a throwaway Git worktree and export its work for review",
		Long: `worktree-standalone runs an interactive CLI tool inside an isolated Git
worktree, then turns what it produced into a review branch.

Typical flow:
  1. create   add a worktree on a fresh work-<id> branch and launch the tool in it
  2. export   snapshot the worktree into work-<id> and review/<id> branches
  3. cleanup  remove the worktree and its work-<id> branch (review/<id> is kept)

Worktrees live in <project-parent>/.worktrees/<id>/.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		// A failed git command is not a usage mistake.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// Run reports each error once, as text, JSON or YAML.
		SilenceErrors: true,

		// Version is displayed when --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		// PersistentPreRunE runs before every subcommand and attaches the
		// logger to the command context.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(cmd.ErrOrStderr(), verbose || logging.VerboseFromEnv())
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
			return nil
		},

		// Without a subcommand there is nothing to do: show help and fail
		// so that scripts notice the mistake.
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errNoCommand
		},
	}

	// PersistentFlags are inherited by all subcommands, so --json, --yaml
	// and --verbose can be given before or after the subcommand name.
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON on stdout (progress goes to stderr)")
	rootCmd.PersistentFlags().BoolVar(&yamlOutput, "yaml", false, "Print the result as YAML on stdout (progress goes to stderr)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Trace every git and tool invocation on stderr")
	rootCmd.MarkFlagsMutuallyExclusive("json", "yaml")

	// Register subcommands. Each subcommand is defined in its own file
	// (create.go, export.go, etc.) and returns a *cobra.Command.
	rootCmd.AddCommand(NewCreateCommand())
	rootCmd.AddCommand(NewExportCommand())
	rootCmd.AddCommand(NewCleanupCommand())
	rootCmd.AddCommand(NewListCommand())

	return rootCmd
}

// Execute runs the root command and exits the process with the resulting
// code. This is the main entry point called from main.go.
func Execute(rootCmd *cobra.Command) {
	if code := Run(context.Background(), rootCmd); code != int(model.ExitSuccess) {
		os.Exit(code)
	}
}

// Run executes rootCmd with ctx and returns the process exit code.
//
// CLIError values carry their own exit code; other errors (flag parsing,
// argument validation) map to ExitGeneralError. Every error is reported
// once on the command's stderr.
func Run(ctx context.Context, rootCmd *cobra.Command) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return int(model.ExitSuccess)
	}
	if errors.Is(err, errNoCommand) {
		// Help is already on stdout; an extra error line would be noise.
		return int(model.ExitGeneralError)
	}

	// errors.As finds a CLIError even when it was wrapped with context by
	// fmt.Errorf on the way up.
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		printError(rootCmd.ErrOrStderr(), cliErr.Kind, cliErr.Error())
		return int(cliErr.Code)
	}

	printError(rootCmd.ErrOrStderr(), "", err.Error())
	return int(model.ExitGeneralError)
}

// errorReport is the structured form of a fatal error.
type errorReport struct {
	Error struct {
		Kind    string `json:"kind,omitempty" yaml:"kind,omitempty"`
		Message string `json:"message" yaml:"message"`
	} `json:"error" yaml:"error"`
}

// printError outputs an error message in the format selected by the
// global flags. Errors always go to stderr, even in JSON/YAML mode,
// because stdout is reserved for successful command output.
func printError(w io.Writer, kind model.ErrorKind, message string) {
	var report errorReport
	report.Error.Kind = kind.String()
	report.Error.Message = message

	switch {
	case jsonOutput:
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Fprintln(w, string(data))
	case yamlOutput:
		_ = encodeYAML(w, report)
	default:
		fmt.Fprintf(w, "Error: %s\n", message)
	}
}

// VerboseLog emits a debug line through the context logger. It is only
// visible with --verbose.
func VerboseLog(cmd *cobra.Command, format string, args ...any) {
	zerolog.Ctx(cmd.Context()).Debug().Msgf(format, args...)
}

// isStructuredOutput reports whether stdout is reserved for a JSON or YAML
// result.
func isStructuredOutput() bool {
	return jsonOutput || yamlOutput
}

// newWorkflow builds the workflow for one command invocation.
//
// Progress lines go to stdout, or to stderr when a structured result will
// be printed. For the same reason the launched tool's stdout is moved to
// stderr in structured mode.
func newWorkflow(cmd *cobra.Command) *workflow.Workflow {
	progress := cmd.OutOrStdout()
	toolOut := cmd.OutOrStdout()
	if isStructuredOutput() {
		progress = cmd.ErrOrStderr()
		toolOut = cmd.ErrOrStderr()
	}

	// The runner uses the command's streams rather than os.Std* so that
	// tests can capture everything through cmd.SetOut/SetErr.
	r := &runner.ExecRunner{
		Stdin:  cmd.InOrStdin(),
		Stdout: toolOut,
		Stderr: cmd.ErrOrStderr(),
	}
	w := workflow.New(r, output.New(progress))
	w.Program = cmd.Root().Name()
	return w
}

// printResult writes v to stdout as JSON or YAML when requested. In text
// mode the workflow's progress lines are the output and nothing is printed.
func printResult(cmd *cobra.Command, v any) error {
	w := cmd.OutOrStdout()
	switch {
	case jsonOutput:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case yamlOutput:
		return encodeYAML(w, v)
	}
	return nil
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return enc.Close()
}
