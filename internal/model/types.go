// Package model defines the domain types for the worktree-standalone CLI.
//
// The types in this package are shared by the workflow handlers and the
// cobra command layer: the error taxonomy every fatal failure is expressed
// in, and the result values printed in text, JSON, or YAML form.
package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a user-facing failure. Every kind is fatal to the
// current invocation and is reported once at the top level.
type ErrorKind string

const (
	// KindPathNotFound indicates a required filesystem path does not exist.
	KindPathNotFound ErrorKind = "PathNotFound"

	// KindNotARepo indicates a path exists but git does not consider it
	// to be inside a working tree.
	KindNotARepo ErrorKind = "NotAVersionControlRepo"

	// KindInvalidCopyPath indicates a copy_files entry, copy_globs pattern,
	// or --copy-file value is absolute or escapes the project root.
	KindInvalidCopyPath ErrorKind = "InvalidCopyPath"

	// KindInvalidConfiguration indicates .worktree_standalone.json is
	// malformed or has fields of the wrong type.
	KindInvalidConfiguration ErrorKind = "InvalidConfiguration"

	// KindExecutableNotFound indicates the program to run is not on PATH.
	KindExecutableNotFound ErrorKind = "ExecutableNotFound"

	// KindCommandFailed indicates a checked command exited non-zero.
	KindCommandFailed ErrorKind = "CommandFailed"

	// KindWorktreeCreationFailed indicates `git worktree add` failed.
	KindWorktreeCreationFailed ErrorKind = "WorktreeCreationFailed"

	// KindEmptyCommand indicates the tool command had no words after
	// shell-style splitting.
	KindEmptyCommand ErrorKind = "EmptyCommand"

	// KindMalformedCommand indicates the tool command could not be split,
	// e.g. because of an unterminated quote.
	KindMalformedCommand ErrorKind = "MalformedCommand"

	// KindUncommittedChanges indicates cleanup refused to remove a dirty
	// worktree without --force.
	KindUncommittedChanges ErrorKind = "UncommittedChanges"
)

// String returns the string representation of ErrorKind.
func (k ErrorKind) String() string {
	return string(k)
}

// ExitCode defines the process exit codes used by the CLI.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError is used for every fatal error. Scripts only need to
	// distinguish success from failure.
	ExitGeneralError ExitCode = 1
)

// CLIError is a custom error type that carries a failure kind and an exit
// code. The CLI layer uses it to translate domain errors into process exit
// codes and "Error: ..." output.
type CLIError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError of the given kind.
func NewCLIError(kind ErrorKind, message string) *CLIError {
	return &CLIError{Kind: kind, Code: ExitGeneralError, Message: message}
}

// WrapCLIError creates a new CLIError of the given kind that wraps err.
func WrapCLIError(kind ErrorKind, message string, err error) *CLIError {
	return &CLIError{Kind: kind, Code: ExitGeneralError, Message: message, Err: err}
}

// IsKind reports whether err, or any error it wraps, is a CLIError of the
// given kind. Only the outermost CLIError in the chain is inspected, so a
// WorktreeCreationFailed wrapping a CommandFailed reports only the former.
func IsKind(err error, kind ErrorKind) bool {
	var cliErr *CLIError
	if !errors.As(err, &cliErr) {
		return false
	}
	return cliErr.Kind == kind
}

// WorkBranchAction records what export did to the work-<id> branch in the
// main repository.
type WorkBranchAction string

const (
	// WorkBranchCreated means the branch did not exist and was created.
	WorkBranchCreated WorkBranchAction = "created"

	// WorkBranchUpdated means the branch was force-updated to the new HEAD.
	WorkBranchUpdated WorkBranchAction = "updated"

	// WorkBranchSkipped means the branch is checked out in a worktree and
	// git refuses to move it.
	WorkBranchSkipped WorkBranchAction = "skipped"
)

// CreateResult describes a worktree created by the create workflow.
type CreateResult struct {
	WorktreePath     string   `json:"worktreePath" yaml:"worktreePath"`
	UniqueID         string   `json:"uniqueId" yaml:"uniqueId"`
	WorkBranch       string   `json:"workBranch" yaml:"workBranch"`
	ReviewBranch     string   `json:"reviewBranch" yaml:"reviewBranch"`
	BaseBranch       string   `json:"baseBranch" yaml:"baseBranch"`
	ToolExitCode     int      `json:"toolExitCode" yaml:"toolExitCode"`
	Copied           []string `json:"copied,omitempty" yaml:"copied,omitempty"`
	ProvisionWarning string   `json:"provisionWarning,omitempty" yaml:"provisionWarning,omitempty"`
}

// ExportResult describes the branches written by the export workflow.
type ExportResult struct {
	ReviewBranch     string           `json:"reviewBranch" yaml:"reviewBranch"`
	WorkBranch       string           `json:"workBranch" yaml:"workBranch"`
	WorkBranchAction WorkBranchAction `json:"workBranchAction" yaml:"workBranchAction"`
	Commit           string           `json:"commit" yaml:"commit"`
	HadChanges       bool             `json:"hadChanges" yaml:"hadChanges"`
	AutoCommitted    bool             `json:"autoCommitted" yaml:"autoCommitted"`
	Detached         bool             `json:"detached,omitempty" yaml:"detached,omitempty"`
	Log              string           `json:"log,omitempty" yaml:"log,omitempty"`
}

// CleanupResult describes what the cleanup workflow removed.
type CleanupResult struct {
	WorktreePath      string `json:"worktreePath" yaml:"worktreePath"`
	Existed           bool   `json:"existed" yaml:"existed"`
	WorkBranch        string `json:"workBranch,omitempty" yaml:"workBranch,omitempty"`
	WorkBranchDeleted bool   `json:"workBranchDeleted" yaml:"workBranchDeleted"`
}

// WorktreeEntry is one worktree under <project-parent>/.worktrees as
// reported by the list workflow.
type WorktreeEntry struct {
	UniqueID     string `json:"uniqueId" yaml:"uniqueId"`
	Path         string `json:"path" yaml:"path"`
	Branch       string `json:"branch,omitempty" yaml:"branch,omitempty"`
	HEAD         string `json:"head" yaml:"head"`
	ReviewBranch string `json:"reviewBranch" yaml:"reviewBranch"`
	HasReview    bool   `json:"hasReview" yaml:"hasReview"`
}
