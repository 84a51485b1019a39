// Package model defines the domain types and value objects for the
// worktree-standalone CLI.
//
// This package contains pure data structures with no process or filesystem
// side effects. Branch names are never stored anywhere: WorktreeNames is
// recomputed from a worktree directory name whenever a path is known.
//
// The package also defines the error taxonomy (ErrorKind) and the CLIError
// type that carries an exit code for proper OS process exit handling.
package model
