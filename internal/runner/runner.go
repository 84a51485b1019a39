package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/shinji-kodama/worktree-standalone/internal/model"
)

// Mode selects how a child process's standard streams are handled.
type Mode int

const (
	// Captured buffers stdout and stderr into the Result.
	Captured Mode = iota

	// Inherited connects the child to the runner's own streams.
	Inherited
)

// String returns a short name for the mode, used in debug logs.
func (m Mode) String() string {
	if m == Inherited {
		return "inherited"
	}
	return "captured"
}

// Command describes one external process invocation.
type Command struct {
	// Argv is the program followed by its arguments. Must be non-empty.
	Argv []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Mode selects captured or inherited I/O.
	Mode Mode

	// Check turns a non-zero exit into a CommandFailed error.
	Check bool
}

// String renders the command vector for messages and logs.
func (c Command) String() string {
	return strings.Join(c.Argv, " ")
}

// Result is the outcome of a process that was started successfully.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the process exited with status 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes commands. Implementations return an ExecutableNotFound
// CLIError when the program cannot be located, and a CommandFailed CLIError
// when Check is set and the process exits non-zero. A non-zero exit without
// Check is not an error.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// errEmptyCommand is returned for a Command with no Argv.
func errEmptyCommand() error {
	return model.NewCLIError(model.KindEmptyCommand, "command vector must not be empty")
}

// errNotFound builds the uniform "command not found" failure.
func errNotFound(name string, err error) error {
	return model.WrapCLIError(model.KindExecutableNotFound, fmt.Sprintf("Command not found: %s", name), err)
}

// checkResult applies Check semantics shared by every Runner.
// The captured stderr becomes the error message; when it is empty a
// generic message naming the command and exit status is used instead.
func checkResult(cmd Command, res Result) error {
	if !cmd.Check || res.Success() {
		return nil
	}
	if detail := strings.TrimSpace(res.Stderr); detail != "" {
		return model.NewCLIError(model.KindCommandFailed, detail)
	}
	return model.NewCLIError(model.KindCommandFailed,
		fmt.Sprintf("%s exited with status %d", cmd.String(), res.ExitCode))
}
