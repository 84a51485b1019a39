package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"
)

// ExecRunner runs commands as real OS processes via os/exec.
type ExecRunner struct {
	// Stdin, Stdout and Stderr are handed to children in Inherited mode.
	// NewExecRunner sets them to the process's own standard streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner creates an ExecRunner wired to os.Stdin/os.Stdout/os.Stderr.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes cmd and waits for it to finish.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if len(cmd.Argv) == 0 {
		return Result{}, errEmptyCommand()
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Strs("argv", cmd.Argv).
		Str("dir", cmd.Dir).
		Stringer("mode", cmd.Mode).
		Msg("exec")

	// #nosec G204 -- running user-supplied commands is the purpose of this tool
	c := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	if cmd.Mode == Inherited {
		c.Stdin = r.Stdin
		c.Stdout = r.Stdout
		c.Stderr = r.Stderr
	} else {
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	err := c.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
		case errors.Is(err, exec.ErrNotFound):
			return Result{}, errNotFound(cmd.Argv[0], err)
		case errors.Is(err, os.ErrNotExist) && c.Process == nil:
			// A path-like program (./tool, /usr/bin/x) that does not exist.
			if _, statErr := os.Stat(programPath(c.Path, cmd.Dir)); statErr != nil {
				return Result{}, errNotFound(cmd.Argv[0], err)
			}
			return Result{}, err
		default:
			return Result{}, err
		}
	}

	logger.Debug().
		Strs("argv", cmd.Argv).
		Int("exit", res.ExitCode).
		Msg("exec finished")

	return res, checkResult(cmd, res)
}

// programPath returns where the child looks for a path-like program. The
// child changes into dir before exec, so a relative path resolves there
// rather than in this process's working directory.
func programPath(path, dir string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
