package runner

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/worktree-standalone/internal/model"
)

// requireSh skips tests that shell out when /bin/sh is unavailable.
func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunner_CapturedOutput(t *testing.T) {
	requireSh(t)
	r := NewExecRunner()

	res, err := r.Run(context.Background(), Command{
		Argv: []string{"sh", "-c", "echo out; echo err >&2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
}

// TestExecRunner_NonZeroUnchecked verifies that a failing command is not an
// error unless Check is set.
func TestExecRunner_NonZeroUnchecked(t *testing.T) {
	requireSh(t)
	r := NewExecRunner()

	res, err := r.Run(context.Background(), Command{Argv: []string{"sh", "-c", "exit 3"}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Success())
}

func TestExecRunner_CheckedFailureCarriesStderr(t *testing.T) {
	requireSh(t)
	r := NewExecRunner()

	_, err := r.Run(context.Background(), Command{
		Argv:  []string{"sh", "-c", "echo 'bad thing' >&2; exit 1"},
		Check: true,
	})
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindCommandFailed))
	assert.Equal(t, "bad thing", err.Error())
}

func TestExecRunner_CheckedFailureGenericMessage(t *testing.T) {
	requireSh(t)
	r := NewExecRunner()

	_, err := r.Run(context.Background(), Command{
		Argv:  []string{"sh", "-c", "exit 2"},
		Check: true,
	})
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindCommandFailed))
	assert.Contains(t, err.Error(), "exited with status 2")
}

func TestExecRunner_ExecutableNotFound(t *testing.T) {
	r := NewExecRunner()

	_, err := r.Run(context.Background(), Command{Argv: []string{"definitely-not-a-real-program-xyz"}})
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindExecutableNotFound))
	assert.Contains(t, err.Error(), "Command not found: definitely-not-a-real-program-xyz")
}

func TestExecRunner_ExecutableNotFoundPath(t *testing.T) {
	r := NewExecRunner()

	_, err := r.Run(context.Background(), Command{Argv: []string{"./no-such-tool"}, Dir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindExecutableNotFound))
}

// TestExecRunner_ExecutableNotFoundRelativeToDir verifies that a relative
// program is looked up in Command.Dir, even when a file of the same name
// exists in the test's own working directory.
func TestExecRunner_ExecutableNotFoundRelativeToDir(t *testing.T) {
	const name = "runner-test-tool"
	require.NoError(t, os.WriteFile(name, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	t.Cleanup(func() { _ = os.Remove(name) })

	for _, mode := range []Mode{Captured, Inherited} {
		t.Run(mode.String(), func(t *testing.T) {
			r := &ExecRunner{Stdin: strings.NewReader(""), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
			_, err := r.Run(context.Background(), Command{
				Argv: []string{"./" + name},
				Dir:  t.TempDir(),
				Mode: mode,
			})
			require.Error(t, err)
			assert.True(t, model.IsKind(err, model.KindExecutableNotFound))
			assert.True(t, strings.HasPrefix(err.Error(), "Command not found: ./"+name), err.Error())
		})
	}
}

func TestProgramPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		dir  string
		want string
	}{
		{name: "relative with dir", path: "./tool", dir: "/work", want: "/work/tool"},
		{name: "relative without dir", path: "./tool", dir: "", want: "./tool"},
		{name: "absolute", path: "/usr/bin/tool", dir: "/work", want: "/usr/bin/tool"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, programPath(tt.path, tt.dir))
		})
	}
}

func TestExecRunner_EmptyCommand(t *testing.T) {
	_, err := NewExecRunner().Run(context.Background(), Command{})
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindEmptyCommand))
}

// TestExecRunner_Dir verifies the working directory override.
func TestExecRunner_Dir(t *testing.T) {
	requireSh(t)
	dir := t.TempDir()

	res, err := NewExecRunner().Run(context.Background(), Command{
		Argv:  []string{"sh", "-c", "pwd -P"},
		Dir:   dir,
		Check: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Stdout)
}

// TestExecRunner_Inherited verifies that inherited mode writes straight to
// the runner's streams and captures nothing.
func TestExecRunner_Inherited(t *testing.T) {
	requireSh(t)
	var out bytes.Buffer
	r := &ExecRunner{Stdin: bytes.NewReader(nil), Stdout: &out, Stderr: &out}

	res, err := r.Run(context.Background(), Command{
		Argv: []string{"sh", "-c", "echo visible; exit 4"},
		Mode: Inherited,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.ExitCode)
	assert.Empty(t, res.Stdout)
	assert.Equal(t, "visible\n", out.String())
}

func TestFake_MatchingAndRecording(t *testing.T) {
	f := NewFake().
		On("/repo", Result{Stdout: "true\n"}, "git", "rev-parse").
		On("", Result{ExitCode: 1, Stderr: "boom"}, "git", "branch")

	res, err := f.Run(context.Background(), Command{Argv: []string{"git", "rev-parse", "--is-inside-work-tree"}, Dir: "/repo"})
	require.NoError(t, err)
	assert.Equal(t, "true\n", res.Stdout)

	// Same argv in another directory falls through to the default.
	res, err = f.Run(context.Background(), Command{Argv: []string{"git", "rev-parse", "HEAD"}, Dir: "/elsewhere"})
	require.NoError(t, err)
	assert.Empty(t, res.Stdout)

	_, err = f.Run(context.Background(), Command{Argv: []string{"git", "branch", "-D", "x"}, Check: true})
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindCommandFailed))
	assert.Equal(t, "boom", err.Error())

	assert.Len(t, f.Calls, 3)
	assert.True(t, f.Called("git", "branch", "-D"))
	assert.False(t, f.Called("git", "worktree"))
	assert.Equal(t, "git rev-parse HEAD", f.Commands()[1])
}

func TestFake_LastHandlerWins(t *testing.T) {
	f := NewFake().
		On("", Result{Stdout: "first"}, "git").
		On("", Result{Stdout: "second"}, "git", "status")

	res, err := f.Run(context.Background(), Command{Argv: []string{"git", "status"}})
	require.NoError(t, err)
	assert.Equal(t, "second", res.Stdout)
}

func TestFake_Missing(t *testing.T) {
	f := NewFake().Missing("codex")

	_, err := f.Run(context.Background(), Command{Argv: []string{"codex", "--yolo"}})
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindExecutableNotFound))
}
