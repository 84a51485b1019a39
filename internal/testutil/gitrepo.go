// Package testutil holds helpers shared by the integration tests of several
// packages. It is only imported from _test.go files.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// RequireGit skips the test when the git binary is not on PATH.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// SetupRepo creates <tmp>/project containing a git repository on branch
// "main" with a single commit, and returns the project path with symlinks
// resolved (macOS temp dirs live behind /var -> /private/var).
//
// The project sits one level below the temp root so that the sibling
// .worktrees directory is cleaned up with it.
func SetupRepo(t *testing.T) string {
	t.Helper()
	RequireGit(t)

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	dir := filepath.Join(root, "project")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	Git(t, dir, "init", "--quiet")
	// Pin the initial branch name regardless of init.defaultBranch.
	Git(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	Git(t, dir, "config", "user.email", "test@example.com")
	Git(t, dir, "config", "user.name", "Test User")
	Git(t, dir, "config", "commit.gpgsign", "false")

	WriteFile(t, filepath.Join(dir, "README.md"), "# Test Repo\n")
	Git(t, dir, "add", ".")
	Git(t, dir, "commit", "--quiet", "-m", "initial commit")

	return dir
}

// Git runs a git command in dir and fails the test if it exits non-zero.
// It returns the combined output.
func Git(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
	return string(output)
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
