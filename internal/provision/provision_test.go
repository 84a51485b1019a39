package provision

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/worktree-standalone/internal/model"
	"github.com/shinji-kodama/worktree-standalone/internal/output"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// writeFile is a small helper that writes content under dir and fails the
// test on error.
func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	p := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func writeConfig(t *testing.T, project, content string) {
	t.Helper()
	writeFile(t, project, ConfigFileName, content)
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, cfg.CopyFiles)
	assert.Empty(t, cfg.CopyGlobs)
}

func TestLoadConfig_JSONC(t *testing.T) {
	project := t.TempDir()
	writeConfig(t, project, `{
  // local secrets
  "copy_files": [".env", "config/local.yaml"],
  /* certificates */
  "copy_globs": ["certs/*.pem"],
  "unrelated": 42,
}`)

	cfg, err := LoadConfig(project)
	require.NoError(t, err)
	assert.Equal(t, []string{".env", "config/local.yaml"}, cfg.CopyFiles)
	assert.Equal(t, []string{"certs/*.pem"}, cfg.CopyGlobs)
}

func TestLoadConfig_NullFields(t *testing.T) {
	project := t.TempDir()
	writeConfig(t, project, `{"copy_files": null, "copy_globs": null}`)

	cfg, err := LoadConfig(project)
	require.NoError(t, err)
	assert.Empty(t, cfg.CopyFiles)
	assert.Empty(t, cfg.CopyGlobs)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{name: "malformed", content: `{"copy_files": [`, message: "Invalid JSON in"},
		{name: "array top level", content: `[".env"]`, message: "must be a JSON object"},
		{name: "string top level", content: `".env"`, message: "must be a JSON object"},
		{name: "copy_files not a list", content: `{"copy_files": ".env"}`, message: "copy_files must be a list of relative path strings"},
		{name: "copy_files with number", content: `{"copy_files": [".env", 1]}`, message: "copy_files must be a list of relative path strings"},
		{name: "copy_files with null element", content: `{"copy_files": [null]}`, message: "copy_files must be a list of relative path strings"},
		{name: "copy_globs with number", content: `{"copy_globs": ["*.env", 3]}`, message: "copy_globs must be a list of glob strings"},
		{name: "trailing data", content: `{} {}`, message: "Invalid JSON in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project := t.TempDir()
			writeConfig(t, project, tt.content)

			_, err := LoadConfig(project)
			require.Error(t, err)
			assert.True(t, model.IsKind(err, model.KindInvalidConfiguration))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidateRelativePath(t *testing.T) {
	tests := []struct {
		value   string
		wantErr string
	}{
		{value: ".env"},
		{value: "config/local.yaml"},
		{value: "./a.txt"},
		{value: "a..b/c"},
		{value: "/etc/passwd", wantErr: "copy_files entries must be relative paths: /etc/passwd"},
		{value: "../secret", wantErr: "copy_files entries must not contain '..': ../secret"},
		{value: "a/../../b", wantErr: "copy_files entries must not contain '..': a/../../b"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := ValidateRelativePath(tt.value, labelCopyFiles)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, model.IsKind(err, model.KindInvalidCopyPath))
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestCollectSources_OrderAndOverride(t *testing.T) {
	project := t.TempDir()
	writeFile(t, project, "b.txt", "b")
	writeFile(t, project, "env/dev.env", "dev")
	writeFile(t, project, "env/prod.env", "prod")

	cfg := &CopyConfig{
		CopyFiles: []string{"b.txt", "./env/dev.env"},
		CopyGlobs: []string{"env/*.env"},
	}
	sources, err := CollectSources(project, cfg, []string{"a.txt", "b.txt"}, output.Discard())
	require.NoError(t, err)

	rels := make([]string, len(sources))
	for i, s := range sources {
		rels[i] = s.Rel
		assert.Equal(t, filepath.Join(project, s.Rel), s.Path)
	}
	// "./env/dev.env" and the glob match collapse into one entry that keeps
	// its first position.
	assert.Equal(t, []string{
		"b.txt",
		filepath.Join("env", "dev.env"),
		"a.txt",
		filepath.Join("env", "prod.env"),
	}, rels)
}

func TestCollectSources_RecursiveGlob(t *testing.T) {
	project := t.TempDir()
	writeFile(t, project, "certs/root.pem", "r")
	writeFile(t, project, "certs/nested/deep/leaf.pem", "l")
	writeFile(t, project, "certs/readme.md", "x")

	cfg := &CopyConfig{CopyGlobs: []string{"certs/**/*.pem"}}
	sources, err := CollectSources(project, cfg, nil, output.Discard())
	require.NoError(t, err)

	rels := make([]string, len(sources))
	for i, s := range sources {
		rels[i] = s.Rel
	}
	assert.ElementsMatch(t, []string{
		filepath.Join("certs", "root.pem"),
		filepath.Join("certs", "nested", "deep", "leaf.pem"),
	}, rels)
}

func TestCollectSources_GlobDirectoryReported(t *testing.T) {
	project := t.TempDir()
	writeFile(t, project, "conf/app.json", "{}")

	var buf bytes.Buffer
	cfg := &CopyConfig{CopyGlobs: []string{"con*"}}
	sources, err := CollectSources(project, cfg, nil, output.New(&buf))
	require.NoError(t, err)
	assert.Empty(t, sources)
	assert.Equal(t, "ℹ Glob match is a directory, skipping: conf\n", buf.String())
}

func TestCollectSources_Invalid(t *testing.T) {
	project := t.TempDir()

	_, err := CollectSources(project, &CopyConfig{CopyFiles: []string{"../x"}}, nil, output.Discard())
	assert.True(t, model.IsKind(err, model.KindInvalidCopyPath))

	_, err = CollectSources(project, &CopyConfig{}, []string{"/abs"}, output.Discard())
	assert.True(t, model.IsKind(err, model.KindInvalidCopyPath))

	_, err = CollectSources(project, &CopyConfig{CopyGlobs: []string{"../*.env"}}, nil, output.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "copy_globs entries must not contain '..'")

	_, err = CollectSources(project, &CopyConfig{CopyGlobs: []string{"[a-"}}, nil, output.Discard())
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindInvalidConfiguration))
}

func TestCopyIfNewer(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "src/a.txt", "one")
	require.NoError(t, os.Chmod(src, 0o600))
	dst := filepath.Join(dir, "dst", "nested", "a.txt")

	copied, err := CopyIfNewer(src, dst)
	require.NoError(t, err)
	assert.True(t, copied)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))

	srcInfo, err := os.Stat(src)
	require.NoError(t, err)
	dstInfo, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), dstInfo.Mode().Perm())
	assert.True(t, srcInfo.ModTime().Equal(dstInfo.ModTime()))

	// Unchanged source: nothing to do.
	copied, err = CopyIfNewer(src, dst)
	require.NoError(t, err)
	assert.False(t, copied)
}

func TestCopyIfNewer_DestinationEditedLater(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.txt", "project")
	dst := writeFile(t, dir, "wt/a.txt", "edited in worktree")

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(src, past, past))

	copied, err := CopyIfNewer(src, dst)
	require.NoError(t, err)
	assert.False(t, copied)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "edited in worktree", string(data))
}

func TestCopyIfNewer_SourceUpdated(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.txt", "v2")
	dst := writeFile(t, dir, "wt/a.txt", "v1")

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(dst, past, past))

	copied, err := CopyIfNewer(src, dst)
	require.NoError(t, err)
	assert.True(t, copied)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

// TestProvisioner_MissingAndExtra covers copy_files = ["a.txt"] with an
// extra "b.txt": a missing a.txt is reported, b.txt is copied.
func TestProvisioner_MissingAndExtra(t *testing.T) {
	project := t.TempDir()
	worktree := t.TempDir()
	writeConfig(t, project, `{"copy_files": ["a.txt"]}`)
	writeFile(t, project, "b.txt", "b")

	var buf bytes.Buffer
	report, err := NewProvisioner(output.New(&buf)).Run(context.Background(), project, worktree, []string{"b.txt"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt"}, report.Missing)
	assert.Equal(t, []string{"b.txt"}, report.Copied)
	assert.Equal(t, "ℹ Configured copy file missing: a.txt\n✓ Copied b.txt\n", buf.String())

	assert.FileExists(t, filepath.Join(worktree, "b.txt"))
	assert.NoFileExists(t, filepath.Join(worktree, "a.txt"))
}

func TestProvisioner_BothPresent(t *testing.T) {
	project := t.TempDir()
	worktree := t.TempDir()
	writeConfig(t, project, `{"copy_files": ["a.txt"]}`)
	writeFile(t, project, "a.txt", "a")
	writeFile(t, project, "b.txt", "b")

	report, err := NewProvisioner(output.Discard()).Run(context.Background(), project, worktree, []string{"b.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, report.Copied)
	assert.FileExists(t, filepath.Join(worktree, "a.txt"))
	assert.FileExists(t, filepath.Join(worktree, "b.txt"))
}

func TestProvisioner_Idempotent(t *testing.T) {
	project := t.TempDir()
	worktree := t.TempDir()
	writeConfig(t, project, `{"copy_files": [".env"], "copy_globs": ["config/**/*.yaml"]}`)
	writeFile(t, project, ".env", "SECRET=1")
	writeFile(t, project, "config/a.yaml", "a: 1")
	writeFile(t, project, "config/sub/b.yaml", "b: 2")

	p := NewProvisioner(output.Discard())
	first, err := p.Run(context.Background(), project, worktree, nil)
	require.NoError(t, err)
	assert.Len(t, first.Copied, 3)

	second, err := p.Run(context.Background(), project, worktree, nil)
	require.NoError(t, err)
	assert.Empty(t, second.Copied)
	assert.Len(t, second.UpToDate, 3)
}

func TestProvisioner_DirectoryEntrySkipped(t *testing.T) {
	project := t.TempDir()
	worktree := t.TempDir()
	writeFile(t, project, "data/x.txt", "x")

	var buf bytes.Buffer
	report, err := NewProvisioner(output.New(&buf)).Run(context.Background(), project, worktree, []string{"data"})
	require.NoError(t, err)
	assert.Equal(t, []string{"data"}, report.Skipped)
	assert.Equal(t, "ℹ Configured copy path is a directory, skipping: data\n", buf.String())
}

func TestProvisioner_InvalidConfigFails(t *testing.T) {
	project := t.TempDir()
	worktree := t.TempDir()
	writeConfig(t, project, `{"copy_files": ["../outside.txt"]}`)

	_, err := NewProvisioner(output.Discard()).Run(context.Background(), project, worktree, nil)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindInvalidCopyPath))
}
