package provision

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/shinji-kodama/worktree-standalone/internal/model"
	"github.com/shinji-kodama/worktree-standalone/internal/output"
)

// Source is one entry of the copy source set.
type Source struct {
	// Rel is the cleaned path relative to both the project and the worktree.
	Rel string

	// Path is the absolute source path inside the project.
	Path string
}

// sourceSet is an insertion-ordered map keyed by relative path. Re-inserting
// a key replaces its source but keeps its original position.
type sourceSet struct {
	order []string
	byRel map[string]string
}

func newSourceSet() *sourceSet {
	return &sourceSet{byRel: make(map[string]string)}
}

func (s *sourceSet) put(rel, src string) {
	if _, ok := s.byRel[rel]; !ok {
		s.order = append(s.order, rel)
	}
	s.byRel[rel] = src
}

func (s *sourceSet) list() []Source {
	out := make([]Source, 0, len(s.order))
	for _, rel := range s.order {
		out = append(out, Source{Rel: rel, Path: s.byRel[rel]})
	}
	return out
}

// CollectSources builds the copy source set for a project.
//
// Explicit copy_files come first, then the extra (command line) files, then
// the matches of each glob in order. Every entry and pattern is validated
// with ValidateRelativePath before anything is expanded. Directories
// matched by a glob are reported on out and left out of the set.
func CollectSources(projectPath string, cfg *CopyConfig, extra []string, out *output.Printer) ([]Source, error) {
	files := make([]string, 0, len(cfg.CopyFiles)+len(extra))
	files = append(files, cfg.CopyFiles...)
	files = append(files, extra...)

	for _, f := range files {
		if err := ValidateRelativePath(f, labelCopyFiles); err != nil {
			return nil, err
		}
	}
	for _, pattern := range cfg.CopyGlobs {
		if err := ValidateRelativePath(pattern, labelCopyGlobs); err != nil {
			return nil, err
		}
	}

	set := newSourceSet()
	for _, f := range files {
		rel := filepath.Clean(f)
		set.put(rel, filepath.Join(projectPath, rel))
	}

	fsys := os.DirFS(projectPath)
	for _, pattern := range cfg.CopyGlobs {
		matches, err := doublestar.Glob(fsys, path.Clean(filepath.ToSlash(pattern)))
		if err != nil {
			if errors.Is(err, doublestar.ErrBadPattern) {
				return nil, model.WrapCLIError(model.KindInvalidConfiguration,
					fmt.Sprintf("Invalid glob pattern in copy_globs: %s", pattern), err)
			}
			return nil, fmt.Errorf("failed to expand glob %q: %w", pattern, err)
		}

		for _, match := range matches {
			if match == "." {
				continue
			}
			rel := filepath.FromSlash(match)
			src := filepath.Join(projectPath, rel)
			info, err := os.Stat(src)
			if err != nil {
				// Dangling symlink or a file removed mid-walk.
				continue
			}
			if info.IsDir() {
				out.Info("Glob match is a directory, skipping: %s", rel)
				continue
			}
			set.put(rel, src)
		}
	}

	return set.list(), nil
}
