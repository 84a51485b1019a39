// Package provision copies untracked support files (.env, local settings)
// from the main repository into a freshly created worktree.
//
// The set of files comes from an optional .worktree_standalone.json at the
// project root plus any --copy-file values given on the command line. The
// config file may contain comments and trailing commas (JSONC); this package
// uses github.com/tidwall/jsonc to strip them before parsing with the
// standard encoding/json library.
//
// Key responsibilities:
//   - Load and strictly validate the copy configuration
//   - Validate that every path and pattern stays inside the project
//   - Expand glob patterns (including ** segments) into a copy source set
//   - Copy each source only when it is newer than the destination
package provision

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/shinji-kodama/worktree-standalone/internal/model"
)

// ConfigFileName is the copy configuration file looked up at the project root.
const ConfigFileName = ".worktree_standalone.json"

// Labels used in InvalidCopyPath messages.
const (
	labelCopyFiles = "copy_files entries"
	labelCopyGlobs = "copy_globs entries"
)

// CopyConfig is the parsed content of .worktree_standalone.json.
//
// Example:
//
//	{
//	  // secrets are not tracked by git
//	  "copy_files": [".env", "config/local.yaml"],
//	  "copy_globs": ["certs/**/*.pem"],
//	}
type CopyConfig struct {
	// CopyFiles lists explicit paths relative to the project root.
	CopyFiles []string `json:"copy_files"`

	// CopyGlobs lists glob patterns relative to the project root.
	CopyGlobs []string `json:"copy_globs"`
}

// ConfigPath returns the location of the copy configuration for a project.
func ConfigPath(projectPath string) string {
	return filepath.Join(projectPath, ConfigFileName)
}

// LoadConfig reads the project's copy configuration. A missing file yields
// an empty config.
//
// Parsing is strict: the top level must be an object, and copy_files and
// copy_globs must be arrays of strings or null. Unknown keys are ignored.
// Every violation is reported as InvalidConfiguration.
func LoadConfig(projectPath string) (*CopyConfig, error) {
	configPath := ConfigPath(projectPath)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &CopyConfig{}, nil
		}
		return nil, model.WrapCLIError(model.KindInvalidConfiguration,
			fmt.Sprintf("Failed to read %s", configPath), err)
	}

	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, model.NewCLIError(model.KindInvalidConfiguration,
			fmt.Sprintf("Invalid JSON in %s: %v", configPath, err))
	}
	if dec.More() {
		return nil, model.NewCLIError(model.KindInvalidConfiguration,
			fmt.Sprintf("Invalid JSON in %s: unexpected data after top-level value", configPath))
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, model.NewCLIError(model.KindInvalidConfiguration,
			fmt.Sprintf("Config %s must be a JSON object", configPath))
	}

	cfg := &CopyConfig{}
	if cfg.CopyFiles, ok = stringList(obj["copy_files"]); !ok {
		return nil, model.NewCLIError(model.KindInvalidConfiguration,
			"copy_files must be a list of relative path strings")
	}
	if cfg.CopyGlobs, ok = stringList(obj["copy_globs"]); !ok {
		return nil, model.NewCLIError(model.KindInvalidConfiguration,
			"copy_globs must be a list of glob strings")
	}
	return cfg, nil
}

// stringList converts a decoded JSON value into a string slice. Absent and
// null values become an empty list; anything other than an array of
// strings is rejected rather than coerced.
func stringList(v any) ([]string, bool) {
	if v == nil {
		return nil, true
	}
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// ValidateRelativePath rejects absolute paths and paths with a ".."
// segment. label names the offending setting in the error message.
func ValidateRelativePath(value, label string) error {
	if filepath.IsAbs(value) || strings.HasPrefix(value, "/") {
		return model.NewCLIError(model.KindInvalidCopyPath,
			fmt.Sprintf("%s must be relative paths: %s", label, value))
	}
	segments := strings.FieldsFunc(value, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	for _, seg := range segments {
		if seg == ".." {
			return model.NewCLIError(model.KindInvalidCopyPath,
				fmt.Sprintf("%s must not contain '..': %s", label, value))
		}
	}
	return nil
}
