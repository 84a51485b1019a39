package worktree

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shinji-kodama/worktree-standalone/internal/model"
)

// RequirePath fails with PathNotFound when path does not exist.
// label names the path in the message, e.g. "Project path".
func RequirePath(label, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return model.NewCLIError(model.KindPathNotFound,
				fmt.Sprintf("%s does not exist: %s", label, path))
		}
		return model.WrapCLIError(model.KindPathNotFound,
			fmt.Sprintf("%s is not accessible: %s", label, path), err)
	}
	return nil
}

// RequireRepo fails with NotAVersionControlRepo unless
// `git rev-parse --is-inside-work-tree` succeeds in path and prints "true".
// Git's diagnostic text, when any, is appended on its own line.
func (m *Manager) RequireRepo(ctx context.Context, path string) error {
	res, err := m.run(ctx, path, false, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		if model.IsKind(err, model.KindExecutableNotFound) {
			return err
		}
		return model.WrapCLIError(model.KindNotARepo, fmt.Sprintf("Not a git repo: %s", path), err)
	}
	if res.Success() && strings.TrimSpace(res.Stdout) == "true" {
		return nil
	}

	message := fmt.Sprintf("Not a git repo: %s", path)
	if detail := strings.TrimSpace(res.Stderr); detail != "" {
		message += "\n" + detail
	}
	return model.NewCLIError(model.KindNotARepo, message)
}

// Validate runs RequirePath and then RequireRepo on path.
func (m *Manager) Validate(ctx context.Context, label, path string) error {
	if err := RequirePath(label, path); err != nil {
		return err
	}
	return m.RequireRepo(ctx, path)
}
