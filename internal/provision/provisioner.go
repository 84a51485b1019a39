package provision

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/shinji-kodama/worktree-standalone/internal/output"
)

// Report lists, by relative path, what a provisioning run did.
type Report struct {
	Copied   []string
	UpToDate []string
	Missing  []string
	Skipped  []string
}

// Provisioner copies configured files from a project into a worktree and
// reports each step on its printer.
type Provisioner struct {
	out *output.Printer
}

// NewProvisioner creates a Provisioner that prints progress to out.
func NewProvisioner(out *output.Printer) *Provisioner {
	return &Provisioner{out: out}
}

// Run loads the project's copy configuration, merges in extra, and copies
// each source into worktreePath at the same relative path.
//
// Missing sources and directories are reported and skipped. Any returned
// error (bad config, invalid path, I/O failure) aborts the remaining copies.
func (p *Provisioner) Run(ctx context.Context, projectPath, worktreePath string, extra []string) (*Report, error) {
	logger := zerolog.Ctx(ctx)
	report := &Report{}

	cfg, err := LoadConfig(projectPath)
	if err != nil {
		return report, err
	}

	sources, err := CollectSources(projectPath, cfg, extra, p.out)
	if err != nil {
		return report, err
	}
	logger.Debug().Int("sources", len(sources)).Str("project", projectPath).Msg("collected copy sources")

	for _, src := range sources {
		info, err := os.Stat(src.Path)
		if err != nil {
			if os.IsNotExist(err) {
				p.out.Info("Configured copy file missing: %s", src.Rel)
				report.Missing = append(report.Missing, src.Rel)
				continue
			}
			return report, err
		}
		if info.IsDir() {
			p.out.Info("Configured copy path is a directory, skipping: %s", src.Rel)
			report.Skipped = append(report.Skipped, src.Rel)
			continue
		}

		copied, err := CopyIfNewer(src.Path, filepath.Join(worktreePath, src.Rel))
		if err != nil {
			return report, err
		}
		if !copied {
			logger.Debug().Str("path", src.Rel).Msg("destination up to date")
			report.UpToDate = append(report.UpToDate, src.Rel)
			continue
		}
		p.out.Success("Copied %s", src.Rel)
		report.Copied = append(report.Copied, src.Rel)
	}

	return report, nil
}
