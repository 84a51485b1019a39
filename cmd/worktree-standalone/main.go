// Package main is the entry point for the worktree-standalone CLI.
//
// The binary runs an interactive CLI tool inside a throwaway Git worktree
// and exports its work to a review branch. All commands live in the
// internal/cli package.
package main

import (
	"github.com/shinji-kodama/worktree-standalone/internal/cli"
)

// Set at build time via -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	cli.Execute(cli.NewRootCommand())
}
