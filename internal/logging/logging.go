// Package logging configures the zerolog logger used for diagnostic tracing.
//
// User-facing progress lines are printed by the output package; this logger
// only carries debug traces (every external command, copy decisions) and is
// silent unless verbose mode is enabled. The logger travels in the context
// so that deeply nested helpers can reach it with zerolog.Ctx.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// EnvDebug enables verbose tracing without the --verbose flag when set to
// "1" or "true".
const EnvDebug = "WORKTREE_STANDALONE_DEBUG"

// New creates a console logger writing to w. Verbose selects debug level;
// otherwise only warnings and errors are emitted.
func New(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	writer := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(w),
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// WithLogger attaches logger to ctx.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// VerboseFromEnv reports whether EnvDebug requests verbose tracing.
func VerboseFromEnv() bool {
	v := strings.ToLower(os.Getenv(EnvDebug))
	return v == "1" || v == "true"
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
