// Package output prints the user-facing progress lines of each workflow.
//
// Lines are prefixed with a status mark: ✓ for a completed step, ℹ for an
// informational notice, ⚠ for a downgraded failure. Marks are colored with
// fatih/color. fatih/color decides from os.Stdout alone, so each Printer
// makes the decision for its own writer: no color unless the writer is a
// terminal and neither NO_COLOR nor TERM=dumb is set.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// separatorWidth is the width of the rule printed around a launched tool.
const separatorWidth = 60

// Printer writes progress lines to a single writer.
type Printer struct {
	w io.Writer

	// Mark colors, configured per writer in New.
	success *color.Color
	info    *color.Color
	warn    *color.Color
}

// New creates a Printer writing to w.
func New(w io.Writer) *Printer {
	p := &Printer{
		w:       w,
		success: color.New(color.FgGreen),
		info:    color.New(color.FgCyan),
		warn:    color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.success, p.info, p.warn} {
		switch {
		case !isTerminal(w):
			c.DisableColor()
		case colorAllowedByEnv():
			c.EnableColor()
		}
	}
	return p
}

// Discard returns a Printer that drops everything.
func Discard() *Printer {
	return New(io.Discard)
}

// Printf writes formatted text without a mark or trailing newline.
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// Println writes a plain line.
func (p *Printer) Println(args ...any) {
	fmt.Fprintln(p.w, args...)
}

// Success writes a ✓ line.
func (p *Printer) Success(format string, args ...any) {
	p.marked(p.success.Sprint("✓"), format, args...)
}

// Info writes an ℹ line.
func (p *Printer) Info(format string, args ...any) {
	p.marked(p.info.Sprint("ℹ"), format, args...)
}

// Warn writes a ⚠ line.
func (p *Printer) Warn(format string, args ...any) {
	p.marked(p.warn.Sprint("⚠"), format, args...)
}

// Separator writes a horizontal rule.
func (p *Printer) Separator() {
	fmt.Fprintln(p.w, strings.Repeat("-", separatorWidth))
}

func (p *Printer) marked(mark, format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", mark, fmt.Sprintf(format, args...))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func colorAllowedByEnv() bool {
	return os.Getenv("NO_COLOR") == "" && os.Getenv("TERM") != "dumb"
}
