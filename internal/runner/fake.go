package runner

import (
	"context"
	"slices"
	"strings"
)

// HandlerFunc produces the outcome of a faked command.
type HandlerFunc func(cmd Command) (Result, error)

type fakeHandler struct {
	dir    string
	prefix []string
	fn     HandlerFunc
}

func (h fakeHandler) matches(cmd Command) bool {
	if h.dir != "" && h.dir != cmd.Dir {
		return false
	}
	if len(cmd.Argv) < len(h.prefix) {
		return false
	}
	return slices.Equal(cmd.Argv[:len(h.prefix)], h.prefix)
}

// Fake is a scripted Runner for tests. Handlers are matched by working
// directory (empty matches any) and argv prefix; the most recently
// registered matching handler wins. Unmatched commands succeed with empty
// output. Check semantics are identical to ExecRunner's.
type Fake struct {
	// Calls records every command passed to Run, in order.
	Calls []Command

	handlers []fakeHandler
	missing  map[string]bool
}

// NewFake creates an empty Fake.
func NewFake() *Fake {
	return &Fake{missing: make(map[string]bool)}
}

// On registers a fixed result for commands run in dir whose argv starts
// with argv.
func (f *Fake) On(dir string, res Result, argv ...string) *Fake {
	return f.OnFunc(dir, func(Command) (Result, error) { return res, nil }, argv...)
}

// OnFunc registers a handler for commands run in dir whose argv starts
// with argv.
func (f *Fake) OnFunc(dir string, fn HandlerFunc, argv ...string) *Fake {
	f.handlers = append(f.handlers, fakeHandler{dir: dir, prefix: argv, fn: fn})
	return f
}

// Missing makes every invocation of program fail with ExecutableNotFound.
func (f *Fake) Missing(program string) *Fake {
	f.missing[program] = true
	return f
}

// Run records cmd and returns the scripted outcome.
func (f *Fake) Run(_ context.Context, cmd Command) (Result, error) {
	if len(cmd.Argv) == 0 {
		return Result{}, errEmptyCommand()
	}
	f.Calls = append(f.Calls, cmd)

	if f.missing[cmd.Argv[0]] {
		return Result{}, errNotFound(cmd.Argv[0], nil)
	}

	for i := len(f.handlers) - 1; i >= 0; i-- {
		if !f.handlers[i].matches(cmd) {
			continue
		}
		res, err := f.handlers[i].fn(cmd)
		if err != nil {
			return Result{}, err
		}
		return res, checkResult(cmd, res)
	}
	return Result{}, nil
}

// Called reports whether any recorded command's argv starts with argv.
func (f *Fake) Called(argv ...string) bool {
	return f.Find(argv...) != nil
}

// Find returns the first recorded command whose argv starts with argv,
// or nil.
func (f *Fake) Find(argv ...string) *Command {
	for i := range f.Calls {
		c := f.Calls[i]
		if len(c.Argv) >= len(argv) && slices.Equal(c.Argv[:len(argv)], argv) {
			return &c
		}
	}
	return nil
}

// Commands returns the recorded argv vectors joined by spaces; handy for
// asserting invocation order.
func (f *Fake) Commands() []string {
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = strings.Join(c.Argv, " ")
	}
	return out
}
