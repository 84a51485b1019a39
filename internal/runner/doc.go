// Package runner executes external programs for the worktree-standalone CLI.
//
// Every git invocation and the launched interactive tool go through the
// narrow Runner interface: a command vector, a working directory and a
// capture mode in; an exit code plus captured output out. Workflow code
// depends only on the interface, so it can be exercised against the
// scripted Fake instead of a real git binary.
//
// Two modes are supported:
//   - Captured: stdout and stderr are buffered and returned as text.
//   - Inherited: the child shares the parent's terminal, which interactive
//     tools require.
package runner
