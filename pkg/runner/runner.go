// Package runner defines how commands are executed and how tasks are driven
// through them. The live implementation lives in pkg/system so that tests and
// the executor only depend on the interface.
package runner

import (
	"io"

	"hostprep/pkg/model"
)

// CommandRunner runs a single command and reports its outcome.
// This allows for mocking in tests.
type CommandRunner interface {
	// Run executes cmd within ec. stdin is the resolved payload for captured
	// commands and is ignored in interactive mode.
	Run(ec ExecContext, cmd model.Command, stdin []byte) ExecutionResult
}

// ExecContext carries the process state a command inherits. It is passed
// explicitly instead of read from the environment so tests can substitute it.
type ExecContext struct {
	Dir  string
	Env  []string // nil inherits the current process environment
	EUID int

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// IsRoot reports whether the context runs as the superuser.
func (ec ExecContext) IsRoot() bool {
	return ec.EUID == 0
}
