package system

import (
	"bytes"
	"errors"
	"os"
	"os/exec"

	"hostprep/pkg/model"
	"hostprep/pkg/runner"

	"github.com/google/uuid"
)

// LiveCommandRunner is an implementation of CommandRunner that runs commands on the live system.
// Commands are started directly from their argv; no shell is involved.
type LiveCommandRunner struct{}

// Run executes the given command and waits for it to exit.
func (r *LiveCommandRunner) Run(ec runner.ExecContext, cmd model.Command, stdin []byte) runner.ExecutionResult {
	res := runner.ExecutionResult{
		RunID:   uuid.New().String(),
		Command: cmd,
	}

	c := exec.Command(cmd.Name, cmd.Args...)
	c.Dir = ec.Dir
	c.Env = ec.Env

	var stdout, stderr bytes.Buffer
	if cmd.Mode == model.ModeInteractive {
		c.Stdin = ec.Stdin
		c.Stdout = ec.Stdout
		c.Stderr = ec.Stderr
	} else {
		c.Stdin = bytes.NewReader(stdin)
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	err := c.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	if err == nil {
		res.Status = runner.StatusOk
		return res
	}

	res.Status = runner.StatusFailed
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		res.Err = &runner.ExitError{Command: cmd.String(), Code: res.ExitCode, Stderr: res.Stderr}
		return res
	}
	// Binary not found, permission denied, bad working directory.
	res.ExitCode = runner.ExitCodeUnknown
	res.Err = &runner.SpawnError{Command: cmd.Name, Err: err}
	return res
}

// CurrentContext captures the execution context of this process.
func CurrentContext() runner.ExecContext {
	dir, err := os.Getwd()
	if err != nil {
		dir = ""
	}
	return runner.ExecContext{
		Dir:    dir,
		EUID:   os.Geteuid(),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// RequireRoot returns runner.ErrPrivilege unless ec runs as the superuser.
func RequireRoot(ec runner.ExecContext) error {
	if !ec.IsRoot() {
		return runner.ErrPrivilege
	}
	return nil
}
