package runner

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPrivilege is returned when a privileged operation is attempted without root.
var ErrPrivilege = errors.New("You need root privileges to run this tool.")

// SpawnError reports that the executable could not be started.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("starting %s: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitError reports that the command ran but exited with a nonzero status.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}
