package test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"hostprep/pkg/model"
	"hostprep/pkg/runner"
)

// MockCommandRunner is a shared mock implementation of runner.CommandRunner for testing.
// It tracks executed commands and allows setting up responses and failures.
// Commands are keyed by their rendered command line.
type MockCommandRunner struct {
	Commands  []string            // Track executed commands in order
	Modes     []model.Mode        // Mode of each executed command
	Inputs    map[string][]byte   // Last stdin payload by command
	Responses map[string]string   // Stdout by command
	Exits     map[string]mockExit // Nonzero exits by command
	Spawns    map[string]error    // Spawn errors by command
	Contexts  []runner.ExecContext
}

type mockExit struct {
	code   int
	stderr string
}

// NewMockCommandRunner creates a new MockCommandRunner with initialized maps.
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		Commands:  []string{},
		Inputs:    make(map[string][]byte),
		Responses: make(map[string]string),
		Exits:     make(map[string]mockExit),
		Spawns:    make(map[string]error),
	}
}

// Run simulates running a command and returns the configured outcome.
func (r *MockCommandRunner) Run(ec runner.ExecContext, cmd model.Command, stdin []byte) runner.ExecutionResult {
	key := cmd.String()
	r.Commands = append(r.Commands, key)
	r.Modes = append(r.Modes, cmd.Mode)
	r.Contexts = append(r.Contexts, ec)
	if stdin != nil {
		r.Inputs[key] = stdin
	}

	res := runner.ExecutionResult{
		RunID:   fmt.Sprintf("mock-%d", len(r.Commands)),
		Command: cmd,
	}
	if err, ok := r.Spawns[key]; ok {
		res.Status = runner.StatusFailed
		res.ExitCode = runner.ExitCodeUnknown
		res.Err = &runner.SpawnError{Command: cmd.Name, Err: err}
		return res
	}
	if exit, ok := r.Exits[key]; ok {
		res.Status = runner.StatusFailed
		res.ExitCode = exit.code
		if cmd.Mode == model.ModeCaptured {
			res.Stderr = exit.stderr
		}
		res.Err = &runner.ExitError{Command: key, Code: exit.code, Stderr: res.Stderr}
		return res
	}
	res.Status = runner.StatusOk
	if cmd.Mode == model.ModeCaptured {
		res.Stdout = r.Responses[key]
	}
	return res
}

// SetResponse configures the stdout returned for a command.
func (r *MockCommandRunner) SetResponse(command, stdout string) {
	r.Responses[command] = stdout
}

// SetExit configures a nonzero exit for a command.
func (r *MockCommandRunner) SetExit(command string, code int, stderr string) {
	r.Exits[command] = mockExit{code: code, stderr: stderr}
}

// SetSpawnError configures a command that cannot be started.
func (r *MockCommandRunner) SetSpawnError(command string, err error) {
	if err == nil {
		err = errors.New("executable file not found in $PATH")
	}
	r.Spawns[command] = err
}

// Count returns how many times a command was run.
func (r *MockCommandRunner) Count(command string) int {
	n := 0
	for _, c := range r.Commands {
		if c == command {
			n++
		}
	}
	return n
}

// MockLogger is a shared mock implementation of Logger for testing.
// It captures logged messages for verification.
type MockLogger struct {
	Messages []string
	Level    slog.Level
}

// NewMockLogger creates a new MockLogger with the specified level.
func NewMockLogger(level slog.Level) *MockLogger {
	return &MockLogger{
		Messages: []string{},
		Level:    level,
	}
}

// Debug captures debug messages.
func (l *MockLogger) Debug(msg string, args ...any) {
	if l.Level <= slog.LevelDebug {
		l.captureMessage("DEBUG", msg, args...)
	}
}

// Info captures info messages.
func (l *MockLogger) Info(msg string, args ...any) {
	if l.Level <= slog.LevelInfo {
		l.captureMessage("INFO", msg, args...)
	}
}

// Warn captures warn messages.
func (l *MockLogger) Warn(msg string, args ...any) {
	if l.Level <= slog.LevelWarn {
		l.captureMessage("WARN", msg, args...)
	}
}

// Error captures error messages.
func (l *MockLogger) Error(msg string, args ...any) {
	if l.Level <= slog.LevelError {
		l.captureMessage("ERROR", msg, args...)
	}
}

func (l *MockLogger) captureMessage(level, msg string, args ...any) {
	buf := &bytes.Buffer{}
	buf.WriteString(level)
	buf.WriteString(": ")
	buf.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		buf.WriteString(" ")
		buf.WriteString(fmt.Sprintf("%v", args[i]))
		buf.WriteString("=")
		buf.WriteString(fmt.Sprintf("%v", args[i+1]))
	}
	l.Messages = append(l.Messages, buf.String())
}

// HasMessage checks if any captured message contains the given substring.
func (l *MockLogger) HasMessage(substring string) bool {
	for _, msg := range l.Messages {
		if bytes.Contains([]byte(msg), []byte(substring)) {
			return true
		}
	}
	return false
}
