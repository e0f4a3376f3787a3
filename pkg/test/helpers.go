package test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"hostprep/pkg/runner"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// ExecContext returns a context with in-memory streams. The returned buffers
// receive everything written to stdout and stderr.
func ExecContext(euid int, stdin string) (runner.ExecContext, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return runner.ExecContext{
		Dir:    "/",
		EUID:   euid,
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
	}, &stdout, &stderr
}

// CreateTestFile creates a file with content in the test filesystem.
func CreateTestFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

// AssertCommandExecuted checks that a command was executed by the mock runner.
func AssertCommandExecuted(t *testing.T, r *MockCommandRunner, command string) {
	t.Helper()
	require.Contains(t, r.Commands, command, "Command should have been executed: %s", command)
}

// AssertCommandNotExecuted checks that a command was not executed.
func AssertCommandNotExecuted(t *testing.T, r *MockCommandRunner, command string) {
	t.Helper()
	require.NotContains(t, r.Commands, command, "Command should not have been executed: %s", command)
}

// AssertLogContains checks that the logger captured a message containing the substring.
func AssertLogContains(t *testing.T, logger *MockLogger, substring string) {
	t.Helper()
	require.True(t, logger.HasMessage(substring), "Log should contain: %s, got: %v", substring, logger.Messages)
}
