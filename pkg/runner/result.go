package runner

import "hostprep/pkg/model"

type Status string

const (
	StatusOk     Status = "ok"
	StatusFailed Status = "failed"
)

// ExitCodeUnknown is reported when the process never started or its status could not be read.
const ExitCodeUnknown = -1

// ExecutionResult holds the outcome of one command execution.
type ExecutionResult struct {
	RunID    string        // unique identifier for this run
	Command  model.Command // the command that ran
	Status   Status
	ExitCode int    // process exit code, ExitCodeUnknown if not known
	Stdout   string // captured stdout (captured mode only)
	Stderr   string // captured stderr (captured mode only)
	Err      error  // *SpawnError or *ExitError when Status is StatusFailed
}

func (r ExecutionResult) Ok() bool {
	return r.Status == StatusOk
}

type TaskStatus string

const (
	TaskSucceeded TaskStatus = "succeeded"
	TaskFailed    TaskStatus = "failed"
)

// TaskResult aggregates the command results of one task.
type TaskResult struct {
	TaskID  string
	Status  TaskStatus
	Results []ExecutionResult
	// Failure is the result that stopped the task, nil on success.
	Failure *ExecutionResult
}

func (r TaskResult) Succeeded() bool {
	return r.Status == TaskSucceeded
}

// AnyFailed reports whether at least one task in the chain failed.
func AnyFailed(results []TaskResult) bool {
	for _, r := range results {
		if !r.Succeeded() {
			return true
		}
	}
	return false
}
