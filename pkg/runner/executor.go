package runner

import (
	"fmt"
	"strings"

	"hostprep/pkg/log"
	"hostprep/pkg/model"
	"hostprep/pkg/ui"
)

// Executor drives tasks through a CommandRunner, one command at a time.
type Executor struct {
	Runner  CommandRunner
	Context ExecContext
	Logger  log.Logger
	Console *ui.Console
	// AbortOnTaskFailure stops a chain at the first failed task. By default the
	// remaining tasks still run.
	AbortOnTaskFailure bool
}

func NewExecutor(r CommandRunner, ec ExecContext, logger log.Logger) *Executor {
	return &Executor{
		Runner:  r,
		Context: ec,
		Logger:  logger,
		Console: ui.NewConsole(ec.Stdout, ec.Stderr),
	}
}

// RunTask executes the task's commands in order and stops at the first failure.
// Commands that already succeeded are left as they are.
func (e *Executor) RunTask(task model.Task) TaskResult {
	result := TaskResult{TaskID: task.ID, Status: TaskSucceeded}

	e.Console.Step(task.StartMessage)
	e.Logger.Debug("Starting task", "task", task.ID, "commands", len(task.Commands))

	for i, cmd := range task.Commands {
		res := e.runCommand(cmd)
		result.Results = append(result.Results, res)
		if !res.Ok() {
			result.Status = TaskFailed
			result.Failure = &result.Results[len(result.Results)-1]
			e.Logger.Error("Command failed",
				"task", task.ID,
				"command", res.Command.String(),
				"exit_code", res.ExitCode,
				"run_id", res.RunID,
				"error", res.Err)
			e.Console.Failure(fmt.Sprintf("Failed to %s: %v", task.Name, res.Err))
			if skipped := len(task.Commands) - i - 1; skipped > 0 {
				e.Logger.Debug("Skipping remaining commands", "task", task.ID, "skipped", skipped)
			}
			return result
		}
		if cmd.Mode == model.ModeCaptured && !cmd.Quiet {
			e.Console.Output(res.Stdout)
		}
	}

	e.Console.Success(task.SuccessMessage)
	return result
}

// RunChain runs tasks sequentially. A failed task does not stop the chain
// unless AbortOnTaskFailure is set.
func (e *Executor) RunChain(tasks []model.Task) []TaskResult {
	results := make([]TaskResult, 0, len(tasks))
	for i, task := range tasks {
		res := e.RunTask(task)
		results = append(results, res)
		if !res.Succeeded() && e.AbortOnTaskFailure {
			remaining := make([]string, 0, len(tasks)-i-1)
			for _, t := range tasks[i+1:] {
				remaining = append(remaining, t.ID)
			}
			if len(remaining) > 0 {
				e.Logger.Warn("Aborting task chain", "failed_task", task.ID, "skipped_tasks", strings.Join(remaining, ","))
			}
			break
		}
	}
	return results
}

// runCommand resolves the command's stdin source and runs it. A failing source
// command is reported as the result of the command it feeds.
func (e *Executor) runCommand(cmd model.Command) ExecutionResult {
	stdin, failed := e.resolveStdin(cmd.Stdin)
	if failed != nil {
		return *failed
	}
	e.Logger.Debug("Running command", "command", cmd.String(), "mode", cmd.Mode)
	return e.Runner.Run(e.Context, cmd, stdin)
}

func (e *Executor) resolveStdin(src model.Source) ([]byte, *ExecutionResult) {
	switch s := src.(type) {
	case nil:
		return nil, nil
	case model.Literal:
		return []byte(s), nil
	case model.Pipe:
		res := e.capture(s.From)
		if !res.Ok() {
			return nil, &res
		}
		return []byte(res.Stdout), nil
	case model.Template:
		values := make(map[string]string, len(s.Vars))
		for _, v := range s.Vars {
			res := e.capture(v.From)
			if !res.Ok() {
				return nil, &res
			}
			values[v.Name] = strings.TrimSpace(res.Stdout)
		}
		out, err := s.Render(values)
		if err != nil {
			return nil, &ExecutionResult{
				Command:  model.Command{Name: "template", Mode: model.ModeCaptured},
				Status:   StatusFailed,
				ExitCode: ExitCodeUnknown,
				Err:      err,
			}
		}
		return out, nil
	default:
		return nil, &ExecutionResult{
			Status:   StatusFailed,
			ExitCode: ExitCodeUnknown,
			Err:      fmt.Errorf("unsupported stdin source %T", src),
		}
	}
}

func (e *Executor) capture(cmd model.Command) ExecutionResult {
	cmd.Mode = model.ModeCaptured
	e.Logger.Debug("Running stdin source", "command", cmd.String())
	return e.Runner.Run(e.Context, cmd, nil)
}
