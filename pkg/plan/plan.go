// Package plan orders the selected tasks and describes what running them would do.
package plan

import (
	"fmt"
	"slices"
	"strings"

	"hostprep/pkg/log"
	"hostprep/pkg/model"
	"hostprep/pkg/runner"
	"hostprep/pkg/system"

	"github.com/gammazero/toposort"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/afero"
)

// Order returns the selected tasks in execution order. The selection order is
// kept when it satisfies every task's After constraint; otherwise the tasks are
// reordered so that constraints hold. Constraints naming unselected tasks are ignored.
func Order(catalog map[string]model.Task, selected []string, logger log.Logger) ([]model.Task, error) {
	if len(selected) == 0 {
		return nil, fmt.Errorf("no tasks selected")
	}
	chosen := make(map[string]bool, len(selected))
	for _, id := range selected {
		if _, ok := catalog[id]; !ok {
			return nil, fmt.Errorf("unknown task %q", id)
		}
		if chosen[id] {
			return nil, fmt.Errorf("task %q selected more than once", id)
		}
		chosen[id] = true
	}

	var constraints []toposort.Edge
	for _, id := range selected {
		for _, dep := range catalog[id].After {
			if chosen[dep] {
				// Edge (dep, id) means dep must come before id
				constraints = append(constraints, toposort.Edge{dep, id})
			}
		}
	}

	sequence := []toposort.Edge{{nil, selected[0]}}
	for i := 1; i < len(selected); i++ {
		sequence = append(sequence, toposort.Edge{selected[i-1], selected[i]})
	}

	order, err := sortIDs(append(sequence, constraints...))
	if err != nil {
		// The requested order contradicts a constraint; move tasks only as far as needed.
		order, err = stableOrder(catalog, selected, chosen)
		if err != nil {
			return nil, err
		}
		logger.Warn("Reordered tasks to satisfy ordering constraints",
			"requested", strings.Join(selected, ","),
			"order", strings.Join(order, ","))
	}

	tasks := make([]model.Task, 0, len(order))
	for _, id := range order {
		tasks = append(tasks, catalog[id])
	}
	return tasks, nil
}

// stableOrder emits tasks in selection order, holding each one back until its
// selected After dependencies have been emitted.
func stableOrder(catalog map[string]model.Task, selected []string, chosen map[string]bool) ([]string, error) {
	emitted := make(map[string]bool, len(selected))
	order := make([]string, 0, len(selected))
	for len(order) < len(selected) {
		next := ""
		for _, id := range selected {
			if emitted[id] {
				continue
			}
			ready := true
			for _, dep := range catalog[id].After {
				if chosen[dep] && !emitted[dep] {
					ready = false
					break
				}
			}
			if ready {
				next = id
				break
			}
		}
		if next == "" {
			return nil, fmt.Errorf("task ordering contains a cycle among: %s", strings.Join(pending(selected, emitted), ", "))
		}
		emitted[next] = true
		order = append(order, next)
	}
	return order, nil
}

func pending(selected []string, emitted map[string]bool) []string {
	var ids []string
	for _, id := range selected {
		if !emitted[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func sortIDs(edges []toposort.Edge) ([]string, error) {
	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, err
	}
	order := make([]string, 0, len(sorted))
	for _, id := range sorted {
		if id != nil {
			order = append(order, id.(string))
		}
	}
	return order, nil
}

// Step is the preview of one task.
type Step struct {
	TaskID      string
	Description string
	Details     []string
}

// Planner renders previews. It only runs the read-only commands that feed
// stdin templates (architecture and release queries); nothing is installed.
type Planner struct {
	Runner  runner.CommandRunner
	Context runner.ExecContext
	Logger  log.Logger
}

// Describe returns one step per task with the low-level operations it would perform.
func (p *Planner) Describe(tasks []model.Task) []Step {
	installed, err := system.InstalledPackages()
	if err != nil {
		p.Logger.Warn("Could not read installed packages", "error", err)
		installed = map[string]bool{}
	}

	steps := make([]Step, 0, len(tasks))
	for _, task := range tasks {
		step := Step{TaskID: task.ID, Description: capitalize(task.Name)}
		for _, cmd := range task.Commands {
			step.Details = append(step.Details, p.commandDetails(cmd, installed)...)
		}
		steps = append(steps, step)
	}
	return steps
}

func (p *Planner) commandDetails(cmd model.Command, installed map[string]bool) []string {
	var details []string

	line := cmd.String()
	if cmd.Mode == model.ModeInteractive {
		line += " (interactive)"
	}
	switch src := cmd.Stdin.(type) {
	case model.Pipe:
		details = append(details, fmt.Sprintf("run: %s | %s", src.From.String(), line))
	case model.Literal:
		details = append(details, fmt.Sprintf("run: %s (stdin: %s)", line, src.Describe()))
	default:
		details = append(details, "run: "+line)
	}

	if present := alreadyInstalled(cmd, installed); len(present) > 0 {
		details = append(details, "already installed: "+strings.Join(present, ", "))
	}

	if cmd.Writes == "" {
		return details
	}
	tmpl, ok := cmd.Stdin.(model.Template)
	if !ok {
		return append(details, "write: "+cmd.Writes)
	}
	content, err := p.render(tmpl)
	if err != nil {
		p.Logger.Debug("Could not render preview", "command", cmd.String(), "error", err)
		return append(details, fmt.Sprintf("write: %s with %s", cmd.Writes, tmpl.Describe()))
	}
	return append(details, fileDiff(cmd.Writes, content)...)
}

// render resolves template variables by running their commands in captured mode.
func (p *Planner) render(tmpl model.Template) (string, error) {
	values := make(map[string]string, len(tmpl.Vars))
	for _, v := range tmpl.Vars {
		from := v.From
		from.Mode = model.ModeCaptured
		res := p.Runner.Run(p.Context, from, nil)
		if !res.Ok() {
			return "", res.Err
		}
		values[v.Name] = strings.TrimSpace(res.Stdout)
	}
	out, err := tmpl.Render(values)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// fileDiff compares the current content of path with the content a command would write.
func fileDiff(path, content string) []string {
	current := ""
	if data, err := afero.ReadFile(system.AppFs, path); err == nil {
		current = string(data)
	}
	if current == content {
		return []string{"unchanged: " + path}
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(current, content)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	details := []string{"write: " + path, "--- diff ---"}
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			details = append(details, prefix+strings.TrimSuffix(line, "\n"))
		}
	}
	return append(details, "--- end diff ---")
}

// alreadyInstalled lists the packages of an `apt-get install` command that dpkg reports as installed.
func alreadyInstalled(cmd model.Command, installed map[string]bool) []string {
	if cmd.Name != "apt-get" || len(cmd.Args) == 0 || cmd.Args[0] != "install" {
		return nil
	}
	var present []string
	for _, arg := range cmd.Args[1:] {
		if strings.HasPrefix(arg, "-") {
			continue
		}
		if installed[arg] {
			present = append(present, arg)
		}
	}
	slices.Sort(present)
	return present
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
