package model

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

// Mode selects how a command's standard streams are wired.
type Mode string

const (
	// ModeCaptured buffers stdout and stderr in memory.
	ModeCaptured Mode = "captured"
	// ModeInteractive connects the command to the operator's terminal.
	ModeInteractive Mode = "interactive"
)

// Command is a single external-executable invocation. It is never run through a shell.
type Command struct {
	Name string
	Args []string
	Mode Mode
	// Stdin, when set, is resolved right before the command runs and fed to its standard input.
	Stdin Source
	// Writes names the file the command writes, if any. Only used for plan previews.
	Writes string
	// Quiet suppresses echoing captured stdout to the console.
	Quiet bool
}

// Captured builds a captured-mode command.
func Captured(name string, args ...string) Command {
	return Command{Name: name, Args: args, Mode: ModeCaptured}
}

// Interactive builds an interactive-mode command.
func Interactive(name string, args ...string) Command {
	return Command{Name: name, Args: args, Mode: ModeInteractive}
}

// String renders the command line for logs and plans, quoting arguments that
// would be ambiguous when read back.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quoteArg(c.Name))
	for _, arg := range c.Args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if arg == "" || strings.ContainsAny(arg, " \t\n'\"\\$`|&;<>()*?[]#~") {
		return strconv.Quote(arg)
	}
	return arg
}

// Source produces the bytes fed to a command's standard input.
type Source interface {
	// Describe returns a short human-readable form of the source for plans.
	Describe() string
}

// Literal is a fixed stdin payload.
type Literal []byte

func (l Literal) Describe() string {
	return fmt.Sprintf("%d bytes", len(l))
}

// Pipe feeds the captured stdout of From into the command.
type Pipe struct {
	From Command
}

func (p Pipe) Describe() string {
	return p.From.String()
}

// TemplateVar binds a template variable to the trimmed stdout of a captured command.
type TemplateVar struct {
	Name string
	From Command
}

// Template renders Text with values taken from the output of Vars.
type Template struct {
	Text string
	Vars []TemplateVar
}

func (t Template) Describe() string {
	return strings.TrimRight(t.Text, "\n")
}

// Render executes the template. Every variable referenced by the text must be present in values.
func (t Template) Render(values map[string]string) ([]byte, error) {
	tmpl, err := template.New("stdin").Option("missingkey=error").Parse(t.Text)
	if err != nil {
		return nil, fmt.Errorf("parsing stdin template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, values); err != nil {
		return nil, fmt.Errorf("rendering stdin template: %w", err)
	}
	return buf.Bytes(), nil
}

// Task is a named, ordered group of commands representing one goal.
type Task struct {
	ID             string
	Name           string
	StartMessage   string
	SuccessMessage string
	// After lists task IDs that must run before this one when both are selected.
	After    []string
	Commands []Command
}

func (t Task) Validate() ValidationErrors {
	var errs ValidationErrors
	field := fmt.Sprintf("tasks[%s]", t.ID)

	if strings.TrimSpace(t.ID) == "" {
		errs = append(errs, ValidationError{Field: "tasks[]", Message: "task id cannot be empty"})
	}
	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, ValidationError{Field: field + ".name", Message: "task name cannot be empty"})
	}
	if len(t.Commands) == 0 {
		errs = append(errs, ValidationError{Field: field + ".commands", Message: "task must have at least one command"})
	}
	for i, cmd := range t.Commands {
		errs = append(errs, cmd.validate(fmt.Sprintf("%s.commands[%d]", field, i))...)
	}
	return errs
}

func (c Command) validate(field string) ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, ValidationError{Field: field + ".name", Message: "executable name cannot be empty"})
	}
	switch c.Mode {
	case ModeCaptured:
	case ModeInteractive:
		if c.Stdin != nil {
			errs = append(errs, ValidationError{Field: field + ".stdin", Message: "interactive commands read from the terminal and cannot take a stdin source"})
		}
	default:
		errs = append(errs, ValidationError{Field: field + ".mode", Message: fmt.Sprintf("invalid mode '%s', must be one of: captured, interactive", c.Mode)})
	}
	for i, arg := range c.Args {
		if hasControlChars(arg) {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("%s.args[%d]", field, i), Message: "argument contains control characters"})
		}
	}

	switch src := c.Stdin.(type) {
	case Pipe:
		if src.From.Mode != ModeCaptured {
			errs = append(errs, ValidationError{Field: field + ".stdin", Message: "piped command must run in captured mode"})
		}
	case Template:
		if _, err := template.New("stdin").Parse(src.Text); err != nil {
			errs = append(errs, ValidationError{Field: field + ".stdin", Message: err.Error()})
		}
		for j, v := range src.Vars {
			if v.From.Mode != ModeCaptured {
				errs = append(errs, ValidationError{Field: fmt.Sprintf("%s.stdin.vars[%d]", field, j), Message: "template variable command must run in captured mode"})
			}
		}
	}
	return errs
}
