// Package ui writes operator-facing progress lines. Colors are applied only
// when the destination is a terminal.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Console struct {
	out io.Writer
	err io.Writer

	stepStyle    lipgloss.Style
	successStyle lipgloss.Style
	failureStyle lipgloss.Style
}

// ANSI palette indexes.
var (
	successColor = lipgloss.Color("2")
	failureColor = lipgloss.Color("1")
)

func NewConsole(out, err io.Writer) *Console {
	return newConsole(out, err, lipgloss.NewRenderer(out), lipgloss.NewRenderer(err))
}

func newConsole(out, err io.Writer, outRenderer, errRenderer *lipgloss.Renderer) *Console {
	return &Console{
		out:          out,
		err:          err,
		stepStyle:    outRenderer.NewStyle().Bold(true),
		successStyle: outRenderer.NewStyle().Foreground(successColor).Bold(true),
		failureStyle: errRenderer.NewStyle().Foreground(failureColor).Bold(true),
	}
}

// Step announces the start of a unit of work.
func (c *Console) Step(msg string) {
	fmt.Fprintln(c.out, c.stepStyle.Render(msg))
}

// Output echoes captured command output verbatim.
func (c *Console) Output(text string) {
	if text == "" {
		return
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	fmt.Fprint(c.out, text)
}

func (c *Console) Success(msg string) {
	fmt.Fprintln(c.out, c.successStyle.Render(msg))
}

func (c *Console) Failure(msg string) {
	fmt.Fprintln(c.err, c.failureStyle.Render(msg))
}
