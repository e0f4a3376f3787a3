// Package prompt asks the operator for the project's root domain.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	DomainQuestion = "Enter your project's root domain: "
	DomainLabel    = "Your project's root domain is: "
)

// AskDomain writes the question to out, reads one line from in and echoes it
// back after DomainLabel. Any text is accepted, including an empty line.
func AskDomain(in io.Reader, out io.Writer) (string, error) {
	if _, err := fmt.Fprint(out, DomainQuestion); err != nil {
		return "", err
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading domain: %w", err)
	}
	domain := strings.TrimRight(line, "\r\n")

	if _, err := fmt.Fprintf(out, "%s%s\n", DomainLabel, domain); err != nil {
		return "", err
	}
	return domain, nil
}
