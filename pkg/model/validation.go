package model

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	if len(es) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, e := range es {
		sb.WriteString(fmt.Sprintf("  - %s\n", e.Error()))
	}
	return sb.String()
}

// Validator is implemented by configuration and task values.
type Validator interface {
	Validate() ValidationErrors
}

// Check runs v's validation and returns the collected errors, or nil when v is valid.
func Check(v Validator) error {
	if errs := v.Validate(); len(errs) > 0 {
		return errs
	}
	return nil
}

// isValidPackageName accepts Debian package names: lowercase alphanumerics
// plus '+', '-' and '.', starting with an alphanumeric.
func isValidPackageName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if i == 0 && !isAlnum {
			return false
		}
		if !isAlnum && r != '+' && r != '-' && r != '.' {
			return false
		}
	}
	return true
}

func isAbsolutePath(path string) bool {
	return strings.HasPrefix(path, "/") && !strings.Contains(path, "..")
}

func hasControlChars(s string) bool {
	for _, r := range s {
		if r < 32 || r == 127 {
			return true
		}
	}
	return false
}
