// Package cli provides CLI output formatting and display functions.
package cli

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/islomar/rostersearch/internal/config"
	"github.com/islomar/rostersearch/internal/errhandling"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitValidationError = 1
	ExitParseError      = 2
	ExitRuntimeError    = 3
	ExitUnknownName     = 4
)

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var resultErr *config.ResultError
	if errors.As(err, &resultErr) {
		if len(resultErr.Result.ParseErrors) > 0 {
			return ExitParseError
		}
		return ExitValidationError
	}

	switch {
	case errhandling.IsNotFound(err):
		return ExitUnknownName
	case errors.Is(err, errhandling.ErrInvalidCriterion), errors.Is(err, errhandling.ErrInvalidField):
		return ExitValidationError
	default:
		return ExitRuntimeError
	}
}

// PrintError prints a command error with its code when one is known.
func PrintError(w io.Writer, err error, verbose bool) {
	var resultErr *config.ResultError
	if errors.As(err, &resultErr) {
		r := resultErr.Result
		if len(r.ParseErrors) > 0 {
			PrintParseErrors(w, r.ParseErrors, verbose)
			return
		}
		PrintValidationErrors(w, r.ValidationErrors, verbose, !verbose)
		return
	}

	fmt.Fprintf(w, "✗ %v\n", err)
	if verbose {
		if code := errhandling.Code(err); code != errhandling.CodeUnknown {
			fmt.Fprintf(w, "  Code: %s\n", code)
		}
	}
}

// PrintParseErrors prints parse errors.
func PrintParseErrors(w io.Writer, errs []config.ParseError, verbose bool) {
	fmt.Fprintln(w, "✗ Parse errors:")
	for _, err := range errs {
		printSingleParseError(w, err, verbose)
	}
}

// printSingleParseError prints a single parse error with location information.
func printSingleParseError(w io.Writer, err config.ParseError, verbose bool) {
	location := formatErrorLocation(err.Path, err.Line, err.Column)

	if location != "" {
		fmt.Fprintf(w, "  %s: %s\n", location, err.Message)
	} else {
		fmt.Fprintf(w, "  %s\n", err.Message)
	}

	if verbose && err.Type != "" {
		fmt.Fprintf(w, "    Type: %s\n", err.Type)
	}
}

// formatErrorLocation formats the error location string (path:line:column).
func formatErrorLocation(path string, line, column int) string {
	if path == "" {
		return ""
	}

	location := path
	if line > 0 {
		location += fmt.Sprintf(":%d", line)
		if column > 0 {
			location += fmt.Sprintf(":%d", column)
		}
	}
	return location
}

// PrintValidationErrors prints schema validation errors.
func PrintValidationErrors(w io.Writer, errs []config.ValidationError, verbose, quiet bool) {
	fmt.Fprintln(w, "✗ Validation errors:")
	for _, err := range errs {
		path := err.Path
		if path == "" {
			path = "/"
		}
		if verbose {
			fmt.Fprintf(w, "  %s:\n", path)
			fmt.Fprintf(w, "    Message: %s\n", err.Message)
			if err.Type != "" {
				fmt.Fprintf(w, "    Type: %s\n", err.Type)
			}
			continue
		}
		fmt.Fprintf(w, "  %s: %s\n", path, truncate(err.Message, 80))
	}
	if !quiet {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Hint: Use --verbose for detailed error information")
	}
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
