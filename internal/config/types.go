// Package config provides functionality for parsing and validating
// criteria and roster files (JSON/YAML).
package config

import (
	"fmt"
	"strings"

	"github.com/islomar/rostersearch/pkg/roster"
)

// Kind identifies what a configuration document describes.
type Kind string

// Document kinds, detected from the top-level key.
const (
	KindCriteria Kind = "criteria"
	KindRoster   Kind = "roster"
	KindUnknown  Kind = ""
)

// Criterion languages.
const (
	LangExpr       = "expr"
	LangJavaScript = "javascript"
)

// CriteriaFile is the typed form of a criteria document.
type CriteriaFile struct {
	Criteria []CriterionDef `json:"criteria"`
}

// CriterionDef declares a named criterion.
// Exactly one of Expression (lang expr) or Script (lang javascript) is used.
type CriterionDef struct {
	// Name is the registry key
	Name string `json:"name"`
	// Description is free-form documentation shown by the criteria command
	Description string `json:"description,omitempty"`
	// Lang is "expr" (default) or "javascript"
	Lang string `json:"lang,omitempty"`
	// Expression is an expr-lang boolean expression over the record fields
	Expression string `json:"expression,omitempty"`
	// Script is JavaScript source defining test(person)
	Script string `json:"script,omitempty"`
}

// Language returns the effective language, defaulting to expr.
func (d CriterionDef) Language() string {
	if d.Lang == "" {
		return LangExpr
	}
	return d.Lang
}

// RosterFile is the typed form of a roster document.
type RosterFile struct {
	People []roster.Person `json:"people"`
}

// ParseResult contains the result of parsing a configuration file.
type ParseResult struct {
	// Data contains the parsed configuration as a map
	Data map[string]interface{}
	// Errors contains any parsing errors encountered
	Errors []ParseError
	// FilePath is the path to the parsed file (empty if parsed from string)
	FilePath string
	// Format indicates the detected format (json, yaml)
	Format string
}

// IsValid returns true if no parsing errors occurred.
func (r *ParseResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ParseError represents a parsing error with location information.
type ParseError struct {
	// Path is the file path where the error occurred
	Path string
	// Line is the line number (1-based, 0 if unknown)
	Line int
	// Column is the column number (1-based, 0 if unknown)
	Column int
	// Offset is the byte offset in the file (0 if unknown)
	Offset int64
	// Message is the error message
	Message string
	// Type categorizes the error (syntax, io, format)
	Type string
}

// Error implements the error interface.
func (e ParseError) Error() string {
	var sb strings.Builder
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d", e.Line))
		if e.Column > 0 {
			sb.WriteString(fmt.Sprintf(", column %d", e.Column))
		}
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

// ValidationResult contains the result of validating a configuration.
type ValidationResult struct {
	// Valid indicates whether the configuration is valid
	Valid bool
	// Errors contains validation errors
	Errors []ValidationError
}

// ValidationError represents a schema validation error.
type ValidationError struct {
	// Path is the JSON pointer where the error occurred (e.g. "/criteria/0/name")
	Path string
	// Type is the error type (required, type, pattern, enum, ...)
	Type string
	// Message is the error message
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Result contains the combined result of parsing and validation.
type Result struct {
	// Data contains the parsed and validated configuration
	Data map[string]interface{}
	// Kind is the detected document kind
	Kind Kind
	// ParseErrors contains parsing errors
	ParseErrors []ParseError
	// ValidationErrors contains validation errors
	ValidationErrors []ValidationError
	// FilePath is the path to the configuration file
	FilePath string
	// Format is the detected format (json, yaml)
	Format string
}

// IsValid returns true if no errors occurred.
func (r *Result) IsValid() bool {
	return len(r.ParseErrors) == 0 && len(r.ValidationErrors) == 0
}

// AllErrors returns all errors (parsing and validation) as a single slice.
func (r *Result) AllErrors() []error {
	errs := make([]error, 0, len(r.ParseErrors)+len(r.ValidationErrors))
	for _, e := range r.ParseErrors {
		errs = append(errs, e)
	}
	for _, e := range r.ValidationErrors {
		errs = append(errs, e)
	}
	return errs
}

// ResultError wraps an invalid Result so loaders can return it as an error.
type ResultError struct {
	Result *Result
}

func (e *ResultError) Error() string {
	errs := e.Result.AllErrors()
	if len(errs) == 0 {
		return "invalid configuration"
	}
	if len(errs) == 1 {
		return errs[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", errs[0].Error(), len(errs)-1)
}

// FormatErrorType constants for categorizing parse errors.
const (
	ErrorTypeIO     = "io"
	ErrorTypeSyntax = "syntax"
	ErrorTypeFormat = "format"
)
