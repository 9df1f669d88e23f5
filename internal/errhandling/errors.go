// Package errhandling provides the error taxonomy shared across the roster search runtime.
// Every failure surfaced to callers carries an ErrorCode so the CLI and tests can
// classify it without string matching.
package errhandling

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies the kind of failure.
type ErrorCode string

// Error codes.
const (
	CodeUnknownCriterion    ErrorCode = "UNKNOWN_CRITERION"
	CodeUnknownMapper       ErrorCode = "UNKNOWN_MAPPER"
	CodeInvalidField        ErrorCode = "INVALID_FIELD"
	CodeInvalidCriterion    ErrorCode = "INVALID_CRITERION"
	CodeInvalidExpression   ErrorCode = "INVALID_EXPRESSION"
	CodeCompilationFailed   ErrorCode = "COMPILATION_FAILED"
	CodeMissingTestFunction ErrorCode = "MISSING_TEST_FUNCTION"
	CodeUnknown             ErrorCode = "UNKNOWN"
)

// Sentinel errors for errors.Is matching.
var (
	// ErrUnknownCriterion is matched by every *UnknownCriterionError.
	ErrUnknownCriterion = errors.New("unknown criterion")
	// ErrUnknownMapper is matched by every *UnknownMapperError.
	ErrUnknownMapper = errors.New("unknown mapper")
	// ErrInvalidField is matched by every *InvalidFieldError.
	ErrInvalidField = errors.New("invalid field")
	// ErrInvalidCriterion is matched by every *CriterionError.
	ErrInvalidCriterion = errors.New("invalid criterion")
)

// UnknownCriterionError is returned when a criterion name is not registered.
type UnknownCriterionError struct {
	// Name is the requested criterion name
	Name string
	// Known lists the registered names at the time of the lookup
	Known []string
}

func (e *UnknownCriterionError) Error() string {
	return unknownMessage("criterion", e.Name, e.Known)
}

// Is reports whether target is ErrUnknownCriterion.
func (e *UnknownCriterionError) Is(target error) bool {
	return target == ErrUnknownCriterion
}

// NewUnknownCriterionError creates an UnknownCriterionError.
func NewUnknownCriterionError(name string, known []string) *UnknownCriterionError {
	return &UnknownCriterionError{Name: name, Known: known}
}

// UnknownMapperError is returned when a transform name is not registered.
type UnknownMapperError struct {
	Name  string
	Known []string
}

func (e *UnknownMapperError) Error() string {
	return unknownMessage("mapper", e.Name, e.Known)
}

// Is reports whether target is ErrUnknownMapper.
func (e *UnknownMapperError) Is(target error) bool {
	return target == ErrUnknownMapper
}

// NewUnknownMapperError creates an UnknownMapperError.
func NewUnknownMapperError(name string, known []string) *UnknownMapperError {
	return &UnknownMapperError{Name: name, Known: known}
}

func unknownMessage(kind, name string, known []string) string {
	if len(known) == 0 {
		return fmt.Sprintf("%s %q not found", kind, name)
	}
	return fmt.Sprintf("%s %q not found (known: %s)", kind, name, strings.Join(known, ", "))
}

// InvalidFieldError reports a record field holding structurally invalid data.
type InvalidFieldError struct {
	// Field is the record field name (e.g. "birthDate")
	Field string
	// Value is the rejected value, formatted for display
	Value string
	// Reason explains why the value was rejected
	Reason string
}

func (e *InvalidFieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid field %s=%q: %s", e.Field, e.Value, e.Reason)
}

// Is reports whether target is ErrInvalidField.
func (e *InvalidFieldError) Is(target error) bool {
	return target == ErrInvalidField
}

// NewInvalidFieldError creates an InvalidFieldError.
func NewInvalidFieldError(field, value, reason string) *InvalidFieldError {
	return &InvalidFieldError{Field: field, Value: value, Reason: reason}
}

// CriterionError carries structured context for a criterion that could not be built.
type CriterionError struct {
	Code      ErrorCode
	Criterion string
	Message   string
	Err       error
}

func (e *CriterionError) Error() string {
	if e.Criterion != "" {
		return fmt.Sprintf("criterion %q: %s", e.Criterion, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *CriterionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvalidCriterion.
func (e *CriterionError) Is(target error) bool {
	return target == ErrInvalidCriterion
}

// NewCriterionError creates a CriterionError.
func NewCriterionError(code ErrorCode, criterion, message string, err error) *CriterionError {
	return &CriterionError{
		Code:      code,
		Criterion: criterion,
		Message:   message,
		Err:       err,
	}
}

// Code returns the ErrorCode of the first typed error found in err's chain.
// Returns CodeUnknown for nil or untyped errors.
func Code(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	var unknownCriterion *UnknownCriterionError
	if errors.As(err, &unknownCriterion) {
		return CodeUnknownCriterion
	}

	var unknownMapper *UnknownMapperError
	if errors.As(err, &unknownMapper) {
		return CodeUnknownMapper
	}

	var invalidField *InvalidFieldError
	if errors.As(err, &invalidField) {
		return CodeInvalidField
	}

	var criterionErr *CriterionError
	if errors.As(err, &criterionErr) {
		return criterionErr.Code
	}

	return CodeUnknown
}

// IsNotFound reports whether err is a lookup miss (criterion or mapper).
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownCriterion) || errors.Is(err, ErrUnknownMapper)
}
