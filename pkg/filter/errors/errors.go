// Package errors provides the structured error type shared by the filter
// parser and evaluator.
//
// Two families, never conflated: parse-class errors are compile-time and
// fatal to the whole invocation; the remaining classes are per-record
// evaluation errors that must not abort a bulk filter pass.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorClass categorizes errors for filtering and display.
type ErrorClass string

const (
	ClassParse     ErrorClass = "parse"     // Syntax errors (compile time)
	ClassType      ErrorClass = "type"      // Type mismatches (evaluation time)
	ClassUndefined ErrorClass = "undefined" // Unknown field path (evaluation time)
	ClassPredicate ErrorClass = "predicate" // Non-boolean top-level result
)

// FilterError represents any error from parsing or evaluating a filter
// expression.
type FilterError struct {
	Class    ErrorClass `json:"class"`
	Message  string     `json:"message"`
	Column   int        `json:"column,omitempty"`   // 1-based, 0 if unknown
	Expected string     `json:"expected,omitempty"` // parse errors only
	Found    string     `json:"found,omitempty"`    // parse errors only
}

// Error implements the error interface.
func (e *FilterError) Error() string {
	var sb strings.Builder
	if e.Column > 0 {
		fmt.Fprintf(&sb, "column %d: ", e.Column)
	}
	sb.WriteString(e.Message)
	if e.Expected != "" {
		fmt.Fprintf(&sb, " (expected %s, found %s)", e.Expected, e.Found)
	}
	return sb.String()
}

// IsParse reports whether the error is a compile-time parse error.
func (e *FilterError) IsParse() bool { return e.Class == ClassParse }

// Caret returns a two-line display of the expression with a marker under
// the error column, for CLI diagnostics.
func (e *FilterError) Caret(expr string) string {
	if e.Column <= 0 || e.Column > len(expr)+1 {
		return expr
	}
	return expr + "\n" + strings.Repeat(" ", e.Column-1) + "^"
}

// NewParseError creates a parse-class error with expected/found detail.
func NewParseError(column int, expected, found string) *FilterError {
	return &FilterError{
		Class:    ClassParse,
		Message:  "unexpected token",
		Column:   column,
		Expected: expected,
		Found:    found,
	}
}

// Parsef creates a parse-class error with a formatted message.
func Parsef(column int, format string, args ...any) *FilterError {
	return &FilterError{Class: ClassParse, Message: fmt.Sprintf(format, args...), Column: column}
}

// Typef creates a type-mismatch evaluation error.
func Typef(format string, args ...any) *FilterError {
	return &FilterError{Class: ClassType, Message: fmt.Sprintf(format, args...)}
}

// UndefinedField creates an unknown-field evaluation error.
func UndefinedField(path string) *FilterError {
	return &FilterError{Class: ClassUndefined, Message: fmt.Sprintf("unknown field: %s", path)}
}

// NotAPredicate creates the error for a non-boolean top-level result.
func NotAPredicate(got string) *FilterError {
	return &FilterError{
		Class:   ClassPredicate,
		Message: fmt.Sprintf("expression is not a predicate: evaluates to %s, not a boolean", got),
	}
}

// AsFilterError unwraps err to a *FilterError if it is one.
func AsFilterError(err error) (*FilterError, bool) {
	var fe *FilterError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// IsParseError reports whether err is a parse-class FilterError.
func IsParseError(err error) bool {
	fe, ok := AsFilterError(err)
	return ok && fe.IsParse()
}
