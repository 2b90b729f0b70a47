// Package diagnostics defines the compiler's error values.
//
// Two disjoint taxonomies map to the two core stages: T-codes are type
// errors, G-codes are code generation errors. The first error in a stage
// aborts that stage; generation is only attempted on a clean check.
package diagnostics

import (
	"fmt"

	"github.com/ril-lang/ril/internal/token"
)

// ErrorCode is a stable diagnostic code (T001, G003, ...).
type ErrorCode string

// Type checker codes.
const (
	ErrT001 ErrorCode = "T001" // UndefinedVariable
	ErrT002 ErrorCode = "T002" // UndefinedFunction
	ErrT003 ErrorCode = "T003" // TypeMismatch
	ErrT004 ErrorCode = "T004" // AffineViolation
	ErrT005 ErrorCode = "T005" // ImmutableReassignment
	ErrT006 ErrorCode = "T006" // ArityMismatch
	ErrT007 ErrorCode = "T007" // NonExhaustiveMatch
)

// Code generator codes.
const (
	ErrG001 ErrorCode = "G001" // UndefinedVariable
	ErrG002 ErrorCode = "G002" // UndefinedFunction
	ErrG003 ErrorCode = "G003" // UnsupportedType
	ErrG004 ErrorCode = "G004" // NotImplemented
)

// Parser codes (supporting stage; not part of the core taxonomies).
const (
	ErrP001 ErrorCode = "P001" // SyntaxError
)

var titles = map[ErrorCode]string{
	ErrT001: "undefined variable",
	ErrT002: "undefined function",
	ErrT003: "type mismatch",
	ErrT004: "affine violation",
	ErrT005: "immutable reassignment",
	ErrT006: "arity mismatch",
	ErrT007: "non-exhaustive match",
	ErrG001: "undefined variable",
	ErrG002: "undefined function",
	ErrG003: "unsupported type",
	ErrG004: "not implemented",
	ErrP001: "syntax error",
}

// Title returns the human name of a code, or the code itself.
func (c ErrorCode) Title() string {
	if t, ok := titles[c]; ok {
		return t
	}
	return string(c)
}

// DiagnosticError is a single compiler diagnostic tied to a source position.
type DiagnosticError struct {
	Code    ErrorCode
	Token   token.Token
	File    string
	Message string
}

func (e *DiagnosticError) Error() string {
	pos := fmt.Sprintf("%d:%d", e.Token.Line, e.Token.Column)
	if e.File != "" {
		pos = e.File + ":" + pos
	}
	return fmt.Sprintf("%s: [%s] %s: %s", pos, e.Code, e.Code.Title(), e.Message)
}

// NewError creates a diagnostic at the given token's position.
func NewError(code ErrorCode, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Token:   tok,
		Message: fmt.Sprintf(format, args...),
	}
}
