package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Error classification
// ---------------------------------------------------------------------------

// ExitCode classifies a failure. Callers map it directly to a process exit
// status, so the values are stable.
type ExitCode int

const (
	ExitOK             ExitCode = 0
	ExitUsage          ExitCode = 10 // malformed or conflicting options
	ExitInput          ExitCode = 11 // input cannot be read
	ExitOutput         ExitCode = 12 // output cannot be written
	ExitLexical        ExitCode = 21 // invalid character sequence
	ExitSyntax         ExitCode = 22 // syntax error or reserved word misuse
	ExitMissingMain    ExitCode = 31 // no Main class or no Main>>run
	ExitUndefinedClass ExitCode = 32 // reference to an undeclared class
	ExitSemantic       ExitCode = 33 // arity mismatch
	ExitInternal       ExitCode = 99
)

var exitCodeNames = map[ExitCode]string{
	ExitOK:             "ok",
	ExitUsage:          "usage",
	ExitInput:          "input",
	ExitOutput:         "output",
	ExitLexical:        "lexical",
	ExitSyntax:         "syntax",
	ExitMissingMain:    "missing-main",
	ExitUndefinedClass: "undefined-class",
	ExitSemantic:       "semantic",
	ExitInternal:       "internal",
}

func (c ExitCode) String() string {
	if name, ok := exitCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ExitCode(%d)", int(c))
}

// Error is a classified front end failure with the source position it
// refers to. A zero Pos means the error is not tied to a location.
type Error struct {
	Code ExitCode
	Pos  Position
	Msg  string
}

func (e *Error) Error() string {
	if e.Pos.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// errorAt creates a classified error at the given position.
func errorAt(code ExitCode, pos Position, format string, args ...interface{}) *Error {
	return &Error{Code: code, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// ErrorList collects every violation found by a pass that does not stop at
// the first one. All entries share the same code.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(l), strings.Join(msgs, "; "))
}

// Err returns nil for an empty list and the list itself otherwise.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// ExitCodeOf classifies err. Unrecognized errors are internal failures.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return ExitOK
	}
	var list ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return list[0].Code
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ExitInternal
}

// Diagnostics flattens err into its classified errors. Unrecognized errors
// become a single internal error.
func Diagnostics(err error) []*Error {
	if err == nil {
		return nil
	}
	var list ErrorList
	if errors.As(err, &list) {
		return list
	}
	var e *Error
	if errors.As(err, &e) {
		return []*Error{e}
	}
	return []*Error{{Code: ExitInternal, Msg: err.Error()}}
}

// FormatDiagnostic renders e as a single line prefixed with the file name,
// e.g. "prog.sol:3:7: error[22]: cannot use reserved word 'self' as class name".
func FormatDiagnostic(file string, e *Error) string {
	if file == "" {
		file = "<stdin>"
	}
	if e.Pos.Line == 0 {
		return fmt.Sprintf("%s: error[%d]: %s", file, int(e.Code), e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: error[%d]: %s", file, e.Pos.Line, e.Pos.Column, int(e.Code), e.Msg)
}
