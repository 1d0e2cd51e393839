package main

import (
	"errors"
	"fmt"
	"strings"
)

// SyntaxError reports an unexpected or missing token.
type SyntaxError struct {
	Pos      Pos
	Expected string // empty when Msg says it all
	Found    string
	Msg      string
}

func (e *SyntaxError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: syntax error: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s: syntax error: expected %s but got %s", e.Pos, e.Expected, e.Found)
}

// SemanticError reports a well-formed program that breaks a static rule:
// undeclared or redeclared names, breaks outside loops, misuse of arrays.
type SemanticError struct {
	Pos Pos
	Msg string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("%s: error: %s", e.Pos, e.Msg)
}

// InternalError is a compiler defect, never the user's fault.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "internal compiler error: " + e.Msg
}

// RuntimeError is raised by the VM while executing IR.
type RuntimeError struct {
	PC  int
	Msg string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at instruction %d: %s", e.PC, e.Msg)
}

func internalErrorf(format string, args ...any) *InternalError {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}

// bailout unwinds the parser or code generator after the first error.
// Only the entry points recover it.
type bailout struct {
	err error
}

func fail(err error) {
	panic(bailout{err: err})
}

// recoverError turns a bailout into an error. Any other panic propagates.
func recoverError(errp *error) {
	if r := recover(); r != nil {
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		*errp = b.err
	}
}

// IsIncomplete reports whether err is a syntax error caused by running out of
// input, so that more input could still make the program valid.
func IsIncomplete(err error) bool {
	var syn *SyntaxError
	return errors.As(err, &syn) && syn.Found == "end of input"
}

// errorPos extracts the source position of a user-facing error.
func errorPos(err error) (Pos, string, bool) {
	var syn *SyntaxError
	if errors.As(err, &syn) {
		return syn.Pos, "SYNTAX ERROR", true
	}
	var sem *SemanticError
	if errors.As(err, &sem) {
		return sem.Pos, "ERROR", true
	}
	return Pos{}, "", false
}

// WrapErrorWithSource renders syntax and semantic errors as a snippet with a
// caret under the offending column. Other errors are returned unchanged.
func WrapErrorWithSource(err error, src string) error {
	pos, label, ok := errorPos(err)
	if !ok || pos.Line == 0 {
		return err
	}
	return fmt.Errorf("%s at %s: %s\n\n%s", label, pos, errorMessage(err), caretSnippet(src, pos))
}

func errorMessage(err error) string {
	var syn *SyntaxError
	if errors.As(err, &syn) {
		if syn.Msg != "" {
			return syn.Msg
		}
		return fmt.Sprintf("expected %s but got %s", syn.Expected, syn.Found)
	}
	var sem *SemanticError
	if errors.As(err, &sem) {
		return sem.Msg
	}
	return err.Error()
}

// caretSnippet shows the error line with one line of context on each side.
func caretSnippet(src string, pos Pos) string {
	lines := strings.Split(src, "\n")
	line := pos.Line
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	col := pos.Col
	if col < 1 {
		col = 1
	}

	first := max(line-1, 1)
	last := min(line+1, len(lines))
	width := len(fmt.Sprint(last))

	var b strings.Builder
	for n := first; n <= last; n++ {
		fmt.Fprintf(&b, "%*d | %s\n", width, n, lines[n-1])
		if n == line {
			fmt.Fprintf(&b, "%*s | %s^\n", width, "", strings.Repeat(" ", col-1))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
