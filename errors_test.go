package main

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

func TestWrapErrorWithSource(t *testing.T) {
	src := "{ int x; y = 1; }"
	_, err := Compile(src, DefaultOptions())
	be.True(t, err != nil)

	wrapped := WrapErrorWithSource(err, src)
	be.Equal(t, wrapped.Error(), "ERROR at 1:10: undeclared variable 'y'\n\n"+
		"1 | { int x; y = 1; }\n"+
		"  |          ^")
}

func TestWrapErrorWithSourceShowsContext(t *testing.T) {
	src := "{\n  int x;\n  x = y;\n}"
	_, err := Compile(src, DefaultOptions())
	be.True(t, err != nil)

	wrapped := WrapErrorWithSource(err, src)
	be.Equal(t, wrapped.Error(), "ERROR at 3:7: undeclared variable 'y'\n\n"+
		"2 |   int x;\n"+
		"3 |   x = y;\n"+
		"  |       ^\n"+
		"4 | }")
}

func TestWrapSyntaxError(t *testing.T) {
	src := "{ x = ; }"
	_, err := ParseSource(src)
	be.True(t, err != nil)

	wrapped := WrapErrorWithSource(err, src)
	be.Equal(t, wrapped.Error(), "SYNTAX ERROR at 1:7: expected expression but got ';'\n\n"+
		"1 | { x = ; }\n"+
		"  |       ^")
}

func TestWrapErrorLeavesOtherErrorsAlone(t *testing.T) {
	re := &RuntimeError{PC: 3, Msg: "division by zero"}
	be.Equal(t, WrapErrorWithSource(re, "{ }"), error(re))

	ie := internalErrorf("oops")
	be.Equal(t, WrapErrorWithSource(ie, "{ }").Error(), "internal compiler error: oops")
}

func TestErrorStrings(t *testing.T) {
	be.Equal(t, (&SyntaxError{Pos: Pos{Line: 2, Col: 4}, Expected: "';'", Found: "'}'"}).Error(),
		"2:4: syntax error: expected ';' but got '}'")
	be.Equal(t, (&SyntaxError{Pos: Pos{Line: 1, Col: 1}, Msg: "invalid token \"$\""}).Error(),
		"1:1: syntax error: invalid token \"$\"")
	be.Equal(t, (&SemanticError{Pos: Pos{Line: 5, Col: 9}, Msg: "break statement not within a loop"}).Error(),
		"5:9: error: break statement not within a loop")
	be.Equal(t, (&RuntimeError{PC: 7, Msg: "division by zero"}).Error(),
		"runtime error at instruction 7: division by zero")
}

func TestIsIncomplete(t *testing.T) {
	tests := []struct {
		src        string
		incomplete bool
	}{
		{"{", true},
		{"{ int x;", true},
		{"{ int x; x = 1 +", true},
		{"{ while (True) {", true},
		{"{ x = ; }", false},
		{"{ int x; } }", false},
		{"{ }", false},
	}

	for _, test := range tests {
		_, err := ParseSource(test.src)
		if IsIncomplete(err) != test.incomplete {
			t.Errorf("Source: %q\nExpected incomplete=%v, got error %v", test.src, test.incomplete, err)
		}
	}
	be.True(t, !IsIncomplete(nil))
	be.True(t, !IsIncomplete(errors.New("end of input")))
}

func TestRecoverErrorCatchesBailout(t *testing.T) {
	run := func() (err error) {
		defer recoverError(&err)
		fail(&SemanticError{Pos: Pos{Line: 1, Col: 1}, Msg: "boom"})
		return nil
	}
	err := run()
	var sem *SemanticError
	be.True(t, errors.As(err, &sem))
	be.Equal(t, sem.Msg, "boom")
}

func TestRecoverErrorRepanics(t *testing.T) {
	defer func() {
		r := recover()
		be.Equal(t, r, any("not a bailout"))
	}()
	func() {
		var err error
		defer recoverError(&err)
		panic("not a bailout")
	}()
	t.Fatal("panic did not propagate")
}
