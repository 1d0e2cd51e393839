package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestWrapExpression(t *testing.T) {
	be.Equal(t, wrapExpression("1 + 2"), "{ int result; result = 1 + 2; }")
	be.Equal(t, wrapExpression("{ int x; }"), "{ int x; }")
	be.Equal(t, wrapExpression("  \n{ }"), "  \n{ }")
}

func TestExecuteSourcePrintsOutermostVariables(t *testing.T) {
	var out, log bytes.Buffer
	src := "{ int x; int[2] a; x = 3; a[1] = x * 2; { int y; y = 1; } }"
	code := executeSource(&out, &log, src, DefaultOptions(), false)
	be.Equal(t, code, 0)
	be.Equal(t, out.String(), "x = 3\na = [0 6]\n")
	be.Equal(t, log.String(), "")
}

func TestExecuteSourceFormatsMatrices(t *testing.T) {
	var out, log bytes.Buffer
	code := executeSource(&out, &log, "{ int[2][2] m; m[1][0] = 5; m[0][1] = -1; }", DefaultOptions(), false)
	be.Equal(t, code, 0)
	be.Equal(t, out.String(), "m = [[0 -1] [5 0]]\n")
}

func TestExecuteSourceEvaluatesExpressions(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1 + 2 * 3", "result = 7\n"},
		{"(1 + 2) * 3", "result = 9\n"},
		{"10 - 4 - 3", "result = 3\n"},
		{"7 / 2", "result = 3\n"},
		{"3 > 2", "result = 1\n"},
		{"3 == 2 || !False", "result = 1\n"},
	}

	for _, test := range tests {
		var out, log bytes.Buffer
		code := executeSource(&out, &log, wrapExpression(test.expr), DefaultOptions(), false)
		be.Equal(t, code, 0)
		be.Equal(t, out.String(), test.want)
	}
}

func TestExecuteSourceReportsFailures(t *testing.T) {
	var out, log bytes.Buffer
	code := executeSource(&out, &log, "{ int x; y = 1; }", DefaultOptions(), false)
	be.Equal(t, code, 1)
	be.Equal(t, out.String(), "")
	be.True(t, strings.HasPrefix(log.String(), "Compilation failed: ERROR at 1:10: undeclared variable 'y'"))

	out.Reset()
	log.Reset()
	code = executeSource(&out, &log, "{ int x; x = 1 / 0; }", DefaultOptions(), false)
	be.Equal(t, code, 1)
	be.Equal(t, out.String(), "")
	be.True(t, strings.HasPrefix(log.String(), "Execution failed: runtime error at instruction"))
	be.True(t, strings.Contains(log.String(), "division by zero"))
}

func TestCompileSourceVerbose(t *testing.T) {
	var log bytes.Buffer
	c, err := compileSource(&log, "{ int x; { int[3] a; } }", DefaultOptions(), true)
	be.Err(t, err, nil)
	be.Equal(t, c.StackSize, uint32(16))

	lines := strings.Split(strings.TrimRight(log.String(), "\n"), "\n")
	be.Equal(t, len(lines), 4)
	be.True(t, strings.HasPrefix(lines[0], "AST: (program"))
	be.Equal(t, strings.Fields(lines[1]), []string{"x", "int", "fp[0]", "depth", "1"})
	be.Equal(t, strings.Fields(lines[2]), []string{"a", "int[3]", "fp[4]", "depth", "2"})
	be.Equal(t, lines[3], "Generated 4 instructions, 16 bytes of stack")
}

func TestExecuteSourceVerboseCountsSteps(t *testing.T) {
	var out, log bytes.Buffer
	code := executeSource(&out, &log, "{ int x; x = 1; }", DefaultOptions(), true)
	be.Equal(t, code, 0)
	be.True(t, strings.HasSuffix(log.String(), "Executed 3 instructions\n"))
}

func TestWriteTokens(t *testing.T) {
	tokens, err := Lex("x = 42;\nif")
	be.Err(t, err, nil)

	var b bytes.Buffer
	writeTokens(&b, tokens)
	be.Equal(t, b.String(), "1:1\tIDENT\tx\n"+
		"1:3\t=\t=\n"+
		"1:5\tNUM\t42\n"+
		"1:7\t;\t;\n"+
		"2:1\tIF\tif\n"+
		"2:3\tEOF\n")
}

func TestNeedsMoreInput(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"", false},
		{"   ", false},
		{":quit", false},
		{"{", true},
		{"{ int x;", true},
		{"{ int x;\n  x = 1;", true},
		{"{ int x; x = 1; }", false},
		{"{ x = ; }", false},
		{"1 +", true},
		{"(1 + 2", true},
		{"1 + 2", false},
		{"1 + + )", false},
	}

	for _, test := range tests {
		if got := needsMoreInput(test.src); got != test.want {
			t.Errorf("needsMoreInput(%q) = %v, want %v", test.src, got, test.want)
		}
	}
}
