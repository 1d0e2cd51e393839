package sexy

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func TestExtractTestCases_Basic(t *testing.T) {
	markdown := `# Arithmetic

## Test: addition
` + fence + `tac-expr
1 + 2
` + fence + `
` + fence + `ast
(add 1 2)
` + fence + `

## Test: negation
` + fence + `tac-expr
-x
` + fence + `
` + fence + `ast
(minus (ide "x"))
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 2)

	tc1 := testCases[0]
	be.Equal(t, tc1.Name, "addition")
	be.Equal(t, tc1.Input, "1 + 2")
	be.Equal(t, tc1.InputType, InputTypeExpr)
	be.Equal(t, len(tc1.Assertions), 1)
	be.Equal(t, tc1.Assertions[0].Type, AssertionTypeAST)
	be.Equal(t, tc1.Assertions[0].Parsed.String(), "(add 1 2)")

	tc2 := testCases[1]
	be.Equal(t, tc2.Name, "negation")
	be.Equal(t, tc2.Assertions[0].Parsed.String(), `(minus (ide "x"))`)
}

func TestExtractTestCases_ProgramAssertions(t *testing.T) {
	markdown := `## Test: assign
` + fence + `tac-program
{ int x; x = 1; }
` + fence + `
` + fence + `ir
0: Add sp sp #4
1: Mov fp[0] #1
2: Sub sp sp #4
` + fence + `
` + fence + `execute
x = 1
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)

	tc := testCases[0]
	be.Equal(t, tc.InputType, InputTypeProgram)
	be.Equal(t, len(tc.Assertions), 2)
	be.Equal(t, tc.Assertions[0].Type, AssertionTypeIR)
	be.Equal(t, tc.Assertions[0].Content, "0: Add sp sp #4\n1: Mov fp[0] #1\n2: Sub sp sp #4")
	be.True(t, tc.Assertions[0].Parsed == nil)
	be.Equal(t, tc.Assertions[1].Type, AssertionTypeExecute)
	be.Equal(t, tc.Assertions[1].Content, "x = 1")
}

func TestExtractTestCases_IgnoresProse(t *testing.T) {
	markdown := `# Notes

Plain paragraphs and untagged fences are allowed anywhere.

` + fence + `
not a test
` + fence + `

## Not a test heading

## Test: kept
` + fence + `tac-expr
x
` + fence + `
` + fence + `compile-error
undeclared
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)
	be.Equal(t, testCases[0].Name, "kept")
	be.Equal(t, testCases[0].Assertions[0].Type, AssertionTypeCompileError)
}

func TestExtractTestCases_Errors(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{
			name:     "fence outside test",
			markdown: fence + "tac-expr\n1\n" + fence,
			want:     "outside of test case",
		},
		{
			name:     "unknown fence",
			markdown: "## Test: t\n" + fence + "tac-expr\n1\n" + fence + "\n" + fence + "wasm\n1\n" + fence,
			want:     "unknown fence language 'wasm'",
		},
		{
			name:     "two inputs",
			markdown: "## Test: t\n" + fence + "tac-expr\n1\n" + fence + "\n" + fence + "tac-expr\n2\n" + fence,
			want:     "multiple input fences",
		},
		{
			name:     "no input",
			markdown: "## Test: t\n" + fence + "ast\n1\n" + fence,
			want:     "has no input fence",
		},
		{
			name:     "no assertion",
			markdown: "## Test: t\n" + fence + "tac-expr\n1\n" + fence,
			want:     "has no assertion fences",
		},
		{
			name:     "bad ast",
			markdown: "## Test: t\n" + fence + "tac-expr\n1\n" + fence + "\n" + fence + "ast\n(add 1\n" + fence,
			want:     "failed to parse ast assertion",
		},
		{
			name:     "execute on expression",
			markdown: "## Test: t\n" + fence + "tac-expr\n1\n" + fence + "\n" + fence + "execute\nx = 1\n" + fence,
			want:     "needs a tac-program input",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ExtractTestCases(test.markdown)
			be.True(t, err != nil)
			be.True(t, strings.Contains(err.Error(), test.want))
		})
	}
}

func TestExtractTestCases_LineNumbers(t *testing.T) {
	markdown := "## Test: t\n\n" + fence + "tac-expr\n1\n" + fence + "\n\n" + fence + "ast\n1\n" + fence + "\n"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, testCases[0].Assertions[0].Line, 8)
}

func TestParseExecuteExpectations(t *testing.T) {
	want, err := ParseExecuteExpectations("x = 1\n\n  a[1][2] = -4\nb [ 0 ] = 7")
	be.Err(t, err, nil)
	be.Equal(t, want, map[string]int32{"x": 1, "a[1][2]": -4, "b[0]": 7})

	_, err = ParseExecuteExpectations("x 1")
	be.True(t, err != nil)

	_, err = ParseExecuteExpectations("x = one")
	be.True(t, err != nil)
}
