package sexy

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputType is the language of the fence holding a test's source.
type InputType string

const (
	InputTypeExpr    InputType = "tac-expr"
	InputTypeProgram InputType = "tac-program"
)

// AssertionType is the language of a fence holding an expectation.
type AssertionType string

const (
	AssertionTypeAST          AssertionType = "ast"
	AssertionTypeIR           AssertionType = "ir"
	AssertionTypeExecute      AssertionType = "execute"
	AssertionTypeCompileError AssertionType = "compile-error"
	AssertionTypeRuntimeError AssertionType = "runtime-error"
)

var assertionTypes = []AssertionType{
	AssertionTypeAST,
	AssertionTypeIR,
	AssertionTypeExecute,
	AssertionTypeCompileError,
	AssertionTypeRuntimeError,
}

type Assertion struct {
	Type    AssertionType
	Content string
	Line    int

	// Parsed is set for ast assertions only.
	Parsed *Node
}

// TestCase is one "Test: " section of a Markdown document.
type TestCase struct {
	Name       string
	Input      string
	InputType  InputType
	Assertions []Assertion
}

// ExtractTestCases parses a Markdown document and returns its test cases in
// document order. Every heading starting with "Test: " opens a test; fences
// before the first such heading are rejected.
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	md := goldmark.New()
	source := []byte(markdownContent)
	doc := md.Parser().Parse(text.NewReader(source))

	var testCases []TestCase
	var current *TestCase

	finish := func() error {
		if current == nil {
			return nil
		}
		if err := validateTestCase(current); err != nil {
			return err
		}
		testCases = append(testCases, *current)
		current = nil
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := extractTextFromNode(n, source)
			if name, ok := strings.CutPrefix(heading, "Test: "); ok {
				if err := finish(); err != nil {
					return ast.WalkStop, err
				}
				current = &TestCase{Name: name}
			}

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			lineNum := getLineNumber(n, source)
			if language == "" {
				return ast.WalkContinue, nil
			}
			if current == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of test case", lineNum, language)
			}
			content := strings.TrimRight(extractCodeBlockContent(n, source), "\n")

			switch {
			case isInputFence(language):
				if current.Input != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences found in test '%s'", lineNum, current.Name)
				}
				current.Input = content
				current.InputType = InputType(language)

			case isAssertionFence(language):
				assertion := Assertion{Type: AssertionType(language), Content: content, Line: lineNum}
				if assertion.Type == AssertionTypeAST {
					parsed, err := Parse(content)
					if err != nil {
						return ast.WalkStop, fmt.Errorf("line %d: failed to parse ast assertion in test '%s': %w", lineNum, current.Name, err)
					}
					assertion.Parsed = parsed
				}
				current.Assertions = append(current.Assertions, assertion)

			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", lineNum, language, current.Name)
			}
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown AST: %w", err)
	}

	if err := finish(); err != nil {
		return nil, err
	}
	return testCases, nil
}

// ParseExecuteExpectations reads the body of an execute fence: one
// "name = value" or "name[i][j] = value" per line.
func ParseExecuteExpectations(content string) (map[string]int32, error) {
	want := make(map[string]int32)
	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("execute line %d: expected 'name = value', got %q", i+1, line)
		}
		var v int32
		if _, err := fmt.Sscanf(strings.TrimSpace(value), "%d", &v); err != nil {
			return nil, fmt.Errorf("execute line %d: bad value %q: %w", i+1, value, err)
		}
		want[strings.Join(strings.Fields(name), "")] = v
	}
	return want, nil
}

func extractTextFromNode(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func extractCodeBlockContent(codeBlock *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < codeBlock.Lines().Len(); i++ {
		line := codeBlock.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

func isInputFence(language string) bool {
	return language == string(InputTypeExpr) || language == string(InputTypeProgram)
}

func isAssertionFence(language string) bool {
	for _, t := range assertionTypes {
		if language == string(t) {
			return true
		}
	}
	return false
}

func validateTestCase(tc *TestCase) error {
	if tc.Input == "" {
		return fmt.Errorf("test '%s' has no input fence", tc.Name)
	}
	if len(tc.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", tc.Name)
	}
	if tc.InputType == InputTypeExpr {
		for _, a := range tc.Assertions {
			if a.Type != AssertionTypeAST && a.Type != AssertionTypeCompileError {
				return fmt.Errorf("test '%s': %s assertion needs a tac-program input", tc.Name, a.Type)
			}
		}
	}
	return nil
}

func getLineNumber(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	return bytes.Count(source[:min(start, len(source))], []byte("\n")) + 1
}
