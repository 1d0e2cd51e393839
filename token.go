package main

import "fmt"

// Tag is the category of a token.
type Tag string

// Definition of token tags
const (
	// Special tokens
	EOF   Tag = "EOF"
	ERROR Tag = "ERROR"

	// Keywords
	IF    Tag = "IF"
	ELSE  Tag = "ELSE"
	WHILE Tag = "WHILE"
	BREAK Tag = "BREAK"
	INT   Tag = "INT"
	FLOAT Tag = "FLOAT"
	TRUE  Tag = "TRUE"
	FALSE Tag = "FALSE"

	// Separators
	LBRACE    Tag = "{"
	RBRACE    Tag = "}"
	SEMICOLON Tag = ";"
	LBRACKET  Tag = "["
	RBRACKET  Tag = "]"
	LPAREN    Tag = "("
	RPAREN    Tag = ")"
	ASSIGN    Tag = "="

	// Operator categories. The concrete operator is in Token.Op.
	BOOLOP Tag = "BOOLOP"
	RELOP  Tag = "RELOP"
	UNARY  Tag = "UNARY"
	NUMOP  Tag = "NUMOP"

	// Identifiers + literals
	IDENT Tag = "IDENT"
	NUM   Tag = "NUM"
)

// Operator is the payload of BOOLOP, RELOP, UNARY and NUMOP tokens.
type Operator string

const (
	OpNone Operator = ""

	OpOr  Operator = "||"
	OpAnd Operator = "&&"

	OpGe  Operator = ">="
	OpGt  Operator = ">"
	OpLe  Operator = "<="
	OpLt  Operator = "<"
	OpEq  Operator = "=="
	OpNeq Operator = "!="

	OpNot Operator = "!"

	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
)

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is a tagged lexeme. Text is set for IDENT and ERROR, Num for NUM and
// Op for the operator categories.
type Token struct {
	Tag  Tag
	Op   Operator
	Text string
	Num  uint32
	Pos  Pos
}

// String maps a token back to its source text. For every tag except ERROR
// and EOF the mapping is lossless.
func (t Token) String() string {
	switch t.Tag {
	case EOF:
		return ""
	case ERROR, IDENT:
		return t.Text
	case NUM:
		return fmt.Sprintf("%d", t.Num)
	case BOOLOP, RELOP, UNARY, NUMOP:
		return string(t.Op)
	case IF:
		return "if"
	case ELSE:
		return "else"
	case WHILE:
		return "while"
	case BREAK:
		return "break"
	case INT:
		return "int"
	case FLOAT:
		return "float"
	case TRUE:
		return "True"
	case FALSE:
		return "False"
	default:
		// Separators are spelled like their tag.
		return string(t.Tag)
	}
}

// describe renders a token for error messages.
func (t Token) describe() string {
	switch t.Tag {
	case EOF:
		return "end of input"
	case IDENT:
		return fmt.Sprintf("identifier %q", t.Text)
	case NUM:
		return fmt.Sprintf("number %d", t.Num)
	case ERROR:
		return fmt.Sprintf("invalid token %q", t.Text)
	default:
		return fmt.Sprintf("'%s'", t.String())
	}
}

// TokenSource delivers tokens one at a time. After the input is exhausted it
// keeps returning an EOF token.
type TokenSource interface {
	Next() Token
}

// SliceSource replays a prepared token list.
type SliceSource struct {
	tokens []Token
	pos    int
}

func NewSliceSource(tokens []Token) *SliceSource {
	return &SliceSource{tokens: tokens}
}

func (s *SliceSource) Next() Token {
	if s.pos >= len(s.tokens) {
		return Token{Tag: EOF}
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok
}
