package main

import (
	"fmt"
	"math"
)

// Lexer scans source bytes into tokens on demand.
type Lexer struct {
	input []byte
	pos   int // current reading position in input
	line  int
	col   int
}

func NewLexer(input []byte) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// Lex scans the whole input. It fails on the first ERROR token.
func Lex(src string) ([]Token, error) {
	l := NewLexer([]byte(src))
	var tokens []Token
	for {
		tok := l.Next()
		if tok.Tag == ERROR {
			return tokens, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("invalid token %q", tok.Text)}
		}
		tokens = append(tokens, tok)
		if tok.Tag == EOF {
			return tokens, nil
		}
	}
}

// peek returns the byte at pos+offset, or 0 past the end of input.
func (l *Lexer) peek(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) advance() {
	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

// Next scans the next token.
func (l *Lexer) Next() Token {
	l.skipWhitespace()

	start := Pos{Line: l.line, Col: l.col}
	if l.pos >= len(l.input) {
		return Token{Tag: EOF, Pos: start}
	}

	c := l.input[l.pos]
	tok := Token{Pos: start}

	if c == '=' {
		if l.peek(1) == '=' {
			tok.Tag, tok.Op = RELOP, OpEq
			l.advance()
		} else {
			tok.Tag = ASSIGN
		}
		l.advance()

	} else if c == '!' {
		if l.peek(1) == '=' {
			tok.Tag, tok.Op = RELOP, OpNeq
			l.advance()
		} else {
			tok.Tag, tok.Op = UNARY, OpNot
		}
		l.advance()

	} else if c == '<' {
		if l.peek(1) == '=' {
			tok.Tag, tok.Op = RELOP, OpLe
			l.advance()
		} else {
			tok.Tag, tok.Op = RELOP, OpLt
		}
		l.advance()

	} else if c == '>' {
		if l.peek(1) == '=' {
			tok.Tag, tok.Op = RELOP, OpGe
			l.advance()
		} else {
			tok.Tag, tok.Op = RELOP, OpGt
		}
		l.advance()

	} else if c == '&' || c == '|' {
		if l.peek(1) == c {
			tok.Tag = BOOLOP
			if c == '&' {
				tok.Op = OpAnd
			} else {
				tok.Op = OpOr
			}
			l.advance()
			l.advance()
		} else {
			// Bitwise operators do not exist.
			tok.Tag = ERROR
			tok.Text = string(c)
			l.advance()
		}

	} else if c == '+' || c == '-' || c == '*' || c == '/' {
		tok.Tag, tok.Op = NUMOP, Operator(string(c))
		l.advance()

	} else if c == '{' || c == '}' || c == ';' || c == '[' || c == ']' || c == '(' || c == ')' {
		tok.Tag = Tag(string(c))
		l.advance()

	} else if isLetter(c) {
		lit := l.readIdentifier()
		tok.Tag = keywordTag(lit)
		if tok.Tag == IDENT {
			tok.Text = lit
		}

	} else if isDigit(c) {
		lit, val, ok := l.readNumber()
		if !ok {
			tok.Tag = ERROR
			tok.Text = lit
		} else {
			tok.Tag = NUM
			tok.Num = val
		}

	} else {
		tok.Tag = ERROR
		tok.Text = string(c)
		l.advance()
	}

	return tok
}

func keywordTag(lit string) Tag {
	switch lit {
	case "if":
		return IF
	case "else":
		return ELSE
	case "while":
		return WHILE
	case "break":
		return BREAK
	case "int":
		return INT
	case "float":
		return FLOAT
	case "True":
		return TRUE
	case "False":
		return FALSE
	default:
		return IDENT
	}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '/' && l.peek(1) == '/' {
			l.skipLineComment()
			continue
		}
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return
		}
		l.advance()
	}
}

func (l *Lexer) skipLineComment() {
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		l.advance()
	}
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for l.pos < len(l.input) && (isLetter(l.input[l.pos]) || isDigit(l.input[l.pos])) {
		l.advance()
	}
	return string(l.input[start:l.pos])
}

// readNumber reads an unsigned decimal literal. ok is false when the value
// does not fit in 32 bits.
func (l *Lexer) readNumber() (lit string, val uint32, ok bool) {
	start := l.pos
	var acc uint64
	ok = true
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		if ok {
			acc = acc*10 + uint64(l.input[l.pos]-'0')
			ok = acc <= math.MaxUint32
		}
		l.advance()
	}
	return string(l.input[start:l.pos]), uint32(acc), ok
}
