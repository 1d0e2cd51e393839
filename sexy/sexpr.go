package sexy

import (
	"fmt"
	"strings"
	"unicode"
)

// NodeType represents the type of a Node
type NodeType int

const (
	NodeSymbol NodeType = iota + 1
	NodeString
	NodeInteger
	NodeEllipsis
	NodeList
)

func (t NodeType) String() string {
	switch t {
	case NodeSymbol:
		return "symbol"
	case NodeString:
		return "string"
	case NodeInteger:
		return "integer"
	case NodeEllipsis:
		return "ellipsis"
	case NodeList:
		return "list"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// Node is an atom or a list.
type Node struct {
	Type  NodeType
	Text  string  // NodeSymbol, NodeString, NodeInteger
	Items []*Node // NodeList
}

func (n *Node) String() string {
	switch n.Type {
	case NodeSymbol, NodeInteger:
		return n.Text
	case NodeString:
		escaped := strings.ReplaceAll(n.Text, "\\", "\\\\")
		escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
		return "\"" + escaped + "\""
	case NodeEllipsis:
		return "..."
	case NodeList:
		parts := make([]string, len(n.Items))
		for i, item := range n.Items {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return fmt.Sprintf("UNKNOWN_NODE_TYPE_%d", n.Type)
	}
}

func NewSymbol(name string) *Node {
	return &Node{Type: NodeSymbol, Text: name}
}

func NewString(value string) *Node {
	return &Node{Type: NodeString, Text: value}
}

func NewInteger(text string) *Node {
	return &Node{Type: NodeInteger, Text: text}
}

func NewEllipsis() *Node {
	return &Node{Type: NodeEllipsis}
}

func NewList(items []*Node) *Node {
	return &Node{Type: NodeList, Items: items}
}

// Head is the leading symbol of a list, or "" for anything else.
func (n *Node) Head() string {
	if n.Type == NodeList && len(n.Items) > 0 && n.Items[0].Type == NodeSymbol {
		return n.Items[0].Text
	}
	return ""
}

// Match checks actual against pattern. An ellipsis inside a pattern list
// matches any number of items, and a bare ellipsis matches any node. The
// error names the path of the first mismatch.
func Match(pattern, actual *Node) error {
	return match(pattern, actual, "root")
}

func match(pattern, actual *Node, path string) error {
	if pattern.Type == NodeEllipsis {
		return nil
	}
	if pattern.Type != actual.Type {
		return fmt.Errorf("at %s: expected %s %s, got %s %s", path, pattern.Type, pattern, actual.Type, actual)
	}
	if pattern.Type != NodeList {
		if pattern.Text != actual.Text {
			return fmt.Errorf("at %s: expected %s, got %s", path, pattern, actual)
		}
		return nil
	}
	return matchItems(pattern.Items, actual.Items, path)
}

func matchItems(patterns, actuals []*Node, path string) error {
	for i, p := range patterns {
		if p.Type == NodeEllipsis {
			rest := patterns[i+1:]
			// Try every split point for the remaining patterns.
			for skip := 0; skip <= len(actuals); skip++ {
				if matchItems(rest, actuals[skip:], path) == nil {
					return nil
				}
			}
			return fmt.Errorf("at %s: no items match the pattern after '...'", path)
		}
		if len(actuals) == 0 {
			return fmt.Errorf("at %s: missing item %s", path, p)
		}
		if err := match(p, actuals[0], fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
		actuals = actuals[1:]
	}
	if len(actuals) > 0 {
		return fmt.Errorf("at %s: unexpected extra item %s", path, actuals[0])
	}
	return nil
}

type parser struct {
	lexer        *lexer
	currentToken token
}

// Parse parses the entire input and returns the single top-level datum.
func Parse(input string) (*Node, error) {
	p := &parser{lexer: newLexer(input)}
	p.nextToken()

	result, err := p.parseDatum()
	if p.lexer.err != nil {
		// Lexer errors take priority because they might cause confusing parser errors.
		return nil, p.lexer.err
	}
	if err != nil {
		return nil, err
	}
	if p.currentToken.Type != tokenEOF {
		return nil, fmt.Errorf("expected EOF but got %s", p.currentToken.Type)
	}
	return result, nil
}

func (p *parser) nextToken() {
	p.currentToken = p.lexer.nextToken()
}

func (p *parser) parseDatum() (*Node, error) {
	tok := p.currentToken
	switch tok.Type {
	case tokenSymbol:
		p.nextToken()
		return NewSymbol(tok.Value), nil
	case tokenString:
		p.nextToken()
		return NewString(tok.Value), nil
	case tokenInteger:
		p.nextToken()
		return NewInteger(tok.Value), nil
	case tokenEllipsis:
		p.nextToken()
		return NewEllipsis(), nil
	case tokenLParen:
		return p.parseList()
	default:
		return nil, fmt.Errorf("unexpected token: %s", tok.Type)
	}
}

func (p *parser) parseList() (*Node, error) {
	items := []*Node{}
	p.nextToken() // consume '('

	for p.currentToken.Type != tokenRParen && p.currentToken.Type != tokenEOF {
		item, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if p.currentToken.Type != tokenRParen {
		return nil, fmt.Errorf("expected ')' but got %s", p.currentToken.Type)
	}
	p.nextToken() // consume ')'
	return NewList(items), nil
}

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenSymbol
	tokenString
	tokenInteger
	tokenEllipsis
	tokenLParen
	tokenRParen
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "EOF"
	case tokenSymbol:
		return "symbol"
	case tokenString:
		return "string"
	case tokenInteger:
		return "integer"
	case tokenEllipsis:
		return "ellipsis"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	default:
		return fmt.Sprintf("unknown token %d", int(t))
	}
}

type token struct {
	Type  tokenType
	Value string
}

type lexer struct {
	input    string
	position int
	err      error
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) current() byte {
	if l.position >= len(l.input) {
		return 0
	}
	return l.input[l.position]
}

func (l *lexer) peek() byte {
	if l.position+1 >= len(l.input) {
		return 0
	}
	return l.input[l.position+1]
}

func (l *lexer) nextToken() token {
	for {
		c := l.current()
		switch {
		case c == 0:
			return token{Type: tokenEOF}
		case unicode.IsSpace(rune(c)):
			l.position++
		case c == ';':
			// Comment to end of line.
			for l.current() != '\n' && l.current() != 0 {
				l.position++
			}
		case c == '(':
			l.position++
			return token{Type: tokenLParen, Value: "("}
		case c == ')':
			l.position++
			return token{Type: tokenRParen, Value: ")"}
		case c == '"':
			return l.readString()
		case strings.HasPrefix(l.input[l.position:], "..."):
			l.position += 3
			return token{Type: tokenEllipsis, Value: "..."}
		case isDigit(c) || ((c == '-' || c == '+') && isDigit(l.peek())):
			start := l.position
			l.position++
			for isDigit(l.current()) {
				l.position++
			}
			return token{Type: tokenInteger, Value: l.input[start:l.position]}
		case isSymbolStart(c):
			start := l.position
			for isSymbolChar(l.current()) {
				l.position++
			}
			return token{Type: tokenSymbol, Value: l.input[start:l.position]}
		default:
			// Unknown character is a syntax error
			l.err = fmt.Errorf("unexpected character '%c'", c)
			return token{Type: tokenEOF}
		}
	}
}

func (l *lexer) readString() token {
	var b strings.Builder
	l.position++ // skip opening quote
	for {
		c := l.current()
		switch c {
		case 0:
			l.err = fmt.Errorf("unterminated string")
			return token{Type: tokenEOF}
		case '"':
			l.position++
			return token{Type: tokenString, Value: b.String()}
		case '\\':
			l.position++
			esc := l.current()
			if esc != '"' && esc != '\\' {
				l.err = fmt.Errorf("invalid escape sequence: \\%c", esc)
				return token{Type: tokenEOF}
			}
			b.WriteByte(esc)
			l.position++
		default:
			b.WriteByte(c)
			l.position++
		}
	}
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isSymbolStart(c byte) bool {
	return unicode.IsLetter(rune(c)) || c == '_'
}

func isSymbolChar(c byte) bool {
	return isSymbolStart(c) || isDigit(c) || c == '-'
}
