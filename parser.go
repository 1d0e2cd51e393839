package main

import (
	"fmt"
	"math"
)

// Parser builds the AST by recursive descent with one token of lookahead.
// Parsing has no side effects beyond consuming tokens.
type Parser struct {
	src       TokenSource
	lookahead Token
}

func NewParser(src TokenSource) *Parser {
	p := &Parser{src: src}
	p.lookahead = src.Next()
	return p
}

// ParseSource is a convenience wrapper that lexes and parses a whole program.
func ParseSource(src string) (*Program, error) {
	return NewParser(NewLexer([]byte(src))).ParseProgram()
}

// ParseExpression parses src as one boolean expression spanning the whole
// input.
func ParseExpression(src string) (e BoolExpr, err error) {
	p := NewParser(NewLexer([]byte(src)))
	defer recoverError(&err)
	e = p.parseBool()
	p.match(EOF)
	return e, nil
}

// shift consumes and returns the lookahead token.
func (p *Parser) shift() Token {
	tok := p.lookahead
	p.lookahead = p.src.Next()
	return tok
}

// match consumes the lookahead if it has the given tag and fails otherwise.
func (p *Parser) match(tag Tag) Token {
	if p.lookahead.Tag != tag {
		p.unexpected(describeTag(tag))
	}
	return p.shift()
}

func (p *Parser) unexpected(expected string) {
	fail(&SyntaxError{
		Pos:      p.lookahead.Pos,
		Expected: expected,
		Found:    p.lookahead.describe(),
	})
}

func describeTag(tag Tag) string {
	switch tag {
	case IDENT:
		return "identifier"
	case NUM:
		return "number"
	case EOF:
		return "end of input"
	default:
		return fmt.Sprintf("'%s'", Token{Tag: tag}.String())
	}
}

// ParseProgram parses a single block followed by end of input.
func (p *Parser) ParseProgram() (prog *Program, err error) {
	defer recoverError(&err)
	block := p.parseBlock()
	p.match(EOF)
	return &Program{Block: block}, nil
}

func (p *Parser) ParseBlock() (b *Block, err error) {
	defer recoverError(&err)
	return p.parseBlock(), nil
}

func (p *Parser) ParseStatement() (s Stmt, err error) {
	defer recoverError(&err)
	return p.parseStatement(), nil
}

func (p *Parser) ParseDecl() (d *Decl, err error) {
	defer recoverError(&err)
	return p.parseDecl(), nil
}

func (p *Parser) ParseBool() (e BoolExpr, err error) {
	defer recoverError(&err)
	return p.parseBool(), nil
}

func (p *Parser) ParseNum() (e NumExpr, err error) {
	defer recoverError(&err)
	return p.parseNum(), nil
}

// block := '{' (decl | statement)* '}'
func (p *Parser) parseBlock() *Block {
	open := p.match(LBRACE)
	block := &Block{Pos: open.Pos}
	for {
		switch p.lookahead.Tag {
		case INT, FLOAT:
			block.Decls = append(block.Decls, p.parseDecl())
		case RBRACE:
			p.shift()
			return block
		default:
			block.Stmts = append(block.Stmts, p.parseStatement())
		}
	}
}

// decl := type identifier ';'
func (p *Parser) parseDecl() *Decl {
	pos := p.lookahead.Pos
	typ := p.parseType()
	name := p.match(IDENT)
	p.match(SEMICOLON)
	return &Decl{Type: typ, Name: name.Text, Pos: pos}
}

// type := ('int' | 'float') ('[' number ']')*
func (p *Parser) parseType() TypeExpr {
	var t TypeExpr
	width := uint64(ElemWidth)
	switch p.lookahead.Tag {
	case INT:
		t.Basic = BasicInt
	case FLOAT:
		t.Basic = BasicFloat
	default:
		p.unexpected("type")
	}
	p.shift()

	for p.lookahead.Tag == LBRACKET {
		p.shift()
		if p.lookahead.Tag != NUM {
			fail(&SemanticError{
				Pos: p.lookahead.Pos,
				Msg: fmt.Sprintf("array dimension must be an integer literal, got %s", p.lookahead.describe()),
			})
		}
		n := p.shift()
		if n.Num == 0 {
			fail(&SemanticError{Pos: n.Pos, Msg: "array dimension must be positive"})
		}
		t.Dims = append(t.Dims, n.Num)
		p.match(RBRACKET)
		width *= uint64(n.Num)
		if width > math.MaxInt32 {
			fail(&SemanticError{Pos: n.Pos, Msg: "array too large"})
		}
	}
	return t
}

func (p *Parser) parseStatement() Stmt {
	switch p.lookahead.Tag {
	case IDENT:
		// stmt -> loc = bool ;
		loc := p.parseLoc()
		eq := p.match(ASSIGN)
		value := p.parseBool()
		p.match(SEMICOLON)
		return &AssignStmt{Target: loc, Value: value, Pos: eq.Pos}

	case IF:
		pos := p.shift().Pos
		p.match(LPAREN)
		cond := p.parseBool()
		p.match(RPAREN)
		then := p.parseStatement()
		if p.lookahead.Tag == ELSE {
			p.shift()
			els := p.parseStatement()
			return &IfElseStmt{Cond: cond, Then: then, Else: els, Pos: pos}
		}
		return &IfStmt{Cond: cond, Then: then, Pos: pos}

	case WHILE:
		pos := p.shift().Pos
		p.match(LPAREN)
		cond := p.parseBool()
		p.match(RPAREN)
		body := p.parseStatement()
		return &WhileStmt{Cond: cond, Body: body, Pos: pos}

	case BREAK:
		pos := p.shift().Pos
		p.match(SEMICOLON)
		return &BreakStmt{Pos: pos}

	case LBRACE:
		return &BlockStmt{Block: p.parseBlock()}

	default:
		p.unexpected("statement")
		return nil
	}
}

// loc := identifier ('[' bool ']')*
func (p *Parser) parseLoc() Loc {
	name := p.match(IDENT)
	var indices []BoolExpr
	for p.lookahead.Tag == LBRACKET {
		p.shift()
		indices = append(indices, p.parseBool())
		p.match(RBRACKET)
	}
	if len(indices) == 0 {
		return &IdeLoc{Name: name.Text, Pos: name.Pos}
	}
	return &IndexLoc{Name: name.Text, Indices: indices, Pos: name.Pos}
}

// bool := join ('||' join)*
func (p *Parser) parseBool() BoolExpr {
	x := p.parseJoin()
	for p.lookahead.Tag == BOOLOP && p.lookahead.Op == OpOr {
		pos := p.shift().Pos
		x = &LogicExpr{Op: OpOr, X: x, Y: p.parseJoin(), Pos: pos}
	}
	return x
}

// join := equality ('&&' equality)*
func (p *Parser) parseJoin() BoolExpr {
	x := p.parseEquality()
	for p.lookahead.Tag == BOOLOP && p.lookahead.Op == OpAnd {
		pos := p.shift().Pos
		x = &LogicExpr{Op: OpAnd, X: x, Y: p.parseEquality(), Pos: pos}
	}
	return x
}

// equality := rel (('==' | '!=') rel)*
func (p *Parser) parseEquality() BoolExpr {
	x := p.parseRel()
	for p.lookahead.Tag == RELOP && (p.lookahead.Op == OpEq || p.lookahead.Op == OpNeq) {
		op := p.shift()
		x = &EqualityExpr{Op: op.Op, X: x, Y: p.parseRel(), Pos: op.Pos}
	}
	return x
}

func isRelational(op Operator) bool {
	return op == OpGe || op == OpGt || op == OpLe || op == OpLt
}

// rel := num (relop num)?
func (p *Parser) parseRel() BoolExpr {
	x := p.parseNum()
	if p.lookahead.Tag != RELOP || !isRelational(p.lookahead.Op) {
		return &NumBool{X: x}
	}
	op := p.shift()
	y := p.parseNum()
	if p.lookahead.Tag == RELOP && isRelational(p.lookahead.Op) {
		fail(&SyntaxError{
			Pos: p.lookahead.Pos,
			Msg: fmt.Sprintf("comparison operators do not chain: unexpected '%s'", p.lookahead.Op),
		})
	}
	return &RelExpr{Op: op.Op, X: x, Y: y, Pos: op.Pos}
}

// num := term (('+' | '-') term)*
func (p *Parser) parseNum() NumExpr {
	x := p.parseTerm()
	for p.lookahead.Tag == NUMOP && (p.lookahead.Op == OpAdd || p.lookahead.Op == OpSub) {
		op := p.shift()
		x = &ArithExpr{Op: op.Op, X: x, Y: p.parseTerm(), Pos: op.Pos}
	}
	return x
}

// term := unary (('*' | '/') unary)*
func (p *Parser) parseTerm() NumExpr {
	x := p.parseUnary()
	for p.lookahead.Tag == NUMOP && (p.lookahead.Op == OpMul || p.lookahead.Op == OpDiv) {
		op := p.shift()
		x = &ArithExpr{Op: op.Op, X: x, Y: p.parseUnary(), Pos: op.Pos}
	}
	return x
}

// unary := ('-' | '!') unary | factor
func (p *Parser) parseUnary() NumExpr {
	if (p.lookahead.Tag == NUMOP && p.lookahead.Op == OpSub) || p.lookahead.Tag == UNARY {
		op := p.shift()
		return &UnaryExpr{Op: op.Op, X: p.parseUnary(), Pos: op.Pos}
	}
	return p.parseFactor()
}

// factor := loc | number | 'True' | 'False' | '(' bool ')'
func (p *Parser) parseFactor() NumExpr {
	switch p.lookahead.Tag {
	case IDENT:
		return &LocExpr{Loc: p.parseLoc()}
	case NUM:
		tok := p.shift()
		return &NumLit{Value: tok.Num, Pos: tok.Pos}
	case TRUE:
		return &BoolLit{Value: true, Pos: p.shift().Pos}
	case FALSE:
		return &BoolLit{Value: false, Pos: p.shift().Pos}
	case LPAREN:
		p.shift()
		x := p.parseBool()
		p.match(RPAREN)
		return &ParenExpr{X: x}
	default:
		p.unexpected("expression")
		return nil
	}
}
