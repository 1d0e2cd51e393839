package main

// Program is the root of the AST.
type Program struct {
	Block *Block
}

// Block keeps declarations and statements in separate lists even though the
// source may interleave them.
type Block struct {
	Decls []*Decl
	Stmts []Stmt
	Pos   Pos
}

// Decl declares Name with Type in the enclosing block.
type Decl struct {
	Type TypeExpr
	Name string
	Pos  Pos
}

// TypeExpr is a type as written: base keyword plus literal dimensions.
type TypeExpr struct {
	Basic BasicKind
	Dims  []uint32
}

func (t TypeExpr) Resolve() Type {
	if len(t.Dims) == 0 {
		return NewBasicType(t.Basic)
	}
	return NewArrayType(t.Basic, t.Dims)
}

// Stmt is implemented by AssignStmt, IfStmt, IfElseStmt, WhileStmt,
// BreakStmt and BlockStmt.
type Stmt interface {
	stmtNode()
}

type AssignStmt struct {
	Target Loc
	Value  BoolExpr
	Pos    Pos
}

type IfStmt struct {
	Cond BoolExpr
	Then Stmt
	Pos  Pos
}

type IfElseStmt struct {
	Cond BoolExpr
	Then Stmt
	Else Stmt
	Pos  Pos
}

type WhileStmt struct {
	Cond BoolExpr
	Body Stmt
	Pos  Pos
}

type BreakStmt struct {
	Pos Pos
}

type BlockStmt struct {
	Block *Block
}

func (*AssignStmt) stmtNode() {}
func (*IfStmt) stmtNode()     {}
func (*IfElseStmt) stmtNode() {}
func (*WhileStmt) stmtNode()  {}
func (*BreakStmt) stmtNode()  {}
func (*BlockStmt) stmtNode()  {}

// BoolExpr is implemented by LogicExpr, EqualityExpr, RelExpr and NumBool.
type BoolExpr interface {
	boolNode()
}

// LogicExpr is X || Y or X && Y. Both sides are always evaluated.
type LogicExpr struct {
	Op   Operator // OpOr or OpAnd
	X, Y BoolExpr
	Pos  Pos
}

// EqualityExpr is X == Y or X != Y.
type EqualityExpr struct {
	Op   Operator // OpEq or OpNeq
	X, Y BoolExpr
	Pos  Pos
}

// RelExpr is a single, non-chaining comparison of two numeric expressions.
type RelExpr struct {
	Op   Operator // OpGe, OpGt, OpLe or OpLt
	X, Y NumExpr
	Pos  Pos
}

// NumBool lifts a numeric expression into a boolean position.
type NumBool struct {
	X NumExpr
}

func (*LogicExpr) boolNode()    {}
func (*EqualityExpr) boolNode() {}
func (*RelExpr) boolNode()      {}
func (*NumBool) boolNode()      {}

// NumExpr is implemented by ArithExpr, UnaryExpr, ParenExpr, LocExpr, NumLit
// and BoolLit.
type NumExpr interface {
	numNode()
}

type ArithExpr struct {
	Op   Operator // OpAdd, OpSub, OpMul or OpDiv
	X, Y NumExpr
	Pos  Pos
}

type UnaryExpr struct {
	Op  Operator // OpSub (negation) or OpNot
	X   NumExpr
	Pos Pos
}

// ParenExpr is a parenthesized boolean expression.
type ParenExpr struct {
	X BoolExpr
}

// LocExpr reads a location.
type LocExpr struct {
	Loc Loc
}

type NumLit struct {
	Value uint32
	Pos   Pos
}

// BoolLit is True or False.
type BoolLit struct {
	Value bool
	Pos   Pos
}

func (*ArithExpr) numNode() {}
func (*UnaryExpr) numNode() {}
func (*ParenExpr) numNode() {}
func (*LocExpr) numNode()   {}
func (*NumLit) numNode()    {}
func (*BoolLit) numNode()   {}

// Loc is an lvalue: IdeLoc or IndexLoc.
type Loc interface {
	locNode()
	LocName() string
	LocPos() Pos
}

type IdeLoc struct {
	Name string
	Pos  Pos
}

// IndexLoc is Name[i][j]... with one expression per index level.
type IndexLoc struct {
	Name    string
	Indices []BoolExpr
	Pos     Pos
}

func (*IdeLoc) locNode()   {}
func (*IndexLoc) locNode() {}

func (l *IdeLoc) LocName() string   { return l.Name }
func (l *IndexLoc) LocName() string { return l.Name }
func (l *IdeLoc) LocPos() Pos       { return l.Pos }
func (l *IndexLoc) LocPos() Pos     { return l.Pos }
