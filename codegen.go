package main

import (
	"fmt"
	"math"
)

// unpatched is the target of a jump whose destination is not known yet.
var unpatched = Label{Place: -1}

// CodeGen translates an AST into three-address code. One CodeGen serves a
// single compilation; its counters are never reset or shared.
type CodeGen struct {
	syms     *SymbolTable
	ir       *IR
	opts     Options
	tempNum  int32
	instrNum int

	// sp is the stack pointer register. Temps start at 1.
	sp Address

	// blockWidths holds the frame width of every open block and loopDepths
	// the number of open blocks at the start of each enclosing while body.
	// A break uses them to release the frames it jumps out of.
	blockWidths []uint32
	loopDepths  []int

	breakPos map[int]Pos
}

func NewCodeGen(opts Options) *CodeGen {
	return &CodeGen{
		syms:     NewSymbolTable(opts),
		ir:       &IR{},
		opts:     opts,
		sp:       Register(0),
		breakPos: make(map[int]Pos),
	}
}

// Generate emits the code for prog. It stops at the first error.
func (cg *CodeGen) Generate(prog *Program) (ir *IR, err error) {
	defer recoverError(&err)

	breaks := cg.genBlock(prog.Block)
	if len(breaks) > 0 {
		fail(&SemanticError{Pos: cg.breakPos[breaks[0]], Msg: "break statement not within a loop"})
	}
	for i, c := range cg.ir.Code {
		if c.Op.IsJump() && c.Result.Place < 0 {
			fail(internalErrorf("jump at %d was never patched", i))
		}
	}
	return cg.ir, nil
}

// Symbols lists every variable declared during generation.
func (cg *CodeGen) Symbols() []SymbolInfo {
	return cg.syms.Symbols()
}

// StackSize is the number of stack bytes the generated code needs.
func (cg *CodeGen) StackSize() uint32 {
	return cg.syms.StackSize()
}

func (cg *CodeGen) emit(op OpCode, res, x, y Address) int {
	cg.instrNum++
	return cg.ir.Append(AddressCode{ID: cg.instrNum, Op: op, Result: res, X: x, Y: y})
}

func (cg *CodeGen) newTemp() Address {
	cg.tempNum++
	return Register(cg.tempNum)
}

// emitLabel marks the position of the next instruction to be emitted.
func (cg *CodeGen) emitLabel() Label {
	return Label{Place: cg.ir.Len()}
}

// emitJump returns the index of the jump so that it can be patched later.
func (cg *CodeGen) emitJump(op OpCode, lbl Label, cond Address) int {
	target := Address{Mode: ModeLabel, Place: int32(lbl.Place)}
	return cg.emit(op, target, cond, cond)
}

func (cg *CodeGen) patchJump(index int, lbl Label) {
	if err := cg.ir.Patch(index, lbl); err != nil {
		fail(err)
	}
}

func (cg *CodeGen) semanticErrorf(pos Pos, format string, args ...any) {
	fail(&SemanticError{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// genBlock opens a frame, registers the declarations, reserves their stack
// space and translates the statements. Break lists of the statements are
// returned unresolved.
func (cg *CodeGen) genBlock(b *Block) []int {
	cg.syms.PushFrame()
	for _, d := range b.Decls {
		cg.genDecl(d)
	}

	width := cg.syms.FrameWidth()
	if cg.opts.StackAdjust && width > 0 {
		cg.emit(ADD, cg.sp, cg.sp, Constant(int32(width)))
	}
	cg.blockWidths = append(cg.blockWidths, width)

	var breaks []int
	for _, s := range b.Stmts {
		breaks = append(breaks, cg.genStmt(s)...)
	}

	cg.blockWidths = cg.blockWidths[:len(cg.blockWidths)-1]
	if cg.opts.StackAdjust && width > 0 {
		cg.emit(SUB, cg.sp, cg.sp, Constant(int32(width)))
	}
	if err := cg.syms.PopFrame(); err != nil {
		fail(err)
	}
	return breaks
}

// genDecl only registers the name; no instruction is emitted.
func (cg *CodeGen) genDecl(d *Decl) {
	if _, err := cg.syms.Declare(d.Name, d.Type.Resolve()); err != nil {
		if ie, ok := err.(*InternalError); ok {
			fail(ie)
		}
		fail(&SemanticError{Pos: d.Pos, Msg: err.Error()})
	}
}

func (cg *CodeGen) genStmt(s Stmt) []int {
	switch s := s.(type) {
	case *AssignStmt:
		target := cg.genLoc(s.Target)
		value := cg.genBool(s.Value)
		cg.emit(MOV, target, value, value)
		return nil

	case *IfStmt:
		cond := cg.genBool(s.Cond)
		skip := cg.emitJump(JMPZ, unpatched, cond)
		breaks := cg.genStmt(s.Then)
		cg.patchJump(skip, cg.emitLabel())
		return breaks

	case *IfElseStmt:
		cond := cg.genBool(s.Cond)
		toElse := cg.emitJump(JMPZ, unpatched, cond)
		breaks := cg.genStmt(s.Then)
		toEnd := cg.emitJump(GOTO, unpatched, Constant(0))
		cg.patchJump(toElse, cg.emitLabel())
		breaks = append(breaks, cg.genStmt(s.Else)...)
		cg.patchJump(toEnd, cg.emitLabel())
		return breaks

	case *WhileStmt:
		top := cg.emitLabel()
		cond := cg.genBool(s.Cond)
		exit := cg.emitJump(JMPZ, unpatched, cond)

		cg.loopDepths = append(cg.loopDepths, len(cg.blockWidths))
		breaks := cg.genStmt(s.Body)
		cg.loopDepths = cg.loopDepths[:len(cg.loopDepths)-1]

		cg.emitJump(GOTO, top, Constant(0))
		after := cg.emitLabel()
		cg.patchJump(exit, after)
		for _, b := range breaks {
			cg.patchJump(b, after)
		}
		return nil

	case *BreakStmt:
		if cg.opts.StackAdjust && len(cg.loopDepths) > 0 {
			// Release the frames between the break and the loop.
			depth := cg.loopDepths[len(cg.loopDepths)-1]
			for i := len(cg.blockWidths) - 1; i >= depth; i-- {
				if w := cg.blockWidths[i]; w > 0 {
					cg.emit(SUB, cg.sp, cg.sp, Constant(int32(w)))
				}
			}
		}
		jump := cg.emitJump(GOTO, unpatched, Constant(0))
		cg.breakPos[jump] = s.Pos
		return []int{jump}

	case *BlockStmt:
		return cg.genBlock(s.Block)

	default:
		fail(internalErrorf("unknown statement %T", s))
		return nil
	}
}

func (cg *CodeGen) genBool(e BoolExpr) Address {
	switch e := e.(type) {
	case *LogicExpr:
		// No short circuit: both operands are always evaluated.
		x := cg.genBool(e.X)
		y := cg.genBool(e.Y)
		op := AND
		if e.Op == OpOr {
			op = OR
		}
		t := cg.newTemp()
		cg.emit(op, t, x, y)
		return t

	case *EqualityExpr:
		x := cg.genBool(e.X)
		y := cg.genBool(e.Y)
		return cg.compare(e.Op, x, y)

	case *RelExpr:
		x := cg.genNum(e.X)
		y := cg.genNum(e.Y)
		return cg.compare(e.Op, x, y)

	case *NumBool:
		return cg.genNum(e.X)

	default:
		fail(internalErrorf("unknown boolean expression %T", e))
		return Address{}
	}
}

// compare builds a comparison from d = x - y and the sign tests.
func (cg *CodeGen) compare(op Operator, x, y Address) Address {
	d := cg.newTemp()
	cg.emit(SUB, d, x, y)

	unary := func(op OpCode, a Address) Address {
		t := cg.newTemp()
		cg.emit(op, t, a, a)
		return t
	}

	switch op {
	case OpGt:
		return unary(ISPOS, d)
	case OpLt:
		return unary(ISNEG, d)
	case OpGe:
		return unary(NOT, unary(ISNEG, d))
	case OpLe:
		return unary(NOT, unary(ISPOS, d))
	case OpEq:
		notPos := unary(NOT, unary(ISPOS, d))
		notNeg := unary(NOT, unary(ISNEG, d))
		t := cg.newTemp()
		cg.emit(AND, t, notPos, notNeg)
		return t
	case OpNeq:
		pos := unary(ISPOS, d)
		neg := unary(ISNEG, d)
		t := cg.newTemp()
		cg.emit(OR, t, pos, neg)
		return t
	default:
		fail(internalErrorf("unknown comparison %q", op))
		return Address{}
	}
}

var arithOps = map[Operator]OpCode{
	OpAdd: ADD,
	OpSub: SUB,
	OpMul: MUL,
	OpDiv: DIV,
}

func (cg *CodeGen) genNum(e NumExpr) Address {
	switch e := e.(type) {
	case *ArithExpr:
		op, ok := arithOps[e.Op]
		if !ok {
			fail(internalErrorf("unknown arithmetic operator %q", e.Op))
		}
		x := cg.genNum(e.X)
		y := cg.genNum(e.Y)
		t := cg.newTemp()
		cg.emit(op, t, x, y)
		return t

	case *UnaryExpr:
		x := cg.genNum(e.X)
		op := NOT
		if e.Op == OpSub {
			op = MINUS
		}
		t := cg.newTemp()
		cg.emit(op, t, x, x)
		return t

	case *ParenExpr:
		return cg.genBool(e.X)

	case *LocExpr:
		return cg.genLoc(e.Loc)

	case *NumLit:
		if e.Value > math.MaxInt32 {
			cg.semanticErrorf(e.Pos, "integer literal %d out of range", e.Value)
		}
		return Constant(int32(e.Value))

	case *BoolLit:
		if e.Value {
			return Constant(1)
		}
		return Constant(0)

	default:
		fail(internalErrorf("unknown numeric expression %T", e))
		return Address{}
	}
}

// genLoc returns the address of a location without loading it.
func (cg *CodeGen) genLoc(l Loc) Address {
	info, ok := cg.syms.Lookup(l.LocName())
	if !ok {
		cg.semanticErrorf(l.LocPos(), "undeclared variable '%s'", l.LocName())
	}

	switch l := l.(type) {
	case *IdeLoc:
		if info.Type.IsArray() {
			cg.semanticErrorf(l.Pos, "array '%s' used without an index", l.Name)
		}
		return info.Addr

	case *IndexLoc:
		return cg.genIndex(l, info)

	default:
		fail(internalErrorf("unknown location %T", l))
		return Address{}
	}
}

// genIndex computes base + sum(index_i * stride_i). Constant indices are
// folded into the base and checked against the declared extents.
func (cg *CodeGen) genIndex(l *IndexLoc, info IdeInfo) Address {
	typ := info.Type
	if !typ.IsArray() {
		cg.semanticErrorf(l.Pos, "variable '%s' is not an array", l.Name)
	}
	if len(l.Indices) != len(typ.Extents) {
		cg.semanticErrorf(l.Pos, "array '%s' has %d dimensions but %d indices were given",
			l.Name, len(typ.Extents), len(l.Indices))
	}

	base := info.Addr.Place
	var offset Address
	hasOffset := false
	for i, idx := range l.Indices {
		a := cg.genBool(idx)
		stride := int32(typ.Strides[i])
		if a.Mode == ModeConstant {
			if a.Place < 0 || uint32(a.Place) >= typ.Extents[i] {
				cg.semanticErrorf(l.Pos, "index %d out of range for dimension %d of '%s' (size %d)",
					a.Place, i+1, l.Name, typ.Extents[i])
			}
			base += a.Place * stride
			continue
		}

		scaled := cg.newTemp()
		cg.emit(MUL, scaled, a, Constant(stride))
		if !hasOffset {
			offset, hasOffset = scaled, true
			continue
		}
		sum := cg.newTemp()
		cg.emit(ADD, sum, offset, scaled)
		offset = sum
	}

	if !hasOffset {
		return FrameSlot(base)
	}
	return Address{Mode: ModeIndexed, Place: base, Index: offset.Place}
}
