package main

import (
	"fmt"
	"strings"
)

// AddressMode says how Address.Place is interpreted.
type AddressMode int

const (
	ModeRegister     AddressMode = iota // Place is a register number
	ModeFramePointer                    // Place is a byte offset into the stack
	ModeConstant                        // Place is the literal value
	ModeLabel                           // Place is an instruction index
	ModeIndexed                         // stack byte offset Place plus the value of register Index
)

func (m AddressMode) String() string {
	switch m {
	case ModeRegister:
		return "Register"
	case ModeFramePointer:
		return "FramePointer"
	case ModeConstant:
		return "Constant"
	case ModeLabel:
		return "Label"
	case ModeIndexed:
		return "Indexed"
	default:
		return fmt.Sprintf("AddressMode(%d)", int(m))
	}
}

// Address is where a value lives or where a jump goes. Addresses are plain
// values and compare with ==.
type Address struct {
	Mode  AddressMode
	Place int32
	Index int32 // offset register, ModeIndexed only
}

func Register(n int32) Address    { return Address{Mode: ModeRegister, Place: n} }
func Constant(v int32) Address    { return Address{Mode: ModeConstant, Place: v} }
func FrameSlot(off int32) Address { return Address{Mode: ModeFramePointer, Place: off} }

func (a Address) String() string {
	switch a.Mode {
	case ModeRegister:
		if a.Place == 0 {
			return "sp"
		}
		return fmt.Sprintf("t%d", a.Place)
	case ModeFramePointer:
		return fmt.Sprintf("fp[%d]", a.Place)
	case ModeConstant:
		return fmt.Sprintf("#%d", a.Place)
	case ModeLabel:
		return fmt.Sprintf("L%d", a.Place)
	case ModeIndexed:
		return fmt.Sprintf("fp[%d+t%d]", a.Place, a.Index)
	default:
		return "?"
	}
}

// Label is a forward reference to the instruction that will be emitted next.
type Label struct {
	Place int
}

// OpCode is a three-address instruction operator.
type OpCode int

const (
	MOV OpCode = iota
	// Boolean operators.
	AND
	OR
	NOT
	ISPOS
	ISNEG
	// Numeric operators.
	ADD
	SUB
	MUL
	DIV
	MINUS
	// Jumps.
	GOTO
	JMPZ
)

var opCodeNames = [...]string{
	MOV:   "Mov",
	AND:   "And",
	OR:    "Or",
	NOT:   "Not",
	ISPOS: "IsPos",
	ISNEG: "IsNeg",
	ADD:   "Add",
	SUB:   "Sub",
	MUL:   "Mul",
	DIV:   "Div",
	MINUS: "Minus",
	GOTO:  "Goto",
	JMPZ:  "JmpZ",
}

func (op OpCode) String() string {
	if int(op) >= 0 && int(op) < len(opCodeNames) {
		return opCodeNames[op]
	}
	return fmt.Sprintf("OpCode(%d)", int(op))
}

// IsJump reports whether Result holds a jump target.
func (op OpCode) IsJump() bool {
	return op == GOTO || op == JMPZ
}

// AddressCode is one instruction. ID is a display sequence number; control
// flow uses the instruction's index in the IR.
type AddressCode struct {
	ID     int
	Op     OpCode
	Result Address
	X      Address
	Y      Address
}

func (c AddressCode) String() string {
	switch c.Op {
	case GOTO:
		return fmt.Sprintf("Goto %s", c.Result)
	case JMPZ:
		return fmt.Sprintf("JmpZ %s %s", c.X, c.Result)
	case MOV:
		return fmt.Sprintf("Mov %s %s", c.Result, c.X)
	case NOT, ISPOS, ISNEG, MINUS:
		return fmt.Sprintf("%s %s %s", c.Op, c.Result, c.X)
	default:
		return fmt.Sprintf("%s %s %s %s", c.Op, c.Result, c.X, c.Y)
	}
}

// IR is the emitted instruction list. It only grows, except that Patch
// rewrites the target of an already emitted jump.
type IR struct {
	Code []AddressCode
}

func (ir *IR) Append(c AddressCode) int {
	ir.Code = append(ir.Code, c)
	return len(ir.Code) - 1
}

func (ir *IR) Len() int {
	return len(ir.Code)
}

// Patch points the jump at index to lbl.
func (ir *IR) Patch(index int, lbl Label) error {
	if index < 0 || index >= len(ir.Code) {
		return internalErrorf("patch of instruction %d outside IR of length %d", index, len(ir.Code))
	}
	if !ir.Code[index].Op.IsJump() {
		return internalErrorf("patch of non-jump instruction %d (%s)", index, ir.Code[index].Op)
	}
	ir.Code[index].Result.Place = int32(lbl.Place)
	return nil
}

// String lists one instruction per line prefixed by its index.
func (ir *IR) String() string {
	var b strings.Builder
	for i, c := range ir.Code {
		fmt.Fprintf(&b, "%d: %s\n", i, c)
	}
	return b.String()
}
