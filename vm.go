package main

import "fmt"

// VM executes IR against a register file and a word-addressed stack.
// Register 0 is the stack pointer.
type VM struct {
	code     []AddressCode
	regs     []int32
	stack    []int32
	pc       int
	steps    int
	maxSteps int
	checkSP  bool
}

func NewVM(ir *IR, stackSize uint32, opts Options) *VM {
	maxReg := int32(0)
	for _, c := range ir.Code {
		for _, a := range []Address{c.Result, c.X, c.Y} {
			if a.Mode == ModeRegister {
				maxReg = max(maxReg, a.Place)
			}
			if a.Mode == ModeIndexed {
				maxReg = max(maxReg, a.Index)
			}
		}
	}
	return &VM{
		code:     ir.Code,
		regs:     make([]int32, maxReg+1),
		stack:    make([]int32, (stackSize+ElemWidth-1)/ElemWidth),
		maxSteps: opts.MaxSteps,
		checkSP:  opts.StackAdjust,
	}
}

// Execute runs a compilation to completion on a fresh VM.
func Execute(c *Compilation, opts Options) (*VM, error) {
	vm := NewVM(c.IR, c.StackSize, opts)
	return vm, vm.Run()
}

func (vm *VM) errorf(format string, args ...any) error {
	return &RuntimeError{PC: vm.pc, Msg: fmt.Sprintf(format, args...)}
}

// Run executes from the current instruction until the program falls off the
// end of the code.
func (vm *VM) Run() error {
	for vm.pc < len(vm.code) {
		if vm.maxSteps > 0 && vm.steps >= vm.maxSteps {
			return vm.errorf("step limit of %d exceeded", vm.maxSteps)
		}
		vm.steps++
		if err := vm.step(); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) step() error {
	instr := vm.code[vm.pc]

	switch instr.Op {
	case GOTO:
		return vm.jump(instr.Result)
	case JMPZ:
		x, err := vm.Load(instr.X)
		if err != nil {
			return err
		}
		if x == 0 {
			return vm.jump(instr.Result)
		}
		vm.pc++
		return nil
	}

	x, err := vm.Load(instr.X)
	if err != nil {
		return err
	}
	y, err := vm.Load(instr.Y)
	if err != nil {
		return err
	}

	var v int32
	switch instr.Op {
	case MOV:
		v = x
	case AND:
		v = boolToInt(x != 0 && y != 0)
	case OR:
		v = boolToInt(x != 0 || y != 0)
	case NOT:
		v = boolToInt(x == 0)
	case ISPOS:
		v = boolToInt(x > 0)
	case ISNEG:
		v = boolToInt(x < 0)
	case ADD:
		v = x + y
	case SUB:
		v = x - y
	case MUL:
		v = x * y
	case DIV:
		if y == 0 {
			return vm.errorf("division by zero")
		}
		v = x / y
	case MINUS:
		v = -x
	default:
		return vm.errorf("unknown opcode %s", instr.Op)
	}

	if err := vm.store(instr.Result, v); err != nil {
		return err
	}
	vm.pc++
	return nil
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func (vm *VM) jump(target Address) error {
	if target.Mode != ModeLabel {
		return vm.errorf("jump target %s is not a label", target)
	}
	if target.Place < 0 || int(target.Place) > len(vm.code) {
		return vm.errorf("jump target %d outside code of length %d", target.Place, len(vm.code))
	}
	vm.pc = int(target.Place)
	return nil
}

// slot converts a stack byte offset to a word index.
func (vm *VM) slot(off int32) (int, error) {
	if off < 0 || off%ElemWidth != 0 || int(off/ElemWidth) >= len(vm.stack) {
		return 0, vm.errorf("stack access at byte offset %d out of bounds", off)
	}
	if vm.checkSP && off >= vm.regs[0] {
		return 0, vm.errorf("stack access at byte offset %d above stack pointer %d", off, vm.regs[0])
	}
	return int(off / ElemWidth), nil
}

func (vm *VM) effectiveOffset(a Address) int32 {
	if a.Mode == ModeIndexed {
		return a.Place + vm.regs[a.Index]
	}
	return a.Place
}

// Load reads the value an address refers to.
func (vm *VM) Load(a Address) (int32, error) {
	switch a.Mode {
	case ModeConstant:
		return a.Place, nil
	case ModeRegister:
		return vm.regs[a.Place], nil
	case ModeFramePointer, ModeIndexed:
		i, err := vm.slot(vm.effectiveOffset(a))
		if err != nil {
			return 0, err
		}
		return vm.stack[i], nil
	default:
		return 0, vm.errorf("cannot read from %s address %s", a.Mode, a)
	}
}

func (vm *VM) store(a Address, v int32) error {
	switch a.Mode {
	case ModeRegister:
		vm.regs[a.Place] = v
		return nil
	case ModeFramePointer, ModeIndexed:
		i, err := vm.slot(vm.effectiveOffset(a))
		if err != nil {
			return err
		}
		vm.stack[i] = v
		return nil
	default:
		return vm.errorf("cannot write to %s address %s", a.Mode, a)
	}
}

// Word returns the stack word at a byte offset, ignoring the stack pointer.
// It is meant for inspecting variables after Run returns.
func (vm *VM) Word(off int32) (int32, error) {
	if off < 0 || off%ElemWidth != 0 || int(off/ElemWidth) >= len(vm.stack) {
		return 0, fmt.Errorf("byte offset %d outside stack of %d words", off, len(vm.stack))
	}
	return vm.stack[off/ElemWidth], nil
}

// StackPointer is the current value of register 0.
func (vm *VM) StackPointer() int32 {
	return vm.regs[0]
}

// Steps is the number of instructions executed so far.
func (vm *VM) Steps() int {
	return vm.steps
}
