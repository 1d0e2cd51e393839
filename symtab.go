package main

import (
	"fmt"
	"math"
)

// IdeInfo is what the symbol table knows about a declared identifier.
type IdeInfo struct {
	Type Type
	Addr Address
}

// Frame is the storage of one lexical block. Its variables occupy
// [base, base+width) of the runtime stack.
type Frame struct {
	names map[string]IdeInfo
	base  uint32
	width uint32
}

// SymbolInfo records a declaration after its frame is gone.
type SymbolInfo struct {
	Name  string
	Type  Type
	Addr  Address
	Depth int // 1 for the outermost block
}

// SymbolTable is a stack of frames mirroring block nesting.
type SymbolTable struct {
	frames        []*Frame
	innermostOnly bool
	symbols       []SymbolInfo
	stackSize     uint32
}

func NewSymbolTable(opts Options) *SymbolTable {
	return &SymbolTable{innermostOnly: opts.InnermostScopeOnly}
}

// PushFrame opens a frame placed right after the enclosing frame's storage.
func (st *SymbolTable) PushFrame() {
	var base uint32
	if n := len(st.frames); n > 0 {
		outer := st.frames[n-1]
		base = outer.base + outer.width
	}
	st.frames = append(st.frames, &Frame{names: make(map[string]IdeInfo), base: base})
}

func (st *SymbolTable) PopFrame() error {
	if len(st.frames) == 0 {
		return internalErrorf("pop of empty frame stack")
	}
	st.frames = st.frames[:len(st.frames)-1]
	return nil
}

func (st *SymbolTable) Depth() int {
	return len(st.frames)
}

// Declare allocates storage for name in the innermost frame.
func (st *SymbolTable) Declare(name string, typ Type) (Address, error) {
	if len(st.frames) == 0 {
		return Address{}, internalErrorf("declaration of %q outside any frame", name)
	}
	frame := st.frames[len(st.frames)-1]
	if _, exists := frame.names[name]; exists {
		return Address{}, fmt.Errorf("variable '%s' already declared in this block", name)
	}

	if uint64(frame.base)+uint64(frame.width)+uint64(typ.Width()) > math.MaxInt32 {
		return Address{}, fmt.Errorf("variable '%s' does not fit in the stack", name)
	}

	addr := FrameSlot(int32(frame.base + frame.width))
	frame.names[name] = IdeInfo{Type: typ, Addr: addr}
	frame.width += typ.Width()
	st.stackSize = max(st.stackSize, frame.base+frame.width)

	st.symbols = append(st.symbols, SymbolInfo{
		Name:  name,
		Type:  typ,
		Addr:  addr,
		Depth: len(st.frames),
	})
	return addr, nil
}

// Lookup resolves name from the innermost frame outward. With
// Options.InnermostScopeOnly only the innermost frame is searched.
func (st *SymbolTable) Lookup(name string) (IdeInfo, bool) {
	for i := len(st.frames) - 1; i >= 0; i-- {
		if info, ok := st.frames[i].names[name]; ok {
			return info, true
		}
		if st.innermostOnly {
			break
		}
	}
	return IdeInfo{}, false
}

// FrameWidth is the number of bytes declared so far in the innermost frame.
func (st *SymbolTable) FrameWidth() uint32 {
	if len(st.frames) == 0 {
		return 0
	}
	return st.frames[len(st.frames)-1].width
}

// Symbols lists every declaration in declaration order.
func (st *SymbolTable) Symbols() []SymbolInfo {
	return st.symbols
}

// StackSize is the highest stack byte offset any frame reached.
func (st *SymbolTable) StackSize() uint32 {
	return st.stackSize
}
