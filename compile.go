package main

// Options configures a compilation and the VM that runs it.
type Options struct {
	// InnermostScopeOnly restricts name lookup to the innermost block, so
	// nested blocks cannot see enclosing declarations.
	InnermostScopeOnly bool

	// StackAdjust emits the stack pointer increment and decrement around
	// every block that declares variables.
	StackAdjust bool

	// MaxSteps bounds the number of instructions the VM executes. Zero means
	// no limit.
	MaxSteps int
}

func DefaultOptions() Options {
	return Options{
		StackAdjust: true,
		MaxSteps:    1_000_000,
	}
}

// Compilation is everything produced from one source text.
type Compilation struct {
	Program   *Program
	IR        *IR
	Symbols   []SymbolInfo
	StackSize uint32
}

// Compile lexes, parses and generates code for src.
func Compile(src string, opts Options) (*Compilation, error) {
	prog, err := ParseSource(src)
	if err != nil {
		return nil, err
	}

	cg := NewCodeGen(opts)
	ir, err := cg.Generate(prog)
	if err != nil {
		return nil, err
	}

	return &Compilation{
		Program:   prog,
		IR:        ir,
		Symbols:   cg.Symbols(),
		StackSize: cg.StackSize(),
	}, nil
}

// Symbol finds the outermost declaration of name.
func (c *Compilation) Symbol(name string) (SymbolInfo, bool) {
	for _, sym := range c.Symbols {
		if sym.Name == name {
			return sym, true
		}
	}
	return SymbolInfo{}, false
}
