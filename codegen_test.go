package main

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

func compileIR(t *testing.T, src string, opts Options) *IR {
	t.Helper()
	c, err := Compile(src, opts)
	be.Err(t, err, nil)
	return c.IR
}

func irLines(ir *IR) []string {
	var lines []string
	for _, c := range ir.Code {
		lines = append(lines, c.String())
	}
	return lines
}

func TestGenerateFromHandBuiltAST(t *testing.T) {
	prog := &Program{Block: &Block{
		Decls: []*Decl{{Type: TypeExpr{Basic: BasicInt}, Name: "x"}},
		Stmts: []Stmt{
			&AssignStmt{
				Target: &IdeLoc{Name: "x"},
				Value:  &NumBool{X: &ArithExpr{Op: OpMul, X: &NumLit{Value: 6}, Y: &NumLit{Value: 7}}},
			},
		},
	}}

	ir, err := NewCodeGen(DefaultOptions()).Generate(prog)
	be.Err(t, err, nil)
	be.Equal(t, irLines(ir), []string{
		"Add sp sp #4",
		"Mul t1 #6 #7",
		"Mov fp[0] t1",
		"Sub sp sp #4",
	})
}

func TestInstructionIDsAreSequential(t *testing.T) {
	ir := compileIR(t, "{ int x; x = 1 + 2 * 3; if (x > 2) x = 0; }", DefaultOptions())
	for i, c := range ir.Code {
		be.Equal(t, c.ID, i+1)
	}
}

func TestTemporariesAreFreshAndNeverSP(t *testing.T) {
	ir := compileIR(t, "{ int x; x = (1 + 2) * (3 - 4) / -x; x = x == 3 || x != 4; }", DefaultOptions())

	seen := map[int32]bool{}
	for _, c := range ir.Code {
		if c.Result.Mode != ModeRegister || c.Result.Place == 0 {
			continue
		}
		be.True(t, !seen[c.Result.Place])
		seen[c.Result.Place] = true
	}
	be.True(t, len(seen) > 0)
}

func TestStackAdjustDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.StackAdjust = false
	ir := compileIR(t, "{ int x; { int y; y = 1; x = y; } }", opts)
	be.Equal(t, irLines(ir), []string{
		"Mov fp[4] #1",
		"Mov fp[0] fp[4]",
	})
}

func TestBlocksWithoutDeclarationsDoNotTouchSP(t *testing.T) {
	ir := compileIR(t, "{ { { } } }", DefaultOptions())
	be.Equal(t, ir.Len(), 0)
}

func TestIfSkipTargetsInstructionAfterThen(t *testing.T) {
	opts := DefaultOptions()
	opts.StackAdjust = false
	ir := compileIR(t, "{ int x; x = 2; if (x == 2) x = 3; x = 4; }", opts)

	var jmp *AddressCode
	for i := range ir.Code {
		if ir.Code[i].Op == JMPZ {
			jmp = &ir.Code[i]
		}
	}
	be.True(t, jmp != nil)
	target := int(jmp.Result.Place)
	be.Equal(t, ir.Code[target-1].String(), "Mov fp[0] #3")
	be.Equal(t, ir.Code[target].String(), "Mov fp[0] #4")
}

func TestBreakTargetsFollowTheLoop(t *testing.T) {
	opts := DefaultOptions()
	opts.StackAdjust = false
	src := "{ int i; while (True) { i = i + 1; if (i > 2) break; if (i > 5) break; } i = 0; }"
	ir := compileIR(t, src, opts)

	// The loop ends with the back jump; every break and the exit test land
	// on the instruction after it.
	var back int
	for i, c := range ir.Code {
		if c.Op == GOTO && c.Result.Place == 0 {
			back = i
		}
	}
	be.Equal(t, ir.Code[back].String(), "Goto L0")
	after := int32(back + 1)
	be.Equal(t, ir.Code[after].String(), "Mov fp[0] #0")

	var toAfter int
	for _, c := range ir.Code {
		if c.Op.IsJump() && c.Result.Place == after {
			toAfter++
		}
	}
	// exit test plus two breaks
	be.Equal(t, toAfter, 3)
}

func TestNestedLoopBreaksAreIndependent(t *testing.T) {
	opts := DefaultOptions()
	opts.StackAdjust = false
	src := "{ int i; while (i < 2) { while (True) break; break; } }"
	ir := compileIR(t, src, opts)
	be.Equal(t, irLines(ir), []string{
		"Sub t1 fp[0] #2",
		"IsNeg t2 t1",
		"JmpZ t2 L8",
		"JmpZ #1 L6",
		"Goto L6",
		"Goto L3",
		"Goto L8",
		"Goto L0",
	})
}

func TestComparisonCompositions(t *testing.T) {
	tests := []struct {
		op   string
		want []string
	}{
		{">", []string{"Sub t1 #1 #2", "IsPos t2 t1"}},
		{"<", []string{"Sub t1 #1 #2", "IsNeg t2 t1"}},
		{">=", []string{"Sub t1 #1 #2", "IsNeg t2 t1", "Not t3 t2"}},
		{"<=", []string{"Sub t1 #1 #2", "IsPos t2 t1", "Not t3 t2"}},
		{"==", []string{"Sub t1 #1 #2", "IsPos t2 t1", "Not t3 t2", "IsNeg t4 t1", "Not t5 t4", "And t6 t3 t5"}},
		{"!=", []string{"Sub t1 #1 #2", "IsPos t2 t1", "IsNeg t3 t1", "Or t4 t2 t3"}},
	}

	opts := DefaultOptions()
	opts.StackAdjust = false
	for _, test := range tests {
		ir := compileIR(t, "{ int x; x = 1 "+test.op+" 2; }", opts)
		lines := irLines(ir)
		be.Equal(t, lines[:len(lines)-1], test.want)
	}
}

func TestLabelIsNextIndex(t *testing.T) {
	cg := NewCodeGen(DefaultOptions())
	be.Equal(t, cg.emitLabel(), Label{Place: 0})
	cg.emit(MOV, Register(1), Constant(1), Constant(1))
	cg.emit(MOV, Register(2), Constant(2), Constant(2))
	be.Equal(t, cg.emitLabel(), Label{Place: 2})
}

func TestInnermostScopeOnly(t *testing.T) {
	opts := DefaultOptions()
	opts.InnermostScopeOnly = true

	_, err := Compile("{ int x; { x = 1; } }", opts)
	be.Equal(t, err.Error(), "1:12: error: undeclared variable 'x'")

	_, err = Compile("{ int x; { int x; x = 1; } x = 2; }", opts)
	be.Err(t, err, nil)
}

func TestSemanticErrorPositions(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"{ y = 1; }", "1:3: error: undeclared variable 'y'"},
		{"{\n  int x;\n  float x;\n}", "3:3: error: variable 'x' already declared in this block"},
		{"{ while (True) { } break; }", "1:20: error: break statement not within a loop"},
		{"{ int[3] a; a = 1; }", "1:13: error: array 'a' used without an index"},
		{"{ int[3] a; a[1][1] = 1; }", "1:13: error: array 'a' has 1 dimensions but 2 indices were given"},
		{"{ int x; x[0] = 1; }", "1:10: error: variable 'x' is not an array"},
		{"{ int[3] a; a[3] = 1; }", "1:13: error: index 3 out of range for dimension 1 of 'a' (size 3)"},
		{"{ int x; x = 2147483648; }", "1:14: error: integer literal 2147483648 out of range"},
	}

	for _, test := range tests {
		_, err := Compile(test.src, DefaultOptions())
		if err == nil {
			t.Errorf("Source: %q\nExpected error, got none", test.src)
			continue
		}
		if err.Error() != test.want {
			t.Errorf("Source: %q\nExpected: %s\nActual: %s", test.src, test.want, err.Error())
		}
	}
}

func TestNegativeConstantIndexIsRuntimeComputed(t *testing.T) {
	// -1 is a Minus instruction, not a constant, so it is not range checked
	// at compile time and the VM rejects the access.
	c, err := Compile("{ int[3] a; int x; a[-1] = 1; }", DefaultOptions())
	be.Err(t, err, nil)
	_, err = Execute(c, DefaultOptions())
	var re *RuntimeError
	be.True(t, errors.As(err, &re))
}

func TestMaxInt32Literal(t *testing.T) {
	ir := compileIR(t, "{ int x; x = 2147483647; }", DefaultOptions())
	be.Equal(t, ir.Code[1].String(), "Mov fp[0] #2147483647")
}

func TestCodeGenReportsStackSize(t *testing.T) {
	c, err := Compile("{ int a; { int[4] b; } { int c; { int[2][2] d; } } }", DefaultOptions())
	be.Err(t, err, nil)
	be.Equal(t, c.StackSize, uint32(24))
	be.Equal(t, len(c.Symbols), 4)
}

func TestGenerateRejectsTopLevelBreak(t *testing.T) {
	cg := NewCodeGen(DefaultOptions())
	_, err := cg.Generate(&Program{Block: &Block{Stmts: []Stmt{&BreakStmt{Pos: Pos{Line: 1, Col: 3}}}}})
	be.Equal(t, err.Error(), "1:3: error: break statement not within a loop")
}
