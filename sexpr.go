package main

import (
	"fmt"
	"strings"
)

// ToSExpr converts an AST node to its s-expression representation.
//
//	x = a[1] + 2;   (assign (ide "x") (add (index "a" 1) 2))
func ToSExpr(node any) string {
	switch n := node.(type) {
	case *Program:
		return "(program " + ToSExpr(n.Block) + ")"
	case *Block:
		var decls, stmts []string
		for _, d := range n.Decls {
			decls = append(decls, ToSExpr(d))
		}
		for _, s := range n.Stmts {
			stmts = append(stmts, ToSExpr(s))
		}
		return "(block " + list("decls", decls) + " " + list("stmts", stmts) + ")"
	case *Decl:
		return fmt.Sprintf("(decl %q %s)", n.Name, typeSExpr(n.Type))

	case *AssignStmt:
		return "(assign " + ToSExpr(n.Target) + " " + ToSExpr(n.Value) + ")"
	case *IfStmt:
		return "(if " + ToSExpr(n.Cond) + " " + ToSExpr(n.Then) + ")"
	case *IfElseStmt:
		return "(if-else " + ToSExpr(n.Cond) + " " + ToSExpr(n.Then) + " " + ToSExpr(n.Else) + ")"
	case *WhileStmt:
		return "(while " + ToSExpr(n.Cond) + " " + ToSExpr(n.Body) + ")"
	case *BreakStmt:
		return "(break)"
	case *BlockStmt:
		return ToSExpr(n.Block)

	case *LogicExpr:
		return "(" + opName(n.Op) + " " + ToSExpr(n.X) + " " + ToSExpr(n.Y) + ")"
	case *EqualityExpr:
		return "(" + opName(n.Op) + " " + ToSExpr(n.X) + " " + ToSExpr(n.Y) + ")"
	case *RelExpr:
		return "(" + opName(n.Op) + " " + ToSExpr(n.X) + " " + ToSExpr(n.Y) + ")"
	case *NumBool:
		// Transparent: a numeric expression in boolean position.
		return ToSExpr(n.X)

	case *ArithExpr:
		return "(" + opName(n.Op) + " " + ToSExpr(n.X) + " " + ToSExpr(n.Y) + ")"
	case *UnaryExpr:
		if n.Op == OpSub {
			return "(minus " + ToSExpr(n.X) + ")"
		}
		return "(not " + ToSExpr(n.X) + ")"
	case *ParenExpr:
		return "(paren " + ToSExpr(n.X) + ")"
	case *LocExpr:
		return ToSExpr(n.Loc)
	case *NumLit:
		return fmt.Sprintf("%d", n.Value)
	case *BoolLit:
		if n.Value {
			return "True"
		}
		return "False"

	case *IdeLoc:
		return fmt.Sprintf("(ide %q)", n.Name)
	case *IndexLoc:
		parts := []string{fmt.Sprintf("(index %q", n.Name)}
		for _, idx := range n.Indices {
			parts = append(parts, ToSExpr(idx))
		}
		return strings.Join(parts, " ") + ")"
	default:
		return ""
	}
}

func list(head string, items []string) string {
	if len(items) == 0 {
		return "(" + head + ")"
	}
	return "(" + head + " " + strings.Join(items, " ") + ")"
}

func typeSExpr(t TypeExpr) string {
	if len(t.Dims) == 0 {
		return string(t.Basic)
	}
	parts := []string{"(array", string(t.Basic)}
	for _, d := range t.Dims {
		parts = append(parts, fmt.Sprintf("%d", d))
	}
	return strings.Join(parts, " ") + ")"
}

func opName(op Operator) string {
	switch op {
	case OpOr:
		return "or"
	case OpAnd:
		return "and"
	case OpEq:
		return "eq"
	case OpNeq:
		return "neq"
	case OpGe:
		return "ge"
	case OpGt:
		return "gt"
	case OpLe:
		return "le"
	case OpLt:
		return "lt"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	default:
		return string(op)
	}
}
