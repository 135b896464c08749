package comb

import (
	"github.com/jwd83/svsim/pkg/ast"
	"github.com/jwd83/svsim/pkg/bitvec"
	"github.com/jwd83/svsim/pkg/eval"
	"github.com/jwd83/svsim/pkg/simerr"
)

// stepAlwaysCombBlocks executes every always_comb block whose free
// identifiers are fully bound, with blocking semantics throughout: an
// always_comb block runs top-to-bottom once all its inputs are known,
// same as a continuous assign but with control flow.
func stepAlwaysCombBlocks(pending []ast.ProceduralBlock, env map[string]bitvec.Value, memories map[string]*eval.Memory, mod *ast.Module, progressed bool) ([]ast.ProceduralBlock, bool, error) {
	var remaining []ast.ProceduralBlock
	for _, b := range pending {
		if b.Kind != ast.AlwaysComb {
			// always_ff bodies run only on a clock edge, in pkg/seqeval.
			continue
		}
		// Memory names are read through memories, never bound in env.
		var idents []string
		for _, id := range freeIdentsStmts(b.Body) {
			if _, isMem := memories[id]; !isMem {
				idents = append(idents, id)
			}
		}
		if !allIdentsBound(idents, env) {
			remaining = append(remaining, b)
			continue
		}
		if err := execStmts(b.Body, env, memories, mod); err != nil {
			return nil, false, err
		}
		progressed = true
	}
	return remaining, progressed, nil
}

// execStmts runs a statement list with blocking semantics, committing
// each assignment directly into env as it executes.
func execStmts(stmts []ast.Stmt, env map[string]bitvec.Value, memories map[string]*eval.Memory, mod *ast.Module) error {
	for _, s := range stmts {
		if err := execStmt(s, env, memories, mod); err != nil {
			return err
		}
	}
	return nil
}

func execStmt(s ast.Stmt, env map[string]bitvec.Value, memories map[string]*eval.Memory, mod *ast.Module) error {
	switch x := s.(type) {
	case *ast.Assign:
		return applyAssign(*x, env, memories, mod)

	case *ast.Block:
		return execStmts(x.Body, env, memories, mod)

	case *ast.If:
		cond, err := eval.Eval(x.Cond, eval.Env{Signals: env, Memories: memories, Module: mod.Name, Signed: eval.SignedNames(mod)})
		if err != nil {
			return err
		}
		if cond.IsTrue() {
			return execStmts(x.Then, env, memories, mod)
		}
		return execStmts(x.Else, env, memories, mod)

	case *ast.Case:
		sel, err := eval.Eval(x.Selector, eval.Env{Signals: env, Memories: memories, Module: mod.Name, Signed: eval.SignedNames(mod)})
		if err != nil {
			return err
		}
		for _, arm := range x.Arms {
			val, err := eval.Eval(arm.Value, eval.Env{Signals: env, Memories: memories, Module: mod.Name, Signed: eval.SignedNames(mod)})
			if err != nil {
				return err
			}
			if val.Bits == sel.Bits {
				return execStmts(arm.Body, env, memories, mod)
			}
		}
		if x.Default != nil {
			return execStmts(x.Default, env, memories, mod)
		}
		return nil

	default:
		return simerr.New(simerr.WidthMismatch, simerr.Location{Module: mod.Name}, "unhandled statement node %T", s)
	}
}

// freeIdentsStmts collects every identifier read anywhere in a statement
// list: assignment RHS values, lvalue index expressions, if/case
// conditions. It deliberately does not descend into assignment targets'
// plain names (those are written, not read).
func freeIdentsStmts(stmts []ast.Stmt) []string {
	var out []string
	for _, s := range stmts {
		walkStmt(s, &out)
	}
	return out
}

func walkStmt(s ast.Stmt, out *[]string) {
	switch x := s.(type) {
	case *ast.Assign:
		*out = append(*out, eval.FreeIdents(x.Value)...)
		switch x.Target.Kind {
		case ast.LvalueBit:
			*out = append(*out, eval.FreeIdents(x.Target.Bit)...)
		case ast.LvalueRange:
			*out = append(*out, eval.FreeIdents(x.Target.Hi)...)
			*out = append(*out, eval.FreeIdents(x.Target.Lo)...)
		}
	case *ast.Block:
		for _, inner := range x.Body {
			walkStmt(inner, out)
		}
	case *ast.If:
		*out = append(*out, eval.FreeIdents(x.Cond)...)
		for _, inner := range x.Then {
			walkStmt(inner, out)
		}
		for _, inner := range x.Else {
			walkStmt(inner, out)
		}
	case *ast.Case:
		*out = append(*out, eval.FreeIdents(x.Selector)...)
		for _, arm := range x.Arms {
			*out = append(*out, eval.FreeIdents(arm.Value)...)
			for _, inner := range arm.Body {
				walkStmt(inner, out)
			}
		}
		for _, inner := range x.Default {
			walkStmt(inner, out)
		}
	}
}
