// Package eval implements the pure expression evaluator :
// eval(expr, env) -> value, deterministic and side-effect free.
package eval

import (
	"github.com/jwd83/svsim/pkg/ast"
	"github.com/jwd83/svsim/pkg/bitvec"
	"github.com/jwd83/svsim/pkg/simerr"
)

// Memory is the read side of a memory array as seen by the expression
// evaluator: its element width (for zero-filling out-of-range reads) and
// current contents. Mutation lives in pkg/seqeval; this package only
// reads.
type Memory struct {
	ElementWidth uint8
	Data         []bitvec.Value
}

// Env is the signal environment one evaluation of one module runs
// against. Memories is nil for modules
// with no memory arrays. Signed carries the names of every port and net
// the module declared `signed`; nil (or a name absent from it) means
// unsigned.
type Env struct {
	Signals  map[string]bitvec.Value
	Memories map[string]*Memory
	Signed   map[string]bool
	File     string // for error locations
	Module   string
}

func (e Env) loc(p ast.Pos) simerr.Location {
	return simerr.Location{File: e.File, Module: e.Module, Line: p.Line, Col: p.Col}
}

// SignedNames collects the port and net names mod declares `signed`, the
// set evalBinary consults to pick signed relational comparison over the
// default unsigned one.
func SignedNames(mod *ast.Module) map[string]bool {
	out := map[string]bool{}
	for _, p := range mod.Ports {
		if p.Signed {
			out[p.Name] = true
		}
	}
	for _, n := range mod.Nets {
		if n.Signed {
			out[n.Name] = true
		}
	}
	return out
}

// Eval evaluates expr against env. It never mutates env.
func Eval(expr ast.Expr, env Env) (bitvec.Value, error) {
	switch x := expr.(type) {
	case *ast.Ident:
		v, ok := env.Signals[x.Name]
		if !ok {
			return bitvec.Value{}, simerr.New(simerr.UndefinedIdentifier, env.loc(x.Pos),
				"identifier %q is not bound", x.Name)
		}
		return v, nil

	case *ast.LitExpr:
		v, err := bitvec.ParseLiteral(x.Text)
		if err != nil {
			return bitvec.Value{}, simerr.New(simerr.SyntaxError, env.loc(x.Pos), "%v", err)
		}
		return v, nil

	case *ast.BitSelect:
		return evalBitSelect(x, env)

	case *ast.RangeSelect:
		return evalRangeSelect(x, env)

	case *ast.Concat:
		parts := make([]bitvec.Value, len(x.Parts))
		for i, p := range x.Parts {
			v, err := Eval(p, env)
			if err != nil {
				return bitvec.Value{}, err
			}
			parts[i] = v
		}
		return bitvec.Concat(parts...), nil

	case *ast.Replicate:
		cnt, err := Eval(x.Count, env)
		if err != nil {
			return bitvec.Value{}, err
		}
		v, err := Eval(x.Value, env)
		if err != nil {
			return bitvec.Value{}, err
		}
		n := int(cnt.Bits)
		if n <= 0 {
			return bitvec.Value{}, simerr.New(simerr.WidthMismatch, env.loc(x.Pos),
				"replication count must be positive, got %d", n)
		}
		if int(v.Width)*n > bitvec.MaxWidth {
			return bitvec.Value{}, simerr.New(simerr.WidthMismatch, env.loc(x.Pos),
				"replication {%d{...}} exceeds max width %d", n, bitvec.MaxWidth)
		}
		return bitvec.Repl(n, v), nil

	case *ast.Unary:
		return evalUnary(x, env)

	case *ast.Binary:
		return evalBinary(x, env)

	case *ast.Ternary:
		s, err := Eval(x.Sel, env)
		if err != nil {
			return bitvec.Value{}, err
		}
		a, err := Eval(x.A, env)
		if err != nil {
			return bitvec.Value{}, err
		}
		b, err := Eval(x.B, env)
		if err != nil {
			return bitvec.Value{}, err
		}
		return bitvec.Ternary(s, a, b), nil
	}

	return bitvec.Value{}, simerr.New(simerr.WidthMismatch, simerr.Location{},
		"eval: unhandled expression node %T", expr)
}

// evalBitSelect handles both x[i] (signal bit select) and name[addr]
// (memory read): the same AST shape, disambiguated by whether the base
// identifier names a declared memory.
func evalBitSelect(x *ast.BitSelect, env Env) (bitvec.Value, error) {
	if ident, ok := x.X.(*ast.Ident); ok {
		if mem, ok := env.Memories[ident.Name]; ok {
			addr, err := Eval(x.Idx, env)
			if err != nil {
				return bitvec.Value{}, err
			}
			idx := addr.Bits
			if idx >= uint64(len(mem.Data)) {
				return bitvec.New(mem.ElementWidth, 0), nil // out-of-range read yields zero
			}
			return mem.Data[idx], nil
		}
	}

	base, err := Eval(x.X, env)
	if err != nil {
		return bitvec.Value{}, err
	}
	idxVal, err := Eval(x.Idx, env)
	if err != nil {
		return bitvec.Value{}, err
	}
	i := idxVal.Bits
	if i >= uint64(base.Width) {
		return bitvec.Value{}, simerr.New(simerr.IndexOut, env.loc(x.Pos),
			"bit select [%d] out of range for %d-bit value", i, base.Width)
	}
	return bitvec.Bit(base, uint8(i)), nil
}

func evalRangeSelect(x *ast.RangeSelect, env Env) (bitvec.Value, error) {
	base, err := Eval(x.X, env)
	if err != nil {
		return bitvec.Value{}, err
	}
	hiVal, err := Eval(x.Hi, env)
	if err != nil {
		return bitvec.Value{}, err
	}
	loVal, err := Eval(x.Lo, env)
	if err != nil {
		return bitvec.Value{}, err
	}
	hi, lo := hiVal.Bits, loVal.Bits
	if hi < lo {
		return bitvec.Value{}, simerr.New(simerr.IndexOut, env.loc(x.Pos),
			"range select [%d:%d] has hi < lo", hi, lo)
	}
	if hi >= uint64(base.Width) {
		return bitvec.Value{}, simerr.New(simerr.IndexOut, env.loc(x.Pos),
			"range select [%d:%d] out of range for %d-bit value", hi, lo, base.Width)
	}
	return bitvec.Slice(base, uint8(hi), uint8(lo)), nil
}

func evalUnary(x *ast.Unary, env Env) (bitvec.Value, error) {
	v, err := Eval(x.X, env)
	if err != nil {
		return bitvec.Value{}, err
	}
	switch x.Op {
	case ast.UnaryNot:
		return bitvec.Not(v), nil
	case ast.UnaryAnd:
		return bitvec.ReduceAnd(v), nil
	case ast.UnaryOr:
		return bitvec.ReduceOr(v), nil
	case ast.UnaryXor:
		return bitvec.ReduceXor(v), nil
	case ast.UnaryNand:
		return bitvec.Not(bitvec.ReduceAnd(v)), nil
	case ast.UnaryNor:
		return bitvec.Not(bitvec.ReduceOr(v)), nil
	case ast.UnaryXnor:
		return bitvec.Not(bitvec.ReduceXor(v)), nil
	case ast.UnaryPlus:
		return v, nil
	case ast.UnaryMinus:
		return bitvec.Sub(bitvec.New(v.Width, 0), v), nil
	}
	return bitvec.Value{}, simerr.New(simerr.WidthMismatch, env.loc(x.Pos), "unhandled unary operator")
}

func evalBinary(x *ast.Binary, env Env) (bitvec.Value, error) {
	l, err := Eval(x.L, env)
	if err != nil {
		return bitvec.Value{}, err
	}
	r, err := Eval(x.R, env)
	if err != nil {
		return bitvec.Value{}, err
	}
	switch x.Op {
	case ast.OpMul:
		return bitvec.Mul(l, r), nil
	case ast.OpDiv:
		if r.Bits == 0 {
			return bitvec.Value{}, simerr.New(simerr.DivZero, env.loc(x.Pos), "division by zero")
		}
		return bitvec.New(maxW(l.Width, r.Width), l.Bits/r.Bits), nil
	case ast.OpMod:
		if r.Bits == 0 {
			return bitvec.Value{}, simerr.New(simerr.DivZero, env.loc(x.Pos), "modulo by zero")
		}
		return bitvec.New(maxW(l.Width, r.Width), l.Bits%r.Bits), nil
	case ast.OpAdd:
		return bitvec.Add(l, r), nil
	case ast.OpSub:
		return bitvec.Sub(l, r), nil
	case ast.OpShl:
		return bitvec.Shl(l, r), nil
	case ast.OpShr:
		return bitvec.Shr(l, r), nil
	case ast.OpLt:
		if bothSigned(x.L, x.R, env) {
			return bitvec.SignedLt(l, r), nil
		}
		return bitvec.Lt(l, r), nil
	case ast.OpLe:
		if bothSigned(x.L, x.R, env) {
			return bitvec.SignedLe(l, r), nil
		}
		return bitvec.Le(l, r), nil
	case ast.OpGt:
		if bothSigned(x.L, x.R, env) {
			return bitvec.SignedGt(l, r), nil
		}
		return bitvec.Gt(l, r), nil
	case ast.OpGe:
		if bothSigned(x.L, x.R, env) {
			return bitvec.SignedGe(l, r), nil
		}
		return bitvec.Ge(l, r), nil
	case ast.OpEq:
		return bitvec.Eq(l, r), nil
	case ast.OpNe:
		return bitvec.Ne(l, r), nil
	case ast.OpBitAnd:
		return bitvec.And(l, r), nil
	case ast.OpBitXor:
		return bitvec.Xor(l, r), nil
	case ast.OpBitOr:
		return bitvec.Or(l, r), nil
	case ast.OpLogAnd:
		return bitvec.LogicalAnd(l, r), nil
	case ast.OpLogOr:
		return bitvec.LogicalOr(l, r), nil
	}
	return bitvec.Value{}, simerr.New(simerr.WidthMismatch, env.loc(x.Pos), "unhandled binary operator")
}

// bothSigned reports whether l and r are both references to a
// `signed`-declared port or net, the relational-comparison rule recorded
// against the signed-comparison Open Question: an unsized literal or any
// other expression shape is always unsigned, so a comparison is signed
// only when both sides trace back to a declared signed signal.
func bothSigned(l, r ast.Expr, env Env) bool {
	return isSignedIdent(l, env) && isSignedIdent(r, env)
}

func isSignedIdent(e ast.Expr, env Env) bool {
	ident, ok := e.(*ast.Ident)
	if !ok {
		return false
	}
	return env.Signed[ident.Name]
}

func maxW(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}
