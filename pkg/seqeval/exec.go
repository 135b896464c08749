package seqeval

import (
	"github.com/jwd83/svsim/pkg/ast"
	"github.com/jwd83/svsim/pkg/bitvec"
	"github.com/jwd83/svsim/pkg/eval"
	"github.com/jwd83/svsim/pkg/simerr"
)

func envFor(shadow map[string]bitvec.Value, mems map[string]*eval.Memory, mod *ast.Module) eval.Env {
	return eval.Env{Signals: shadow, Memories: mems, Module: mod.Name, Signed: eval.SignedNames(mod)}
}

// execAlwaysFf runs an always_ff body with the two-phase discipline from
// step 3: blocking assignments mutate shadow immediately (and
// are visible to the rest of this block only); non-blocking assignments
// are appended to pending and applied after every triggered block in the
// cycle has run its read phase. touched records which register names a
// blocking assignment actually reached, so the caller commits exactly
// those from shadow and nothing copied over from the pre-cycle env.
func execAlwaysFf(stmts []ast.Stmt, shadow map[string]bitvec.Value, mems map[string]*eval.Memory, mod *ast.Module, pending *[]pendingWrite, touched map[string]bool) error {
	for _, s := range stmts {
		if err := execAlwaysFfStmt(s, shadow, mems, mod, pending, touched); err != nil {
			return err
		}
	}
	return nil
}

func execAlwaysFfStmt(s ast.Stmt, shadow map[string]bitvec.Value, mems map[string]*eval.Memory, mod *ast.Module, pending *[]pendingWrite, touched map[string]bool) error {
	switch x := s.(type) {
	case *ast.Assign:
		return execAssign(x, shadow, mems, mod, pending, touched)

	case *ast.Block:
		return execAlwaysFf(x.Body, shadow, mems, mod, pending, touched)

	case *ast.If:
		cond, err := eval.Eval(x.Cond, envFor(shadow, mems, mod))
		if err != nil {
			return err
		}
		if cond.IsTrue() {
			return execAlwaysFf(x.Then, shadow, mems, mod, pending, touched)
		}
		return execAlwaysFf(x.Else, shadow, mems, mod, pending, touched)

	case *ast.Case:
		sel, err := eval.Eval(x.Selector, envFor(shadow, mems, mod))
		if err != nil {
			return err
		}
		for _, arm := range x.Arms {
			val, err := eval.Eval(arm.Value, envFor(shadow, mems, mod))
			if err != nil {
				return err
			}
			if val.Bits == sel.Bits {
				return execAlwaysFf(arm.Body, shadow, mems, mod, pending, touched)
			}
		}
		if x.Default != nil {
			return execAlwaysFf(x.Default, shadow, mems, mod, pending, touched)
		}
		return nil

	default:
		return simerr.New(simerr.WidthMismatch, simerr.Location{Module: mod.Name}, "unhandled statement %T in always_ff", s)
	}
}

// execAssign evaluates one always_ff assignment. A memory-element target
// (disambiguated the same way pkg/eval's bit-select reader is, by
// checking whether the base name is a declared memory) is never a
// register write; blocking memory writes commit into mems immediately,
// non-blocking ones stage into pending.
func execAssign(a *ast.Assign, shadow map[string]bitvec.Value, mems map[string]*eval.Memory, mod *ast.Module, pending *[]pendingWrite, touched map[string]bool) error {
	env := envFor(shadow, mems, mod)
	val, err := eval.Eval(a.Value, env)
	if err != nil {
		return err
	}

	if a.Target.Kind == ast.LvalueBit {
		if mem, ok := mems[a.Target.Name]; ok {
			addrVal, err := eval.Eval(a.Target.Bit, env)
			if err != nil {
				return err
			}
			word := bitvec.New(mem.ElementWidth, val.Bits)
			if a.Kind == ast.Blocking {
				if addrVal.Bits < uint64(len(mem.Data)) {
					mem.Data[addrVal.Bits] = word
				}
				return nil
			}
			*pending = append(*pending, pendingWrite{mem: a.Target.Name, addr: addrVal.Bits, val: word})
			return nil
		}
	}

	switch a.Target.Kind {
	case ast.LvalueWhole:
		if a.Kind == ast.Blocking {
			shadow[a.Target.Name] = widenRegValue(a.Target.Name, val, mod)
			touched[a.Target.Name] = true
			return nil
		}
		*pending = append(*pending, pendingWrite{reg: a.Target.Name, val: val})
		return nil

	case ast.LvalueBit:
		idxVal, err := eval.Eval(a.Target.Bit, env)
		if err != nil {
			return err
		}
		b := uint8(idxVal.Bits)
		if a.Kind == ast.Blocking {
			setShadowBit(shadow, a.Target.Name, b, val)
			touched[a.Target.Name] = true
			return nil
		}
		*pending = append(*pending, pendingWrite{reg: a.Target.Name, bit: &b, val: val})
		return nil

	case ast.LvalueRange:
		hiVal, err := eval.Eval(a.Target.Hi, env)
		if err != nil {
			return err
		}
		loVal, err := eval.Eval(a.Target.Lo, env)
		if err != nil {
			return err
		}
		hi, lo := uint8(hiVal.Bits), uint8(loVal.Bits)
		if a.Kind == ast.Blocking {
			setShadowRange(shadow, a.Target.Name, hi, lo, val)
			touched[a.Target.Name] = true
			return nil
		}
		*pending = append(*pending, pendingWrite{reg: a.Target.Name, hi: &hi, lo: &lo, val: val})
		return nil
	}

	return simerr.New(simerr.WidthMismatch, simerr.Location{Module: mod.Name}, "unsupported lvalue kind in always_ff")
}

func widenRegValue(name string, val bitvec.Value, mod *ast.Module) bitvec.Value {
	for _, n := range mod.Nets {
		if n.Name == name && n.Width > val.Width {
			return bitvec.New(n.Width, val.Bits)
		}
	}
	for _, p := range mod.Ports {
		if p.Name == name && p.Width > val.Width {
			return bitvec.New(p.Width, val.Bits)
		}
	}
	return val
}

func setShadowBit(shadow map[string]bitvec.Value, name string, i uint8, bit bitvec.Value) {
	cur := shadow[name]
	if i >= cur.Width {
		cur = bitvec.New(i+1, cur.Bits)
	}
	mask := uint64(1) << i
	bits := cur.Bits &^ mask
	if bit.IsTrue() {
		bits |= mask
	}
	shadow[name] = bitvec.New(cur.Width, bits)
}

func setShadowRange(shadow map[string]bitvec.Value, name string, hi, lo uint8, val bitvec.Value) {
	cur := shadow[name]
	if hi >= cur.Width {
		cur = bitvec.New(hi+1, cur.Bits)
	}
	width := hi - lo + 1
	clearMask := ((uint64(1) << width) - 1) << lo
	bits := (cur.Bits &^ clearMask) | ((val.Bits << lo) & clearMask)
	shadow[name] = bitvec.New(cur.Width, bits)
}
