// Package comb implements the combinational evaluator: a dataflow-fixpoint
// worklist over continuous assigns, child instances, and always_comb
// blocks, rather than recursive descent through source order. The subset
// permits forward references through instantiations, so a single
// textual-order pass is insufficient.
package comb

import (
	"path/filepath"

	"github.com/jwd83/svsim/pkg/ast"
	"github.com/jwd83/svsim/pkg/bitvec"
	"github.com/jwd83/svsim/pkg/eval"
	"github.com/jwd83/svsim/pkg/module"
	"github.com/jwd83/svsim/pkg/simerr"
)

// Result is the outcome of evaluating one module to steady state.
type Result struct {
	Outputs  map[string]bitvec.Value
	GateCost int
}

// EvaluateEntry drives e's module from inputs, resolving child instances
// relative to e's own directory (a child is looked up next to its
// referrer). extraEnv seeds additional bindings beyond the module's
// declared inputs, the sequential evaluator's hook for mixing in current
// persistent state. memories gives the module's combinational parts read
// access to its own memory arrays (e.g. `assign rdata = mem[addr];`); pass
// nil for a module with none.
func EvaluateEntry(e *module.Entry, inputs map[string]bitvec.Value, cache *module.Cache, extraEnv map[string]bitvec.Value, memories map[string]*eval.Memory) (Result, error) {
	if e.IsRomPrimitive {
		return evaluateRom(e, inputs)
	}
	outputs, err := evaluate(e.AST, filepath.Dir(e.AbsolutePath), inputs, cache, extraEnv, memories)
	if err != nil {
		return Result{}, err
	}
	cost, _ := cache.GateCost(e) // the instance-cycle list GateCost returns is not reported here
	return Result{Outputs: outputs, GateCost: cost}, nil
}

func evaluate(mod *ast.Module, dir string, inputs map[string]bitvec.Value, cache *module.Cache, extraEnv map[string]bitvec.Value, memories map[string]*eval.Memory) (map[string]bitvec.Value, error) {
	env := map[string]bitvec.Value{}
	for _, p := range mod.InputPorts() {
		v, ok := inputs[p.Name]
		if !ok {
			return nil, simerr.New(simerr.PortWidthMismatch, simerr.Location{Module: mod.Name},
				"missing input %q", p.Name)
		}
		if v.Width != p.Width {
			return nil, simerr.New(simerr.PortWidthMismatch, simerr.Location{Module: mod.Name},
				"input %q: got width %d, want %d", p.Name, v.Width, p.Width)
		}
		env[p.Name] = v
	}
	for k, v := range extraEnv {
		if _, exists := env[k]; !exists {
			env[k] = v
		}
	}

	pendingAssigns := append([]ast.Assign(nil), mod.ContinuousAssigns...)
	pendingInstances := append([]ast.Instance(nil), mod.ChildInstances...)
	pendingBlocks := append([]ast.ProceduralBlock(nil), mod.ProceduralBlocks...)

	for {
		progressed := false
		var err error

		pendingAssigns, progressed, err = stepAssigns(pendingAssigns, env, memories, mod, progressed)
		if err != nil {
			return nil, err
		}

		pendingInstances, progressed, err = stepInstances(pendingInstances, env, mod, cache, dir, progressed)
		if err != nil {
			return nil, err
		}

		pendingBlocks, progressed, err = stepAlwaysCombBlocks(pendingBlocks, env, memories, mod, progressed)
		if err != nil {
			return nil, err
		}

		if !progressed {
			break
		}
	}

	outputs := map[string]bitvec.Value{}
	var unbound []string
	for _, p := range mod.OutputPorts() {
		v, ok := env[p.Name]
		if !ok {
			unbound = append(unbound, p.Name)
			continue
		}
		outputs[p.Name] = v
	}
	if len(unbound) > 0 {
		return nil, simerr.New(simerr.CombinationalCycle, simerr.Location{Module: mod.Name},
			"outputs never bound (combinational cycle or missing driver): %v", unbound)
	}

	return outputs, nil
}

func allIdentsBound(idents []string, env map[string]bitvec.Value) bool {
	for _, id := range idents {
		if _, ok := env[id]; !ok {
			return false
		}
	}
	return true
}

// stepAssigns applies every continuous assign whose RHS is fully bound,
// step 2. It returns the assigns still waiting on an
// unbound identifier.
func stepAssigns(pending []ast.Assign, env map[string]bitvec.Value, memories map[string]*eval.Memory, mod *ast.Module, progressed bool) ([]ast.Assign, bool, error) {
	var remaining []ast.Assign
	for _, a := range pending {
		// A memory name (the base of `mem[addr]`) is never bound in env;
		// it is ready whenever memories holds the array.
		var idents []string
		for _, id := range eval.FreeIdents(a.Value) {
			if _, isMem := memories[id]; !isMem {
				idents = append(idents, id)
			}
		}
		if !allIdentsBound(idents, env) {
			remaining = append(remaining, a)
			continue
		}
		if err := applyAssign(a, env, memories, mod); err != nil {
			return nil, false, err
		}
		progressed = true
	}
	return remaining, progressed, nil
}

// applyAssign evaluates a.Value and binds it into env at a.Target,
// handling whole-signal, bit, and range lvalues. A target wider than the
// declared net/port is never produced here; widenToDeclared zero-extends
// a whole-signal assignment up to its declared width.
func applyAssign(a ast.Assign, env map[string]bitvec.Value, memories map[string]*eval.Memory, mod *ast.Module) error {
	rhsEnv := eval.Env{Signals: env, Memories: memories, Module: mod.Name, Signed: eval.SignedNames(mod)}
	val, err := eval.Eval(a.Value, rhsEnv)
	if err != nil {
		return err
	}
	switch a.Target.Kind {
	case ast.LvalueWhole:
		env[a.Target.Name] = widenToDeclared(a.Target.Name, val, mod)
		return nil
	case ast.LvalueBit:
		idxVal, err := eval.Eval(a.Target.Bit, rhsEnv)
		if err != nil {
			return err
		}
		return setBit(env, a.Target.Name, uint8(idxVal.Bits), val)
	case ast.LvalueRange:
		hiVal, err := eval.Eval(a.Target.Hi, rhsEnv)
		if err != nil {
			return err
		}
		loVal, err := eval.Eval(a.Target.Lo, rhsEnv)
		if err != nil {
			return err
		}
		return setRange(env, a.Target.Name, uint8(hiVal.Bits), uint8(loVal.Bits), val)
	}
	return simerr.New(simerr.WidthMismatch, simerr.Location{Module: mod.Name}, "unsupported lvalue kind in combinational assign")
}

// widenToDeclared zero-extends val to the declared width of name (a net
// or output port) when the module records one wider than val's own
// width; narrower declared widths are left to the evaluator's own masking
// (the RHS is trusted to already be the intended width in that case).
func widenToDeclared(name string, val bitvec.Value, mod *ast.Module) bitvec.Value {
	declared := declaredWidth(name, mod)
	if declared > val.Width {
		return bitvec.New(declared, val.Bits)
	}
	return val
}

func declaredWidth(name string, mod *ast.Module) uint8 {
	for _, p := range mod.Ports {
		if p.Name == name {
			return p.Width
		}
	}
	for _, n := range mod.Nets {
		if n.Name == name {
			return n.Width
		}
	}
	return 0
}

func setBit(env map[string]bitvec.Value, name string, i uint8, bit bitvec.Value) error {
	cur, ok := env[name]
	if !ok {
		cur = bitvec.New(i+1, 0)
	}
	if i >= cur.Width {
		cur = bitvec.New(i+1, cur.Bits)
	}
	mask := uint64(1) << i
	bits := cur.Bits &^ mask
	if bit.IsTrue() {
		bits |= mask
	}
	env[name] = bitvec.New(cur.Width, bits)
	return nil
}

func setRange(env map[string]bitvec.Value, name string, hi, lo uint8, val bitvec.Value) error {
	cur, ok := env[name]
	if !ok {
		cur = bitvec.New(hi+1, 0)
	}
	if hi >= cur.Width {
		cur = bitvec.New(hi+1, cur.Bits)
	}
	width := hi - lo + 1
	clearMask := ((uint64(1) << width) - 1) << lo
	bits := (cur.Bits &^ clearMask) | ((val.Bits << lo) & clearMask)
	env[name] = bitvec.New(cur.Width, bits)
	return nil
}
