// Package seqeval implements the sequential evaluator: a module with one
// or more always_ff blocks runs in discrete cycles, each sampling inputs,
// driving the combinational parts to steady state, then committing any
// triggered always_ff block through a two-phase read/write discipline.
// Persistent state (registers, memory arrays) lives in an Instance that
// the caller creates with NewInstance and passes to Driver.Step, never in
// the AST or the module cache. Only the top module holds state and has
// its always_ff blocks run: child instances are evaluated combinationally
// through pkg/comb with no registers or memory arrays of their own, so an
// always_ff block inside a child never fires.
package seqeval

import (
	"github.com/jwd83/svsim/pkg/ast"
	"github.com/jwd83/svsim/pkg/bitvec"
	"github.com/jwd83/svsim/pkg/comb"
	"github.com/jwd83/svsim/pkg/eval"
	"github.com/jwd83/svsim/pkg/module"
	"github.com/jwd83/svsim/pkg/simerr"
)

// Instance is one sequential module's persistent state: its registers and
// memory arrays, plus the previous cycle's clock values for edge
// detection.
type Instance struct {
	Entry   *module.Entry
	Regs    map[string]bitvec.Value
	Mems    map[string][]bitvec.Value
	prevClk map[string]bitvec.Value
}

// NewInstance builds a fresh Instance for e, zero-initializing every
// register-width net and memory array the module declares. Memories not
// later preloaded via pkg/memload read as all-zero.
func NewInstance(e *module.Entry) *Instance {
	mod := e.AST
	inst := &Instance{
		Entry:   e,
		Regs:    map[string]bitvec.Value{},
		Mems:    map[string][]bitvec.Value{},
		prevClk: map[string]bitvec.Value{},
	}
	for _, n := range mod.Nets {
		inst.Regs[n.Name] = bitvec.New(n.Width, 0)
	}
	for _, m := range mod.Memories {
		inst.Mems[m.Name] = make([]bitvec.Value, m.Depth)
		for i := range inst.Mems[m.Name] {
			inst.Mems[m.Name][i] = bitvec.New(m.ElementWidth, 0)
		}
	}
	for _, pb := range mod.ProceduralBlocks {
		if pb.Kind == ast.AlwaysFf {
			inst.prevClk[pb.Clock] = bitvec.New(1, 0)
		}
	}
	return inst
}

// Driver runs Instances through cycles and tracks out-of-range memory
// writes across the whole run. This is a diagnostic counter, not a fatal
// error: dropped writes stay silent at the instance level but are visible
// in aggregate to a driver that cares.
type Driver struct {
	Cache         *module.Cache
	DroppedWrites int
}

// NewDriver returns a Driver backed by cache.
func NewDriver(cache *module.Cache) *Driver {
	return &Driver{Cache: cache}
}

type pendingWrite struct {
	reg  string // non-empty for a whole/bit/range register write
	bit  *uint8
	hi   *uint8
	lo   *uint8
	val  bitvec.Value
	mem  string // non-empty for a memory write
	addr uint64
}

// Step runs one cycle of inst against cycleInputs, returning the
// resulting outputs.
func (d *Driver) Step(inst *Instance, cycleInputs map[string]bitvec.Value) (map[string]bitvec.Value, error) {
	mod := inst.Entry.AST

	extraEnv := map[string]bitvec.Value{}
	for name, v := range inst.Regs {
		extraEnv[name] = v
	}

	memView := map[string]*eval.Memory{}
	for name, data := range inst.Mems {
		var elemWidth uint8
		for _, m := range mod.Memories {
			if m.Name == name {
				elemWidth = m.ElementWidth
			}
		}
		memView[name] = &eval.Memory{ElementWidth: elemWidth, Data: data}
	}

	combResult, err := comb.EvaluateEntry(inst.Entry, cycleInputs, d.Cache, extraEnv, memView)
	if err != nil {
		return nil, err
	}
	combOutputs := combResult.Outputs

	env := map[string]bitvec.Value{}
	for k, v := range cycleInputs {
		env[k] = v
	}
	for k, v := range extraEnv {
		env[k] = v
	}
	for k, v := range combOutputs {
		env[k] = v
	}

	for _, pb := range mod.ProceduralBlocks {
		if pb.Kind != ast.AlwaysFf {
			continue
		}
		clkVal, ok := env[pb.Clock]
		if !ok {
			return nil, simerr.New(simerr.UndefinedIdentifier, simerr.Location{Module: mod.Name},
				"always_ff clock %q is not bound", pb.Clock)
		}
		prev := inst.prevClk[pb.Clock]
		edge := prev.Bits == 0 && clkVal.Bits == 1
		inst.prevClk[pb.Clock] = clkVal

		if !edge {
			continue
		}

		// shadow starts fresh from the common pre-cycle env for every
		// triggered block: a block's blocking updates are visible only
		// to its own later statements, never to a
		// sibling always_ff block evaluated in the same cycle.
		shadow := map[string]bitvec.Value{}
		for k, v := range env {
			shadow[k] = v
		}
		touched := map[string]bool{}

		var pending []pendingWrite
		if err := execAlwaysFf(pb.Body, shadow, memView, mod, &pending, touched); err != nil {
			return nil, err
		}

		for name := range touched {
			inst.Regs[name] = shadow[name]
		}

		for _, w := range pending {
			if w.mem != "" {
				data := inst.Mems[w.mem]
				if w.addr >= uint64(len(data)) {
					d.DroppedWrites++
					continue
				}
				data[w.addr] = w.val
				continue
			}
			applyPendingRegWrite(inst, w)
		}
	}

	// Outputs are read from the post-commit env: a
	// register driving an output port must reflect this cycle's new
	// value, so inst.Regs is layered on top of the combinational result.
	finalEnv := map[string]bitvec.Value{}
	for k, v := range cycleInputs {
		finalEnv[k] = v
	}
	for k, v := range combOutputs {
		finalEnv[k] = v
	}
	for k, v := range inst.Regs {
		finalEnv[k] = v
	}

	outputs := map[string]bitvec.Value{}
	for _, p := range mod.OutputPorts() {
		if v, ok := finalEnv[p.Name]; ok {
			outputs[p.Name] = v
		}
	}
	return outputs, nil
}

func applyPendingRegWrite(inst *Instance, w pendingWrite) {
	cur := inst.Regs[w.reg]
	switch {
	case w.bit != nil:
		mask := uint64(1) << *w.bit
		bits := cur.Bits &^ mask
		if w.val.IsTrue() {
			bits |= mask
		}
		inst.Regs[w.reg] = bitvec.New(cur.Width, bits)
	case w.hi != nil:
		width := *w.hi - *w.lo + 1
		clearMask := ((uint64(1) << width) - 1) << *w.lo
		bits := (cur.Bits &^ clearMask) | ((w.val.Bits << *w.lo) & clearMask)
		inst.Regs[w.reg] = bitvec.New(cur.Width, bits)
	default:
		inst.Regs[w.reg] = bitvec.New(cur.Width, w.val.Bits)
	}
}
