// Package truthtable exhaustively enumerates a combinational module's
// input space, directly grounded on pkg/search/enumerator.go's
// enumerateRec: a recursive build-then-call-fn shape, swapping "every
// OpCode value" for "every bit combination of an input port".
package truthtable

import (
	"github.com/jwd83/svsim/pkg/ast"
	"github.com/jwd83/svsim/pkg/bitvec"
	"github.com/jwd83/svsim/pkg/comb"
	"github.com/jwd83/svsim/pkg/module"
)

// Row is one point in a module's truth table: the input binding it was
// evaluated at and the outputs it produced.
type Row struct {
	Inputs  map[string]bitvec.Value
	Outputs map[string]bitvec.Value
}

// Enumerate drives e's module through every combination of its input
// ports, evaluating each with pkg/comb. A zero-input module yields
// exactly one row, the same way enumerateRec's pos==len(seq) base case
// calls fn once on an empty prefix.
func Enumerate(e *module.Entry, cache *module.Cache) ([]Row, error) {
	ports := e.AST.InputPorts()
	var rows []Row
	inputs := make(map[string]bitvec.Value, len(ports))

	var err error
	enumerateRec(ports, 0, inputs, func() bool {
		snapshot := make(map[string]bitvec.Value, len(inputs))
		for k, v := range inputs {
			snapshot[k] = v
		}
		res, evalErr := comb.EvaluateEntry(e, snapshot, cache, nil, nil)
		if evalErr != nil {
			err = evalErr
			return false
		}
		rows = append(rows, Row{Inputs: snapshot, Outputs: res.Outputs})
		return true
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// enumerateRec recursively assigns every value to every input port in
// turn, calling fn once inputs is fully populated. fn returns false to
// abort enumeration early (propagating a fatal evaluation error).
func enumerateRec(ports []ast.Port, pos int, inputs map[string]bitvec.Value, fn func() bool) bool {
	if pos == len(ports) {
		return fn()
	}
	p := ports[pos]
	count := uint64(1) << p.Width
	for v := uint64(0); v < count; v++ {
		inputs[p.Name] = bitvec.New(p.Width, v)
		if !enumerateRec(ports, pos+1, inputs, fn) {
			return false
		}
	}
	return true
}
