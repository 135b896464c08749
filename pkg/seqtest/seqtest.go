// Package seqtest steps a sequential module through a declared sequence
// of (inputs, expected-outputs) pairs, collecting mismatches as data
// rather than stopping at the first one. Grounded on
// pkg/search/verifier.go's execSeq: a plain fold over a sequence, driving
// one state forward step by step, the same shape swapping "Z80
// instruction" for "cycle input vector" and "CPU state" for
// "seqeval.Instance".
package seqtest

import (
	"github.com/jwd83/svsim/pkg/bitvec"
	"github.com/jwd83/svsim/pkg/seqeval"
)

// Step is one point in a test sequence: the inputs to drive this cycle
// with, and the outputs expected afterward. Missing inputs default to
// zero; outputs absent from Expected are not checked.
type Step struct {
	Inputs   map[string]bitvec.Value
	Expected map[string]bitvec.Value
}

// Mismatch is one non-fatal test-assertion failure.
type Mismatch struct {
	CaseName  string
	StepIndex int
	Output    string
	Actual    bitvec.Value
	Expected  bitvec.Value
}

// StepResult is the outcome of running one Step: the outputs the engine
// actually produced plus any mismatches found against Step.Expected.
type StepResult struct {
	Outputs    map[string]bitvec.Value
	Mismatches []Mismatch
}

// RunSequence steps inst through every Step in order via driver,
// zero-filling any input port the step's Inputs map omits, and diffing
// every output the step declares an expectation for. It never stops
// early on a mismatch; only a fatal engine error (for example
// *simerr.Error{Kind: CombinationalCycle}) aborts the run.
func RunSequence(driver *seqeval.Driver, instance *seqeval.Instance, caseName string, steps []Step) ([]StepResult, error) {
	mod := instance.Entry.AST
	results := make([]StepResult, 0, len(steps))

	for i, step := range steps {
		cycleInputs := make(map[string]bitvec.Value, len(mod.InputPorts()))
		for _, p := range mod.InputPorts() {
			if v, ok := step.Inputs[p.Name]; ok {
				cycleInputs[p.Name] = v
			} else {
				cycleInputs[p.Name] = bitvec.New(p.Width, 0)
			}
		}

		outputs, err := driver.Step(instance, cycleInputs)
		if err != nil {
			return results, err
		}

		var mismatches []Mismatch
		for name, expected := range step.Expected {
			actual, ok := outputs[name]
			if !ok || actual.Bits != expected.Bits {
				mismatches = append(mismatches, Mismatch{
					CaseName:  caseName,
					StepIndex: i,
					Output:    name,
					Actual:    actual,
					Expected:  expected,
				})
			}
		}
		results = append(results, StepResult{Outputs: outputs, Mismatches: mismatches})
	}

	return results, nil
}
