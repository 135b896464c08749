// Package report collects test-case outcomes and renders the pass/fail
// summary and per-case diffs. Table is a mutex-guarded append-only slice
// so a parallel across-files driver can report from multiple goroutines
// without its own synchronization.
package report

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jwd83/svsim/pkg/bitvec"
)

// Diff is one output mismatch within a case, the rendered form of a
// seqtest.Mismatch or a combinational expect-vs-actual comparison.
type Diff struct {
	StepIndex int // -1 for a combinational (stepless) case
	Output    string
	Actual    bitvec.Value
	Expected  bitvec.Value
}

func (d Diff) String() string {
	if d.StepIndex < 0 {
		return fmt.Sprintf("%s: got %s, want %s", d.Output, d.Actual, d.Expected)
	}
	return fmt.Sprintf("step %d: %s: got %s, want %s", d.StepIndex, d.Output, d.Actual, d.Expected)
}

// Outcome is one test case's result: a module name, the case name as
// given in the test-case JSON, and every diff found (empty on a pass).
type Outcome struct {
	Module string
	Case   string
	Diffs  []Diff
}

func (o Outcome) Pass() bool { return len(o.Diffs) == 0 }

// Table accumulates Outcomes across however many modules/cases a driver
// runs, safe for concurrent Add calls.
type Table struct {
	mu       sync.Mutex
	outcomes []Outcome
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{}
}

// Add records one case's outcome.
func (t *Table) Add(o Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outcomes = append(t.outcomes, o)
}

// Outcomes returns a copy of every recorded outcome, ordered by module
// then case name for stable reporting.
func (t *Table) Outcomes() []Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Outcome, len(t.outcomes))
	copy(out, t.outcomes)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Module != out[j].Module {
			return out[i].Module < out[j].Module
		}
		return out[i].Case < out[j].Case
	})
	return out
}

// Summary renders the "N passed, M failed" line plus per-case diffs for
// every failing case, in the user-visible form describes.
func (t *Table) Summary() string {
	outcomes := t.Outcomes()
	passed, failed := 0, 0
	var sb []byte
	for _, o := range outcomes {
		if o.Pass() {
			passed++
			continue
		}
		failed++
		sb = append(sb, fmt.Sprintf("FAIL %s/%s:\n", o.Module, o.Case)...)
		for _, d := range o.Diffs {
			sb = append(sb, fmt.Sprintf("  %s\n", d)...)
		}
	}
	sb = append(sb, fmt.Sprintf("%d passed, %d failed\n", passed, failed)...)
	return string(sb)
}

// AllPassed reports whether every recorded outcome passed, the boolean a
// driver's process exit code is built from.
func (t *Table) AllPassed() bool {
	for _, o := range t.Outcomes() {
		if !o.Pass() {
			return false
		}
	}
	return true
}
