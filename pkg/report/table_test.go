package report

import (
	"strings"
	"sync"
	"testing"

	"github.com/jwd83/svsim/pkg/bitvec"
)

func TestSummaryCountsPassAndFail(t *testing.T) {
	table := NewTable()
	table.Add(Outcome{Module: "nand_gate", Case: "case_0"})
	table.Add(Outcome{Module: "nand_gate", Case: "case_1", Diffs: []Diff{
		{StepIndex: -1, Output: "outY", Actual: bitvec.New(1, 0), Expected: bitvec.New(1, 1)},
	}})

	summary := table.Summary()
	if !strings.Contains(summary, "1 passed, 1 failed") {
		t.Errorf("summary = %q, missing pass/fail counts", summary)
	}
	if !strings.Contains(summary, "FAIL nand_gate/case_1") {
		t.Errorf("summary = %q, missing failing case header", summary)
	}
	if table.AllPassed() {
		t.Errorf("AllPassed() = true, want false with one failing case")
	}
}

func TestAllPassedWithOnlyPasses(t *testing.T) {
	table := NewTable()
	table.Add(Outcome{Module: "m", Case: "c0"})
	table.Add(Outcome{Module: "m", Case: "c1"})
	if !table.AllPassed() {
		t.Errorf("AllPassed() = false, want true when every outcome passed")
	}
}

func TestAddIsSafeForConcurrentWorkers(t *testing.T) {
	table := NewTable()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			table.Add(Outcome{Module: "m", Case: string(rune('a' + i%26))})
		}(i)
	}
	wg.Wait()
	if got := len(table.Outcomes()); got != 50 {
		t.Errorf("got %d outcomes, want 50", got)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	dir := t.TempDir()
	table := NewTable()
	table.Add(Outcome{Module: "m", Case: "c0"})
	ckpt := table.Checkpoint("next.sv", 3)

	path := dir + "/ckpt.gob"
	if err := SaveCheckpoint(path, ckpt); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}
	loaded, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}
	if loaded.NextFile != "next.sv" || loaded.FilesTotal != 3 || len(loaded.Outcomes) != 1 {
		t.Errorf("loaded checkpoint = %+v, want NextFile=next.sv FilesTotal=3 len(Outcomes)=1", loaded)
	}

	restored := NewTable()
	restored.Restore(loaded)
	if len(restored.Outcomes()) != 1 {
		t.Errorf("restored table has %d outcomes, want 1", len(restored.Outcomes()))
	}
}
