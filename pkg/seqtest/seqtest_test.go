package seqtest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jwd83/svsim/pkg/bitvec"
	"github.com/jwd83/svsim/pkg/module"
	"github.com/jwd83/svsim/pkg/seqeval"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func bit(b uint64) bitvec.Value { return bitvec.New(1, b) }
func w8(v uint64) bitvec.Value  { return bitvec.New(8, v) }

const counterSrc = `module counter8(input logic clk, input logic reset, input logic enable, output logic [7:0] count);
  logic [7:0] count;
  always_ff @(posedge clk) begin
    if (reset)
      count <= 8'd0;
    else if (enable)
      count <= count + 8'd1;
  end
endmodule
`

func TestRunSequenceCollectsEndToEndScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "counter8.sv", counterSrc)
	cache := module.New()
	entry, err := cache.Resolve("counter8", dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	driver := seqeval.NewDriver(cache)
	inst := seqeval.NewInstance(entry)

	steps := []Step{
		{Inputs: map[string]bitvec.Value{"clk": bit(0), "reset": bit(1), "enable": bit(0)}},
		{Inputs: map[string]bitvec.Value{"clk": bit(1), "reset": bit(1), "enable": bit(0)}, Expected: map[string]bitvec.Value{"count": w8(0)}},
		{Inputs: map[string]bitvec.Value{"clk": bit(0), "reset": bit(0), "enable": bit(1)}},
		{Inputs: map[string]bitvec.Value{"clk": bit(1), "reset": bit(0), "enable": bit(1)}, Expected: map[string]bitvec.Value{"count": w8(1)}},
	}

	results, err := RunSequence(driver, inst, "counts_up", steps)
	if err != nil {
		t.Fatalf("RunSequence: %v", err)
	}
	if len(results) != len(steps) {
		t.Fatalf("got %d results, want %d", len(results), len(steps))
	}
	for i, r := range results {
		if len(r.Mismatches) != 0 {
			t.Errorf("step %d: unexpected mismatches %+v", i, r.Mismatches)
		}
	}
}

func TestRunSequenceReportsMismatchWithoutStopping(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "counter8.sv", counterSrc)
	cache := module.New()
	entry, err := cache.Resolve("counter8", dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	driver := seqeval.NewDriver(cache)
	inst := seqeval.NewInstance(entry)

	steps := []Step{
		{Inputs: map[string]bitvec.Value{"clk": bit(0), "reset": bit(1), "enable": bit(0)}},
		// Deliberately wrong expectation: count is 0, not 9, after reset.
		{Inputs: map[string]bitvec.Value{"clk": bit(1), "reset": bit(1), "enable": bit(0)}, Expected: map[string]bitvec.Value{"count": w8(9)}},
		{Inputs: map[string]bitvec.Value{"clk": bit(0), "reset": bit(0), "enable": bit(1)}},
		{Inputs: map[string]bitvec.Value{"clk": bit(1), "reset": bit(0), "enable": bit(1)}, Expected: map[string]bitvec.Value{"count": w8(1)}},
	}

	results, err := RunSequence(driver, inst, "bad_expectation", steps)
	if err != nil {
		t.Fatalf("RunSequence: %v", err)
	}
	if len(results[1].Mismatches) != 1 {
		t.Fatalf("step 1: got %d mismatches, want 1", len(results[1].Mismatches))
	}
	if len(results[3].Mismatches) != 0 {
		t.Errorf("step 3 should still be checked and pass after step 1's mismatch: %+v", results[3].Mismatches)
	}
}

func TestRunSequenceDefaultsMissingInputsToZero(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "counter8.sv", counterSrc)
	cache := module.New()
	entry, err := cache.Resolve("counter8", dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	driver := seqeval.NewDriver(cache)
	inst := seqeval.NewInstance(entry)

	// Omit "enable" entirely; it must default to 0 (held count).
	steps := []Step{
		{Inputs: map[string]bitvec.Value{"clk": bit(0), "reset": bit(1)}},
		{Inputs: map[string]bitvec.Value{"clk": bit(1), "reset": bit(1)}},
		{Inputs: map[string]bitvec.Value{"clk": bit(0), "reset": bit(0)}},
		{Inputs: map[string]bitvec.Value{"clk": bit(1), "reset": bit(0)}, Expected: map[string]bitvec.Value{"count": w8(0)}},
	}
	results, err := RunSequence(driver, inst, "idle", steps)
	if err != nil {
		t.Fatalf("RunSequence: %v", err)
	}
	if len(results[3].Mismatches) != 0 {
		t.Errorf("expected count to hold at 0 with enable defaulted low, got mismatches %+v", results[3].Mismatches)
	}
}
