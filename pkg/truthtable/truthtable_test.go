package truthtable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jwd83/svsim/pkg/module"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestEnumerateNandGate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nand_gate.sv", `module nand_gate(input logic inA, input logic inB, output logic outY);
  assign outY = ~(inA & inB);
endmodule
`)
	c := module.New()
	e, err := c.Resolve("nand_gate", dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	rows, err := Enumerate(e, c)
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	want := map[[2]uint64]uint64{
		{0, 0}: 1, {0, 1}: 1, {1, 0}: 1, {1, 1}: 0,
	}
	for _, r := range rows {
		key := [2]uint64{r.Inputs["inA"].Bits, r.Inputs["inB"].Bits}
		if r.Outputs["outY"].Bits != want[key] {
			t.Errorf("row %v: outY = %d, want %d", key, r.Outputs["outY"].Bits, want[key])
		}
	}
}

func TestEnumerateZeroInputModuleYieldsOneRow(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vcc.sv", `module vcc(output logic outY);
  assign outY = 1'b1;
endmodule
`)
	c := module.New()
	e, err := c.Resolve("vcc", dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	rows, err := Enumerate(e, c)
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want exactly 1", len(rows))
	}
	if rows[0].Outputs["outY"].Bits != 1 {
		t.Errorf("outY = %d, want 1", rows[0].Outputs["outY"].Bits)
	}
}

// TestEnumerateRomPrimitive exercises end-to-end scenario 5: a rom_
// primitive with a 2-bit address and 8-bit data, enumerated through its
// full address range.
func TestEnumerateRomPrimitive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rom_deadbeef.sv", `module rom_deadbeef(input logic [1:0] addr, output logic [7:0] data);
endmodule
`)
	writeFile(t, dir, "deadbeef.txt", "11011110\n10101101\n10111110\n11101111\n")

	c := module.New()
	e, err := c.Resolve("rom_deadbeef", dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	rows, err := Enumerate(e, c)
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	want := map[uint64]uint64{0: 222, 1: 173, 2: 190, 3: 239}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	for _, r := range rows {
		addr := r.Inputs["addr"].Bits
		if got := r.Outputs["data"].Bits; got != want[addr] {
			t.Errorf("rom[%d] = %d, want %d", addr, got, want[addr])
		}
	}
}

func TestEnumerateReportsGateCost(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nand_gate.sv", `module nand_gate(input logic inA, input logic inB, output logic outY);
  assign outY = ~(inA & inB);
endmodule
`)
	c := module.New()
	e, err := c.Resolve("nand_gate", dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := Enumerate(e, c); err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	cost, _ := c.GateCost(e)
	if cost != 1 {
		t.Errorf("GateCost = %d, want 1", cost)
	}
}
