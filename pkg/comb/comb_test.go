package comb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jwd83/svsim/pkg/bitvec"
	"github.com/jwd83/svsim/pkg/module"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func resolve(t *testing.T, c *module.Cache, dir, name string) *module.Entry {
	t.Helper()
	e, err := c.Resolve(name, dir)
	if err != nil {
		t.Fatalf("resolve %s: %v", name, err)
	}
	return e
}

func bit(b uint64) bitvec.Value { return bitvec.New(1, b) }

func TestNandGateTruthTable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nand_gate.sv", `module nand_gate(input logic inA, input logic inB, output logic outY);
  assign outY = ~(inA & inB);
endmodule
`)
	c := module.New()
	e := resolve(t, c, dir, "nand_gate")

	cases := []struct{ a, b, y uint64 }{
		{0, 0, 1}, {0, 1, 1}, {1, 0, 1}, {1, 1, 0},
	}
	for _, tc := range cases {
		res, err := EvaluateEntry(e, map[string]bitvec.Value{"inA": bit(tc.a), "inB": bit(tc.b)}, c, nil, nil)
		if err != nil {
			t.Fatalf("eval(%d,%d): %v", tc.a, tc.b, err)
		}
		if got := res.Outputs["outY"].Bits; got != tc.y {
			t.Errorf("nand(%d,%d) = %d, want %d", tc.a, tc.b, got, tc.y)
		}
		if res.GateCost != 1 {
			t.Errorf("gate cost = %d, want 1", res.GateCost)
		}
	}
}

func TestFullAdderFromHalfAdders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nand_gate.sv", `module nand_gate(input logic inA, input logic inB, output logic outY);
  assign outY = ~(inA & inB);
endmodule
`)
	writeFile(t, dir, "xor_gate.sv", `module xor_gate(input logic inA, input logic inB, output logic outY);
  assign outY = inA ^ inB;
endmodule
`)
	writeFile(t, dir, "and_gate.sv", `module and_gate(input logic inA, input logic inB, output logic outY);
  assign outY = inA & inB;
endmodule
`)
	writeFile(t, dir, "or_gate.sv", `module or_gate(input logic inA, input logic inB, output logic outY);
  assign outY = inA | inB;
endmodule
`)
	writeFile(t, dir, "half_adder.sv", `module half_adder(input logic a, input logic b, output logic sum, output logic carry);
  xor_gate x1(.inA(a), .inB(b), .outY(sum));
  and_gate a1(.inA(a), .inB(b), .outY(carry));
endmodule
`)
	writeFile(t, dir, "full_adder.sv", `module full_adder(input logic a, input logic b, input logic cin, output logic sum, output logic cout);
  logic s1, c1, c2;
  half_adder h1(.a(a), .b(b), .sum(s1), .carry(c1));
  half_adder h2(.a(s1), .b(cin), .sum(sum), .carry(c2));
  or_gate o1(.inA(c1), .inB(c2), .outY(cout));
endmodule
`)
	c := module.New()
	e := resolve(t, c, dir, "full_adder")

	for a := uint64(0); a <= 1; a++ {
		for b := uint64(0); b <= 1; b++ {
			for cin := uint64(0); cin <= 1; cin++ {
				res, err := EvaluateEntry(e, map[string]bitvec.Value{
					"a": bit(a), "b": bit(b), "cin": bit(cin),
				}, c, nil, nil)
				if err != nil {
					t.Fatalf("eval(%d,%d,%d): %v", a, b, cin, err)
				}
				total := a + b + cin
				wantSum := total & 1
				wantCout := (total >> 1) & 1
				if res.Outputs["sum"].Bits != wantSum || res.Outputs["cout"].Bits != wantCout {
					t.Errorf("full_adder(%d,%d,%d) = sum=%d cout=%d, want sum=%d cout=%d",
						a, b, cin, res.Outputs["sum"].Bits, res.Outputs["cout"].Bits, wantSum, wantCout)
				}
			}
		}
	}
}

func TestRippleCarryAdderWraparound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "adder4.sv", `module adder4(input logic [3:0] a, input logic [3:0] b, output logic [3:0] sum, output logic cout);
  logic [4:0] total;
  assign total = {1'b0, a} + {1'b0, b};
  assign sum = total[3:0];
  assign cout = total[4];
endmodule
`)
	c := module.New()
	e := resolve(t, c, dir, "adder4")

	res, err := EvaluateEntry(e, map[string]bitvec.Value{
		"a": bitvec.New(4, 15),
		"b": bitvec.New(4, 1),
	}, c, nil, nil)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if res.Outputs["sum"].Bits != 0 {
		t.Errorf("sum = %d, want 0 (wraparound)", res.Outputs["sum"].Bits)
	}
	if res.Outputs["cout"].Bits != 1 {
		t.Errorf("cout = %d, want 1", res.Outputs["cout"].Bits)
	}
}

func TestZeroInputModule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vcc.sv", `module vcc(output logic outY);
  assign outY = 1'b1;
endmodule
`)
	c := module.New()
	e := resolve(t, c, dir, "vcc")

	res, err := EvaluateEntry(e, map[string]bitvec.Value{}, c, nil, nil)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if res.Outputs["outY"].Bits != 1 {
		t.Errorf("outY = %d, want 1", res.Outputs["outY"].Bits)
	}
}

func TestCombinationalCycleDetected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cyclic.sv", `module cyclic(input logic a, output logic y);
  logic x;
  assign y = x;
  assign x = y;
endmodule
`)
	c := module.New()
	e := resolve(t, c, dir, "cyclic")

	_, err := EvaluateEntry(e, map[string]bitvec.Value{"a": bit(0)}, c, nil, nil)
	if err == nil {
		t.Fatal("expected CombinationalCycle error")
	}
}

func TestAlwaysCombIfElse(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mux2.sv", `module mux2(input logic sel, input logic a, input logic b, output logic y);
  always_comb begin
    if (sel)
      y = b;
    else
      y = a;
  end
endmodule
`)
	c := module.New()
	e := resolve(t, c, dir, "mux2")

	res, err := EvaluateEntry(e, map[string]bitvec.Value{"sel": bit(0), "a": bit(1), "b": bit(0)}, c, nil, nil)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if res.Outputs["y"].Bits != 1 {
		t.Errorf("mux2(sel=0): y = %d, want 1", res.Outputs["y"].Bits)
	}

	res, err = EvaluateEntry(e, map[string]bitvec.Value{"sel": bit(1), "a": bit(1), "b": bit(0)}, c, nil, nil)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if res.Outputs["y"].Bits != 0 {
		t.Errorf("mux2(sel=1): y = %d, want 0", res.Outputs["y"].Bits)
	}
}

func TestGateCostPropagatesThroughHierarchy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nand_gate.sv", `module nand_gate(input logic inA, input logic inB, output logic outY);
  assign outY = ~(inA & inB);
endmodule
`)
	writeFile(t, dir, "and_gate.sv", `module and_gate(input logic inA, input logic inB, output logic outY);
  logic n;
  nand_gate g1(.inA(inA), .inB(inB), .outY(n));
  nand_gate g2(.inA(n), .inB(n), .outY(outY));
endmodule
`)
	c := module.New()
	e := resolve(t, c, dir, "and_gate")

	res, err := EvaluateEntry(e, map[string]bitvec.Value{"inA": bit(1), "inB": bit(1)}, c, nil, nil)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if res.GateCost != 2 {
		t.Errorf("gate cost = %d, want 2", res.GateCost)
	}
}

func TestSignedComparisonUsesTwosComplementOrdering(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "signed_cmp.sv", `module signed_cmp(input logic signed [7:0] a, input logic signed [7:0] b, output logic lt);
  assign lt = (a < b);
endmodule
`)
	c := module.New()
	e := resolve(t, c, dir, "signed_cmp")

	// a = -1 (8'hFF), b = 1: unsigned bit-pattern comparison would say
	// 255 > 1 and report lt = 0; signed comparison must report lt = 1.
	res, err := EvaluateEntry(e, map[string]bitvec.Value{"a": bitvec.New(8, 0xFF), "b": bitvec.New(8, 1)}, c, nil, nil)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if res.Outputs["lt"].Bits != 1 {
		t.Errorf("signed_cmp(a=-1, b=1): lt = %d, want 1", res.Outputs["lt"].Bits)
	}
}

func TestUnsignedComparisonIgnoresSignBit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "unsigned_cmp.sv", `module unsigned_cmp(input logic [7:0] a, input logic [7:0] b, output logic lt);
  assign lt = (a < b);
endmodule
`)
	c := module.New()
	e := resolve(t, c, dir, "unsigned_cmp")

	// Same bit patterns as the signed test, but neither port is declared
	// signed: 0xFF must compare as 255, not -1.
	res, err := EvaluateEntry(e, map[string]bitvec.Value{"a": bitvec.New(8, 0xFF), "b": bitvec.New(8, 1)}, c, nil, nil)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if res.Outputs["lt"].Bits != 0 {
		t.Errorf("unsigned_cmp(a=255, b=1): lt = %d, want 0", res.Outputs["lt"].Bits)
	}
}

func TestAlwaysCombCaseMatchesNarrowSelectorAgainstWideLiteralArms(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "opmux.sv", `module opmux(input logic [1:0] opcode, output logic [7:0] y);
  always_comb begin
    case (opcode)
      0: y = 8'd10;
      1: y = 8'd20;
      2: y = 8'd30;
      default: y = 8'd99;
    endcase
  end
endmodule
`)
	c := module.New()
	e := resolve(t, c, dir, "opmux")

	cases := []struct {
		opcode uint64
		y      uint64
	}{
		{0, 10}, {1, 20}, {2, 30}, {3, 99},
	}
	for _, tc := range cases {
		res, err := EvaluateEntry(e, map[string]bitvec.Value{"opcode": bitvec.New(2, tc.opcode)}, c, nil, nil)
		if err != nil {
			t.Fatalf("eval(opcode=%d): %v", tc.opcode, err)
		}
		if got := res.Outputs["y"].Bits; got != tc.y {
			t.Errorf("opmux(opcode=%d) = %d, want %d", tc.opcode, got, tc.y)
		}
	}
}
