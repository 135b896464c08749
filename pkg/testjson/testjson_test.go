package testjson

import "testing"

func TestLoadCombinational(t *testing.T) {
	data := []byte(`[
		{"inA": 0, "inB": 0, "expect": {"outY": 1}},
		{"inA": 1, "inB": 1, "expect": {"outY": 0}}
	]`)
	cases, seq, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if seq != nil {
		t.Fatalf("got a sequential file, want combinational cases")
	}
	if len(cases) != 2 {
		t.Fatalf("got %d cases, want 2", len(cases))
	}
	if cases[0].Inputs["inA"] != 0 || cases[0].Inputs["inB"] != 0 {
		t.Errorf("case 0 inputs = %+v", cases[0].Inputs)
	}
	if cases[1].Expect["outY"] != 0 {
		t.Errorf("case 1 expect = %+v", cases[1].Expect)
	}
}

func TestLoadSequential(t *testing.T) {
	data := []byte(`{
		"sequential": true,
		"memory_files": [{"module": "cpu", "memory": "rom", "file": "prog.txt"}],
		"test_cases": [
			{"name": "basic", "sequence": [
				{"inputs": {"clk": 1, "reset": 1}, "expected": {"count": 0}},
				{"inputs": {"clk": 0}}
			]}
		]
	}`)
	cases, seq, err := Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cases != nil {
		t.Fatalf("got combinational cases, want a sequential file")
	}
	if len(seq.MemoryFiles) != 1 || seq.MemoryFiles[0].Memory != "rom" {
		t.Errorf("memory_files = %+v", seq.MemoryFiles)
	}
	if len(seq.TestCases) != 1 || seq.TestCases[0].Name != "basic" {
		t.Fatalf("test_cases = %+v", seq.TestCases)
	}
	if len(seq.TestCases[0].Sequence) != 2 {
		t.Fatalf("sequence has %d steps, want 2", len(seq.TestCases[0].Sequence))
	}
	if seq.TestCases[0].Sequence[0].Expected["count"] != 0 {
		t.Errorf("step 0 expected = %+v", seq.TestCases[0].Sequence[0].Expected)
	}
	if _, ok := seq.TestCases[0].Sequence[1].Expected["count"]; ok {
		t.Errorf("step 1 should have no expected outputs, got %+v", seq.TestCases[0].Sequence[1].Expected)
	}
}
