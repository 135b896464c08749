package comb

import (
	"os"

	"github.com/jwd83/svsim/pkg/bitvec"
	"github.com/jwd83/svsim/pkg/memload"
	"github.com/jwd83/svsim/pkg/module"
	"github.com/jwd83/svsim/pkg/simerr"
)

// evaluateRom treats a ROM-primitive entry as a pure
// combinational lookup: its single output is the data word stored at the
// address given on its single input, with out-of-range reads yielding
// zero. The data file is decoded fresh each call; truthtable/seqeval
// callers only hit this for small ROMs, so no caching is attempted.
func evaluateRom(e *module.Entry, inputs map[string]bitvec.Value) (Result, error) {
	addrPort := e.AST.InputPorts()[0]
	dataPort := e.AST.OutputPorts()[0]

	addr, ok := inputs[addrPort.Name]
	if !ok {
		return Result{}, simerr.New(simerr.PortWidthMismatch, simerr.Location{Module: e.AST.Name},
			"rom %q: missing address input %q", e.AST.Name, addrPort.Name)
	}

	if e.RomDataFile == "" {
		return Result{}, simerr.New(simerr.RomDataMissing, simerr.Location{Module: e.AST.Name},
			"rom %q: no data file found for module", e.AST.Name)
	}
	f, err := os.Open(e.RomDataFile)
	if err != nil {
		return Result{}, simerr.New(simerr.RomDataMissing, simerr.Location{Module: e.AST.Name},
			"rom %q: %v", e.AST.Name, err)
	}
	defer f.Close()

	data, err := memload.DecodeDataFile(f, int(dataPort.Width))
	if err != nil {
		return Result{}, simerr.New(simerr.RomDataMissing, simerr.Location{Module: e.AST.Name},
			"rom %q: %v", e.AST.Name, err)
	}

	word, ok := data[addr.Bits]
	if !ok {
		word = bitvec.New(dataPort.Width, 0)
	}

	return Result{
		Outputs:  map[string]bitvec.Value{dataPort.Name: word},
		GateCost: 0,
	}, nil
}
