package module

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jwd83/svsim/pkg/ast"
)

// romPrefix is the naming convention that flags a module as a candidate
// ROM primitive.
const romPrefix = "rom_"

// detectRomPrimitive implements ROM-primitive rule: a module
// whose name begins with "rom_", has no assignments or procedural blocks,
// and has exactly one address-typed input and one data-typed output is
// treated as a synchronous/combinational lookup table. Its data file is
// searched for in three locations in order.
func detectRomPrimitive(e *Entry, referrerDir string) {
	mod := e.AST
	if !strings.HasPrefix(mod.Name, romPrefix) {
		return
	}
	if len(mod.ContinuousAssigns) != 0 || len(mod.ProceduralBlocks) != 0 {
		return
	}
	inputs := mod.InputPorts()
	outputs := mod.OutputPorts()
	if len(inputs) != 1 || len(outputs) != 1 {
		return
	}

	e.IsRomPrimitive = true
	dataName := strings.TrimPrefix(mod.Name, romPrefix) + ".txt"
	e.RomDataFile = findRomDataFile(dataName, referrerDir)
}

// findRomDataFile searches, in order: (1) the referrer's directory,
// (2) a sibling roms/ directory, (3) a roms/ directory relative to the
// working directory. Returns "" if none exist; the caller (pkg/comb or
// pkg/seqeval, whichever drives the ROM's lookup) raises *RomDataMissing
// lazily, the first time the ROM's output is actually needed.
func findRomDataFile(dataName, referrerDir string) string {
	candidates := []string{
		filepath.Join(referrerDir, dataName),
		filepath.Join(referrerDir, "roms", dataName),
		filepath.Join("roms", dataName),
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

// addressPort and dataPort return the ROM's single input/output port,
// valid only when e.IsRomPrimitive is true.
func addressPort(mod *ast.Module) ast.Port { return mod.InputPorts()[0] }
func dataPort(mod *ast.Module) ast.Port    { return mod.OutputPorts()[0] }
