// Package driver wires the test-case loader (pkg/testjson), the module
// cache (pkg/module), both evaluator facades (pkg/truthtable,
// pkg/seqtest), and the report collector (pkg/report) into the
// external-facing "run a test file against a top module" operation. RunDir
// fans files out across a bounded pool of numWorkers goroutines that drain
// a shared task channel, sharing a single *module.Cache behind its own
// mutex.
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/jwd83/svsim/pkg/ast"
	"github.com/jwd83/svsim/pkg/bitvec"
	"github.com/jwd83/svsim/pkg/comb"
	"github.com/jwd83/svsim/pkg/memload"
	"github.com/jwd83/svsim/pkg/module"
	"github.com/jwd83/svsim/pkg/report"
	"github.com/jwd83/svsim/pkg/seqeval"
	"github.com/jwd83/svsim/pkg/seqtest"
	"github.com/jwd83/svsim/pkg/testjson"
)

// toValues widens a raw integer map to bitvec.Values at each named
// port's declared width, zero-filling any port raw omits.
func toValues(raw map[string]uint64, ports []ast.Port) map[string]bitvec.Value {
	out := make(map[string]bitvec.Value, len(ports))
	for _, p := range ports {
		v := raw[p.Name]
		out[p.Name] = bitvec.New(p.Width, v)
	}
	return out
}

// expectedValues converts only the output names raw actually names, leaving
// every other output unchecked, at each port's declared width.
func expectedValues(raw map[string]uint64, ports []ast.Port) map[string]bitvec.Value {
	out := make(map[string]bitvec.Value, len(raw))
	for name, v := range raw {
		for _, p := range ports {
			if p.Name == name {
				out[name] = bitvec.New(p.Width, v)
			}
		}
	}
	return out
}

// RunFile loads svPath's top module and tests it against the JSON test
// cases in jsonPath, recording every outcome into table. It returns a
// non-nil error only for a fatal engine error; test-assertion mismatches
// are recorded in table, not returned.
func RunFile(svPath, jsonPath string, cache *module.Cache, table *report.Table) error {
	dir := filepath.Dir(svPath)
	name := fileModuleName(svPath)

	entry, err := cache.Resolve(name, dir)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("driver: reading %s: %w", jsonPath, err)
	}

	combCases, seqFile, err := testjson.Load(data)
	if err != nil {
		return err
	}

	if seqFile != nil {
		return runSequential(entry, seqFile, dir, cache, table)
	}
	return runCombinational(entry, combCases, name, cache, table)
}

func fileModuleName(svPath string) string {
	base := filepath.Base(svPath)
	return base[:len(base)-len(filepath.Ext(base))]
}

func runCombinational(entry *module.Entry, cases []testjson.CombinationalCase, name string, cache *module.Cache, table *report.Table) error {
	mod := entry.AST
	for i, tc := range cases {
		inputs := toValues(tc.Inputs, mod.InputPorts())
		result, err := comb.EvaluateEntry(entry, inputs, cache, nil, nil)
		if err != nil {
			return err
		}
		var diffs []report.Diff
		for outName, want := range tc.Expect {
			var expected bitvec.Value
			for _, p := range mod.OutputPorts() {
				if p.Name == outName {
					expected = bitvec.New(p.Width, want)
				}
			}
			got := result.Outputs[outName]
			if got.Bits != expected.Bits {
				diffs = append(diffs, report.Diff{StepIndex: -1, Output: outName, Actual: got, Expected: expected})
			}
		}
		table.Add(report.Outcome{Module: name, Case: fmt.Sprintf("case_%d", i), Diffs: diffs})
	}
	return nil
}

func runSequential(entry *module.Entry, seqFile *testjson.SequentialFile, dir string, cache *module.Cache, table *report.Table) error {
	mod := entry.AST
	driverEval := seqeval.NewDriver(cache)

	for _, c := range seqFile.TestCases {
		inst := seqeval.NewInstance(entry)
		if err := preloadMemories(inst, seqFile.MemoryFiles, mod.Name, dir); err != nil {
			return err
		}

		steps := make([]seqtest.Step, len(c.Sequence))
		for i, s := range c.Sequence {
			steps[i] = seqtest.Step{
				Inputs:   toValues(s.Inputs, mod.InputPorts()),
				Expected: expectedValues(s.Expected, mod.OutputPorts()),
			}
		}

		results, err := seqtest.RunSequence(driverEval, inst, c.Name, steps)
		if err != nil {
			return err
		}
		var diffs []report.Diff
		for _, r := range results {
			for _, m := range r.Mismatches {
				diffs = append(diffs, report.Diff{StepIndex: m.StepIndex, Output: m.Output, Actual: m.Actual, Expected: m.Expected})
			}
		}
		table.Add(report.Outcome{Module: mod.Name, Case: c.Name, Diffs: diffs})
	}
	return nil
}

// preloadMemories applies every {module, memory, file} binding that
// targets topModuleName into inst's memory arrays. A binding naming a
// different module is ignored; this driver only preloads the top
// instance's own memories, nested instances preload lazily through the
// ROM-primitive path instead.
func preloadMemories(inst *seqeval.Instance, bindings []testjson.MemoryFileBinding, topModuleName, dir string) error {
	for _, b := range bindings {
		if b.Module != topModuleName {
			continue
		}
		mem, ok := inst.Mems[b.Memory]
		if !ok {
			return fmt.Errorf("driver: memory_files: module %q has no memory %q", b.Module, b.Memory)
		}
		var elemWidth uint8
		for _, m := range inst.Entry.AST.Memories {
			if m.Name == b.Memory {
				elemWidth = m.ElementWidth
			}
		}
		path := b.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("driver: memory_files: opening %s: %w", path, err)
		}
		data, err := memload.DecodeDataFile(f, int(elemWidth))
		f.Close()
		if err != nil {
			return fmt.Errorf("driver: memory_files: decoding %s: %w", path, err)
		}
		for addr, word := range data {
			if addr < uint64(len(mem)) {
				mem[addr] = word
			}
		}
	}
	return nil
}

// fileTask pairs a top-level .sv module with its companion test-case
// JSON file, the unit of work RunDir fans out across workers.
type fileTask struct {
	SvPath   string
	JSONPath string
}

// RunDir walks dir for every `<name>.sv` that has a companion
// `<name>.json` test-case file and tests each one, using numWorkers
// goroutines sharing one cache. numWorkers <= 0 defaults to
// runtime.NumCPU().
func RunDir(dir string, numWorkers int, cache *module.Cache, table *report.Table) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("driver: reading %s: %w", dir, err)
	}

	var tasks []fileTask
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".sv" {
			continue
		}
		svPath := filepath.Join(dir, e.Name())
		jsonPath := svPath[:len(svPath)-len(".sv")] + ".json"
		if _, err := os.Stat(jsonPath); err == nil {
			tasks = append(tasks, fileTask{SvPath: svPath, JSONPath: jsonPath})
		}
	}

	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(tasks) && len(tasks) > 0 {
		numWorkers = len(tasks)
	}

	ch := make(chan fileTask, len(tasks))
	for _, t := range tasks {
		ch <- t
	}
	close(ch)

	var mu sync.Mutex
	var firstErr error
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range ch {
				if err := RunFile(t.SvPath, t.JSONPath, cache, table); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("driver: %s: %w", t.SvPath, err)
					}
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}
