// Package testjson decodes the external test-case JSON format. It stops at
// plain Go maps/slices of integers; turning those into width-correct
// bitvec.Values requires a module's port declarations, which is
// pkg/driver's job, not this package's. testjson only owns the file
// format.
package testjson

import (
	"encoding/json"
	"fmt"
)

// CombinationalCase is one entry of a combinational test-case array: an
// input-name -> integer map plus the expected output-name -> integer map
// under the "expect" key.
type CombinationalCase struct {
	Inputs map[string]uint64
	Expect map[string]uint64
}

func (c *CombinationalCase) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Inputs = map[string]uint64{}
	for k, v := range raw {
		if k == "expect" {
			if err := json.Unmarshal(v, &c.Expect); err != nil {
				return fmt.Errorf("testjson: decoding \"expect\": %w", err)
			}
			continue
		}
		var n uint64
		if err := json.Unmarshal(v, &n); err != nil {
			return fmt.Errorf("testjson: decoding input %q: %w", k, err)
		}
		c.Inputs[k] = n
	}
	return nil
}

// MemoryFileBinding is one {module, memory, file} preload triple from a
// sequential test file's "memory_files" key.
type MemoryFileBinding struct {
	Module string `json:"module"`
	Memory string `json:"memory"`
	File   string `json:"file"`
}

// Step is one {inputs, expected} entry of a sequential case's "sequence".
type Step struct {
	Inputs   map[string]uint64 `json:"inputs"`
	Expected map[string]uint64 `json:"expected"`
}

// SequentialCase is one named sequence of Steps.
type SequentialCase struct {
	Name     string `json:"name"`
	Sequence []Step `json:"sequence"`
}

// SequentialFile is the top-level shape of a sequential test-case file.
type SequentialFile struct {
	Sequential  bool                `json:"sequential"`
	MemoryFiles []MemoryFileBinding `json:"memory_files"`
	TestCases   []SequentialCase    `json:"test_cases"`
}

// Load decodes either shape from data: a sequential file always carries
// "sequential": true at the top level; anything else is treated as a
// combinational test-case array.
func Load(data []byte) (combinational []CombinationalCase, sequential *SequentialFile, err error) {
	var probe struct {
		Sequential bool `json:"sequential"`
	}
	// A bare JSON array never unmarshals into probe's struct type; that
	// error tells us it must be the combinational array form.
	if err := json.Unmarshal(data, &probe); err == nil && probe.Sequential {
		var sf SequentialFile
		if err := json.Unmarshal(data, &sf); err != nil {
			return nil, nil, fmt.Errorf("testjson: decoding sequential file: %w", err)
		}
		return nil, &sf, nil
	}

	var cases []CombinationalCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, nil, fmt.Errorf("testjson: decoding combinational cases: %w", err)
	}
	return cases, nil, nil
}
