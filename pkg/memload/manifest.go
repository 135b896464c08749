package memload

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Binding names one memory array to preload and the data file to load it
// from, expressed in YAML the way zeonica
// expresses its array configuration.
type Binding struct {
	Module string `yaml:"module"`
	Memory string `yaml:"memory"`
	File   string `yaml:"file"`
}

// Manifest is a full preload plan: every memory array a sequential test
// run should seed before its first cycle.
type Manifest struct {
	Preload []Binding `yaml:"preload"`
}

// LoadManifest reads and parses a YAML preload manifest from path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("memload: reading manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("memload: parsing manifest %s: %w", path, err)
	}
	return &m, nil
}
