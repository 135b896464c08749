package report

import (
	"encoding/gob"
	"os"

	"github.com/jwd83/svsim/pkg/bitvec"
)

// Checkpoint holds enough state for a directory-walking driver to resume
// a partial run: every outcome recorded so far, plus which file path to
// resume from. The resumable unit is "which source file has already been
// tested", not a position within one test case.
type Checkpoint struct {
	Outcomes   []Outcome
	NextFile   string // path of the next file to test, empty if none remain
	FilesTotal int
}

func init() {
	gob.Register(bitvec.Value{})
}

// SaveCheckpoint writes ckpt to path.
func SaveCheckpoint(path string, ckpt *Checkpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(ckpt)
}

// LoadCheckpoint reads a Checkpoint previously written by SaveCheckpoint.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ckpt Checkpoint
	if err := gob.NewDecoder(f).Decode(&ckpt); err != nil {
		return nil, err
	}
	return &ckpt, nil
}

// Restore seeds t with every outcome ckpt already recorded, so a resumed
// run's Summary() reflects work done before the restart.
func (t *Table) Restore(ckpt *Checkpoint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outcomes = append(t.outcomes, ckpt.Outcomes...)
}

// Checkpoint snapshots t's current outcomes plus the driver's cursor into
// a Checkpoint ready for SaveCheckpoint.
func (t *Table) Checkpoint(nextFile string, filesTotal int) *Checkpoint {
	return &Checkpoint{Outcomes: t.Outcomes(), NextFile: nextFile, FilesTotal: filesTotal}
}
