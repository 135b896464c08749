package module

import "path/filepath"

func dirOf(absPath string) string { return filepath.Dir(absPath) }

// nandGateName is the single recognized primitive leaf.
const nandGateName = "nand_gate"

// GateCost returns the recursive primitive-gate count for e's module:
// nand_gate itself contributes 1; any other module contributes the sum of
// its children's costs; a childless module that isn't nand_gate
// contributes 0. The result is memoized on the entry. A cycle in the instance
// graph yields 0 for the cycle, detected via the in-progress set `visiting`
// rather than failing the whole evaluation.
func (c *Cache) GateCost(e *Entry) (int, []string) {
	e.mu.Lock()
	if e.gateCostKnown {
		cost := e.gateCost
		e.mu.Unlock()
		return cost, nil
	}
	e.mu.Unlock()

	var cycles []string
	visiting := map[*Entry]bool{}
	cost := c.gateCostRec(e, visiting, &cycles)

	e.mu.Lock()
	e.gateCostKnown = true
	e.gateCost = cost
	e.mu.Unlock()

	return cost, cycles
}

func (c *Cache) gateCostRec(e *Entry, visiting map[*Entry]bool, cycles *[]string) int {
	e.mu.Lock()
	if e.gateCostKnown {
		cost := e.gateCost
		e.mu.Unlock()
		return cost
	}
	e.mu.Unlock()

	if visiting[e] {
		*cycles = append(*cycles, e.AST.Name)
		return 0
	}
	visiting[e] = true
	defer delete(visiting, e)

	if e.AST.Name == nandGateName {
		return 1
	}
	if len(e.AST.ChildInstances) == 0 {
		return 0
	}

	dir := dirOf(e.AbsolutePath)
	total := 0
	for _, inst := range e.AST.ChildInstances {
		child, err := c.Resolve(inst.ModuleName, dir)
		if err != nil {
			// Unresolvable child contributes nothing to the count; the
			// error itself already surfaced (or will) through the normal
			// evaluation path that instantiates this module.
			continue
		}
		total += c.gateCostRec(child, visiting, cycles)
	}
	return total
}
