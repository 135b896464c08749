// Package module implements the resolver and process-wide cache: given a
// module name and the directory of its referrer, locate and parse the
// corresponding .sv file once, memoize every module it defines, and
// detect ROM primitives. Grounded on pkg/search/worker.go's
// sync.Mutex-guarded shared state, since the cache must be safe for
// concurrent reads from a parallel-across-files driver.
package module

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/jwd83/svsim/pkg/ast"
	"github.com/jwd83/svsim/pkg/parser"
	"github.com/jwd83/svsim/pkg/simerr"
)

// Entry is one cached, parsed module.
type Entry struct {
	AbsolutePath   string
	AST            *ast.Module
	IsRomPrimitive bool
	RomDataFile    string // resolved path, empty if not a ROM primitive

	mu            sync.Mutex
	gateCostKnown bool
	gateCost      int
	gateCostErr   error
}

// key identifies a cached module by absolute file path + module name,
// caching every module a file defines by absolute path + name without
// building a cyclic object graph: instances carry ModuleName, not a
// pointer to an Entry.
type key struct {
	path string
	name string
}

// Cache is the process-wide module cache. The zero value is usable.
type Cache struct {
	mu     sync.Mutex
	byKey  map[key]*Entry
	byFile map[string]bool // absolute paths already parsed, to avoid re-parsing a multi-module file
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{byKey: map[key]*Entry{}, byFile: map[string]bool{}}
}

// Clear drops every cached entry so test drivers can pick up edited
// source files without restarting.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey = map[key]*Entry{}
	c.byFile = map[string]bool{}
}

// Resolve locates `<name>.sv` in referrerDir, parses it (memoizing every
// module the file defines), and returns the requested module's Entry.
// ModuleNotFound is raised on a missing file.
func (c *Cache) Resolve(name, referrerDir string) (*Entry, error) {
	path := filepath.Join(referrerDir, name+".sv")
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, simerr.New(simerr.ModuleNotFound, simerr.Location{Module: name},
			"cannot resolve path for module %q: %v", name, err)
	}

	c.mu.Lock()
	alreadyParsed := c.byFile[absPath]
	c.mu.Unlock()

	if !alreadyParsed {
		if err := c.parseAndInsert(absPath, name); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	entry, ok := c.byKey[key{path: absPath, name: name}]
	c.mu.Unlock()
	if !ok {
		return nil, simerr.New(simerr.ModuleNotFound, simerr.Location{File: absPath, Module: name},
			"module %q not defined in %s", name, absPath)
	}
	return entry, nil
}

// parseAndInsert reads and parses absPath, inserting every module it
// defines into the cache under a single lock, so concurrent resolvers
// never race on a half-inserted file.
func (c *Cache) parseAndInsert(absPath, requestedName string) error {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return simerr.New(simerr.ModuleNotFound, simerr.Location{File: absPath, Module: requestedName},
			"module %q: %v", requestedName, err)
	}

	file, err := parser.Parse(absPath, string(data))
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.byFile[absPath] {
		return nil // raced with another worker; first insert wins
	}
	dir := filepath.Dir(absPath)
	for _, mod := range file.Modules {
		k := key{path: absPath, name: mod.Name}
		entry := &Entry{AbsolutePath: absPath, AST: mod}
		detectRomPrimitive(entry, dir)
		c.byKey[k] = entry
	}
	c.byFile[absPath] = true
	return nil
}
