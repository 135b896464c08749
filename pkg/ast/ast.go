// Package ast defines the node types the parser builds and the evaluators
// consume. Every node carries its source Pos, the way
// mna-nenuphar/lang/compiler threads token.Pos through its AST so errors
// downstream of parsing can still point at source text.
package ast

import "github.com/jwd83/svsim/pkg/lexer"

// Pos pins a node to its origin in source.
type Pos = lexer.Pos

// Direction is a port's signal direction.
type Direction int

const (
	Input Direction = iota
	Output
)

// Port is a module input or output. Scalar ports have Width 1.
type Port struct {
	Name      string
	Direction Direction
	Width     uint8
	Signed    bool
	Pos       Pos
}

// Net is an intermediate wire/logic/reg declaration. Width is the width
// of its declared range, or 1 when the declaration has no range.
type Net struct {
	Name   string
	Width  uint8
	Signed bool
	Pos    Pos
}

// Memory is a declared register array: reg [W-1:0] name [D-1:0].
type Memory struct {
	Name         string
	ElementWidth uint8
	Depth        uint64
	Pos          Pos
}

// Lvalue is the target of an assignment.
type Lvalue struct {
	Name string
	// Kind selects which of the fields below is meaningful.
	Kind LvalueKind
	Bit  Expr // LvalueBit: name[Bit]
	Hi   Expr // LvalueRange: name[Hi:Lo]
	Lo   Expr
	Addr Expr // LvalueMemory: name[Addr]
	Pos  Pos
}

type LvalueKind int

const (
	LvalueWhole LvalueKind = iota
	LvalueBit
	LvalueRange
	LvalueMemory
)

// AssignKind distinguishes the three assignment flavors.
type AssignKind int

const (
	Continuous AssignKind = iota
	Blocking
	NonBlocking
)

// Assign is one assignment statement or continuous-assign declaration.
type Assign struct {
	Kind   AssignKind
	Target Lvalue
	Value  Expr
	Pos    Pos
}

// Instance is a child module instantiation.
type Instance struct {
	ModuleName string
	Label      string
	// PortBindings maps formal port name -> actual expression for named
	// (.port(expr)) binding syntax. The parser leaves it empty for
	// positional syntax; pkg/comb maps Positional onto the submodule's
	// declared port order at evaluation time, since the submodule AST may
	// not be loaded yet when the instance is parsed.
	PortBindings map[string]Expr
	// Positional holds the raw expression list when the instance used
	// positional-binding syntax, for resolution once the submodule's
	// port order is known. Empty when named bindings were used.
	Positional []Expr
	Pos        Pos
}

// BlockKind tags a procedural block.
type BlockKind int

const (
	AlwaysComb BlockKind = iota
	AlwaysFf
)

// ProceduralBlock is an always_comb or always_ff block.
type ProceduralBlock struct {
	Kind  BlockKind
	Clock string // set only for AlwaysFf
	Body  []Stmt
	Pos   Pos
}

// Stmt is implemented by every statement node: *Assign, *If, *Case, *Block.
type Stmt interface{ stmtNode() }

func (*Assign) stmtNode() {}

// If is an if/else statement.
type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt // nil if no else
	Pos  Pos
}

func (*If) stmtNode() {}

// Case is a case/default statement.
type Case struct {
	Selector Expr
	Arms     []CaseArm
	Default  []Stmt // nil if no default arm
	Pos      Pos
}

func (*Case) stmtNode() {}

// CaseArm matches one value against the case selector by zero-extended
// bit-pattern equality, width-agnostic the same way bitvec.Eq is.
type CaseArm struct {
	Value Expr
	Body  []Stmt
}

// Block is a nested begin...end group, flattened into Stmt only when it
// needs its own scope marker (e.g. as the Then/Else of an If); most
// begin...end groups are represented directly as a []Stmt slice.
type Block struct {
	Body []Stmt
	Pos  Pos
}

func (*Block) stmtNode() {}

// Module is the top-level AST node for one `module ... endmodule` block.
type Module struct {
	Name              string
	Ports             []Port
	Nets              []Net
	Memories          []Memory
	ContinuousAssigns []Assign
	ProceduralBlocks  []ProceduralBlock
	ChildInstances    []Instance
	Pos               Pos
}

// InputPorts and OutputPorts return the subset of Ports matching a
// direction, in declaration order.
func (m *Module) InputPorts() []Port  { return portsByDir(m.Ports, Input) }
func (m *Module) OutputPorts() []Port { return portsByDir(m.Ports, Output) }

func portsByDir(ports []Port, dir Direction) []Port {
	var out []Port
	for _, p := range ports {
		if p.Direction == dir {
			out = append(out, p)
		}
	}
	return out
}

// HasAlwaysFf reports whether the module contains any always_ff block,
// the test a driver uses to decide combinational vs sequential evaluation.
func (m *Module) HasAlwaysFf() bool {
	for _, pb := range m.ProceduralBlocks {
		if pb.Kind == AlwaysFf {
			return true
		}
	}
	return false
}

// File is everything one .sv source file defines: it may contain more
// than one module.
type File struct {
	Path    string
	Modules []*Module
}
