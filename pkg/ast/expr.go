package ast

// Expr is implemented by every expression node.
type Expr interface{ exprNode() }

// Ident references a signal by name.
type Ident struct {
	Name string
	Pos  Pos
}

func (*Ident) exprNode() {}

// LitExpr is a literal value, still in source text form; pkg/eval parses
// it via bitvec.ParseLiteral each time it is evaluated (cheap, and keeps
// the AST free of a bitvec import).
type LitExpr struct {
	Text string
	Pos  Pos
}

func (*LitExpr) exprNode() {}

// BitSelect is x[i].
type BitSelect struct {
	X   Expr
	Idx Expr
	Pos Pos
}

func (*BitSelect) exprNode() {}

// RangeSelect is x[hi:lo].
type RangeSelect struct {
	X      Expr
	Hi, Lo Expr
	Pos    Pos
}

func (*RangeSelect) exprNode() {}

// Concat is {a, b, ...}.
type Concat struct {
	Parts []Expr
	Pos   Pos
}

func (*Concat) exprNode() {}

// Replicate is {N{expr}}.
type Replicate struct {
	Count Expr
	Value Expr
	Pos   Pos
}

func (*Replicate) exprNode() {}

// UnaryOp is one of ~, &, |, ^, ~&, ~|, ~^, unary + / -.
type UnaryOp int

const (
	UnaryNot UnaryOp = iota
	UnaryAnd
	UnaryOr
	UnaryXor
	UnaryNand
	UnaryNor
	UnaryXnor
	UnaryPlus
	UnaryMinus
)

type Unary struct {
	Op  UnaryOp
	X   Expr
	Pos Pos
}

func (*Unary) exprNode() {}

// BinaryOp enumerates the binary operators, ordered to mirror the
// parser's precedence table (not used for ordering at runtime, since
// pkg/parser encodes precedence structurally; this ordering is just
// documented here for reference).
type BinaryOp int

const (
	OpMul BinaryOp = iota
	OpDiv
	OpMod
	OpAdd
	OpSub
	OpShl
	OpShr
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpBitAnd
	OpBitXor
	OpBitOr
	OpLogAnd
	OpLogOr
)

type Binary struct {
	Op   BinaryOp
	L, R Expr
	Pos  Pos
}

func (*Binary) exprNode() {}

// Ternary is s ? a : b, right-associative.
type Ternary struct {
	Sel, A, B Expr
	Pos       Pos
}

func (*Ternary) exprNode() {}

// A memory-array read, name[addr], has no node type of its own: it is a
// BitSelect whose X is an Ident naming a Memory rather than a net, and
// pkg/eval tells the two apart by looking the name up in Env.Memories.
