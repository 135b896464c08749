// Package bitvec implements the width-tagged bit-vector value model used
// throughout the simulator: every signal, literal, and expression result is
// a Value carrying its own width so arithmetic and logic can mask and
// extend correctly at each step.
package bitvec

import "fmt"

// MaxWidth is the largest width a Value may carry. The evaluator never
// produces a value wider than this; the bit pattern is held in a uint64.
const MaxWidth = 64

// Value is an immutable (width, bits) pair. The invariant Bits < 1<<Width
// holds for every Value handed out by this package.
type Value struct {
	Width uint8
	Bits  uint64
}

// New masks v to width bits and returns the resulting Value. Valid widths
// are 1 through MaxWidth; New does not check this: any width of MaxWidth
// or more keeps all 64 bits, and a width of 0 yields Bits 0.
func New(width uint8, v uint64) Value {
	return Value{Width: width, Bits: v & maskFor(width)}
}

func maskFor(width uint8) uint64 {
	if width >= MaxWidth {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// Mask returns v's bits with everything above Width cleared. Values built
// through New already satisfy this; Mask is for callers that poke Bits
// directly (shift results, concatenation accumulation).
func (v Value) Mask() Value {
	return New(v.Width, v.Bits)
}

// IsTrue reports whether any bit of v is set, the truthiness rule used by
// ternary selectors and && / ||.
func (v Value) IsTrue() bool {
	return v.Bits != 0
}

func maxWidth(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

// And, Or, Xor zero-extend the narrower operand to the wider operand's
// width, apply the bitwise operator, and mask to that width.
func And(a, b Value) Value {
	w := maxWidth(a.Width, b.Width)
	return New(w, a.Bits&b.Bits)
}

func Or(a, b Value) Value {
	w := maxWidth(a.Width, b.Width)
	return New(w, a.Bits|b.Bits)
}

func Xor(a, b Value) Value {
	w := maxWidth(a.Width, b.Width)
	return New(w, a.Bits^b.Bits)
}

// Not complements a at its own width.
func Not(a Value) Value {
	return New(a.Width, ^a.Bits)
}

// Add, Sub, Mul perform modulo-2^width arithmetic at the wider operand's
// width. Sub uses explicit two's-complement: a + (^b + 1), masked.
func Add(a, b Value) Value {
	w := maxWidth(a.Width, b.Width)
	return New(w, a.Bits+b.Bits)
}

func Sub(a, b Value) Value {
	w := maxWidth(a.Width, b.Width)
	negB := (^b.Bits + 1) & maskFor(w)
	return New(w, a.Bits+negB)
}

func Mul(a, b Value) Value {
	w := maxWidth(a.Width, b.Width)
	return New(w, a.Bits*b.Bits)
}

// Shl, Shr are logical shifts; the subset has no arithmetic right-shift
// (no documented signed-shift semantics). Result width is the left
// operand's width.
func Shl(a, b Value) Value {
	return New(a.Width, a.Bits<<b.Bits)
}

func Shr(a, b Value) Value {
	return New(a.Width, a.Bits>>b.Bits)
}

// boolValue renders a Go bool as a width-1 Value, the shape every
// comparison and reduction operator returns.
func boolValue(b bool) Value {
	if b {
		return Value{Width: 1, Bits: 1}
	}
	return Value{Width: 1, Bits: 0}
}

// Eq, Ne compare the zero-extended bit patterns of a and b.
func Eq(a, b Value) Value { return boolValue(a.Bits == b.Bits) }
func Ne(a, b Value) Value { return boolValue(a.Bits != b.Bits) }

// Lt, Le, Gt, Ge perform unsigned comparison over the zero-extended
// operands. Signed comparison (SignedLt) sign-extends the MSB of each
// operand at its own declared width first.
func Lt(a, b Value) Value { return boolValue(a.Bits < b.Bits) }
func Le(a, b Value) Value { return boolValue(a.Bits <= b.Bits) }
func Gt(a, b Value) Value { return boolValue(a.Bits > b.Bits) }
func Ge(a, b Value) Value { return boolValue(a.Bits >= b.Bits) }

// signExtend widens v's MSB to a full int64 for signed comparisons.
func signExtend(v Value) int64 {
	if v.Width == 0 {
		return 0
	}
	signBit := uint64(1) << (v.Width - 1)
	if v.Bits&signBit == 0 {
		return int64(v.Bits)
	}
	// Set all bits above the value's width so the Go int64 carries the
	// same sign.
	return int64(v.Bits | ^maskFor(v.Width))
}

func SignedLt(a, b Value) Value { return boolValue(signExtend(a) < signExtend(b)) }
func SignedLe(a, b Value) Value { return boolValue(signExtend(a) <= signExtend(b)) }
func SignedGt(a, b Value) Value { return boolValue(signExtend(a) > signExtend(b)) }
func SignedGe(a, b Value) Value { return boolValue(signExtend(a) >= signExtend(b)) }

// LogicalAnd, LogicalOr are the && / || truthiness operators: any bit set
// counts as true, result is width 1.
func LogicalAnd(a, b Value) Value { return boolValue(a.IsTrue() && b.IsTrue()) }
func LogicalOr(a, b Value) Value  { return boolValue(a.IsTrue() || b.IsTrue()) }

// ReduceAnd, ReduceOr, ReduceXor collapse every bit of v to a single bit:
// AND-reduce is true iff all bits are 1, OR-reduce iff any bit is 1,
// XOR-reduce is the parity of the set bits, looked up via ParityTable.
func ReduceAnd(v Value) Value {
	return boolValue(v.Bits&maskFor(v.Width) == maskFor(v.Width))
}

func ReduceOr(v Value) Value {
	return boolValue(v.Bits != 0)
}

func ReduceXor(v Value) Value {
	return boolValue(parityOf(v.Bits) == 1)
}

// ParityTable[i] is the parity (1 = odd number of set bits) of byte i.
var ParityTable [256]uint8

func init() {
	for i := 0; i < 256; i++ {
		p := uint8(0)
		b := uint8(i)
		for k := 0; k < 8; k++ {
			p ^= b & 1
			b >>= 1
		}
		ParityTable[i] = p
	}
}

func parityOf(bits uint64) uint8 {
	p := uint8(0)
	for bits != 0 {
		p ^= ParityTable[byte(bits)]
		bits >>= 8
	}
	return p
}

// Ternary selects a or b by s's truthiness; result width is the wider of
// a, b (the narrower is implicitly zero-extended by New's masking, since
// both are re-wrapped at the common width by the caller via Bit/Concat
// composition; this just widens representation, not value, to match the
// chosen branch's own bits within the common width).
func Ternary(s, a, b Value) Value {
	w := maxWidth(a.Width, b.Width)
	if s.IsTrue() {
		return New(w, a.Bits)
	}
	return New(w, b.Bits)
}

// Bit extracts a single bit of v, returning a width-1 Value. i must be in
// [0, v.Width); the caller (the evaluator) is expected to check this and
// raise IndexOut before calling, since this function has no error return.
func Bit(v Value, i uint8) Value {
	return New(1, (v.Bits>>i)&1)
}

// Slice extracts the inclusive bit range [hi:lo] of v, width hi-lo+1.
// Callers must ensure hi >= lo and hi < v.Width.
func Slice(v Value, hi, lo uint8) Value {
	w := hi - lo + 1
	return New(w, v.Bits>>lo)
}

// Concat joins operands MSB-first: parts[0] occupies the highest bits of
// the result, parts[len(parts)-1] the lowest. Result width is the sum of
// operand widths; callers must keep the total at or below MaxWidth.
func Concat(parts ...Value) Value {
	var bits uint64
	var width uint8
	for _, p := range parts {
		bits = (bits << p.Width) | (p.Bits & maskFor(p.Width))
		width += p.Width
	}
	return New(width, bits)
}

// Repl concatenates n copies of v (the {N{expr}} construct).
func Repl(n int, v Value) Value {
	parts := make([]Value, n)
	for i := range parts {
		parts[i] = v
	}
	return Concat(parts...)
}

func (v Value) String() string {
	return fmt.Sprintf("%d'h%x", v.Width, v.Bits)
}
