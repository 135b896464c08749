package bitvec

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLiteral parses one of the supported literal forms: W'bBBB, W'hHH,
// W'dDD, or an unsized decimal (default width 32, narrowed to context by
// the caller when the literal feeds a narrower target).
func ParseLiteral(text string) (Value, error) {
	if i := strings.IndexByte(text, '\''); i >= 0 {
		widthPart := text[:i]
		rest := text[i+1:]
		if len(rest) == 0 {
			return Value{}, fmt.Errorf("bitvec: malformed literal %q: missing base/value", text)
		}
		width := 32
		if widthPart != "" {
			w, err := strconv.Atoi(widthPart)
			if err != nil {
				return Value{}, fmt.Errorf("bitvec: malformed literal %q: bad width: %w", text, err)
			}
			width = w
		}
		if width < 1 || width > MaxWidth {
			return Value{}, fmt.Errorf("bitvec: literal %q: width %d out of range [1,%d]", text, width, MaxWidth)
		}

		base := rest[0]
		digits := rest[1:]
		digits = strings.ReplaceAll(digits, "_", "")

		var bits uint64
		var err error
		switch base {
		case 'b', 'B':
			bits, err = strconv.ParseUint(digits, 2, 64)
		case 'h', 'H':
			bits, err = strconv.ParseUint(digits, 16, 64)
		case 'd', 'D':
			bits, err = strconv.ParseUint(digits, 10, 64)
		default:
			return Value{}, fmt.Errorf("bitvec: literal %q: unknown base %q", text, base)
		}
		if err != nil {
			return Value{}, fmt.Errorf("bitvec: literal %q: %w", text, err)
		}
		return New(uint8(width), bits), nil
	}

	// Unsized decimal literal: default width 32.
	digits := strings.ReplaceAll(text, "_", "")
	bits, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return Value{}, fmt.Errorf("bitvec: malformed unsized literal %q: %w", text, err)
	}
	return New(32, bits), nil
}
