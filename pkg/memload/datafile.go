// Package memload loads ROM/RAM contents from data files and YAML preload
// manifests. Grounded on zeonica's YAML-described array configuration for
// the manifest shape, and on the bare-literal-per-line data-file format
// used throughout the decoder examples.
package memload

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jwd83/svsim/pkg/bitvec"
)

// DecodeDataFile reads a ROM/RAM data file: one value per line, either a
// bare literal (stored at the address after the previous entry's, starting
// from 0) or an explicit "addr:literal" pair, after which bare literals
// continue from addr+1. "#" and "//"
// start a comment that runs to end of line; blank lines are skipped
// without consuming an address. Addresses absent from the file default
// to zero.
func DecodeDataFile(r io.Reader, width int) (map[uint64]bitvec.Value, error) {
	out := map[uint64]bitvec.Value{}
	scanner := bufio.NewScanner(r)
	var nextAddr uint64
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		addr := nextAddr
		tok := line
		if i := strings.IndexByte(line, ':'); i >= 0 {
			addrText := strings.TrimSpace(line[:i])
			parsedAddr, err := strconv.ParseUint(addrText, 0, 64)
			if err != nil {
				return nil, fmt.Errorf("memload: line %d: invalid address %q: %w", lineNo, addrText, err)
			}
			addr = parsedAddr
			tok = strings.TrimSpace(line[i+1:])
		}

		bits, err := parseDataToken(tok, width)
		if err != nil {
			return nil, fmt.Errorf("memload: line %d: %w", lineNo, err)
		}
		out[addr] = bitvec.New(uint8(width), bits)
		nextAddr = addr + 1
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("memload: %w", err)
	}
	return out, nil
}

func stripComment(s string) string {
	if i := strings.Index(s, "//"); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	return s
}

// parseDataToken accepts a bare binary string of 0/1 (the data-file
// convention used throughout examples), a 0x-prefixed hex
// literal, or a plain decimal number.
func parseDataToken(tok string, width int) (uint64, error) {
	if isBinaryDigits(tok) {
		v, err := strconv.ParseUint(tok, 2, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid binary literal %q: %w", tok, err)
		}
		return v, nil
	}
	if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
		v, err := strconv.ParseUint(tok[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid hex literal %q: %w", tok, err)
		}
		return v, nil
	}
	v, err := strconv.ParseUint(tok, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid literal %q", tok)
	}
	return v, nil
}

func isBinaryDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '0' && r != '1' {
			return false
		}
	}
	return true
}
