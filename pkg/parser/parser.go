// Package parser implements a recursive-descent parser over the token
// stream pkg/lexer produces, building the pkg/ast node tree for one
// SystemVerilog-subset source file. Grounded in the position-carrying,
// error-returning shape of mna-nenuphar/lang/compiler's pcomp/fcomp, but
// hand-rolled recursive descent rather than a Pratt parser, since the
// subset's expression grammar is small and fixed.
package parser

import (
	"strconv"

	"github.com/jwd83/svsim/pkg/ast"
	"github.com/jwd83/svsim/pkg/lexer"
	"github.com/jwd83/svsim/pkg/simerr"
)

// Parser consumes a pre-tokenized stream and builds an ast.File.
type Parser struct {
	file string
	toks []lexer.Token
	pos  int
}

// Parse tokenizes and parses one source file into its pkg/ast.File. It
// never silently accepts unrecognized input: malformed text raises
// *simerr.Error with Kind SyntaxError, and recognized-but-unsupported
// constructs raise Kind UnsupportedConstruct.
func Parse(file, src string) (*ast.File, error) {
	toks, err := lexer.Tokenize(file, src)
	if err != nil {
		return nil, err
	}
	p := &Parser{file: file, toks: toks}
	return p.parseFile()
}

func (p *Parser) cur() lexer.Token { return p.toks[p.pos] }
func (p *Parser) peekAt(n int) lexer.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos+n]
}

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) loc() simerr.Location {
	t := p.cur()
	return simerr.Location{File: p.file, Line: t.Pos.Line, Col: t.Pos.Col}
}

func (p *Parser) errSyntax(format string, args ...any) error {
	return simerr.New(simerr.SyntaxError, p.loc(), format, args...)
}

func (p *Parser) errUnsupported(feature string) error {
	return simerr.New(simerr.UnsupportedConstruct, p.loc(), "unsupported construct: %s", feature)
}

func (p *Parser) expect(k lexer.Kind) (lexer.Token, error) {
	if p.cur().Kind != k {
		return lexer.Token{}, p.errSyntax("expected %s, got %s %q", k, p.cur().Kind, p.cur().Text)
	}
	return p.advance(), nil
}

func (p *Parser) at(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *Parser) parseFile() (*ast.File, error) {
	f := &ast.File{Path: p.file}
	for !p.at(lexer.EOF) {
		if !p.at(lexer.KwModule) {
			return nil, p.errSyntax("expected module declaration, got %s %q", p.cur().Kind, p.cur().Text)
		}
		mod, err := p.parseModule()
		if err != nil {
			return nil, err
		}
		f.Modules = append(f.Modules, mod)
	}
	return f, nil
}

func (p *Parser) parseModule() (*ast.Module, error) {
	kw, err := p.expect(lexer.KwModule)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	mod := &ast.Module{Name: nameTok.Text, Pos: kw.Pos}

	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	if err := p.parsePortList(mod); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return nil, err
	}

	for !p.at(lexer.KwEndmodule) {
		if p.at(lexer.EOF) {
			return nil, p.errSyntax("unterminated module %q: missing endmodule", mod.Name)
		}
		if err := p.parseBodyItem(mod); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.KwEndmodule); err != nil {
		return nil, err
	}
	return mod, nil
}

// parsePortList handles both ANSI (`input logic [7:0] foo`) and
// non-ANSI (`foo, bar` header + separate `input ... foo;` declarations
// in the body) styles. The non-ANSI body declarations are folded into
// mod.Ports by parseBodyItem when it sees a direction keyword for a name
// already listed here with Width left at 0 (unresolved).
func (p *Parser) parsePortList(mod *ast.Module) error {
	if p.at(lexer.RParen) {
		return nil // zero-port module
	}
	for {
		if p.at(lexer.KwInput) || p.at(lexer.KwOutput) {
			ports, err := p.parsePortDecl()
			if err != nil {
				return err
			}
			mod.Ports = append(mod.Ports, ports...)
		} else {
			// Non-ANSI: bare name, direction resolved later in the body.
			nameTok, err := p.expect(lexer.Ident)
			if err != nil {
				return err
			}
			mod.Ports = append(mod.Ports, ast.Port{Name: nameTok.Text, Width: 0, Pos: nameTok.Pos})
		}
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	return nil
}

// parsePortDecl parses `input|output [logic|reg|wire] [signed] [ [hi:lo] ] name(, name)*`
// and returns one ast.Port per name.
func (p *Parser) parsePortDecl() ([]ast.Port, error) {
	var dir ast.Direction
	switch p.cur().Kind {
	case lexer.KwInput:
		dir = ast.Input
	case lexer.KwOutput:
		dir = ast.Output
	default:
		return nil, p.errSyntax("expected input or output")
	}
	declPos := p.cur().Pos
	p.advance()

	switch p.cur().Kind {
	case lexer.KwLogic, lexer.KwReg, lexer.KwWire:
		p.advance()
	}

	signed := false
	if p.at(lexer.KwSigned) {
		signed = true
		p.advance()
	}

	width := uint8(1)
	if p.at(lexer.LBracket) {
		w, err := p.parseWidthRange()
		if err != nil {
			return nil, err
		}
		width = w
	}

	var ports []ast.Port
	for {
		nameTok, err := p.expect(lexer.Ident)
		if err != nil {
			return nil, err
		}
		ports = append(ports, ast.Port{Name: nameTok.Text, Direction: dir, Width: width, Signed: signed, Pos: declPos})
		if p.at(lexer.Comma) && (p.peekAt(1).Kind == lexer.Ident) {
			p.advance()
			continue
		}
		break
	}
	return ports, nil
}

// parseWidthRange parses `[hi:lo]` and returns hi-lo+1. Only constant
// bounds are supported (the subset has no parameters, per Non-goals).
func (p *Parser) parseWidthRange() (uint8, error) {
	if _, err := p.expect(lexer.LBracket); err != nil {
		return 0, err
	}
	hiTok, err := p.expect(lexer.Literal)
	if err != nil {
		return 0, err
	}
	hi, err := strconv.Atoi(hiTok.Text)
	if err != nil {
		return 0, p.errSyntax("bad width bound %q", hiTok.Text)
	}
	if _, err := p.expect(lexer.Colon); err != nil {
		return 0, err
	}
	loTok, err := p.expect(lexer.Literal)
	if err != nil {
		return 0, err
	}
	lo, err := strconv.Atoi(loTok.Text)
	if err != nil {
		return 0, p.errSyntax("bad width bound %q", loTok.Text)
	}
	if _, err := p.expect(lexer.RBracket); err != nil {
		return 0, err
	}
	if hi < lo {
		return 0, p.errSyntax("malformed width range [%d:%d]: hi < lo", hi, lo)
	}
	return uint8(hi - lo + 1), nil
}
