package parser

import (
	"strconv"

	"github.com/jwd83/svsim/pkg/ast"
	"github.com/jwd83/svsim/pkg/lexer"
)

// parseBodyItem parses one top-level module-body construct: a non-ANSI
// port direction declaration, a net/memory declaration, a continuous
// assign, a procedural block, or a child instantiation.
func (p *Parser) parseBodyItem(mod *ast.Module) error {
	switch p.cur().Kind {
	case lexer.KwInput, lexer.KwOutput:
		return p.parseNonANSIPortDecl(mod)
	case lexer.KwWire, lexer.KwLogic, lexer.KwReg:
		return p.parseNetOrMemoryDecl(mod)
	case lexer.KwAssign:
		return p.parseContinuousAssign(mod)
	case lexer.KwAlwaysComb, lexer.KwAlwaysFf:
		return p.parseProceduralBlock(mod)
	case lexer.Ident:
		return p.parseInstance(mod)
	default:
		return p.errSyntax("unexpected token %s %q in module body", p.cur().Kind, p.cur().Text)
	}
}

// parseNonANSIPortDecl handles `input logic [7:0] foo;` appearing in the
// body (non-ANSI style): it re-uses parsePortDecl and merges the result
// into the bare-name ports recorded by parsePortList.
func (p *Parser) parseNonANSIPortDecl(mod *ast.Module) error {
	ports, err := p.parsePortDecl()
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.Semicolon); err != nil {
		return err
	}
	for _, decl := range ports {
		found := false
		for i := range mod.Ports {
			if mod.Ports[i].Name == decl.Name {
				mod.Ports[i] = decl
				found = true
				break
			}
		}
		if !found {
			return p.errSyntax("port %q declared in body but not in port list", decl.Name)
		}
	}
	return nil
}

// parseNetOrMemoryDecl handles `wire/logic/reg [signed] [W-1:0] name(, name)*;`
// and the memory-array form `reg [W-1:0] name [D-1:0];`.
func (p *Parser) parseNetOrMemoryDecl(mod *ast.Module) error {
	declPos := p.cur().Pos
	p.advance() // wire/logic/reg

	signed := false
	if p.at(lexer.KwSigned) {
		signed = true
		p.advance()
	}

	width := uint8(1)
	if p.at(lexer.LBracket) {
		w, err := p.parseWidthRange()
		if err != nil {
			return err
		}
		width = w
	}

	for {
		nameTok, err := p.expect(lexer.Ident)
		if err != nil {
			return err
		}
		if p.at(lexer.LBracket) {
			depth, err := p.parseDepthRange()
			if err != nil {
				return err
			}
			mod.Memories = append(mod.Memories, ast.Memory{
				Name: nameTok.Text, ElementWidth: width, Depth: depth, Pos: declPos,
			})
		} else {
			mod.Nets = append(mod.Nets, ast.Net{Name: nameTok.Text, Width: width, Signed: signed, Pos: declPos})
		}
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	return p.mustSemi()
}

func (p *Parser) mustSemi() error {
	_, err := p.expect(lexer.Semicolon)
	return err
}

// parseDepthRange parses the `[D-1:0]` depth suffix of a memory
// declaration and returns D.
func (p *Parser) parseDepthRange() (uint64, error) {
	if _, err := p.expect(lexer.LBracket); err != nil {
		return 0, err
	}
	hiTok, err := p.expect(lexer.Literal)
	if err != nil {
		return 0, err
	}
	hi, err := strconv.ParseUint(hiTok.Text, 10, 64)
	if err != nil {
		return 0, p.errSyntax("bad memory depth bound %q", hiTok.Text)
	}
	if _, err := p.expect(lexer.Colon); err != nil {
		return 0, err
	}
	loTok, err := p.expect(lexer.Literal)
	if err != nil {
		return 0, err
	}
	lo, err := strconv.ParseUint(loTok.Text, 10, 64)
	if err != nil {
		return 0, p.errSyntax("bad memory depth bound %q", loTok.Text)
	}
	if _, err := p.expect(lexer.RBracket); err != nil {
		return 0, err
	}
	return hi - lo + 1, nil
}

// parseContinuousAssign handles `assign lvalue = expr;`.
func (p *Parser) parseContinuousAssign(mod *ast.Module) error {
	kw, err := p.expect(lexer.KwAssign)
	if err != nil {
		return err
	}
	lv, err := p.parseLvalue()
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.Assign); err != nil {
		return err
	}
	val, err := p.parseExpr()
	if err != nil {
		return err
	}
	if err := p.mustSemi(); err != nil {
		return err
	}
	mod.ContinuousAssigns = append(mod.ContinuousAssigns, ast.Assign{
		Kind: ast.Continuous, Target: lv, Value: val, Pos: kw.Pos,
	})
	return nil
}

// parseInstance handles `Type label ( .port(expr), ... );` and the
// positional form `Type label ( e1, e2, ... );`.
func (p *Parser) parseInstance(mod *ast.Module) error {
	typeTok, err := p.expect(lexer.Ident)
	if err != nil {
		return err
	}
	labelTok, err := p.expect(lexer.Ident)
	if err != nil {
		return err
	}
	inst := ast.Instance{ModuleName: typeTok.Text, Label: labelTok.Text, Pos: typeTok.Pos, PortBindings: map[string]ast.Expr{}}

	if _, err := p.expect(lexer.LParen); err != nil {
		return err
	}
	if !p.at(lexer.RParen) {
		for {
			if p.at(lexer.Dot) {
				p.advance()
				portTok, err := p.expect(lexer.Ident)
				if err != nil {
					return err
				}
				if _, err := p.expect(lexer.LParen); err != nil {
					return err
				}
				e, err := p.parseExpr()
				if err != nil {
					return err
				}
				if _, err := p.expect(lexer.RParen); err != nil {
					return err
				}
				inst.PortBindings[portTok.Text] = e
			} else {
				e, err := p.parseExpr()
				if err != nil {
					return err
				}
				inst.Positional = append(inst.Positional, e)
			}
			if p.at(lexer.Comma) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return err
	}
	if err := p.mustSemi(); err != nil {
		return err
	}
	mod.ChildInstances = append(mod.ChildInstances, inst)
	return nil
}

// parseLvalue parses name, name[i], name[hi:lo], or name[addr].
// Range-vs-index-vs-memory ambiguity (x[hi:lo] vs x[addr]) is resolved
// syntactically by the presence of a colon; distinguishing a bit select
// from a memory element access requires knowing whether `name` is a net
// or a memory, which the parser does not track (the AST shape is
// identical; pkg/seqeval looks the name up in its memory map when it
// executes the write).
func (p *Parser) parseLvalue() (ast.Lvalue, error) {
	nameTok, err := p.expect(lexer.Ident)
	if err != nil {
		return ast.Lvalue{}, err
	}
	lv := ast.Lvalue{Name: nameTok.Text, Kind: ast.LvalueWhole, Pos: nameTok.Pos}
	if !p.at(lexer.LBracket) {
		return lv, nil
	}
	p.advance()
	first, err := p.parseExpr()
	if err != nil {
		return ast.Lvalue{}, err
	}
	if p.at(lexer.Colon) {
		p.advance()
		lo, err := p.parseExpr()
		if err != nil {
			return ast.Lvalue{}, err
		}
		if _, err := p.expect(lexer.RBracket); err != nil {
			return ast.Lvalue{}, err
		}
		lv.Kind = ast.LvalueRange
		lv.Hi, lv.Lo = first, lo
		return lv, nil
	}
	if _, err := p.expect(lexer.RBracket); err != nil {
		return ast.Lvalue{}, err
	}
	// Ambiguous between a bit select and a memory write at parse time;
	// pkg/eval/pkg/seqeval resolve it against the declaration. We record
	// it as LvalueBit and let the memory-write path in pkg/seqeval
	// reinterpret it as LvalueMemory when the name is a declared memory.
	lv.Kind = ast.LvalueBit
	lv.Bit = first
	lv.Addr = first
	return lv, nil
}
