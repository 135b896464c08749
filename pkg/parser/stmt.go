package parser

import (
	"github.com/jwd83/svsim/pkg/ast"
	"github.com/jwd83/svsim/pkg/lexer"
)

// parseProceduralBlock parses `always_comb begin ... end` or
// `always_ff @(posedge clk) begin ... end`.
func (p *Parser) parseProceduralBlock(mod *ast.Module) error {
	kw := p.cur()
	pb := ast.ProceduralBlock{Pos: kw.Pos}

	switch kw.Kind {
	case lexer.KwAlwaysComb:
		pb.Kind = ast.AlwaysComb
		p.advance()
	case lexer.KwAlwaysFf:
		pb.Kind = ast.AlwaysFf
		p.advance()
		if _, err := p.expect(lexer.At); err != nil {
			return err
		}
		if _, err := p.expect(lexer.LParen); err != nil {
			return err
		}
		if _, err := p.expect(lexer.KwPosedge); err != nil {
			return err
		}
		clkTok, err := p.expect(lexer.Ident)
		if err != nil {
			return err
		}
		pb.Clock = clkTok.Text
		if _, err := p.expect(lexer.RParen); err != nil {
			return err
		}
	default:
		return p.errSyntax("expected always_comb or always_ff")
	}

	body, err := p.parseBeginEnd()
	if err != nil {
		return err
	}
	pb.Body = body
	mod.ProceduralBlocks = append(mod.ProceduralBlocks, pb)
	return nil
}

// parseBeginEnd parses `begin stmt* end` and returns the statement list.
func (p *Parser) parseBeginEnd() ([]ast.Stmt, error) {
	if _, err := p.expect(lexer.KwBegin); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.at(lexer.KwEnd) {
		if p.at(lexer.EOF) {
			return nil, p.errSyntax("unterminated begin block: missing end")
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(lexer.KwEnd); err != nil {
		return nil, err
	}
	return stmts, nil
}

// parseStmtOrBlock parses either a single statement or a begin...end
// group, the shape if/else/case arms accept.
func (p *Parser) parseStmtOrBlock() ([]ast.Stmt, error) {
	if p.at(lexer.KwBegin) {
		return p.parseBeginEnd()
	}
	s, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return []ast.Stmt{s}, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.cur().Kind {
	case lexer.KwIf:
		return p.parseIf()
	case lexer.KwCase:
		return p.parseCase()
	case lexer.KwBegin:
		body, err := p.parseBeginEnd()
		if err != nil {
			return nil, err
		}
		return &ast.Block{Body: body}, nil
	case lexer.Ident:
		return p.parseProceduralAssign()
	default:
		return nil, p.errSyntax("unexpected token %s %q in statement", p.cur().Kind, p.cur().Text)
	}
}

// parseProceduralAssign parses `lvalue = expr;` (blocking) or
// `lvalue <= expr;` (non-blocking). The two flavors get distinct
// AssignKind values design note: they are never collapsed
// into one node since blocking/non-blocking discipline is semantic.
func (p *Parser) parseProceduralAssign() (ast.Stmt, error) {
	lv, err := p.parseLvalue()
	if err != nil {
		return nil, err
	}
	var kind ast.AssignKind
	pos := p.cur().Pos
	switch p.cur().Kind {
	case lexer.Assign:
		kind = ast.Blocking
		p.advance()
	case lexer.Le:
		kind = ast.NonBlocking
		p.advance()
	default:
		return nil, p.errSyntax("expected = or <= in procedural assignment, got %s %q", p.cur().Kind, p.cur().Text)
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.mustSemi(); err != nil {
		return nil, err
	}
	return &ast.Assign{Kind: kind, Target: lv, Value: val, Pos: pos}, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	kw, err := p.expect(lexer.KwIf)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	then, err := p.parseStmtOrBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.If{Cond: cond, Then: then, Pos: kw.Pos}
	if p.at(lexer.KwElse) {
		p.advance()
		if p.at(lexer.KwIf) {
			elseIf, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			stmt.Else = []ast.Stmt{elseIf}
		} else {
			els, err := p.parseStmtOrBlock()
			if err != nil {
				return nil, err
			}
			stmt.Else = els
		}
	}
	return stmt, nil
}

func (p *Parser) parseCase() (ast.Stmt, error) {
	kw, err := p.expect(lexer.KwCase)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	sel, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}

	c := &ast.Case{Selector: sel, Pos: kw.Pos}
	for !p.at(lexer.KwEndcase) {
		if p.at(lexer.EOF) {
			return nil, p.errSyntax("unterminated case: missing endcase")
		}
		if p.at(lexer.KwDefault) {
			p.advance()
			if _, err := p.expect(lexer.Colon); err != nil {
				return nil, err
			}
			body, err := p.parseStmtOrBlock()
			if err != nil {
				return nil, err
			}
			c.Default = body
			continue
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Colon); err != nil {
			return nil, err
		}
		body, err := p.parseStmtOrBlock()
		if err != nil {
			return nil, err
		}
		c.Arms = append(c.Arms, ast.CaseArm{Value: val, Body: body})
	}
	if _, err := p.expect(lexer.KwEndcase); err != nil {
		return nil, err
	}
	return c, nil
}
