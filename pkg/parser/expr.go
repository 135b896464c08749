package parser

import (
	"github.com/jwd83/svsim/pkg/ast"
	"github.com/jwd83/svsim/pkg/lexer"
)

// Expression parsing follows the precedence table Open
// Question 2, lowest to highest:
//
//	?:  (right-assoc)
//	||
//	&&
//	|
//	^
//	&
//	==  !=
//	<  <=  >  >=
//	<<  >>
//	+  -
//	*  /  %
//	unary (~ & | ^ ~& ~| ~^ + -)
//	primary (ident, literal, select, concat, replicate, parens)
//
// Each precedence level is its own method, each calling the next-tighter
// level for its operands: the standard recursive-descent encoding of a
// precedence table, chosen over a Pratt/operator-table parser because the
// subset's operator set is small and fixed (no user-defined operators).

func (p *Parser) parseExpr() (ast.Expr, error) { return p.parseTernary() }

func (p *Parser) parseTernary() (ast.Expr, error) {
	cond, err := p.parseLogOr()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.Question) {
		return cond, nil
	}
	pos := p.cur().Pos
	p.advance()
	a, err := p.parseTernary() // right-associative
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Colon); err != nil {
		return nil, err
	}
	b, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return &ast.Ternary{Sel: cond, A: a, B: b, Pos: pos}, nil
}

func (p *Parser) parseLogOr() (ast.Expr, error) {
	return p.parseLeftAssocBinary(p.parseLogAnd, map[lexer.Kind]ast.BinaryOp{lexer.PipePipe: ast.OpLogOr})
}

func (p *Parser) parseLogAnd() (ast.Expr, error) {
	return p.parseLeftAssocBinary(p.parseBitOr, map[lexer.Kind]ast.BinaryOp{lexer.AmpAmp: ast.OpLogAnd})
}

func (p *Parser) parseBitOr() (ast.Expr, error) {
	return p.parseLeftAssocBinary(p.parseBitXor, map[lexer.Kind]ast.BinaryOp{lexer.Pipe: ast.OpBitOr})
}

func (p *Parser) parseBitXor() (ast.Expr, error) {
	return p.parseLeftAssocBinary(p.parseBitAnd, map[lexer.Kind]ast.BinaryOp{lexer.Caret: ast.OpBitXor})
}

func (p *Parser) parseBitAnd() (ast.Expr, error) {
	return p.parseLeftAssocBinary(p.parseEquality, map[lexer.Kind]ast.BinaryOp{lexer.Amp: ast.OpBitAnd})
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.parseLeftAssocBinary(p.parseRelational, map[lexer.Kind]ast.BinaryOp{
		lexer.Eq: ast.OpEq, lexer.Ne: ast.OpNe,
	})
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	return p.parseLeftAssocBinary(p.parseShift, map[lexer.Kind]ast.BinaryOp{
		lexer.Lt: ast.OpLt, lexer.Le: ast.OpLe, lexer.Gt: ast.OpGt, lexer.Ge: ast.OpGe,
	})
}

func (p *Parser) parseShift() (ast.Expr, error) {
	return p.parseLeftAssocBinary(p.parseAdditive, map[lexer.Kind]ast.BinaryOp{
		lexer.Shl: ast.OpShl, lexer.Shr: ast.OpShr,
	})
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	return p.parseLeftAssocBinary(p.parseMultiplicative, map[lexer.Kind]ast.BinaryOp{
		lexer.Plus: ast.OpAdd, lexer.Minus: ast.OpSub,
	})
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	return p.parseLeftAssocBinary(p.parseUnary, map[lexer.Kind]ast.BinaryOp{
		lexer.Star: ast.OpMul, lexer.Slash: ast.OpDiv, lexer.Percent: ast.OpMod,
	})
}

// parseLeftAssocBinary factors the common "one operand, then zero or more
// (operator, operand) pairs, left-associative" shape shared by every
// binary precedence level.
func (p *Parser) parseLeftAssocBinary(next func() (ast.Expr, error), ops map[lexer.Kind]ast.BinaryOp) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.cur().Kind]
		if !ok {
			return left, nil
		}
		pos := p.cur().Pos
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, L: left, R: right, Pos: pos}
	}
}

var unaryOps = map[lexer.Kind]ast.UnaryOp{
	lexer.Tilde:      ast.UnaryNot,
	lexer.Amp:        ast.UnaryAnd,
	lexer.Pipe:       ast.UnaryOr,
	lexer.Caret:      ast.UnaryXor,
	lexer.TildeAmp:   ast.UnaryNand,
	lexer.TildePipe:  ast.UnaryNor,
	lexer.TildeCaret: ast.UnaryXnor,
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if op, ok := unaryOps[p.cur().Kind]; ok {
		pos := p.cur().Pos
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op, X: x, Pos: pos}, nil
	}
	if p.at(lexer.Plus) {
		pos := p.cur().Pos
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.UnaryPlus, X: x, Pos: pos}, nil
	}
	if p.at(lexer.Minus) {
		pos := p.cur().Pos
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.UnaryMinus, X: x, Pos: pos}, nil
	}
	return p.parsePostfix()
}

// parsePostfix handles bit/range select chained onto a primary
// expression: x[i], x[hi:lo].
func (p *Parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.LBracket) {
		pos := p.cur().Pos
		p.advance()
		first, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.at(lexer.Colon) {
			p.advance()
			lo, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBracket); err != nil {
				return nil, err
			}
			e = &ast.RangeSelect{X: e, Hi: first, Lo: lo, Pos: pos}
			continue
		}
		if _, err := p.expect(lexer.RBracket); err != nil {
			return nil, err
		}
		e = &ast.BitSelect{X: e, Idx: first, Pos: pos}
	}
	return e, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case lexer.Ident:
		p.advance()
		return &ast.Ident{Name: tok.Text, Pos: tok.Pos}, nil
	case lexer.Literal:
		p.advance()
		return &ast.LitExpr{Text: tok.Text, Pos: tok.Pos}, nil
	case lexer.LParen:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen); err != nil {
			return nil, err
		}
		return e, nil
	case lexer.LBrace:
		return p.parseBraceExpr()
	}
	return nil, p.errSyntax("expected expression, got %s %q", tok.Kind, tok.Text)
}

// parseBraceExpr parses {a, b, ...} (concatenation) or {N{expr}}
// (replication). The distinguishing shape is that replication's first
// (and only) element is itself followed by a '{' before any comma.
func (p *Parser) parseBraceExpr() (ast.Expr, error) {
	pos := p.cur().Pos
	p.advance() // {

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.at(lexer.LBrace) {
		// {N{expr}} replication: `first` is the count.
		p.advance()
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBrace); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBrace); err != nil {
			return nil, err
		}
		return &ast.Replicate{Count: first, Value: val, Pos: pos}, nil
	}

	parts := []ast.Expr{first}
	for p.at(lexer.Comma) {
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		parts = append(parts, e)
	}
	if _, err := p.expect(lexer.RBrace); err != nil {
		return nil, err
	}
	return &ast.Concat{Parts: parts, Pos: pos}, nil
}
