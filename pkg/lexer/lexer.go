package lexer

import (
	"strings"

	"github.com/jwd83/svsim/pkg/simerr"
)

// Lexer is a single-pass, hand-written scanner over SystemVerilog-subset
// source text. It classifies runs of characters the way
// ajroetker-goat/amd64_parser.go classifies assembly lines, per-category
// recognizers tried in order, except here the recognizers work a
// character at a time instead of whole-line regexes, since the subset's
// grammar is token-level, not line-level.
type Lexer struct {
	file string
	src  string
	pos  int
	line int
	col  int
}

func New(file, src string) *Lexer {
	return &Lexer{file: file, src: src, line: 1, col: 1}
}

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekByteAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

func (l *Lexer) here() Pos {
	return Pos{File: l.file, Line: l.line, Col: l.col}
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.src) {
		b := l.peekByte()
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			l.advance()
		case b == '/' && l.peekByteAt(1) == '/':
			for l.pos < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
		case b == '/' && l.peekByteAt(1) == '*':
			l.advance()
			l.advance()
			for l.pos < len(l.src) && !(l.peekByte() == '*' && l.peekByteAt(1) == '/') {
				l.advance()
			}
			if l.pos < len(l.src) {
				l.advance()
				l.advance()
			}
		default:
			return
		}
	}
}

// Next returns the next token, or an EOF token at end of input. A
// malformed character sequence raises *simerr.Error with Kind SyntaxError;
// the lexer never silently skips unrecognized input.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespaceAndComments()
	pos := l.here()
	if l.pos >= len(l.src) {
		return Token{Kind: EOF, Pos: pos}, nil
	}

	b := l.peekByte()

	switch {
	case isIdentStart(b):
		return l.lexIdentOrKeyword(pos), nil
	case isDigit(b):
		return l.lexNumberOrLiteral(pos)
	}

	// Punctuation and operators, longest-match first.
	two := ""
	if l.pos+1 < len(l.src) {
		two = l.src[l.pos : l.pos+2]
	}
	switch two {
	case "&&":
		l.advance()
		l.advance()
		return Token{Kind: AmpAmp, Text: "&&", Pos: pos}, nil
	case "||":
		l.advance()
		l.advance()
		return Token{Kind: PipePipe, Text: "||", Pos: pos}, nil
	case "~&":
		l.advance()
		l.advance()
		return Token{Kind: TildeAmp, Text: "~&", Pos: pos}, nil
	case "~|":
		l.advance()
		l.advance()
		return Token{Kind: TildePipe, Text: "~|", Pos: pos}, nil
	case "~^":
		l.advance()
		l.advance()
		return Token{Kind: TildeCaret, Text: "~^", Pos: pos}, nil
	case "<=":
		l.advance()
		l.advance()
		return Token{Kind: Le, Text: "<=", Pos: pos}, nil
	case ">=":
		l.advance()
		l.advance()
		return Token{Kind: Ge, Text: ">=", Pos: pos}, nil
	case "==":
		l.advance()
		l.advance()
		return Token{Kind: Eq, Text: "==", Pos: pos}, nil
	case "!=":
		l.advance()
		l.advance()
		return Token{Kind: Ne, Text: "!=", Pos: pos}, nil
	case "<<":
		l.advance()
		l.advance()
		return Token{Kind: Shl, Text: "<<", Pos: pos}, nil
	case ">>":
		l.advance()
		l.advance()
		return Token{Kind: Shr, Text: ">>", Pos: pos}, nil
	}

	l.advance()
	switch b {
	case '(':
		return Token{Kind: LParen, Text: "(", Pos: pos}, nil
	case ')':
		return Token{Kind: RParen, Text: ")", Pos: pos}, nil
	case '[':
		return Token{Kind: LBracket, Text: "[", Pos: pos}, nil
	case ']':
		return Token{Kind: RBracket, Text: "]", Pos: pos}, nil
	case '{':
		return Token{Kind: LBrace, Text: "{", Pos: pos}, nil
	case '}':
		return Token{Kind: RBrace, Text: "}", Pos: pos}, nil
	case ';':
		return Token{Kind: Semicolon, Text: ";", Pos: pos}, nil
	case ',':
		return Token{Kind: Comma, Text: ",", Pos: pos}, nil
	case ':':
		return Token{Kind: Colon, Text: ":", Pos: pos}, nil
	case '.':
		return Token{Kind: Dot, Text: ".", Pos: pos}, nil
	case '@':
		return Token{Kind: At, Text: "@", Pos: pos}, nil
	case '=':
		return Token{Kind: Assign, Text: "=", Pos: pos}, nil
	case '?':
		return Token{Kind: Question, Text: "?", Pos: pos}, nil
	case '&':
		return Token{Kind: Amp, Text: "&", Pos: pos}, nil
	case '|':
		return Token{Kind: Pipe, Text: "|", Pos: pos}, nil
	case '^':
		return Token{Kind: Caret, Text: "^", Pos: pos}, nil
	case '~':
		return Token{Kind: Tilde, Text: "~", Pos: pos}, nil
	case '+':
		return Token{Kind: Plus, Text: "+", Pos: pos}, nil
	case '-':
		return Token{Kind: Minus, Text: "-", Pos: pos}, nil
	case '*':
		return Token{Kind: Star, Text: "*", Pos: pos}, nil
	case '/':
		return Token{Kind: Slash, Text: "/", Pos: pos}, nil
	case '%':
		return Token{Kind: Percent, Text: "%", Pos: pos}, nil
	case '<':
		return Token{Kind: Lt, Text: "<", Pos: pos}, nil
	case '>':
		return Token{Kind: Gt, Text: ">", Pos: pos}, nil
	}

	return Token{}, simerr.New(simerr.SyntaxError, simerr.Location{File: l.file, Line: pos.Line, Col: pos.Col},
		"unexpected character %q", b)
}

func (l *Lexer) lexIdentOrKeyword(pos Pos) Token {
	start := l.pos
	for l.pos < len(l.src) && isIdentCont(l.peekByte()) {
		l.advance()
	}
	text := l.src[start:l.pos]
	if kw, ok := keywords[text]; ok {
		return Token{Kind: kw, Text: text, Pos: pos}
	}
	return Token{Kind: Ident, Text: text, Pos: pos}
}

// lexNumberOrLiteral handles both unsized decimals (42) and sized literals
// (8'hFF, 4'b1010, 8'd255). The width, if present, is a plain decimal run
// followed by an apostrophe.
func (l *Lexer) lexNumberOrLiteral(pos Pos) (Token, error) {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.peekByte()) {
		l.advance()
	}
	if l.peekByte() != '\'' {
		text := l.src[start:l.pos]
		return Token{Kind: Literal, Text: text, Pos: pos}, nil
	}

	l.advance() // consume '
	if l.pos >= len(l.src) {
		return Token{}, simerr.New(simerr.SyntaxError, simerr.Location{File: l.file, Line: pos.Line, Col: pos.Col},
			"truncated literal")
	}
	base := l.peekByte()
	if !strings.ContainsRune("bBhHdD", rune(base)) {
		return Token{}, simerr.New(simerr.SyntaxError, simerr.Location{File: l.file, Line: pos.Line, Col: pos.Col},
			"unknown literal base %q", base)
	}
	l.advance()
	digitStart := l.pos
	for l.pos < len(l.src) && (isIdentCont(l.peekByte())) {
		l.advance()
	}
	text := l.src[start:l.pos]
	if l.pos == digitStart {
		return Token{}, simerr.New(simerr.SyntaxError, simerr.Location{File: l.file, Line: pos.Line, Col: pos.Col},
			"literal %q has no digits", text)
	}
	return Token{Kind: Literal, Text: text, Pos: pos}, nil
}

// Tokenize drains the lexer into a slice, the form pkg/parser consumes.
func Tokenize(file, src string) ([]Token, error) {
	lx := New(file, src)
	var toks []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, nil
		}
	}
}
