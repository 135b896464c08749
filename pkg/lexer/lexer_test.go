package lexer

import "testing"

func kinds(toks []Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestTokenizeModuleHeader(t *testing.T) {
	src := `module nand_gate(input logic inA, input logic inB, output logic outY);`
	toks, err := Tokenize("nand_gate.sv", src)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	want := []Kind{
		KwModule, Ident, LParen,
		KwInput, KwLogic, Ident, Comma,
		KwInput, KwLogic, Ident, Comma,
		KwOutput, KwLogic, Ident,
		RParen, Semicolon, EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTokenizeCommentsIgnored(t *testing.T) {
	src := "// line comment\nassign /* block\ncomment */ outY = ~inA;"
	toks, err := Tokenize("t.sv", src)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	want := []Kind{KwAssign, Ident, Assign, Tilde, Ident, Semicolon, EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeLiterals(t *testing.T) {
	src := "8'hFF 4'b1010 8'd255 42"
	toks, err := Tokenize("t.sv", src)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	for i := 0; i < 4; i++ {
		if toks[i].Kind != Literal {
			t.Errorf("token %d: got %s, want literal", i, toks[i].Kind)
		}
	}
}

func TestTokenizeNonBlockingVsLessEqual(t *testing.T) {
	toks, err := Tokenize("t.sv", "a <= b")
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if toks[1].Kind != Le {
		t.Errorf("expected a single <= token, got %s", toks[1].Kind)
	}
}

func TestUnexpectedCharacterRaisesSyntaxError(t *testing.T) {
	_, err := Tokenize("t.sv", "assign x = a $ b;")
	if err == nil {
		t.Fatal("expected a syntax error for '$'")
	}
}
