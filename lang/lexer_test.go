package lang

import "testing"

func TestLexerSimpleTokens(t *testing.T) {
	source := "var x = 1 + 2;"
	l := NewLexer("test", []byte(source))
	tokens := l.Tokenize()
	if l.Errored() {
		t.Fatalf("unexpected lex errors: %v", l.Errors())
	}

	var kinds []TokenType
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	want := []TokenType{TokenKeyword, TokenIdent, TokenEqual, TokenInt, TokenPlus, TokenInt, TokenSemicolon, TokenEOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(kinds), len(want), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestLexerLexemeRoundTrip(t *testing.T) {
	source := "foo bar 123 3.5 \"hi\""
	l := NewLexer("test", []byte(source))
	tokens := l.Tokenize()
	for _, tok := range tokens {
		if tok.Kind == TokenEOF {
			continue
		}
		slice := source[tok.Loc.ColStart:tok.Loc.ColEnd]
		if tok.Kind == TokenString {
			// string lexeme excludes the surrounding quotes
			if slice != "\""+tok.Lexeme+"\"" {
				t.Fatalf("string lexeme round-trip failed: slice=%q lexeme=%q", slice, tok.Lexeme)
			}
			continue
		}
		if slice != tok.Lexeme {
			t.Fatalf("lexeme round-trip failed: slice=%q lexeme=%q", slice, tok.Lexeme)
		}
	}
}

func TestLexerTwoByteOperators(t *testing.T) {
	source := "== >= <= != ** << >>"
	l := NewLexer("test", []byte(source))
	tokens := l.Tokenize()
	if l.Errored() {
		t.Fatalf("unexpected lex errors: %v", l.Errors())
	}
	want := []TokenType{TokenEqualEqual, TokenGreaterEqual, TokenLessEqual, TokenBangEqual, TokenStarStar, TokenShl, TokenShr, TokenEOF}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, w := range want {
		if tokens[i].Kind != w {
			t.Fatalf("token %d: got %v, want %v", i, tokens[i].Kind, w)
		}
	}
}

func TestLexerLineTracking(t *testing.T) {
	source := "var a = 1;\nvar b = 2;\nvar c = 3;"
	l := NewLexer("test", []byte(source))
	tokens := l.Tokenize()
	var cLine int
	for _, tok := range tokens {
		if tok.Kind == TokenIdent && tok.Lexeme == "c" {
			cLine = tok.Loc.Line
		}
	}
	if cLine != 3 {
		t.Fatalf("expected 'c' on line 3, got %d", cLine)
	}
}

func TestLexerNestedBlockComment(t *testing.T) {
	source := "/* outer /* inner */ still-comment */ var x = 1;"
	l := NewLexer("test", []byte(source))
	tokens := l.Tokenize()
	if l.Errored() {
		t.Fatalf("unexpected lex errors: %v", l.Errors())
	}
	if tokens[0].Kind != TokenKeyword || tokens[0].Lexeme != "var" {
		t.Fatalf("expected nested block comment to be fully skipped, got first token %v", tokens[0])
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	l := NewLexer("test", []byte(`"unterminated`))
	l.Tokenize()
	if !l.Errored() {
		t.Fatal("expected a lex error for an unterminated string")
	}
	if l.Errors()[0].Class != ErrSyntax {
		t.Fatalf("expected SyntaxError, got %v", l.Errors()[0].Class)
	}
}

func TestLexerIntegerOverflowIsOverflowError(t *testing.T) {
	l := NewLexer("test", []byte("99999999999999999999999999"))
	l.Tokenize()
	if !l.Errored() {
		t.Fatal("expected an overflow error")
	}
	if l.Errors()[0].Class != ErrOverflow {
		t.Fatalf("expected OverflowError, got %v", l.Errors()[0].Class)
	}
}

func TestLexerIntegerOverflowDetectsMultipleWraparounds(t *testing.T) {
	l := NewLexer("test", []byte("24746937327706384614"))
	l.Tokenize()
	if !l.Errored() {
		t.Fatal("expected an overflow error for a 20-digit literal past int64 range")
	}
	if l.Errors()[0].Class != ErrOverflow {
		t.Fatalf("expected OverflowError, got %v", l.Errors()[0].Class)
	}
}

func TestLexerInfAndNan(t *testing.T) {
	l := NewLexer("test", []byte("inf nan"))
	tokens := l.Tokenize()
	if tokens[0].Kind != TokenInf || tokens[1].Kind != TokenNan {
		t.Fatalf("expected Inf, NaN tokens, got %v, %v", tokens[0].Kind, tokens[1].Kind)
	}
}

func TestLexerKeywordTable(t *testing.T) {
	for _, kw := range GetAllKeywords() {
		if !IsKeyword(kw) {
			t.Fatalf("%q should be a keyword", kw)
		}
	}
	if IsKeyword("notakeyword") {
		t.Fatal("unexpected keyword match")
	}
}
