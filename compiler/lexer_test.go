package compiler

import (
	"strings"
	"testing"
)

func TestLexerBasicTokens(t *testing.T) {
	input := `( ) [ ] { } . := : |`
	expected := []struct {
		typ TokenType
		lit string
	}{
		{TokenLParen, "("},
		{TokenRParen, ")"},
		{TokenLBracket, "["},
		{TokenRBracket, "]"},
		{TokenLBrace, "{"},
		{TokenRBrace, "}"},
		{TokenPeriod, "."},
		{TokenAssign, ":="},
		{TokenColon, ":"},
		{TokenBar, "|"},
		{TokenEOF, ""},
	}

	l := NewLexer(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ {
			t.Errorf("token[%d] type = %v, want %v", i, tok.Type, exp.typ)
		}
		if tok.Literal != exp.lit {
			t.Errorf("token[%d] literal = %q, want %q", i, tok.Literal, exp.lit)
		}
	}
}

func TestLexerIntegers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"42", "42"},
		{"0", "0"},
		{"-123", "-123"},
		{"+7", "+7"},
		{"007", "007"},
	}

	for _, tc := range tests {
		l := NewLexer(tc.input)
		tok := l.NextToken()
		if tok.Type != TokenInteger {
			t.Errorf("Lexer(%q): type = %v, want INTEGER", tc.input, tok.Type)
		}
		if tok.Literal != tc.want {
			t.Errorf("Lexer(%q): literal = %q, want %q", tc.input, tok.Literal, tc.want)
		}
	}
}

func TestLexerStrings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`'hello'`, `'hello'`},
		{`''`, `''`},
		{`'hello world'`, `'hello world'`},
		{`'it\'s'`, `'it\'s'`},
		{`'line\nbreak'`, `'line\nbreak'`},
		{`'back\\slash'`, `'back\\slash'`},
		{`'こんにちは'`, `'こんにちは'`},
	}

	for _, tc := range tests {
		l := NewLexer(tc.input)
		tok := l.NextToken()
		if tok.Type != TokenString {
			t.Errorf("Lexer(%q): type = %v, want STRING", tc.input, tok.Type)
			continue
		}
		if tok.Literal != tc.want {
			t.Errorf("Lexer(%q): literal = %q, want %q", tc.input, tok.Literal, tc.want)
		}
		if next := l.NextToken(); next.Type != TokenEOF {
			t.Errorf("Lexer(%q): trailing token %v", tc.input, next)
		}
	}
}

func TestLexerNames(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
		lit   string
	}{
		{"foo", TokenIdentifier, "foo"},
		{"x1", TokenIdentifier, "x1"},
		{"my_var", TokenIdentifier, "my_var"},
		{"tmp_", TokenIdentifier, "tmp_"},
		{"Main", TokenClassName, "Main"},
		{"Object2", TokenClassName, "Object2"},
		{"at:", TokenKeyword, "at:"},
		{"ifTrue:", TokenKeyword, "ifTrue:"},
		{"class", TokenClass, "class"},
		{"self", TokenSelf, "self"},
		{"super", TokenSuper, "super"},
		{"nil", TokenNil, "nil"},
		{"true", TokenTrue, "true"},
		{"false", TokenFalse, "false"},
		{"selfish", TokenIdentifier, "selfish"},
		{"Nil", TokenClassName, "Nil"},
	}

	for _, tc := range tests {
		tok := NewLexer(tc.input).NextToken()
		if tok.Type != tc.typ {
			t.Errorf("Lexer(%q): type = %v, want %v", tc.input, tok.Type, tc.typ)
		}
		if tok.Literal != tc.lit {
			t.Errorf("Lexer(%q): literal = %q, want %q", tc.input, tok.Literal, tc.lit)
		}
	}
}

func TestLexerKeywordVersusAssign(t *testing.T) {
	tokens := Tokenize("x:=y at:1 Main:Object")
	want := []TokenType{
		TokenIdentifier, TokenAssign, TokenIdentifier,
		TokenKeyword, TokenInteger,
		TokenClassName, TokenColon, TokenClassName,
		TokenEOF,
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(tokens), tokens, len(want))
	}
	for i, typ := range want {
		if tokens[i].Type != typ {
			t.Errorf("token[%d] = %v, want %v", i, tokens[i], typ)
		}
	}
}

func TestLexerComments(t *testing.T) {
	tokens := Tokenize("\"leading comment\" foo \"middle\nspanning lines\" bar \"\"")
	if len(tokens) != 3 {
		t.Fatalf("got %d tokens %v, want 3", len(tokens), tokens)
	}
	if tokens[0].Literal != "foo" || tokens[1].Literal != "bar" || tokens[2].Type != TokenEOF {
		t.Errorf("tokens = %v", tokens)
	}
}

func TestLexerPositions(t *testing.T) {
	input := "class Main {\n  run [ | ]\n}"
	tokens := Tokenize(input)

	expected := []struct {
		lit  string
		line int
		col  int
	}{
		{"class", 1, 1},
		{"Main", 1, 7},
		{"{", 1, 12},
		{"run", 2, 3},
		{"[", 2, 7},
		{"|", 2, 9},
		{"]", 2, 11},
		{"}", 3, 1},
	}

	for i, exp := range expected {
		tok := tokens[i]
		if tok.Literal != exp.lit || tok.Pos.Line != exp.line || tok.Pos.Column != exp.col {
			t.Errorf("token[%d] = %q at %d:%d, want %q at %d:%d",
				i, tok.Literal, tok.Pos.Line, tok.Pos.Column, exp.lit, exp.line, exp.col)
		}
	}
	if got := tokens[3].Pos.Offset; got != strings.Index(input, "run") {
		t.Errorf("offset of run = %d, want %d", got, strings.Index(input, "run"))
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{`'unterminated`, "unterminated string"},
		{"'broken\nstring'", "unterminated string"},
		{`'bad \t escape'`, `invalid escape sequence \t`},
		{`"open comment`, "unterminated comment"},
		{`12abc`, "malformed number 12a"},
		{`#`, "unexpected character '#'"},
		{`x + y`, "unexpected character '+'"},
		{`café`, "unexpected character 'é'"},
		{`_x`, "unexpected character '_'"},
		{"'a\x01b'", `invalid character '\x01' in string`},
		{"'a\rb'", `invalid character '\r' in string`},
		{"'a\tb'", `invalid character '\t' in string`},
		{"'a\x7fb'", `invalid character '\x7f' in string`},
		{`'say "hi"'`, `invalid character '"' in string`},
	}

	for _, tc := range tests {
		tokens := Tokenize(tc.input)
		last := tokens[len(tokens)-1]
		if last.Type != TokenError {
			t.Errorf("Tokenize(%q): last token = %v, want ERROR", tc.input, last)
			continue
		}
		if last.Literal != tc.msg {
			t.Errorf("Tokenize(%q): error = %q, want %q", tc.input, last.Literal, tc.msg)
		}
	}
}

func TestLexerErrorPosition(t *testing.T) {
	tokens := Tokenize("x := 'ok\\q'")
	last := tokens[len(tokens)-1]
	if last.Type != TokenError {
		t.Fatalf("last token = %v, want ERROR", last)
	}
	// Points at the backslash, not the opening quote
	if last.Pos.Line != 1 || last.Pos.Column != 9 {
		t.Errorf("error at %d:%d, want 1:9", last.Pos.Line, last.Pos.Column)
	}
}

func TestLexerStringCharacterPosition(t *testing.T) {
	tokens := Tokenize("x := 'ab\x01'")
	last := tokens[len(tokens)-1]
	if last.Type != TokenError {
		t.Fatalf("last token = %v, want ERROR", last)
	}
	if last.Pos.Column != 9 || last.Pos.Offset != 8 {
		t.Errorf("error at column %d offset %d, want column 9 offset 8", last.Pos.Column, last.Pos.Offset)
	}
}

func TestIsReserved(t *testing.T) {
	for _, word := range []string{"class", "self", "super", "nil", "true", "false"} {
		if !IsReserved(word) {
			t.Errorf("IsReserved(%q) = false, want true", word)
		}
	}
	for _, word := range []string{"Main", "Nil", "selfish", "run", ""} {
		if IsReserved(word) {
			t.Errorf("IsReserved(%q) = true, want false", word)
		}
	}
}
