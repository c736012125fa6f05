package compiler

import (
	"fmt"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for SOL25 source
// ---------------------------------------------------------------------------

// Lexer tokenizes SOL25 source code.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // column of ch (1-based)
	nextCol int  // column of the character after ch
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input:   input,
		line:    1,
		nextCol: 1,
	}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.nextCol = 1
	}
	l.col = l.nextCol
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.nextCol++
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// position returns the position of the current character.
func (l *Lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	if errTok, ok := l.skipWhitespaceAndComments(); !ok {
		return errTok
	}

	pos := l.position()

	switch {
	case l.atEOF():
		return Token{Type: TokenEOF, Literal: "", Pos: pos}

	case l.ch == '(':
		l.readChar()
		return Token{Type: TokenLParen, Literal: "(", Pos: pos}

	case l.ch == ')':
		l.readChar()
		return Token{Type: TokenRParen, Literal: ")", Pos: pos}

	case l.ch == '[':
		l.readChar()
		return Token{Type: TokenLBracket, Literal: "[", Pos: pos}

	case l.ch == ']':
		l.readChar()
		return Token{Type: TokenRBracket, Literal: "]", Pos: pos}

	case l.ch == '{':
		l.readChar()
		return Token{Type: TokenLBrace, Literal: "{", Pos: pos}

	case l.ch == '}':
		l.readChar()
		return Token{Type: TokenRBrace, Literal: "}", Pos: pos}

	case l.ch == '.':
		l.readChar()
		return Token{Type: TokenPeriod, Literal: ".", Pos: pos}

	case l.ch == '|':
		l.readChar()
		return Token{Type: TokenBar, Literal: "|", Pos: pos}

	case l.ch == ':':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return Token{Type: TokenAssign, Literal: ":=", Pos: pos}
		}
		return Token{Type: TokenColon, Literal: ":", Pos: pos}

	case l.ch == '\'':
		return l.readString(pos)

	case isDigit(l.ch):
		return l.readNumber(pos)

	case (l.ch == '-' || l.ch == '+') && isDigit(l.peekChar()):
		return l.readNumber(pos)

	case isLetter(l.ch):
		return l.readIdentifierOrKeyword(pos)

	default:
		ch := l.ch
		l.readChar()
		return Token{Type: TokenError, Literal: fmt.Sprintf("unexpected character %q", ch), Pos: pos}
	}
}

// skipWhitespaceAndComments skips whitespace and "..." comments. It returns
// an error token and false when a comment is never closed.
func (l *Lexer) skipWhitespaceAndComments() (Token, bool) {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		if l.ch != '"' || l.atEOF() {
			return Token{}, true
		}

		pos := l.position()
		l.readChar() // consume opening "
		for l.ch != '"' && !l.atEOF() {
			l.readChar()
		}
		if l.atEOF() {
			return Token{Type: TokenError, Literal: "unterminated comment", Pos: pos}, false
		}
		l.readChar() // consume closing "
	}
}

// readString reads a string literal. The token literal keeps the quotes and
// the escape sequences exactly as written. Control characters and '"' are
// not allowed inside a string.
func (l *Lexer) readString(pos Position) Token {
	start := l.pos
	l.readChar() // consume opening '

	for {
		switch {
		case l.atEOF() || l.ch == '\n':
			return Token{Type: TokenError, Literal: "unterminated string", Pos: pos}

		case l.ch == '\\':
			escPos := l.position()
			l.readChar()
			switch l.ch {
			case '\'', 'n', '\\':
				l.readChar()
			default:
				if l.atEOF() {
					return Token{Type: TokenError, Literal: "unterminated string", Pos: pos}
				}
				return Token{Type: TokenError, Literal: fmt.Sprintf("invalid escape sequence \\%c", l.ch), Pos: escPos}
			}

		case l.ch == '\'':
			l.readChar() // consume closing '
			return Token{Type: TokenString, Literal: l.input[start:l.pos], Pos: pos}

		case l.ch < 0x20 || l.ch == 0x7f || l.ch == '"':
			return Token{Type: TokenError, Literal: fmt.Sprintf("invalid character %q in string", l.ch), Pos: l.position()}

		default:
			l.readChar()
		}
	}
}

// readNumber reads an integer literal with an optional attached sign.
func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos

	if l.ch == '-' || l.ch == '+' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}

	if isLetter(l.ch) || l.ch == '_' {
		return Token{Type: TokenError, Literal: fmt.Sprintf("malformed number %s%c", l.input[start:l.pos], l.ch), Pos: pos}
	}

	return Token{Type: TokenInteger, Literal: l.input[start:l.pos], Pos: pos}
}

// readIdentifierOrKeyword reads an identifier, class name, reserved word or
// keyword selector part.
func (l *Lexer) readIdentifierOrKeyword(pos Position) Token {
	start := l.pos
	first := l.ch

	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	literal := l.input[start:l.pos]

	if isUpper(first) {
		return Token{Type: TokenClassName, Literal: literal, Pos: pos}
	}

	// Keyword part: a lowercase identifier immediately followed by ':' that
	// does not start an assignment.
	if l.ch == ':' && l.peekChar() != '=' {
		l.readChar() // consume :
		return Token{Type: TokenKeyword, Literal: literal + ":", Pos: pos}
	}

	if tokType, ok := reservedWords[literal]; ok {
		return Token{Type: tokType, Literal: literal, Pos: pos}
	}

	return Token{Type: TokenIdentifier, Literal: literal, Pos: pos}
}

// Helper functions

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || isUpper(r)
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Tokenize returns all tokens from the input, stopping after EOF or the
// first error token.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}
	return tokens
}
