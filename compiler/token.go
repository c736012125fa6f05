package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the SOL25 lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenInteger // 42, -7, +3
	TokenString  // 'hello'

	// Names
	TokenIdentifier // foo, x1, my_var
	TokenClassName  // Main, Object, Integer
	TokenKeyword    // at:, put:, value:

	// Delimiters
	TokenLParen   // (
	TokenRParen   // )
	TokenLBracket // [
	TokenRBracket // ]
	TokenLBrace   // {
	TokenRBrace   // }
	TokenPeriod   // .
	TokenAssign   // :=
	TokenColon    // :
	TokenBar      // |

	// Reserved identifiers
	TokenClass
	TokenSelf
	TokenSuper
	TokenNil
	TokenTrue
	TokenFalse
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenError:      "ERROR",
	TokenInteger:    "INTEGER",
	TokenString:     "STRING",
	TokenIdentifier: "IDENTIFIER",
	TokenClassName:  "CLASSNAME",
	TokenKeyword:    "KEYWORD",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenLBracket:   "[",
	TokenRBracket:   "]",
	TokenLBrace:     "{",
	TokenRBrace:     "}",
	TokenPeriod:     ".",
	TokenAssign:     ":=",
	TokenColon:      ":",
	TokenBar:        "|",
	TokenClass:      "class",
	TokenSelf:       "self",
	TokenSuper:      "super",
	TokenNil:        "nil",
	TokenTrue:       "true",
	TokenFalse:      "false",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// IsKeywordLiteral reports whether t is one of the pseudo-variable literals
// self, super, nil, true and false.
func (t TokenType) IsKeywordLiteral() bool {
	switch t {
	case TokenSelf, TokenSuper, TokenNil, TokenTrue, TokenFalse:
		return true
	}
	return false
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // the raw text, strings keep their quotes
	Pos     Position // start position
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	if len(t.Literal) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Literal[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// Reserved words mapped to their token types.
var reservedWords = map[string]TokenType{
	"class": TokenClass,
	"self":  TokenSelf,
	"super": TokenSuper,
	"nil":   TokenNil,
	"true":  TokenTrue,
	"false": TokenFalse,
}

// IsReserved reports whether name is a reserved word of the language.
func IsReserved(name string) bool {
	_, ok := reservedWords[name]
	return ok
}
