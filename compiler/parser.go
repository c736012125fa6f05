package compiler

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for SOL25 syntax
// ---------------------------------------------------------------------------

// Parser parses SOL25 source code into a parse tree. Parsing stops at the
// first lexical or syntactic error.
type Parser struct {
	lexer    *Lexer
	curToken Token
	err      *Error
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.nextToken()
	return p
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.curToken = p.lexer.NextToken()
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

// failed reports whether an error has been recorded.
func (p *Parser) failed() bool {
	return p.err != nil
}

// expect consumes the current token if it matches, otherwise records an
// error.
func (p *Parser) expect(t TokenType) (Token, bool) {
	tok := p.curToken
	if tok.Type == t {
		p.nextToken()
		return tok, true
	}
	p.errorf("expected %s, got %s", t, describe(tok))
	return tok, false
}

// errorf records a syntax error at the current token. If the current token
// is a lexer error, the lexical failure is recorded instead since it is the
// root cause. Only the first error is kept.
func (p *Parser) errorf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	if p.curTokenIs(TokenError) {
		p.err = errorAt(ExitLexical, p.curToken.Pos, "%s", p.curToken.Literal)
		return
	}
	p.err = errorAt(ExitSyntax, p.curToken.Pos, format, args...)
}

// Err returns the first recorded error, or nil.
func (p *Parser) Err() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

func describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "end of input"
	case TokenIdentifier, TokenClassName, TokenKeyword, TokenInteger, TokenString:
		return tok.Type.String() + " '" + tok.Literal + "'"
	}
	return "'" + tok.Literal + "'"
}

// isNameToken reports whether t may appear where a name is expected. Reserved
// words are accepted here so that the AST builder can reject them with a
// precise message.
func isNameToken(t TokenType) bool {
	switch t {
	case TokenIdentifier, TokenClassName, TokenClass:
		return true
	}
	return t.IsKeywordLiteral()
}

// ---------------------------------------------------------------------------
// Top-level parsing
// ---------------------------------------------------------------------------

// Parse parses a complete program.
func Parse(input string) (*Tree, error) {
	p := NewParser(input)
	tree := p.ParseProgram()
	if err := p.Err(); err != nil {
		return nil, err
	}
	return tree, nil
}

// ParseProgram parses class definitions up to the end of input.
func (p *Parser) ParseProgram() *Tree {
	prog := &Tree{Rule: RuleProgram, Pos: p.curToken.Pos}

	for !p.curTokenIs(TokenEOF) && !p.failed() {
		if !p.curTokenIs(TokenClass) {
			p.errorf("expected 'class', got %s", describe(p.curToken))
			return nil
		}
		class := p.parseClass()
		if class == nil {
			return nil
		}
		prog.Children = append(prog.Children, class)
	}

	if p.failed() {
		return nil
	}
	return prog
}

// parseClass parses: class Name [: Parent] { method* }
func (p *Parser) parseClass() *Tree {
	startPos := p.curToken.Pos
	p.nextToken() // consume 'class'

	if !isNameToken(p.curToken.Type) {
		p.errorf("expected class name, got %s", describe(p.curToken))
		return nil
	}
	name := leaf(p.curToken)
	p.nextToken()

	parent := &Tree{Rule: RuleParent, Pos: p.curToken.Pos}
	if p.curTokenIs(TokenColon) {
		p.nextToken()
		if !isNameToken(p.curToken.Type) {
			p.errorf("expected parent class name, got %s", describe(p.curToken))
			return nil
		}
		parent.Children = append(parent.Children, leaf(p.curToken))
		p.nextToken()
	}

	if _, ok := p.expect(TokenLBrace); !ok {
		return nil
	}

	class := &Tree{Rule: RuleClass, Pos: startPos, Children: []*Tree{name, parent}}
	for !p.curTokenIs(TokenRBrace) {
		method := p.parseMethod()
		if method == nil {
			return nil
		}
		class.Children = append(class.Children, method)
	}
	p.nextToken() // consume }

	return class
}

// parseMethod parses: selector block
func (p *Parser) parseMethod() *Tree {
	startPos := p.curToken.Pos

	selector := p.parseSelector()
	if selector == nil {
		return nil
	}

	if !p.curTokenIs(TokenLBracket) {
		p.errorf("expected '[' after method selector, got %s", describe(p.curToken))
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}

	return &Tree{Rule: RuleMethod, Pos: startPos, Children: []*Tree{selector, body}}
}

// parseSelector parses a unary selector name or a sequence of keyword parts.
func (p *Parser) parseSelector() *Tree {
	sel := &Tree{Rule: RuleSelector, Pos: p.curToken.Pos}

	switch {
	case p.curTokenIs(TokenKeyword):
		for p.curTokenIs(TokenKeyword) {
			sel.Children = append(sel.Children, leaf(p.curToken))
			p.nextToken()
		}

	case isNameToken(p.curToken.Type):
		sel.Children = append(sel.Children, leaf(p.curToken))
		p.nextToken()

	default:
		p.errorf("expected method selector or '}', got %s", describe(p.curToken))
		return nil
	}

	return sel
}

// parseBlock parses: [ :p1 :p2 | stmt. stmt. ]
func (p *Parser) parseBlock() *Tree {
	startPos := p.curToken.Pos
	p.nextToken() // consume [

	params := &Tree{Rule: RuleParams, Pos: p.curToken.Pos}
	for p.curTokenIs(TokenColon) {
		p.nextToken()
		if !isNameToken(p.curToken.Type) {
			p.errorf("expected parameter name after ':', got %s", describe(p.curToken))
			return nil
		}
		params.Children = append(params.Children, leaf(p.curToken))
		p.nextToken()
	}

	if _, ok := p.expect(TokenBar); !ok {
		return nil
	}

	block := &Tree{Rule: RuleBlock, Pos: startPos, Children: []*Tree{params}}
	for !p.curTokenIs(TokenRBracket) {
		stmt := p.parseAssign()
		if stmt == nil {
			return nil
		}
		block.Children = append(block.Children, stmt)
	}
	p.nextToken() // consume ]

	return block
}

// parseAssign parses: name := expr .
func (p *Parser) parseAssign() *Tree {
	if !isNameToken(p.curToken.Type) {
		p.errorf("expected assignment or ']', got %s", describe(p.curToken))
		return nil
	}
	target := leaf(p.curToken)
	p.nextToken()

	if _, ok := p.expect(TokenAssign); !ok {
		return nil
	}

	value := p.parseExpr()
	if value == nil {
		return nil
	}

	if _, ok := p.expect(TokenPeriod); !ok {
		return nil
	}

	return &Tree{Rule: RuleAssign, Pos: target.Pos, Children: []*Tree{target, value}}
}

// ---------------------------------------------------------------------------
// Expression parsing
// ---------------------------------------------------------------------------

// parseExpr parses a base expression followed by unary sends and an optional
// keyword message.
func (p *Parser) parseExpr() *Tree {
	startPos := p.curToken.Pos

	base := p.parseBase()
	if base == nil {
		return nil
	}
	expr := &Tree{Rule: RuleExpr, Pos: startPos, Children: []*Tree{base}}

	for p.curTokenIs(TokenIdentifier) {
		expr.Children = append(expr.Children, leaf(p.curToken))
		p.nextToken()
	}

	if p.curTokenIs(TokenKeyword) {
		kw := p.parseKeyword()
		if kw == nil {
			return nil
		}
		expr.Children = append(expr.Children, kw)
	}

	return expr
}

// parseKeyword parses one keyword part and its argument, then the rest of
// the message recursively.
func (p *Parser) parseKeyword() *Tree {
	kw := &Tree{Rule: RuleKeyword, Pos: p.curToken.Pos, Children: []*Tree{leaf(p.curToken)}}
	p.nextToken()

	arg := p.parseBase()
	if arg == nil {
		return nil
	}
	kw.Children = append(kw.Children, arg)

	if p.curTokenIs(TokenKeyword) {
		rest := p.parseKeyword()
		if rest == nil {
			return nil
		}
		kw.Children = append(kw.Children, rest)
	}

	return kw
}

// parseBase parses a primary expression.
func (p *Parser) parseBase() *Tree {
	tok := p.curToken

	switch {
	case tok.Type == TokenInteger, tok.Type == TokenString,
		tok.Type == TokenIdentifier, tok.Type == TokenClassName,
		tok.Type.IsKeywordLiteral():
		p.nextToken()
		return leaf(tok)

	case tok.Type == TokenLBracket:
		return p.parseBlock()

	case tok.Type == TokenLParen:
		p.nextToken()
		inner := p.parseExpr()
		if inner == nil {
			return nil
		}
		if _, ok := p.expect(TokenRParen); !ok {
			return nil
		}
		return &Tree{Rule: RuleParen, Pos: tok.Pos, Children: []*Tree{inner}}

	default:
		p.errorf("expected expression, got %s", describe(tok))
		return nil
	}
}
