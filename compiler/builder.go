package compiler

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// AST builder: parse tree -> canonical AST
// ---------------------------------------------------------------------------

// Build converts a parse tree into the canonical AST. It fails on the first
// reserved word used as a class name, method selector, assignment target or
// block parameter, and never returns a partially built program.
func Build(tree *Tree) (*Program, error) {
	if tree == nil || tree.Rule != RuleProgram {
		return nil, fmt.Errorf("build: expected program tree, got %v", treeRule(tree))
	}

	prog := &Program{PosVal: tree.Pos}
	for _, child := range tree.Children {
		class, err := buildClass(child)
		if err != nil {
			return nil, err
		}
		prog.Classes = append(prog.Classes, class)
	}
	return prog, nil
}

func treeRule(t *Tree) string {
	if t == nil {
		return "nil"
	}
	return t.Rule.String()
}

func shapeError(t *Tree, want Rule) error {
	return fmt.Errorf("build: malformed parse tree: expected %s, got %s", want, treeRule(t))
}

// buildClass converts: class name parent method*
func buildClass(t *Tree) (*ClassDef, error) {
	if t.Rule != RuleClass || len(t.Children) < 2 {
		return nil, shapeError(t, RuleClass)
	}

	nameTok := t.Children[0].Token
	if err := checkClassName(nameTok, "class name"); err != nil {
		return nil, err
	}

	class := &ClassDef{PosVal: t.Pos, Name: nameTok.Literal, Parent: ClassObject}
	if parent := t.Children[1]; len(parent.Children) > 0 {
		parentTok := parent.Children[0].Token
		if err := checkClassName(parentTok, "parent class name"); err != nil {
			return nil, err
		}
		class.Parent = parentTok.Literal
	}

	for _, m := range t.Children[2:] {
		method, err := buildMethod(m)
		if err != nil {
			return nil, err
		}
		class.Methods = append(class.Methods, method)
	}
	return class, nil
}

// buildMethod converts: selector block
func buildMethod(t *Tree) (*MethodDef, error) {
	if t.Rule != RuleMethod || len(t.Children) != 2 {
		return nil, shapeError(t, RuleMethod)
	}

	selector, err := buildSelector(t.Children[0])
	if err != nil {
		return nil, err
	}
	body, err := buildBlock(t.Children[1])
	if err != nil {
		return nil, err
	}
	return &MethodDef{PosVal: t.Pos, Selector: selector, Body: body}, nil
}

// buildSelector concatenates keyword parts, or validates a unary name.
func buildSelector(t *Tree) (string, error) {
	if t.Rule != RuleSelector || len(t.Children) == 0 {
		return "", shapeError(t, RuleSelector)
	}

	first := t.Children[0].Token
	if first.Type != TokenKeyword {
		if err := checkLowerName(first, "method selector"); err != nil {
			return "", err
		}
		return first.Literal, nil
	}

	var sb strings.Builder
	for _, part := range t.Children {
		sb.WriteString(part.Token.Literal)
	}
	return sb.String(), nil
}

// buildBlock converts: params assign*
func buildBlock(t *Tree) (*Block, error) {
	if t.Rule != RuleBlock || len(t.Children) == 0 || t.Children[0].Rule != RuleParams {
		return nil, shapeError(t, RuleBlock)
	}

	block := &Block{PosVal: t.Pos}
	for _, p := range t.Children[0].Children {
		if err := checkLowerName(p.Token, "block parameter"); err != nil {
			return nil, err
		}
		block.Parameters = append(block.Parameters, &Parameter{PosVal: p.Pos, Name: p.Token.Literal})
	}

	for _, s := range t.Children[1:] {
		stmt, err := buildAssign(s)
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	return block, nil
}

// buildAssign converts: name expr
func buildAssign(t *Tree) (*Assign, error) {
	if t.Rule != RuleAssign || len(t.Children) != 2 {
		return nil, shapeError(t, RuleAssign)
	}

	target := t.Children[0].Token
	if IsReserved(target.Literal) {
		return nil, errorAt(ExitSyntax, target.Pos, "cannot assign to reserved word '%s'", target.Literal)
	}
	if err := checkLowerName(target, "assignment target"); err != nil {
		return nil, err
	}

	value, err := buildExpr(t.Children[1])
	if err != nil {
		return nil, err
	}
	return &Assign{PosVal: t.Pos, Target: target.Literal, Value: value}, nil
}

// buildExpr flattens: base unary* keyword?
func buildExpr(t *Tree) (Expr, error) {
	if t.Rule != RuleExpr || len(t.Children) == 0 {
		return nil, shapeError(t, RuleExpr)
	}

	result, err := buildBase(t.Children[0])
	if err != nil {
		return nil, err
	}

	for _, c := range t.Children[1:] {
		if c.IsLeaf() {
			result = &Send{PosVal: t.Pos, Selector: c.Token.Literal, Receiver: result}
			continue
		}
		send, err := buildKeywordSend(c, result, t.Pos)
		if err != nil {
			return nil, err
		}
		result = send
	}
	return result, nil
}

// buildKeywordSend walks the right-recursive keyword chain and collects its
// parts into a single send.
func buildKeywordSend(t *Tree, receiver Expr, pos Position) (*Send, error) {
	var selector strings.Builder
	send := &Send{PosVal: pos, Receiver: receiver}

	for kw := t; kw != nil; {
		if kw.Rule != RuleKeyword || len(kw.Children) < 2 {
			return nil, shapeError(kw, RuleKeyword)
		}
		selector.WriteString(kw.Children[0].Token.Literal)

		arg, err := buildBase(kw.Children[1])
		if err != nil {
			return nil, err
		}
		send.Args = append(send.Args, arg)

		if len(kw.Children) > 2 {
			kw = kw.Children[2]
		} else {
			kw = nil
		}
	}

	send.Selector = selector.String()
	return send, nil
}

// buildBase converts a primary expression.
func buildBase(t *Tree) (Expr, error) {
	switch t.Rule {
	case RuleToken:
		return buildLiteral(t.Token)

	case RuleBlock:
		block, err := buildBlock(t)
		if err != nil {
			return nil, err
		}
		return &BlockExpr{Block: block}, nil

	case RuleParen:
		if len(t.Children) != 1 {
			return nil, shapeError(t, RuleParen)
		}
		return buildExpr(t.Children[0])
	}
	return nil, shapeError(t, RuleExpr)
}

// buildLiteral classifies a token by its lexical category.
func buildLiteral(tok Token) (Expr, error) {
	switch {
	case tok.Type == TokenInteger:
		return &Literal{PosVal: tok.Pos, Class: ClassInteger, Value: tok.Literal}, nil

	case tok.Type == TokenString:
		return &Literal{PosVal: tok.Pos, Class: ClassString, Value: stripQuotes(tok.Literal)}, nil

	case tok.Type == TokenIdentifier:
		return &Variable{PosVal: tok.Pos, Name: tok.Literal}, nil

	case tok.Type == TokenClassName:
		return &Literal{PosVal: tok.Pos, Class: ClassClass, Value: tok.Literal}, nil

	case tok.Type.IsKeywordLiteral():
		// Keyword literals keep their own text as value and the capitalized
		// text as class: self -> Self/self, nil -> Nil/nil.
		return &Literal{PosVal: tok.Pos, Class: capitalize(tok.Literal), Value: tok.Literal}, nil
	}
	return nil, errorAt(ExitSyntax, tok.Pos, "unexpected %s in expression", describe(tok))
}

// ---------------------------------------------------------------------------
// Identifier legality
// ---------------------------------------------------------------------------

func checkClassName(tok Token, role string) error {
	if IsReserved(tok.Literal) {
		return errorAt(ExitSyntax, tok.Pos, "cannot use reserved word '%s' as %s", tok.Literal, role)
	}
	if tok.Type != TokenClassName {
		return errorAt(ExitSyntax, tok.Pos, "%s '%s' must start with an uppercase letter", role, tok.Literal)
	}
	return nil
}

func checkLowerName(tok Token, role string) error {
	if IsReserved(tok.Literal) {
		return errorAt(ExitSyntax, tok.Pos, "cannot use reserved word '%s' as %s", tok.Literal, role)
	}
	if tok.Type != TokenIdentifier {
		return errorAt(ExitSyntax, tok.Pos, "%s '%s' must start with a lowercase letter", role, tok.Literal)
	}
	return nil
}

func stripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
