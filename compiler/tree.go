package compiler

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Parse tree: the concrete tree produced by the parser
// ---------------------------------------------------------------------------

// Rule names a grammar production.
type Rule int

const (
	RuleToken    Rule = iota // leaf holding a single token
	RuleProgram              // Class*
	RuleClass                // name Parent Method*
	RuleParent               // name?
	RuleMethod               // Selector Block
	RuleSelector             // name | keyword+
	RuleBlock                // Params Assign*
	RuleParams               // name*
	RuleAssign               // name Expr
	RuleExpr                 // base name* Keyword?
	RuleKeyword              // keyword base Keyword?
	RuleParen                // Expr
)

var ruleNames = map[Rule]string{
	RuleToken:    "token",
	RuleProgram:  "program",
	RuleClass:    "class",
	RuleParent:   "parent",
	RuleMethod:   "method",
	RuleSelector: "selector",
	RuleBlock:    "block",
	RuleParams:   "params",
	RuleAssign:   "assign",
	RuleExpr:     "expr",
	RuleKeyword:  "keyword",
	RuleParen:    "paren",
}

func (r Rule) String() string {
	if name, ok := ruleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Rule(%d)", r)
}

// Tree is a node of the parse tree. Leaves have Rule == RuleToken and carry
// their token; inner nodes carry children in source order.
type Tree struct {
	Rule     Rule
	Token    Token
	Children []*Tree
	Pos      Position
}

func leaf(tok Token) *Tree {
	return &Tree{Rule: RuleToken, Token: tok, Pos: tok.Pos}
}

// IsLeaf reports whether t holds a single token.
func (t *Tree) IsLeaf() bool {
	return t.Rule == RuleToken
}

// Pretty renders the tree with one node per line, for debugging.
func (t *Tree) Pretty() string {
	var sb strings.Builder
	t.pretty(&sb, 0)
	return sb.String()
}

func (t *Tree) pretty(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	if t.IsLeaf() {
		fmt.Fprintf(sb, "%s\n", t.Token)
		return
	}
	sb.WriteString(t.Rule.String())
	sb.WriteByte('\n')
	for _, c := range t.Children {
		c.pretty(sb, depth+1)
	}
}
