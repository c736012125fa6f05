package compiler

import "strings"

// ---------------------------------------------------------------------------
// AST: canonical syntax tree for SOL25
// ---------------------------------------------------------------------------

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Position
	node() // marker method
}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Expr is the interface for expression nodes. The set of implementations is
// closed: *Literal, *Variable, *Send and *BlockExpr.
type Expr interface {
	Node
	expr() // marker method
}

// Literal class tags.
const (
	ClassInteger = "Integer"
	ClassString  = "String"
	ClassClass   = "Class"
	ClassObject  = "Object"
	ClassNil     = "Nil"
	ClassBlock   = "Block"
	ClassTrue    = "True"
	ClassFalse   = "False"
	ClassSelf    = "Self"
	ClassSuper   = "Super"
)

// Literal represents a constant: an integer, a string with its quotes
// stripped, a class reference, or one of the keyword literals.
type Literal struct {
	PosVal Position
	Class  string
	Value  string
}

func (n *Literal) Pos() Position { return n.PosVal }
func (n *Literal) node()         {}
func (n *Literal) expr()         {}

// Variable represents a variable reference.
type Variable struct {
	PosVal Position
	Name   string
}

func (n *Variable) Pos() Position { return n.PosVal }
func (n *Variable) node()         {}
func (n *Variable) expr()         {}

// Send represents a message send. Unary sends have no arguments; keyword
// sends carry one argument per selector part.
type Send struct {
	PosVal   Position
	Selector string
	Receiver Expr
	Args     []Expr
}

func (n *Send) Pos() Position { return n.PosVal }
func (n *Send) node()         {}
func (n *Send) expr()         {}

// BlockExpr is a block used as a value inside an expression.
type BlockExpr struct {
	Block *Block
}

func (n *BlockExpr) Pos() Position { return n.Block.PosVal }
func (n *BlockExpr) node()         {}
func (n *BlockExpr) expr()         {}

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// Stmt is the interface for statement nodes. Assign is the only statement.
type Stmt interface {
	Node
	stmt() // marker method
}

// Assign represents a variable assignment (x := expr).
type Assign struct {
	PosVal Position
	Target string
	Value  Expr
}

func (n *Assign) Pos() Position { return n.PosVal }
func (n *Assign) node()         {}
func (n *Assign) stmt()         {}

// ---------------------------------------------------------------------------
// Blocks, methods and classes
// ---------------------------------------------------------------------------

// Parameter is a formal block parameter.
type Parameter struct {
	PosVal Position
	Name   string
}

func (n *Parameter) Pos() Position { return n.PosVal }
func (n *Parameter) node()         {}

// Block represents [:a :b | stmts].
type Block struct {
	PosVal     Position
	Parameters []*Parameter
	Statements []Stmt
}

func (n *Block) Pos() Position { return n.PosVal }
func (n *Block) node()         {}

// Arity returns the formal arity of the block.
func (n *Block) Arity() int { return len(n.Parameters) }

// MethodDef represents a method definition.
type MethodDef struct {
	PosVal   Position
	Selector string // full selector: "run", "at:put:"
	Body     *Block
}

func (n *MethodDef) Pos() Position { return n.PosVal }
func (n *MethodDef) node()         {}

// Arity returns the declared arity of the method, derived from the number of
// colon-terminated parts in its selector.
func (n *MethodDef) Arity() int { return SelectorArity(n.Selector) }

// ClassDef represents a class definition.
type ClassDef struct {
	PosVal  Position
	Name    string
	Parent  string
	Methods []*MethodDef
}

func (n *ClassDef) Pos() Position { return n.PosVal }
func (n *ClassDef) node()         {}

// Program is the root of the tree.
type Program struct {
	PosVal  Position
	Classes []*ClassDef
}

func (n *Program) Pos() Position { return n.PosVal }
func (n *Program) node()         {}

// ---------------------------------------------------------------------------
// Helper functions
// ---------------------------------------------------------------------------

// SelectorArity returns the number of arguments a selector expects.
func SelectorArity(selector string) int {
	return strings.Count(selector, ":")
}
