// Package wire provides a compact, deterministic CBOR encoding of the
// canonical AST, and a content fingerprint derived from it.
package wire

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/sol25/compiler"
)

// Version is stored in every encoded program. Bumping it changes every
// fingerprint.
const Version = 1

// cborEncMode uses canonical options for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Expression kinds.
const (
	KindLiteral  uint8 = 1
	KindVariable uint8 = 2
	KindSend     uint8 = 3
	KindBlock    uint8 = 4
)

// Program is the wire form of compiler.Program.
type Program struct {
	Version     int     `cbor:"1,keyasint"`
	Description string  `cbor:"2,keyasint,omitempty"`
	Classes     []Class `cbor:"3,keyasint"`
}

// Class is the wire form of compiler.ClassDef.
type Class struct {
	Name    string   `cbor:"1,keyasint"`
	Parent  string   `cbor:"2,keyasint"`
	Methods []Method `cbor:"3,keyasint,omitempty"`
}

// Method is the wire form of compiler.MethodDef.
type Method struct {
	Selector string `cbor:"1,keyasint"`
	Body     Block  `cbor:"2,keyasint"`
}

// Block is the wire form of compiler.Block.
type Block struct {
	Params []string `cbor:"1,keyasint,omitempty"`
	Stmts  []Assign `cbor:"2,keyasint,omitempty"`
}

// Assign is the wire form of compiler.Assign.
type Assign struct {
	Target string `cbor:"1,keyasint"`
	Value  Expr   `cbor:"2,keyasint"`
}

// Expr is the wire form of every expression kind. Only the fields of its
// kind are set.
type Expr struct {
	Kind     uint8  `cbor:"1,keyasint"`
	Class    string `cbor:"2,keyasint,omitempty"`
	Value    string `cbor:"3,keyasint,omitempty"`
	Name     string `cbor:"4,keyasint,omitempty"`
	Selector string `cbor:"5,keyasint,omitempty"`
	Receiver *Expr  `cbor:"6,keyasint,omitempty"`
	Args     []Expr `cbor:"7,keyasint,omitempty"`
	Block    *Block `cbor:"8,keyasint,omitempty"`
}

// Marshal serializes prog and its description to canonical CBOR bytes.
func Marshal(prog *compiler.Program, description string) ([]byte, error) {
	return cborEncMode.Marshal(FromProgram(prog, description))
}

// Unmarshal deserializes a program and its description from CBOR bytes.
func Unmarshal(data []byte) (*compiler.Program, string, error) {
	var p Program
	if err := cbor.Unmarshal(data, &p); err != nil {
		return nil, "", fmt.Errorf("wire: unmarshal program: %w", err)
	}
	if p.Version != Version {
		return nil, "", fmt.Errorf("wire: unsupported version %d", p.Version)
	}
	prog, err := p.ToProgram()
	if err != nil {
		return nil, "", err
	}
	return prog, p.Description, nil
}

// Fingerprint returns the SHA-256 of the canonical encoding of prog without
// its description. Programs that differ only in layout, comments or source
// positions share a fingerprint.
func Fingerprint(prog *compiler.Program) ([32]byte, error) {
	data, err := Marshal(prog, "")
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

// FromProgram converts the canonical AST into its wire form.
func FromProgram(prog *compiler.Program, description string) *Program {
	p := &Program{Version: Version, Description: description}
	for _, class := range prog.Classes {
		c := Class{Name: class.Name, Parent: class.Parent}
		for _, m := range class.Methods {
			c.Methods = append(c.Methods, Method{Selector: m.Selector, Body: fromBlock(m.Body)})
		}
		p.Classes = append(p.Classes, c)
	}
	return p
}

func fromBlock(b *compiler.Block) Block {
	var out Block
	for _, param := range b.Parameters {
		out.Params = append(out.Params, param.Name)
	}
	for _, stmt := range b.Statements {
		switch s := stmt.(type) {
		case *compiler.Assign:
			out.Stmts = append(out.Stmts, Assign{Target: s.Target, Value: fromExpr(s.Value)})
		}
	}
	return out
}

func fromExpr(expr compiler.Expr) Expr {
	switch e := expr.(type) {
	case *compiler.Literal:
		return Expr{Kind: KindLiteral, Class: e.Class, Value: e.Value}
	case *compiler.Variable:
		return Expr{Kind: KindVariable, Name: e.Name}
	case *compiler.Send:
		recv := fromExpr(e.Receiver)
		out := Expr{Kind: KindSend, Selector: e.Selector, Receiver: &recv}
		for _, arg := range e.Args {
			out.Args = append(out.Args, fromExpr(arg))
		}
		return out
	case *compiler.BlockExpr:
		b := fromBlock(e.Block)
		return Expr{Kind: KindBlock, Block: &b}
	}
	panic(fmt.Sprintf("wire: unhandled expression %T", expr))
}

// ToProgram converts the wire form back into the canonical AST. Positions
// are zero.
func (p *Program) ToProgram() (*compiler.Program, error) {
	prog := &compiler.Program{}
	for _, c := range p.Classes {
		class := &compiler.ClassDef{Name: c.Name, Parent: c.Parent}
		for _, m := range c.Methods {
			body, err := m.Body.toBlock()
			if err != nil {
				return nil, err
			}
			class.Methods = append(class.Methods, &compiler.MethodDef{Selector: m.Selector, Body: body})
		}
		prog.Classes = append(prog.Classes, class)
	}
	return prog, nil
}

func (b *Block) toBlock() (*compiler.Block, error) {
	out := &compiler.Block{}
	for _, name := range b.Params {
		out.Parameters = append(out.Parameters, &compiler.Parameter{Name: name})
	}
	for _, s := range b.Stmts {
		value, err := s.Value.toExpr()
		if err != nil {
			return nil, err
		}
		out.Statements = append(out.Statements, &compiler.Assign{Target: s.Target, Value: value})
	}
	return out, nil
}

func (e *Expr) toExpr() (compiler.Expr, error) {
	switch e.Kind {
	case KindLiteral:
		return &compiler.Literal{Class: e.Class, Value: e.Value}, nil

	case KindVariable:
		return &compiler.Variable{Name: e.Name}, nil

	case KindSend:
		if e.Receiver == nil {
			return nil, fmt.Errorf("wire: send %s has no receiver", e.Selector)
		}
		recv, err := e.Receiver.toExpr()
		if err != nil {
			return nil, err
		}
		send := &compiler.Send{Selector: e.Selector, Receiver: recv}
		for i := range e.Args {
			arg, err := e.Args[i].toExpr()
			if err != nil {
				return nil, err
			}
			send.Args = append(send.Args, arg)
		}
		return send, nil

	case KindBlock:
		if e.Block == nil {
			return nil, fmt.Errorf("wire: block expression has no body")
		}
		block, err := e.Block.toBlock()
		if err != nil {
			return nil, err
		}
		return &compiler.BlockExpr{Block: block}, nil
	}
	return nil, fmt.Errorf("wire: unknown expression kind %d", e.Kind)
}
