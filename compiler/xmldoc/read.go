package xmldoc

import (
	"fmt"
	"io"
	"strconv"

	"github.com/beevik/etree"

	"github.com/chazu/sol25/compiler"
)

// Parsed is a document read back into the canonical AST.
type Parsed struct {
	Program     *compiler.Program
	Description string
}

// Unmarshal reads a document produced by Document. Order attributes are
// ignored: document order is authoritative. Positions in the returned tree
// are zero.
func Unmarshal(data []byte) (*Parsed, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("xmldoc: %w", err)
	}
	return fromDocument(doc)
}

// Read is like Unmarshal but consumes r.
func Read(r io.Reader) (*Parsed, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("xmldoc: %w", err)
	}
	return fromDocument(doc)
}

func fromDocument(doc *etree.Document) (*Parsed, error) {
	root := doc.Root()
	if root == nil || root.Tag != tagProgram {
		return nil, fmt.Errorf("xmldoc: missing <%s> root element", tagProgram)
	}
	if lang := root.SelectAttrValue(attrLanguage, ""); lang != Language {
		return nil, fmt.Errorf("xmldoc: unsupported language %q", lang)
	}

	prog := &compiler.Program{}
	for _, classEl := range root.ChildElements() {
		class, err := readClass(classEl)
		if err != nil {
			return nil, err
		}
		prog.Classes = append(prog.Classes, class)
	}

	return &Parsed{
		Program:     prog,
		Description: root.SelectAttrValue(attrDescription, ""),
	}, nil
}

func requireAttr(el *etree.Element, key string) (string, error) {
	attr := el.SelectAttr(key)
	if attr == nil {
		return "", fmt.Errorf("xmldoc: <%s> is missing attribute %q", el.Tag, key)
	}
	return attr.Value, nil
}

func expectTag(el *etree.Element, tag string) error {
	if el.Tag != tag {
		return fmt.Errorf("xmldoc: expected <%s>, got <%s>", tag, el.Tag)
	}
	return nil
}

func readClass(el *etree.Element) (*compiler.ClassDef, error) {
	if err := expectTag(el, tagClass); err != nil {
		return nil, err
	}
	name, err := requireAttr(el, attrName)
	if err != nil {
		return nil, err
	}
	parent, err := requireAttr(el, attrParent)
	if err != nil {
		return nil, err
	}

	class := &compiler.ClassDef{Name: name, Parent: parent}
	for _, methodEl := range el.ChildElements() {
		if err := expectTag(methodEl, tagMethod); err != nil {
			return nil, err
		}
		selector, err := requireAttr(methodEl, attrSelector)
		if err != nil {
			return nil, err
		}
		children := methodEl.ChildElements()
		if len(children) != 1 {
			return nil, fmt.Errorf("xmldoc: method %s must contain exactly one <%s>", selector, tagBlock)
		}
		body, err := readBlock(children[0])
		if err != nil {
			return nil, err
		}
		class.Methods = append(class.Methods, &compiler.MethodDef{Selector: selector, Body: body})
	}
	return class, nil
}

func readBlock(el *etree.Element) (*compiler.Block, error) {
	if err := expectTag(el, tagBlock); err != nil {
		return nil, err
	}
	arityText, err := requireAttr(el, attrArity)
	if err != nil {
		return nil, err
	}
	arity, err := strconv.Atoi(arityText)
	if err != nil {
		return nil, fmt.Errorf("xmldoc: invalid block arity %q", arityText)
	}

	block := &compiler.Block{}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case tagParameter:
			name, err := requireAttr(child, attrName)
			if err != nil {
				return nil, err
			}
			block.Parameters = append(block.Parameters, &compiler.Parameter{Name: name})

		case tagAssign:
			stmt, err := readAssign(child)
			if err != nil {
				return nil, err
			}
			block.Statements = append(block.Statements, stmt)

		default:
			return nil, fmt.Errorf("xmldoc: unexpected <%s> in <%s>", child.Tag, tagBlock)
		}
	}

	if arity != block.Arity() {
		return nil, fmt.Errorf("xmldoc: block arity %d does not match %d parameters", arity, block.Arity())
	}
	return block, nil
}

func readAssign(el *etree.Element) (*compiler.Assign, error) {
	children := el.ChildElements()
	if len(children) != 2 || children[0].Tag != tagVar {
		return nil, fmt.Errorf("xmldoc: <%s> must contain <%s> and one expression", tagAssign, tagVar)
	}
	target, err := requireAttr(children[0], attrName)
	if err != nil {
		return nil, err
	}
	value, err := readExpr(children[1])
	if err != nil {
		return nil, err
	}
	return &compiler.Assign{Target: target, Value: value}, nil
}

func readExpr(el *etree.Element) (compiler.Expr, error) {
	switch el.Tag {
	case tagLiteral:
		class, err := requireAttr(el, attrClass)
		if err != nil {
			return nil, err
		}
		value, err := requireAttr(el, attrValue)
		if err != nil {
			return nil, err
		}
		return &compiler.Literal{Class: class, Value: value}, nil

	case tagVar:
		name, err := requireAttr(el, attrName)
		if err != nil {
			return nil, err
		}
		return &compiler.Variable{Name: name}, nil

	case tagSend:
		return readSend(el)

	case tagBlock:
		block, err := readBlock(el)
		if err != nil {
			return nil, err
		}
		return &compiler.BlockExpr{Block: block}, nil
	}
	return nil, fmt.Errorf("xmldoc: unexpected expression element <%s>", el.Tag)
}

func readSend(el *etree.Element) (*compiler.Send, error) {
	selector, err := requireAttr(el, attrSelector)
	if err != nil {
		return nil, err
	}
	children := el.ChildElements()
	if len(children) == 0 || children[0].Tag != tagReceiver {
		return nil, fmt.Errorf("xmldoc: send %s has no <%s>", selector, tagReceiver)
	}

	receiver, err := readWrapped(children[0])
	if err != nil {
		return nil, err
	}
	send := &compiler.Send{Selector: selector, Receiver: receiver}

	for _, argEl := range children[1:] {
		if err := expectTag(argEl, tagArg); err != nil {
			return nil, err
		}
		arg, err := readWrapped(argEl)
		if err != nil {
			return nil, err
		}
		send.Args = append(send.Args, arg)
	}

	if want := compiler.SelectorArity(selector); want != len(send.Args) {
		return nil, fmt.Errorf("xmldoc: send %s has %d arguments, want %d", selector, len(send.Args), want)
	}
	return send, nil
}

// readWrapped reads the single expression inside a receiver or arg element.
func readWrapped(el *etree.Element) (compiler.Expr, error) {
	children := el.ChildElements()
	if len(children) != 1 {
		return nil, fmt.Errorf("xmldoc: <%s> must contain exactly one expression", el.Tag)
	}
	return readExpr(children[0])
}
