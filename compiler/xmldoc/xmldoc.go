// Package xmldoc serializes a checked SOL25 program into its XML document
// form and reads such documents back.
//
// Document shape:
//
//	<program language="SOL25" description="...">
//	  <class name="Main" parent="Object">
//	    <method selector="run">
//	      <block arity="0">
//	        <parameter name="x" order="1"/>
//	        <assign order="1">
//	          <var name="x"/>
//	          <send selector="plus:">
//	            <receiver><literal class="Integer" value="1"/></receiver>
//	            <arg order="1"><var name="y"/></arg>
//	          </send>
//	        </assign>
//	      </block>
//	    </method>
//	  </class>
//	</program>
package xmldoc

import (
	"io"
	"strconv"

	"github.com/beevik/etree"

	"github.com/chazu/sol25/compiler"
)

// Language is the fixed value of the root language attribute.
const Language = "SOL25"

// DefaultIndent is the number of spaces per nesting level.
const DefaultIndent = 2

// Element and attribute names.
const (
	tagProgram   = "program"
	tagClass     = "class"
	tagMethod    = "method"
	tagBlock     = "block"
	tagParameter = "parameter"
	tagAssign    = "assign"
	tagVar       = "var"
	tagLiteral   = "literal"
	tagSend      = "send"
	tagReceiver  = "receiver"
	tagArg       = "arg"

	attrLanguage    = "language"
	attrDescription = "description"
	attrName        = "name"
	attrParent      = "parent"
	attrSelector    = "selector"
	attrArity       = "arity"
	attrOrder       = "order"
	attrClass       = "class"
	attrValue       = "value"
)

// Document builds the XML document for prog. An empty description omits the
// description attribute.
func Document(prog *compiler.Program, description string) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement(tagProgram)
	root.CreateAttr(attrLanguage, Language)
	if description != "" {
		root.CreateAttr(attrDescription, description)
	}

	for _, class := range prog.Classes {
		classEl := root.CreateElement(tagClass)
		classEl.CreateAttr(attrName, class.Name)
		classEl.CreateAttr(attrParent, class.Parent)
		for _, m := range class.Methods {
			methodEl := classEl.CreateElement(tagMethod)
			methodEl.CreateAttr(attrSelector, m.Selector)
			writeBlock(methodEl, m.Body)
		}
	}
	return doc
}

func writeBlock(parent *etree.Element, b *compiler.Block) {
	blockEl := parent.CreateElement(tagBlock)
	blockEl.CreateAttr(attrArity, strconv.Itoa(b.Arity()))

	for i, p := range b.Parameters {
		paramEl := blockEl.CreateElement(tagParameter)
		paramEl.CreateAttr(attrName, p.Name)
		paramEl.CreateAttr(attrOrder, strconv.Itoa(i+1))
	}

	for i, stmt := range b.Statements {
		stmtEl := writeStmt(blockEl, stmt)
		if stmtEl != nil {
			stmtEl.CreateAttr(attrOrder, strconv.Itoa(i+1))
		}
	}
}

// writeStmt returns the outermost element it created so the caller can
// number it.
func writeStmt(parent *etree.Element, stmt compiler.Stmt) *etree.Element {
	switch s := stmt.(type) {
	case *compiler.Assign:
		assignEl := parent.CreateElement(tagAssign)
		varEl := assignEl.CreateElement(tagVar)
		varEl.CreateAttr(attrName, s.Target)
		writeExpr(assignEl, s.Value)
		return assignEl
	}
	return nil
}

func writeExpr(parent *etree.Element, expr compiler.Expr) {
	switch e := expr.(type) {
	case *compiler.Literal:
		litEl := parent.CreateElement(tagLiteral)
		litEl.CreateAttr(attrClass, e.Class)
		litEl.CreateAttr(attrValue, e.Value)

	case *compiler.Variable:
		varEl := parent.CreateElement(tagVar)
		varEl.CreateAttr(attrName, e.Name)

	case *compiler.Send:
		sendEl := parent.CreateElement(tagSend)
		sendEl.CreateAttr(attrSelector, e.Selector)
		writeExpr(sendEl.CreateElement(tagReceiver), e.Receiver)
		for i, arg := range e.Args {
			argEl := sendEl.CreateElement(tagArg)
			argEl.CreateAttr(attrOrder, strconv.Itoa(i+1))
			writeExpr(argEl, arg)
		}

	case *compiler.BlockExpr:
		writeBlock(parent, e.Block)
	}
}

// Write serializes prog to w. indent is the number of spaces per level; zero
// or less writes the document on a single line.
func Write(w io.Writer, prog *compiler.Program, description string, indent int) error {
	doc := Document(prog, description)
	if indent > 0 {
		doc.Indent(indent)
	}
	_, err := doc.WriteTo(w)
	return err
}

// Marshal returns the indented document for prog.
func Marshal(prog *compiler.Program, description string) ([]byte, error) {
	doc := Document(prog, description)
	doc.Indent(DefaultIndent)
	return doc.WriteToBytes()
}
