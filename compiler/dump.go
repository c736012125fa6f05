package compiler

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dump renders prog as indented text, one node per line. The format is
// stable and independent of the XML document, which makes it suitable for
// golden files.
func Dump(prog *Program) string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = WriteDump(&sb, prog)
	return sb.String()
}

// WriteDump writes the text rendering of prog to w.
func WriteDump(w io.Writer, prog *Program) error {
	d := &dumper{w: w}
	d.line(0, "program")
	for _, class := range prog.Classes {
		d.line(1, "class %s parent=%s", class.Name, class.Parent)
		for _, m := range class.Methods {
			d.line(2, "method %s", m.Selector)
			d.block(3, m.Body)
		}
	}
	return d.err
}

type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) line(depth int, format string, args ...interface{}) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (d *dumper) block(depth int, b *Block) {
	d.line(depth, "block arity=%d", b.Arity())
	for i, p := range b.Parameters {
		d.line(depth+1, "parameter %s order=%d", p.Name, i+1)
	}
	for i, stmt := range b.Statements {
		switch s := stmt.(type) {
		case *Assign:
			d.line(depth+1, "assign %s order=%d", s.Target, i+1)
			d.expr(depth+2, s.Value)
		}
	}
}

func (d *dumper) expr(depth int, expr Expr) {
	switch e := expr.(type) {
	case *Literal:
		d.line(depth, "literal %s %s", e.Class, strconv.Quote(e.Value))
	case *Variable:
		d.line(depth, "var %s", e.Name)
	case *Send:
		d.line(depth, "send %s", e.Selector)
		d.expr(depth+1, e.Receiver)
		for _, arg := range e.Args {
			d.expr(depth+1, arg)
		}
	case *BlockExpr:
		d.block(depth, e.Block)
	}
}
