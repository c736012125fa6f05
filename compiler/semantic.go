package compiler

import (
	"sort"
)

// ---------------------------------------------------------------------------
// Semantic Analyzer: static admissibility checks
// ---------------------------------------------------------------------------

// builtinClasses are always defined, whether or not the program declares them.
var builtinClasses = map[string]bool{
	ClassObject:  true,
	ClassInteger: true,
	ClassString:  true,
	ClassNil:     true,
	ClassBlock:   true,
	ClassTrue:    true,
	ClassFalse:   true,
}

// IsBuiltinClass reports whether name is a built-in class.
func IsBuiltinClass(name string) bool {
	return builtinClasses[name]
}

// Entry point names.
const (
	MainClass    = "Main"
	MainSelector = "run"
)

// ClassTable maps each class name to the selectors declared directly on it.
// Inherited selectors are not included. A class defined twice accumulates
// the selectors of both definitions.
type ClassTable struct {
	classes map[string]map[string]bool
	order   []string
}

// NewClassTable collects the classes and selectors declared in prog.
func NewClassTable(prog *Program) *ClassTable {
	t := &ClassTable{classes: make(map[string]map[string]bool)}
	for _, class := range prog.Classes {
		sels, ok := t.classes[class.Name]
		if !ok {
			sels = make(map[string]bool)
			t.classes[class.Name] = sels
			t.order = append(t.order, class.Name)
		}
		for _, m := range class.Methods {
			sels[m.Selector] = true
		}
	}
	return t
}

// Has reports whether the program declares class.
func (t *ClassTable) Has(class string) bool {
	_, ok := t.classes[class]
	return ok
}

// Declares reports whether class directly declares selector.
func (t *ClassTable) Declares(class, selector string) bool {
	return t.classes[class][selector]
}

// Selectors returns the selectors declared on class, sorted.
func (t *ClassTable) Selectors(class string) []string {
	sels := make([]string, 0, len(t.classes[class]))
	for s := range t.classes[class] {
		sels = append(sels, s)
	}
	sort.Strings(sels)
	return sels
}

// Names returns the declared class names in definition order.
func (t *ClassTable) Names() []string {
	return append([]string(nil), t.order...)
}

// Len returns the number of declared classes.
func (t *ClassTable) Len() int {
	return len(t.order)
}

// AnalyzeOptions configures the semantic analyzer.
type AnalyzeOptions struct {
	// StrictClasses rejects class references and parents that name neither
	// a declared class nor a built-in one.
	StrictClasses bool
}

// Analysis is the result of a successful semantic analysis.
type Analysis struct {
	Classes *ClassTable
}

// analysisContext carries the state of one analysis run through the
// traversal.
type analysisContext struct {
	opts    AnalyzeOptions
	classes *ClassTable
}

// Analyze decides whether prog is admissible. Checks run in a fixed order
// and the first failing family aborts the analysis:
//
//  1. entry point: Main must exist and declare run (ExitMissingMain)
//  2. class references, in strict mode only (ExitUndefinedClass)
//  3. method arity against block arity (ExitSemantic)
//
// Families 2 and 3 visit the whole program and report every violation as an
// ErrorList.
func Analyze(prog *Program, opts AnalyzeOptions) (*Analysis, error) {
	ctx := &analysisContext{opts: opts, classes: NewClassTable(prog)}

	if err := ctx.checkEntryPoint(prog); err != nil {
		return nil, err
	}

	if opts.StrictClasses {
		if err := ctx.checkClassReferences(prog).Err(); err != nil {
			return nil, err
		}
	}

	if err := ctx.checkArity(prog).Err(); err != nil {
		return nil, err
	}

	return &Analysis{Classes: ctx.classes}, nil
}

// checkEntryPoint verifies that Main exists and declares run.
func (ctx *analysisContext) checkEntryPoint(prog *Program) error {
	if !ctx.classes.Has(MainClass) {
		return errorAt(ExitMissingMain, Position{}, "missing class %s", MainClass)
	}
	if !ctx.classes.Declares(MainClass, MainSelector) {
		var pos Position
		for _, c := range prog.Classes {
			if c.Name == MainClass {
				pos = c.PosVal
				break
			}
		}
		return errorAt(ExitMissingMain, pos, "class %s does not define method %s", MainClass, MainSelector)
	}
	return nil
}

// isDefined reports whether name is a declared or built-in class.
func (ctx *analysisContext) isDefined(name string) bool {
	return ctx.classes.Has(name) || builtinClasses[name]
}

// checkClassReferences collects every parent and class literal that names
// an unknown class.
func (ctx *analysisContext) checkClassReferences(prog *Program) ErrorList {
	var errs ErrorList
	for _, class := range prog.Classes {
		if !ctx.isDefined(class.Parent) {
			errs = append(errs, errorAt(ExitUndefinedClass, class.PosVal,
				"class %s inherits from undefined class %s", class.Name, class.Parent))
		}
		for _, m := range class.Methods {
			WalkExprs(m.Body, func(e Expr) {
				lit, ok := e.(*Literal)
				if !ok || lit.Class != ClassClass {
					return
				}
				if !ctx.isDefined(lit.Value) {
					errs = append(errs, errorAt(ExitUndefinedClass, lit.PosVal,
						"use of undefined class %s", lit.Value))
				}
			})
		}
	}
	return errs
}

// checkArity collects every method whose selector arity differs from the
// arity of its body.
func (ctx *analysisContext) checkArity(prog *Program) ErrorList {
	var errs ErrorList
	for _, class := range prog.Classes {
		for _, m := range class.Methods {
			if declared, formal := m.Arity(), m.Body.Arity(); declared != formal {
				errs = append(errs, errorAt(ExitSemantic, m.PosVal,
					"method %s>>%s expects a block of arity %d, got %d",
					class.Name, m.Selector, declared, formal))
			}
		}
	}
	return errs
}

// ---------------------------------------------------------------------------
// Traversal helpers
// ---------------------------------------------------------------------------

// WalkExprs calls fn for every expression reachable from block, in source
// order, including expressions inside nested blocks. Receivers are visited
// before arguments and a send is visited before its operands.
func WalkExprs(block *Block, fn func(Expr)) {
	for _, stmt := range block.Statements {
		switch s := stmt.(type) {
		case *Assign:
			walkExpr(s.Value, fn)
		}
	}
}

func walkExpr(expr Expr, fn func(Expr)) {
	fn(expr)
	switch e := expr.(type) {
	case *Send:
		walkExpr(e.Receiver, fn)
		for _, arg := range e.Args {
			walkExpr(arg, fn)
		}
	case *BlockExpr:
		WalkExprs(e.Block, fn)
	case *Literal, *Variable:
		// leaves
	}
}
