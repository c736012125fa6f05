package compiler

import (
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("sol25.compiler")

// Options configures a pipeline run.
type Options struct {
	// StrictClasses enables the undefined-class check.
	StrictClasses bool
}

// Result is the output of a successful pipeline run.
type Result struct {
	Program     *Program
	Classes     *ClassTable
	Description string // first source comment, newlines folded; may be empty
}

// Check runs lexing, parsing, AST construction and semantic analysis over
// source. The first failing stage aborts the run and its error is
// classified with an ExitCode (see ExitCodeOf).
func Check(source string, opts Options) (*Result, error) {
	tree, err := Parse(source)
	if err != nil {
		log.Debugf("parse failed: %v", err)
		return nil, err
	}

	prog, err := Build(tree)
	if err != nil {
		log.Debugf("build failed: %v", err)
		return nil, err
	}
	log.Debugf("built program with %d classes", len(prog.Classes))

	analysis, err := Analyze(prog, AnalyzeOptions{StrictClasses: opts.StrictClasses})
	if err != nil {
		log.Debugf("analysis failed: %v", err)
		return nil, err
	}

	return &Result{
		Program:     prog,
		Classes:     analysis.Classes,
		Description: Description(source),
	}, nil
}
