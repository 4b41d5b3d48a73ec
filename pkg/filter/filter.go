// Package filter is the public face of the expression engine: compile a
// boolean query once, apply it to every entry in a HAR capture.
//
//	pred, err := filter.Compile(`status >= 400 && method == "POST"`)
//	...
//	ok, err := pred.Test(&entry)
//
// Compilation errors are fatal to the whole invocation; evaluation errors
// are per-record and the caller's policy is to treat the record as not
// matched.
package filter

import (
	"github.com/sambeau/harq/pkg/filter/ast"
	"github.com/sambeau/harq/pkg/filter/evaluator"
	"github.com/sambeau/harq/pkg/filter/parser"
	"github.com/sambeau/harq/pkg/har"
)

// Predicate is a compiled filter expression. The underlying tree (and any
// compiled regex in it) is immutable, so a Predicate is safe for
// concurrent use across goroutines.
type Predicate struct {
	source string
	expr   ast.Expression
}

// Compile tokenizes, parses, and validates an expression. Regex literals
// are compiled here, once, and reused for every record.
func Compile(expression string) (*Predicate, error) {
	expr, err := parser.Parse(expression)
	if err != nil {
		return nil, err
	}
	return &Predicate{source: expression, expr: expr}, nil
}

// Source returns the original expression text.
func (p *Predicate) Source() string { return p.source }

// Test evaluates the predicate against one entry. The result must be a
// boolean; any other top-level type is an evaluation error.
func (p *Predicate) Test(entry *har.Entry) (bool, error) {
	return evaluator.EvalPredicate(p.expr, entry)
}

// Eval evaluates the expression as a value rather than a predicate, for
// contexts like the REPL that display field values directly.
func (p *Predicate) Eval(entry *har.Entry) (evaluator.Value, error) {
	return evaluator.Eval(p.expr, entry)
}
