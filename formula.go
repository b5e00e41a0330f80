// Package formula implements the expression engine behind computed columns
// in dynamic tables. An expression is authored once per column and evaluated
// independently per row against that row's raw cell values. The engine
// supports arithmetic, the `&` string join, IF and CONCAT, comparisons inside
// conditions, and per-row `@columnKey` references.
//
// Evaluation distinguishes two non-success outcomes. Missing input data (an
// absent or empty cell used where a value is required) yields NA, reported as
// Result.NA; a structurally broken expression or a runtime fault such as
// division by zero yields a non-nil Error. Callers must keep the two apart:
// NA is an expected steady state of a half-filled row, Error is an authoring
// mistake.
//
// Every call is pure and referentially transparent, so expressions may be
// evaluated concurrently across rows and tables with no coordination.
package formula

// Result is the outcome of evaluating an expression against one row. When NA
// is true the required input data was missing and Value is empty; otherwise
// Value holds the formatted result.
type Result struct {
	Value string
	NA    bool
}

// Parse an expression and return the abstract syntax tree. If `columns` is
// passed, the expression is also validated against that column-key namespace:
// unknown `@key` references, unknown functions, and bad IF/CONCAT arity are
// reported before any row is evaluated.
func Parse(expression string, columns []string) (*Node, Error) {
	l := NewLexer(expression)
	p := NewParser(l)
	ast, err := p.Parse()
	if err != nil {
		return nil, err
	}
	if columns != nil {
		if err := check(ast, columns); err != nil {
			return nil, err
		}
	}
	return ast, nil
}

// Run executes an AST against one row's values and returns the result.
func Run(ast *Node, row RowValues) (Result, Error) {
	i := NewInterpreter(ast)
	return i.Run(row)
}

// Eval is a convenience function which lexes, parses, and executes an
// expression against one row. If you plan to evaluate the expression for many
// rows consider caching the output of `Parse(...)` instead for a big speed
// improvement.
func Eval(expression string, row RowValues) (Result, Error) {
	ast, err := Parse(expression, nil)
	if err != nil {
		return Result{}, err
	}
	return Run(ast, row)
}
