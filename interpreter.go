package formula

import (
	"math"
	"strconv"
	"strings"
)

// RowValues maps column keys to raw cell contents for one row. Absent keys
// and empty strings both represent an unset cell.
type RowValues map[string]string

// Interpreter executes formula ASTs against per-row values.
type Interpreter interface {
	// Run evaluates the AST against one row. A non-nil Error is the ERROR
	// outcome; a missing-data outcome is reported via Result.NA.
	Run(row RowValues) (Result, Error)
}

// NewInterpreter returns an interpreter for the given AST. The interpreter
// holds no mutable state and is safe for concurrent use across rows.
func NewInterpreter(ast *Node) Interpreter {
	return &interpreter{
		ast: ast,
	}
}

type interpreter struct {
	ast *Node
}

func (i *interpreter) Run(row RowValues) (Result, Error) {
	v, err := i.run(i.ast, row)
	if err != nil {
		return Result{}, err
	}
	if v.isMissing() {
		return Result{NA: true}, nil
	}
	return Result{Value: toText(v)}, nil
}

func (i *interpreter) run(ast *Node, row RowValues) (value, Error) {
	switch ast.Type {
	case NodeLiteral:
		if f, ok := ast.Value.(float64); ok {
			return numberValue(f), nil
		}
		return textValue(ast.Value.(string)), nil
	case NodeIdentifier:
		// A bare word is a legal expression and passes through as text.
		return textValue(ast.Value.(string)), nil
	case NodeReference:
		raw, ok := row[ast.Value.(string)]
		if !ok || raw == "" {
			return missingValue, nil
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return cellValue(f, raw), nil
		}
		return textValue(raw), nil
	case NodeSign:
		right, err := i.run(ast.Right, row)
		if err != nil {
			return value{}, err
		}
		if right.isMissing() {
			return missingValue, nil
		}
		f, nerr := toNumber(ast.Right, right)
		if nerr != nil {
			return value{}, nerr
		}
		if ast.Value.(string) == "-" {
			f = -f
		}
		return numberValue(f), nil
	case NodeArithmetic:
		return i.runArithmetic(ast, row)
	case NodeComparison:
		return i.runComparison(ast, row)
	case NodeJoin:
		return i.runJoin(ast, row)
	case NodeCall:
		return i.runCall(ast, row)
	}
	return value{}, NewError(ast.Offset, "cannot evaluate node %v", ast.Value)
}

// runArithmetic handles + - * /. A missing operand makes the whole
// sub-expression missing; a non-numeric operand or division by zero is an
// evaluation fault.
func (i *interpreter) runArithmetic(ast *Node, row RowValues) (value, Error) {
	resultLeft, err := i.run(ast.Left, row)
	if err != nil {
		return value{}, err
	}
	resultRight, err := i.run(ast.Right, row)
	if err != nil {
		return value{}, err
	}
	if resultLeft.isMissing() || resultRight.isMissing() {
		return missingValue, nil
	}
	left, err := toNumber(ast.Left, resultLeft)
	if err != nil {
		return value{}, err
	}
	right, err := toNumber(ast.Right, resultRight)
	if err != nil {
		return value{}, err
	}
	var f float64
	switch ast.Value.(string) {
	case "+":
		f = left + right
	case "-":
		f = left - right
	case "*":
		f = left * right
	case "/":
		if right == 0 {
			return value{}, NewError(ast.Offset, "cannot divide by zero")
		}
		f = left / right
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return value{}, NewError(ast.Offset, "result is not a finite number")
	}
	return numberValue(f), nil
}

// runComparison handles = != < > <= >=. When both sides have numeric forms
// the comparison is numeric, otherwise both sides compare as strings. A
// missing operand makes the result missing.
func (i *interpreter) runComparison(ast *Node, row RowValues) (value, Error) {
	resultLeft, err := i.run(ast.Left, row)
	if err != nil {
		return value{}, err
	}
	resultRight, err := i.run(ast.Right, row)
	if err != nil {
		return value{}, err
	}
	if resultLeft.isMissing() || resultRight.isMissing() {
		return missingValue, nil
	}
	op := ast.Value.(string)
	lf, lok := numeric(resultLeft)
	rf, rok := numeric(resultRight)
	if lok && rok {
		switch op {
		case "=":
			return boolValue(lf == rf), nil
		case "!=":
			return boolValue(lf != rf), nil
		case "<":
			return boolValue(lf < rf), nil
		case "<=":
			return boolValue(lf <= rf), nil
		case ">":
			return boolValue(lf > rf), nil
		case ">=":
			return boolValue(lf >= rf), nil
		}
	}
	ls, rs := toText(resultLeft), toText(resultRight)
	switch op {
	case "=":
		return boolValue(ls == rs), nil
	case "!=":
		return boolValue(ls != rs), nil
	case "<":
		return boolValue(ls < rs), nil
	case "<=":
		return boolValue(ls <= rs), nil
	case ">":
		return boolValue(ls > rs), nil
	case ">=":
		return boolValue(ls >= rs), nil
	}
	return value{}, NewError(ast.Offset, "unknown comparison %s", op)
}

// joinContributes reports whether a join/CONCAT operand takes part in the
// result. Missing and empty-text operands are skipped rather than propagated:
// "join the parts that exist" is the expected semantic for string building.
func joinContributes(v value) bool {
	return !v.isMissing() && toText(v) != ""
}

// runJoin handles the `&` operator. When every operand is skipped the result
// is missing, not an empty string, so an all-blank row still shows as NA.
func (i *interpreter) runJoin(ast *Node, row RowValues) (value, Error) {
	resultLeft, err := i.run(ast.Left, row)
	if err != nil {
		return value{}, err
	}
	resultRight, err := i.run(ast.Right, row)
	if err != nil {
		return value{}, err
	}
	leftOk := joinContributes(resultLeft)
	rightOk := joinContributes(resultRight)
	if !leftOk && !rightOk {
		return missingValue, nil
	}
	var b strings.Builder
	if leftOk {
		b.WriteString(toText(resultLeft))
	}
	if rightOk {
		b.WriteString(toText(resultRight))
	}
	return textValue(b.String()), nil
}

func (i *interpreter) runCall(ast *Node, row RowValues) (value, Error) {
	name := ast.Value.(string)
	switch {
	case strings.EqualFold(name, "IF"):
		return i.runIf(ast, row)
	case strings.EqualFold(name, "CONCAT"):
		return i.runConcat(ast, row)
	}
	return value{}, NewError(ast.Offset, "unknown function %q", name)
}

// runIf evaluates IF(condition, then, else). A missing condition makes the
// whole call missing. Exactly one branch is evaluated so an erroring untaken
// branch cannot affect the result.
func (i *interpreter) runIf(ast *Node, row RowValues) (value, Error) {
	if len(ast.Args) != 3 {
		return value{}, NewError(ast.Offset, "IF expects 3 arguments, got %d", len(ast.Args))
	}
	cond, err := i.run(ast.Args[0], row)
	if err != nil {
		return value{}, err
	}
	if cond.isMissing() {
		return missingValue, nil
	}
	if toBool(cond) {
		return i.run(ast.Args[1], row)
	}
	return i.run(ast.Args[2], row)
}

// runConcat evaluates CONCAT(...) with the same skip semantics as `&`.
func (i *interpreter) runConcat(ast *Node, row RowValues) (value, Error) {
	if len(ast.Args) == 0 {
		return value{}, NewError(ast.Offset, "CONCAT expects at least 1 argument")
	}
	var b strings.Builder
	contributed := false
	for _, arg := range ast.Args {
		v, err := i.run(arg, row)
		if err != nil {
			return value{}, err
		}
		if !joinContributes(v) {
			continue
		}
		b.WriteString(toText(v))
		contributed = true
	}
	if !contributed {
		return missingValue, nil
	}
	return textValue(b.String()), nil
}
