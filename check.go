package formula

import (
	"strings"

	"golang.org/x/exp/slices"
)

// check validates a parsed expression against a table's column-key namespace
// so column authors get feedback on save rather than on first evaluation.
// Unknown references, unknown function names, and wrong IF/CONCAT arity are
// all reported with their expression offsets.
func check(ast *Node, columns []string) Error {
	if ast == nil {
		return nil
	}
	switch ast.Type {
	case NodeReference:
		key := ast.Value.(string)
		if !slices.Contains(columns, key) {
			return NewError(ast.Offset, "unknown column %q", key)
		}
	case NodeCall:
		name := ast.Value.(string)
		switch {
		case strings.EqualFold(name, "IF"):
			if len(ast.Args) != 3 {
				return NewError(ast.Offset, "IF expects 3 arguments, got %d", len(ast.Args))
			}
		case strings.EqualFold(name, "CONCAT"):
			if len(ast.Args) == 0 {
				return NewError(ast.Offset, "CONCAT expects at least 1 argument")
			}
		default:
			return NewError(ast.Offset, "unknown function %q", name)
		}
		for _, arg := range ast.Args {
			if err := check(arg, columns); err != nil {
				return err
			}
		}
	}
	if err := check(ast.Left, columns); err != nil {
		return err
	}
	return check(ast.Right, columns)
}
