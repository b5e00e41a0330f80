package formula

import (
	"fmt"
	"strconv"
)

// NodeType defines the type of the abstract syntax tree node.
type NodeType int

const (
	NodeUnknown NodeType = iota
	NodeIdentifier
	NodeReference
	NodeLiteral
	NodeArithmetic
	NodeComparison
	NodeJoin
	NodeSign
	NodeCall
)

// maxNestingDepth bounds how deeply parentheses and function calls may nest,
// so a hostile expression cannot grow the call stack without limit.
const maxNestingDepth = 64

// Node is a unit of the tree that makes up the abstract syntax tree. Value
// holds the node's payload: a float64 or string for literals, the column key
// for references, the operator text for arithmetic/comparison/sign nodes, and
// the function name for calls.
type Node struct {
	Type   NodeType
	Offset int
	Value  interface{}
	Left   *Node
	Right  *Node
	Args   []*Node
}

// Print will print out a tree for debugging.
func (n *Node) Print(prefix string) {
	fmt.Printf("%s%d %v\n", prefix, n.Type, n.Value)
	if n.Left != nil {
		n.Left.Print(prefix + "L: ")
	}
	if n.Right != nil {
		n.Right.Print(prefix + "R: ")
	}
	for _, a := range n.Args {
		a.Print(prefix + "A: ")
	}
}

// bindingPowers for different tokens. Not listed means zero. The higher the
// number, the higher the token is in the order of operations. The join
// operator `&` is the loosest so it splits the expression before anything
// else is interpreted.
var bindingPowers = map[TokenType]int{
	TokenJoin:       2,
	TokenComparison: 5,
	TokenAddSub:     10,
	TokenMulDiv:     15,
	TokenLeftParen:  70,
}

// Parser takes a lexer and parses its tokens into an abstract syntax tree.
type Parser interface {
	// Parse the expression and return the root node.
	Parse() (*Node, Error)
}

// NewParser creates a new parser that uses the given lexer to get and process
// tokens into an abstract syntax tree.
func NewParser(lexer Lexer) Parser {
	return &parser{
		lexer: lexer,
	}
}

// parser is an implementation of a Pratt or top-down operator precedence parser
type parser struct {
	lexer Lexer
	token *Token
	depth int
}

func (p *parser) advance() Error {
	t, err := p.lexer.Next()
	if err != nil {
		return err
	}
	// The lexer re-uses its token, so keep a copy.
	tok := *t
	p.token = &tok
	return nil
}

func (p *parser) parse(bindingPower int) (*Node, Error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxNestingDepth {
		return nil, NewError(p.token.Offset, "expression nesting exceeds %d levels", maxNestingDepth)
	}

	leftToken := p.token
	if err := p.advance(); err != nil {
		return nil, err
	}
	leftNode, err := p.nud(leftToken)
	if err != nil {
		return nil, err
	}
	currentToken := p.token
	for bindingPower < bindingPowers[currentToken.Type] {
		if err := p.advance(); err != nil {
			return nil, err
		}
		leftNode, err = p.led(currentToken, leftNode)
		if err != nil {
			return nil, err
		}
		currentToken = p.token
	}
	return leftNode, nil
}

// ensure the current token is `typ`, returning the `result` unless `err` is
// set or some other error occurs. Advances past the expected token type.
func (p *parser) ensure(result *Node, err Error, typ TokenType) (*Node, Error) {
	if err != nil {
		return nil, err
	}
	if p.token.Type == typ {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return result, nil
	}

	return nil, NewError(p.token.Offset, "expected %s but found %s", typ, p.token.Type)
}

// nud: null denotation. These nodes have no left context and only
// consume to the right. Examples: references, numbers, unary minus.
func (p *parser) nud(t *Token) (*Node, Error) {
	switch t.Type {
	case TokenIdentifier:
		return &Node{Type: NodeIdentifier, Offset: t.Offset, Value: t.Value}, nil
	case TokenReference:
		return &Node{Type: NodeReference, Offset: t.Offset, Value: t.Value}, nil
	case TokenNumber:
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, NewError(t.Offset, err.Error())
		}
		return &Node{Type: NodeLiteral, Offset: t.Offset, Value: f}, nil
	case TokenString:
		return &Node{Type: NodeLiteral, Offset: t.Offset, Value: t.Value}, nil
	case TokenLeftParen:
		result, err := p.parse(0)
		return p.ensure(result, err, TokenRightParen)
	case TokenAddSub:
		result, err := p.parse(bindingPowers[t.Type])
		if err != nil {
			return nil, err
		}
		return &Node{Type: NodeSign, Offset: t.Offset, Value: t.Value, Right: result}, nil
	case TokenEOF:
		return nil, NewError(t.Offset, "incomplete expression, EOF found")
	}
	return nil, NewError(t.Offset, "unexpected %s", t.Type)
}

// newNodeParseRight creates a new node with the right tree set to the
// output of recursively parsing until a lower binding power is encountered.
func (p *parser) newNodeParseRight(left *Node, t *Token, typ NodeType, bindingPower int) (*Node, Error) {
	right, err := p.parse(bindingPower)
	if err != nil {
		return nil, err
	}
	return &Node{Type: typ, Offset: t.Offset, Value: t.Value, Left: left, Right: right}, nil
}

// parseCall parses the comma-separated argument list of a function call. The
// opening paren has already been consumed and the current token is either the
// first argument or the closing paren.
func (p *parser) parseCall(name *Node, t *Token) (*Node, Error) {
	call := &Node{Type: NodeCall, Offset: name.Offset, Value: name.Value}
	if p.token.Type == TokenRightParen {
		return p.ensure(call, nil, TokenRightParen)
	}
	for {
		arg, err := p.parse(0)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if p.token.Type != TokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return p.ensure(call, nil, TokenRightParen)
}

// led: left denotation. These tokens produce nodes that operate on two operands
// a left and a right. Examples: addition, multiplication, etc.
func (p *parser) led(t *Token, n *Node) (*Node, Error) {
	switch t.Type {
	case TokenAddSub, TokenMulDiv:
		return p.newNodeParseRight(n, t, NodeArithmetic, bindingPowers[t.Type])
	case TokenComparison:
		return p.newNodeParseRight(n, t, NodeComparison, bindingPowers[t.Type])
	case TokenJoin:
		return p.newNodeParseRight(n, t, NodeJoin, bindingPowers[t.Type])
	case TokenLeftParen:
		if n.Type != NodeIdentifier {
			return nil, NewError(t.Offset, "only function names may be called")
		}
		return p.parseCall(n, t)
	}
	return nil, NewError(t.Offset, "unexpected %s", t.Type)
}

func (p *parser) Parse() (*Node, Error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	root, err := p.parse(0)
	if err != nil {
		return nil, err
	}
	if p.token.Type != TokenEOF {
		return nil, NewError(p.token.Offset, "expected %s but found %s", TokenEOF, p.token.Type)
	}
	return root, nil
}
