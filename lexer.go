package formula

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// TokenType defines the type of token produced by the lexer.
type TokenType string

// Token
const (
	TokenUnknown    TokenType = ""
	TokenIdentifier TokenType = "identifier"
	TokenReference  TokenType = "reference"
	TokenNumber     TokenType = "number"
	TokenString     TokenType = "string"
	TokenLeftParen  TokenType = "left-paren"
	TokenRightParen TokenType = "right-paren"
	TokenComma      TokenType = "comma"
	TokenAddSub     TokenType = "add-sub"
	TokenMulDiv     TokenType = "mul-div"
	TokenJoin       TokenType = "join"
	TokenComparison TokenType = "comparison"
	TokenEOF        TokenType = "eof"
)

var basic = map[rune]TokenType{
	'(': TokenLeftParen,
	')': TokenRightParen,
	',': TokenComma,
	'+': TokenAddSub,
	'-': TokenAddSub,
	'*': TokenMulDiv,
	'/': TokenMulDiv,
	'&': TokenJoin,
}

// Token describes a single token produced by the lexer.
type Token struct {
	Type   TokenType
	Value  string
	Offset int
}

func (t *Token) String() string {
	return fmt.Sprintf("%d (%s) %s", t.Offset, t.Type, t.Value)
}

// Lexer returns tokens from an input expression.
type Lexer interface {
	// Next returns the next token from the expression. The returned token may
	// be changed in-place on subsequent calls and should not be stored.
	Next() (*Token, Error)
}

// NewLexer creates a new lexer for the given expression.
func NewLexer(expression string) Lexer {
	return &lexer{
		expression: expression,
		pos:        0,
		lastWidth:  0,
		token:      &Token{},
	}
}

type lexer struct {
	expression string
	pos        int
	lastWidth  int

	// token is a cached token to prevent new tokens from being allocated.
	// It is re-used on each call to `Next()`.
	token *Token
}

// next returns the next rune in the expression at the current position.
func (l *lexer) next() rune {
	if l.pos >= len(l.expression) {
		l.lastWidth = 0
		return -1
	}
	r, w := utf8.DecodeRuneInString(l.expression[l.pos:])
	l.pos += w
	l.lastWidth = w
	return r
}

// back moves back one rune.
func (l *lexer) back() {
	l.pos -= l.lastWidth
}

// peek returns the next rune without moving the position forward.
func (l *lexer) peek() rune {
	r := l.next()
	l.back()
	return r
}

func (l *lexer) newToken(typ TokenType, value string) *Token {
	l.token.Type = typ
	l.token.Value = value
	l.token.Offset = l.pos - len(value)
	return l.token
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentRune(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

// consumeNumber reads runes from the expression until a non-number or
// non-decimal is encountered.
func (l *lexer) consumeNumber() *Token {
	start := l.pos - l.lastWidth
	for {
		r := l.next()
		if r != '.' && (r < '0' || r > '9') {
			l.back()
			break
		}
	}
	return l.newToken(TokenNumber, l.expression[start:l.pos])
}

// consumeIdentifier reads runes from the expression until a character that
// cannot be part of a bare word is encountered. Bare words are either
// function names like IF/CONCAT or plain text that passes through evaluation
// verbatim.
func (l *lexer) consumeIdentifier() *Token {
	start := l.pos - l.lastWidth
	for {
		r := l.next()
		if r == -1 || basic[r] != TokenUnknown || r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '<' || r == '>' || r == '=' || r == '!' || r == '@' || r == '"' || r == '\'' {
			l.back()
			break
		}
	}
	return l.newToken(TokenIdentifier, l.expression[start:l.pos])
}

// consumeReference reads the column key following an `@`. The key must start
// with a letter or underscore and continues through letters, digits, and
// underscores. The token value is the key without the leading `@`.
func (l *lexer) consumeReference() (*Token, Error) {
	if !isIdentStart(l.peek()) {
		return nil, NewError(l.pos, "expected column key after '@'")
	}
	start := l.pos
	for {
		r := l.next()
		if !isIdentRune(r) {
			l.back()
			break
		}
	}
	return l.newToken(TokenReference, l.expression[start:l.pos]), nil
}

// consumeString reads runes from the expression until a non-escaped closing
// quote is encountered. Both single- and double-quoted strings are supported,
// so `@` and `&` inside a literal are never mistaken for syntax. Hitting the
// end of the expression before the closing quote is an error so a typo does
// not silently become a literal.
func (l *lexer) consumeString(quote rune) (*Token, Error) {
	buf := bytes.NewBuffer(make([]byte, 0, 8))
	for {
		r := l.next()
		if r == '\\' && l.peek() == quote {
			l.next()
			buf.WriteRune(quote)
			continue
		}
		if r == -1 {
			return nil, NewError(l.pos, "unterminated string")
		}
		if r == quote {
			break
		}
		buf.WriteRune(r)
	}
	return l.newToken(TokenString, buf.String()), nil
}

func (l *lexer) Next() (*Token, Error) {
	r := l.next()
	for r == ' ' || r == '\t' || r == '\r' || r == '\n' {
		r = l.next()
	}
	switch {
	case r == -1:
		return l.newToken(TokenEOF, ""), nil
	case basic[r] != TokenUnknown:
		return l.newToken(basic[r], l.expression[l.pos-l.lastWidth:l.pos]), nil
	case r >= '0' && r <= '9':
		return l.consumeNumber(), nil
	case r == '.':
		n := l.peek()
		if n >= '0' && n <= '9' {
			return l.consumeNumber(), nil
		}
		return nil, NewError(l.pos, "unexpected '.'")
	case r == '@':
		return l.consumeReference()
	case r == '<', r == '>':
		if l.peek() == '=' {
			l.next()
			return l.newToken(TokenComparison, string(r)+"="), nil
		}
		return l.newToken(TokenComparison, string(r)), nil
	case r == '!':
		if l.peek() == '=' {
			l.next()
			return l.newToken(TokenComparison, "!="), nil
		}
		return nil, NewError(l.pos, "! must be followed by =")
	case r == '=':
		return l.newToken(TokenComparison, "="), nil
	case r == '"', r == '\'':
		return l.consumeString(r)
	case isIdentStart(r):
		return l.consumeIdentifier(), nil
	}

	return nil, NewError(l.pos, "unexpected character %q", string(r))
}
