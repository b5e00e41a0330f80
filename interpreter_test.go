package formula

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEval(t *testing.T) {
	type test struct {
		expr   string
		row    RowValues
		err    string
		output string
		na     bool
	}
	cases := []test{
		// Add/sub
		{expr: "1 + 2 - 3", output: "0"},
		{expr: "-1 + +3", output: "2"},
		{expr: "-(2 + 3)", output: "-5"},
		// Mul/div
		{expr: "4 * 5 / 10", output: "2"},
		{expr: "10 / 4", output: "2.5"},
		// Parentheses and precedence
		{expr: "2 + 3 * 4", output: "14"},
		{expr: "(1 + 2) * 3", output: "9"},
		{expr: "6 / 3 + 2 * 5", output: "12"},
		{expr: "((1 + (2)) * 3)", output: "9"},
		// References
		{expr: "@a + @b * @c", row: RowValues{"a": "2", "b": "3", "c": "4"}, output: "14"},
		{expr: "@a * @b", row: RowValues{"a": "2", "b": "2.5"}, output: "5"},
		{expr: "@price * 1.1", row: RowValues{"price": "19.99"}, output: "21.989"},
		{expr: "-@a", row: RowValues{"a": "5"}, output: "-5"},
		// Formatting
		{expr: "0.1 + 0.2", output: "0.3"},
		{expr: "0.5 + 0.2", output: "0.7"},
		{expr: "10 / 3", output: "3.33333333"},
		{expr: "0 * -1", output: "0"},
		// NA propagation in arithmetic and comparison
		{expr: "@a + @b", row: RowValues{"a": "5"}, na: true},
		{expr: "@a + @b", row: RowValues{"a": "5", "b": ""}, na: true},
		{expr: "-@a", row: RowValues{}, na: true},
		{expr: "@a = 1", row: RowValues{}, na: true},
		// Division by zero and faults
		{expr: "@a / @b", row: RowValues{"a": "5", "b": "0"}, err: "cannot divide by zero"},
		{expr: "1 / 0", err: "cannot divide by zero"},
		{expr: "@a + 1", row: RowValues{"a": "hello"}, err: "unable to convert"},
		// Strings and literals
		{expr: `"hello"`, output: "hello"},
		{expr: `'hi there'`, output: "hi there"},
		{expr: "hello", output: "hello"},
		{expr: `"a@b.com"`, output: "a@b.com"},
		{expr: `"salt & pepper"`, output: "salt & pepper"},
		// Join
		{expr: `@first & " " & @last`, row: RowValues{"first": "Ada", "last": "Lovelace"}, output: "Ada Lovelace"},
		{expr: `@first & " " & @last`, row: RowValues{"first": "Ada"}, output: "Ada "},
		{expr: `@first & @last`, row: RowValues{}, na: true},
		{expr: `"" & ""`, na: true},
		{expr: `@n & " items"`, row: RowValues{"n": "3"}, output: "3 items"},
		// Numeric-looking cell text survives string contexts unchanged.
		{expr: `@zip & "-x"`, row: RowValues{"zip": "01234"}, output: "01234-x"},
		{expr: `@n & " items"`, row: RowValues{"n": "3.10"}, output: "3.10 items"},
		{expr: `CONCAT(@ver, "!")`, row: RowValues{"ver": "1e5"}, output: "1e5!"},
		{expr: "@zip", row: RowValues{"zip": "01234"}, output: "01234"},
		{expr: "@zip * 1", row: RowValues{"zip": "01234"}, output: "1234"},
		// CONCAT
		{expr: "CONCAT(@a, @b, @c)", row: RowValues{"a": "x", "c": "z"}, output: "xz"},
		{expr: "CONCAT(@a, @b)", row: RowValues{}, na: true},
		{expr: `concat("Total: ", @amount)`, row: RowValues{"amount": "42"}, output: "Total: 42"},
		{expr: "CONCAT()", err: "CONCAT expects at least 1 argument"},
		// IF
		{expr: `IF(@status = "won", @revenue, 1/0)`, row: RowValues{"status": "won", "revenue": "100"}, output: "100"},
		{expr: `IF(@x = "5", "eq", "neq")`, row: RowValues{"x": "5"}, output: "eq"},
		{expr: `IF(@x > 10, "big", "small")`, row: RowValues{"x": "7"}, output: "small"},
		{expr: `IF(@flag, "yes", "no")`, row: RowValues{"flag": "False"}, output: "no"},
		{expr: `IF(@flag, "yes", "no")`, row: RowValues{"flag": "0"}, output: "no"},
		{expr: `IF(@flag, "yes", "no")`, row: RowValues{"flag": "x"}, output: "yes"},
		{expr: `IF(@flag, "yes", "no")`, row: RowValues{}, na: true},
		{expr: `IF(@missing = 1, "a", "b")`, row: RowValues{}, na: true},
		{expr: `if(1, "y", "n")`, output: "y"},
		{expr: "IF(@a, @b)", row: RowValues{"a": "1", "b": "2"}, err: "IF expects 3 arguments, got 2"},
		{expr: "IF(1, 2, 3, 4)", err: "IF expects 3 arguments, got 4"},
		// Nested forms
		{expr: `IF(@a > 1, CONCAT("big:", @a), "small" & "!")`, row: RowValues{"a": "5"}, output: "big:5"},
		{expr: `IF(@a > 1, CONCAT("big:", @a), "small" & "!")`, row: RowValues{"a": "1"}, output: "small!"},
		// Comparisons
		{expr: "1 < 2", output: "true"},
		{expr: "2 = 2", output: "true"},
		{expr: "2 != 2", output: "false"},
		{expr: "@a >= @b", row: RowValues{"a": "2", "b": "10"}, output: "false"},
		{expr: `"apple" < "banana"`, output: "true"},
		// Failure
		{expr: "", err: "incomplete expression"},
		{expr: "6 -", err: "incomplete expression"},
		{expr: "1 +", err: "incomplete expression"},
		{expr: "2 3", err: "expected eof but found number"},
		{expr: "(1", err: "expected right-paren but found eof"},
		{expr: ")", err: "unexpected right-paren"},
		{expr: "5 % 2", err: "unexpected character"},
		{expr: `"unclosed`, err: "unterminated string"},
		{expr: "'unclosed", err: "unterminated string"},
		{expr: "@", err: "expected column key after '@'"},
		{expr: "FOO(1)", err: `unknown function "FOO"`},
		{expr: "1 == 2", err: "unexpected comparison"},
		{expr: strings.Repeat("(", 80) + "1" + strings.Repeat(")", 80), err: "expression nesting exceeds"},
	}

	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			res, err := Eval(tc.expr, tc.row)
			if tc.err != "" {
				if err == nil {
					t.Fatalf("expected error but got %q", res.Value)
				}
				if !strings.Contains(err.Error(), tc.err) {
					t.Fatal(err.Pretty(tc.expr))
				}
				return
			}
			if err != nil {
				t.Fatal(err.Pretty(tc.expr))
			}
			assert.Equal(t, tc.na, res.NA)
			assert.Equal(t, tc.output, res.Value)
		})
	}
}

// Evaluation is a pure function: the same expression and row must produce
// identical results on repeated calls, including after re-running a cached
// AST.
func TestEvalIdempotent(t *testing.T) {
	row := RowValues{"a": "2", "b": "3", "c": "4"}
	ast, err := Parse("@a + @b * @c", nil)
	if err != nil {
		t.Fatal(err.Pretty("@a + @b * @c"))
	}
	first, err := Run(ast, row)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Run(ast, row)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, first, second)
	assert.Equal(t, "14", first.Value)
}

func TestErrorPretty(t *testing.T) {
	_, err := Eval("1 / 0", nil)
	if err == nil {
		t.Fatal("expected error but found none")
	}
	assert.Contains(t, err.Pretty("1 / 0"), "^")
	assert.GreaterOrEqual(t, err.Offset(), 0)
}

func FuzzEval(f *testing.F) {
	f.Add(`IF(@status = "won", @revenue * 1.1, CONCAT(@status, "!"))`)
	f.Add("@a + @b * (@c - 1)")
	f.Add(`@first & " " & @last`)
	f.Fuzz(func(t *testing.T, s string) {
		Eval(s, nil)
		Eval(s, RowValues{
			"a":      "1",
			"b":      "2.5",
			"c":      "0",
			"status": "won",
			"first":  "Ada",
		})
	})
}
