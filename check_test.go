package formula

import (
	"strings"
	"testing"
)

func TestParseCheck(t *testing.T) {
	columns := []string{"name", "amount", "status"}
	type test struct {
		expr string
		err  string
	}
	cases := []test{
		{expr: "@amount * 1.2"},
		{expr: `IF(@status = "won", @amount, 0)`},
		{expr: `CONCAT(@name, ": ", @amount)`},
		{expr: `@name & " (" & @status & ")"`},
		{expr: "@nmae", err: `unknown column "nmae"`},
		{expr: "IF(@amount > 0, @missing_col, 0)", err: `unknown column "missing_col"`},
		{expr: "IF(@amount, 1)", err: "IF expects 3 arguments, got 2"},
		{expr: "CONCAT()", err: "CONCAT expects at least 1 argument"},
		{expr: "LOOKUP(@name)", err: `unknown function "LOOKUP"`},
	}

	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			_, err := Parse(tc.expr, columns)
			if tc.err == "" {
				if err != nil {
					t.Fatal(err.Pretty(tc.expr))
				}
				return
			}
			if err == nil {
				t.Fatal("expected error but found none")
			}
			if !strings.Contains(err.Error(), tc.err) {
				t.Fatal(err.Pretty(tc.expr))
			}
		})
	}
}

// A nil column set skips validation entirely so ad-hoc evaluation keeps
// working against rows the caller has not described.
func TestParseCheckSkipped(t *testing.T) {
	if _, err := Parse("@anything_at_all", nil); err != nil {
		t.Fatal(err.Pretty("@anything_at_all"))
	}
}
