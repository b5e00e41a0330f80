package formula

// valueKind tags the runtime values produced while evaluating a node.
type valueKind int

const (
	// kindMissing marks an unset cell. Missing data is represented
	// structurally rather than with a sentinel string, so propagation can
	// never collide with legitimate cell content.
	kindMissing valueKind = iota
	kindNumber
	kindText
	kindBool
)

// value is the tagged result of evaluating one AST node.
type value struct {
	kind valueKind
	num  float64
	str  string
	b    bool
}

var missingValue = value{kind: kindMissing}

func numberValue(f float64) value { return value{kind: kindNumber, num: f} }
func textValue(s string) value    { return value{kind: kindText, str: s} }
func boolValue(b bool) value      { return value{kind: kindBool, b: b} }

// cellValue is a numeric value resolved from a cell that keeps the raw cell
// text. Arithmetic and comparisons use the parsed number; string contexts
// emit the raw text so cells like "01234", "3.10", or "1e5" survive a join
// unchanged.
func cellValue(f float64, raw string) value {
	return value{kind: kindNumber, num: f, str: raw}
}

func (v value) isMissing() bool { return v.kind == kindMissing }
