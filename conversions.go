package formula

import (
	"strconv"
	"strings"
)

// numeric reports the float64 form of a value when it has one: numbers
// directly, text when the whole trimmed string parses as a float.
func numeric(v value) (float64, bool) {
	switch v.kind {
	case kindNumber:
		return v.num, true
	case kindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		return f, err == nil
	}
	return 0, false
}

func toNumber(n *Node, v value) (float64, Error) {
	if f, ok := numeric(v); ok {
		return f, nil
	}
	return 0, NewError(n.Offset, "unable to convert %q to number", toText(v))
}

func toText(v value) string {
	switch v.kind {
	case kindNumber:
		// Numbers resolved from cells keep their raw text; only numbers
		// produced by arithmetic are formatted.
		if v.str != "" {
			return v.str
		}
		return formatNumber(v.num)
	case kindText:
		return v.str
	case kindBool:
		return strconv.FormatBool(v.b)
	}
	return ""
}

// toBool implements condition truthiness: numbers are true when non-zero,
// text is false when empty, "0", or a case-insensitive "false". Missing is
// handled before truthiness applies and is false here only as a safety net.
func toBool(v value) bool {
	switch v.kind {
	case kindBool:
		return v.b
	case kindNumber:
		return v.num != 0
	case kindText:
		t := strings.TrimSpace(v.str)
		return t != "" && t != "0" && !strings.EqualFold(t, "false")
	}
	return false
}
