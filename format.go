package formula

import (
	"math"
	"strconv"
)

// ResultPrecision is the number of decimal places a non-integer numeric
// result is rounded to before formatting. Eight places is enough to hide
// float64 noise (0.1 + 0.2 renders as 0.3) while keeping realistic cell
// values intact.
const ResultPrecision = 8

// formatNumber renders a numeric result without spurious trailing zeros.
// Integral results render without a decimal point.
func formatNumber(f float64) string {
	if math.Abs(f) < 1e15 {
		shift := math.Pow(10, ResultPrecision)
		f = math.Round(f*shift) / shift
	}
	if f == 0 {
		// Avoid rendering negative zero.
		f = 0
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
