package output

import (
	"math"
	"strconv"
)

// Scientific notation is used outside [sciLow, sciHigh).
const (
	sciLow  = 1e-5
	sciHigh = 1e15
)

// FormatNumber renders f in the shortest form that parses back to the same
// value. Very large and very small magnitudes use scientific notation.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	abs := math.Abs(f)
	if abs == 0 || (abs >= sciLow && abs < sciHigh) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'e', -1, 64)
}
