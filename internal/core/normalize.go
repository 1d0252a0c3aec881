package core

// normalize.go makes messy spreadsheet cells safe for arithmetic.
//
// Result sheets mark absent or not-qualified students with letter codes
// instead of numbers, and numeric cells may arrive as strings depending on
// the parser. ParseNumber is total: whatever the cell contains, downstream
// math gets a defined float64.

import (
	"strconv"
	"strings"
)

// absenceMarkers are cell values that mean "no mark": absent, dash-blank and
// not-qualified. Compared after trimming and upper-casing.
var absenceMarkers = map[string]struct{}{
	"A":  {},
	"-":  {},
	"NQ": {},
}

// ParseNumber converts an arbitrary cell value to a number. Numeric values
// pass through unchanged; recognized absence markers and anything unparsable
// become 0. It never fails.
func ParseNumber(cell any) float64 {
	switch v := cell.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		s := strings.ToUpper(strings.TrimSpace(v))
		if _, ok := absenceMarkers[s]; ok {
			return 0
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		// nil, bool, anything else a parser might hand us
		return 0
	}
}

// CellString returns the trimmed string form of a cell, or "" for non-string
// cells. Used for identity fields where numbers make no sense.
func CellString(cell any) string {
	s, ok := cell.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
