package components

import (
	"math"
	"strconv"
	"strings"
)

// NoValue is shown for a metric that has not reported yet.
const NoValue = "--"

// FormatValue renders a metric value compactly: integral values without
// decimals, others with up to two, and magnitudes from a thousand up with
// a k/M/G/T suffix.
func FormatValue(v float64, ok bool) string {
	if !ok {
		return NoValue
	}
	abs := math.Abs(v)
	suffixes := []struct {
		div    float64
		suffix string
	}{
		{1e12, "T"},
		{1e9, "G"},
		{1e6, "M"},
		{1e3, "k"},
	}
	for _, s := range suffixes {
		if abs >= s.div {
			return trimFloat(v/s.div, 2) + s.suffix
		}
	}
	return trimFloat(v, 2)
}

// trimFloat formats v with at most prec decimals, dropping trailing zeros.
func trimFloat(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// Truncate shortens s to maxLen runes, adding an ellipsis if needed.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
