package mapping

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"encounterport/internal/source"
)

var (
	intPattern        = regexp.MustCompile(`-?\d+`)
	floatPattern      = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	leadingNumPattern = regexp.MustCompile(`^\s*[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)
	extPattern        = regexp.MustCompile(`(?i)\.[a-z0-9]{2,5}$`)
)

// safeInt extracts the first integer in v, or returns fallback.
func safeInt(v source.Scalar, fallback int) int {
	m := intPattern.FindString(v.String())
	if m == "" {
		return fallback
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return fallback
	}
	return n
}

// safeFloat extracts the first decimal number in v, or returns fallback.
func safeFloat(v source.Scalar, fallback float64) float64 {
	m := floatPattern.FindString(v.String())
	if m == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return fallback
	}
	return f
}

// parseLeadingFloat reads a number prefix the way lenient parsers do: "1 " is 1,
// "x1" is not a number.
func parseLeadingFloat(s string) (float64, bool) {
	m := leadingNumPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// pickFirst returns the first value that is present and not an empty string.
func pickFirst(values ...source.Scalar) source.Scalar {
	for _, v := range values {
		if v.IsSet() {
			return v
		}
	}
	return source.Scalar{}
}

// round halves toward positive infinity.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

func roundTo5(n float64) float64 {
	return float64(round(n/5) * 5)
}

const feetPerMeter = 3.28084

func metersToFeet(m float64) float64 {
	return roundTo5(m * feetPerMeter)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
