package keypad

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ResultPlaces is the number of fractional digits kept after each evaluated
// operation, enough to hide float64 noise such as 0.1 + 0.2.
const ResultPlaces = 8

// Round rounds v to ResultPlaces fractional digits. Non-finite values pass
// through unchanged.
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}

	f, _ := decimal.NewFromFloat(v).Round(ResultPlaces).Float64()
	return f
}

// Numeral renders v as the shortest decimal string that parses back to v.
// Very large and very small magnitudes use exponent form, and non-finite
// values render as Infinity, -Infinity and NaN. Zero is always "0".
func Numeral(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		return trimExponent(strconv.FormatFloat(v, 'e', -1, 64))
	}

	return strconv.FormatFloat(v, 'f', -1, 64)
}

// trimExponent turns Go's "1e-07" into "1e-7".
func trimExponent(s string) string {
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}

	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}

	return mantissa + "e" + sign + digits
}

// Parse returns the value of an entry. Like a keypad display it reads the
// longest numeric prefix, so "5." is 5 and an unreadable entry is 0. Entries
// too large for a float64 read as ±Inf.
func Parse(entry string) float64 {
	for end := len(entry); end > 0; end-- {
		if v, err := strconv.ParseFloat(entry[:end], 64); err == nil || errors.Is(err, strconv.ErrRange) {
			return v
		}
	}

	return 0
}

// isLiteral reports whether entry is a plain typed numeral: an optional
// minus, digits, and at most one decimal point.
func isLiteral(entry string) bool {
	body := strings.TrimPrefix(entry, "-")
	if body == "" || body == "." {
		return false
	}

	dots := 0
	for _, r := range body {
		switch {
		case r == '.':
			dots++
		case r < '0' || r > '9':
			return false
		}
	}

	return dots <= 1
}

func mustDigit(d int) int {
	if d < 0 || d > 9 {
		panic("keypad: digit out of range: " + strconv.Itoa(d))
	}
	return d
}
