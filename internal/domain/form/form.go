// Package form holds the self-healing numeric input rules shared by the admin
// product and coupon forms. Out-of-range values are never rejected; they are
// clamped into range and the caller receives a Correction describing the fix.
package form

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Correction records a field value that was clamped into its valid range.
// Input holds the value as given when Value cannot represent it exactly.
type Correction struct {
	Field     string
	Input     string
	Value     int64
	Corrected int64
	Message   string
}

// Clamp bounds value to [lo, hi]. When the value had to change, it appends a
// Correction for field to corrections. A negative hi disables the upper bound.
func Clamp(field string, value, lo, hi int64, corrections *[]Correction) int64 {
	corrected := value
	var msg string
	switch {
	case value < lo:
		corrected = lo
		msg = fmt.Sprintf("%s must be at least %d", field, lo)
	case hi >= 0 && value > hi:
		corrected = hi
		msg = fmt.Sprintf("%s cannot exceed %d", field, hi)
	default:
		return value
	}
	if corrections != nil {
		*corrections = append(*corrections, Correction{
			Field:     field,
			Value:     value,
			Corrected: corrected,
			Message:   msg,
		})
	}
	return corrected
}

// ParseNumeric reads the leading integer of text the way a form field does
// on blur: surrounding spaces and a sign are accepted, parsing stops at the
// first non-digit, and text without digits reads as zero. Whenever the text
// is not a plain digit string, a Correction for field is appended. Values
// beyond int64 saturate.
func ParseNumeric(field, text string, corrections *[]Correction) int64 {
	s := strings.TrimSpace(text)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	var n int64
	saturated := false
	if end > 0 {
		v, err := strconv.ParseInt(s[:end], 10, 64)
		if err != nil {
			v, saturated = math.MaxInt64, true
		}
		n = v
	}
	if neg {
		n = -n
	}

	if end == len(s) && !neg && !saturated && s == text {
		return n
	}
	if corrections != nil {
		*corrections = append(*corrections, Correction{
			Field:     field,
			Input:     text,
			Corrected: n,
			Message:   fmt.Sprintf("%s: %q read as %d", field, text, n),
		})
	}
	return n
}
