package errors

import (
	"math"
	"unicode"
)

// maxTextLength bounds title, subtitle and info strings.
const maxTextLength = 256

// ValidatePositive rejects values that are not strictly positive or not finite.
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid(name, "%s must be finite, got %v", name, v)
	}
	if v <= 0 {
		return Invalid(name, "%s must be positive, got %v", name, v)
	}
	return nil
}

// ValidateNonNegative rejects negative or non-finite values.
func ValidateNonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid(name, "%s must be finite, got %v", name, v)
	}
	if v < 0 {
		return Invalid(name, "%s must not be negative, got %v", name, v)
	}
	return nil
}

// ValidateFinite rejects NaN and infinities but accepts any sign.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid(name, "%s must be finite, got %v", name, v)
	}
	return nil
}

// ValidateRange checks lo <= v <= hi.
func ValidateRange(name string, v, lo, hi float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v < lo || v > hi {
		return Invalid(name, "%s must be within [%v, %v], got %v", name, lo, hi, v)
	}
	return nil
}

// ValidateUnit checks that v lies in [0, 1].
func ValidateUnit(name string, v float64) error {
	return ValidateRange(name, v, 0, 1)
}

// ValidateIntRange checks lo <= v <= hi for integers.
func ValidateIntRange(name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return Invalid(name, "%s must be within [%d, %d], got %d", name, lo, hi, v)
	}
	return nil
}

// ValidateText validates a user-provided label drawn onto the poster.
//
// The rules are intentionally conservative:
//   - Maximum length of 256 bytes
//   - No control characters (newlines included, the title block is single-line)
func ValidateText(name, s string) error {
	if len(s) > maxTextLength {
		return Invalid(name, "%s too long (max %d characters)", name, maxTextLength)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return Invalid(name, "%s contains invalid control characters", name)
		}
	}
	return nil
}
