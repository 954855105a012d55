// Package util holds small helpers shared across packages: numeric
// clamps for scores and text trimming for prompt and terminal output.
package util

// Clamp constrains v to the inclusive range [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 constrains v to the inclusive range [0.0, 1.0].
// Suitability scores and confidence values are always reported in this range.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
