// Package num holds the rounding and clamping rules shared by the scorers.
package num

import "math"

// Round rounds half away from negative infinity, so 2.5 becomes 3 and -2.5
// becomes -2. Score tables depend on this exact tie behavior.
func Round(x float64) float64 {
	return math.Floor(x + 0.5)
}

// RoundTo rounds x to the given number of decimal places using Round.
func RoundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return Round(x*p) / p
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// SafeDiv returns a/b, or zero when b is not positive.
func SafeDiv(a, b float64) float64 {
	if b <= 0 {
		return 0
	}
	return a / b
}
