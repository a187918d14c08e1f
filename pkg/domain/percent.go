package domain

import "math"

// Percent returns part/whole as a percentage. A zero, negative or NaN
// whole yields 0 instead of dividing by zero.
func Percent(part, whole float64) float64 {
	if whole <= 0 || math.IsNaN(whole) || math.IsNaN(part) {
		return 0
	}
	p := part / whole * 100
	if math.IsInf(p, 0) || math.IsNaN(p) {
		return 0
	}
	return p
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
