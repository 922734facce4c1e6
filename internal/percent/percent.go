// Package percent computes the rounded completion/score percentages stored on
// attempts, enrollments and DSA progress.
package percent

import "math"

// Of returns part/whole*100 rounded to two decimals, or 0 when whole is not positive.
func Of(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return Round2(part / whole * 100)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
