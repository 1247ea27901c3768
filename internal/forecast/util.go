package forecast

import "math"

// roundFloat rounds v to the given number of decimal places.
func roundFloat(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}

	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

// ceilInt rounds up to the next integer, tolerating float noise such as
// 12.000000000000002.
func ceilInt(v float64) int {
	return int(math.Ceil(roundFloat(v, 9)))
}
