package pricing

import "math"

// Accuracy scores how close an estimate came to the price an item actually
// sold for, as a percentage in [0,100] rounded to one decimal.
func Accuracy(dealPrice, estimated float64) float64 {
	if dealPrice <= 0 {
		return 0
	}
	acc := 100 - math.Abs(dealPrice-estimated)/dealPrice*100
	if acc < 0 {
		return 0
	}
	return roundHalfUp(acc*10) / 10
}
