package domain

import "github.com/shopspring/decimal"

// Prorate splits totalCost (cents) into count equal shares. Division runs
// in decimal and the leftover cents go to the earliest shares, so the
// shares always sum back to totalCost. A non-positive count yields nil.
func Prorate(totalCost int64, count int) []int64 {
	if count <= 0 {
		return nil
	}

	base := decimal.NewFromInt(totalCost).
		Div(decimal.NewFromInt(int64(count))).
		Floor().
		IntPart()

	shares := make([]int64, count)
	remainder := totalCost - base*int64(count)
	for i := range shares {
		shares[i] = base
		if int64(i) < remainder {
			shares[i]++
		}
	}
	return shares
}
