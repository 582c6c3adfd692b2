package domain

import "github.com/shopspring/decimal"

// WithholdingThreshold is the base rent, in cents, at or above which the
// 3% withholding applies.
const (
	WithholdingThreshold int64   = 1_000_000
	WithholdingRatePct   float64 = 3
)

// CalcInput describes one billing period. RentAmount is the monthly rent
// in cents; Months comes from the rental's payment interval.
type CalcInput struct {
	RentAmount int64
	Months     int
	IncludeTax bool
	TaxPercent float64
}

// CalcResult holds the computed invoice amounts in cents.
type CalcResult struct {
	BaseRent          int64
	TaxAmount         int64
	WithholdingRate   float64
	WithholdingAmount int64
	TotalAmount       int64
}

var oneHundred = decimal.NewFromInt(100)

// Calculate computes base rent, tax and withholding for a billing period.
// When IncludeTax is set the rent amount is tax-inclusive and the base is
// extracted by division; all division runs in decimal and results round
// half-up to whole cents.
func Calculate(in CalcInput) CalcResult {
	months := in.Months
	if months <= 0 {
		months = 1
	}
	amount := decimal.NewFromInt(in.RentAmount).Mul(decimal.NewFromInt(int64(months)))
	taxPct := decimal.NewFromFloat(in.TaxPercent)

	var base, tax decimal.Decimal
	if in.IncludeTax {
		divisor := decimal.NewFromInt(1).Add(taxPct.Div(oneHundred))
		base = amount.DivRound(divisor, 0)
		tax = amount.Sub(base)
	} else {
		base = amount
		tax = base.Mul(taxPct).DivRound(oneHundred, 0)
	}

	withholdingRate := decimal.Zero
	if base.GreaterThanOrEqual(decimal.NewFromInt(WithholdingThreshold)) {
		withholdingRate = decimal.NewFromFloat(WithholdingRatePct)
	}
	withholding := base.Mul(withholdingRate).DivRound(oneHundred, 0)

	var total decimal.Decimal
	if in.IncludeTax {
		total = amount.Sub(withholding)
	} else {
		total = base.Add(tax).Sub(withholding)
	}

	rate, _ := withholdingRate.Float64()
	return CalcResult{
		BaseRent:          base.IntPart(),
		TaxAmount:         tax.IntPart(),
		WithholdingRate:   rate,
		WithholdingAmount: withholding.IntPart(),
		TotalAmount:       total.IntPart(),
	}
}
