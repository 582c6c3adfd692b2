package domain

import "testing"

func TestCalculateTaxInclusive(t *testing.T) {
	// 11,500.00 tax-inclusive at 15%: base 10,000.00, tax 1,500.00,
	// withholding 3% of base, total 11,200.00.
	got := Calculate(CalcInput{
		RentAmount: 1_150_000,
		Months:     1,
		IncludeTax: true,
		TaxPercent: 15,
	})

	if got.BaseRent != 1_000_000 {
		t.Fatalf("base rent = %d, want 1000000", got.BaseRent)
	}
	if got.TaxAmount != 150_000 {
		t.Fatalf("tax = %d, want 150000", got.TaxAmount)
	}
	if got.WithholdingAmount != 30_000 {
		t.Fatalf("withholding = %d, want 30000", got.WithholdingAmount)
	}
	if got.TotalAmount != 1_120_000 {
		t.Fatalf("total = %d, want 1120000", got.TotalAmount)
	}
}

func TestCalculateTaxExclusive(t *testing.T) {
	got := Calculate(CalcInput{
		RentAmount: 1_000_000,
		Months:     1,
		IncludeTax: false,
		TaxPercent: 15,
	})

	if got.BaseRent != 1_000_000 {
		t.Fatalf("base rent = %d, want 1000000", got.BaseRent)
	}
	if got.TaxAmount != 150_000 {
		t.Fatalf("tax = %d, want 150000", got.TaxAmount)
	}
	if got.WithholdingAmount != 30_000 {
		t.Fatalf("withholding = %d, want 30000", got.WithholdingAmount)
	}
	if got.TotalAmount != 1_120_000 {
		t.Fatalf("total = %d, want 1120000", got.TotalAmount)
	}
}

func TestCalculateBelowWithholdingThreshold(t *testing.T) {
	got := Calculate(CalcInput{
		RentAmount: 575_000,
		Months:     1,
		IncludeTax: true,
		TaxPercent: 15,
	})

	if got.BaseRent != 500_000 {
		t.Fatalf("base rent = %d, want 500000", got.BaseRent)
	}
	if got.WithholdingRate != 0 || got.WithholdingAmount != 0 {
		t.Fatalf("withholding = %v/%d, want none below threshold", got.WithholdingRate, got.WithholdingAmount)
	}
	if got.TotalAmount != 575_000 {
		t.Fatalf("total = %d, want 575000", got.TotalAmount)
	}
}

func TestCalculateMultiMonthInterval(t *testing.T) {
	// Quarterly billing multiplies the monthly rent before tax math.
	got := Calculate(CalcInput{
		RentAmount: 1_150_000,
		Months:     3,
		IncludeTax: true,
		TaxPercent: 15,
	})

	if got.BaseRent != 3_000_000 {
		t.Fatalf("base rent = %d, want 3000000", got.BaseRent)
	}
	if got.TaxAmount != 450_000 {
		t.Fatalf("tax = %d, want 450000", got.TaxAmount)
	}
	if got.WithholdingAmount != 90_000 {
		t.Fatalf("withholding = %d, want 90000", got.WithholdingAmount)
	}
	if got.TotalAmount != 3_360_000 {
		t.Fatalf("total = %d, want 3360000", got.TotalAmount)
	}
}

func TestCalculateRoundsHalfUp(t *testing.T) {
	// 1,000.01 inclusive at 15% divides to 869.5739..., rounding to
	// 869.57 with the remainder in tax.
	got := Calculate(CalcInput{
		RentAmount: 100_001,
		Months:     1,
		IncludeTax: true,
		TaxPercent: 15,
	})

	if got.BaseRent != 86_957 {
		t.Fatalf("base rent = %d, want 86957", got.BaseRent)
	}
	if got.BaseRent+got.TaxAmount != 100_001 {
		t.Fatalf("base+tax = %d, want 100001", got.BaseRent+got.TaxAmount)
	}
}
