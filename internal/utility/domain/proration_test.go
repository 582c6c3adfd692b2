package domain

import "testing"

func TestProrateEvenSplit(t *testing.T) {
	shares := Prorate(90_000, 3)
	if len(shares) != 3 {
		t.Fatalf("got %d shares, want 3", len(shares))
	}
	for i, share := range shares {
		if share != 30_000 {
			t.Fatalf("share[%d] = %d, want 30000", i, share)
		}
	}
}

func TestProrateRemainderGoesToEarliestShares(t *testing.T) {
	shares := Prorate(100, 3)
	want := []int64{34, 33, 33}
	for i := range want {
		if shares[i] != want[i] {
			t.Fatalf("share[%d] = %d, want %d", i, shares[i], want[i])
		}
	}

	var sum int64
	for _, share := range shares {
		sum += share
	}
	if sum != 100 {
		t.Fatalf("shares sum to %d, want 100", sum)
	}
}

func TestProrateAlwaysSumsToTotal(t *testing.T) {
	totals := []int64{1, 7, 999, 100_001, 123_456_789}
	counts := []int{1, 2, 3, 7, 11, 50}
	for _, total := range totals {
		for _, count := range counts {
			shares := Prorate(total, count)
			var sum int64
			for _, share := range shares {
				sum += share
			}
			if sum != total {
				t.Fatalf("Prorate(%d, %d) sums to %d", total, count, sum)
			}
		}
	}
}

func TestProrateZeroEligible(t *testing.T) {
	if shares := Prorate(500, 0); shares != nil {
		t.Fatalf("expected no shares, got %v", shares)
	}
}
