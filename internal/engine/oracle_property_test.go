package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

// TestProperty_QuoteBounds verifies that for any symbol and seed the price
// stays within ±5 of the hash-derived base, carries at most two decimals,
// and the percent change stays within [-3, 3].
func TestProperty_QuoteBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		symbol := rapid.StringMatching(`[A-Z]{1,6}`).Draw(t, "symbol")
		seed := rapid.Uint64().Draw(t, "seed")

		o := NewOracle(NewSeededSource(seed), 0)
		q, err := o.Quote(context.Background(), symbol)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		base := decimal.NewFromInt(BasePrice(symbol))
		lo, hi := base.Sub(decimal.NewFromInt(5)), base.Add(decimal.NewFromInt(5))
		if q.Price.LessThan(lo) || q.Price.GreaterThan(hi) {
			t.Fatalf("price %s outside [%s, %s] for %s", q.Price, lo, hi, symbol)
		}
		if !q.Price.IsPositive() {
			t.Fatalf("price %s not positive", q.Price)
		}
		if !q.Price.Equal(q.Price.Round(2)) {
			t.Fatalf("price %s has more than two decimals", q.Price)
		}

		three := decimal.NewFromInt(3)
		if q.PercentChange.LessThan(three.Neg()) || q.PercentChange.GreaterThan(three) {
			t.Fatalf("percent change %s outside [-3, 3]", q.PercentChange)
		}
	})
}

// TestProperty_BasePriceRange verifies the base component is always in
// [50, 1049].
func TestProperty_BasePriceRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		symbol := rapid.String().Draw(t, "symbol")

		if b := BasePrice(symbol); b < 50 || b > 1049 {
			t.Fatalf("BasePrice(%q) = %d outside [50, 1049]", symbol, b)
		}
	})
}
