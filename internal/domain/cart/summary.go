package cart

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/shopcart/internal/domain/coupon"
)

// LineSummary is a line together with its computed pricing.
type LineSummary struct {
	Line
	Rate           decimal.Decimal
	Total          int64
	RemainingStock int
}

// Summary is the priced view of a cart state.
type Summary struct {
	ID        string
	Lines     []LineSummary
	ItemCount int
	// Subtotal is the after-discount total before any coupon.
	Subtotal int64
	Totals   Totals
	Coupon   *coupon.Coupon
}

// Summarize prices every line of s and computes its totals.
func Summarize(s State) Summary {
	lines := make([]LineSummary, len(s.Lines))
	for i, l := range s.Lines {
		rate := MaxApplicableDiscountRate(l, s.Lines)
		lines[i] = LineSummary{
			Line:           l,
			Rate:           rate,
			Total:          lineTotal(l, rate),
			RemainingStock: RemainingStock(l.Product, s.Lines),
		}
	}

	selected := s.Selection.Coupon()
	return Summary{
		ID:        s.ID,
		Lines:     lines,
		ItemCount: TotalItemCount(s.Lines),
		Subtotal:  lineTotals(s.Lines).AfterDiscount,
		Totals:    CalculateTotals(s.Lines, selected),
		Coupon:    selected,
	}
}
