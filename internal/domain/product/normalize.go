package product

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xenking/shopcart/internal/domain/form"
)

const (
	// MaxStock is the largest stock an admin may assign to a product.
	MaxStock = 9999
	// MaxRatePercent is the largest tier discount rate, in percent.
	MaxRatePercent = 100
)

var (
	hundred = decimal.NewFromInt(100)
	maxRate = decimal.NewFromInt(MaxRatePercent).Div(hundred)
)

// Normalize clamps the numeric fields of p into their valid ranges and
// returns the corrected copy together with a notice per clamped field.
// The input is not modified.
func Normalize(p Product) (Product, []form.Correction) {
	var corrections []form.Correction

	p.Price = form.Clamp("price", p.Price, 0, -1, &corrections)
	p.Stock = int(form.Clamp("stock", int64(p.Stock), 0, MaxStock, &corrections))

	if len(p.Discounts) > 0 {
		tiers := make([]DiscountTier, len(p.Discounts))
		for i, d := range p.Discounts {
			field := fmt.Sprintf("discounts[%d]", i)
			d.Quantity = int(form.Clamp(field+".quantity", int64(d.Quantity), 1, -1, &corrections))

			d.Rate = clampRate(field+".rate", d.Rate, &corrections)
			tiers[i] = d
		}
		p.Discounts = tiers
	}

	return p, corrections
}

// clampRate bounds rate to [0, maxRate] exactly. Notices carry percentages,
// with the precise rate kept in Input.
func clampRate(field string, rate decimal.Decimal, corrections *[]form.Correction) decimal.Decimal {
	clamped := decimal.Max(decimal.Zero, decimal.Min(rate, maxRate))
	if clamped.Equal(rate) {
		return rate
	}
	*corrections = append(*corrections, form.Correction{
		Field:     field,
		Input:     rate.String(),
		Value:     rate.Mul(hundred).Round(0).IntPart(),
		Corrected: clamped.Mul(hundred).IntPart(),
		Message:   fmt.Sprintf("%s must be between 0 and %s", field, maxRate),
	})
	return clamped
}
