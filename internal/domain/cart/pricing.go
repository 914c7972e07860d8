package cart

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/shopcart/internal/domain/coupon"
	"github.com/xenking/shopcart/internal/domain/product"
)

// BulkThreshold is the line quantity that unlocks the cart-wide bulk bonus.
const BulkThreshold = 10

var (
	// BulkRate is added to every line's tiered rate once any line reaches
	// BulkThreshold.
	BulkRate = decimal.RequireFromString("0.05")
	// MaxRate caps the combined discount rate of a line.
	MaxRate = decimal.RequireFromString("0.5")

	one = decimal.NewFromInt(1)
)

// RemainingStock is the product's stock minus what the cart already holds.
// It is not clamped and goes negative for a cart that exceeds stock.
func RemainingStock(p product.Product, c Cart) int {
	return p.Stock - c.QuantityOf(p.ID)
}

// MaxApplicableDiscountRate combines the best qualifying tier of the line's
// product with the bulk bonus and caps the sum at MaxRate.
func MaxApplicableDiscountRate(l Line, c Cart) decimal.Decimal {
	rate := decimal.Zero
	for _, d := range l.Product.Discounts {
		if l.Quantity >= d.Quantity && d.Rate.GreaterThan(rate) {
			rate = d.Rate
		}
	}
	if hasBulkLine(c) {
		rate = rate.Add(BulkRate)
	}
	return decimal.Min(rate, MaxRate)
}

func hasBulkLine(c Cart) bool {
	for _, l := range c {
		if l.Quantity >= BulkThreshold {
			return true
		}
	}
	return false
}

// LineItemTotal is price * quantity * (1 - rate), rounded to the nearest
// unit with ties away from zero.
func LineItemTotal(l Line, c Cart) int64 {
	return lineTotal(l, MaxApplicableDiscountRate(l, c))
}

func lineTotal(l Line, rate decimal.Decimal) int64 {
	gross := decimal.NewFromInt(l.Product.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
	return gross.Mul(one.Sub(rate)).Round(0).IntPart()
}

// TotalItemCount sums the quantities of all lines.
func TotalItemCount(c Cart) int {
	n := 0
	for _, l := range c {
		n += l.Quantity
	}
	return n
}

// CalculateTotals sums sticker prices and discounted line totals, then
// applies selected, if any, to the after-discount total only.
func CalculateTotals(c Cart, selected *coupon.Coupon) Totals {
	t := lineTotals(c)
	if selected != nil {
		t.AfterDiscount = coupon.Apply(t.AfterDiscount, *selected)
	}
	return t
}

func lineTotals(c Cart) Totals {
	var t Totals
	for _, l := range c {
		t.BeforeDiscount += l.Product.Price * int64(l.Quantity)
		t.AfterDiscount += LineItemTotal(l, c)
	}
	return t
}
