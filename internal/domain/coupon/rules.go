package coupon

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xenking/shopcart/internal/domain/form"
)

const (
	// MaxPercentage caps the value of a percentage coupon.
	MaxPercentage = 100
	// MaxAmount caps the value of an amount coupon.
	MaxAmount = 100000
)

var hundred = decimal.NewFromInt(100)

// IsEligible reports whether c may be applied to a cart whose after-discount
// total is total. Only percentage coupons have a minimum.
func IsEligible(c Coupon, total int64) bool {
	if c.DiscountType != DiscountPercentage {
		return true
	}
	return total >= MinPercentageTotal
}

// CheckEligibility is IsEligible returning an *IneligibleError on failure.
func CheckEligibility(c Coupon, total int64) error {
	if IsEligible(c, total) {
		return nil
	}
	return &IneligibleError{Code: c.Code, Total: total, MinTotal: MinPercentageTotal}
}

// IsCodeUnique reports whether no coupon in existing uses c's code.
func IsCodeUnique(c Coupon, existing []Coupon) bool {
	for _, e := range existing {
		if e.Code == c.Code {
			return false
		}
	}
	return true
}

// Apply returns total after applying c. Amount coupons never drive the total
// below zero; percentage coupons round to the nearest unit, half away from
// zero.
func Apply(total int64, c Coupon) int64 {
	switch c.DiscountType {
	case DiscountAmount:
		return max(0, total-c.DiscountValue)
	case DiscountPercentage:
		factor := decimal.NewFromInt(1).Sub(decimal.NewFromInt(c.DiscountValue).Div(hundred))
		return decimal.NewFromInt(total).Mul(factor).Round(0).IntPart()
	default:
		return total
	}
}

// Normalize uppercases the code and clamps the discount value into the range
// allowed for its type. The corrected copy is returned with a notice per
// clamped field.
func Normalize(c Coupon) (Coupon, []form.Correction) {
	var corrections []form.Correction

	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	c.Name = strings.TrimSpace(c.Name)

	hi := int64(MaxAmount)
	if c.DiscountType == DiscountPercentage {
		hi = MaxPercentage
	}
	c.DiscountValue = form.Clamp("discountValue", c.DiscountValue, 0, hi, &corrections)

	return c, corrections
}
