package coupon

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountAmount subtracts a fixed amount from the cart total, floored at zero.
	DiscountAmount DiscountType = "amount"
	// DiscountPercentage takes a percentage off the cart total.
	DiscountPercentage DiscountType = "percentage"
)

// Valid reports whether t is a known discount type.
func (t DiscountType) Valid() bool {
	return t == DiscountAmount || t == DiscountPercentage
}

// MinPercentageTotal is the smallest after-discount cart total a percentage
// coupon may be applied to.
const MinPercentageTotal int64 = 10000

var (
	// ErrNotFound is returned when a coupon code does not exist.
	ErrNotFound = errors.New("coupon not found")
	// ErrIneligible is returned when a coupon cannot be applied to the
	// current cart total.
	ErrIneligible = errors.New("coupon not eligible")
	// ErrDuplicateCode is returned when creating a coupon whose code is taken.
	ErrDuplicateCode = errors.New("coupon code already exists")
	// ErrCodeRequired is returned when a coupon is saved without a code.
	ErrCodeRequired = errors.New("coupon code required")
	// ErrInvalidType is returned for an unknown discount type.
	ErrInvalidType = errors.New("invalid discount type")
)

// IneligibleError carries the details of a rejected coupon selection.
type IneligibleError struct {
	Code     string
	Total    int64
	MinTotal int64
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("coupon %s requires a total of at least %d, got %d", e.Code, e.MinTotal, e.Total)
}

// Is makes errors.Is(err, ErrIneligible) match.
func (e *IneligibleError) Is(target error) bool {
	return target == ErrIneligible
}

// Coupon is a cart-wide discount referenced by its code.
type Coupon struct {
	Code          string
	Name          string
	DiscountType  DiscountType
	DiscountValue int64
}

// Repository provides persistence for coupons.
//
// Delete must clear every cart selection that references the deleted code in
// the same storage operation.
type Repository interface {
	List(ctx context.Context) ([]Coupon, error)
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	Create(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, code string) error
}
