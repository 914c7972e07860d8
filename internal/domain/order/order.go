package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when an order does not exist.
var ErrNotFound = errors.New("order not found")

// Order is the record written when a cart is checked out.
type Order struct {
	ID             string
	Number         string
	CartID         string
	Items          []Item
	BeforeDiscount int64
	AfterDiscount  int64
	CouponCode     string
	CreatedAt      time.Time
}

// Item is a priced line item frozen at checkout time.
type Item struct {
	ProductID string
	Name      string
	UnitPrice int64
	Quantity  int
	Rate      decimal.Decimal
	Total     int64
}

// Number formats the human-facing order number for a checkout at t.
func Number(t time.Time) string {
	return fmt.Sprintf("ORD-%d", t.UnixMilli())
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
}
