package cart

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/shopcart/internal/domain/coupon"
	"github.com/xenking/shopcart/internal/domain/order"
	"github.com/xenking/shopcart/internal/domain/product"
)

// Repository persists cart state.
//
// Update loads the cart, locks it for the duration of fn and stores the
// state fn leaves behind. When fn returns an error nothing is written. The
// context passed to fn carries the storage transaction, so repositories
// called with it take part in the same commit.
type Repository interface {
	Create(ctx context.Context, s *State) error
	Get(ctx context.Context, id string) (*State, error)
	Update(ctx context.Context, id string, fn func(ctx context.Context, s *State) error) (*State, error)
}

// ProductFinder looks up catalog products.
type ProductFinder interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

// CouponFinder looks up coupons by code.
type CouponFinder interface {
	FindByCode(ctx context.Context, code string) (*coupon.Coupon, error)
}

// OrderWriter records completed orders.
type OrderWriter interface {
	Create(ctx context.Context, o *order.Order) error
}

// Service runs cart mutations against the cart store.
type Service struct {
	carts    Repository
	products ProductFinder
	coupons  CouponFinder
	orders   OrderWriter

	newID func() string
	now   func() time.Time

	checkouts       metric.Int64Counter
	stockRejections metric.Int64Counter
	couponRejects   metric.Int64Counter
}

// NewService creates a cart Service. Counters are registered on meter.
func NewService(
	carts Repository,
	products ProductFinder,
	coupons CouponFinder,
	orders OrderWriter,
	meter metric.Meter,
) (*Service, error) {
	s := &Service{
		carts:    carts,
		products: products,
		coupons:  coupons,
		orders:   orders,
		newID:    uuid.NewString,
		now:      time.Now,
	}

	var err error
	if s.checkouts, err = meter.Int64Counter("cart.checkouts",
		metric.WithDescription("Completed checkouts"),
	); err != nil {
		return nil, errors.Wrap(err, "checkouts counter")
	}
	if s.stockRejections, err = meter.Int64Counter("cart.stock_rejections",
		metric.WithDescription("Mutations rejected for exceeding stock"),
	); err != nil {
		return nil, errors.Wrap(err, "stock rejections counter")
	}
	if s.couponRejects, err = meter.Int64Counter("cart.coupon_rejections",
		metric.WithDescription("Coupon selections rejected as ineligible"),
	); err != nil {
		return nil, errors.Wrap(err, "coupon rejections counter")
	}
	return s, nil
}

// Create starts an empty cart.
func (s *Service) Create(ctx context.Context) (*Summary, error) {
	st := &State{ID: s.newID()}
	if err := s.carts.Create(ctx, st); err != nil {
		return nil, errors.Wrap(err, "create cart")
	}
	sum := Summarize(*st)
	return &sum, nil
}

// Get returns the priced view of a cart.
func (s *Service) Get(ctx context.Context, id string) (*Summary, error) {
	st, err := s.carts.Get(ctx, id)
	if err != nil {
		return nil, wrapRepoErr(err, "get cart")
	}
	sum := Summarize(*st)
	return &sum, nil
}

// AddItem adds one unit of productID to the cart.
func (s *Service) AddItem(ctx context.Context, id, productID string) (*Summary, error) {
	return s.mutate(ctx, id, "add item", func(ctx context.Context, st *State) error {
		p, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		lines, err := AddItem(st.Lines, *p)
		if err != nil {
			return err
		}
		st.Lines = lines
		return nil
	})
}

// UpdateQuantity sets the quantity of productID. Zero or less removes it.
func (s *Service) UpdateQuantity(ctx context.Context, id, productID string, qty int) (*Summary, error) {
	return s.mutate(ctx, id, "update quantity", func(ctx context.Context, st *State) error {
		if qty <= 0 {
			if st.Lines.Find(productID) < 0 {
				return ErrItemNotInCart
			}
			st.Lines = RemoveItem(st.Lines, productID)
			return nil
		}
		p, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		lines, err := UpdateQuantity(st.Lines, *p, qty)
		if err != nil {
			return err
		}
		st.Lines = lines
		return nil
	})
}

// RemoveItem drops productID from the cart.
func (s *Service) RemoveItem(ctx context.Context, id, productID string) (*Summary, error) {
	return s.mutate(ctx, id, "remove item", func(_ context.Context, st *State) error {
		st.Lines = RemoveItem(st.Lines, productID)
		return nil
	})
}

// ApplyCoupon selects the coupon with code. Eligibility is checked against
// the cart's current after-discount total, including the coupon already
// selected. A rejected selection keeps the previous one.
func (s *Service) ApplyCoupon(ctx context.Context, id, code string) (*Summary, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	return s.mutate(ctx, id, "apply coupon", func(ctx context.Context, st *State) error {
		c, err := s.coupons.FindByCode(ctx, code)
		if err != nil {
			return err
		}
		sel, err := st.Selection.Select(*c, Summarize(*st).Totals.AfterDiscount)
		if err != nil {
			s.couponRejects.Add(ctx, 1, metric.WithAttributes(
				attribute.String("coupon.type", string(c.DiscountType)),
			))
			return err
		}
		st.Selection = sel
		return nil
	})
}

// ClearCoupon deselects the current coupon.
func (s *Service) ClearCoupon(ctx context.Context, id string) (*Summary, error) {
	return s.mutate(ctx, id, "clear coupon", func(_ context.Context, st *State) error {
		st.Selection = st.Selection.Clear()
		return nil
	})
}

// Checkout records an order for the cart's current contents, then empties
// the cart and clears its coupon, all in one storage transaction.
func (s *Service) Checkout(ctx context.Context, id string) (*order.Order, error) {
	var o *order.Order
	_, err := s.carts.Update(ctx, id, func(ctx context.Context, st *State) error {
		if len(st.Lines) == 0 {
			return ErrEmptyCart
		}
		o = newOrder(Summarize(*st), s.newID(), s.now())
		if err := s.orders.Create(ctx, o); err != nil {
			return errors.Wrap(err, "create order")
		}
		st.Lines = nil
		st.Selection = st.Selection.Clear()
		return nil
	})
	if err != nil {
		return nil, wrapRepoErr(err, "checkout")
	}

	s.checkouts.Add(ctx, 1)
	zctx.From(ctx).Info("Checkout completed",
		zap.String("cart_id", id),
		zap.String("order_number", o.Number),
		zap.Int64("total", o.AfterDiscount),
	)
	return o, nil
}

func (s *Service) mutate(ctx context.Context, id, op string, fn func(ctx context.Context, st *State) error) (*Summary, error) {
	st, err := s.carts.Update(ctx, id, fn)
	if err != nil {
		if errors.Is(err, ErrStockExceeded) {
			s.stockRejections.Add(ctx, 1)
		}
		return nil, wrapRepoErr(err, op)
	}
	sum := Summarize(*st)
	return &sum, nil
}

func newOrder(sum Summary, id string, now time.Time) *order.Order {
	items := make([]order.Item, len(sum.Lines))
	for i, l := range sum.Lines {
		items[i] = order.Item{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			UnitPrice: l.Product.Price,
			Quantity:  l.Quantity,
			Rate:      l.Rate,
			Total:     l.Total,
		}
	}
	o := &order.Order{
		ID:             id,
		Number:         order.Number(now),
		CartID:         sum.ID,
		Items:          items,
		BeforeDiscount: sum.Totals.BeforeDiscount,
		AfterDiscount:  sum.Totals.AfterDiscount,
		CreatedAt:      now,
	}
	if sum.Coupon != nil {
		o.CouponCode = sum.Coupon.Code
	}
	return o
}

// domainErrors pass through unwrapped so callers can map them.
var domainErrors = []error{
	ErrNotFound,
	ErrStockExceeded,
	ErrItemNotInCart,
	ErrEmptyCart,
	product.ErrNotFound,
	coupon.ErrNotFound,
	coupon.ErrIneligible,
}

func wrapRepoErr(err error, op string) error {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	return errors.Wrap(err, op)
}
