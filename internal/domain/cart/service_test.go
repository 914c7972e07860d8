package cart

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/xenking/shopcart/internal/domain/coupon"
	"github.com/xenking/shopcart/internal/domain/order"
	"github.com/xenking/shopcart/internal/domain/product"
)

// --- Mock implementations ---

type mockCartRepo struct {
	states    map[string]State
	updateErr error
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{states: make(map[string]State)}
}

func (m *mockCartRepo) Create(_ context.Context, s *State) error {
	m.states[s.ID] = *s
	return nil
}

func (m *mockCartRepo) Get(_ context.Context, id string) (*State, error) {
	s, ok := m.states[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *mockCartRepo) Update(ctx context.Context, id string, fn func(context.Context, *State) error) (*State, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	s, ok := m.states[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.Lines = s.Lines.clone()
	if err := fn(ctx, &s); err != nil {
		return nil, err
	}
	m.states[id] = s
	return &s, nil
}

type mockProducts map[string]product.Product

func (m mockProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

type mockCoupons map[string]coupon.Coupon

func (m mockCoupons) FindByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	c, ok := m[code]
	if !ok {
		return nil, coupon.ErrNotFound
	}
	return &c, nil
}

type mockOrders struct {
	created []*order.Order
	err     error
}

func (m *mockOrders) Create(_ context.Context, o *order.Order) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, o)
	return nil
}

// --- Helpers ---

type fixture struct {
	svc    *Service
	carts  *mockCartRepo
	orders *mockOrders
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	products := mockProducts{
		"a": newProduct("a", 1000, 20, tier(10, "0.1")),
		"b": newProduct("b", 20000, 3),
	}
	coupons := mockCoupons{
		"AMOUNT5000": {Code: "AMOUNT5000", DiscountType: coupon.DiscountAmount, DiscountValue: 5000},
		"PERCENT10":  {Code: "PERCENT10", DiscountType: coupon.DiscountPercentage, DiscountValue: 10},
	}
	f := &fixture{carts: newMockCartRepo(), orders: &mockOrders{}}

	svc, err := NewService(f.carts, products, coupons, f.orders, noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	svc.newID = func() string { return "cart-1" }
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	f.svc = svc
	return f
}

func (f *fixture) add(t *testing.T, productID string, times int) *Summary {
	t.Helper()
	var sum *Summary
	for range times {
		var err error
		sum, err = f.svc.AddItem(context.Background(), "cart-1", productID)
		require.NoError(t, err)
	}
	return sum
}

// --- Tests ---

func TestService_CreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cart-1", created.ID)
	assert.Empty(t, created.Lines)

	got, err := f.svc.Get(ctx, "cart-1")
	require.NoError(t, err)
	assert.Equal(t, Totals{}, got.Totals)

	_, err = f.svc.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_AddItem(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background())
	require.NoError(t, err)

	sum := f.add(t, "a", 10)
	assert.Equal(t, Totals{BeforeDiscount: 10000, AfterDiscount: 8500}, sum.Totals)

	_, err = f.svc.AddItem(context.Background(), "cart-1", "missing")
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestService_AddItemStockExceededLeavesCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background())
	require.NoError(t, err)
	before := f.add(t, "b", 3)

	_, err = f.svc.AddItem(context.Background(), "cart-1", "b")
	require.ErrorIs(t, err, ErrStockExceeded)

	after, err := f.svc.Get(context.Background(), "cart-1")
	require.NoError(t, err)
	assert.Equal(t, before.Totals, after.Totals)
	assert.Equal(t, 3, after.ItemCount)
}

func TestService_UpdateQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx)
	require.NoError(t, err)
	f.add(t, "a", 1)

	sum, err := f.svc.UpdateQuantity(ctx, "cart-1", "a", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.ItemCount)

	_, err = f.svc.UpdateQuantity(ctx, "cart-1", "a", 21)
	require.ErrorIs(t, err, ErrStockExceeded)

	_, err = f.svc.UpdateQuantity(ctx, "cart-1", "b", 1)
	require.ErrorIs(t, err, ErrItemNotInCart)

	sum, err = f.svc.UpdateQuantity(ctx, "cart-1", "a", 0)
	require.NoError(t, err)
	assert.Empty(t, sum.Lines)

	_, err = f.svc.UpdateQuantity(ctx, "cart-1", "a", 0)
	require.ErrorIs(t, err, ErrItemNotInCart)
}

func TestService_RemoveItem(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background())
	require.NoError(t, err)
	f.add(t, "a", 2)
	f.add(t, "b", 1)

	sum, err := f.svc.RemoveItem(context.Background(), "cart-1", "a")
	require.NoError(t, err)
	require.Len(t, sum.Lines, 1)
	assert.Equal(t, "b", sum.Lines[0].Product.ID)
}

func TestService_ApplyCoupon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx)
	require.NoError(t, err)
	f.add(t, "a", 10) // 8500 after discount

	_, err = f.svc.ApplyCoupon(ctx, "cart-1", "percent10")
	require.ErrorIs(t, err, coupon.ErrIneligible)

	sum, err := f.svc.ApplyCoupon(ctx, "cart-1", "amount5000")
	require.NoError(t, err)
	require.NotNil(t, sum.Coupon)
	assert.Equal(t, "AMOUNT5000", sum.Coupon.Code)
	assert.Equal(t, int64(8500), sum.Subtotal)
	assert.Equal(t, int64(3500), sum.Totals.AfterDiscount)

	// Rejected selection keeps the previous coupon.
	_, err = f.svc.ApplyCoupon(ctx, "cart-1", "PERCENT10")
	require.ErrorIs(t, err, coupon.ErrIneligible)
	got, err := f.svc.Get(ctx, "cart-1")
	require.NoError(t, err)
	assert.Equal(t, "AMOUNT5000", got.Coupon.Code)

	_, err = f.svc.ApplyCoupon(ctx, "cart-1", "NOPE")
	require.ErrorIs(t, err, coupon.ErrNotFound)
}

func TestService_ApplyCouponChecksCouponAdjustedTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx)
	require.NoError(t, err)
	sum := f.add(t, "a", 12)
	require.Equal(t, int64(10200), sum.Totals.AfterDiscount)

	sum, err = f.svc.ApplyCoupon(ctx, "cart-1", "AMOUNT5000")
	require.NoError(t, err)
	require.Equal(t, int64(5200), sum.Totals.AfterDiscount)

	// The line total alone would qualify, the coupon-adjusted total does not.
	_, err = f.svc.ApplyCoupon(ctx, "cart-1", "PERCENT10")
	require.ErrorIs(t, err, coupon.ErrIneligible)

	_, err = f.svc.ClearCoupon(ctx, "cart-1")
	require.NoError(t, err)
	sum, err = f.svc.ApplyCoupon(ctx, "cart-1", "PERCENT10")
	require.NoError(t, err)
	assert.Equal(t, "PERCENT10", sum.Coupon.Code)
	assert.Equal(t, int64(9180), sum.Totals.AfterDiscount)
}

func TestService_ApplyPercentageAboveThreshold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx)
	require.NoError(t, err)
	f.add(t, "b", 1) // 20000

	sum, err := f.svc.ApplyCoupon(ctx, "cart-1", "PERCENT10")
	require.NoError(t, err)
	assert.Equal(t, int64(18000), sum.Totals.AfterDiscount)

	sum, err = f.svc.ClearCoupon(ctx, "cart-1")
	require.NoError(t, err)
	assert.Nil(t, sum.Coupon)
	assert.Equal(t, int64(20000), sum.Totals.AfterDiscount)
}

func TestService_Checkout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx)
	require.NoError(t, err)
	f.add(t, "b", 1)
	_, err = f.svc.ApplyCoupon(ctx, "cart-1", "PERCENT10")
	require.NoError(t, err)

	o, err := f.svc.Checkout(ctx, "cart-1")
	require.NoError(t, err)
	assert.Equal(t, "ORD-1700000000000", o.Number)
	assert.Equal(t, "cart-1", o.CartID)
	assert.Equal(t, "PERCENT10", o.CouponCode)
	assert.Equal(t, int64(20000), o.BeforeDiscount)
	assert.Equal(t, int64(18000), o.AfterDiscount)
	require.Len(t, o.Items, 1)
	assert.Equal(t, int64(20000), o.Items[0].Total)
	require.Len(t, f.orders.created, 1)

	after, err := f.svc.Get(ctx, "cart-1")
	require.NoError(t, err)
	assert.Empty(t, after.Lines)
	assert.Nil(t, after.Coupon)
}

func TestService_CheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background())
	require.NoError(t, err)

	_, err = f.svc.Checkout(context.Background(), "cart-1")
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, f.orders.created)
}

func TestService_CheckoutOrderFailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx)
	require.NoError(t, err)
	f.add(t, "a", 1)
	f.orders.err = errors.New("db write failed")

	_, err = f.svc.Checkout(ctx, "cart-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")

	after, err := f.svc.Get(ctx, "cart-1")
	require.NoError(t, err)
	assert.Len(t, after.Lines, 1)
}

func TestService_RepositoryErrorWrapped(t *testing.T) {
	f := newFixture(t)
	f.carts.updateErr = errors.New("connection reset")

	_, err := f.svc.ClearCoupon(context.Background(), "cart-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear coupon")
}
