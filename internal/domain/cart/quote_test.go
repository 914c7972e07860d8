package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/shopcart/internal/domain/coupon"
	"github.com/xenking/shopcart/internal/domain/product"
)

func TestService_Quote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sum, err := f.svc.Quote(ctx, []QuoteItem{{ProductID: "a", Quantity: 10}, {ProductID: "b", Quantity: 1}}, "percent10")
	require.NoError(t, err)
	// a: 8500, b: 20000 * 0.95 = 19000, then 10% off 27500.
	assert.Equal(t, int64(27500), sum.Subtotal)
	assert.Equal(t, Totals{BeforeDiscount: 30000, AfterDiscount: 24750}, sum.Totals)
	assert.Empty(t, f.carts.states, "quote must not store a cart")
}

func TestService_QuoteErrors(t *testing.T) {
	tests := []struct {
		name    string
		items   []QuoteItem
		coupon  string
		wantErr error
	}{
		{name: "zero quantity", items: []QuoteItem{{ProductID: "a", Quantity: 0}}, wantErr: ErrInvalidQuantity},
		{name: "duplicate product", items: []QuoteItem{{ProductID: "a", Quantity: 1}, {ProductID: "a", Quantity: 2}}, wantErr: ErrDuplicateLine},
		{name: "unknown product", items: []QuoteItem{{ProductID: "zzz", Quantity: 1}}, wantErr: product.ErrNotFound},
		{name: "above stock", items: []QuoteItem{{ProductID: "b", Quantity: 4}}, wantErr: ErrStockExceeded},
		{name: "ineligible coupon", items: []QuoteItem{{ProductID: "a", Quantity: 10}}, coupon: "PERCENT10", wantErr: coupon.ErrIneligible},
		{name: "unknown coupon", items: []QuoteItem{{ProductID: "a", Quantity: 1}}, coupon: "NOPE", wantErr: coupon.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Quote(context.Background(), tt.items, tt.coupon)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.True(t, IsInvalidInput(ErrDuplicateLine))
	assert.False(t, IsInvalidInput(ErrStockExceeded))
}
