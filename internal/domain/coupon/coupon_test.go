package coupon

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCouponRepo struct {
	coupons   []Coupon
	listErr   error
	createErr error
	created   *Coupon
	deleted   string
	deleteErr error
}

func (m *mockCouponRepo) List(_ context.Context) ([]Coupon, error) {
	return m.coupons, m.listErr
}

func (m *mockCouponRepo) FindByCode(_ context.Context, code string) (*Coupon, error) {
	for i := range m.coupons {
		if m.coupons[i].Code == code {
			return &m.coupons[i], nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockCouponRepo) Create(_ context.Context, c *Coupon) error {
	m.created = c
	return m.createErr
}

func (m *mockCouponRepo) Delete(_ context.Context, code string) error {
	m.deleted = code
	return m.deleteErr
}

var (
	amount5000 = Coupon{Code: "AMOUNT5000", Name: "5000 off", DiscountType: DiscountAmount, DiscountValue: 5000}
	percent10  = Coupon{Code: "PERCENT10", Name: "10% off", DiscountType: DiscountPercentage, DiscountValue: 10}
)

func TestIsEligible(t *testing.T) {
	tests := []struct {
		name   string
		coupon Coupon
		total  int64
		want   bool
	}{
		{name: "percentage at threshold", coupon: percent10, total: 10000, want: true},
		{name: "percentage one below threshold", coupon: percent10, total: 9999, want: false},
		{name: "percentage well below", coupon: percent10, total: 8500, want: false},
		{name: "amount has no minimum", coupon: amount5000, total: 0, want: true},
		{name: "amount below percentage threshold", coupon: amount5000, total: 9999, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEligible(tt.coupon, tt.total))
		})
	}
}

func TestCheckEligibility(t *testing.T) {
	require.NoError(t, CheckEligibility(percent10, 10000))

	err := CheckEligibility(percent10, 8500)
	require.ErrorIs(t, err, ErrIneligible)

	var ie *IneligibleError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "PERCENT10", ie.Code)
	assert.Equal(t, int64(8500), ie.Total)
	assert.Equal(t, MinPercentageTotal, ie.MinTotal)
}

func TestIsCodeUnique(t *testing.T) {
	existing := []Coupon{amount5000, percent10}

	assert.False(t, IsCodeUnique(Coupon{Code: "PERCENT10"}, existing))
	assert.True(t, IsCodeUnique(Coupon{Code: "NEW"}, existing))
	assert.True(t, IsCodeUnique(Coupon{Code: "NEW"}, nil))
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		total  int64
		coupon Coupon
		want   int64
	}{
		{name: "amount", total: 20000, coupon: amount5000, want: 15000},
		{name: "amount exactly total", total: 5000, coupon: amount5000, want: 0},
		{name: "amount exceeding total floors at zero", total: 1200, coupon: amount5000, want: 0},
		{name: "percentage", total: 20000, coupon: percent10, want: 18000},
		{name: "percentage rounds half away from zero", total: 10005, coupon: percent10, want: 9005},
		{name: "percentage rounds down", total: 10004, coupon: percent10, want: 9004},
		{name: "percentage zero", total: 12345, coupon: Coupon{DiscountType: DiscountPercentage}, want: 12345},
		{name: "unknown type leaves total", total: 100, coupon: Coupon{DiscountType: "bogus", DiscountValue: 50}, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.total, tt.coupon))
		})
	}
}

func TestApply_AmountNeverNegative(t *testing.T) {
	for _, value := range []int64{0, 1, 999, 1000, 1001, 1 << 40} {
		got := Apply(1000, Coupon{DiscountType: DiscountAmount, DiscountValue: value})
		assert.GreaterOrEqual(t, got, int64(0))
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		in          Coupon
		wantCode    string
		wantValue   int64
		corrections int
	}{
		{name: "uppercases code", in: Coupon{Code: " save5 ", DiscountType: DiscountAmount, DiscountValue: 500}, wantCode: "SAVE5", wantValue: 500},
		{name: "percentage above 100", in: Coupon{Code: "P", DiscountType: DiscountPercentage, DiscountValue: 150}, wantCode: "P", wantValue: 100, corrections: 1},
		{name: "amount above ceiling", in: Coupon{Code: "A", DiscountType: DiscountAmount, DiscountValue: 250000}, wantCode: "A", wantValue: 100000, corrections: 1},
		{name: "negative value", in: Coupon{Code: "N", DiscountType: DiscountAmount, DiscountValue: -1}, wantCode: "N", wantValue: 0, corrections: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, corrections := Normalize(tt.in)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantValue, got.DiscountValue)
			assert.Len(t, corrections, tt.corrections)
		})
	}
}

func TestSelection(t *testing.T) {
	var sel Selection
	assert.False(t, sel.IsSelected())
	assert.Nil(t, sel.Coupon())
	assert.Empty(t, sel.Code())

	sel, err := sel.Select(amount5000, 0)
	require.NoError(t, err)
	assert.True(t, sel.IsSelected())
	assert.Equal(t, "AMOUNT5000", sel.Code())

	// A rejected selection keeps the previous one.
	kept, err := sel.Select(percent10, 9999)
	require.ErrorIs(t, err, ErrIneligible)
	assert.Equal(t, "AMOUNT5000", kept.Code())

	sel, err = sel.Select(percent10, 10000)
	require.NoError(t, err)
	assert.Equal(t, "PERCENT10", sel.Code())

	sel = sel.Clear()
	assert.False(t, sel.IsSelected())
}

func TestSelection_CouponReturnsCopy(t *testing.T) {
	sel := Selected(amount5000)
	c := sel.Coupon()
	c.DiscountValue = 1

	assert.Equal(t, int64(5000), sel.Coupon().DiscountValue)
}

func TestDelete(t *testing.T) {
	coupons := []Coupon{amount5000, percent10}

	t.Run("deleting selected coupon clears selection", func(t *testing.T) {
		remaining, sel := Delete(coupons, Selected(percent10), "PERCENT10")
		assert.Equal(t, []Coupon{amount5000}, remaining)
		assert.False(t, sel.IsSelected())
	})

	t.Run("deleting another coupon keeps selection", func(t *testing.T) {
		remaining, sel := Delete(coupons, Selected(percent10), "AMOUNT5000")
		assert.Equal(t, []Coupon{percent10}, remaining)
		assert.Equal(t, "PERCENT10", sel.Code())
	})

	t.Run("input slice untouched", func(t *testing.T) {
		_, _ = Delete(coupons, Selection{}, "AMOUNT5000")
		assert.Len(t, coupons, 2)
		assert.Equal(t, amount5000, coupons[0])
	})
}

func TestService_Create(t *testing.T) {
	repo := &mockCouponRepo{coupons: []Coupon{amount5000}}
	svc := NewService(repo)

	res, err := svc.Create(context.Background(), Coupon{
		Code:          "half",
		Name:          "Half off",
		DiscountType:  DiscountPercentage,
		DiscountValue: 120,
	})
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, "HALF", repo.created.Code)
	assert.Equal(t, int64(100), res.Coupon.DiscountValue)
	require.Len(t, res.Corrections, 1)
	assert.Equal(t, "discountValue", res.Corrections[0].Field)
}

func TestService_CreateErrors(t *testing.T) {
	tests := []struct {
		name    string
		repo    *mockCouponRepo
		in      Coupon
		wantErr error
	}{
		{
			name:    "duplicate code after uppercasing",
			repo:    &mockCouponRepo{coupons: []Coupon{amount5000}},
			in:      Coupon{Code: "amount5000", DiscountType: DiscountAmount, DiscountValue: 1},
			wantErr: ErrDuplicateCode,
		},
		{
			name:    "duplicate caught by storage",
			repo:    &mockCouponRepo{createErr: ErrDuplicateCode},
			in:      Coupon{Code: "NEW", DiscountType: DiscountAmount, DiscountValue: 1},
			wantErr: ErrDuplicateCode,
		},
		{
			name:    "missing code",
			repo:    &mockCouponRepo{},
			in:      Coupon{Code: "  ", DiscountType: DiscountAmount},
			wantErr: ErrCodeRequired,
		},
		{
			name:    "unknown type",
			repo:    &mockCouponRepo{},
			in:      Coupon{Code: "X", DiscountType: "free_lowest"},
			wantErr: ErrInvalidType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(tt.repo).Create(context.Background(), tt.in)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_Delete(t *testing.T) {
	repo := &mockCouponRepo{}
	svc := NewService(repo)

	require.NoError(t, svc.Delete(context.Background(), "percent10"))
	assert.Equal(t, "PERCENT10", repo.deleted)

	repo.deleteErr = ErrNotFound
	require.ErrorIs(t, svc.Delete(context.Background(), "x"), ErrNotFound)

	repo.deleteErr = errors.New("db error")
	err := svc.Delete(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete coupon")
}
