package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOrderRepo struct {
	orders map[string]*Order
	err    error
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	if m.orders == nil {
		m.orders = make(map[string]*Order)
	}
	m.orders[o.ID] = o
	return m.err
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func TestNumber(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	assert.Equal(t, "ORD-1700000000123", Number(ts))
}

func TestService_Get(t *testing.T) {
	repo := &mockOrderRepo{}
	require.NoError(t, repo.Create(context.Background(), &Order{ID: "o1", AfterDiscount: 8500}))
	svc := NewService(repo)

	o, err := svc.Get(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, int64(8500), o.AfterDiscount)

	_, err = svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_GetError(t *testing.T) {
	svc := NewService(&mockOrderRepo{err: errors.New("db down")})

	_, err := svc.Get(context.Background(), "o1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get order")
}
