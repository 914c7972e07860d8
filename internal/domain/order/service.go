package order

import (
	"context"

	"github.com/go-faster/errors"
)

// Service exposes completed orders.
type Service struct {
	orders Repository
}

// NewService creates an order Service backed by the given Repository.
func NewService(orders Repository) *Service {
	return &Service{orders: orders}
}

// Get returns the order with the given ID.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get order")
	}
	return o, nil
}
