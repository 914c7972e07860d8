package coupon

import (
	"context"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/shopcart/internal/domain/form"
)

// SaveResult is the outcome of creating a coupon.
type SaveResult struct {
	Coupon      *Coupon
	Corrections []form.Correction
}

// Service manages the coupon list.
type Service struct {
	repo Repository
}

// NewService creates a coupon Service backed by the given Repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all coupons.
func (s *Service) List(ctx context.Context) ([]Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list coupons")
	}
	return coupons, nil
}

// Create normalizes c and stores it, rejecting codes that already exist.
func (s *Service) Create(ctx context.Context, c Coupon) (*SaveResult, error) {
	if !c.DiscountType.Valid() {
		return nil, ErrInvalidType
	}
	c, corrections := Normalize(c)
	if c.Code == "" {
		return nil, ErrCodeRequired
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list coupons")
	}
	if !IsCodeUnique(c, existing) {
		return nil, ErrDuplicateCode
	}

	if err := s.repo.Create(ctx, &c); err != nil {
		// Concurrent creates are caught by the unique constraint.
		if errors.Is(err, ErrDuplicateCode) {
			return nil, ErrDuplicateCode
		}
		return nil, errors.Wrap(err, "create coupon")
	}
	return &SaveResult{Coupon: &c, Corrections: corrections}, nil
}

// Delete removes the coupon with the given code. Carts that had it selected
// fall back to no selection.
func (s *Service) Delete(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := s.repo.Delete(ctx, code); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(err, "delete coupon")
	}
	return nil
}
