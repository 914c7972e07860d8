package cart

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
)

// QuoteItem is one requested line of a stateless quote.
type QuoteItem struct {
	ProductID string
	Quantity  int
}

// Quote prices a cart snapshot without storing it. Lines obey the same stock
// rule as a stored cart, and the coupon, when given, must be eligible.
func (s *Service) Quote(ctx context.Context, items []QuoteItem, couponCode string) (*Summary, error) {
	lines := make(Cart, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if lines.Find(it.ProductID) >= 0 {
			return nil, ErrDuplicateLine
		}
		p, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, wrapRepoErr(err, "quote")
		}
		if it.Quantity > p.Stock {
			return nil, &StockExceededError{ProductID: p.ID, Requested: it.Quantity, Available: p.Stock}
		}
		lines = append(lines, Line{Product: *p, Quantity: it.Quantity})
	}

	st := State{Lines: lines}
	if code := strings.ToUpper(strings.TrimSpace(couponCode)); code != "" {
		c, err := s.coupons.FindByCode(ctx, code)
		if err != nil {
			return nil, wrapRepoErr(err, "quote")
		}
		if st.Selection, err = st.Selection.Select(*c, Summarize(st).Totals.AfterDiscount); err != nil {
			return nil, err
		}
	}

	sum := Summarize(st)
	return &sum, nil
}

// IsInvalidInput reports whether err rejects malformed quote input rather
// than a business rule.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidQuantity) || errors.Is(err, ErrDuplicateLine)
}
