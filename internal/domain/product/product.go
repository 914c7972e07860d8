package product

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrNameRequired is returned when a product is saved without a name.
	ErrNameRequired = errors.New("product name required")
)

// Product represents a catalog item available for purchase. Price is in the
// smallest currency unit.
type Product struct {
	ID          string
	Name        string
	Price       int64
	Stock       int
	Discounts   []DiscountTier
	Description string
	Recommended bool
}

// DiscountTier unlocks Rate once a single line reaches Quantity units.
type DiscountTier struct {
	Quantity int
	Rate     decimal.Decimal
}

// Repository defines persistence operations for the product catalog.
//
// Update must clamp existing cart lines of the product down to its new stock,
// and Delete must remove cart lines referencing the product, both as part of
// the same storage operation.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

// Filter returns the products whose name or description contains term,
// ignoring case. An empty term returns products unchanged.
func Filter(products []Product, term string) []Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products
	}

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			out = append(out, p)
		}
	}
	return out
}
