package cart

import (
	"fmt"

	"github.com/go-faster/errors"

	"github.com/xenking/shopcart/internal/domain/product"
)

var (
	// ErrNotFound is returned when a cart does not exist.
	ErrNotFound = errors.New("cart not found")
	// ErrStockExceeded is returned when a mutation would hold more units of
	// a product than it has in stock.
	ErrStockExceeded = errors.New("stock exceeded")
	// ErrItemNotInCart is returned when updating a product the cart lacks.
	ErrItemNotInCart = errors.New("item not in cart")
	// ErrEmptyCart is returned when checking out a cart without lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidQuantity is returned for a quoted line with quantity below one.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	// ErrDuplicateLine is returned when a quote names a product twice.
	ErrDuplicateLine = errors.New("product listed more than once")
)

// StockExceededError carries the details of a rejected mutation.
type StockExceededError struct {
	ProductID string
	Requested int
	Available int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("product %s: requested %d, only %d in stock", e.ProductID, e.Requested, e.Available)
}

// Is makes errors.Is(err, ErrStockExceeded) match.
func (e *StockExceededError) Is(target error) bool {
	return target == ErrStockExceeded
}

// AddItem adds one unit of p. On failure the original cart is returned
// unchanged.
func AddItem(c Cart, p product.Product) (Cart, error) {
	i := c.Find(p.ID)
	qty := 1
	if i >= 0 {
		qty = c[i].Quantity + 1
	}
	if qty > p.Stock {
		return c, &StockExceededError{ProductID: p.ID, Requested: qty, Available: p.Stock}
	}

	out := c.clone()
	if i >= 0 {
		out[i] = Line{Product: p, Quantity: qty}
		return out, nil
	}
	return append(out, Line{Product: p, Quantity: qty}), nil
}

// UpdateQuantity sets the quantity of p's line. A quantity of zero or less
// removes the line. On failure the original cart is returned unchanged.
func UpdateQuantity(c Cart, p product.Product, qty int) (Cart, error) {
	i := c.Find(p.ID)
	if i < 0 {
		return c, ErrItemNotInCart
	}
	if qty <= 0 {
		return RemoveItem(c, p.ID), nil
	}
	if qty > p.Stock {
		return c, &StockExceededError{ProductID: p.ID, Requested: qty, Available: p.Stock}
	}

	out := c.clone()
	out[i] = Line{Product: p, Quantity: qty}
	return out, nil
}

// RemoveItem drops the line for productID. Removing an absent product is a
// no-op.
func RemoveItem(c Cart, productID string) Cart {
	out := make(Cart, 0, len(c))
	for _, l := range c {
		if l.Product.ID != productID {
			out = append(out, l)
		}
	}
	return out
}
