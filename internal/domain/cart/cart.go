// Package cart implements the pricing engine and the cart mutation rules.
//
// Every function in this package that operates on a Cart is pure: it takes
// a snapshot and returns a new value without modifying its inputs. Discounts
// couple lines to the whole cart (the bulk bonus is cart-wide), so pricing
// functions take both the line and the cart it belongs to.
package cart

import (
	"github.com/xenking/shopcart/internal/domain/coupon"
	"github.com/xenking/shopcart/internal/domain/product"
)

// Line is one product and quantity pair. Product is a snapshot taken when
// the line was last touched.
type Line struct {
	Product  product.Product
	Quantity int
}

// Cart is an ordered list of lines with at most one line per product ID.
type Cart []Line

// Totals are derived from a cart and its selected coupon on every read.
type Totals struct {
	BeforeDiscount int64
	AfterDiscount  int64
}

// State is what the cart store keeps: the lines and the selected coupon.
type State struct {
	ID        string
	Lines     Cart
	Selection coupon.Selection
}

// Find returns the index of the line holding productID, or -1.
func (c Cart) Find(productID string) int {
	for i, l := range c {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

// QuantityOf returns the quantity of productID in the cart, or 0.
func (c Cart) QuantityOf(productID string) int {
	if i := c.Find(productID); i >= 0 {
		return c[i].Quantity
	}
	return 0
}

// ProductIDs lists the product IDs in cart order.
func (c Cart) ProductIDs() []string {
	ids := make([]string, len(c))
	for i, l := range c {
		ids[i] = l.Product.ID
	}
	return ids
}

func (c Cart) clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}
