// Package handler exposes the cart, catalog and coupon services over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/xenking/shopcart/internal/domain/auth"
	"github.com/xenking/shopcart/internal/domain/cart"
	"github.com/xenking/shopcart/internal/domain/coupon"
	"github.com/xenking/shopcart/internal/domain/order"
	"github.com/xenking/shopcart/internal/domain/product"
)

// ProductService is the catalog surface used by the handlers.
type ProductService interface {
	List(ctx context.Context, query string) ([]product.Product, error)
	Get(ctx context.Context, id string) (*product.Product, error)
	Create(ctx context.Context, p product.Product) (*product.SaveResult, error)
	Update(ctx context.Context, id string, p product.Product) (*product.SaveResult, error)
	Delete(ctx context.Context, id string) error
}

// CouponService is the coupon surface used by the handlers.
type CouponService interface {
	List(ctx context.Context) ([]coupon.Coupon, error)
	Create(ctx context.Context, c coupon.Coupon) (*coupon.SaveResult, error)
	Delete(ctx context.Context, code string) error
}

// CartService is the cart surface used by the handlers.
type CartService interface {
	Create(ctx context.Context) (*cart.Summary, error)
	Get(ctx context.Context, id string) (*cart.Summary, error)
	AddItem(ctx context.Context, id, productID string) (*cart.Summary, error)
	UpdateQuantity(ctx context.Context, id, productID string, qty int) (*cart.Summary, error)
	RemoveItem(ctx context.Context, id, productID string) (*cart.Summary, error)
	ApplyCoupon(ctx context.Context, id, code string) (*cart.Summary, error)
	ClearCoupon(ctx context.Context, id string) (*cart.Summary, error)
	Checkout(ctx context.Context, id string) (*order.Order, error)
	Quote(ctx context.Context, items []cart.QuoteItem, couponCode string) (*cart.Summary, error)
}

// OrderService is the order surface used by the handlers.
type OrderService interface {
	Get(ctx context.Context, id string) (*order.Order, error)
}

// Handler serves the JSON API.
type Handler struct {
	products ProductService
	coupons  CouponService
	carts    CartService
	orders   OrderService
	security *SecurityHandler
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products ProductService,
	coupons CouponService,
	carts CartService,
	orders OrderService,
	security *SecurityHandler,
) *Handler {
	return &Handler{
		products: products,
		coupons:  coupons,
		carts:    carts,
		orders:   orders,
		security: security,
	}
}

// Register adds every API route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("GET /api/coupons", h.ListCoupons)

	mux.HandleFunc("POST /api/carts", h.CreateCart)
	mux.HandleFunc("GET /api/carts/{id}", h.GetCart)
	mux.HandleFunc("POST /api/carts/{id}/items", h.AddItem)
	mux.HandleFunc("PUT /api/carts/{id}/items/{productId}", h.UpdateQuantity)
	mux.HandleFunc("DELETE /api/carts/{id}/items/{productId}", h.RemoveItem)
	mux.HandleFunc("PUT /api/carts/{id}/coupon", h.ApplyCoupon)
	mux.HandleFunc("DELETE /api/carts/{id}/coupon", h.ClearCoupon)
	mux.HandleFunc("POST /api/carts/{id}/checkout", h.Checkout)
	mux.HandleFunc("POST /api/quote", h.Quote)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)

	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return h.security.Require(auth.ScopeAdmin, next)
	}
	mux.HandleFunc("POST /api/admin/products", admin(h.CreateProduct))
	mux.HandleFunc("PUT /api/admin/products/{id}", admin(h.UpdateProduct))
	mux.HandleFunc("DELETE /api/admin/products/{id}", admin(h.DeleteProduct))
	mux.HandleFunc("POST /api/admin/coupons", admin(h.CreateCoupon))
	mux.HandleFunc("DELETE /api/admin/coupons/{code}", admin(h.DeleteCoupon))
}
