package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/shopcart/internal/domain/cart"
)

func writeSummary(w http.ResponseWriter, r *http.Request, status int, sum *cart.Summary, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, func(e *jx.Encoder) { encodeSummary(e, sum) })
}

// CreateCart starts an empty cart.
func (h *Handler) CreateCart(w http.ResponseWriter, r *http.Request) {
	sum, err := h.carts.Create(r.Context())
	writeSummary(w, r, http.StatusCreated, sum, err)
}

// GetCart returns the priced cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sum, err := h.carts.Get(r.Context(), r.PathValue("id"))
	writeSummary(w, r, http.StatusOK, sum, err)
}

// AddItem adds one unit of {"productId"} to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var productID string
	err := decodeObject(w, r, func(d *jx.Decoder, key string) error {
		if key != "productId" {
			return d.Skip()
		}
		var err error
		productID, err = d.Str()
		return err
	})
	if err == nil && productID == "" {
		err = badRequest(errors.New("productId required"))
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := h.carts.AddItem(r.Context(), r.PathValue("id"), productID)
	writeSummary(w, r, http.StatusOK, sum, err)
}

// UpdateQuantity sets the quantity of a line from {"quantity"}.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var (
		qty int
		set bool
	)
	err := decodeObject(w, r, func(d *jx.Decoder, key string) error {
		if key != "quantity" {
			return d.Skip()
		}
		set = true
		var err error
		qty, err = d.Int()
		return err
	})
	if err == nil && !set {
		err = badRequest(errors.New("quantity required"))
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := h.carts.UpdateQuantity(r.Context(), r.PathValue("id"), r.PathValue("productId"), qty)
	writeSummary(w, r, http.StatusOK, sum, err)
}

// RemoveItem drops a line.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sum, err := h.carts.RemoveItem(r.Context(), r.PathValue("id"), r.PathValue("productId"))
	writeSummary(w, r, http.StatusOK, sum, err)
}

// ApplyCoupon selects {"code"} for the cart.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var code string
	err := decodeObject(w, r, func(d *jx.Decoder, key string) error {
		if key != "code" {
			return d.Skip()
		}
		var err error
		code, err = d.Str()
		return err
	})
	if err == nil && code == "" {
		err = badRequest(errors.New("code required"))
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := h.carts.ApplyCoupon(r.Context(), r.PathValue("id"), code)
	writeSummary(w, r, http.StatusOK, sum, err)
}

// ClearCoupon deselects the cart's coupon.
func (h *Handler) ClearCoupon(w http.ResponseWriter, r *http.Request) {
	sum, err := h.carts.ClearCoupon(r.Context(), r.PathValue("id"))
	writeSummary(w, r, http.StatusOK, sum, err)
}

// Quote prices a cart snapshot without storing anything.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	items, code, err := decodeQuote(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := h.carts.Quote(r.Context(), items, code)
	writeSummary(w, r, http.StatusOK, sum, err)
}
