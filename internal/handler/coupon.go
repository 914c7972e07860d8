package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// ListCoupons returns every coupon.
func (h *Handler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, c := range coupons {
			encodeCoupon(e, c)
		}
		e.ArrEnd()
	})
}

// CreateCoupon adds a coupon. Duplicate codes are rejected with 409.
func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	c, parsed, err := decodeCoupon(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.coupons.Create(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res.Corrections = append(parsed, res.Corrections...)
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("coupon", func(e *jx.Encoder) { encodeCoupon(e, *res.Coupon) })
			e.Field("corrections", func(e *jx.Encoder) { encodeCorrections(e, res.Corrections) })
		})
	})
}

// DeleteCoupon removes a coupon and clears it from every cart that had it
// selected.
func (h *Handler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.coupons.Delete(r.Context(), r.PathValue("code")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
