package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/shopcart/internal/domain/product"
)

// ListProducts returns the catalog, narrowed by the optional q parameter.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, p := range products {
			encodeProduct(e, p)
		}
		e.ArrEnd()
	})
}

// GetProduct returns one product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, *p) })
}

// CreateProduct adds a product to the catalog. Unreadable or out-of-range
// numbers are corrected and reported under "corrections".
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	p, parsed, err := decodeProduct(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.products.Create(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res.Corrections = append(parsed, res.Corrections...)
	writeProductResult(w, http.StatusCreated, res)
}

// UpdateProduct replaces a product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	p, parsed, err := decodeProduct(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.products.Update(r.Context(), r.PathValue("id"), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res.Corrections = append(parsed, res.Corrections...)
	writeProductResult(w, http.StatusOK, res)
}

// DeleteProduct removes a product.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeProductResult(w http.ResponseWriter, status int, res *product.SaveResult) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("product", func(e *jx.Encoder) { encodeProduct(e, *res.Product) })
			e.Field("corrections", func(e *jx.Encoder) { encodeCorrections(e, res.Corrections) })
		})
	})
}
