package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/shopcart/internal/domain/cart"
	"github.com/xenking/shopcart/internal/domain/coupon"
	"github.com/xenking/shopcart/internal/domain/order"
	"github.com/xenking/shopcart/internal/domain/product"
)

// errorStatus maps domain errors to HTTP status codes. Zero means the error
// is unexpected.
func errorStatus(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr),
		errors.Is(err, product.ErrNameRequired),
		errors.Is(err, coupon.ErrCodeRequired),
		errors.Is(err, coupon.ErrInvalidType),
		cart.IsInvalidInput(err):
		return http.StatusBadRequest
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, cart.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, coupon.ErrDuplicateCode):
		return http.StatusConflict
	case errors.Is(err, cart.ErrStockExceeded),
		errors.Is(err, coupon.ErrIneligible),
		errors.Is(err, cart.ErrItemNotInCart),
		errors.Is(err, cart.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	default:
		return 0
	}
}

// writeError renders err as {"code","message"}. Unexpected errors are logged
// and hidden behind a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == 0 {
		zctx.From(r.Context()).Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		status = http.StatusInternalServerError
		msg = "internal error"
	}
	writeJSON(w, status, func(e *jx.Encoder) { encodeError(e, status, msg) })
}
