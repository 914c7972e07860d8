package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/shopcart/internal/domain/cart"
	"github.com/xenking/shopcart/internal/domain/coupon"
	"github.com/xenking/shopcart/internal/domain/form"
	"github.com/xenking/shopcart/internal/domain/order"
	"github.com/xenking/shopcart/internal/domain/product"
)

const maxBodySize = 1 << 20

// requestError marks request bodies that could not be decoded.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }

func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{err: err}
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func readBody(w http.ResponseWriter, r *http.Request) (*jx.Decoder, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, badRequest(err)
	}
	if len(data) == 0 {
		return nil, badRequest(errors.New("empty body"))
	}
	return jx.DecodeBytes(data), nil
}

// decodeObject runs field for every key of the request object and wraps any
// decoding failure as a bad request.
func decodeObject(w http.ResponseWriter, r *http.Request, field func(d *jx.Decoder, key string) error) error {
	d, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := d.Obj(field); err != nil {
		return badRequest(err)
	}
	return nil
}

// decodeNumeric accepts a JSON number or numeric text. Text is read
// leniently and any fix-up is appended to corrections.
func decodeNumeric(d *jx.Decoder, field string, corrections *[]form.Correction) (int64, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return 0, err
		}
		return form.ParseNumeric(field, s, corrections), nil
	default:
		return d.Int64()
	}
}

func decodeProduct(w http.ResponseWriter, r *http.Request) (product.Product, []form.Correction, error) {
	var (
		p           product.Product
		corrections []form.Correction
	)
	err := decodeObject(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			p.Name, err = d.Str()
		case "price":
			p.Price, err = decodeNumeric(d, key, &corrections)
		case "stock":
			var n int64
			n, err = decodeNumeric(d, key, &corrections)
			p.Stock = int(n)
		case "description":
			p.Description, err = d.Str()
		case "isRecommended":
			p.Recommended, err = d.Bool()
		case "discounts":
			p.Discounts, err = decodeTiers(d, &corrections)
		default:
			err = d.Skip()
		}
		return err
	})
	return p, corrections, err
}

func decodeTiers(d *jx.Decoder, corrections *[]form.Correction) ([]product.DiscountTier, error) {
	tiers := []product.DiscountTier{}
	err := d.Arr(func(d *jx.Decoder) error {
		var t product.DiscountTier
		field := fmt.Sprintf("discounts[%d].quantity", len(tiers))
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "quantity":
				n, err := decodeNumeric(d, field, corrections)
				t.Quantity = int(n)
				return err
			case "rate":
				f, err := d.Float64()
				t.Rate = decimal.NewFromFloat(f)
				return err
			default:
				return d.Skip()
			}
		}); err != nil {
			return err
		}
		tiers = append(tiers, t)
		return nil
	})
	return tiers, err
}

func decodeCoupon(w http.ResponseWriter, r *http.Request) (coupon.Coupon, []form.Correction, error) {
	var (
		c           coupon.Coupon
		corrections []form.Correction
	)
	err := decodeObject(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "code":
			c.Code, err = d.Str()
		case "name":
			c.Name, err = d.Str()
		case "discountType":
			var s string
			s, err = d.Str()
			c.DiscountType = coupon.DiscountType(s)
		case "discountValue":
			c.DiscountValue, err = decodeNumeric(d, key, &corrections)
		default:
			err = d.Skip()
		}
		return err
	})
	return c, corrections, err
}

func decodeQuote(w http.ResponseWriter, r *http.Request) ([]cart.QuoteItem, string, error) {
	var (
		items []cart.QuoteItem
		code  string
	)
	err := decodeObject(w, r, func(d *jx.Decoder, key string) error {
		switch key {
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				var it cart.QuoteItem
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "productId":
						it.ProductID, err = d.Str()
					case "quantity":
						it.Quantity, err = d.Int()
					default:
						err = d.Skip()
					}
					return err
				}); err != nil {
					return err
				}
				items = append(items, it)
				return nil
			})
		case "couponCode":
			if d.Next() == jx.Null {
				return d.Null()
			}
			var err error
			code, err = d.Str()
			return err
		default:
			return d.Skip()
		}
	})
	return items, code, err
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { e.Int64(p.Price) })
		e.Field("stock", func(e *jx.Encoder) { e.Int(p.Stock) })
		e.Field("discounts", func(e *jx.Encoder) {
			e.ArrStart()
			for _, t := range p.Discounts {
				e.Obj(func(e *jx.Encoder) {
					e.Field("quantity", func(e *jx.Encoder) { e.Int(t.Quantity) })
					e.Field("rate", func(e *jx.Encoder) { encodeRate(e, t.Rate) })
				})
			}
			e.ArrEnd()
		})
		if p.Description != "" {
			e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		}
		e.Field("isRecommended", func(e *jx.Encoder) { e.Bool(p.Recommended) })
	})
}

func encodeRate(e *jx.Encoder, rate decimal.Decimal) {
	e.Float64(rate.InexactFloat64())
}

func encodeCoupon(e *jx.Encoder, c coupon.Coupon) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Str(c.Code) })
		e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
		e.Field("discountType", func(e *jx.Encoder) { e.Str(string(c.DiscountType)) })
		e.Field("discountValue", func(e *jx.Encoder) { e.Int64(c.DiscountValue) })
	})
}

func encodeCorrections(e *jx.Encoder, corrections []form.Correction) {
	e.ArrStart()
	for _, c := range corrections {
		e.Obj(func(e *jx.Encoder) {
			e.Field("field", func(e *jx.Encoder) { e.Str(c.Field) })
			if c.Input != "" {
				e.Field("input", func(e *jx.Encoder) { e.Str(c.Input) })
			}
			e.Field("value", func(e *jx.Encoder) { e.Int64(c.Value) })
			e.Field("corrected", func(e *jx.Encoder) { e.Int64(c.Corrected) })
			e.Field("message", func(e *jx.Encoder) { e.Str(c.Message) })
		})
	}
	e.ArrEnd()
}

func encodeTotals(e *jx.Encoder, t cart.Totals) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("totalBeforeDiscount", func(e *jx.Encoder) { e.Int64(t.BeforeDiscount) })
		e.Field("totalAfterDiscount", func(e *jx.Encoder) { e.Int64(t.AfterDiscount) })
	})
}

func encodeSummary(e *jx.Encoder, s *cart.Summary) {
	e.Obj(func(e *jx.Encoder) {
		if s.ID != "" {
			e.Field("id", func(e *jx.Encoder) { e.Str(s.ID) })
		}
		e.Field("items", func(e *jx.Encoder) {
			e.ArrStart()
			for _, l := range s.Lines {
				e.Obj(func(e *jx.Encoder) {
					e.Field("product", func(e *jx.Encoder) { encodeProduct(e, l.Product) })
					e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
					e.Field("discountRate", func(e *jx.Encoder) { encodeRate(e, l.Rate) })
					e.Field("total", func(e *jx.Encoder) { e.Int64(l.Total) })
					e.Field("remainingStock", func(e *jx.Encoder) { e.Int(l.RemainingStock) })
				})
			}
			e.ArrEnd()
		})
		e.Field("itemCount", func(e *jx.Encoder) { e.Int(s.ItemCount) })
		e.Field("subtotal", func(e *jx.Encoder) { e.Int64(s.Subtotal) })
		e.Field("totals", func(e *jx.Encoder) { encodeTotals(e, s.Totals) })
		e.Field("coupon", func(e *jx.Encoder) {
			if s.Coupon == nil {
				e.Null()
				return
			}
			encodeCoupon(e, *s.Coupon)
		})
	})
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("orderNumber", func(e *jx.Encoder) { e.Str(o.Number) })
		e.Field("cartId", func(e *jx.Encoder) { e.Str(o.CartID) })
		e.Field("items", func(e *jx.Encoder) {
			e.ArrStart()
			for _, it := range o.Items {
				e.Obj(func(e *jx.Encoder) {
					e.Field("productId", func(e *jx.Encoder) { e.Str(it.ProductID) })
					e.Field("name", func(e *jx.Encoder) { e.Str(it.Name) })
					e.Field("unitPrice", func(e *jx.Encoder) { e.Int64(it.UnitPrice) })
					e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
					e.Field("discountRate", func(e *jx.Encoder) { encodeRate(e, it.Rate) })
					e.Field("total", func(e *jx.Encoder) { e.Int64(it.Total) })
				})
			}
			e.ArrEnd()
		})
		e.Field("totals", func(e *jx.Encoder) {
			encodeTotals(e, cart.Totals{BeforeDiscount: o.BeforeDiscount, AfterDiscount: o.AfterDiscount})
		})
		if o.CouponCode != "" {
			e.Field("couponCode", func(e *jx.Encoder) { e.Str(o.CouponCode) })
		}
		e.Field("createdAt", func(e *jx.Encoder) { e.Str(o.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00")) })
	})
}

func encodeError(e *jx.Encoder, status int, msg string) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
	})
}
