package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/shopcart/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders
		(id, number, cart_id, items, before_discount, after_discount, coupon_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	getOrderSQL = `SELECT id, number, cart_id, items, before_discount, after_discount, coupon_code, created_at
		FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. Items are stored as a JSONB array.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	_, err := conn(ctx, r.pool).Exec(ctx, createOrderSQL,
		o.ID, o.Number, o.CartID, encodeItems(o.Items),
		o.BeforeDiscount, o.AfterDiscount, o.CouponCode, o.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "create order %q", o.ID)
	}
	return nil
}

// GetByID returns a stored order.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var (
		o     order.Order
		items []byte
	)
	err := conn(ctx, r.pool).QueryRow(ctx, getOrderSQL, id).Scan(
		&o.ID, &o.Number, &o.CartID, &items,
		&o.BeforeDiscount, &o.AfterDiscount, &o.CouponCode, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %q", id)
	}
	if o.Items, err = decodeItems(items); err != nil {
		return nil, errors.Wrapf(err, "decode order %q items", id)
	}
	return &o, nil
}

func encodeItems(items []order.Item) []byte {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.ArrStart()
	for _, it := range items {
		e.Obj(func(e *jx.Encoder) {
			e.Field("product_id", func(e *jx.Encoder) { e.Str(it.ProductID) })
			e.Field("name", func(e *jx.Encoder) { e.Str(it.Name) })
			e.Field("unit_price", func(e *jx.Encoder) { e.Int64(it.UnitPrice) })
			e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
			e.Field("rate", func(e *jx.Encoder) { e.Str(it.Rate.String()) })
			e.Field("total", func(e *jx.Encoder) { e.Int64(it.Total) })
		})
	}
	e.ArrEnd()

	out := make([]byte, len(e.Bytes()))
	copy(out, e.Bytes())
	return out
}

func decodeItems(data []byte) ([]order.Item, error) {
	var items []order.Item
	err := jx.DecodeBytes(data).Arr(func(d *jx.Decoder) error {
		var it order.Item
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "product_id":
				it.ProductID, err = d.Str()
			case "name":
				it.Name, err = d.Str()
			case "unit_price":
				it.UnitPrice, err = d.Int64()
			case "quantity":
				it.Quantity, err = d.Int()
			case "rate":
				var s string
				if s, err = d.Str(); err == nil {
					it.Rate, err = decimal.NewFromString(s)
				}
			case "total":
				it.Total, err = d.Int64()
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
	return items, err
}
