package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/shopcart/internal/domain/cart"
	"github.com/xenking/shopcart/internal/domain/coupon"
	"github.com/xenking/shopcart/internal/domain/product"
)

const (
	insertCartSQL = `INSERT INTO carts (id) VALUES ($1)`

	getCartSQL = `SELECT id, selected_coupon FROM carts WHERE id = $1`

	lockCartSQL = getCartSQL + ` FOR UPDATE`

	listCartLinesSQL = `SELECT product_id, quantity FROM cart_lines
		WHERE cart_id = $1 ORDER BY position`

	deleteCartLinesSQL = `DELETE FROM cart_lines WHERE cart_id = $1`

	insertCartLineSQL = `INSERT INTO cart_lines (cart_id, product_id, position, quantity)
		VALUES ($1, $2, $3, $4)`

	updateCartSQL = `UPDATE carts SET selected_coupon = $2, updated_at = now() WHERE id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. Lines are
// stored by product ID and re-hydrated from the catalog on every load.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Create inserts an empty cart.
func (r *CartRepository) Create(ctx context.Context, s *cart.State) error {
	if _, err := conn(ctx, r.pool).Exec(ctx, insertCartSQL, s.ID); err != nil {
		return errors.Wrapf(err, "insert cart %q", s.ID)
	}
	return nil
}

// Get loads a cart without locking it.
func (r *CartRepository) Get(ctx context.Context, id string) (*cart.State, error) {
	return loadCart(ctx, conn(ctx, r.pool), getCartSQL, id)
}

// Update locks the cart row, applies fn and writes the result back in the
// same transaction.
func (r *CartRepository) Update(
	ctx context.Context,
	id string,
	fn func(ctx context.Context, s *cart.State) error,
) (*cart.State, error) {
	var st *cart.State
	err := inTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		if st, err = loadCart(ctx, tx, lockCartSQL, id); err != nil {
			return err
		}
		if err := fn(ctx, st); err != nil {
			return err
		}
		return writeCart(ctx, tx, st)
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func loadCart(ctx context.Context, q querier, query, id string) (*cart.State, error) {
	var (
		st       cart.State
		selected *string
	)
	if err := q.QueryRow(ctx, query, id).Scan(&st.ID, &selected); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get cart %q", id)
	}

	lines, err := loadLines(ctx, q, id)
	if err != nil {
		return nil, err
	}
	st.Lines = lines

	if selected != nil {
		rows, err := q.Query(ctx, getCouponByCodeSQL, *selected)
		if err != nil {
			return nil, errors.Wrap(err, "get selected coupon")
		}
		c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
		if err != nil {
			return nil, errors.Wrap(err, "get selected coupon")
		}
		st.Selection = coupon.Selected(c)
	}
	return &st, nil
}

func loadLines(ctx context.Context, q querier, id string) (cart.Cart, error) {
	type stored struct {
		productID string
		quantity  int
	}
	rows, err := q.Query(ctx, listCartLinesSQL, id)
	if err != nil {
		return nil, errors.Wrap(err, "list cart lines")
	}
	storedLines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (stored, error) {
		var s stored
		err := row.Scan(&s.productID, &s.quantity)
		return s, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "list cart lines")
	}
	if len(storedLines) == 0 {
		return nil, nil
	}

	ids := make([]string, len(storedLines))
	for i, s := range storedLines {
		ids[i] = s.productID
	}
	products, err := getProductsByIDs(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make(cart.Cart, 0, len(storedLines))
	for _, s := range storedLines {
		p, ok := byID[s.productID]
		if !ok {
			continue
		}
		lines = append(lines, cart.Line{Product: p, Quantity: s.quantity})
	}
	return lines, nil
}

func writeCart(ctx context.Context, tx pgx.Tx, st *cart.State) error {
	if _, err := tx.Exec(ctx, deleteCartLinesSQL, st.ID); err != nil {
		return errors.Wrap(err, "delete cart lines")
	}
	if len(st.Lines) > 0 {
		batch := &pgx.Batch{}
		for i, l := range st.Lines {
			batch.Queue(insertCartLineSQL, st.ID, l.Product.ID, i, l.Quantity)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Wrap(err, "insert cart lines")
		}
	}

	var selected *string
	if st.Selection.IsSelected() {
		code := st.Selection.Code()
		selected = &code
	}
	if _, err := tx.Exec(ctx, updateCartSQL, st.ID, selected); err != nil {
		return errors.Wrap(err, "update cart")
	}
	return nil
}
