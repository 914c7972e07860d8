package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/shopcart/internal/domain/coupon"
)

const (
	listCouponsSQL = `SELECT code, name, discount_type, discount_value
		FROM coupons ORDER BY created_at, code`

	getCouponByCodeSQL = `SELECT code, name, discount_type, discount_value
		FROM coupons WHERE code = UPPER($1)`

	insertCouponSQL = `INSERT INTO coupons (code, name, discount_type, discount_value)
		VALUES ($1, $2, $3, $4)`

	insertCouponIfAbsentSQL = insertCouponSQL + ` ON CONFLICT (code) DO NOTHING`

	listCouponCodesSQL = `SELECT code FROM coupons WHERE code = ANY($1)`

	// carts.selected_coupon is ON DELETE SET NULL, so selections are
	// cleared in the same statement.
	deleteCouponSQL = `DELETE FROM coupons WHERE code = $1`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// List returns all coupons in creation order.
func (r *CouponRepository) List(ctx context.Context) ([]coupon.Coupon, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, listCouponsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list coupons")
	}
	coupons, err := pgx.CollectRows(rows, scanCoupon)
	if err != nil {
		return nil, errors.Wrap(err, "list coupons")
	}
	return coupons, nil
}

// FindByCode looks up a coupon. The code is matched case-insensitively.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, getCouponByCodeSQL, code)
	if err != nil {
		return nil, errors.Wrapf(err, "find coupon %q", code)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find coupon %q", code)
	}
	return &c, nil
}

// Create inserts c. A taken code yields coupon.ErrDuplicateCode.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	_, err := conn(ctx, r.pool).Exec(ctx, insertCouponSQL,
		c.Code, c.Name, string(c.DiscountType), c.DiscountValue,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return coupon.ErrDuplicateCode
		}
		return errors.Wrapf(err, "insert coupon %q", c.Code)
	}
	return nil
}

// Delete removes the coupon and clears every cart selection referencing it.
func (r *CouponRepository) Delete(ctx context.Context, code string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, deleteCouponSQL, code)
	if err != nil {
		return errors.Wrapf(err, "delete coupon %q", code)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrNotFound
	}
	return nil
}

// ExistingCodes returns which of codes are already stored.
func (r *CouponRepository) ExistingCodes(ctx context.Context, codes []string) (map[string]struct{}, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, listCouponCodesSQL, codes)
	if err != nil {
		return nil, errors.Wrap(err, "list coupon codes")
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Wrap(err, "list coupon codes")
	}
	out := make(map[string]struct{}, len(found))
	for _, code := range found {
		out[code] = struct{}{}
	}
	return out, nil
}

// Upsert inserts coupons in one batch, skipping codes that already exist.
// It returns the number of rows inserted.
func (r *CouponRepository) Upsert(ctx context.Context, coupons []coupon.Coupon) (int64, error) {
	if len(coupons) == 0 {
		return 0, nil
	}
	var inserted int64
	err := inTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, c := range coupons {
			batch.Queue(insertCouponIfAbsentSQL, c.Code, c.Name, string(c.DiscountType), c.DiscountValue)
		}
		br := tx.SendBatch(ctx, batch)
		for range coupons {
			tag, err := br.Exec()
			if err != nil {
				_ = br.Close()
				return errors.Wrap(err, "insert coupon")
			}
			inserted += tag.RowsAffected()
		}
		return br.Close()
	})
	if err != nil {
		return 0, errors.Wrap(err, "upsert coupons")
	}
	return inserted, nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c     coupon.Coupon
		dtype string
	)
	err := row.Scan(&c.Code, &c.Name, &dtype, &c.DiscountValue)
	c.DiscountType = coupon.DiscountType(dtype)
	return c, err
}
