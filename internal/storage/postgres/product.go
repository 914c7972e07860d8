package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/shopcart/internal/domain/product"
)

const (
	productColumns = `id, name, price, stock, description, recommended`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY created_at, id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	listTiersSQL = `SELECT product_id, quantity, rate FROM discount_tiers
		WHERE product_id = ANY($1) ORDER BY product_id, position`

	insertProductSQL = `INSERT INTO products (id, name, price, stock, description, recommended)
		VALUES ($1, $2, $3, $4, $5, $6)`

	updateProductSQL = `UPDATE products
		SET name = $2, price = $3, stock = $4, description = $5, recommended = $6
		WHERE id = $1`

	deleteTiersSQL = `DELETE FROM discount_tiers WHERE product_id = $1`

	insertTierSQL = `INSERT INTO discount_tiers (product_id, position, quantity, rate)
		VALUES ($1, $2, $3, $4)`

	clampCartLinesSQL = `UPDATE cart_lines SET quantity = $2
		WHERE product_id = $1 AND quantity > $2`

	dropEmptyCartLinesSQL = `DELETE FROM cart_lines WHERE product_id = $1 AND $2 = 0`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns the whole catalog in creation order.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	q := conn(ctx, r.pool)
	rows, err := q.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	if err := attachTiers(ctx, q, products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	q := conn(ctx, r.pool)
	rows, err := q.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %q", id)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %q", id)
	}

	products := []product.Product{p}
	if err := attachTiers(ctx, q, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	return getProductsByIDs(ctx, conn(ctx, r.pool), ids)
}

func getProductsByIDs(ctx context.Context, q querier, ids []string) ([]product.Product, error) {
	rows, err := q.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products by ids")
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, errors.Wrap(err, "get products by ids")
	}
	if err := attachTiers(ctx, q, products); err != nil {
		return nil, err
	}
	return products, nil
}

// Create inserts p and its discount tiers.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	return inTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertProductSQL,
			p.ID, p.Name, p.Price, p.Stock, p.Description, p.Recommended,
		); err != nil {
			return errors.Wrapf(err, "insert product %q", p.ID)
		}
		return writeTiers(ctx, tx, p)
	})
}

// Update replaces p and its tiers. Cart lines holding more than the new
// stock are clamped to it; lines left at zero are removed.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	return inTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, updateProductSQL,
			p.ID, p.Name, p.Price, p.Stock, p.Description, p.Recommended,
		)
		if err != nil {
			return errors.Wrapf(err, "update product %q", p.ID)
		}
		if tag.RowsAffected() == 0 {
			return product.ErrNotFound
		}
		if _, err := tx.Exec(ctx, deleteTiersSQL, p.ID); err != nil {
			return errors.Wrap(err, "delete tiers")
		}
		if err := writeTiers(ctx, tx, p); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, dropEmptyCartLinesSQL, p.ID, p.Stock); err != nil {
			return errors.Wrap(err, "drop cart lines")
		}
		if _, err := tx.Exec(ctx, clampCartLinesSQL, p.ID, p.Stock); err != nil {
			return errors.Wrap(err, "clamp cart lines")
		}
		return nil
	})
}

// Delete removes a product. Tiers and cart lines go with it through the
// foreign keys.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return errors.Wrapf(err, "delete product %q", id)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func writeTiers(ctx context.Context, tx pgx.Tx, p *product.Product) error {
	if len(p.Discounts) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, d := range p.Discounts {
		batch.Queue(insertTierSQL, p.ID, i, d.Quantity, d.Rate)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrapf(err, "insert tiers for %q", p.ID)
	}
	return nil
}

// attachTiers loads the discount tiers of products in one query.
func attachTiers(ctx context.Context, q querier, products []product.Product) error {
	if len(products) == 0 {
		return nil
	}
	index := make(map[string]int, len(products))
	ids := make([]string, len(products))
	for i, p := range products {
		index[p.ID] = i
		ids[i] = p.ID
	}

	rows, err := q.Query(ctx, listTiersSQL, ids)
	if err != nil {
		return errors.Wrap(err, "list tiers")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID string
			t         product.DiscountTier
		)
		if err := rows.Scan(&productID, &t.Quantity, &t.Rate); err != nil {
			return errors.Wrap(err, "scan tier")
		}
		if i, ok := index[productID]; ok {
			products[i].Discounts = append(products[i].Discounts, t)
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "list tiers")
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Description, &p.Recommended)
	return p, err
}
