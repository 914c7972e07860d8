package main

import (
	"context"
	_ "embed"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/shopcart/internal/domain/auth"
	"github.com/xenking/shopcart/internal/domain/coupon"
	"github.com/xenking/shopcart/internal/domain/product"
	"github.com/xenking/shopcart/internal/storage/postgres"
)

//go:embed catalog.json
var defaultCatalog []byte

var demoCoupons = []coupon.Coupon{
	{Code: "AMOUNT5000", Name: "5000 off", DiscountType: coupon.DiscountAmount, DiscountValue: 5000},
	{Code: "PERCENT10", Name: "10% off", DiscountType: coupon.DiscountPercentage, DiscountValue: 10},
}

func main() {
	var (
		databaseURL  string
		catalogFile  string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog", "", "path to a catalog JSON file (defaults to the built-in demo catalog)")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or CART_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or CART_API_KEY_PEPPER env)")
	flag.Parse()

	databaseURL = orEnv(databaseURL, "DATABASE_URL")
	apiKey = orEnv(apiKey, "CART_SEED_API_KEY")
	apiKeyPepper = orEnv(apiKeyPepper, "CART_API_KEY_PEPPER")

	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" || apiKeyPepper == "" {
		slog.Error("API key and pepper are required: set --api-key and --api-key-pepper")
		os.Exit(1)
	}

	catalog := defaultCatalog
	if catalogFile != "" {
		data, err := os.ReadFile(catalogFile)
		if err != nil {
			slog.Error("read catalog", slog.String("error", err.Error()))
			os.Exit(1)
		}
		catalog = data
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalog, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("seed completed successfully")
}

func orEnv(v, key string) string {
	if v != "" {
		return v
	}
	return os.Getenv(key)
}

func run(ctx context.Context, databaseURL string, catalog []byte, apiKey, pepper string) error {
	products, err := parseCatalog(catalog)
	if err != nil {
		return errors.Wrap(err, "parse catalog")
	}

	slog.Info("connecting to database")
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, postgres.NewProductRepository(pool), products); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedCoupons(ctx, postgres.NewCouponRepository(pool)); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	if err := seedAPIKey(ctx, postgres.NewAPIKeyRepository(pool), apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}
	return nil
}

// parseCatalog decodes a JSON array of products. Rates are decimal strings
// so they survive decoding exactly.
func parseCatalog(data []byte) ([]product.Product, error) {
	var products []product.Product
	err := jx.DecodeBytes(data).Arr(func(d *jx.Decoder) error {
		var p product.Product
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				p.ID, err = d.Str()
			case "name":
				p.Name, err = d.Str()
			case "price":
				p.Price, err = d.Int64()
			case "stock":
				p.Stock, err = d.Int()
			case "description":
				p.Description, err = d.Str()
			case "isRecommended":
				p.Recommended, err = d.Bool()
			case "discounts":
				err = d.Arr(func(d *jx.Decoder) error {
					var t product.DiscountTier
					if err := d.Obj(func(d *jx.Decoder, key string) error {
						switch key {
						case "quantity":
							q, err := d.Int()
							t.Quantity = q
							return err
						case "rate":
							s, err := d.Str()
							if err != nil {
								return err
							}
							t.Rate, err = decimal.NewFromString(s)
							return err
						default:
							return d.Skip()
						}
					}); err != nil {
						return err
					}
					p.Discounts = append(p.Discounts, t)
					return nil
				})
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		if p.ID == "" {
			return errors.Errorf("product %q has no id", p.Name)
		}
		products = append(products, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

func seedProducts(ctx context.Context, repo *postgres.ProductRepository, products []product.Product) error {
	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, raw := range products {
		p, corrections := product.Normalize(raw)
		for _, c := range corrections {
			slog.Warn("corrected catalog value",
				slog.String("id", p.ID),
				slog.String("field", c.Field),
				slog.Int64("value", c.Value),
				slog.Int64("corrected", c.Corrected),
			)
		}

		_, err := repo.GetByID(ctx, p.ID)
		switch {
		case errors.Is(err, product.ErrNotFound):
			err = repo.Create(ctx, &p)
		case err == nil:
			err = repo.Update(ctx, &p)
		}
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}
	return nil
}

func seedCoupons(ctx context.Context, repo *postgres.CouponRepository) error {
	inserted, err := repo.Upsert(ctx, demoCoupons)
	if err != nil {
		return err
	}
	slog.Info("seeded coupons", slog.Int("total", len(demoCoupons)), slog.Int64("inserted", inserted))
	return nil
}

func seedAPIKey(ctx context.Context, repo *postgres.APIKeyRepository, apiKey, pepper string) error {
	info := &auth.APIKeyInfo{
		ID:      "default",
		KeyHash: auth.HashHex([]byte(pepper), apiKey),
		Name:    "Default admin key",
		Scopes:  []string{auth.ScopeAdmin},
	}
	if err := repo.Save(ctx, info); err != nil {
		return err
	}
	slog.Info("upserted API key", slog.String("id", info.ID), slog.String("name", info.Name))
	return nil
}
