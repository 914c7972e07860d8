package main

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/shopcart/internal/domain/coupon"
	"github.com/xenking/shopcart/internal/domain/form"
)

// readFiles parses every file concurrently. The result keeps file order.
func readFiles(ctx context.Context, files []string) ([][]coupon.Coupon, error) {
	out := make([][]coupon.Coupon, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range files {
		g.Go(func() error {
			coupons, err := readFile(ctx, path)
			if err != nil {
				return errors.Wrapf(err, "read %s", path)
			}
			slog.Info("file parsed", slog.String("path", path), slog.Int("coupons", len(coupons)))
			out[i] = coupons
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func readFile(ctx context.Context, path string) ([]coupon.Coupon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "gzip")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}
	return parseCSV(ctx, r, path)
}

// parseCSV reads code,name,type,value records. A header row whose first
// column is "code" is skipped. Values go through coupon.Normalize so the
// stored coupons obey the same limits as admin-created ones.
func parseCSV(ctx context.Context, r io.Reader, source string) ([]coupon.Coupon, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var coupons []coupon.Coupon
	for line := 1; ; line++ {
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return coupons, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if line == 1 && strings.EqualFold(rec[0], "code") {
			continue
		}

		c, corrections, err := parseRecord(rec)
		if err != nil {
			slog.Warn("skipping record",
				slog.String("source", source),
				slog.Int("line", line),
				slog.String("error", err.Error()),
			)
			continue
		}
		for _, fix := range corrections {
			slog.Warn("corrected record value",
				slog.String("source", source),
				slog.Int("line", line),
				slog.String("field", fix.Field),
				slog.String("message", fix.Message),
			)
		}
		coupons = append(coupons, c)
	}
}

// parseRecord builds a coupon from one record. Numeric values are read
// leniently and clamped; only an unknown type or a missing code drops the
// record.
func parseRecord(rec []string) (coupon.Coupon, []form.Correction, error) {
	t := coupon.DiscountType(strings.ToLower(strings.TrimSpace(rec[2])))
	if !t.Valid() {
		return coupon.Coupon{}, nil, errors.Wrapf(coupon.ErrInvalidType, "type %q", rec[2])
	}

	var corrections []form.Correction
	value := form.ParseNumeric("value", strings.TrimSpace(rec[3]), &corrections)
	c, clamped := coupon.Normalize(coupon.Coupon{
		Code:          rec[0],
		Name:          rec[1],
		DiscountType:  t,
		DiscountValue: value,
	})
	if c.Code == "" {
		return coupon.Coupon{}, nil, coupon.ErrCodeRequired
	}
	return c, append(corrections, clamped...), nil
}
