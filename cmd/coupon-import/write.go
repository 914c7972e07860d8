package main

import (
	"context"
	"log/slog"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"

	"github.com/xenking/shopcart/internal/domain/coupon"
)

const bloomFPR = 0.001

// dedupe keeps the first occurrence of every code across files. The bloom
// filter answers most lookups; hits are confirmed against the exact set.
func dedupe(perFile [][]coupon.Coupon) (unique []coupon.Coupon, duplicates int) {
	total := 0
	for _, cs := range perFile {
		total += len(cs)
	}
	if total == 0 {
		return nil, 0
	}

	filter := bloom.NewWithEstimates(uint(total), bloomFPR)
	seen := make(map[string]struct{}, total)
	for _, cs := range perFile {
		for _, c := range cs {
			if filter.TestAndAddString(c.Code) {
				if _, ok := seen[c.Code]; ok {
					duplicates++
					continue
				}
			}
			seen[c.Code] = struct{}{}
			unique = append(unique, c)
		}
	}
	return unique, duplicates
}

// couponStore is implemented by *postgres.CouponRepository.
type couponStore interface {
	ExistingCodes(ctx context.Context, codes []string) (map[string]struct{}, error)
	Upsert(ctx context.Context, coupons []coupon.Coupon) (int64, error)
}

// write inserts coupons in batches, skipping codes that are already stored.
func write(ctx context.Context, store couponStore, coupons []coupon.Coupon, batchSize int) error {
	if batchSize <= 0 {
		batchSize = len(coupons)
	}

	var inserted, skipped int64
	for start := 0; start < len(coupons); start += batchSize {
		batch := coupons[start:min(start+batchSize, len(coupons))]

		codes := make([]string, len(batch))
		for i, c := range batch {
			codes[i] = c.Code
		}
		existing, err := store.ExistingCodes(ctx, codes)
		if err != nil {
			return errors.Wrap(err, "check existing codes")
		}

		fresh := batch[:0:0]
		for _, c := range batch {
			if _, ok := existing[c.Code]; ok {
				skipped++
				continue
			}
			fresh = append(fresh, c)
		}

		n, err := store.Upsert(ctx, fresh)
		if err != nil {
			return errors.Wrap(err, "insert coupons")
		}
		inserted += n
		skipped += int64(len(fresh)) - n

		slog.Info("write progress",
			slog.Int("processed", start+len(batch)),
			slog.Int("total", len(coupons)),
		)
	}

	slog.Info("coupons written", slog.Int64("inserted", inserted), slog.Int64("skipped", skipped))
	return nil
}
