package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/shopcart/internal/domain/coupon"
)

func TestParseCSV(t *testing.T) {
	data := strings.Join([]string{
		"code,name,type,value",
		"welcome5, Welcome ,amount,5000",
		"half,Half off,PERCENTAGE,150",
		"bogus,Bad type,free,1",
		"nan,Bad value,amount,12a",
		" ,No code,amount,10",
		"big,Big amount,amount,250000",
	}, "\n")

	got, err := parseCSV(context.Background(), strings.NewReader(data), "test")
	require.NoError(t, err)

	assert.Equal(t, []coupon.Coupon{
		{Code: "WELCOME5", Name: "Welcome", DiscountType: coupon.DiscountAmount, DiscountValue: 5000},
		{Code: "HALF", Name: "Half off", DiscountType: coupon.DiscountPercentage, DiscountValue: coupon.MaxPercentage},
		{Code: "NAN", Name: "Bad value", DiscountType: coupon.DiscountAmount, DiscountValue: 12},
		{Code: "BIG", Name: "Big amount", DiscountType: coupon.DiscountAmount, DiscountValue: coupon.MaxAmount},
	}, got)
}

func TestParseRecord_LenientValue(t *testing.T) {
	tests := []struct {
		value     string
		want      int64
		corrected int
	}{
		{value: "250", want: 250},
		{value: "abc", want: 0, corrected: 1},
		{value: "40%", want: 40, corrected: 1},
		{value: "-5", want: 0, corrected: 2},
		{value: "180", want: coupon.MaxPercentage, corrected: 1},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			c, corrections, err := parseRecord([]string{"x", "X", "percentage", tt.value})
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.DiscountValue)
			assert.Len(t, corrections, tt.corrected)
		})
	}
}

func TestParseCSV_WrongFieldCount(t *testing.T) {
	_, err := parseCSV(context.Background(), strings.NewReader("a,b,c\n"), "test")
	assert.Error(t, err)
}

func TestReadFiles_Gzip(t *testing.T) {
	dir := t.TempDir()
	writeGz := func(name, body string) string {
		var buf bytes.Buffer
		gz := pgzip.NewWriter(&buf)
		_, err := gz.Write([]byte(body))
		require.NoError(t, err)
		require.NoError(t, gz.Close())
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
		return path
	}

	files := []string{
		writeGz("a.csv.gz", "A1,One,amount,100\nA2,Two,amount,200\n"),
		writeGz("b.csv.gz", "a2,Dup,percentage,5\nB1,Three,percentage,10\n"),
	}

	perFile, err := readFiles(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, perFile, 2)
	assert.Len(t, perFile[0], 2)
	assert.Len(t, perFile[1], 2)

	unique, dups := dedupe(perFile)
	assert.Equal(t, 1, dups)
	require.Len(t, unique, 3)
	assert.Equal(t, "Two", unique[1].Name, "first occurrence wins")
}

func TestDedupe_Empty(t *testing.T) {
	unique, dups := dedupe(nil)
	assert.Empty(t, unique)
	assert.Zero(t, dups)
}

type mockStore struct {
	stored  map[string]struct{}
	batches [][]string
	err     error
}

func (m *mockStore) ExistingCodes(_ context.Context, codes []string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for _, c := range codes {
		if _, ok := m.stored[c]; ok {
			out[c] = struct{}{}
		}
	}
	return out, nil
}

func (m *mockStore) Upsert(_ context.Context, coupons []coupon.Coupon) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var codes []string
	for _, c := range coupons {
		m.stored[c.Code] = struct{}{}
		codes = append(codes, c.Code)
	}
	m.batches = append(m.batches, codes)
	return int64(len(coupons)), nil
}

func TestWrite(t *testing.T) {
	store := &mockStore{stored: map[string]struct{}{"B": {}}}
	coupons := []coupon.Coupon{{Code: "A"}, {Code: "B"}, {Code: "C"}, {Code: "D"}, {Code: "E"}}

	require.NoError(t, write(context.Background(), store, coupons, 2))
	assert.Equal(t, [][]string{{"A"}, {"C", "D"}, {"E"}}, store.batches)
	assert.Len(t, store.stored, 5)
}

func TestWrite_Error(t *testing.T) {
	store := &mockStore{stored: map[string]struct{}{}, err: errors.New("db down")}
	err := write(context.Background(), store, []coupon.Coupon{{Code: "A"}}, 10)
	assert.ErrorContains(t, err, "db down")
}
