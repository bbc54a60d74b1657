package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/salesdash/internal/database"
	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
	"github.com/MrJamesThe3rd/salesdash/internal/transaction/store"
)

// Runs only when TEST_DATABASE_URL points at a disposable Postgres database.
func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}

	require.NoError(t, database.Migrate(dsn))

	db, err := database.New(dsn)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	const baseID = 9_000_000

	cleanup := func() {
		_, err := db.ExecContext(ctx, `DELETE FROM transactions WHERE external_id >= $1`, baseID)
		require.NoError(t, err)
	}
	cleanup()
	t.Cleanup(cleanup)

	date := func(d int) time.Time { return time.Date(1987, time.March, d, 12, 0, 0, 0, time.UTC) }

	txs := []*transaction.Transaction{
		{ExternalID: baseID + 1, Title: "Backpack", Price: decimal.RequireFromString("109.95"), Category: "men's clothing", Sold: true, DateOfSale: date(1)},
		{ExternalID: baseID + 2, Title: "T-Shirt", Price: decimal.RequireFromString("22.30"), Category: "men's clothing", Sold: false, DateOfSale: date(5)},
		{ExternalID: baseID + 3, Title: "Ring", Price: decimal.RequireFromString("999.99"), Category: "jewelery", Sold: true, DateOfSale: date(31)},
		{ExternalID: baseID + 4, Title: "Laptop 100% off", Price: decimal.RequireFromString("64"), Category: "electronics", Sold: true, DateOfSale: time.Date(1987, time.April, 1, 0, 0, 0, 0, time.UTC)},
		// Early on the 1st in the seller's zone, still February in UTC.
		{ExternalID: baseID + 5, Title: "Watch", Price: decimal.RequireFromString("10"), Category: "jewelery", Sold: true, DateOfSale: time.Date(1988, time.March, 1, 2, 0, 0, 0, time.FixedZone("IST", 5*60*60+30*60))},
	}

	s := store.New(db)
	require.NoError(t, s.UpsertTransactions(ctx, txs))

	for _, tx := range txs {
		assert.NotEmpty(t, tx.ID)
	}

	f := transaction.Filter{Month: time.March, Year: 1987}

	stats, err := s.Statistics(ctx, f)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1109.94").Equal(stats.TotalSaleAmount), stats.TotalSaleAmount.String())
	assert.Equal(t, int64(2), stats.TotalSoldItems)
	assert.Equal(t, int64(1), stats.TotalNotSoldItems)

	buckets, err := s.CountByBucket(ctx, f, transaction.Hundreds)
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{0: 1, 1: 1, 9: 1}, buckets)

	cats, err := s.CountByCategory(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, []transaction.CategoryCount{
		{Category: "jewelery", Count: 1},
		{Category: "men's clothing", Count: 2},
	}, cats)

	boundary, err := s.Statistics(ctx, transaction.Filter{Month: time.March, Year: 1988})
	require.NoError(t, err)
	assert.Equal(t, int64(1), boundary.TotalSoldItems)

	feb, err := s.Statistics(ctx, transaction.Filter{Month: time.February, Year: 1988})
	require.NoError(t, err)
	assert.Zero(t, feb.Count())

	watch, err := s.ListTransactions(ctx, transaction.ListFilter{Filter: transaction.Filter{Month: time.March, Year: 1988}, Search: "watch", Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, watch, 1)
	assert.Equal(t, time.Date(1988, time.March, 1, 2, 0, 0, 0, time.UTC), watch[0].DateOfSale)

	// A month without sales aggregates to zeros.
	empty := transaction.Filter{Month: time.July, Year: 1901}

	none, err := s.Statistics(ctx, empty)
	require.NoError(t, err)
	assert.True(t, none.TotalSaleAmount.IsZero())
	assert.Zero(t, none.Count())

	noBuckets, err := s.CountByBucket(ctx, empty, transaction.Hundreds)
	require.NoError(t, err)
	assert.Empty(t, noBuckets)

	noCats, err := s.CountByCategory(ctx, empty)
	require.NoError(t, err)
	assert.NotNil(t, noCats)
	assert.Empty(t, noCats)

	list, err := s.ListTransactions(ctx, transaction.ListFilter{Filter: transaction.Filter{Month: time.April, Year: 1987}, Search: "100%", Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Laptop 100% off", list[0].Title)

	// Re-running the seed updates rows in place.
	txs[1].Sold = true
	require.NoError(t, s.UpsertTransactions(ctx, txs[1:2]))

	stats, err = s.Statistics(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalSoldItems)
	assert.Zero(t, stats.TotalNotSoldItems)

	require.NoError(t, s.Ping(ctx))
}
