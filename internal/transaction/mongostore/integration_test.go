package mongostore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MrJamesThe3rd/salesdash/internal/mongodb"
	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
	"github.com/MrJamesThe3rd/salesdash/internal/transaction/mongostore"
)

// Runs only when TEST_MONGO_URI points at a disposable MongoDB server.
func TestStoreIntegration(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set; skipping integration test")
	}

	ctx := context.Background()

	client, err := mongodb.New(ctx, uri)
	require.NoError(t, err)
	defer client.Disconnect(ctx)

	coll := client.Database("salesdash_test").Collection("transactions_" + time.Now().Format("20060102150405"))
	t.Cleanup(func() { _ = coll.Drop(ctx) })

	s := mongostore.New(coll)
	require.NoError(t, s.EnsureIndexes(ctx))

	date := func(d int) time.Time { return time.Date(1987, time.March, d, 12, 0, 0, 0, time.UTC) }

	txs := []*transaction.Transaction{
		{ExternalID: 1, Title: "Backpack", Price: decimal.RequireFromString("109.95"), Category: "men's clothing", Sold: true, DateOfSale: date(1)},
		{ExternalID: 2, Title: "T-Shirt", Price: decimal.RequireFromString("22.30"), Category: "men's clothing", Sold: false, DateOfSale: date(5)},
		{ExternalID: 3, Title: "Ring", Price: decimal.RequireFromString("999.99"), Category: "jewelery", Sold: true, DateOfSale: date(31)},
		{ExternalID: 4, Title: "Laptop (refurbished)", Price: decimal.RequireFromString("64"), Category: "electronics", Sold: true, DateOfSale: time.Date(1988, time.March, 2, 0, 0, 0, 0, time.UTC)},
	}

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

	// Month without a year spans both seeded years.
	all, err := s.Statistics(ctx, transaction.Filter{Month: time.March})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Count())

	buckets, err := s.CountByBucket(ctx, f, transaction.Hundreds)
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{0: 1, 1: 1, 9: 1}, buckets)

	cats, err := s.CountByCategory(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, []transaction.CategoryCount{
		{Category: "jewelery", Count: 1},
		{Category: "men's clothing", Count: 2},
	}, cats)

	list, err := s.ListTransactions(ctx, transaction.ListFilter{Filter: transaction.Filter{Month: time.March}, Search: "(refurb", Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(4), list[0].ExternalID)

	list, err = s.ListTransactions(ctx, transaction.ListFilter{Filter: transaction.Filter{Month: time.March}, Search: "109.95", Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Backpack", list[0].Title)

	// Sales early on the 1st in the seller's zone stay in their own month.
	ist := time.FixedZone("IST", 5*60*60+30*60)
	early := &transaction.Transaction{ExternalID: 5, Title: "Watch", Price: decimal.RequireFromString("10"), Category: "jewelery", Sold: true, DateOfSale: time.Date(1989, time.March, 1, 2, 0, 0, 0, ist)}
	require.NoError(t, s.UpsertTransactions(ctx, []*transaction.Transaction{early}))

	boundary, err := s.Statistics(ctx, transaction.Filter{Month: time.March, Year: 1989})
	require.NoError(t, err)
	assert.Equal(t, int64(1), boundary.TotalSoldItems)

	feb, err := s.Statistics(ctx, transaction.Filter{Month: time.February, Year: 1989})
	require.NoError(t, err)
	assert.Zero(t, feb.Count())

	// Documents written by the Node seed: ObjectId ids, double prices and
	// date strings with an offset.
	_, err = coll.InsertMany(ctx, []any{
		bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "id", Value: int32(100)},
			{Key: "title", Value: "Jacket"},
			{Key: "price", Value: 55.99},
			{Key: "category", Value: "women's clothing"},
			{Key: "sold", Value: true},
			{Key: "dateOfSale", Value: "1990-03-01T02:00:00+05:30"},
		},
		bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "id", Value: int32(101)},
			{Key: "title", Value: "Monitor"},
			{Key: "price", Value: 599.0},
			{Key: "category", Value: "electronics"},
			{Key: "sold", Value: false},
			{Key: "dateOfSale", Value: "1990-03-15T10:00:00+05:30"},
		},
	})
	require.NoError(t, err)

	legacy := transaction.Filter{Month: time.March, Year: 1990}

	legacyStats, err := s.Statistics(ctx, legacy)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("55.99").Equal(legacyStats.TotalSaleAmount), legacyStats.TotalSaleAmount.String())
	assert.Equal(t, int64(1), legacyStats.TotalNotSoldItems)

	legacyBuckets, err := s.CountByBucket(ctx, legacy, transaction.Hundreds)
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{0: 1, 5: 1}, legacyBuckets)

	legacyList, err := s.ListTransactions(ctx, transaction.ListFilter{Filter: legacy, Search: "55.99", Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, legacyList, 1)
	assert.Equal(t, int64(100), legacyList[0].ExternalID)
	assert.Equal(t, time.Date(1990, time.March, 1, 2, 0, 0, 0, time.UTC), legacyList[0].DateOfSale)

	// Month-only filters read both date representations.
	all, err = s.Statistics(ctx, transaction.Filter{Month: time.March})
	require.NoError(t, err)
	assert.Equal(t, int64(7), all.Count())

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

	id := txs[1].ID
	txs[1].Sold = true
	require.NoError(t, s.UpsertTransactions(ctx, txs[1:2]))
	assert.Equal(t, id, txs[1].ID)

	stats, err = s.Statistics(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalSoldItems)

	require.NoError(t, s.Ping(ctx))
}
