// Package mongostore keeps transactions in a MongoDB collection and computes the
// dashboard aggregates with aggregation pipelines.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
)

type Store struct {
	coll *mongo.Collection
}

func New(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// document is the stored shape of a transaction. The loosely typed fields also
// accept collections written by other loaders: ObjectId ids, double or int
// prices and RFC 3339 date strings.
type document struct {
	ID          bson.RawValue `bson:"_id"`
	ExternalID  bson.RawValue `bson:"id"`
	Title       string        `bson:"title"`
	Description string        `bson:"description"`
	Price       bson.RawValue `bson:"price"`
	Category    string        `bson:"category"`
	Sold        bool          `bson:"sold"`
	DateOfSale  bson.RawValue `bson:"dateOfSale"`
	Image       string        `bson:"image"`
}

func (d document) toTransaction() (*transaction.Transaction, error) {
	externalID, err := intFromRaw(d.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("parsing seed id: %w", err)
	}

	id, err := idFromRaw(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing id of %d: %w", externalID, err)
	}

	price, err := priceFromRaw(d.Price)
	if err != nil {
		return nil, fmt.Errorf("parsing price of %d: %w", externalID, err)
	}

	date, err := dateFromRaw(d.DateOfSale)
	if err != nil {
		return nil, fmt.Errorf("parsing sale date of %d: %w", externalID, err)
	}

	return &transaction.Transaction{
		ID:          id,
		ExternalID:  externalID,
		Title:       d.Title,
		Description: d.Description,
		Price:       price,
		Category:    d.Category,
		Sold:        d.Sold,
		DateOfSale:  date,
		Image:       d.Image,
	}, nil
}

// idFromRaw reads a uuid string id. ObjectIds map to a stable name-based uuid.
func idFromRaw(v bson.RawValue) (uuid.UUID, error) {
	switch v.Type {
	case bsontype.String:
		return uuid.Parse(v.StringValue())
	case bsontype.ObjectID:
		oid := v.ObjectID()
		return uuid.NewSHA1(uuid.NameSpaceOID, oid[:]), nil
	}

	return uuid.Nil, fmt.Errorf("unsupported id type %s", v.Type)
}

func intFromRaw(v bson.RawValue) (int64, error) {
	switch v.Type {
	case bsontype.Int32:
		return int64(v.Int32()), nil
	case bsontype.Int64:
		return v.Int64(), nil
	case bsontype.Double:
		f := v.Double()
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("non-integral id %v", f)
		}

		return int64(f), nil
	}

	return 0, fmt.Errorf("unsupported id type %s", v.Type)
}

func priceFromRaw(v bson.RawValue) (decimal.Decimal, error) {
	switch v.Type {
	case bsontype.Decimal128:
		return fromDecimal128(v.Decimal128())
	case bsontype.Double:
		return decimal.NewFromFloat(v.Double()), nil
	case bsontype.Int32:
		return decimal.NewFromInt(int64(v.Int32())), nil
	case bsontype.Int64:
		return decimal.NewFromInt(v.Int64()), nil
	case bsontype.String:
		return decimal.NewFromString(v.StringValue())
	}

	return decimal.Decimal{}, fmt.Errorf("unsupported price type %s", v.Type)
}

// dateFromRaw returns the wall-clock sale time. Dates are stored with the wall
// clock labelled UTC; strings carry their own offset, which is dropped.
func dateFromRaw(v bson.RawValue) (time.Time, error) {
	switch v.Type {
	case bsontype.DateTime:
		return time.UnixMilli(v.DateTime()).UTC(), nil
	case bsontype.String:
		t, err := time.Parse(time.RFC3339, v.StringValue())
		if err != nil {
			return time.Time{}, err
		}

		return transaction.WallClock(t), nil
	}

	return time.Time{}, fmt.Errorf("unsupported date type %s", v.Type)
}

// toDecimal128 stores prices with two decimals, matching how they are listed
// and searched.
func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.StringFixed(2))
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("converting %s to decimal128: %w", d, err)
	}

	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(v.String())
}

// priceExpr reads the price as a decimal whatever numeric type it was stored as.
var priceExpr = bson.D{{Key: "$toDecimal", Value: "$price"}}

// EnsureIndexes creates the unique seed id index and the sale date index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "dateOfSale", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	return nil
}

// monthMatch builds the $match document for a filter. Sale dates stored as
// BSON dates and as RFC 3339 strings are both matched on their wall clock.
func monthMatch(f transaction.Filter) bson.D {
	if f.Month == 0 && f.Year == 0 {
		return bson.D{}
	}

	return bson.D{{Key: "$or", Value: bson.A{dateMatch(f), dateStringMatch(f)}}}
}

func dateMatch(f transaction.Filter) bson.D {
	if start, end, ok := f.Range(); ok {
		return bson.D{{Key: "dateOfSale", Value: bson.D{{Key: "$gte", Value: start}, {Key: "$lt", Value: end}}}}
	}

	var exprs bson.A

	if f.Month != 0 {
		exprs = append(exprs, bson.D{{Key: "$eq", Value: bson.A{bson.D{{Key: "$month", Value: "$dateOfSale"}}, int(f.Month)}}})
	}

	if f.Year != 0 {
		exprs = append(exprs, bson.D{{Key: "$eq", Value: bson.A{bson.D{{Key: "$year", Value: "$dateOfSale"}}, f.Year}}})
	}

	// $month fails on non-dates, so only evaluate it once the type is known.
	return bson.D{{Key: "$expr", Value: bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{bson.D{{Key: "$type", Value: "$dateOfSale"}}, "date"}}},
		bson.D{{Key: "$and", Value: exprs}},
		false,
	}}}}}
}

// dateStringMatch matches "YYYY-MM-..." strings on the date as written.
func dateStringMatch(f transaction.Filter) bson.D {
	year, month := `\d{4}`, `\d{2}`

	if f.Year != 0 {
		year = fmt.Sprintf("%04d", f.Year)
	}

	if f.Month != 0 {
		month = fmt.Sprintf("%02d", int(f.Month))
	}

	return bson.D{{Key: "dateOfSale", Value: primitive.Regex{Pattern: "^" + year + "-" + month + "-"}}}
}

// searchMatch matches q case-insensitively against title, description and price.
func searchMatch(q string) bson.D {
	pattern := regexp.QuoteMeta(q)
	re := primitive.Regex{Pattern: pattern, Options: "i"}

	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "title", Value: re}},
		bson.D{{Key: "description", Value: re}},
		bson.D{{Key: "$expr", Value: bson.D{{Key: "$regexMatch", Value: bson.D{
			{Key: "input", Value: bson.D{{Key: "$toString", Value: "$price"}}},
			{Key: "regex", Value: pattern},
			{Key: "options", Value: "i"},
		}}}}},
	}}}
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	match := monthMatch(filter.Filter)
	if filter.Search != "" {
		match = bson.D{{Key: "$and", Value: bson.A{match, searchMatch(filter.Search)}}}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "id", Value: 1}}).
		SetSkip(int64(filter.Offset())).
		SetLimit(int64(filter.PerPage))

	cur, err := s.coll.Find(ctx, match, opts)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer cur.Close(ctx)

	txs := []*transaction.Transaction{}

	for cur.Next(ctx) {
		var doc document
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding transaction: %w", err)
		}

		tx, err := doc.toTransaction()
		if err != nil {
			return nil, err
		}

		txs = append(txs, tx)
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func statisticsPipeline(f transaction.Filter) mongo.Pipeline {
	zero := bson.D{{Key: "$toDecimal", Value: 0}}

	return mongo.Pipeline{
		{{Key: "$match", Value: monthMatch(f)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalSaleAmount", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{"$sold", priceExpr, zero}}}}}},
			{Key: "totalSoldItems", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{"$sold", 1, 0}}}}}},
			{Key: "totalNotSoldItems", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{"$sold", 0, 1}}}}}},
		}}},
	}
}

func (s *Store) Statistics(ctx context.Context, filter transaction.Filter) (transaction.Statistics, error) {
	cur, err := s.coll.Aggregate(ctx, statisticsPipeline(filter))
	if err != nil {
		return transaction.Statistics{}, fmt.Errorf("aggregating statistics: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		TotalSaleAmount   primitive.Decimal128 `bson:"totalSaleAmount"`
		TotalSoldItems    int64                `bson:"totalSoldItems"`
		TotalNotSoldItems int64                `bson:"totalNotSoldItems"`
	}

	if err := cur.All(ctx, &rows); err != nil {
		return transaction.Statistics{}, fmt.Errorf("decoding statistics: %w", err)
	}

	// No matching documents produce no group at all.
	if len(rows) == 0 {
		return transaction.Statistics{}, nil
	}

	amount, err := fromDecimal128(rows[0].TotalSaleAmount)
	if err != nil {
		return transaction.Statistics{}, fmt.Errorf("parsing sale amount: %w", err)
	}

	return transaction.Statistics{
		TotalSaleAmount:   amount,
		TotalSoldItems:    rows[0].TotalSoldItems,
		TotalNotSoldItems: rows[0].TotalNotSoldItems,
	}, nil
}

// bucketSwitch renders the scheme as a $switch yielding the bucket index.
func bucketSwitch(scheme transaction.Scheme) (bson.D, error) {
	branches := make(bson.A, 0, len(scheme.Bounds))
	for i, bound := range scheme.Bounds {
		b, err := toDecimal128(bound)
		if err != nil {
			return nil, err
		}

		branches = append(branches, bson.D{
			{Key: "case", Value: bson.D{{Key: "$lte", Value: bson.A{priceExpr, b}}}},
			{Key: "then", Value: i},
		})
	}

	return bson.D{{Key: "$switch", Value: bson.D{
		{Key: "branches", Value: branches},
		{Key: "default", Value: len(scheme.Bounds)},
	}}}, nil
}

func (s *Store) CountByBucket(ctx context.Context, filter transaction.Filter, scheme transaction.Scheme) (map[int]int64, error) {
	bucket, err := bucketSwitch(scheme)
	if err != nil {
		return nil, fmt.Errorf("rendering buckets: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: monthMatch(filter)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bucket},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("counting buckets: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Bucket int   `bson:"_id"`
		Count  int64 `bson:"count"`
	}

	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decoding buckets: %w", err)
	}

	counts := make(map[int]int64, len(rows))
	for _, r := range rows {
		counts[r.Bucket] = r.Count
	}

	return counts, nil
}

func (s *Store) CountByCategory(ctx context.Context, filter transaction.Filter) ([]transaction.CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: monthMatch(filter)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Category string `bson:"_id"`
		Count    int64  `bson:"count"`
	}

	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decoding categories: %w", err)
	}

	counts := make([]transaction.CategoryCount, 0, len(rows))
	for _, r := range rows {
		counts = append(counts, transaction.CategoryCount{Category: r.Category, Count: r.Count})
	}

	return counts, nil
}

// UpsertTransactions inserts or refreshes txs keyed by seed id, filling in the
// store ids. Existing documents keep their id.
func (s *Store) UpsertTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: "_id", Value: 1}})

	for _, tx := range txs {
		price, err := toDecimal128(tx.Price)
		if err != nil {
			return fmt.Errorf("upserting transaction %d: %w", tx.ExternalID, err)
		}

		update := bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "title", Value: tx.Title},
				{Key: "description", Value: tx.Description},
				{Key: "price", Value: price},
				{Key: "category", Value: tx.Category},
				{Key: "sold", Value: tx.Sold},
				{Key: "dateOfSale", Value: transaction.WallClock(tx.DateOfSale)},
				{Key: "image", Value: tx.Image},
			}},
			{Key: "$setOnInsert", Value: bson.D{{Key: "_id", Value: uuid.New().String()}}},
		}

		var got struct {
			ID bson.RawValue `bson:"_id"`
		}

		err = s.coll.FindOneAndUpdate(ctx, bson.D{{Key: "id", Value: tx.ExternalID}}, update, opts).Decode(&got)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return fmt.Errorf("upserting transaction %d: no document returned", tx.ExternalID)
			}

			return fmt.Errorf("upserting transaction %d: %w", tx.ExternalID, err)
		}

		id, err := idFromRaw(got.ID)
		if err != nil {
			return fmt.Errorf("parsing id of %d: %w", tx.ExternalID, err)
		}

		tx.ID = id
	}

	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}
