package transaction

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a single product sale record.
//
// DateOfSale is the wall-clock time of the sale as recorded by the source,
// labelled UTC. Month and year membership is taken from that wall clock so a
// sale stamped 2022-03-01T02:00:00+05:30 belongs to March.
type Transaction struct {
	ID          uuid.UUID
	ExternalID  int64 // id assigned by the seed dataset
	Title       string
	Description string
	Price       decimal.Decimal
	Category    string
	Sold        bool
	DateOfSale  time.Time
	Image       string
}

// MatchesSearch reports whether q occurs, case-insensitively, in the title,
// description or price of the transaction. An empty query matches everything.
func (t *Transaction) MatchesSearch(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}

	for _, field := range []string{t.Title, t.Description, t.Price.StringFixed(2)} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}

	return false
}

// WallClock drops the zone of t while keeping its calendar date and clock
// reading.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// Statistics holds the monthly sale totals.
type Statistics struct {
	TotalSaleAmount   decimal.Decimal
	TotalSoldItems    int64
	TotalNotSoldItems int64
}

// Count returns the number of transactions the statistics were computed over.
func (s Statistics) Count() int64 {
	return s.TotalSoldItems + s.TotalNotSoldItems
}

// Bucket is one bar of the price-range chart.
type Bucket struct {
	Range string
	Count int64
}

// CategoryCount is one slice of the category pie chart.
type CategoryCount struct {
	Category string
	Count    int64
}

// Combined bundles the three dashboard aggregates for a month.
type Combined struct {
	Statistics Statistics
	BarChart   []Bucket
	PieChart   []CategoryCount
}
