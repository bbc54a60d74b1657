package transaction

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scheme is an ordered set of price buckets. Bounds are upper-inclusive and
// ascending; the final label covers every price above the last bound.
type Scheme struct {
	Name   string
	Bounds []decimal.Decimal
	Labels []string
}

var (
	// Hundreds splits prices into 100-wide bands up to 900.
	Hundreds = Scheme{
		Name: "hundreds",
		Bounds: []decimal.Decimal{
			decimal.NewFromInt(100), decimal.NewFromInt(200), decimal.NewFromInt(300),
			decimal.NewFromInt(400), decimal.NewFromInt(500), decimal.NewFromInt(600),
			decimal.NewFromInt(700), decimal.NewFromInt(800), decimal.NewFromInt(900),
		},
		Labels: []string{
			"0-100", "101-200", "201-300", "301-400", "401-500",
			"501-600", "601-700", "701-800", "801-900", "901-above",
		},
	}

	// Coarse uses four bands of 50.
	Coarse = Scheme{
		Name: "coarse",
		Bounds: []decimal.Decimal{
			decimal.NewFromInt(50), decimal.NewFromInt(100), decimal.NewFromInt(150),
		},
		Labels: []string{"0-50", "50-100", "100-150", "150+"},
	}
)

// SchemeByName returns a predefined scheme.
func SchemeByName(name string) (Scheme, error) {
	switch name {
	case Hundreds.Name:
		return Hundreds, nil
	case Coarse.Name:
		return Coarse, nil
	}

	return Scheme{}, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
}

// Index returns the bucket a price falls in.
func (s Scheme) Index(price decimal.Decimal) int {
	for i, b := range s.Bounds {
		if price.LessThanOrEqual(b) {
			return i
		}
	}

	return len(s.Bounds)
}

// Buckets turns per-index counts into the full ordered chart, zero-filled.
func (s Scheme) Buckets(counts map[int]int64) []Bucket {
	out := make([]Bucket, len(s.Labels))
	for i, label := range s.Labels {
		out[i] = Bucket{Range: label, Count: counts[i]}
	}

	return out
}

// Count buckets the given transactions in memory.
func (s Scheme) Count(txs []*Transaction) []Bucket {
	counts := make(map[int]int64, len(s.Labels))
	for _, tx := range txs {
		counts[s.Index(tx.Price)]++
	}

	return s.Buckets(counts)
}
