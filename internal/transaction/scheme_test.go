package transaction_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
)

func TestScheme_Index(t *testing.T) {
	tests := []struct {
		scheme transaction.Scheme
		price  string
		want   string
	}{
		{transaction.Hundreds, "0", "0-100"},
		{transaction.Hundreds, "100", "0-100"},
		{transaction.Hundreds, "100.01", "101-200"},
		{transaction.Hundreds, "899.99", "801-900"},
		{transaction.Hundreds, "900", "801-900"},
		{transaction.Hundreds, "900.5", "901-above"},
		{transaction.Hundreds, "15000", "901-above"},
		{transaction.Coarse, "50", "0-50"},
		{transaction.Coarse, "50.5", "50-100"},
		{transaction.Coarse, "150", "100-150"},
		{transaction.Coarse, "151", "150+"},
	}

	for _, tt := range tests {
		t.Run(tt.scheme.Name+"/"+tt.price, func(t *testing.T) {
			idx := tt.scheme.Index(decimal.RequireFromString(tt.price))
			assert.Equal(t, tt.want, tt.scheme.Labels[idx])
		})
	}
}

func TestScheme_Shape(t *testing.T) {
	for _, s := range []transaction.Scheme{transaction.Hundreds, transaction.Coarse} {
		assert.Len(t, s.Labels, len(s.Bounds)+1, s.Name)

		for i := 1; i < len(s.Bounds); i++ {
			assert.True(t, s.Bounds[i-1].LessThan(s.Bounds[i]), "%s bounds must ascend", s.Name)
		}
	}
}

func TestScheme_Count(t *testing.T) {
	txs := []*transaction.Transaction{
		{Price: decimal.NewFromInt(10)},
		{Price: decimal.NewFromInt(60)},
		{Price: decimal.NewFromInt(99)},
		{Price: decimal.NewFromInt(500)},
	}

	got := transaction.Coarse.Count(txs)
	assert.Equal(t, []transaction.Bucket{
		{Range: "0-50", Count: 1},
		{Range: "50-100", Count: 2},
		{Range: "100-150", Count: 0},
		{Range: "150+", Count: 1},
	}, got)
}

func TestSchemeByName(t *testing.T) {
	s, err := transaction.SchemeByName("coarse")
	require.NoError(t, err)
	assert.Equal(t, "coarse", s.Name)

	_, err = transaction.SchemeByName("deciles")
	assert.ErrorIs(t, err, transaction.ErrUnknownScheme)
}

func TestTransaction_MatchesSearch(t *testing.T) {
	tx := &transaction.Transaction{
		Title:       "Fjallraven Backpack",
		Description: "Your perfect pack for everyday use",
		Price:       decimal.RequireFromString("109.95"),
	}

	assert.True(t, tx.MatchesSearch(""))
	assert.True(t, tx.MatchesSearch("backpack"))
	assert.True(t, tx.MatchesSearch("EVERYDAY"))
	assert.True(t, tx.MatchesSearch("109.9"))
	assert.False(t, tx.MatchesSearch("jacket"))

	// Prices are searched with two decimals, as the stores render them.
	tx.Price = decimal.RequireFromString("22.3")
	assert.True(t, tx.MatchesSearch("22.30"))
}
