package seed_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/salesdash/internal/seed"
)

func TestCSVParser_Comma(t *testing.T) {
	csv := `Product export,generated 2022-01-01

id,title,price,description,category,image,sold,dateOfSale
1,Fjallraven Backpack,109.95,"Fits 15"" laptops, daily",men's clothing,https://img/1.jpg,false,2021-11-27T20:29:54+05:30
2,Mens Casual T-Shirt,"1,022.30",Slim fit,men's clothing,,true,2021-10-27

`

	txs, err := seed.NewCSVParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, int64(1), txs[0].ExternalID)
	assert.Equal(t, "Fjallraven Backpack", txs[0].Title)
	assert.Equal(t, `Fits 15" laptops, daily`, txs[0].Description)
	assert.True(t, decimal.RequireFromString("109.95").Equal(txs[0].Price))
	assert.False(t, txs[0].Sold)
	assert.Equal(t, time.Date(2021, time.November, 27, 20, 29, 54, 0, time.UTC), txs[0].DateOfSale)
	assert.Equal(t, "https://img/1.jpg", txs[0].Image)

	assert.True(t, decimal.RequireFromString("1022.30").Equal(txs[1].Price))
	assert.True(t, txs[1].Sold)
	assert.Equal(t, time.Date(2021, time.October, 27, 0, 0, 0, 0, time.UTC), txs[1].DateOfSale)
	assert.Empty(t, txs[1].Image)
}

func TestCSVParser_SemicolonWindows1252(t *testing.T) {
	utf8 := "ID;Title;Price;Category;Sold;Date\n7;Crème brûlée torch;1.234,56;électronique;1;2022-03-05\n"

	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8))
	require.NoError(t, err)

	txs, err := seed.NewCSVParser().Parse(bytes.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assert.Equal(t, "Crème brûlée torch", txs[0].Title)
	assert.Equal(t, "électronique", txs[0].Category)
	assert.True(t, decimal.RequireFromString("1234.56").Equal(txs[0].Price))
	assert.True(t, txs[0].Sold)
}

func TestCSVParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr string
	}{
		{
			name:    "NoHeader",
			csv:     "a,b,c\n1,2,3\n",
			wantErr: "no header found",
		},
		{
			name:    "BadPrice",
			csv:     "id,title,price,dateOfSale\n1,x,cheap,2021-01-01\n",
			wantErr: `row 2: invalid price "cheap"`,
		},
		{
			name:    "BadDate",
			csv:     "id,title,price,dateOfSale\n1,x,2,yesterday\n",
			wantErr: `row 2: invalid date "yesterday"`,
		},
		{
			name:    "BadID",
			csv:     "id,title,price,dateOfSale\n\nabc,x,2,2021-01-01\n",
			wantErr: `invalid id "abc"`,
		},
		{
			name:    "BadSold",
			csv:     "id,title,price,sold,dateOfSale\n1,x,2,maybe,2021-01-01\n",
			wantErr: `row 2: invalid sold flag "maybe"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := seed.NewCSVParser().Parse(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
