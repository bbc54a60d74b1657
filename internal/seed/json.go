package seed

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
)

// JSONParser reads a JSON array of product records.
type JSONParser struct{}

func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

type record struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Sold        bool            `json:"sold"`
	DateOfSale  time.Time       `json:"dateOfSale"`
}

func (p *JSONParser) Parse(r io.Reader) ([]*transaction.Transaction, error) {
	utf8r, _, err := utf8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	var records []record
	if err := json.NewDecoder(utf8r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	txs := make([]*transaction.Transaction, len(records))
	for i, rec := range records {
		txs[i] = &transaction.Transaction{
			ExternalID:  rec.ID,
			Title:       rec.Title,
			Description: rec.Description,
			Price:       rec.Price,
			Category:    rec.Category,
			Sold:        rec.Sold,
			DateOfSale:  transaction.WallClock(rec.DateOfSale),
			Image:       rec.Image,
		}
	}

	return txs, nil
}
