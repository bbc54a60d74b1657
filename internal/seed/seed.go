// Package seed loads the product transaction dataset into a store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/salesdash/internal/metrics"
	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

var (
	ErrUnknownFormat = errors.New("unknown seed format")
	ErrInvalidRecord = errors.New("invalid seed record")
)

// Parser decodes a dataset into transactions.
type Parser interface {
	Parse(r io.Reader) ([]*transaction.Transaction, error)
}

// Upserter writes transactions keyed by their external id.
type Upserter interface {
	UpsertTransactions(ctx context.Context, txs []*transaction.Transaction) error
}

type Loader struct {
	store   Upserter
	client  *http.Client
	parsers map[Format]Parser
}

func NewLoader(store Upserter) *Loader {
	return &Loader{
		store:  store,
		client: &http.Client{Timeout: 30 * time.Second},
		parsers: map[Format]Parser{
			FormatJSON: NewJSONParser(),
			FormatCSV:  NewCSVParser(),
		},
	}
}

// Load reads source, an http(s) URL or a file path, and upserts every record.
// It returns the number of transactions written.
func (l *Loader) Load(ctx context.Context, source string) (int, error) {
	body, format, err := l.open(ctx, source)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	parser, ok := l.parsers[format]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	txs, err := parser.Parse(body)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", source, err)
	}

	if err := validate(txs); err != nil {
		return 0, err
	}

	if err := l.store.UpsertTransactions(ctx, txs); err != nil {
		return 0, fmt.Errorf("storing transactions: %w", err)
	}

	metrics.SeededTransactions.Add(float64(len(txs)))
	slog.InfoContext(ctx, "seeded transactions", "source", source, "format", format, "count", len(txs))

	return len(txs), nil
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, Format, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.fetch(ctx, source)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", source, err)
	}

	return f, formatFromExt(source), nil
}

func (l *Loader) fetch(ctx context.Context, url string) (io.ReadCloser, Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("executing request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", fmt.Errorf("unexpected status code %d for url %s", resp.StatusCode, url)
	}

	format := formatFromExt(req.URL.Path)
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			switch mt {
			case "application/json":
				format = FormatJSON
			case "text/csv":
				format = FormatCSV
			}
		}
	}

	return resp.Body, format, nil
}

// formatFromExt picks the format from a path's extension, defaulting to JSON.
func formatFromExt(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}

	return FormatJSON
}

func validate(txs []*transaction.Transaction) error {
	seen := make(map[int64]struct{}, len(txs))

	for _, tx := range txs {
		if tx.ExternalID <= 0 {
			return fmt.Errorf("%w: id %d must be positive", ErrInvalidRecord, tx.ExternalID)
		}

		if _, dup := seen[tx.ExternalID]; dup {
			return fmt.Errorf("%w: duplicate id %d", ErrInvalidRecord, tx.ExternalID)
		}

		seen[tx.ExternalID] = struct{}{}

		if tx.Price.IsNegative() {
			return fmt.Errorf("%w: id %d has negative price %s", ErrInvalidRecord, tx.ExternalID, tx.Price)
		}

		if tx.DateOfSale.IsZero() {
			return fmt.Errorf("%w: id %d has no date of sale", ErrInvalidRecord, tx.ExternalID)
		}
	}

	return nil
}
