package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a transaction row from the scanner.
// Expected column order matches selectTransactionColumns.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	if err := s.Scan(
		&tx.ID, &tx.ExternalID, &tx.Title, &tx.Description, &tx.Price,
		&tx.Category, &tx.Sold, &tx.DateOfSale, &tx.Image,
	); err != nil {
		return nil, err
	}

	tx.DateOfSale = tx.DateOfSale.UTC()

	return &tx, nil
}

const selectTransactionColumns = `
	id, external_id, title, description, price, category, sold, date_of_sale, image
`

// where accumulates SQL predicates and their positional arguments.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		clause = strings.Replace(clause, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}

	w.clauses = append(w.clauses, clause)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}

	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// monthFilter matches a calendar month of the wall-clock sale date either
// inside a single year, using an index-friendly range, or across every year by
// month number.
func monthFilter(f transaction.Filter) *where {
	w := &where{}

	if start, end, ok := f.Range(); ok {
		w.add("date_of_sale >= ? AND date_of_sale < ?", start, end)
		return w
	}

	if f.Month != 0 {
		w.add("EXTRACT(MONTH FROM date_of_sale) = ?", int(f.Month))
	}

	if f.Year != 0 {
		w.add("EXTRACT(YEAR FROM date_of_sale) = ?", f.Year)
	}

	return w
}

// likePattern escapes LIKE metacharacters so q matches literally.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	w := monthFilter(filter.Filter)

	if filter.Search != "" {
		w.add("(title ILIKE ? OR description ILIKE ? OR price::text ILIKE ?)",
			likePattern(filter.Search), likePattern(filter.Search), likePattern(filter.Search))
	}

	query := `SELECT ` + selectTransactionColumns + ` FROM transactions` + w.String() +
		fmt.Sprintf(" ORDER BY external_id ASC LIMIT $%d OFFSET $%d", len(w.args)+1, len(w.args)+2)

	args := append(w.args, filter.PerPage, filter.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	txs := []*transaction.Transaction{}

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

func (s *Store) Statistics(ctx context.Context, filter transaction.Filter) (transaction.Statistics, error) {
	w := monthFilter(filter)

	query := `
		SELECT
			COALESCE(SUM(price) FILTER (WHERE sold), 0),
			COUNT(*) FILTER (WHERE sold),
			COUNT(*) FILTER (WHERE NOT sold)
		FROM transactions` + w.String()

	var stats transaction.Statistics

	err := s.db.QueryRowContext(ctx, query, w.args...).Scan(
		&stats.TotalSaleAmount, &stats.TotalSoldItems, &stats.TotalNotSoldItems,
	)
	if err != nil {
		return transaction.Statistics{}, fmt.Errorf("aggregating statistics: %w", err)
	}

	return stats, nil
}

// bucketCase renders the scheme as a CASE expression yielding the bucket index.
func bucketCase(scheme transaction.Scheme, w *where) string {
	var sb strings.Builder

	sb.WriteString("CASE")

	for i, bound := range scheme.Bounds {
		w.args = append(w.args, bound)
		fmt.Fprintf(&sb, " WHEN price <= $%d THEN %d", len(w.args), i)
	}

	fmt.Fprintf(&sb, " ELSE %d END", len(scheme.Bounds))

	return sb.String()
}

func (s *Store) CountByBucket(ctx context.Context, filter transaction.Filter, scheme transaction.Scheme) (map[int]int64, error) {
	w := monthFilter(filter)
	bucket := bucketCase(scheme, w)

	query := `SELECT ` + bucket + ` AS bucket, COUNT(*) FROM transactions` + w.String() + ` GROUP BY bucket`

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("counting buckets: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int64, len(scheme.Labels))

	for rows.Next() {
		var (
			idx   int
			count int64
		)

		if err := rows.Scan(&idx, &count); err != nil {
			return nil, fmt.Errorf("scanning bucket: %w", err)
		}

		counts[idx] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating buckets: %w", err)
	}

	return counts, nil
}

func (s *Store) CountByCategory(ctx context.Context, filter transaction.Filter) ([]transaction.CategoryCount, error) {
	w := monthFilter(filter)

	query := `SELECT category, COUNT(*) FROM transactions` + w.String() + ` GROUP BY category ORDER BY category`

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}
	defer rows.Close()

	counts := []transaction.CategoryCount{}

	for rows.Next() {
		var c transaction.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	return counts, nil
}

// UpsertTransactions inserts or refreshes txs keyed by external id in a single
// database transaction, filling in the store ids.
func (s *Store) UpsertTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO transactions (external_id, title, description, price, category, sold, date_of_sale, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (external_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			sold = EXCLUDED.sold,
			date_of_sale = EXCLUDED.date_of_sale,
			image = EXCLUDED.image,
			updated_at = NOW()
		RETURNING id
	`

	stmt, err := dbTx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, tx := range txs {
		err := stmt.QueryRowContext(ctx,
			tx.ExternalID,
			tx.Title,
			tx.Description,
			tx.Price,
			tx.Category,
			tx.Sold,
			transaction.WallClock(tx.DateOfSale),
			tx.Image,
		).Scan(&tx.ID)
		if err != nil {
			return fmt.Errorf("upserting transaction %d: %w", tx.ExternalID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
