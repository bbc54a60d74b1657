// Package client talks to the product API over HTTP.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

func filterQuery(f transaction.Filter) url.Values {
	q := url.Values{}

	if f.Month != 0 {
		q.Set("month", fmt.Sprintf("%02d", int(f.Month)))
	}

	if f.Year != 0 {
		q.Set("year", strconv.Itoa(f.Year))
	}

	return q
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}

		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}

		return &APIError{Status: resp.StatusCode, Message: body.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	return nil
}

type productPayload struct {
	ID          uuid.UUID       `json:"id"`
	ExternalID  int64           `json:"externalId"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Sold        bool            `json:"sold"`
	DateOfSale  time.Time       `json:"dateOfSale"`
	Image       string          `json:"image"`
}

// Products fetches one page of the listing.
func (c *Client) Products(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	q := filterQuery(filter.Filter)

	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}

	if filter.PerPage > 0 {
		q.Set("perPage", strconv.Itoa(filter.PerPage))
	}

	if filter.Search != "" {
		q.Set("search", filter.Search)
	}

	var payload []productPayload
	if err := c.get(ctx, "/api/products", q, &payload); err != nil {
		return nil, fmt.Errorf("fetching products: %w", err)
	}

	txs := make([]*transaction.Transaction, len(payload))
	for i, p := range payload {
		txs[i] = &transaction.Transaction{
			ID:          p.ID,
			ExternalID:  p.ExternalID,
			Title:       p.Title,
			Description: p.Description,
			Price:       p.Price,
			Category:    p.Category,
			Sold:        p.Sold,
			DateOfSale:  p.DateOfSale,
			Image:       p.Image,
		}
	}

	return txs, nil
}

type statisticsPayload struct {
	TotalSaleAmount   decimal.Decimal `json:"totalSaleAmount"`
	TotalSoldItems    int64           `json:"totalSoldItems"`
	TotalNotSoldItems int64           `json:"totalNotSoldItems"`
}

func (p statisticsPayload) toStatistics() transaction.Statistics {
	return transaction.Statistics{
		TotalSaleAmount:   p.TotalSaleAmount,
		TotalSoldItems:    p.TotalSoldItems,
		TotalNotSoldItems: p.TotalNotSoldItems,
	}
}

func (c *Client) Statistics(ctx context.Context, filter transaction.Filter) (transaction.Statistics, error) {
	var payload statisticsPayload
	if err := c.get(ctx, "/api/products/statistics", filterQuery(filter), &payload); err != nil {
		return transaction.Statistics{}, fmt.Errorf("fetching statistics: %w", err)
	}

	return payload.toStatistics(), nil
}

type bucketPayload struct {
	Range string `json:"range"`
	Count int64  `json:"count"`
}

type categoryPayload struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

func toBuckets(p []bucketPayload) []transaction.Bucket {
	out := make([]transaction.Bucket, len(p))
	for i, b := range p {
		out[i] = transaction.Bucket{Range: b.Range, Count: b.Count}
	}

	return out
}

func toCategories(p []categoryPayload) []transaction.CategoryCount {
	out := make([]transaction.CategoryCount, len(p))
	for i, c := range p {
		out[i] = transaction.CategoryCount{Category: c.Category, Count: c.Count}
	}

	return out
}

func (c *Client) BarChart(ctx context.Context, filter transaction.Filter) ([]transaction.Bucket, error) {
	var payload []bucketPayload
	if err := c.get(ctx, "/api/products/bar-chart", filterQuery(filter), &payload); err != nil {
		return nil, fmt.Errorf("fetching bar chart: %w", err)
	}

	return toBuckets(payload), nil
}

func (c *Client) PieChart(ctx context.Context, filter transaction.Filter) ([]transaction.CategoryCount, error) {
	var payload []categoryPayload
	if err := c.get(ctx, "/api/products/pie-chart", filterQuery(filter), &payload); err != nil {
		return nil, fmt.Errorf("fetching pie chart: %w", err)
	}

	return toCategories(payload), nil
}

func (c *Client) Combined(ctx context.Context, filter transaction.Filter) (*transaction.Combined, error) {
	var payload struct {
		Statistics statisticsPayload `json:"statistics"`
		BarChart   []bucketPayload   `json:"barChart"`
		PieChart   []categoryPayload `json:"pieChart"`
	}

	if err := c.get(ctx, "/api/products/combined", filterQuery(filter), &payload); err != nil {
		return nil, fmt.Errorf("fetching combined data: %w", err)
	}

	return &transaction.Combined{
		Statistics: payload.Statistics.toStatistics(),
		BarChart:   toBuckets(payload.BarChart),
		PieChart:   toCategories(payload.PieChart),
	}, nil
}
