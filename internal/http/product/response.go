package product

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
)

// number renders a decimal as a bare JSON number without losing precision.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

type productResponse struct {
	ID          uuid.UUID   `json:"id"`
	ExternalID  int64       `json:"externalId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Category    string      `json:"category"`
	Sold        bool        `json:"sold"`
	DateOfSale  time.Time   `json:"dateOfSale"`
	Image       string      `json:"image"`
}

func toResponse(tx *transaction.Transaction) productResponse {
	return productResponse{
		ID:          tx.ID,
		ExternalID:  tx.ExternalID,
		Title:       tx.Title,
		Description: tx.Description,
		Price:       number(tx.Price),
		Category:    tx.Category,
		Sold:        tx.Sold,
		DateOfSale:  tx.DateOfSale,
		Image:       tx.Image,
	}
}

func toResponseList(txs []*transaction.Transaction) []productResponse {
	resp := make([]productResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

type statisticsResponse struct {
	TotalSaleAmount   json.Number `json:"totalSaleAmount"`
	TotalSoldItems    int64       `json:"totalSoldItems"`
	TotalNotSoldItems int64       `json:"totalNotSoldItems"`
}

func toStatisticsResponse(s transaction.Statistics) statisticsResponse {
	return statisticsResponse{
		TotalSaleAmount:   number(s.TotalSaleAmount),
		TotalSoldItems:    s.TotalSoldItems,
		TotalNotSoldItems: s.TotalNotSoldItems,
	}
}

type bucketResponse struct {
	Range string `json:"range"`
	Count int64  `json:"count"`
}

type barChartLabels struct {
	Labels []string `json:"labels"`
	Data   []int64  `json:"data"`
}

type categoryResponse struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type pieChartLabels struct {
	Labels []string `json:"labels"`
	Values []int64  `json:"values"`
}

type combinedResponse struct {
	Statistics statisticsResponse `json:"statistics"`
	BarChart   any                `json:"barChart"`
	PieChart   any                `json:"pieChart"`
}

// format selects between the array payloads and the labels/values payloads.
type format string

const (
	formatArray  format = ""
	formatLabels format = "labels"
)

func toBarChartResponse(buckets []transaction.Bucket, f format) any {
	if f == formatLabels {
		resp := barChartLabels{Labels: make([]string, len(buckets)), Data: make([]int64, len(buckets))}
		for i, b := range buckets {
			resp.Labels[i] = b.Range
			resp.Data[i] = b.Count
		}

		return resp
	}

	resp := make([]bucketResponse, len(buckets))
	for i, b := range buckets {
		resp[i] = bucketResponse{Range: b.Range, Count: b.Count}
	}

	return resp
}

func toPieChartResponse(counts []transaction.CategoryCount, f format) any {
	if f == formatLabels {
		resp := pieChartLabels{Labels: make([]string, len(counts)), Values: make([]int64, len(counts))}
		for i, c := range counts {
			resp.Labels[i] = c.Category
			resp.Values[i] = c.Count
		}

		return resp
	}

	resp := make([]categoryResponse, len(counts))
	for i, c := range counts {
		resp[i] = categoryResponse{Category: c.Category, Count: c.Count}
	}

	return resp
}

func toCombinedResponse(c *transaction.Combined, f format) combinedResponse {
	return combinedResponse{
		Statistics: toStatisticsResponse(c.Statistics),
		BarChart:   toBarChartResponse(c.BarChart, f),
		PieChart:   toPieChartResponse(c.PieChart, f),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}
