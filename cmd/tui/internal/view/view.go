package view

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// API is the product API the screens read from.
type API interface {
	Products(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
	Statistics(ctx context.Context, filter transaction.Filter) (transaction.Statistics, error)
	BarChart(ctx context.Context, filter transaction.Filter) ([]transaction.Bucket, error)
	PieChart(ctx context.Context, filter transaction.Filter) ([]transaction.CategoryCount, error)
	Combined(ctx context.Context, filter transaction.Filter) (*transaction.Combined, error)
}
