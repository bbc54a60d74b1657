package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
)

var barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

type bar struct {
	label string
	value int64
}

func bucketBars(buckets []transaction.Bucket) []bar {
	bars := make([]bar, len(buckets))
	for i, b := range buckets {
		bars[i] = bar{label: b.Range, value: b.Count}
	}

	return bars
}

func categoryBars(counts []transaction.CategoryCount) []bar {
	bars := make([]bar, len(counts))
	for i, c := range counts {
		bars[i] = bar{label: c.Category, value: c.Count}
	}

	return bars
}

// barLength scales value against peak onto width cells. Non-zero values always
// get at least one cell.
func barLength(value, peak int64, width int) int {
	if value <= 0 || peak <= 0 || width <= 0 {
		return 0
	}

	n := int(value * int64(width) / peak)
	if n == 0 {
		n = 1
	}

	return n
}

// renderBars draws a horizontal bar chart, one labelled row per bar.
func renderBars(bars []bar, width int) string {
	if len(bars) == 0 {
		return lipgloss.NewStyle().Faint(true).Render("No data")
	}

	var (
		labelWidth int
		peak       int64
	)

	for _, b := range bars {
		labelWidth = max(labelWidth, lipgloss.Width(b.label))
		peak = max(peak, b.value)
	}

	var sb strings.Builder

	for i, b := range bars {
		if i > 0 {
			sb.WriteByte('\n')
		}

		fill := barStyle.Render(strings.Repeat("█", barLength(b.value, peak, width)))
		fmt.Fprintf(&sb, "%-*s │ %s %d", labelWidth, b.label, fill, b.value)
	}

	return sb.String()
}
