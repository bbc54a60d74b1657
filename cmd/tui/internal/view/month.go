package view

import (
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
)

// DefaultMonth is the month the screens open on.
const DefaultMonth = time.March

// MonthSelectedMsg is emitted when the user confirms a month.
type MonthSelectedMsg struct {
	Filter transaction.Filter
}

// MonthPicker is a reusable form for choosing a month and an optional year.
// Form values live behind pointers so copies of the model stay bound.
type MonthPicker struct {
	form  *huh.Form
	month *time.Month
	year  *string
}

func NewMonthPicker(current transaction.Filter) MonthPicker {
	month := current.Month
	if month == 0 {
		month = DefaultMonth
	}

	year := ""
	if current.Year != 0 {
		year = strconv.Itoa(current.Year)
	}

	p := MonthPicker{month: &month, year: &year}

	opts := make([]huh.Option[time.Month], 0, 12)
	for m := time.January; m <= time.December; m++ {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%02d %s", int(m), m), m))
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[time.Month]().
				Key("month").
				Title("Month").
				Options(opts...).
				Height(8).
				Value(p.month),

			huh.NewInput().
				Key("year").
				Title("Year").
				Placeholder("any year").
				CharLimit(4).
				Value(p.year).
				Validate(func(s string) error {
					_, err := transaction.ParseYear(s)
					return err
				}),
		),
	).WithWidth(30).WithShowHelp(false)

	return p
}

func (p MonthPicker) Init() tea.Cmd {
	return p.form.Init()
}

func (p MonthPicker) Update(msg tea.Msg) (MonthPicker, tea.Cmd) {
	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State != huh.StateCompleted {
		return p, cmd
	}

	year, _ := transaction.ParseYear(*p.year)
	filter := transaction.Filter{Month: *p.month, Year: year}

	return p, func() tea.Msg {
		return MonthSelectedMsg{Filter: filter}
	}
}

func (p MonthPicker) View() string {
	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render("Select Month\n\n" + p.form.View() + "\n\n(Enter to confirm, Esc to cancel)")
}

// MonthLabel describes a filter for headers, e.g. "March 2022" or
// "March (all years)".
func MonthLabel(f transaction.Filter) string {
	if f.Month == 0 {
		return "All months"
	}

	if f.Year == 0 {
		return f.Month.String() + " (all years)"
	}

	return fmt.Sprintf("%s %d", f.Month, f.Year)
}
