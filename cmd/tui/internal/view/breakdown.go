package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
)

type breakdownState int

const (
	breakdownStateView breakdownState = iota
	breakdownStatePickMonth
)

// BreakdownModel shows the server-side aggregates of a whole month: totals,
// the price histogram and the category split.
type BreakdownModel struct {
	CommonModel
	api API

	state   breakdownState
	filter  transaction.Filter
	picker  MonthPicker
	spinner spinner.Model

	data    *transaction.Combined
	loading bool
	err     error
}

func NewBreakdownModel(api API) BreakdownModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return BreakdownModel{
		api:     api,
		filter:  transaction.Filter{Month: DefaultMonth},
		spinner: s,
		loading: true,
	}
}

func (m BreakdownModel) Title() string { return "Monthly Breakdown" }

func (m BreakdownModel) ShortHelp() string {
	if m.state == breakdownStatePickMonth {
		return "Enter: confirm | Esc: cancel"
	}

	return "Esc: back | m: month | r: refresh"
}

func (m BreakdownModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m BreakdownModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case combinedMsg:
		if msg.filter != m.filter {
			return m, nil
		}

		m.loading = false
		m.data, m.err = msg.data, msg.err

		return m, nil

	case MonthSelectedMsg:
		m.filter = msg.Filter
		m.state = breakdownStateView
		m.loading = true

		return m, tea.Batch(m.spinner.Tick, m.loadCmd())

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	if m.state == breakdownStatePickMonth {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = breakdownStateView
			return m, nil
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "m":
			m.state = breakdownStatePickMonth
			m.picker = NewMonthPicker(m.filter)

			return m, m.picker.Init()
		case "r":
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.loadCmd())
		}
	}

	return m, nil
}

func (m BreakdownModel) View() string {
	header := fmt.Sprintf("[m] Month: %s", activeStyle(MonthLabel(m.filter)))

	if m.state == breakdownStatePickMonth {
		return lipgloss.NewStyle().Padding(1).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", m.picker.View()),
		)
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("%s Loading %s...", m.spinner.View(), MonthLabel(m.filter)),
		)
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(
			header + "\n\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err)),
		)
	}

	panel := func(title, body string) string {
		return lipgloss.NewStyle().
			Padding(0, 1).
			MarginRight(1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Render(title + "\n\n" + body)
	}

	charts := lipgloss.JoinHorizontal(lipgloss.Top,
		panel("Price ranges", renderBars(bucketBars(m.data.BarChart), chartWidth/2)),
		panel("Categories", renderBars(categoryBars(m.data.PieChart), chartWidth/2)),
	)

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		statCards(m.data.Statistics),
		charts,
	))
}

type combinedMsg struct {
	filter transaction.Filter
	data   *transaction.Combined
	err    error
}

func (m BreakdownModel) loadCmd() tea.Cmd {
	api, filter := m.api, m.filter

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		data, err := api.Combined(ctx, filter)

		return combinedMsg{filter: filter, data: data, err: err}
	}
}
