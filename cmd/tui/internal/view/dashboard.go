package view

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
)

type dashState int

const (
	dashStateBrowse dashState = iota
	dashStateSearch
	dashStatePickMonth
)

const chartWidth = 40

// chartMode selects what the dashboard chart shows.
type chartMode int

const (
	chartShownRows chartMode = iota
	chartMonthRanges
	chartMonthCategories
)

func (c chartMode) title() string {
	switch c {
	case chartMonthRanges:
		return "Price ranges (whole month)"
	case chartMonthCategories:
		return "Categories (whole month)"
	}

	return "Price ranges (shown rows)"
}

// DashboardModel shows one page of transactions for a month together with the
// month's statistics and a chart.
type DashboardModel struct {
	CommonModel
	api    API
	scheme transaction.Scheme

	state   dashState
	filter  transaction.Filter
	page    int
	chart   chartMode
	search  textinput.Model
	table   table.Model
	picker  MonthPicker
	spinner spinner.Model

	txs       []*transaction.Transaction
	visible   []*transaction.Transaction
	stats     transaction.Statistics
	chartBars []bar

	loadingStats    bool
	loadingProducts bool
	loadingChart    bool
	err             error
}

func NewDashboardModel(api API, scheme transaction.Scheme) DashboardModel {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Title", Width: 30},
		{Title: "Description", Width: 40},
		{Title: "Price", Width: 10},
		{Title: "Category", Width: 18},
		{Title: "Sold", Width: 5},
		{Title: "Date", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(transaction.DefaultPerPage+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	si := textinput.New()
	si.Placeholder = "title, description or price"
	si.Prompt = "Search: "
	si.CharLimit = 64
	si.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return DashboardModel{
		api:             api,
		scheme:          scheme,
		filter:          transaction.Filter{Month: DefaultMonth},
		page:            1,
		loadingStats:    true,
		loadingProducts: true,
		search:          si,
		table:           t,
		spinner:         sp,
	}
}

func (m DashboardModel) Title() string { return "Transactions Dashboard" }

func (m DashboardModel) ShortHelp() string {
	switch m.state {
	case dashStateSearch:
		return "Enter/Esc: done"
	case dashStatePickMonth:
		return "Enter: confirm | Esc: cancel"
	}

	return "Esc: back | m: month | /: search | n/p: page | c: chart | r: refresh"
}

func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadStatsCmd(), m.loadProductsCmd())
}

func (m DashboardModel) loading() bool {
	return m.loadingStats || m.loadingProducts || m.loadingChart
}

// reload fetches the statistics, the current page and a server-side chart.
func (m *DashboardModel) reload() tea.Cmd {
	m.err = nil
	m.loadingStats, m.loadingProducts = true, true
	cmds := []tea.Cmd{m.spinner.Tick, m.loadStatsCmd(), m.loadProductsCmd()}

	if m.chart != chartShownRows {
		m.loadingChart = true
		cmds = append(cmds, m.loadChartCmd())
	}

	return tea.Batch(cmds...)
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		// Replies for an earlier month are dropped.
		if msg.filter != m.filter {
			return m, nil
		}

		m.loadingStats = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.stats = msg.stats

		return m, nil

	case productsMsg:
		if msg.filter.Filter != m.filter || msg.filter.Page != m.page {
			return m, nil
		}

		m.loadingProducts = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.txs = msg.txs
		m.applySearch()

		return m, nil

	case chartMsg:
		if msg.filter != m.filter || msg.mode != m.chart {
			return m, nil
		}

		m.loadingChart = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.chartBars = msg.bars

		return m, nil

	case MonthSelectedMsg:
		m.filter = msg.Filter
		m.page = 1
		m.state = dashStateBrowse
		m.table.Focus()

		return m, m.reload()

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		return m, nil
	}

	switch m.state {
	case dashStateSearch:
		return m.updateSearch(msg)
	case dashStatePickMonth:
		return m.updatePicker(msg)
	}

	return m.updateBrowse(msg)
}

func (m DashboardModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.reload()
		case "m":
			m.state = dashStatePickMonth
			m.picker = NewMonthPicker(m.filter)
			m.table.Blur()

			return m, m.picker.Init()
		case "/":
			m.state = dashStateSearch
			m.table.Blur()

			return m, m.search.Focus()
		case "c":
			m.chart = (m.chart + 1) % 3
			m.chartBars = nil

			if m.chart == chartShownRows {
				m.loadingChart = false
				return m, nil
			}

			m.loadingChart = true

			return m, tea.Batch(m.spinner.Tick, m.loadChartCmd())
		case "n", "right":
			if len(m.txs) < transaction.DefaultPerPage {
				return m, nil
			}

			m.page++
			m.loadingProducts = true

			return m, tea.Batch(m.spinner.Tick, m.loadProductsCmd())
		case "p", "left":
			if m.page <= 1 {
				return m, nil
			}

			m.page--
			m.loadingProducts = true

			return m, tea.Batch(m.spinner.Tick, m.loadProductsCmd())
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DashboardModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			m.state = dashStateBrowse
			m.search.Blur()
			m.table.Focus()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applySearch()

	return m, cmd
}

func (m DashboardModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = dashStateBrowse
		m.table.Focus()

		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

// applySearch narrows the loaded page to rows matching the search text.
func (m *DashboardModel) applySearch() {
	m.visible = filterRows(m.txs, m.search.Value())
	m.refreshTable()
}

func filterRows(txs []*transaction.Transaction, q string) []*transaction.Transaction {
	out := make([]*transaction.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.MatchesSearch(q) {
			out = append(out, tx)
		}
	}

	return out
}

func (m *DashboardModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.visible))
	for _, tx := range m.visible {
		sold := "No"
		if tx.Sold {
			sold = "Yes"
		}

		rows = append(rows, table.Row{
			strconv.FormatInt(tx.ExternalID, 10),
			tx.Title,
			tx.Description,
			FormatPrice(tx.Price),
			tx.Category,
			sold,
			FormatDate(tx.DateOfSale),
		})
	}

	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

func (m DashboardModel) chartView() string {
	if m.chart == chartShownRows {
		return renderBars(bucketBars(m.scheme.Count(m.visible)), chartWidth)
	}

	if m.loadingChart {
		return m.spinner.View() + " Loading..."
	}

	return renderBars(m.chartBars, chartWidth)
}

func (m DashboardModel) View() string {
	header := fmt.Sprintf(
		"[m] Month: %s | Page %d | %s",
		activeStyle(MonthLabel(m.filter)),
		m.page,
		m.search.View(),
	)

	if m.loading() {
		header += "  " + m.spinner.View()
	}

	if m.state == dashStatePickMonth {
		return lipgloss.NewStyle().Padding(1).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", m.picker.View()),
		)
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	chart := lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render("[c] " + m.chart.title() + "\n\n" + m.chartView())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		statCards(m.stats),
		tableView,
		chart,
	)

	if m.err != nil {
		content = errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

var (
	cardStyle = lipgloss.NewStyle().
			Padding(0, 2).
			MarginRight(1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func statCards(s transaction.Statistics) string {
	card := func(title, value string) string {
		return cardStyle.Render(lipgloss.NewStyle().Faint(true).Render(title) + "\n" + activeStyle(value))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total Sale", FormatPrice(s.TotalSaleAmount)),
		card("Sold Items", strconv.FormatInt(s.TotalSoldItems, 10)),
		card("Not Sold Items", strconv.FormatInt(s.TotalNotSoldItems, 10)),
	)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

// Messages carry the request they answer so late replies can be recognised.

type statsMsg struct {
	filter transaction.Filter
	stats  transaction.Statistics
	err    error
}

type productsMsg struct {
	filter transaction.ListFilter
	txs    []*transaction.Transaction
	err    error
}

type chartMsg struct {
	filter transaction.Filter
	mode   chartMode
	bars   []bar
	err    error
}

func (m DashboardModel) loadStatsCmd() tea.Cmd {
	api, filter := m.api, m.filter

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		stats, err := api.Statistics(ctx, filter)

		return statsMsg{filter: filter, stats: stats, err: err}
	}
}

func (m DashboardModel) loadProductsCmd() tea.Cmd {
	api := m.api
	filter := transaction.ListFilter{Filter: m.filter, Page: m.page, PerPage: transaction.DefaultPerPage}

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		txs, err := api.Products(ctx, filter)

		return productsMsg{filter: filter, txs: txs, err: err}
	}
}

func (m DashboardModel) loadChartCmd() tea.Cmd {
	api, filter, mode := m.api, m.filter, m.chart

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		msg := chartMsg{filter: filter, mode: mode}

		switch mode {
		case chartMonthRanges:
			buckets, err := api.BarChart(ctx, filter)
			msg.bars, msg.err = bucketBars(buckets), err
		case chartMonthCategories:
			counts, err := api.PieChart(ctx, filter)
			msg.bars, msg.err = categoryBars(counts), err
		}

		return msg
	}
}
