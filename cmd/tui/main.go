package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/salesdash/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/salesdash/internal/client"
	"github.com/MrJamesThe3rd/salesdash/internal/config"
	"github.com/MrJamesThe3rd/salesdash/internal/transaction"
)

type model struct {
	api    view.API
	scheme transaction.Scheme

	currentView View
	width       int
	height      int

	dashboardView view.DashboardModel
	breakdownView view.BreakdownModel
}

type View int

const (
	ViewMenu      View = 0
	ViewDashboard View = 1
	ViewBreakdown View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	scheme, err := transaction.SchemeByName(cfg.Chart.Scheme)
	if err != nil {
		slog.Error("failed to select chart scheme", "error", err)
		os.Exit(1)
	}

	api := client.New(cfg.Dashboard.APIURL)

	return model{
		api:           api,
		scheme:        scheme,
		currentView:   ViewMenu,
		dashboardView: view.NewDashboardModel(api, scheme),
		breakdownView: view.NewBreakdownModel(api),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.api, m.scheme)
				m.dashboardView.Width, m.dashboardView.Height = m.width, m.height

				return m, m.dashboardView.Init()
			case "2":
				m.currentView = ViewBreakdown
				m.breakdownView = view.NewBreakdownModel(m.api)

				return m, m.breakdownView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewBreakdown:
		var newModel tea.Model
		newModel, cmd = m.breakdownView.Update(msg)
		m.breakdownView = newModel.(view.BreakdownModel)
	}

	return m, cmd
}

func (m model) View() string {
	var active view.View

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Salesdash\n\n" +
				"1. Transactions Dashboard\n" +
				"2. Monthly Breakdown\n\n" +
				"q. Quit",
		)
	case ViewDashboard:
		active = m.dashboardView
	case ViewBreakdown:
		active = m.breakdownView
	default:
		return "Unknown View"
	}

	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(active.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Padding(1, 1, 0).Render("Salesdash · "+active.Title()),
		active.View(),
		help,
	)
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
