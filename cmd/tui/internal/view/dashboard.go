package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/analytics"
	"github.com/MrJamesThe3rd/finsight/internal/budget"
	"github.com/MrJamesThe3rd/finsight/internal/period"
)

// DashboardSource composes the overview screen.
type DashboardSource interface {
	Dashboard(ctx context.Context, userID uuid.UUID, r period.Range) (analytics.Dashboard, error)
}

type dashboardState int

const (
	dashboardStateTimeframe dashboardState = iota
	dashboardStateLoading
	dashboardStateReady
)

var (
	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	priorityColors = map[analytics.Priority]lipgloss.Color{
		analytics.PriorityHigh:   lipgloss.Color("196"),
		analytics.PriorityMedium: lipgloss.Color("214"),
		analytics.PriorityLow:    lipgloss.Color("46"),
	}
)

type DashboardModel struct {
	CommonModel
	source DashboardSource

	state     dashboardState
	picker    TimeframePicker
	selection TimeframeSelectedMsg
	spinner   spinner.Model
	recent    table.Model
	data      analytics.Dashboard
	err       error
}

func NewDashboardModel(userID uuid.UUID, source DashboardSource) DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 10},
			{Title: "Amount", Width: 12},
			{Title: "Category", Width: 16},
			{Title: "Description", Width: 32},
		}),
		table.WithHeight(6),
	)
	t.SetStyles(tableStyles())

	return DashboardModel{
		CommonModel: CommonModel{UserID: userID},
		source:      source,
		picker:      NewTimeframePicker(period.Month),
		spinner:     s,
		recent:      t,
	}
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string {
	if m.state == dashboardStateReady {
		return "Esc: back | t: timeframe | r: refresh"
	}

	return "Esc: back | Enter: select"
}

func (m DashboardModel) Init() tea.Cmd {
	return nil
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.selection = msg
		m.state = dashboardStateLoading

		return m, tea.Batch(m.spinner.Tick, m.loadCmd())

	case dashboardLoadedMsg:
		m.state = dashboardStateReady
		m.err = msg.err

		if msg.err == nil {
			m.data = msg.dashboard
			m.refreshRecent()
		}

		return m, nil
	}

	switch m.state {
	case dashboardStateTimeframe:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd

	case dashboardStateLoading:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "t":
			m.picker.Reset()
			m.state = dashboardStateTimeframe

			return m, nil
		case "r":
			m.state = dashboardStateLoading
			return m, tea.Batch(m.spinner.Tick, m.loadCmd())
		}
	}

	var cmd tea.Cmd
	m.recent, cmd = m.recent.Update(msg)

	return m, cmd
}

func (m *DashboardModel) refreshRecent() {
	rows := make([]table.Row, 0, len(m.data.RecentTransactions))
	for _, tx := range m.data.RecentTransactions {
		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			FormatSigned(tx.Type, tx.Amount),
			tx.Category,
			tx.Description,
		})
	}

	m.recent.SetRows(rows)
}

func (m DashboardModel) View() string {
	switch m.state {
	case dashboardStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.picker.View())
	case dashboardStateLoading:
		return lipgloss.NewStyle().Padding(1).Render(m.spinner.View() + " Loading dashboard...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := headingStyle.Render(fmt.Sprintf("Dashboard · %s", m.selection.Label())) +
		mutedStyle.Render("  "+m.selection.Range.String())

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(m.viewOverview()),
		boxStyle.Render(m.viewBreakdown()),
	)

	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(m.viewBudgets()),
		boxStyle.Render(m.viewGoals()),
	)

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		top,
		bottom,
		boxStyle.Render("Recent Transactions\n"+m.recent.View()),
		boxStyle.Render(m.viewInsights()),
	))
}

func (m DashboardModel) viewOverview() string {
	ov := m.data.Overview

	net := successStyle
	if ov.NetSavings < 0 {
		net = errorStyle
	}

	return strings.Join([]string{
		"Overview",
		"",
		fmt.Sprintf("Income:        %12s", FormatAmount(ov.TotalIncome)),
		fmt.Sprintf("Expenses:      %12s", FormatAmount(ov.TotalExpenses)),
		"Net savings:   " + net.Render(fmt.Sprintf("%12s", FormatAmount(ov.NetSavings))),
		fmt.Sprintf("Savings rate:  %11.2f%%", ov.SavingsRate),
		fmt.Sprintf("Transactions:  %12d", ov.TransactionCount),
	}, "\n")
}

func (m DashboardModel) viewBreakdown() string {
	lines := []string{"Top Expenses", ""}

	if len(m.data.ExpenseBreakdown) == 0 {
		return strings.Join(append(lines, mutedStyle.Render("No expenses")), "\n")
	}

	for _, c := range m.data.ExpenseBreakdown[:min(len(m.data.ExpenseBreakdown), 5)] {
		lines = append(lines, fmt.Sprintf("%-16s %12s %6.2f%% %s",
			truncate(c.Category, 16), FormatAmount(c.Total), c.Percentage, bar(c.Percentage, 10)))
	}

	return strings.Join(lines, "\n")
}

func (m DashboardModel) viewBudgets() string {
	lines := []string{"Budgets", ""}

	if len(m.data.Budgets) == 0 {
		return strings.Join(append(lines, mutedStyle.Render("No active budgets")), "\n")
	}

	for _, b := range m.data.Budgets {
		lines = append(lines, fmt.Sprintf("%-16s %12s / %-12s %s",
			truncate(b.Category, 16), FormatAmount(b.Spent), FormatAmount(b.BudgetAmount), statusLabel(b.Status)))
	}

	return strings.Join(lines, "\n")
}

func (m DashboardModel) viewGoals() string {
	sum := m.data.Goals.Summary
	lines := []string{
		"Goals",
		"",
		fmt.Sprintf("%d active · %d completed · %.2f%% overall", sum.Active, sum.Completed, sum.OverallProgress),
	}

	for _, g := range m.data.Goals.Goals {
		lines = append(lines, fmt.Sprintf("%-16s %s %6.2f%%", truncate(g.Name, 16), bar(g.Progress, 10), g.Progress))
	}

	return strings.Join(lines, "\n")
}

func (m DashboardModel) viewInsights() string {
	lines := []string{"Insights", ""}

	for _, in := range m.data.Insights {
		style := lipgloss.NewStyle().Foreground(priorityColors[in.Priority])
		lines = append(lines, style.Render("● ")+in.Message)
	}

	return strings.Join(lines, "\n")
}

// bar renders pct (0-100, clamped) as a width-wide gauge.
func bar(pct float64, width int) string {
	filled := int(min(max(pct, 0), 100) / 100 * float64(width))
	return strings.Repeat("█", filled) + mutedStyle.Render(strings.Repeat("░", width-filled))
}

func statusLabel(s budget.Status) string {
	switch s {
	case budget.StatusExceeded:
		return errorStyle.Render(string(s))
	case budget.StatusWarning:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render(string(s))
	}

	return successStyle.Render(string(s))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}

func tableStyles() table.Styles {
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

	return s
}

type dashboardLoadedMsg struct {
	dashboard analytics.Dashboard
	err       error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	userID, r := m.UserID, m.selection.Range

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		d, err := m.source.Dashboard(ctx, userID, r)

		return dashboardLoadedMsg{dashboard: d, err: err}
	}
}
