package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/budget"
	"github.com/MrJamesThe3rd/finsight/internal/goal"
	"github.com/MrJamesThe3rd/finsight/internal/money"
)

type BudgetTracker interface {
	List(ctx context.Context, filter budget.ListFilter) ([]*budget.Budget, error)
	RefreshAll(ctx context.Context, userID uuid.UUID, now time.Time) ([]*budget.Budget, error)
}

type GoalTracker interface {
	List(ctx context.Context, userID uuid.UUID) ([]*goal.Goal, error)
	Contribute(ctx context.Context, userID, id uuid.UUID, amount int64) (*goal.Goal, error)
}

type plansTab int

const (
	plansTabBudgets plansTab = iota
	plansTabGoals
)

type plansState int

const (
	plansStateBrowse plansState = iota
	plansStateContribute
)

// PlansModel lists budgets and goals side by side in two tabs.
type PlansModel struct {
	CommonModel
	budgets BudgetTracker
	goals   GoalTracker

	tab         plansTab
	state       plansState
	budgetTable table.Model
	goalTable   table.Model
	budgetRows  []*budget.Budget
	goalRows    []*goal.Goal
	form        *huh.Form
	amount      *string

	loading bool
	err     error
	status  string
	now     func() time.Time
}

func NewPlansModel(userID uuid.UUID, budgets BudgetTracker, goals GoalTracker) PlansModel {
	bt := table.New(
		table.WithColumns([]table.Column{
			{Title: "Category", Width: 18},
			{Title: "Period", Width: 8},
			{Title: "Window", Width: 23},
			{Title: "Spent", Width: 12},
			{Title: "Budget", Width: 12},
			{Title: "Used", Width: 8},
			{Title: "Status", Width: 9},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	bt.SetStyles(tableStyles())

	gt := table.New(
		table.WithColumns([]table.Column{
			{Title: "Goal", Width: 20},
			{Title: "Saved", Width: 12},
			{Title: "Target", Width: 12},
			{Title: "Progress", Width: 9},
			{Title: "Due", Width: 10},
			{Title: "Days", Width: 5},
			{Title: "Priority", Width: 8},
			{Title: "Status", Width: 10},
		}),
		table.WithHeight(15),
	)
	gt.SetStyles(tableStyles())

	return PlansModel{
		CommonModel: CommonModel{UserID: userID},
		budgets:     budgets,
		goals:       goals,
		budgetTable: bt,
		goalTable:   gt,
		amount:      new(string),
		loading:     true,
		now:         time.Now,
	}
}

func (m PlansModel) Title() string { return "Budgets & Goals" }

func (m PlansModel) ShortHelp() string {
	if m.state == plansStateContribute {
		return "Enter: confirm | Esc: cancel"
	}

	if m.tab == plansTabGoals {
		return "Esc: back | Tab: budgets | c: contribute | r: reload"
	}

	return "Esc: back | Tab: goals | r: recalculate spent"
}

func (m PlansModel) Init() tea.Cmd {
	return m.loadCmd(false)
}

func (m PlansModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case plansLoadedMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.budgetRows = msg.budgets
			m.goalRows = msg.goals
			m.refreshTables()
		}

		return m, nil

	case contributedMsg:
		m.state = plansStateBrowse
		m.form = nil
		m.goalTable.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("%s is at %s of %s.", msg.goal.Name,
			FormatAmount(msg.goal.CurrentAmount), FormatAmount(msg.goal.TargetAmount))
		if msg.goal.Status == goal.StatusCompleted {
			m.status = successStyle.Render(msg.goal.Name + " reached its target!")
		}

		return m, m.loadCmd(false)

	case tea.WindowSizeMsg:
		m.budgetTable.SetHeight(msg.Height - 10)
		m.goalTable.SetHeight(msg.Height - 10)

		return m, nil
	}

	if m.state == plansStateContribute {
		return m.updateContribute(msg)
	}

	return m.updateBrowse(msg)
}

func (m PlansModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "tab":
			m.switchTab()
			return m, nil
		case "r":
			m.loading = true
			m.status = ""

			return m, m.loadCmd(m.tab == plansTabBudgets)
		case "c":
			if m.tab == plansTabGoals {
				return m.enterContribute()
			}
		}
	}

	var cmd tea.Cmd
	if m.tab == plansTabGoals {
		m.goalTable, cmd = m.goalTable.Update(msg)
	} else {
		m.budgetTable, cmd = m.budgetTable.Update(msg)
	}

	return m, cmd
}

func (m *PlansModel) switchTab() {
	if m.tab == plansTabBudgets {
		m.tab = plansTabGoals
		m.budgetTable.Blur()
		m.goalTable.Focus()

		return
	}

	m.tab = plansTabBudgets
	m.goalTable.Blur()
	m.budgetTable.Focus()
}

func (m PlansModel) selectedGoal() *goal.Goal {
	idx := m.goalTable.Cursor()
	if idx < 0 || idx >= len(m.goalRows) {
		return nil
	}

	return m.goalRows[idx]
}

func (m PlansModel) enterContribute() (tea.Model, tea.Cmd) {
	g := m.selectedGoal()
	if g == nil || g.Status != goal.StatusActive {
		m.status = "Select an active goal to contribute to."
		return m, nil
	}

	*m.amount = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Contribute to " + g.Name).
				Description(fmt.Sprintf("%s still to go", FormatAmount(g.Remaining()))).
				Placeholder("50.00").
				Value(m.amount).
				Validate(func(s string) error {
					cents, err := money.Parse(strings.TrimSpace(s))
					if err != nil || cents <= 0 {
						return fmt.Errorf("enter a positive amount")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = plansStateContribute
	m.goalTable.Blur()

	return m, m.form.Init()
}

func (m PlansModel) updateContribute(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = plansStateBrowse
		m.form = nil
		m.goalTable.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.contributeCmd()
}

func (m PlansModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading budgets and goals...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	tabs := []string{"Budgets", "Goals"}
	tabs[m.tab] = activeStyle(tabs[m.tab])
	header := strings.Join(tabs, mutedStyle.Render(" | "))

	body := m.budgetTable.View()
	if m.tab == plansTabGoals {
		body = m.goalTable.View()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(body),
	)

	if m.state == plansStateContribute && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = mutedStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *PlansModel) refreshTables() {
	brows := make([]table.Row, 0, len(m.budgetRows))
	for _, b := range m.budgetRows {
		brows = append(brows, table.Row{
			b.Category,
			string(b.Period),
			FormatDate(b.StartDate) + " " + FormatDate(b.EndDate)[5:],
			FormatAmount(b.Spent),
			FormatAmount(b.Amount),
			fmt.Sprintf("%.1f%%", b.PercentUsed()),
			string(b.Status()),
		})
	}
	m.budgetTable.SetRows(brows)

	now := m.now()
	grows := make([]table.Row, 0, len(m.goalRows))
	for _, g := range m.goalRows {
		grows = append(grows, table.Row{
			g.Name,
			FormatAmount(g.CurrentAmount),
			FormatAmount(g.TargetAmount),
			fmt.Sprintf("%.1f%%", g.Progress()),
			FormatDate(g.TargetDate),
			fmt.Sprint(g.DaysLeft(now)),
			string(g.Priority),
			string(g.Status),
		})
	}
	m.goalTable.SetRows(grows)
}

// Messages

type plansLoadedMsg struct {
	budgets []*budget.Budget
	goals   []*goal.Goal
	err     error
}

// loadCmd lists current budgets and all goals. With recalc the cached spent
// of current budgets is recomputed from the ledger first.
func (m PlansModel) loadCmd(recalc bool) tea.Cmd {
	userID, now := m.UserID, m.now()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var (
			budgets []*budget.Budget
			err     error
		)

		if recalc {
			budgets, err = m.budgets.RefreshAll(ctx, userID, now)
		} else {
			budgets, err = m.budgets.List(ctx, budget.ListFilter{UserID: userID, From: &now, To: &now})
		}

		if err != nil {
			return plansLoadedMsg{err: err}
		}

		goals, err := m.goals.List(ctx, userID)
		if err != nil {
			return plansLoadedMsg{err: err}
		}

		return plansLoadedMsg{budgets: budgets, goals: goals}
	}
}

type contributedMsg struct {
	goal *goal.Goal
	err  error
}

func (m PlansModel) contributeCmd() tea.Cmd {
	g := m.selectedGoal()
	if g == nil {
		return nil
	}

	userID, raw := m.UserID, *m.amount

	return func() tea.Msg {
		cents, err := money.Parse(strings.TrimSpace(raw))
		if err != nil {
			return contributedMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		updated, err := m.goals.Contribute(ctx, userID, g.ID, cents)

		return contributedMsg{goal: updated, err: err}
	}
}
