package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/finsight/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/finsight/internal/analytics"
	"github.com/MrJamesThe3rd/finsight/internal/auth"
	authStore "github.com/MrJamesThe3rd/finsight/internal/auth/store"
	"github.com/MrJamesThe3rd/finsight/internal/budget"
	budgetStore "github.com/MrJamesThe3rd/finsight/internal/budget/store"
	"github.com/MrJamesThe3rd/finsight/internal/category"
	categoryStore "github.com/MrJamesThe3rd/finsight/internal/category/store"
	"github.com/MrJamesThe3rd/finsight/internal/config"
	"github.com/MrJamesThe3rd/finsight/internal/database"
	"github.com/MrJamesThe3rd/finsight/internal/export"
	"github.com/MrJamesThe3rd/finsight/internal/goal"
	goalStore "github.com/MrJamesThe3rd/finsight/internal/goal/store"
	"github.com/MrJamesThe3rd/finsight/internal/importer"
	"github.com/MrJamesThe3rd/finsight/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/finsight/internal/matching/store"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
	txStore "github.com/MrJamesThe3rd/finsight/internal/transaction/store"
)

type services struct {
	auth         *auth.Service
	transactions *transaction.Service
	categories   *category.Service
	budgets      *budget.Service
	goals        *goal.Service
	matching     *matching.Service
	importer     *importer.Service
	export       *export.Service
	analytics    *analytics.Engine
}

func newServices(db *sql.DB, cfg *config.Config) services {
	authSvc := auth.NewService(authStore.New(db), auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL))
	txSvc := transaction.NewService(txStore.New(db))
	budgetSvc := budget.NewService(budgetStore.New(db), txSvc)
	goalSvc := goal.NewService(goalStore.New(db))
	matchSvc := matching.NewService(matchingStore.New(db))
	engine := analytics.NewEngine(txSvc, budgetSvc, goalSvc)

	return services{
		auth:         authSvc,
		transactions: txSvc,
		categories:   category.NewService(categoryStore.New(db)),
		budgets:      budgetSvc,
		goals:        goalSvc,
		matching:     matchSvc,
		importer:     importer.NewService(txSvc, matchSvc),
		export:       export.NewService(txSvc, engine, authSvc),
		analytics:    engine,
	}
}

type model struct {
	svc     services
	session *auth.Session

	currentView View

	loginView        view.LoginModel
	dashboardView    view.DashboardModel
	transactionsView view.TransactionsModel
	plansView        view.PlansModel
	importView       view.ImportModel
	exportView       view.ExportModel
}

type View int

const (
	ViewLogin        View = 0
	ViewMenu         View = 1
	ViewDashboard    View = 2
	ViewTransactions View = 3
	ViewPlans        View = 4
	ViewImport       View = 5
	ViewExport       View = 6
)

func initialModel(svc services) model {
	return model{
		svc:         svc,
		currentView: ViewLogin,
		loginView:   view.NewLoginModel(svc.auth),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	case view.LoggedInMsg:
		m.session = msg.Session
		m.currentView = ViewMenu
		slog.Info("signed in", "user_id", msg.Session.User.ID)

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	case ViewPlans:
		var newModel tea.Model
		newModel, cmd = m.plansView.Update(msg)
		m.plansView = newModel.(view.PlansModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	userID := m.session.User.ID

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.currentView = ViewDashboard
		m.dashboardView = view.NewDashboardModel(userID, m.svc.analytics)

		return m, m.dashboardView.Init()
	case "2":
		m.currentView = ViewTransactions
		m.transactionsView = view.NewTransactionsModel(userID, m.svc.transactions, m.svc.categories, m.svc.matching)

		return m, m.transactionsView.Init()
	case "3":
		m.currentView = ViewPlans
		m.plansView = view.NewPlansModel(userID, m.svc.budgets, m.svc.goals)

		return m, m.plansView.Init()
	case "4":
		m.currentView = ViewImport
		m.importView = view.NewImportModel(userID, m.svc.importer, m.svc.categories)

		return m, m.importView.Init()
	case "5":
		m.currentView = ViewExport
		m.exportView = view.NewExportModel(userID, m.svc.export)

		return m, m.exportView.Init()
	}

	return m, nil
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Finsight · " + m.session.User.Name + "\n\n" +
				"1. Dashboard\n" +
				"2. Transactions\n" +
				"3. Budgets & Goals\n" +
				"4. Import Statement\n" +
				"5. Export Report\n\n" +
				"q. Quit",
		)
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewTransactions:
		return m.transactionsView.View()
	case ViewPlans:
		return m.plansView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg); err != nil {
		slog.Error("tui failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	// stderr belongs to the terminal UI.
	logFile, err := tea.LogToFile("finsight-tui.log", "tui")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, nil)))

	p := tea.NewProgram(initialModel(newServices(db, cfg)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}

	return nil
}
