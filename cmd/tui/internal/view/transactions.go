package view

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/category"
	"github.com/MrJamesThe3rd/finsight/internal/matching"
	"github.com/MrJamesThe3rd/finsight/internal/period"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

// TransactionEditor is what the transactions screen needs from the ledger.
type TransactionEditor interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
	Update(ctx context.Context, userID, id uuid.UUID, params transaction.UpdateParams) (*transaction.Transaction, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type CategoryLister interface {
	List(ctx context.Context, userID uuid.UUID, typ *transaction.Type) ([]*category.Category, error)
}

type RuleLearner interface {
	Suggest(ctx context.Context, userID uuid.UUID, description string) (string, error)
	Learn(ctx context.Context, userID uuid.UUID, pattern, category string) (*matching.Rule, error)
}

type txState int

const (
	txStateTimeframe txState = iota
	txStateList
	txStateEditing
)

// txItem wraps a transaction to implement list.Item.
type txItem struct {
	tx *transaction.Transaction
}

func (i txItem) Title() string {
	cat := lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("[%s]", i.tx.Category))

	return fmt.Sprintf("%s  %12s  %s  %s", FormatDate(i.tx.Date), FormatSigned(i.tx.Type, i.tx.Amount), cat, i.tx.Description)
}

func (i txItem) Description() string {
	parts := []string{string(i.tx.PaymentMethod)}
	if len(i.tx.Tags) > 0 {
		parts = append(parts, "#"+strings.Join(i.tx.Tags, " #"))
	}

	if i.tx.Notes != "" {
		parts = append(parts, i.tx.Notes)
	}

	return strings.Join(parts, "  ·  ")
}

func (i txItem) FilterValue() string {
	return i.tx.Description + " " + i.tx.Category
}

// Form field bindings, kept behind a pointer so huh can write to them.
type txForm struct {
	description string
	category    string
	notes       string
	learn       bool
}

type TransactionsModel struct {
	CommonModel
	txService       TransactionEditor
	categoryService CategoryLister
	matchingService RuleLearner

	state           txState
	timeframePicker TimeframePicker
	selection       TimeframeSelectedMsg
	list            list.Model
	form            *huh.Form
	fields          *txForm
	txs             []*transaction.Transaction
	selectedTx      *transaction.Transaction

	loading bool
	status  string
}

func NewTransactionsModel(userID uuid.UUID, txSvc TransactionEditor, catSvc CategoryLister, matchSvc RuleLearner) TransactionsModel {
	l := list.New([]list.Item{}, txItemDelegate{}, 0, 0)
	l.Title = "Transactions"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return TransactionsModel{
		CommonModel:     CommonModel{UserID: userID},
		txService:       txSvc,
		categoryService: catSvc,
		matchingService: matchSvc,
		timeframePicker: NewTimeframePicker(period.Month),
		list:            l,
		fields:          &txForm{},
	}
}

func (m TransactionsModel) Title() string { return "Manage Transactions" }

func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateTimeframe:
		return "Esc: back | Enter: select"
	case txStateList:
		return "Esc: back | Enter: edit | x: delete | /: filter"
	case txStateEditing:
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return ""
}

func (m TransactionsModel) Init() tea.Cmd {
	return nil
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.selection = msg
		m.loading = true
		m.state = txStateList
		m.list.Title = "Transactions · " + msg.Label()

		return m, m.loadTxsCmd()

	case loadTxsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.txs = msg.txs
		m.refreshListItems()

		if len(msg.txs) == 0 {
			m.status = "No transactions found."
		}

		return m, nil

	case editReadyMsg:
		return m.startEditing(msg)

	case saveTxResultMsg:
		m.state = txStateList
		m.form = nil

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = msg.status

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	switch m.state {
	case txStateTimeframe:
		return m.updateTimeframe(msg)
	case txStateList:
		return m.updateList(msg)
	case txStateEditing:
		return m.updateEditing(msg)
	}

	return m, nil
}

func (m TransactionsModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m TransactionsModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "enter":
			return m, m.prepareEditCmd()
		case "x":
			return m, m.deleteCmd()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m TransactionsModel) selected() *transaction.Transaction {
	item, ok := m.list.SelectedItem().(txItem)
	if !ok {
		return nil
	}

	return item.tx
}

type editReadyMsg struct {
	tx         *transaction.Transaction
	categories []string
	suggestion string
	err        error
}

// prepareEditCmd loads the category choices and the rule suggestion for the
// selected transaction before the form opens.
func (m TransactionsModel) prepareEditCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	userID := m.UserID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cats, err := m.categoryService.List(ctx, userID, &tx.Type)
		if err != nil {
			return editReadyMsg{err: err}
		}

		names := make([]string, 0, len(cats)+1)
		for _, c := range cats {
			names = append(names, c.Name)
		}

		suggestion, _ := m.matchingService.Suggest(ctx, userID, tx.RawDescription)

		return editReadyMsg{tx: tx, categories: names, suggestion: suggestion}
	}
}

func (m TransactionsModel) startEditing(msg editReadyMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = fmt.Sprintf("Error: %v", msg.err)
		return m, nil
	}

	tx := msg.tx
	m.selectedTx = tx

	f := &txForm{description: tx.Description, category: tx.Category, notes: tx.Notes}
	if tx.Category == transaction.DefaultCategory && msg.suggestion != "" {
		f.category = msg.suggestion
	}

	m.fields = f

	options := huh.NewOptions(msg.categories...)
	if !slices.Contains(msg.categories, f.category) {
		options = append(options, huh.NewOption(f.category, f.category))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&f.description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("description cannot be empty")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(options...).
				Value(&f.category),

			huh.NewInput().
				Key("notes").
				Title("Notes (optional)").
				Value(&f.notes),

			huh.NewConfirm().
				Key("learn").
				Title("Use this category for similar transactions?").
				Affirmative("Yes").
				Negative("No").
				Value(&f.learn),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = txStateEditing

	return m, m.form.Init()
}

func (m TransactionsModel) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = txStateList
			m.form = nil

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveTxCmd()
}

func (m TransactionsModel) View() string {
	switch m.state {
	case txStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())

	case txStateList:
		if m.loading {
			return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
		}

		statusLine := ""
		if m.status != "" {
			statusLine = mutedStyle.Render(m.status) + "\n"
		}

		return lipgloss.NewStyle().Padding(1).Render(statusLine + m.list.View())

	case txStateEditing:
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(
			m.txInfoView() + "\n" + m.form.View(),
		)
	}

	return ""
}

func (m TransactionsModel) txInfoView() string {
	if m.selectedTx == nil {
		return ""
	}

	return boxStyle.Render(fmt.Sprintf(
		"Date: %s  |  Type: %s  |  Amount: %s\nRaw: %s",
		FormatDate(m.selectedTx.Date),
		m.selectedTx.Type,
		FormatAmount(m.selectedTx.Amount),
		m.selectedTx.RawDescription,
	))
}

func (m *TransactionsModel) refreshListItems() {
	items := make([]list.Item, len(m.txs))
	for i, tx := range m.txs {
		items[i] = txItem{tx: tx}
	}

	m.list.SetItems(items)
}

// Messages

type loadTxsMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m TransactionsModel) loadTxsCmd() tea.Cmd {
	start, end := m.selection.Range.Start, m.selection.Range.End
	filter := transaction.ListFilter{UserID: m.UserID, StartDate: &start, EndDate: &end}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, filter)

		return loadTxsMsg{txs: txs, err: err}
	}
}

type saveTxResultMsg struct {
	status string
	err    error
}

func (m TransactionsModel) saveTxCmd() tea.Cmd {
	tx := m.selectedTx
	f := *m.fields
	userID := m.UserID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.txService.Update(ctx, userID, tx.ID, transaction.UpdateParams{
			Description: &f.description,
			Category:    &f.category,
			Notes:       &f.notes,
		})
		if err != nil {
			return saveTxResultMsg{err: err}
		}

		if f.learn && tx.RawDescription != "" {
			if _, err := m.matchingService.Learn(ctx, userID, tx.RawDescription, f.category); err != nil {
				return saveTxResultMsg{err: fmt.Errorf("saved, but learning the rule failed: %w", err)}
			}

			return saveTxResultMsg{status: fmt.Sprintf("Saved. Similar transactions will go to %s.", f.category)}
		}

		return saveTxResultMsg{status: "Saved."}
	}
}

func (m TransactionsModel) deleteCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	userID := m.UserID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.txService.Delete(ctx, userID, tx.ID); err != nil {
			return saveTxResultMsg{err: err}
		}

		return saveTxResultMsg{status: "Deleted " + tx.Description + "."}
	}
}

// txItemDelegate renders items in the list.
type txItemDelegate struct{}

func (d txItemDelegate) Height() int                             { return 2 }
func (d txItemDelegate) Spacing() int                            { return 0 }
func (d txItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d txItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(txItem)
	if !ok {
		return
	}

	title := i.Title()
	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + title)
	}

	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintf(w, "    %s\n", mutedStyle.Render(i.Description()))
}
