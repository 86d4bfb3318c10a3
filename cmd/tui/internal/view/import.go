package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/analytics"
	"github.com/MrJamesThe3rd/finsight/internal/importer"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

const importTimeout = 2 * time.Minute

// StatementImporter previews statements and writes the rows the user kept.
type StatementImporter interface {
	Preview(ctx context.Context, userID uuid.UUID, format importer.Format, r io.Reader) (*importer.Preview, error)
	Confirm(ctx context.Context, userID uuid.UUID, rows []transaction.CreateParams) ([]*transaction.Transaction, error)
}

type importState int

const (
	importStateFormatSelect importState = iota
	importStateFilePick
	importStateLoading
	importStateReview
	importStateOverride
	importStateResult
)

var formatLabels = map[importer.Format]string{
	importer.FormatGeneric: "Generic CSV (date, description, amount, ...)",
	importer.FormatCGD:     "Caixa Geral de Depósitos",
}

var sourceLabels = map[importer.CategorySource]string{
	importer.SourceFile: "file",
	importer.SourceRule: "rule",
	importer.SourceNone: "-",
}

type reviewRow struct {
	importer.PreviewRow
	include bool
}

type ImportModel struct {
	CommonModel
	importService   StatementImporter
	categoryService CategoryLister

	state          importState
	filePicker     filepicker.Model
	selectedFormat importer.Format
	formatOptions  []importer.Format
	formatCursor   int

	preview *importer.Preview
	rows    []reviewRow
	table   table.Model

	form        *huh.Form
	override    *string
	overrideIdx int

	imported []*transaction.Transaction

	status string
	err    error
}

func NewImportModel(userID uuid.UUID, impSvc StatementImporter, catSvc CategoryLister) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: " ", Width: 3},
			{Title: "Date", Width: 10},
			{Title: "Amount", Width: 12},
			{Title: "Category", Width: 16},
			{Title: "From", Width: 5},
			{Title: "Description", Width: 28},
			{Title: "Duplicate of", Width: 28},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())

	return ImportModel{
		CommonModel:     CommonModel{UserID: userID},
		importService:   impSvc,
		categoryService: catSvc,
		filePicker:      fp,
		formatOptions:   []importer.Format{importer.FormatGeneric, importer.FormatCGD},
		table:           t,
	}
}

func (m ImportModel) Title() string { return "Import Transactions" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStateReview:
		return "Space: include | c: category | a: all | d: drop duplicates | Enter: import | Esc: cancel"
	case importStateOverride:
		return "Enter: apply | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case importStateFormatSelect:
			return m.updateFormatSelect(msg)
		case importStateReview:
			return m.updateReview(msg)
		}

	case previewMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.preview = msg.preview
		m.rows = make([]reviewRow, len(msg.preview.Rows))

		for i, r := range msg.preview.Rows {
			m.rows[i] = reviewRow{PreviewRow: r, include: r.Existing == nil}
		}

		m.table.SetCursor(0)
		m.refreshTable()
		m.state = importStateReview

		return m, nil

	case overrideReadyMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		return m.startOverride(msg)

	case confirmResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.imported = msg.txs
		m.status = fmt.Sprintf("Imported %d transactions (%s, %s).",
			len(msg.txs), m.preview.Profile, m.preview.Charset)

		return m, nil
	}

	if m.state == importStateOverride {
		return m.updateOverride(msg)
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateLoading
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.previewCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateFormatSelect
		return m, nil
	case importStateOverride:
		m.state = importStateReview
		m.form = nil

		return m, nil
	case importStateReview, importStateResult:
		m.state = importStateFormatSelect
		m.preview = nil
		m.rows = nil
		m.imported = nil
		m.err = nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateFormatSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.formatCursor > 0 {
			m.formatCursor--
		}
	case tea.KeyDown:
		if m.formatCursor < len(m.formatOptions)-1 {
			m.formatCursor++
		}
	case tea.KeyEnter:
		m.selectedFormat = m.formatOptions[m.formatCursor]
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()

	switch msg.String() {
	case " ":
		if idx < len(m.rows) {
			m.rows[idx].include = !m.rows[idx].include
			m.refreshTable()
		}

		return m, nil
	case "a":
		for i := range m.rows {
			m.rows[i].include = true
		}

		m.refreshTable()

		return m, nil
	case "d":
		for i := range m.rows {
			if m.rows[i].Existing != nil {
				m.rows[i].include = false
			}
		}

		m.refreshTable()

		return m, nil
	case "c":
		if idx < len(m.rows) {
			return m, m.prepareOverrideCmd(idx)
		}

		return m, nil
	case "enter":
		rows := m.included()
		if len(rows) == 0 {
			m.status = "Nothing selected."
			return m, nil
		}

		m.state = importStateLoading
		m.status = fmt.Sprintf("Importing %d transactions...", len(rows))

		return m, m.confirmCmd(rows)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ImportModel) included() []transaction.CreateParams {
	var rows []transaction.CreateParams

	for _, r := range m.rows {
		if r.include {
			rows = append(rows, r.Params)
		}
	}

	return rows
}

func (m *ImportModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.rows))

	for _, r := range m.rows {
		mark := ""
		if r.include {
			mark = "✓"
		}

		dup := ""
		if r.Existing != nil {
			dup = fmt.Sprintf("%s [%s]", r.Existing.Description, r.Existing.Category)
		}

		rows = append(rows, table.Row{
			mark,
			FormatDate(r.Params.Date),
			FormatSigned(r.Params.Type, r.Params.Amount),
			r.Params.Category,
			sourceLabels[r.Source],
			r.Params.Description,
			dup,
		})
	}

	m.table.SetRows(rows)
}

type overrideReadyMsg struct {
	index      int
	categories []string
	err        error
}

func (m ImportModel) prepareOverrideCmd(idx int) tea.Cmd {
	userID, typ := m.UserID, m.rows[idx].Params.Type

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cats, err := m.categoryService.List(ctx, userID, &typ)
		if err != nil {
			return overrideReadyMsg{err: err}
		}

		names := make([]string, 0, len(cats))
		for _, c := range cats {
			names = append(names, c.Name)
		}

		return overrideReadyMsg{index: idx, categories: names}
	}
}

func (m ImportModel) startOverride(msg overrideReadyMsg) (tea.Model, tea.Cmd) {
	row := m.rows[msg.index].Params

	value := row.Category
	m.override = &value
	m.overrideIdx = msg.index

	options := huh.NewOptions(msg.categories...)
	if value != "" && !slices.Contains(msg.categories, value) {
		options = append(options, huh.NewOption(value, value))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("category").
				Title("Category for " + row.Description).
				Options(options...).
				Value(m.override),
		),
	).WithWidth(60).WithShowHelp(false)

	m.state = importStateOverride

	return m, m.form.Init()
}

func (m ImportModel) updateOverride(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.applyOverride(m.overrideIdx, *m.override)
	m.form = nil
	m.state = importStateReview

	return m, nil
}

// applyOverride recategorizes row idx and includes it.
func (m *ImportModel) applyOverride(idx int, category string) {
	if idx >= len(m.rows) || category == "" {
		return
	}

	m.rows[idx].Params.Category = category
	m.rows[idx].include = true
	m.refreshTable()
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFormatSelect:
		return m.viewFormatSelect()
	case importStateFilePick:
		return m.viewFilePick()
	case importStateLoading:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateReview:
		return m.viewReview()
	case importStateOverride:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewFormatSelect() string {
	var b strings.Builder

	b.WriteString("Select Statement Format:\n\n")

	for i, f := range m.formatOptions {
		cursor := " "
		if i == m.formatCursor {
			cursor = ">"
		}

		fmt.Fprintf(&b, "%s %s\n", cursor, formatLabels[f])
	}

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

func (m ImportModel) viewFilePick() string {
	return lipgloss.NewStyle().Padding(1).Render(
		fmt.Sprintf("Select file to import (%s):\n\n%s", m.selectedFormat, m.filePicker.View()),
	)
}

func (m ImportModel) viewReview() string {
	var included, duplicates, ruled int

	var income, expenses int64

	for _, r := range m.rows {
		if r.Existing != nil {
			duplicates++
		}

		if r.Source == importer.SourceRule {
			ruled++
		}

		if !r.include {
			continue
		}

		included++

		if r.Params.Type == transaction.TypeIncome {
			income += r.Params.Amount
		} else {
			expenses += r.Params.Amount
		}
	}

	header := headingStyle.Render(fmt.Sprintf("Review %d rows", len(m.rows))) +
		mutedStyle.Render(fmt.Sprintf("  %s · %s", m.preview.Profile, m.preview.Charset))

	footer := fmt.Sprintf("%d selected · income %s · expenses %s · %d categorized by rules · %d duplicates",
		included, FormatAmount(income), FormatAmount(expenses), ruled, duplicates)

	parts := []string{header, "", m.table.View(), "", mutedStyle.Render(footer)}
	if m.status != "" {
		parts = append(parts, errorStyle.Render(m.status))
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	lines := []string{successStyle.Render(m.status), ""}
	lines = append(lines, categoryTotals("Expenses", analytics.ComputeBreakdown(m.imported, transaction.TypeExpense))...)
	lines = append(lines, categoryTotals("Income", analytics.ComputeBreakdown(m.imported, transaction.TypeIncome))...)
	lines = append(lines, "(Esc to go back)")

	return style.Render(strings.Join(lines, "\n"))
}

func categoryTotals(title string, totals []analytics.CategoryTotal) []string {
	if len(totals) == 0 {
		return nil
	}

	lines := []string{headingStyle.Render(title)}
	for _, ct := range totals {
		lines = append(lines, fmt.Sprintf("  %-20s %12s  %3d  %6.2f%%",
			truncate(ct.Category, 20), FormatAmount(ct.Total), ct.Count, ct.Percentage))
	}

	return append(lines, "")
}

type previewMsg struct {
	preview *importer.Preview
	err     error
}

type confirmResultMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m ImportModel) previewCmd(path string) tea.Cmd {
	userID, format := m.UserID, m.selectedFormat

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return previewMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		preview, err := m.importService.Preview(ctx, userID, format, f)

		return previewMsg{preview: preview, err: err}
	}
}

func (m ImportModel) confirmCmd(rows []transaction.CreateParams) tea.Cmd {
	userID := m.UserID

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		txs, err := m.importService.Confirm(ctx, userID, rows)

		return confirmResultMsg{txs: txs, err: err}
	}
}
