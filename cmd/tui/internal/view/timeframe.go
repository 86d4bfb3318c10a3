package view

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/finsight/internal/period"
)

var timeframeLabels = map[period.Token]string{
	period.Today:     "Today",
	period.Yesterday: "Yesterday",
	period.Week:      "This Week",
	period.LastWeek:  "Last Week",
	period.Month:     "This Month",
	period.LastMonth: "Last Month",
	period.Quarter:   "This Quarter",
	period.Year:      "This Year",
	period.LastYear:  "Last Year",
	period.Custom:    "Custom Range",
}

// TimeframeSelectedMsg is emitted when the user has selected a valid date range.
type TimeframeSelectedMsg struct {
	Token period.Token
	Range period.Range
}

// Label is a short human description of the selection.
func (m TimeframeSelectedMsg) Label() string {
	if m.Token == period.Custom {
		return fmt.Sprintf("%s to %s", FormatDate(m.Range.Start), FormatDate(m.Range.End))
	}

	return timeframeLabels[m.Token]
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker is a reusable component for selecting a date range.
type TimeframePicker struct {
	state    timeframeState
	cursor   int
	initial  int
	now      func() time.Time
	startIn  textinput.Model
	endIn    textinput.Model
	focusIdx int

	err error
}

// NewTimeframePicker creates a picker with the cursor on initial.
func NewTimeframePicker(initial period.Token) TimeframePicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "Start Date: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "End Date:   "

	idx := max(slices.Index(period.Tokens, initial), 0)

	return TimeframePicker{
		state:   timeframeStateSelect,
		cursor:  idx,
		initial: idx,
		now:     time.Now,
		startIn: si,
		endIn:   ei,
	}
}

// Init returns the initial command for the picker.
func (m TimeframePicker) Init() tea.Cmd {
	return nil
}

// Update handles messages for the timeframe picker.
func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case timeframeStateSelect:
			return m.updateSelect(msg)
		case timeframeStateCustom:
			if next, cmd, handled := m.updateCustom(msg); handled {
				return next, cmd
			}
		}
	}

	if m.state == timeframeStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if m.cursor < len(period.Tokens)-1 {
			m.cursor++
		}
	case tea.KeyEnter:
		token := period.Tokens[m.cursor]
		if token == period.Custom {
			m.state = timeframeStateCustom
			m.focusIdx = 0
			m.startIn.Focus()

			return m, textinput.Blink
		}

		r, err := period.Resolve(token, nil, nil, m.now())
		if err != nil {
			m.err = err
			return m, nil
		}

		return m, selected(token, r)
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIdx = (m.focusIdx + 1) % 2
		m.startIn.Blur()
		m.endIn.Blur()

		if m.focusIdx == 0 {
			m.startIn.Focus()
		} else {
			m.endIn.Focus()
		}

		return m, textinput.Blink, true

	case "enter":
		r, err := m.customRange()
		if err != nil {
			m.err = err
			return m, nil, true
		}

		m.err = nil

		return m, selected(period.Custom, r), true

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil, true
	}

	return m, nil, false
}

func (m TimeframePicker) customRange() (period.Range, error) {
	loc := m.now().Location()

	start, err := time.ParseInLocation(time.DateOnly, m.startIn.Value(), loc)
	if err != nil {
		return period.Range{}, errors.New("invalid start date (YYYY-MM-DD)")
	}

	end, err := time.ParseInLocation(time.DateOnly, m.endIn.Value(), loc)
	if err != nil {
		return period.Range{}, errors.New("invalid end date (YYYY-MM-DD)")
	}

	return period.Resolve(period.Custom, &start, &end, m.now())
}

func (m TimeframePicker) updateInputs(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	var cmds []tea.Cmd
	var c tea.Cmd

	m.startIn, c = m.startIn.Update(msg)
	cmds = append(cmds, c)
	m.endIn, c = m.endIn.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

func selected(token period.Token, r period.Range) tea.Cmd {
	return func() tea.Msg {
		return TimeframeSelectedMsg{Token: token, Range: r}
	}
}

// View renders the timeframe picker.
func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == timeframeStateCustom {
		return fmt.Sprintf(
			"Enter Custom Range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.startIn.View(),
			m.endIn.View(),
			errStr,
		)
	}

	s := "Select Timeframe:\n\n"
	for i, token := range period.Tokens {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, timeframeLabels[token])
	}
	s += "\n(Enter to select, Esc to back)"

	return s + errStr
}

// IsSelecting returns true if the picker is in the selection state (not custom input).
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

// Reset returns the picker to its initial selection state.
func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.cursor = m.initial
	m.err = nil
	m.startIn.SetValue("")
	m.endIn.SetValue("")
}
