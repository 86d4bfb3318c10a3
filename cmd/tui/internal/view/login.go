package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finsight/internal/auth"
)

// Authenticator signs a user in or creates an account.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Register(ctx context.Context, params auth.RegisterParams) (*auth.Session, error)
}

// LoggedInMsg is emitted once credentials were accepted.
type LoggedInMsg struct {
	Session *auth.Session
}

type loginResultMsg struct {
	session *auth.Session
	err     error
}

// huh writes through pointers, so the bindings must outlive model copies.
type loginFields struct {
	register bool
	email    string
	password string
	name     string
}

type LoginModel struct {
	auth Authenticator

	form   *huh.Form
	fields *loginFields

	busy bool
	err  error
}

func NewLoginModel(a Authenticator) LoginModel {
	m := LoginModel{auth: a, fields: &loginFields{}}
	m.form = m.buildForm()

	return m
}

func (m LoginModel) Title() string { return "Sign In" }

func (m LoginModel) ShortHelp() string {
	return "Enter: submit | Ctrl+C: quit"
}

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) buildForm() *huh.Form {
	f := m.fields

	required := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", field)
			}

			return nil
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("register").
				Title("New here?").
				Affirmative("Create account").
				Negative("Sign in").
				Value(&f.register),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Name").
				Value(&f.name),
		).WithHideFunc(func() bool { return !f.register }),
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&f.email).
				Validate(required("email")),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password).
				Validate(required("password")),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(loginResultMsg); ok {
		m.busy = false

		if res.err != nil {
			m.err = res.err
			m.fields.password = ""
			m.form = m.buildForm()

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return LoggedInMsg{Session: res.session} }
	}

	if m.busy {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.busy = true
	m.err = nil

	return m, m.submitCmd()
}

func (m LoginModel) submitCmd() tea.Cmd {
	f := *m.fields

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var (
			session *auth.Session
			err     error
		)

		if f.register {
			session, err = m.auth.Register(ctx, auth.RegisterParams{Email: f.email, Password: f.password, Name: f.name})
		} else {
			session, err = m.auth.Login(ctx, f.email, f.password)
		}

		return loginResultMsg{session: session, err: err}
	}
}

func (m LoginModel) View() string {
	header := headingStyle.Render("Finsight")

	body := m.form.View()
	if m.busy {
		body = "Signing in..."
	}

	if m.err != nil {
		msg := m.err.Error()
		if errors.Is(m.err, auth.ErrInvalidCredentials) {
			msg = "invalid email or password"
		}

		body = errorStyle.Render("Error: "+msg) + "\n\n" + body
	}

	return lipgloss.NewStyle().Padding(2).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body))
}
