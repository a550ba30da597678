package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"gearxchange/internal/market"
)

func nonEmpty(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// runForm advances a huh form one message and reports completion.
func runForm(form **huh.Form, msg tea.Msg) (done bool, cmd tea.Cmd, err error) {
	if *form == nil {
		return false, nil, fmt.Errorf("internal error: form not initialized")
	}
	updated, cmd := (*form).Update(msg)
	f, ok := updated.(*huh.Form)
	if !ok {
		return false, nil, fmt.Errorf("internal error: unexpected form model type")
	}
	*form = f
	return f.State == huh.StateCompleted, cmd, nil
}

type loginModel struct {
	svc *market.Service

	Done bool

	form       *huh.Form
	identifier string
	password   string
	submit     bool

	result string
	err    error
}

func newLoginModel(svc *market.Service) *loginModel {
	m := &loginModel{svc: svc, submit: true}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Username or email").Value(&m.identifier).Validate(nonEmpty("username or email")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&m.password).Validate(nonEmpty("password")),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Sign in?").Value(&m.submit),
		),
	)
	return m
}

func (m *loginModel) Update(msg tea.Msg) tea.Cmd {
	if m.result != "" || m.err != nil {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "esc", "q", "enter":
				m.Done = true
			}
		}
		return nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.Done = true
		return nil
	}

	done, cmd, err := runForm(&m.form, msg)
	if err != nil {
		m.err = err
		return nil
	}
	if !done {
		return cmd
	}

	if !m.submit {
		m.Done = true
		return nil
	}

	verified, err := m.svc.VerifyUser(m.identifier, m.password)
	switch {
	case err != nil && verified:
		// Logged in, but some observer missed the broadcast.
		m.result = fmt.Sprintf("signed in as %s (warning: %v)", m.identifier, err)
	case err != nil:
		m.err = err
	case verified:
		m.result = "signed in as " + m.identifier
	default:
		m.result = "invalid username or password"
	}
	return nil
}

func (m *loginModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Sign in error: %v\n\nPress Enter/Esc to go back.", m.err)
	}
	if m.result != "" {
		return m.result + "\n\nPress Enter/Esc to go back."
	}
	return m.form.View() + "\n\n(esc to cancel)"
}

type signupModel struct {
	svc *market.Service

	Done bool

	form     *huh.Form
	username string
	email    string
	password string
	fullName string
	phone    string
	submit   bool

	result string
	err    error
}

func newSignupModel(svc *market.Service) *signupModel {
	m := &signupModel{svc: svc, submit: true}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Username").Value(&m.username).Validate(nonEmpty("username")),
			huh.NewInput().Title("Email").Value(&m.email).Validate(nonEmpty("email")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&m.password).Validate(nonEmpty("password")),
			huh.NewInput().Title("Full name").Value(&m.fullName),
			huh.NewInput().Title("Phone").Value(&m.phone),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Create account?").Value(&m.submit),
		),
	)
	return m
}

func (m *signupModel) Update(msg tea.Msg) tea.Cmd {
	if m.result != "" || m.err != nil {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "esc", "q", "enter":
				m.Done = true
			}
		}
		return nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.Done = true
		return nil
	}

	done, cmd, err := runForm(&m.form, msg)
	if err != nil {
		m.err = err
		return nil
	}
	if !done {
		return cmd
	}

	if !m.submit {
		m.Done = true
		return nil
	}

	if err := m.svc.AddUser(m.username, m.email, m.password, m.fullName, m.phone); err != nil {
		m.err = err
		return nil
	}
	m.result = "account created; you can now sign in as " + m.username
	return nil
}

func (m *signupModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Sign up error: %v\n\nPress Enter/Esc to go back.", m.err)
	}
	if m.result != "" {
		return m.result + "\n\nPress Enter/Esc to go back."
	}
	return m.form.View() + "\n\n(esc to cancel)"
}

type accountModel struct {
	svc *market.Service

	Done bool

	form     *huh.Form
	fullName string
	email    string
	phone    string
	password string
	submit   bool

	result string
	err    error
}

func newAccountModel(svc *market.Service) *accountModel {
	m := &accountModel{svc: svc, submit: true}

	u, err := svc.CurrentUser()
	if err != nil {
		m.err = err
		return m
	}

	m.fullName = u.FullName
	m.email = u.Email
	m.phone = u.Phone
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Full name").Value(&m.fullName),
			huh.NewInput().Title("Email").Value(&m.email),
			huh.NewInput().Title("Phone").Value(&m.phone),
			huh.NewInput().Title("New password (leave empty to keep)").EchoMode(huh.EchoModePassword).Value(&m.password),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Save changes?").Value(&m.submit),
		),
	)
	return m
}

func (m *accountModel) Update(msg tea.Msg) tea.Cmd {
	if m.result != "" || m.err != nil {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "esc", "q", "enter":
				m.Done = true
			}
		}
		return nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.Done = true
		return nil
	}

	done, cmd, err := runForm(&m.form, msg)
	if err != nil {
		m.err = err
		return nil
	}
	if !done {
		return cmd
	}

	if !m.submit {
		m.Done = true
		return nil
	}

	if err := m.svc.UpdateCredentials(m.fullName, m.email, m.phone, m.password); err != nil {
		m.err = err
		return nil
	}
	m.result = "account updated"
	return nil
}

func (m *accountModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Account error: %v\n\nPress Enter/Esc to go back.", m.err)
	}
	if m.result != "" {
		return m.result + "\n\nPress Enter/Esc to go back."
	}
	return m.form.View() + "\n\n(esc to cancel)"
}
