package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"gearxchange/internal/market"
	"gearxchange/internal/session"
)

type screen int

const (
	screenHome screen = iota
	screenBrowse
	screenFavourites
	screenVisited
	screenLogin
	screenSignup
	screenAccount
)

type rootModel struct {
	svc *market.Service

	width  int
	height int

	active screen

	homeList list.Model
	err      error

	session session.State
	updates *session.Subscriber

	browse  *listingsModel
	login   *loginModel
	signup  *signupModel
	account *accountModel
}

type menuItem struct {
	title string
	desc  string
	to    screen
	quit  bool
	out   bool
}

func (m menuItem) Title() string       { return m.title }
func (m menuItem) Description() string { return m.desc }
func (m menuItem) FilterValue() string { return m.title }

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	anonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// sessionMsg delivers a session-change broadcast into the UI loop.
type sessionMsg session.Update

// waitForSession blocks on the subscriber channel and converts the next
// broadcast into a tea message. Reissued after every receipt.
func waitForSession(sub *session.Subscriber) tea.Cmd {
	return func() tea.Msg {
		return sessionMsg(<-sub.Ch)
	}
}

// NewRootModel builds the top-level client model and subscribes it to
// session changes.
func NewRootModel(svc *market.Service) tea.Model {
	items := []list.Item{
		menuItem{title: "Browse listings", desc: "All machinery listings", to: screenBrowse},
		menuItem{title: "My favourites", desc: "Starred listings", to: screenFavourites},
		menuItem{title: "Visit history", desc: "Listings you viewed while logged in", to: screenVisited},
		menuItem{title: "Sign in", desc: "Log in with username or email", to: screenLogin},
		menuItem{title: "Sign up", desc: "Create an account", to: screenSignup},
		menuItem{title: "My account", desc: "Update name, email, phone or password", to: screenAccount},
		menuItem{title: "Log out", desc: "Return to anonymous browsing", out: true},
		menuItem{title: "Quit", desc: "Exit", quit: true},
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "gearXchange"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)

	return &rootModel{
		svc:      svc,
		active:   screenHome,
		homeList: l,
		session:  svc.GetUserState(),
		updates:  svc.Sessions.Subscribe(),
	}
}

func (m *rootModel) Init() tea.Cmd {
	return waitForSession(m.updates)
}

func (m *rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionMsg:
		m.session = msg.State
		return m, waitForSession(m.updates)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.homeList.SetSize(msg.Width, msg.Height-3)
		if m.browse != nil {
			m.browse.SetSize(msg.Width, msg.Height)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.svc.Sessions.Unsubscribe(m.updates.ID)
			return m, tea.Quit
		}
	}

	switch m.active {
	case screenHome:
		return m.updateHome(msg)
	case screenBrowse, screenFavourites, screenVisited:
		cmd := m.browse.Update(msg)
		if m.browse.Done {
			m.active = screenHome
			m.browse = nil
		}
		return m, cmd
	case screenLogin:
		cmd := m.login.Update(msg)
		if m.login.Done {
			m.active = screenHome
			m.login = nil
		}
		return m, cmd
	case screenSignup:
		cmd := m.signup.Update(msg)
		if m.signup.Done {
			m.active = screenHome
			m.signup = nil
		}
		return m, cmd
	case screenAccount:
		cmd := m.account.Update(msg)
		if m.account.Done {
			m.active = screenHome
			m.account = nil
		}
		return m, cmd
	default:
		return m, nil
	}
}

func (m *rootModel) updateHome(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.homeList, cmd = m.homeList.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			it, ok := m.homeList.SelectedItem().(menuItem)
			if !ok {
				return m, cmd
			}
			if it.quit {
				m.svc.Sessions.Unsubscribe(m.updates.ID)
				return m, tea.Quit
			}
			if it.out {
				m.svc.LogOut()
				return m, cmd
			}
			m.activate(it.to)
			return m, nil
		}
	}

	return m, cmd
}

func (m *rootModel) activate(s screen) {
	m.active = s
	m.err = nil

	switch s {
	case screenBrowse:
		m.browse = newListingsModel(m.svc, sourceAll)
		m.browse.SetSize(m.width, m.height)
	case screenFavourites:
		m.browse = newListingsModel(m.svc, sourceFavourites)
		m.browse.SetSize(m.width, m.height)
	case screenVisited:
		m.browse = newListingsModel(m.svc, sourceVisited)
		m.browse.SetSize(m.width, m.height)
	case screenLogin:
		m.login = newLoginModel(m.svc)
	case screenSignup:
		m.signup = newSignupModel(m.svc)
	case screenAccount:
		m.account = newAccountModel(m.svc)
	}
}

func (m *rootModel) statusBar() string {
	if m.session.Level == session.LevelNone {
		return anonStyle.Render("not signed in")
	}
	return statusStyle.Render("signed in as " + m.session.Username + " (" + string(m.session.Level) + ")")
}

func (m *rootModel) View() string {
	if m.err != nil {
		return errStyle.Render("Error: ") + m.err.Error()
	}

	var body string
	switch m.active {
	case screenHome:
		body = m.homeList.View()
	case screenBrowse, screenFavourites, screenVisited:
		body = m.browse.View()
	case screenLogin:
		body = m.login.View()
	case screenSignup:
		body = m.signup.View()
	case screenAccount:
		body = m.account.View()
	default:
		body = titleStyle.Render("Unknown screen")
	}

	return body + "\n" + m.statusBar()
}
