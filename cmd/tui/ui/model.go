package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/eshaffer321/constructcycle-go/pkg/constructcycle"
)

type View int

const (
	StartView View = iota
	LoginView
	MenuView
	ProductsView
	OrdersView
)

const requestTimeout = 15 * time.Second

type sessionCheckedMsg struct {
	user *constructcycle.User
	err  error
}

type loggedOutMsg struct{}

type Model struct {
	currentView View
	login       *LoginModel
	menu        *MenuModel
	products    *ProductsModel
	orders      *OrdersModel
	client      *constructcycle.Client
	loginPath   string
	user        *constructcycle.User
	width       int
	height      int
}

// NewModel builds the root model. loginPath is the redirect target that
// returns the user to the login view; empty means the client default.
func NewModel(client *constructcycle.Client, loginPath string) Model {
	if loginPath == "" {
		loginPath = constructcycle.DefaultLoginPath
	}

	return Model{
		currentView: StartView,
		login:       NewLoginModel(client),
		menu:        NewMenuModel(),
		products:    NewProductsModel(client),
		orders:      NewOrdersModel(client),
		client:      client,
		loginPath:   loginPath,
	}
}

// Init verifies the stored session before showing anything
func (m Model) Init() tea.Cmd {
	return checkSessionCmd(m.client)
}

func checkSessionCmd(c *constructcycle.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		user, err := c.VerifySession(ctx)
		return sessionCheckedMsg{user: user, err: err}
	}
}

func logoutCmd(c *constructcycle.Client) tea.Cmd {
	return func() tea.Msg {
		_ = c.Auth.Logout(context.Background())
		return loggedOutMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionCheckedMsg:
		if msg.err != nil {
			m.toLogin()
			return m, nil
		}
		m.user = msg.user
		m.currentView = MenuView
		return m, nil

	case loginSuccessMsg:
		m.user = msg.user
		m.currentView = MenuView
		return m, nil

	case navigateMsg:
		if msg.path == m.loginPath {
			m.toLogin()
		}
		return m, nil

	case loggedOutMsg:
		m.toLogin()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.currentView == ProductsView || m.currentView == OrdersView {
				m.currentView = MenuView
				return m, nil
			}
		}
	}

	// Route to appropriate view
	switch m.currentView {
	case LoginView:
		updated, cmd := m.login.Update(msg)
		m.login = updated.(*LoginModel)
		return m, cmd

	case MenuView:
		updated, cmd := m.menu.Update(msg)
		m.menu = updated.(*MenuModel)
		switch m.menu.Take() {
		case menuProducts:
			m.currentView = ProductsView
			return m, m.products.Load()
		case menuOrders:
			m.currentView = OrdersView
			return m, m.orders.Load()
		case menuLogout:
			return m, logoutCmd(m.client)
		case menuQuit:
			return m, tea.Quit
		}
		return m, cmd

	case ProductsView:
		updated, cmd := m.products.Update(msg)
		m.products = updated.(*ProductsModel)
		return m, cmd

	case OrdersView:
		updated, cmd := m.orders.Update(msg)
		m.orders = updated.(*OrdersModel)
		return m, cmd
	}

	return m, nil
}

func (m *Model) toLogin() {
	m.user = nil
	m.login.Reset()
	m.currentView = LoginView
}

func (m Model) View() string {
	var statusBar string
	if m.user != nil && m.currentView != LoginView {
		name := lipgloss.NewStyle().Foreground(Success).Render(displayName(m.user))
		email := lipgloss.NewStyle().Foreground(Muted).Render(" (" + m.user.Email + ")")
		statusBar = StatusBarStyle.Render(name + email)
	}

	var mainContent string
	switch m.currentView {
	case StartView:
		mainContent = BoxStyle.Width(76).Render(centered(InfoStyle.Render("Checking session...")))
	case LoginView:
		mainContent = m.login.View()
	case MenuView:
		mainContent = m.menu.View()
	case ProductsView:
		mainContent = m.products.View()
	case OrdersView:
		mainContent = m.orders.View()
	}

	if statusBar != "" {
		return lipgloss.JoinVertical(lipgloss.Left, statusBar, "\n", mainContent)
	}
	return mainContent
}

func displayName(u *constructcycle.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}
