package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/eshaffer321/constructcycle-go/pkg/constructcycle"
	"github.com/pkg/errors"
)

type loginSuccessMsg struct {
	user *constructcycle.User
}

type loginErrorMsg struct {
	err error
}

type LoginModel struct {
	emailInput    string
	passwordInput string
	focusedInput  int
	loading       bool
	err           error
	client        *constructcycle.Client
}

func NewLoginModel(c *constructcycle.Client) *LoginModel {
	return &LoginModel{client: c}
}

func (m *LoginModel) Init() tea.Cmd {
	return nil
}

// Reset clears the form after a logout
func (m *LoginModel) Reset() {
	m.passwordInput = ""
	m.focusedInput = 0
	m.loading = false
	m.err = nil
}

func loginCmd(c *constructcycle.Client, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := c.Auth.Login(ctx, email, password)
		if err != nil {
			return loginErrorMsg{err: err}
		}
		if resp.Token == "" {
			// 200 without a token: the backend refused with a message
			msg := resp.Message
			if msg == "" {
				msg = "Login failed."
			}
			return loginErrorMsg{err: errors.New(msg)}
		}
		return loginSuccessMsg{user: resp.User}
	}
}

// loginErrorMessage maps a failed login to the line shown under the form
func loginErrorMessage(err error) string {
	apiErr, ok := constructcycle.AsAPIError(err)
	if !ok {
		return err.Error()
	}

	switch apiErr.StatusCode {
	case 401:
		return "Wrong email or password."
	case 403:
		if strings.Contains(apiErr.Message(), "doğrulan") {
			return "Your email address is not verified yet."
		}
		if d := apiErr.Detail(); d != "" {
			return d
		}
		if msg := apiErr.Message(); msg != "" {
			return msg
		}
		return "You are not allowed to log in."
	case 429:
		return "Too many attempts. Wait a moment and try again."
	}
	return apiErr.UserMessage("Something went wrong while logging in.")
}

func (m *LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginErrorMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		switch msg.String() {
		case "tab", "shift+tab":
			m.focusedInput = (m.focusedInput + 1) % 2
		case "enter":
			if m.emailInput == "" || !strings.Contains(m.emailInput, "@") {
				m.err = fmt.Errorf("enter a valid email address")
				return m, nil
			}
			if m.passwordInput == "" {
				m.err = fmt.Errorf("password cannot be empty")
				return m, nil
			}
			if m.client == nil {
				m.err = fmt.Errorf("client not configured")
				return m, nil
			}
			m.loading = true
			m.err = nil
			return m, loginCmd(m.client, m.emailInput, m.passwordInput)
		case "backspace":
			if m.focusedInput == 0 && len(m.emailInput) > 0 {
				m.emailInput = trimLastRune(m.emailInput)
			} else if m.focusedInput == 1 && len(m.passwordInput) > 0 {
				m.passwordInput = trimLastRune(m.passwordInput)
			}
		case "ctrl+l":
			m.emailInput = ""
			m.passwordInput = ""
			m.err = nil
		default:
			if msg.Type == tea.KeyRunes {
				if m.focusedInput == 0 {
					m.emailInput += string(msg.Runes)
				} else {
					m.passwordInput += string(msg.Runes)
				}
			}
		}
	}
	return m, nil
}

func trimLastRune(s string) string {
	r := []rune(s)
	return string(r[:len(r)-1])
}

func (m *LoginModel) View() string {
	var b strings.Builder

	title := lipgloss.NewStyle().Foreground(Primary).Bold(true).Render("CONSTRUCTCYCLE LOGIN")
	subtitle := lipgloss.NewStyle().Foreground(Muted).Render("Sign in to browse listings and track your orders.")

	b.WriteString(lipgloss.NewStyle().Width(80).Align(lipgloss.Center).MarginTop(1).Render(title))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(80).Align(lipgloss.Center).MarginBottom(2).Render(subtitle))
	b.WriteString("\n\n")

	b.WriteString(centered(m.field("Email:", m.emailInput, 0)))
	b.WriteString("\n\n")
	b.WriteString(centered(m.field("Password:", strings.Repeat("•", len([]rune(m.passwordInput))), 1)))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(centered(InfoStyle.Render("Logging in...")))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(centered(ErrorStyle.Render(loginErrorMessage(m.err))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centered(InfoStyle.Render("tab switch  •  enter login  •  ctrl+l clear  •  ctrl+c quit")))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary).
		Padding(1, 4).
		Width(76).
		Render(b.String())
}

func (m *LoginModel) field(label, value string, index int) string {
	style := InputStyle
	if m.focusedInput == index {
		style = FocusedInputStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, LabelStyle.Render(label), style.Width(50).Render(value))
}
