package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type menuChoice int

const (
	menuNone menuChoice = iota
	menuProducts
	menuOrders
	menuLogout
	menuQuit
)

var menuItems = []struct {
	label  string
	choice menuChoice
}{
	{"Browse products", menuProducts},
	{"My orders", menuOrders},
	{"Log out", menuLogout},
	{"Quit", menuQuit},
}

type MenuModel struct {
	cursor   int
	selected menuChoice
}

func NewMenuModel() *MenuModel {
	return &MenuModel{}
}

func (m *MenuModel) Init() tea.Cmd {
	return nil
}

// Take returns the pending selection and clears it
func (m *MenuModel) Take() menuChoice {
	c := m.selected
	m.selected = menuNone
	return c
}

func (m *MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(menuItems)-1 {
				m.cursor++
			}
		case "enter", " ":
			m.selected = menuItems[m.cursor].choice
		case "q":
			m.selected = menuQuit
		}
	}
	return m, nil
}

func (m *MenuModel) View() string {
	var b strings.Builder

	b.WriteString(centered(TitleStyle.Render("MAIN MENU")))
	b.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.cursor {
			b.WriteString(SelectedItemStyle.Render("▸ " + item.label))
		} else {
			b.WriteString(ItemStyle.Render("  " + item.label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centered(InfoStyle.Render("↑/↓ navigate  •  enter select  •  q quit")))

	return BoxStyle.Width(76).Render(b.String())
}
