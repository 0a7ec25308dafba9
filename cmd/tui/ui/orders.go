package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/eshaffer321/constructcycle-go/pkg/constructcycle"
)

type ordersLoadedMsg struct {
	orders []*constructcycle.OrderSummary
}

type ordersErrorMsg struct {
	err error
}

type OrdersModel struct {
	client  *constructcycle.Client
	orders  []*constructcycle.OrderSummary
	cursor  int
	loading bool
	err     error
}

func NewOrdersModel(c *constructcycle.Client) *OrdersModel {
	return &OrdersModel{client: c}
}

func (m *OrdersModel) Init() tea.Cmd {
	return nil
}

// Load fetches the buyer's orders
func (m *OrdersModel) Load() tea.Cmd {
	if m.client == nil {
		return nil
	}
	m.loading = true
	m.err = nil
	return myOrdersCmd(m.client)
}

func myOrdersCmd(c *constructcycle.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		page, err := c.Orders.Mine(ctx)
		if err != nil {
			return ordersErrorMsg{err: err}
		}
		return ordersLoadedMsg{orders: page.Results}
	}
}

func (m *OrdersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ordersLoadedMsg:
		m.loading = false
		m.orders = msg.orders
		m.cursor = 0
		return m, nil

	case ordersErrorMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.orders)-1 {
				m.cursor++
			}
		case "r":
			return m, m.Load()
		}
	}
	return m, nil
}

func (m *OrdersModel) View() string {
	var b strings.Builder

	b.WriteString(centered(TitleStyle.Render("MY ORDERS")))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(centered(InfoStyle.Render("Loading orders...")))
	case m.err != nil:
		b.WriteString(centered(ErrorStyle.Render(constructcycle.UserMessage(m.err, "Could not load orders."))))
	case len(m.orders) == 0:
		b.WriteString(centered(InfoStyle.Render("You have not placed any orders.")))
	default:
		for i, o := range m.orders {
			style := ItemStyle
			if i == m.cursor {
				style = SelectedItemStyle
			}
			line := fmt.Sprintf("%-16s %-22s %3d items  %s TL",
				o.OrderNumber, truncate(o.SellerCompanyName, 22), o.ItemCount, o.TotalAmount)
			status := lipgloss.NewStyle().Foreground(statusColor(o.Status)).Render(o.StatusDisplay)
			b.WriteString(style.Render(line) + "  " + status)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(centered(InfoStyle.Render("↑/↓ navigate  •  r refresh  •  esc back")))

	return BoxStyle.Width(76).Render(b.String())
}

func statusColor(status string) lipgloss.Color {
	switch status {
	case constructcycle.OrderStatusDelivered:
		return Success
	case constructcycle.OrderStatusCancelled:
		return Error
	case constructcycle.OrderStatusPending:
		return Warning
	}
	return Secondary
}
