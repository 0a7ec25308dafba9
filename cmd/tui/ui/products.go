package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/eshaffer321/constructcycle-go/pkg/constructcycle"
)

type productsLoadedMsg struct {
	page   int
	result *constructcycle.Page[constructcycle.ProductSummary]
}

type productsErrorMsg struct {
	err error
}

type ProductsModel struct {
	client  *constructcycle.Client
	items   []*constructcycle.ProductSummary
	page    int
	total   int
	hasNext bool
	cursor  int
	loading bool
	err     error
}

func NewProductsModel(c *constructcycle.Client) *ProductsModel {
	return &ProductsModel{client: c, page: 1}
}

func (m *ProductsModel) Init() tea.Cmd {
	return nil
}

// Load fetches the current page
func (m *ProductsModel) Load() tea.Cmd {
	if m.client == nil {
		return nil
	}
	m.loading = true
	m.err = nil
	return listProductsCmd(m.client, m.page)
}

func listProductsCmd(c *constructcycle.Client, page int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		result, err := c.Products.Query().Page(page).OrderBy("-created_at").Execute(ctx)
		if err != nil {
			return productsErrorMsg{err: err}
		}
		return productsLoadedMsg{page: page, result: result}
	}
}

func (m *ProductsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case productsLoadedMsg:
		m.loading = false
		m.page = msg.page
		m.items = msg.result.Results
		m.total = msg.result.Count
		m.hasNext = msg.result.HasNext()
		m.cursor = 0
		return m, nil

	case productsErrorMsg:
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
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "n", "right":
			if m.hasNext {
				m.page++
				return m, m.Load()
			}
		case "p", "left":
			if m.page > 1 {
				m.page--
				return m, m.Load()
			}
		case "r":
			return m, m.Load()
		}
	}
	return m, nil
}

func (m *ProductsModel) View() string {
	var b strings.Builder

	b.WriteString(centered(TitleStyle.Render(fmt.Sprintf("PRODUCTS  page %d", m.page))))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(centered(InfoStyle.Render("Loading products...")))
	case m.err != nil:
		b.WriteString(centered(ErrorStyle.Render(constructcycle.UserMessage(m.err, "Could not load products."))))
	case len(m.items) == 0:
		b.WriteString(centered(InfoStyle.Render("No products listed yet.")))
	default:
		for i, p := range m.items {
			b.WriteString(productCard(p, i == m.cursor))
			b.WriteString("\n")
		}
		b.WriteString(centered(InfoStyle.Render(fmt.Sprintf("%d products in total", m.total))))
	}

	b.WriteString("\n\n")
	b.WriteString(centered(InfoStyle.Render("↑/↓ navigate  •  n/p page  •  r refresh  •  esc back")))

	return BoxStyle.Width(76).Render(b.String())
}

func productCard(p *constructcycle.ProductSummary, selected bool) string {
	border := Muted
	if selected {
		border = Accent
	}

	name := lipgloss.NewStyle().Foreground(Text).Bold(true).Render(truncate(p.Name, 40))
	price := PriceStyle.Render(string(p.SalePrice) + " TL")
	where := InfoStyle.Render(strings.Trim(p.City+" / "+p.District, " /"))
	meta := InfoStyle.Render(p.ConditionDisplay + "  •  " + p.CompanyName)

	if p.IsSold {
		price = ErrorStyle.Render("SOLD")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(70).
		Render(lipgloss.JoinVertical(lipgloss.Left, name+"  "+price, where, meta))
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
