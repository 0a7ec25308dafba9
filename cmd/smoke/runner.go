package main

import (
	"context"
	"fmt"
	"time"

	"github.com/eshaffer321/constructcycle-go/pkg/constructcycle"
	"github.com/pkg/errors"
)

// Result is the outcome of one check
type Result struct {
	Check      string        `json:"check"`
	Passed     bool          `json:"passed"`
	Skipped    bool          `json:"skipped,omitempty"`
	Summary    string        `json:"summary,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Report is the full smoke run
type Report struct {
	Timestamp     time.Time `json:"timestamp"`
	BaseURL       string    `json:"base_url"`
	Authenticated bool      `json:"authenticated"`
	Total         int       `json:"total"`
	Passed        int       `json:"passed"`
	Failed        int       `json:"failed"`
	Skipped       int       `json:"skipped"`
	Results       []Result  `json:"results"`
}

type check struct {
	name     string
	needAuth bool
	run      func(ctx context.Context, c *constructcycle.Client) (string, error)
}

var errUnknownCheck = errors.New("unknown check")

// checks are read-only: nothing here creates, changes or deletes data
var checks = []check{
	{"categories", false, func(ctx context.Context, c *constructcycle.Client) (string, error) {
		cats, err := c.Categories.List(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d categories", len(cats)), nil
	}},
	{"products", false, func(ctx context.Context, c *constructcycle.Client) (string, error) {
		page, err := c.Products.List(ctx, nil)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d of %d products", len(page.Results), page.Count), nil
	}},
	{"product_detail", false, func(ctx context.Context, c *constructcycle.Client) (string, error) {
		page, err := c.Products.Query().Page(1).Execute(ctx)
		if err != nil {
			return "", err
		}
		if len(page.Results) == 0 {
			return "no products to fetch", nil
		}
		p, err := c.Products.Get(ctx, page.Results[0].ID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("product %d with %d images", p.ID, len(p.Images)), nil
	}},
	{"product_search", false, func(ctx context.Context, c *constructcycle.Client) (string, error) {
		page, err := c.Products.Search(ctx, "beton")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d matches", len(page.Results)), nil
	}},
	{"profile", true, func(ctx context.Context, c *constructcycle.Client) (string, error) {
		u, err := c.VerifySession(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("user %d (%s)", u.ID, u.UserType), nil
	}},
	{"my_orders", true, func(ctx context.Context, c *constructcycle.Client) (string, error) {
		page, err := c.Orders.Mine(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d orders", len(page.Results)), nil
	}},
	{"conversations", true, func(ctx context.Context, c *constructcycle.Client) (string, error) {
		page, err := c.Conversations.List(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d conversations", len(page.Results)), nil
	}},
	{"unread_count", true, func(ctx context.Context, c *constructcycle.Client) (string, error) {
		n, err := c.Conversations.UnreadCount(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d unread", n.TotalUnread), nil
	}},
	{"buyer_stats", true, func(ctx context.Context, c *constructcycle.Client) (string, error) {
		s, err := c.Dashboard.BuyerStats(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d orders in total", s.TotalOrders), nil
	}},
}

// Runner executes checks against one client
type Runner struct {
	client  *constructcycle.Client
	verbose bool
}

// NewRunner creates a new runner
func NewRunner(client *constructcycle.Client, verbose bool) *Runner {
	return &Runner{client: client, verbose: verbose}
}

// Run executes the named checks in order, or every check when names is
// empty. Account checks are skipped without a session.
func (r *Runner) Run(ctx context.Context, names []string) *Report {
	report := &Report{
		Timestamp:     time.Now(),
		BaseURL:       r.client.BaseURL(),
		Authenticated: r.client.Auth.IsLoggedIn(ctx),
		Results:       make([]Result, 0),
	}

	selected := checks
	if len(names) > 0 {
		selected = make([]check, 0, len(names))
		for _, name := range names {
			selected = append(selected, lookup(name))
		}
	}

	for _, c := range selected {
		if r.verbose {
			fmt.Printf("Checking %s...\n", c.name)
		}

		result := r.runCheck(ctx, c, report.Authenticated)
		report.Results = append(report.Results, result)

		switch {
		case result.Skipped:
			report.Skipped++
		case result.Passed:
			report.Passed++
		default:
			report.Failed++
		}
	}

	report.Total = len(report.Results)
	return report
}

func (r *Runner) runCheck(ctx context.Context, c check, authenticated bool) Result {
	result := Result{Check: c.name}

	if c.needAuth && !authenticated {
		result.Skipped = true
		result.Summary = "needs a session"
		return result
	}

	start := time.Now()
	summary, err := c.run(ctx, r.client)
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = err.Error()
		result.StatusCode = constructcycle.StatusCode(err)
		return result
	}

	result.Passed = true
	result.Summary = summary
	return result
}

func lookup(name string) check {
	for _, c := range checks {
		if c.name == name {
			return c
		}
	}
	return check{name: name, run: func(context.Context, *constructcycle.Client) (string, error) {
		return "", errUnknownCheck
	}}
}
