package main

import (
	"context"
	"fmt"

	"github.com/eshaffer321/constructcycle-go/pkg/constructcycle"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// marketplaceTools holds the ConstructCycle client and implements all tool handlers
type marketplaceTools struct {
	client *constructcycle.Client
}

// ListProducts tool - lists listings with optional filters
type ListProductsInput struct {
	City      string `json:"city,omitempty" jsonschema:"Filter by city, e.g. İstanbul (optional)"`
	Category  int64  `json:"category,omitempty" jsonschema:"Filter by category ID (optional)"`
	Condition *int   `json:"condition,omitempty" jsonschema:"0 unused, 1 like new, 2 used (optional)"`
	MinPrice  string `json:"minPrice,omitempty" jsonschema:"Minimum sale price (optional)"`
	MaxPrice  string `json:"maxPrice,omitempty" jsonschema:"Maximum sale price (optional)"`
	Search    string `json:"search,omitempty" jsonschema:"Text matched against name, description and tags (optional)"`
	Ordering  string `json:"ordering,omitempty" jsonschema:"Sort field such as sale_price or -created_at (optional)"`
	Page      int    `json:"page,omitempty" jsonschema:"Result page starting at 1 (default: 1)"`
}

type ProductEntry struct {
	ID        int64  `json:"id" jsonschema:"Product ID"`
	Name      string `json:"name" jsonschema:"Product name"`
	Company   string `json:"company" jsonschema:"Seller company name"`
	Category  string `json:"category,omitempty" jsonschema:"Category name"`
	Condition string `json:"condition" jsonschema:"Condition label"`
	Price     string `json:"price" jsonschema:"Sale price in TL"`
	City      string `json:"city" jsonschema:"City"`
	District  string `json:"district,omitempty" jsonschema:"District"`
	Sold      bool   `json:"sold" jsonschema:"Whether the listing is sold"`
}

type ListProductsOutput struct {
	Products []ProductEntry `json:"products" jsonschema:"Listings on this page"`
	Total    int            `json:"total" jsonschema:"Number of listings matching the filters"`
	Page     int            `json:"page" jsonschema:"Page returned"`
	HasMore  bool           `json:"hasMore" jsonschema:"Whether another page exists"`
}

func (t *marketplaceTools) ListProducts(ctx context.Context, req *mcp.CallToolRequest, input ListProductsInput) (*mcp.CallToolResult, ListProductsOutput, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}

	query := t.client.Products.Query().Page(page)
	if input.City != "" {
		query = query.City(input.City)
	}
	if input.Category != 0 {
		query = query.Category(input.Category)
	}
	if input.Condition != nil {
		query = query.Condition(*input.Condition)
	}
	if input.MinPrice != "" || input.MaxPrice != "" {
		query = query.PriceBetween(input.MinPrice, input.MaxPrice)
	}
	if input.Search != "" {
		query = query.Search(input.Search)
	}
	if input.Ordering != "" {
		query = query.OrderBy(input.Ordering)
	}

	result, err := query.Execute(ctx)
	if err != nil {
		return nil, ListProductsOutput{}, fmt.Errorf("failed to list products: %w", err)
	}

	entries := make([]ProductEntry, 0, len(result.Results))
	for _, p := range result.Results {
		entries = append(entries, ProductEntry{
			ID:        p.ID,
			Name:      p.Name,
			Company:   p.CompanyName,
			Category:  p.CategoryName,
			Condition: p.ConditionDisplay,
			Price:     string(p.SalePrice),
			City:      p.City,
			District:  p.District,
			Sold:      p.IsSold,
		})
	}

	return nil, ListProductsOutput{
		Products: entries,
		Total:    result.Count,
		Page:     page,
		HasMore:  result.HasNext(),
	}, nil
}

// GetProduct tool - fetches one listing
type GetProductInput struct {
	ID int64 `json:"id" jsonschema:"Product ID"`
}

type GetProductOutput struct {
	ID             int64    `json:"id" jsonschema:"Product ID"`
	Name           string   `json:"name" jsonschema:"Product name"`
	Description    string   `json:"description" jsonschema:"Listing description"`
	Company        string   `json:"company" jsonschema:"Seller company name"`
	Category       string   `json:"category,omitempty" jsonschema:"Category name"`
	Condition      string   `json:"condition" jsonschema:"Condition label"`
	Price          string   `json:"price" jsonschema:"Sale price in TL"`
	SuggestedPrice string   `json:"suggestedPrice,omitempty" jsonschema:"Suggested market price, if any"`
	Stock          string   `json:"stock" jsonschema:"Quantity in stock"`
	City           string   `json:"city" jsonschema:"City"`
	District       string   `json:"district,omitempty" jsonschema:"District"`
	Tags           []string `json:"tags,omitempty" jsonschema:"Listing tags"`
	Images         []string `json:"images,omitempty" jsonschema:"Image URLs, primary first"`
	DaysListed     int      `json:"daysListed" jsonschema:"Days since the listing was created"`
	Sold           bool     `json:"sold" jsonschema:"Whether the listing is sold"`
}

func (t *marketplaceTools) GetProduct(ctx context.Context, req *mcp.CallToolRequest, input GetProductInput) (*mcp.CallToolResult, GetProductOutput, error) {
	if input.ID <= 0 {
		return nil, GetProductOutput{}, fmt.Errorf("id must be a positive product ID")
	}

	p, err := t.client.Products.Get(ctx, input.ID)
	if err != nil {
		return nil, GetProductOutput{}, fmt.Errorf("failed to fetch product %d: %w", input.ID, err)
	}

	var images []string
	for _, img := range p.Images {
		if img.IsPrimary {
			images = append([]string{img.ImageURL}, images...)
		} else {
			images = append(images, img.ImageURL)
		}
	}

	return nil, GetProductOutput{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Company:       p.CompanyName,
		Category:      p.CategoryName,
		Condition:     p.ConditionDisplay,
		Price:         string(p.SalePrice),
		SuggestedPrice: string(p.AISuggestedPrice),
		Stock:         string(p.StockQuantity),
		City:          p.City,
		District:      p.District,
		Tags:          p.Tags,
		Images:        images,
		DaysListed:    p.DaysListed,
		Sold:          p.IsSold,
	}, nil
}

// ListCategories tool - returns all categories
type ListCategoriesInput struct{}

type CategoryEntry struct {
	ID     int64  `json:"id" jsonschema:"Category ID"`
	Name   string `json:"name" jsonschema:"Category name"`
	Parent string `json:"parent,omitempty" jsonschema:"Parent category name"`
}

type ListCategoriesOutput struct {
	Categories []CategoryEntry `json:"categories" jsonschema:"All categories"`
	Count      int             `json:"count" jsonschema:"Number of categories"`
}

func (t *marketplaceTools) ListCategories(ctx context.Context, req *mcp.CallToolRequest, input ListCategoriesInput) (*mcp.CallToolResult, ListCategoriesOutput, error) {
	categories, err := t.client.Categories.List(ctx)
	if err != nil {
		return nil, ListCategoriesOutput{}, fmt.Errorf("failed to fetch categories: %w", err)
	}

	entries := make([]CategoryEntry, 0, len(categories))
	for _, c := range categories {
		entries = append(entries, CategoryEntry{ID: c.ID, Name: c.Name, Parent: c.ParentName})
	}

	return nil, ListCategoriesOutput{Categories: entries, Count: len(entries)}, nil
}

// MyOrders tool - the buyer's orders
type MyOrdersInput struct{}

type OrderEntry struct {
	ID          int64  `json:"id" jsonschema:"Order ID"`
	OrderNumber string `json:"orderNumber" jsonschema:"Order number"`
	Seller      string `json:"seller" jsonschema:"Seller company name"`
	Status      string `json:"status" jsonschema:"Order status"`
	Total       string `json:"total" jsonschema:"Order total in TL"`
	Items       int    `json:"items" jsonschema:"Number of items"`
	CreatedAt   string `json:"createdAt" jsonschema:"When the order was placed"`
}

type MyOrdersOutput struct {
	Orders []OrderEntry `json:"orders" jsonschema:"Orders, newest first"`
	Count  int          `json:"count" jsonschema:"Number of orders returned"`
}

func (t *marketplaceTools) MyOrders(ctx context.Context, req *mcp.CallToolRequest, input MyOrdersInput) (*mcp.CallToolResult, MyOrdersOutput, error) {
	if !t.client.Auth.IsLoggedIn(ctx) {
		return nil, MyOrdersOutput{}, constructcycle.ErrNotAuthenticated
	}

	page, err := t.client.Orders.Mine(ctx)
	if err != nil {
		return nil, MyOrdersOutput{}, fmt.Errorf("failed to fetch orders: %w", err)
	}

	entries := make([]OrderEntry, 0, len(page.Results))
	for _, o := range page.Results {
		entries = append(entries, OrderEntry{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			Seller:      o.SellerCompanyName,
			Status:      o.Status,
			Total:       string(o.TotalAmount),
			Items:       o.ItemCount,
			CreatedAt:   o.CreatedAt,
		})
	}

	return nil, MyOrdersOutput{Orders: entries, Count: len(entries)}, nil
}

// UnreadCount tool - unread message badge
type UnreadCountInput struct{}

type UnreadCountOutput struct {
	Unread int `json:"unread" jsonschema:"Unread messages across all conversations"`
}

func (t *marketplaceTools) UnreadCount(ctx context.Context, req *mcp.CallToolRequest, input UnreadCountInput) (*mcp.CallToolResult, UnreadCountOutput, error) {
	if !t.client.Auth.IsLoggedIn(ctx) {
		return nil, UnreadCountOutput{}, constructcycle.ErrNotAuthenticated
	}

	count, err := t.client.Conversations.UnreadCount(ctx)
	if err != nil {
		return nil, UnreadCountOutput{}, fmt.Errorf("failed to fetch unread count: %w", err)
	}
	return nil, UnreadCountOutput{Unread: count.TotalUnread}, nil
}
