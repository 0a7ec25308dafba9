package constructcycle

import (
	"bytes"
	"encoding/json"

	"github.com/eshaffer321/constructcycle-go/internal/auth"
	"github.com/eshaffer321/constructcycle-go/internal/session"
	internalTypes "github.com/eshaffer321/constructcycle-go/internal/types"
	"github.com/pkg/errors"
)

// User is the authenticated account profile
type User = internalTypes.User

// Session is the stored token and cached profile
type Session = session.Session

// Auth request and response bodies
type (
	AuthResponse         = auth.Response
	StatusResponse       = auth.StatusResponse
	RegisterParams       = auth.RegisterParams
	UpdateProfileParams  = auth.UpdateProfileParams
	ChangePasswordParams = auth.ChangePasswordParams
)

// User types
const (
	UserTypeBuyer  = internalTypes.UserTypeBuyer
	UserTypeSeller = internalTypes.UserTypeSeller
	UserTypeAdmin  = internalTypes.UserTypeAdmin
)

// Page is a list response. The backend answers list endpoints either with a
// bare array or, when pagination is on, with {count, next, previous, results}.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []*T    `json:"results"`
}

// UnmarshalJSON accepts both list shapes
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []*T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*p = Page[T]{Count: len(items), Results: items}
		return nil
	}

	var decoded struct {
		Count    int     `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
		Results  []*T    `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return err
	}
	*p = Page[T]{
		Count:    decoded.Count,
		Next:     decoded.Next,
		Previous: decoded.Previous,
		Results:  decoded.Results,
	}
	return nil
}

// HasNext reports whether another page exists
func (p *Page[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// Envelope is the {success, message, data} wrapper the dashboard endpoints use
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// unwrap returns Data, or an error when the backend reported failure with 2xx
func (e *Envelope[T]) unwrap() (T, error) {
	if !e.Success {
		var zero T
		msg := e.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return zero, errors.New(msg)
	}
	return e.Data, nil
}

// Category is a product category. Parent is nil for top level categories.
type Category struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Parent       *int64 `json:"parent"`
	ParentName   string `json:"parent_name,omitempty"`
	DisplayOrder int    `json:"display_order"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// Product conditions
const (
	ConditionUnused  = 0
	ConditionLikeNew = 1
	ConditionUsed    = 2
)

// ProductImage is one stored product photo
type ProductImage struct {
	ID           int64  `json:"id"`
	ImageURL     string `json:"image_url"`
	IsPrimary    bool   `json:"is_primary"`
	DisplayOrder int    `json:"display_order"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// Product is the full product record
type Product struct {
	ID               int64           `json:"id"`
	Company          int64           `json:"company"`
	CompanyName      string          `json:"company_name"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Category         *int64          `json:"category"`
	CategoryName     string          `json:"category_name"`
	Condition        int             `json:"condition"`
	ConditionDisplay string          `json:"condition_display"`
	StockQuantity    json.Number     `json:"stock_quantity"`
	SalePrice        json.Number     `json:"sale_price"`
	AISuggestedPrice json.Number     `json:"ai_suggested_price,omitempty"`
	Savings          json.Number     `json:"savings,omitempty"`
	City             string          `json:"city"`
	District         string          `json:"district"`
	Tags             []string        `json:"tags"`
	IsActive         bool            `json:"is_active"`
	IsSold           bool            `json:"is_sold"`
	Images           []*ProductImage `json:"images"`
	DaysListed       int             `json:"days_listed"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
}

// ProductSummary is the compact record list and search endpoints return
type ProductSummary struct {
	ID               int64       `json:"id"`
	Name             string      `json:"name"`
	CompanyName      string      `json:"company_name"`
	CategoryName     string      `json:"category_name"`
	Condition        int         `json:"condition"`
	ConditionDisplay string      `json:"condition_display"`
	SalePrice        json.Number `json:"sale_price"`
	City             string      `json:"city"`
	District         string      `json:"district"`
	PrimaryImage     *string     `json:"primary_image"`
	IsSold           bool        `json:"is_sold"`
	CreatedAt        string      `json:"created_at"`
}

// CreateProductParams is the product listing form
type CreateProductParams struct {
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	Category         int64       `json:"category"`
	Condition        int         `json:"condition"`
	StockQuantity    json.Number `json:"stock_quantity"`
	SalePrice        json.Number `json:"sale_price"`
	AISuggestedPrice json.Number `json:"ai_suggested_price,omitempty"`
	City             string      `json:"city"`
	District         string      `json:"district"`
	Tags             []string    `json:"tags,omitempty"`
}

// UpdateProductParams carries the product fields to change
type UpdateProductParams struct {
	Name          *string      `json:"name,omitempty"`
	Description   *string      `json:"description,omitempty"`
	Category      *int64       `json:"category,omitempty"`
	Condition     *int         `json:"condition,omitempty"`
	StockQuantity *json.Number `json:"stock_quantity,omitempty"`
	SalePrice     *json.Number `json:"sale_price,omitempty"`
	City          *string      `json:"city,omitempty"`
	District      *string      `json:"district,omitempty"`
	Tags          []string     `json:"tags,omitempty"`
	IsActive      *bool        `json:"is_active,omitempty"`
}

// Company is a seller's company
type Company struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"company_name"`
	TaxNumber   string `json:"tax_number"`
	City        string `json:"city"`
	District    string `json:"district"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	IsVerified  bool   `json:"is_verified"`
	OwnerEmail  string `json:"owner_email,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// CompanyParams is the company registration and update form
type CompanyParams struct {
	CompanyName string `json:"company_name,omitempty"`
	TaxNumber   string `json:"tax_number,omitempty"`
	City        string `json:"city,omitempty"`
	District    string `json:"district,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Payment methods
const (
	PaymentCash       = "cash"
	PaymentTransfer   = "transfer"
	PaymentCreditCard = "credit_card"
)

// OrderItem is one line of an order
type OrderItem struct {
	ID               int64       `json:"id"`
	Product          int64       `json:"product"`
	ProductDetails   *Product    `json:"product_details,omitempty"`
	ProductName      string      `json:"product_name"`
	ProductCondition int         `json:"product_condition"`
	Quantity         json.Number `json:"quantity"`
	UnitPrice        json.Number `json:"unit_price"`
	TotalPrice       json.Number `json:"total_price"`
	CreatedAt        string      `json:"created_at,omitempty"`
}

// Order is the full order record
type Order struct {
	ID                   int64        `json:"id"`
	OrderNumber          string       `json:"order_number"`
	Buyer                int64        `json:"buyer"`
	BuyerEmail           string       `json:"buyer_email"`
	BuyerName            string       `json:"buyer_name"`
	SellerCompany        int64        `json:"seller_company"`
	SellerCompanyName    string       `json:"seller_company_name"`
	Status               string       `json:"status"`
	StatusDisplay        string       `json:"status_display"`
	PaymentMethod        string       `json:"payment_method"`
	PaymentMethodDisplay string       `json:"payment_method_display"`
	TotalAmount          json.Number  `json:"total_amount"`
	BuyerNote            string       `json:"buyer_note"`
	SellerNote           string       `json:"seller_note"`
	Items                []*OrderItem `json:"items"`
	CreatedAt            string       `json:"created_at"`
	UpdatedAt            string       `json:"updated_at"`
}

// OrderSummary is the compact record order lists return
type OrderSummary struct {
	ID                int64       `json:"id"`
	OrderNumber       string      `json:"order_number"`
	BuyerEmail        string      `json:"buyer_email"`
	SellerCompanyName string      `json:"seller_company_name"`
	Status            string      `json:"status"`
	StatusDisplay     string      `json:"status_display"`
	TotalAmount       json.Number `json:"total_amount"`
	ItemCount         int         `json:"item_count"`
	CreatedAt         string      `json:"created_at"`
}

// CreateOrderParams places an order for a single product
type CreateOrderParams struct {
	ProductID     int64       `json:"product_id"`
	Quantity      json.Number `json:"quantity"`
	PaymentMethod string      `json:"payment_method"`
	BuyerNote     string      `json:"buyer_note,omitempty"`
}

// CancelOrderResponse is the cancel acknowledgement
type CancelOrderResponse struct {
	Message string `json:"message"`
	Order   *Order `json:"order"`
}

// Participant is the other side of a conversation
type Participant struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	UserType string `json:"user_type"`
}

// Message is one chat message
type Message struct {
	ID           int64   `json:"id"`
	Conversation int64   `json:"conversation"`
	Sender       int64   `json:"sender"`
	SenderEmail  string  `json:"sender_email"`
	SenderName   string  `json:"sender_name"`
	MessageText  string  `json:"message_text"`
	IsRead       bool    `json:"is_read"`
	ReadAt       *string `json:"read_at"`
	IsMine       bool    `json:"is_mine"`
	CreatedAt    string  `json:"created_at"`
}

// Conversation is a buyer/seller thread about one product
type Conversation struct {
	ID              int64        `json:"id"`
	Product         int64        `json:"product"`
	ProductName     string       `json:"product_name,omitempty"`
	ProductImage    *string      `json:"product_image,omitempty"`
	ProductDetails  *Product     `json:"product_details,omitempty"`
	Buyer           int64        `json:"buyer"`
	BuyerDetails    *User        `json:"buyer_details,omitempty"`
	Seller          int64        `json:"seller"`
	SellerDetails   *User        `json:"seller_details,omitempty"`
	IsActive        bool         `json:"is_active"`
	Messages        []*Message   `json:"messages,omitempty"`
	LastMessageText string       `json:"last_message_text"`
	LastMessageTime *string      `json:"last_message_time"`
	UnreadCount     int          `json:"unread_count"`
	OtherUser       *Participant `json:"other_user,omitempty"`
	CreatedAt       string       `json:"created_at"`
	UpdatedAt       string       `json:"updated_at"`
}

// UnreadCount is the unread message badge
type UnreadCount struct {
	TotalUnread int `json:"total_unread"`
}

// BuyerStats are the buyer dashboard counters
type BuyerStats struct {
	TotalOrders    int `json:"total_orders"`
	PendingOrders  int `json:"pending_orders"`
	Favorites      int `json:"favorites"`
	UnreadMessages int `json:"unread_messages"`
}

// SellerStats are the seller dashboard counters
type SellerStats struct {
	TotalProducts int     `json:"total_products"`
	TotalSales    float64 `json:"total_sales"`
	PendingSales  int     `json:"pending_sales"`
	Rating        float64 `json:"rating"`
}
