package constructcycle

import (
	"context"
	"io"
)

// AuthService handles account and session operations
type AuthService interface {
	// Register creates an account; a returned token starts a session
	Register(ctx context.Context, params *RegisterParams) (*AuthResponse, error)

	// Login authenticates with email and password
	Login(ctx context.Context, email, password string) (*AuthResponse, error)

	// VerifyEmail submits the emailed verification code
	VerifyEmail(ctx context.Context, email, code string) (*AuthResponse, error)

	// ResendVerification requests a new verification code
	ResendVerification(ctx context.Context, email string) (*StatusResponse, error)

	// Logout clears the local session
	Logout(ctx context.Context) error

	// Revoke deletes the server-side token, then logs out locally
	Revoke(ctx context.Context) error

	// Profile fetches the current user without touching the cache
	Profile(ctx context.Context) (*User, error)

	// UpdateProfile patches the profile and replaces the cached user
	UpdateProfile(ctx context.Context, params *UpdateProfileParams) (*User, error)

	// ChangePassword changes the account password
	ChangePassword(ctx context.Context, params *ChangePasswordParams) (*StatusResponse, error)

	// GetSession returns the stored session
	GetSession(ctx context.Context) (*Session, error)

	// CurrentUser returns the cached profile
	CurrentUser(ctx context.Context) (*User, error)

	// IsLoggedIn reports whether a token is stored
	IsLoggedIn(ctx context.Context) bool
}

// ProductService handles product listings
type ProductService interface {
	// List retrieves active products. Filters become the query string.
	List(ctx context.Context, filters map[string]string) (*Page[ProductSummary], error)

	// Query returns a product query builder
	Query() ProductQueryBuilder

	// Get retrieves a single product
	Get(ctx context.Context, productID int64) (*Product, error)

	// Search matches name, description and tags
	Search(ctx context.Context, query string) (*Page[ProductSummary], error)

	// Mine lists the seller's own products
	Mine(ctx context.Context) (*Page[Product], error)

	// Create lists a new product
	Create(ctx context.Context, params *CreateProductParams) (*Product, error)

	// CreateWithImages lists a new product with photos as a multipart upload
	CreateWithImages(ctx context.Context, params *CreateProductParams, images ...*ImageUpload) (*Product, error)

	// Update patches a product
	Update(ctx context.Context, productID int64, params *UpdateProductParams) (*Product, error)

	// Delete removes a product
	Delete(ctx context.Context, productID int64) error
}

// ProductQueryBuilder builds product list queries
type ProductQueryBuilder interface {
	Page(page int) ProductQueryBuilder
	Category(categoryID int64) ProductQueryBuilder
	City(city string) ProductQueryBuilder
	Condition(condition int) ProductQueryBuilder
	PriceBetween(min, max string) ProductQueryBuilder
	Search(text string) ProductQueryBuilder
	OrderBy(field string) ProductQueryBuilder

	// Filters returns the filters built so far
	Filters() map[string]string

	// Execute runs the query
	Execute(ctx context.Context) (*Page[ProductSummary], error)

	// Stream walks every page from the current one onward
	Stream(ctx context.Context) (<-chan *ProductSummary, <-chan error)
}

// ImageUpload is one product photo for a multipart upload
type ImageUpload struct {
	Name    string
	Content io.Reader
}

// CategoryService handles product categories
type CategoryService interface {
	// List retrieves all categories
	List(ctx context.Context) ([]*Category, error)
}

// CompanyService handles seller companies
type CompanyService interface {
	// Register creates the caller's company
	Register(ctx context.Context, params *CompanyParams) (*Company, error)

	// Mine retrieves the caller's company
	Mine(ctx context.Context) (*Company, error)

	// UpdateMine patches the caller's company
	UpdateMine(ctx context.Context, params *CompanyParams) (*Company, error)

	// Get retrieves a company by ID
	Get(ctx context.Context, companyID int64) (*Company, error)
}

// OrderService handles orders
type OrderService interface {
	// Create places an order
	Create(ctx context.Context, params *CreateOrderParams) (*Order, error)

	// Mine lists the buyer's orders
	Mine(ctx context.Context) (*Page[OrderSummary], error)

	// Sales lists the seller's incoming orders
	Sales(ctx context.Context) (*Page[OrderSummary], error)

	// Get retrieves a single order
	Get(ctx context.Context, orderID int64) (*Order, error)

	// UpdateStatus moves an order to a new status (seller)
	UpdateStatus(ctx context.Context, orderID int64, status, sellerNote string) (*Order, error)

	// Cancel cancels a pending order (buyer)
	Cancel(ctx context.Context, orderID int64) (*CancelOrderResponse, error)
}

// ConversationService handles buyer/seller messaging
type ConversationService interface {
	// List retrieves the caller's conversations
	List(ctx context.Context) (*Page[Conversation], error)

	// Start opens a conversation about a product with a first message
	Start(ctx context.Context, productID int64, messageText string) (*Conversation, error)

	// Get retrieves a conversation with its messages
	Get(ctx context.Context, conversationID int64) (*Conversation, error)

	// SendMessage posts a message to a conversation
	SendMessage(ctx context.Context, conversationID int64, messageText string) (*Message, error)

	// Messages lists the messages of a conversation
	Messages(ctx context.Context, conversationID int64) (*Page[Message], error)

	// MarkRead marks the conversation's messages as read
	MarkRead(ctx context.Context, conversationID int64) error

	// UnreadCount returns the unread message badge
	UnreadCount(ctx context.Context) (*UnreadCount, error)
}

// DashboardService reads the buyer and seller dashboards
type DashboardService interface {
	BuyerStats(ctx context.Context) (*BuyerStats, error)
	SellerStats(ctx context.Context) (*SellerStats, error)
	RecentOrders(ctx context.Context, limit int) ([]*Order, error)
	RecentSales(ctx context.Context, limit int) ([]*Order, error)
}
