package constructcycle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eshaffer321/constructcycle-go/internal/auth"
	"github.com/eshaffer321/constructcycle-go/internal/session"
	"github.com/eshaffer321/constructcycle-go/internal/transport"
	internalTypes "github.com/eshaffer321/constructcycle-go/internal/types"
	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the default ConstructCycle API base URL
	DefaultBaseURL = internalTypes.DefaultBaseURL

	// UserAgent is the user agent string
	UserAgent = internalTypes.UserAgent

	// DefaultLoginPath is where logout navigates
	DefaultLoginPath = internalTypes.DefaultLoginPath
)

// Client is the main ConstructCycle API client. Build one with NewClient and
// share it; every method is safe for concurrent use.
type Client struct {
	// Service interfaces
	Auth          AuthService
	Products      ProductService
	Categories    CategoryService
	Companies     CompanyService
	Orders        OrderService
	Conversations ConversationService
	Dashboard     DashboardService

	// Internal fields
	baseURL    string
	httpClient *http.Client
	transport  Transport
	options    *ClientOptions
	store      *session.Store
	auth       *auth.Service
}

// ClientOptions configures the client
type ClientOptions struct {
	// BaseURL overrides the default API base URL
	BaseURL string

	// HTTPClient allows using a custom HTTP client
	HTTPClient *http.Client

	// Timeout sets the HTTP client timeout. Zero leaves deadlines to the
	// caller's context.
	Timeout time.Duration

	// Token starts the client with a known auth token
	Token string

	// Storage holds the session. Defaults to a FileStorage when SessionFile
	// is set, otherwise to memory.
	Storage Storage

	// SessionFile path for session persistence
	SessionFile string

	// StorageKeys overrides the token and user key names
	StorageKeys StorageKeys

	// Logger for debug logging
	Logger Logger

	// RetryConfig enables retries. Nil means a single attempt per call.
	RetryConfig *internalTypes.RetryConfig

	// RateLimiter for rate limiting
	RateLimiter RateLimiter

	// RequestsPerSecond builds a token bucket limiter when RateLimiter is nil
	RequestsPerSecond float64

	// Hooks for observability
	Hooks *internalTypes.Hooks

	// SentryDSN enables Sentry error tracking when set
	SentryDSN string

	// SentryOptions allows custom Sentry configuration
	SentryOptions *sentry.ClientOptions

	// LogoutOnUnauthorized clears the session when a request that carried a
	// token is answered with 401
	LogoutOnUnauthorized bool

	// Navigator is told where to go after logout
	Navigator Navigator

	// LoginPath is the logout destination, DefaultLoginPath when empty
	LoginPath string
}

// Logger interface for logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// RateLimiter interface for rate limiting
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Navigator receives the login path after logout
type Navigator interface {
	Navigate(path string)
}

// Transport handles HTTP communication
type Transport interface {
	Do(ctx context.Context, req *transport.Request, result interface{}) error
}

// NewClient creates a new ConstructCycle client
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = &ClientOptions{}
	}

	// Initialize Sentry if DSN is provided
	if opts.SentryDSN != "" || opts.SentryOptions != nil {
		sentryOpts := sentry.ClientOptions{}
		if opts.SentryOptions != nil {
			sentryOpts = *opts.SentryOptions
		}
		if opts.SentryDSN != "" {
			sentryOpts.Dsn = opts.SentryDSN
		}
		if sentryOpts.Environment == "" {
			sentryOpts.Environment = "production"
		}

		// A broken DSN must not stop the client from working
		if err := sentry.Init(sentryOpts); err != nil && opts.Logger != nil {
			opts.Logger.Error("Failed to initialize Sentry", "error", err)
		}
	}

	// Set defaults
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: internalTypes.DefaultTimeout,
		}
	}

	if opts.Timeout > 0 {
		httpClient := *opts.HTTPClient
		httpClient.Timeout = opts.Timeout
		opts.HTTPClient = &httpClient
	}

	if opts.RateLimiter == nil && opts.RequestsPerSecond > 0 {
		opts.RateLimiter = NewRateLimiter(opts.RequestsPerSecond)
	}

	storage := opts.Storage
	if storage == nil {
		if opts.SessionFile != "" {
			fileStorage := NewFileStorage(opts.SessionFile)
			fileStorage.SetLogger(opts.Logger)
			storage = fileStorage
		} else {
			storage = NewMemoryStorage()
		}
	}

	store := session.NewStore(storage, opts.StorageKeys, opts.Logger)

	if opts.Token != "" {
		if err := store.SetSession(context.Background(), opts.Token, nil); err != nil {
			return nil, errors.Wrap(err, "failed to store token")
		}
	}

	trans := transport.NewRESTTransport(&transport.Options{
		BaseURL:     opts.BaseURL,
		HTTPClient:  opts.HTTPClient,
		RetryConfig: opts.RetryConfig,
		Logger:      opts.Logger,
		Hooks:       opts.Hooks,
		Tokens:      store,
	})

	c := &Client{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		transport:  trans,
		options:    opts,
		store:      store,
	}

	// Initialize services
	c.initServices()

	if opts.LogoutOnUnauthorized {
		trans.SetUnauthorizedHandler(c.handleUnauthorized)
	}

	return c, nil
}

// NewClientWithToken creates a client with an auth token
func NewClientWithToken(token string) (*Client, error) {
	return NewClient(&ClientOptions{
		Token: token,
	})
}

// initServices initializes all service implementations
func (c *Client) initServices() {
	if c.options == nil {
		c.options = &ClientOptions{}
	}
	if c.store == nil {
		c.store = session.NewStore(NewMemoryStorage(), c.options.StorageKeys, c.options.Logger)
	}

	c.auth = auth.NewService(&clientDoer{client: c}, c.store, c.options.Logger)
	if c.options.Navigator != nil {
		c.auth.SetNavigator(c.options.Navigator, c.options.LoginPath)
	}

	c.Auth = c.auth
	c.Products = &productService{client: c}
	c.Categories = &categoryService{client: c}
	c.Companies = &companyService{client: c}
	c.Orders = &orderService{client: c}
	c.Conversations = &conversationService{client: c}
	c.Dashboard = &dashboardService{client: c}
}

// SetToken stores token as the session token and drops the cached profile
func (c *Client) SetToken(ctx context.Context, token string) error {
	return c.store.SetSession(ctx, token, nil)
}

// BaseURL returns the API base URL requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET request for an endpoint without a typed wrapper
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, &transport.Request{Method: http.MethodGet, Path: path}, result)
}

// Post issues a POST request with a JSON body
func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, &transport.Request{Method: http.MethodPost, Path: path, Body: body}, result)
}

// Put issues a PUT request with a JSON body
func (c *Client) Put(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, &transport.Request{Method: http.MethodPut, Path: path, Body: body}, result)
}

// Patch issues a PATCH request with a JSON body
func (c *Client) Patch(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, &transport.Request{Method: http.MethodPatch, Path: path, Body: body}, result)
}

// Delete issues a DELETE request
func (c *Client) Delete(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, &transport.Request{Method: http.MethodDelete, Path: path}, result)
}

// Upload issues a multipart POST. Fields repeat for multi-valued keys.
func (c *Client) Upload(ctx context.Context, path string, fields map[string][]string, files []UploadFile, result interface{}) error {
	form := &transport.Form{Fields: fields}
	for _, f := range files {
		form.Files = append(form.Files, transport.File{Field: f.Field, Name: f.Name, Content: f.Content})
	}
	return c.do(ctx, &transport.Request{Method: http.MethodPost, Path: path, Form: form}, result)
}

// do runs a request through the rate limiter and reports unexpected
// failures to Sentry
func (c *Client) do(ctx context.Context, req *transport.Request, result interface{}) error {
	// Rate limiting
	if c.options.RateLimiter != nil {
		if err := c.options.RateLimiter.Wait(ctx); err != nil {
			return errors.Wrap(err, "rate limiter")
		}
	}

	start := time.Now()
	err := c.transport.Do(ctx, req, result)
	duration := time.Since(start)

	if err != nil && shouldCapture(ctx, err) {
		capture := func(hub *sentry.Hub) {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("http.method", req.Method)
				scope.SetTag("http.path", req.Path)
				scope.SetContext("request", map[string]interface{}{
					"method":   req.Method,
					"path":     req.Path,
					"duration": duration.String(),
				})

				var apiErr *APIError
				if errors.As(err, &apiErr) {
					scope.SetTag("http.status", fmt.Sprintf("%d", apiErr.StatusCode))
				}
				hub.CaptureException(err)
			})
		}

		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			capture(hub)
		} else {
			capture(sentry.CurrentHub())
		}
	}

	return err
}

// shouldCapture keeps expected outcomes out of Sentry: 4xx answers are part
// of normal use and cancellation is the caller's choice.
func shouldCapture(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return true
}

// handleUnauthorized ends the session a 401 was answered for. Requests still
// in flight from before a logout or re-login carry a stale token; their 401s
// leave the current session alone.
func (c *Client) handleUnauthorized(ctx context.Context, token string, apiErr *internalTypes.APIError) {
	loggedOut, err := c.auth.LogoutIfCurrent(ctx, token)
	if err != nil {
		if c.options.Logger != nil {
			c.options.Logger.Error("Failed to clear rejected session", "error", err)
		}
		return
	}
	if loggedOut && c.options.Logger != nil {
		c.options.Logger.Warn("Session rejected, logged out", "path", apiErr.Path)
	}
}

// Close flushes any pending Sentry events and performs cleanup
func (c *Client) Close() {
	// Flush Sentry events with a 2 second timeout
	sentry.Flush(2 * time.Second)
}

// UploadFile is one file part of an Upload
type UploadFile struct {
	Field   string
	Name    string
	Content io.Reader
}

// NewRateLimiter returns a token bucket limiter allowing rps requests per
// second with a burst of one second's worth.
func NewRateLimiter(rps float64) RateLimiter {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// clientDoer routes auth calls through the client's rate limiting and
// error capture
type clientDoer struct {
	client *Client
}

func (d *clientDoer) Do(ctx context.Context, req *transport.Request, result interface{}) error {
	return d.client.do(ctx, req, result)
}
