package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"time"

	"github.com/eshaffer321/constructcycle-go/internal/types"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

const (
	authHeaderKey   = "Authorization"
	requestIDHeader = "X-Request-ID"
	contentTypeKey  = "Content-Type"
	contentType     = "application/json"
)

// TokenSource supplies the auth token for each request. An empty token means
// the request goes out anonymous.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Request describes a single API call. Path is appended to the base URL
// verbatim, so trailing slashes must match the backend routes.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   interface{}
	Form   *Form
}

// Form is a multipart body for uploads
type Form struct {
	Fields map[string][]string
	Files  []File
}

// File is one multipart file part
type File struct {
	Field   string
	Name    string
	Content io.Reader
}

// RESTTransport handles JSON-over-HTTP communication with the backend
type RESTTransport struct {
	baseURL        string
	httpClient     *http.Client
	retryClient    *retryablehttp.Client
	headers        map[string]string
	tokens         TokenSource
	logger         types.Logger
	hooks          *types.Hooks
	onUnauthorized UnauthorizedHandler
}

// NewRESTTransport creates a new REST transport
func NewRESTTransport(opts *Options) *RESTTransport {
	if opts == nil {
		opts = &Options{}
	}

	// Set defaults
	if opts.BaseURL == "" {
		opts.BaseURL = types.DefaultBaseURL
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: types.DefaultTimeout,
		}
	}

	// Retries are opt-in; without a config every call is a single attempt
	var retryClient *retryablehttp.Client
	if opts.RetryConfig != nil {
		retryClient = retryablehttp.NewClient()
		retryClient.HTTPClient = opts.HTTPClient
		retryClient.RetryMax = opts.RetryConfig.MaxRetries
		retryClient.RetryWaitMin = opts.RetryConfig.RetryWait
		retryClient.RetryWaitMax = opts.RetryConfig.MaxWait
		retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
		retryClient.Logger = nil

		if opts.Logger != nil {
			retryClient.Logger = &retryLogger{logger: opts.Logger}
		}
	}

	headers := map[string]string{
		"Accept":       contentType,
		"User-Agent":   types.UserAgent,
		contentTypeKey: contentType,
	}

	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &RESTTransport{
		baseURL:        opts.BaseURL,
		httpClient:     opts.HTTPClient,
		retryClient:    retryClient,
		headers:        headers,
		tokens:         opts.Tokens,
		logger:         opts.Logger,
		hooks:          opts.Hooks,
		onUnauthorized: opts.OnUnauthorized,
	}
}

// SetTokenSource replaces the token source
func (t *RESTTransport) SetTokenSource(tokens TokenSource) {
	t.tokens = tokens
}

// UnauthorizedHandler runs when a request that carried token is answered
// with 401. The token may no longer be the current one by the time it runs.
type UnauthorizedHandler func(ctx context.Context, token string, apiErr *types.APIError)

// SetUnauthorizedHandler installs fn to run when a request that carried a
// token is answered with 401. Passing nil removes it.
func (t *RESTTransport) SetUnauthorizedHandler(fn UnauthorizedHandler) {
	t.onUnauthorized = fn
}

// Do performs req and decodes a successful body into result. Non-2xx
// responses return *types.APIError; transport failures are returned wrapped.
func (t *RESTTransport) Do(ctx context.Context, req *Request, result interface{}) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	body, bodyType, err := encodeBody(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, t.baseURL+req.Path, body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	// Set headers
	for k, v := range t.headers {
		httpReq.Header.Set(k, v)
	}
	if bodyType != "" {
		httpReq.Header.Set(contentTypeKey, bodyType)
	}

	// Set auth header
	var token string
	if t.tokens != nil {
		token, err = t.tokens.Token(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to read session token")
		}
	}
	if token != "" {
		httpReq.Header.Set(authHeaderKey, fmt.Sprintf("Token %s", token))
	}

	requestID := uuid.NewString()
	httpReq.Header.Set(requestIDHeader, requestID)

	// Caller headers win over defaults
	for k, values := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}

	// Call request hook
	if t.hooks != nil && t.hooks.OnRequest != nil {
		t.hooks.OnRequest(ctx, httpReq)
	}

	if t.logger != nil {
		t.logger.Debug("API request", "method", method, "path", req.Path, "request_id", requestID, "authenticated", token != "")
	}

	// Execute request
	start := time.Now()
	resp, err := t.doRequest(httpReq)
	duration := time.Since(start)

	if err != nil {
		if t.logger != nil {
			t.logger.Error("API request failed", "method", method, "path", req.Path, "request_id", requestID, "error", err)
		}
		if t.hooks != nil && t.hooks.OnError != nil {
			t.hooks.OnError(ctx, err)
		}
		return errors.Wrapf(err, "%s %s", method, req.Path)
	}
	defer resp.Body.Close()

	// Call response hook
	if t.hooks != nil && t.hooks.OnResponse != nil {
		t.hooks.OnResponse(ctx, resp, duration)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if t.logger != nil {
			t.logger.Error("Failed to read response", "method", method, "path", req.Path, "request_id", requestID, "error", err)
		}
		return errors.Wrap(err, "failed to read response")
	}

	if t.logger != nil {
		t.logger.Debug("API response", "status", resp.StatusCode, "duration", duration, "size", len(respBody), "request_id", requestID)
	}

	// The backend answers errors with JSON too, so parse before checking status
	data, err := parseJSON(respBody)
	if err != nil {
		if t.logger != nil {
			t.logger.Error("Malformed response", "method", method, "path", req.Path, "status", resp.StatusCode, "request_id", requestID)
		}
		return errors.Wrapf(types.ErrMalformedResponse, "%s %s returned %d: %v", method, req.Path, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &types.APIError{
			StatusCode: resp.StatusCode,
			Data:       data,
			Method:     method,
			Path:       req.Path,
		}

		if t.logger != nil && resp.StatusCode >= 500 {
			t.logger.Warn("API server error", "method", method, "path", req.Path, "status", resp.StatusCode, "request_id", requestID)
		}

		if resp.StatusCode == http.StatusUnauthorized && token != "" && t.onUnauthorized != nil {
			t.onUnauthorized(ctx, token, apiErr)
		}

		if t.hooks != nil && t.hooks.OnError != nil {
			t.hooks.OnError(ctx, apiErr)
		}
		return apiErr
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return errors.Wrap(err, "failed to unmarshal result")
		}
	}

	return nil
}

// Get issues a GET request
func (t *RESTTransport) Get(ctx context.Context, path string, result interface{}) error {
	return t.Do(ctx, &Request{Method: http.MethodGet, Path: path}, result)
}

// Post issues a POST request with a JSON body. A nil body sends no body.
func (t *RESTTransport) Post(ctx context.Context, path string, body, result interface{}) error {
	return t.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body}, result)
}

// Put issues a PUT request with a JSON body
func (t *RESTTransport) Put(ctx context.Context, path string, body, result interface{}) error {
	return t.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body}, result)
}

// Patch issues a PATCH request with a JSON body
func (t *RESTTransport) Patch(ctx context.Context, path string, body, result interface{}) error {
	return t.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body}, result)
}

// Delete issues a DELETE request
func (t *RESTTransport) Delete(ctx context.Context, path string, result interface{}) error {
	return t.Do(ctx, &Request{Method: http.MethodDelete, Path: path}, result)
}

// Upload issues a multipart POST request
func (t *RESTTransport) Upload(ctx context.Context, path string, form *Form, result interface{}) error {
	if form == nil {
		form = &Form{}
	}
	return t.Do(ctx, &Request{Method: http.MethodPost, Path: path, Form: form}, result)
}

// doRequest executes the HTTP request with retry if configured
func (t *RESTTransport) doRequest(req *http.Request) (*http.Response, error) {
	if t.retryClient != nil {
		retryReq, err := retryablehttp.FromRequest(req)
		if err != nil {
			return nil, err
		}
		return t.retryClient.Do(retryReq)
	}
	return t.httpClient.Do(req)
}

// encodeBody returns the request body and, for multipart, its content type
func encodeBody(req *Request) (io.Reader, string, error) {
	if req.Form != nil {
		if req.Body != nil {
			return nil, "", errors.New("request cannot carry both a JSON body and a form")
		}
		return encodeForm(req.Form)
	}

	if req.Body == nil {
		return nil, "", nil
	}

	body, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to marshal request")
	}
	return bytes.NewReader(body), "", nil
}

func encodeForm(form *Form) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(form.Fields))
	for k := range form.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, v := range form.Fields[k] {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", errors.Wrapf(err, "failed to write form field %s", k)
			}
		}
	}

	for _, f := range form.Files {
		part, err := w.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return nil, "", errors.Wrapf(err, "failed to create form file %s", f.Name)
		}
		if f.Content != nil {
			if _, err := io.Copy(part, f.Content); err != nil {
				return nil, "", errors.Wrapf(err, "failed to copy form file %s", f.Name)
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "failed to close multipart writer")
	}
	return &buf, w.FormDataContentType(), nil
}

// parseJSON validates body as JSON. An empty body parses as no value.
func parseJSON(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		return nil, errors.New("body is not valid JSON")
	}
	return json.RawMessage(trimmed), nil
}

// Options for REST transport
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Headers        map[string]string
	RetryConfig    *types.RetryConfig
	Logger         types.Logger
	Hooks          *types.Hooks
	Tokens         TokenSource
	OnUnauthorized UnauthorizedHandler
}

// retryLogger adapts our logger to retryablehttp
type retryLogger struct {
	logger types.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}
