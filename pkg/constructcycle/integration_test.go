package constructcycle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves the marketplace routes under /api/v1 and records the
// Authorization header and URL of every request it sees.
type fakeBackend struct {
	srv *httptest.Server

	mu       sync.Mutex
	auths    []string
	requests []string
}

func newFakeBackend(t *testing.T, mount func(r chi.Router)) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			fb.mu.Lock()
			fb.auths = append(fb.auths, req.Header.Get("Authorization"))
			fb.requests = append(fb.requests, req.Method+" "+req.URL.RequestURI())
			fb.mu.Unlock()
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/api/v1", mount)

	fb.srv = httptest.NewServer(r)
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) client(t *testing.T, opts *ClientOptions) *Client {
	t.Helper()
	if opts == nil {
		opts = &ClientOptions{}
	}
	opts.BaseURL = fb.srv.URL + "/api/v1"
	client, err := NewClient(opts)
	require.NoError(t, err)
	return client
}

func (fb *fakeBackend) lastAuth() string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.auths[len(fb.auths)-1]
}

func (fb *fakeBackend) lastRequest() string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.requests[len(fb.requests)-1]
}

func respond(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestIntegration_LoginSessionLifecycle(t *testing.T) {
	fb := newFakeBackend(t, func(r chi.Router) {
		r.Post("/auth/login/", func(w http.ResponseWriter, req *http.Request) {
			body, _ := io.ReadAll(req.Body)
			if strings.Contains(string(body), `"password":"wrong"`) {
				respond(w, 401, `{"detail":"invalid"}`)
				return
			}
			respond(w, 200, `{"token":"abc","user":{"id":1}}`)
		})
		r.Get("/auth/profile/", func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("Authorization") != "Token abc" {
				respond(w, 401, `{"detail":"Authentication credentials were not provided."}`)
				return
			}
			respond(w, 200, `{"id":1,"email":"ali@example.com"}`)
		})
	})
	client := fb.client(t, nil)
	ctx := context.Background()

	// Anonymous requests carry no Authorization header
	_, err := client.Auth.Profile(ctx)
	require.Error(t, err)
	assert.Equal(t, "", fb.lastAuth())

	// Failed login surfaces the APIError and stores nothing
	_, err = client.Auth.Login(ctx, "ali@example.com", "wrong")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Equal(t, "invalid", apiErr.Detail())
	assert.False(t, client.Auth.IsLoggedIn(ctx))

	// Successful login stores token and user
	resp, err := client.Auth.Login(ctx, "ali@example.com", "right")
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Token)

	sess, err := client.Auth.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", sess.Token)
	assert.Equal(t, &User{ID: 1}, sess.User)

	// Authenticated requests carry exactly "Token <token>"
	user, err := client.VerifySession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Token abc", fb.lastAuth())
	assert.Equal(t, "ali@example.com", user.Email)

	// Logout twice leaves storage empty without error
	require.NoError(t, client.Auth.Logout(ctx))
	require.NoError(t, client.Auth.Logout(ctx))
	sess, err = client.Auth.GetSession(ctx)
	require.NoError(t, err)
	assert.Empty(t, sess.Token)
	assert.Nil(t, sess.User)
}

func TestIntegration_ProductListQueryString(t *testing.T) {
	fb := newFakeBackend(t, func(r chi.Router) {
		r.Get("/products/", func(w http.ResponseWriter, _ *http.Request) {
			respond(w, 200, `{"count":0,"next":null,"previous":null,"results":[]}`)
		})
	})
	client := fb.client(t, nil)
	ctx := context.Background()

	_, err := client.Products.List(ctx, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "GET /api/v1/products/", fb.lastRequest())

	_, err = client.Products.List(ctx, map[string]string{"city": "X"})
	require.NoError(t, err)
	assert.Equal(t, "GET /api/v1/products/?city=X", fb.lastRequest())
}

func TestIntegration_ConcurrentCallsAreIndependent(t *testing.T) {
	fb := newFakeBackend(t, func(r chi.Router) {
		r.Get("/products/{id}/", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			if id == "13" {
				respond(w, 404, `{"detail":"Bulunamadı."}`)
				return
			}
			// Stagger the answers so responses arrive out of order
			if id == "1" {
				time.Sleep(30 * time.Millisecond)
			}
			respond(w, 200, fmt.Sprintf(`{"id":%s}`, id))
		})
	})
	client := fb.client(t, nil)
	ctx := context.Background()

	ids := []int64{1, 2, 3, 13, 4, 5, 6, 7}
	results := make([]*Product, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			results[i], errs[i] = client.Products.Get(ctx, id)
		}(i, id)
	}
	wg.Wait()

	for i, id := range ids {
		if id == 13 {
			assert.ErrorIs(t, errs[i], ErrNotFound)
			assert.Nil(t, results[i])
			continue
		}
		require.NoError(t, errs[i], "product %d", id)
		assert.Equal(t, id, results[i].ID)
	}
}

func TestIntegration_LogoutOnUnauthorized(t *testing.T) {
	var calls int32
	fb := newFakeBackend(t, func(r chi.Router) {
		r.Get("/orders/my-orders/", func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(&calls, 1)
			respond(w, 401, `{"detail":"Invalid token."}`)
		})
	})
	ctx := context.Background()

	t.Run("opt-in clears the session", func(t *testing.T) {
		nav := &recordingNavigator{}
		client := fb.client(t, &ClientOptions{Token: "stale", LogoutOnUnauthorized: true, Navigator: nav, LoginPath: "/giris/"})

		_, err := client.Orders.Mine(ctx)

		assert.ErrorIs(t, err, ErrNotAuthenticated)
		assert.False(t, client.Auth.IsLoggedIn(ctx))
		assert.Equal(t, []string{"/giris/"}, nav.paths)
	})

	t.Run("default keeps the session", func(t *testing.T) {
		client := fb.client(t, &ClientOptions{Token: "stale"})

		_, err := client.Orders.Mine(ctx)

		assert.ErrorIs(t, err, ErrNotAuthenticated)
		assert.True(t, client.Auth.IsLoggedIn(ctx))
	})

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIntegration_StaleUnauthorizedKeepsNewSession(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fb := newFakeBackend(t, func(r chi.Router) {
		r.Get("/orders/my-orders/", func(w http.ResponseWriter, _ *http.Request) {
			close(started)
			<-release
			respond(w, 401, `{"detail":"Invalid token."}`)
		})
		r.Post("/auth/login/", func(w http.ResponseWriter, _ *http.Request) {
			respond(w, 200, `{"token":"fresh","user":{"id":2}}`)
		})
	})
	nav := &recordingNavigator{}
	client := fb.client(t, &ClientOptions{Token: "old", LogoutOnUnauthorized: true, Navigator: nav})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := client.Orders.Mine(ctx)
		done <- err
	}()

	<-started
	_, err := client.Auth.Login(ctx, "ali@example.com", "right")
	require.NoError(t, err)
	close(release)

	assert.ErrorIs(t, <-done, ErrNotAuthenticated)

	sess, err := client.Auth.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fresh", sess.Token)
	assert.Equal(t, &User{ID: 2}, sess.User)
	assert.Empty(t, nav.paths)
}

func TestIntegration_RejectedSessionRedirectsOnce(t *testing.T) {
	fb := newFakeBackend(t, func(r chi.Router) {
		r.Get("/auth/profile/", func(w http.ResponseWriter, _ *http.Request) {
			respond(w, 401, `{"detail":"Invalid token."}`)
		})
		r.Post("/auth/logout/", func(w http.ResponseWriter, _ *http.Request) {
			respond(w, 401, `{"detail":"Invalid token."}`)
		})
	})
	ctx := context.Background()

	t.Run("verify session", func(t *testing.T) {
		nav := &recordingNavigator{}
		client := fb.client(t, &ClientOptions{Token: "expired", LogoutOnUnauthorized: true, Navigator: nav})

		_, err := client.VerifySession(ctx)

		assert.ErrorIs(t, err, ErrNotAuthenticated)
		assert.False(t, client.Auth.IsLoggedIn(ctx))
		assert.Equal(t, []string{DefaultLoginPath}, nav.paths)
	})

	t.Run("revoke", func(t *testing.T) {
		nav := &recordingNavigator{}
		client := fb.client(t, &ClientOptions{Token: "expired", LogoutOnUnauthorized: true, Navigator: nav})

		err := client.Auth.Revoke(ctx)

		assert.ErrorIs(t, err, ErrNotAuthenticated)
		assert.False(t, client.Auth.IsLoggedIn(ctx))
		assert.Equal(t, []string{DefaultLoginPath}, nav.paths)
	})

	t.Run("revoke without interceptor", func(t *testing.T) {
		nav := &recordingNavigator{}
		client := fb.client(t, &ClientOptions{Token: "expired", Navigator: nav})

		err := client.Auth.Revoke(ctx)

		assert.ErrorIs(t, err, ErrNotAuthenticated)
		assert.False(t, client.Auth.IsLoggedIn(ctx))
		assert.Equal(t, []string{DefaultLoginPath}, nav.paths)
	})
}

func TestIntegration_TruncatedSessionFile(t *testing.T) {
	fb := newFakeBackend(t, func(r chi.Router) {
		r.Post("/auth/login/", func(w http.ResponseWriter, _ *http.Request) {
			respond(w, 200, `{"token":"abc","user":{"id":1}}`)
		})
	})
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"constructcycle_token":"abc"`), 0600))

	nav := &recordingNavigator{}
	client := fb.client(t, &ClientOptions{SessionFile: path, Navigator: nav})
	ctx := context.Background()

	assert.False(t, client.Auth.IsLoggedIn(ctx))
	require.NoError(t, client.Auth.Logout(ctx))
	require.NoError(t, client.Auth.Logout(ctx))
	assert.Equal(t, []string{DefaultLoginPath, DefaultLoginPath}, nav.paths)

	_, err := client.Auth.Login(ctx, "ali@example.com", "right")
	require.NoError(t, err)
	assert.True(t, client.Auth.IsLoggedIn(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"abc"`)
}

func TestIntegration_CallerHTTPClientIsNotModified(t *testing.T) {
	fb := newFakeBackend(t, func(r chi.Router) {})
	shared := &http.Client{Timeout: time.Minute}

	client := fb.client(t, &ClientOptions{HTTPClient: shared, Timeout: 2 * time.Second})

	assert.Equal(t, time.Minute, shared.Timeout)
	assert.Equal(t, 2*time.Second, client.httpClient.Timeout)
	assert.NotSame(t, shared, client.httpClient)
}

func TestIntegration_TransportFailureIsNotAnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL + "/api/v1"
	srv.Close()

	client, err := NewClient(&ClientOptions{BaseURL: baseURL})
	require.NoError(t, err)

	_, err = client.Categories.List(context.Background())

	require.Error(t, err)
	_, isAPIErr := AsAPIError(err)
	assert.False(t, isAPIErr)
	assert.Equal(t, 0, StatusCode(err))
}

func TestIntegration_CreateWithImagesMultipart(t *testing.T) {
	var contentType string
	var names []string
	fb := newFakeBackend(t, func(r chi.Router) {
		r.Post("/products/create/", func(w http.ResponseWriter, req *http.Request) {
			contentType = req.Header.Get("Content-Type")
			if err := req.ParseMultipartForm(1 << 20); err != nil {
				respond(w, 400, `{"detail":"bad form"}`)
				return
			}
			names = append(names, req.FormValue("name"))
			for _, fh := range req.MultipartForm.File["uploaded_images"] {
				names = append(names, fh.Filename)
			}
			respond(w, 201, `{"id":77,"name":"Parke"}`)
		})
	})
	client := fb.client(t, &ClientOptions{Token: "seller"})

	product, err := client.Products.CreateWithImages(context.Background(),
		&CreateProductParams{Name: "Parke", SalePrice: "10"},
		&ImageUpload{Name: "1.jpg", Content: strings.NewReader("jpeg")},
	)

	require.NoError(t, err)
	assert.Equal(t, int64(77), product.ID)
	assert.True(t, strings.HasPrefix(contentType, "multipart/form-data; boundary="))
	assert.Equal(t, []string{"Parke", "1.jpg"}, names)
	assert.Equal(t, "Token seller", fb.lastAuth())
}

func TestIntegration_HTMLErrorPageIsMalformed(t *testing.T) {
	fb := newFakeBackend(t, func(r chi.Router) {
		r.Get("/auth/buyer-dashboard-stats/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "<html><body>Bad Gateway</body></html>")
		})
	})
	client := fb.client(t, &ClientOptions{Token: "abc"})

	stats, err := client.Dashboard.BuyerStats(context.Background())

	assert.Nil(t, stats)
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.True(t, client.Auth.IsLoggedIn(context.Background()))
}
