package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/eshaffer321/constructcycle-go/internal/session"
	"github.com/eshaffer321/constructcycle-go/internal/transport"
	"github.com/eshaffer321/constructcycle-go/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockDoer answers with a canned JSON body or error
type mockDoer struct {
	mock.Mock
}

func (m *mockDoer) Do(ctx context.Context, req *transport.Request, result interface{}) error {
	args := m.Called(ctx, req, result)

	if args.Get(0) != nil && result != nil {
		if err := json.Unmarshal([]byte(args.Get(0).(string)), result); err != nil {
			return err
		}
	}

	return args.Error(1)
}

type recordingNavigator struct {
	paths []string
}

func (n *recordingNavigator) Navigate(path string) {
	n.paths = append(n.paths, path)
}

func route(method, path string) interface{} {
	return mock.MatchedBy(func(req *transport.Request) bool {
		return req.Method == method && req.Path == path
	})
}

func newTestService() (*Service, *mockDoer, *session.Store) {
	doer := new(mockDoer)
	store := session.NewStore(session.NewMemoryStorage(), session.Keys{}, nil)
	return NewService(doer, store, nil), doer, store
}

func TestService_LoginStoresSession(t *testing.T) {
	svc, doer, store := newTestService()
	ctx := context.Background()

	doer.On("Do", mock.Anything, mock.MatchedBy(func(req *transport.Request) bool {
		body := req.Body.(map[string]interface{})
		return req.Method == http.MethodPost &&
			req.Path == "/auth/login/" &&
			body["email"] == "ali@example.com" &&
			body["password"] == "s3cret"
	}), mock.Anything).Return(`{"token":"abc","user":{"id":1}}`, nil)

	resp, err := svc.Login(ctx, "ali@example.com", "s3cret")

	require.NoError(t, err)
	assert.Equal(t, "abc", resp.Token)
	assert.Equal(t, &types.User{ID: 1}, resp.User)

	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	user, err := store.User(ctx)
	require.NoError(t, err)
	assert.Equal(t, &types.User{ID: 1}, user)

	doer.AssertExpectations(t)
}

func TestService_LoginFailureLeavesStore(t *testing.T) {
	svc, doer, store := newTestService()
	ctx := context.Background()
	require.NoError(t, store.SetSession(ctx, "previous", &types.User{ID: 3}))

	apiErr := &types.APIError{StatusCode: 401, Data: json.RawMessage(`{"detail":"invalid"}`)}
	doer.On("Do", mock.Anything, route(http.MethodPost, "/auth/login/"), mock.Anything).Return(nil, apiErr)

	resp, err := svc.Login(ctx, "a@b.c", "wrong")

	assert.Nil(t, resp)
	var got *types.APIError
	require.True(t, errors.As(err, &got))
	assert.Same(t, apiErr, got)
	assert.Equal(t, "invalid", got.Detail())

	token, _ := store.Token(ctx)
	assert.Equal(t, "previous", token)
}

func TestService_LoginWithoutTokenDoesNotStore(t *testing.T) {
	svc, doer, store := newTestService()
	ctx := context.Background()

	doer.On("Do", mock.Anything, route(http.MethodPost, "/auth/login/"), mock.Anything).
		Return(`{"success":false,"message":"Email doğrulanmadı"}`, nil)

	resp, err := svc.Login(ctx, "a@b.c", "pw")

	require.NoError(t, err)
	assert.Empty(t, resp.Token)
	assert.False(t, store.IsLoggedIn(ctx))
}

func TestService_RegisterPendingVerification(t *testing.T) {
	svc, doer, store := newTestService()
	ctx := context.Background()

	doer.On("Do", mock.Anything, mock.MatchedBy(func(req *transport.Request) bool {
		p, ok := req.Body.(*RegisterParams)
		return ok && req.Path == "/auth/register/" && p.UserType == types.UserTypeBuyer && p.PasswordConfirm == "pw12345678"
	}), mock.Anything).Return(`{"success":true,"message":"Doğrulama kodu gönderildi"}`, nil)

	resp, err := svc.Register(ctx, &RegisterParams{
		FirstName:       "Ali",
		LastName:        "Veli",
		Email:           "ali@example.com",
		Password:        "pw12345678",
		PasswordConfirm: "pw12345678",
		UserType:        types.UserTypeBuyer,
	})

	require.NoError(t, err)
	require.NotNil(t, resp.Success)
	assert.True(t, *resp.Success)
	assert.False(t, store.IsLoggedIn(ctx))
}

func TestService_RegisterWithToken(t *testing.T) {
	svc, doer, store := newTestService()
	ctx := context.Background()

	doer.On("Do", mock.Anything, route(http.MethodPost, "/auth/register/"), mock.Anything).
		Return(`{"token":"new","user":{"id":8,"email":"n@example.com"}}`, nil)

	_, err := svc.Register(ctx, &RegisterParams{Email: "n@example.com"})
	require.NoError(t, err)

	token, _ := store.Token(ctx)
	assert.Equal(t, "new", token)
}

func TestService_VerifyEmailStartsSession(t *testing.T) {
	svc, doer, store := newTestService()
	ctx := context.Background()

	doer.On("Do", mock.Anything, mock.MatchedBy(func(req *transport.Request) bool {
		body := req.Body.(map[string]interface{})
		return req.Path == "/auth/verify-email/" && body["code"] == "123456"
	}), mock.Anything).Return(`{"success":true,"token":"verified","user":{"id":4,"is_email_verified":true}}`, nil)

	resp, err := svc.VerifyEmail(ctx, "a@b.c", "123456")
	require.NoError(t, err)
	assert.True(t, resp.User.IsEmailVerified)

	user, err := store.User(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), user.ID)
}

func TestService_ResendVerification(t *testing.T) {
	svc, doer, _ := newTestService()

	doer.On("Do", mock.Anything, route(http.MethodPost, "/auth/resend-verification/"), mock.Anything).
		Return(`{"success":true,"message":"Yeni kod gönderildi"}`, nil)

	resp, err := svc.ResendVerification(context.Background(), "a@b.c")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Yeni kod gönderildi", resp.Message)
}

func TestService_LogoutIsIdempotent(t *testing.T) {
	svc, _, store := newTestService()
	ctx := context.Background()
	nav := &recordingNavigator{}
	svc.SetNavigator(nav, "")

	require.NoError(t, store.SetSession(ctx, "tok", &types.User{ID: 1}))

	assert.NoError(t, svc.Logout(ctx))
	assert.False(t, store.IsLoggedIn(ctx))

	assert.NoError(t, svc.Logout(ctx))
	assert.False(t, store.IsLoggedIn(ctx))

	user, err := store.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Equal(t, []string{"/login/", "/login/"}, nav.paths)
}

func TestService_LogoutCustomLoginPath(t *testing.T) {
	svc, _, _ := newTestService()
	nav := &recordingNavigator{}
	svc.SetNavigator(nav, "/login.html")

	require.NoError(t, svc.Logout(context.Background()))
	assert.Equal(t, []string{"/login.html"}, nav.paths)
}

func TestService_LogoutIfCurrent(t *testing.T) {
	svc, _, store := newTestService()
	nav := &recordingNavigator{}
	svc.SetNavigator(nav, "")
	ctx := context.Background()
	require.NoError(t, store.SetSession(ctx, "fresh", &types.User{ID: 2}))

	loggedOut, err := svc.LogoutIfCurrent(ctx, "old")
	require.NoError(t, err)
	assert.False(t, loggedOut)
	assert.True(t, store.IsLoggedIn(ctx))
	assert.Empty(t, nav.paths)

	loggedOut, err = svc.LogoutIfCurrent(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, loggedOut)
	assert.False(t, store.IsLoggedIn(ctx))
	assert.Equal(t, []string{"/login/"}, nav.paths)
}

func TestService_RevokeClearsEvenWhenBackendFails(t *testing.T) {
	svc, doer, store := newTestService()
	ctx := context.Background()
	require.NoError(t, store.SetSession(ctx, "tok", nil))

	doer.On("Do", mock.Anything, route(http.MethodPost, "/auth/logout/"), mock.Anything).
		Return(nil, &types.APIError{StatusCode: 401})

	err := svc.Revoke(ctx)

	assert.True(t, errors.Is(err, types.ErrNotAuthenticated))
	assert.False(t, store.IsLoggedIn(ctx))
}

func TestService_ProfileDoesNotTouchCache(t *testing.T) {
	svc, doer, store := newTestService()
	ctx := context.Background()
	cached := &types.User{ID: 1, FirstName: "Old"}
	require.NoError(t, store.SetSession(ctx, "tok", cached))

	doer.On("Do", mock.Anything, route(http.MethodGet, "/auth/profile/"), mock.Anything).
		Return(`{"id":1,"first_name":"New"}`, nil).Once()

	user, err := svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New", user.FirstName)

	stillCached, _ := store.User(ctx)
	assert.Equal(t, cached, stillCached)

	doer.On("Do", mock.Anything, route(http.MethodGet, "/auth/profile/"), mock.Anything).
		Return(nil, &types.APIError{StatusCode: 401}).Once()

	_, err = svc.Profile(ctx)
	assert.Error(t, err)
	assert.True(t, store.IsLoggedIn(ctx), "profile failure must not log out")
}

func TestService_UpdateProfileReplacesCache(t *testing.T) {
	svc, doer, store := newTestService()
	ctx := context.Background()
	require.NoError(t, store.SetSession(ctx, "tok", &types.User{ID: 1, FirstName: "Old", Phone: "5551112233"}))

	first := "Yeni"
	doer.On("Do", mock.Anything, mock.MatchedBy(func(req *transport.Request) bool {
		p, ok := req.Body.(*UpdateProfileParams)
		return ok && req.Method == http.MethodPatch && req.Path == "/auth/profile/" && *p.FirstName == "Yeni"
	}), mock.Anything).Return(`{"id":1,"first_name":"Yeni"}`, nil)

	user, err := svc.UpdateProfile(ctx, &UpdateProfileParams{FirstName: &first})
	require.NoError(t, err)

	cached, _ := store.User(ctx)
	assert.Equal(t, user, cached)
	assert.Empty(t, cached.Phone, "response replaces the cache in full")
}

func TestService_ChangePasswordIsPassthrough(t *testing.T) {
	svc, doer, store := newTestService()
	ctx := context.Background()
	require.NoError(t, store.SetSession(ctx, "tok", &types.User{ID: 1}))

	doer.On("Do", mock.Anything, route(http.MethodPost, "/auth/change-password/"), mock.Anything).
		Return(`{"success":true,"message":"Şifre başarıyla değiştirildi."}`, nil)

	resp, err := svc.ChangePassword(ctx, &ChangePasswordParams{OldPassword: "a", NewPassword: "b", NewPasswordConfirm: "b"})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	token, _ := store.Token(ctx)
	assert.Equal(t, "tok", token)
}
