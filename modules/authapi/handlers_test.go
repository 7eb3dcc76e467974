package authapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/careerpin/backend/pkg/auth"
)

type mockAccountStore struct {
	mock.Mock
}

func (m *mockAccountStore) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Account), args.Error(1)
}

func (m *mockAccountStore) FindByID(ctx context.Context, id int64) (*auth.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Account), args.Error(1)
}

func (m *mockAccountStore) FindByExternalIdentity(ctx context.Context, provider, providerID string) (*auth.Account, error) {
	args := m.Called(ctx, provider, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Account), args.Error(1)
}

func (m *mockAccountStore) Create(ctx context.Context, account *auth.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *mockAccountStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAccountStore) UpdatePasswordHash(ctx context.Context, id int64, hash []byte) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *mockAccountStore) SetVerified(ctx context.Context, email string, verified bool) error {
	return m.Called(ctx, email, verified).Error(0)
}

func (m *mockAccountStore) AddExternalIdentity(ctx context.Context, id int64, identity auth.ExternalIdentity) error {
	return m.Called(ctx, id, identity).Error(0)
}

func (m *mockAccountStore) RemoveExternalIdentity(ctx context.Context, id int64, provider string) error {
	return m.Called(ctx, id, provider).Error(0)
}

type mockStrategy struct {
	mock.Mock
	provider string
}

func (m *mockStrategy) Provider() string { return m.provider }

func (m *mockStrategy) AuthURL(state string) string {
	return m.Called(state).String(0)
}

func (m *mockStrategy) Exchange(ctx context.Context, code string) (auth.ExternalIdentity, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(auth.ExternalIdentity), args.Error(1)
}

type fixture struct {
	store    *mockAccountStore
	strategy *mockStrategy
	codec    *auth.TokenCodec
	router   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	codec, err := auth.NewTokenCodec(auth.TokenConfig{
		Secret:         "handler-test-primary-secret",
		ResetSecret:    "handler-test-reset-secret",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	store := &mockAccountStore{}
	strategy := &mockStrategy{provider: auth.ProviderGoogle}

	registry, err := auth.NewRegistry(strategy)
	require.NoError(t, err)

	passwords := auth.NewPasswords(store, auth.WithBcryptCost(bcrypt.MinCost))
	service := auth.NewService(store, codec, passwords)
	dispatcher := auth.NewDispatcher(registry, codec)

	module := New(service, dispatcher, passwords, codec, store)
	return &fixture{
		store:    store,
		strategy: strategy,
		codec:    codec,
		router:   module.Router(),
	}
}

func (f *fixture) authHeaderFor(t *testing.T, account *auth.Account) string {
	t.Helper()
	token, err := f.codec.IssueAccess(account)
	require.NoError(t, err)
	return "Bearer " + token
}

func hashOf(t *testing.T, password string) []byte {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("success returns token and user", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.store.On("FindByEmail", mock.Anything, "a@x.com").Return(&auth.Account{
			ID: 1, Email: "a@x.com", Nickname: "otter1", PasswordHash: hashOf(t, "pw1"),
		}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/login",
			strings.NewReader(`{"email":"a@x.com","password":"pw1"}`))
		f.router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			AccessToken string `json:"accessToken"`
			User        struct {
				ID    int64  `json:"id"`
				Email string `json:"email"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.NotEmpty(t, body.AccessToken)
		assert.Equal(t, "a@x.com", body.User.Email)
		assert.NotContains(t, w.Body.String(), "passwordHash")
	})

	t.Run("unknown email is forbidden, not enumerable", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.store.On("FindByEmail", mock.Anything, "ghost@x.com").Return(nil, auth.ErrAccountNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/login",
			strings.NewReader(`{"email":"ghost@x.com","password":"pw1"}`))
		f.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.store.On("FindByEmail", mock.Anything, "a@x.com").Return(&auth.Account{
			ID: 1, Email: "a@x.com", PasswordHash: hashOf(t, "pw1"),
		}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/login",
			strings.NewReader(`{"email":"a@x.com","password":"nope"}`))
		f.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields are a bad request", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@x.com"}`))
		f.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("duplicate email conflicts", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.store.On("FindByEmail", mock.Anything, "dup@x.com").Return(&auth.Account{ID: 1}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/register",
			strings.NewReader(`{"email":"dup@x.com","password":"pw1"}`))
		f.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("creates the account", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.store.On("FindByEmail", mock.Anything, "new@x.com").Return(nil, auth.ErrAccountNotFound)
		f.store.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*auth.Account).ID = 7
		}).Return(nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/register",
			strings.NewReader(`{"email":"new@x.com","password":"pw1"}`))
		f.router.ServeHTTP(w, r)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"id":7`)
	})
}

func TestOAuthEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("unknown provider is a bad request before any exchange", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/oauth/github/callback?code=abc", nil)
		f.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.strategy.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything)
	})

	t.Run("begin redirects to the provider", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.strategy.On("AuthURL", "").Return("https://accounts.google.com/o/oauth2/auth?client_id=x")

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/oauth/google", nil)
		f.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Contains(t, w.Header().Get("Location"), "accounts.google.com")
	})

	t.Run("callback logs in an existing identity", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		identity := auth.ExternalIdentity{Provider: auth.ProviderGoogle, ProviderID: "g-1", Email: "a@x.com"}
		f.strategy.On("Exchange", mock.Anything, "code-1").Return(identity, nil)
		f.store.On("FindByExternalIdentity", mock.Anything, auth.ProviderGoogle, "g-1").Return(&auth.Account{
			ID: 1, Email: "a@x.com", Nickname: "otter1",
			Identities: []auth.ExternalIdentity{identity},
		}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/oauth/google/callback?code=code-1", nil)
		f.router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "accessToken")
	})

	t.Run("connect issues a link state for the session account", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		account := &auth.Account{ID: 3, Email: "a@x.com", PasswordHash: []byte("h")}
		f.store.On("FindByID", mock.Anything, int64(3)).Return(account, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/oauth/google/connect", nil)
		r.Header.Set("Authorization", f.authHeaderFor(t, account))
		f.router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			State string `json:"state"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

		claims, err := f.codec.VerifyLinkState(body.State)
		require.NoError(t, err)
		assert.Equal(t, int64(3), claims.UserID)
		assert.Equal(t, auth.ProviderGoogle, claims.Provider)
	})

	t.Run("disconnecting the only sign-in method is forbidden", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		account := &auth.Account{
			ID: 3, Email: "a@x.com",
			Identities: []auth.ExternalIdentity{{Provider: auth.ProviderGoogle, ProviderID: "g-1"}},
		}
		f.store.On("FindByID", mock.Anything, int64(3)).Return(account, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/oauth/google", nil)
		r.Header.Set("Authorization", f.authHeaderFor(t, account))
		f.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestPasswordResetEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("confirm with a forged token is unauthorized", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/password-reset/confirm",
			strings.NewReader(`{"token":"garbage","newPassword":"brand-new"}`))
		f.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("confirm with a valid token updates the password", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		account := &auth.Account{ID: 1, Email: "a@x.com", PasswordHash: hashOf(t, "old")}
		f.store.On("FindByEmail", mock.Anything, "a@x.com").Return(account, nil)
		f.store.On("FindByID", mock.Anything, int64(1)).Return(account, nil)
		f.store.On("UpdatePasswordHash", mock.Anything, int64(1), mock.Anything).Return(nil)

		token, err := f.codec.IssuePasswordReset("a@x.com")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/password-reset/confirm",
			strings.NewReader(`{"token":"`+token+`","newPassword":"brand-new"}`))
		f.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		f.store.AssertExpectations(t)
	})

	t.Run("an access token cannot confirm a reset", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		token, err := f.codec.IssueAccess(&auth.Account{ID: 1, Email: "a@x.com"})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/password-reset/confirm",
			strings.NewReader(`{"token":"`+token+`","newPassword":"brand-new"}`))
		f.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestProtectedEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("me requires a token", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		f.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("me returns the profile with connections", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		account := &auth.Account{
			ID: 1, Email: "a@x.com", Nickname: "otter1", PasswordHash: []byte("h"),
			Identities: []auth.ExternalIdentity{{Provider: auth.ProviderKakao, ProviderID: "k-1"}},
		}
		f.store.On("FindByID", mock.Anything, int64(1)).Return(account, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r.Header.Set("Authorization", f.authHeaderFor(t, account))
		f.router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"oauthConnections"`)
		assert.Contains(t, w.Body.String(), `"kakao"`)
	})

	t.Run("password change verifies the current password", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		account := &auth.Account{ID: 1, Email: "a@x.com", PasswordHash: hashOf(t, "old")}
		f.store.On("FindByID", mock.Anything, int64(1)).Return(account, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/password",
			strings.NewReader(`{"currentPassword":"wrong","newPassword":"brand-new"}`))
		r.Header.Set("Authorization", f.authHeaderFor(t, account))
		f.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("account deletion re-authenticates", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		account := &auth.Account{ID: 1, Email: "a@x.com", PasswordHash: hashOf(t, "pw1")}
		f.store.On("FindByID", mock.Anything, int64(1)).Return(account, nil)
		f.store.On("Delete", mock.Anything, int64(1)).Return(nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/account",
			strings.NewReader(`{"email":"a@x.com","password":"pw1"}`))
		r.Header.Set("Authorization", f.authHeaderFor(t, account))
		f.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		f.store.AssertExpectations(t)
	})
}
