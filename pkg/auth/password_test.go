package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt.MinCost keeps hashing fast in tests.
func hashFor(t *testing.T, password string) []byte {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func TestPasswords_Validate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("true for correct password", func(t *testing.T) {
		t.Parallel()

		store := &MockAccountStore{}
		store.On("FindByEmail", mock.Anything, "a@x.com").Return(&Account{
			ID: 1, Email: "a@x.com", PasswordHash: hashFor(t, "pw1"),
		}, nil)

		p := NewPasswords(store)
		assert.True(t, p.Validate(ctx, "a@x.com", "pw1"))
	})

	t.Run("false for wrong password", func(t *testing.T) {
		t.Parallel()

		store := &MockAccountStore{}
		store.On("FindByEmail", mock.Anything, "a@x.com").Return(&Account{
			ID: 1, Email: "a@x.com", PasswordHash: hashFor(t, "pw1"),
		}, nil)

		p := NewPasswords(store)
		assert.False(t, p.Validate(ctx, "a@x.com", "pw2"))
	})

	t.Run("false for unknown account, never errors", func(t *testing.T) {
		t.Parallel()

		store := &MockAccountStore{}
		store.On("FindByEmail", mock.Anything, "ghost@x.com").Return(nil, ErrAccountNotFound)

		p := NewPasswords(store)
		assert.False(t, p.Validate(ctx, "ghost@x.com", "anything"))
	})

	t.Run("false for oauth-only account", func(t *testing.T) {
		t.Parallel()

		store := &MockAccountStore{}
		store.On("FindByEmail", mock.Anything, "oauth@x.com").Return(&Account{
			ID: 2, Email: "oauth@x.com",
			Identities: []ExternalIdentity{{Provider: ProviderGoogle, ProviderID: "g-1"}},
		}, nil)

		p := NewPasswords(store)
		assert.False(t, p.Validate(ctx, "oauth@x.com", "anything"))
	})

	t.Run("normalizes email before lookup", func(t *testing.T) {
		t.Parallel()

		store := &MockAccountStore{}
		store.On("FindByEmail", mock.Anything, "a@x.com").Return(&Account{
			ID: 1, Email: "a@x.com", PasswordHash: hashFor(t, "pw1"),
		}, nil)

		p := NewPasswords(store)
		assert.True(t, p.Validate(ctx, "  A@X.COM ", "pw1"))
		store.AssertExpectations(t)
	})
}

func TestPasswords_Change(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("verifies supplied current password", func(t *testing.T) {
		t.Parallel()

		store := &MockAccountStore{}
		store.On("FindByID", mock.Anything, int64(1)).Return(&Account{
			ID: 1, Email: "a@x.com", PasswordHash: hashFor(t, "old"),
		}, nil)
		store.On("UpdatePasswordHash", mock.Anything, int64(1), mock.AnythingOfType("[]uint8")).Return(nil)

		p := NewPasswords(store, WithBcryptCost(bcrypt.MinCost))
		require.NoError(t, p.Change(ctx, 1, "old", "new-password"))
		store.AssertExpectations(t)
	})

	t.Run("rejects wrong current password", func(t *testing.T) {
		t.Parallel()

		store := &MockAccountStore{}
		store.On("FindByID", mock.Anything, int64(1)).Return(&Account{
			ID: 1, Email: "a@x.com", PasswordHash: hashFor(t, "old"),
		}, nil)

		p := NewPasswords(store, WithBcryptCost(bcrypt.MinCost))
		err := p.Change(ctx, 1, "wrong", "new-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		store.AssertNotCalled(t, "UpdatePasswordHash", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("allows first password without current", func(t *testing.T) {
		t.Parallel()

		store := &MockAccountStore{}
		store.On("FindByID", mock.Anything, int64(2)).Return(&Account{
			ID: 2, Email: "oauth@x.com",
			Identities: []ExternalIdentity{{Provider: ProviderKakao, ProviderID: "k-1"}},
		}, nil)
		store.On("UpdatePasswordHash", mock.Anything, int64(2), mock.AnythingOfType("[]uint8")).Return(nil)

		p := NewPasswords(store, WithBcryptCost(bcrypt.MinCost))
		require.NoError(t, p.Change(ctx, 2, "", "first-password"))
		store.AssertExpectations(t)
	})

	t.Run("unknown account surfaces not found", func(t *testing.T) {
		t.Parallel()

		store := &MockAccountStore{}
		store.On("FindByID", mock.Anything, int64(99)).Return(nil, ErrAccountNotFound)

		p := NewPasswords(store)
		assert.ErrorIs(t, p.Change(ctx, 99, "", "x"), ErrAccountNotFound)
	})
}

func TestPasswords_Verify(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("distinguishes password-less accounts", func(t *testing.T) {
		t.Parallel()

		store := &MockAccountStore{}
		store.On("FindByID", mock.Anything, int64(2)).Return(&Account{ID: 2, Email: "oauth@x.com"}, nil)

		p := NewPasswords(store)
		_, err := p.Verify(ctx, 2, "anything")
		assert.ErrorIs(t, err, ErrPasswordNotSet)
	})

	t.Run("returns match result", func(t *testing.T) {
		t.Parallel()

		store := &MockAccountStore{}
		store.On("FindByID", mock.Anything, int64(1)).Return(&Account{
			ID: 1, Email: "a@x.com", PasswordHash: hashFor(t, "pw1"),
		}, nil)

		p := NewPasswords(store)

		ok, err := p.Verify(ctx, 1, "pw1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = p.Verify(ctx, 1, "pw2")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestPasswords_DeleteAccount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	account := func(t *testing.T) *Account {
		return &Account{ID: 1, Email: "a@x.com", PasswordHash: hashFor(t, "pw1")}
	}

	t.Run("deletes after full re-authentication", func(t *testing.T) {
		t.Parallel()

		store := &MockAccountStore{}
		store.On("FindByID", mock.Anything, int64(1)).Return(account(t), nil)
		store.On("Delete", mock.Anything, int64(1)).Return(nil)

		p := NewPasswords(store)
		require.NoError(t, p.DeleteAccount(ctx, 1, "a@x.com", "pw1"))
		store.AssertExpectations(t)
	})

	t.Run("rejects email mismatch", func(t *testing.T) {
		t.Parallel()

		store := &MockAccountStore{}
		store.On("FindByID", mock.Anything, int64(1)).Return(account(t), nil)

		p := NewPasswords(store)
		assert.ErrorIs(t, p.DeleteAccount(ctx, 1, "other@x.com", "pw1"), ErrInvalidCredentials)
		store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		t.Parallel()

		store := &MockAccountStore{}
		store.On("FindByID", mock.Anything, int64(1)).Return(account(t), nil)

		p := NewPasswords(store)
		assert.ErrorIs(t, p.DeleteAccount(ctx, 1, "a@x.com", "pw2"), ErrInvalidCredentials)
	})

	t.Run("always requires a stored password", func(t *testing.T) {
		t.Parallel()

		store := &MockAccountStore{}
		store.On("FindByID", mock.Anything, int64(2)).Return(&Account{ID: 2, Email: "oauth@x.com"}, nil)

		p := NewPasswords(store)
		assert.ErrorIs(t, p.DeleteAccount(ctx, 2, "oauth@x.com", ""), ErrPasswordNotSet)
	})
}
