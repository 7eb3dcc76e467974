package auth

import (
	"context"
	"time"
)

// Account is the stored account record. PasswordHash is nil for accounts
// that only sign in through an external identity.
type Account struct {
	ID           int64
	Email        string
	PasswordHash []byte
	Nickname     string
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Identities   []ExternalIdentity
}

// ExternalIdentity links an account to a third-party login method.
type ExternalIdentity struct {
	Provider   string
	ProviderID string
	Email      string
}

// HasPassword reports whether the account can authenticate with a password.
func (a *Account) HasPassword() bool {
	return len(a.PasswordHash) > 0
}

// Identity returns the linked identity for the given provider, if any.
func (a *Account) Identity(provider string) (ExternalIdentity, bool) {
	for _, id := range a.Identities {
		if id.Provider == provider {
			return id, true
		}
	}
	return ExternalIdentity{}, false
}

// AccountView is the caller-facing account shape. It never carries the
// password hash, only whether one exists.
type AccountView struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Nickname    string    `json:"nickname"`
	Verified    bool      `json:"verified"`
	HasPassword bool      `json:"hasPassword"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// View strips the account down to its caller-facing shape.
func (a *Account) View() AccountView {
	return AccountView{
		ID:          a.ID,
		Email:       a.Email,
		Nickname:    a.Nickname,
		Verified:    a.Verified,
		HasPassword: a.HasPassword(),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// ProviderConnection describes one provider slot in a profile: whether an
// identity is linked and, if so, the provider-side email.
type ProviderConnection struct {
	Provider  string `json:"provider"`
	Connected bool   `json:"connected"`
	Email     string `json:"oauthEmail,omitempty"`
}

// Connections reports the account's link status across the closed provider
// set, in registry order.
func (a *Account) Connections() []ProviderConnection {
	conns := make([]ProviderConnection, 0, len(Providers))
	for _, p := range Providers {
		conn := ProviderConnection{Provider: p}
		if id, ok := a.Identity(p); ok {
			conn.Connected = true
			conn.Email = id.Email
		}
		conns = append(conns, conn)
	}
	return conns
}

// AccountStore is the relational store collaborator. Implementations own
// all durability and concurrency control; this core never caches records.
// Lookup misses are reported as ErrAccountNotFound, duplicate emails or
// identities as ErrAccountConflict.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
	FindByExternalIdentity(ctx context.Context, provider, providerID string) (*Account, error)

	// Create persists a new account (with any pre-attached identities)
	// and fills in ID and timestamps.
	Create(ctx context.Context, account *Account) error
	Delete(ctx context.Context, id int64) error

	UpdatePasswordHash(ctx context.Context, id int64, hash []byte) error
	SetVerified(ctx context.Context, email string, verified bool) error

	AddExternalIdentity(ctx context.Context, id int64, identity ExternalIdentity) error
	RemoveExternalIdentity(ctx context.Context, id int64, provider string) error
}
