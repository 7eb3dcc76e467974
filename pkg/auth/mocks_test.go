package auth

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockAccountStore is a mock implementation of AccountStore.
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockAccountStore) FindByID(ctx context.Context, id int64) (*Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockAccountStore) FindByExternalIdentity(ctx context.Context, provider, providerID string) (*Account, error) {
	args := m.Called(ctx, provider, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockAccountStore) Create(ctx context.Context, account *Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountStore) UpdatePasswordHash(ctx context.Context, id int64, hash []byte) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *MockAccountStore) SetVerified(ctx context.Context, email string, verified bool) error {
	args := m.Called(ctx, email, verified)
	return args.Error(0)
}

func (m *MockAccountStore) AddExternalIdentity(ctx context.Context, id int64, identity ExternalIdentity) error {
	args := m.Called(ctx, id, identity)
	return args.Error(0)
}

func (m *MockAccountStore) RemoveExternalIdentity(ctx context.Context, id int64, provider string) error {
	args := m.Called(ctx, id, provider)
	return args.Error(0)
}

// MockMailDelivery is a mock implementation of MailDelivery.
type MockMailDelivery struct {
	mock.Mock
}

func (m *MockMailDelivery) SendPasswordReset(ctx context.Context, to, token string) error {
	args := m.Called(ctx, to, token)
	return args.Error(0)
}

func (m *MockMailDelivery) SendVerification(ctx context.Context, to, token string) error {
	args := m.Called(ctx, to, token)
	return args.Error(0)
}

// MockVerificationStore is a mock implementation of VerificationStore.
type MockVerificationStore struct {
	mock.Mock
}

func (m *MockVerificationStore) Store(ctx context.Context, token, email string, ttl time.Duration) error {
	args := m.Called(ctx, token, email, ttl)
	return args.Error(0)
}

func (m *MockVerificationStore) Consume(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

// MockStrategy is a mock implementation of Strategy.
type MockStrategy struct {
	mock.Mock
	provider string
}

func (m *MockStrategy) Provider() string {
	return m.provider
}

func (m *MockStrategy) AuthURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockStrategy) Exchange(ctx context.Context, code string) (ExternalIdentity, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(ExternalIdentity), args.Error(1)
}
