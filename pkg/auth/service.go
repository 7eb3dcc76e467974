package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/careerpin/backend/pkg/logger"
	"github.com/careerpin/backend/pkg/randomname"
	"github.com/careerpin/backend/pkg/sanitizer"
)

// VerificationTTL bounds how long an unconsumed email-verification token
// stays valid server-side.
const VerificationTTL = 24 * time.Hour

// MailDelivery is the outbound email collaborator. Delivery is
// fire-and-forget from this core's perspective.
type MailDelivery interface {
	SendPasswordReset(ctx context.Context, to, token string) error
	SendVerification(ctx context.Context, to, token string) error
}

// VerificationStore keeps opaque email-verification tokens server-side.
// These follow a possession-only trust model: the token is a random
// string, validated by a single lookup and consumed exactly once.
type VerificationStore interface {
	Store(ctx context.Context, token, email string, ttl time.Duration) error
	// Consume returns the email stored for the token and removes it
	// atomically; a second call with the same token fails.
	Consume(ctx context.Context, token string) (string, error)
}

// LoginResult is the success payload of every login path: a bearer access
// token plus the sanitized account view.
type LoginResult struct {
	AccessToken string      `json:"accessToken"`
	Account     AccountView `json:"user"`
}

// ProfileView extends the account view with per-provider link status.
type ProfileView struct {
	AccountView
	OAuthConnections []ProviderConnection `json:"oauthConnections"`
}

// Service is the authentication orchestrator. It ties the token codec,
// credential validator and store together; all operations are stateless
// and request-scoped.
type Service struct {
	store        AccountStore
	codec        *TokenCodec
	passwords    *Passwords
	mail         MailDelivery
	verification VerificationStore
	log          *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets a custom logger.
func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// WithMailDelivery wires the outbound email collaborator. Without it,
// reset and verification flows fail rather than silently dropping mail.
func WithMailDelivery(mail MailDelivery) ServiceOption {
	return func(s *Service) {
		s.mail = mail
	}
}

// WithVerificationStore wires the server-side verification token store.
func WithVerificationStore(store VerificationStore) ServiceOption {
	return func(s *Service) {
		s.verification = store
	}
}

// NewService creates the orchestrator.
func NewService(store AccountStore, codec *TokenCodec, passwords *Passwords, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		codec:     codec,
		passwords: passwords,
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginWithPassword authenticates an email/password pair. The three
// failure modes stay distinguishable: ErrAccountNotFound,
// ErrPasswordNotSet (the account exists but must finish OAuth-only
// setup), and ErrInvalidCredentials.
func (s *Service) LoginWithPassword(ctx context.Context, email, password string) (*LoginResult, error) {
	email = sanitizer.NormalizeEmail(email)

	account, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !account.HasPassword() {
		return nil, ErrPasswordNotSet
	}
	if !s.passwords.Validate(ctx, email, password) {
		return nil, ErrInvalidCredentials
	}

	return s.issueLogin(ctx, account)
}

// LoginWithOAuth issues a session for an account that the dispatcher
// already verified externally. Same issuance path as passwords; there is
// no separate trust tier.
func (s *Service) LoginWithOAuth(ctx context.Context, account *Account) (*LoginResult, error) {
	return s.issueLogin(ctx, account)
}

func (s *Service) issueLogin(ctx context.Context, account *Account) (*LoginResult, error) {
	token, err := s.codec.IssueAccess(account)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	s.log.InfoContext(ctx, "login",
		logger.UserID(account.ID),
		logger.Component("auth"),
	)
	return &LoginResult{AccessToken: token, Account: account.View()}, nil
}

// CompleteOAuth finishes a dispatcher verdict. A linking intent attaches
// the identity to the intended account; otherwise the identity logs into
// its account, creating one on first sign-in. An existing account with
// the provider-side email but no link is a conflict, not an implicit
// merge: linking requires the authenticated connect flow.
func (s *Service) CompleteOAuth(ctx context.Context, verdict Verdict) (*LoginResult, error) {
	if verdict.LinkTo != 0 {
		return s.completeLink(ctx, verdict)
	}

	account, err := s.store.FindByExternalIdentity(ctx, verdict.Identity.Provider, verdict.Identity.ProviderID)
	if err == nil {
		return s.issueLogin(ctx, account)
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("lookup by identity: %w", err)
	}

	email := sanitizer.NormalizeEmail(verdict.Identity.Email)
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, ErrAccountConflict
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("lookup by email: %w", err)
	}

	account = &Account{
		Email:      email,
		Nickname:   randomname.Nickname(),
		Verified:   true,
		Identities: []ExternalIdentity{verdict.Identity},
	}
	if err := s.store.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.log.InfoContext(ctx, "account created from oauth sign-in",
		logger.UserID(account.ID),
		logger.Provider(verdict.Identity.Provider),
		logger.Component("auth"),
	)
	return s.issueLogin(ctx, account)
}

func (s *Service) completeLink(ctx context.Context, verdict Verdict) (*LoginResult, error) {
	account, err := s.store.FindByID(ctx, verdict.LinkTo)
	if err != nil {
		return nil, err
	}

	if existing, err := s.store.FindByExternalIdentity(ctx, verdict.Identity.Provider, verdict.Identity.ProviderID); err == nil {
		if existing.ID != account.ID {
			return nil, ErrAccountConflict
		}
		// Already linked to this account; idempotent.
		return s.issueLogin(ctx, existing)
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("lookup by identity: %w", err)
	}

	if err := s.store.AddExternalIdentity(ctx, account.ID, verdict.Identity); err != nil {
		return nil, fmt.Errorf("link identity: %w", err)
	}
	account.Identities = append(account.Identities, verdict.Identity)

	s.log.InfoContext(ctx, "oauth identity linked",
		logger.UserID(account.ID),
		logger.Provider(verdict.Identity.Provider),
		logger.Component("auth"),
	)
	return s.issueLogin(ctx, account)
}

// IssueOAuthLinkState signs a connect state token. The provider check here
// duplicates the codec's own; both gates are intentional.
func (s *Service) IssueOAuthLinkState(userID int64, provider string) (string, error) {
	if !KnownProvider(provider) {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	return s.codec.IssueLinkState(userID, provider)
}

// DisconnectOAuth unlinks a provider identity. Removing the sole identity
// of a password-less account would lock its owner out, so that case is
// refused; the caller must set a password first.
func (s *Service) DisconnectOAuth(ctx context.Context, userID int64, provider string) error {
	if !KnownProvider(provider) {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	account, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if _, linked := account.Identity(provider); !linked {
		return fmt.Errorf("%w: %q not linked", ErrUnknownProvider, provider)
	}
	if len(account.Identities) <= 1 && !account.HasPassword() {
		return ErrLastIdentityUnlink
	}

	if err := s.store.RemoveExternalIdentity(ctx, userID, provider); err != nil {
		return fmt.Errorf("unlink identity: %w", err)
	}

	s.log.InfoContext(ctx, "oauth identity unlinked",
		logger.UserID(userID),
		logger.Provider(provider),
		logger.Component("auth"),
	)
	return nil
}

// Register creates a password account. Duplicate emails surface as
// ErrAccountConflict.
func (s *Service) Register(ctx context.Context, email, password string) (*AccountView, error) {
	email = sanitizer.NormalizeEmail(email)

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, ErrAccountConflict
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("lookup by email: %w", err)
	}

	account := &Account{
		Email:    email,
		Nickname: randomname.Nickname(),
		Verified: true,
	}
	if password != "" {
		hash, err := s.passwords.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		account.PasswordHash = hash
	}

	if err := s.store.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	view := account.View()
	return &view, nil
}

// InitiatePasswordReset issues a reset token and hands it to the mail
// collaborator. The caller gets a nil error whether or not the email is
// registered: issuing only for known accounts but reporting uniformly
// keeps the endpoint useless for account enumeration.
func (s *Service) InitiatePasswordReset(ctx context.Context, email string) error {
	if s.mail == nil {
		return errors.New("auth: mail delivery not configured")
	}
	email = sanitizer.NormalizeEmail(email)

	if _, err := s.store.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			s.log.DebugContext(ctx, "password reset requested for unknown email",
				logger.Component("auth"),
			)
			return nil
		}
		return fmt.Errorf("lookup by email: %w", err)
	}

	token, err := s.codec.IssuePasswordReset(email)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	if err := s.mail.SendPasswordReset(ctx, email, token); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// CompletePasswordReset verifies the reset token and stores the new
// password. Token failures are opaque; there is no server-side single-use
// tracking, so a token may be replayed until it expires.
func (s *Service) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	claims, err := s.codec.VerifyPasswordReset(token)
	if err != nil {
		return err
	}

	account, err := s.store.FindByEmail(ctx, claims.Email)
	if err != nil {
		return err
	}
	return s.passwords.Change(ctx, account.ID, "", newPassword)
}

// GenerateVerificationToken creates and stores an opaque email
// verification token, then mails it.
func (s *Service) GenerateVerificationToken(ctx context.Context, email string) (string, error) {
	if s.verification == nil {
		return "", errors.New("auth: verification store not configured")
	}
	email = sanitizer.NormalizeEmail(email)

	token := uuid.NewString()
	if err := s.verification.Store(ctx, token, email, VerificationTTL); err != nil {
		return "", fmt.Errorf("store verification token: %w", err)
	}

	if s.mail != nil {
		if err := s.mail.SendVerification(ctx, email, token); err != nil {
			return "", fmt.Errorf("send verification email: %w", err)
		}
	}
	return token, nil
}

// ConfirmVerification consumes a verification token and marks the account
// verified. The single Consume lookup is the whole validation.
func (s *Service) ConfirmVerification(ctx context.Context, token string) error {
	if s.verification == nil {
		return errors.New("auth: verification store not configured")
	}

	email, err := s.verification.Consume(ctx, token)
	if err != nil {
		return ErrInvalidOrExpiredToken
	}
	if err := s.store.SetVerified(ctx, email, true); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

// Profile returns the account view plus per-provider connection status.
func (s *Service) Profile(ctx context.Context, userID int64) (*ProfileView, error) {
	account, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{
		AccountView:      account.View(),
		OAuthConnections: account.Connections(),
	}, nil
}
