package auth

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/careerpin/backend/pkg/logger"
	"github.com/careerpin/backend/pkg/sanitizer"
)

// DefaultBcryptCost matches the work factor used for all stored hashes.
const DefaultBcryptCost = 10

// Passwords validates and maintains password credentials. It never issues
// tokens; that is the orchestrator's job.
type Passwords struct {
	store      AccountStore
	bcryptCost int
	log        *slog.Logger
}

// PasswordsOption configures a Passwords service.
type PasswordsOption func(*Passwords)

// WithPasswordsLogger sets a custom logger.
func WithPasswordsLogger(log *slog.Logger) PasswordsOption {
	return func(p *Passwords) {
		p.log = log
	}
}

// WithBcryptCost sets the bcrypt work factor for new hashes.
func WithBcryptCost(cost int) PasswordsOption {
	return func(p *Passwords) {
		p.bcryptCost = cost
	}
}

// NewPasswords creates the credential validation service.
func NewPasswords(store AccountStore, opts ...PasswordsOption) *Passwords {
	p := &Passwords{
		store:      store,
		bcryptCost: DefaultBcryptCost,
		log:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate compares a candidate password against the stored hash for the
// account with the given email. It is read-only and never returns an
// error: unknown accounts and password-less accounts are simply false.
// bcrypt's comparison is constant-time with respect to the candidate.
func (p *Passwords) Validate(ctx context.Context, email, password string) bool {
	account, err := p.store.FindByEmail(ctx, sanitizer.NormalizeEmail(email))
	if err != nil || !account.HasPassword() {
		return false
	}
	return bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)) == nil
}

// Verify checks a password for an account looked up by id. Unlike
// Validate it distinguishes missing accounts and password-less accounts,
// for use inside authenticated settings flows.
func (p *Passwords) Verify(ctx context.Context, userID int64, password string) (bool, error) {
	account, err := p.store.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if !account.HasPassword() {
		return false, ErrPasswordNotSet
	}
	return bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)) == nil, nil
}

// Change sets a new password for the account. currentPassword is optional
// (OAuth-only accounts setting their first password have none); when the
// account has a stored hash and a current password is supplied, it must
// verify first.
func (p *Passwords) Change(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	account, err := p.store.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if currentPassword != "" && account.HasPassword() {
		if bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(currentPassword)) != nil {
			return ErrInvalidCredentials
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), p.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := p.store.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	p.log.InfoContext(ctx, "password changed",
		logger.UserID(userID),
		logger.Component("passwords"),
	)
	return nil
}

// Hash produces a bcrypt hash at the service's configured cost.
func (p *Passwords) Hash(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
}

// DeleteAccount removes an account after re-authentication. The email
// must match the stored one and the current password must verify; this
// variant always requires the password, so password-less accounts cannot
// be deleted this way.
func (p *Passwords) DeleteAccount(ctx context.Context, userID int64, email, password string) error {
	account, err := p.store.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if account.Email != sanitizer.NormalizeEmail(email) {
		return ErrInvalidCredentials
	}
	if !account.HasPassword() {
		return ErrPasswordNotSet
	}
	if bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)) != nil {
		return ErrInvalidCredentials
	}

	if err := p.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	p.log.InfoContext(ctx, "account deleted",
		logger.UserID(userID),
		logger.Component("passwords"),
	)
	return nil
}
