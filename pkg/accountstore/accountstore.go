// Package accountstore implements the persistent account repository on
// PostgreSQL via pgx. It is the single owner of the accounts and
// oauth_accounts tables; callers work through the auth.AccountStore
// interface and never see SQL or driver errors.
package accountstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerpin/backend/pkg/auth"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint
// breach, mapped to auth.ErrAccountConflict.
const uniqueViolation = "23505"

// Store is the pgx implementation of auth.AccountStore.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store on the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.ErrAccountNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return auth.ErrAccountConflict
	}
	return err
}

const accountColumns = `id, email, password_hash, nickname, verified, created_at, updated_at`

func scanAccount(row pgx.Row) (*auth.Account, error) {
	var a auth.Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Nickname, &a.Verified, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &a, nil
}

func (s *Store) loadIdentities(ctx context.Context, a *auth.Account) error {
	rows, err := s.pool.Query(ctx,
		`SELECT provider, provider_id, email FROM oauth_accounts WHERE account_id = $1 ORDER BY provider`,
		a.ID)
	if err != nil {
		return fmt.Errorf("accountstore: load identities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id auth.ExternalIdentity
		if err := rows.Scan(&id.Provider, &id.ProviderID, &id.Email); err != nil {
			return fmt.Errorf("accountstore: scan identity: %w", err)
		}
		a.Identities = append(a.Identities, id)
	}
	return rows.Err()
}

// FindByEmail loads the account registered under the normalized email.
func (s *Store) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	account, err := scanAccount(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadIdentities(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// FindByID loads the account by primary key.
func (s *Store) FindByID(ctx context.Context, id int64) (*auth.Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	account, err := scanAccount(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadIdentities(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// FindByExternalIdentity loads the account that owns the given
// provider-side identity.
func (s *Store) FindByExternalIdentity(ctx context.Context, provider, providerID string) (*auth.Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT a.id, a.email, a.password_hash, a.nickname, a.verified, a.created_at, a.updated_at
		 FROM accounts a
		 JOIN oauth_accounts o ON o.account_id = a.id
		 WHERE o.provider = $1 AND o.provider_id = $2`,
		provider, providerID)
	account, err := scanAccount(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadIdentities(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Create inserts the account and any attached identities in one
// transaction and fills in the generated ID and timestamps.
func (s *Store) Create(ctx context.Context, account *auth.Account) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("accountstore: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	err = tx.QueryRow(ctx,
		`INSERT INTO accounts (email, password_hash, nickname, verified)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		account.Email, account.PasswordHash, account.Nickname, account.Verified,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return mapError(err)
	}

	for _, identity := range account.Identities {
		_, err := tx.Exec(ctx,
			`INSERT INTO oauth_accounts (account_id, provider, provider_id, email)
			 VALUES ($1, $2, $3, $4)`,
			account.ID, identity.Provider, identity.ProviderID, identity.Email)
		if err != nil {
			return mapError(err)
		}
	}

	return tx.Commit(ctx)
}

// Delete removes the account; linked identities go with it via the
// foreign key cascade.
func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("accountstore: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrAccountNotFound
	}
	return nil
}

// UpdatePasswordHash stores a new password hash.
func (s *Store) UpdatePasswordHash(ctx context.Context, id int64, hash []byte) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, hash)
	if err != nil {
		return fmt.Errorf("accountstore: update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrAccountNotFound
	}
	return nil
}

// SetVerified flips the verification flag for the account registered
// under the email.
func (s *Store) SetVerified(ctx context.Context, email string, verified bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET verified = $2, updated_at = now() WHERE email = $1`,
		email, verified)
	if err != nil {
		return fmt.Errorf("accountstore: set verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrAccountNotFound
	}
	return nil
}

// AddExternalIdentity links a provider identity to the account. A
// unique constraint on (provider, provider_id) surfaces as
// auth.ErrAccountConflict when the identity belongs elsewhere.
func (s *Store) AddExternalIdentity(ctx context.Context, id int64, identity auth.ExternalIdentity) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO oauth_accounts (account_id, provider, provider_id, email)
		 VALUES ($1, $2, $3, $4)`,
		id, identity.Provider, identity.ProviderID, identity.Email)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// RemoveExternalIdentity unlinks the provider identity from the account.
func (s *Store) RemoveExternalIdentity(ctx context.Context, id int64, provider string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM oauth_accounts WHERE account_id = $1 AND provider = $2`,
		id, provider)
	if err != nil {
		return fmt.Errorf("accountstore: remove identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrAccountNotFound
	}
	return nil
}
