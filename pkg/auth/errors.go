package auth

import "errors"

// Account and credential errors. Login failures stay distinguishable on
// purpose: they guide pre-authentication UX and leak nothing that the
// registration-time email check has not already disclosed.
var (
	ErrAccountNotFound    = errors.New("auth: account not found")
	ErrPasswordNotSet     = errors.New("auth: password not set for account")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrAccountConflict    = errors.New("auth: email already registered")
)

// Token verification collapses every failure mode (bad signature, expiry,
// wrong secret, wrong kind, malformed payload) into this single sentinel
// so callers cannot probe token validity.
var ErrInvalidOrExpiredToken = errors.New("auth: invalid or expired token")

// OAuth errors.
var (
	ErrUnknownProvider    = errors.New("auth: unknown oauth provider")
	ErrExchangeFailed     = errors.New("auth: provider code exchange failed")
	ErrLastIdentityUnlink = errors.New("auth: cannot unlink the only sign-in method")
)
