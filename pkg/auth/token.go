package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/careerpin/backend/pkg/jwt"
)

// Token kind discriminators. Link-state tokens reuse the "access" type tag
// with an explicit method marker; kind separation is enforced on payload
// shape plus, for reset tokens, a disjoint signing secret.
const (
	tokenTypeAccess        = "access"
	tokenTypePasswordReset = "passwordReset"
	linkStateMethodConnect = "connect"
)

// Fixed lifetimes for the purpose-scoped tokens.
const (
	LinkStateTTL     = 5 * time.Minute
	PasswordResetTTL = 1 * time.Hour
)

// TokenConfig carries the signing secrets and the configurable access
// token lifetime. The reset secret must differ from the primary secret so
// a leaked reset key cannot forge sessions, and vice versa.
type TokenConfig struct {
	Secret         string        `env:"JWT_SECRET,required"`
	ResetSecret    string        `env:"JWT_PASSWORD_RESET_SECRET,required"`
	AccessTokenTTL time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
}

// AccessClaims is the session token payload.
type AccessClaims struct {
	jwt.RegisteredClaims
	Type     string `json:"type"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// UserID returns the numeric subject of the claims.
func (c AccessClaims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// LinkStateClaims correlates an OAuth provider round-trip with a specific
// account+provider linking intent.
type LinkStateClaims struct {
	jwt.RegisteredClaims
	Type     string `json:"type"`
	Method   string `json:"oauthMethod"`
	UserID   int64  `json:"userId"`
	Provider string `json:"provider"`
}

// PasswordResetClaims authorizes a one-time credential change for an
// email, independent of any session.
type PasswordResetClaims struct {
	jwt.RegisteredClaims
	Type  string `json:"type"`
	Email string `json:"email"`
}

// TokenCodec issues and verifies the three token kinds. Access and
// link-state tokens share the primary signer; reset tokens live under
// their own secret.
type TokenCodec struct {
	primary   *jwt.Signer
	reset     *jwt.Signer
	accessTTL time.Duration
	now       func() time.Time
}

// CodecOption configures a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the codec's time source.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

// NewTokenCodec builds a codec from the config.
func NewTokenCodec(cfg TokenConfig, opts ...CodecOption) (*TokenCodec, error) {
	primary, err := jwt.NewSigner(cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("primary signer: %w", err)
	}
	reset, err := jwt.NewSigner(cfg.ResetSecret)
	if err != nil {
		return nil, fmt.Errorf("reset signer: %w", err)
	}

	c := &TokenCodec{
		primary:   primary,
		reset:     reset,
		accessTTL: cfg.AccessTokenTTL,
		now:       time.Now,
	}
	if c.accessTTL <= 0 {
		c.accessTTL = 24 * time.Hour
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// IssueAccess signs a session token for the account. The payload carries
// only identity attributes, never the password hash.
func (c *TokenCodec) IssueAccess(account *Account) (string, error) {
	now := c.now()
	return c.primary.Sign(AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(account.ID, 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(c.accessTTL).Unix(),
		},
		Type:     tokenTypeAccess,
		Email:    account.Email,
		Nickname: account.Nickname,
	})
}

// IssueLinkState signs a five-minute state token tying an OAuth round-trip
// to a connect intent for the given account and provider. The provider is
// checked against the closed set before anything is signed.
func (c *TokenCodec) IssueLinkState(userID int64, provider string) (string, error) {
	if !KnownProvider(provider) {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	now := c.now()
	return c.primary.Sign(LinkStateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(LinkStateTTL).Unix(),
		},
		Type:     tokenTypeAccess,
		Method:   linkStateMethodConnect,
		UserID:   userID,
		Provider: provider,
	})
}

// IssuePasswordReset signs a one-hour reset token under the reset secret.
func (c *TokenCodec) IssuePasswordReset(email string) (string, error) {
	now := c.now()
	return c.reset.Sign(PasswordResetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(PasswordResetTTL).Unix(),
		},
		Type:  tokenTypePasswordReset,
		Email: email,
	})
}

// VerifyAccess checks a session token. Any failure, including a
// syntactically valid token of another kind, comes back as
// ErrInvalidOrExpiredToken.
func (c *TokenCodec) VerifyAccess(token string) (AccessClaims, error) {
	var claims AccessClaims
	if err := c.primary.Verify(token, &claims); err != nil {
		return AccessClaims{}, ErrInvalidOrExpiredToken
	}
	if claims.Type != tokenTypeAccess || claims.Subject == "" || claims.Email == "" {
		return AccessClaims{}, ErrInvalidOrExpiredToken
	}
	if _, err := claims.UserID(); err != nil {
		return AccessClaims{}, ErrInvalidOrExpiredToken
	}
	return claims, nil
}

// VerifyLinkState checks a connect state token, with the same opaque
// failure behavior as VerifyAccess.
func (c *TokenCodec) VerifyLinkState(token string) (LinkStateClaims, error) {
	var claims LinkStateClaims
	if err := c.primary.Verify(token, &claims); err != nil {
		return LinkStateClaims{}, ErrInvalidOrExpiredToken
	}
	if claims.Type != tokenTypeAccess || claims.Method != linkStateMethodConnect {
		return LinkStateClaims{}, ErrInvalidOrExpiredToken
	}
	if claims.UserID <= 0 || !KnownProvider(claims.Provider) {
		return LinkStateClaims{}, ErrInvalidOrExpiredToken
	}
	return claims, nil
}

// VerifyPasswordReset checks a reset token under the reset secret.
func (c *TokenCodec) VerifyPasswordReset(token string) (PasswordResetClaims, error) {
	var claims PasswordResetClaims
	if err := c.reset.Verify(token, &claims); err != nil {
		return PasswordResetClaims{}, ErrInvalidOrExpiredToken
	}
	if claims.Type != tokenTypePasswordReset || claims.Email == "" {
		return PasswordResetClaims{}, ErrInvalidOrExpiredToken
	}
	return claims, nil
}
