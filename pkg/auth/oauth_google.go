package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleConfig holds the Google OAuth client settings.
type GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"GOOGLE_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"GOOGLE_OAUTH_REDIRECT_URL,required"`
	Scopes       []string `env:"GOOGLE_OAUTH_SCOPES" envSeparator:"," envDefault:"https://www.googleapis.com/auth/userinfo.email"`
}

type googleStrategy struct {
	conf       *oauth2.Config
	httpClient *http.Client
}

// NewGoogleStrategy creates the Google OAuth strategy.
func NewGoogleStrategy(cfg GoogleConfig) Strategy {
	return &googleStrategy{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     google.Endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *googleStrategy) Provider() string {
	return ProviderGoogle
}

func (s *googleStrategy) AuthURL(state string) string {
	return s.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (s *googleStrategy) Exchange(ctx context.Context, code string) (ExternalIdentity, error) {
	tok, err := s.conf.Exchange(ctx, code)
	if err != nil {
		return ExternalIdentity{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return ExternalIdentity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return ExternalIdentity{}, fmt.Errorf("fetch google user: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ExternalIdentity{}, fmt.Errorf("google api returned status %d", resp.StatusCode)
	}

	var user struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return ExternalIdentity{}, err
	}
	if user.ID == "" || user.Email == "" {
		return ExternalIdentity{}, fmt.Errorf("%w: incomplete google profile", ErrExchangeFailed)
	}

	return ExternalIdentity{
		Provider:   ProviderGoogle,
		ProviderID: user.ID,
		Email:      user.Email,
	}, nil
}

var _ Strategy = (*googleStrategy)(nil)
