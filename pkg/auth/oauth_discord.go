package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

var discordEndpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

// DiscordConfig holds the Discord OAuth client settings.
type DiscordConfig struct {
	ClientID     string `env:"DISCORD_OAUTH_CLIENT_ID,required"`
	ClientSecret string `env:"DISCORD_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string `env:"DISCORD_OAUTH_REDIRECT_URL,required"`
}

type discordStrategy struct {
	conf       *oauth2.Config
	httpClient *http.Client
}

// NewDiscordStrategy creates the Discord OAuth strategy.
func NewDiscordStrategy(cfg DiscordConfig) Strategy {
	return &discordStrategy{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"identify", "email"},
			Endpoint:     discordEndpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *discordStrategy) Provider() string {
	return ProviderDiscord
}

func (s *discordStrategy) AuthURL(state string) string {
	return s.conf.AuthCodeURL(state)
}

func (s *discordStrategy) Exchange(ctx context.Context, code string) (ExternalIdentity, error) {
	tok, err := s.conf.Exchange(ctx, code)
	if err != nil {
		return ExternalIdentity{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://discord.com/api/users/@me", nil)
	if err != nil {
		return ExternalIdentity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return ExternalIdentity{}, fmt.Errorf("fetch discord user: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ExternalIdentity{}, fmt.Errorf("discord api returned status %d", resp.StatusCode)
	}

	var user struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return ExternalIdentity{}, err
	}
	if user.ID == "" || user.Email == "" {
		return ExternalIdentity{}, fmt.Errorf("%w: incomplete discord profile", ErrExchangeFailed)
	}

	return ExternalIdentity{
		Provider:   ProviderDiscord,
		ProviderID: user.ID,
		Email:      user.Email,
	}, nil
}

var _ Strategy = (*discordStrategy)(nil)
