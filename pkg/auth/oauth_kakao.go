package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

var kakaoEndpoint = oauth2.Endpoint{
	AuthURL:  "https://kauth.kakao.com/oauth/authorize",
	TokenURL: "https://kauth.kakao.com/oauth/token",
}

// KakaoConfig holds the Kakao OAuth client settings.
type KakaoConfig struct {
	ClientID     string `env:"KAKAO_OAUTH_CLIENT_ID,required"`
	ClientSecret string `env:"KAKAO_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string `env:"KAKAO_OAUTH_REDIRECT_URL,required"`
}

type kakaoStrategy struct {
	conf       *oauth2.Config
	httpClient *http.Client
}

// NewKakaoStrategy creates the Kakao OAuth strategy. The account_email
// scope requires app-level approval from Kakao.
func NewKakaoStrategy(cfg KakaoConfig) Strategy {
	return &kakaoStrategy{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"account_email"},
			Endpoint:     kakaoEndpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *kakaoStrategy) Provider() string {
	return ProviderKakao
}

func (s *kakaoStrategy) AuthURL(state string) string {
	return s.conf.AuthCodeURL(state)
}

func (s *kakaoStrategy) Exchange(ctx context.Context, code string) (ExternalIdentity, error) {
	tok, err := s.conf.Exchange(ctx, code)
	if err != nil {
		return ExternalIdentity{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://kapi.kakao.com/v2/user/me", nil)
	if err != nil {
		return ExternalIdentity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return ExternalIdentity{}, fmt.Errorf("fetch kakao user: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ExternalIdentity{}, fmt.Errorf("kakao api returned status %d", resp.StatusCode)
	}

	var user struct {
		ID      int64 `json:"id"`
		Account struct {
			Email string `json:"email"`
		} `json:"kakao_account"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return ExternalIdentity{}, err
	}
	if user.ID == 0 || user.Account.Email == "" {
		return ExternalIdentity{}, fmt.Errorf("%w: incomplete kakao profile", ErrExchangeFailed)
	}

	return ExternalIdentity{
		Provider:   ProviderKakao,
		ProviderID: strconv.FormatInt(user.ID, 10),
		Email:      user.Account.Email,
	}, nil
}

var _ Strategy = (*kakaoStrategy)(nil)
