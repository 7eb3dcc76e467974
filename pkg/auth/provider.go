package auth

import (
	"context"
	"fmt"
)

// The closed set of supported OAuth providers. Everything outside this
// list is rejected before any signing or network call happens.
const (
	ProviderGoogle  = "google"
	ProviderApple   = "apple"
	ProviderDiscord = "discord"
	ProviderKakao   = "kakao"
)

// Providers lists the closed provider set in display order.
var Providers = []string{ProviderGoogle, ProviderApple, ProviderDiscord, ProviderKakao}

// KnownProvider reports whether name belongs to the closed provider set.
func KnownProvider(name string) bool {
	for _, p := range Providers {
		if p == name {
			return true
		}
	}
	return false
}

// Strategy is the uniform capability this core uses to talk to one OAuth
// provider: build the redirect URL and exchange a callback code for an
// external identity. Implementations encapsulate all protocol details.
type Strategy interface {
	// Provider returns the stable provider identifier, e.g. "google".
	Provider() string

	// AuthURL builds the provider authorization URL. The state value is
	// carried through the provider round-trip unchanged.
	AuthURL(state string) string

	// Exchange trades an authorization code for the provider-side identity.
	// Exchange failures are reported as ErrExchangeFailed.
	Exchange(ctx context.Context, code string) (ExternalIdentity, error)
}

// Registry maps provider names to strategies. It is populated once at
// process start; Resolve is a pure map lookup with no I/O.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds a registry from the given strategies. Strategies for
// providers outside the closed set, and duplicates, are rejected so wiring
// mistakes surface at startup rather than at request time.
func NewRegistry(strategies ...Strategy) (*Registry, error) {
	m := make(map[string]Strategy, len(strategies))
	for _, s := range strategies {
		name := s.Provider()
		if !KnownProvider(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
		}
		if _, dup := m[name]; dup {
			return nil, fmt.Errorf("duplicate strategy for provider %q", name)
		}
		m[name] = s
	}
	return &Registry{strategies: m}, nil
}

// Resolve returns the strategy registered for the provider name.
func (r *Registry) Resolve(name string) (Strategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return s, nil
}
