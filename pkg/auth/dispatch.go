package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/careerpin/backend/pkg/logger"
)

// Verdict is the dispatcher's terminal state for a completed provider
// round-trip: the externally verified identity, plus the account id of a
// linking intent when the state value carried one.
type Verdict struct {
	Identity ExternalIdentity
	LinkTo   int64
}

// Dispatcher is the request-time gate in front of the OAuth strategies.
// The provider is chosen per request from the path segment, never wired
// statically; unknown providers fail closed before any network call.
type Dispatcher struct {
	registry *Registry
	codec    *TokenCodec
	log      *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets a custom logger.
func WithDispatcherLogger(log *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.log = log
	}
}

// NewDispatcher creates the dynamic OAuth dispatcher.
func NewDispatcher(registry *Registry, codec *TokenCodec, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		codec:    codec,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// BeginAuth resolves the provider and builds its authorization URL. The
// optional state value is threaded into the strategy unchanged so the
// provider round-trip can be correlated back to the original request.
func (d *Dispatcher) BeginAuth(provider, state string) (string, error) {
	strategy, err := d.registry.Resolve(provider)
	if err != nil {
		return "", err
	}
	return strategy.AuthURL(state), nil
}

// Activate handles the provider callback. The strategy is resolved before
// anything else so an unknown provider never costs a network round-trip.
// When the state value parses as a connect token for the same provider,
// the verdict carries the linking intent; otherwise any state is passed
// through untouched as plain CSRF material and ignored here.
//
// A rejection leaves no partial session state behind.
func (d *Dispatcher) Activate(ctx context.Context, provider, code, state string) (Verdict, error) {
	strategy, err := d.registry.Resolve(provider)
	if err != nil {
		return Verdict{}, err
	}

	identity, err := strategy.Exchange(ctx, code)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %s", ErrExchangeFailed, provider)
	}

	verdict := Verdict{Identity: identity}
	if state != "" {
		if claims, err := d.codec.VerifyLinkState(state); err == nil && claims.Provider == provider {
			verdict.LinkTo = claims.UserID
		}
	}

	d.log.InfoContext(ctx, "oauth exchange completed",
		logger.Provider(provider),
		slog.Bool("linking", verdict.LinkTo != 0),
		logger.Component("dispatcher"),
	)
	return verdict, nil
}
