// Package authapi exposes the authentication core over HTTP. Routes are
// mounted as a chi module; all request and response bodies are JSON.
package authapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/careerpin/backend/pkg/auth"
	"github.com/careerpin/backend/pkg/logger"
)

// Module bundles the authentication collaborators behind one router.
type Module struct {
	service    *auth.Service
	dispatcher *auth.Dispatcher
	passwords  *auth.Passwords
	codec      *auth.TokenCodec
	store      auth.AccountStore
	log        *slog.Logger
}

// Option configures a Module.
type Option func(*Module)

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Module) {
		m.log = log
	}
}

// New creates the HTTP module.
func New(service *auth.Service, dispatcher *auth.Dispatcher, passwords *auth.Passwords, codec *auth.TokenCodec, store auth.AccountStore, opts ...Option) *Module {
	m := &Module{
		service:    service,
		dispatcher: dispatcher,
		passwords:  passwords,
		codec:      codec,
		store:      store,
		log:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Router mounts all authentication routes. Provider names are path
// segments resolved per request; nothing is wired per provider here.
func (m *Module) Router() chi.Router {
	r := chi.NewRouter()

	r.Post("/login", m.handleLogin)
	r.Post("/register", m.handleRegister)

	r.Post("/password-reset", m.handlePasswordResetRequest)
	r.Post("/password-reset/confirm", m.handlePasswordResetConfirm)

	r.Get("/verification/confirm", m.handleVerificationConfirm)

	r.Get("/oauth/{provider}", m.handleOAuthBegin)
	r.Get("/oauth/{provider}/callback", m.handleOAuthCallback)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAccess(m.codec, m.store))

		r.Get("/me", m.handleProfile)
		r.Post("/password", m.handlePasswordChange)
		r.Post("/verification", m.handleVerificationRequest)
		r.Delete("/account", m.handleAccountDelete)

		r.Post("/oauth/{provider}/connect", m.handleOAuthConnect)
		r.Delete("/oauth/{provider}", m.handleOAuthDisconnect)
	})

	return r
}

func providerParam(r *http.Request) string {
	return chi.URLParam(r, "provider")
}
