package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/careerpin/backend/modules/authapi"
	"github.com/careerpin/backend/pkg/accountstore"
	"github.com/careerpin/backend/pkg/auth"
	"github.com/careerpin/backend/pkg/config"
	"github.com/careerpin/backend/pkg/email"
	"github.com/careerpin/backend/pkg/httpserver"
	"github.com/careerpin/backend/pkg/logger"
	"github.com/careerpin/backend/pkg/pg"
	"github.com/careerpin/backend/pkg/redis"
	"github.com/careerpin/backend/pkg/verification"
)

type appConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	Logger logger.Config
	HTTP   httpserver.Config
	PG     pg.Config
	Redis  redis.Config
	Token  auth.TokenConfig
	Email  email.Config

	Google  auth.GoogleConfig
	Apple   auth.AppleConfig
	Discord auth.DiscordConfig
	Kakao   auth.KakaoConfig
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Logger)

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := accountstore.Migrate(ctx, pool, log); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	var sender email.Sender
	if cfg.Env == "development" && cfg.Email.ServerToken == "" {
		sender = email.NewLogSender(log)
	} else {
		sender, err = email.NewPostmarkSender(cfg.Email)
		if err != nil {
			return fmt.Errorf("configure email sender: %w", err)
		}
	}
	mailer := email.NewMailer(sender, cfg.BaseURL)

	codec, err := auth.NewTokenCodec(cfg.Token)
	if err != nil {
		return fmt.Errorf("configure token codec: %w", err)
	}

	store := accountstore.New(pool)
	passwords := auth.NewPasswords(store, auth.WithPasswordsLogger(log))

	registry, err := auth.NewRegistry(
		auth.NewGoogleStrategy(cfg.Google),
		auth.NewAppleStrategy(cfg.Apple),
		auth.NewDiscordStrategy(cfg.Discord),
		auth.NewKakaoStrategy(cfg.Kakao),
	)
	if err != nil {
		return fmt.Errorf("build provider registry: %w", err)
	}
	dispatcher := auth.NewDispatcher(registry, codec, auth.WithDispatcherLogger(log))

	service := auth.NewService(store, codec, passwords,
		auth.WithServiceLogger(log),
		auth.WithMailDelivery(mailer),
		auth.WithVerificationStore(verification.NewStore(redisClient)),
	)

	api := authapi.New(service, dispatcher, passwords, codec, store,
		authapi.WithLogger(log))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.Healthcheck(log))
	r.Get("/readyz", httpserver.Healthcheck(log,
		func(ctx context.Context) error { return pool.Ping(ctx) },
		func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	))
	r.Mount("/auth", api.Router())

	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}
