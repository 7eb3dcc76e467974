// Package config loads typed configuration structs from environment
// variables. A local .env file, if present, is loaded once per process
// before the first parse so development setups need no extra wiring.
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrParse is returned when environment variables cannot be parsed
	// into the target struct.
	ErrParse = errors.New("config: failed to parse environment")

	// ErrNilTarget is returned when a nil pointer is passed to Load.
	ErrNilTarget = errors.New("config: nil target")
)

var dotenvOnce sync.Once

// Load parses environment variables into cfg based on `env` struct tags.
//
// Example:
//
//	type TokenConfig struct {
//		Secret string `env:"JWT_SECRET,required"`
//		TTL    time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
//	}
//
//	var cfg TokenConfig
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilTarget
	}

	dotenvOnce.Do(func() {
		// Missing .env files are fine; real environments set variables directly.
		_ = godotenv.Load()
	})

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParse, err)
	}
	return nil
}

// MustLoad is Load that panics on failure. Configuration required for the
// process to start should fail fast rather than limp along.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}
