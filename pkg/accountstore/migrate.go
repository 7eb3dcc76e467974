package accountstore

import (
	"context"
	"embed"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerpin/backend/pkg/pg"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies this package's schema migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	return pg.Migrate(ctx, pool, migrations, "migrations", log)
}
