// Package migrate applies the embedded goose migrations
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"newsletter/internal/platform/logger"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var embedded embed.FS

// FS returns the migration files rooted at their directory
func FS() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrator runs migrations over a dedicated database/sql handle
type Migrator struct {
	db       *sql.DB
	provider *goose.Provider
}

// Open connects with the pgx stdlib driver and prepares a goose provider
func Open(dsn string) (*Migrator, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("migrate: open: %w", err)
	}
	p, err := goose.NewProvider(goose.DialectPostgres, db, FS())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: provider: %w", err)
	}
	return &Migrator{db: db, provider: p}, nil
}

// Close releases the sql handle
func (m *Migrator) Close() error { return m.db.Close() }

// Up applies every pending migration
func (m *Migrator) Up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	for _, r := range results {
		logResult(ctx, r)
	}
	if err != nil {
		return fmt.Errorf("migrate: up: %w", err)
	}
	if len(results) == 0 {
		logger.C(ctx).Info().Msg("migrations: nothing to apply")
	}
	return nil
}

// Down rolls back the most recent migration
func (m *Migrator) Down(ctx context.Context) error {
	r, err := m.provider.Down(ctx)
	if r != nil {
		logResult(ctx, r)
	}
	if err != nil {
		return fmt.Errorf("migrate: down: %w", err)
	}
	return nil
}

// Status is one migration and whether it has been applied
type Status struct {
	Version int64
	Path    string
	Applied bool
}

// Status lists all known migrations in version order
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	st, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: status: %w", err)
	}
	out := make([]Status, 0, len(st))
	for _, s := range st {
		out = append(out, Status{
			Version: s.Source.Version,
			Path:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}

func logResult(ctx context.Context, r *goose.MigrationResult) {
	evt := logger.C(ctx).Info()
	if r.Error != nil {
		evt = logger.C(ctx).Error().Err(r.Error)
	}
	evt.Str("direction", r.Direction).
		Int64("version", r.Source.Version).
		Str("path", r.Source.Path).
		Dur("took", r.Duration).
		Msg("migration")
}
