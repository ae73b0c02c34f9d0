package migration

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Migration represents a database migration
type Migration struct {
	Name string
	Up   func(ctx context.Context, pool *pgxpool.Pool) error
}

// Migrations lists the audit schema steps in the order they run.
func Migrations() []Migration {
	return []Migration{
		{Name: "create_export_jobs", Up: createExportJobs},
		{Name: "add_export_jobs_created_at_index", Up: addCreatedAtIndex},
	}
}

// RunMigrations executes the export audit migrations on startup. A nil pool
// is a no-op.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		slog.Warn("Skipping migrations: no jobs database")
		return nil
	}
	slog.Info("Starting database migrations")

	for _, m := range Migrations() {
		if err := m.Up(ctx, pool); err != nil {
			slog.Error("Migration failed", "name", m.Name, "error", err)
			return err
		}
		slog.Info("Migration completed", "name", m.Name)
	}

	slog.Info("All migrations completed successfully")
	return nil
}

func createExportJobs(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS export_jobs (
			id UUID PRIMARY KEY,
			format TEXT NOT NULL,
			filename TEXT NOT NULL,
			size_bytes INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`
	_, err := pool.Exec(ctx, query)
	return err
}

// addCreatedAtIndex is best-effort: a failure is logged and skipped.
func addCreatedAtIndex(ctx context.Context, pool *pgxpool.Pool) error {
	query := `CREATE INDEX IF NOT EXISTS idx_export_jobs_created_at ON export_jobs (created_at DESC);`

	if _, err := pool.Exec(ctx, query); err != nil {
		slog.Warn("Error adding created_at index (may already exist)", "error", err)
		return nil
	}
	return nil
}
