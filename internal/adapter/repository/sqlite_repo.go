package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"neoncv/internal/domain"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// SQLiteJobsRepo is the CLI's local export history.
type SQLiteJobsRepo struct {
	DB *sql.DB
}

// OpenSQLite opens (creating if needed) the history database at path and
// applies the embedded migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteJobsRepo, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &SQLiteJobsRepo{DB: db}, nil
}

// RunMigrations applies embedded SQL migrations via goose. A nil database
// is a no-op.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return nil
	}
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

func (r *SQLiteJobsRepo) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

func (r *SQLiteJobsRepo) Save(ctx context.Context, j *domain.ExportJob) error {
	if r == nil || r.DB == nil {
		return nil
	}
	metaB, err := json.Marshal(metadataOrEmpty(j.Metadata))
	if err != nil {
		return fmt.Errorf("sqlite_repo: marshal metadata: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, `INSERT INTO export_jobs (id, format, filename, size_bytes, status, error, metadata, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?)
		ON CONFLICT (id) DO UPDATE SET status = excluded.status, size_bytes = excluded.size_bytes, error = excluded.error, metadata = excluded.metadata, updated_at = excluded.updated_at`,
		j.ID.String(), string(j.Format), j.Filename, j.SizeBytes, j.Status, j.Error, string(metaB), j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sqlite_repo: upsert export job %s: %w", j.ID, err)
	}
	return nil
}

// Recent returns the latest jobs, newest first.
func (r *SQLiteJobsRepo) Recent(ctx context.Context, limit int) ([]domain.ExportJob, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT id, format, filename, size_bytes, status, error, metadata, created_at, updated_at
		FROM export_jobs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite_repo: query recent: %w", err)
	}
	defer rows.Close()

	var out []domain.ExportJob
	for rows.Next() {
		var (
			j          domain.ExportJob
			id, format string
			meta       string
			created    time.Time
			updated    time.Time
		)
		if err := rows.Scan(&id, &format, &j.Filename, &j.SizeBytes, &j.Status, &j.Error, &meta, &created, &updated); err != nil {
			return nil, fmt.Errorf("sqlite_repo: scan: %w", err)
		}
		if j.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("sqlite_repo: bad id %q: %w", id, err)
		}
		j.Format = domain.ExportFormat(format)
		j.CreatedAt, j.UpdatedAt = created, updated
		j.Metadata = map[string]interface{}{}
		if meta != "" {
			if err := json.Unmarshal([]byte(meta), &j.Metadata); err != nil {
				return nil, fmt.Errorf("sqlite_repo: metadata for %s: %w", id, err)
			}
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
