package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"neoncv/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// JobsRepo writes export audit rows to Postgres.
type JobsRepo struct {
	pool *pgxpool.Pool
}

func NewJobsRepo(pool *pgxpool.Pool) *JobsRepo {
	return &JobsRepo{pool: pool}
}

// Save upserts the job. A repo without a pool drops writes silently so the
// server keeps exporting when the audit database is down.
func (r *JobsRepo) Save(ctx context.Context, j *domain.ExportJob) error {
	if r == nil || r.pool == nil {
		return nil
	}

	metaB, err := json.Marshal(metadataOrEmpty(j.Metadata))
	if err != nil {
		return fmt.Errorf("jobs_repo: marshal metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, `INSERT INTO export_jobs (id, format, filename, size_bytes, status, error, metadata, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, size_bytes = EXCLUDED.size_bytes, error = EXCLUDED.error, metadata = EXCLUDED.metadata, updated_at = EXCLUDED.updated_at`,
		j.ID, string(j.Format), j.Filename, j.SizeBytes, j.Status, j.Error, metaB, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("jobs_repo: upsert export job %s: %w", j.ID, err)
	}
	return nil
}

func metadataOrEmpty(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}
