package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"neoncv/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestSQLiteRepoSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &SQLiteJobsRepo{DB: db}
	job := domain.NewExportJob(domain.FormatPDF, "cv.pdf")
	job.Finish(2048, nil)

	mock.ExpectExec("INSERT INTO export_jobs").
		WithArgs(
			job.ID.String(),
			"pdf",
			"cv.pdf",
			2048,
			domain.StatusCompleted,
			"",
			"{}",
			sqlmock.AnyArg(), // created_at
			sqlmock.AnyArg(), // updated_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Save(context.Background(), job); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestSQLiteRepoSaveWrapsError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	boom := errors.New("disk I/O error")
	mock.ExpectExec("INSERT INTO export_jobs").WillReturnError(boom)

	job := domain.NewExportJob(domain.FormatDOCX, "cv.docx")
	job.Finish(0, errors.New("strict mode"))
	err = (&SQLiteJobsRepo{DB: db}).Save(context.Background(), job)
	if !errors.Is(err, boom) {
		t.Fatalf("Save error = %v, want %v", err, boom)
	}
}

func TestSQLiteRepoRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	id := uuid.New()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "format", "filename", "size_bytes", "status", "error", "metadata", "created_at", "updated_at"}).
		AddRow(id.String(), "png", "cv.png", 512, domain.StatusFailed, "node not found", `{"selector":"#cv"}`, at, at)
	mock.ExpectQuery("SELECT id, format, filename").WithArgs(5).WillReturnRows(rows)

	jobs, err := (&SQLiteJobsRepo{DB: db}).Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(jobs))
	}
	j := jobs[0]
	if j.ID != id || j.Format != domain.FormatPNG || j.SizeBytes != 512 || j.Error != "node not found" {
		t.Errorf("job = %+v", j)
	}
	if j.Metadata["selector"] != "#cv" {
		t.Errorf("metadata = %v", j.Metadata)
	}
	if !j.CreatedAt.Equal(at) {
		t.Errorf("created_at = %v", j.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestNilRepositoriesAreNoops(t *testing.T) {
	job := domain.NewExportJob(domain.FormatJSON, "cv.json")
	if err := NewJobsRepo(nil).Save(context.Background(), job); err != nil {
		t.Errorf("JobsRepo without pool: %v", err)
	}
	if err := (&SQLiteJobsRepo{}).Save(context.Background(), job); err != nil {
		t.Errorf("SQLiteJobsRepo without db: %v", err)
	}
}
