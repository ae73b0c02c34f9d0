package domain

import (
	"time"

	"github.com/google/uuid"
)

type ExportFormat string

const (
	FormatPDF  ExportFormat = "pdf"
	FormatPNG  ExportFormat = "png"
	FormatDOCX ExportFormat = "docx"
	FormatJSON ExportFormat = "json"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ExportJob is one audit row per export attempt.
type ExportJob struct {
	ID        uuid.UUID              `json:"id"`
	Format    ExportFormat           `json:"format"`
	Filename  string                 `json:"filename"`
	SizeBytes int                    `json:"size_bytes"`
	Status    string                 `json:"status"`
	Error     string                 `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func NewExportJob(format ExportFormat, filename string) *ExportJob {
	now := time.Now().UTC()
	return &ExportJob{
		ID:        uuid.New(),
		Format:    format,
		Filename:  filename,
		Metadata:  map[string]interface{}{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Finish records the outcome of the export.
func (j *ExportJob) Finish(size int, err error) {
	j.SizeBytes = size
	j.UpdatedAt = time.Now().UTC()
	if err != nil {
		j.Status = StatusFailed
		j.Error = err.Error()
		return
	}
	j.Status = StatusCompleted
}
