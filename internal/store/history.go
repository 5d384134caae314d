package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Upload statuses recorded in history.
const (
	UploadSucceeded = "success"
	UploadFailed    = "failed"
)

// Upload is one entry in the upload history.
type Upload struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	UploadedAt  time.Time `json:"uploadedAt"`
	Imported    int       `json:"imported"`
	SummaryRows int       `json:"summaryRows"`
	Rejected    int       `json:"rejected"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
}

// RecordUpload appends an entry to the upload history. Failed parses are
// recorded too, so operators can see files that were rejected outright.
func (s *Store) RecordUpload(ctx context.Context, u Upload) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO upload_history (id, filename, uploaded_at, imported, summary_rows, rejected, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Filename, u.UploadedAt, u.Imported, u.SummaryRows, u.Rejected, u.Status, u.Error,
	)
	if err != nil {
		return fmt.Errorf("record upload: %w", err)
	}
	return nil
}

// ListUploads returns the most recent history entries, newest first.
func (s *Store) ListUploads(ctx context.Context, limit int) ([]Upload, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, filename, uploaded_at, imported, summary_rows, rejected, status, error
		FROM upload_history ORDER BY uploaded_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	var uploads []Upload
	for rows.Next() {
		var u Upload
		if err := rows.Scan(&u.ID, &u.Filename, &u.UploadedAt, &u.Imported,
			&u.SummaryRows, &u.Rejected, &u.Status, &u.Error); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}
