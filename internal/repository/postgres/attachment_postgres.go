package postgres

import (
	"context"
	"database/sql"

	"agendaapi/internal/model"
	"agendaapi/internal/repository"
)

// AttachmentPostgres is a PostgreSQL implementation of repository.AttachmentRepository.
type AttachmentPostgres struct {
	db *sql.DB
}

// NewAttachmentPostgres creates a new AttachmentPostgres repository.
func NewAttachmentPostgres(db *sql.DB) *AttachmentPostgres {
	return &AttachmentPostgres{db: db}
}

var _ repository.AttachmentRepository = (*AttachmentPostgres)(nil)

func scanAttachment(s rowScanner) (*model.Attachment, error) {
	var a model.Attachment
	if err := s.Scan(
		&a.ID,
		&a.EventID,
		&a.Filename,
		&a.StoragePath,
		&a.Size,
		&a.ContentType,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new attachment row and returns the stored record.
func (r *AttachmentPostgres) Create(ctx context.Context, a *model.Attachment) (*model.Attachment, error) {
	const q = `
		INSERT INTO event_attachments (id, event_id, filename, storage_path, size, content_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, event_id, filename, storage_path, size, content_type, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		a.ID,
		a.EventID,
		a.Filename,
		a.StoragePath,
		a.Size,
		a.ContentType,
		a.CreatedAt,
	)
	return scanAttachment(row)
}

// FindByID fetches an attachment scoped to its event.
func (r *AttachmentPostgres) FindByID(ctx context.Context, eventID, id string) (*model.Attachment, error) {
	const q = `
		SELECT id, event_id, filename, storage_path, size, content_type, created_at
		FROM event_attachments
		WHERE id = $1 AND event_id = $2
	`
	return scanAttachment(r.db.QueryRowContext(ctx, q, id, eventID))
}

// ListByEvent returns the attachments of an event, newest first.
func (r *AttachmentPostgres) ListByEvent(ctx context.Context, eventID string) ([]model.Attachment, error) {
	const q = `
		SELECT id, event_id, filename, storage_path, size, content_type, created_at
		FROM event_attachments
		WHERE event_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Attachment, 0)
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes an attachment by ID. It does not return an error if the row does not exist.
func (r *AttachmentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM event_attachments WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
