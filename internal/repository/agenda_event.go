package repository

import (
	"context"
	"time"

	"agendaapi/internal/model"
)

// AgendaEventRepository defines data access for agenda events using SQL queries only.
// No business logic here: strictly persistence operations.
type AgendaEventRepository interface {
	// Create inserts a new event and returns the stored row.
	Create(ctx context.Context, e *model.AgendaEvent) (*model.AgendaEvent, error)

	// FindByID returns sql.ErrNoRows when the event does not exist.
	FindByID(ctx context.Context, id string) (*model.AgendaEvent, error)

	// Update overwrites every mutable column of the event identified by e.ID.
	Update(ctx context.Context, e *model.AgendaEvent) (*model.AgendaEvent, error)

	// Delete removes an event by ID. It returns nil if the row did not exist.
	Delete(ctx context.Context, id string) error

	// ListInWindow returns candidate events touching [from, to): scheduled events
	// overlapping it and unscheduled ones submitted inside it.
	ListInWindow(ctx context.Context, from, to time.Time) ([]model.AgendaEvent, error)

	// Search applies the filter criteria, newest effective date first.
	Search(ctx context.Context, f model.FilterCriteria) ([]model.AgendaEvent, error)
}

// AttachmentRepository persists attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, a *model.Attachment) (*model.Attachment, error)
	// FindByID returns sql.ErrNoRows when the attachment does not belong to the event.
	FindByID(ctx context.Context, eventID, id string) (*model.Attachment, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Attachment, error)
	Delete(ctx context.Context, id string) error
}
