package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"agendaapi/internal/calendar"
	"agendaapi/internal/model"
	"agendaapi/internal/repository"
)

const eventColumns = `id, sei_number, submission_date, title, requester, location, focal_point,
		start_time, end_time, situation, daily_sei_number, description, participants, type,
		created_at, updated_at`

// AgendaEventPostgres is a PostgreSQL implementation of repository.AgendaEventRepository.
type AgendaEventPostgres struct {
	db *sql.DB
}

// NewAgendaEventPostgres creates a new AgendaEventPostgres repository.
func NewAgendaEventPostgres(db *sql.DB) *AgendaEventPostgres {
	return &AgendaEventPostgres{db: db}
}

var _ repository.AgendaEventRepository = (*AgendaEventPostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (*model.AgendaEvent, error) {
	var e model.AgendaEvent
	if err := s.Scan(
		&e.ID,
		&e.SEINumber,
		&e.SubmissionDate,
		&e.Title,
		&e.Requester,
		&e.Location,
		&e.FocalPoint,
		&e.StartTime,
		&e.EndTime,
		&e.Situation,
		&e.DailySEINumber,
		&e.Description,
		&e.Participants,
		&e.Type,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEvents(rows *sql.Rows) ([]model.AgendaEvent, error) {
	defer rows.Close()

	items := make([]model.AgendaEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new event row and returns the stored record.
func (r *AgendaEventPostgres) Create(ctx context.Context, e *model.AgendaEvent) (*model.AgendaEvent, error) {
	q := `
		INSERT INTO agenda_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + eventColumns
	row := r.db.QueryRowContext(ctx, q,
		e.ID,
		e.SEINumber,
		e.SubmissionDate,
		e.Title,
		e.Requester,
		e.Location,
		e.FocalPoint,
		e.StartTime,
		e.EndTime,
		e.Situation,
		e.DailySEINumber,
		e.Description,
		e.Participants,
		e.Type,
		e.CreatedAt,
		e.UpdatedAt,
	)
	return scanEvent(row)
}

// FindByID fetches a single event by its ID.
func (r *AgendaEventPostgres) FindByID(ctx context.Context, id string) (*model.AgendaEvent, error) {
	q := `SELECT ` + eventColumns + ` FROM agenda_events WHERE id = $1`
	return scanEvent(r.db.QueryRowContext(ctx, q, id))
}

// Update rewrites the mutable columns and returns the stored record.
func (r *AgendaEventPostgres) Update(ctx context.Context, e *model.AgendaEvent) (*model.AgendaEvent, error) {
	q := `
		UPDATE agenda_events SET
			sei_number = $2, submission_date = $3, title = $4, requester = $5, location = $6,
			focal_point = $7, start_time = $8, end_time = $9, situation = $10,
			daily_sei_number = $11, description = $12, participants = $13, type = $14,
			updated_at = $15
		WHERE id = $1
		RETURNING ` + eventColumns
	row := r.db.QueryRowContext(ctx, q,
		e.ID,
		e.SEINumber,
		e.SubmissionDate,
		e.Title,
		e.Requester,
		e.Location,
		e.FocalPoint,
		e.StartTime,
		e.EndTime,
		e.Situation,
		e.DailySEINumber,
		e.Description,
		e.Participants,
		e.Type,
		e.UpdatedAt,
	)
	return scanEvent(row)
}

// Delete removes an event by ID. Attachments rows cascade.
func (r *AgendaEventPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM agenda_events WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// ListInWindow returns events touching [from, to) ordered by start, unscheduled last.
func (r *AgendaEventPostgres) ListInWindow(ctx context.Context, from, to time.Time) ([]model.AgendaEvent, error) {
	q := `
		SELECT ` + eventColumns + `
		FROM agenda_events
		WHERE (start_time IS NOT NULL AND start_time < $2 AND COALESCE(end_time, start_time) >= $1)
		   OR (start_time IS NULL AND submission_date >= $1 AND submission_date < $2)
		ORDER BY start_time ASC NULLS LAST, id ASC`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// Search builds a parameterized WHERE clause from the criteria.
func (r *AgendaEventPostgres) Search(ctx context.Context, f model.FilterCriteria) ([]model.AgendaEvent, error) {
	where, args := buildFilter(f)

	q := `SELECT ` + eventColumns + ` FROM agenda_events`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	q += ` ORDER BY COALESCE(start_time, submission_date) DESC NULLS LAST, id ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func buildFilter(f model.FilterCriteria) ([]string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if digits := calendar.NormalizeSEI(f.SEINumber); digits != "" {
		add(`regexp_replace(COALESCE(sei_number, ''), '[^0-9]', '', 'g') LIKE '%%' || $%d || '%%'`, digits)
	}
	if t := strings.TrimSpace(f.Type); t != "" && !strings.EqualFold(t, "TODOS") {
		add(`lower(type) = lower($%d)`, t)
	}
	if s := strings.TrimSpace(f.Situation); s != "" && !strings.EqualFold(s, "TODAS") {
		add(`lower(situation) = lower($%d)`, s)
	}
	if fp := strings.TrimSpace(f.FocalPoint); fp != "" {
		add(`focal_point ILIKE '%%' || $%d || '%%'`, escapeLike(fp))
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		add(`location ILIKE '%%' || $%d || '%%'`, escapeLike(loc))
	}
	if f.From != nil {
		add(`COALESCE(start_time, submission_date) >= $%d`, *f.From)
	}
	if f.To != nil {
		add(`COALESCE(start_time, submission_date) < $%d`, *f.To)
	}
	return where, args
}
