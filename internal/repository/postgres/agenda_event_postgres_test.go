package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agendaapi/internal/model"
)

var eventColumnNames = []string{
	"id", "sei_number", "submission_date", "title", "requester", "location", "focal_point",
	"start_time", "end_time", "situation", "daily_sei_number", "description", "participants", "type",
	"created_at", "updated_at",
}

func strPtr(s string) *string { return &s }

func eventRow(rows *sqlmock.Rows, e model.AgendaEvent) *sqlmock.Rows {
	var sei, situation any
	if e.SEINumber != nil {
		sei = *e.SEINumber
	}
	if e.Situation != nil {
		situation = *e.Situation
	}
	var start, end any
	if e.StartTime != nil {
		start = *e.StartTime
	}
	if e.EndTime != nil {
		end = *e.EndTime
	}
	return rows.AddRow(e.ID, sei, nil, e.Title, e.Requester, e.Location, e.FocalPoint,
		start, end, situation, nil, nil, nil, e.Type, e.CreatedAt, e.UpdatedAt)
}

func TestAgendaEventPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAgendaEventPostgres(db)
	now := time.Now().UTC()
	start := time.Date(2025, 2, 12, 8, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 12, 17, 0, 0, 0, time.UTC)
	e := &model.AgendaEvent{
		ID:         "0b7c8f8e-4b55-4a43-9b8e-0c55b1e0c001",
		SEINumber:  strPtr("3900032430.000048/2025-09"),
		Title:      "Solicita JPS",
		Requester:  "PMPE (20º BPM)",
		Location:   "Sede do 20º BPM",
		FocalPoint: "Major Ferraz",
		StartTime:  &start,
		EndTime:    &end,
		Situation:  strPtr(model.SituationAttended),
		Type:       model.TypeJPS,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	mock.ExpectQuery("INSERT INTO agenda_events").
		WithArgs(e.ID, *e.SEINumber, nil, e.Title, e.Requester, e.Location, e.FocalPoint,
			start, end, model.SituationAttended, nil, nil, nil, e.Type, now, now).
		WillReturnRows(eventRow(sqlmock.NewRows(eventColumnNames), *e))

	got, err := repo.Create(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	require.NotNil(t, got.SEINumber)
	assert.Equal(t, *e.SEINumber, *got.SEINumber)
	assert.Nil(t, got.SubmissionDate)
	require.NotNil(t, got.StartTime)
	assert.True(t, start.Equal(*got.StartTime))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAgendaEventPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAgendaEventPostgres(db)
	ctx := context.Background()

	t.Run("found unscheduled", func(t *testing.T) {
		rows := eventRow(sqlmock.NewRows(eventColumnNames), model.AgendaEvent{
			ID: "evt-1", Title: "Solicita JPS", Type: model.TypeJPS,
		})
		mock.ExpectQuery("SELECT (.+) FROM agenda_events WHERE id = ?").
			WithArgs("evt-1").
			WillReturnRows(rows)

		e, err := repo.FindByID(ctx, "evt-1")
		require.NoError(t, err)
		assert.Equal(t, "evt-1", e.ID)
		assert.Nil(t, e.StartTime)
		assert.Nil(t, e.Situation)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM agenda_events WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		e, err := repo.FindByID(ctx, "missing")
		assert.True(t, IsNoRowsError(err))
		assert.Nil(t, e)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAgendaEventPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAgendaEventPostgres(db)
	now := time.Now().UTC()
	e := &model.AgendaEvent{ID: "evt-1", Title: "Reunião", Type: model.TypeMeeting, UpdatedAt: now}

	mock.ExpectQuery("UPDATE agenda_events SET").
		WithArgs("evt-1", nil, nil, "Reunião", "", "", "", nil, nil, nil, nil, nil, nil, model.TypeMeeting, now).
		WillReturnRows(eventRow(sqlmock.NewRows(eventColumnNames), *e))

	got, err := repo.Update(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, "Reunião", got.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAgendaEventPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAgendaEventPostgres(db)

	mock.ExpectExec("DELETE FROM agenda_events WHERE id = ?").
		WithArgs("evt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(context.Background(), "evt-1"))

	mock.ExpectExec("DELETE FROM agenda_events WHERE id = ?").
		WithArgs("evt-2").
		WillReturnError(errors.New("conn closed"))
	assert.Error(t, repo.Delete(context.Background(), "evt-2"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAgendaEventPostgres_ListInWindow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAgendaEventPostgres(db)
	from := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	start := time.Date(2025, 2, 12, 8, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(eventColumnNames)
	eventRow(rows, model.AgendaEvent{ID: "a", Title: "JPS", Type: model.TypeJPS, StartTime: &start})
	eventRow(rows, model.AgendaEvent{ID: "b", Title: "JPE", Type: model.TypeJPE})

	mock.ExpectQuery("SELECT (.+) FROM agenda_events WHERE (.+) ORDER BY start_time ASC NULLS LAST").
		WithArgs(from, to).
		WillReturnRows(rows)

	got, err := repo.ListInWindow(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAgendaEventPostgres_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAgendaEventPostgres(db)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("no criteria", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM agenda_events ORDER BY COALESCE`).
			WillReturnRows(sqlmock.NewRows(eventColumnNames))

		got, err := repo.Search(context.Background(), model.FilterCriteria{Type: "TODOS", Situation: "TODAS"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("all criteria", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM agenda_events WHERE regexp_replace(.+) AND lower\(type\) (.+) AND lower\(situation\) (.+) AND focal_point ILIKE (.+) AND location ILIKE (.+) AND (.+) >= \$6`).
			WithArgs("3900009117000156", "jps", "atendido", `50\%`, "Recife", from).
			WillReturnRows(sqlmock.NewRows(eventColumnNames))

		_, err := repo.Search(context.Background(), model.FilterCriteria{
			SEINumber:  "3900009117.000156/",
			Type:       "jps",
			Situation:  "atendido",
			FocalPoint: "50%",
			Location:   "Recife",
			From:       &from,
		})
		require.NoError(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
