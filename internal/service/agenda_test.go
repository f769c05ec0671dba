package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"agendaapi/internal/calendar"
	"agendaapi/internal/model"
	"agendaapi/internal/notify"
	repoMocks "agendaapi/internal/repository/mocks"
	storeMocks "agendaapi/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)

type memCache struct {
	views       map[string][]model.AgendaEvent
	gen         int64
	invalidated int
	err         error
}

func newMemCache() *memCache { return &memCache{views: map[string][]model.AgendaEvent{}} }

func (c *memCache) Get(_ context.Context, key string) ([]model.AgendaEvent, int64, bool) {
	v, ok := c.views[key]
	return v, c.gen, ok
}

func (c *memCache) Set(_ context.Context, gen int64, key string, events []model.AgendaEvent) {
	if gen != c.gen {
		return
	}
	c.views[key] = events
}

func (c *memCache) Invalidate(context.Context) error {
	c.invalidated++
	c.gen++
	c.views = map[string][]model.AgendaEvent{}
	return c.err
}

type recordingPublisher struct {
	changes []notify.Change
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, c notify.Change) error {
	p.changes = append(p.changes, c)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	events *repoMocks.MockAgendaEventRepository
	atts   *repoMocks.MockAttachmentRepository
	store  *storeMocks.MockStorage
	cache  *memCache
	pub    *recordingPublisher
	logs   *observer.ObservedLogs
	svc    *agendaService
}

func newFixture(t *testing.T, withStore bool) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	f := &fixture{
		events: new(repoMocks.MockAgendaEventRepository),
		atts:   new(repoMocks.MockAttachmentRepository),
		store:  new(storeMocks.MockStorage),
		cache:  newMemCache(),
		pub:    &recordingPublisher{},
		logs:   logs,
	}
	deps := AgendaDeps{
		Events:      f.events,
		Attachments: f.atts,
		Cache:       f.cache,
		Publisher:   f.pub,
		Location:    time.UTC,
		Logger:      zap.New(core),
	}
	if withStore {
		deps.Store = f.store
	}
	f.svc = NewAgendaService(deps).(*agendaService)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func ptr[T any](v T) *T { return &v }

func date(y int, m time.Month, d int) model.Date { return model.NewDate(y, m, d) }

func eventArg(args mock.Arguments) *model.AgendaEvent { return args.Get(1).(*model.AgendaEvent) }

func TestAgendaService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("schedules with default hours and infers type", func(t *testing.T) {
		f := newFixture(t, false)
		var saved *model.AgendaEvent
		f.events.On("Create", ctx, mock.AnythingOfType("*model.AgendaEvent")).
			Run(func(args mock.Arguments) { saved = eventArg(args) }).
			Return(&model.AgendaEvent{ID: "stored"}, nil)

		got, err := f.svc.Create(ctx, model.CreateEventInput{
			Title:     "  JPS em Caruaru ",
			EventDate: ptr(date(2025, 2, 19)),
			EndDate:   ptr(date(2025, 2, 21)),
			Situation: ptr("realizado"),
			SEINumber: ptr("  "),
		})
		require.NoError(t, err)
		assert.Equal(t, "stored", got.ID)

		require.NotNil(t, saved)
		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, "JPS em Caruaru", saved.Title)
		assert.Equal(t, model.TypeJPS, saved.Type)
		assert.Equal(t, "REALIZADO", *saved.Situation)
		assert.Nil(t, saved.SEINumber)
		assert.Equal(t, time.Date(2025, 2, 19, 8, 0, 0, 0, time.UTC), *saved.StartTime)
		assert.Equal(t, time.Date(2025, 2, 21, 17, 0, 0, 0, time.UTC), *saved.EndTime)
		assert.Equal(t, fixedNow, saved.CreatedAt)

		assert.Equal(t, 1, f.cache.invalidated)
		require.Len(t, f.pub.changes, 1)
		assert.Equal(t, notify.ActionCreated, f.pub.changes[0].Action)
		assert.Equal(t, "stored", f.pub.changes[0].EventID)
	})

	t.Run("explicit type is kept", func(t *testing.T) {
		f := newFixture(t, false)
		f.events.On("Create", ctx, mock.MatchedBy(func(e *model.AgendaEvent) bool {
			return e.Type == model.TypeLecture && e.StartTime == nil
		})).Return(&model.AgendaEvent{ID: "x"}, nil)

		_, err := f.svc.Create(ctx, model.CreateEventInput{Title: "Reunião", Type: "palestra"})
		require.NoError(t, err)
		f.events.AssertExpectations(t)
	})

	tests := []struct {
		name    string
		in      model.CreateEventInput
		wantErr error
	}{
		{name: "blank title", in: model.CreateEventInput{Title: "   "}, wantErr: ErrTitleRequired},
		{name: "unknown situation", in: model.CreateEventInput{Title: "a", Situation: ptr("PENDENTE")}, wantErr: ErrInvalidSituation},
		{name: "end before start", in: model.CreateEventInput{Title: "a", EventDate: ptr(date(2025, 2, 19)), EndDate: ptr(date(2025, 2, 18))}, wantErr: ErrInvalidRange},
		{name: "end without start", in: model.CreateEventInput{Title: "a", EndDate: ptr(date(2025, 2, 18))}, wantErr: ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			_, err := f.svc.Create(ctx, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
			f.events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			assert.Empty(t, f.pub.changes)
		})
	}

	t.Run("notification failures are logged only", func(t *testing.T) {
		f := newFixture(t, false)
		f.cache.err = errors.New("redis down")
		f.pub.err = errors.New("broker down")
		f.events.On("Create", ctx, mock.Anything).Return(&model.AgendaEvent{ID: "x"}, nil)

		_, err := f.svc.Create(ctx, model.CreateEventInput{Title: "Reunião"})
		require.NoError(t, err)
		assert.Equal(t, 1, f.logs.FilterMessage("cache_invalidate_failed").Len())
		assert.Equal(t, 1, f.logs.FilterMessage("change_publish_failed").Len())
	})
}

func TestAgendaService_Get(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	_, err := f.svc.Get(ctx, "")
	assert.ErrorIs(t, err, ErrIDRequired)

	f.events.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)
	_, err = f.svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	f.events.On("FindByID", ctx, "boom").Return(nil, errors.New("db fail"))
	_, err = f.svc.Get(ctx, "boom")
	assert.EqualError(t, err, "db fail")
}

func scheduledEvent() *model.AgendaEvent {
	start := time.Date(2025, 2, 19, 8, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 19, 17, 0, 0, 0, time.UTC)
	sub := time.Date(2025, 1, 29, 0, 0, 0, 0, time.UTC)
	return &model.AgendaEvent{
		ID:             "e1",
		Title:          "JPE Petrolina",
		Type:           model.TypeJPE,
		Requester:      "Prefeitura",
		StartTime:      &start,
		EndTime:        &end,
		SubmissionDate: &sub,
		Situation:      ptr(model.SituationRequested),
		Description:    ptr("notes"),
	}
}

func TestAgendaService_Update(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		in      model.UpdateEventInput
		check   func(t *testing.T, e *model.AgendaEvent)
		wantErr error
	}{
		{
			name: "absent fields are kept",
			in:   model.UpdateEventInput{Location: model.Some(" Recife ")},
			check: func(t *testing.T, e *model.AgendaEvent) {
				assert.Equal(t, "Recife", e.Location)
				assert.Equal(t, "JPE Petrolina", e.Title)
				require.NotNil(t, e.StartTime)
				require.NotNil(t, e.SubmissionDate)
				assert.Equal(t, "notes", *e.Description)
				assert.Equal(t, fixedNow, e.UpdatedAt)
			},
		},
		{
			name: "null event date clears schedule",
			in:   model.UpdateEventInput{EventDate: model.Null[model.Date]()},
			check: func(t *testing.T, e *model.AgendaEvent) {
				assert.Nil(t, e.StartTime)
				assert.Nil(t, e.EndTime)
			},
		},
		{
			name: "null optional text clears it",
			in: model.UpdateEventInput{
				Description:    model.Null[string](),
				Situation:      model.Null[string](),
				SubmissionDate: model.Null[model.Date](),
				Requester:      model.Null[string](),
			},
			check: func(t *testing.T, e *model.AgendaEvent) {
				assert.Nil(t, e.Description)
				assert.Nil(t, e.Situation)
				assert.Nil(t, e.SubmissionDate)
				assert.Equal(t, "", e.Requester)
			},
		},
		{
			name: "end date alone extends existing start",
			in:   model.UpdateEventInput{EndDate: model.Some(date(2025, 2, 21))},
			check: func(t *testing.T, e *model.AgendaEvent) {
				assert.Equal(t, time.Date(2025, 2, 19, 8, 0, 0, 0, time.UTC), *e.StartTime)
				assert.Equal(t, time.Date(2025, 2, 21, 17, 0, 0, 0, time.UTC), *e.EndTime)
			},
		},
		{
			name: "new event date reschedules",
			in:   model.UpdateEventInput{EventDate: model.Some(date(2025, 3, 3))},
			check: func(t *testing.T, e *model.AgendaEvent) {
				assert.Equal(t, time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC), *e.StartTime)
				assert.Equal(t, time.Date(2025, 3, 3, 17, 0, 0, 0, time.UTC), *e.EndTime)
			},
		},
		{
			name: "cleared type is inferred from title",
			in:   model.UpdateEventInput{Title: model.Some("Reunião com governo"), Type: model.Null[string]()},
			check: func(t *testing.T, e *model.AgendaEvent) {
				assert.Equal(t, model.TypeMeeting, e.Type)
			},
		},
		{name: "null title rejected", in: model.UpdateEventInput{Title: model.Null[string]()}, wantErr: ErrTitleRequired},
		{name: "bad situation rejected", in: model.UpdateEventInput{Situation: model.Some("x")}, wantErr: ErrInvalidSituation},
		{name: "end before start rejected", in: model.UpdateEventInput{EndDate: model.Some(date(2025, 2, 1))}, wantErr: ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			f.events.On("FindByID", ctx, "e1").Return(scheduledEvent(), nil)
			var saved *model.AgendaEvent
			f.events.On("Update", ctx, mock.Anything).
				Run(func(args mock.Arguments) { saved = eventArg(args) }).
				Return(&model.AgendaEvent{ID: "e1"}, nil)

			_, err := f.svc.Update(ctx, "e1", tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				f.events.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, saved)
			tt.check(t, saved)
			require.Len(t, f.pub.changes, 1)
			assert.Equal(t, notify.ActionUpdated, f.pub.changes[0].Action)
		})
	}

	t.Run("end date on unscheduled event", func(t *testing.T) {
		f := newFixture(t, false)
		f.events.On("FindByID", ctx, "e2").Return(&model.AgendaEvent{ID: "e2", Title: "a"}, nil)
		_, err := f.svc.Update(ctx, "e2", model.UpdateEventInput{EndDate: model.Some(date(2025, 2, 1))})
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t, false)
		f.events.On("FindByID", ctx, "nope").Return(nil, sql.ErrNoRows)
		_, err := f.svc.Update(ctx, "nope", model.UpdateEventInput{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAgendaService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes stored objects before the row", func(t *testing.T) {
		f := newFixture(t, true)
		f.events.On("FindByID", ctx, "e1").Return(scheduledEvent(), nil)
		f.atts.On("ListByEvent", ctx, "e1").Return([]model.Attachment{
			{ID: "a1", StoragePath: "events/e1/a.pdf"},
			{ID: "a2", StoragePath: "events/e1/b.png"},
		}, nil)
		f.store.On("Delete", ctx, "events/e1/a.pdf").Return(nil)
		f.store.On("Delete", ctx, "events/e1/b.png").Return(nil)
		f.events.On("Delete", ctx, "e1").Return(nil)

		require.NoError(t, f.svc.Delete(ctx, "e1"))
		f.store.AssertExpectations(t)
		f.events.AssertExpectations(t)
		require.Len(t, f.pub.changes, 1)
		assert.Equal(t, notify.ActionDeleted, f.pub.changes[0].Action)
	})

	t.Run("storage failure keeps the row", func(t *testing.T) {
		f := newFixture(t, true)
		f.events.On("FindByID", ctx, "e1").Return(scheduledEvent(), nil)
		f.atts.On("ListByEvent", ctx, "e1").Return([]model.Attachment{{ID: "a1", StoragePath: "k"}}, nil)
		f.store.On("Delete", ctx, "k").Return(errors.New("s3 down"))

		err := f.svc.Delete(ctx, "e1")
		assert.EqualError(t, err, "delete storage: s3 down")
		f.events.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		assert.Empty(t, f.pub.changes)
	})

	t.Run("without storage only the row is removed", func(t *testing.T) {
		f := newFixture(t, false)
		f.events.On("FindByID", ctx, "e1").Return(scheduledEvent(), nil)
		f.events.On("Delete", ctx, "e1").Return(nil)

		require.NoError(t, f.svc.Delete(ctx, "e1"))
		f.atts.AssertNotCalled(t, "ListByEvent", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t, false)
		f.events.On("FindByID", ctx, "nope").Return(nil, sql.ErrNoRows)
		assert.ErrorIs(t, f.svc.Delete(ctx, "nope"), ErrNotFound)
	})
}

func TestAgendaService_Views(t *testing.T) {
	ctx := context.Background()

	inWeek := *scheduledEvent()
	outside := *scheduledEvent()
	outside.ID = "e9"
	early := time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)
	earlyEnd := early.Add(9 * time.Hour)
	outside.StartTime, outside.EndTime = &early, &earlyEnd
	unscheduled := model.AgendaEvent{ID: "u1", Title: "a definir", SubmissionDate: ptr(time.Date(2025, 2, 18, 0, 0, 0, 0, time.UTC))}

	t.Run("week view selects, orders and caches", func(t *testing.T) {
		f := newFixture(t, false)
		w := calendar.WeekWindow(time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC), time.UTC)
		f.events.On("ListInWindow", ctx, w.From, w.To).
			Return([]model.AgendaEvent{unscheduled, outside, inWeek}, nil).Once()

		got, err := f.svc.Week(ctx, date(2025, 2, 20))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "e1", got[0].ID)
		assert.Equal(t, "u1", got[1].ID)

		_, ok := f.cache.views["week:2025-02-17"]
		assert.True(t, ok)

		again, err := f.svc.Week(ctx, date(2025, 2, 17))
		require.NoError(t, err)
		assert.Equal(t, got, again)
		f.events.AssertNumberOfCalls(t, "ListInWindow", 1)
	})

	t.Run("day and month keys", func(t *testing.T) {
		f := newFixture(t, false)
		f.events.On("ListInWindow", ctx, mock.Anything, mock.Anything).Return([]model.AgendaEvent{}, nil)

		_, err := f.svc.Day(ctx, date(2025, 2, 19))
		require.NoError(t, err)
		_, err = f.svc.Month(ctx, date(2025, 2, 19))
		require.NoError(t, err)

		assert.Contains(t, f.cache.views, "day:2025-02-19")
		assert.Contains(t, f.cache.views, "month:2025-02")
	})

	t.Run("view read before a concurrent write is not cached", func(t *testing.T) {
		f := newFixture(t, false)
		f.events.On("ListInWindow", ctx, mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { _ = f.cache.Invalidate(ctx) }).
			Return([]model.AgendaEvent{inWeek}, nil)

		_, err := f.svc.Day(ctx, date(2025, 2, 12))
		require.NoError(t, err)
		assert.Empty(t, f.cache.views)
	})

	t.Run("repository error", func(t *testing.T) {
		f := newFixture(t, false)
		f.events.On("ListInWindow", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))
		_, err := f.svc.Day(ctx, date(2025, 2, 19))
		assert.EqualError(t, err, "list window: db fail")
		assert.Empty(t, f.cache.views)
	})
}

func TestAgendaService_Filter(t *testing.T) {
	ctx := context.Background()

	t.Run("day bounds are inclusive", func(t *testing.T) {
		f := newFixture(t, false)
		from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		f.events.On("Search", ctx, model.FilterCriteria{
			SEINumber: "123",
			Situation: "TODAS",
			From:      &from,
			To:        &to,
		}).Return([]model.AgendaEvent{{ID: "e1"}}, nil)

		got, err := f.svc.Filter(ctx, FilterInput{
			SEINumber: "123",
			Situation: "TODAS",
			From:      ptr(date(2025, 2, 1)),
			To:        ptr(date(2025, 2, 28)),
		})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("inverted range", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.svc.Filter(ctx, FilterInput{From: ptr(date(2025, 2, 2)), To: ptr(date(2025, 2, 1))})
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}
