package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agendaapi/internal/cache"
	"agendaapi/internal/calendar"
	"agendaapi/internal/model"
	"agendaapi/internal/notify"
	"agendaapi/internal/repository"
	"agendaapi/internal/storage"
)

// FilterInput carries the agenda filters as received from clients.
// From and To are inclusive calendar days.
type FilterInput struct {
	SEINumber  string
	Type       string
	Situation  string
	FocalPoint string
	Location   string
	From       *model.Date
	To         *model.Date
}

// AgendaService defines the use cases of the agenda.
type AgendaService interface {
	Create(ctx context.Context, in model.CreateEventInput) (*model.AgendaEvent, error)
	Get(ctx context.Context, id string) (*model.AgendaEvent, error)
	// Update applies a partial update; explicit nulls clear optional fields.
	Update(ctx context.Context, id string, in model.UpdateEventInput) (*model.AgendaEvent, error)
	// Delete removes the event together with its stored attachments.
	Delete(ctx context.Context, id string) error

	Day(ctx context.Context, d model.Date) ([]model.AgendaEvent, error)
	Week(ctx context.Context, d model.Date) ([]model.AgendaEvent, error)
	Month(ctx context.Context, d model.Date) ([]model.AgendaEvent, error)

	Filter(ctx context.Context, in FilterInput) ([]model.AgendaEvent, error)
}

// AgendaDeps wires the agenda service. Cache, Publisher, Location and Logger are optional.
type AgendaDeps struct {
	Events      repository.AgendaEventRepository
	Attachments repository.AttachmentRepository
	Store       storage.Storage
	Cache       cache.ViewCache
	Publisher   notify.Publisher
	Location    *time.Location
	Logger      *zap.Logger
}

type agendaService struct {
	events      repository.AgendaEventRepository
	attachments repository.AttachmentRepository
	store       storage.Storage
	cache       cache.ViewCache
	publisher   notify.Publisher
	loc         *time.Location
	logger      *zap.Logger
	now         func() time.Time
}

// NewAgendaService constructs a new AgendaService.
func NewAgendaService(d AgendaDeps) AgendaService {
	s := &agendaService{
		events:      d.Events,
		attachments: d.Attachments,
		store:       d.Store,
		cache:       d.Cache,
		publisher:   d.Publisher,
		loc:         d.Location,
		logger:      d.Logger,
		now:         time.Now,
	}
	if s.cache == nil {
		s.cache = cache.NopCache{}
	}
	if s.publisher == nil {
		s.publisher = notify.NopPublisher{}
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

func (s *agendaService) Create(ctx context.Context, in model.CreateEventInput) (*model.AgendaEvent, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	situation, err := normalizeSituation(in.Situation)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	e := &model.AgendaEvent{
		ID:             uuid.NewString(),
		SEINumber:      optString(in.SEINumber),
		Title:          title,
		Requester:      strings.TrimSpace(in.Requester),
		Location:       strings.TrimSpace(in.Location),
		FocalPoint:     strings.TrimSpace(in.FocalPoint),
		Situation:      situation,
		DailySEINumber: optString(in.DailySEINumber),
		Description:    optString(in.Description),
		Participants:   optString(in.Participants),
		Type:           resolveType(in.Type, title),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.SubmissionDate != nil {
		t := in.SubmissionDate.In(s.loc)
		e.SubmissionDate = &t
	}
	switch {
	case in.EventDate != nil:
		if err := s.schedule(e, *in.EventDate, in.EndDate); err != nil {
			return nil, err
		}
	case in.EndDate != nil:
		return nil, ErrInvalidRange
	}

	stored, err := s.events.Create(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.afterMutation(ctx, notify.ActionCreated, stored.ID)
	return stored, nil
}

func (s *agendaService) Get(ctx context.Context, id string) (*model.AgendaEvent, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	e, err := s.events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *agendaService) Update(ctx context.Context, id string, in model.UpdateEventInput) (*model.AgendaEvent, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title.Set {
		title := strings.TrimSpace(in.Title.Value)
		if in.Title.Null || title == "" {
			return nil, ErrTitleRequired
		}
		e.Title = title
	}
	setText(&e.Requester, in.Requester)
	setText(&e.Location, in.Location)
	setText(&e.FocalPoint, in.FocalPoint)
	setOptText(&e.SEINumber, in.SEINumber)
	setOptText(&e.DailySEINumber, in.DailySEINumber)
	setOptText(&e.Description, in.Description)
	setOptText(&e.Participants, in.Participants)

	if in.Situation.Set {
		e.Situation = nil
		if !in.Situation.Null {
			if e.Situation, err = normalizeSituation(&in.Situation.Value); err != nil {
				return nil, err
			}
		}
	}

	if in.SubmissionDate.Set {
		e.SubmissionDate = nil
		if !in.SubmissionDate.Null {
			t := in.SubmissionDate.Value.In(s.loc)
			e.SubmissionDate = &t
		}
	}

	if err := s.reschedule(e, in.EventDate, in.EndDate); err != nil {
		return nil, err
	}

	if in.Type.Set {
		e.Type = resolveType(in.Type.Value, e.Title)
	}

	e.UpdatedAt = s.now().UTC()
	stored, err := s.events.Update(ctx, e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	s.afterMutation(ctx, notify.ActionUpdated, stored.ID)
	return stored, nil
}

func (s *agendaService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if s.store != nil && s.attachments != nil {
		atts, err := s.attachments.ListByEvent(ctx, id)
		if err != nil {
			return fmt.Errorf("list attachments: %w", err)
		}
		// Remove objects first; rows cascade with the event.
		for _, a := range atts {
			if err := s.store.Delete(ctx, a.StoragePath); err != nil {
				return fmt.Errorf("delete storage: %w", err)
			}
		}
	}

	if err := s.events.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.afterMutation(ctx, notify.ActionDeleted, id)
	return nil
}

func (s *agendaService) Day(ctx context.Context, d model.Date) ([]model.AgendaEvent, error) {
	return s.view(ctx, "day:"+d.String(), calendar.DayWindow(d.In(s.loc), s.loc))
}

func (s *agendaService) Week(ctx context.Context, d model.Date) ([]model.AgendaEvent, error) {
	w := calendar.WeekWindow(d.In(s.loc), s.loc)
	return s.view(ctx, "week:"+w.From.Format(model.DateLayout), w)
}

func (s *agendaService) Month(ctx context.Context, d model.Date) ([]model.AgendaEvent, error) {
	w := calendar.MonthWindow(d.In(s.loc), s.loc)
	return s.view(ctx, "month:"+w.From.Format("2006-01"), w)
}

func (s *agendaService) view(ctx context.Context, key string, w calendar.Window) ([]model.AgendaEvent, error) {
	cached, gen, ok := s.cache.Get(ctx, key)
	if ok {
		return cached, nil
	}
	candidates, err := s.events.ListInWindow(ctx, w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("list window: %w", err)
	}
	events := calendar.Select(candidates, w)
	s.cache.Set(ctx, gen, key, events)
	return events, nil
}

func (s *agendaService) Filter(ctx context.Context, in FilterInput) ([]model.AgendaEvent, error) {
	if in.From != nil && in.To != nil && in.To.Before(in.From.Time) {
		return nil, ErrInvalidRange
	}
	f := model.FilterCriteria{
		SEINumber:  in.SEINumber,
		Type:       in.Type,
		Situation:  in.Situation,
		FocalPoint: in.FocalPoint,
		Location:   in.Location,
	}
	if in.From != nil {
		from := in.From.In(s.loc)
		f.From = &from
	}
	if in.To != nil {
		to := in.To.In(s.loc).AddDate(0, 0, 1)
		f.To = &to
	}
	return s.events.Search(ctx, f)
}

// schedule sets start/end from an event date and optional last day.
func (s *agendaService) schedule(e *model.AgendaEvent, day model.Date, last *model.Date) error {
	if last != nil && last.Before(day.Time) {
		return ErrInvalidRange
	}
	start, end := calendar.Schedule(day, last, s.loc)
	e.StartTime, e.EndTime = &start, &end
	return nil
}

func (s *agendaService) reschedule(e *model.AgendaEvent, day, last model.Optional[model.Date]) error {
	var lastPtr *model.Date
	if last.Set && !last.Null {
		lastPtr = &last.Value
	}

	switch {
	case day.Set && day.Null:
		e.StartTime, e.EndTime = nil, nil
		return nil
	case day.Set:
		return s.schedule(e, day.Value, lastPtr)
	case last.Set:
		if e.StartTime == nil {
			return ErrInvalidRange
		}
		st := e.StartTime.In(s.loc)
		return s.schedule(e, model.NewDate(st.Year(), st.Month(), st.Day()), lastPtr)
	}
	return nil
}

// afterMutation drops cached views and notifies listeners. Failures are logged only.
func (s *agendaService) afterMutation(ctx context.Context, action, id string) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("cache_invalidate_failed", zap.String("event_id", id), zap.Error(err))
	}
	change := notify.Change{Action: action, EventID: id, OccurredAt: s.now().UTC()}
	if err := s.publisher.Publish(ctx, change); err != nil {
		s.logger.Warn("change_publish_failed",
			zap.String("event_id", id),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func normalizeSituation(s *string) (*string, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	canonical, ok := model.CanonicalSituation(*s)
	if !ok {
		return nil, ErrInvalidSituation
	}
	return &canonical, nil
}

func resolveType(t, title string) string {
	if t = strings.TrimSpace(t); t != "" {
		return strings.ToUpper(t)
	}
	return calendar.InferType(title)
}

func optString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func setText(dst *string, o model.Optional[string]) {
	if !o.Set {
		return
	}
	if o.Null {
		*dst = ""
		return
	}
	*dst = strings.TrimSpace(o.Value)
}

func setOptText(dst **string, o model.Optional[string]) {
	if !o.Set {
		return
	}
	if o.Null {
		*dst = nil
		return
	}
	*dst = optString(&o.Value)
}
