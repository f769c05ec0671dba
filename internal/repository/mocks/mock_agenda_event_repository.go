package mocks

import (
	"context"
	"time"

	"agendaapi/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockAgendaEventRepository struct {
	mock.Mock
}

func (m *MockAgendaEventRepository) Create(ctx context.Context, e *model.AgendaEvent) (*model.AgendaEvent, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AgendaEvent), args.Error(1)
}

func (m *MockAgendaEventRepository) FindByID(ctx context.Context, id string) (*model.AgendaEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AgendaEvent), args.Error(1)
}

func (m *MockAgendaEventRepository) Update(ctx context.Context, e *model.AgendaEvent) (*model.AgendaEvent, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AgendaEvent), args.Error(1)
}

func (m *MockAgendaEventRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAgendaEventRepository) ListInWindow(ctx context.Context, from, to time.Time) ([]model.AgendaEvent, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AgendaEvent), args.Error(1)
}

func (m *MockAgendaEventRepository) Search(ctx context.Context, f model.FilterCriteria) ([]model.AgendaEvent, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AgendaEvent), args.Error(1)
}
