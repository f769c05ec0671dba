package mocks

import (
	"context"

	"agendaapi/internal/model"
	"agendaapi/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockAgendaService struct {
	mock.Mock
}

func (m *MockAgendaService) Create(ctx context.Context, in model.CreateEventInput) (*model.AgendaEvent, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AgendaEvent), args.Error(1)
}

func (m *MockAgendaService) Get(ctx context.Context, id string) (*model.AgendaEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AgendaEvent), args.Error(1)
}

func (m *MockAgendaService) Update(ctx context.Context, id string, in model.UpdateEventInput) (*model.AgendaEvent, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AgendaEvent), args.Error(1)
}

func (m *MockAgendaService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAgendaService) Day(ctx context.Context, d model.Date) ([]model.AgendaEvent, error) {
	return m.events(m.Called(ctx, d))
}

func (m *MockAgendaService) Week(ctx context.Context, d model.Date) ([]model.AgendaEvent, error) {
	return m.events(m.Called(ctx, d))
}

func (m *MockAgendaService) Month(ctx context.Context, d model.Date) ([]model.AgendaEvent, error) {
	return m.events(m.Called(ctx, d))
}

func (m *MockAgendaService) Filter(ctx context.Context, in service.FilterInput) ([]model.AgendaEvent, error) {
	return m.events(m.Called(ctx, in))
}

func (m *MockAgendaService) events(args mock.Arguments) ([]model.AgendaEvent, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AgendaEvent), args.Error(1)
}
