package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/swipequiz/internal/models"
	"github.com/vytor/swipequiz/internal/swipe"
)

// MockSessionService is a mock implementation of services.SessionService
type MockSessionService struct {
	mock.Mock
}

func view(args mock.Arguments) *models.SessionView {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.SessionView)
}

func (m *MockSessionService) Start(ctx context.Context) (*models.SessionView, error) {
	args := m.Called(ctx)
	return view(args), args.Error(1)
}

func (m *MockSessionService) Get(ctx context.Context, id string) (*models.SessionView, error) {
	args := m.Called(ctx, id)
	return view(args), args.Error(1)
}

func (m *MockSessionService) Gesture(ctx context.Context, id string, ev swipe.Event) (*models.SessionView, bool, error) {
	args := m.Called(ctx, id, ev)
	return view(args), args.Bool(1), args.Error(2)
}

func (m *MockSessionService) Frames(ctx context.Context, id string, count int, dt time.Duration) (*models.SessionView, error) {
	args := m.Called(ctx, id, count, dt)
	return view(args), args.Error(1)
}

func (m *MockSessionService) Hint(ctx context.Context, id string) (*models.SessionView, bool, error) {
	args := m.Called(ctx, id)
	return view(args), args.Bool(1), args.Error(2)
}

func (m *MockSessionService) RetrySubmit(ctx context.Context, id string) (*models.SessionView, error) {
	args := m.Called(ctx, id)
	return view(args), args.Error(1)
}

func (m *MockSessionService) SubmitSession(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionService) Results(ctx context.Context, filter models.SwipeResultFilter) ([]models.SwipeResult, int, error) {
	args := m.Called(ctx, filter)
	var out []models.SwipeResult
	if args.Get(0) != nil {
		out = args.Get(0).([]models.SwipeResult)
	}
	return out, args.Int(1), args.Error(2)
}

func (m *MockSessionService) Recap(ctx context.Context, id string) ([]models.Recap, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recap), args.Error(1)
}

func (m *MockSessionService) Recover(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
