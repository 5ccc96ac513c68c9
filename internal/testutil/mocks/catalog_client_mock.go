package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/swipequiz/internal/models"
)

// MockCatalogClient is a mock implementation of catalog.ClientInterface
type MockCatalogClient struct {
	mock.Mock
}

func (m *MockCatalogClient) FetchActivities(ctx context.Context) ([]models.Activity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Activity), args.Error(1)
}

func (m *MockCatalogClient) SubmitSwipes(ctx context.Context, decisions []models.SwipeDecision) error {
	args := m.Called(ctx, decisions)
	return args.Error(0)
}

func (m *MockCatalogClient) QuizID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCatalogClient) FetchRecap(ctx context.Context) ([]models.Recap, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recap), args.Error(1)
}
