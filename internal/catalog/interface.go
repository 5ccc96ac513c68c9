package catalog

import (
	"context"

	"github.com/vytor/swipequiz/internal/models"
)

// ClientInterface defines the quiz API operations used by the session service.
type ClientInterface interface {
	FetchActivities(ctx context.Context) ([]models.Activity, error)
	SubmitSwipes(ctx context.Context, decisions []models.SwipeDecision) error
	QuizID(ctx context.Context) (int64, error)
	FetchRecap(ctx context.Context) ([]models.Recap, error)
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)
