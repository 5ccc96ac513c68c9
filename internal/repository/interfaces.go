package repository

import (
	"context"
	"time"

	"github.com/vytor/swipequiz/internal/models"
)

// SessionRepository handles swipe session data access
type SessionRepository interface {
	Create(ctx context.Context, session models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	UpdateStatus(ctx context.Context, id, status, step, lastError string) error
	MarkSubmitted(ctx context.Context, id, step string, at time.Time) error
	RecordAttempt(ctx context.Context, attempt models.SubmitAttempt) (int64, error)
	Attempts(ctx context.Context, sessionID string) ([]models.SubmitAttempt, error)
	ResetSubmitting(ctx context.Context, reason string) (int, error)
}

// SwipeResultRepository handles per-card decision data access
type SwipeResultRepository interface {
	Insert(ctx context.Context, result models.SwipeResult) (int64, error)
	List(ctx context.Context, filter models.SwipeResultFilter) ([]models.SwipeResult, error)
	Count(ctx context.Context, filter models.SwipeResultFilter) (int, error)
	Decisions(ctx context.Context, sessionID string) ([]models.SwipeDecision, error)
}
