package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vytor/swipequiz/internal/logger"
	"github.com/vytor/swipequiz/internal/models"
	"github.com/vytor/swipequiz/internal/repository"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s models.Session) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("creating session: id=%s, status=%s, cards=%d", s.ID, s.Status, s.CardCount)

	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (id, quiz_id, status, step, card_count, last_error, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, s.ID, s.QuizID, s.Status, s.Step, s.CardCount, s.LastError, s.CreatedAt, now)
	if err != nil {
		log.Error("failed to create session: %v", err)
	}
	return err
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	var s models.Session
	var submittedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT id, quiz_id, status, step, card_count, submit_attempts, last_error, created_at, updated_at, submitted_at
FROM sessions
WHERE id = ?
`, id).Scan(&s.ID, &s.QuizID, &s.Status, &s.Step, &s.CardCount, &s.Attempts, &s.LastError, &s.CreatedAt, &s.UpdatedAt, &submittedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("session not found: id=%s", id)
		} else {
			log.Error("failed to get session: %v", err)
		}
		return nil, err
	}
	if submittedAt.Valid {
		t := submittedAt.Time
		s.SubmittedAt = &t
	}
	return &s, nil
}

func (r *sessionRepository) UpdateStatus(ctx context.Context, id, status, step, lastError string) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("updating session: id=%s, status=%s, step=%s", id, status, step)

	res, err := r.db.ExecContext(ctx, `
UPDATE sessions SET status = ?, step = ?, last_error = ?, updated_at = ? WHERE id = ?
`, status, step, lastError, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update session: %v", err)
		return err
	}
	return requireRow(res)
}

func (r *sessionRepository) MarkSubmitted(ctx context.Context, id, step string, at time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("marking session submitted: id=%s", id)

	res, err := r.db.ExecContext(ctx, `
UPDATE sessions SET status = ?, step = ?, last_error = '', submitted_at = ?, updated_at = ? WHERE id = ?
`, models.SessionSubmitted, step, at.UTC(), time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to mark session submitted: %v", err)
		return err
	}
	return requireRow(res)
}

func (r *sessionRepository) RecordAttempt(ctx context.Context, a models.SubmitAttempt) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("recording submit attempt: session=%s, accepted=%d, rejected=%d", a.SessionID, a.Accepted, a.Rejected)

	var id int64
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO submit_attempts (session_id, accepted, rejected, error) VALUES (?, ?, ?, ?)
`, a.SessionID, a.Accepted, a.Rejected, a.Error)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE sessions SET submit_attempts = submit_attempts + 1 WHERE id = ?`, a.SessionID)
		return err
	})
	if err != nil {
		log.Error("failed to record submit attempt: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *sessionRepository) Attempts(ctx context.Context, sessionID string) ([]models.SubmitAttempt, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, session_id, accepted, rejected, error, created_at
FROM submit_attempts
WHERE session_id = ?
ORDER BY id
`, sessionID)
	if err != nil {
		log.Error("failed to list submit attempts: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.SubmitAttempt
	for rows.Next() {
		var a models.SubmitAttempt
		if err := rows.Scan(&a.ID, &a.SessionID, &a.Accepted, &a.Rejected, &a.Error, &a.CreatedAt); err != nil {
			log.Error("failed to scan submit attempt row: %v", err)
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ResetSubmitting marks sessions whose submit was interrupted (for example by
// a restart) as failed so they can be retried.
func (r *sessionRepository) ResetSubmitting(ctx context.Context, reason string) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	res, err := r.db.ExecContext(ctx, `
UPDATE sessions SET status = ?, last_error = ?, updated_at = ? WHERE status = ?
`, models.SessionSubmitFailed, reason, time.Now().UTC(), models.SessionSubmitting)
	if err != nil {
		log.Error("failed to reset submitting sessions: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info("reset %d interrupted submits", n)
	}
	return int(n), nil
}
