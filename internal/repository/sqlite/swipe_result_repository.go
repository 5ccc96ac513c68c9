package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/swipequiz/internal/logger"
	"github.com/vytor/swipequiz/internal/models"
	"github.com/vytor/swipequiz/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type swipeResultRepository struct {
	db *sql.DB
}

// NewSwipeResultRepository creates a new SwipeResultRepository implementation
func NewSwipeResultRepository(db *sql.DB) repository.SwipeResultRepository {
	return &swipeResultRepository{db: db}
}

func (r *swipeResultRepository) Insert(ctx context.Context, s models.SwipeResult) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("swipe_repo")
	log.Debug("inserting swipe result: session=%s, card=%d, right=%t", s.SessionID, s.CardID, s.SwipeRight)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO swipe_results (session_id, card_id, position, swipe_right) VALUES (?, ?, ?, ?)
`, s.SessionID, s.CardID, s.Position, s.SwipeRight)
	if err != nil {
		log.Error("failed to insert swipe result: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

func applyFilter(query squirrel.SelectBuilder, filter models.SwipeResultFilter) squirrel.SelectBuilder {
	if filter.SessionID != "" {
		query = query.Where(squirrel.Eq{"session_id": filter.SessionID})
	}
	switch filter.Direction {
	case models.DirectionRight:
		query = query.Where(squirrel.Eq{"swipe_right": true})
	case models.DirectionLeft:
		query = query.Where(squirrel.Eq{"swipe_right": false})
	}
	return query
}

func (r *swipeResultRepository) List(ctx context.Context, filter models.SwipeResultFilter) ([]models.SwipeResult, error) {
	log := logger.FromContext(ctx).WithPrefix("swipe_repo")
	log.Debug("listing swipe results: session=%s, direction=%s", filter.SessionID, filter.Direction)

	query := applyFilter(
		sqlBuilder.Select("id", "session_id", "card_id", "position", "swipe_right", "created_at").From("swipe_results"),
		filter,
	).OrderBy("position ASC")

	// A negative limit lists everything.
	limit := filter.Limit
	if limit == 0 {
		limit = 200
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
		if filter.Offset > 0 {
			query = query.Offset(uint64(filter.Offset))
		}
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to list swipe results: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.SwipeResult
	for rows.Next() {
		var s models.SwipeResult
		if err := rows.Scan(&s.ID, &s.SessionID, &s.CardID, &s.Position, &s.SwipeRight, &s.CreatedAt); err != nil {
			log.Error("failed to scan swipe result row: %v", err)
			return nil, err
		}
		out = append(out, s)
	}
	log.Debug("found %d swipe results", len(out))
	return out, rows.Err()
}

func (r *swipeResultRepository) Count(ctx context.Context, filter models.SwipeResultFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("swipe_repo")

	stmt, args, err := applyFilter(sqlBuilder.Select("COUNT(*)").From("swipe_results"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&count); err != nil {
		log.Error("failed to count swipe results: %v", err)
		return 0, err
	}
	return count, nil
}

// Decisions returns the session's results in judgement order, in wire form.
func (r *swipeResultRepository) Decisions(ctx context.Context, sessionID string) ([]models.SwipeDecision, error) {
	results, err := r.List(ctx, models.SwipeResultFilter{SessionID: sessionID, Limit: -1})
	if err != nil {
		return nil, err
	}
	out := make([]models.SwipeDecision, 0, len(results))
	for _, res := range results {
		out = append(out, models.SwipeDecision{ID: res.CardID, SwipeRight: res.SwipeRight})
	}
	return out, nil
}
