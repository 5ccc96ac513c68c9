package models

import (
	"time"

	"github.com/vytor/swipequiz/internal/swipe"
)

// Session statuses.
const (
	SessionLoadingFailed = "loading_failed"
	SessionSwiping       = "swiping"
	SessionSubmitting    = "submitting"
	SessionSubmitted     = "submitted"
	SessionSubmitFailed  = "submit_failed"
	SessionEmpty         = "empty"
)

// Wizard steps a session moves through.
const (
	StepSelectActivities = "select-activities"
	StepViewResults      = "view-results"
)

type Session struct {
	ID          string     `json:"id"`
	QuizID      int64      `json:"quiz_id"`
	Status      string     `json:"status"`
	Step        string     `json:"step"`
	CardCount   int        `json:"card_count"`
	Attempts    int        `json:"submit_attempts"`
	LastError   string     `json:"last_error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

// SwipeResult is a persisted decision for one card of a session.
type SwipeResult struct {
	ID         int64     `json:"-"`
	SessionID  string    `json:"session_id"`
	CardID     int64     `json:"id"`
	Position   int       `json:"position"`
	SwipeRight bool      `json:"swipe_right"`
	CreatedAt  time.Time `json:"created_at"`
}

// Swipe directions accepted by SwipeResultFilter.
const (
	DirectionRight = "right"
	DirectionLeft  = "left"
)

type SwipeResultFilter struct {
	SessionID string
	Direction string
	Limit     int
	Offset    int
}

// SubmitAttempt records one call to the quiz API's submit endpoint.
type SubmitAttempt struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Accepted  int       `json:"accepted"`
	Rejected  int       `json:"rejected"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionView is what clients render: persisted session plus live engine state.
type SessionView struct {
	Session   Session    `json:"session"`
	State     string     `json:"state"`
	Animating bool       `json:"animating"`
	Hinting   bool       `json:"hinting"`
	Pose      swipe.Pose `json:"pose"`
	Cursor    int        `json:"cursor"`
	Total     int        `json:"total"`
	Accepted  []int64    `json:"accepted"`
	Rejected  []int64    `json:"rejected"`
	Current   *Activity  `json:"current,omitempty"`
	Upcoming  []Activity `json:"upcoming,omitempty"`
}
