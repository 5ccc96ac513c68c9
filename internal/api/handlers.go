package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/swipequiz/internal/errors"
	"github.com/vytor/swipequiz/internal/models"
	"github.com/vytor/swipequiz/internal/services"
	"github.com/vytor/swipequiz/internal/swipe"
)

// Pinger is the slice of *sql.DB the readiness probe needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	SessionService services.SessionService
	DB             Pinger
	RequestTimeout time.Duration
}

type gestureRequest struct {
	Type      string  `json:"type"`
	DX        float64 `json:"dx"`
	DY        float64 `json:"dy"`
	VelocityX float64 `json:"velocity_x"`
}

type framesRequest struct {
	Count int     `json:"count"`
	DtMS  float64 `json:"dt_ms"`
}

type actionResponse struct {
	Applied bool                `json:"applied"`
	Session *models.SessionView `json:"session"`
}

type resultsResponse struct {
	Results []models.SwipeResult `json:"results"`
	Total   int                  `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.SessionService.Start(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.SessionService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGesture(w http.ResponseWriter, r *http.Request) {
	var req gestureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	kind, err := swipe.ParseEventKind(req.Type)
	if err != nil {
		handleError(w, r, errors.NewValidationError("type", "must be start, update or end"))
		return
	}

	ev := swipe.Event{
		Kind:   kind,
		Sample: swipe.GestureSample{DX: req.DX, DY: req.DY, VelocityX: req.VelocityX},
	}
	view, applied, err := s.SessionService.Gesture(r.Context(), chi.URLParam(r, "id"), ev)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Applied: applied, Session: view})
}

// maxFrameDeltaMS keeps dt_ms inside what a time.Duration can hold; the
// service enforces the same bound.
const maxFrameDeltaMS = 1000

func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	var req framesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.DtMS < 0 || req.DtMS > maxFrameDeltaMS {
		handleError(w, r, errors.NewValidationError("dt_ms", "must be between 0 and 1000"))
		return
	}
	dt := time.Duration(req.DtMS * float64(time.Millisecond))
	view, err := s.SessionService.Frames(r.Context(), chi.URLParam(r, "id"), req.Count, dt)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	view, played, err := s.SessionService.Hint(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Applied: played, Session: view})
}

func (s *Server) handleRetrySubmit(w http.ResponseWriter, r *http.Request) {
	view, err := s.SessionService.RetrySubmit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, view)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		handleError(w, r, err)
		return
	}
	if limit == 0 {
		limit = 50
	}

	filter := models.SwipeResultFilter{
		SessionID: chi.URLParam(r, "id"),
		Direction: r.URL.Query().Get("direction"),
		Limit:     limit,
		Offset:    offset,
	}
	results, total, err := s.SessionService.Results(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsResponse{Results: results, Total: total, Limit: limit, Offset: offset})
}

func (s *Server) handleRecap(w http.ResponseWriter, r *http.Request) {
	recap, err := s.SessionService.Recap(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recap)
}
