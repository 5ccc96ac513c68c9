package api_test

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/swipequiz/internal/api"
	"github.com/vytor/swipequiz/internal/errors"
	"github.com/vytor/swipequiz/internal/models"
	"github.com/vytor/swipequiz/internal/swipe"
	"github.com/vytor/swipequiz/internal/testutil/mocks"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func newServer(t *testing.T) (*mocks.MockSessionService, http.Handler) {
	t.Helper()
	svc := new(mocks.MockSessionService)
	t.Cleanup(func() { svc.AssertExpectations(t) })
	srv := &api.Server{SessionService: svc, DB: pinger{}}
	return svc, srv.Routes()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func sampleView(id string) *models.SessionView {
	return &models.SessionView{
		Session:  models.Session{ID: id, Status: models.SessionSwiping, Step: models.StepSelectActivities},
		State:    "idle",
		Pose:     swipe.IdentityPose(),
		Total:    2,
		Accepted: []int64{},
		Rejected: []int64{},
		Current:  &models.Activity{ID: 1, Title: "Jazz night"},
	}
}

func TestHealthAndReady(t *testing.T) {
	_, h := newServer(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = do(t, h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	down := (&api.Server{SessionService: new(mocks.MockSessionService), DB: pinger{err: stderrors.New("closed")}}).Routes()
	rec = do(t, down, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	_, h := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestStartSession(t *testing.T) {
	svc, h := newServer(t)
	svc.On("Start", mock.Anything).Return(sampleView("s1"), nil).Once()

	rec := do(t, h, http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	got := decode[models.SessionView](t, rec)
	assert.Equal(t, "s1", got.Session.ID)
	assert.Equal(t, "idle", got.State)
	require.NotNil(t, got.Current)
	assert.Equal(t, "Jazz night", got.Current.Title)
}

func TestStartSession_UpstreamFailure(t *testing.T) {
	svc, h := newServer(t)
	svc.On("Start", mock.Anything).Return(nil, errors.NewUpstreamError("fetch activities", stderrors.New("refused"))).Once()

	rec := do(t, h, http.MethodPost, "/sessions", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, errors.ErrCodeUpstream, body.Error.Code)
	assert.Equal(t, "quiz api fetch activities failed", body.Error.Message)
}

func TestGetSession_NotFound(t *testing.T) {
	svc, h := newServer(t)
	svc.On("Get", mock.Anything, "nope").Return(nil, errors.NewNotFoundError("session", "nope")).Once()

	rec := do(t, h, http.MethodGet, "/sessions/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errors.ErrCodeNotFound, decode[errorBody](t, rec).Error.Code)
}

func TestGesture(t *testing.T) {
	svc, h := newServer(t)
	want := swipe.Event{Kind: swipe.EventDragEnd, Sample: swipe.GestureSample{DX: 200, DY: 9, VelocityX: 120}}
	svc.On("Gesture", mock.Anything, "s1", want).Return(sampleView("s1"), true, nil).Once()

	rec := do(t, h, http.MethodPost, "/sessions/s1/gestures", `{"type":"end","dx":200,"dy":9,"velocity_x":120}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Applied bool               `json:"applied"`
		Session models.SessionView `json:"session"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.True(t, got.Applied)
	assert.Equal(t, "s1", got.Session.Session.ID)
}

func TestGesture_BadInput(t *testing.T) {
	_, h := newServer(t)

	rec := do(t, h, http.MethodPost, "/sessions/s1/gestures", `{"type":"pinch"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.ErrCodeValidation, decode[errorBody](t, rec).Error.Code)

	rec = do(t, h, http.MethodPost, "/sessions/s1/gestures", `{"type":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.ErrCodeBadRequest, decode[errorBody](t, rec).Error.Code)

	rec = do(t, h, http.MethodPost, "/sessions/s1/gestures", `{"type":"start","force":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown fields are rejected")
}

func TestGesture_Conflict(t *testing.T) {
	svc, h := newServer(t)
	svc.On("Gesture", mock.Anything, "s1", swipe.Event{Kind: swipe.EventDragStart}).
		Return(nil, false, errors.NewConflictError("session is no longer active")).Once()

	rec := do(t, h, http.MethodPost, "/sessions/s1/gestures", `{"type":"start"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFrames(t *testing.T) {
	svc, h := newServer(t)
	svc.On("Frames", mock.Anything, "s1", 24, 16500*time.Microsecond).Return(sampleView("s1"), nil).Once()

	rec := do(t, h, http.MethodPost, "/sessions/s1/frames", `{"count":24,"dt_ms":16.5}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFrames_RejectsHugeDelta(t *testing.T) {
	_, h := newServer(t)

	rec := do(t, h, http.MethodPost, "/sessions/s1/frames", `{"count":1,"dt_ms":3.6e9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.ErrCodeValidation, decode[errorBody](t, rec).Error.Code)
}

func TestHint(t *testing.T) {
	svc, h := newServer(t)
	svc.On("Hint", mock.Anything, "s1").Return(sampleView("s1"), false, nil).Once()

	rec := do(t, h, http.MethodPost, "/sessions/s1/hint", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"applied":false`)
}

func TestRetrySubmit(t *testing.T) {
	svc, h := newServer(t)
	svc.On("RetrySubmit", mock.Anything, "s1").Return(sampleView("s1"), nil).Once()
	svc.On("RetrySubmit", mock.Anything, "s2").Return(nil, errors.NewConflictError("results already submitted")).Once()

	assert.Equal(t, http.StatusAccepted, do(t, h, http.MethodPost, "/sessions/s1/submit", "").Code)
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/sessions/s2/submit", "").Code)
}

func TestResults(t *testing.T) {
	svc, h := newServer(t)
	filter := models.SwipeResultFilter{SessionID: "s1", Direction: "right", Limit: 10, Offset: 5}
	results := []models.SwipeResult{{SessionID: "s1", CardID: 3, Position: 5, SwipeRight: true}}
	svc.On("Results", mock.Anything, filter).Return(results, 11, nil).Once()

	rec := do(t, h, http.MethodGet, "/sessions/s1/results?direction=right&limit=10&offset=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Results []models.SwipeResult `json:"results"`
		Total   int                  `json:"total"`
		Limit   int                  `json:"limit"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 11, got.Total)
	assert.Equal(t, 10, got.Limit)
	require.Len(t, got.Results, 1)
	assert.Equal(t, int64(3), got.Results[0].CardID)
}

func TestResults_DefaultLimitAndBadQuery(t *testing.T) {
	svc, h := newServer(t)
	svc.On("Results", mock.Anything, models.SwipeResultFilter{SessionID: "s1", Limit: 50}).Return([]models.SwipeResult{}, 0, nil).Once()

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/sessions/s1/results", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/sessions/s1/results?limit=-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/sessions/s1/results?offset=x", "").Code)
}

func TestRecap(t *testing.T) {
	svc, h := newServer(t)
	svc.On("Recap", mock.Anything, "s1").Return([]models.Recap{{ID: 1, Title: "Music", Percentage: 75}}, nil).Once()

	rec := do(t, h, http.MethodGet, "/sessions/s1/recap", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]models.Recap](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, 75.0, got[0].Percentage)
}

func TestPanicIsRecovered(t *testing.T) {
	svc, h := newServer(t)
	svc.On("Get", mock.Anything, "boom").Run(func(mock.Arguments) { panic("assertion failed") }).Return(nil, nil).Once()

	rec := do(t, h, http.MethodGet, "/sessions/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, errors.ErrCodeInternal, decode[errorBody](t, rec).Error.Code)
}

func TestSlowRequestTimesOut(t *testing.T) {
	svc := new(mocks.MockSessionService)
	t.Cleanup(func() { svc.AssertExpectations(t) })
	h := (&api.Server{SessionService: svc, DB: pinger{}, RequestTimeout: 20 * time.Millisecond}).Routes()
	svc.On("Get", mock.Anything, "slow").Run(func(mock.Arguments) { time.Sleep(200 * time.Millisecond) }).Return(sampleView("slow"), nil).Once()

	rec := do(t, h, http.MethodGet, "/sessions/slow", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, errors.ErrCodeTimeout, decode[errorBody](t, rec).Error.Code)
}
