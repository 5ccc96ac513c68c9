package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/swipequiz/internal/catalog"
	"github.com/vytor/swipequiz/internal/config"
	"github.com/vytor/swipequiz/internal/errors"
	"github.com/vytor/swipequiz/internal/jobs"
	"github.com/vytor/swipequiz/internal/logger"
	"github.com/vytor/swipequiz/internal/models"
	"github.com/vytor/swipequiz/internal/repository"
	"github.com/vytor/swipequiz/internal/swipe"
)

const (
	maxFramesPerRequest = 600
	maxFrameDelta       = time.Second
	upcomingPreview     = 3
)

// SessionService runs one swipe engine per quiz session and owns everything
// around it: fetching the deck, persisting decisions, submitting results.
type SessionService interface {
	Start(ctx context.Context) (*models.SessionView, error)
	Get(ctx context.Context, id string) (*models.SessionView, error)
	Gesture(ctx context.Context, id string, ev swipe.Event) (*models.SessionView, bool, error)
	Frames(ctx context.Context, id string, count int, dt time.Duration) (*models.SessionView, error)
	Hint(ctx context.Context, id string) (*models.SessionView, bool, error)
	RetrySubmit(ctx context.Context, id string) (*models.SessionView, error)
	SubmitSession(ctx context.Context, id string) error
	Results(ctx context.Context, filter models.SwipeResultFilter) ([]models.SwipeResult, int, error)
	Recap(ctx context.Context, id string) ([]models.Recap, error)
	Recover(ctx context.Context) (int, error)
}

type deckEngine = swipe.Engine[models.Activity, int64]

// liveSession is the in-memory half of a session. Engine hooks only buffer
// their effects; the service flushes them with a context afterwards.
type liveSession struct {
	mu        sync.Mutex
	engine    *deckEngine
	pending   []models.SwipeResult
	exhausted bool
	enqueued  bool
}

type sessionService struct {
	sessionRepo  repository.SessionRepository
	resultRepo   repository.SwipeResultRepository
	client       catalog.ClientInterface
	jobQueue     jobs.JobQueue
	engineConfig swipe.Config
	submitPolicy string
	now          func() time.Time

	mu   sync.RWMutex
	live map[string]*liveSession
}

// NewSessionService creates a new SessionService
func NewSessionService(
	sessionRepo repository.SessionRepository,
	resultRepo repository.SwipeResultRepository,
	client catalog.ClientInterface,
	jobQueue jobs.JobQueue,
	engineConfig swipe.Config,
	submitPolicy string,
) SessionService {
	if submitPolicy == "" {
		submitPolicy = config.SubmitPolicyRetry
	}
	return &sessionService{
		sessionRepo:  sessionRepo,
		resultRepo:   resultRepo,
		client:       client,
		jobQueue:     jobQueue,
		engineConfig: engineConfig,
		submitPolicy: submitPolicy,
		now:          time.Now,
		live:         make(map[string]*liveSession),
	}
}

func (s *sessionService) Start(ctx context.Context) (*models.SessionView, error) {
	id := uuid.NewString()
	log := logger.FromContext(ctx).WithPrefix("session").WithField("session", id)
	log.Info("starting session")

	quizID, err := s.client.QuizID(ctx)
	if err != nil {
		log.Warn("failed to fetch quiz id, continuing without one: %v", err)
	}

	session := models.Session{
		ID:     id,
		QuizID: quizID,
		Status: models.SessionSwiping,
		Step:   models.StepSelectActivities,
	}

	activities, err := s.client.FetchActivities(ctx)
	if err != nil {
		log.Error("failed to fetch activities: %v", err)
		session.Status = models.SessionLoadingFailed
		session.LastError = err.Error()
		if cerr := s.sessionRepo.Create(ctx, session); cerr != nil {
			log.Error("failed to store failed session: %v", cerr)
		}
		return nil, errors.NewUpstreamError("fetch activities", err)
	}
	session.CardCount = len(activities)

	ls := &liveSession{}
	if len(activities) == 0 {
		// nothing to judge: move on without submitting
		session.Status = models.SessionEmpty
		session.Step = models.StepViewResults
	} else {
		engine, err := swipe.NewEngine(swipe.NewDeck(activities, models.ActivityID), s.engineConfig, s.hooks(id, ls))
		if err != nil {
			log.Error("failed to build engine: %v", err)
			return nil, errors.NewUpstreamError("fetch activities", err)
		}
		ls.engine = engine
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, errors.NewInternalError(err)
	}
	if ls.engine != nil {
		s.mu.Lock()
		s.live[id] = ls
		s.mu.Unlock()
	}

	log.Info("session started with %d cards", len(activities))
	return s.view(ctx, id, ls)
}

func (s *sessionService) hooks(id string, ls *liveSession) swipe.Hooks[models.Activity, int64] {
	return swipe.Hooks[models.Activity, int64]{
		OnAdvance: func(_ models.Activity, o swipe.Outcome[int64]) {
			ls.pending = append(ls.pending, models.SwipeResult{
				SessionID:  id,
				CardID:     o.ID,
				Position:   ls.engine.Deck().Cursor() - 1,
				SwipeRight: o.Accepted,
			})
		},
		OnExhausted: func(_, _ []int64) {
			ls.exhausted = true
		},
	}
}

func (s *sessionService) Get(ctx context.Context, id string) (*models.SessionView, error) {
	ls := s.lookup(id)
	if ls == nil {
		return s.view(ctx, id, nil)
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := s.flush(ctx, id, ls); err != nil {
		return nil, err
	}
	return s.view(ctx, id, ls)
}

func (s *sessionService) Gesture(ctx context.Context, id string, ev swipe.Event) (*models.SessionView, bool, error) {
	var applied bool
	view, err := s.withEngine(ctx, id, func(e *deckEngine) error {
		applied = e.Dispatch(ev)
		return nil
	})
	return view, applied, err
}

func (s *sessionService) Frames(ctx context.Context, id string, count int, dt time.Duration) (*models.SessionView, error) {
	if count <= 0 || count > maxFramesPerRequest {
		return nil, errors.NewValidationError("count", "must be between 1 and 600")
	}
	if dt < 0 || dt > maxFrameDelta {
		return nil, errors.NewValidationError("dt_ms", "must be between 0 and 1000")
	}
	return s.withEngine(ctx, id, func(e *deckEngine) error {
		step := dt
		if step == 0 {
			step = e.FrameInterval()
		}
		for i := 0; i < count; i++ {
			e.Tick(step)
		}
		return nil
	})
}

func (s *sessionService) Hint(ctx context.Context, id string) (*models.SessionView, bool, error) {
	var played bool
	view, err := s.withEngine(ctx, id, func(e *deckEngine) error {
		played = e.PlayHint()
		return nil
	})
	return view, played, err
}

// withEngine runs fn under the session lock, then persists whatever the
// engine judged and enqueues the submit once the deck runs out.
func (s *sessionService) withEngine(ctx context.Context, id string, fn func(*deckEngine) error) (*models.SessionView, error) {
	ls := s.lookup(id)
	if ls == nil {
		if _, err := s.session(ctx, id); err != nil {
			return nil, err
		}
		return nil, errors.NewConflictError("session is no longer active")
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if err := fn(ls.engine); err != nil {
		return nil, err
	}
	if err := s.flush(ctx, id, ls); err != nil {
		return nil, err
	}
	return s.view(ctx, id, ls)
}

func (s *sessionService) flush(ctx context.Context, id string, ls *liveSession) error {
	log := logger.FromContext(ctx).WithPrefix("session").WithField("session", id)

	for len(ls.pending) > 0 {
		r := ls.pending[0]
		if _, err := s.resultRepo.Insert(ctx, r); err != nil {
			log.Error("failed to persist decision for card %d: %v", r.CardID, err)
			return errors.NewInternalError(err)
		}
		ls.pending = ls.pending[1:]
	}

	if !ls.exhausted || ls.enqueued {
		return nil
	}
	log.Info("deck exhausted, queueing submit")

	// enqueued is only set once the session is handed off, either queued or
	// left in submit_failed for a manual retry; any earlier failure makes the
	// next flush try again.
	if err := s.sessionRepo.UpdateStatus(ctx, id, models.SessionSubmitting, models.StepSelectActivities, ""); err != nil {
		log.Error("failed to mark session submitting: %v", err)
		return errors.NewInternalError(err)
	}
	if err := s.jobQueue.EnqueueSubmit(id); err != nil {
		log.Error("failed to enqueue submit: %v", err)
		if uerr := s.sessionRepo.UpdateStatus(ctx, id, models.SessionSubmitFailed, models.StepSelectActivities, err.Error()); uerr != nil {
			return errors.NewInternalError(uerr)
		}
	}
	ls.enqueued = true
	s.release(id)
	return nil
}

// release drops the engine of a finished session. Later reads are served
// from the store.
func (s *sessionService) release(id string) {
	s.mu.Lock()
	delete(s.live, id)
	s.mu.Unlock()
}

func (s *sessionService) RetrySubmit(ctx context.Context, id string) (*models.SessionView, error) {
	log := logger.FromContext(ctx).WithPrefix("session").WithField("session", id)

	session, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	switch session.Status {
	case models.SessionSubmitFailed:
	case models.SessionSubmitting:
		return nil, errors.NewConflictError("submit already running")
	case models.SessionSubmitted:
		return nil, errors.NewConflictError("results already submitted")
	default:
		return nil, errors.NewConflictError("deck is not finished")
	}

	log.Info("retrying submit (attempt %d)", session.Attempts+1)
	if err := s.sessionRepo.UpdateStatus(ctx, id, models.SessionSubmitting, session.Step, session.LastError); err != nil {
		return nil, errors.NewInternalError(err)
	}
	if err := s.jobQueue.EnqueueSubmit(id); err != nil {
		log.Error("failed to enqueue submit: %v", err)
		if uerr := s.sessionRepo.UpdateStatus(ctx, id, models.SessionSubmitFailed, session.Step, err.Error()); uerr != nil {
			log.Error("failed to restore session status: %v", uerr)
		}
		return nil, errors.NewConflictError("submit queue unavailable")
	}
	return s.Get(ctx, id)
}

// SubmitSession posts the session's decisions in judgement order. Failures
// leave the session in submit_failed; with the navigate policy the session
// still moves on to the results step.
func (s *sessionService) SubmitSession(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("session").WithField("session", id)

	session, err := s.session(ctx, id)
	if err != nil {
		return err
	}
	if session.Status == models.SessionSubmitted {
		log.Debug("already submitted, skipping")
		return nil
	}

	decisions, err := s.resultRepo.Decisions(ctx, id)
	if err != nil {
		return errors.NewInternalError(err)
	}
	attempt := models.SubmitAttempt{SessionID: id}
	for _, d := range decisions {
		if d.SwipeRight {
			attempt.Accepted++
		} else {
			attempt.Rejected++
		}
	}

	submitErr := s.client.SubmitSwipes(ctx, decisions)
	if submitErr != nil {
		attempt.Error = submitErr.Error()
	}
	// the outcome is recorded even when shutdown cancelled the submit
	ctx = context.WithoutCancel(ctx)
	if _, err := s.sessionRepo.RecordAttempt(ctx, attempt); err != nil {
		log.Warn("failed to record submit attempt: %v", err)
	}

	if submitErr != nil {
		step := models.StepSelectActivities
		if s.submitPolicy == config.SubmitPolicyNavigate {
			step = models.StepViewResults
		}
		log.Error("submit failed (policy=%s): %v", s.submitPolicy, submitErr)
		if err := s.sessionRepo.UpdateStatus(ctx, id, models.SessionSubmitFailed, step, submitErr.Error()); err != nil {
			log.Error("failed to record submit failure: %v", err)
		}
		return errors.NewUpstreamError("submit swipes", submitErr)
	}

	if err := s.sessionRepo.MarkSubmitted(ctx, id, models.StepViewResults, s.now()); err != nil {
		return errors.NewInternalError(err)
	}
	log.Info("submitted %d accepted, %d rejected", attempt.Accepted, attempt.Rejected)
	return nil
}

func (s *sessionService) Results(ctx context.Context, filter models.SwipeResultFilter) ([]models.SwipeResult, int, error) {
	if _, err := s.session(ctx, filter.SessionID); err != nil {
		return nil, 0, err
	}
	switch filter.Direction {
	case "", models.DirectionRight, models.DirectionLeft:
	default:
		return nil, 0, errors.NewValidationError("direction", "must be right or left")
	}

	results, err := s.resultRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.resultRepo.Count(ctx, models.SwipeResultFilter{SessionID: filter.SessionID, Direction: filter.Direction})
	if err != nil {
		return nil, 0, errors.NewInternalError(err)
	}
	if results == nil {
		results = []models.SwipeResult{}
	}
	return results, total, nil
}

func (s *sessionService) Recap(ctx context.Context, id string) ([]models.Recap, error) {
	if _, err := s.session(ctx, id); err != nil {
		return nil, err
	}
	recap, err := s.client.FetchRecap(ctx)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("session").Error("failed to fetch recap: %v", err)
		return nil, errors.NewUpstreamError("fetch recap", err)
	}
	return recap, nil
}

// Recover fails submits left running by a previous process. Their engines
// are gone, but the stored decisions can be retried.
func (s *sessionService) Recover(ctx context.Context) (int, error) {
	n, err := s.sessionRepo.ResetSubmitting(ctx, "submit interrupted by restart")
	if err != nil {
		return 0, errors.NewInternalError(err)
	}
	return n, nil
}

func (s *sessionService) lookup(id string) *liveSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live[id]
}

func (s *sessionService) session(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.sessionRepo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("session", id)
		}
		return nil, errors.NewInternalError(err)
	}
	return session, nil
}

// view combines the stored session with the engine snapshot. ls may be nil
// for sessions with no live engine.
func (s *sessionService) view(ctx context.Context, id string, ls *liveSession) (*models.SessionView, error) {
	session, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	v := &models.SessionView{
		Session:  *session,
		State:    swipe.StateExhausted.String(),
		Pose:     swipe.IdentityPose(),
		Cursor:   session.CardCount,
		Total:    session.CardCount,
		Accepted: []int64{},
		Rejected: []int64{},
	}
	if ls == nil || ls.engine == nil {
		return s.storedView(ctx, v)
	}

	snap := ls.engine.Snapshot()
	v.State = snap.State.String()
	v.Animating = snap.Animating
	v.Hinting = snap.Hinting
	v.Pose = snap.Pose
	v.Cursor = snap.Cursor
	v.Total = snap.Total
	if snap.Accepted != nil {
		v.Accepted = snap.Accepted
	}
	if snap.Rejected != nil {
		v.Rejected = snap.Rejected
	}
	v.Current = snap.Current
	v.Upcoming = ls.engine.Deck().Upcoming(upcomingPreview)
	return v, nil
}

// storedView fills the outcome lists of a session without a live engine from
// its persisted decisions.
func (s *sessionService) storedView(ctx context.Context, v *models.SessionView) (*models.SessionView, error) {
	if v.Total == 0 {
		return v, nil
	}
	decisions, err := s.resultRepo.Decisions(ctx, v.Session.ID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	for _, d := range decisions {
		if d.SwipeRight {
			v.Accepted = append(v.Accepted, d.ID)
		} else {
			v.Rejected = append(v.Rejected, d.ID)
		}
	}
	v.Cursor = len(decisions)
	return v, nil
}
