package swipe

import (
	"fmt"
	"time"

	"github.com/vytor/swipequiz/internal/logger"
)

// State is the externally visible engine state.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateAnimating
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateAnimating:
		return "animating"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// EventKind identifies a gesture event delivered by the host.
type EventKind int

const (
	EventDragStart EventKind = iota
	EventDragUpdate
	EventDragEnd
)

func (k EventKind) String() string {
	switch k {
	case EventDragStart:
		return "start"
	case EventDragUpdate:
		return "update"
	case EventDragEnd:
		return "end"
	default:
		return "unknown"
	}
}

// ParseEventKind accepts the names produced by EventKind.String.
func ParseEventKind(s string) (EventKind, error) {
	switch s {
	case "start":
		return EventDragStart, nil
	case "update":
		return EventDragUpdate, nil
	case "end":
		return EventDragEnd, nil
	default:
		return 0, fmt.Errorf("unknown gesture event %q", s)
	}
}

// Event is one gesture callback translated for the engine.
type Event struct {
	Kind   EventKind
	Sample GestureSample
}

// phase splits Animating into its two flavours. A returning card may be
// grabbed again; an exiting card may not.
type phase int

const (
	phaseIdle phase = iota
	phaseDragging
	phaseReturning
	phaseExiting
	phaseExhausted
)

var phaseNames = [...]string{"idle", "dragging", "returning", "exiting", "exhausted"}

func (p phase) String() string { return phaseNames[p] }

func (p phase) state() State {
	switch p {
	case phaseDragging:
		return StateDragging
	case phaseReturning, phaseExiting:
		return StateAnimating
	case phaseExhausted:
		return StateExhausted
	default:
		return StateIdle
	}
}

type input int

const (
	inputDragStart input = iota
	inputDragUpdate
	inputRelease
	inputCommit
	inputSettled
	inputAdvanced
	inputDepleted
)

var inputNames = [...]string{"drag_start", "drag_update", "release", "commit", "settled", "advanced", "depleted"}

func (i input) String() string { return inputNames[i] }

// transitions is the whole state machine. Anything missing from the table is
// ignored by the dispatcher.
var transitions = map[phase]map[input]phase{
	phaseIdle: {
		inputDragStart: phaseDragging,
	},
	phaseDragging: {
		inputDragUpdate: phaseDragging,
		inputRelease:    phaseReturning,
		inputCommit:     phaseExiting,
	},
	phaseReturning: {
		inputDragStart: phaseDragging,
		inputSettled:   phaseIdle,
	},
	phaseExiting: {
		inputAdvanced: phaseIdle,
		inputDepleted: phaseExhausted,
	},
}

// Config tunes the engine. The zero value is not useful; start from
// DefaultConfig.
type Config struct {
	Thresholds Thresholds
	Mirror     Mirror
	Animator   AnimatorConfig
	Log        *logger.Logger
}

func DefaultConfig() Config {
	return Config{
		Thresholds: DefaultThresholds(),
		Mirror:     DefaultMirror(),
		Animator:   DefaultAnimatorConfig(),
	}
}

// Hooks are the engine's side effects. OnAdvance runs once per judged card,
// OnExhausted once per engine, right after the last card is judged.
type Hooks[T any, ID comparable] struct {
	OnAdvance   func(card T, o Outcome[ID])
	OnExhausted func(accepted, rejected []ID)
}

// Snapshot is a copy of the engine state for rendering and persistence.
type Snapshot[T any, ID comparable] struct {
	State     State
	Animating bool
	Hinting   bool
	Pose      Pose
	Cursor    int
	Total     int
	Accepted  []ID
	Rejected  []ID
	Current   *T
}

// Engine turns gesture events and animation frames into deck judgments. It is
// not safe for concurrent use; hosts call it from one goroutine (or hold a
// lock around it).
type Engine[T any, ID comparable] struct {
	deck     *Deck[T, ID]
	cfg      Config
	animator *Animator
	hooks    Hooks[T, ID]
	log      *logger.Logger

	phase      phase
	pose       Pose
	trajectory Trajectory
	hinting    bool
	fired      bool
}

// NewEngine builds an engine positioned on the deck's current card.
func NewEngine[T any, ID comparable](deck *Deck[T, ID], cfg Config, hooks Hooks[T, ID]) (*Engine[T, ID], error) {
	if deck.Len() == 0 {
		return nil, ErrEmptyDeck
	}
	seen := make(map[ID]struct{}, deck.Len())
	for _, c := range deck.cards {
		id := deck.idOf(c)
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate card id %v", id)
		}
		seen[id] = struct{}{}
	}

	log := cfg.Log
	if log == nil {
		log = logger.Default()
	}
	e := &Engine[T, ID]{
		deck:     deck,
		cfg:      cfg,
		animator: NewAnimator(cfg.Animator),
		hooks:    hooks,
		log:      log.WithPrefix("swipe"),
		pose:     IdentityPose(),
	}
	if deck.IsExhausted() {
		e.phase = phaseExhausted
	}
	return e, nil
}

// Dispatch feeds one gesture event to the engine. It returns false when the
// event was ignored: while a card is being thrown out, after the deck is
// exhausted, or when the event is out of order (an end without a start).
func (e *Engine[T, ID]) Dispatch(ev Event) bool {
	switch ev.Kind {
	case EventDragStart:
		if !e.transition(inputDragStart) {
			return false
		}
		// a new grab supersedes the spring-back or the hint
		e.trajectory = nil
		e.hinting = false
		return true

	case EventDragUpdate:
		if !e.transition(inputDragUpdate) {
			return false
		}
		e.pose = e.cfg.Mirror.Apply(e.pose, ev.Sample)
		return true

	case EventDragEnd:
		decision := Classify(ev.Sample, e.cfg.Thresholds)
		in := inputRelease
		if decision.Committed() {
			in = inputCommit
		}
		if !e.transition(in) {
			return false
		}
		e.pose = e.cfg.Mirror.Apply(e.pose, ev.Sample)
		if decision.Committed() {
			e.trajectory = e.animator.Exit(decision, e.pose, func() { e.completeExit(decision) })
		} else {
			e.trajectory = e.animator.Return(e.pose)
		}
		return true
	}
	return false
}

// Tick advances the in-flight trajectory by dt.
func (e *Engine[T, ID]) Tick(dt time.Duration) {
	if e.trajectory == nil {
		return
	}
	returning := e.phase == phaseReturning
	done := e.trajectory.Step(dt, &e.pose)
	if !done {
		return
	}

	switch {
	case returning && e.phase == phaseReturning:
		e.trajectory = nil
		e.pose = IdentityPose()
		e.transition(inputSettled)
	case e.hinting:
		e.trajectory = nil
		e.hinting = false
		e.pose = IdentityPose()
	}
}

// Drain ticks one frame at a time until nothing is moving or maxFrames is
// reached, and returns the number of frames used.
func (e *Engine[T, ID]) Drain(maxFrames int) int {
	frame := e.animator.FrameInterval()
	n := 0
	for e.trajectory != nil && n < maxFrames {
		e.Tick(frame)
		n++
	}
	return n
}

// PlayHint starts the demonstrative wiggle. It only plays on an idle card and
// is cancelled by the next drag start. It never judges a card.
func (e *Engine[T, ID]) PlayHint() bool {
	if e.phase != phaseIdle || e.trajectory != nil {
		return false
	}
	e.trajectory = e.animator.Hint(e.pose)
	e.hinting = true
	e.log.Debug("hint started")
	return true
}

// completeExit runs when the exit trajectory's horizontal track finishes.
func (e *Engine[T, ID]) completeExit(d Decision) {
	card, ok := e.deck.Current()
	if !ok {
		e.log.Error("exit finished on an exhausted deck")
		return
	}
	o := Outcome[ID]{ID: e.deck.idOf(card), Accepted: d == DecisionRight}
	if err := e.deck.Advance(o); err != nil {
		e.log.Error("advance failed: %v", err)
		return
	}
	e.log.Debug("card %v judged %s (cursor=%d/%d)", o.ID, d, e.deck.Cursor(), e.deck.Len())

	e.trajectory = nil
	e.pose = IdentityPose()

	if e.hooks.OnAdvance != nil {
		e.hooks.OnAdvance(card, o)
	}

	if !e.deck.IsExhausted() {
		e.transition(inputAdvanced)
		return
	}
	e.transition(inputDepleted)
	if e.fired {
		return
	}
	e.fired = true
	if e.hooks.OnExhausted != nil {
		e.hooks.OnExhausted(e.deck.Accepted(), e.deck.Rejected())
	}
}

func (e *Engine[T, ID]) transition(in input) bool {
	next, ok := transitions[e.phase][in]
	if !ok {
		e.log.Debug("ignoring %s while %s", in, e.phase)
		return false
	}
	if next != e.phase {
		e.log.Debug("%s --%s--> %s", e.phase, in, next)
	}
	e.phase = next
	return true
}

// State reports the current state.
func (e *Engine[T, ID]) State() State { return e.phase.state() }

// Animating reports whether an exit is in flight and gesture input is locked.
func (e *Engine[T, ID]) Animating() bool { return e.phase == phaseExiting }

func (e *Engine[T, ID]) Pose() Pose { return e.pose }

func (e *Engine[T, ID]) Deck() *Deck[T, ID] { return e.deck }

// FrameInterval is the tick length the engine's springs are tuned for.
func (e *Engine[T, ID]) FrameInterval() time.Duration { return e.animator.FrameInterval() }

func (e *Engine[T, ID]) Snapshot() Snapshot[T, ID] {
	s := Snapshot[T, ID]{
		State:     e.State(),
		Animating: e.Animating(),
		Hinting:   e.hinting,
		Pose:      e.pose,
		Cursor:    e.deck.Cursor(),
		Total:     e.deck.Len(),
		Accepted:  e.deck.Accepted(),
		Rejected:  e.deck.Rejected(),
	}
	if c, ok := e.deck.Current(); ok {
		s.Current = &c
	}
	return s
}
