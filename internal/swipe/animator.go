package swipe

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

// Trajectory drives a pose over time. Step advances it by dt, writes the new
// values into p and reports whether the trajectory has come to rest.
type Trajectory interface {
	Step(dt time.Duration, p *Pose) bool
}

// AnimatorConfig shapes exit, return and hint trajectories.
type AnimatorConfig struct {
	ViewportWidth   float64
	ExitDuration    time.Duration
	ExitLift        float64
	ExitRotationDeg float64
	Easing          EasingFunc

	FrameRate       int
	SpringFrequency float64
	SpringDamping   float64
	SettleEpsilon   float64

	HintOffset  float64
	HintSegment time.Duration
}

// DefaultAnimatorConfig matches the activity swipe screen: a 400ms eased
// throw to 1.5 viewport widths, and a spring with damping 15 over the
// runtime's default stiffness 100 (ratio 0.75, 10 rad/s).
func DefaultAnimatorConfig() AnimatorConfig {
	return AnimatorConfig{
		ViewportWidth:   390,
		ExitDuration:    400 * time.Millisecond,
		ExitLift:        50,
		ExitRotationDeg: 30,
		Easing:          EaseOut,
		FrameRate:       60,
		SpringFrequency: 10,
		SpringDamping:   0.75,
		SettleEpsilon:   0.01,
		HintOffset:      40,
		HintSegment:     250 * time.Millisecond,
	}
}

// Animator builds trajectories for released cards.
type Animator struct {
	cfg AnimatorConfig
}

func NewAnimator(cfg AnimatorConfig) *Animator {
	if cfg.Easing == nil {
		cfg.Easing = EaseOut
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 60
	}
	if cfg.SettleEpsilon <= 0 {
		cfg.SettleEpsilon = 0.01
	}
	return &Animator{cfg: cfg}
}

// FrameInterval is the duration of one animation frame.
func (a *Animator) FrameInterval() time.Duration {
	return time.Second / time.Duration(a.cfg.FrameRate)
}

// Exit throws the card off screen in the direction of d. onExit runs exactly
// once, when the horizontal track finishes; the vertical and rotation tracks
// never gate it.
func (a *Animator) Exit(d Decision, from Pose, onExit func()) Trajectory {
	sign := 1.0
	if d == DecisionLeft {
		sign = -1
	}
	dur := a.cfg.ExitDuration
	return &exitTrajectory{
		x:      &timing{from: from.X, to: sign * 1.5 * a.cfg.ViewportWidth, duration: dur, ease: a.cfg.Easing},
		y:      &timing{from: from.Y, to: from.Y + a.cfg.ExitLift, duration: dur, ease: a.cfg.Easing},
		rot:    &timing{from: from.RotationDeg, to: sign * a.cfg.ExitRotationDeg, duration: dur, ease: a.cfg.Easing},
		onExit: onExit,
	}
}

// Return springs the card back to the origin pose.
func (a *Animator) Return(from Pose) Trajectory {
	return &returnTrajectory{
		x:   a.spring(from.X),
		y:   a.spring(from.Y),
		rot: a.spring(from.RotationDeg),
	}
}

// Hint wiggles the card left, right and back to show it can be swiped.
func (a *Animator) Hint(from Pose) Trajectory {
	off, seg := a.cfg.HintOffset, a.cfg.HintSegment
	return &hintTrajectory{
		segments: []*timing{
			{from: from.X, to: -off, duration: seg, ease: EaseIn},
			{from: -off, to: off, duration: 2 * seg, ease: Linear},
			{from: off, to: 0, duration: seg, ease: EaseOut},
		},
		rotationDivisor: DefaultMirror().RotationDivisor,
	}
}

func (a *Animator) spring(from float64) *spring {
	frame := a.FrameInterval()
	return &spring{
		s:     harmonica.NewSpring(harmonica.FPS(a.cfg.FrameRate), a.cfg.SpringFrequency, a.cfg.SpringDamping),
		pos:   from,
		frame: frame,
		eps:   a.cfg.SettleEpsilon,
	}
}

// timing is a fixed-duration eased track.
type timing struct {
	from, to float64
	duration time.Duration
	elapsed  time.Duration
	ease     EasingFunc
}

func (t *timing) advance(dt time.Duration) (float64, bool) {
	t.elapsed += dt
	if t.duration <= 0 || t.elapsed >= t.duration {
		return t.to, true
	}
	p := t.ease(float64(t.elapsed) / float64(t.duration))
	return t.from + (t.to-t.from)*p, false
}

// maxSpringCatchUp bounds how much elapsed time one advance simulates. A
// damped return spring is at rest long before this.
const maxSpringCatchUp = 10 * time.Second

// spring is a damped spring track stepped at a fixed frame interval. Leftover
// time smaller than a frame is carried into the next advance.
type spring struct {
	s        harmonica.Spring
	pos, vel float64
	target   float64
	frame    time.Duration
	carry    time.Duration
	eps      float64
	settled  bool
}

func (s *spring) advance(dt time.Duration) (float64, bool) {
	if s.settled {
		return s.target, true
	}
	s.carry = min(s.carry+dt, maxSpringCatchUp)
	for !s.atRest() && s.carry >= s.frame {
		s.pos, s.vel = s.s.Update(s.pos, s.vel, s.target)
		s.carry -= s.frame
	}
	if s.atRest() {
		s.settled = true
		s.pos, s.vel = s.target, 0
		return s.target, true
	}
	return s.pos, false
}

func (s *spring) atRest() bool {
	return math.Abs(s.pos-s.target) < s.eps && math.Abs(s.vel) < s.eps
}

type exitTrajectory struct {
	x, y, rot             *timing
	xDone, yDone, rotDone bool
	onExit                func()
	notified              bool
}

func (e *exitTrajectory) Step(dt time.Duration, p *Pose) bool {
	if !e.yDone {
		p.Y, e.yDone = e.y.advance(dt)
	}
	if !e.rotDone {
		p.RotationDeg, e.rotDone = e.rot.advance(dt)
	}
	if !e.xDone {
		p.X, e.xDone = e.x.advance(dt)
	}
	if e.xDone && !e.notified {
		e.notified = true
		if e.onExit != nil {
			e.onExit()
		}
	}
	return e.xDone && e.yDone && e.rotDone
}

type returnTrajectory struct {
	x, y, rot *spring
}

func (r *returnTrajectory) Step(dt time.Duration, p *Pose) bool {
	var xs, ys, rs bool
	p.X, xs = r.x.advance(dt)
	p.Y, ys = r.y.advance(dt)
	p.RotationDeg, rs = r.rot.advance(dt)
	return xs && ys && rs
}

type hintTrajectory struct {
	segments        []*timing
	current         int
	rotationDivisor float64
}

func (h *hintTrajectory) Step(dt time.Duration, p *Pose) bool {
	for h.current < len(h.segments) {
		seg := h.segments[h.current]
		x, done := seg.advance(dt)
		p.X = x
		p.RotationDeg = divide(x, h.rotationDivisor)
		if !done {
			return false
		}
		// spill the time past this segment's end into the next one
		dt = seg.elapsed - seg.duration
		h.current++
		if h.current < len(h.segments) && dt <= 0 {
			return false
		}
	}
	return true
}
