package swipe

// Decision is the outcome of releasing a drag.
type Decision int

const (
	DecisionNone Decision = iota
	DecisionLeft
	DecisionRight
)

func (d Decision) String() string {
	switch d {
	case DecisionLeft:
		return "left"
	case DecisionRight:
		return "right"
	default:
		return "none"
	}
}

// Committed reports whether the decision dismisses the card.
func (d Decision) Committed() bool {
	return d == DecisionLeft || d == DecisionRight
}

// Thresholds bound the commit region. Either one being exceeded commits.
type Thresholds struct {
	Distance float64
	Velocity float64
}

// DefaultThresholds returns 150 units of travel or 800 units/sec of fling.
func DefaultThresholds() Thresholds {
	return Thresholds{Distance: 150, Velocity: 800}
}

// Classify decides what a release does. Left is checked before right, so a
// sample that satisfies both (e.g. dragged left but flung right) is a left
// swipe.
func Classify(s GestureSample, t Thresholds) Decision {
	swipedLeft := s.DX < -t.Distance || s.VelocityX < -t.Velocity
	if swipedLeft {
		return DecisionLeft
	}
	swipedRight := s.DX > t.Distance || s.VelocityX > t.Velocity
	if swipedRight {
		return DecisionRight
	}
	return DecisionNone
}
