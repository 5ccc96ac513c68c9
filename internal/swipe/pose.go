package swipe

// Pose is the transform applied to the card on top of the deck.
type Pose struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	RotationDeg float64 `json:"rotation_deg"`
	Scale       float64 `json:"scale"`
}

// IdentityPose is the resting pose of a freshly dealt card.
func IdentityPose() Pose {
	return Pose{Scale: 1}
}

// GestureSample is a drag reading relative to where the drag started.
type GestureSample struct {
	DX        float64 `json:"dx" yaml:"dx"`
	DY        float64 `json:"dy" yaml:"dy"`
	VelocityX float64 `json:"velocity_x" yaml:"velocity_x"`
}

// Mirror converts drag displacement into the pose written while the pointer
// is down. The card follows the finger horizontally, vertical travel is damped
// and the tilt grows with horizontal travel.
type Mirror struct {
	VerticalDivisor float64
	RotationDivisor float64
}

// DefaultMirror follows the activity swipe screen: y = dy/3, rotation = dx/20.
func DefaultMirror() Mirror {
	return Mirror{VerticalDivisor: 3, RotationDivisor: 20}
}

// Apply overwrites the positional part of p with the sample. Scale is left
// untouched.
func (m Mirror) Apply(p Pose, s GestureSample) Pose {
	p.X = s.DX
	p.Y = divide(s.DY, m.VerticalDivisor)
	p.RotationDeg = divide(s.DX, m.RotationDivisor)
	return p
}

func divide(v, by float64) float64 {
	if by == 0 {
		return v
	}
	return v / by
}
