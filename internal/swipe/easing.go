package swipe

import "math"

// EasingFunc maps linear progress in [0,1] to eased progress.
type EasingFunc func(float64) float64

// Linear is the identity curve.
func Linear(t float64) float64 { return t }

// CubicBezier returns the CSS-style timing curve through (0,0), (x1,y1),
// (x2,y2), (1,1).
func CubicBezier(x1, y1, x2, y2 float64) EasingFunc {
	cx := 3 * x1
	bx := 3*(x2-x1) - cx
	ax := 1 - cx - bx
	cy := 3 * y1
	by := 3*(y2-y1) - cy
	ay := 1 - cy - by

	sampleX := func(s float64) float64 { return ((ax*s+bx)*s + cx) * s }
	sampleY := func(s float64) float64 { return ((ay*s+by)*s + cy) * s }
	slopeX := func(s float64) float64 { return (3*ax*s+2*bx)*s + cx }

	solve := func(x float64) float64 {
		s := x
		for i := 0; i < 8; i++ {
			dx := sampleX(s) - x
			if math.Abs(dx) < 1e-7 {
				return s
			}
			d := slopeX(s)
			if math.Abs(d) < 1e-6 {
				break
			}
			s -= dx / d
		}

		lo, hi := 0.0, 1.0
		s = x
		for i := 0; i < 50 && lo < hi; i++ {
			v := sampleX(s)
			if math.Abs(v-x) < 1e-7 {
				return s
			}
			if x > v {
				lo = s
			} else {
				hi = s
			}
			s = (lo + hi) / 2
		}
		return s
	}

	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return sampleY(solve(t))
	}
}

// EaseIn is the "ease" curve of the animation runtime: bezier(0.42, 0, 1, 1).
var EaseIn = CubicBezier(0.42, 0, 1, 1)

// Out mirrors an easing curve so it decelerates instead of accelerating.
func Out(f EasingFunc) EasingFunc {
	return func(t float64) float64 { return 1 - f(1-t) }
}

// EaseOut is the exit curve used when a card is thrown off screen.
var EaseOut = Out(EaseIn)
