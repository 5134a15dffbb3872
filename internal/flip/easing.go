package flip

import "math"

// Easing maps linear progress in [0,1] to eased progress.
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 {
	return clamp01(t)
}

// EaseOut is cubic-bezier(.2,.8,.2,1), a fast start that settles gently.
var EaseOut = CubicBezier(0.2, 0.8, 0.2, 1)

// CubicBezier builds a CSS-style timing function through (0,0), (x1,y1), (x2,y2), (1,1).
func CubicBezier(x1, y1, x2, y2 float64) Easing {
	x1 = clamp01(x1)
	x2 = clamp01(x2)
	sample := func(a1, a2, t float64) float64 {
		// B(t) = 3(1-t)^2 t a1 + 3(1-t) t^2 a2 + t^3
		u := 1 - t
		return 3*u*u*t*a1 + 3*u*t*t*a2 + t*t*t
	}
	slope := func(a1, a2, t float64) float64 {
		u := 1 - t
		return 3*u*u*a1 + 6*u*t*(a2-a1) + 3*t*t*(1-a2)
	}
	solveT := func(x float64) float64 {
		t := x
		for range 8 {
			dx := sample(x1, x2, t) - x
			if math.Abs(dx) < 1e-6 {
				return t
			}
			d := slope(x1, x2, t)
			if math.Abs(d) < 1e-6 {
				break
			}
			t -= dx / d
		}
		lo, hi := 0.0, 1.0
		t = x
		for range 50 {
			v := sample(x1, x2, t)
			if math.Abs(v-x) < 1e-6 {
				break
			}
			if v < x {
				lo = t
			} else {
				hi = t
			}
			t = (lo + hi) / 2
		}
		return t
	}
	return func(x float64) float64 {
		x = clamp01(x)
		if x == 0 || x == 1 {
			return x
		}
		return sample(y1, y2, solveT(x))
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
