package morph

import "math"

// Smooth advances current toward target by the fraction alpha.
// current and target are clamped into [0,1] and alpha into (0,1], so the
// result always lies between current and target and never overshoots.
func Smooth(current, target, alpha float64) float64 {
	current = clampUnit(current, InitialCurrent)
	target = clampUnit(target, current)
	if math.IsNaN(alpha) || alpha <= 0 {
		return current
	}
	if alpha >= 1 {
		return target
	}
	return current + (target-current)*alpha
}

// Lerp linearly interpolates between a and b by t without clamping.
// It returns exactly a at t = 0 and exactly b at t = 1.
func Lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// Clamp01 clamps v into [0,1]; NaN becomes 0.
func Clamp01(v float64) float64 {
	return clampUnit(v, 0)
}

func clampUnit(v, fallback float64) float64 {
	switch {
	case math.IsNaN(v):
		return fallback
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func clampSigned(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < -1:
		return -1
	case v > 1:
		return 1
	}
	return v
}
