package gesture

import (
	"math"

	"github.com/matzehuels/morphtree/pkg/morph"
)

// DefaultPinchThreshold is the thumb-to-index distance below which a hand
// counts as closed.
const DefaultPinchThreshold = 0.1

// Classifier is the fixed-threshold open/closed heuristic.
type Classifier struct {
	// PinchThreshold is the closed/open boundary. A distance exactly at the
	// threshold is open. Zero selects DefaultPinchThreshold.
	PinchThreshold float64
}

// Classify maps one tracker sample to a control signal using the default
// threshold.
func Classify(h Hand) morph.Signal {
	return (&Classifier{}).Classify(h)
}

// Classify maps one tracker sample to a control signal.
//
// Without a hand the result is [morph.Rest] regardless of earlier samples.
// With a hand, a closed pinch targets the formed tree (1) and an open hand
// targets the dispersed state (0). The pointer follows the middle-finger
// knuckle in both cases, centred and mirrored on both axes.
func (c *Classifier) Classify(h Hand) morph.Signal {
	if !h.Present() {
		return morph.Rest
	}

	target := 0.0
	if d, _ := PinchDistance(h); d < c.threshold() {
		target = 1.0
	}

	return morph.Signal{
		Target:  target,
		Pointer: PointerFrom(h[MiddleMCP]),
		Active:  true,
	}
}

func (c *Classifier) threshold() float64 {
	if c == nil || c.PinchThreshold <= 0 || math.IsNaN(c.PinchThreshold) {
		return DefaultPinchThreshold
	}
	return c.PinchThreshold
}

// PinchDistance returns the thumb-tip to index-tip distance of h after
// clamping both landmarks into the unit cube. ok is false without a hand.
func PinchDistance(h Hand) (d float64, ok bool) {
	if !h.Present() {
		return 0, false
	}
	return h[ThumbTip].Clamped().Dist(h[IndexTip].Clamped()), true
}

// PointerFrom converts a landmark to the mirrored, centred pointer vector.
func PointerFrom(l Landmark) morph.Pointer {
	l = l.Clamped()
	return morph.Pointer{
		X: -(l.X - 0.5) * 2,
		Y: -(l.Y - 0.5) * 2,
	}
}
