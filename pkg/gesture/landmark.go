// Package gesture reduces hand-tracking output to the morph control signal.
//
// A hand-tracking collaborator (MediaPipe in the browser, a recorded trace,
// or a scripted source) delivers at most one [Hand] per call. [Classify]
// turns it into a [morph.Signal]: a pinch between thumb tip and index tip
// closes the hand and re-forms the tree, an open hand disperses it, and the
// middle-finger knuckle drives the pointer used for interactive rotation.
//
// [Sampler] runs the tracker on its own cadence and publishes every
// classification into a shared [morph.State].
package gesture

import (
	"encoding/json"
	"fmt"
	"math"
)

// MediaPipe hand landmark indices used by the classifier.
const (
	Wrist     = 0
	ThumbTip  = 4
	IndexTip  = 8
	MiddleMCP = 9

	// LandmarkCount is the number of points in a full hand.
	LandmarkCount = 21
)

// Landmark is one tracked point in normalized image space: x and y in [0,1]
// across the frame, z relative depth on a similar scale.
type Landmark struct {
	X float64 `bson:"x"`
	Y float64 `bson:"y"`
	Z float64 `bson:"z"`
}

// MarshalJSON encodes a landmark as a compact [x, y, z] triple.
func (l Landmark) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{l.X, l.Y, l.Z})
}

// UnmarshalJSON accepts either a [x, y, z] triple or an {"x","y","z"} object.
func (l *Landmark) UnmarshalJSON(data []byte) error {
	var triple []float64
	if err := json.Unmarshal(data, &triple); err == nil {
		if len(triple) < 2 || len(triple) > 3 {
			return fmt.Errorf("landmark: want 2 or 3 coordinates, got %d", len(triple))
		}
		l.X, l.Y = triple[0], triple[1]
		if len(triple) == 3 {
			l.Z = triple[2]
		}
		return nil
	}
	var obj struct {
		X, Y, Z float64
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("landmark: %w", err)
	}
	l.X, l.Y, l.Z = obj.X, obj.Y, obj.Z
	return nil
}

// Clamped returns the landmark with every coordinate forced into [0,1].
// NaN coordinates become 0.5, the frame centre.
func (l Landmark) Clamped() Landmark {
	return Landmark{X: clamp01(l.X), Y: clamp01(l.Y), Z: clamp01(l.Z)}
}

// Dist returns the Euclidean distance between two landmarks over all axes.
func (l Landmark) Dist(o Landmark) float64 {
	dx, dy, dz := l.X-o.X, l.Y-o.Y, l.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Hand is the ordered landmark list for one tracked hand.
// A nil Hand, or one too short to contain the classifier's landmarks, means
// no hand was detected.
type Hand []Landmark

// Present reports whether h carries the landmarks the classifier reads.
func (h Hand) Present() bool {
	return len(h) > MiddleMCP
}

// Clone returns an independent copy of h.
func (h Hand) Clone() Hand {
	if h == nil {
		return nil
	}
	out := make(Hand, len(h))
	copy(out, h)
	return out
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0.5
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
