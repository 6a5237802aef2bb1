package gesture

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/matzehuels/morphtree/pkg/morph"
)

// pinchHand builds a hand whose thumb and index tips lie d apart on the x axis.
func pinchHand(d float64) Hand {
	h := make(Hand, LandmarkCount)
	for i := range h {
		h[i] = Landmark{X: 0.5, Y: 0.5}
	}
	h[ThumbTip] = Landmark{X: 0.4, Y: 0.3}
	h[IndexTip] = Landmark{X: 0.4 + d, Y: 0.3}
	return h
}

func TestClassifyPinchThreshold(t *testing.T) {
	tests := []struct {
		name   string
		dist   float64
		target float64
	}{
		{"touching", 0.0, 1.0},
		{"just below", 0.099, 1.0},
		{"just above", 0.101, 0.0},
		{"wide open", 0.4, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := Classify(pinchHand(tt.dist))
			if sig.Target != tt.target {
				t.Errorf("Classify(d=%v).Target = %v, want %v", tt.dist, sig.Target, tt.target)
			}
			if !sig.Active {
				t.Error("hand present but signal inactive")
			}
		})
	}
}

func TestClassifyExactThresholdIsOpen(t *testing.T) {
	c := &Classifier{PinchThreshold: 0.25}
	h := pinchHand(0)
	h[ThumbTip] = Landmark{X: 0.25, Y: 0.5}
	h[IndexTip] = Landmark{X: 0.5, Y: 0.5}
	if d, _ := PinchDistance(h); d != 0.25 {
		t.Fatalf("PinchDistance = %v, want 0.25", d)
	}
	if got := c.Classify(h).Target; got != 0 {
		t.Errorf("distance == threshold: target = %v, want 0 (open)", got)
	}
}

func TestClassifyNoHand(t *testing.T) {
	for _, h := range []Hand{nil, {}, make(Hand, MiddleMCP)} {
		sig := Classify(h)
		if sig != morph.Rest {
			t.Errorf("Classify(len=%d) = %+v, want %+v", len(h), sig, morph.Rest)
		}
	}
}

func TestClassifyNoHandResetsPointer(t *testing.T) {
	s := morph.NewState(morph.Options{})
	s.Publish(Classify(SyntheticHand(KindOpen, 0.1, 0.9)))
	if !s.Signal().Active {
		t.Fatal("expected active signal after open hand")
	}
	s.Publish(Classify(nil))
	sig := s.Signal()
	if sig.Active || sig.Target != 1 || sig.Pointer != (morph.Pointer{}) {
		t.Errorf("after hand loss signal = %+v, want rest", sig)
	}
}

func TestPointerFrom(t *testing.T) {
	tests := []struct {
		lm   Landmark
		want morph.Pointer
	}{
		{Landmark{X: 0.5, Y: 0.5}, morph.Pointer{X: 0, Y: 0}},
		{Landmark{X: 0, Y: 0}, morph.Pointer{X: 1, Y: 1}},
		{Landmark{X: 1, Y: 1}, morph.Pointer{X: -1, Y: -1}},
		{Landmark{X: 0.75, Y: 0.25}, morph.Pointer{X: -0.5, Y: 0.5}},
		{Landmark{X: -3, Y: 7}, morph.Pointer{X: 1, Y: -1}},
	}
	for _, tt := range tests {
		if got := PointerFrom(tt.lm); got != tt.want {
			t.Errorf("PointerFrom(%+v) = %+v, want %+v", tt.lm, got, tt.want)
		}
	}
}

func TestClassifyClampsLandmarks(t *testing.T) {
	h := pinchHand(0)
	h[ThumbTip] = Landmark{X: -5, Y: -5, Z: -5}
	h[IndexTip] = Landmark{X: -1, Y: -2, Z: -0.5}
	// Both clamp to the origin, so the hand reads as a pinch.
	if got := Classify(h).Target; got != 1 {
		t.Errorf("clamped pinch target = %v, want 1", got)
	}

	h[MiddleMCP] = Landmark{X: math.NaN(), Y: 2}
	p := Classify(h).Pointer
	if p.X != 0 || p.Y != -1 {
		t.Errorf("pointer from NaN/out-of-range = %+v, want {0 -1}", p)
	}
}

func TestPointerIndependentOfPose(t *testing.T) {
	open := Classify(SyntheticHand(KindOpen, 0.3, 0.6))
	closed := Classify(SyntheticHand(KindClosed, 0.3, 0.6))
	if open.Pointer != closed.Pointer {
		t.Errorf("pointer differs by pose: open %+v closed %+v", open.Pointer, closed.Pointer)
	}
	if open.Target != 0 || closed.Target != 1 {
		t.Errorf("targets = (%v, %v), want (0, 1)", open.Target, closed.Target)
	}
}

func TestLandmarkJSON(t *testing.T) {
	var h Hand
	if err := json.Unmarshal([]byte(`[[0.1,0.2,0.3],{"x":0.4,"y":0.5},[0.6,0.7]]`), &h); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := Hand{{0.1, 0.2, 0.3}, {0.4, 0.5, 0}, {0.6, 0.7, 0}}
	if len(h) != len(want) {
		t.Fatalf("len = %d, want %d", len(h), len(want))
	}
	for i := range want {
		if h[i] != want[i] {
			t.Errorf("h[%d] = %+v, want %+v", i, h[i], want[i])
		}
	}

	data, err := json.Marshal(Landmark{X: 1, Y: 0.5, Z: 0})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[1,0.5,0]" {
		t.Errorf("Marshal = %s, want [1,0.5,0]", data)
	}

	var bad Landmark
	if err := json.Unmarshal([]byte(`[1]`), &bad); err == nil {
		t.Error("expected error for single coordinate")
	}
}
