package blend

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestApproachReachesFixedPoint(t *testing.T) {
	from := mgl64.Vec3{-12, 4, 9}
	to := mgl64.Vec3{1.5, -3.25, 0.125}

	p := from
	steps := 0
	for p != to {
		prev := p.Sub(to).Len()
		p = Approach(p, to, 0.1)
		if d := p.Sub(to).Len(); d >= prev {
			t.Fatalf("step %d: distance %v did not shrink from %v", steps, d, prev)
		}
		steps++
		if steps > 1000 {
			t.Fatal("Approach never snapped to target")
		}
	}
	if again := Approach(p, to, 0.1); again != to {
		t.Errorf("fixed point drifted: %v", again)
	}
}

func TestApproachRateBounds(t *testing.T) {
	from, to := mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 2, 3}
	if got := Approach(from, to, 1); got != to {
		t.Errorf("rate 1 = %v, want %v", got, to)
	}
	if got := Approach(from, to, 5); got != to {
		t.Errorf("rate > 1 should clamp, got %v", got)
	}
	if got := Approach(from, to, -1); got != from {
		t.Errorf("rate < 0 should not move, got %v", got)
	}
}

func TestMixEndpoints(t *testing.T) {
	d := mgl64.Vec3{0.1, -7.3, 2.9}
	f := mgl64.Vec3{0.3, 4.1, -0.7}
	if got := Mix(d, f, 0); got != d {
		t.Errorf("Mix(0) = %v, want %v", got, d)
	}
	if got := Mix(d, f, 1); got != f {
		t.Errorf("Mix(1) = %v, want %v", got, f)
	}
	mid := Mix(d, f, 0.5)
	want := d.Add(f).Mul(0.5)
	if mid.Sub(want).Len() > 1e-12 {
		t.Errorf("Mix(0.5) = %v, want %v", mid, want)
	}
}

func TestLaggedEndpoints(t *testing.T) {
	for i := 0; i < 500; i++ {
		if got := Lagged(0, i, LagStep, LagPeriod); got != 0 {
			t.Fatalf("Lagged(0, %d) = %v, want 0", i, got)
		}
		if got := Lagged(1, i, LagStep, LagPeriod); got != 1 {
			t.Fatalf("Lagged(1, %d) = %v, want 1", i, got)
		}
	}
}

func TestLagged(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		index   int
		want    float64
	}{
		{"index zero", 0.7, 0, 0.7},
		{"trails above half", 0.75, 50, 0.75 - 0.05*0.5},
		{"leads below half", 0.25, 50, 0.25 + 0.05*0.5},
		{"midpoint leads", 0.5, 20, 0.5 + 0.02},
		{"period wraps", 0.75, 150, 0.75 - 0.05*0.5},
		{"clamped input", 1.5, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lagged(tt.current, tt.index, LagStep, LagPeriod)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Lagged(%v, %d) = %v, want %v", tt.current, tt.index, got, tt.want)
			}
		})
	}
}

func TestLaggedStaysInUnit(t *testing.T) {
	for c := 0.0; c <= 1.0; c += 0.01 {
		for _, i := range []int{0, 1, 33, 99, 1000} {
			got := Lagged(c, i, 0.05, LagPeriod)
			if got < 0 || got > 1 {
				t.Fatalf("Lagged(%v, %d) = %v outside [0,1]", c, i, got)
			}
		}
	}
}

func TestLookRotation(t *testing.T) {
	tests := []struct {
		eye, target mgl64.Vec3
	}{
		{mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 5}},
		{mgl64.Vec3{1, 2, 3}, mgl64.Vec3{0, 4, 18}},
		{mgl64.Vec3{3, 0, 0}, mgl64.Vec3{0, 0, 0}},
		{mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 10, 0}},
	}
	forward := mgl64.Vec3{0, 0, 1}
	for _, tt := range tests {
		q := LookRotation(tt.eye, tt.target, mgl64.Vec3{0, 1, 0})
		got := q.Rotate(forward)
		want := tt.target.Sub(tt.eye).Normalize()
		if got.Sub(want).Len() > 1e-9 {
			t.Errorf("LookRotation(%v -> %v) forward = %v, want %v", tt.eye, tt.target, got, want)
		}
	}

	if q := LookRotation(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{0, 1, 0}); q != mgl64.QuatIdent() {
		t.Errorf("degenerate look = %v, want identity", q)
	}
}
