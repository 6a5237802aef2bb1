package blend

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/morphtree/pkg/layout"
	"github.com/matzehuels/morphtree/pkg/morph"
)

// Rule advances one entity's body for one frame and stores the result in
// b.Transform.
type Rule interface {
	Apply(e *layout.Entity, b *Body, t Tick)
}

// RuleFunc adapts a function to the [Rule] interface.
type RuleFunc func(e *layout.Entity, b *Body, t Tick)

// Apply calls f.
func (f RuleFunc) Apply(e *layout.Entity, b *Body, t Tick) { f(e, b, t) }

var up = mgl64.Vec3{0, 1, 0}

// =============================================================================
// Particles
// =============================================================================

// ParticleRule places foliage particles at the direct mix of their two
// positions. There is no second smoothing stage and no rotation.
type ParticleRule struct{}

// Apply implements [Rule].
func (ParticleRule) Apply(e *layout.Entity, b *Body, t Tick) {
	b.Position = Mix(e.Dispersed, e.Formed, t.Current)
	b.Transform = Transform{Position: b.Position, Scale: 1, Rotation: mgl64.QuatIdent()}
}

// =============================================================================
// Ornaments
// =============================================================================

// OrnamentRule drives spheres, boxes and gems: they chase the blend target,
// grow as the tree forms, tumble while dispersed and sway gently once
// formed. The per-entity lag staggers how fast each ornament follows and
// when it switches between tumbling and swaying; the position it settles
// on is always Mix(dispersed, formed, current).
type OrnamentRule struct {
	Follow         float64 // second-stage rate
	LagStep        float64
	LagPeriod      int
	ScaleDispersed float64
	ScaleFormed    float64

	// SpinBelow is the control value under which ornaments tumble.
	SpinBelow float64
	SpinStep  mgl64.Vec3 // Euler increment per frame while tumbling
	Sway      float64    // z amplitude once formed
}

// DefaultOrnamentRule matches the original display.
var DefaultOrnamentRule = OrnamentRule{
	Follow:         0.1,
	LagStep:        LagStep,
	LagPeriod:      LagPeriod,
	ScaleDispersed: 0.5,
	ScaleFormed:    1.0,
	SpinBelow:      0.9,
	SpinStep:       mgl64.Vec3{0.01, 0.02, 0},
	Sway:           0.1,
}

// Apply implements [Rule].
func (r OrnamentRule) Apply(e *layout.Entity, b *Body, t Tick) {
	b.Position = Approach(b.Position, Mix(e.Dispersed, e.Formed, t.Current), r.follow(e.Index))

	if Lagged(t.Current, e.Index, r.LagStep, r.LagPeriod) < r.SpinBelow {
		b.Spin = b.Spin.Add(r.SpinStep)
	} else {
		b.Spin[2] = math.Sin(t.Elapsed+float64(e.Index)) * r.Sway
	}

	b.Transform = Transform{
		Position: b.Position,
		Scale:    morph.Lerp(r.ScaleDispersed, r.ScaleFormed, t.Current),
		Rotation: Euler(b.Spin),
	}
}

// follow slows the second stage by the entity's lag delay, at most 90 %.
func (r OrnamentRule) follow(index int) float64 {
	if r.LagPeriod <= 0 || r.LagStep <= 0 || index < 0 {
		return r.Follow
	}
	slow := math.Min(r.LagStep*float64(index%r.LagPeriod), 0.9)
	return r.Follow * (1 - slow)
}

// =============================================================================
// Topper
// =============================================================================

// TopperRule drives the star above the apex: it follows slowly, spins
// around y with elapsed time and pulses in scale.
type TopperRule struct {
	Follow     float64
	SpinRate   float64 // radians per second about y
	PulseRate  float64 // radians per second
	PulseDepth float64
}

// DefaultTopperRule matches the original display.
var DefaultTopperRule = TopperRule{
	Follow:     0.05,
	SpinRate:   0.8,
	PulseRate:  3,
	PulseDepth: 0.1,
}

// Apply implements [Rule].
func (r TopperRule) Apply(e *layout.Entity, b *Body, t Tick) {
	b.Position = Approach(b.Position, Mix(e.Dispersed, e.Formed, t.Current), r.Follow)
	b.Spin = mgl64.Vec3{0, t.Elapsed * r.SpinRate, 0}
	b.Transform = Transform{
		Position: b.Position,
		Scale:    1 + math.Sin(t.Elapsed*r.PulseRate)*r.PulseDepth,
		Rotation: Euler(b.Spin),
	}
}

// =============================================================================
// Photos
// =============================================================================

// PhotoRule drives photo frames. Frames are large while dispersed and shrink
// onto the tree, the inverse of ornaments. While mostly dispersed they face
// the camera; otherwise they face outward from the trunk, rolled by the
// entity's tilt.
type PhotoRule struct {
	Follow         float64
	ScaleDispersed float64
	ScaleFormed    float64

	// FaceCameraBelow is the control value under which frames billboard.
	FaceCameraBelow float64
}

// DefaultPhotoRule matches the original display.
var DefaultPhotoRule = PhotoRule{
	Follow:          0.08,
	ScaleDispersed:  1.8,
	ScaleFormed:     0.66,
	FaceCameraBelow: 0.5,
}

// Apply implements [Rule].
func (r PhotoRule) Apply(e *layout.Entity, b *Body, t Tick) {
	target := Mix(e.Dispersed, e.Formed, t.Current)
	b.Position = Approach(b.Position, target, r.Follow)

	var rot mgl64.Quat
	if t.Current < r.FaceCameraBelow {
		rot = LookRotation(b.Position, t.Camera, up)
	} else {
		axis := mgl64.Vec3{0, target.Y(), 0}
		rot = LookRotation(b.Position, axis, up).
			Mul(mgl64.QuatRotate(math.Pi, up)).
			Mul(mgl64.QuatRotate(e.Tilt, mgl64.Vec3{0, 0, 1}))
	}

	b.Transform = Transform{
		Position: b.Position,
		Scale:    morph.Lerp(r.ScaleDispersed, r.ScaleFormed, t.Current),
		Rotation: rot,
	}
}
