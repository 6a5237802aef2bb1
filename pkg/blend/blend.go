package blend

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/morphtree/pkg/morph"
)

// SnapEpsilon is the distance under which [Approach] lands exactly on its
// target.
const SnapEpsilon = 1e-9

// Lag defaults: the delay grows by LagStep per index and repeats every
// LagPeriod entities.
const (
	LagStep   = 0.001
	LagPeriod = 100
)

// Transform is the rendered pose of one entity.
type Transform struct {
	Position mgl64.Vec3 `json:"position"`
	Scale    float64    `json:"scale"`
	Rotation mgl64.Quat `json:"rotation"`
}

// Identity is the transform at the origin with unit scale and no rotation.
var Identity = Transform{Scale: 1, Rotation: mgl64.QuatIdent()}

// Tick is the per-frame input shared by every rule.
type Tick struct {
	// Current is the smoothed control value for this frame.
	Current float64

	// Elapsed is the frame time in seconds since the engine started.
	Elapsed float64

	// Camera is the world-space camera position used by billboarded
	// entities.
	Camera mgl64.Vec3
}

// Body is the mutable rendered state of one entity across frames.
type Body struct {
	// Position is the smoothed position; it chases the blend target.
	Position mgl64.Vec3

	// Spin holds accumulated Euler angles (x, y, z) in radians.
	Spin mgl64.Vec3

	// Transform is the pose produced by the last Apply.
	Transform Transform
}

// Approach moves from toward to by rate, landing exactly on to once the
// remaining distance drops under [SnapEpsilon]. A held target is therefore
// reached as a fixed point rather than approached forever.
func Approach(from, to mgl64.Vec3, rate float64) mgl64.Vec3 {
	rate = morph.Clamp01(rate)
	next := from.Add(to.Sub(from).Mul(rate))
	if next.Sub(to).Len() < SnapEpsilon {
		return to
	}
	return next
}

// Mix returns the blend target for one entity: exactly dispersed at c = 0
// and exactly formed at c = 1.
func Mix(dispersed, formed mgl64.Vec3, c float64) mgl64.Vec3 {
	return dispersed.Mul(1 - c).Add(formed.Mul(c))
}

// Lagged offsets current per entity so entities do not move in lockstep.
//
// The delay is step*(index mod period). Above the midpoint the entity trails
// behind (current - delay), below it runs ahead (current + delay). The offset
// is weighted by 1-|2c-1|, which vanishes at 0 and 1, so fully formed and
// fully dispersed states are preserved for every entity. The result is
// clamped into [0,1].
func Lagged(current float64, index int, step float64, period int) float64 {
	c := morph.Clamp01(current)
	if period <= 0 || index < 0 || step <= 0 {
		return c
	}
	delay := step * float64(index%period)
	weight := 1 - math.Abs(2*c-1)
	if c > 0.5 {
		delay = -delay
	}
	return morph.Clamp01(c + delay*weight)
}

// Euler converts accumulated XYZ Euler angles to a quaternion.
func Euler(v mgl64.Vec3) mgl64.Quat {
	return mgl64.AnglesToQuat(v.X(), v.Y(), v.Z(), mgl64.XYZ)
}

// LookRotation returns the rotation that points local +Z from eye toward
// target with +Y kept as close to up as possible. Degenerate inputs yield
// the identity.
func LookRotation(eye, target, up mgl64.Vec3) mgl64.Quat {
	forward := target.Sub(eye)
	if forward.Len() < SnapEpsilon {
		return mgl64.QuatIdent()
	}
	forward = forward.Normalize()

	right := up.Cross(forward)
	if right.Len() < SnapEpsilon {
		// Looking straight along up; pick any perpendicular.
		right = mgl64.Vec3{1, 0, 0}.Cross(forward)
		if right.Len() < SnapEpsilon {
			right = mgl64.Vec3{0, 0, 1}.Cross(forward)
		}
	}
	right = right.Normalize()
	newUp := forward.Cross(right)

	m := mgl64.Mat3FromCols(right, newUp, forward)
	return mgl64.Mat4ToQuat(m.Mat4()).Normalize()
}
