package layout

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// GoldenAngle is the phyllotaxis divergence angle, π(3−√5) radians.
var GoldenAngle = math.Pi * (3 - math.Sqrt(5))

// Cone is an upright cone with its apex at (0, ApexY, 0).
type Cone struct {
	ApexY  float64
	Height float64
	Slope  float64
}

// RadiusAt returns the cone radius at height y. It is negative above the
// apex; callers stay within [ApexY-Height, ApexY].
func (c Cone) RadiusAt(y float64) float64 {
	return (c.ApexY - y) * c.Slope
}

// Base returns the lowest y of the cone.
func (c Cone) Base() float64 {
	return c.ApexY - c.Height
}

// Contains reports whether p lies inside the cone, with tolerance eps.
func (c Cone) Contains(p mgl64.Vec3, eps float64) bool {
	if p.Y() < c.Base()-eps || p.Y() > c.ApexY+eps {
		return false
	}
	r := math.Hypot(p.X(), p.Z())
	return r <= c.RadiusAt(p.Y())+eps
}

// BoxExtent is an axis-aligned box centred on the origin with full extents
// X, Y, Z.
type BoxExtent struct {
	X, Y, Z float64
}

// Contains reports whether p lies inside the box.
func (b BoxExtent) Contains(p mgl64.Vec3) bool {
	return math.Abs(p.X()) <= b.X/2 && math.Abs(p.Y()) <= b.Y/2 && math.Abs(p.Z()) <= b.Z/2
}

// Sample draws a uniform point inside the box.
func (b BoxExtent) Sample(rng *rand.Rand) mgl64.Vec3 {
	return mgl64.Vec3{
		(rng.Float64() - 0.5) * b.X,
		(rng.Float64() - 0.5) * b.Y,
		(rng.Float64() - 0.5) * b.Z,
	}
}

// Band is the fraction of the cone radius an ornament may sit at.
type Band struct {
	Min, Max float64
}

// Shapes of the original display.
var (
	FoliageCone  = Cone{ApexY: 9, Height: 15, Slope: 0.4}
	OrnamentCone = Cone{ApexY: 9, Height: 15, Slope: 0.45}
	PhotoCone    = Cone{ApexY: 9, Height: 15, Slope: 0.6}

	FoliageChaos  = BoxExtent{X: 35, Y: 35, Z: 20}
	OrnamentChaos = BoxExtent{X: 30, Y: 30, Z: 20}
	PhotoChaos    = BoxExtent{X: 20, Y: 20, Z: 10}

	OrnamentBand = Band{Min: 0.75, Max: 1.0}

	TopperFormed    = mgl64.Vec3{0, 10.4, 0}
	TopperDispersed = mgl64.Vec3{0, 8, 0}
)

const (
	// PhotoBaseY and PhotoSpan bound the photo spiral: y runs from
	// PhotoBaseY up to PhotoBaseY+PhotoSpan.
	PhotoBaseY = -4.0
	PhotoSpan  = 11.0

	// PhotoTurn is the angle between consecutive photos in radians.
	PhotoTurn = 2.4

	// PhotoTiltMax bounds the per-photo roll in radians.
	PhotoTiltMax = 0.25
)

// ConeVolume draws a formed point uniformly by height, radius and angle
// inside cone, and a dispersed point uniformly inside box.
func ConeVolume(rng *rand.Rand, cone Cone, box BoxExtent) (formed, dispersed mgl64.Vec3) {
	y := cone.Base() + rng.Float64()*cone.Height
	r := rng.Float64() * cone.RadiusAt(y)
	theta := rng.Float64() * 2 * math.Pi
	formed = mgl64.Vec3{r * math.Cos(theta), y, r * math.Sin(theta)}
	dispersed = box.Sample(rng)
	return formed, dispersed
}

// Angle returns the phyllotaxis angle of the i-th point.
func Angle(i int) float64 {
	return float64(i) * GoldenAngle
}

// HeightFromApex returns how far below the apex the i-th of n points sits.
// Height grows with the square root of the index so that point density per
// unit of cone surface stays even.
func HeightFromApex(i, n int, height float64) float64 {
	if n <= 1 {
		return 0
	}
	t := float64(i) / float64(n-1)
	return math.Sqrt(t) * height
}

// Phyllotaxis places the i-th of n points on a golden-angle spiral over the
// cone surface, pushed into band of the local radius by one draw from rng.
func Phyllotaxis(i, n int, rng *rand.Rand, cone Cone, band Band) mgl64.Vec3 {
	y := cone.ApexY - HeightFromApex(i, n, cone.Height)
	r := cone.RadiusAt(y) * (band.Min + rng.Float64()*(band.Max-band.Min))
	theta := Angle(i)
	return mgl64.Vec3{r * math.Cos(theta), y, r * math.Sin(theta)}
}

// PhotoSpiral returns the formed position of the i-th of n photo frames.
func PhotoSpiral(i, n int) mgl64.Vec3 {
	y := PhotoBaseY + float64(i)/float64(max(1, n))*PhotoSpan
	r := PhotoCone.RadiusAt(y)
	theta := float64(i) * PhotoTurn
	return mgl64.Vec3{math.Cos(theta) * r, y, math.Sin(theta) * r}
}
