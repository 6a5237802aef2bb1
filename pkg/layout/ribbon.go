package layout

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// Strand is one particle of the halo ribbon.
type Strand struct {
	ID     int     `json:"id"`
	Offset float64 `json:"offset"`
	Speed  float64 `json:"speed"`
	Size   float64 `json:"size"`
}

// Ribbon describes the halo spiral that winds up around the tree.
type Ribbon struct {
	// BaseY and Height bound the spiral vertically.
	BaseY  float64 `json:"base_y"`
	Height float64 `json:"height"`

	// Radius is max((TaperY-y)*TaperSlope, MinRadius).
	TaperY     float64 `json:"taper_y"`
	TaperSlope float64 `json:"taper_slope"`
	MinRadius  float64 `json:"min_radius"`

	// Turns is the number of full revolutions from base to top.
	Turns float64 `json:"turns"`

	// Rate scales strand speed into spiral progress per second.
	Rate float64 `json:"rate"`

	// Spread and Lift are the amplitudes of the horizontal and vertical
	// wobble that thicken the ribbon.
	Spread float64 `json:"spread"`
	Lift   float64 `json:"lift"`

	// Explode multiplies ribbon positions in the dispersed state.
	Explode float64 `json:"explode"`
}

// DefaultRibbon is the halo of the original display.
var DefaultRibbon = Ribbon{
	BaseY:      -4,
	Height:     10,
	TaperY:     6,
	TaperSlope: 0.6,
	MinRadius:  0.1,
	Turns:      6,
	Rate:       0.1,
	Spread:     0.15,
	Lift:       0.1,
	Explode:    2.5,
}

// MaxRadius is the largest radius the ribbon reaches, at its base.
func (r Ribbon) MaxRadius() float64 {
	return math.Max((r.TaperY-r.BaseY)*r.TaperSlope, r.MinRadius)
}

func newStrand(id int, rng *rand.Rand) Strand {
	return Strand{
		ID:     id,
		Offset: rng.Float64(),
		Size:   rng.Float64()*0.4 + 0.1,
		Speed:  0.5 + rng.Float64()*0.5,
	}
}

// RibbonPoint returns the formed position of strand at elapsed seconds.
// Progress t = (offset + elapsed*speed*rate) mod 1 climbs the spiral and
// wraps back to the base.
func RibbonPoint(s Strand, elapsed float64, r Ribbon) mgl64.Vec3 {
	t := RibbonProgress(s, elapsed, r)
	h := r.BaseY + t*r.Height
	radius := math.Max((r.TaperY-h)*r.TaperSlope, r.MinRadius)
	angle := t * r.Turns * 2 * math.Pi

	return mgl64.Vec3{
		math.Cos(angle)*radius + math.Sin(t*20+s.Offset*100)*r.Spread,
		h + math.Sin(s.Offset*50)*r.Lift,
		math.Sin(angle)*radius + math.Cos(t*30)*r.Spread,
	}
}

// RibbonProgress returns how far up the spiral strand s is at elapsed
// seconds, in [0,1).
func RibbonProgress(s Strand, elapsed float64, r Ribbon) float64 {
	t := math.Mod(s.Offset+elapsed*s.Speed*r.Rate, 1)
	if t < 0 {
		t++
	}
	return t
}

// RibbonFade is the strand opacity at progress t: strands fade in over the
// first tenth of the spiral and out over the last.
func RibbonFade(t float64) float64 {
	return smoothstep(0, 0.1, t) * (1 - smoothstep(0.9, 1, t)) * 0.8
}

func smoothstep(e0, e1, x float64) float64 {
	t := math.Max(0, math.Min(1, (x-e0)/(e1-e0)))
	return t * t * (3 - 2*t)
}
