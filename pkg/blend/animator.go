package blend

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/morphtree/pkg/layout"
	"github.com/matzehuels/morphtree/pkg/morph"
)

// Animator holds the bodies for one layout and the rule for each category.
// It is not safe for concurrent use; the frame tick owns it.
type Animator struct {
	set    *layout.Set
	bodies []Body
	out    []Transform
	rules  map[layout.Category]Rule
}

// DefaultRules returns the rule of every category.
func DefaultRules() map[layout.Category]Rule {
	return map[layout.Category]Rule{
		layout.Particle: ParticleRule{},
		layout.Sphere:   DefaultOrnamentRule,
		layout.Box:      DefaultOrnamentRule,
		layout.Gem:      DefaultOrnamentRule,
		layout.Topper:   DefaultTopperRule,
		layout.Photo:    DefaultPhotoRule,
	}
}

// NewAnimator creates bodies for every entity of set, placed at the mix of
// their positions for initial. Rules missing from rules fall back to
// [DefaultRules].
func NewAnimator(set *layout.Set, initial float64, rules map[layout.Category]Rule) *Animator {
	merged := DefaultRules()
	for c, r := range rules {
		if r != nil {
			merged[c] = r
		}
	}

	a := &Animator{
		set:    set,
		bodies: make([]Body, len(set.Entities)),
		out:    make([]Transform, len(set.Entities)),
		rules:  merged,
	}
	initial = morph.Clamp01(initial)
	for i := range set.Entities {
		e := &set.Entities[i]
		p := Mix(e.Dispersed, e.Formed, initial)
		a.bodies[i] = Body{
			Position:  p,
			Transform: Transform{Position: p, Scale: 1, Rotation: mgl64.QuatIdent()},
		}
	}
	return a
}

// Set returns the layout being animated.
func (a *Animator) Set() *layout.Set { return a.set }

// Len returns the number of entities.
func (a *Animator) Len() int { return len(a.bodies) }

// Body returns the body of entity id.
func (a *Animator) Body(id int) *Body { return &a.bodies[id] }

// Step applies one frame to every entity and returns their transforms in ID
// order. The returned slice is reused by the next Step; copy it to keep it.
func (a *Animator) Step(t Tick) []Transform {
	for _, c := range layout.Categories {
		r, ok := a.set.Ranges[c]
		if !ok || r.Len() == 0 {
			continue
		}
		rule := a.rules[c]
		for id := r.Start; id < r.End; id++ {
			b := &a.bodies[id]
			rule.Apply(&a.set.Entities[id], b, t)
			a.out[id] = b.Transform
		}
	}
	return a.out
}

// RibbonAnimator evaluates the halo ribbon. The ribbon keeps its own
// interaction value, which trails the shared control value at Follow.
type RibbonAnimator struct {
	strands     []layout.Strand
	ribbon      layout.Ribbon
	follow      float64
	interaction float64
	out         []mgl64.Vec3
}

// RibbonFollow is the rate at which the ribbon's interaction value trails
// the control value.
const RibbonFollow = 0.05

// NewRibbonAnimator creates an animator for set's strands starting at
// initial interaction.
func NewRibbonAnimator(set *layout.Set, initial float64) *RibbonAnimator {
	ribbon := set.Options.Ribbon
	if ribbon == (layout.Ribbon{}) {
		ribbon = layout.DefaultRibbon
	}
	return &RibbonAnimator{
		strands:     set.Strands,
		ribbon:      ribbon,
		follow:      RibbonFollow,
		interaction: morph.Clamp01(initial),
		out:         make([]mgl64.Vec3, len(set.Strands)),
	}
}

// Interaction returns the ribbon's own trailing control value.
func (r *RibbonAnimator) Interaction() float64 { return r.interaction }

// Ribbon returns the ribbon shape.
func (r *RibbonAnimator) Ribbon() layout.Ribbon { return r.ribbon }

// Len returns the number of strands.
func (r *RibbonAnimator) Len() int { return len(r.strands) }

// Step advances the interaction value and returns every strand position.
// Dispersed strands sit at their formed position scaled by Explode. The
// returned slice is reused by the next Step.
func (r *RibbonAnimator) Step(t Tick) []mgl64.Vec3 {
	r.interaction = morph.Smooth(r.interaction, t.Current, r.follow)
	if math.Abs(r.interaction-morph.Clamp01(t.Current)) < SnapEpsilon {
		r.interaction = morph.Clamp01(t.Current)
	}
	for i, s := range r.strands {
		p := layout.RibbonPoint(s, t.Elapsed, r.ribbon)
		r.out[i] = Mix(p.Mul(r.ribbon.Explode), p, r.interaction)
	}
	return r.out
}
