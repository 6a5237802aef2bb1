package sink

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/morphtree/pkg/engine"
	"github.com/matzehuels/morphtree/pkg/layout"
)

// Scene framing defaults.
const (
	DefaultWidth      = 800
	DefaultHeight     = 800
	DefaultViewHeight = 26.0
	DefaultBackground = "#05070d"

	// RibbonColor is the halo strand colour.
	RibbonColor = "#FFE9A8"

	// minRadius keeps far particles visible.
	minRadius = 0.5
)

// View describes the output canvas.
type View struct {
	Width  int
	Height int

	// Units is the number of world units that span the canvas height.
	Units float64

	// Ribbon includes halo strands.
	Ribbon bool
}

// DefaultView returns the standard canvas.
func DefaultView() View {
	return View{Width: DefaultWidth, Height: DefaultHeight, Units: DefaultViewHeight, Ribbon: true}
}

func (v *View) setDefaults() {
	if v.Width <= 0 {
		v.Width = DefaultWidth
	}
	if v.Height <= 0 {
		v.Height = DefaultHeight
	}
	if v.Units <= 0 {
		v.Units = DefaultViewHeight
	}
}

// Dot is one projected entity in canvas pixels.
type Dot struct {
	X, Y    float64
	Radius  float64
	Depth   float64
	Color   string
	Opacity float64
	ID      int
	Cat     layout.Category
	Strand  bool
}

// Project maps the frame into canvas space, sorted far to near. Entities
// with zero scale are dropped.
func Project(s *layout.Set, f *engine.Frame, v View) []Dot {
	v.setDefaults()
	ppu := float64(v.Height) / v.Units
	cx, cy := float64(v.Width)/2, float64(v.Height)/2
	view := mgl64.Rotate3DY(-f.CameraYaw)

	place := func(world mgl64.Vec3) (x, y, depth float64) {
		p := view.Mul3x1(world)
		return cx + p.X()*ppu, cy - p.Y()*ppu, p.Z()
	}

	dots := make([]Dot, 0, len(f.Transforms)+len(f.Ribbon))
	for id, tr := range f.Transforms {
		if id >= len(s.Entities) || tr.Scale <= 0 {
			continue
		}
		e := s.Entities[id]
		x, y, z := place(f.World(tr.Position))
		dots = append(dots, Dot{
			X: x, Y: y, Depth: z,
			Radius:  math.Max(minRadius, e.Category.Size()*tr.Scale*ppu),
			Color:   e.Color,
			Opacity: 1,
			ID:      e.ID,
			Cat:     e.Category,
		})
	}

	if v.Ribbon {
		cfg := s.Options.Ribbon
		for id, p := range f.Ribbon {
			if id >= len(s.Strands) {
				break
			}
			st := s.Strands[id]
			alpha := layout.RibbonFade(layout.RibbonProgress(st, f.Elapsed, cfg))
			if alpha <= 0 {
				continue
			}
			x, y, z := place(f.World(p))
			dots = append(dots, Dot{
				X: x, Y: y, Depth: z,
				Radius:  math.Max(minRadius, st.Size*ppu),
				Color:   RibbonColor,
				Opacity: alpha,
				ID:      st.ID,
				Strand:  true,
			})
		}
	}

	sort.SliceStable(dots, func(i, j int) bool { return dots[i].Depth < dots[j].Depth })
	return dots
}
