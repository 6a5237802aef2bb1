package sink

import (
	"encoding/json"

	"github.com/matzehuels/morphtree/pkg/blend"
	"github.com/matzehuels/morphtree/pkg/engine"
	"github.com/matzehuels/morphtree/pkg/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	transforms bool
	ribbon     bool
	compact    bool
}

// WithJSONTransforms includes per-entity transforms. Without it only the
// morph state and per-category counts are written.
func WithJSONTransforms() JSONOption { return func(r *jsonRenderer) { r.transforms = true } }

// WithJSONRibbon includes halo strand positions.
func WithJSONRibbon() JSONOption { return func(r *jsonRenderer) { r.ribbon = true } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	Seq           uint64            `json:"seq"`
	Elapsed       float64           `json:"elapsed"`
	Current       float64           `json:"current"`
	Target        float64           `json:"target"`
	Active        bool              `json:"active"`
	Formed        bool              `json:"formed"`
	Status        string            `json:"status"`
	Seed          uint64            `json:"seed"`
	GroupRotation [3]float64        `json:"group_rotation"`
	Camera        [3]float64        `json:"camera"`
	Counts        map[string]int    `json:"counts"`
	Entities      []jsonEntity      `json:"entities,omitempty"`
	Ribbon        [][3]float64      `json:"ribbon,omitempty"`
	Ranges        map[string][2]int `json:"ranges"`
}

type jsonEntity struct {
	ID       int             `json:"id"`
	Category layout.Category `json:"category"`
	Position [3]float64      `json:"position"`
	Scale    float64         `json:"scale"`
	Rotation [4]float64      `json:"rotation"`
	Color    string          `json:"color"`
}

// RenderJSON exports the frame's state. It does not modify s or f and is
// safe to call concurrently.
func RenderJSON(s *layout.Set, f *engine.Frame, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Seq:           f.Seq,
		Elapsed:       f.Elapsed,
		Current:       f.Current,
		Target:        f.Target,
		Active:        f.Active,
		Formed:        f.Formed,
		Status:        f.Status,
		Seed:          s.Seed,
		GroupRotation: f.GroupRotation,
		Camera:        f.Camera,
		Counts:        make(map[string]int, len(layout.Categories)),
		Ranges:        make(map[string][2]int, len(s.Ranges)),
	}
	for _, c := range layout.Categories {
		out.Counts[c.String()] = s.Count(c)
	}
	for c, rg := range s.Ranges {
		out.Ranges[c.String()] = [2]int{rg.Start, rg.End}
	}
	if r.transforms {
		out.Entities = buildJSONEntities(s, f.Transforms)
	}
	if r.ribbon {
		out.Ribbon = make([][3]float64, len(f.Ribbon))
		for i, p := range f.Ribbon {
			out.Ribbon[i] = p
		}
	}

	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}

func buildJSONEntities(s *layout.Set, ts []blend.Transform) []jsonEntity {
	out := make([]jsonEntity, 0, len(ts))
	for id, tr := range ts {
		if id >= len(s.Entities) {
			break
		}
		e := s.Entities[id]
		q := tr.Rotation
		out = append(out, jsonEntity{
			ID:       e.ID,
			Category: e.Category,
			Position: tr.Position,
			Scale:    tr.Scale,
			Rotation: [4]float64{q.W, q.V.X(), q.V.Y(), q.V.Z()},
			Color:    e.Color,
		})
	}
	return out
}
