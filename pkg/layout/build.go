package layout

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/matzehuels/morphtree/pkg/errors"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	DefaultSeed      uint64 = 42
	DefaultFoliage          = 25000
	DefaultOrnaments        = 820
	DefaultPhotos           = 12
	DefaultStrands          = 3000

	// MaxEntities bounds every individual count.
	MaxEntities = 200_000
)

// Palette is the ornament colour set.
var Palette = []string{"#FFD700", "#C0C0C0", "#D4AF37", "#8B0000", "#FFFFFF", "#B8860B"}

// Foliage colours at the base and apex of the tree.
var (
	FoliageBottom = mgl64.Vec3{0x02, 0x26, 0x0a}
	FoliageTop    = mgl64.Vec3{0x4a, 0x8b, 0x5c}
)

const (
	TopperColor = "#FFD700"
	PhotoColor  = "#F8F8F8"
)

// Ornament shape mix: draws below SphereShare are spheres, below BoxShare
// boxes, the rest gems.
const (
	SphereShare = 0.65
	BoxShare    = 0.85
)

// =============================================================================
// Types
// =============================================================================

// Entity is one placed visual entity. Entities are immutable once built.
type Entity struct {
	// ID is unique across the whole Set.
	ID int `json:"id"`

	// Index is the position inside the entity's generator; it drives
	// per-entity lag and phase.
	Index int `json:"index"`

	Category  Category   `json:"category"`
	Formed    mgl64.Vec3 `json:"formed"`
	Dispersed mgl64.Vec3 `json:"dispersed"`
	Color     string     `json:"color"`

	// Tilt is the roll applied to photo frames in the formed state.
	Tilt float64 `json:"tilt,omitempty"`

	// Random is a per-entity value in [0,1) available to renderers.
	Random float64 `json:"random"`
}

// Range is the half-open ID interval [Start, End) of one category.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of IDs in the range.
func (r Range) Len() int { return r.End - r.Start }

// Contains reports whether id lies in the range.
func (r Range) Contains(id int) bool { return id >= r.Start && id < r.End }

// Options controls how many entities of each kind are built.
// Counts are taken literally; use [DefaultOptions] for the original display.
type Options struct {
	// Seed selects the layout. Zero selects DefaultSeed.
	Seed uint64 `json:"seed"`

	Foliage   int  `json:"foliage"`
	Ornaments int  `json:"ornaments"`
	Photos    int  `json:"photos"`
	Strands   int  `json:"strands"`
	Topper    bool `json:"topper"`

	// Ribbon shapes the halo. The zero value selects DefaultRibbon.
	Ribbon Ribbon `json:"ribbon"`
}

// DefaultOptions returns the counts of the original display.
func DefaultOptions() Options {
	return Options{
		Seed:      DefaultSeed,
		Foliage:   DefaultFoliage,
		Ornaments: DefaultOrnaments,
		Photos:    DefaultPhotos,
		Strands:   DefaultStrands,
		Topper:    true,
		Ribbon:    DefaultRibbon,
	}
}

// SetDefaults fills the seed and ribbon when unset. Counts are left alone.
func (o *Options) SetDefaults() {
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Ribbon == (Ribbon{}) {
		o.Ribbon = DefaultRibbon
	}
}

// Validate checks every count against [0, MaxEntities].
func (o Options) Validate() error {
	checks := []struct {
		what string
		n    int
	}{
		{"foliage", o.Foliage},
		{"ornaments", o.Ornaments},
		{"photos", o.Photos},
		{"strands", o.Strands},
	}
	for _, c := range checks {
		if err := errors.ValidateCount(c.what, c.n, MaxEntities); err != nil {
			return err
		}
	}
	return nil
}

// Set is a built layout.
type Set struct {
	Seed     uint64             `json:"seed"`
	Options  Options            `json:"options"`
	Entities []Entity           `json:"entities"`
	Ranges   map[Category]Range `json:"ranges"`
	Strands  []Strand           `json:"strands"`
}

// Len returns the number of placed entities, excluding ribbon strands.
func (s *Set) Len() int { return len(s.Entities) }

// Of returns the entities of category c as a subslice of s.Entities.
func (s *Set) Of(c Category) []Entity {
	r, ok := s.Ranges[c]
	if !ok {
		return nil
	}
	return s.Entities[r.Start:r.End]
}

// Count returns the number of entities of category c.
func (s *Set) Count(c Category) int {
	return s.Ranges[c].Len()
}

// Photo returns the i-th photo frame, if present.
func (s *Set) Photo(i int) (Entity, bool) {
	photos := s.Of(Photo)
	if i < 0 || i >= len(photos) {
		return Entity{}, false
	}
	return photos[i], true
}

// =============================================================================
// Build
// =============================================================================

// Build constructs a layout. The result depends only on opts.
func Build(opts Options) (*Set, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	total := opts.Foliage + opts.Ornaments + opts.Photos
	if opts.Topper {
		total++
	}
	s := &Set{
		Seed:     opts.Seed,
		Options:  opts,
		Entities: make([]Entity, 0, total),
		Ranges:   make(map[Category]Range, len(Categories)),
	}

	s.appendFoliage(opts.Foliage, stream(opts.Seed, Particle))
	s.appendOrnaments(opts.Ornaments, stream(opts.Seed, Sphere))
	if opts.Topper {
		s.appendTopper()
	} else {
		s.mark(Topper, len(s.Entities))
	}
	s.appendPhotos(opts.Photos, stream(opts.Seed, Photo))

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0xdeadbeef^strandStream))
	s.Strands = make([]Strand, opts.Strands)
	for i := range s.Strands {
		s.Strands[i] = newStrand(i, rng)
	}
	return s, nil
}

// strandStream keys the halo strand stream apart from every category.
const strandStream = 0x5bd1e995

// stream returns the PCG stream dedicated to category c under seed.
func stream(seed uint64, c Category) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef^c.streamKey()))
}

func (s *Set) mark(c Category, start int) {
	s.Ranges[c] = Range{Start: start, End: len(s.Entities)}
}

func (s *Set) appendFoliage(n int, rng *rand.Rand) {
	start := len(s.Entities)
	for i := 0; i < n; i++ {
		formed, dispersed := ConeVolume(rng, FoliageCone, FoliageChaos)
		random := rng.Float64()
		s.Entities = append(s.Entities, Entity{
			ID:        len(s.Entities),
			Index:     i,
			Category:  Particle,
			Formed:    formed,
			Dispersed: dispersed,
			Color:     foliageColor(formed.Y()),
			Random:    random,
		})
	}
	s.mark(Particle, start)
}

// appendOrnaments places n ornaments on the phyllotaxis spiral and groups
// them by shape so every shape occupies a contiguous ID range. Index keeps
// the spiral position.
func (s *Set) appendOrnaments(n int, rng *rand.Rand) {
	var byShape [3][]Entity
	for i := 0; i < n; i++ {
		formed := Phyllotaxis(i, n, rng, OrnamentCone, OrnamentBand)
		e := Entity{
			Index:     i,
			Formed:    formed,
			Dispersed: OrnamentChaos.Sample(rng),
			Color:     Palette[rng.IntN(len(Palette))],
		}
		switch draw := rng.Float64(); {
		case draw < SphereShare:
			e.Category = Sphere
		case draw < BoxShare:
			e.Category = Box
		default:
			e.Category = Gem
		}
		e.Random = rng.Float64()
		k := int(e.Category - Sphere)
		byShape[k] = append(byShape[k], e)
	}

	for k, group := range byShape {
		start := len(s.Entities)
		for _, e := range group {
			e.ID = len(s.Entities)
			s.Entities = append(s.Entities, e)
		}
		s.mark(Sphere+Category(k), start)
	}
}

func (s *Set) appendTopper() {
	start := len(s.Entities)
	s.Entities = append(s.Entities, Entity{
		ID:        start,
		Category:  Topper,
		Formed:    TopperFormed,
		Dispersed: TopperDispersed,
		Color:     TopperColor,
	})
	s.mark(Topper, start)
}

func (s *Set) appendPhotos(n int, rng *rand.Rand) {
	start := len(s.Entities)
	for i := 0; i < n; i++ {
		dispersed := PhotoChaos.Sample(rng)
		tilt := (rng.Float64()*2 - 1) * PhotoTiltMax
		s.Entities = append(s.Entities, Entity{
			ID:        len(s.Entities),
			Index:     i,
			Category:  Photo,
			Formed:    PhotoSpiral(i, n),
			Dispersed: dispersed,
			Color:     PhotoColor,
			Tilt:      tilt,
			Random:    rng.Float64(),
		})
	}
	s.mark(Photo, start)
}

// foliageColor blends from the base green to the apex green by height.
func foliageColor(y float64) string {
	t := (y - FoliageCone.Base()) / FoliageCone.Height
	t = math.Max(0, math.Min(1, t))
	c := FoliageBottom.Add(FoliageTop.Sub(FoliageBottom).Mul(t))
	return fmt.Sprintf("#%02X%02X%02X", uint8(math.Round(c[0])), uint8(math.Round(c[1])), uint8(math.Round(c[2])))
}

// FreshSeed returns a non-reproducible seed. It is the only impure source
// of randomness in this package; Build never calls it.
func FreshSeed() uint64 {
	id := uuid.New()
	seed := binary.LittleEndian.Uint64(id[:8]) ^ binary.LittleEndian.Uint64(id[8:])
	seed ^= uint64(time.Now().UnixNano())
	if seed == 0 {
		return DefaultSeed
	}
	return seed
}
