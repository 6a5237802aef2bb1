package layout

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/morphtree/pkg/errors"
)

func smallOptions() Options {
	return Options{
		Seed:      7,
		Foliage:   500,
		Ornaments: 120,
		Photos:    5,
		Strands:   50,
		Topper:    true,
	}
}

func TestBuildCounts(t *testing.T) {
	s, err := Build(smallOptions())
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Count(Particle); got != 500 {
		t.Errorf("particles = %d, want 500", got)
	}
	if got := s.Count(Sphere) + s.Count(Box) + s.Count(Gem); got != 120 {
		t.Errorf("ornaments = %d, want 120", got)
	}
	if got := s.Count(Topper); got != 1 {
		t.Errorf("toppers = %d, want 1", got)
	}
	if got := s.Count(Photo); got != 5 {
		t.Errorf("photos = %d, want 5", got)
	}
	if len(s.Strands) != 50 {
		t.Errorf("strands = %d, want 50", len(s.Strands))
	}
	if s.Len() != 500+120+1+5 {
		t.Errorf("Len = %d", s.Len())
	}
}

func TestBuildIDsAndRanges(t *testing.T) {
	s, err := Build(smallOptions())
	if err != nil {
		t.Fatal(err)
	}
	for i, e := range s.Entities {
		if e.ID != i {
			t.Fatalf("entity %d has ID %d", i, e.ID)
		}
		if !s.Ranges[e.Category].Contains(e.ID) {
			t.Errorf("entity %d (%s) outside its range %+v", e.ID, e.Category, s.Ranges[e.Category])
		}
	}

	// Ranges tile the ID space without overlap.
	next := 0
	for _, c := range Categories {
		r := s.Ranges[c]
		if r.Start != next {
			t.Errorf("%s range starts at %d, want %d", c, r.Start, next)
		}
		next = r.End
	}
	if next != s.Len() {
		t.Errorf("ranges end at %d, want %d", next, s.Len())
	}
}

func TestBuildDeterministic(t *testing.T) {
	a, _ := Build(smallOptions())
	b, _ := Build(smallOptions())
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if string(ja) != string(jb) {
		t.Error("same seed and counts produced different layouts")
	}

	opts := smallOptions()
	opts.Seed = 8
	c, _ := Build(opts)
	if c.Entities[0].Formed == a.Entities[0].Formed {
		t.Error("different seeds produced the same first particle")
	}
}

func TestBuildStreamIsolation(t *testing.T) {
	base, _ := Build(smallOptions())

	opts := smallOptions()
	opts.Foliage = 900
	opts.Strands = 10
	more, _ := Build(opts)

	a, b := base.Of(Photo), more.Of(Photo)
	for i := range a {
		if a[i].Formed != b[i].Formed || a[i].Dispersed != b[i].Dispersed || a[i].Tilt != b[i].Tilt {
			t.Errorf("photo %d changed when foliage count changed", i)
		}
	}
	for _, c := range []Category{Sphere, Box, Gem} {
		x, y := base.Of(c), more.Of(c)
		if len(x) != len(y) {
			t.Fatalf("%s count changed: %d vs %d", c, len(x), len(y))
		}
		for i := range x {
			if x[i].Formed != y[i].Formed || x[i].Color != y[i].Color {
				t.Errorf("%s %d changed when foliage count changed", c, i)
			}
		}
	}
	if base.Strands[3] != more.Strands[3] {
		t.Error("strand changed when foliage count changed")
	}
}

func TestBuildZeroSeedUsesDefault(t *testing.T) {
	opts := smallOptions()
	opts.Seed = 0
	s, _ := Build(opts)
	if s.Seed != DefaultSeed {
		t.Errorf("Seed = %d, want %d", s.Seed, DefaultSeed)
	}
}

func TestBuildValidation(t *testing.T) {
	tests := []Options{
		{Foliage: -1},
		{Ornaments: MaxEntities + 1},
		{Photos: -3},
		{Strands: MaxEntities + 1},
	}
	for _, opts := range tests {
		_, err := Build(opts)
		if !errors.Is(err, errors.ErrCodeInvalidCount) {
			t.Errorf("Build(%+v) err = %v, want INVALID_COUNT", opts, err)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	s, err := Build(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 || len(s.Strands) != 0 {
		t.Errorf("empty options built %d entities", s.Len())
	}
	if s.Of(Topper) == nil || len(s.Of(Topper)) != 0 {
		t.Errorf("topper slice = %v, want empty", s.Of(Topper))
	}
}

func TestFoliageInsideCone(t *testing.T) {
	s, _ := Build(smallOptions())
	for _, e := range s.Of(Particle) {
		if !FoliageCone.Contains(e.Formed, 1e-9) {
			t.Fatalf("particle %d formed %v outside foliage cone", e.ID, e.Formed)
		}
		if !FoliageChaos.Contains(e.Dispersed) {
			t.Fatalf("particle %d dispersed %v outside chaos box", e.ID, e.Dispersed)
		}
	}
}

func TestOrnamentsOnBand(t *testing.T) {
	s, _ := Build(smallOptions())
	for _, c := range []Category{Sphere, Box, Gem} {
		for _, e := range s.Of(c) {
			y := e.Formed.Y()
			r := math.Hypot(e.Formed.X(), e.Formed.Z())
			lo := OrnamentCone.RadiusAt(y) * OrnamentBand.Min
			hi := OrnamentCone.RadiusAt(y) * OrnamentBand.Max
			if r < lo-1e-9 || r > hi+1e-9 {
				t.Errorf("%s %d radius %v outside band [%v, %v]", c, e.Index, r, lo, hi)
			}
			if !OrnamentChaos.Contains(e.Dispersed) {
				t.Errorf("%s %d dispersed outside chaos box", c, e.Index)
			}
		}
	}
}

func TestOrnamentShapeMix(t *testing.T) {
	opts := DefaultOptions()
	opts.Foliage, opts.Strands = 0, 0
	s, err := Build(opts)
	if err != nil {
		t.Fatal(err)
	}
	n := float64(opts.Ornaments)
	share := func(c Category) float64 { return float64(s.Count(c)) / n }
	if v := share(Sphere); v < 0.55 || v > 0.75 {
		t.Errorf("sphere share = %.2f, want about 0.65", v)
	}
	if v := share(Box); v < 0.12 || v > 0.28 {
		t.Errorf("box share = %.2f, want about 0.20", v)
	}
	if v := share(Gem); v < 0.08 || v > 0.22 {
		t.Errorf("gem share = %.2f, want about 0.15", v)
	}
	for _, e := range s.Entities {
		if e.Category.Ornament() && !inPalette(e.Color) {
			t.Errorf("ornament %d colour %q not in palette", e.ID, e.Color)
		}
	}
}

func inPalette(c string) bool {
	for _, p := range Palette {
		if p == c {
			return true
		}
	}
	return false
}

func TestPhotos(t *testing.T) {
	s, _ := Build(smallOptions())
	for _, e := range s.Of(Photo) {
		if math.Abs(e.Tilt) > PhotoTiltMax {
			t.Errorf("photo %d tilt %v exceeds %v", e.Index, e.Tilt, PhotoTiltMax)
		}
		if !PhotoChaos.Contains(e.Dispersed) {
			t.Errorf("photo %d dispersed outside box", e.Index)
		}
	}
	if _, ok := s.Photo(5); ok {
		t.Error("Photo(5) should be out of range")
	}
	p, ok := s.Photo(0)
	if !ok || p.Formed.Y() != PhotoBaseY {
		t.Errorf("Photo(0) = %+v, want y=%v", p, PhotoBaseY)
	}
}

func TestTopper(t *testing.T) {
	s, _ := Build(smallOptions())
	top := s.Of(Topper)
	if len(top) != 1 {
		t.Fatalf("toppers = %d", len(top))
	}
	if top[0].Formed != TopperFormed || top[0].Dispersed != TopperDispersed {
		t.Errorf("topper = %+v", top[0])
	}
}

func TestFoliageColor(t *testing.T) {
	if got := foliageColor(FoliageCone.Base()); got != "#02260A" {
		t.Errorf("base colour = %s", got)
	}
	if got := foliageColor(FoliageCone.ApexY); got != "#4A8B5C" {
		t.Errorf("apex colour = %s", got)
	}
}

func TestStrandRanges(t *testing.T) {
	s, _ := Build(smallOptions())
	for _, st := range s.Strands {
		if st.Offset < 0 || st.Offset >= 1 {
			t.Errorf("strand %d offset %v", st.ID, st.Offset)
		}
		if st.Size < 0.1 || st.Size >= 0.5 {
			t.Errorf("strand %d size %v", st.ID, st.Size)
		}
		if st.Speed < 0.5 || st.Speed >= 1 {
			t.Errorf("strand %d speed %v", st.ID, st.Speed)
		}
	}
}

func TestSetJSONRoundTrip(t *testing.T) {
	s, _ := Build(smallOptions())
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var got Set
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Ranges[Gem] != s.Ranges[Gem] || got.Entities[3].Category != s.Entities[3].Category {
		t.Error("ranges or categories lost in JSON round trip")
	}
}

func TestFreshSeed(t *testing.T) {
	a, b := FreshSeed(), FreshSeed()
	if a == 0 || b == 0 {
		t.Error("FreshSeed returned zero")
	}
	if a == b {
		t.Error("two fresh seeds collided")
	}
}

func TestConeVolumeUsesStream(t *testing.T) {
	r1 := rand.New(rand.NewPCG(1, 2))
	r2 := rand.New(rand.NewPCG(1, 2))
	f1, d1 := ConeVolume(r1, FoliageCone, FoliageChaos)
	f2, d2 := ConeVolume(r2, FoliageCone, FoliageChaos)
	if f1 != f2 || d1 != d2 {
		t.Error("ConeVolume not a pure function of its stream")
	}
}
