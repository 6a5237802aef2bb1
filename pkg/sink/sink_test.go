package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/morphtree/pkg/blend"
	"github.com/matzehuels/morphtree/pkg/engine"
	"github.com/matzehuels/morphtree/pkg/errors"
	"github.com/matzehuels/morphtree/pkg/layout"
	"github.com/matzehuels/morphtree/pkg/morph"
)

func testFrame(t *testing.T) (*layout.Set, *engine.Frame) {
	t.Helper()
	set, err := layout.Build(layout.Options{Foliage: 50, Ornaments: 12, Photos: 2, Strands: 30, Topper: true})
	if err != nil {
		t.Fatal(err)
	}
	eng := engine.New(set, morph.NewState(morph.Options{}), engine.Options{})
	var f *engine.Frame
	for range 10 {
		f = eng.Tick(time.Second / 60)
	}
	return set, f
}

func TestRenderJSON(t *testing.T) {
	set, f := testFrame(t)

	data, err := RenderJSON(set, f)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.Seq != f.Seq {
		t.Errorf("Seq = %d, want %d", out.Seq, f.Seq)
	}
	if out.Counts["particle"] != 50 || out.Counts["photo"] != 2 || out.Counts["topper"] != 1 {
		t.Errorf("Counts = %v", out.Counts)
	}
	if len(out.Entities) != 0 || len(out.Ribbon) != 0 {
		t.Error("transforms and ribbon should be omitted by default")
	}
}

func TestRenderJSONWithOptions(t *testing.T) {
	set, f := testFrame(t)

	data, err := RenderJSON(set, f, WithJSONTransforms(), WithJSONRibbon(), WithJSONCompact())
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(data, []byte("\n  ")) {
		t.Error("compact output should not be indented")
	}
	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Entities) != set.Len() {
		t.Errorf("Entities = %d, want %d", len(out.Entities), set.Len())
	}
	if len(out.Ribbon) != len(set.Strands) {
		t.Errorf("Ribbon = %d, want %d", len(out.Ribbon), len(set.Strands))
	}
	if out.Entities[0].Category != layout.Particle {
		t.Errorf("first entity category = %v", out.Entities[0].Category)
	}
}

func TestRenderSVG(t *testing.T) {
	set, f := testFrame(t)

	svg := string(RenderSVG(set, f, WithSize(320, 240), WithStatus(), WithoutRibbon()))
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatalf("not an svg document: %.60q", svg)
	}
	if !strings.Contains(svg, `viewBox="0 0 320 240"`) {
		t.Error("viewBox does not match size")
	}
	if strings.Contains(svg, `class="strand"`) {
		t.Error("strands drawn despite WithoutRibbon")
	}
	if n := strings.Count(svg, "<circle"); n != set.Len() {
		t.Errorf("circles = %d, want %d", n, set.Len())
	}
	if !strings.Contains(svg, f.Status) {
		t.Error("status text missing")
	}
}

func TestRenderPNG(t *testing.T) {
	set, f := testFrame(t)

	data, err := RenderPNG(set, f, WithSize(64, 48))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("size = %dx%d, want 64x48", b.Dx(), b.Dy())
	}
}

func TestRenderWebP(t *testing.T) {
	set, f := testFrame(t)

	data, err := RenderWebP(set, f, WithSize(32, 32), WithSupersample(1))
	if err != nil {
		t.Fatalf("RenderWebP() error: %v", err)
	}
	if len(data) < 12 || string(data[:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		t.Errorf("missing RIFF/WEBP header: %q", data[:min(12, len(data))])
	}
}

func TestSupersampleCappedByArea(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want int
	}{
		{"default size keeps 2", nil, 2},
		{"2048 square keeps 2", []Option{WithSize(2048, 2048)}, 2},
		{"3000 square drops to 1", []Option{WithSize(3000, 3000)}, 1},
		{"4096 square drops to 1", []Option{WithSize(4096, 4096)}, 1},
		{"large factor reduced", []Option{WithSize(800, 600), WithSupersample(8)}, 5},
		{"zero factor means 1", []Option{WithSupersample(0)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRenderer(tt.opts...)
			if r.supersample != tt.want {
				t.Errorf("supersample = %d, want %d", r.supersample, tt.want)
			}
			if area := r.view.Width * r.view.Height * r.supersample * r.supersample; r.supersample > 1 && area > MaxRasterPixels {
				t.Errorf("painted area %d exceeds %d", area, MaxRasterPixels)
			}
		})
	}
}

func TestRasterBadBackground(t *testing.T) {
	set, f := testFrame(t)
	if _, err := Raster(set, f, WithBackground("navy")); err == nil {
		t.Error("expected error for non-hex background")
	}
}

func TestRenderDispatch(t *testing.T) {
	set, f := testFrame(t)
	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			data, err := Render(format, set, f, WithSize(16, 16))
			if err != nil {
				t.Fatalf("Render(%s) error: %v", format, err)
			}
			if len(data) == 0 {
				t.Error("empty output")
			}
			if ContentTypes[format] == "" {
				t.Error("no content type")
			}
		})
	}
	if _, err := Render("pdf", set, f); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(pdf) = %v, want INVALID_FORMAT", err)
	}
}

func TestProject(t *testing.T) {
	set := &layout.Set{
		Entities: []layout.Entity{
			{ID: 0, Category: layout.Sphere, Color: "#FFD700"},
			{ID: 1, Category: layout.Sphere, Color: "#C0C0C0"},
			{ID: 2, Category: layout.Sphere, Color: "#FFFFFF"},
		},
	}
	f := &engine.Frame{
		Transforms: []blend.Transform{
			{Position: mgl64.Vec3{0, 2, 0}, Scale: 1, Rotation: mgl64.QuatIdent()},
			{Position: mgl64.Vec3{1, 2, -5}, Scale: 1, Rotation: mgl64.QuatIdent()},
			{Position: mgl64.Vec3{0, 0, 0}, Scale: 0, Rotation: mgl64.QuatIdent()},
		},
	}
	v := View{Width: 100, Height: 100, Units: 10}
	dots := Project(set, f, v)

	if len(dots) != 2 {
		t.Fatalf("len(dots) = %d, want 2 (zero scale dropped)", len(dots))
	}
	if dots[0].ID != 1 {
		t.Errorf("far entity should be painted first, got %d", dots[0].ID)
	}
	// Entity 0 sits at world (0, 0, 0) after the group offset.
	near := dots[1]
	if near.X != 50 || near.Y != 50 {
		t.Errorf("origin projects to (%v, %v), want (50, 50)", near.X, near.Y)
	}
	want := layout.Sphere.Size() * 10
	if near.Radius != want {
		t.Errorf("radius = %v, want %v", near.Radius, want)
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"svg", false},
		{"png", false},
		{"webp", false},
		{"pdf", true},
		{"", true},
	}
	for _, tt := range tests {
		if err := ValidateFormat(tt.format); (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    [3]float64
		wantErr bool
	}{
		{"#FFFFFF", [3]float64{1, 1, 1}, false},
		{"#000000", [3]float64{0, 0, 0}, false},
		{"#F00", [3]float64{1, 0, 0}, false},
		{"00FF00", [3]float64{0, 1, 0}, false},
		{"#GGGGGG", [3]float64{}, true},
		{"#12345", [3]float64{}, true},
	}
	for _, tt := range tests {
		got, err := parseHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseHex(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWriter(t *testing.T) {
	set, _ := testFrame(t)
	dir := t.TempDir()
	w := &Writer{Dir: dir, Format: FormatSVG, Every: 2, Set: set, Opts: []Option{WithSize(16, 16)}}

	eng := engine.New(set, morph.NewState(morph.Options{}), engine.Options{})
	ctx := context.Background()
	for range 5 {
		if err := w.Consume(ctx, eng.Tick(time.Second/60)); err != nil {
			t.Fatal(err)
		}
	}
	if w.Written() != 2 {
		t.Errorf("Written() = %d, want 2", w.Written())
	}
	if _, err := os.Stat(filepath.Join(dir, "frame-000004.svg")); err != nil {
		t.Errorf("expected frame-000004.svg: %v", err)
	}
}
