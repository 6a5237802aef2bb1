package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNullCacheStoresNothing(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	key := NewDefaultKeyer().LayoutKey(LayoutKeyOpts{Seed: 42, Foliage: 100})
	if err := c.Set(ctx, key, []byte(`{"seed":42}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q %v %v, want a clean miss", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestHashFeedsArtifactKeys(t *testing.T) {
	k := NewDefaultKeyer()
	a := Hash([]byte(k.LayoutKey(LayoutKeyOpts{Seed: 1, Foliage: 500})))
	b := Hash([]byte(k.LayoutKey(LayoutKeyOpts{Seed: 1, Foliage: 501})))

	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64", len(a))
	}
	if a == b {
		t.Error("layouts with different foliage share a hash")
	}
	opts := ArtifactKeyOpts{Format: "png", Width: 640, Height: 480, Current: 1}
	if k.ArtifactKey(a, opts) == k.ArtifactKey(b, opts) {
		t.Error("artifact keys should follow the layout hash")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	lk1 := k.LayoutKey(LayoutKeyOpts{Seed: 42, Foliage: 25000, Ornaments: 820})
	lk2 := k.LayoutKey(LayoutKeyOpts{Seed: 43, Foliage: 25000, Ornaments: 820})
	if lk1 == lk2 {
		t.Error("Different seeds should produce different layout keys")
	}
	if lk1 != k.LayoutKey(LayoutKeyOpts{Seed: 42, Foliage: 25000, Ornaments: 820}) {
		t.Error("LayoutKey should be deterministic")
	}
	if !strings.HasPrefix(lk1, "layout:v1:") {
		t.Errorf("LayoutKey unexpected prefix: %s", lk1)
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", Width: 800})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png", Width: 800})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
	if ak1 == k.ArtifactKey("hash456", ArtifactKeyOpts{Format: "svg", Width: 800}) {
		t.Error("Different layout hashes should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "profile:demo:")

	opts := LayoutKeyOpts{Seed: 1}
	if got, want := scoped.LayoutKey(opts), "profile:demo:"+inner.LayoutKey(opts); got != want {
		t.Errorf("ScopedKeyer LayoutKey = %s, want %s", got, want)
	}
	ak := scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "webp"})
	if !strings.HasPrefix(ak, "profile:demo:artifact:") {
		t.Errorf("ScopedKeyer ArtifactKey should be prefixed: %s", ak)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.LayoutKey(LayoutKeyOpts{})
	if want := "prefix:" + NewDefaultKeyer().LayoutKey(LayoutKeyOpts{}); key != want {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	type payload struct {
		Seed  uint64    `json:"seed"`
		Point []float64 `json:"point"`
	}
	in := payload{Seed: 9, Point: []float64{1, 2.5, -3}}
	if err := SetJSON(ctx, c, "k", in, 0); err != nil {
		t.Fatal(err)
	}
	var out payload
	hit, err := GetJSON(ctx, c, "k", &out)
	if err != nil || !hit {
		t.Fatalf("GetJSON hit=%v err=%v", hit, err)
	}
	if out.Seed != 9 || len(out.Point) != 3 || out.Point[1] != 2.5 {
		t.Errorf("GetJSON = %+v", out)
	}

	// Corrupt payloads are dropped.
	if err := c.Set(ctx, "bad", []byte("{not json"), 0); err != nil {
		t.Fatal(err)
	}
	hit, err = GetJSON(ctx, c, "bad", &out)
	if hit || err != nil {
		t.Errorf("corrupt entry hit=%v err=%v, want miss", hit, err)
	}
	if _, ok, _ := c.Get(ctx, "bad"); ok {
		t.Error("corrupt entry should have been deleted")
	}
}
