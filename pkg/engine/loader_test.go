package engine

import (
	"context"
	"testing"

	"github.com/matzehuels/morphtree/pkg/cache"
	"github.com/matzehuels/morphtree/pkg/layout"
)

func TestLayoutLoaderCaches(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	l := &LayoutLoader{Cache: fc}
	opts := layout.Options{Seed: 5, Foliage: 50, Ornaments: 20, Photos: 2, Strands: 10, Topper: true}

	first, cached, err := l.Load(ctx, opts)
	if err != nil || cached {
		t.Fatalf("first load cached=%v err=%v", cached, err)
	}
	second, cached, err := l.Load(ctx, opts)
	if err != nil || !cached {
		t.Fatalf("second load cached=%v err=%v", cached, err)
	}

	if first.Len() != second.Len() || first.Seed != second.Seed {
		t.Fatal("cached layout differs in size")
	}
	for i := range first.Entities {
		if first.Entities[i] != second.Entities[i] {
			t.Fatalf("entity %d differs after cache round trip", i)
		}
	}
	for _, c := range layout.Categories {
		if first.Ranges[c] != second.Ranges[c] {
			t.Errorf("%s range differs after cache round trip", c)
		}
	}

	opts.Seed = 6
	if _, cached, _ := l.Load(ctx, opts); cached {
		t.Error("different seed served from cache")
	}
}

func TestLayoutLoaderInvalid(t *testing.T) {
	l := &LayoutLoader{}
	if _, _, err := l.Load(context.Background(), layout.Options{Foliage: -1}); err == nil {
		t.Error("expected validation error")
	}
}
