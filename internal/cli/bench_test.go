package cli

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/morphtree/pkg/config"
)

func TestBenchHooks(t *testing.T) {
	h := &benchHooks{}
	if h.meanTick() != 0 {
		t.Error("meanTick without ticks should be zero")
	}

	ctx := context.Background()
	h.OnTick(ctx, 1, 0, 2*time.Millisecond)
	h.OnTick(ctx, 2, 0, 4*time.Millisecond)
	h.OnClassify(ctx, true, 1)
	h.OnCacheHit(ctx, "layout")
	h.OnCacheMiss(ctx, "layout")
	h.OnCacheMiss(ctx, "layout")

	if got := h.meanTick(); got != 3*time.Millisecond {
		t.Errorf("meanTick = %v, want 3ms", got)
	}
	if h.classify.Load() != 1 || h.hits.Load() != 1 || h.misses.Load() != 2 {
		t.Errorf("counters = %d/%d/%d", h.classify.Load(), h.hits.Load(), h.misses.Load())
	}
}

func TestBenchCommand(t *testing.T) {
	isolate(t)
	args := append([]string{"bench", "--ticks", "20"}, smallLayout...)
	if _, err := execute(t, args...); err != nil {
		t.Fatalf("bench: %v", err)
	}
}

func TestCacheLocation(t *testing.T) {
	tests := []struct {
		name string
		c    config.Cache
		want string
	}{
		{"file", config.Cache{Backend: "file", Dir: "/tmp/c"}, "/tmp/c"},
		{"redis", config.Cache{Backend: "redis", Prefix: "morphtree:"}, "redis morphtree:*"},
		{"none", config.Cache{Backend: "none", Dir: "/tmp/c"}, "disabled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cacheLocation(config.Config{Cache: tt.c}); got != tt.want {
				t.Errorf("cacheLocation = %q, want %q", got, tt.want)
			}
		})
	}
}
