package engine

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/morphtree/pkg/cache"
	"github.com/matzehuels/morphtree/pkg/layout"
	"github.com/matzehuels/morphtree/pkg/observability"
)

// LayoutLoader builds layouts through a cache. Layouts are pure functions
// of their options, so a cached layout is always equivalent to a rebuild.
type LayoutLoader struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Logger *log.Logger
}

// LayoutKeyOpts converts layout options into cache key options.
func LayoutKeyOpts(opts layout.Options) cache.LayoutKeyOpts {
	opts.SetDefaults()
	return cache.LayoutKeyOpts{
		Seed:      opts.Seed,
		Foliage:   opts.Foliage,
		Ornaments: opts.Ornaments,
		Photos:    opts.Photos,
		Strands:   opts.Strands,
		Topper:    opts.Topper,
	}
}

// Load returns the layout for opts, from cache when possible. cached
// reports whether the layout came from the cache. Cache failures are
// logged and fall back to building.
func (l *LayoutLoader) Load(ctx context.Context, opts layout.Options) (set *layout.Set, cached bool, err error) {
	c, keyer := l.Cache, l.Keyer
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	key := keyer.LayoutKey(LayoutKeyOpts(opts))

	var hit layout.Set
	ok, err := cache.GetJSON(ctx, c, key, &hit)
	if err != nil {
		l.warn("layout cache read failed", "error", err)
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, "layout")
		return &hit, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	start := time.Now()
	set, err = layout.Build(opts)
	if err != nil {
		return nil, false, err
	}
	observability.Engine().OnLayoutBuilt(ctx, set.Len(), len(set.Strands), set.Seed, time.Since(start))

	if err := cache.SetJSON(ctx, c, key, set, l.TTL); err != nil {
		l.warn("layout cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "layout", set.Len())
	}
	return set, false, nil
}

func (l *LayoutLoader) warn(msg string, kv ...any) {
	if l.Logger != nil {
		l.Logger.Warn(msg, kv...)
	}
}
