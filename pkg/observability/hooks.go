// Package observability lets callers observe the morph engine, the layout
// cache and the preview server without this module depending on a metrics
// backend.
//
// Each event category has a hook interface with a no-op default. The bench
// command installs counting hooks; everything else runs on the defaults.
//
//	observability.SetEngineHooks(counter)
//	defer observability.Reset()
//
// Emitters fetch the current hooks on every event:
//
//	observability.Engine().OnTick(ctx, f.Seq, f.Current, dur)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the morph engine.
type EngineHooks interface {
	// OnLayoutBuilt records construction of an entity layout.
	OnLayoutBuilt(ctx context.Context, entities, strands int, seed uint64, duration time.Duration)

	// OnClassify records one gesture classification published to the state.
	OnClassify(ctx context.Context, active bool, target float64)

	// OnTick records one frame tick.
	OnTick(ctx context.Context, seq uint64, current float64, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed HTTP response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnLayoutBuilt(context.Context, int, int, uint64, time.Duration) {}
func (NoopEngineHooks) OnClassify(context.Context, bool, float64)                      {}
func (NoopEngineHooks) OnTick(context.Context, uint64, float64, time.Duration)         {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                     {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Registry
// =============================================================================

// slot holds the installed hooks of one category. An empty slot reports
// the no-op default.
type slot[T any] struct {
	p    atomic.Pointer[T]
	noop T
}

func (s *slot[T]) load() T {
	if h := s.p.Load(); h != nil {
		return *h
	}
	return s.noop
}

func (s *slot[T]) store(h T) { s.p.Store(&h) }

var (
	engineSlot = slot[EngineHooks]{noop: NoopEngineHooks{}}
	cacheSlot  = slot[CacheHooks]{noop: NoopCacheHooks{}}
	httpSlot   = slot[HTTPHooks]{noop: NoopHTTPHooks{}}
)

// SetEngineHooks installs engine hooks. A nil h is ignored.
func SetEngineHooks(h EngineHooks) {
	if h != nil {
		engineSlot.store(h)
	}
}

// SetCacheHooks installs cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.store(h)
	}
}

// SetHTTPHooks installs HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.store(h)
	}
}

// Engine returns the installed engine hooks.
func Engine() EngineHooks { return engineSlot.load() }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return cacheSlot.load() }

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.load() }

// Reset puts every category back on its no-op default.
func Reset() {
	engineSlot.p.Store(nil)
	cacheSlot.p.Store(nil)
	httpSlot.p.Store(nil)
}
