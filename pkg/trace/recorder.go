package trace

import (
	"context"
	"sync"

	"github.com/matzehuels/morphtree/pkg/gesture"
)

// Recorder wraps a tracker and appends every hand it detects to a trace.
// It is itself a [gesture.Tracker], so it slots in front of a sampler
// without changing the sampling loop.
type Recorder struct {
	inner gesture.Tracker

	mu    sync.Mutex
	trace *Trace
}

// NewRecorder records inner's output into t.
func NewRecorder(inner gesture.Tracker, t *Trace) *Recorder {
	return &Recorder{inner: inner, trace: t}
}

// Ready forwards to the wrapped tracker.
func (r *Recorder) Ready() bool { return r.inner.Ready() }

// Detect forwards to the wrapped tracker and records successful results,
// including frames without a hand. Once the trace holds [MaxFrames] it stops
// growing but keeps forwarding.
func (r *Recorder) Detect(ctx context.Context) (gesture.Hand, error) {
	h, err := r.inner.Detect(ctx)
	if err != nil {
		return h, err
	}
	r.mu.Lock()
	if len(r.trace.Frames) < MaxFrames {
		r.trace.Frames = append(r.trace.Frames, h.Clone())
	}
	r.mu.Unlock()
	return h, nil
}

// Len returns the number of frames recorded so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trace.Frames)
}

// Trace returns the recorded trace. The caller must stop sampling first.
func (r *Recorder) Trace() *Trace {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trace
}

var _ gesture.Tracker = (*Recorder)(nil)
