package gesture

import (
	"context"
	"errors"
	"sync"
)

// ErrExhausted is returned by finite trackers once every sample was served.
var ErrExhausted = errors.New("gesture: tracker exhausted")

// Tracker is the hand-tracking collaborator. Detect returns at most one hand
// per call; a nil Hand with a nil error means no hand is in view.
type Tracker interface {
	// Ready reports whether the tracker has finished loading and can detect.
	Ready() bool

	// Detect returns the most recent hand, if any.
	Detect(ctx context.Context) (Hand, error)
}

// LatestTracker holds the most recent hand posted by an external producer,
// typically a browser-side MediaPipe runner talking to the HTTP server.
// Set and Detect may be called from different goroutines.
type LatestTracker struct {
	mu    sync.RWMutex
	hand  Hand
	ready bool
	seq   uint64
}

// NewLatestTracker creates a tracker that is not ready until the first Set.
func NewLatestTracker() *LatestTracker {
	return &LatestTracker{}
}

// Set stores h as the latest sample and marks the tracker ready.
// A nil h records that the producer currently sees no hand.
func (t *LatestTracker) Set(h Hand) {
	t.mu.Lock()
	t.hand = h.Clone()
	t.ready = true
	t.seq++
	t.mu.Unlock()
}

// Ready reports whether any producer has posted a sample yet.
func (t *LatestTracker) Ready() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ready
}

// Detect returns a copy of the latest hand.
func (t *LatestTracker) Detect(ctx context.Context) (Hand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hand.Clone(), nil
}

// Seq returns the number of samples posted so far.
func (t *LatestTracker) Seq() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.seq
}

// ReplayTracker serves a fixed sequence of hands one per Detect call.
type ReplayTracker struct {
	mu     sync.Mutex
	frames []Hand
	next   int
	loop   bool
}

// NewReplayTracker replays frames in order. With loop set it wraps around
// instead of returning [ErrExhausted].
func NewReplayTracker(frames []Hand, loop bool) *ReplayTracker {
	return &ReplayTracker{frames: frames, loop: loop}
}

// Ready is always true; recorded frames need no warm-up.
func (t *ReplayTracker) Ready() bool { return true }

// Detect returns the next recorded hand.
func (t *ReplayTracker) Detect(ctx context.Context) (Hand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.next >= len(t.frames) {
		if !t.loop || len(t.frames) == 0 {
			return nil, ErrExhausted
		}
		t.next = 0
	}
	h := t.frames[t.next]
	t.next++
	return h.Clone(), nil
}

// Remaining returns the number of frames left before exhaustion or wrap.
func (t *ReplayTracker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.frames) - t.next
}
