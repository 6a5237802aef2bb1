// Package trace records and replays gesture streams.
//
// A [Trace] is the ordered list of hands a tracker produced, sampled at a
// fixed interval. Traces make gesture-driven runs reproducible: record a
// session once with a live tracker, then replay it through
// [Trace.Tracker] into the simulator, the benchmark or a test.
//
// Two [Store] backends are provided: [FileStore] keeps one JSON file per
// trace on disk, [MongoStore] keeps traces in a MongoDB collection.
package trace

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/morphtree/pkg/errors"
	"github.com/matzehuels/morphtree/pkg/gesture"
)

// MaxFrames bounds the length of one trace.
const MaxFrames = 1_000_000

// Trace is a recorded gesture stream.
type Trace struct {
	ID        string         `json:"id" bson:"_id"`
	Name      string         `json:"name" bson:"name"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	Interval  time.Duration  `json:"interval" bson:"interval"`
	Frames    []gesture.Hand `json:"frames" bson:"frames"`
}

// New creates an empty trace with a fresh ID.
func New(name string, interval time.Duration) *Trace {
	return &Trace{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Interval:  interval,
	}
}

// Duration returns the wall-clock length of the recording.
func (t *Trace) Duration() time.Duration {
	return time.Duration(len(t.Frames)) * t.Interval
}

// Present returns how many frames contain a hand.
func (t *Trace) Present() int {
	n := 0
	for _, h := range t.Frames {
		if h.Present() {
			n++
		}
	}
	return n
}

// Summary describes the trace without its frames.
func (t *Trace) Summary() Summary {
	return Summary{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
		Interval:  t.Interval,
		Frames:    len(t.Frames),
	}
}

// Tracker returns a tracker replaying the frames, wrapping around when loop
// is set.
func (t *Trace) Tracker(loop bool) *gesture.ReplayTracker {
	return gesture.NewReplayTracker(t.Frames, loop)
}

// Validate checks the name, interval and length.
func (t *Trace) Validate() error {
	if err := errors.ValidateName(t.Name); err != nil {
		return err
	}
	if _, err := uuid.Parse(t.ID); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "trace id %q is not a UUID", t.ID)
	}
	if t.Interval <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "trace interval must be positive")
	}
	return errors.ValidateCount("trace frame", len(t.Frames), MaxFrames)
}

// Summary is the listing view of a trace.
type Summary struct {
	ID        string        `json:"id" bson:"_id"`
	Name      string        `json:"name" bson:"name"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	Interval  time.Duration `json:"interval" bson:"interval"`
	Frames    int           `json:"frames" bson:"frame_count"`
}

// Duration returns the wall-clock length of the recording.
func (s Summary) Duration() time.Duration {
	return time.Duration(s.Frames) * s.Interval
}

// Store persists traces.
type Store interface {
	// Save writes t, replacing any trace with the same ID.
	Save(ctx context.Context, t *Trace) error

	// Load returns the trace whose ID or name is ref. When several traces
	// share a name the newest wins. A missing trace is TRACE_NOT_FOUND.
	Load(ctx context.Context, ref string) (*Trace, error)

	// List returns every trace, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes the trace whose ID or name is ref.
	Delete(ctx context.Context, ref string) error

	// Close releases backend resources.
	Close() error
}

func notFound(ref string) error {
	return errors.New(errors.ErrCodeTraceNotFound, "trace %q not found", ref)
}

// matches reports whether ref selects s by ID, ID prefix of at least eight
// characters, or name.
func matches(s Summary, ref string) bool {
	if s.ID == ref || s.Name == ref {
		return true
	}
	return len(ref) >= 8 && strings.HasPrefix(s.ID, ref)
}
