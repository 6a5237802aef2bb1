package morph

import (
	"math"
	"sync/atomic"
)

const (
	// AlphaForming is the default per-frame smoothing rate.
	AlphaForming = 0.05

	// AlphaDefault is the faster general-purpose smoothing rate.
	AlphaDefault = 0.1

	// FormedThreshold is the control value above which the display counts as
	// a formed tree (camera auto-rotation, UI hints).
	FormedThreshold = 0.8

	// InitialCurrent is the control value at startup: the tree starts formed.
	InitialCurrent = 1.0

	// StatusExplode and StatusRestore are the UI hints derived from the target.
	StatusExplode = "Open hand to explode"
	StatusRestore = "Close hand to restore"
)

// Pointer is the normalized hand position; each axis is within [-1, 1].
type Pointer struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Signal is the output of one gesture classification.
type Signal struct {
	Target  float64 `json:"target"`
	Pointer Pointer `json:"pointer"`
	Active  bool    `json:"active"`
}

// Rest is the signal used when no hand is detected: formed, centred, inactive.
var Rest = Signal{Target: 1.0}

// Snapshot is a consistent read of the state for UI and status consumers.
type Snapshot struct {
	Current    float64 `json:"current"`
	Target     float64 `json:"target"`
	Pointer    Pointer `json:"pointer"`
	Active     bool    `json:"active"`
	Formed     bool    `json:"formed"`
	AutoRotate bool    `json:"auto_rotate"`
	Status     string  `json:"status"`
}

// Options configures a [State]. Zero values select the defaults.
type Options struct {
	// Alpha is the per-frame smoothing rate in (0, 1]. Default AlphaForming.
	Alpha float64

	// FormedThreshold overrides [FormedThreshold] when non-zero.
	FormedThreshold float64

	// Initial overrides the starting control value. Nil means InitialCurrent.
	Initial *float64
}

// State is the process-wide morph state shared by every visual subsystem.
// It is safe for one Publish writer and one Step writer to run concurrently
// with any number of readers.
type State struct {
	alpha     float64
	threshold float64

	current atomic.Uint64 // math.Float64bits
	signal  atomic.Pointer[Signal]
}

// NewState creates a state holding InitialCurrent and the [Rest] signal.
func NewState(opts Options) *State {
	s := &State{
		alpha:     opts.Alpha,
		threshold: opts.FormedThreshold,
	}
	if s.alpha <= 0 || s.alpha > 1 || math.IsNaN(s.alpha) {
		s.alpha = AlphaForming
	}
	if s.threshold <= 0 || s.threshold >= 1 {
		s.threshold = FormedThreshold
	}

	initial := InitialCurrent
	if opts.Initial != nil {
		initial = clampUnit(*opts.Initial, InitialCurrent)
	}
	s.current.Store(math.Float64bits(initial))

	rest := Rest
	s.signal.Store(&rest)
	return s
}

// Alpha returns the smoothing rate in use.
func (s *State) Alpha() float64 { return s.alpha }

// Publish stores the latest classifier output. Out-of-range values are
// clamped: target into [0,1], pointer axes into [-1,1]. NaN falls back to the
// rest value for that field.
func (s *State) Publish(sig Signal) {
	sig.Target = clampUnit(sig.Target, Rest.Target)
	sig.Pointer.X = clampSigned(sig.Pointer.X)
	sig.Pointer.Y = clampSigned(sig.Pointer.Y)
	s.signal.Store(&sig)
}

// Signal returns the most recently published classifier output.
func (s *State) Signal() Signal {
	return *s.signal.Load()
}

// Current returns the smoothed control value.
func (s *State) Current() float64 {
	return math.Float64frombits(s.current.Load())
}

// Target returns the value current is approaching.
func (s *State) Target() float64 {
	return s.signal.Load().Target
}

// Step advances current one frame toward the target and returns it.
// Only the frame tick may call Step.
func (s *State) Step() float64 {
	next := Smooth(s.Current(), s.Target(), s.alpha)
	s.current.Store(math.Float64bits(next))
	return next
}

// Formed reports whether the display is close enough to the tree shape for
// ambient behaviour such as camera auto-rotation.
func (s *State) Formed() bool {
	return s.Current() > s.threshold
}

// AutoRotate reports whether the external camera should auto-rotate: only
// when formed and while no gesture is steering the rotation.
func (s *State) AutoRotate() bool {
	return s.Formed() && !s.Signal().Active
}

// Status returns the UI hint for the current target.
func (s *State) Status() string {
	return StatusFor(s.Target())
}

// Snapshot reads all fields for a status consumer.
func (s *State) Snapshot() Snapshot {
	sig := s.Signal()
	cur := s.Current()
	formed := cur > s.threshold
	return Snapshot{
		Current:    cur,
		Target:     sig.Target,
		Pointer:    sig.Pointer,
		Active:     sig.Active,
		Formed:     formed,
		AutoRotate: formed && !sig.Active,
		Status:     StatusFor(sig.Target),
	}
}

// StatusFor returns the UI hint for a target value.
func StatusFor(target float64) string {
	if target > 0.5 {
		return StatusExplode
	}
	return StatusRestore
}
