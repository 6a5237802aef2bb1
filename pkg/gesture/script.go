package gesture

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/matzehuels/morphtree/pkg/errors"
)

// Kind is a scripted hand pose.
type Kind string

const (
	KindOpen   Kind = "open"
	KindClosed Kind = "closed"
	KindNone   Kind = "none"
)

// MaxScriptSamples bounds the total length of a parsed script.
const MaxScriptSamples = 10_000_000

// Step is one segment of a gesture script: Count samples of the same pose
// with the middle knuckle at (X, Y) in normalized image space.
type Step struct {
	Kind  Kind
	X, Y  float64
	Count int
}

// Script is an ordered list of steps.
type Script []Step

// Len returns the total number of samples in the script.
func (s Script) Len() int {
	n := 0
	for _, st := range s {
		n += st.Count
	}
	return n
}

// String renders the script in the form accepted by [ParseScript].
func (s Script) String() string {
	parts := make([]string, len(s))
	for i, st := range s {
		if st.X == 0.5 && st.Y == 0.5 {
			parts[i] = fmt.Sprintf("%s:%d", st.Kind, st.Count)
			continue
		}
		parts[i] = fmt.Sprintf("%s@%g/%g:%d", st.Kind, st.X, st.Y, st.Count)
	}
	return strings.Join(parts, ",")
}

// ParseScript parses a comma-separated gesture script.
//
// Each segment is kind[@x/y]:count where kind is open, closed, or none, the
// optional x/y place the middle knuckle (default 0.5/0.5, the frame centre)
// and count is the number of samples. Example: "open@0.2/0.5:50,none:30".
func ParseScript(s string) (Script, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New(errors.ErrCodeInvalidScript, "gesture script is empty")
	}

	var (
		out   Script
		total int
	)
	for _, seg := range strings.Split(s, ",") {
		seg = strings.TrimSpace(seg)
		st, err := parseStep(seg)
		if err != nil {
			return nil, err
		}
		total += st.Count
		if total > MaxScriptSamples {
			return nil, errors.New(errors.ErrCodeInvalidScript,
				"gesture script exceeds %d samples", MaxScriptSamples)
		}
		out = append(out, st)
	}
	return out, nil
}

func parseStep(seg string) (Step, error) {
	head, countStr, ok := strings.Cut(seg, ":")
	if !ok {
		return Step{}, scriptErr(seg, "missing ':count'")
	}
	count, err := strconv.Atoi(strings.TrimSpace(countStr))
	if err != nil || count < 0 {
		return Step{}, scriptErr(seg, "count must be a non-negative integer")
	}

	st := Step{X: 0.5, Y: 0.5, Count: count}
	kind, pos, hasPos := strings.Cut(strings.TrimSpace(head), "@")
	switch Kind(strings.ToLower(kind)) {
	case KindOpen, KindClosed, KindNone:
		st.Kind = Kind(strings.ToLower(kind))
	default:
		return Step{}, scriptErr(seg, fmt.Sprintf("unknown kind %q (want open, closed, none)", kind))
	}

	if hasPos {
		xs, ys, ok := strings.Cut(pos, "/")
		if !ok {
			return Step{}, scriptErr(seg, "position must be x/y")
		}
		if st.X, err = parseUnit(xs); err != nil {
			return Step{}, scriptErr(seg, err.Error())
		}
		if st.Y, err = parseUnit(ys); err != nil {
			return Step{}, scriptErr(seg, err.Error())
		}
	}
	return st, nil
}

func parseUnit(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid coordinate %q", s)
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("coordinate %g outside [0,1]", v)
	}
	return v, nil
}

func scriptErr(seg, msg string) error {
	return errors.New(errors.ErrCodeInvalidScript, "segment %q: %s", seg, msg)
}

// SyntheticHand builds a canonical hand for kind with the middle knuckle at
// (x, y). Open hands spread thumb and index tip well past the pinch
// threshold; closed hands touch them. KindNone returns nil.
func SyntheticHand(kind Kind, x, y float64) Hand {
	if kind == KindNone {
		return nil
	}
	h := make(Hand, LandmarkCount)
	for i := range h {
		h[i] = Landmark{X: x, Y: y + 0.15}
	}
	h[Wrist] = Landmark{X: x, Y: y + 0.25}
	h[MiddleMCP] = Landmark{X: x, Y: y}

	pinch := 0.3
	if kind == KindClosed {
		pinch = 0.02
	}
	h[ThumbTip] = Landmark{X: x - pinch/2, Y: y - 0.1}
	h[IndexTip] = Landmark{X: x + pinch/2, Y: y - 0.1}
	return h
}

// ScriptTracker serves the samples of a [Script] one per Detect call and
// returns [ErrExhausted] after the last one.
type ScriptTracker struct {
	mu     sync.Mutex
	script Script
	step   int
	served int
}

// NewScriptTracker creates a tracker replaying s.
func NewScriptTracker(s Script) *ScriptTracker {
	return &ScriptTracker{script: s}
}

// Ready is always true.
func (t *ScriptTracker) Ready() bool { return true }

// Detect returns the next scripted hand.
func (t *ScriptTracker) Detect(ctx context.Context) (Hand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	for t.step < len(t.script) && t.served >= t.script[t.step].Count {
		t.step++
		t.served = 0
	}
	if t.step >= len(t.script) {
		return nil, ErrExhausted
	}
	st := t.script[t.step]
	t.served++
	return SyntheticHand(st.Kind, st.X, st.Y), nil
}
