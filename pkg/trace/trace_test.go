package trace

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/morphtree/pkg/errors"
	"github.com/matzehuels/morphtree/pkg/gesture"
)

func sampleTrace(name string) *Trace {
	t := New(name, 33*time.Millisecond)
	t.Frames = []gesture.Hand{
		gesture.SyntheticHand(gesture.KindOpen, 0.5, 0.5),
		nil,
		gesture.SyntheticHand(gesture.KindClosed, 0.25, 0.75),
	}
	return t
}

func TestTraceValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Trace)
		code   errors.Code
	}{
		{"valid", func(*Trace) {}, ""},
		{"empty name", func(tr *Trace) { tr.Name = "" }, errors.ErrCodeInvalidInput},
		{"bad name", func(tr *Trace) { tr.Name = "../etc" }, errors.ErrCodeInvalidInput},
		{"bad id", func(tr *Trace) { tr.ID = "abc" }, errors.ErrCodeInvalidInput},
		{"zero interval", func(tr *Trace) { tr.Interval = 0 }, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := sampleTrace("demo")
			tt.modify(tr)
			err := tr.Validate()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestTraceSummary(t *testing.T) {
	tr := sampleTrace("demo")
	if got := tr.Present(); got != 2 {
		t.Errorf("Present() = %d, want 2", got)
	}
	s := tr.Summary()
	if s.Frames != 3 || s.Name != "demo" || s.ID != tr.ID {
		t.Errorf("Summary() = %+v", s)
	}
	if s.Duration() != 99*time.Millisecond || tr.Duration() != s.Duration() {
		t.Errorf("Duration() = %v, want 99ms", s.Duration())
	}
}

func TestTraceTrackerReplays(t *testing.T) {
	tr := sampleTrace("demo")
	rt := tr.Tracker(false)
	ctx := context.Background()

	for i, want := range tr.Frames {
		got, err := rt.Detect(ctx)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if got.Present() != want.Present() {
			t.Errorf("frame %d: present = %v, want %v", i, got.Present(), want.Present())
		}
	}
	if _, err := rt.Detect(ctx); err != gesture.ErrExhausted {
		t.Errorf("after last frame err = %v, want ErrExhausted", err)
	}
}

func TestRecorder(t *testing.T) {
	src := sampleTrace("src")
	rec := NewRecorder(src.Tracker(false), New("copy", src.Interval))
	ctx := context.Background()

	if !rec.Ready() {
		t.Fatal("recorder should forward Ready")
	}
	for {
		if _, err := rec.Detect(ctx); err != nil {
			if err != gesture.ErrExhausted {
				t.Fatalf("Detect() = %v", err)
			}
			break
		}
	}
	if rec.Len() != len(src.Frames) {
		t.Fatalf("Len() = %d, want %d", rec.Len(), len(src.Frames))
	}
	got := rec.Trace()
	for i := range src.Frames {
		if got.Frames[i].Present() != src.Frames[i].Present() {
			t.Errorf("frame %d presence differs", i)
		}
	}
	if got.Frames[0][gesture.ThumbTip] != src.Frames[0][gesture.ThumbTip] {
		t.Errorf("thumb tip = %v, want %v", got.Frames[0][gesture.ThumbTip], src.Frames[0][gesture.ThumbTip])
	}
}

func TestMatches(t *testing.T) {
	s := Summary{ID: "0f8fad5b-d9cb-469f-a165-70867728950e", Name: "wave"}
	tests := []struct {
		ref  string
		want bool
	}{
		{"wave", true},
		{s.ID, true},
		{"0f8fad5b", true},
		{"0f8f", false},
		{"other", false},
	}
	for _, tt := range tests {
		if got := matches(s, tt.ref); got != tt.want {
			t.Errorf("matches(%q) = %v, want %v", tt.ref, got, tt.want)
		}
	}
}
