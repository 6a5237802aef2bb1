package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// lockedBuffer is a bytes.Buffer safe for the spinner goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsAndUpdates(t *testing.T) {
	var out lockedBuffer
	s := newSpinnerTo(context.Background(), &out, "building")
	s.Start()
	time.Sleep(120 * time.Millisecond)
	s.Update("tick %d", 42)
	time.Sleep(120 * time.Millisecond)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "building") || !strings.Contains(got, "tick 42") {
		t.Errorf("output %q missing messages", got)
	}
	if s.Message() != "tick 42" {
		t.Errorf("Message() = %q", s.Message())
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	var out lockedBuffer
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerTo(ctx, &out, "waiting")
	s.Start()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var out lockedBuffer
	s := newSpinnerTo(context.Background(), &out, "stopping")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}
