package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/morphtree/pkg/gesture"
)

// Interval returns the wall-clock duration of one tick.
func (e *Engine) Interval() time.Duration {
	return time.Second / time.Duration(e.opts.FPS)
}

// Run ticks at the configured rate and hands every frame to sink until ctx
// is cancelled. The simulated time step is fixed at one interval per tick,
// so a slow sink slows the animation rather than making it jump. A nil sink
// only advances the simulation. Run returns ctx.Err() on cancellation and
// the wrapped error if the sink fails.
func (e *Engine) Run(ctx context.Context, sink Sink) error {
	interval := e.Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		f := e.Tick(interval)
		if sink == nil {
			continue
		}
		if err := sink.Consume(ctx, f); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("sink: %w", err)
		}
	}
}

// RunWithSampler runs the frame loop and the gesture loop concurrently.
// Cancelling ctx stops both. A sink failure stops both and is returned.
// An exhausted gesture source does not stop the frame loop.
func RunWithSampler(ctx context.Context, e *Engine, s *gesture.Sampler, sink Sink) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.Run(ctx, sink)
	})
	g.Go(func() error {
		err := s.Run(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	})
	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// SimOptions controls a headless [Simulate] run.
type SimOptions struct {
	// Ticks is the number of frames to run. Zero runs until the gesture
	// source is exhausted and Settle frames have passed.
	Ticks int

	// SampleEvery polls the sampler once every SampleEvery ticks. Zero
	// derives it from the sampler interval and the engine rate.
	SampleEvery int

	// Settle is the number of frames to keep ticking after the gesture
	// source is exhausted when Ticks is zero.
	Settle int
}

// maxOpenEndedTicks bounds a Simulate run whose source never exhausts.
const maxOpenEndedTicks = 1 << 22

// Simulate runs the engine and the sampler in lockstep without waiting on
// the wall clock, so results depend only on the inputs. Each frame goes to
// sink, which may be nil. It returns the number of ticks run.
func Simulate(ctx context.Context, e *Engine, s *gesture.Sampler, sink Sink, opts SimOptions) (int, error) {
	every := opts.SampleEvery
	if every <= 0 {
		every = max(1, int(s.Interval()/e.Interval()))
	}
	interval := e.Interval()

	exhausted := false
	settled := 0
	ticks := 0
	for {
		if opts.Ticks > 0 && ticks >= opts.Ticks {
			return ticks, nil
		}
		if opts.Ticks <= 0 && (exhausted && settled >= opts.Settle || ticks >= maxOpenEndedTicks) {
			return ticks, nil
		}
		if err := ctx.Err(); err != nil {
			return ticks, err
		}

		if !exhausted && ticks%every == 0 {
			if _, err := s.SampleOnce(ctx); err != nil {
				if !errors.Is(err, gesture.ErrExhausted) {
					return ticks, err
				}
				exhausted = true
			}
		}
		if exhausted {
			settled++
		}

		f := e.Tick(interval)
		ticks++
		if sink != nil {
			if err := sink.Consume(ctx, f); err != nil {
				return ticks, fmt.Errorf("sink: %w", err)
			}
		}
	}
}
