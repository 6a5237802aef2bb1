package gesture

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/morphtree/pkg/morph"
	"github.com/matzehuels/morphtree/pkg/observability"
)

// DefaultInterval is the sampling cadence, independent of the display tick.
const DefaultInterval = 33 * time.Millisecond

// SamplerOptions configures a [Sampler].
type SamplerOptions struct {
	// Interval between tracker polls. Zero selects DefaultInterval.
	Interval time.Duration

	// Classifier used for every sample. Nil selects the default threshold.
	Classifier *Classifier

	// Logger receives tracker errors at warn level. Nil discards.
	Logger *log.Logger
}

// Sampler is the asynchronous gesture loop: it polls a [Tracker], classifies
// each sample and publishes the result into a [morph.State]. It is the only
// writer of the state's signal.
type Sampler struct {
	tracker    Tracker
	state      *morph.State
	classifier *Classifier
	interval   time.Duration
	logger     *log.Logger
}

// NewSampler creates a sampler feeding state from tracker.
func NewSampler(tracker Tracker, state *morph.State, opts SamplerOptions) *Sampler {
	s := &Sampler{
		tracker:    tracker,
		state:      state,
		classifier: opts.Classifier,
		interval:   opts.Interval,
		logger:     opts.Logger,
	}
	if s.classifier == nil {
		s.classifier = &Classifier{}
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return s
}

// Interval returns the polling cadence.
func (s *Sampler) Interval() time.Duration { return s.interval }

// SampleOnce performs one poll. It reports whether a signal was published.
// A tracker that is not ready yet is skipped without error; [ErrExhausted]
// and context errors are returned to the caller, every other tracker error
// is logged and skipped.
func (s *Sampler) SampleOnce(ctx context.Context) (bool, error) {
	if !s.tracker.Ready() {
		return false, nil
	}
	h, err := s.tracker.Detect(ctx)
	if err != nil {
		if errors.Is(err, ErrExhausted) || ctx.Err() != nil {
			return false, err
		}
		s.logger.Warn("hand detection failed", "error", err)
		return false, nil
	}

	sig := s.classifier.Classify(h)
	s.state.Publish(sig)
	observability.Engine().OnClassify(ctx, sig.Active, sig.Target)
	s.logger.Debug("gesture", "active", sig.Active, "target", sig.Target,
		"px", sig.Pointer.X, "py", sig.Pointer.Y)
	return true, nil
}

// Run polls the tracker until ctx is cancelled or a finite tracker is
// exhausted. Exhaustion returns nil; cancellation returns ctx.Err().
// The last published signal is left in place either way.
func (s *Sampler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.SampleOnce(ctx); err != nil {
			if errors.Is(err, ErrExhausted) {
				s.logger.Debug("gesture source exhausted")
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
