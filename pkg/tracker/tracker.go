package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"yabaitray/pkg/yabai"
)

// Causes recorded alongside a transition.
const (
	CausePoll   = "poll"
	CauseEvent  = "space_changed"
	CauseToggle = "toggle"
)

// Tracker drives updates into the shared state from the three
// triggers: the poll loop, space-change events and user toggles.
type Tracker struct {
	source   LayoutSource
	state    *State
	recorder TransitionRecorder
	log      *zap.SugaredLogger

	interval    time.Duration
	maxAttempts int
	backoff     time.Duration
}

type Options struct {
	Interval    time.Duration // poll interval, default 1s
	MaxAttempts int           // consecutive poll failures tolerated, default 5
	Backoff     time.Duration // initial retry backoff, default 500ms, doubles per failure
}

// New creates a tracker. recorder may be nil.
func New(source LayoutSource, state *State, recorder TransitionRecorder, log *zap.SugaredLogger, opts Options) *Tracker {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}

	return &Tracker{
		source:      source,
		state:       state,
		recorder:    recorder,
		log:         log,
		interval:    opts.Interval,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
	}
}

// Current returns the layout the tracker currently believes is active.
func (t *Tracker) Current() yabai.Layout {
	return t.state.Current()
}

// Refresh queries the active space and feeds the result into the
// shared state.
func (t *Tracker) Refresh(cause string) error {
	space, err := t.source.ActiveSpace()
	if err != nil {
		return fmt.Errorf("query active space: %w", err)
	}

	t.apply(space.Type, cause)
	return nil
}

// Poll refreshes the state every interval until the context is
// cancelled. Transient failures are retried with exponential backoff;
// a missing binary or exhausted retries end the loop.
func (t *Tracker) Poll(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	failures := 0
	backoff := t.backoff
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		err := t.Refresh(CausePoll)
		if err == nil {
			failures = 0
			backoff = t.backoff
			continue
		}

		if errors.Is(err, yabai.ErrNotInstalled) {
			return err
		}

		failures++
		if failures >= t.maxAttempts {
			return fmt.Errorf("%d consecutive poll failures, last: %w", failures, err)
		}
		t.log.Warnw("poll refresh failed, backing off", "error", err, "failures", failures, "backoff", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// HandleSpaceChange re-queries after the active space changed.
// Failures are only logged, the poll loop converges on the next tick.
func (t *Tracker) HandleSpaceChange() {
	if err := t.Refresh(CauseEvent); err != nil {
		t.log.Warnw("space change refresh failed", "error", err)
	}
}

// Toggle applies the opposite of the stored layout. The state advances
// only when yabai accepted the change, so a failed toggle leaves the
// indicator on the mode that is actually in effect.
func (t *Tracker) Toggle() error {
	next := t.state.Current().Opposite()
	if err := t.source.SetLayout(next); err != nil {
		return fmt.Errorf("set layout %s: %w", next, err)
	}

	t.apply(next, CauseToggle)
	return nil
}

func (t *Tracker) apply(layout yabai.Layout, cause string) {
	prev, changed := t.state.Swap(layout)
	if !changed {
		return
	}

	t.log.Debugw("layout changed", "from", prev, "to", layout, "cause", cause)

	if t.recorder == nil {
		return
	}
	if err := t.recorder.RecordTransition(prev, layout, cause); err != nil {
		t.log.Warnw("record transition", "error", err)
	}
}
