package tracker

import (
	"sync"

	"yabaitray/pkg/yabai"
)

// State is the shared source of truth for the active space's layout.
// One mutex guards the value; change notification goes through
// per-subscriber coalescing channels, so a writer never blocks on a
// consumer and a slow consumer only misses intermediate values, never
// the latest one.
type State struct {
	mu     sync.Mutex
	layout yabai.Layout
	subs   []chan yabai.Layout
}

func NewState(initial yabai.Layout) *State {
	return &State{layout: initial}
}

// Current returns a snapshot of the stored layout.
func (s *State) Current() yabai.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.layout
}

// Set stores the layout and notifies subscribers, unless the value is
// already current. Reports whether a change happened; repeated sets of
// the same value fire no notification.
func (s *State) Set(layout yabai.Layout) bool {
	_, changed := s.Swap(layout)
	return changed
}

// Swap is Set returning the previous value as well.
func (s *State) Swap(layout yabai.Layout) (yabai.Layout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.layout
	if layout == prev {
		return prev, false
	}
	s.layout = layout

	for _, ch := range s.subs {
		send(ch, layout)
	}

	return prev, true
}

// Subscribe registers a change listener. The channel carries the value
// that was set, it never closes.
func (s *State) Subscribe() <-chan yabai.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan yabai.Layout, 1)
	s.subs = append(s.subs, ch)
	return ch
}

// send never blocks: an unconsumed older value is replaced by the
// newer one. Writers are serialized by the state mutex, so the swap
// loop always terminates.
func send(ch chan yabai.Layout, layout yabai.Layout) {
	for {
		select {
		case ch <- layout:
			return
		default:
		}

		select {
		case <-ch:
		default:
		}
	}
}
