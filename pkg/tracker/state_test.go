package tracker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"yabaitray/pkg/yabai"
)

func requireUpdate(t *testing.T, ch <-chan yabai.Layout, want yabai.Layout) {
	t.Helper()

	select {
	case got := <-ch:
		require.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}
}

func requireNoUpdate(t *testing.T, ch <-chan yabai.Layout) {
	t.Helper()

	select {
	case got := <-ch:
		t.Fatalf("unexpected notification: %v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSetNotifiesOnChange(t *testing.T) {
	t.Parallel()

	state := NewState(yabai.LayoutFloat)
	ch := state.Subscribe()

	require.True(t, state.Set(yabai.LayoutBsp))
	require.Equal(t, yabai.LayoutBsp, state.Current())
	requireUpdate(t, ch, yabai.LayoutBsp)
}

func TestSetDeduplicates(t *testing.T) {
	t.Parallel()

	state := NewState(yabai.LayoutFloat)
	ch := state.Subscribe()

	require.True(t, state.Set(yabai.LayoutBsp))
	requireUpdate(t, ch, yabai.LayoutBsp)

	// setting the same value again must not notify
	require.False(t, state.Set(yabai.LayoutBsp))
	requireNoUpdate(t, ch)
}

func TestSetCurrentValueIsNoop(t *testing.T) {
	t.Parallel()

	state := NewState(yabai.LayoutFloat)
	ch := state.Subscribe()

	require.False(t, state.Set(yabai.LayoutFloat))
	require.Equal(t, yabai.LayoutFloat, state.Current())
	requireNoUpdate(t, ch)
}

func TestSwapReturnsPrevious(t *testing.T) {
	t.Parallel()

	state := NewState(yabai.LayoutFloat)

	prev, changed := state.Swap(yabai.LayoutBsp)
	require.True(t, changed)
	require.Equal(t, yabai.LayoutFloat, prev)

	prev, changed = state.Swap(yabai.LayoutBsp)
	require.False(t, changed)
	require.Equal(t, yabai.LayoutBsp, prev)
}

func TestSlowSubscriberSeesLatestValue(t *testing.T) {
	t.Parallel()

	state := NewState(yabai.LayoutFloat)
	ch := state.Subscribe()

	// nobody consumed the first notification yet
	require.True(t, state.Set(yabai.LayoutBsp))
	require.True(t, state.Set(yabai.LayoutFloat))

	requireUpdate(t, ch, yabai.LayoutFloat)
	requireNoUpdate(t, ch)
}

func TestConcurrentSetsConverge(t *testing.T) {
	t.Parallel()

	state := NewState(yabai.LayoutFloat)
	ch := state.Subscribe()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		changes int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if state.Set(yabai.LayoutBsp) {
				mu.Lock()
				changes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, changes)
	require.Equal(t, yabai.LayoutBsp, state.Current())
	requireUpdate(t, ch, yabai.LayoutBsp)
	requireNoUpdate(t, ch)
}
