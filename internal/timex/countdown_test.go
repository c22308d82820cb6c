package timex

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// shrinkTicks makes countdowns run at millisecond resolution for the
// duration of a test.
func shrinkTicks(t *testing.T) {
	t.Helper()
	old := tickInterval
	tickInterval = time.Millisecond
	t.Cleanup(func() { tickInterval = old })
}

func TestCountdown_TicksDownToZeroThenFinishes(t *testing.T) {
	shrinkTicks(t)

	var mu sync.Mutex
	var ticks []int
	finished := false

	c := StartCountdown(30, func(remaining int) {
		mu.Lock()
		ticks = append(ticks, remaining)
		mu.Unlock()
	}, func() {
		mu.Lock()
		finished = true
		mu.Unlock()
	})
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, ticks, 30)
	require.Equal(t, 29, ticks[0])
	require.Equal(t, 0, ticks[len(ticks)-1])
	require.True(t, finished)
	require.False(t, c.Active())
}

func TestCountdown_StopPreventsFinish(t *testing.T) {
	shrinkTicks(t)

	var mu sync.Mutex
	finished := false

	c := StartCountdown(1000, nil, func() {
		mu.Lock()
		finished = true
		mu.Unlock()
	})
	require.True(t, c.Active())

	c.Stop()
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.False(t, finished)
	require.False(t, c.Active())
}

func TestCountdown_StopIsIdempotent(t *testing.T) {
	shrinkTicks(t)

	c := StartCountdown(1000, nil, nil)
	c.Stop()
	c.Stop()
	c.Wait()
	require.False(t, c.Active())
}

func TestCountdown_ZeroSecondsFinishesImmediately(t *testing.T) {
	shrinkTicks(t)

	var mu sync.Mutex
	finished := false
	c := StartCountdown(0, nil, func() {
		mu.Lock()
		finished = true
		mu.Unlock()
	})
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.True(t, finished)
}
