// Package timex provides the timed primitives the flow controllers build on:
// single-shot cooldown countdowns, debounced triggers with stale-completion
// discard, and a JSON-friendly duration type for configuration files.
package timex

import (
	"sync"
	"time"
)

// tickInterval is a test seam for the countdown tick period.
// In tests you can shrink it to avoid waiting real seconds.
var tickInterval = time.Second

// Countdown is a cancellable single-shot cooldown. It ticks once per second,
// reporting the remaining seconds, and invokes finished when the count
// reaches zero. Stop disposes it early; a stopped countdown never invokes
// finished.
//
// Callbacks are invoked from the countdown's own goroutine. A tick already in
// flight when Stop is called may still be delivered; owners that care must
// check that the handle still belongs to the current flow instance before
// mutating state (see the flows package).
type Countdown struct {
	mu      sync.Mutex
	stopped bool
	ended   bool
	stop    chan struct{}
	done    chan struct{}
}

// StartCountdown launches a countdown of the given number of seconds.
// tick is called once per second with the remaining count (seconds-1 down to
// 0); finished is called after the final tick. Either callback may be nil.
func StartCountdown(seconds int, tick func(remaining int), finished func()) *Countdown {
	c := &Countdown{stop: make(chan struct{}), done: make(chan struct{})}
	go c.run(seconds, tick, finished)
	return c
}

func (c *Countdown) run(seconds int, tick func(int), finished func()) {
	defer close(c.done)
	defer c.end()

	t := time.NewTicker(tickInterval)
	defer t.Stop()

	remaining := seconds
	for remaining > 0 {
		select {
		case <-c.stop:
			return
		case <-t.C:
			if c.isStopped() {
				return
			}
			remaining--
			if tick != nil {
				tick(remaining)
			}
		}
	}
	if finished != nil && !c.isStopped() {
		finished()
	}
}

// Stop disposes the countdown. It is idempotent and safe to call from any
// goroutine, including countdown callbacks.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.stop)
}

// Active reports whether the countdown is still running, i.e. it has neither
// finished nor been stopped.
func (c *Countdown) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.stopped && !c.ended
}

// Wait blocks until the countdown goroutine has exited. Intended for tests.
func (c *Countdown) Wait() {
	<-c.done
}

func (c *Countdown) end() {
	c.mu.Lock()
	c.ended = true
	c.mu.Unlock()
}

func (c *Countdown) isStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}
