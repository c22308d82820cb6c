package timex

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid bursts of trigger events: only the most recent
// trigger within the delay window fires. Each trigger is assigned a
// monotonically increasing generation; an asynchronous completion must be
// applied only while its generation is still current, so a stale response
// can never overwrite a newer one.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	gen   uint64
	timer *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the debounce delay, superseding any
// previously scheduled trigger. fn receives its generation; callers doing
// further asynchronous work inside fn must re-check Stale before applying
// the result. Returns the assigned generation.
func (d *Debouncer) Trigger(fn func(gen uint64)) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	g := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		if d.Stale(g) {
			return
		}
		fn(g)
	})
	return g
}

// Stale reports whether the given generation has been superseded.
func (d *Debouncer) Stale(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gen != d.gen
}

// Cancel invalidates all outstanding generations and stops any pending
// trigger. Completions already in flight become stale.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
