package fs

import (
	"sync"
	"time"

	"github.com/aretw0/harp/pkg/core"
)

// debouncer coalesces bursts of events per profile id. Editors typically
// write, rename and chmod in quick succession; only the last event survives.
type debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, timers: make(map[string]*time.Timer)}
}

// add schedules fn(e) after the delay, replacing any pending event for e.ID.
func (d *debouncer) add(e core.Event, fn func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if t, ok := d.timers[e.ID]; ok && t.Stop() {
		d.wg.Done()
	}

	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		if d.timers[e.ID] == t {
			delete(d.timers, e.ID)
		}
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			fn(e)
		}
	})
	d.timers[e.ID] = t
}

// stopAndWait drops pending events and waits up to timeout for callbacks
// already running.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for id, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, id)
	}
	d.mu.Unlock()

	waitTimeout(&d.wg, timeout)
}
