package watch

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// Debouncer folds bursts of file events into batches. A batch is delivered
// once the window passed without a new event, or as soon as maxBatch
// distinct paths are pending.
//
// Events for the same path are merged by net effect: a file created and
// modified is still a create, a file created and removed again is dropped,
// and a file removed and recreated is a modify.
type Debouncer struct {
	window   time.Duration
	maxBatch int
	onFlush  func([]Event)

	mu       sync.Mutex
	pending  map[string]Event
	timer    *time.Timer
	deadline time.Time
	stopped  bool
}

// NewDebouncer creates a Debouncer. A maxBatch of zero or less disables the
// early flush.
func NewDebouncer(window time.Duration, maxBatch int, onFlush func([]Event)) *Debouncer {
	return &Debouncer{
		window:   window,
		maxBatch: maxBatch,
		onFlush:  onFlush,
		pending:  make(map[string]Event),
	}
}

// merge combines the pending event for a path with a newer one. The second
// result is false when the two cancel out.
func merge(prev, next Event) (Event, bool) {
	switch {
	case prev.Op == OpCreate && next.Op == OpModify:
		return prev, true
	case prev.Op == OpCreate && (next.Op == OpDelete || next.Op == OpRename):
		return Event{}, false
	case prev.Op == OpDelete && next.Op == OpCreate:
		return Event{Path: next.Path, Op: OpModify}, true
	default:
		return next, true
	}
}

// Add records e and pushes the deadline back by one window.
func (d *Debouncer) Add(e Event) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if prev, ok := d.pending[e.Path]; ok {
		if merged, keep := merge(prev, e); keep {
			d.pending[e.Path] = merged
		} else {
			delete(d.pending, e.Path)
		}
	} else {
		d.pending[e.Path] = e
	}

	if d.maxBatch > 0 && len(d.pending) >= d.maxBatch {
		batch := d.takeLocked()
		d.mu.Unlock()
		d.emit(batch)
		return
	}

	d.deadline = time.Now().Add(d.window)
	if d.timer == nil {
		d.timer = time.AfterFunc(d.window, d.fire)
	} else {
		d.timer.Reset(d.window)
	}
	d.mu.Unlock()
}

// fire runs on the timer goroutine. A timer that went off while Add was
// extending the deadline re-arms itself instead of flushing early.
func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	if wait := time.Until(d.deadline); wait > 0 {
		d.timer.Reset(wait)
		d.mu.Unlock()
		return
	}
	batch := d.takeLocked()
	d.mu.Unlock()
	d.emit(batch)
}

// Pending returns the number of paths waiting for the next batch.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *Debouncer) takeLocked() []Event {
	batch := make([]Event, 0, len(d.pending))
	for _, e := range d.pending {
		batch = append(batch, e)
	}
	clear(d.pending)
	slices.SortFunc(batch, func(a, b Event) int { return strings.Compare(a.Path, b.Path) })
	return batch
}

func (d *Debouncer) emit(batch []Event) {
	if len(batch) > 0 && d.onFlush != nil {
		d.onFlush(batch)
	}
}

// Stop flushes anything pending and ignores later events.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	batch := d.takeLocked()
	d.mu.Unlock()
	d.emit(batch)
}
