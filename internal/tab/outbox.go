package tab

import "sync"

// outbox queues at most one frame per key. A newer frame for a queued key
// replaces the older one in place, so a slow client always ends up with the
// latest state of every view.
type outbox struct {
	mu      sync.Mutex
	order   []string
	pending map[string]Frame
	limit   int
	ready   chan struct{}
	closed  bool
}

func newOutbox(limit int) *outbox {
	return &outbox{
		pending: make(map[string]Frame),
		limit:   limit,
		ready:   make(chan struct{}, 1),
	}
}

// put queues f under key. It reports whether an older frame was superseded and
// returns the frame evicted to make room, if any. Evictions prefer reminder
// frames since view frames are bounded by the number of views.
func (o *outbox) put(key string, f Frame) (superseded bool, evicted *Frame, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return false, nil, false
	}
	if _, queued := o.pending[key]; queued {
		o.pending[key] = f
		o.wake()
		return true, nil, true
	}
	if len(o.order) >= o.limit {
		evicted = o.evict()
	}
	o.order = append(o.order, key)
	o.pending[key] = f
	o.wake()
	return false, evicted, true
}

func (o *outbox) evict() *Frame {
	idx := 0
	for i, key := range o.order {
		if o.pending[key].View == ViewReminder {
			idx = i
			break
		}
	}
	key := o.order[idx]
	f := o.pending[key]
	delete(o.pending, key)
	o.order = append(o.order[:idx], o.order[idx+1:]...)
	return &f
}

// take pops the oldest queued frame.
func (o *outbox) take() (Frame, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.order) == 0 {
		return Frame{}, false
	}
	key := o.order[0]
	o.order = o.order[1:]
	f := o.pending[key]
	delete(o.pending, key)
	return f, true
}

func (o *outbox) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.order)
}

func (o *outbox) close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
}

func (o *outbox) wake() {
	select {
	case o.ready <- struct{}{}:
	default:
	}
}
