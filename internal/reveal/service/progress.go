package service

import "sync"

// Progress stages reported while a reveal request runs.
const (
	ProgressQueued   = 0
	ProgressAcquired = 10
	ProgressDerived  = 60
	ProgressDecrypt  = 90
	ProgressVerified = 100
)

// ProgressReporter forwards non-decreasing progress values to an optional channel. Sends never
// block: a value the receiver is not ready for is dropped. Report is safe to call from a worker
// that outlives the request, after Close.
type ProgressReporter struct {
	mu     sync.Mutex
	ch     chan<- int
	last   int
	sent   bool
	closed bool
}

// NewProgressReporter wraps ch. A nil ch makes every call a no-op.
func NewProgressReporter(ch chan<- int) *ProgressReporter {
	return &ProgressReporter{ch: ch}
}

// Report sends p when it does not go backwards.
func (r *ProgressReporter) Report(p int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ch == nil || r.closed || (r.sent && p < r.last) {
		return
	}
	select {
	case r.ch <- p:
		r.last = p
		r.sent = true
	default:
	}
}

// Close closes the channel. Later reports are ignored.
func (r *ProgressReporter) Close() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ch == nil || r.closed {
		return
	}
	r.closed = true
	close(r.ch)
}
