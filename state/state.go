// Package state holds the trigger sinks shared between the input poller and
// the scan/lookup pipelines. It is the only mutable state crossing threads:
// two atomic flags, a single-shot screenshot latch, the hit-scan queue and
// the last sampled cursor position.
package state

import (
	"sync"
	"sync/atomic"
)

// HitScan is one lookup request token. The input poller always pushes
// {Manual: false, Payload: nil}; other producers may push manual requests.
type HitScan struct {
	Manual  bool
	Payload any
}

// Shared is created once at startup and handed to the poller and both
// consumer pipelines. Torn down with the process.
type Shared struct {
	running atomic.Bool
	enabled atomic.Bool

	Screenshot *Latch
	HitScans   *Queue

	curMu sync.RWMutex
	curX  int
	curY  int
}

// New returns shared sinks with running and enabled set.
func New() *Shared {
	s := &Shared{
		Screenshot: NewLatch(),
		HitScans:   NewQueue(),
	}
	s.running.Store(true)
	s.enabled.Store(true)
	return s
}

// Running reports whether the poll loop should keep going.
func (s *Shared) Running() bool { return s.running.Load() }

// Stop flips the running flag; the poll loop observes it within one tick.
func (s *Shared) Stop() { s.running.Store(false) }

// Enabled reports whether sampling is active.
func (s *Shared) Enabled() bool { return s.enabled.Load() }

// SetEnabled pauses or resumes sampling without stopping the poller thread.
func (s *Shared) SetEnabled(v bool) { s.enabled.Store(v) }

// SetCursor publishes the last sampled pointer position.
func (s *Shared) SetCursor(x, y int) {
	s.curMu.Lock()
	s.curX, s.curY = x, y
	s.curMu.Unlock()
}

// Cursor returns the last sampled pointer position.
func (s *Shared) Cursor() (int, int) {
	s.curMu.RLock()
	defer s.curMu.RUnlock()
	return s.curX, s.curY
}

// Latch is a single-shot trigger: the producer sets it, the consumer clears
// it after acting. Multiple sets before a clear collapse to one pending
// trigger.
type Latch struct {
	set  atomic.Bool
	wake chan struct{}
}

// NewLatch returns a cleared latch.
func NewLatch() *Latch {
	return &Latch{wake: make(chan struct{}, 1)}
}

// Set marks the latch pending and wakes a blocked consumer.
func (l *Latch) Set() {
	l.set.Store(true)
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// IsSet reports whether a trigger is pending.
func (l *Latch) IsSet() bool { return l.set.Load() }

// TryConsume clears the latch and reports whether a trigger was pending.
func (l *Latch) TryConsume() bool { return l.set.CompareAndSwap(true, false) }

// Wake returns a channel that receives after Set. The signal collapses like
// the latch itself; consumers must re-check IsSet before blocking.
func (l *Latch) Wake() <-chan struct{} { return l.wake }

// Queue is an unbounded FIFO of hit-scan tokens, safe for one producer and
// one consumer. Ordering is strict; duplicates are not coalesced by the
// producer.
type Queue struct {
	mu    sync.Mutex
	items []HitScan
	wake  chan struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Push appends one token and wakes a blocked consumer.
func (q *Queue) Push(h HitScan) {
	q.mu.Lock()
	q.items = append(q.items, h)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Drain removes and returns all queued tokens in FIFO order.
func (q *Queue) Drain() []HitScan {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Len returns the number of queued tokens.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Wake returns a channel that receives after Push. Consumers must drain
// after waking; the signal collapses across bursts.
func (q *Queue) Wake() <-chan struct{} { return q.wake }
