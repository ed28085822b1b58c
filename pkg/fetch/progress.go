package fetch

import (
	"sync/atomic"
)

// Status is a point in time view of one request of a batch.
type Status struct {
	URL      string
	Received int64
	// Total is negative while the size is unknown.
	Total int64
	Done  bool
	Kind  Kind
}

// Indeterminate reports whether the request has no known size.
func (s Status) Indeterminate() bool {
	return s.Total < 0
}

// slot holds the live progress of a single request. Only the worker that owns
// the request writes to it; readers load the atomics.
type slot struct {
	url      string
	received int64
	total    int64
	kind     int32
}

func newSlot(url string) *slot {
	return &slot{url: url, total: -1}
}

func (s *slot) update(received, total int64) {
	atomic.StoreInt64(&s.total, total)

	// Received bytes never go backwards.
	for {
		current := atomic.LoadInt64(&s.received)
		if received <= current || atomic.CompareAndSwapInt64(&s.received, current, received) {
			return
		}
	}
}

func (s *slot) finish(outcome Outcome) {
	if outcome.OK() {
		size := int64(len(outcome.Body))
		if atomic.LoadInt64(&s.total) >= 0 {
			atomic.StoreInt64(&s.total, size)
		}
		s.update(size, atomic.LoadInt64(&s.total))
	}

	atomic.StoreInt32(&s.kind, int32(outcome.Kind))
}

func (s *slot) status() Status {
	kind := Kind(atomic.LoadInt32(&s.kind))
	return Status{
		URL:      s.url,
		Received: atomic.LoadInt64(&s.received),
		Total:    atomic.LoadInt64(&s.total),
		Done:     kind != Pending,
		Kind:     kind,
	}
}

// Monitor observes batches while they run. Track is called once per batch
// right after dispatch, the returned function once the batch has completed.
type Monitor interface {
	Track(batch *Batch) (stop func())
}
