package events

import "sync"

// Queue is an unbounded FIFO with a single consumer in mind. Push never
// blocks; the consumer polls Drain, optionally woken through Wake.
type Queue struct {
	mu     sync.Mutex
	items  []Event
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

func NewQueue() *Queue {
	return &Queue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Push appends e. Events pushed after Close are dropped.
func (q *Queue) Push(e Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, e)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Drain removes and returns everything queued so far, oldest first.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len reports how many events are waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Wake receives a value after one or more pushes.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

// Close marks the end of the stream. Events pushed before Close remain
// available to Drain. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

// Done is closed by Close.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}
