package producer

import (
	"context"
	"sync"

	"github.com/jacoelho/jpq/internal/event"
)

// queue is the only state shared between the producer goroutine and the
// consumer. It must never reference the consumer handle.
type queue interface {
	// push blocks while the queue is full. It fails with errAbandoned once the
	// consumer is gone, or with the context error.
	push(ctx context.Context, ev event.Event) error
	// pop blocks until an event is available. It reports false once the
	// producer finished and every queued event was delivered.
	pop() (event.Event, bool)
	// finish records the terminal error, nil for a clean end, and wakes the
	// consumer.
	finish(err error)
	// abandon tells the producer to stop at its next push.
	abandon()
	// err returns the terminal error. Only valid after pop reported false.
	err() error
}

func newQueue(capacity int) queue {
	if capacity == Unbounded {
		return newListQueue()
	}
	return &chanQueue{
		events:    make(chan event.Event, capacity),
		abandoned: make(chan struct{}),
	}
}

type chanQueue struct {
	events    chan event.Event
	abandoned chan struct{}
	once      sync.Once
	// written before events is closed
	failure error
}

func (q *chanQueue) push(ctx context.Context, ev event.Event) error {
	select {
	case <-q.abandoned:
		return errAbandoned
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case q.events <- ev:
		return nil
	case <-q.abandoned:
		return errAbandoned
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *chanQueue) pop() (event.Event, bool) {
	ev, ok := <-q.events
	return ev, ok
}

func (q *chanQueue) finish(err error) {
	q.failure = err
	close(q.events)
}

func (q *chanQueue) abandon() {
	q.once.Do(func() { close(q.abandoned) })
}

func (q *chanQueue) err() error { return q.failure }

// listQueue grows without limit.
type listQueue struct {
	mu        sync.Mutex
	cond      *sync.Cond
	items     []event.Event
	head      int
	closed    bool
	abandoned bool
	failure   error
}

func newListQueue() *listQueue {
	q := &listQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *listQueue) push(ctx context.Context, ev event.Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.abandoned {
		return errAbandoned
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	q.items = append(q.items, ev)
	q.cond.Signal()
	return nil
}

func (q *listQueue) pop() (event.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.head == len(q.items) && !q.closed {
		q.cond.Wait()
	}
	if q.head == len(q.items) {
		return event.Event{}, false
	}

	ev := q.items[q.head]
	q.items[q.head] = event.Event{}
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return ev, true
}

func (q *listQueue) finish(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.failure = err
	q.closed = true
	q.cond.Broadcast()
}

func (q *listQueue) abandon() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.abandoned = true
	q.items = nil
	q.head = 0
}

func (q *listQueue) err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.failure
}
