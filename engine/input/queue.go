package input

import "sync"

// Queue is a FIFO of events safe for concurrent producers.
type Queue struct {
	mu     *sync.Mutex
	events []Event
}

// NewQueue creates an empty Queue.
//
// Returns:
//   - *Queue: the queue
func NewQueue() *Queue {
	return &Queue{mu: &sync.Mutex{}}
}

// Push appends events to the queue. Nil events are dropped.
//
// Parameters:
//   - events: the events to append
func (q *Queue) Push(events ...Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, ev := range events {
		if ev != nil {
			q.events = append(q.events, ev)
		}
	}
}

// Drain removes and returns all queued events in the order they were pushed.
//
// Returns:
//   - []Event: the drained events, or nil if the queue was empty
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = nil
	return out
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
