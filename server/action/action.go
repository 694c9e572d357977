// Package action serializes transport events into a queue consumed by a single dispatcher.
package action

import "sync"

type (
	// Kind is the transport event an action records.
	Kind int

	// Handle is the live connection an action refers to.
	// Handles are owned by the transport and are comparable, so the servers use them as map keys.
	// Send and Close must not block; sends to a dead connection are dropped.
	Handle interface {
		// Send queues a text frame on the connection.
		Send(text string) error
		// Close closes the connection with the reason.
		Close(reason string)
	}

	// Action is one queued transport event.
	Action struct {
		// Kind is the event type.
		Kind Kind
		// Handle is the connection the event happened on.
		Handle Handle
		// Payload is the frame contents of a Message action.
		Payload []byte
	}

	// Queue is a FIFO of actions.
	// Transport goroutines push concurrently; a single dispatcher pops.
	// Actions for the same handle are popped in the order they were pushed.
	Queue struct {
		mu      sync.Mutex
		cond    *sync.Cond
		actions []Action
		closed  bool
	}
)

const (
	// Open records a connection opening.
	Open Kind = iota
	// Close records a connection closing.
	Close
	// Message records a text frame arriving on a connection.
	Message
)

// String returns the display value for the kind.
func (k Kind) String() string {
	switch k {
	case Open:
		return "open"
	case Close:
		return "close"
	case Message:
		return "message"
	}
	return "?"
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	q := new(Queue)
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends the action to the queue and wakes the dispatcher.
// Pushes to a closed queue are dropped.
func (q *Queue) Push(a Action) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.actions = append(q.actions, a)
	q.cond.Signal()
}

// Pop removes and returns the oldest action, waiting until one is available.
// After Close, Pop keeps returning the remaining actions and then reports false.
func (q *Queue) Pop() (Action, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.actions) == 0 && !q.closed {
		q.cond.Wait() // BLOCKING
	}
	if len(q.actions) == 0 {
		return Action{}, false
	}
	a := q.actions[0]
	q.actions = q.actions[1:]
	if len(q.actions) == 0 {
		q.actions = nil
	}
	return a, true
}

// Close marks the queue closed and wakes all waiters.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
