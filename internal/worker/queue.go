package worker

import (
	"errors"
	"sync"
)

var (
	ErrQueueClosed = errors.New("queue is not accepting jobs")
	ErrQueueFull   = errors.New("queue is full")
	ErrDuplicate   = errors.New("job already queued")
)

// Queue hands job IDs to the pool. An ID can only be queued once until a
// worker has finished with it.
type Queue struct {
	ch        chan string // job IDs
	mu        sync.Mutex
	enqueued  map[string]struct{}
	accepting bool
}

func NewQueue(buf int) *Queue {
	return &Queue{
		ch:        make(chan string, buf*2+10),
		enqueued:  make(map[string]struct{}),
		accepting: true,
	}
}

func (q *Queue) Enqueue(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.accepting {
		return ErrQueueClosed
	}
	if _, ok := q.enqueued[id]; ok {
		return ErrDuplicate
	}
	select {
	case q.ch <- id:
	default:
		return ErrQueueFull
	}
	q.enqueued[id] = struct{}{}
	return nil
}

func (q *Queue) Dequeued(id string) {
	q.mu.Lock()
	delete(q.enqueued, id)
	q.mu.Unlock()
}

// Close stops accepting jobs. Workers still receive what is already queued.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.accepting {
		q.accepting = false
		close(q.ch)
	}
}

func (q *Queue) Chan() <-chan string { return q.ch }

// Len counts jobs that are queued or being worked on.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.enqueued)
}
