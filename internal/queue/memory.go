package queue

import (
	"context"
	"errors"
	"sync"

	"betterme/backend/internal/model"
)

var ErrClosed = errors.New("queue closed")

// MemoryQueue is an in-process Producer/Consumer pair backed by channels.
// High priority jobs are always drained before low priority ones.
type MemoryQueue struct {
	high chan model.AudioJob
	low  chan model.AudioJob

	closeOnce sync.Once
	done      chan struct{}
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 64
	}
	return &MemoryQueue{
		high: make(chan model.AudioJob, capacity),
		low:  make(chan model.AudioJob, capacity),
		done: make(chan struct{}),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, priority Priority, job model.AudioJob) error {
	ch := q.high
	if priority == PriorityLow {
		ch = q.low
	}

	select {
	case ch <- job:
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Fetch(ctx context.Context) (Message, error) {
	// Drain high priority first without blocking.
	select {
	case job := <-q.high:
		return Message{Job: job}, nil
	default:
	}

	select {
	case job := <-q.high:
		return Message{Job: job}, nil
	case job := <-q.low:
		return Message{Job: job}, nil
	case <-q.done:
		return Message{}, ErrClosed
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

func (q *MemoryQueue) Commit(ctx context.Context, msg Message) error {
	return nil
}

// Len reports how many jobs are waiting across both priorities.
func (q *MemoryQueue) Len() int {
	return len(q.high) + len(q.low)
}

func (q *MemoryQueue) Close() error {
	q.closeOnce.Do(func() {
		close(q.done)
	})
	return nil
}
